package compiler

import (
	"errors"
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{{Type: EOF}},
		},
		{
			name:  "Declaration",
			input: "let x = 5;",
			expected: []Token{
				{Type: LET, Lexeme: "let"},
				{Type: IDENTIFIER, Lexeme: "x"},
				{Type: ASSIGN, Lexeme: "="},
				{Type: INTEGER, Lexeme: "5"},
				{Type: SEMICOLON, Lexeme: ";"},
				{Type: EOF},
			},
		},
		{
			name:  "Operators and Punctuation",
			input: "== != <= >= < > = + - * / ( ) { } [ ] , ;",
			expected: []Token{
				{Type: EQUALS, Lexeme: "=="},
				{Type: NOT_EQ, Lexeme: "!="},
				{Type: LESS_EQ, Lexeme: "<="},
				{Type: GREATER_EQ, Lexeme: ">="},
				{Type: LESS, Lexeme: "<"},
				{Type: GREATER, Lexeme: ">"},
				{Type: ASSIGN, Lexeme: "="},
				{Type: PLUS, Lexeme: "+"},
				{Type: MINUS, Lexeme: "-"},
				{Type: STAR, Lexeme: "*"},
				{Type: SLASH, Lexeme: "/"},
				{Type: LPAREN, Lexeme: "("},
				{Type: RPAREN, Lexeme: ")"},
				{Type: LBRACE, Lexeme: "{"},
				{Type: RBRACE, Lexeme: "}"},
				{Type: LBRACKET, Lexeme: "["},
				{Type: RBRACKET, Lexeme: "]"},
				{Type: COMMA, Lexeme: ","},
				{Type: SEMICOLON, Lexeme: ";"},
				{Type: EOF},
			},
		},
		{
			name:  "Keywords and Identifiers",
			input: "let if else for while print letter x1",
			expected: []Token{
				{Type: LET, Lexeme: "let"},
				{Type: IF, Lexeme: "if"},
				{Type: ELSE, Lexeme: "else"},
				{Type: FOR, Lexeme: "for"},
				{Type: WHILE, Lexeme: "while"},
				{Type: PRINT, Lexeme: "print"},
				{Type: IDENTIFIER, Lexeme: "letter"},
				{Type: IDENTIFIER, Lexeme: "x1"},
				{Type: EOF},
			},
		},
		{
			name:  "Increment and Decrement",
			input: "i++ count-- a+b a++b",
			expected: []Token{
				{Type: INCREMENT, Lexeme: "i++"},
				{Type: DECREMENT, Lexeme: "count--"},
				{Type: IDENTIFIER, Lexeme: "a"},
				{Type: PLUS, Lexeme: "+"},
				{Type: IDENTIFIER, Lexeme: "b"},
				{Type: INCREMENT, Lexeme: "a++"},
				{Type: IDENTIFIER, Lexeme: "b"},
				{Type: EOF},
			},
		},
		{
			name:  "Strings",
			input: `"hi there" "a\nb" ""`,
			expected: []Token{
				{Type: STRING, Lexeme: "hi there"},
				{Type: STRING, Lexeme: `a\nb`},
				{Type: STRING, Lexeme: ""},
				{Type: EOF},
			},
		},
		{
			name:  "No Whitespace",
			input: "if(x>=10){print(x);};",
			expected: []Token{
				{Type: IF, Lexeme: "if"},
				{Type: LPAREN, Lexeme: "("},
				{Type: IDENTIFIER, Lexeme: "x"},
				{Type: GREATER_EQ, Lexeme: ">="},
				{Type: INTEGER, Lexeme: "10"},
				{Type: RPAREN, Lexeme: ")"},
				{Type: LBRACE, Lexeme: "{"},
				{Type: PRINT, Lexeme: "print"},
				{Type: LPAREN, Lexeme: "("},
				{Type: IDENTIFIER, Lexeme: "x"},
				{Type: RPAREN, Lexeme: ")"},
				{Type: SEMICOLON, Lexeme: ";"},
				{Type: RBRACE, Lexeme: "}"},
				{Type: SEMICOLON, Lexeme: ";"},
				{Type: EOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex() error = %v", err)
			}
			if !reflect.DeepEqual(tokens, tt.expected) {
				t.Errorf("Lex() tokens mismatch.\nGot:  %v\nWant: %v", tokens, tt.expected)
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
		msg   string
	}{
		{"Lone Bang", "x !x", 2, `invalid syntax: '!' must be followed by '='`},
		{"Unterminated String", `let s = "abc`, 8, "unterminated string literal"},
		{"Bad String Char", `"a.b"`, 2, `invalid character '.' in string literal`},
		{"Unknown Char", "x = 5 $ 3", 6, `invalid syntax: '$'`},
		{"Underscore", "_x", 0, `invalid syntax: '_'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if cerr.Kind != LexicalError {
				t.Errorf("Kind = %v, want lexical", cerr.Kind)
			}
			if cerr.Pos != tt.pos {
				t.Errorf("Pos = %d, want %d", cerr.Pos, tt.pos)
			}
			if cerr.Msg != tt.msg {
				t.Errorf("Msg = %q, want %q", cerr.Msg, tt.msg)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: INCREMENT, Lexeme: "i++"}
	if got := tok.String(); got != `INCREMENT  "i++"` {
		t.Errorf("String() = %q", got)
	}
}
