package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal
	STRING     // string literal "..."

	// Keywords
	LET   // "let"
	IF    // "if"
	ELSE  // "else"
	FOR   // "for"
	WHILE // "while"
	PRINT // "print"

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	COMMA     // ,
	SEMICOLON // ;

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Assignment / comparison  (order matters: ASSIGN before EQUALS)
	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=

	// Compound markers: the identifier and the marker travel in one lexeme.
	INCREMENT // i++
	DECREMENT // i--
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	STRING:     "STRING",
	LET:        "LET",
	IF:         "IF",
	ELSE:       "ELSE",
	FOR:        "FOR",
	WHILE:      "WHILE",
	PRINT:      "PRINT",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	ASSIGN:     "ASSIGN",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	LESS:       "LESS",
	GREATER:    "GREATER",
	LESS_EQ:    "LESS_EQ",
	GREATER_EQ: "GREATER_EQ",
	INCREMENT:  "INCREMENT",
	DECREMENT:  "DECREMENT",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// isComparison reports whether tt is one of the relational operators
// accepted in if/for headers.
func (tt TokenType) isComparison() bool {
	switch tt {
	case EQUALS, NOT_EQ, LESS, GREATER, LESS_EQ, GREATER_EQ:
		return true
	}
	return false
}

// Token is a single lexical unit produced by the Lexer. Tokens carry no
// position; diagnostics refer to their index in the token slice.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %q", t.Type, t.Lexeme)
}
