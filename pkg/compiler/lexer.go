package compiler

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"let":   LET,
	"if":    IF,
	"else":  ELSE,
	"for":   FOR,
	"while": WHILE,
	"print": PRINT,
}

// punctuation maps single characters that always form a token on their own.
var punctuation = map[rune]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	',': COMMA,
	';': SEMICOLON,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src []rune
	pos int // index of the next rune to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune offset positions ahead, or 0 past the end.
func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.atEnd() {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// scanIdent collects an identifier or keyword. A run that is immediately
// followed by "++" or "--" becomes a compound INCREMENT/DECREMENT token.
// The first letter must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	start := l.pos
	l.advance()
	for !l.atEnd() {
		next, after := l.peek(), l.peekAt(1)
		if next == '+' && after == '+' {
			l.advance()
			l.advance()
			return Token{Type: INCREMENT, Lexeme: string(l.src[start:l.pos])}
		}
		if next == '-' && after == '-' {
			l.advance()
			l.advance()
			return Token{Type: DECREMENT, Lexeme: string(l.src[start:l.pos])}
		}
		if !isAlphaNumeric(next) {
			break
		}
		l.advance()
	}

	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme}
}

// scanInt collects a run of decimal digits. There is no sign, no base
// prefix and no range check here; the parser converts the lexeme.
func (l *Lexer) scanInt() Token {
	start := l.pos
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos])}
}

// scanString collects a string literal. Only letters, digits, whitespace
// and backslashes may appear between the quotes; escapes are kept raw.
func (l *Lexer) scanString() (Token, error) {
	open := l.pos
	l.advance() // consume opening "
	start := l.pos

	for !l.atEnd() {
		r := l.peek()
		if r == '"' {
			body := string(l.src[start:l.pos])
			l.advance() // consume closing "
			return Token{Type: STRING, Lexeme: body}, nil
		}
		if !isAlphaNumeric(r) && !isSpace(r) && r != '\\' {
			return Token{}, lexError(l.pos, "invalid character %q in string literal", r)
		}
		l.advance()
	}
	return Token{}, lexError(open, "unterminated string literal")
}

// scanOperator handles '=', '<', '>' and '!', each of which may pair with
// a following '='. The operator character must still be at l.peek().
func (l *Lexer) scanOperator() (Token, error) {
	pos := l.pos
	ch := l.advance()
	eq := l.peek() == '='
	if eq {
		l.advance()
	}

	switch ch {
	case '=':
		if eq {
			return Token{EQUALS, "=="}, nil
		}
		return Token{ASSIGN, "="}, nil
	case '<':
		if eq {
			return Token{LESS_EQ, "<="}, nil
		}
		return Token{LESS, "<"}, nil
	case '>':
		if eq {
			return Token{GREATER_EQ, ">="}, nil
		}
		return Token{GREATER, ">"}, nil
	default: // '!'
		if eq {
			return Token{NOT_EQ, "!="}, nil
		}
		return Token{}, lexError(pos, "invalid syntax: %q must be followed by '='", ch)
	}
}

// nextToken skips whitespace and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for !l.atEnd() && isSpace(l.peek()) {
		l.advance()
	}
	if l.atEnd() {
		return Token{Type: EOF}, nil
	}

	ch := l.peek()
	switch {
	case ch == '"':
		return l.scanString()
	case isAlpha(ch):
		return l.scanIdent(), nil
	case isDigit(ch):
		return l.scanInt(), nil
	case ch == '=' || ch == '<' || ch == '>' || ch == '!':
		return l.scanOperator()
	}

	if tt, ok := punctuation[ch]; ok {
		l.advance()
		return Token{Type: tt, Lexeme: string(ch)}, nil
	}
	return Token{}, lexError(l.pos, "invalid syntax: %q", ch)
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first character that cannot start or
// continue a token.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
