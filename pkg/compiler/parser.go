package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// NewlineMarker replaces the \n escape inside string literals. The code
// generator pushes one newline argument per marker when printing, so
// printf renders each marker as a line break.
const NewlineMarker = "%c"

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program     = statement* EOF
//	statement   = declaration | assignment | call ";" | if | for | print
//	declaration = "let" IDENTIFIER ("=" expression)? ";"
//	assignment  = IDENTIFIER "=" expression ";"
//	if          = "if" "(" comparand compOp comparand ")" block ("else" block)? ";"
//	for         = "for" "(" assignment expression compOp expression ";" INCREMENT ")" block ";"
//	print       = "print" "(" IDENTIFIER ")" ";"
//	block       = "{" statement+ "}"
//	comparand   = IDENTIFIER | INTEGER
//	expression  = term (("+" | "-") term)*
//	term        = factor (("*" | "/") factor)*
//	factor      = INTEGER | STRING | IDENTIFIER | call | "(" expression ")" | "print" "(" IDENTIFIER ")"
//	call        = IDENTIFIER "(" (expression ("," expression)*)? ")"
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// fmtError builds a syntax error positioned at the current token.
func (p *Parser) fmtError(format string, args ...any) error {
	tok := p.peek()
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind: SyntaxError,
		Pos:  p.pos,
		Msg:  fmt.Sprintf("%s, got %s (%q)", msg, tok.Type, tok.Lexeme),
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt. Otherwise it leaves
// the token in place and returns a syntax error carrying msg.
func (p *Parser) expect(tt TokenType, msg string) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.fmtError("%s", msg)
	}
	return p.advance(), nil
}

// parseExpression handles + and -
func (p *Parser) parseExpression() (Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}

	return expr, nil
}

// parseTerm handles * and /
func (p *Parser) parseTerm() (Expr, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH {
			break
		}
		op := p.advance().Type
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}

	return expr, nil
}

// parseFactor handles literals, variables, calls, print and parenthesised
// expressions.
func (p *Parser) parseFactor() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		return p.parseNumber()

	case STRING:
		p.advance()
		return &StringLiteral{Value: strings.ReplaceAll(tok.Lexeme, `\n`, NewlineMarker)}, nil

	case PRINT:
		p.advance()
		return p.parsePrintTarget()

	case IDENTIFIER:
		p.advance()
		if p.peek().Type == LPAREN {
			p.advance() // (
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &FunctionCall{Name: tok.Lexeme, Args: args}, nil
		}
		return &Identifier{Name: tok.Lexeme}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "expected ')'"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError("unexpected token %s in expression", tok.Type)
	}
}

func (p *Parser) parseNumber() (*Number, error) {
	tok := p.peek()
	val, err := strconv.ParseInt(tok.Lexeme, 10, 32)
	if err != nil {
		return nil, p.fmtError("integer literal %s out of 32-bit range", tok.Lexeme)
	}
	p.advance()
	return &Number{Value: int32(val)}, nil
}

// parseCallArgs parses a comma-separated argument list. The opening '('
// must already have been consumed.
func (p *Parser) parseCallArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(RPAREN, "expected ')' in function call"); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrintTarget parses "(" IDENTIFIER ")" after the print keyword.
func (p *Parser) parsePrintTarget() (*Print, error) {
	if _, err := p.expect(LPAREN, "expected '(' after 'print'"); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER, "expected an identifier in 'print'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "expected ')' after 'print'"); err != nil {
		return nil, err
	}
	return &Print{Name: name.Lexeme}, nil
}

func (p *Parser) parseDeclaration() (Stmt, error) {
	p.advance() // let

	name, err := p.expect(IDENTIFIER, "expected an identifier after 'let'")
	if err != nil {
		return nil, err
	}

	var init Expr = &Number{Value: 0}
	if p.peek().Type == ASSIGN {
		p.advance()
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(SEMICOLON, "expected ';' after the declaration"); err != nil {
		return nil, err
	}
	return &Declaration{Name: name.Lexeme, Init: init}, nil
}

// parseAssignment parses IDENTIFIER "=" expression ";". The identifier
// must still be the current token.
func (p *Parser) parseAssignment() (*Assignment, error) {
	name := p.advance()

	if _, err := p.expect(ASSIGN, "expected '='"); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(SEMICOLON, "expected ';' after the assignment"); err != nil {
		return nil, err
	}
	return &Assignment{Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parseCallStmt() (Stmt, error) {
	name := p.advance()
	p.advance() // (

	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "expected ';' after the call"); err != nil {
		return nil, err
	}
	return &FunctionCall{Name: name.Lexeme, Args: args}, nil
}

func (p *Parser) parsePrintStmt() (Stmt, error) {
	p.advance() // print

	stmt, err := p.parsePrintTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "expected ';' after 'print'"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseComparand accepts the single identifier or integer allowed on each
// side of an if condition.
func (p *Parser) parseComparand() (Expr, error) {
	switch p.peek().Type {
	case IDENTIFIER:
		return &Identifier{Name: p.advance().Lexeme}, nil
	case INTEGER:
		return p.parseNumber()
	}
	return nil, p.fmtError("invalid condition in 'if'")
}

// parseBlock parses "{" statement+ "}". construct names the owner in
// diagnostics ("if", "else", "for").
func (p *Parser) parseBlock(construct string) (*Program, error) {
	if _, err := p.expect(LBRACE, fmt.Sprintf("expected '{' after '%s'", construct)); err != nil {
		return nil, err
	}
	if p.peek().Type == RBRACE {
		return nil, p.fmtError("expected statement in '%s' body", construct)
	}

	body := &Program{}
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body.Stmts = append(body.Stmts, stmt)
	}

	if _, err := p.expect(RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // if

	if _, err := p.expect(LPAREN, "expected '(' after 'if'"); err != nil {
		return nil, err
	}

	left, err := p.parseComparand()
	if err != nil {
		return nil, err
	}
	if !p.peek().Type.isComparison() {
		return nil, p.fmtError("expected a comparison operator in 'if'")
	}
	op := p.advance().Type
	right, err := p.parseComparand()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(RPAREN, "expected ')' after the 'if' condition"); err != nil {
		return nil, err
	}

	stmt := &IfStmt{Cond: &Comparison{Op: op, Left: left, Right: right}}
	if stmt.Body, err = p.parseBlock("if"); err != nil {
		return nil, err
	}

	if p.peek().Type == ELSE {
		p.advance()
		if stmt.Else, err = p.parseBlock("else"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(SEMICOLON, "expected ';' after 'if'"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseFor() (Stmt, error) {
	p.advance() // for

	if _, err := p.expect(LPAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	// The initializer is an assignment, not a declaration: the loop
	// variable must be declared before the loop.
	if p.peek().Type != IDENTIFIER {
		return nil, p.fmtError("expected an identifier in 'for' initializer")
	}
	init, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.peek().Type.isComparison() {
		return nil, p.fmtError("expected a comparison operator in 'for'")
	}
	op := p.advance().Type
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(SEMICOLON, "expected ';' after the 'for' condition"); err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Type != INCREMENT && tok.Type != DECREMENT {
		return nil, p.fmtError("expected an increment in 'for'")
	}
	p.advance()
	split := len(tok.Lexeme) - 2
	post := &Increment{Name: tok.Lexeme[:split], Op: tok.Lexeme[split:]}

	if _, err := p.expect(RPAREN, "expected ')' after the 'for' increment"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock("for")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(SEMICOLON, "expected ';' after 'for'"); err != nil {
		return nil, err
	}

	return &ForStmt{
		Init: init,
		Cond: &Comparison{Op: op, Left: left, Right: right},
		Post: post,
		Body: body,
	}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case LET:
		return p.parseDeclaration()
	case IDENTIFIER:
		if p.peekAt(1).Type == LPAREN {
			return p.parseCallStmt()
		}
		return p.parseAssignment()
	case IF:
		return p.parseIf()
	case FOR:
		return p.parseFor()
	case PRINT:
		return p.parsePrintStmt()
	}
	return nil, p.fmtError("invalid statement starting with %s", p.peek().Type)
}

// Parse builds the Program for a whole token stream. The first grammar
// violation aborts parsing; no partial tree is returned.
func Parse(tokens []Token) (*Program, error) {
	p := NewParser(tokens)
	prog := &Program{}
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}
