package compiler

import (
	"fmt"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that can appear in an expression
// position. Arithmetic expressions are folded at compile time, so an Expr
// never produces runtime code on its own.
type Expr interface {
	exprNode()
	String() string
}

// Number is a compile-time integer constant.
//
//	let x = 10;
//	        ^^  Number{Value: 10}
type Number struct {
	Value int32
}

func (*Number) exprNode()        {}
func (n *Number) String() string { return fmt.Sprintf("%d", n.Value) }

// StringLiteral is a string constant "...". The source escape \n has
// already been replaced by NewlineMarker.
type StringLiteral struct {
	Value string
}

func (*StringLiteral) exprNode()        {}
func (s *StringLiteral) String() string { return fmt.Sprintf("%q", s.Value) }

// Identifier is a read of a named variable.
type Identifier struct {
	Name string
}

func (*Identifier) exprNode()        {}
func (i *Identifier) String() string { return i.Name }

// BinaryExpr represents an arithmetic operation: Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    TokenType // PLUS, MINUS, STAR or SLASH
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opSymbol(b.Op), b.Right)
}

// Comparison is a relational test. It only appears as the condition of an
// if or for header and lowers to a compare-and-branch.
type Comparison struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*Comparison) exprNode() {}
func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, opSymbol(c.Op), c.Right)
}

//  Nodes that are both expressions and statements

// Print writes a variable to standard output through printf.
//
//	print(x);
type Print struct {
	Name string
}

func (*Print) exprNode()        {}
func (*Print) stmtNode()        {}
func (p *Print) String() string { return fmt.Sprintf("Print(%s)", p.Name) }

// FunctionCall represents name(args). Calls are parsed but never executed.
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*FunctionCall) exprNode() {}
func (*FunctionCall) stmtNode() {}
func (c *FunctionCall) String() string {
	return fmt.Sprintf("FunctionCall(%s, args=%v)", c.Name, c.Args)
}

//  Statement nodes

// Stmt is implemented by every node that can appear in a statement list.
type Stmt interface {
	stmtNode()
	String() string
}

// Program is an ordered block of statements: the whole source file, or
// the body of an if, else or for.
type Program struct {
	Stmts []Stmt
}

func (*Program) stmtNode() {}
func (p *Program) String() string {
	parts := make([]string, len(p.Stmts))
	for i, s := range p.Stmts {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Declaration introduces a global variable.
//
//	let x = 2 + 3;
//	let y;          // Init is Number{0}
type Declaration struct {
	Name string
	Init Expr
}

func (*Declaration) stmtNode() {}
func (d *Declaration) String() string {
	return fmt.Sprintf("Let(%s = %s)", d.Name, d.Init)
}

// Assignment stores a folded value into an existing variable.
type Assignment struct {
	Name  string
	Value Expr
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assign(%s = %s)", a.Name, a.Value)
}

// Increment is a unit mutation: Op is "++" or "--".
type Increment struct {
	Name string
	Op   string
}

func (*Increment) stmtNode()        {}
func (i *Increment) String() string { return fmt.Sprintf("(%s%s)", i.Name, i.Op) }

// IfStmt is a conditional. Else is nil when there is no else branch.
type IfStmt struct {
	Cond *Comparison
	Body *Program
	Else *Program
}

func (*IfStmt) stmtNode() {}
func (s *IfStmt) String() string {
	if s.Else == nil {
		return fmt.Sprintf("If(%s, %s)", s.Cond, s.Body)
	}
	return fmt.Sprintf("If(%s, %s, else=%s)", s.Cond, s.Body, s.Else)
}

// ForStmt is a counted loop.
//
//	for (i = 0; i < 10; i++) { ... };
//	     ^^^^^  ^^^^^^  ^^^
//	     Init   Cond    Post
type ForStmt struct {
	Init *Assignment
	Cond *Comparison
	Post *Increment
	Body *Program
}

func (*ForStmt) stmtNode() {}
func (s *ForStmt) String() string {
	return fmt.Sprintf("For(%s; %s; %s, %s)", s.Init, s.Cond, s.Post, s.Body)
}

// WhileStmt is reserved: the parser never produces it and code
// generation ignores it.
type WhileStmt struct {
	Cond *Comparison
	Body *Program
}

func (*WhileStmt) stmtNode() {}
func (s *WhileStmt) String() string {
	return fmt.Sprintf("While(%v, %v)", s.Cond, s.Body)
}

// FunctionDecl is reserved: the parser never produces it and code
// generation ignores it.
type FunctionDecl struct {
	Name   string
	Params []string
	Body   *Program
}

func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%s, params=%v)", f.Name, f.Params)
}

// opSymbol renders an operator token type as source text.
func opSymbol(tt TokenType) string {
	switch tt {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case EQUALS:
		return "=="
	case NOT_EQ:
		return "!="
	case LESS:
		return "<"
	case GREATER:
		return ">"
	case LESS_EQ:
		return "<="
	case GREATER_EQ:
		return ">="
	}
	return tt.String()
}
