package compiler

import "fmt"

// ErrorKind classifies a compile failure by the stage that detected it.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	SemanticError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical"
	case SyntaxError:
		return "syntax"
	case SemanticError:
		return "semantic"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by every stage of the pipeline. The first Error aborts
// the whole compilation.
//
// Pos is a character offset for lexical errors, a token index for syntax
// errors and -1 when no position applies.
type Error struct {
	Kind ErrorKind
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	switch {
	case e.Pos < 0:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
	case e.Kind == LexicalError:
		return fmt.Sprintf("%s error at offset %d: %s", e.Kind, e.Pos, e.Msg)
	default:
		return fmt.Sprintf("%s error at token %d: %s", e.Kind, e.Pos, e.Msg)
	}
}

func lexError(pos int, format string, args ...any) error {
	return &Error{Kind: LexicalError, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func semanticError(format string, args ...any) error {
	return &Error{Kind: SemanticError, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}
