package compiler

import (
	"fmt"
	"log/slog"

	"versec/pkg/asm"
)

// Width is the operand size used by instructions that mutate a variable.
type Width int

const (
	WidthByte  Width = iota // mutations touch the low byte of the dd slot
	WidthDword              // mutations touch the whole dd slot
)

func (w Width) String() string {
	if w == WidthDword {
		return "dword"
	}
	return "byte"
}

func ParseWidth(s string) (Width, error) {
	switch s {
	case "", "byte":
		return WidthByte, nil
	case "dword":
		return WidthDword, nil
	}
	return WidthByte, fmt.Errorf("unknown width %q (want byte or dword)", s)
}

// LoopMode selects how a for loop is laid out.
type LoopMode int

const (
	LoopDoWhile LoopMode = iota // body runs once before the first test
	LoopPreTest                 // condition is tested before the first iteration
)

func (m LoopMode) String() string {
	if m == LoopPreTest {
		return "pre-test"
	}
	return "do-while"
}

func ParseLoopMode(s string) (LoopMode, error) {
	switch s {
	case "", "do-while":
		return LoopDoWhile, nil
	case "pre-test":
		return LoopPreTest, nil
	}
	return LoopDoWhile, fmt.Errorf("unknown loop mode %q (want do-while or pre-test)", s)
}

// Options control code generation. The zero value reproduces the
// reference output: byte-wide mutations and do-while loops.
type Options struct {
	Width  Width
	Loop   LoopMode
	Verify bool // check the listing with pkg/asm before returning it

	// Logger receives debug records for each stage. Nil discards them.
	Logger *slog.Logger
}

// Result carries every intermediate product of one compilation.
type Result struct {
	Assembly string
	Tokens   []Token
	Program  *Program
	Symbols  *SymbolTable
	Listing  *asm.Listing // nil unless Options.Verify is set
}

// Compiler is a compilation session. Its label counter is shared by every
// Compile call, so labels stay unique across all programs it produces.
type Compiler struct {
	opts   Options
	labels *LabelCounter
	logger *slog.Logger
}

func New(opts Options) *Compiler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{
		opts:   opts,
		labels: &LabelCounter{},
		logger: logger,
	}
}

// Labels exposes the session's label counter.
func (c *Compiler) Labels() *LabelCounter {
	return c.labels
}

// Compile runs the whole pipeline over src with a fresh symbol table.
// The first error from any stage is returned unchanged and no assembly is
// produced.
func (c *Compiler) Compile(src string) (*Result, error) {
	tokens, err := Lex(src)
	if err != nil {
		c.logger.Debug("lex failed", "error", err)
		return nil, err
	}
	c.logger.Debug("lexed", "tokens", len(tokens))

	prog, err := Parse(tokens)
	if err != nil {
		c.logger.Debug("parse failed", "error", err)
		return nil, err
	}
	c.logger.Debug("parsed", "statements", len(prog.Stmts))

	syms := NewSymbolTable()
	assembly, err := Generate(prog, syms, c.labels, c.opts)
	if err != nil {
		c.logger.Debug("codegen failed", "error", err)
		return nil, err
	}
	c.logger.Debug("generated",
		"symbols", syms.Len(),
		"last_label", c.labels.Last(),
		"bytes", len(assembly),
	)

	res := &Result{
		Assembly: assembly,
		Tokens:   tokens,
		Program:  prog,
		Symbols:  syms,
	}

	if c.opts.Verify {
		listing, err := asm.Check(assembly)
		if err != nil {
			return nil, fmt.Errorf("generated listing failed verification: %w", err)
		}
		c.logger.Debug("verified",
			"instructions", listing.Instructions,
			"labels", len(listing.Labels),
		)
		res.Listing = listing
	}

	return res, nil
}

// Compile compiles src with default options in a fresh session. Label
// numbering restarts on every call, so two listings from Compile may share
// labels. Use one Compiler from New when labels must stay unique across
// programs.
func Compile(src string) (string, error) {
	res, err := New(Options{}).Compile(src)
	if err != nil {
		return "", err
	}
	return res.Assembly, nil
}
