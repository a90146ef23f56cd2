package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatLabel is the data label of the shared "%d\n" printf format.
const FormatLabel = "fmt"

// jumps maps a comparison operator to the conditional jump taken when the
// comparison holds.
var jumps = map[TokenType]string{
	LESS:       "jl",
	GREATER:    "jg",
	EQUALS:     "je",
	NOT_EQ:     "jne",
	GREATER_EQ: "jge",
	LESS_EQ:    "jle",
}

// LabelCounter hands out label ids for if and for constructs. It only
// moves forward, so a counter shared across compilations never reuses an
// id.
type LabelCounter struct {
	last int
}

func (c *LabelCounter) Next() int {
	c.last++
	return c.last
}

// Last returns the most recently issued id, or 0.
func (c *LabelCounter) Last() int {
	return c.last
}

// CodeGen walks an AST and emits NASM source text for 32-bit x86.
//
// Arithmetic is folded while walking; only assignments, increments,
// comparisons, print and control flow produce instructions.
type CodeGen struct {
	syms   *SymbolTable
	labels *LabelCounter
	width  Width
	loop   LoopMode
	out    strings.Builder
}

func newCodeGen(syms *SymbolTable, labels *LabelCounter, opts Options) *CodeGen {
	return &CodeGen{
		syms:   syms,
		labels: labels,
		width:  opts.Width,
		loop:   opts.Loop,
	}
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

// instr emits one indented instruction.
func (cg *CodeGen) instr(format string, args ...any) {
	cg.line("    "+format, args...)
}

func (cg *CodeGen) label(name string) {
	cg.line("%s:", name)
}

// resolve looks up a declared name.
func (cg *CodeGen) resolve(name string) (Symbol, error) {
	sym, ok := cg.syms.Lookup(name)
	if !ok {
		return Symbol{}, semanticError("variable %s not declared", name)
	}
	return sym, nil
}

// parseFolded converts a stored textual value back into an integer.
func parseFolded(text string) (int32, bool) {
	v, err := strconv.ParseInt(strings.ReplaceAll(text, `"`, ""), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

// fold evaluates an arithmetic expression at compile time. Identifiers
// resolve to the value they were declared with.
func (cg *CodeGen) fold(e Expr) (int32, error) {
	switch n := e.(type) {
	case *Number:
		return n.Value, nil

	case *Identifier:
		sym, err := cg.resolve(n.Name)
		if err != nil {
			return 0, err
		}
		v, ok := parseFolded(sym.Value)
		if !ok {
			return 0, semanticError("variable %s is not numeric", n.Name)
		}
		return v, nil

	case *StringLiteral:
		v, ok := parseFolded(n.Value)
		if !ok {
			return 0, semanticError("string %q is not numeric", n.Value)
		}
		return v, nil

	case *BinaryExpr:
		left, err := cg.fold(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := cg.fold(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case PLUS:
			return left + right, nil
		case MINUS:
			return left - right, nil
		case STAR:
			return left * right, nil
		case SLASH:
			if right == 0 {
				return 0, semanticError("division by zero")
			}
			return left / right, nil
		}
		return 0, semanticError("unsupported operator %s", n.Op)

	case *Print:
		return 0, semanticError("print cannot be used as a value")

	case *FunctionCall:
		return 0, semanticError("function calls are not supported in expressions")
	}
	return 0, semanticError("cannot evaluate %s", e)
}

// stringValue reports whether e denotes a string, and its body if so.
func (cg *CodeGen) stringValue(e Expr) (string, bool, error) {
	switch n := e.(type) {
	case *StringLiteral:
		return n.Value, true, nil
	case *Identifier:
		sym, err := cg.resolve(n.Name)
		if err != nil {
			return "", false, err
		}
		if sym.Kind == SymString {
			return sym.Value, true, nil
		}
	}
	return "", false, nil
}

func (cg *CodeGen) genDeclaration(d *Declaration) error {
	if _, exists := cg.syms.Lookup(d.Name); exists {
		return semanticError("variable %s already declared", d.Name)
	}

	str, isString, err := cg.stringValue(d.Init)
	if err != nil {
		return err
	}
	if isString {
		return cg.syms.Declare(d.Name, SymString, str)
	}

	v, err := cg.fold(d.Init)
	if err != nil {
		return err
	}
	return cg.syms.Declare(d.Name, SymInt, strconv.Itoa(int(v)))
}

func (cg *CodeGen) genAssignment(a *Assignment) error {
	_, isString, err := cg.stringValue(a.Value)
	if err != nil {
		return err
	}
	var v int32
	if !isString {
		if v, err = cg.fold(a.Value); err != nil {
			return err
		}
	}

	target, err := cg.resolve(a.Name)
	if err != nil {
		return err
	}
	if isString || target.Kind == SymString {
		return semanticError("cannot reassign string %s", a.Name)
	}

	cg.instr("mov %s [%s], %d", cg.width, a.Name, v)
	return nil
}

func (cg *CodeGen) genIncrement(inc *Increment) error {
	target, err := cg.resolve(inc.Name)
	if err != nil {
		return err
	}
	if target.Kind == SymString {
		return semanticError("cannot increment string %s", inc.Name)
	}

	switch inc.Op {
	case "++":
		cg.instr("add %s [%s], 1", cg.width, inc.Name)
	case "--":
		cg.instr("sub %s [%s], 1", cg.width, inc.Name)
	default:
		return semanticError("unsupported increment operator %q", inc.Op)
	}
	return nil
}

// operand renders one side of a comparison: a variable is read from
// memory, anything else is folded to an immediate.
func (cg *CodeGen) operand(e Expr) (string, error) {
	if id, ok := e.(*Identifier); ok {
		if _, err := cg.resolve(id.Name); err != nil {
			return "", err
		}
		return "[" + id.Name + "]", nil
	}
	v, err := cg.fold(e)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(int(v)), nil
}

// genComparison loads both operands and branches to target when the
// comparison holds. Falling through means it did not.
func (cg *CodeGen) genComparison(c *Comparison, target string) error {
	jump, ok := jumps[c.Op]
	if !ok {
		return semanticError("unsupported comparison operator %s", c.Op)
	}

	left, err := cg.operand(c.Left)
	if err != nil {
		return err
	}
	right, err := cg.operand(c.Right)
	if err != nil {
		return err
	}

	cg.instr("mov eax, %s", left)
	cg.instr("mov ebx, %s", right)
	cg.instr("cmp eax, ebx")
	cg.instr("%s %s", jump, target)
	cg.line("")
	return nil
}

func (cg *CodeGen) genPrint(p *Print) error {
	sym, err := cg.resolve(p.Name)
	if err != nil {
		return err
	}

	if sym.Kind == SymInt {
		cg.instr("push dword [%s]", p.Name)
		cg.instr("push dword %s", FormatLabel)
		cg.instr("call printf")
		cg.instr("add esp, 8")
		return nil
	}

	// A string is its own format; each newline marker consumes one
	// pushed newline argument.
	markers := strings.Count(sym.Value, NewlineMarker)
	for range markers {
		cg.instr("push dword 10")
	}
	cg.instr("push dword %s", p.Name)
	cg.instr("call printf")
	cg.instr("add esp, %d", 4*(markers+1))
	return nil
}

func (cg *CodeGen) genIf(s *IfStmt) error {
	id := cg.labels.Next()
	ifLabel := fmt.Sprintf("if_label_%d", id)
	elseLabel := fmt.Sprintf("else_label_%d", id)
	endLabel := fmt.Sprintf("end_if_label_%d", id)

	if err := cg.genComparison(s.Cond, ifLabel); err != nil {
		return err
	}
	if s.Else == nil {
		cg.instr("jmp %s", endLabel)
	} else {
		cg.instr("jmp %s", elseLabel)
	}

	cg.line("")
	cg.label(ifLabel)
	if err := cg.genBlock(s.Body); err != nil {
		return err
	}
	cg.instr("jmp %s", endLabel)
	cg.line("")

	if s.Else != nil {
		cg.label(elseLabel)
		if err := cg.genBlock(s.Else); err != nil {
			return err
		}
		cg.instr("jmp %s", endLabel)
		cg.line("")
	}

	cg.label(endLabel)
	return nil
}

// genFor lowers a counted loop. In the default LoopDoWhile mode the body
// and increment run once before the condition is first tested.
func (cg *CodeGen) genFor(s *ForStmt) error {
	id := cg.labels.Next()
	topLabel := fmt.Sprintf("for_loop_label_%d", id)
	condLabel := fmt.Sprintf("for_cond_label_%d", id)
	endLabel := fmt.Sprintf("end_for_loop_%d", id)

	if err := cg.genAssignment(s.Init); err != nil {
		return err
	}
	cg.line("")
	if cg.loop == LoopPreTest {
		cg.instr("jmp %s", condLabel)
	}

	cg.label(topLabel)
	if err := cg.genBlock(s.Body); err != nil {
		return err
	}
	if err := cg.genIncrement(s.Post); err != nil {
		return err
	}

	if cg.loop == LoopPreTest {
		cg.label(condLabel)
	}
	if err := cg.genComparison(s.Cond, topLabel); err != nil {
		return err
	}
	cg.instr("jmp %s", endLabel)
	cg.line("")
	cg.label(endLabel)
	return nil
}

func (cg *CodeGen) genBlock(p *Program) error {
	for _, s := range p.Stmts {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (cg *CodeGen) genStmt(s Stmt) error {
	switch n := s.(type) {
	case *Program:
		return cg.genBlock(n)
	case *Declaration:
		return cg.genDeclaration(n)
	case *Assignment:
		return cg.genAssignment(n)
	case *Increment:
		return cg.genIncrement(n)
	case *Print:
		return cg.genPrint(n)
	case *IfStmt:
		return cg.genIf(n)
	case *ForStmt:
		return cg.genFor(n)
	case *FunctionCall, *FunctionDecl, *WhileStmt:
		// Reserved surface: accepted, never executed.
		return nil
	}
	return fmt.Errorf("codegen: unknown statement node %T", s)
}

// genData emits the data section from the symbol table, followed by the
// shared integer format string.
func (cg *CodeGen) genData() {
	cg.line("")
	cg.line("section .data")
	for _, name := range cg.syms.Names() {
		sym, _ := cg.syms.Lookup(name)
		switch sym.Kind {
		case SymLength:
			cg.line("%s %s", name, sym.Value)
		case SymInt:
			cg.line("%s dd %s", name, sym.Value)
		case SymString:
			cg.line("%s db \"%s\",10,0", name, sym.Value)
		}
	}
	cg.line("%s db \"%%d\",10,0", FormatLabel)
}

// Generate lowers prog to a complete NASM listing: text section preamble,
// statements, the exit call and the data section. syms receives every
// declaration; labels is advanced once per if and for.
func Generate(prog *Program, syms *SymbolTable, labels *LabelCounter, opts Options) (string, error) {
	cg := newCodeGen(syms, labels, opts)

	cg.line("section .text")
	cg.line("global _start")
	cg.line("extern printf")
	cg.line("extern exit")
	cg.label("_start")
	cg.line("")

	if err := cg.genBlock(prog); err != nil {
		return "", err
	}

	cg.line("")
	cg.instr("push dword 0")
	cg.instr("call exit")

	cg.genData()
	return cg.out.String(), nil
}
