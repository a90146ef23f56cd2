package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// LengthSuffix names the companion symbol that a string declaration
// installs next to its buffer.
const LengthSuffix = "_len"

type SymbolKind int

const (
	SymInt    SymbolKind = iota // Value is a decimal literal
	SymString                   // Value is the literal string body
	SymLength                   // Value is an assembler length directive
)

func (k SymbolKind) String() string {
	switch k {
	case SymInt:
		return "int"
	case SymString:
		return "string"
	case SymLength:
		return "length"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is the compile-time resolution of one global name.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Value string
}

// reservedNames collide with labels, externs or operands of the emitted
// listing and cannot be declared.
var reservedNames = map[string]bool{
	"fmt": true, "printf": true, "exit": true, "_start": true, "section": true, "global": true,
	"extern": true, "equ": true, "db": true, "dw": true, "dd": true, "dq": true,
	"byte": true, "word": true, "dword": true, "qword": true,
	"eax": true, "ebx": true, "ecx": true, "edx": true,
	"esi": true, "edi": true, "esp": true, "ebp": true,
	"ax": true, "bx": true, "cx": true, "dx": true,
	"si": true, "di": true, "sp": true, "bp": true,
	"al": true, "ah": true, "bl": true, "bh": true,
	"cl": true, "ch": true, "dl": true, "dh": true,
	"mov": true, "add": true, "sub": true, "cmp": true, "push": true, "call": true,
	"jmp": true, "je": true, "jne": true, "jl": true, "jle": true, "jg": true, "jge": true,
}

// SymbolTable is the single flat global scope of one compilation. Names
// are declared at most once and never removed.
type SymbolTable struct {
	symbols map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// Declare binds name. For a string it also installs name+LengthSuffix
// holding "equ $ - name".
func (s *SymbolTable) Declare(name string, kind SymbolKind, value string) error {
	if reservedNames[strings.ToLower(name)] {
		return semanticError("%q is a reserved name", name)
	}
	if _, exists := s.symbols[name]; exists {
		return semanticError("variable %s already declared", name)
	}
	if kind == SymString {
		if _, exists := s.symbols[name+LengthSuffix]; exists {
			return semanticError("variable %s already declared", name+LengthSuffix)
		}
	}

	s.symbols[name] = Symbol{Name: name, Kind: kind, Value: value}
	if kind == SymString {
		lenName := name + LengthSuffix
		s.symbols[lenName] = Symbol{Name: lenName, Kind: SymLength, Value: "equ $ - " + name}
	}
	return nil
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

func (s *SymbolTable) Len() int {
	return len(s.symbols)
}

// Names returns every symbol sorted by name, except that a length
// companion always follows its string directly so that "$ - name"
// measures the right buffer.
func (s *SymbolTable) Names() []string {
	var bases []string
	for name, sym := range s.symbols {
		if sym.Kind != SymLength {
			bases = append(bases, name)
		}
	}
	sort.Strings(bases)

	names := make([]string, 0, len(s.symbols))
	for _, name := range bases {
		names = append(names, name)
		if s.symbols[name].Kind == SymString {
			names = append(names, name+LengthSuffix)
		}
	}
	return names
}

func (s *SymbolTable) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Table\n")
	for _, name := range s.Names() {
		sym := s.symbols[name]
		fmt.Fprintf(&sb, "  %-12s %-7s %q\n", name, sym.Kind, sym.Value)
	}
	return sb.String()
}
