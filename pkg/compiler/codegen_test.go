package compiler

import (
	"errors"
	"strings"
	"testing"
)

// assertContains checks if the generated code contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

// assertOrder checks that each fragment appears after the previous one.
func assertOrder(t *testing.T, code string, fragments ...string) {
	t.Helper()
	rest := code
	for _, f := range fragments {
		i := strings.Index(rest, f)
		if i < 0 {
			t.Fatalf("Expected %q in order, but it was missing.\nCode:\n%s", f, code)
		}
		rest = rest[i+len(f):]
	}
}

func generate(t *testing.T, src string, opts Options) (string, *SymbolTable, error) {
	t.Helper()
	prog, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	syms := NewSymbolTable()
	code, err := Generate(prog, syms, &LabelCounter{}, opts)
	return code, syms, err
}

func mustGenerate(t *testing.T, src string) string {
	t.Helper()
	code, _, err := generate(t, src, Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return code
}

func TestGenerate_Listing(t *testing.T) {
	code := mustGenerate(t, "let x = 5; print(x);")
	want := `section .text
global _start
extern printf
extern exit
_start:

    push dword [x]
    push dword fmt
    call printf
    add esp, 8

    push dword 0
    call exit

section .data
x dd 5
fmt db "%d",10,0
`
	if code != want {
		t.Errorf("listing mismatch.\nGot:\n%s\nWant:\n%s", code, want)
	}
}

func TestGenerate_Folding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		data string
	}{
		{"Literal", "let x = 5;", "x dd 5"},
		{"Default Zero", "let y;", "y dd 0"},
		{"Precedence", "let x = 2 + 3 * 4;", "x dd 14"},
		{"Parentheses", "let x = (2 + 3) * 4;", "x dd 20"},
		{"Truncating Division", "let x = 10 / 3;", "x dd 3"},
		{"Operand Order", "let x = 10 - 3 - 2;", "x dd 5"},
		{"Negative", "let x = 0 - 5;", "x dd -5"},
		{"Negative Division", "let x = (0 - 7) / 2;", "x dd -3"},
		{"Wrap Around", "let x = 2147483647 + 1;", "x dd -2147483648"},
		{"Identifier", "let a = 6; let b = a * 7;", "b dd 42"},
		{"Numeric String", `let x = "12" + 1;`, "x dd 13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustGenerate(t, tt.src)
			assertContains(t, code, "\n"+tt.data+"\n")
		})
	}
}

func TestGenerate_Strings(t *testing.T) {
	code := mustGenerate(t, `let s = "hi"; let t = s;`)
	assertOrder(t, code,
		"section .data",
		"s db \"hi\",10,0\n",
		"s_len equ $ - s\n",
		"t db \"hi\",10,0\n",
		"t_len equ $ - t\n",
		"fmt db \"%d\",10,0\n",
	)
	if n := strings.Count(code, "s_len"); n != 1 {
		t.Errorf("expected one s_len entry, got %d", n)
	}
}

func TestGenerate_PrintString(t *testing.T) {
	code := mustGenerate(t, `let s = "a\nb\n"; print(s);`)
	assertContains(t, code, `s db "a%cb%c",10,0`)
	assertOrder(t, code,
		"    push dword 10\n",
		"    push dword 10\n",
		"    push dword s\n",
		"    call printf\n",
		"    add esp, 12\n",
	)
	if strings.Contains(code, "push dword fmt") {
		t.Error("a string is its own format and must not push fmt")
	}
}

func TestGenerate_Assignment(t *testing.T) {
	code := mustGenerate(t, "let x = 1; x = 2 * 3;")
	assertContains(t, code, "    mov byte [x], 6\n")
	assertContains(t, code, "x dd 1")
}

func TestGenerate_If(t *testing.T) {
	code := mustGenerate(t, "let x = 1; if (x == 1) { print(x); };")
	assertOrder(t, code,
		"    mov eax, [x]\n",
		"    mov ebx, 1\n",
		"    cmp eax, ebx\n",
		"    je if_label_1\n",
		"    jmp end_if_label_1\n",
		"if_label_1:\n",
		"    call printf\n",
		"    jmp end_if_label_1\n",
		"end_if_label_1:\n",
	)
	if strings.Contains(code, "else_label_1") {
		t.Error("no else label expected without an else branch")
	}
}

func TestGenerate_IfElse(t *testing.T) {
	code := mustGenerate(t, "let x = 1; if (2 <= x) { x = 3; } else { x = 4; };")
	assertOrder(t, code,
		"    mov eax, 2\n",
		"    mov ebx, [x]\n",
		"    jle if_label_1\n",
		"    jmp else_label_1\n",
		"if_label_1:\n",
		"    mov byte [x], 3\n",
		"    jmp end_if_label_1\n",
		"else_label_1:\n",
		"    mov byte [x], 4\n",
		"    jmp end_if_label_1\n",
		"end_if_label_1:\n",
	)
}

func TestGenerate_Jumps(t *testing.T) {
	for op, jump := range map[string]string{
		"<": "jl", ">": "jg", "==": "je", "!=": "jne", ">=": "jge", "<=": "jle",
	} {
		t.Run(op, func(t *testing.T) {
			code := mustGenerate(t, "let x = 1; if (x "+op+" 2) { x = 0; };")
			assertContains(t, code, "    "+jump+" if_label_1\n")
		})
	}
}

func TestGenerate_ForDoWhile(t *testing.T) {
	code := mustGenerate(t, "let i = 0; for (i = 0; i < 1; i++) { print(i); };")
	assertOrder(t, code,
		"    mov byte [i], 0\n",
		"for_loop_label_1:\n",
		"    push dword [i]\n",
		"    call printf\n",
		"    add byte [i], 1\n",
		"    mov eax, [i]\n",
		"    mov ebx, 1\n",
		"    cmp eax, ebx\n",
		"    jl for_loop_label_1\n",
		"    jmp end_for_loop_1\n",
		"end_for_loop_1:\n",
	)
	if strings.Contains(code, "for_cond_label") {
		t.Error("do-while layout must not jump to the condition first")
	}
}

func TestGenerate_ForPreTest(t *testing.T) {
	code, _, err := generate(t, "let i = 5; for (i = 0; i > 3; i--) { print(i); };", Options{Loop: LoopPreTest})
	if err != nil {
		t.Fatal(err)
	}
	assertOrder(t, code,
		"    mov byte [i], 0\n",
		"    jmp for_cond_label_1\n",
		"for_loop_label_1:\n",
		"    push dword [i]\n",
		"    sub byte [i], 1\n",
		"for_cond_label_1:\n",
		"    cmp eax, ebx\n",
		"    jg for_loop_label_1\n",
		"    jmp end_for_loop_1\n",
		"end_for_loop_1:\n",
	)
}

func TestGenerate_DwordWidth(t *testing.T) {
	code, _, err := generate(t, "let i = 0; i = 4; for (i = 0; i < 2; i++) { print(i); };", Options{Width: WidthDword})
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, code, "    mov dword [i], 4\n")
	assertContains(t, code, "    add dword [i], 1\n")
	if strings.Contains(code, "byte [") {
		t.Errorf("unexpected byte operand:\n%s", code)
	}
}

func TestGenerate_LabelsNested(t *testing.T) {
	code := mustGenerate(t, `let i = 0; let j = 0;
for (i = 0; i < 2; i++) { if (i == 1) { j = 1; } else { j = 2; }; };
if (j > 0) { print(j); };`)
	assertContains(t, code, "for_loop_label_1:")
	assertContains(t, code, "if_label_2:")
	assertContains(t, code, "else_label_2:")
	assertContains(t, code, "if_label_3:")
}

func TestGenerate_ReservedCalls(t *testing.T) {
	code := mustGenerate(t, "let x = 1; foo(x, 2);")
	if strings.Contains(code, "foo") {
		t.Errorf("calls must not generate code:\n%s", code)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"Redeclare", "let x = 2; let x = 3;", "variable x already declared"},
		{"Reassign String", `let s = "hi"; s = "bye";`, "cannot reassign string s"},
		{"Assign String Value", `let x = 1; x = "a";`, "cannot reassign string x"},
		{"Assign Undeclared", "y = 1;", "variable y not declared"},
		{"Print Undeclared", "print(y);", "variable y not declared"},
		{"Fold Undeclared", "let x = y + 1;", "variable y not declared"},
		{"If Undeclared", "if (y < 1) { print(y); };", "variable y not declared"},
		{"For Undeclared", "for (i = 0; i < 1; i++) { print(i); };", "variable i not declared"},
		{"Division By Zero", "let x = 10 / 0;", "division by zero"},
		{"Nested Division By Zero", "let x = 1 + 7 / (2 - 2);", "division by zero"},
		{"String Arithmetic", `let s = "abc"; let x = s + 1;`, "variable s is not numeric"},
		{"Print Value", "let x = 1; let v = print(x);", "print cannot be used as a value"},
		{"Call Value", "let v = foo();", "function calls are not supported in expressions"},
		{"Reserved Name", "let fmt = 1;", `"fmt" is a reserved name`},
		{"Reserved Register", "let eax = 1;", `"eax" is a reserved name`},
		{"Reserved Mnemonic", "let push = 1;", `"push" is a reserved name`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, err := generate(t, tt.src, Options{})
			if err == nil {
				t.Fatalf("expected error, got:\n%s", code)
			}
			if code != "" {
				t.Errorf("expected no output on error, got %d bytes", len(code))
			}
			var cerr *Error
			if !errors.As(err, &cerr) || cerr.Kind != SemanticError {
				t.Fatalf("expected semantic error, got %v", err)
			}
			if cerr.Msg != tt.msg {
				t.Errorf("Msg = %q, want %q", cerr.Msg, tt.msg)
			}
		})
	}
}

func TestGenerate_IncrementString(t *testing.T) {
	syms := NewSymbolTable()
	prog := &Program{Stmts: []Stmt{
		&Declaration{Name: "s", Init: &StringLiteral{Value: "a"}},
		&Increment{Name: "s", Op: "++"},
	}}
	_, err := Generate(prog, syms, &LabelCounter{}, Options{})
	if err == nil || !strings.Contains(err.Error(), "cannot increment string s") {
		t.Fatalf("got %v", err)
	}
}

func TestGenerate_SymbolTableFilled(t *testing.T) {
	_, syms, err := generate(t, `let x = 1; let s = "a";`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if syms.Len() != 3 {
		t.Errorf("Len: expected 3, got %d", syms.Len())
	}
}
