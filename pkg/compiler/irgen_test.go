package compiler

import (
	"reflect"
	"strings"
	"testing"
)

// generateSource is a test helper lowering source straight to IR. It
// fails the test on parse errors or diagnostics, so every input here is
// a valid program.
func generateSource(t *testing.T, src string) map[string]*Function {
	t.Helper()
	prog, err := Parse(Tokenize(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if analysis := Analyze(prog); len(analysis.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", analysis.Diagnostics)
	}
	ir, err := GenerateIR(prog)
	if err != nil {
		t.Fatalf("GenerateIR failed: %v", err)
	}
	return ir
}

// TestGenerateIR checks the exact instruction sequence for each
// statement form. Literals appear directly as operands; every function
// opens with its own entry label.
func TestGenerateIR(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fn       string
		expected []Instr
	}{
		{
			name:  "Straight Line",
			input: "int main() { int a = 5; int b = 10; int sum = a + b; return sum; }",
			fn:    "main",
			expected: []Instr{
				{Op: OpLabel, Arg1: "main"},
				{Op: OpAssign, Arg1: "5", Dest: "a"},
				{Op: OpAssign, Arg1: "10", Dest: "b"},
				{Op: "+", Arg1: "a", Arg2: "b", Dest: "t0"},
				{Op: OpAssign, Arg1: "t0", Dest: "sum"},
				{Op: OpReturn, Arg1: "sum"},
			},
		},
		{
			name:  "If Else",
			input: "int f(int x) { if (x < 0) { return 0; } else { return 1; } }",
			fn:    "f",
			expected: []Instr{
				{Op: OpLabel, Arg1: "f"},
				{Op: "<", Arg1: "x", Arg2: "0", Dest: "t0"},
				{Op: OpIfFalse, Arg1: "t0", Arg2: "L0"},
				{Op: OpReturn, Arg1: "0"},
				{Op: OpGoto, Arg1: "L1"},
				{Op: OpLabel, Arg1: "L0"},
				{Op: OpReturn, Arg1: "1"},
				{Op: OpLabel, Arg1: "L1"},
			},
		},
		{
			name:  "While Loop",
			input: "int f(int n) { while (n > 0) { n = n - 1; } return n; }",
			fn:    "f",
			expected: []Instr{
				{Op: OpLabel, Arg1: "f"},
				{Op: OpLabel, Arg1: "L0"},
				{Op: ">", Arg1: "n", Arg2: "0", Dest: "t0"},
				{Op: OpIfFalse, Arg1: "t0", Arg2: "L1"},
				{Op: "-", Arg1: "n", Arg2: "1", Dest: "t1"},
				{Op: OpAssign, Arg1: "t1", Dest: "n"},
				{Op: OpGoto, Arg1: "L0"},
				{Op: OpLabel, Arg1: "L1"},
				{Op: OpReturn, Arg1: "n"},
			},
		},
		{
			name:  "For Loop",
			input: "int f() { int s = 0; for (int i = 0; i < 3; ++i) { s = s + i; } return s; }",
			fn:    "f",
			expected: []Instr{
				{Op: OpLabel, Arg1: "f"},
				{Op: OpAssign, Arg1: "0", Dest: "s"},
				{Op: OpAssign, Arg1: "0", Dest: "i"},
				{Op: OpLabel, Arg1: "L0"},
				{Op: "<", Arg1: "i", Arg2: "3", Dest: "t0"},
				{Op: OpIfFalse, Arg1: "t0", Arg2: "L2"},
				{Op: "+", Arg1: "s", Arg2: "i", Dest: "t1"},
				{Op: OpAssign, Arg1: "t1", Dest: "s"},
				{Op: OpLabel, Arg1: "L1"},
				{Op: "+", Arg1: "i", Arg2: "1", Dest: "t2"},
				{Op: OpAssign, Arg1: "t2", Dest: "i"},
				{Op: OpGoto, Arg1: "L0"},
				{Op: OpLabel, Arg1: "L2"},
				{Op: OpReturn, Arg1: "s"},
			},
		},
		{
			name:  "Prefix Increment Yields New Value",
			input: "int f(int i) { int n = ++i; return n; }",
			fn:    "f",
			expected: []Instr{
				{Op: OpLabel, Arg1: "f"},
				{Op: "+", Arg1: "i", Arg2: "1", Dest: "t0"},
				{Op: OpAssign, Arg1: "t0", Dest: "i"},
				{Op: OpAssign, Arg1: "i", Dest: "n"},
				{Op: OpReturn, Arg1: "n"},
			},
		},
		{
			name:  "Postfix Increment Yields Old Value",
			input: "int f(int i) { int old = i++; return old; }",
			fn:    "f",
			expected: []Instr{
				{Op: OpLabel, Arg1: "f"},
				{Op: OpAssign, Arg1: "i", Dest: "t0"},
				{Op: "+", Arg1: "i", Arg2: "1", Dest: "t1"},
				{Op: OpAssign, Arg1: "t1", Dest: "i"},
				{Op: OpAssign, Arg1: "t0", Dest: "old"},
				{Op: OpReturn, Arg1: "old"},
			},
		},
		{
			name:  "Call With String Argument",
			input: `int main() { printf("hi %d", 7); return 0; }`,
			fn:    "main",
			expected: []Instr{
				{Op: OpLabel, Arg1: "main"},
				{Op: OpParam, Arg1: `"hi %d"`},
				{Op: OpParam, Arg1: "7"},
				{Op: OpCall, Arg1: "printf", Arg2: "2", Dest: "t0"},
				{Op: OpReturn, Arg1: "0"},
			},
		},
		{
			name:  "Bare Return In Void",
			input: "void f() { return; }",
			fn:    "f",
			expected: []Instr{
				{Op: OpLabel, Arg1: "f"},
				{Op: OpReturn},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := generateSource(t, tt.input)
			f, ok := ir[tt.fn]
			if !ok {
				t.Fatalf("function %q missing from IR", tt.fn)
			}
			if !reflect.DeepEqual(f.Instrs, tt.expected) {
				t.Errorf("IR for %q:\n  got\n%v  expected\n%v", tt.fn, f, &Function{Name: tt.fn, Instrs: tt.expected})
			}
		})
	}
}

// TestGenerateIRMultipleFunctions verifies per-function temporaries and
// call-wide label numbering.
func TestGenerateIRMultipleFunctions(t *testing.T) {
	src := `int add(int a, int b) {
	return a + b;
}

int main() {
	int x = add(2, 3);
	while (x > 0) {
		x = x - 1;
	}
	return x;
}`
	ir := generateSource(t, src)

	add := ir["add"]
	if add == nil {
		t.Fatal("add missing from IR")
	}
	if !reflect.DeepEqual(add.Params, []string{"a", "b"}) {
		t.Errorf("add params = %v", add.Params)
	}
	if add.TempCount != 1 {
		t.Errorf("add should use one temporary, got %d", add.TempCount)
	}

	main := ir["main"]
	if main == nil {
		t.Fatal("main missing from IR")
	}
	// Temporaries restart at t0 in every function.
	if main.Instrs[1].Op != OpParam || main.Instrs[3].Dest != "t0" {
		t.Errorf("main should restart temporaries at t0:\n%v", main)
	}
	// Labels never repeat across functions within one call: add was
	// generated first, so main's loop uses fresh numbers.
	text := main.String()
	if !strings.Contains(text, "LABEL L0") {
		t.Errorf("main should carry the first loop label, add has none:\n%s", text)
	}
}

// TestGenerateIRDeterministic checks that two runs over the same tree
// produce identical instruction streams.
func TestGenerateIRDeterministic(t *testing.T) {
	src := "int main() { int a = 1; if (a < 2) { a = 3; } return a; }"
	first := generateSource(t, src)
	second := generateSource(t, src)
	if FormatIR(first) != FormatIR(second) {
		t.Errorf("runs differ:\n%s\n%s", FormatIR(first), FormatIR(second))
	}
}

// TestInstrString spot-checks the printed forms used in IR dumps.
func TestInstrString(t *testing.T) {
	tests := []struct {
		in   Instr
		want string
	}{
		{Instr{Op: OpLabel, Arg1: "L0"}, "LABEL L0"},
		{Instr{Op: OpLabel, Arg1: "L0", LoopHead: true}, "LABEL L0 ; loop"},
		{Instr{Op: OpGoto, Arg1: "L1"}, "GOTO L1"},
		{Instr{Op: OpIfFalse, Arg1: "t0", Arg2: "L1"}, "IF_FALSE t0 GOTO L1"},
		{Instr{Op: OpParam, Arg1: "7"}, "PARAM 7"},
		{Instr{Op: OpCall, Arg1: "add", Arg2: "2", Dest: "t0"}, "t0 = CALL add, 2"},
		{Instr{Op: OpReturn}, "RETURN"},
		{Instr{Op: OpReturn, Arg1: "x"}, "RETURN x"},
		{Instr{Op: OpAssign, Arg1: "5", Dest: "a"}, "a = 5"},
		{Instr{Op: "+", Arg1: "2", Arg2: "3", Dest: "t0"}, "t0 = 2 + 3"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, expected %q", got, tt.want)
		}
	}
}
