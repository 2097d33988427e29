package compiler

import (
	"reflect"
	"strings"
	"testing"
)

// TestParse verifies that Parse produces the correct AST for valid inputs.
func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Stmt
	}{
		{
			name:  "Empty Function",
			input: "void f() {}",
			expected: []Stmt{
				&FuncDecl{ReturnType: "void", Name: "f", Body: &BlockStmt{}, Line: 1},
			},
		},
		{
			name:  "Parameters",
			input: "int add(int a, float b) { return a; }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "add",
					Params:     []Param{{Type: "int", Name: "a"}, {Type: "float", Name: "b"}},
					Body: &BlockStmt{Stmts: []Stmt{
						&ReturnStmt{Expr: &Ident{Name: "a", Line: 1}, Line: 1},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "Declaration With Declarator List",
			input: "int main() { int a = 1, b; return a; }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&DeclStmt{
							Type: "int",
							Decls: []*Declarator{
								{Name: "a", Init: &Literal{Value: "1", Line: 1}, Line: 1},
								{Name: "b", Line: 1},
							},
							Line: 1,
						},
						&ReturnStmt{Expr: &Ident{Name: "a", Line: 1}, Line: 1},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "Precedence",
			input: "int main() { return 1 + 2 * 3 == 7; }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ReturnStmt{
							Expr: &BinaryExpr{
								Op: "==",
								Left: &BinaryExpr{
									Op:   "+",
									Left: &Literal{Value: "1", Line: 1},
									Right: &BinaryExpr{
										Op:    "*",
										Left:  &Literal{Value: "2", Line: 1},
										Right: &Literal{Value: "3", Line: 1},
									},
								},
								Right: &Literal{Value: "7", Line: 1},
							},
							Line: 1,
						},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "Assignment Is Right Associative",
			input: "int main() { a = b = 1; }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ExprStmt{Expr: &AssignExpr{
							Target: &Ident{Name: "a", Line: 1},
							Value: &AssignExpr{
								Target: &Ident{Name: "b", Line: 1},
								Value:  &Literal{Value: "1", Line: 1},
							},
						}},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "Prefix and Postfix",
			input: "int main() { ++i; i--; }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ExprStmt{Expr: &PrefixExpr{Op: "++", Operand: &Ident{Name: "i", Line: 1}}},
						&ExprStmt{Expr: &PostfixExpr{Op: "--", Operand: &Ident{Name: "i", Line: 1}}},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "Call",
			input: "int main() { foo(1, x); }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ExprStmt{Expr: &CallExpr{
							Name: "foo",
							Args: []Expr{
								&Literal{Value: "1", Line: 1},
								&Ident{Name: "x", Line: 1},
							},
							Line: 1,
						}},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "If Else",
			input: "int main() { if (x == 1) { x = 2; } else { x = 3; } }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&IfStmt{
							Cond: &BinaryExpr{
								Op:    "==",
								Left:  &Ident{Name: "x", Line: 1},
								Right: &Literal{Value: "1", Line: 1},
							},
							Then: &BlockStmt{Stmts: []Stmt{
								&ExprStmt{Expr: &AssignExpr{
									Target: &Ident{Name: "x", Line: 1},
									Value:  &Literal{Value: "2", Line: 1},
								}},
							}},
							Else: &BlockStmt{Stmts: []Stmt{
								&ExprStmt{Expr: &AssignExpr{
									Target: &Ident{Name: "x", Line: 1},
									Value:  &Literal{Value: "3", Line: 1},
								}},
							}},
						},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "For With All Clauses",
			input: "int main() { for (int i = 0; i < 3; ++i) { s = s + i; } }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ForStmt{
							Init: &DeclStmt{
								Type:  "int",
								Decls: []*Declarator{{Name: "i", Init: &Literal{Value: "0", Line: 1}, Line: 1}},
								Line:  1,
							},
							Cond: &BinaryExpr{
								Op:    "<",
								Left:  &Ident{Name: "i", Line: 1},
								Right: &Literal{Value: "3", Line: 1},
							},
							Post: &PrefixExpr{Op: "++", Operand: &Ident{Name: "i", Line: 1}},
							Body: &BlockStmt{Stmts: []Stmt{
								&ExprStmt{Expr: &AssignExpr{
									Target: &Ident{Name: "s", Line: 1},
									Value: &BinaryExpr{
										Op:    "+",
										Left:  &Ident{Name: "s", Line: 1},
										Right: &Ident{Name: "i", Line: 1},
									},
								}},
							}},
						},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "For With Empty Clauses",
			input: "int main() { for (;;) {} }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ForStmt{Body: &BlockStmt{}},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "While",
			input: "int main() { while (i < 3) i = i + 1; }",
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&WhileStmt{
							Cond: &BinaryExpr{
								Op:    "<",
								Left:  &Ident{Name: "i", Line: 1},
								Right: &Literal{Value: "3", Line: 1},
							},
							Body: &ExprStmt{Expr: &AssignExpr{
								Target: &Ident{Name: "i", Line: 1},
								Value: &BinaryExpr{
									Op:    "+",
									Left:  &Ident{Name: "i", Line: 1},
									Right: &Literal{Value: "1", Line: 1},
								},
							}},
						},
					}},
					Line: 1,
				},
			},
		},
		{
			name:  "Preprocessor Directive And Global",
			input: "#include <stdio.h>\nint g = 1;",
			expected: []Stmt{
				&PreprocessorDirective{Text: "#include <stdio.h>", Line: 1},
				&DeclStmt{
					Type:  "int",
					Decls: []*Declarator{{Name: "g", Init: &Literal{Value: "1", Line: 2}, Line: 2}},
					Line:  2,
				},
			},
		},
		{
			name:  "String Literal Unquoted In AST",
			input: `int main() { printf("hi"); }`,
			expected: []Stmt{
				&FuncDecl{
					ReturnType: "int",
					Name:       "main",
					Body: &BlockStmt{Stmts: []Stmt{
						&ExprStmt{Expr: &CallExpr{
							Name: "printf",
							Args: []Expr{&StringLit{Value: "hi", Line: 1}},
							Line: 1,
						}},
					}},
					Line: 1,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(Tokenize(tt.input))
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if !reflect.DeepEqual(prog.Decls, tt.expected) {
				t.Errorf("Parse(%q):\n  got      %v\n  expected %v", tt.input, prog.Decls, tt.expected)
			}
		})
	}
}

// TestParseErrors verifies that structural violations yield a ParseError
// and never a partial tree.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string // substring of the error text
	}{
		{"Missing Closing Brace", "int main() { return 1;", "end of input"},
		{"Missing Semicolon", "int main() { return 1 }", `";"`},
		{"Missing Parameter Name", "int f(int) {}", "parameter name"},
		{"Missing Body", "int f();", "function body"},
		{"Garbage At Top Level", "return 1;", "function definition"},
		{"Missing Assignment Value", "int main() { x = ; }", "expression"},
		{"Unclosed Call", "int main() { foo(1, ; }", "expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(Tokenize(tt.input))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, expected error; got %v", tt.input, prog)
			}
			var perr *ParseError
			ok := false
			if perr, ok = err.(*ParseError); !ok {
				t.Fatalf("Parse(%q) returned %T, expected *ParseError", tt.input, err)
			}
			if !strings.Contains(perr.Error(), tt.wantMsg) {
				t.Errorf("Parse(%q) error %q does not mention %q", tt.input, perr.Error(), tt.wantMsg)
			}
			if prog != nil {
				t.Errorf("Parse(%q) returned a partial tree alongside the error", tt.input)
			}
		})
	}
}

// TestParseTerminates feeds pathological inputs; the forward-progress
// guarantee means these must error out rather than loop.
func TestParseTerminates(t *testing.T) {
	inputs := []string{
		"int main() {",
		"int main() { @@@ }",
		"int main() { ; ; ; }",
		"int main() { int }",
	}
	for _, input := range inputs {
		if _, err := Parse(Tokenize(input)); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded", input)
		}
	}
}
