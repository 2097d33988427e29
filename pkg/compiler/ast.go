package compiler

import (
	"fmt"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a numeric constant, decimal or hex, kept as source text.
//
//	int x = 10;
//	         ^^  Literal{Value: "10"}
type Literal struct {
	Value string
	Line  int
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return l.Value }

// StringLit is a string constant "..." (Value excludes the quotes).
type StringLit struct {
	Value string
	Line  int
}

func (*StringLit) exprNode()        {}
func (s *StringLit) String() string { return fmt.Sprintf("%q", s.Value) }

// Ident is a read of a named variable.
//
//	return x;
//	       ^  Ident{Name: "x"}
type Ident struct {
	Name string
	Line int
}

func (*Ident) exprNode()        {}
func (i *Ident) String() string { return i.Name }

// BinaryExpr represents a binary operation: Left Op Right.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// AssignExpr represents Target = Value. Assignment is right-associative;
// the grammar allows any expression on the left and the semantic
// analyzer rejects targets that are not plain identifiers.
type AssignExpr struct {
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode() {}
func (a *AssignExpr) String() string {
	return fmt.Sprintf("(%s = %s)", a.Target, a.Value)
}

// PrefixExpr represents ++x or --x.
type PrefixExpr struct {
	Op      string
	Operand Expr
}

func (*PrefixExpr) exprNode()        {}
func (p *PrefixExpr) String() string { return fmt.Sprintf("(%s%s)", p.Op, p.Operand) }

// PostfixExpr represents x++ or x--.
type PostfixExpr struct {
	Op      string
	Operand Expr
}

func (*PostfixExpr) exprNode()        {}
func (p *PostfixExpr) String() string { return fmt.Sprintf("(%s%s)", p.Operand, p.Op) }

// CallExpr represents name(args).
type CallExpr struct {
	Name string
	Args []Expr
	Line int
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// Declarator is one name within a declaration statement.
//
//	int a = 1, b;
//	    ^^^^^  ^  Declarator{Name: "a", Init: ...}, Declarator{Name: "b"}
type Declarator struct {
	Name string
	Init Expr // may be nil
	Line int
}

func (d *Declarator) String() string {
	if d.Init == nil {
		return d.Name
	}
	return fmt.Sprintf("%s = %s", d.Name, d.Init)
}

// DeclStmt represents  type name [= expr] (, name [= expr])* ;
type DeclStmt struct {
	Type  string
	Decls []*Declarator
	Line  int
}

func (*DeclStmt) stmtNode() {}
func (d *DeclStmt) String() string {
	parts := make([]string, len(d.Decls))
	for i, dec := range d.Decls {
		parts[i] = dec.String()
	}
	return fmt.Sprintf("DeclStmt(%s %s)", d.Type, strings.Join(parts, ", "))
}

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode()        {}
func (e *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", e.Expr) }

// ReturnStmt represents  return [expr];
type ReturnStmt struct {
	Expr Expr // nil for a bare return
	Line int
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Expr == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", r.Expr)
}

// BlockStmt represents { statement; ... }
type BlockStmt struct {
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()        {}
func (b *BlockStmt) String() string { return fmt.Sprintf("BlockStmt(len=%d)", len(b.Stmts)) }

// IfStmt represents if (cond) body [else elseBody]
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.Else != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", i.Cond, i.Then, i.Else)
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", i.Cond, i.Then)
}

// ForStmt represents for (init; cond; post) body; every clause is
// independently optional.
type ForStmt struct {
	Init Stmt // DeclStmt or ExprStmt, may be nil
	Cond Expr // may be nil
	Post Expr // may be nil
	Body Stmt
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	init, cond, post := "", "", ""
	if f.Init != nil {
		init = f.Init.String()
	}
	if f.Cond != nil {
		cond = f.Cond.String()
	}
	if f.Post != nil {
		post = f.Post.String()
	}
	return fmt.Sprintf("ForStmt(init=%s, cond=%s, post=%s, body=%s)", init, cond, post, f.Body)
}

// WhileStmt represents while (cond) body
type WhileStmt struct {
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", w.Cond, w.Body)
}

// Param is one entry in a function's parameter list.
type Param struct {
	Type string
	Name string
}

func (p Param) String() string { return p.Type + " " + p.Name }

// FuncDecl represents  type name(params) { body }
type FuncDecl struct {
	ReturnType string
	Name       string
	Params     []Param
	Body       *BlockStmt
	Line       int
}

func (*FuncDecl) stmtNode() {}
func (f *FuncDecl) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("FuncDecl(%s %s(%s), body=%s)",
		f.ReturnType, f.Name, strings.Join(params, ", "), f.Body)
}

// PreprocessorDirective carries a '#...' line through the tree verbatim.
// Directives are recognized but never expanded.
type PreprocessorDirective struct {
	Text string
	Line int
}

func (*PreprocessorDirective) stmtNode()        {}
func (p *PreprocessorDirective) String() string { return fmt.Sprintf("Preprocessor(%s)", p.Text) }

// Program is the AST root: the ordered top-level declarations.
type Program struct {
	Decls []Stmt // FuncDecl, DeclStmt or PreprocessorDirective
}

func (p *Program) String() string {
	parts := make([]string, len(p.Decls))
	for i, d := range p.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}
