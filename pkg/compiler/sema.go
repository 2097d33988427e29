package compiler

import (
	"fmt"
	"strings"
)

// Diagnostic is one non-fatal semantic finding. Analysis never aborts:
// it accumulates diagnostics and always runs to completion.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Analysis is the complete result of one Analyze call.
type Analysis struct {
	Symbols     *SymbolTable
	Funcs       *FuncTable
	Diagnostics []Diagnostic
}

// builtins are the standard-library signatures seeded before any user
// code is analyzed. printf is variadic: its argument count is not
// checked.
var builtins = []*FuncSig{
	{Name: "printf", Params: []Param{{Type: "string", Name: "format"}}, ReturnType: "int", Builtin: true, Variadic: true},
	{Name: "scanf", Params: []Param{{Type: "string", Name: "format"}}, ReturnType: "int", Builtin: true},
	{Name: "strlen", Params: []Param{{Type: "string", Name: "s"}}, ReturnType: "int", Builtin: true},
	{Name: "strcpy", Params: []Param{{Type: "string", Name: "dst"}, {Type: "string", Name: "src"}}, ReturnType: "string", Builtin: true},
	{Name: "malloc", Params: []Param{{Type: "int", Name: "size"}}, ReturnType: "int", Builtin: true},
	{Name: "free", Params: []Param{{Type: "int", Name: "ptr"}}, ReturnType: "void", Builtin: true},
	{Name: "exit", Params: []Param{{Type: "int", Name: "code"}}, ReturnType: "void", Builtin: true},
}

// numericRank orders the numeric types for widening: char < int < float
// < double. Non-numeric types have no rank.
var numericRank = map[string]int{
	"char":   0,
	"int":    1,
	"float":  2,
	"double": 3,
}

func isNumeric(typ string) bool {
	_, ok := numericRank[typ]
	return ok
}

// widen returns the wider of two numeric types.
func widen(a, b string) string {
	if numericRank[a] >= numericRank[b] {
		return a
	}
	return b
}

// literalType infers the type of a numeric literal: hex literals are int,
// anything containing '.', 'e' or 'E' is float, the rest are int.
func literalType(value string) string {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return "int"
	}
	if strings.ContainsAny(value, ".eE") {
		return "float"
	}
	return "int"
}

// analyzer holds the state of a single Analyze call.
type analyzer struct {
	syms  *SymbolTable
	funcs *FuncTable
	diags []Diagnostic
}

// Analyze walks the AST, building the symbol and function tables and
// collecting diagnostics. It always returns a result; individual errors
// never stop the walk. Every call starts from fresh tables, so repeated
// analysis of edited source is independent and reproducible.
func Analyze(prog *Program) *Analysis {
	a := &analyzer{syms: NewSymbolTable(), funcs: NewFuncTable()}

	for _, sig := range builtins {
		a.funcs.Declare(sig)
	}

	// First pass: register every function signature so forward references
	// resolve, and declare globals.
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *FuncDecl:
			sig := &FuncSig{Name: d.Name, Params: d.Params, ReturnType: d.ReturnType}
			if !a.funcs.Declare(sig) {
				a.errorf(d.Line, "redeclaration of function %q", d.Name)
			}
		case *DeclStmt:
			a.checkDecl(d)
		}
	}

	// Second pass: walk each function body.
	for _, decl := range prog.Decls {
		fn, ok := decl.(*FuncDecl)
		if !ok {
			continue
		}
		a.checkFunction(fn)
	}

	return &Analysis{Symbols: a.syms, Funcs: a.funcs, Diagnostics: a.diags}
}

func (a *analyzer) errorf(line int, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (a *analyzer) checkFunction(fn *FuncDecl) {
	a.syms.EnterScope()
	defer a.syms.ExitScope()

	for _, p := range fn.Params {
		sym, fresh := a.syms.Declare(p.Name, p.Type, fn.Line)
		if !fresh {
			a.errorf(fn.Line, "redeclaration of parameter %q in function %q", p.Name, fn.Name)
			continue
		}
		sym.Initialized = true
	}

	for _, stmt := range fn.Body.Stmts {
		a.checkStmt(stmt, fn)
	}

	a.checkReturnCoverage(fn)
}

// checkReturnCoverage approximates "a return is reachable from every
// structural branch": the function passes if a return appears directly at
// its outer statement level, or if it has top-level if statements and
// every one of them returns in both its then- and else-branch. This is a
// structural check, not full reachability analysis.
func (a *analyzer) checkReturnCoverage(fn *FuncDecl) {
	if fn.ReturnType == "void" {
		return
	}

	hasOuterReturn := false
	var topIfs []*IfStmt
	for _, stmt := range fn.Body.Stmts {
		switch s := stmt.(type) {
		case *ReturnStmt:
			hasOuterReturn = true
		case *IfStmt:
			topIfs = append(topIfs, s)
		}
	}
	if hasOuterReturn {
		return
	}

	if len(topIfs) > 0 {
		covered := true
		for _, s := range topIfs {
			if !containsReturn(s.Then) || s.Else == nil || !containsReturn(s.Else) {
				covered = false
				break
			}
		}
		if covered {
			return
		}
	}

	a.errorf(fn.Line, "missing return in non-void function %q", fn.Name)
}

// containsReturn reports whether any return statement appears anywhere
// inside stmt.
func containsReturn(stmt Stmt) bool {
	switch s := stmt.(type) {
	case *ReturnStmt:
		return true
	case *BlockStmt:
		for _, child := range s.Stmts {
			if containsReturn(child) {
				return true
			}
		}
	case *IfStmt:
		if containsReturn(s.Then) {
			return true
		}
		if s.Else != nil && containsReturn(s.Else) {
			return true
		}
	case *ForStmt:
		return containsReturn(s.Body)
	case *WhileStmt:
		return containsReturn(s.Body)
	}
	return false
}

func (a *analyzer) checkStmt(stmt Stmt, fn *FuncDecl) {
	switch s := stmt.(type) {
	case *DeclStmt:
		a.checkDecl(s)

	case *ExprStmt:
		a.checkExpr(s.Expr)

	case *ReturnStmt:
		if s.Expr == nil {
			if fn.ReturnType != "void" {
				a.errorf(s.Line, "bare return in function %q returning %s", fn.Name, fn.ReturnType)
			}
			return
		}
		typ, ok := a.checkExpr(s.Expr)
		if ok && !assignable(fn.ReturnType, typ) {
			a.errorf(s.Line, "cannot return %s from function %q returning %s", typ, fn.Name, fn.ReturnType)
		}

	case *BlockStmt:
		a.syms.EnterScope()
		for _, child := range s.Stmts {
			a.checkStmt(child, fn)
		}
		a.syms.ExitScope()

	case *IfStmt:
		a.checkExpr(s.Cond)
		a.checkStmt(s.Then, fn)
		if s.Else != nil {
			a.checkStmt(s.Else, fn)
		}

	case *ForStmt:
		// The loop header gets its own scope so an init declaration does
		// not leak past the loop.
		a.syms.EnterScope()
		if s.Init != nil {
			a.checkStmt(s.Init, fn)
		}
		if s.Cond != nil {
			a.checkExpr(s.Cond)
		}
		if s.Post != nil {
			a.checkExpr(s.Post)
		}
		a.checkStmt(s.Body, fn)
		a.syms.ExitScope()

	case *WhileStmt:
		a.checkExpr(s.Cond)
		a.checkStmt(s.Body, fn)

	case *PreprocessorDirective:
		// Recognized, never expanded.
	}
}

func (a *analyzer) checkDecl(d *DeclStmt) {
	for _, dec := range d.Decls {
		sym, fresh := a.syms.Declare(dec.Name, d.Type, dec.Line)
		if !fresh {
			a.errorf(dec.Line, "redeclaration of %q", dec.Name)
			continue
		}
		if dec.Init == nil {
			continue
		}
		typ, ok := a.checkExpr(dec.Init)
		if ok && !assignable(d.Type, typ) {
			a.errorf(dec.Line, "cannot initialize %s %q with %s", d.Type, dec.Name, typ)
		}
		sym.Initialized = true
	}
}

// assignable reports whether a value of type src can be stored in a slot
// of type dst: exact match, or any numeric into any numeric.
func assignable(dst, src string) bool {
	if dst == src {
		return true
	}
	return isNumeric(dst) && isNumeric(src)
}

// checkExpr type-checks an expression. The second result is false when
// the type could not be established; callers suppress follow-on
// diagnostics in that case to avoid cascades.
func (a *analyzer) checkExpr(expr Expr) (string, bool) {
	switch e := expr.(type) {
	case *Literal:
		return literalType(e.Value), true

	case *StringLit:
		return "string", true

	case *Ident:
		sym, ok := a.syms.Lookup(e.Name)
		if !ok {
			a.errorf(e.Line, "use of undeclared identifier %q", e.Name)
			return "", false
		}
		if !sym.Initialized {
			a.errorf(e.Line, "variable %q used before initialization", e.Name)
		}
		return sym.Type, true

	case *AssignExpr:
		valType, valOK := a.checkExpr(e.Value)
		target, ok := e.Target.(*Ident)
		if !ok {
			a.errorf(exprLine(e.Target), "assignment target must be an identifier")
			return valType, valOK
		}
		sym, found := a.syms.Lookup(target.Name)
		if !found {
			a.errorf(target.Line, "assignment to undeclared identifier %q", target.Name)
			return valType, valOK
		}
		if valOK && !assignable(sym.Type, valType) {
			a.errorf(target.Line, "cannot assign %s to %s %q", valType, sym.Type, target.Name)
		}
		sym.Initialized = true
		return sym.Type, true

	case *BinaryExpr:
		return a.checkBinary(e)

	case *PrefixExpr:
		return a.checkIncDec(e.Op, e.Operand)

	case *PostfixExpr:
		return a.checkIncDec(e.Op, e.Operand)

	case *CallExpr:
		return a.checkCall(e)
	}
	return "", false
}

func (a *analyzer) checkBinary(e *BinaryExpr) (string, bool) {
	lt, lok := a.checkExpr(e.Left)
	rt, rok := a.checkExpr(e.Right)
	if !lok || !rok {
		return "", false
	}

	switch e.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		// Comparisons need matching types or two numerics, and always
		// yield int.
		if lt == rt || (isNumeric(lt) && isNumeric(rt)) {
			return "int", true
		}
		a.errorf(exprLine(e.Left), "cannot compare %s with %s", lt, rt)
		return "", false
	default:
		if isNumeric(lt) && isNumeric(rt) {
			return widen(lt, rt), true
		}
		if e.Op == "+" && lt == "string" && rt == "string" {
			return "string", true
		}
		a.errorf(exprLine(e.Left), "invalid operands for %q: %s and %s", e.Op, lt, rt)
		return "", false
	}
}

func (a *analyzer) checkIncDec(op string, operand Expr) (string, bool) {
	ident, ok := operand.(*Ident)
	if !ok {
		a.errorf(exprLine(operand), "operand of %q must be an identifier", op)
		return "", false
	}
	typ, ok := a.checkExpr(ident)
	if !ok {
		return "", false
	}
	if !isNumeric(typ) {
		a.errorf(ident.Line, "operand of %q must be numeric, got %s", op, typ)
		return "", false
	}
	return typ, true
}

func (a *analyzer) checkCall(e *CallExpr) (string, bool) {
	sig, ok := a.funcs.Get(e.Name)
	if !ok {
		a.errorf(e.Line, "call to undeclared function %q", e.Name)
		for _, arg := range e.Args {
			a.checkExpr(arg)
		}
		return "", false
	}

	if !sig.Variadic && len(e.Args) != len(sig.Params) {
		a.errorf(e.Line, "function %q expects %d arguments, got %d",
			e.Name, len(sig.Params), len(e.Args))
	}

	for i, arg := range e.Args {
		typ, argOK := a.checkExpr(arg)
		if i >= len(sig.Params) {
			continue // extra variadic arguments are unchecked
		}
		if argOK && !assignable(sig.Params[i].Type, typ) {
			a.errorf(e.Line, "argument %d of %q: expected %s, got %s",
				i+1, e.Name, sig.Params[i].Type, typ)
		}
	}
	return sig.ReturnType, true
}

// exprLine digs the best-effort source line out of an expression.
func exprLine(expr Expr) int {
	switch e := expr.(type) {
	case *Literal:
		return e.Line
	case *StringLit:
		return e.Line
	case *Ident:
		return e.Line
	case *CallExpr:
		return e.Line
	case *AssignExpr:
		return exprLine(e.Target)
	case *BinaryExpr:
		return exprLine(e.Left)
	case *PrefixExpr:
		return exprLine(e.Operand)
	case *PostfixExpr:
		return exprLine(e.Operand)
	}
	return 0
}
