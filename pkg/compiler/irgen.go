package compiler

import (
	"fmt"
	"strconv"
)

// irGenerator holds the state of one GenerateIR call. Temporaries are
// numbered per function; labels are numbered across the whole call so
// they are unique program-wide.
type irGenerator struct {
	current    *Function
	labelCount int
}

// GenerateIR lowers a semantically accepted AST into one three-address
// function per source function. The input is assumed to have passed
// analysis with no diagnostics; on a structurally invalid tree it fails
// fast with a descriptive error rather than emitting garbage.
func GenerateIR(prog *Program) (map[string]*Function, error) {
	g := &irGenerator{}
	funcs := make(map[string]*Function)

	for _, decl := range prog.Decls {
		fn, ok := decl.(*FuncDecl)
		if !ok {
			continue // directives and globals have no instruction form
		}
		f, err := g.genFunction(fn)
		if err != nil {
			return nil, err
		}
		funcs[fn.Name] = f
	}
	return funcs, nil
}

func (g *irGenerator) newTemp() string {
	t := fmt.Sprintf("t%d", g.current.TempCount)
	g.current.TempCount++
	return t
}

func (g *irGenerator) newLabel() string {
	l := fmt.Sprintf("L%d", g.labelCount)
	g.labelCount++
	return l
}

func (g *irGenerator) emit(in Instr) {
	g.current.Instrs = append(g.current.Instrs, in)
}

func (g *irGenerator) genFunction(fn *FuncDecl) (*Function, error) {
	f := &Function{Name: fn.Name}
	for _, p := range fn.Params {
		f.Params = append(f.Params, p.Name)
	}
	g.current = f

	// Entry label; the code generator folds it into the function's own
	// block label.
	g.emit(Instr{Op: OpLabel, Arg1: fn.Name})

	for _, stmt := range fn.Body.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (g *irGenerator) genStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *DeclStmt:
		for _, dec := range s.Decls {
			if dec.Init == nil {
				continue
			}
			val, err := g.genExpr(dec.Init)
			if err != nil {
				return err
			}
			g.emit(Instr{Op: OpAssign, Arg1: val, Dest: dec.Name})
		}
		return nil

	case *ExprStmt:
		_, err := g.genExpr(s.Expr)
		return err

	case *ReturnStmt:
		var val string
		if s.Expr != nil {
			var err error
			val, err = g.genExpr(s.Expr)
			if err != nil {
				return err
			}
		}
		g.emit(Instr{Op: OpReturn, Arg1: val})
		return nil

	case *BlockStmt:
		for _, child := range s.Stmts {
			if err := g.genStmt(child); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		return g.genIf(s)

	case *ForStmt:
		return g.genFor(s)

	case *WhileStmt:
		return g.genWhile(s)

	case *PreprocessorDirective:
		return nil
	}
	return fmt.Errorf("ir: cannot lower statement %T", stmt)
}

// genIf lowers  if (cond) then else els  as:
//
//	IF_FALSE cond GOTO elseL
//	<then>
//	GOTO endL
//	LABEL elseL
//	<els>
//	LABEL endL
func (g *irGenerator) genIf(s *IfStmt) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	elseL := g.newLabel()
	endL := g.newLabel()

	g.emit(Instr{Op: OpIfFalse, Arg1: cond, Arg2: elseL})
	if err := g.genStmt(s.Then); err != nil {
		return err
	}
	g.emit(Instr{Op: OpGoto, Arg1: endL})
	g.emit(Instr{Op: OpLabel, Arg1: elseL})
	if s.Else != nil {
		if err := g.genStmt(s.Else); err != nil {
			return err
		}
	}
	g.emit(Instr{Op: OpLabel, Arg1: endL})
	return nil
}

// genFor lowers  for (init; cond; post) body  as:
//
//	<init>
//	LABEL startL        ; also the condition re-entry point
//	IF_FALSE cond GOTO endL
//	<body>
//	LABEL incL
//	<post>
//	GOTO startL
//	LABEL endL
func (g *irGenerator) genFor(s *ForStmt) error {
	if s.Init != nil {
		if err := g.genStmt(s.Init); err != nil {
			return err
		}
	}
	startL := g.newLabel()
	incL := g.newLabel()
	endL := g.newLabel()

	g.emit(Instr{Op: OpLabel, Arg1: startL})
	if s.Cond != nil {
		cond, err := g.genExpr(s.Cond)
		if err != nil {
			return err
		}
		g.emit(Instr{Op: OpIfFalse, Arg1: cond, Arg2: endL})
	}
	if err := g.genStmt(s.Body); err != nil {
		return err
	}
	g.emit(Instr{Op: OpLabel, Arg1: incL})
	if s.Post != nil {
		if _, err := g.genExpr(s.Post); err != nil {
			return err
		}
	}
	g.emit(Instr{Op: OpGoto, Arg1: startL})
	g.emit(Instr{Op: OpLabel, Arg1: endL})
	return nil
}

// genWhile lowers  while (cond) body  as:
//
//	LABEL startL
//	IF_FALSE cond GOTO endL
//	<body>
//	GOTO startL
//	LABEL endL
func (g *irGenerator) genWhile(s *WhileStmt) error {
	startL := g.newLabel()
	endL := g.newLabel()

	g.emit(Instr{Op: OpLabel, Arg1: startL})
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpIfFalse, Arg1: cond, Arg2: endL})
	if err := g.genStmt(s.Body); err != nil {
		return err
	}
	g.emit(Instr{Op: OpGoto, Arg1: startL})
	g.emit(Instr{Op: OpLabel, Arg1: endL})
	return nil
}

// genExpr lowers an expression and returns the name of the variable or
// temporary holding its value.
func (g *irGenerator) genExpr(expr Expr) (string, error) {
	switch e := expr.(type) {
	case *Literal:
		// Literals resolve directly: they appear as instruction operands
		// without a detour through a temporary.
		return e.Value, nil

	case *StringLit:
		return strconv.Quote(e.Value), nil

	case *Ident:
		return e.Name, nil

	case *AssignExpr:
		target, ok := e.Target.(*Ident)
		if !ok {
			return "", fmt.Errorf("ir: assignment target is %T, not an identifier", e.Target)
		}
		val, err := g.genExpr(e.Value)
		if err != nil {
			return "", err
		}
		g.emit(Instr{Op: OpAssign, Arg1: val, Dest: target.Name})
		return target.Name, nil

	case *BinaryExpr:
		left, err := g.genExpr(e.Left)
		if err != nil {
			return "", err
		}
		right, err := g.genExpr(e.Right)
		if err != nil {
			return "", err
		}
		t := g.newTemp()
		g.emit(Instr{Op: e.Op, Arg1: left, Arg2: right, Dest: t})
		return t, nil

	case *PrefixExpr:
		// ++x: add, store back, yield the updated value.
		name, op, err := g.incDecParts(e.Op, e.Operand)
		if err != nil {
			return "", err
		}
		t := g.newTemp()
		g.emit(Instr{Op: op, Arg1: name, Arg2: "1", Dest: t})
		g.emit(Instr{Op: OpAssign, Arg1: t, Dest: name})
		return name, nil

	case *PostfixExpr:
		// x++: capture the old value first, then add and store back.
		name, op, err := g.incDecParts(e.Op, e.Operand)
		if err != nil {
			return "", err
		}
		old := g.newTemp()
		g.emit(Instr{Op: OpAssign, Arg1: name, Dest: old})
		t := g.newTemp()
		g.emit(Instr{Op: op, Arg1: name, Arg2: "1", Dest: t})
		g.emit(Instr{Op: OpAssign, Arg1: t, Dest: name})
		return old, nil

	case *CallExpr:
		for _, arg := range e.Args {
			val, err := g.genExpr(arg)
			if err != nil {
				return "", err
			}
			g.emit(Instr{Op: OpParam, Arg1: val})
		}
		t := g.newTemp()
		g.emit(Instr{Op: OpCall, Arg1: e.Name, Arg2: strconv.Itoa(len(e.Args)), Dest: t})
		return t, nil
	}
	return "", fmt.Errorf("ir: cannot lower expression %T", expr)
}

// incDecParts resolves the operand name and arithmetic opcode for an
// increment/decrement expression.
func (g *irGenerator) incDecParts(op string, operand Expr) (string, string, error) {
	ident, ok := operand.(*Ident)
	if !ok {
		return "", "", fmt.Errorf("ir: operand of %q is %T, not an identifier", op, operand)
	}
	if op == "++" {
		return ident.Name, "+", nil
	}
	return ident.Name, "-", nil
}
