package compiler

import (
	"strconv"
	"strings"
)

// Optimize applies the four optimization passes to every function, in a
// fixed order, each as a single linear sweep. It operates on deep copies:
// the input map and its functions are never mutated. The passes are
// deliberately flow-insensitive; see the individual pass comments.
func Optimize(funcs map[string]*Function) map[string]*Function {
	out := make(map[string]*Function, len(funcs))
	for name, f := range funcs {
		g := f.clone()
		foldConstants(g)
		eliminateDeadStores(g)
		eliminateCommonSubexpressions(g)
		tagLoops(g)
		out[name] = g
	}
	return out
}

// foldConstants propagates known constant values through copies and
// replaces arithmetic/comparison instructions whose operands both
// resolve to numerals with a direct constant assignment. Control-flow
// instructions pass through untouched and do not invalidate the constant
// map; the pass is flow-insensitive by design.
func foldConstants(f *Function) {
	consts := make(map[string]string)
	resolve := func(operand string) string {
		if v, ok := consts[operand]; ok {
			return v
		}
		return operand
	}

	for i := range f.Instrs {
		in := &f.Instrs[i]
		if isControl(in.Op) {
			continue
		}
		switch {
		case in.Op == OpAssign:
			v := resolve(in.Arg1)
			if isNumeral(v) {
				in.Arg1 = v
				consts[in.Dest] = v
			} else {
				delete(consts, in.Dest)
			}
		case isBinaryOp(in.Op):
			a1 := resolve(in.Arg1)
			a2 := resolve(in.Arg2)
			if isNumeral(a1) && isNumeral(a2) {
				if v, ok := evalConst(in.Op, a1, a2); ok {
					*in = Instr{Op: OpAssign, Arg1: v, Dest: in.Dest}
					consts[in.Dest] = v
					continue
				}
			}
			delete(consts, in.Dest)
		case in.Op == OpCall:
			delete(consts, in.Dest)
		}
	}
}

// evalConst computes op over two numeral operands. Comparisons yield "1"
// or "0". Division by zero and float remainder are left unfolded.
func evalConst(op, a1, a2 string) (string, bool) {
	isFloat := func(s string) bool {
		return !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") &&
			strings.ContainsAny(s, ".eE")
	}

	if isFloat(a1) || isFloat(a2) {
		x, err1 := strconv.ParseFloat(a1, 64)
		y, err2 := strconv.ParseFloat(a2, 64)
		if err1 != nil || err2 != nil {
			return "", false
		}
		switch op {
		case "+":
			return strconv.FormatFloat(x+y, 'g', -1, 64), true
		case "-":
			return strconv.FormatFloat(x-y, 'g', -1, 64), true
		case "*":
			return strconv.FormatFloat(x*y, 'g', -1, 64), true
		case "/":
			if y == 0 {
				return "", false
			}
			return strconv.FormatFloat(x/y, 'g', -1, 64), true
		case "==":
			return boolNumeral(x == y), true
		case "!=":
			return boolNumeral(x != y), true
		case "<":
			return boolNumeral(x < y), true
		case ">":
			return boolNumeral(x > y), true
		case "<=":
			return boolNumeral(x <= y), true
		case ">=":
			return boolNumeral(x >= y), true
		}
		return "", false
	}

	x, err1 := strconv.ParseInt(a1, 0, 64)
	y, err2 := strconv.ParseInt(a2, 0, 64)
	if err1 != nil || err2 != nil {
		return "", false
	}
	switch op {
	case "+":
		return strconv.FormatInt(x+y, 10), true
	case "-":
		return strconv.FormatInt(x-y, 10), true
	case "*":
		return strconv.FormatInt(x*y, 10), true
	case "/":
		if y == 0 {
			return "", false
		}
		return strconv.FormatInt(x/y, 10), true
	case "%":
		if y == 0 {
			return "", false
		}
		return strconv.FormatInt(x%y, 10), true
	case "==":
		return boolNumeral(x == y), true
	case "!=":
		return boolNumeral(x != y), true
	case "<":
		return boolNumeral(x < y), true
	case ">":
		return boolNumeral(x > y), true
	case "<=":
		return boolNumeral(x <= y), true
	case ">=":
		return boolNumeral(x >= y), true
	}
	return "", false
}

func boolNumeral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// eliminateDeadStores computes one whole-function set of every operand
// referenced by any instruction, then drops every "=" instruction whose
// destination never appears in it. The used set has no flow or
// redefinition awareness: a reference anywhere keeps every store to that
// name, which can retain stores a sound liveness pass would drop.
func eliminateDeadStores(f *Function) {
	used := make(map[string]bool)
	for _, in := range f.Instrs {
		if in.Arg1 != "" {
			used[in.Arg1] = true
		}
		if in.Arg2 != "" {
			used[in.Arg2] = true
		}
	}

	kept := f.Instrs[:0]
	for _, in := range f.Instrs {
		if in.Op == OpAssign && !used[in.Dest] {
			continue
		}
		kept = append(kept, in)
	}
	f.Instrs = kept
}

// eliminateCommonSubexpressions keys every arithmetic/comparison
// instruction by its opcode and both operands; a repeated key is replaced
// with a copy from the previously computed destination. Intervening
// branches and redefinitions are ignored, which is unsound across
// conditional paths in the general case and kept that way on purpose.
func eliminateCommonSubexpressions(f *Function) {
	seen := make(map[string]string)
	for i := range f.Instrs {
		in := &f.Instrs[i]
		if !isBinaryOp(in.Op) {
			continue
		}
		key := in.Op + "\x00" + in.Arg1 + "\x00" + in.Arg2
		if prev, ok := seen[key]; ok {
			*in = Instr{Op: OpAssign, Arg1: prev, Dest: in.Dest}
			continue
		}
		seen[key] = in.Dest
	}
}

// tagLoops finds a label with a later GOTO back to it and an
// increment-by-one instruction inside the span, and marks that label as a
// loop head. The marker is cosmetic: the instruction sequence is left
// unchanged.
func tagLoops(f *Function) {
	for i := range f.Instrs {
		if f.Instrs[i].Op != OpLabel {
			continue
		}
		label := f.Instrs[i].Arg1
		for j := i + 1; j < len(f.Instrs); j++ {
			if f.Instrs[j].Op != OpGoto || f.Instrs[j].Arg1 != label {
				continue
			}
			for k := i + 1; k < j; k++ {
				in := f.Instrs[k]
				if (in.Op == "+" || in.Op == "-") && in.Arg2 == "1" {
					f.Instrs[i].LoopHead = true
					break
				}
			}
			break
		}
	}
}
