package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Three-address code opcodes. Arithmetic and comparison instructions use
// the operator lexeme itself as the opcode.
const (
	OpAssign  = "="
	OpLabel   = "LABEL"
	OpGoto    = "GOTO"
	OpIfFalse = "IF_FALSE"
	OpParam   = "PARAM"
	OpCall    = "CALL"
	OpReturn  = "RETURN"
)

// Instr is one primitive three-address operation: an opcode, up to two
// source operands and one destination. Operands are literal numerals,
// named variables/parameters, generated temporaries or labels.
type Instr struct {
	Op   string
	Arg1 string
	Arg2 string
	Dest string

	// LoopHead is a cosmetic marker set by the loop-tagging pass on a
	// label that is the target of a counted back edge.
	LoopHead bool
}

func (in Instr) String() string {
	switch in.Op {
	case OpLabel:
		if in.LoopHead {
			return fmt.Sprintf("LABEL %s ; loop", in.Arg1)
		}
		return fmt.Sprintf("LABEL %s", in.Arg1)
	case OpGoto:
		return fmt.Sprintf("GOTO %s", in.Arg1)
	case OpIfFalse:
		return fmt.Sprintf("IF_FALSE %s GOTO %s", in.Arg1, in.Arg2)
	case OpParam:
		return fmt.Sprintf("PARAM %s", in.Arg1)
	case OpCall:
		if in.Dest == "" {
			return fmt.Sprintf("CALL %s, %s", in.Arg1, in.Arg2)
		}
		return fmt.Sprintf("%s = CALL %s, %s", in.Dest, in.Arg1, in.Arg2)
	case OpReturn:
		if in.Arg1 == "" {
			return "RETURN"
		}
		return fmt.Sprintf("RETURN %s", in.Arg1)
	case OpAssign:
		return fmt.Sprintf("%s = %s", in.Dest, in.Arg1)
	default:
		return fmt.Sprintf("%s = %s %s %s", in.Dest, in.Arg1, in.Op, in.Arg2)
	}
}

// isControl reports whether op is a control-flow opcode. The optimizer
// passes these through untouched.
func isControl(op string) bool {
	return op == OpLabel || op == OpGoto || op == OpIfFalse
}

// isBinaryOp reports whether op is an arithmetic or comparison opcode.
func isBinaryOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%", "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// Function is the three-address form of one compiled function. The
// instruction order is the only control-flow representation.
type Function struct {
	Name      string
	Params    []string // parameter names in declaration order
	Instrs    []Instr
	TempCount int // number of temporaries generated so far
}

func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%s):\n", f.Name, strings.Join(f.Params, ", "))
	for _, in := range f.Instrs {
		fmt.Fprintf(&sb, "  %s\n", in)
	}
	return sb.String()
}

// clone deep-copies the function so optimization never mutates its input.
func (f *Function) clone() *Function {
	out := &Function{Name: f.Name, TempCount: f.TempCount}
	out.Params = append([]string(nil), f.Params...)
	out.Instrs = append([]Instr(nil), f.Instrs...)
	return out
}

// FormatIR renders a function map deterministically, in sorted-name
// order, for display and tests.
func FormatIR(funcs map[string]*Function) string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(funcs[name].String())
	}
	return sb.String()
}

// isNumeral reports whether operand is a literal numeral. Folded
// constants may carry a leading minus sign.
func isNumeral(operand string) bool {
	if operand == "" {
		return false
	}
	if operand[0] == '-' {
		operand = operand[1:]
	}
	return operand != "" && numberPat.MatchString(operand)
}
