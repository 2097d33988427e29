package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CodeGen walks optimized three-address code and emits 32-bit x86-style
// assembly text. eax is the accumulator; every value lives in a frame
// slot. The output is a pure function of the input: functions are emitted
// in sorted-name order and nothing else influences line order.
type CodeGen struct {
	out     strings.Builder
	offsets map[string]int // operand name -> frame offset relative to ebp
	frame   int            // reserved frame bytes (4 per slot)
}

// condJumps maps a comparison opcode to its setcc suffix.
var condSuffix = map[string]string{
	"==": "e",
	"!=": "ne",
	"<":  "l",
	">":  "g",
	"<=": "le",
	">=": "ge",
}

// GenerateAssembly renders the optimized function map as assembly text:
// one data section with the runtime format strings, then one labeled
// block per function. Identical input produces byte-identical output.
func GenerateAssembly(funcs map[string]*Function) string {
	cg := &CodeGen{}

	cg.line("section .data")
	cg.line(`fmt_int:   db "%%d", 10, 0`)
	cg.line(`fmt_float: db "%%f", 10, 0`)
	cg.line(`fmt_str:   db "%%s", 10, 0`)
	cg.line("")
	cg.line("section .text")
	cg.line("global main")

	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cg.line("")
		cg.genFunction(funcs[name])
	}
	return cg.out.String()
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

// assignSlots computes the frame layout: parameters at positive offsets
// from ebp starting at +8 in declaration order, locals and temporaries at
// negative offsets in order of first appearance.
func (cg *CodeGen) assignSlots(f *Function) {
	cg.offsets = make(map[string]int)
	for i, p := range f.Params {
		cg.offsets[p] = 8 + 4*i
	}

	next := 0
	alloc := func(name string) {
		if name == "" || isNumeral(name) || strings.HasPrefix(name, `"`) {
			return
		}
		if _, ok := cg.offsets[name]; ok {
			return
		}
		next -= 4
		cg.offsets[name] = next
	}

	for _, in := range f.Instrs {
		switch in.Op {
		case OpLabel, OpGoto:
			// label operands are not values
		case OpIfFalse, OpParam, OpReturn:
			alloc(in.Arg1)
		case OpCall:
			alloc(in.Dest)
		default:
			alloc(in.Arg1)
			if isBinaryOp(in.Op) {
				alloc(in.Arg2)
			}
			alloc(in.Dest)
		}
	}
	cg.frame = -next
}

// operand resolves a TAC operand: numerals pass through, known slots
// become frame-relative memory operands, anything else stays a bare name.
func (cg *CodeGen) operand(name string) string {
	if isNumeral(name) {
		return name
	}
	if off, ok := cg.offsets[name]; ok {
		if off >= 0 {
			return fmt.Sprintf("[ebp+%d]", off)
		}
		return fmt.Sprintf("[ebp-%d]", -off)
	}
	return name
}

func (cg *CodeGen) genFunction(f *Function) {
	cg.assignSlots(f)

	cg.line("%s:", f.Name)
	cg.line("  push ebp")
	cg.line("  mov ebp, esp")
	cg.line("  sub esp, %d", cg.frame)

	for _, in := range f.Instrs {
		cg.genInstr(f, in)
	}

	// The per-function end label every RETURN jumps to, then the shared
	// epilogue.
	cg.line("%s_end:", f.Name)
	cg.line("  mov esp, ebp")
	cg.line("  pop ebp")
	cg.line("  ret")
}

// loadAccumulator moves operand into eax.
func (cg *CodeGen) loadAccumulator(operand string) {
	cg.line("  mov eax, %s", cg.operand(operand))
}

func (cg *CodeGen) genInstr(f *Function, in Instr) {
	switch in.Op {
	case OpLabel:
		// The entry label duplicates the function's own block label.
		if in.Arg1 == f.Name {
			return
		}
		if in.LoopHead {
			cg.line("%s: ; loop", in.Arg1)
			return
		}
		cg.line("%s:", in.Arg1)

	case OpGoto:
		cg.line("  jmp %s", in.Arg1)

	case OpIfFalse:
		cg.loadAccumulator(in.Arg1)
		cg.line("  cmp eax, 0")
		cg.line("  je %s", in.Arg2)

	case OpParam:
		cg.line("  push dword %s", cg.operand(in.Arg1))

	case OpCall:
		cg.line("  call %s", in.Arg1)
		// Arg2 is the argument count; an unparsable value gets no cleanup.
		if argc, err := strconv.Atoi(in.Arg2); err == nil && argc > 0 {
			cg.line("  add esp, %d", 4*argc)
		}
		if in.Dest != "" {
			cg.line("  mov %s, eax", cg.operand(in.Dest))
		}

	case OpReturn:
		if in.Arg1 != "" {
			cg.loadAccumulator(in.Arg1)
		}
		cg.line("  jmp %s_end", f.Name)

	case OpAssign:
		if isNumeral(in.Arg1) {
			cg.line("  mov dword %s, %s", cg.operand(in.Dest), in.Arg1)
			return
		}
		cg.loadAccumulator(in.Arg1)
		cg.line("  mov %s, eax", cg.operand(in.Dest))

	case "+", "-", "*":
		op := map[string]string{"+": "add", "-": "sub", "*": "imul"}[in.Op]
		cg.loadAccumulator(in.Arg1)
		cg.line("  %s eax, %s", op, cg.operand(in.Arg2))
		cg.line("  mov %s, eax", cg.operand(in.Dest))

	case "/", "%":
		cg.loadAccumulator(in.Arg1)
		cg.line("  cdq")
		divisor := cg.operand(in.Arg2)
		if isNumeral(in.Arg2) {
			// idiv takes no immediate operand.
			cg.line("  mov ecx, %s", divisor)
			cg.line("  idiv ecx")
		} else {
			cg.line("  idiv dword %s", divisor)
		}
		if in.Op == "%" {
			cg.line("  mov eax, edx")
		}
		cg.line("  mov %s, eax", cg.operand(in.Dest))

	case "==", "!=", "<", ">", "<=", ">=":
		cg.loadAccumulator(in.Arg1)
		cg.line("  cmp eax, %s", cg.operand(in.Arg2))
		cg.line("  set%s al", condSuffix[in.Op])
		cg.line("  movzx eax, al")
		cg.line("  mov %s, eax", cg.operand(in.Dest))
	}
}
