package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is one declared variable or parameter.
type Symbol struct {
	Name        string
	Type        string
	Scope       int // identifier of the owning scope; 0 is global
	Initialized bool
	Line        int
}

// SymbolTable tracks declarations across a stack of nested scopes.
// Scope 0 is the global scope; every function body, block and for-loop
// header gets a fresh synthetic scope id. Exited scopes stay recorded so
// the finished table can be inspected and dumped after analysis.
type SymbolTable struct {
	stack  []*scope
	nextID int

	// symbols holds every symbol ever declared, in declaration order.
	symbols []*Symbol
}

type scope struct {
	id    int
	names map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{}
	st.stack = []*scope{{id: 0, names: make(map[string]*Symbol)}}
	st.nextID = 1
	return st
}

// EnterScope pushes a fresh scope and returns its identifier.
func (st *SymbolTable) EnterScope() int {
	sc := &scope{id: st.nextID, names: make(map[string]*Symbol)}
	st.nextID++
	st.stack = append(st.stack, sc)
	return sc.id
}

func (st *SymbolTable) ExitScope() {
	if len(st.stack) > 1 {
		st.stack = st.stack[:len(st.stack)-1]
	}
}

// Declare adds name to the current scope. The second result is false when
// the name is already present in the current scope; the existing symbol
// is returned in that case.
func (st *SymbolTable) Declare(name, typ string, line int) (*Symbol, bool) {
	current := st.stack[len(st.stack)-1]
	if sym, ok := current.names[name]; ok {
		return sym, false
	}
	sym := &Symbol{Name: name, Type: typ, Scope: current.id, Line: line}
	current.names[name] = sym
	st.symbols = append(st.symbols, sym)
	return sym, true
}

// Lookup resolves name against the active scopes, innermost first,
// ending at the global scope.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for i := len(st.stack) - 1; i >= 0; i-- {
		if sym, ok := st.stack[i].names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Symbols returns every declared symbol in declaration order.
func (st *SymbolTable) Symbols() []*Symbol {
	return st.symbols
}

// String returns a deterministically ordered dump of the table.
func (st *SymbolTable) String() string {
	var sb strings.Builder
	byScope := make(map[int][]*Symbol)
	var ids []int
	for _, sym := range st.symbols {
		if _, ok := byScope[sym.Scope]; !ok {
			ids = append(ids, sym.Scope)
		}
		byScope[sym.Scope] = append(byScope[sym.Scope], sym)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if id == 0 {
			sb.WriteString("Scope 0 (global):\n")
		} else {
			fmt.Fprintf(&sb, "Scope %d:\n", id)
		}
		syms := byScope[id]
		sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
		for _, sym := range syms {
			fmt.Fprintf(&sb, "  %-16s %-8s initialized=%v line=%d\n",
				sym.Name, sym.Type, sym.Initialized, sym.Line)
		}
	}
	if len(st.symbols) == 0 {
		sb.WriteString("(empty)\n")
	}
	return sb.String()
}

// FuncSig is the signature of one callable, user-defined or builtin.
type FuncSig struct {
	Name       string
	Params     []Param
	ReturnType string
	Builtin    bool
	Variadic   bool // exempt from the argument-count check
}

func (f *FuncSig) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	if f.Variadic {
		params = append(params, "...")
	}
	return fmt.Sprintf("%s %s(%s)", f.ReturnType, f.Name, strings.Join(params, ", "))
}

// FuncTable maps function names to their signatures. Names are unique
// across the whole program.
type FuncTable struct {
	funcs map[string]*FuncSig
	order []string
}

func NewFuncTable() *FuncTable {
	return &FuncTable{funcs: make(map[string]*FuncSig)}
}

// Declare registers sig. The result is false when the name is taken.
func (ft *FuncTable) Declare(sig *FuncSig) bool {
	if _, ok := ft.funcs[sig.Name]; ok {
		return false
	}
	ft.funcs[sig.Name] = sig
	ft.order = append(ft.order, sig.Name)
	return true
}

func (ft *FuncTable) Get(name string) (*FuncSig, bool) {
	sig, ok := ft.funcs[name]
	return sig, ok
}

// String dumps the table in declaration order (builtins first, since they
// are seeded before user code).
func (ft *FuncTable) String() string {
	var sb strings.Builder
	for _, name := range ft.order {
		sig := ft.funcs[name]
		if sig.Builtin {
			fmt.Fprintf(&sb, "%s  [builtin]\n", sig)
		} else {
			fmt.Fprintf(&sb, "%s\n", sig)
		}
	}
	return sb.String()
}
