package compiler

import "fmt"

// Result carries every artifact produced by one pipeline run. Stages that
// were not reached are left at their zero value.
type Result struct {
	Tokens      []Token
	Program     *Program
	Analysis    *Analysis
	IR          map[string]*Function
	OptimizedIR map[string]*Function
	Assembly    string
}

// Compile runs the whole pipeline over src. Each stage gets fresh state,
// so repeated calls on edited source are independent and identical input
// yields identical output. IR generation is gated on an empty diagnostics
// list; a failed stage returns the partial Result alongside the error so
// callers can still display what was produced.
func Compile(src string) (*Result, error) {
	res := &Result{Tokens: Tokenize(src)}

	prog, err := Parse(res.Tokens)
	if err != nil {
		return res, err
	}
	res.Program = prog

	res.Analysis = Analyze(prog)
	if n := len(res.Analysis.Diagnostics); n > 0 {
		return res, fmt.Errorf("analysis reported %d diagnostic(s)", n)
	}

	ir, err := GenerateIR(prog)
	if err != nil {
		return res, err
	}
	res.IR = ir

	res.OptimizedIR = Optimize(ir)
	res.Assembly = GenerateAssembly(res.OptimizedIR)
	return res, nil
}
