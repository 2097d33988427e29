package main

import (
	"fmt"
	"os"

	"minicc/pkg/compiler"
)

const testSource = `int add(int a, int b) {
	return a + b;
}

int main() {
	int x = 2 + 3;
	return add(x, 10);
}
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	// Lex
	tokens := compiler.Tokenize(src)
	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	prog, err := compiler.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}
	fmt.Println("AST")
	for _, d := range prog.Decls {
		fmt.Println(" ", d)
	}
	fmt.Println()

	// Analyze
	analysis := compiler.Analyze(prog)
	fmt.Println("Symbol table")
	fmt.Print(analysis.Symbols)
	fmt.Println("Function table")
	fmt.Print(analysis.Funcs)
	if len(analysis.Diagnostics) > 0 {
		fmt.Fprintf(os.Stderr, "%d diagnostic(s):\n", len(analysis.Diagnostics))
		for _, d := range analysis.Diagnostics {
			fmt.Fprintln(os.Stderr, " ", d)
		}
		os.Exit(1)
	}
	fmt.Println()

	// Lower to three-address code
	ir, err := compiler.GenerateIR(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ir error:", err)
		os.Exit(1)
	}
	fmt.Println("Three-address code")
	fmt.Print(compiler.FormatIR(ir))
	fmt.Println()

	// Optimize
	opt := compiler.Optimize(ir)
	fmt.Println("Optimized three-address code")
	fmt.Print(compiler.FormatIR(opt))
	fmt.Println()

	// Generate assembly
	fmt.Println("Generated assembly")
	fmt.Print(compiler.GenerateAssembly(opt))
}
