// Package compiler implements a compilation pipeline for a restricted
// C-like language: lexing, recursive-descent parsing, scope- and
// type-aware semantic analysis, lowering to three-address code, a fixed
// sequence of optimization passes, and 32-bit x86-style assembly output.
//
// Pipeline: source → Tokenize → Parse → Analyze → GenerateIR → Optimize → GenerateAssembly
package compiler
