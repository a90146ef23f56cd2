// Package compiler provides the lexer, parser and code generator for a
// small imperative scripting language (let, if/else, for, print) that
// targets 32-bit x86 NASM linked against the C runtime.
//
// Pipeline: source → Lex → Parse → Generate → NASM assembly text
//
// Arithmetic is folded while generating; the emitted program only
// contains stores, increments, compare-and-branch, printf and exit
// calls, and a data section built from the symbol table.
package compiler
