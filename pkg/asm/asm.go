// Package asm checks NASM listings produced by the compiler. It does not
// encode machine code: it runs the two usual assembler passes to prove
// that every label is unique, every jump and memory operand resolves, and
// every instruction is one the 32-bit target accepts.
package asm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// operandCounts lists the instructions the compiler emits together with
// the number of operands each takes.
var operandCounts = map[string]int{
	"mov":  2,
	"add":  2,
	"sub":  2,
	"cmp":  2,
	"push": 1,
	"call": 1,
	"jmp":  1,
	"je":   1,
	"jne":  1,
	"jl":   1,
	"jle":  1,
	"jg":   1,
	"jge":  1,
}

// branchOps take a code label as their only operand.
var branchOps = map[string]bool{
	"jmp": true, "je": true, "jne": true, "jl": true,
	"jle": true, "jg": true, "jge": true, "call": true,
}

var dataDirectives = map[string]bool{
	"db":  true,
	"dw":  true,
	"dd":  true,
	"equ": true,
}

var sizeKeywords = map[string]bool{
	"byte":  true,
	"word":  true,
	"dword": true,
}

var registers = map[string]bool{
	"eax": true, "ebx": true, "ecx": true, "edx": true,
	"esi": true, "edi": true, "esp": true, "ebp": true,
}

// Listing summarises a listing that passed Check.
type Listing struct {
	Labels       map[string]int // code label -> 1-based line
	Symbols      map[string]int // data symbol -> 1-based line
	Externs      []string
	Globals      []string
	Sections     []string // in order of appearance
	Instructions int
}

// SortedLabels returns the code labels in name order.
func (l *Listing) SortedLabels() []string {
	names := make([]string, 0, len(l.Labels))
	for name := range l.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Checker struct {
	listing *Listing
	section string
}

type parsedLine struct {
	lineNo    int
	labels    []string
	mnemonic  string   // instruction or directive, lower case
	operands  []string // comma-separated operands, trimmed
	symbol    string   // data definition name ("x" in "x dd 5")
	directive string   // data directive ("dd")
}

func NewChecker() *Checker {
	return &Checker{
		listing: &Listing{
			Labels:  make(map[string]int),
			Symbols: make(map[string]int),
		},
	}
}

// Check validates code and returns its summary.
func Check(code string) (*Listing, error) {
	return NewChecker().Check(code)
}

func (c *Checker) Check(code string) (*Listing, error) {
	lines := strings.Split(code, "\n")

	if err := c.pass1(lines); err != nil {
		return nil, err
	}
	if err := c.pass2(lines); err != nil {
		return nil, err
	}
	return c.listing, nil
}

// pass1 records every label, data symbol, extern and section.
func (c *Checker) pass1(lines []string) error {
	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if err := c.define(c.listing.Labels, lbl, lineNo); err != nil {
				return err
			}
		}

		if p.symbol != "" {
			if err := c.define(c.listing.Symbols, p.symbol, lineNo); err != nil {
				return err
			}
			continue
		}

		switch p.mnemonic {
		case "section":
			if len(p.operands) != 1 {
				return fmt.Errorf("section expects exactly one operand on line %d", lineNo)
			}
			c.listing.Sections = append(c.listing.Sections, p.operands[0])
		case "extern":
			c.listing.Externs = append(c.listing.Externs, p.operands...)
		case "global":
			c.listing.Globals = append(c.listing.Globals, p.operands...)
		}
	}
	return nil
}

func (c *Checker) define(table map[string]int, name string, lineNo int) error {
	if !isIdentifier(name) {
		return fmt.Errorf("invalid label '%s' on line %d", name, lineNo)
	}
	if _, exists := c.listing.Labels[name]; exists {
		return fmt.Errorf("duplicate label '%s' on line %d", name, lineNo)
	}
	if _, exists := c.listing.Symbols[name]; exists {
		return fmt.Errorf("duplicate label '%s' on line %d", name, lineNo)
	}
	table[name] = lineNo
	return nil
}

func (c *Checker) isExtern(name string) bool {
	for _, e := range c.listing.Externs {
		if e == name {
			return true
		}
	}
	return false
}

// pass2 validates instructions and resolves their operands.
func (c *Checker) pass2(lines []string) error {
	c.section = ""
	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		if p.symbol != "" {
			if c.section != ".data" {
				return fmt.Errorf("data definition '%s' outside .data on line %d", p.symbol, lineNo)
			}
			continue
		}

		switch p.mnemonic {
		case "":
			continue
		case "section":
			c.section = p.operands[0]
			continue
		case "extern":
			continue
		case "global":
			for _, g := range p.operands {
				if _, ok := c.listing.Labels[g]; !ok {
					return fmt.Errorf("global '%s' is never defined (line %d)", g, lineNo)
				}
			}
			continue
		}

		want, ok := operandCounts[p.mnemonic]
		if !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}
		if c.section != ".text" {
			return fmt.Errorf("instruction outside .text on line %d: %s", lineNo, p.mnemonic)
		}
		if len(p.operands) != want {
			return fmt.Errorf("%s expects %d operand(s) on line %d", p.mnemonic, want, lineNo)
		}

		for _, op := range p.operands {
			if err := c.checkOperand(p.mnemonic, op, lineNo); err != nil {
				return err
			}
		}
		c.listing.Instructions++
	}
	return nil
}

func (c *Checker) checkOperand(mnemonic, op string, lineNo int) error {
	fields := strings.Fields(op)
	if len(fields) > 1 && sizeKeywords[strings.ToLower(fields[0])] {
		op = strings.TrimSpace(strings.Join(fields[1:], " "))
	}

	if strings.HasPrefix(op, "[") {
		if !strings.HasSuffix(op, "]") {
			return fmt.Errorf("unbalanced memory operand '%s' on line %d", op, lineNo)
		}
		inner := strings.TrimSpace(op[1 : len(op)-1])
		if _, ok := c.listing.Symbols[inner]; !ok {
			return fmt.Errorf("undefined data symbol '%s' on line %d", inner, lineNo)
		}
		return nil
	}

	if branchOps[mnemonic] {
		if _, ok := c.listing.Labels[op]; ok {
			return nil
		}
		if mnemonic == "call" && c.isExtern(op) {
			return nil
		}
		return fmt.Errorf("undefined label '%s' on line %d", op, lineNo)
	}

	if registers[strings.ToLower(op)] {
		return nil
	}
	if _, err := strconv.ParseInt(op, 10, 64); err == nil {
		return nil
	}
	if _, ok := c.listing.Symbols[op]; ok {
		return nil
	}
	if isIdentifier(op) {
		return fmt.Errorf("undefined symbol '%s' on line %d", op, lineNo)
	}
	return fmt.Errorf("invalid operand '%s' on line %d", op, lineNo)
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}
		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t\"") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}
		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(line)
	if len(fields) >= 2 && dataDirectives[strings.ToLower(fields[1])] {
		if !isIdentifier(fields[0]) {
			return p, fmt.Errorf("invalid data symbol '%s' on line %d", fields[0], lineNo)
		}
		if _, ok := operandCounts[strings.ToLower(fields[0])]; ok {
			return p, fmt.Errorf("data symbol '%s' is an instruction name on line %d", fields[0], lineNo)
		}
		p.symbol = fields[0]
		p.directive = strings.ToLower(fields[1])
		if len(fields) < 3 {
			return p, fmt.Errorf("%s '%s' has no value on line %d", p.directive, p.symbol, lineNo)
		}
		return p, nil
	}

	p.mnemonic = strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])
	if rest == "" {
		return p, nil
	}
	for _, op := range strings.Split(rest, ",") {
		op = strings.TrimSpace(op)
		if op == "" {
			return p, fmt.Errorf("empty operand on line %d", lineNo)
		}
		p.operands = append(p.operands, op)
	}
	return p, nil
}

// stripComments removes a ';' comment, ignoring semicolons inside quoted
// data strings.
func stripComments(line string) string {
	inQuote := false
	for i, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return line[:i]
		}
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' && r != '.' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
