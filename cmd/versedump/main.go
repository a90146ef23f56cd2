package main

import (
	"fmt"
	"os"

	"versec/pkg/compiler"
)

const testSource = `let x = 2 + 3 * 4;
let s = "hi\n";
print(x);
print(s);
if (x > 10) { x = 1; };
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

	src = compiler.JoinLines(src)
	fmt.Printf("Source:\n%s\n\n", src)

	c := compiler.New(compiler.Options{Verify: true})
	res, err := c.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(res.Tokens))
	for _, tok := range res.Tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	fmt.Println("AST")
	for _, s := range res.Program.Stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()

	fmt.Println("Generated Assembly")
	fmt.Print(res.Assembly)
	fmt.Println()
	fmt.Print(res.Symbols)
	fmt.Println()

	// Listing check
	fmt.Printf("Labels (%d conditionals)\n", c.Labels().Last())
	for _, name := range res.Listing.SortedLabels() {
		fmt.Printf("  %-16s line %d\n", name, res.Listing.Labels[name])
	}
	fmt.Printf("Instructions: %d\n", res.Listing.Instructions)
}
