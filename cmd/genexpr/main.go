package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

func main() {
	count := flag.Int("n", 100, "Number of expressions to generate")
	seed := flag.Uint64("seed", 0, "Random seed (default: time based)")
	depth := flag.Int("depth", 4, "Maximum nesting depth")
	outFile := flag.String("o", "", "Output file (default: stdout)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: genexpr [options]\n\nGenerates random expressions with their expected values, one \"<value> <expr>\" per line.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  genexpr -n 1000 -o exprs.txt\n")
		fmt.Fprintf(os.Stderr, "  riscvmon -exprtest exprs.txt\n")
	}
	flag.Parse()

	if *count < 0 || *depth < 0 {
		fmt.Fprintf(os.Stderr, "error: -n and -depth must not be negative\n")
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	var out io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if err := writeExprs(w, NewGenerator(*seed, *depth), *count); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func writeExprs(w io.Writer, g *Generator, n int) error {
	for range n {
		expr, v := g.Next()
		if _, err := fmt.Fprintf(w, "%d %s\n", v, expr); err != nil {
			return err
		}
	}
	return nil
}
