package main

import (
	"fmt"
	"os"
)

// main.go - CLI entry point (SPEC_FULL.md §6). Grounded on the teacher's
// run()-returns-exit-code shape, trimmed of the docs subsystem (dropped,
// see DESIGN.md) and wired to the pflag-based ParseFlags/rewritten
// Compiler pipeline.

func main() {
	os.Exit(run())
}

// run orchestrates CLI parsing and compilation, returning a process exit code.
func run() int {
	opts, args, err := ParseFlags(os.Args[1:])
	if err != nil {
		return 2
	}

	if opts.ShowVersion {
		fmt.Printf("xbc %s\n", CompilerVersion)
		return 0
	}

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error: no input file specified")
		printUsage(os.Stderr)
		return 1
	}

	compiler := NewCompiler(opts)
	if err := compiler.CompileFile(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "xbc: %v\n", err)
		return 1
	}

	return 0
}
