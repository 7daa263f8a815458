package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// flags.go - command-line surface (SPEC_FULL.md §6). Grounded on the
// teacher's flags.go shape (a FlagSet built in ParseFlags, returning
// options plus positional args), swapping stdlib flag for pflag so
// --long-name/-short forms come for free instead of the teacher's
// hand-rolled --token-dump normalization pass, and trimming every option
// this compiler's pipeline has no use for (Trimpath, IncludeDirs, docs).

// CompilerOptions holds all compiler configuration derived from argv.
type CompilerOptions struct {
	OutPath     string
	Target      string
	Verbose     bool
	TokenDump   bool
	EmitAsm     bool
	ShowStats   bool
	ShowTiming  bool
	ShowVersion bool
}

// ParseFlags parses command line arguments and returns compiler options
// plus the remaining positional arguments (the source file).
func ParseFlags(argv []string) (*CompilerOptions, []string, error) {
	opts := &CompilerOptions{}

	fs := pflag.NewFlagSet("xbc", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVarP(&opts.OutPath, "output", "o", "a.out", "write output to `file`")
	fs.StringVar(&opts.Target, "target", "linux", "target platform: linux, macos, or windows")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	fs.BoolVar(&opts.TokenDump, "token-dump", false, "print the token stream and exit")
	fs.BoolVarP(&opts.EmitAsm, "emit-asm", "S", false, "emit assembly to the output path instead of linking")
	fs.BoolVar(&opts.ShowStats, "stats", false, "print compilation statistics")
	fs.BoolVar(&opts.ShowTiming, "timing", false, "print per-phase timing")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print compiler version and exit")

	fs.Usage = func() {
		printUsage(os.Stderr)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(argv); err != nil {
		return nil, nil, err
	}

	switch opts.Target {
	case "linux", "macos", "windows":
	default:
		return nil, nil, fmt.Errorf("unknown target %q (want linux, macos, or windows)", opts.Target)
	}

	return opts, fs.Args(), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xbc [flags] <file.bas>")
	fmt.Fprintln(w, "Run 'xbc --help' for flag descriptions")
}
