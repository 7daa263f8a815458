package main

import (
	"fmt"
	"time"
)

// stats.go - compilation statistics and metrics tracking (--stats,
// --timing flags), adapted from the teacher's CompilationStats nearly
// verbatim; import/stdlib counters are replaced with procedure/array
// counters, the only metrics this pipeline's phases actually produce.

// CompilationStats tracks metrics across one compilation's phases.
type CompilationStats struct {
	StartTime    time.Time
	TokenizeTime time.Duration
	ParseTime    time.Duration
	CodegenTime  time.Duration
	AssembleTime time.Duration
	LinkTime     time.Duration
	TotalTime    time.Duration

	SourceFile  string
	SourceLines int
	SourceBytes int

	TokenCount int

	ASTNodeCount  int
	ProcCount     int
	VariableCount int
	ArrayCount    int

	AssemblyLines   int
	AssemblyBytes   int
	DataSectionSize int

	OutputFile  string
	OutputBytes int
}

// NewCompilationStats creates a tracker for sourceFile, starting its clock.
func NewCompilationStats(sourceFile string) *CompilationStats {
	return &CompilationStats{StartTime: time.Now(), SourceFile: sourceFile}
}

func (cs *CompilationStats) RecordTokenization(duration time.Duration, tokenCount int) {
	cs.TokenizeTime = duration
	cs.TokenCount = tokenCount
}

func (cs *CompilationStats) RecordParsing(duration time.Duration, astNodeCount, procCount int) {
	cs.ParseTime = duration
	cs.ASTNodeCount = astNodeCount
	cs.ProcCount = procCount
}

func (cs *CompilationStats) RecordCodegen(duration time.Duration, asmLines, asmBytes, dataSize int) {
	cs.CodegenTime = duration
	cs.AssemblyLines = asmLines
	cs.AssemblyBytes = asmBytes
	cs.DataSectionSize = dataSize
}

func (cs *CompilationStats) RecordAssemble(duration time.Duration) { cs.AssembleTime = duration }

func (cs *CompilationStats) RecordLink(duration time.Duration, outputFile string, outputBytes int) {
	cs.LinkTime = duration
	cs.OutputFile = outputFile
	cs.OutputBytes = outputBytes
}

func (cs *CompilationStats) Finalize() { cs.TotalTime = time.Since(cs.StartTime) }

// Print outputs a formatted statistics report (--stats).
func (cs *CompilationStats) Print() {
	fmt.Println("\n=== Compilation Statistics ===")
	fmt.Printf("Source: %s\n", cs.SourceFile)
	if cs.SourceLines > 0 {
		fmt.Printf("  Lines: %d\n", cs.SourceLines)
	}
	if cs.SourceBytes > 0 {
		fmt.Printf("  Size: %s\n", formatBytes(cs.SourceBytes))
	}

	fmt.Println("\nPhases:")
	if cs.TokenizeTime > 0 {
		fmt.Printf("  Tokenize: %s (%d tokens)\n", cs.TokenizeTime, cs.TokenCount)
	}
	if cs.ParseTime > 0 {
		fmt.Printf("  Parse:    %s (%d statements, %d procedures)\n", cs.ParseTime, cs.ASTNodeCount, cs.ProcCount)
	}
	if cs.CodegenTime > 0 {
		fmt.Printf("  Codegen:  %s (%d lines, %s)\n", cs.CodegenTime, cs.AssemblyLines, formatBytes(cs.AssemblyBytes))
	}
	if cs.AssembleTime > 0 {
		fmt.Printf("  Assemble: %s\n", cs.AssembleTime)
	}
	if cs.LinkTime > 0 {
		fmt.Printf("  Link:     %s\n", cs.LinkTime)
	}

	if cs.OutputFile != "" {
		fmt.Printf("\nOutput: %s", cs.OutputFile)
		if cs.OutputBytes > 0 {
			fmt.Printf(" (%s)", formatBytes(cs.OutputBytes))
		}
		fmt.Println()
	}

	fmt.Printf("\nTotal Time: %s\n", cs.TotalTime)
	fmt.Println("==============================")
}

func formatBytes(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
