package main

// diagnostics.go - compiler diagnostic collection and stderr rendering
// (spec.md §7). Error taxonomy narrowed from the teacher's ten-category
// enum to the three phases this compiler actually has: lexical, syntax,
// and toolchain (assembler/linker) failures. Type and scoping problems are
// folded into Syntax, since this generator resolves types inline during a
// single code-generation pass rather than running a separate semantic
// phase (see DESIGN.md).

import (
	"fmt"
	"os"
	"strings"
)

// DiagnosticLevel is the severity of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

// DiagnosticCategory is one of spec.md §7's three error taxonomies, or
// CategoryGeneral for uncategorized diagnostics.
type DiagnosticCategory string

const (
	CategoryLexical   DiagnosticCategory = "lexical"
	CategorySyntax    DiagnosticCategory = "syntax"
	CategoryToolchain DiagnosticCategory = "toolchain"
	CategoryGeneral   DiagnosticCategory = "general"
)

// Diagnostic is a single compiler diagnostic message.
type Diagnostic struct {
	Level      DiagnosticLevel
	Category   DiagnosticCategory
	Code       ErrorCode
	Message    string
	FilePath   string
	Line       int
	Column     int
	EndColumn  int
	Context    string
	Suggestion string
	Notes      []string
}

// DiagnosticManager collects and renders diagnostics for one compilation.
type DiagnosticManager struct {
	Diagnostics   []Diagnostic
	ErrorCount    int
	WarnCount     int
	MaxErrors     int
	TreatWarnErr  bool
	SuppressWarns bool
	UseColor      bool
	SourceLines   map[string][]string
}

// NewDiagnosticManager creates a manager with defaults matching the
// teacher's (20-error cap, color on).
func NewDiagnosticManager() *DiagnosticManager {
	return &DiagnosticManager{
		MaxErrors:   20,
		UseColor:    true,
		SourceLines: make(map[string][]string),
	}
}

func (dm *DiagnosticManager) SetSourceLines(filePath, source string) {
	dm.SourceLines[filePath] = strings.Split(source, "\n")
}

func (dm *DiagnosticManager) getSourceLine(filePath string, line int) string {
	if lines, ok := dm.SourceLines[filePath]; ok && line > 0 && line <= len(lines) {
		return lines[line-1]
	}
	return ""
}

// AddError adds a general, uncategorized error (rarely used directly;
// prefer AddErrorWithCode).
func (dm *DiagnosticManager) AddError(message, filePath string, line, column int, context string) {
	dm.AddErrorWithCode("", CategoryGeneral, message, filePath, line, column, context)
}

// AddErrorWithCode adds a categorized, coded error.
func (dm *DiagnosticManager) AddErrorWithCode(code ErrorCode, category DiagnosticCategory, message, filePath string, line, column int, context string) {
	if dm.ErrorCount >= dm.MaxErrors {
		return
	}
	dm.Diagnostics = append(dm.Diagnostics, Diagnostic{
		Level: DiagnosticError, Category: category, Code: code,
		Message: message, FilePath: filePath, Line: line, Column: column, Context: context,
	})
	dm.ErrorCount++
}

func (dm *DiagnosticManager) AddWarning(message, filePath string, line, column int, context string) {
	if dm.SuppressWarns {
		return
	}
	level := DiagnosticWarning
	if dm.TreatWarnErr {
		level = DiagnosticError
		dm.ErrorCount++
	} else {
		dm.WarnCount++
	}
	dm.Diagnostics = append(dm.Diagnostics, Diagnostic{
		Level: level, Category: CategoryGeneral,
		Message: message, FilePath: filePath, Line: line, Column: column, Context: context,
	})
}

func (dm *DiagnosticManager) HasErrors() bool { return dm.ErrorCount > 0 }

func (dm *DiagnosticManager) ReachedMaxErrors() bool { return dm.ErrorCount >= dm.MaxErrors }

// Print renders every collected diagnostic to stderr.
func (dm *DiagnosticManager) Print() {
	for _, diag := range dm.Diagnostics {
		dm.printDiagnostic(diag)
	}
	if dm.ErrorCount > 0 || dm.WarnCount > 0 {
		summaryColor, resetColor := "", ""
		if dm.UseColor {
			if dm.ErrorCount > 0 {
				summaryColor = "\033[1;31m"
			} else {
				summaryColor = "\033[1;33m"
			}
			resetColor = "\033[0m"
		}
		fmt.Fprintf(os.Stderr, "%s", summaryColor)
		if dm.ErrorCount > 0 {
			fmt.Fprintf(os.Stderr, "%d error(s)", dm.ErrorCount)
			if dm.WarnCount > 0 {
				fmt.Fprintf(os.Stderr, " and ")
			}
		}
		if dm.WarnCount > 0 {
			fmt.Fprintf(os.Stderr, "%d warning(s)", dm.WarnCount)
		}
		fmt.Fprintf(os.Stderr, " generated.%s\n", resetColor)
		if dm.ReachedMaxErrors() {
			fmt.Fprintf(os.Stderr, "note: compilation stopped after %d errors\n", dm.MaxErrors)
		}
	}
}

func (dm *DiagnosticManager) printDiagnostic(diag Diagnostic) {
	var levelStr, colorCode, boldCode, cyanCode, resetColor string
	if dm.UseColor {
		resetColor, boldCode, cyanCode = "\033[0m", "\033[1m", "\033[36m"
	}
	switch diag.Level {
	case DiagnosticError:
		levelStr = "error"
		if dm.UseColor {
			colorCode = "\033[1;31m"
		}
	case DiagnosticWarning:
		levelStr = "warning"
		if dm.UseColor {
			colorCode = "\033[1;33m"
		}
	case DiagnosticInfo:
		levelStr = "info"
		if dm.UseColor {
			colorCode = "\033[1;36m"
		}
	case DiagnosticHint:
		levelStr = "hint"
		if dm.UseColor {
			colorCode = "\033[1;32m"
		}
	}

	codeStr := ""
	if diag.Code != "" {
		codeStr = fmt.Sprintf("[%s] ", diag.Code)
	}

	if diag.FilePath != "" {
		fmt.Fprintf(os.Stderr, "%s%s:%d:%d:%s %s%s%s:%s %s\n",
			boldCode, diag.FilePath, diag.Line, diag.Column, resetColor,
			colorCode, levelStr, resetColor, codeStr, diag.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s%s%s: %s%s\n", colorCode, levelStr, resetColor, codeStr, diag.Message)
	}

	if diag.Context != "" {
		lines := strings.Split(diag.Context, "\n")
		lineNumWidth := len(fmt.Sprintf("%d", diag.Line+len(lines)))
		for i, line := range lines {
			if line != "" {
				fmt.Fprintf(os.Stderr, " %s%*d |%s %s\n", cyanCode, lineNumWidth, diag.Line+i, resetColor, line)
			}
		}
		if diag.Column > 0 && len(lines) > 0 {
			padding := strings.Repeat(" ", lineNumWidth+3+diag.Column-1)
			underlineLen := 1
			if diag.EndColumn > diag.Column {
				underlineLen = diag.EndColumn - diag.Column
			}
			fmt.Fprintf(os.Stderr, " %s%s%s%s\n", padding, colorCode, strings.Repeat("^", underlineLen), resetColor)
		}
	}

	if diag.Suggestion != "" {
		suggColor := ""
		if dm.UseColor {
			suggColor = "\033[1;32m"
		}
		fmt.Fprintf(os.Stderr, "   %ssuggestion:%s %s\n", suggColor, resetColor, diag.Suggestion)
	}
	for _, note := range diag.Notes {
		noteColor := ""
		if dm.UseColor {
			noteColor = "\033[36m"
		}
		fmt.Fprintf(os.Stderr, "   %snote:%s %s\n", noteColor, resetColor, note)
	}
	fmt.Fprintf(os.Stderr, "\n")
}
