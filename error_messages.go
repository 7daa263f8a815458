package main

// error_messages.go - human-friendly diagnostic codes and templates
// (spec.md §7). The teacher's four-family ErrorCode scheme is narrowed to
// the three taxonomies this pipeline actually has: lexical (E01xx), syntax
// (E02xx), and toolchain - assembler/linker - failures (E03xx).

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrorCode is a stable, documented diagnostic identifier.
type ErrorCode string

const (
	// Lexical errors (E01xx).
	ErrUnterminatedString ErrorCode = "E0101"
	ErrUnknownCharacter   ErrorCode = "E0102"
	ErrInvalidNumber      ErrorCode = "E0103"
	ErrInvalidHex         ErrorCode = "E0104"

	// Syntax errors (E02xx).
	ErrUnexpectedToken   ErrorCode = "E0201"
	ErrExpectedToken     ErrorCode = "E0202"
	ErrMalformedBlock    ErrorCode = "E0203"
	ErrInvalidStatement  ErrorCode = "E0204"
	ErrUnknownIdentifier ErrorCode = "E0205"
	ErrArityMismatch     ErrorCode = "E0206"

	// Toolchain errors (E03xx).
	ErrAssembleFailed ErrorCode = "E0301"
	ErrLinkFailed     ErrorCode = "E0302"
	ErrUnknownTarget  ErrorCode = "E0303"
)

// ParseError is a detailed parse-phase error with optional source context.
type ParseError struct {
	Code       ErrorCode
	Message    string
	FilePath   string
	Line       int
	Column     int
	Context    string
	Suggestion string
	Notes      []string
}

func (e *ParseError) Error() string { return e.Message }

// NewParseError creates a ParseError with the given code/message/location.
func NewParseError(code ErrorCode, msg string, line, col int) *ParseError {
	return &ParseError{Code: code, Message: msg, Line: line, Column: col}
}

func (e *ParseError) WithContext(context string) *ParseError {
	e.Context = context
	return e
}

func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestion = suggestion
	return e
}

func (e *ParseError) WithNote(note string) *ParseError {
	e.Notes = append(e.Notes, note)
	return e
}

// FormatExpectedToken renders "expected X, got Y [value]".
func FormatExpectedToken(expected, got TokenType, gotValue string) string {
	msg := fmt.Sprintf("expected %s, got %s", expected, got)
	if gotValue != "" && got == TokenIdent {
		msg += fmt.Sprintf(" %q", gotValue)
	}
	return msg
}

// FormatUnexpectedToken renders "unexpected X [value] [context]".
func FormatUnexpectedToken(got TokenType, gotValue, context string) string {
	msg := fmt.Sprintf("unexpected %s", got)
	if gotValue != "" && got == TokenIdent {
		msg += fmt.Sprintf(" %q", gotValue)
	}
	if context != "" {
		msg += " " + context
	}
	return msg
}

// basicKeywords is the typo-suggestion dictionary: every keyword spelling
// the lexer recognizes.
var basicKeywords = lo.Keys(keywordTable)

// keywordDist pairs a candidate keyword with its edit distance from the
// identifier being diagnosed.
type keywordDist struct {
	kw   string
	dist int
}

// SuggestForTypo finds the closest known keyword to an unrecognized
// identifier, for "did you mean X?" diagnostics. Candidate distances are
// computed with lo.Map and the closest picked with lo.MinBy, the same
// collect-then-reduce shape the teacher's retrieval-ranking code uses for
// picking a best-scoring candidate out of a slice.
func SuggestForTypo(typo string) string {
	typoUpper := strings.ToUpper(typo)
	candidates := lo.Map(basicKeywords, func(kw string, _ int) keywordDist {
		return keywordDist{kw: kw, dist: levenshteinDistance(typoUpper, kw)}
	})
	best := lo.MinBy(candidates, func(item, min keywordDist) bool {
		return item.dist < min.dist
	})
	if best.dist >= 3 {
		return ""
	}
	return fmt.Sprintf("did you mean %s?", best.kw)
}

// levenshteinDistance computes edit distance between two strings.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			min := curr[j-1] + 1
			if prev[j]+1 < min {
				min = prev[j] + 1
			}
			if prev[j-1]+cost < min {
				min = prev[j-1] + cost
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Common diagnostic message templates used across the parser/generator.
var (
	MsgMissingCondition  = "expected a condition expression"
	MsgMissingExpression = "expected an expression"
	MsgMissingIdentifier = "expected an identifier"
	MsgUnterminatedBlock = "block was never closed"
)
