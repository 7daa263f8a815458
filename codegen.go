package main

// codegen.go - main code generator driver: the Generator struct, the
// program-wide pre-pass (DATA pool, line labels, GOSUB usage), label/string
// pool allocation, and the top-level statement dispatcher. Per-statement
// lowering lives in references.go (LET/variable storage), arithmetic.go
// (expressions), control_flow.go (IF/FOR/WHILE/DO/GOTO/SELECT/PRINT/INPUT),
// array.go (DIM/array load-store) and codegen_call.go (calls, SUB/FUNCTION
// frames).

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// varSlot is one scalar variable's storage: an 8-byte slot at -offset(rbp),
// or for String, two adjacent 8-byte slots (pointer at -offset, length at
// -(offset-8)).
type varSlot struct {
	offset int
	typ    DataType
}

// arrayInfo is one DIM'd array's bookkeeping: the pointer slot holding its
// heap base address, and the offsets of the per-dimension bound slots
// (each holds (bound+1), the already-incremented upper count).
type arrayInfo struct {
	ptrOffset int
	dimOffset []int
	elemType  DataType
}

// scope is one procedure's symbol table. Procedures fall back to main's
// scope for any name they don't declare themselves (spec.md §3's
// procedure-local-then-outer-fallback rule).
type scope struct {
	name       string
	parent     *scope
	vars       map[string]*varSlot
	arrays     map[string]*arrayInfo
	nextOffset int
}

func newScope(name string, parent *scope) *scope {
	return &scope{
		name:   name,
		parent: parent,
		vars:   make(map[string]*varSlot),
		arrays: make(map[string]*arrayInfo),
	}
}

func (s *scope) reserve(size int) int {
	s.nextOffset += size
	return s.nextOffset
}

func (s *scope) lookupVar(name string) (*varSlot, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.lookupVar(name)
	}
	return nil, false
}

func (s *scope) lookupArray(name string) (*arrayInfo, bool) {
	if a, ok := s.arrays[name]; ok {
		return a, true
	}
	if s.parent != nil {
		return s.parent.lookupArray(name)
	}
	return nil, false
}

// declareVar allocates storage for name in this scope if it doesn't already
// exist anywhere visible from here.
func (s *scope) declareVar(name string) *varSlot {
	if v, ok := s.lookupVar(name); ok {
		return v
	}
	typ := TypeForSuffix(name)
	size := SlotSize
	if typ == String {
		size = SlotSize * 2
	}
	off := s.reserve(size)
	v := &varSlot{offset: off, typ: typ}
	s.vars[name] = v
	return v
}

// procInfo records a SUB or FUNCTION's signature and label for call sites
// that appear lexically before its definition.
type procInfo struct {
	name     string
	isFunc   bool
	params   []Param
	body     []Stmt
	label    string
	retType  DataType
}

// Generator holds all state threaded through assembly generation for one
// compilation unit.
type Generator struct {
	abi ABI

	text strings.Builder
	data strings.Builder

	labelCount int

	stringPool  []string
	stringIndex map[string]int

	dataPool      []LiteralExpr
	dataAtLabel   map[int]int // line number -> data pool index reached just before it
	gosubUsed     bool
	lineLabels    map[int]string // global line-number -> asm label
	namedLabels   map[string]bool

	procs map[string]*procInfo

	mainScope *scope

	diagnostics *DiagnosticManager

	// scopes lists every scope (main, then each SUB/FUNCTION) whose
	// STACK_RESERVE placeholder has been emitted, so buildFinalAssembly can
	// patch each one exactly once.
	scopes []*scope
}

// NewGenerator creates a generator targeting abi, recording diagnostics
// into dm.
func NewGenerator(abi ABI, dm *DiagnosticManager) *Generator {
	return &Generator{
		abi:         abi,
		stringIndex: make(map[string]int),
		dataAtLabel: make(map[int]int),
		lineLabels:  make(map[int]string),
		namedLabels: make(map[string]bool),
		procs:       make(map[string]*procInfo),
		diagnostics: dm,
	}
}

func (g *Generator) emit(format string, args ...interface{}) {
	fmt.Fprintf(&g.text, "    "+format+"\n", args...)
}

func (g *Generator) emitRaw(s string) {
	g.text.WriteString(s)
}

func (g *Generator) emitLabel(label string) {
	g.text.WriteString(label + ":\n")
}

func (g *Generator) newLabel(prefix string) string {
	label := fmt.Sprintf("._%s_%d", prefix, g.labelCount)
	g.labelCount++
	return label
}

// internString appends s to the literal pool (if not already present) and
// returns its stable label.
func (g *Generator) internString(s string) string {
	if idx, ok := g.stringIndex[s]; ok {
		return fmt.Sprintf("%s%d", StringLabelPrefix, idx)
	}
	idx := len(g.stringPool)
	g.stringPool = append(g.stringPool, s)
	g.stringIndex[s] = idx
	return fmt.Sprintf("%s%d", StringLabelPrefix, idx)
}

// ---------------------------------------------------------------------
// Pre-pass: DATA pool, line labels, GOSUB-used flag. Recurses into every
// nested statement list the same way the reference generator's first pass
// does, so RESTORE <line> and the GOSUB return-stack BSS allocation are
// both resolved correctly regardless of how deeply DATA/GOSUB are nested.
// ---------------------------------------------------------------------

func (g *Generator) prepass(stmts []Stmt) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *LabelStmt:
			g.dataAtLabel[st.Line] = len(g.dataPool)
			if _, exists := g.lineLabels[st.Line]; !exists {
				g.lineLabels[st.Line] = fmt.Sprintf("%s%d", LineLabelPrefix, st.Line)
			}
		case *DataStmt:
			g.dataPool = append(g.dataPool, st.Values...)
		case *GosubStmt:
			g.gosubUsed = true
		case *IfStmt:
			g.prepass(st.Then)
			g.prepass(st.Else)
		case *ForStmt:
			g.prepass(st.Body)
		case *WhileStmt:
			g.prepass(st.Body)
		case *DoLoopStmt:
			g.prepass(st.Body)
		case *SelectCaseStmt:
			for _, arm := range st.Arms {
				g.prepass(arm.Body)
			}
		case *SubStmt:
			g.procs[st.Name] = &procInfo{name: st.Name, params: st.Params, body: st.Body, label: ProcLabelPrefix + st.Name}
			g.prepass(st.Body)
		case *FuncStmt:
			g.procs[st.Name] = &procInfo{name: st.Name, isFunc: true, params: st.Params, body: st.Body,
				label: ProcLabelPrefix + st.Name, retType: TypeForSuffix(st.Name)}
			g.prepass(st.Body)
		}
	}
}

// ---------------------------------------------------------------------
// Top-level statement dispatch
// ---------------------------------------------------------------------

// genStmt lowers one statement in sc. Procedure definitions are collected
// into defs rather than emitted inline, since BASIC's SUB/FUNCTION bodies
// are not part of the linear control flow of whichever block they appear
// textually within.
func (g *Generator) genStmt(s Stmt, sc *scope, defs *[]Stmt) {
	switch st := s.(type) {
	case *LabelStmt:
		g.emitLabel(g.lineLabels[st.Line])
	case *LetStmt:
		g.genLet(st, sc)
	case *PrintStmt:
		g.genPrint(st, sc)
	case *PrintFileStmt:
		g.genPrintFile(st, sc)
	case *InputStmt:
		g.genInput(st, sc)
	case *LineInputStmt:
		g.genLineInput(st, sc)
	case *InputFileStmt:
		g.genInputFile(st, sc)
	case *DimStmt:
		g.genDim(st, sc)
	case *IfStmt:
		g.genIf(st, sc, defs)
	case *ForStmt:
		g.genFor(st, sc, defs)
	case *WhileStmt:
		g.genWhile(st, sc, defs)
	case *DoLoopStmt:
		g.genDoLoop(st, sc, defs)
	case *GotoStmt:
		g.genGoto(st, sc)
	case *GosubStmt:
		g.genGosub(st, sc)
	case *ReturnStmt:
		g.genReturn(st, sc)
	case *OnGotoStmt:
		g.genOnGoto(st, sc)
	case *SelectCaseStmt:
		g.genSelectCase(st, sc, defs)
	case *DataStmt:
		// purely declarative; materialized into the data table by prepass.
	case *ReadStmt:
		g.genRead(st, sc)
	case *RestoreStmt:
		g.genRestore(st, sc)
	case *ClsStmt:
		g.call0(RtCls)
	case *EndStmt:
		g.genEnd(sc)
	case *StopStmt:
		g.genEnd(sc)
	case *CallStmt:
		g.genCallStmt(st, sc)
	case *OpenStmt:
		g.genOpen(st, sc)
	case *CloseStmt:
		g.genClose(st, sc)
	case *SubStmt, *FuncStmt:
		*defs = append(*defs, st)
	default:
		g.diagnostics.AddErrorWithCode(ErrInvalidStatement, CategorySyntax, fmt.Sprintf("unhandled statement %T", st), "", 0, 0, "")
	}
}

func (g *Generator) genBody(stmts []Stmt, sc *scope, defs *[]Stmt) {
	for _, s := range stmts {
		g.genStmt(s, sc, defs)
	}
}

// ---------------------------------------------------------------------
// Entry point
// ---------------------------------------------------------------------

// GenerateAssembly compiles prog into a complete Intel-syntax assembly
// program targeting abi.
func GenerateAssembly(prog *Program, abi ABI, dm *DiagnosticManager) (string, error) {
	g := NewGenerator(abi, dm)
	g.prepass(prog.Statements)

	g.mainScope = newScope("main", nil)
	g.scopes = append(g.scopes, g.mainScope)

	entry := abi.Sym("main")
	g.text.WriteString(fmt.Sprintf("%s %s\n", GlobalDirective, entry))
	g.text.WriteString(entry + ":\n")
	g.emit("push rbp")
	g.emit("mov rbp, rsp")
	g.text.WriteString(fmt.Sprintf(stackReservePlaceholderFmt, "main"))

	var defs []Stmt
	g.genBody(prog.Statements, g.mainScope, &defs)

	g.emit("xor eax, eax")
	g.emit("mov rsp, rbp")
	g.emit("pop rbp")
	g.emit("ret")

	for _, d := range defs {
		switch p := d.(type) {
		case *SubStmt:
			g.genProc(p.Name, false, p.Params, p.Body)
		case *FuncStmt:
			g.genProc(p.Name, true, p.Params, p.Body)
		}
	}

	asm := g.buildFinalAssembly()
	if dm.ErrorCount > 0 {
		return asm, errors.New("code generation produced errors")
	}
	return asm, nil
}

// buildFinalAssembly assembles the .data/.bss/.text sections, patches every
// scope's STACK_RESERVE placeholder now that its peak stack usage is known,
// and appends the runtime library text.
func (g *Generator) buildFinalAssembly() string {
	var b strings.Builder

	b.WriteString(IntelSyntaxDirective + "\n\n")

	// Intern DATA strings before the pool is written, so every string row
	// of the data table below refers to an emitted label.
	for _, lit := range g.dataPool {
		if lit.Kind == LitString {
			g.internString(lit.Str)
		}
	}

	b.WriteString(DataSectionDirective + "\n")
	for i, s := range g.stringPool {
		b.WriteString(fmt.Sprintf("%s%d:\n    .ascii \"%s\\0\"\n", StringLabelPrefix, i, escapeAssemblyString(s)))
	}
	if len(g.dataPool) > 0 {
		// Each row is three quads (tag, value, len) so READ can index with a
		// single fixed stride regardless of which literal kind it lands on;
		// len is unused except for LitString, where value is a string-label
		// address rather than a self-describing length-prefixed blob.
		b.WriteString(DataTableLabel + ":\n")
		for _, lit := range g.dataPool {
			switch lit.Kind {
			case LitInt:
				b.WriteString(fmt.Sprintf("    .quad 0, %d, 0\n", lit.Int))
			case LitFloat:
				b.WriteString(fmt.Sprintf("    .quad 1, %s, 0\n", floatBits(lit.Flt)))
			case LitString:
				label := g.internString(lit.Str)
				b.WriteString(fmt.Sprintf("    .quad 2, %s, %d\n", label, len(lit.Str)))
			}
		}
	}
	b.WriteString(fmt.Sprintf("%s:\n    .quad %d\n", DataCountLabel, len(g.dataPool)))
	b.WriteString("\n")

	b.WriteString(BSSSectionDirective + "\n")
	b.WriteString(fmt.Sprintf("%s:\n    .quad 0\n", DataPtrLabel))
	if g.gosubUsed {
		b.WriteString(fmt.Sprintf("%s:\n    .skip %d\n", GosubStackLabel, GosubStackSize))
		b.WriteString(fmt.Sprintf("%s:\n    .quad 0\n", GosubStackPtrLabel))
	}
	b.WriteString("\n")

	b.WriteString(TextSectionDirective + "\n")
	body := g.text.String()
	for _, sc := range g.scopes {
		reserved := roundUp16(sc.nextOffset)
		placeholder := fmt.Sprintf(stackReservePlaceholderFmt, sc.name)
		replacement := fmt.Sprintf("    sub rsp, %d\n", reserved)
		body = strings.Replace(body, placeholder, replacement, 1)
	}
	b.WriteString(body)
	b.WriteString("\n")

	b.WriteString(GenerateRuntime(g.abi))

	return b.String()
}

func roundUp16(n int) int {
	if n%StackAlignment == 0 {
		return n
	}
	return n + (StackAlignment - n%StackAlignment)
}

// floatBits renders f's raw IEEE-754 bit pattern as the operand to a .quad
// directive, since GNU `as` does not accept floating literals there.
func floatBits(f float64) string {
	return fmt.Sprintf("0x%016x", math.Float64bits(f))
}

// escapeAssemblyString escapes a Go string for embedding in a .ascii
// directive.
func escapeAssemblyString(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
