package main

// codegen_call.go - the uniform ABI-aware call builder and SUB/FUNCTION
// frame codegen. One marshalling routine serves every call site (user
// procedures and every builtin, including the five-argument INSTR case
// the teacher's generator hand-rolled separately) rather than each call
// site open-coding its own register shuffle, per the unified-call-builder
// redesign. Grounded on original_source/src/codegen.rs's call-lowering
// pass, generalized from its single fixed calling convention to the three
// selectable ABIs abi.go exposes.

import (
	"fmt"
	"strings"
)

// alignAndCall calls an external (runtime/libc) symbol whose arguments the
// caller has already placed in the right registers by hand, applying the
// active ABI's symbol prefix and Win64 shadow-space convention.
func (g *Generator) alignAndCall(sym string) {
	if g.abi.IsWin64 {
		g.emit("sub rsp, %d", Win64ShadowSpace)
	}
	g.emit("call %s", g.abi.Sym(sym))
	if g.abi.IsWin64 {
		g.emit("add rsp, %d", Win64ShadowSpace)
	}
}

func (g *Generator) call0(sym string) {
	g.alignAndCall(sym)
}

// argSlot is one flattened 8-byte argument-passing unit: either a numeric
// value (raw Double bit pattern) or one half of a String's ptr:len pair.
type argSlot struct {
	off int // byte offset from the stable buffer-base register r11
}

// marshalArgs evaluates args left to right, spilling each to its own
// 16-byte temp slot, then flattens them into 8-byte passing units (Strings
// contribute two) and places as many as fit into the ABI's integer
// argument registers, with any overflow passed on the stack.
func (g *Generator) marshalArgs(args []Expr, sc *scope) int {
	n := len(args)
	types := make([]DataType, n)
	for i, a := range args {
		t := g.genExpr(a, sc)
		types[i] = t
		g.emit("sub rsp, %d", TempSlotSize)
		if t == String {
			g.emit("mov [rsp], rax")
			g.emit("mov [rsp+8], rdx")
		} else {
			g.coerceCanonical(t, Double)
			g.emit("movq rax, xmm0")
			g.emit("mov [rsp], rax")
		}
	}

	var slots []argSlot
	for i, t := range types {
		base := (n - 1 - i) * TempSlotSize
		slots = append(slots, argSlot{off: base})
		if t == String {
			slots = append(slots, argSlot{off: base + 8})
		}
	}

	g.emit("mov r11, rsp")

	regs := g.abi.IntArgRegs
	var overflow []argSlot
	for i, s := range slots {
		if i < len(regs) {
			g.emit("mov %s, [r11+%d]", regs[i], s.off)
		} else {
			overflow = append(overflow, s)
		}
	}

	extra := len(overflow) * 8
	if g.abi.IsWin64 {
		extra += Win64ShadowSpace
	}
	extra = roundUp16(extra)
	if extra > 0 {
		g.emit("sub rsp, %d", extra)
	}
	shadowOff := 0
	if g.abi.IsWin64 {
		shadowOff = Win64ShadowSpace
	}
	for i, s := range overflow {
		g.emit("mov rax, [r11+%d]", s.off)
		g.emit("mov [rsp+%d], rax", shadowOff+i*8)
	}

	return n*TempSlotSize + extra
}

// callInternal invokes an internally-defined label (a procedure, never
// symbol-prefixed since it is not an external/libc symbol) with args.
func (g *Generator) callInternal(label string, args []Expr, sc *scope) {
	cleanup := g.marshalArgs(args, sc)
	g.emit("call %s", label)
	g.emit("add rsp, %d", cleanup)
}

// callRuntimeN invokes an external runtime/libc symbol with args, applying
// the ABI's symbol prefix.
func (g *Generator) callRuntimeN(sym string, args []Expr, sc *scope) {
	cleanup := g.marshalArgs(args, sc)
	g.emit("call %s", g.abi.Sym(sym))
	g.emit("add rsp, %d", cleanup)
}

// ---------------------------------------------------------------------
// Call-expression / call-statement dispatch. Expressions check the array
// table, then the builtin table, then the user procedure table - the same
// order original_source's resolver checks, since DIM may appear anywhere
// in a source file and the parser alone cannot disambiguate A(I) as an
// array reference from A(I) as a function call. Statements check the user
// procedure table first, then the builtin table.
// ---------------------------------------------------------------------

func (g *Generator) genCallExpr(e *CallExpr, sc *scope) DataType {
	if _, ok := sc.lookupArray(e.Name); ok {
		return g.genArrayLoad(sc, e.Name, e.Args)
	}
	if b, ok := builtinTable[strings.ToUpper(e.Name)]; ok {
		return b.Gen(g, e, sc)
	}
	if p, ok := g.procs[e.Name]; ok {
		return g.emitProcCall(p, e.Args, sc)
	}
	g.diagnostics.AddErrorWithCode(ErrUnknownIdentifier, CategorySyntax,
		fmt.Sprintf("unknown function or array %q", e.Name), "", 0, 0, SuggestForTypo(e.Name))
	return Double
}

func (g *Generator) genCallStmt(s *CallStmt, sc *scope) {
	if p, ok := g.procs[s.Name]; ok {
		g.emitProcCall(p, s.Args, sc)
		return
	}
	if b, ok := builtinTable[strings.ToUpper(s.Name)]; ok {
		b.Gen(g, &CallExpr{Name: s.Name, Args: s.Args}, sc)
		return
	}
	g.diagnostics.AddErrorWithCode(ErrUnknownIdentifier, CategorySyntax,
		fmt.Sprintf("unknown procedure %q", s.Name), "", 0, 0, SuggestForTypo(s.Name))
}

func (g *Generator) emitProcCall(p *procInfo, args []Expr, sc *scope) DataType {
	g.callInternal(p.label, args, sc)
	if p.isFunc {
		return p.retType
	}
	return Double
}

func (g *Generator) callExprType(e *CallExpr, sc *scope) DataType {
	if a, ok := sc.lookupArray(e.Name); ok {
		return a.elemType
	}
	if b, ok := builtinTable[strings.ToUpper(e.Name)]; ok {
		return b.RetType
	}
	if p, ok := g.procs[e.Name]; ok && p.isFunc {
		return p.retType
	}
	return TypeForSuffix(e.Name)
}

// ---------------------------------------------------------------------
// SUB / FUNCTION frames
// ---------------------------------------------------------------------

// genProc emits one procedure's complete frame: prologue, ABI-aware
// parameter binding into a fresh child scope, body, and epilogue. Only
// register-passed parameters are supported - realistic BASIC procedures
// never approach the six (SysV) or four (Win64) argument-register budget.
func (g *Generator) genProc(name string, isFunc bool, params []Param, body []Stmt) {
	childScope := newScope(name, g.mainScope)
	g.scopes = append(g.scopes, childScope)

	g.emitLabel(ProcLabelPrefix + name)
	g.emit("push rbp")
	g.emit("mov rbp, rsp")
	g.text.WriteString(fmt.Sprintf(stackReservePlaceholderFmt, name))

	regs := g.abi.IntArgRegs
	slot := 0
	for _, p := range params {
		v := childScope.declareVar(p.Name)
		if v.typ == String {
			ptrOff, lenOff := stringSlotOffsets(v)
			if slot < len(regs) {
				g.emit("mov [rbp-%d], %s", ptrOff, regs[slot])
			}
			if slot+1 < len(regs) {
				g.emit("mov [rbp-%d], %s", lenOff, regs[slot+1])
			}
			slot += 2
			continue
		}
		if slot < len(regs) {
			g.emit("movq xmm0, %s", regs[slot])
			g.storeVar(childScope, p.Name, Double)
		}
		slot++
	}

	var defs []Stmt
	g.genBody(body, childScope, &defs)

	if isFunc {
		if _, ok := childScope.vars[name]; ok {
			g.loadVar(childScope, name)
		} else {
			g.emit("xor eax, eax")
		}
	}
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
}
