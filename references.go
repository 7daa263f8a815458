package main

// references.go - LET-statement codegen and canonical variable
// load/store. Grounded on the teacher's generateAssignment/
// generateCompoundAssignment (AT&T movq/leaq into a flat stack slot);
// generalized here to Intel syntax, the five-type promotion lattice, and
// two-slot String storage, and to array-index assignment targets (handled
// by array.go's store helper).

import "fmt"

// stringSlotOffsets returns the (pointer, length) rbp-relative offsets for
// a String variable's two-slot storage. Declared once here since every
// String load/store site needs both halves.
func stringSlotOffsets(v *varSlot) (ptr, length int) {
	return v.offset, v.offset - SlotSize
}

// loadVar emits code that puts name's value in its type's canonical
// location (eax for Integer/Long, xmm0 for Single/Double, rax:rdx for
// String) and returns that type.
func (g *Generator) loadVar(sc *scope, name string) DataType {
	v, ok := sc.lookupVar(name)
	if !ok {
		v = sc.declareVar(name)
	}
	switch v.typ {
	case Integer:
		g.emit("movsx eax, word ptr [rbp-%d]", v.offset)
	case Long:
		g.emit("mov eax, dword ptr [rbp-%d]", v.offset)
	case Single:
		g.emit("movss xmm0, dword ptr [rbp-%d]", v.offset)
		g.emit("cvtss2sd xmm0, xmm0")
	case Double:
		g.emit("movsd xmm0, qword ptr [rbp-%d]", v.offset)
	case String:
		ptrOff, lenOff := stringSlotOffsets(v)
		g.emit("mov rax, [rbp-%d]", ptrOff)
		g.emit("mov rdx, [rbp-%d]", lenOff)
	}
	return v.typ
}

// loadVarAddr loads the address of name's (scalar) slot into reg. The
// INPUT/READ/file-INPUT lowerings compute their target addresses inline
// and do not call it.
func (g *Generator) loadVarAddr(sc *scope, name string, reg string) DataType {
	v, ok := sc.lookupVar(name)
	if !ok {
		v = sc.declareVar(name)
	}
	g.emit("lea %s, [rbp-%d]", reg, v.offset)
	return v.typ
}

// storeVar coerces the value currently in its canonical location for
// fromType into name's declared type and stores it.
func (g *Generator) storeVar(sc *scope, name string, fromType DataType) {
	v, ok := sc.lookupVar(name)
	if !ok {
		v = sc.declareVar(name)
	}
	if v.typ == String || fromType == String {
		if v.typ != String || fromType != String {
			g.diagnostics.AddErrorWithCode(ErrArityMismatch, CategorySyntax,
				fmt.Sprintf("cannot assign %s to %s variable %s", fromType, v.typ, name), "", 0, 0, "")
			return
		}
		ptrOff, lenOff := stringSlotOffsets(v)
		g.emit("mov [rbp-%d], rax", ptrOff)
		g.emit("mov [rbp-%d], rdx", lenOff)
		return
	}
	g.coerceCanonical(fromType, v.typ)
	switch v.typ {
	case Integer:
		g.emit("mov word ptr [rbp-%d], ax", v.offset)
	case Long:
		g.emit("mov dword ptr [rbp-%d], eax", v.offset)
	case Single:
		g.emit("cvtsd2ss xmm0, xmm0")
		g.emit("movss dword ptr [rbp-%d], xmm0", v.offset)
	case Double:
		g.emit("movsd qword ptr [rbp-%d], xmm0", v.offset)
	}
}

// genLet lowers LET name[(indices)] = value.
func (g *Generator) genLet(s *LetStmt, sc *scope) {
	if s.Indices != nil {
		g.genArrayStore(sc, s.Name, s.Indices, s.Value)
		return
	}
	valType := g.genExpr(s.Value, sc)
	g.storeVar(sc, s.Name, valType)
}
