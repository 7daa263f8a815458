package main

// array.go - DIM codegen and the unified array-address helper used by both
// array reads (through genCallExpr, since A(I) parses identically to a
// function call) and array writes (through references.go's genLet). A
// single address-computation routine, rather than one copy per direction,
// is the array-specific instance of the unified-call-builder redesign
// theme: duplicate marshalling logic is the thing being designed away.
// Grounded on original_source/src/codegen.rs's row-major array lowering
// and the teacher's heap-backed dynamic-array allocation idiom (a libc
// malloc call sized from the runtime-computed element count).

import "fmt"

// genDim lowers DIM name(d1, d2, ...), ...: each bound is inclusive (DIM
// A(10) allocates indices 0..10), so the stored per-dimension count is the
// evaluated bound plus one.
func (g *Generator) genDim(s *DimStmt, sc *scope) {
	for _, decl := range s.Arrays {
		elemType := TypeForSuffix(decl.Name)
		dimOffsets := make([]int, len(decl.Dimensions))
		for i, boundExpr := range decl.Dimensions {
			t := g.genExpr(boundExpr, sc)
			g.coerceCanonical(t, Long)
			g.emit("add eax, 1")
			off := sc.reserve(8)
			g.emit("mov dword ptr [rbp-%d], eax", off)
			dimOffsets[i] = off
		}

		g.emit("mov eax, dword ptr [rbp-%d]", dimOffsets[0])
		for i := 1; i < len(dimOffsets); i++ {
			g.emit("imul eax, dword ptr [rbp-%d]", dimOffsets[i])
		}
		elemSize := 8
		if elemType == String {
			elemSize = 16
		}
		g.emit("cdqe")
		g.emit("imul rax, rax, %d", elemSize)
		g.emit("mov %s, rax", g.abi.IntArgRegs[0])
		g.alignAndCall("malloc")

		ptrOff := sc.reserve(8)
		g.emit("mov [rbp-%d], rax", ptrOff)

		sc.arrays[decl.Name] = &arrayInfo{ptrOffset: ptrOff, dimOffset: dimOffsets, elemType: elemType}
	}
}

// computeArrayAddr evaluates indices against name's declared bounds using
// row-major accumulation (linear = i1; for each further dimension j,
// linear = linear*countJ + iJ) and leaves the element's address in r10.
// r10 is written only after every index has been evaluated, so the nested
// genExpr calls this routine makes (which may themselves use r10, e.g. for
// an array access inside an index) cannot clobber it.
func (g *Generator) computeArrayAddr(sc *scope, name string, indices []Expr) *arrayInfo {
	a, ok := sc.lookupArray(name)
	if !ok {
		g.diagnostics.AddErrorWithCode(ErrUnknownIdentifier, CategorySyntax,
			fmt.Sprintf("undeclared array %q", name), "", 0, 0, SuggestForTypo(name))
		g.emit("xor r10, r10")
		return &arrayInfo{elemType: Double}
	}

	t := g.genExpr(indices[0], sc)
	g.coerceCanonical(t, Long)
	for j := 1; j < len(indices) && j < len(a.dimOffset); j++ {
		g.emit("sub rsp, %d", TempSlotSize)
		g.emit("mov [rsp], rax")
		tj := g.genExpr(indices[j], sc)
		g.coerceCanonical(tj, Long)
		g.emit("mov ecx, eax")
		g.emit("mov eax, [rsp]")
		g.emit("add rsp, %d", TempSlotSize)
		g.emit("imul eax, dword ptr [rbp-%d]", a.dimOffset[j])
		g.emit("add eax, ecx")
	}

	elemSize := 8
	if a.elemType == String {
		elemSize = 16
	}
	g.emit("cdqe")
	g.emit("imul rax, rax, %d", elemSize)
	g.emit("mov r10, [rbp-%d]", a.ptrOffset)
	g.emit("add r10, rax")
	return a
}

// genArrayLoad reads name(indices) in array-element-position - reached via
// genCallExpr once the name resolves against the array table.
func (g *Generator) genArrayLoad(sc *scope, name string, indices []Expr) DataType {
	a := g.computeArrayAddr(sc, name, indices)
	if a.elemType == String {
		g.emit("mov rax, [r10]")
		g.emit("mov rdx, [r10+8]")
		return String
	}
	g.emit("movsd xmm0, [r10]")
	if a.elemType.IsIntegerType() {
		g.coerceCanonical(Double, a.elemType)
	}
	return a.elemType
}

// genArrayStore writes value into name(indices). Numeric elements are
// always stored as raw Double bit patterns regardless of the array's
// declared element suffix - the same canonical-representation economy
// scalars get - narrowing only transiently, in a register, whenever a
// load needs an Integer/Long view.
func (g *Generator) genArrayStore(sc *scope, name string, indices []Expr, value Expr) {
	vt := g.genExpr(value, sc)
	g.emit("sub rsp, %d", TempSlotSize)
	if vt == String {
		g.emit("mov [rsp], rax")
		g.emit("mov [rsp+8], rdx")
	} else {
		g.coerceCanonical(vt, Double)
		g.emit("movsd [rsp], xmm0")
	}

	a := g.computeArrayAddr(sc, name, indices)

	if a.elemType == String {
		if vt != String {
			g.diagnostics.AddErrorWithCode(ErrArityMismatch, CategorySyntax,
				fmt.Sprintf("cannot assign %s to String array %s", vt, name), "", 0, 0, "")
			g.emit("add rsp, %d", TempSlotSize)
			return
		}
		g.emit("mov rax, [rsp]")
		g.emit("mov rdx, [rsp+8]")
		g.emit("add rsp, %d", TempSlotSize)
		g.emit("mov [r10], rax")
		g.emit("mov [r10+8], rdx")
		return
	}

	g.emit("movsd xmm0, [rsp]")
	g.emit("add rsp, %d", TempSlotSize)
	g.emit("movsd [r10], xmm0")
}
