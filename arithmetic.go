package main

// arithmetic.go - expression evaluation: literal/variable loads, unary and
// binary operator lowering, and the type-coercion machinery the five-type
// promotion lattice (spec.md §4.4) requires at every operator boundary.
// Grounded on the teacher's generateBinaryOp/generateUnaryOp (evaluate
// left, spill to a stack slot, evaluate right, recombine), generalized
// from a single untyped 64-bit integer domain to BASIC's
// Integer/Long/Single/Double/String lattice and to Intel syntax.

import "fmt"

// numClass groups a DataType into the register family its canonical
// location belongs to.
func numClass(t DataType) string {
	if t == Single || t == Double {
		return "float"
	}
	return "int"
}

// coerceCanonical converts the value sitting in its canonical location for
// "from" into the canonical location for "to". String is never a valid
// argument here; callers special-case String before calling this.
func (g *Generator) coerceCanonical(from, to DataType) {
	if from == to {
		return
	}
	fc, tc := numClass(from), numClass(to)
	switch {
	case fc == "int" && tc == "int":
		if to == Integer && from == Long {
			// Truncate to 16 bits, then sign-extend back into eax so every
			// int-class value in flight is always a clean 32-bit sign
			// extension of its logical width.
			g.emit("movsx eax, ax")
		}
		// Integer -> Long needs no bit-level change: eax is already the
		// sign-extended 32-bit view.
	case fc == "int" && tc == "float":
		g.emit("cvtsi2sd xmm0, eax")
	case fc == "float" && tc == "int":
		g.emit("cvttsd2si eax, xmm0")
		// float -> int is truncate-toward-zero for the implicit path
		// (spec.md §4.4); CINT/CLNG's round-to-nearest variant is handled
		// separately by builtins.go since it is never an implicit coercion.
	}
}

// operandType is the type both sides of a binary operator are coerced to
// before the operator itself executes; it differs from PromoteArith's
// result type for comparisons (operands compare at their common width, but
// the result is always Long).
func operandType(op BinaryOp, l, r DataType) DataType {
	switch op {
	case OpDiv:
		return Double
	case OpIntDiv, OpMod:
		return Long
	case OpPow:
		return Double
	case OpAnd, OpOr, OpXor:
		return Long
	case OpAdd:
		if l == String && r == String {
			return String
		}
		return widerOf(l, r)
	default:
		return widerOf(l, r)
	}
}

// exprType computes an expression's static result type with no side
// effects, used to decide promotion/coercion before any code is emitted.
func (g *Generator) exprType(e Expr, sc *scope) DataType {
	switch ex := e.(type) {
	case *LiteralExpr:
		switch ex.Kind {
		case LitInt:
			return Long
		case LitFloat:
			return Double
		default:
			return String
		}
	case *VarExpr:
		if v, ok := sc.lookupVar(ex.Name); ok {
			return v.typ
		}
		return TypeForSuffix(ex.Name)
	case *UnaryExpr:
		if ex.Op == UnaryNot {
			return Long
		}
		return g.exprType(ex.Operand, sc)
	case *BinaryExpr:
		return PromoteArith(ex.Op, g.exprType(ex.Left, sc), g.exprType(ex.Right, sc))
	case *CallExpr:
		return g.callExprType(ex, sc)
	}
	return Double
}

// genExpr lowers e, leaving its value in the canonical location for the
// DataType it returns.
func (g *Generator) genExpr(e Expr, sc *scope) DataType {
	switch ex := e.(type) {
	case *LiteralExpr:
		return g.genLiteral(ex)
	case *VarExpr:
		return g.loadVar(sc, ex.Name)
	case *UnaryExpr:
		return g.genUnary(ex, sc)
	case *BinaryExpr:
		return g.genBinary(ex, sc)
	case *CallExpr:
		return g.genCallExpr(ex, sc)
	}
	g.diagnostics.AddErrorWithCode(ErrInvalidStatement, CategorySyntax, fmt.Sprintf("unhandled expression %T", e), "", 0, 0, "")
	return Double
}

func (g *Generator) genLiteral(lit *LiteralExpr) DataType {
	switch lit.Kind {
	case LitInt:
		g.emit("mov eax, %d", lit.Int)
		return Long
	case LitFloat:
		g.emit("mov rax, %s", floatBits(lit.Flt))
		g.emit("movq xmm0, rax")
		return Double
	case LitString:
		label := g.internString(lit.Str)
		g.emit("lea rax, [rip+%s]", label)
		g.emit("mov rdx, %d", len(lit.Str))
		return String
	}
	return Double
}

func (g *Generator) genUnary(u *UnaryExpr, sc *scope) DataType {
	t := g.genExpr(u.Operand, sc)
	switch u.Op {
	case UnaryNeg:
		if numClass(t) == "float" {
			g.emit("xorpd xmm1, xmm1")
			g.emit("subsd xmm1, xmm0")
			g.emit("movapd xmm0, xmm1")
			return t
		}
		g.emit("neg eax")
		return t
	case UnaryNot:
		g.coerceCanonical(t, Long)
		g.emit("not eax")
		return Long
	}
	return t
}

// genBinary lowers a binary expression per spec.md §4.4's promotion table.
func (g *Generator) genBinary(b *BinaryExpr, sc *scope) DataType {
	lt := g.exprType(b.Left, sc)
	rt := g.exprType(b.Right, sc)

	if b.Op == OpAdd && lt == String && rt == String {
		return g.genStringConcat(b, sc)
	}

	opType := operandType(b.Op, lt, rt)
	resultType := PromoteArith(b.Op, lt, rt)

	g.genExpr(b.Left, sc)
	leftIsFloat := numClass(lt) == "float"
	g.emit("sub rsp, %d", TempSlotSize)
	if leftIsFloat {
		g.emit("movsd [rsp], xmm0")
	} else {
		g.emit("mov [rsp], rax")
	}

	g.genExpr(b.Right, sc)
	g.coerceCanonical(rt, opType)
	if numClass(opType) == "float" {
		g.emit("movapd xmm1, xmm0")
	} else {
		g.emit("mov ecx, eax")
	}

	if leftIsFloat {
		g.emit("movsd xmm0, [rsp]")
	} else {
		g.emit("mov eax, [rsp]")
	}
	g.emit("add rsp, %d", TempSlotSize)
	g.coerceCanonical(lt, opType)

	switch b.Op {
	case OpAdd:
		if numClass(opType) == "float" {
			g.emit("addsd xmm0, xmm1")
		} else {
			g.emit("add eax, ecx")
		}
	case OpSub:
		if numClass(opType) == "float" {
			g.emit("subsd xmm0, xmm1")
		} else {
			g.emit("sub eax, ecx")
		}
	case OpMul:
		if numClass(opType) == "float" {
			g.emit("mulsd xmm0, xmm1")
		} else {
			g.emit("imul eax, ecx")
		}
	case OpDiv:
		g.emit("divsd xmm0, xmm1")
	case OpIntDiv:
		g.emit("cdq")
		g.emit("idiv ecx")
	case OpMod:
		g.emit("cdq")
		g.emit("idiv ecx")
		g.emit("mov eax, edx")
	case OpPow:
		g.callLibm("pow")
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		g.genComparison(b.Op, opType)
	case OpAnd:
		g.emit("and eax, ecx")
	case OpOr:
		g.emit("or eax, ecx")
	case OpXor:
		g.emit("xor eax, ecx")
	}

	return resultType
}

// genComparison emits the compare-and-set sequence for opType operands
// already sitting in eax/xmm0 (left) and ecx/xmm1 (right), leaving a Long
// boolean (0 or -1, BASIC's True) in eax.
func (g *Generator) genComparison(op BinaryOp, opType DataType) {
	setcc := map[BinaryOp]string{
		OpEq: "sete", OpNe: "setne", OpLt: "setl", OpGt: "setg", OpLe: "setle", OpGe: "setge",
	}
	if numClass(opType) == "float" {
		// ucomisd's condition codes match the unsigned integer mnemonics,
		// not the signed ones, for the ordered comparisons BASIC needs.
		ucomisd := map[BinaryOp]string{
			OpEq: "sete", OpNe: "setne", OpLt: "setb", OpGt: "seta", OpLe: "setbe", OpGe: "setae",
		}
		g.emit("ucomisd xmm0, xmm1")
		g.emit("%s al", ucomisd[op])
	} else {
		g.emit("cmp eax, ecx")
		g.emit("%s al", setcc[op])
	}
	g.emit("movzx eax, al")
	g.emit("neg eax")
}

// genStringConcat implements String + String via the runtime's strcat
// helper. Both sides are ptr:len pairs; the left pair is spilled to a
// 16-byte temp slot (exactly the width of one ptr+len pair) while the
// right side is evaluated, then both pairs are marshalled into the active
// ABI's integer argument registers - order matters here (spec.md §9's
// cross-ABI marshalling note), since the source registers overlap the
// destination registers differently per ABI.
func (g *Generator) genStringConcat(b *BinaryExpr, sc *scope) DataType {
	g.genExpr(b.Left, sc)
	g.emit("sub rsp, %d", TempSlotSize)
	g.emit("mov [rsp], rax")
	g.emit("mov [rsp+8], rdx")

	g.genExpr(b.Right, sc)
	// rax = rightPtr, rdx = rightLen

	regs := g.abi.IntArgRegs
	if g.abi.IsWin64 {
		g.emit("mov r9, rdx")
		g.emit("mov r8, rax")
		g.emit("mov %s, [rsp]", regs[0])
		g.emit("mov %s, [rsp+8]", regs[1])
	} else {
		g.emit("mov rcx, rdx")
		g.emit("mov rdx, rax")
		g.emit("mov %s, [rsp]", regs[0])
		g.emit("mov %s, [rsp+8]", regs[1])
	}
	g.emit("add rsp, %d", TempSlotSize)
	g.alignAndCall(RtStrcat)
	return String
}

// callLibm calls the named libm function with its argument already in
// xmm0, leaving the result in xmm0.
func (g *Generator) callLibm(name string) {
	g.alignAndCall(name)
}
