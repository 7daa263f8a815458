package main

// builtins.go - the built-in function table (spec.md §5). Grounded on the
// teacher's printfuncs.go registry shape (a name-keyed map of callable
// descriptors populated in init()), generalized from print-formatting
// verbs to BASIC's string/numeric/conversion builtins, and on
// original_source's builtin dispatch for which functions forward straight
// to a runtime helper versus which compile inline (LEN, ASC - a single
// string's own ptr:len pair already carries everything those two need, so
// routing them through a runtime call would be pure overhead).

// BuiltinFunction is one entry in the builtin table: its static result
// type (never argument-dependent in this language) and the code it emits.
type BuiltinFunction struct {
	RetType DataType
	Gen     func(g *Generator, e *CallExpr, sc *scope) DataType
}

var builtinTable map[string]*BuiltinFunction

func init() {
	builtinTable = map[string]*BuiltinFunction{
		"LEN":    {RetType: Long, Gen: genLen},
		"ASC":    {RetType: Long, Gen: genAsc},
		"LEFT$":  {RetType: String, Gen: forwardRuntime(RtLeft)},
		"RIGHT$": {RetType: String, Gen: forwardRuntime(RtRight)},
		"MID$":   {RetType: String, Gen: genMid},
		"INSTR":  {RetType: Long, Gen: genInstr},
		"CHR$":   {RetType: String, Gen: forwardRuntime(RtChr)},
		"VAL":    {RetType: Double, Gen: forwardRuntime(RtVal)},
		"STR$":   {RetType: String, Gen: forwardRuntime(RtStr)},

		"CINT": {RetType: Integer, Gen: genRoundConvert(Integer)},
		"CLNG": {RetType: Long, Gen: genRoundConvert(Long)},
		"CSNG": {RetType: Single, Gen: genNarrowConvert(Single)},
		"CDBL": {RetType: Double, Gen: genNarrowConvert(Double)},

		"TIMER": {RetType: Double, Gen: genZeroArgRuntime(RtTimer)},
		"RND":   {RetType: Double, Gen: genRnd},

		"ABS": {RetType: Double, Gen: genAbs},
		"SGN": {RetType: Long, Gen: genSgn},
		"SQR": {RetType: Double, Gen: genLibmCall("sqrt")},
		"INT": {RetType: Double, Gen: genRoundMode(1)}, // floor
		"FIX": {RetType: Double, Gen: genRoundMode(3)}, // truncate

		"SIN": {RetType: Double, Gen: genLibmCall(libcMathFns["SIN"])},
		"COS": {RetType: Double, Gen: genLibmCall(libcMathFns["COS"])},
		"TAN": {RetType: Double, Gen: genLibmCall(libcMathFns["TAN"])},
		"ATN": {RetType: Double, Gen: genLibmCall(libcMathFns["ATN"])},
		"EXP": {RetType: Double, Gen: genLibmCall(libcMathFns["EXP"])},
		"LOG": {RetType: Double, Gen: genLibmCall(libcMathFns["LOG"])},
	}
}

// forwardRuntime builds a Gen that simply marshals every argument through
// to sym and returns that builtin's table RetType (String, or Double for
// VAL) - the shape the runtime-forwarding builtins LEFT$, RIGHT$, CHR$,
// STR$ and VAL share.
func forwardRuntime(sym string) func(*Generator, *CallExpr, *scope) DataType {
	return func(g *Generator, e *CallExpr, sc *scope) DataType {
		g.callRuntimeN(sym, e.Args, sc)
		return builtinTable[canonicalNameFor(sym)].RetType
	}
}

// canonicalNameFor recovers a builtin's table entry from the runtime
// symbol it forwards to, so forwardRuntime's closure can report the right
// RetType without capturing it twice.
func canonicalNameFor(sym string) string {
	switch sym {
	case RtLeft:
		return "LEFT$"
	case RtRight:
		return "RIGHT$"
	case RtChr:
		return "CHR$"
	case RtVal:
		return "VAL"
	case RtStr:
		return "STR$"
	}
	return ""
}

// genLen reads a String's own length half directly - no runtime call
// needed, since LEN is already sitting in rdx the instant the argument is
// evaluated.
func genLen(g *Generator, e *CallExpr, sc *scope) DataType {
	g.genExpr(e.Args[0], sc)
	g.emit("mov eax, edx")
	return Long
}

// genAsc reads the first byte of a String's backing buffer directly.
func genAsc(g *Generator, e *CallExpr, sc *scope) DataType {
	g.genExpr(e.Args[0], sc)
	g.emit("movzx eax, byte ptr [rax]")
	return Long
}

// genMid forwards to RtMid, synthesizing the "to end of string" sentinel
// length of -1 when MID$ is called with only (string, start).
func genMid(g *Generator, e *CallExpr, sc *scope) DataType {
	args := e.Args
	if len(args) == 2 {
		args = append(append([]Expr{}, args...), &LiteralExpr{Kind: LitInt, Int: -1})
	}
	g.callRuntimeN(RtMid, args, sc)
	return String
}

// genInstr forwards to RtInstr, defaulting the search-start position to 1
// when INSTR is called with only (haystack$, needle$).
func genInstr(g *Generator, e *CallExpr, sc *scope) DataType {
	args := e.Args
	if len(args) == 2 {
		args = append([]Expr{&LiteralExpr{Kind: LitInt, Int: 1}}, args...)
	}
	g.callRuntimeN(RtInstr, args, sc)
	g.coerceCanonical(Double, Long)
	return Long
}

// genRoundConvert implements CINT/CLNG: round-to-nearest, unlike the
// truncating implicit float-to-int coercion coerceCanonical performs
// everywhere else.
func genRoundConvert(to DataType) func(*Generator, *CallExpr, *scope) DataType {
	return func(g *Generator, e *CallExpr, sc *scope) DataType {
		t := g.genExpr(e.Args[0], sc)
		g.coerceCanonical(t, Double)
		g.emit("cvtsd2si eax, xmm0")
		if to == Integer {
			g.emit("movsx eax, ax")
		}
		return to
	}
}

// genNarrowConvert implements CSNG/CDBL: both operate on the shared
// double-in-xmm0 representation; CSNG additionally round-trips through a
// 32-bit float to drop precision a real Single would lose.
func genNarrowConvert(to DataType) func(*Generator, *CallExpr, *scope) DataType {
	return func(g *Generator, e *CallExpr, sc *scope) DataType {
		t := g.genExpr(e.Args[0], sc)
		g.coerceCanonical(t, Double)
		if to == Single {
			g.emit("cvtsd2ss xmm0, xmm0")
			g.emit("cvtss2sd xmm0, xmm0")
		}
		return to
	}
}

func genZeroArgRuntime(sym string) func(*Generator, *CallExpr, *scope) DataType {
	return func(g *Generator, e *CallExpr, sc *scope) DataType {
		g.alignAndCall(sym)
		return Double
	}
}

func genRnd(g *Generator, e *CallExpr, sc *scope) DataType {
	if len(e.Args) == 0 {
		g.alignAndCall(RtRnd)
		return Double
	}
	g.callRuntimeN(RtRnd, e.Args, sc)
	return Double
}

func genAbs(g *Generator, e *CallExpr, sc *scope) DataType {
	t := g.genExpr(e.Args[0], sc)
	if numClass(t) == "float" {
		done := g.newLabel("absdone")
		g.emit("xorpd xmm1, xmm1")
		g.emit("ucomisd xmm0, xmm1")
		g.emit("jae %s", done)
		g.emit("xorpd xmm1, xmm1")
		g.emit("subsd xmm1, xmm0")
		g.emit("movapd xmm0, xmm1")
		g.emitLabel(done)
		return Double
	}
	done := g.newLabel("absdone")
	g.emit("cmp eax, 0")
	g.emit("jge %s", done)
	g.emit("neg eax")
	g.emitLabel(done)
	g.coerceCanonical(t, Double)
	return Double
}

func genSgn(g *Generator, e *CallExpr, sc *scope) DataType {
	t := g.genExpr(e.Args[0], sc)
	g.coerceCanonical(t, Double)
	pos := g.newLabel("sgnpos")
	neg := g.newLabel("sgnneg")
	done := g.newLabel("sgndone")
	g.emit("xorpd xmm1, xmm1")
	g.emit("ucomisd xmm0, xmm1")
	g.emit("ja %s", pos)
	g.emit("jb %s", neg)
	g.emit("xor eax, eax")
	g.emit("jmp %s", done)
	g.emitLabel(pos)
	g.emit("mov eax, 1")
	g.emit("jmp %s", done)
	g.emitLabel(neg)
	g.emit("mov eax, -1")
	g.emitLabel(done)
	return Long
}

func genRoundMode(mode int) func(*Generator, *CallExpr, *scope) DataType {
	return func(g *Generator, e *CallExpr, sc *scope) DataType {
		t := g.genExpr(e.Args[0], sc)
		g.coerceCanonical(t, Double)
		g.emit("roundsd xmm0, xmm0, %d", mode)
		return Double
	}
}

func genLibmCall(name string) func(*Generator, *CallExpr, *scope) DataType {
	return func(g *Generator, e *CallExpr, sc *scope) DataType {
		t := g.genExpr(e.Args[0], sc)
		g.coerceCanonical(t, Double)
		g.callLibm(name)
		return Double
	}
}
