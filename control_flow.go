package main

// control_flow.go - branching, looping, GOTO/GOSUB, SELECT CASE, PRINT/
// INPUT, and DATA/READ/RESTORE codegen. Grounded on the teacher's
// IfStatement/WhileLoop/ForLoop lowering (label-pair branch-around-body
// shape, carried over unchanged) generalized to BASIC's richer statement
// set, the DO-loop trailing/leading condition redesign, and the auxiliary
// GOSUB return-address stack original_source/src/codegen.rs keeps separate
// from the machine call stack so RETURN can unwind across SUB/FUNCTION
// frames GOSUB was invoked inside.

import "fmt"

// genBranch evaluates cond and jumps to target if its truthiness equals
// branchIfTrue, treating any nonzero numeric value - integer or float - as
// true.
func (g *Generator) genBranch(cond Expr, sc *scope, target string, branchIfTrue bool) {
	t := g.genExpr(cond, sc)
	if numClass(t) == "float" {
		g.emit("xorpd xmm1, xmm1")
		g.emit("ucomisd xmm0, xmm1")
	} else {
		g.emit("cmp eax, 0")
	}
	if branchIfTrue {
		g.emit("jne %s", target)
	} else {
		g.emit("je %s", target)
	}
}

func (g *Generator) genIf(s *IfStmt, sc *scope, defs *[]Stmt) {
	elseLabel := g.newLabel("else")
	endLabel := g.newLabel("endif")
	g.genBranch(s.Cond, sc, elseLabel, false)
	g.genBody(s.Then, sc, defs)
	g.emit("jmp %s", endLabel)
	g.emitLabel(elseLabel)
	g.genBody(s.Else, sc, defs)
	g.emitLabel(endLabel)
}

// genFor lowers FOR var = start TO end [STEP step]. The loop control triple
// (current, end, step) is always tracked in three dedicated Double slots
// regardless of the loop variable's own declared type, so a STEP of 0.5 on
// an INTEGER-suffixed counter still steps correctly; the BASIC-visible
// variable is refreshed from the Double counter at the top of every
// iteration.
func (g *Generator) genFor(s *ForStmt, sc *scope, defs *[]Stmt) {
	curOff := sc.reserve(8)
	endOff := sc.reserve(8)
	stepOff := sc.reserve(8)

	startT := g.genExpr(s.Start, sc)
	g.coerceCanonical(startT, Double)
	g.emit("movsd [rbp-%d], xmm0", curOff)

	endT := g.genExpr(s.End, sc)
	g.coerceCanonical(endT, Double)
	g.emit("movsd [rbp-%d], xmm0", endOff)

	if s.Step != nil {
		stepT := g.genExpr(s.Step, sc)
		g.coerceCanonical(stepT, Double)
	} else {
		g.emit("mov rax, %s", floatBits(1.0))
		g.emit("movq xmm0, rax")
	}
	g.emit("movsd [rbp-%d], xmm0", stepOff)

	topLabel := g.newLabel("for")
	negStepLabel := g.newLabel("forneg")
	bodyLabel := g.newLabel("forbody")
	exitLabel := g.newLabel("forend")

	g.emitLabel(topLabel)
	g.emit("movsd xmm0, [rbp-%d]", curOff)
	g.storeVar(sc, s.Var, Double)

	g.emit("xorpd xmm2, xmm2")
	g.emit("movsd xmm1, [rbp-%d]", stepOff)
	g.emit("ucomisd xmm1, xmm2")
	g.emit("jb %s", negStepLabel)

	g.emit("movsd xmm0, [rbp-%d]", curOff)
	g.emit("movsd xmm1, [rbp-%d]", endOff)
	g.emit("ucomisd xmm0, xmm1")
	g.emit("ja %s", exitLabel)
	g.emit("jmp %s", bodyLabel)

	g.emitLabel(negStepLabel)
	g.emit("movsd xmm0, [rbp-%d]", curOff)
	g.emit("movsd xmm1, [rbp-%d]", endOff)
	g.emit("ucomisd xmm0, xmm1")
	g.emit("jb %s", exitLabel)

	g.emitLabel(bodyLabel)
	g.genBody(s.Body, sc, defs)

	g.emit("movsd xmm0, [rbp-%d]", curOff)
	g.emit("movsd xmm1, [rbp-%d]", stepOff)
	g.emit("addsd xmm0, xmm1")
	g.emit("movsd [rbp-%d], xmm0", curOff)
	g.emit("jmp %s", topLabel)

	g.emitLabel(exitLabel)
}

func (g *Generator) genWhile(s *WhileStmt, sc *scope, defs *[]Stmt) {
	start := g.newLabel("while")
	end := g.newLabel("wend")
	g.emitLabel(start)
	g.genBranch(s.Cond, sc, end, false)
	g.genBody(s.Body, sc, defs)
	g.emit("jmp %s", start)
	g.emitLabel(end)
}

// genDoLoop lowers DO [WHILE|UNTIL cond] ... LOOP [WHILE|UNTIL cond]; the
// parser has already resolved which single condition (leading or trailing)
// governs this loop and in which sense, so codegen only has to pick the
// right branch polarity.
func (g *Generator) genDoLoop(s *DoLoopStmt, sc *scope, defs *[]Stmt) {
	start := g.newLabel("do")
	end := g.newLabel("doend")
	g.emitLabel(start)

	if s.Cond != nil && s.CondAtStart {
		g.genBranch(s.Cond, sc, end, s.IsUntil)
	}

	g.genBody(s.Body, sc, defs)

	if s.Cond != nil && !s.CondAtStart {
		g.genBranch(s.Cond, sc, start, !s.IsUntil)
	} else {
		g.emit("jmp %s", start)
	}

	g.emitLabel(end)
}

// targetLabel computes a GOTO/GOSUB/RESTORE target's assembly label
// directly from its line number or name. Line targets use exactly the
// format the pre-pass used when it first saw the corresponding LabelStmt,
// so no lookup table is needed at the jump site. Named targets map to
// NamedLabelPrefix+name; the parser produces no statement that defines
// such a label, so a named target has no matching label in the output.
func targetLabel(t GotoTarget) string {
	if t.Name != "" {
		return NamedLabelPrefix + t.Name
	}
	return fmt.Sprintf("%s%d", LineLabelPrefix, t.Line)
}

func (g *Generator) genGoto(s *GotoStmt, sc *scope) {
	g.emit("jmp %s", targetLabel(s.Target))
}

// genGosub pushes a return address onto the auxiliary _gosub_stack (not
// the machine call stack, since a GOSUB's matching RETURN may execute
// after arbitrarily more GOTOs and nested GOSUBs have moved rsp around)
// and jumps to the target.
func (g *Generator) genGosub(s *GosubStmt, sc *scope) {
	ret := g.newLabel("gosubret")
	g.emit("mov rcx, [rip+%s]", GosubStackPtrLabel)
	g.emit("lea rdx, [rip+%s]", GosubStackLabel)
	g.emit("lea rax, [rip+%s]", ret)
	g.emit("mov [rdx+rcx*8], rax")
	g.emit("add rcx, 1")
	g.emit("mov [rip+%s], rcx", GosubStackPtrLabel)
	g.emit("jmp %s", targetLabel(s.Target))
	g.emitLabel(ret)
}

func (g *Generator) genReturn(s *ReturnStmt, sc *scope) {
	g.emit("mov rcx, [rip+%s]", GosubStackPtrLabel)
	g.emit("sub rcx, 1")
	g.emit("mov [rip+%s], rcx", GosubStackPtrLabel)
	g.emit("lea rdx, [rip+%s]", GosubStackLabel)
	g.emit("mov rax, [rdx+rcx*8]")
	g.emit("jmp rax")
}

// genOnGoto lowers ON expr GOTO t1, t2, ...: a 1-based dispatch over the
// target list, falling through to the next statement if the selector is
// out of range (classic BASIC behavior - ON GOTO never faults).
func (g *Generator) genOnGoto(s *OnGotoStmt, sc *scope) {
	t := g.genExpr(s.Selector, sc)
	g.coerceCanonical(t, Long)
	for i, target := range s.Targets {
		g.emit("cmp eax, %d", i+1)
		g.emit("je %s", targetLabel(target))
	}
}

// genSelectCase evaluates the selector once into a temp slot, then tests
// each arm's value list against it (OR semantics across a multi-value
// arm), entering the first arm that matches or CASE ELSE if none do.
func (g *Generator) genSelectCase(s *SelectCaseStmt, sc *scope, defs *[]Stmt) {
	selType := g.genExpr(s.Selector, sc)
	g.emit("sub rsp, %d", TempSlotSize)
	if numClass(selType) == "float" {
		g.emit("movsd [rsp], xmm0")
	} else {
		g.emit("mov [rsp], rax")
	}

	end := g.newLabel("selend")
	armLabels := make([]string, len(s.Arms))
	elseIdx := -1
	for i, arm := range s.Arms {
		armLabels[i] = g.newLabel("case")
		if arm.IsElse {
			elseIdx = i
		}
	}

	for i, arm := range s.Arms {
		if arm.IsElse {
			continue
		}
		for _, val := range arm.Values {
			vt := g.genExpr(val, sc)
			g.coerceCanonical(vt, selType)
			if numClass(selType) == "float" {
				g.emit("movapd xmm1, xmm0")
				g.emit("movsd xmm0, [rsp]")
				g.emit("ucomisd xmm0, xmm1")
			} else {
				g.emit("mov ecx, eax")
				g.emit("mov eax, [rsp]")
				g.emit("cmp eax, ecx")
			}
			g.emit("je %s", armLabels[i])
		}
	}
	if elseIdx >= 0 {
		g.emit("jmp %s", armLabels[elseIdx])
	} else {
		g.emit("jmp %s", end)
	}

	for i, arm := range s.Arms {
		g.emitLabel(armLabels[i])
		g.emit("add rsp, %d", TempSlotSize)
		g.genBody(arm.Body, sc, defs)
		g.emit("jmp %s", end)
	}
	g.emitLabel(end)
}

// ---------------------------------------------------------------------
// PRINT / INPUT
// ---------------------------------------------------------------------

// emitPrintValue prints the value currently in its canonical location for
// t via the matching runtime helper.
func (g *Generator) emitPrintValue(t DataType) {
	regs := g.abi.IntArgRegs
	if t == String {
		g.emit("mov %s, rax", regs[0])
		g.emit("mov %s, rdx", regs[1])
		g.alignAndCall(RtPrintString)
		return
	}
	g.coerceCanonical(t, Double)
	g.alignAndCall(RtPrintFloat)
}

func (g *Generator) genPrint(s *PrintStmt, sc *scope) {
	for _, item := range s.Items {
		t := g.genExpr(item.Expr, sc)
		g.emitPrintValue(t)
		if item.Sep == SepComma {
			g.emit("mov %s, 9", g.abi.IntArgRegs[0])
			g.alignAndCall(RtPrintChar)
		}
	}
	if s.TrailingNewline {
		g.alignAndCall(RtPrintNL)
	}
}

// genPrintFile mirrors genPrint but writes to a file handle. The file
// number is re-evaluated per item rather than cached across the whole
// statement, since it is almost always a bare variable reference and
// caching it would cost another temp slot for no real benefit.
func (g *Generator) genPrintFile(s *PrintFileStmt, sc *scope) {
	regs := g.abi.IntArgRegs
	for _, item := range s.Items {
		t := g.genExpr(item.Expr, sc)
		g.emit("sub rsp, %d", TempSlotSize)
		if t == String {
			g.emit("mov [rsp], rax")
			g.emit("mov [rsp+8], rdx")
		} else {
			g.coerceCanonical(t, Double)
			g.emit("movsd [rsp], xmm0")
		}
		fnType := g.genExpr(s.FileNum, sc)
		g.coerceCanonical(fnType, Long)
		g.emit("mov %s, eax", regs[0])
		if t == String {
			g.emit("mov %s, [rsp]", regs[1])
			g.emit("mov %s, [rsp+8]", regs[2])
			g.emit("add rsp, %d", TempSlotSize)
			g.alignAndCall(RtFilePrintStr)
		} else {
			g.emit("movsd xmm0, [rsp]")
			g.emit("add rsp, %d", TempSlotSize)
			g.alignAndCall(RtFilePrintFloat)
		}
	}
	if s.TrailingNewline {
		fnType := g.genExpr(s.FileNum, sc)
		g.coerceCanonical(fnType, Long)
		g.emit("mov %s, eax", regs[0])
		g.alignAndCall(RtFilePrintNL)
	}
}

func (g *Generator) genInput(s *InputStmt, sc *scope) {
	regs := g.abi.IntArgRegs
	if s.HasPrompt {
		label := g.internString(s.Prompt)
		g.emit("lea rax, [rip+%s]", label)
		g.emit("mov rdx, %d", len(s.Prompt))
		g.emit("mov %s, rax", regs[0])
		g.emit("mov %s, rdx", regs[1])
		g.alignAndCall(RtPrintString)
	}
	for _, name := range s.Vars {
		v, ok := sc.lookupVar(name)
		if !ok {
			v = sc.declareVar(name)
		}
		if v.typ == String {
			ptrOff, lenOff := stringSlotOffsets(v)
			g.emit("lea rax, [rbp-%d]", ptrOff)
			g.emit("lea rdx, [rbp-%d]", lenOff)
			g.emit("mov %s, rax", regs[0])
			g.emit("mov %s, rdx", regs[1])
			g.alignAndCall(RtInputString)
			continue
		}
		g.emit("lea rax, [rbp-%d]", v.offset)
		g.emit("mov %s, rax", regs[0])
		g.alignAndCall(RtInputNumber)
		g.emit("movsd xmm0, [rbp-%d]", v.offset)
		g.storeVar(sc, name, Double)
	}
}

func (g *Generator) genLineInput(s *LineInputStmt, sc *scope) {
	regs := g.abi.IntArgRegs
	if s.HasPrompt {
		label := g.internString(s.Prompt)
		g.emit("lea rax, [rip+%s]", label)
		g.emit("mov rdx, %d", len(s.Prompt))
		g.emit("mov %s, rax", regs[0])
		g.emit("mov %s, rdx", regs[1])
		g.alignAndCall(RtPrintString)
	}
	v, ok := sc.lookupVar(s.Var)
	if !ok {
		v = sc.declareVar(s.Var)
	}
	ptrOff, lenOff := stringSlotOffsets(v)
	g.emit("lea rax, [rbp-%d]", ptrOff)
	g.emit("lea rdx, [rbp-%d]", lenOff)
	g.emit("mov %s, rax", regs[0])
	g.emit("mov %s, rdx", regs[1])
	g.alignAndCall(RtInputString)
}

func (g *Generator) genInputFile(s *InputFileStmt, sc *scope) {
	regs := g.abi.IntArgRegs
	for _, name := range s.Vars {
		v, ok := sc.lookupVar(name)
		if !ok {
			v = sc.declareVar(name)
		}
		fnType := g.genExpr(s.FileNum, sc)
		g.coerceCanonical(fnType, Long)
		g.emit("mov %s, eax", regs[0])
		if v.typ == String {
			ptrOff, lenOff := stringSlotOffsets(v)
			g.emit("lea rax, [rbp-%d]", ptrOff)
			g.emit("lea rdx, [rbp-%d]", lenOff)
			g.emit("mov %s, rax", regs[1])
			g.emit("mov %s, rdx", regs[2])
			g.alignAndCall(RtFileInputStr)
			continue
		}
		g.emit("lea rax, [rbp-%d]", v.offset)
		g.emit("mov %s, rax", regs[1])
		g.alignAndCall(RtFileInputNum)
		g.emit("movsd xmm0, [rbp-%d]", v.offset)
		g.storeVar(sc, name, Double)
	}
}

// ---------------------------------------------------------------------
// DATA / READ / RESTORE
// ---------------------------------------------------------------------

// genRead pulls the next DATA item, advancing _data_ptr, and stores it
// into var. Each data-table row is three quads (tag, value, len); for
// numeric rows len is unused, and for string rows value is already the
// address of the interned literal.
func (g *Generator) genRead(s *ReadStmt, sc *scope) {
	for _, name := range s.Vars {
		v, ok := sc.lookupVar(name)
		if !ok {
			v = sc.declareVar(name)
		}
		g.emit("mov rcx, [rip+%s]", DataPtrLabel)
		g.emit("lea rdx, [rip+%s]", DataTableLabel)
		g.emit("mov rax, [rdx+rcx*24]")
		g.emit("mov r8, [rdx+rcx*24+8]")
		g.emit("mov r9, [rdx+rcx*24+16]")
		g.emit("add rcx, 1")
		g.emit("mov [rip+%s], rcx", DataPtrLabel)

		if v.typ == String {
			ptrOff, lenOff := stringSlotOffsets(v)
			g.emit("mov [rbp-%d], r8", ptrOff)
			g.emit("mov [rbp-%d], r9", lenOff)
			continue
		}
		floatLbl := g.newLabel("dataflt")
		doneLbl := g.newLabel("datadone")
		g.emit("cmp rax, 1")
		g.emit("je %s", floatLbl)
		g.emit("cvtsi2sd xmm0, r8")
		g.emit("jmp %s", doneLbl)
		g.emitLabel(floatLbl)
		g.emit("movq xmm0, r8")
		g.emitLabel(doneLbl)
		g.storeVar(sc, name, Double)
	}
}

// genRestore resets _data_ptr to the data-pool index the pre-pass recorded
// for the target line, or to 0 for a bare RESTORE.
func (g *Generator) genRestore(s *RestoreStmt, sc *scope) {
	idx := 0
	if s.HasTarget {
		idx = g.dataAtLabel[s.Target.Line]
	}
	g.emit("mov qword ptr [rip+%s], %d", DataPtrLabel, idx)
}

// ---------------------------------------------------------------------
// END / STOP, OPEN / CLOSE
// ---------------------------------------------------------------------

// genEnd terminates the whole program immediately via libc exit, even
// from inside a SUB/FUNCTION frame - BASIC's END/STOP never just return to
// a caller.
func (g *Generator) genEnd(sc *scope) {
	g.emit("xor %s, %s", g.abi.IntArgRegs[0], g.abi.IntArgRegs[0])
	g.alignAndCall("exit")
}

func (g *Generator) genOpen(s *OpenStmt, sc *scope) {
	regs := g.abi.IntArgRegs
	g.genExpr(s.Filename, sc)
	g.emit("sub rsp, %d", TempSlotSize)
	g.emit("mov [rsp], rax")
	g.emit("mov [rsp+8], rdx")

	numType := g.genExpr(s.FileNum, sc)
	g.coerceCanonical(numType, Long)
	g.emit("mov %s, eax", regs[0])
	g.emit("mov %s, [rsp]", regs[1])
	g.emit("mov %s, [rsp+8]", regs[2])
	g.emit("mov %s, %d", regs[3], int(s.Mode))
	g.emit("add rsp, %d", TempSlotSize)
	g.alignAndCall(RtFileOpen)
}

func (g *Generator) genClose(s *CloseStmt, sc *scope) {
	t := g.genExpr(s.FileNum, sc)
	g.coerceCanonical(t, Long)
	g.emit("mov %s, eax", g.abi.IntArgRegs[0])
	g.alignAndCall(RtFileClose)
}
