package main

// runtime.go - the hand-written runtime support library every compiled
// program links against. None of the retrieval pack's example repos ship
// assembly runtime bodies for this domain (there is no BASIC runtime.s
// anywhere to adapt), so this is authored fresh, grounded only in the
// calling convention abi.go establishes and the call-site contracts
// builtins.go/control_flow.go/array.go already fixed for every Rt* symbol.
// Every helper is a thin wrapper around a libc entry point (malloc,
// memcpy, strtod, snprintf, strstr, fopen/fputs/fgets/fclose) rather than a raw-
// syscall reimplementation, matching how the rest of codegen already
// treats libc as this compiler's one external dependency surface.
//
// r12, r13, r14 and r15 are used throughout as free scratch registers:
// nothing else the generator emits keeps a live value in them across a
// call, so unlike rbx they need no save/restore here.
//
// Builtin callers (builtins.go) reach these helpers through
// callRuntimeN, which coerces every numeric argument to a raw Double bit
// pattern before marshalling it into an integer argument register - so a
// helper that receives a numeric argument this way must cvttsd2si it back
// to an integer before use. Helpers reached by hand-placed calls
// (control_flow.go's PRINT/INPUT/file statements, array.go) instead
// receive already-typed values in the positions documented at their call
// site.

import (
	"fmt"
	"strings"
)

// GenerateRuntime emits the complete runtime library text for abi. Every
// symbol it defines is named through abi.Sym, exactly like every call
// site that invokes one, so the definition and every reference agree on
// the platform's C-symbol-mangling convention; internal compiler-
// generated labels (line/proc labels) never go through abi.Sym on either
// side and so never collide with this.
func GenerateRuntime(abi ABI) string {
	var b strings.Builder
	sym := abi.Sym
	regs := abi.IntArgRegs

	writeSym := func(name string) string {
		if abi.IsWin64 {
			return "_" + name
		}
		return name
	}
	writeCall := sym(writeSym("write"))
	fgetsCall := sym("fgets")
	stdinSym := sym("stdin")

	b.WriteString("\n" + DataSectionDirective + "\n")
	b.WriteString("_rt_fmt_g:\n    .asciz \"%g\"\n")
	b.WriteString("_rt_fmt_r:\n    .asciz \"r\"\n")
	b.WriteString("_rt_fmt_w:\n    .asciz \"w\"\n")
	b.WriteString("_rt_fmt_a:\n    .asciz \"a\"\n")

	b.WriteString("\n" + BSSSectionDirective + "\n")
	b.WriteString("_rt_buf:\n    .skip 64\n")
	b.WriteString("_rt_linebuf:\n    .skip 512\n")
	b.WriteString(fmt.Sprintf("_rt_files:\n    .skip %d\n", 16*8))

	b.WriteString("\n" + TextSectionDirective + "\n")

	fn := func(label string, body func()) {
		b.WriteString(sym(label) + ":\n")
		b.WriteString("    push rbp\n    mov rbp, rsp\n    and rsp, -16\n")
		body()
		b.WriteString("    mov rsp, rbp\n    pop rbp\n    ret\n\n")
	}
	e := func(format string, args ...interface{}) {
		b.WriteString("    " + fmt.Sprintf(format, args...) + "\n")
	}

	// writeBuf(ptrReg, lenOperand): call write(1, ptr, len) with ptr
	// already sitting in a register and len a register or immediate.
	writeBuf := func(ptrReg, lenOperand string) {
		if abi.IsWin64 {
			e("mov r8, %s", lenOperand)
			e("mov rdx, %s", ptrReg)
			e("mov rcx, 1")
		} else {
			e("mov rdx, %s", lenOperand)
			e("mov rsi, %s", ptrReg)
			e("mov rdi, 1")
		}
		e("call %s", writeCall)
	}
	// writeLabel(label, lenOperand): same, but the buffer is a static
	// label rather than an already-loaded pointer.
	writeLabel := func(label, lenOperand string) {
		e("lea rax, [rip+%s]", label)
		writeBuf("rax", lenOperand)
	}

	// toInt(reg): a double bit pattern arriving in a general register,
	// coerced in place to a truncated integer in the same register.
	toInt := func(reg string) {
		e("movq xmm0, %s", reg)
		e("cvttsd2si %s, xmm0", reg)
	}

	// ---------------------------------------------------------------
	// console PRINT / INPUT
	// ---------------------------------------------------------------

	fn(RtPrintString, func() { writeBuf(regs[0], regs[1]) })

	fn(RtPrintChar, func() {
		e("mov byte ptr [rip+_rt_buf], %s", lowByteReg(regs[0]))
		writeLabel("_rt_buf", "1")
	})

	fn(RtPrintNL, func() {
		e("mov byte ptr [rip+_rt_buf], 10")
		writeLabel("_rt_buf", "1")
	})

	fn(RtPrintFloat, func() {
		emitSnprintfG(e, abi, sym, "_rt_buf", 64)
		emitStrlenThenWrite(e, abi, sym, "_rt_buf", writeCall)
	})

	fn(RtInputString, func() {
		// stash the two destination addresses on the stack, not in a
		// register: emitTrimNewlineAndDup calls down into emitAllocCopy,
		// which uses r12/r13/r14 internally, so no register survives it.
		e("push %s", regs[0])
		e("push %s", regs[1])
		emitFgets(e, abi, sym, fgetsCall, stdinSym, "_rt_linebuf", 512)
		emitTrimNewlineAndDup(e, abi, sym, "_rt_linebuf")
		e("pop r9")  // &lenSlot
		e("pop r8")  // &ptrSlot
		e("mov [r8], rax")
		e("mov [r9], rcx")
	})

	fn(RtInputNumber, func() {
		e("mov r13, %s", regs[0])
		emitFgets(e, abi, sym, fgetsCall, stdinSym, "_rt_linebuf", 512)
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
			e("mov rdx, 0")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
			e("mov rsi, 0")
		}
		e("call %s", sym("strtod"))
		e("movsd [r13], xmm0")
	})

	// ---------------------------------------------------------------
	// string builtins - LEFT$/RIGHT$/MID$/INSTR/CHR$/VAL/STR$/concat
	// ---------------------------------------------------------------

	fn(RtLeft, func() {
		e("mov r12, %s", regs[0]) // ptr
		e("mov r13, %s", regs[1]) // len
		toInt(regs[2])
		e("mov rcx, %s", regs[2])
		e("cmp rcx, 0")
		e("jge 1f")
		e("xor rcx, rcx")
		b.WriteString("1:\n")
		e("cmp rcx, r13")
		e("jle 1f")
		e("mov rcx, r13")
		b.WriteString("1:\n")
		emitAllocCopy(e, abi, sym, "r12", "rcx")
	})

	fn(RtRight, func() {
		e("mov r12, %s", regs[0])
		e("mov r13, %s", regs[1])
		toInt(regs[2])
		e("mov rcx, %s", regs[2])
		e("cmp rcx, 0")
		e("jge 1f")
		e("xor rcx, rcx")
		b.WriteString("1:\n")
		e("cmp rcx, r13")
		e("jle 1f")
		e("mov rcx, r13")
		b.WriteString("1:\n")
		e("mov rax, r13")
		e("sub rax, rcx")
		e("add r12, rax") // start offset into the source buffer
		emitAllocCopy(e, abi, sym, "r12", "rcx")
	})

	fn(RtMid, func() {
		e("mov r12, %s", regs[0]) // ptr
		e("mov r13, %s", regs[1]) // len
		toInt(regs[2])
		e("mov r14, %s", regs[2]) // start, 1-based
		toInt(regs[3])
		e("mov rcx, %s", regs[3]) // length, or -1 for "to end"
		e("dec r14")
		e("cmp r14, 0")
		e("jge 1f")
		e("xor r14, r14")
		b.WriteString("1:\n")
		e("cmp r14, r13")
		e("jle 1f")
		e("mov r14, r13")
		b.WriteString("1:\n")
		e("mov rax, r13")
		e("sub rax, r14")
		e("cmp rcx, 0")
		e("jge 1f")
		e("mov rcx, rax")
		b.WriteString("1:\n")
		e("cmp rcx, rax")
		e("jle 1f")
		e("mov rcx, rax")
		b.WriteString("1:\n")
		e("add r12, r14")
		emitAllocCopy(e, abi, sym, "r12", "rcx")
	})

	fn(RtInstr, func() {
		toInt(regs[0])
		e("mov r12, %s", regs[0]) // 1-based start position
		// the needle pair is saved on the stack first (above the 32 bytes a
		// Win64 callee may use): its registers are caller-saved and the
		// memcpy below clobbers them, and on Win64 the needle length
		// arrives as the 5th argument, above the caller's shadow space.
		e("sub rsp, 48")
		e("mov [rsp+32], %s", regs[3]) // needle ptr
		if abi.IsWin64 {
			e("mov rax, [rbp+48]")
			e("mov [rsp+40], rax") // needle len
		} else {
			e("mov [rsp+40], %s", regs[4]) // needle len
		}
		e("mov r13, %s", regs[1]) // haystack ptr
		e("mov r14, %s", regs[2]) // haystack len
		// null-terminate both operands into scratch buffers so strstr
		// can be used directly instead of a hand-rolled byte scan.
		emitNullTerminate(e, abi, sym, "r13", "r14", "_rt_linebuf")
		e("mov r13, [rsp+32]") // needle ptr
		e("mov r14, [rsp+40]") // needle len
		e("add rsp, 48")
		emitNullTerminate(e, abi, sym, "r13", "r14", "_rt_buf")
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
			e("cmp r12, 1")
			e("jle 1f")
			e("dec r12")
			e("add rcx, r12")
			b.WriteString("1:\n")
			e("lea rdx, [rip+_rt_buf]")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
			e("cmp r12, 1")
			e("jle 1f")
			e("dec r12")
			e("add rdi, r12")
			b.WriteString("1:\n")
			e("lea rsi, [rip+_rt_buf]")
		}
		e("call %s", sym("strstr"))
		e("cmp rax, 0")
		e("je 2f")
		e("lea rcx, [rip+_rt_linebuf]")
		e("sub rax, rcx")
		e("add rax, 1")
		e("jmp 3f")
		b.WriteString("2:\n")
		e("xor rax, rax")
		b.WriteString("3:\n")
		e("cvtsi2sd xmm0, rax")
	})

	fn(RtChr, func() {
		toInt(regs[0])
		e("mov byte ptr [rip+_rt_buf], %s", lowByteReg(regs[0]))
		e("mov byte ptr [rip+_rt_buf+1], 0")
		emitAllocCopy(e, abi, sym, "", "1")
	})

	fn(RtVal, func() {
		e("mov r13, %s", regs[0]) // ptr
		e("mov r14, %s", regs[1]) // len
		emitNullTerminate(e, abi, sym, "r13", "r14", "_rt_linebuf")
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
			e("mov rdx, 0")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
			e("mov rsi, 0")
		}
		e("call %s", sym("strtod"))
	})

	fn(RtStr, func() {
		// the lone numeric argument arrives as a raw double bit
		// pattern, already in xmm0's natural position for snprintf.
		e("movq xmm0, %s", regs[0])
		emitSnprintfG(e, abi, sym, "_rt_buf", 64)
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_buf]")
		} else {
			e("lea rdi, [rip+_rt_buf]")
		}
		e("call %s", sym("strlen"))
		e("mov rcx, rax")
		emitAllocCopy(e, abi, sym, "", "rcx")
	})

	// _rt_strcat(ptr1,len1,ptr2,len2) -> rax:rdx: concatenates two
	// strings into a fresh malloc'd buffer.
	fn(RtStrcat, func() {
		e("push rbx")
		e("sub rsp, 8") // keep rsp 16-aligned at each call below despite the push
		e("mov r12, %s", regs[0])
		e("mov r13, %s", regs[1])
		e("mov r14, %s", regs[2])
		e("mov r15, %s", regs[3])
		e("mov rax, r13")
		e("add rax, r15")
		e("mov %s, rax", regs[0])
		e("call %s", sym("malloc"))
		e("mov rbx, rax") // rbx is callee-saved, so it survives both memcpy calls below
		if abi.IsWin64 {
			e("mov rcx, rbx")
			e("mov rdx, r12")
			e("mov r8, r13")
		} else {
			e("mov rdi, rbx")
			e("mov rsi, r12")
			e("mov rdx, r13")
		}
		e("call %s", sym("memcpy"))
		e("mov rax, rbx")
		e("add rax, r13")
		if abi.IsWin64 {
			e("mov rcx, rax")
			e("mov rdx, r14")
			e("mov r8, r15")
		} else {
			e("mov rdi, rax")
			e("mov rsi, r14")
			e("mov rdx, r15")
		}
		e("call %s", sym("memcpy"))
		e("mov rax, rbx")
		e("mov rdx, r13")
		e("add rdx, r15")
		e("add rsp, 8")
		e("pop rbx")
	})

	// ---------------------------------------------------------------
	// misc scalar builtins
	// ---------------------------------------------------------------

	fn(RtRnd, func() {
		e("call %s", sym("rand"))
		e("cvtsi2sd xmm0, eax")
		e("mov rax, %s", floatBits(1.0/2147483647.0))
		e("movq xmm1, rax")
		e("mulsd xmm0, xmm1")
	})

	fn(RtTimer, func() {
		e("xor %s, %s", regs[0], regs[0])
		e("call %s", sym("time"))
		e("cvtsi2sd xmm0, eax")
	})

	fn(RtCls, func() {
		e("mov byte ptr [rip+_rt_buf], 27")
		e("mov byte ptr [rip+_rt_buf+1], 91")
		e("mov byte ptr [rip+_rt_buf+2], 50")
		e("mov byte ptr [rip+_rt_buf+3], 74")
		writeLabel("_rt_buf", "4")
	})

	// ---------------------------------------------------------------
	// file I/O - a fixed 16-slot table of FILE* indexed by BASIC file
	// number, since classic BASIC programs never open more than a
	// handful of files at once.
	// ---------------------------------------------------------------

	fn(RtFileOpen, func() {
		e("mov r12, %s", regs[0]) // file number
		e("mov r13, %s", regs[1]) // name ptr
		e("mov r14, %s", regs[2]) // name len
		e("sub rsp, 48")
		e("mov [rsp+32], %s", regs[3]) // mode, saved across the memcpy below
		emitNullTerminate(e, abi, sym, "r13", "r14", "_rt_linebuf")
		e("mov r15, [rsp+32]") // mode: 0 input, 1 output, 2 append
		e("add rsp, 48")
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
		}
		e("cmp r15, 0")
		e("jne 1f")
		if abi.IsWin64 {
			e("lea rdx, [rip+_rt_fmt_r]")
		} else {
			e("lea rsi, [rip+_rt_fmt_r]")
		}
		e("jmp 3f")
		b.WriteString("1:\n")
		e("cmp r15, 1")
		e("jne 2f")
		if abi.IsWin64 {
			e("lea rdx, [rip+_rt_fmt_w]")
		} else {
			e("lea rsi, [rip+_rt_fmt_w]")
		}
		e("jmp 3f")
		b.WriteString("2:\n")
		if abi.IsWin64 {
			e("lea rdx, [rip+_rt_fmt_a]")
		} else {
			e("lea rsi, [rip+_rt_fmt_a]")
		}
		b.WriteString("3:\n")
		e("call %s", sym("fopen"))
		e("lea rcx, [rip+_rt_files]")
		e("mov [rcx+r12*8], rax")
	})

	fn(RtFileClose, func() {
		e("mov rax, %s", regs[0])
		e("lea rcx, [rip+_rt_files]")
		e("mov %s, [rcx+rax*8]", regs[0])
		e("call %s", sym("fclose"))
	})

	loadFileHandle := func(numReg string) {
		e("mov rax, %s", numReg)
		e("lea rcx, [rip+_rt_files]")
		e("mov r12, [rcx+rax*8]")
	}

	fn(RtFilePrintStr, func() {
		loadFileHandle(regs[0])
		e("mov r13, %s", regs[1])
		e("mov r14, %s", regs[2])
		emitNullTerminate(e, abi, sym, "r13", "r14", "_rt_buf")
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_buf]")
			e("mov rdx, r12")
		} else {
			e("lea rdi, [rip+_rt_buf]")
			e("mov rsi, r12")
		}
		e("call %s", sym("fputs"))
	})

	fn(RtFilePrintFloat, func() {
		loadFileHandle(regs[0])
		emitSnprintfG(e, abi, sym, "_rt_buf", 64)
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_buf]")
			e("mov rdx, r12")
		} else {
			e("lea rdi, [rip+_rt_buf]")
			e("mov rsi, r12")
		}
		e("call %s", sym("fputs"))
	})

	fn(RtFilePrintNL, func() {
		loadFileHandle(regs[0])
		if abi.IsWin64 {
			e("mov rcx, 10")
			e("mov rdx, r12")
		} else {
			e("mov rdi, 10")
			e("mov rsi, r12")
		}
		e("call %s", sym("fputc"))
	})

	fn(RtFileInputStr, func() {
		loadFileHandle(regs[0])
		// same stack-stash reasoning as RtInputString: the destination
		// addresses must outlive emitTrimNewlineAndDup's internal use of
		// r12/r13/r14.
		e("push %s", regs[1])
		e("push %s", regs[2])
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
			e("mov rdx, 512")
			e("mov r8, r12")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
			e("mov rsi, 512")
			e("mov rdx, r12")
		}
		e("call %s", sym("fgets"))
		emitTrimNewlineAndDup(e, abi, sym, "_rt_linebuf")
		e("pop r9") // &lenSlot
		e("pop r8") // &ptrSlot
		e("mov [r8], rax")
		e("mov [r9], rcx")
	})

	fn(RtFileInputNum, func() {
		loadFileHandle(regs[0])
		e("mov r13, %s", regs[1])
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
			e("mov rdx, 512")
			e("mov r8, r12")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
			e("mov rsi, 512")
			e("mov rdx, r12")
		}
		e("call %s", sym("fgets"))
		if abi.IsWin64 {
			e("lea rcx, [rip+_rt_linebuf]")
			e("mov rdx, 0")
		} else {
			e("lea rdi, [rip+_rt_linebuf]")
			e("mov rsi, 0")
		}
		e("call %s", sym("strtod"))
		e("movsd [r13], xmm0")
	})

	return b.String()
}

func lowByteReg(reg string) string {
	switch reg {
	case "rdi":
		return "dil"
	case "rsi":
		return "sil"
	case "rcx":
		return "cl"
	case "rdx":
		return "dl"
	case "r8":
		return "r8b"
	case "r9":
		return "r9b"
	}
	return "al"
}

// emitSnprintfG formats xmm0 as "%g" into bufLabel via snprintf, handling
// the SysV/Win64 variadic-argument convention difference: SysV/macOS pass
// the float count in al, while Win64 additionally duplicates the float
// into the integer register at the same argument position.
func emitSnprintfG(e func(string, ...interface{}), abi ABI, sym func(string) string, bufLabel string, size int) {
	if abi.IsWin64 {
		e("lea rcx, [rip+%s]", bufLabel)
		e("mov rdx, %d", size)
		e("lea r8, [rip+_rt_fmt_g]")
		e("movq r9, xmm0")
		e("movapd xmm3, xmm0")
	} else {
		e("lea rdi, [rip+%s]", bufLabel)
		e("mov rsi, %d", size)
		e("lea rdx, [rip+_rt_fmt_g]")
		e("mov al, 1")
	}
	e("call %s", sym("snprintf"))
}

func emitStrlenThenWrite(e func(string, ...interface{}), abi ABI, sym func(string) string, bufLabel string, writeCall string) {
	if abi.IsWin64 {
		e("lea rcx, [rip+%s]", bufLabel)
	} else {
		e("lea rdi, [rip+%s]", bufLabel)
	}
	e("call %s", sym("strlen"))
	if abi.IsWin64 {
		e("mov r8, rax")
		e("lea rdx, [rip+%s]", bufLabel)
		e("mov rcx, 1")
	} else {
		e("mov rdx, rax")
		e("lea rsi, [rip+%s]", bufLabel)
		e("mov rdi, 1")
	}
	e("call %s", writeCall)
}

func emitFgets(e func(string, ...interface{}), abi ABI, sym func(string) string, fgetsCall, stdinSym, bufLabel string, size int) {
	if abi.IsWin64 {
		e("lea rcx, [rip+%s]", bufLabel)
		e("mov rdx, %d", size)
		e("lea r8, [rip+%s]", stdinSym)
	} else {
		e("lea rdi, [rip+%s]", bufLabel)
		e("mov rsi, %d", size)
		e("lea rdx, [rip+%s]", stdinSym)
	}
	e("call %s", fgetsCall)
}

// emitTrimNewlineAndDup: strips a trailing '\n' from bufLabel, mallocs a
// right-sized copy, and leaves its address in rax and its length in rcx.
func emitTrimNewlineAndDup(e func(string, ...interface{}), abi ABI, sym func(string) string, bufLabel string) {
	if abi.IsWin64 {
		e("lea rcx, [rip+%s]", bufLabel)
	} else {
		e("lea rdi, [rip+%s]", bufLabel)
	}
	e("call %s", sym("strlen"))
	e("mov rcx, rax")
	e("lea r11, [rip+%s]", bufLabel)
	e("cmp rcx, 0")
	e("je 1f")
	e("cmp byte ptr [r11+rcx-1], 10")
	e("jne 1f")
	e("dec rcx")
	e("mov byte ptr [r11+rcx], 0")
	e("1:")
	emitAllocCopy(e, abi, sym, "r11", "rcx")
}

// emitAllocCopy: malloc(len+1) and copy len bytes from src plus a null
// terminator, leaving the new pointer in rax and len in rcx. src is passed
// as a bare register name holding the source address, or "" to copy from
// _rt_buf (the buffer RtChr and RtStr have just written).
func emitAllocCopy(e func(string, ...interface{}), abi ABI, sym func(string) string, srcReg, lenOperand string) {
	// r12/r13 (callee-saved) hold src/len across the malloc call, since
	// lenOperand/srcReg are frequently caller-saved registers malloc
	// itself is free to clobber.
	e("mov r13, %s", lenOperand)
	if srcReg != "" {
		e("mov r12, %s", srcReg)
	}
	e("mov rax, r13")
	e("add rax, 1")
	if abi.IsWin64 {
		e("mov rcx, rax")
	} else {
		e("mov rdi, rax")
	}
	e("call %s", sym("malloc"))
	e("mov r14, rax")
	if srcReg != "" {
		if abi.IsWin64 {
			e("mov rcx, r14")
			e("mov rdx, r12")
			e("mov r8, r13")
		} else {
			e("mov rdi, r14")
			e("mov rsi, r12")
			e("mov rdx, r13")
		}
	} else {
		if abi.IsWin64 {
			e("mov rcx, r14")
			e("lea rdx, [rip+_rt_buf]")
			e("mov r8, r13")
		} else {
			e("mov rdi, r14")
			e("lea rsi, [rip+_rt_buf]")
			e("mov rdx, r13")
		}
	}
	e("call %s", sym("memcpy"))
	e("mov byte ptr [r14+r13], 0")
	e("mov rax, r14")
	e("mov rcx, r13")
}

// emitNullTerminate copies a ptr:len string into scratchLabel and appends
// a NUL, so libc entry points that require a C string (strstr, fopen,
// strtod) can be used directly.
func emitNullTerminate(e func(string, ...interface{}), abi ABI, sym func(string) string, ptrReg, lenReg, scratchLabel string) {
	// stash the length in a callee-saved register first: lenReg may be a
	// caller-saved ABI argument register that memcpy itself overwrites.
	e("mov r15, %s", lenReg)
	if abi.IsWin64 {
		e("lea rcx, [rip+%s]", scratchLabel)
		e("mov rdx, %s", ptrReg)
		e("mov r8, r15")
	} else {
		e("lea rdi, [rip+%s]", scratchLabel)
		e("mov rsi, %s", ptrReg)
		e("mov rdx, r15")
	}
	e("call %s", sym("memcpy"))
	e("lea r11, [rip+%s]", scratchLabel)
	e("add r11, r15")
	e("mov byte ptr [r11], 0")
}
