package main

// constants.go - Compiler-wide constants and configuration values

const (
	// CompilerVersion is the current version of the compiler.
	CompilerVersion = "0.1.0"

	// StackAlignment is the mandatory alignment of rsp at every call site.
	StackAlignment = 16

	// PointerSize is the size of a pointer in bytes (64-bit architecture).
	PointerSize = 8

	// SlotSize is the width of every local-variable/array-pointer slot,
	// regardless of the variable's declared BASIC type.
	SlotSize = 8

	// TempSlotSize is the width of a stack slot used to preserve a
	// sub-expression result across further evaluation. 16, not 8, so rsp
	// stays 16-byte aligned across nested evaluation without per-site
	// bookkeeping.
	TempSlotSize = 16
)

// Win64-specific constants.
const (
	Win64ShadowSpace    = 32
	Win64FifthArgOffset = 32
	Win64StackArgsSpace = 48
)

// GOSUB auxiliary return-address stack, isolated from the machine stack so
// RETURN can unwind across procedure frames.
const (
	GosubStackSize = 8192
)

// Assembly generation constants.
const (
	DataSectionDirective = ".data"
	BSSSectionDirective  = ".bss"
	TextSectionDirective = ".text"
	GlobalDirective      = ".globl"
	IntelSyntaxDirective = ".intel_syntax noprefix"
)

// Label/symbol naming conventions.
const (
	StringLabelPrefix  = "_str_"
	LineLabelPrefix    = "_line_"
	NamedLabelPrefix   = "_label_"
	ProcLabelPrefix    = "_proc_"
	DataTableLabel     = "_data_table"
	DataCountLabel     = "_data_count"
	DataPtrLabel       = "_data_ptr"
	GosubStackLabel    = "_gosub_stack"
	GosubStackPtrLabel = "_gosub_sp"

	// stackReservePlaceholderFmt is emitted once per scope (main, and each
	// SUB/FUNCTION) and textually patched after the scope's body has been
	// fully emitted and its peak stack usage is known. The proc name is
	// embedded so multiple scopes' placeholders never collide under a
	// single string-replace pass.
	stackReservePlaceholderFmt = "    sub rsp, 0         # STACK_RESERVE:%s\n"
)

// Runtime helper symbol names - the only thing this module knows about the
// external runtime library.
const (
	RtPrintString = "_rt_print_string"
	RtPrintChar   = "_rt_print_char"
	RtPrintFloat  = "_rt_print_float"
	RtPrintNL     = "_rt_print_newline"

	RtInputString = "_rt_input_string"
	RtInputNumber = "_rt_input_number"

	RtLeft   = "_rt_left"
	RtRight  = "_rt_right"
	RtMid    = "_rt_mid"
	RtInstr  = "_rt_instr"
	RtChr    = "_rt_chr"
	RtVal    = "_rt_val"
	RtStr    = "_rt_str"
	RtStrcat = "_rt_strcat"

	RtRnd   = "_rt_rnd"
	RtTimer = "_rt_timer"
	RtCls   = "_rt_cls"

	RtReadNumber = "_rt_read_number"
	RtReadString = "_rt_read_string"
	RtRestore    = "_rt_restore"

	RtFileOpen       = "_rt_file_open"
	RtFileClose      = "_rt_file_close"
	RtFilePrintStr   = "_rt_file_print_string"
	RtFilePrintFloat = "_rt_file_print_float"
	RtFilePrintNL    = "_rt_file_print_newline"
	RtFileInputNum   = "_rt_file_input_number"
	RtFileInputStr   = "_rt_file_input_string"
)

// libcMathFns dispatches directly to the platform libm function after the
// argument is coerced to Double.
var libcMathFns = map[string]string{
	"SIN": "sin",
	"COS": "cos",
	"TAN": "tan",
	"ATN": "atan",
	"EXP": "exp",
	"LOG": "log",
}
