package main

import "fmt"

// abi.go - x86-64 calling-convention descriptors (spec.md §4.6). The
// reference compiler expresses each ABI as a separate trait impl chosen at
// compile time via cfg(); Go has no conditional compilation on the target
// triple for this purpose, so the three conventions are instead values of
// one struct, selected at runtime by the --target flag (SPEC_FULL.md §6).

// ABI describes everything the code generator needs to know to marshal
// call arguments and name external symbols for one target triple.
type ABI struct {
	Name string

	// IntArgRegs lists the integer/pointer argument registers in order.
	// String arguments consume two consecutive slots (pointer, then
	// length); everything else consumes one.
	IntArgRegs []string

	// SymbolPrefix is prepended to every externally-visible symbol
	// ("_" on Mach-O, "" elsewhere).
	SymbolPrefix string

	// IsWin64 selects Win64's shadow-space and stack-argument behavior in
	// codegen_call.go.
	IsWin64 bool
}

// SysV is the System V AMD64 ABI used by Linux.
func SysV() ABI {
	return ABI{
		Name:         "linux",
		IntArgRegs:   []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"},
		SymbolPrefix: "",
		IsWin64:      false,
	}
}

// MachO is System V's register order with Mach-O's underscore-prefixed
// symbol convention (macOS).
func MachO() ABI {
	return ABI{
		Name:         "macos",
		IntArgRegs:   []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"},
		SymbolPrefix: "_",
		IsWin64:      false,
	}
}

// Win64 is the Windows x64 ABI: four integer argument registers, a
// mandatory 32-byte shadow space reserved by the caller, and 5th+ integer
// arguments passed on the stack above the shadow space.
func Win64() ABI {
	return ABI{
		Name:         "windows",
		IntArgRegs:   []string{"rcx", "rdx", "r8", "r9"},
		SymbolPrefix: "",
		IsWin64:      true,
	}
}

// Sym returns name with this ABI's symbol prefix applied.
func (a ABI) Sym(name string) string {
	return a.SymbolPrefix + name
}

// ABIForTarget resolves the --target flag's value to an ABI descriptor.
func ABIForTarget(target string) (ABI, error) {
	switch target {
	case "linux":
		return SysV(), nil
	case "macos":
		return MachO(), nil
	case "windows":
		return Win64(), nil
	default:
		return ABI{}, fmt.Errorf("unknown target %q (want linux, macos, or windows)", target)
	}
}
