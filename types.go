package main

// types.go - the five-element BASIC type-promotion lattice and its
// coercion/suffix rules (spec.md §4.4).

// DataType is one element of the lattice Integer < Long < Single < Double,
// plus String (which never implicitly mixes with the numeric types).
type DataType int

const (
	Integer DataType = iota // 16-bit signed
	Long                    // 32-bit signed
	Single                  // 32-bit float
	Double                  // 64-bit float
	String
)

func (d DataType) String() string {
	switch d {
	case Integer:
		return "Integer"
	case Long:
		return "Long"
	case Single:
		return "Single"
	case Double:
		return "Double"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// IsIntegerType reports whether d is one of the two integer-representation
// types (Integer, Long share the predicate "integer type" per spec.md §3).
func (d DataType) IsIntegerType() bool {
	return d == Integer || d == Long
}

// IsNumeric reports whether d participates in the arithmetic lattice.
func (d DataType) IsNumeric() bool {
	return d != String
}

// TypeForSuffix maps an identifier's trailing sigil to its DataType. The
// mapping is total: no suffix maps to Double.
func TypeForSuffix(name string) DataType {
	if name == "" {
		return Double
	}
	switch name[len(name)-1] {
	case '%':
		return Integer
	case '&':
		return Long
	case '!':
		return Single
	case '#':
		return Double
	case '$':
		return String
	default:
		return Double
	}
}

// PromoteArith computes the static result type of a binary arithmetic
// operator applied to operands of type a and b, implementing spec.md
// §4.4's promotion law and special cases. op is one of the BinaryOp
// constants defined in ast.go.
func PromoteArith(op BinaryOp, a, b DataType) DataType {
	switch op {
	case OpDiv:
		return Double
	case OpIntDiv, OpMod:
		return Long
	case OpPow:
		return Double
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return Long
	case OpAnd, OpOr, OpXor:
		return Long
	case OpAdd:
		if a == String && b == String {
			return String
		}
		fallthrough
	default:
		return widerOf(a, b)
	}
}

// widerOf returns the wider of the two types under Integer < Long < Single
// < Double. String operands are only meaningful for Add (handled by the
// caller); if one reaches here it is treated as incompatible and Double is
// returned as the conservative numeric fallback, since the parser/codegen
// never actually materializes this path without first checking for the
// String special case.
func widerOf(a, b DataType) DataType {
	rank := func(t DataType) int {
		switch t {
		case Integer:
			return 0
		case Long:
			return 1
		case Single:
			return 2
		case Double:
			return 3
		default:
			return 3
		}
	}
	if rank(a) >= rank(b) {
		if a == String {
			return Double
		}
		return a
	}
	if b == String {
		return Double
	}
	return b
}
