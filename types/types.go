// Package types defines the controlling value types used to key
// type-specific legalization rules.
//
// A controlling value type is the type of an instruction's result (or
// principal operand) that the legalizer inspects when choosing which
// transform group to run. Only the lane types the x86 definitions need
// are enumerated here.
package types

import "fmt"

// Type identifies one controlling value type.
type Type uint8

// Value types, in ascending width within each family.
const (
	// B1 is a single boolean bit.
	B1 Type = iota
	// I8, I16, I32, I64 are integer types.
	I8
	I16
	I32
	I64
	// F32 and F64 are IEEE 754 floating-point types.
	F32
	F64
)

var typeNames = [...]string{
	B1:  "b1",
	I8:  "i8",
	I16: "i16",
	I32: "i32",
	I64: "i64",
	F32: "f32",
	F64: "f64",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Bits returns the width of the type in bits.
func (t Type) Bits() int {
	switch t {
	case B1:
		return 1
	case I8:
		return 8
	case I16:
		return 16
	case I32, F32:
		return 32
	case I64, F64:
		return 64
	}
	return 0
}
