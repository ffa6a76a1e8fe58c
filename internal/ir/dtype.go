package ir

import (
	"fmt"
	"math"
)

// DType is a scalar element type for array data.
// The zero value means "unconstrained": values keep whatever type they arrive with.
type DType string

// Supported element types.
const (
	Bool    DType = "bool"
	Int8    DType = "int8"
	Int16   DType = "int16"
	Int32   DType = "int32"
	Int64   DType = "int64"
	Uint8   DType = "uint8"
	Uint16  DType = "uint16"
	Uint32  DType = "uint32"
	Uint64  DType = "uint64"
	Float32 DType = "float32"
	Float64 DType = "float64"
)

// ValidDTypes lists the allowed non-empty dtype names.
var ValidDTypes = map[DType]bool{
	Bool: true, Int8: true, Int16: true, Int32: true, Int64: true,
	Uint8: true, Uint16: true, Uint32: true, Uint64: true,
	Float32: true, Float64: true,
}

// numpyCodes maps numpy-style type strings to dtypes.
// Endianness is accepted but not tracked.
var numpyCodes = map[string]DType{
	"|b1": Bool,
	"|i1": Int8, "|u1": Uint8,
	"<i2": Int16, "<i4": Int32, "<i8": Int64,
	"<u2": Uint16, "<u4": Uint32, "<u8": Uint64,
	"<f4": Float32, "<f8": Float64,
	">i2": Int16, ">i4": Int32, ">i8": Int64,
	">u2": Uint16, ">u4": Uint32, ">u8": Uint64,
	">f4": Float32, ">f8": Float64,
	// bare python/numpy aliases
	"int": Int64, "float": Float64,
}

// ParseDType parses a dtype name ("float64") or numpy code ("<f8").
// The empty string parses to the unconstrained dtype.
func ParseDType(s string) (DType, error) {
	if s == "" {
		return "", nil
	}
	if d := DType(s); ValidDTypes[d] {
		return d, nil
	}
	if d, ok := numpyCodes[s]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unsupported dtype %q", s)
}

// IsZero reports whether the dtype is unconstrained.
func (d DType) IsZero() bool {
	return d == ""
}

// IsInteger reports whether the dtype is a signed or unsigned integer.
func (d DType) IsInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// Cast converts v the way an explicit Go conversion to the dtype would.
// Floats truncate toward zero, integers wrap. NaN and Inf cast to 0 for
// integer dtypes so results do not depend on the platform.
func (d DType) Cast(v float64) float64 {
	if d.IsInteger() && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return 0
	}
	switch d {
	case Bool:
		if v != 0 {
			return 1
		}
		return 0
	case Int8:
		return float64(int8(int64(v)))
	case Int16:
		return float64(int16(int64(v)))
	case Int32:
		return float64(int32(int64(v)))
	case Int64:
		return float64(int64(v))
	case Uint8:
		return float64(uint8(int64(v)))
	case Uint16:
		return float64(uint16(int64(v)))
	case Uint32:
		return float64(uint32(int64(v)))
	case Uint64:
		if v < 0 {
			return float64(uint64(int64(v)))
		}
		return float64(uint64(v))
	case Float32:
		return float64(float32(v))
	default:
		return v
	}
}

// String implements fmt.Stringer. Unconstrained dtypes print as "any".
func (d DType) String() string {
	if d == "" {
		return "any"
	}
	return string(d)
}
