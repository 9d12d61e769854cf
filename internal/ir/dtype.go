package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// DTypeCode enumerates the scalar type families of a DataType.
type DTypeCode uint8

const (
	DTypeInt DTypeCode = iota
	DTypeUInt
	DTypeFloat
	DTypeHandle
	DTypeBFloat
)

// DataType is a dtype triple: type-family code, bit width of a lane,
// and lane count (>1 for vector types).
type DataType struct {
	Code  DTypeCode
	Bits  uint8
	Lanes uint16
}

func (DataType) isValue() {}

// Common dtypes.
var (
	BoolType    = DataType{Code: DTypeUInt, Bits: 1, Lanes: 1}
	Int32Type   = DataType{Code: DTypeInt, Bits: 32, Lanes: 1}
	Int64Type   = DataType{Code: DTypeInt, Bits: 64, Lanes: 1}
	UInt8Type   = DataType{Code: DTypeUInt, Bits: 8, Lanes: 1}
	Float16Type = DataType{Code: DTypeFloat, Bits: 16, Lanes: 1}
	Float32Type = DataType{Code: DTypeFloat, Bits: 32, Lanes: 1}
	Float64Type = DataType{Code: DTypeFloat, Bits: 64, Lanes: 1}
	HandleType  = DataType{Code: DTypeHandle, Bits: 64, Lanes: 1}
)

// ElemBytes returns the number of bytes one element (all lanes)
// occupies, rounding sub-byte lanes up.
func (t DataType) ElemBytes() int64 {
	return (int64(t.Bits)*int64(t.Lanes) + 7) / 8
}

// String returns the canonical dtype spelling, e.g. "float32",
// "uint8", "bfloat16", "bool", "handle" or "int32x4" for vectors.
func (t DataType) String() string {
	if t.Code == DTypeUInt && t.Bits == 1 && t.Lanes == 1 {
		return "bool"
	}
	var base string
	switch t.Code {
	case DTypeInt:
		base = "int" + strconv.Itoa(int(t.Bits))
	case DTypeUInt:
		base = "uint" + strconv.Itoa(int(t.Bits))
	case DTypeFloat:
		base = "float" + strconv.Itoa(int(t.Bits))
	case DTypeBFloat:
		base = "bfloat" + strconv.Itoa(int(t.Bits))
	case DTypeHandle:
		base = "handle"
	default:
		base = fmt.Sprintf("custom[%d]%d", t.Code, t.Bits)
	}
	if t.Lanes != 1 {
		base += "x" + strconv.Itoa(int(t.Lanes))
	}
	return base
}

// ParseDataType parses the canonical dtype spelling produced by
// DataType.String.
func ParseDataType(s string) (DataType, error) {
	orig := s
	lanes := uint16(1)
	if i := strings.LastIndexByte(s, 'x'); i > 0 {
		n, err := strconv.ParseUint(s[i+1:], 10, 16)
		if err == nil {
			lanes = uint16(n)
			s = s[:i]
		}
	}
	switch {
	case s == "bool":
		return DataType{Code: DTypeUInt, Bits: 1, Lanes: lanes}, nil
	case s == "handle":
		return DataType{Code: DTypeHandle, Bits: 64, Lanes: lanes}, nil
	case strings.HasPrefix(s, "int"):
		return parseBits(orig, DTypeInt, s[3:], lanes)
	case strings.HasPrefix(s, "uint"):
		return parseBits(orig, DTypeUInt, s[4:], lanes)
	case strings.HasPrefix(s, "float"):
		return parseBits(orig, DTypeFloat, s[5:], lanes)
	case strings.HasPrefix(s, "bfloat"):
		return parseBits(orig, DTypeBFloat, s[6:], lanes)
	}
	return DataType{}, fmt.Errorf("unknown dtype %q", orig)
}

func parseBits(orig string, code DTypeCode, digits string, lanes uint16) (DataType, error) {
	bits, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return DataType{}, fmt.Errorf("unknown dtype %q", orig)
	}
	return DataType{Code: code, Bits: uint8(bits), Lanes: lanes}, nil
}
