package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32Type, "float32"},
		{Float64Type, "float64"},
		{Int64Type, "int64"},
		{UInt8Type, "uint8"},
		{BoolType, "bool"},
		{HandleType, "handle"},
		{DataType{Code: DTypeBFloat, Bits: 16, Lanes: 1}, "bfloat16"},
		{DataType{Code: DTypeFloat, Bits: 16, Lanes: 4}, "float16x4"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.dtype.String())
			parsed, err := ParseDataType(tt.str)
			require.NoError(t, err)
			assert.Equal(t, tt.dtype, parsed)
		})
	}
}

func TestParseDataTypeRejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "banana", "floaty32", "int", "intx4"} {
		_, err := ParseDataType(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestElemBytes(t *testing.T) {
	assert.Equal(t, int64(4), Float32Type.ElemBytes())
	assert.Equal(t, int64(8), Int64Type.ElemBytes())
	assert.Equal(t, int64(1), BoolType.ElemBytes())
	assert.Equal(t, int64(8), DataType{Code: DTypeFloat, Bits: 16, Lanes: 4}.ElemBytes())
}
