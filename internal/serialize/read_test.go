package serialize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/serialize"
	_ "github.com/skein-dev/skein/internal/testutil"
)

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := serialize.LoadJSON(`{"root": 1, "nodes": [`)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrMalformedInput)
}

func TestLoadRejectsUnknownTypeKey(t *testing.T) {
	_, err := serialize.LoadJSON(`{"root":1,"nodes":[{"type_key":""},{"type_key":"test.NoSuchType"}],"b64ndarrays":[]}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrUnknownTypeKey)
}

func TestLoadRejectsCycle(t *testing.T) {
	// two let nodes referencing each other through their value fields
	text := `{"root":1,"nodes":[` +
		`{"type_key":""},` +
		`{"type_key":"test.Let","attrs":{"var":"null","value":"2","body":"0"}},` +
		`{"type_key":"test.Let","attrs":{"var":"null","value":"1","body":"0"}}` +
		`],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrCycle)
	assert.Contains(t, err.Error(), "Cyclic reference detected")
}

func TestLoadRejectsContainerCycle(t *testing.T) {
	// an array containing itself
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"ffi.Array","data":[1]}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrCycle)
}

func TestLoadAcceptsDAGSharing(t *testing.T) {
	// one object referenced from two array slots is sharing, not a cycle
	text := `{"root":1,"nodes":[` +
		`{"type_key":""},` +
		`{"type_key":"ffi.Array","data":[2,2]},` +
		`{"type_key":"test.Box","attrs":{"a":"1","b":"2","field1":"null"}}` +
		`],"b64ndarrays":[]}`
	v, err := serialize.LoadJSON(text)
	require.NoError(t, err)
	arr := v.(*ir.Array)
	assert.Same(t, arr.Elems[0], arr.Elems[1])
}

func TestLoadRejectsMissingField(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"test.Box","attrs":{"a":"1","field1":"null"}}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrMissingField)
	assert.Contains(t, err.Error(), `"b"`, "the access hint names the missing field")
}

func TestLoadRejectsBadFieldValue(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"test.Box","attrs":{"a":"xyz","b":"2","field1":"null"}}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrBadFieldValue)
}

func TestLoadRejectsIDOutOfRange(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"ffi.Array","data":[7]}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrBadFieldValue)
}

func TestLoadRejectsRootOutOfRange(t *testing.T) {
	text := `{"root":5,"nodes":[{"type_key":""}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrMalformedInput)
}

func TestLoadRejectsConflictingRepr(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"test.Sym","repr_str":"a","repr_b64":"YQ=="}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrMalformedInput)
}

func TestLoadRejectsBadReprBase64(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"test.Sym","repr_b64":"!!!"}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrReprDecode)
}

func TestLoadRejectsBadNDArrayBlob(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"ffi.NDArray","attrs":{"ndarray_index":"0"}}],"b64ndarrays":["!!!"]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrReprDecode)
}

func TestLoadRejectsNDArrayIndexOutOfRange(t *testing.T) {
	text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"ffi.NDArray","attrs":{"ndarray_index":"3"}}],"b64ndarrays":[]}`
	_, err := serialize.LoadJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrBadFieldValue)
}

func TestLoadAcceptsFloatTokens(t *testing.T) {
	tests := []struct {
		token string
		check func(f float64) bool
	}{
		{"inf", func(f float64) bool { return math.IsInf(f, 1) }},
		{"-inf", func(f float64) bool { return math.IsInf(f, -1) }},
		{"nan", math.IsNaN},
		{"0.25", func(f float64) bool { return f == 0.25 }},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			text := `{"root":1,"nodes":[{"type_key":""},{"type_key":"float","attrs":{"v_float64":"` + tt.token + `"}}],"b64ndarrays":[]}`
			v, err := serialize.LoadJSON(text)
			require.NoError(t, err)
			assert.True(t, tt.check(float64(v.(ir.Float))))
		})
	}
}
