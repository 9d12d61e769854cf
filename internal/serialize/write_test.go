package serialize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/serialize"
	"github.com/skein-dev/skein/internal/testutil"
)

func TestStringKeyedMapEncoding(t *testing.T) {
	m := ir.NewMap()
	m.Set(ir.String("a"), ir.Int(1))
	m.Set(ir.String("b"), ir.Int(2))

	text, err := serialize.SaveJSON(m)
	require.NoError(t, err)

	doc := parseDocument(t, text)
	node := doc.Nodes[doc.Root]
	require.Equal(t, "ffi.Map", node.TypeKey)
	assert.Equal(t, []string{"a", "b"}, node.Keys)
	require.Len(t, node.Data, 2)
	assert.Equal(t, "1", doc.Nodes[node.Data[0]].Attrs["v_int64"])
	assert.Equal(t, "2", doc.Nodes[node.Data[1]].Attrs["v_int64"])
}

func TestGeneralMapEncoding(t *testing.T) {
	m := ir.NewMap()
	m.Set(ir.Int(1), ir.Int(2))
	m.Set(ir.Int(3), ir.Int(4))

	text, err := serialize.SaveJSON(m)
	require.NoError(t, err)

	doc := parseDocument(t, text)
	node := doc.Nodes[doc.Root]
	assert.Empty(t, node.Keys, "non-string-keyed maps interleave ids in data")
	require.Len(t, node.Data, 4)
	want := []string{"1", "2", "3", "4"}
	for i, id := range node.Data {
		assert.Equal(t, want[i], doc.Nodes[id].Attrs["v_int64"])
	}
}

func TestMixedKeyMapIsGeneral(t *testing.T) {
	m := ir.NewMap()
	m.Set(ir.String("a"), ir.Int(1))
	m.Set(ir.Int(2), ir.Int(3))

	text, err := serialize.SaveJSON(m)
	require.NoError(t, err)

	doc := parseDocument(t, text)
	node := doc.Nodes[doc.Root]
	assert.Empty(t, node.Keys)
	assert.Len(t, node.Data, 4)
}

func TestReprBytesPrintable(t *testing.T) {
	text, err := serialize.SaveJSON(&testutil.Sym{Name: "sym0"})
	require.NoError(t, err)

	doc := parseDocument(t, text)
	node := doc.Nodes[doc.Root]
	require.NotNil(t, node.ReprStr)
	assert.Equal(t, "sym0", *node.ReprStr)
	assert.Nil(t, node.ReprB64)
	assert.Empty(t, node.Attrs, "repr-bytes nodes are leaves")

	loaded, err := serialize.LoadJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "sym0", loaded.(*testutil.Sym).Name)
}

func TestReprBytesBinaryFallsBackToBase64(t *testing.T) {
	text, err := serialize.SaveJSON(&testutil.Sym{Name: "a\x01b"})
	require.NoError(t, err)

	doc := parseDocument(t, text)
	node := doc.Nodes[doc.Root]
	assert.Nil(t, node.ReprStr)
	require.NotNil(t, node.ReprB64)

	loaded, err := serialize.LoadJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "a\x01b", loaded.(*testutil.Sym).Name)
}

func TestObjectAttrsEncoding(t *testing.T) {
	x := &testutil.Box{A: -5, B: 9}
	text, err := serialize.SaveJSON(x)
	require.NoError(t, err)

	doc := parseDocument(t, text)
	node := doc.Nodes[doc.Root]
	assert.Equal(t, "test.Box", node.TypeKey)
	assert.Equal(t, "-5", node.Attrs["a"])
	assert.Equal(t, "9", node.Attrs["b"])
	assert.Equal(t, "null", node.Attrs["field1"])
}

func TestSaveRejectsUnregisteredObject(t *testing.T) {
	_, err := serialize.SaveJSON(&unregisteredNode{})
	require.Error(t, err)
	assert.ErrorIs(t, err, serialize.ErrUnsupportedType)
}

type unregisteredNode struct {
	ir.Node
}

func (*unregisteredNode) TypeKey() string { return "test.Unregistered" }

func TestNoneSerializesAsEmptyTypeKey(t *testing.T) {
	text, err := serialize.SaveJSON(ir.None{})
	require.NoError(t, err)
	doc := parseDocument(t, text)
	assert.Equal(t, 0, doc.Root, "id 0 is reserved for None")
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "", doc.Nodes[0].TypeKey)
}
