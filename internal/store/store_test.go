package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/serialize"
	"github.com/skein-dev/skein/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "skein.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func savedDocument(t *testing.T, v ir.Value) string {
	t.Helper()
	text, err := serialize.SaveJSON(v)
	require.NoError(t, err)
	return text
}

func TestPutAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	body := savedDocument(t, ir.NewArray(ir.Int(1), ir.String("x")))

	a, err := s.Put(ctx, body)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ContentHash)
	assert.Equal(t, serialize.Version, a.Version)
	assert.Equal(t, int64(1), a.CreatedSeq)

	parsed, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	got, err := s.Get(ctx, a.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestPutIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	body := savedDocument(t, ir.Int(7))

	first, err := s.Put(ctx, body)
	require.NoError(t, err)
	second, err := s.Put(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	artifacts, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, artifacts, 1)
}

func TestListOrdersByCreation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a1, err := s.Put(ctx, savedDocument(t, ir.Int(1)))
	require.NoError(t, err)
	a2, err := s.Put(ctx, savedDocument(t, ir.Int(2)))
	require.NoError(t, err)

	artifacts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, a1.ContentHash, artifacts[0].ContentHash)
	assert.Equal(t, a2.ContentHash, artifacts[1].ContentHash)
	assert.Less(t, artifacts[0].CreatedSeq, artifacts[1].CreatedSeq)
}

func TestGetUnknownHash(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPutRejectsMalformedDocument(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Put(context.Background(), `{"root":"nope"}`)
	assert.Error(t, err)
}

func TestContentHashIgnoresWhitespaceAndKeyOrder(t *testing.T) {
	h1, err := store.ContentHash(`{"root":1,"nodes":[{"type_key":"int","attrs":{"v_int64":"1"}}]}`)
	require.NoError(t, err)
	h2, err := store.ContentHash(`{
		"nodes": [ {"attrs": {"v_int64": "1"}, "type_key": "int"} ],
		"root": 1
	}`)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestContentHashNormalizesUnicode(t *testing.T) {
	// "\u00e9" composed vs "e"+combining acute decomposed
	composed := "{\"root\":0,\"nodes\":[{\"type_key\":\"\u00e9\"}]}"
	decomposed := "{\"root\":0,\"nodes\":[{\"type_key\":\"e\u0301\"}]}"
	h1, err := store.ContentHash(composed)
	require.NoError(t, err)
	h2, err := store.ContentHash(decomposed)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestContentHashDistinguishesDocuments(t *testing.T) {
	h1, err := store.ContentHash(`{"root":0,"nodes":[]}`)
	require.NoError(t, err)
	h2, err := store.ContentHash(`{"root":1,"nodes":[]}`)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
