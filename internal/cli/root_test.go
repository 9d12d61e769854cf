package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/serialize"
	_ "github.com/skein-dev/skein/internal/testutil"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func savedFile(t *testing.T, v ir.Value) string {
	t.Helper()
	text, err := serialize.SaveJSON(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "xml", "validate", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateCommand(t *testing.T) {
	path := savedFile(t, ir.NewArray(ir.Int(1), ir.Int(2)))
	out, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestValidateCommandRejectsBadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"root":"x"}`), 0o644))
	_, err := runCommand(t, "validate", path)
	assert.Error(t, err)
}

func TestDiffCommandEqualGraphs(t *testing.T) {
	lhs := savedFile(t, ir.NewArray(ir.Int(1)))
	rhs := savedFile(t, ir.NewArray(ir.Int(1)))
	out, err := runCommand(t, "diff", lhs, rhs)
	require.NoError(t, err)
	assert.Contains(t, out, "structurally equal")
}

func TestDiffCommandReportsMismatch(t *testing.T) {
	lhs := savedFile(t, ir.NewArray(ir.Int(1)))
	rhs := savedFile(t, ir.NewArray(ir.Int(2)))
	out, err := runCommand(t, "diff", lhs, rhs)
	require.Error(t, err)
	assert.Contains(t, out, "[0]")
}

func TestInspectCommand(t *testing.T) {
	path := savedFile(t, ir.NewArray(ir.String("hello")))
	out, err := runCommand(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ffi.Array")
	assert.Contains(t, out, `repr="hello"`)
}
