package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRecognizedKeys(t *testing.T) {
	ctx, err := LoadConfig([]byte(`
noalias: true
disable_vectorize: false
vtcm_capacity: 65536
add_lower_pass:
  - [3, custom_lower]
`), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, ctx.OptLevel)
	assert.True(t, ctx.BoolConfig("noalias", false))
	assert.False(t, ctx.BoolConfig("disable_vectorize", true))
	assert.Equal(t, int64(65536), ctx.IntConfig("vtcm_capacity", 0))
	assert.Contains(t, ctx.Config, "add_lower_pass")
}

func TestLoadConfigUnknownKeysPassThrough(t *testing.T) {
	ctx, err := LoadConfig([]byte("my_backend_flag: purple\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, "purple", ctx.Config["my_backend_flag"])
}

func TestLoadConfigRejectsWrongKinds(t *testing.T) {
	tests := []string{
		"noalias: 3\n",
		"vtcm_capacity: lots\n",
		"add_lower_pass: true\n",
	}
	for _, doc := range tests {
		_, err := LoadConfig([]byte(doc), 0)
		assert.Error(t, err, "config %q", doc)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	_, err := LoadConfig([]byte(":\n  - ]["), 0)
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	ctx := NewContext(1)
	assert.True(t, ctx.BoolConfig("disable_assert", true))
	assert.Equal(t, int64(128), ctx.IntConfig("vtcm_capacity", 128))
}

func TestRecognizedOption(t *testing.T) {
	kind, ok := RecognizedOption("use_async_copy")
	require.True(t, ok)
	assert.Equal(t, ConfigBool, kind)

	kind, ok = RecognizedOption("vtcm_capacity")
	require.True(t, ok)
	assert.Equal(t, ConfigInteger, kind)

	_, ok = RecognizedOption("not_an_option")
	assert.False(t, ok)
}
