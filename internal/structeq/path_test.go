package structeq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skein-dev/skein/internal/ir"
)

func TestStepString(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{ObjectField("body"), ".body"},
		{ArrayIndex(3), "[3]"},
		{ArrayIndexMissing(2), "[2<missing>]"},
		{MapKey(ir.String("k")), `["k"]`},
		{MapKey(ir.Int(7)), "[7]"},
		{MapKeyMissing(ir.Bool(true)), "[true<missing>]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.step.String())
	}
}

func TestPathString(t *testing.T) {
	p := Path{ObjectField("field1"), ArrayIndex(1), MapKey(ir.String("k"))}
	assert.Equal(t, `<root>.field1[1]["k"]`, p.String())

	assert.Equal(t, "<root>", Path{}.String())
}
