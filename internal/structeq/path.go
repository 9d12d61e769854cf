package structeq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skein-dev/skein/internal/ir"
)

// StepKind enumerates the access path step variants.
type StepKind uint8

const (
	StepObjectField StepKind = iota
	StepArrayIndex
	StepArrayIndexMissing
	StepMapKey
	StepMapKeyMissing
)

// Step is one move from a value to one of its children.
type Step struct {
	Kind  StepKind
	Field string   // StepObjectField
	Index int      // StepArrayIndex, StepArrayIndexMissing
	Key   ir.Value // StepMapKey, StepMapKeyMissing
}

// ObjectField steps into the named field of an object.
func ObjectField(name string) Step {
	return Step{Kind: StepObjectField, Field: name}
}

// ArrayIndex steps into element i of an array.
func ArrayIndex(i int) Step {
	return Step{Kind: StepArrayIndex, Index: i}
}

// ArrayIndexMissing marks index i as absent on this side.
func ArrayIndexMissing(i int) Step {
	return Step{Kind: StepArrayIndexMissing, Index: i}
}

// MapKey steps into the entry under k.
func MapKey(k ir.Value) Step {
	return Step{Kind: StepMapKey, Key: k}
}

// MapKeyMissing marks key k as absent on this side.
func MapKeyMissing(k ir.Value) Step {
	return Step{Kind: StepMapKeyMissing, Key: k}
}

func (s Step) String() string {
	switch s.Kind {
	case StepObjectField:
		return "." + s.Field
	case StepArrayIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case StepArrayIndexMissing:
		return "[" + strconv.Itoa(s.Index) + "<missing>]"
	case StepMapKey:
		return "[" + keyString(s.Key) + "]"
	case StepMapKeyMissing:
		return "[" + keyString(s.Key) + "<missing>]"
	}
	return "<invalid>"
}

func keyString(k ir.Value) string {
	switch x := k.(type) {
	case ir.String:
		return strconv.Quote(string(x))
	case ir.Int:
		return strconv.FormatInt(int64(x), 10)
	case ir.Bool:
		return strconv.FormatBool(bool(x))
	default:
		return fmt.Sprintf("<%s>", ir.KindOf(k))
	}
}

// Path is the ordered sequence of steps from a root to a sub-value.
type Path []Step

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("<root>")
	for _, s := range p {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// PathPair is the pair of access paths from each root to the first
// diverging position.
type PathPair struct {
	Lhs Path
	Rhs Path
}
