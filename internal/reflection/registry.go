package reflection

import (
	"fmt"
	"sync"

	"github.com/skein-dev/skein/internal/ir"
)

// StructuralKind selects the equality policy for a registered type.
type StructuralKind uint8

const (
	// Unsupported compares by pointer identity only.
	Unsupported StructuralKind = iota
	// UniqueInstance compares by pointer identity only; the type is
	// a singleton-per-meaning node.
	UniqueInstance
	// ConstTreeNode compares by content; identity short-circuits to
	// equal. No correspondence is recorded.
	ConstTreeNode
	// DAGNode compares by content once, then by the recorded
	// correspondence: shared occurrences must map consistently.
	DAGNode
	// FreeVar is a binding occurrence; distinct instances compare
	// equal only inside a region that permits new bindings.
	FreeVar
)

// FieldFlags annotate a field for the equality engine.
type FieldFlags uint8

const (
	// SEqHashIgnore skips the field for structural equality.
	SEqHashIgnore FieldFlags = 1 << iota
	// SEqHashDef marks the field subtree as a binding region: free
	// vars first seen under it may be freshly mapped.
	SEqHashDef
)

// StaticType is the declared static type tag of a field. It drives
// the loader's per-field decoding and dependency discovery; the
// runtime value drives the writer.
type StaticType uint8

const (
	// StaticAny accepts any value; serialized as a node reference.
	StaticAny StaticType = iota
	// StaticBool and StaticInt inline as decimal int64 strings.
	StaticBool
	StaticInt
	// StaticFloat inlines as a 17-digit decimal string.
	StaticFloat
	// StaticDataType inlines as the canonical dtype string.
	StaticDataType
	// StaticObject is any heap value (object, container, string,
	// shape, tensor); serialized as a node reference.
	StaticObject
)

// IsReference reports whether fields of this static type serialize as
// node ids and therefore contribute dependency edges on load.
func (t StaticType) IsReference() bool {
	return t == StaticAny || t == StaticObject
}

// FieldInfo describes one reflected field of a node type.
type FieldInfo struct {
	Name  string
	Type  StaticType
	Flags FieldFlags

	// Get reads the field from a node of the owning type.
	Get func(obj ir.Object) ir.Value
	// Set writes the field on a node of the owning type.
	Set func(obj ir.Object, v ir.Value) error
}

// TypeInfo is the registered metadata of a node type.
type TypeInfo struct {
	// TypeKey is the stable cross-process identifier of the type.
	TypeKey string
	// Kind selects the structural equality policy.
	Kind StructuralKind
	// Fields in declared order; this order is canonical for
	// serialization and equality.
	Fields []FieldInfo

	// CreateInit constructs an empty node, optionally consuming repr
	// bytes to populate leaf state.
	CreateInit func(reprBytes []byte) (ir.Object, error)
	// ReprBytes returns the short leaf serialization of a node, if
	// the type has one. Types with repr bytes serialize as leaves.
	ReprBytes func(obj ir.Object) ([]byte, bool)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]*TypeInfo)
)

// Register adds a type to the global registry. It panics on a
// duplicate or malformed registration; registration runs at program
// initialization where a panic is an immediate programmer error.
func Register(info *TypeInfo) {
	if info.TypeKey == "" {
		panic("reflection: registration with empty type key")
	}
	if info.CreateInit == nil {
		panic(fmt.Sprintf("reflection: type %q registered without CreateInit", info.TypeKey))
	}
	seen := make(map[string]bool, len(info.Fields))
	for _, f := range info.Fields {
		if f.Name == "" || seen[f.Name] {
			panic(fmt.Sprintf("reflection: type %q has duplicate or empty field name %q", info.TypeKey, f.Name))
		}
		seen[f.Name] = true
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[info.TypeKey]; ok {
		panic(fmt.Sprintf("reflection: type %q registered twice", info.TypeKey))
	}
	registry[info.TypeKey] = info
}

// Lookup returns the TypeInfo registered under typeKey.
func Lookup(typeKey string) (*TypeInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()
	info, ok := registry[typeKey]
	return info, ok
}

// InfoFor returns the TypeInfo of obj's type.
func InfoFor(obj ir.Object) (*TypeInfo, bool) {
	return Lookup(obj.TypeKey())
}

// ForEachField calls fn for every field of info in declared order.
func ForEachField(info *TypeInfo, fn func(f *FieldInfo)) {
	for i := range info.Fields {
		fn(&info.Fields[i])
	}
}

// ForEachFieldWithEarlyStop calls fn for every field in declared
// order, stopping at the first field for which fn returns true. It
// reports whether the iteration stopped early.
func ForEachFieldWithEarlyStop(info *TypeInfo, fn func(f *FieldInfo) bool) bool {
	for i := range info.Fields {
		if fn(&info.Fields[i]) {
			return true
		}
	}
	return false
}
