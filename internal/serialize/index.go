package serialize

import (
	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/reflection"
)

// indexer assigns dense node ids by depth-first traversal from the
// root. Id 0 is reserved for None. Objects, Arrays, Maps and NDArrays
// share one id per identity; all other values (including strings,
// bytes and shapes) share one id per content.
type indexer struct {
	index map[any]int
	nodes []ir.Value
}

func newIndexer() *indexer {
	x := &indexer{index: make(map[any]int)}
	x.index[ir.ValueKey(ir.None{})] = 0
	x.nodes = append(x.nodes, ir.None{})
	return x
}

func (x *indexer) idOf(v ir.Value) int {
	return x.index[ir.ValueKey(v)]
}

// makeIndex walks v, assigning an id to every reachable value that
// does not already have one.
func (x *indexer) makeIndex(v ir.Value) error {
	if ir.IsNone(v) {
		return nil
	}
	key := ir.ValueKey(v)
	if _, ok := x.index[key]; ok {
		return nil
	}
	x.index[key] = len(x.nodes)
	x.nodes = append(x.nodes, v)

	switch n := v.(type) {
	case *ir.Array:
		for _, elem := range n.Elems {
			if err := x.makeIndex(elem); err != nil {
				return err
			}
		}
	case *ir.Map:
		if stringKeyed(n) {
			for _, e := range n.Entries() {
				if err := x.makeIndex(e.Val); err != nil {
					return err
				}
			}
		} else {
			for _, e := range n.Entries() {
				if err := x.makeIndex(e.Key); err != nil {
					return err
				}
				if err := x.makeIndex(e.Val); err != nil {
					return err
				}
			}
		}
	case ir.Object:
		info, ok := reflection.InfoFor(n)
		if !ok {
			return errf(ErrCodeUnsupportedType, -1, "",
				"object %q misses reflection registration and does not support serialization", n.TypeKey())
		}
		// a node with repr bytes is a leaf
		if info.ReprBytes != nil {
			if _, ok := info.ReprBytes(n); ok {
				return nil
			}
		}
		for i := range info.Fields {
			fv := info.Fields[i].Get(n)
			if ir.IsHeap(fv) {
				if err := x.makeIndex(fv); err != nil {
					return err
				}
			}
		}
	}
	// primitive leaves: nothing to recurse into
	return nil
}

// stringKeyed reports whether every key of m is a String, the
// distinguished serialization case.
func stringKeyed(m *ir.Map) bool {
	for _, e := range m.Entries() {
		if ir.KindOf(e.Key) != ir.KindString {
			return false
		}
	}
	return true
}
