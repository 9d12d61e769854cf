package structeq

import (
	"bytes"
	"math"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/reflection"
)

// Options configure a structural comparison.
type Options struct {
	// MapFreeVars allows free variables to be freshly paired at the
	// top level, outside any binding region.
	MapFreeVars bool
	// SkipNDArrayContent compares tensors by shape and dtype only.
	SkipNDArrayContent bool
}

// PrerequisiteError is the panic value raised when a content compare
// is requested on a tensor that is not a contiguous CPU buffer. These
// are structural prerequisite violations, not value differences.
type PrerequisiteError struct {
	Reason string
}

func (e *PrerequisiteError) Error() string {
	return "structeq: " + e.Reason
}

// Equal reports whether lhs and rhs are structurally equivalent.
func Equal(lhs, rhs ir.Value, opts Options) bool {
	h := &handler{
		mapFreeVars:        opts.MapFreeVars,
		skipNDArrayContent: opts.SkipNDArrayContent,
	}
	return h.compareAny(lhs, rhs)
}

// FirstMismatch returns the pair of access paths from each root to
// the first diverging position, or nil when the graphs are
// equivalent.
func FirstMismatch(lhs, rhs ir.Value, opts Options) *PathPair {
	h := &handler{
		mapFreeVars:        opts.MapFreeVars,
		skipNDArrayContent: opts.SkipNDArrayContent,
		tracking:           true,
	}
	if h.compareAny(lhs, rhs) {
		return nil
	}
	return &PathPair{Lhs: reversed(h.lhsReverse), Rhs: reversed(h.rhsReverse)}
}

type handler struct {
	mapFreeVars        bool
	skipNDArrayContent bool

	// mismatch paths accumulate innermost-first during unwinding and
	// reverse before return
	tracking   bool
	lhsReverse []Step
	rhsReverse []Step

	// bidirectional correspondence, keyed by object identity
	equalMapLhs map[ir.Object]ir.Object
	equalMapRhs map[ir.Object]ir.Object
}

func (h *handler) compareAny(lhs, rhs ir.Value) bool {
	lk, rk := ir.KindOf(lhs), ir.KindOf(rhs)
	if lk != rk {
		return false
	}
	switch lk {
	case ir.KindNone:
		return true
	case ir.KindBool:
		return lhs.(ir.Bool) == rhs.(ir.Bool)
	case ir.KindInt:
		return lhs.(ir.Int) == rhs.(ir.Int)
	case ir.KindFloat:
		// raw bit equality: NaN compares equal to itself
		return math.Float64bits(float64(lhs.(ir.Float))) == math.Float64bits(float64(rhs.(ir.Float)))
	case ir.KindDataType:
		return lhs.(ir.DataType) == rhs.(ir.DataType)
	case ir.KindDevice:
		return lhs.(ir.Device) == rhs.(ir.Device)
	case ir.KindString:
		return lhs.(ir.String) == rhs.(ir.String)
	case ir.KindBytes:
		return bytes.Equal(lhs.(ir.Bytes), rhs.(ir.Bytes))
	case ir.KindShape:
		return compareShape(lhs.(ir.Shape), rhs.(ir.Shape))
	case ir.KindNDArray:
		return h.compareNDArray(lhs.(*ir.NDArray), rhs.(*ir.NDArray))
	case ir.KindArray:
		return h.compareArray(lhs.(*ir.Array), rhs.(*ir.Array))
	case ir.KindMap:
		return h.compareMap(lhs.(*ir.Map), rhs.(*ir.Map))
	default:
		return h.compareObject(lhs.(ir.Object), rhs.(ir.Object))
	}
}

func compareShape(lhs, rhs ir.Shape) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	for i := range lhs {
		if lhs[i] != rhs[i] {
			return false
		}
	}
	return true
}

func (h *handler) compareNDArray(lhs, rhs *ir.NDArray) bool {
	if lhs == rhs {
		return true
	}
	if !compareShape(lhs.Shape, rhs.Shape) {
		return false
	}
	if lhs.DType != rhs.DType {
		return false
	}
	if h.skipNDArrayContent {
		return true
	}
	if lhs.Device.DeviceType != ir.DeviceCPU || rhs.Device.DeviceType != ir.DeviceCPU {
		panic(&PrerequisiteError{Reason: "can only compare CPU tensor content"})
	}
	if !lhs.IsContiguous() || !rhs.IsContiguous() {
		panic(&PrerequisiteError{Reason: "can only compare contiguous tensor content"})
	}
	return bytes.Equal(lhs.Data, rhs.Data)
}

func (h *handler) compareArray(lhs, rhs *ir.Array) bool {
	if len(lhs.Elems) != len(rhs.Elems) && !h.tracking {
		return false
	}
	n := len(lhs.Elems)
	if len(rhs.Elems) < n {
		n = len(rhs.Elems)
	}
	for i := 0; i < n; i++ {
		if !h.compareAny(lhs.Elems[i], rhs.Elems[i]) {
			if h.tracking {
				h.lhsReverse = append(h.lhsReverse, ArrayIndex(i))
				h.rhsReverse = append(h.rhsReverse, ArrayIndex(i))
			}
			return false
		}
	}
	if len(lhs.Elems) == len(rhs.Elems) {
		return true
	}
	if h.tracking {
		if len(lhs.Elems) > len(rhs.Elems) {
			h.lhsReverse = append(h.lhsReverse, ArrayIndex(len(rhs.Elems)))
			h.rhsReverse = append(h.rhsReverse, ArrayIndexMissing(len(rhs.Elems)))
		} else {
			h.lhsReverse = append(h.lhsReverse, ArrayIndexMissing(len(lhs.Elems)))
			h.rhsReverse = append(h.rhsReverse, ArrayIndex(len(lhs.Elems)))
		}
	}
	return false
}

func (h *handler) compareMap(lhs, rhs *ir.Map) bool {
	if lhs.Len() != rhs.Len() && !h.tracking {
		return false
	}
	for _, e := range lhs.Entries() {
		rhsKey := h.mapLhsToRhs(e.Key)
		rhsVal, ok := rhs.Get(rhsKey)
		if !ok {
			if h.tracking {
				h.lhsReverse = append(h.lhsReverse, MapKey(e.Key))
				h.rhsReverse = append(h.rhsReverse, MapKeyMissing(rhsKey))
			}
			return false
		}
		if !h.compareAny(e.Val, rhsVal) {
			if h.tracking {
				h.lhsReverse = append(h.lhsReverse, MapKey(e.Key))
				h.rhsReverse = append(h.rhsReverse, MapKey(rhsKey))
			}
			return false
		}
	}
	if lhs.Len() == rhs.Len() {
		return true
	}
	// sizes differ and every lhs key was found: scan rhs to name the
	// first rhs-only key
	for _, e := range rhs.Entries() {
		lhsKey := h.mapRhsToLhs(e.Key)
		if _, ok := lhs.Get(lhsKey); !ok {
			if h.tracking {
				h.lhsReverse = append(h.lhsReverse, MapKeyMissing(lhsKey))
				h.rhsReverse = append(h.rhsReverse, MapKey(e.Key))
			}
			return false
		}
	}
	return false
}

func (h *handler) compareObject(lhs, rhs ir.Object) bool {
	if lhs.TypeKey() != rhs.TypeKey() {
		return false
	}
	info, ok := reflection.InfoFor(lhs)
	if !ok {
		return lhs == rhs
	}
	kind := info.Kind

	if kind == reflection.Unsupported || kind == reflection.UniqueInstance {
		return lhs == rhs
	}
	if kind == reflection.ConstTreeNode && lhs == rhs {
		return true
	}
	if kind == reflection.DAGNode || kind == reflection.FreeVar {
		if mapped, found := h.equalMapLhs[lhs]; found {
			return mapped == rhs
		}
		// rhs mapped while lhs is not: rhs already corresponds to a
		// different lhs object
		if _, found := h.equalMapRhs[rhs]; found {
			return false
		}
	}

	success := true
	if kind == reflection.FreeVar {
		// an unmapped free var pairs only with itself, unless the
		// current scope permits new bindings
		if lhs != rhs && !h.mapFreeVars {
			success = false
		}
	} else {
		reflection.ForEachFieldWithEarlyStop(info, func(f *reflection.FieldInfo) bool {
			if f.Flags&reflection.SEqHashIgnore != 0 {
				return false
			}
			lhsVal := f.Get(lhs)
			rhsVal := f.Get(rhs)
			if f.Flags&reflection.SEqHashDef != 0 {
				allowFreeVar := true
				allowFreeVar, h.mapFreeVars = h.mapFreeVars, allowFreeVar
				success = h.compareAny(lhsVal, rhsVal)
				h.mapFreeVars = allowFreeVar
			} else {
				success = h.compareAny(lhsVal, rhsVal)
			}
			if !success {
				if h.tracking {
					h.lhsReverse = append(h.lhsReverse, ObjectField(f.Name))
					h.rhsReverse = append(h.rhsReverse, ObjectField(f.Name))
				}
				return true
			}
			return false
		})
	}
	if !success {
		return false
	}
	if kind == reflection.DAGNode || kind == reflection.FreeVar {
		if h.equalMapLhs == nil {
			h.equalMapLhs = make(map[ir.Object]ir.Object)
			h.equalMapRhs = make(map[ir.Object]ir.Object)
		}
		h.equalMapLhs[lhs] = rhs
		h.equalMapRhs[rhs] = lhs
	}
	return true
}

// mapLhsToRhs translates an lhs map key through the recorded
// correspondence, so keys that are shared objects look up their rhs
// counterpart.
func (h *handler) mapLhsToRhs(k ir.Value) ir.Value {
	if obj, ok := k.(ir.Object); ok {
		if mapped, found := h.equalMapLhs[obj]; found {
			return mapped
		}
	}
	return k
}

func (h *handler) mapRhsToLhs(k ir.Value) ir.Value {
	if obj, ok := k.(ir.Object); ok {
		if mapped, found := h.equalMapRhs[obj]; found {
			return mapped
		}
	}
	return k
}

func reversed(steps []Step) Path {
	p := make(Path, len(steps))
	for i, s := range steps {
		p[len(steps)-1-i] = s
	}
	return p
}
