package serialize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/reflection"
)

// SaveJSON serializes the graph rooted at v into the deterministic
// textual wire format. Every reachable object must have a reflection
// registration.
func SaveJSON(v ir.Value) (string, error) {
	g, err := buildGraph(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(g); err != nil {
		return "", errf(ErrCodeMalformedInput, -1, "", "encode document: %v", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func buildGraph(root ir.Value) (*jsonGraph, error) {
	x := newIndexer()
	if err := x.makeIndex(root); err != nil {
		return nil, err
	}
	g := &jsonGraph{
		Root:        x.idOf(root),
		Nodes:       make([]jsonNode, 0, len(x.nodes)),
		B64NDArrays: []string{},
		Attrs:       map[string]string{"tvm_version": Version},
	}
	w := &nodeWriter{index: x, graph: g}
	for _, v := range x.nodes {
		jnode, err := w.emit(v)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, jnode)
	}
	return g, nil
}

// nodeWriter emits one wire record per indexed node.
type nodeWriter struct {
	index *indexer
	graph *jsonGraph
}

func (w *nodeWriter) emit(v ir.Value) (jsonNode, error) {
	var jnode jsonNode
	switch n := v.(type) {
	case nil, ir.None:
		// empty type key means None
		return jnode, nil
	case ir.Bool:
		jnode.TypeKey = "bool"
		jnode.Attrs = map[string]string{"v_int64": formatBool(bool(n))}
	case ir.Int:
		jnode.TypeKey = "int"
		jnode.Attrs = map[string]string{"v_int64": strconv.FormatInt(int64(n), 10)}
	case ir.Float:
		jnode.TypeKey = "float"
		jnode.Attrs = map[string]string{"v_float64": formatFloat(float64(n))}
	case ir.DataType:
		jnode.TypeKey = "DataType"
		jnode.Attrs = map[string]string{"v_type": n.String()}
	case ir.Device:
		jnode.TypeKey = "Device"
		jnode.Attrs = map[string]string{
			"v_device_type": strconv.FormatInt(int64(n.DeviceType), 10),
			"v_device_id":   strconv.FormatInt(int64(n.DeviceID), 10),
		}
	case ir.String:
		jnode.TypeKey = "ffi.Str"
		setRepr(&jnode, []byte(n))
	case ir.Bytes:
		jnode.TypeKey = "ffi.Bytes"
		setRepr(&jnode, []byte(n))
	case ir.Shape:
		jnode.TypeKey = "ffi.Shape"
		setRepr(&jnode, []byte(formatShape(n)))
	case *ir.NDArray:
		jnode.TypeKey = "ffi.NDArray"
		pos := len(w.graph.B64NDArrays)
		w.graph.B64NDArrays = append(w.graph.B64NDArrays, base64.StdEncoding.EncodeToString(n.EncodeBinary()))
		jnode.Attrs = map[string]string{"ndarray_index": strconv.Itoa(pos)}
	case *ir.Array:
		jnode.TypeKey = "ffi.Array"
		jnode.Data = make([]int, 0, len(n.Elems))
		for _, elem := range n.Elems {
			jnode.Data = append(jnode.Data, w.index.idOf(elem))
		}
	case *ir.Map:
		jnode.TypeKey = "ffi.Map"
		if stringKeyed(n) {
			for _, e := range n.Entries() {
				jnode.Keys = append(jnode.Keys, string(e.Key.(ir.String)))
				jnode.Data = append(jnode.Data, w.index.idOf(e.Val))
			}
		} else {
			for _, e := range n.Entries() {
				jnode.Data = append(jnode.Data, w.index.idOf(e.Key))
				jnode.Data = append(jnode.Data, w.index.idOf(e.Val))
			}
		}
	case ir.Object:
		return w.emitObject(n)
	}
	return jnode, nil
}

func (w *nodeWriter) emitObject(obj ir.Object) (jsonNode, error) {
	jnode := jsonNode{TypeKey: obj.TypeKey()}
	info, ok := reflection.InfoFor(obj)
	if !ok {
		return jnode, errf(ErrCodeUnsupportedType, -1, "",
			"object %q misses reflection registration and does not support serialization", obj.TypeKey())
	}
	if info.ReprBytes != nil {
		if repr, ok := info.ReprBytes(obj); ok {
			setRepr(&jnode, repr)
			return jnode, nil
		}
	}
	jnode.Attrs = make(map[string]string, len(info.Fields))
	for i := range info.Fields {
		f := &info.Fields[i]
		fv := f.Get(obj)
		switch x := fv.(type) {
		case nil, ir.None:
			jnode.Attrs[f.Name] = "null"
		case ir.Bool:
			jnode.Attrs[f.Name] = formatBool(bool(x))
		case ir.Int:
			jnode.Attrs[f.Name] = strconv.FormatInt(int64(x), 10)
		case ir.Float:
			jnode.Attrs[f.Name] = formatFloat(float64(x))
		case ir.DataType:
			jnode.Attrs[f.Name] = x.String()
		default:
			if !ir.IsHeap(fv) {
				return jnode, errf(ErrCodeUnsupportedType, -1, f.Name,
					"field of %q holds unsupported value kind %s", obj.TypeKey(), ir.KindOf(fv))
			}
			jnode.Attrs[f.Name] = strconv.Itoa(w.index.idOf(fv))
		}
	}
	return jnode, nil
}

// setRepr stores repr bytes as repr_str when printable ASCII, else as
// base64 under repr_b64.
func setRepr(jnode *jsonNode, repr []byte) {
	if printableASCII(repr) {
		jnode.ReprStr = string(repr)
		return
	}
	jnode.ReprB64 = base64.StdEncoding.EncodeToString(repr)
}

func printableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// formatFloat writes 17 significant digits, enough to round-trip any
// float64 exactly, with the literal tokens inf, -inf and nan.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', 17, 64)
}

func formatShape(s ir.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return strings.Join(parts, ",")
}
