package serialize

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/reflection"
)

// LoadJSON reconstructs a value graph from the textual wire format.
// The load is four passes: parse, shell creation, field dependency
// discovery, and a topological fill that resolves node references in
// construction order.
func LoadJSON(text string) (ir.Value, error) {
	var g jsonGraph
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&g); err != nil {
		return nil, &Error{Code: ErrCodeMalformedInput, Message: "parse document: " + err.Error(), Node: -1, Err: err}
	}

	tensors := make([]*ir.NDArray, 0, len(g.B64NDArrays))
	for i, blob := range g.B64NDArrays {
		raw, err := base64.StdEncoding.DecodeString(blob)
		if err != nil {
			return nil, errf(ErrCodeReprDecode, -1, "", "b64ndarrays[%d]: %v", i, err)
		}
		a, err := ir.DecodeNDArray(raw)
		if err != nil {
			return nil, errf(ErrCodeBadFieldValue, -1, "", "b64ndarrays[%d]: %v", i, err)
		}
		tensors = append(tensors, a)
	}

	n := len(g.Nodes)
	ld := &loader{graph: &g, tensors: tensors, nodes: make([]ir.Value, n)}

	// Pass 1: create all non-container shells.
	for i := 0; i < n; i++ {
		shell, err := ld.createInit(i)
		if err != nil {
			return nil, err
		}
		ld.nodes[i] = shell
	}
	// Pass 2: discover field dependencies.
	for i := 0; i < n; i++ {
		if err := ld.findFieldDeps(i); err != nil {
			return nil, err
		}
	}
	// Pass 3: topological construction order.
	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	// Pass 4: fill in construction order.
	for _, i := range order {
		if err := ld.fill(i); err != nil {
			return nil, err
		}
	}

	if g.Root < 0 || g.Root >= n {
		return nil, errf(ErrCodeMalformedInput, -1, "", "root id %d out of range [0, %d)", g.Root, n)
	}
	return ld.nodes[g.Root], nil
}

type loader struct {
	graph   *jsonGraph
	tensors []*ir.NDArray
	nodes   []ir.Value
}

// reprBytes resolves the repr payload of a node record. repr_str and
// repr_b64 are mutually exclusive.
func (ld *loader) reprBytes(i int) ([]byte, error) {
	jnode := &ld.graph.Nodes[i]
	if jnode.ReprStr != "" && jnode.ReprB64 != "" {
		return nil, errf(ErrCodeMalformedInput, i, "", "repr_str and repr_b64 are mutually exclusive")
	}
	if jnode.ReprStr != "" {
		return []byte(jnode.ReprStr), nil
	}
	if jnode.ReprB64 != "" {
		raw, err := base64.StdEncoding.DecodeString(jnode.ReprB64)
		if err != nil {
			return nil, errf(ErrCodeReprDecode, i, "", "decode repr_b64: %v", err)
		}
		return raw, nil
	}
	return nil, nil
}

func (ld *loader) attr(i int, key string) (string, error) {
	jnode := &ld.graph.Nodes[i]
	s, ok := jnode.Attrs[key]
	if !ok {
		return "", errf(ErrCodeMissingField, i, key, "cannot find field")
	}
	return s, nil
}

func (ld *loader) intAttr(i int, key string) (int64, error) {
	s, err := ld.attr(i, key)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		return 0, errf(ErrCodeBadFieldValue, i, key, "wrong value format %q", s)
	}
	return v, nil
}

func (ld *loader) floatAttr(i int, key string) (float64, error) {
	s, err := ld.attr(i, key)
	if err != nil {
		return 0, err
	}
	return parseFloat(i, key, s)
}

// parseFloat accepts the writer's 17-digit output plus the literal
// tokens inf, -inf and nan.
func parseFloat(i int, key, s string) (float64, error) {
	switch s {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errf(ErrCodeBadFieldValue, i, key, "wrong value format %q", s)
	}
	return v, nil
}

// createInit builds the shell of node i. Primitive type keys decode
// from attrs; containers stay nil and materialize in the fill pass;
// registered objects construct through the registry.
func (ld *loader) createInit(i int) (ir.Value, error) {
	jnode := &ld.graph.Nodes[i]
	switch jnode.TypeKey {
	case "", "None":
		return ir.None{}, nil
	case "bool":
		v, err := ld.intAttr(i, "v_int64")
		if err != nil {
			return nil, err
		}
		return ir.Bool(v != 0), nil
	case "int":
		v, err := ld.intAttr(i, "v_int64")
		if err != nil {
			return nil, err
		}
		return ir.Int(v), nil
	case "float":
		v, err := ld.floatAttr(i, "v_float64")
		if err != nil {
			return nil, err
		}
		return ir.Float(v), nil
	case "DataType":
		s, err := ld.attr(i, "v_type")
		if err != nil {
			return nil, err
		}
		t, perr := ir.ParseDataType(s)
		if perr != nil {
			return nil, errf(ErrCodeBadFieldValue, i, "v_type", "%v", perr)
		}
		return t, nil
	case "Device":
		devType, err := ld.intAttr(i, "v_device_type")
		if err != nil {
			return nil, err
		}
		devID, err := ld.intAttr(i, "v_device_id")
		if err != nil {
			return nil, err
		}
		return ir.Device{DeviceType: ir.DeviceType(devType), DeviceID: int32(devID)}, nil
	case "ffi.Str":
		repr, err := ld.reprBytes(i)
		if err != nil {
			return nil, err
		}
		return ir.String(repr), nil
	case "ffi.Bytes":
		repr, err := ld.reprBytes(i)
		if err != nil {
			return nil, err
		}
		return ir.Bytes(repr), nil
	case "ffi.Shape":
		repr, err := ld.reprBytes(i)
		if err != nil {
			return nil, err
		}
		return parseShape(i, string(repr))
	case "ffi.NDArray":
		idx, err := ld.intAttr(i, "ndarray_index")
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(ld.tensors)) {
			return nil, errf(ErrCodeBadFieldValue, i, "ndarray_index", "index %d out of range [0, %d)", idx, len(ld.tensors))
		}
		return ld.tensors[idx], nil
	case "ffi.Array", "ffi.Map":
		// materialized in the fill pass once children exist
		return nil, nil
	}
	info, ok := reflection.Lookup(jnode.TypeKey)
	if !ok {
		return nil, errf(ErrCodeUnknownTypeKey, i, "", "unknown type key %q", jnode.TypeKey)
	}
	repr, err := ld.reprBytes(i)
	if err != nil {
		return nil, err
	}
	obj, cerr := info.CreateInit(repr)
	if cerr != nil {
		return nil, errf(ErrCodeBadFieldValue, i, "", "create %q: %v", jnode.TypeKey, cerr)
	}
	return obj, nil
}

// findFieldDeps records, for registered object nodes without repr
// bytes, the node ids referenced by fields whose declared static type
// is object-typed or Any.
func (ld *loader) findFieldDeps(i int) error {
	jnode := &ld.graph.Nodes[i]
	obj, ok := ld.nodes[i].(ir.Object)
	if !ok {
		return nil
	}
	info, found := reflection.InfoFor(obj)
	if !found {
		return nil
	}
	if jnode.ReprStr != "" || jnode.ReprB64 != "" {
		return nil
	}
	if info.ReprBytes != nil {
		if _, has := info.ReprBytes(obj); has {
			return nil
		}
	}
	for fi := range info.Fields {
		f := &info.Fields[fi]
		if !f.Type.IsReference() {
			continue
		}
		s, err := ld.attr(i, f.Name)
		if err != nil {
			return err
		}
		if s == "null" {
			continue
		}
		id, perr := strconv.Atoi(s)
		if perr != nil {
			return errf(ErrCodeBadFieldValue, i, f.Name, "wrong value format %q", s)
		}
		jnode.fields = append(jnode.fields, id)
	}
	return nil
}

// fill completes node i: containers materialize from their child
// ids, registered objects have their fields set. Dependencies are
// already filled by construction order.
func (ld *loader) fill(i int) error {
	jnode := &ld.graph.Nodes[i]
	switch jnode.TypeKey {
	case "ffi.Array":
		arr := &ir.Array{Elems: make([]ir.Value, 0, len(jnode.Data))}
		for _, id := range jnode.Data {
			arr.Elems = append(arr.Elems, ld.nodes[id])
		}
		ld.nodes[i] = arr
		return nil
	case "ffi.Map":
		m := ir.NewMap()
		if len(jnode.Keys) > 0 {
			if len(jnode.Keys) != len(jnode.Data) {
				return errf(ErrCodeMalformedInput, i, "", "keys length %d does not match data length %d", len(jnode.Keys), len(jnode.Data))
			}
			for k, id := range jnode.Data {
				m.Set(ir.String(jnode.Keys[k]), ld.nodes[id])
			}
		} else {
			if len(jnode.Data)%2 != 0 {
				return errf(ErrCodeMalformedInput, i, "", "general map data length %d is odd", len(jnode.Data))
			}
			for k := 0; k < len(jnode.Data); k += 2 {
				m.Set(ld.nodes[jnode.Data[k]], ld.nodes[jnode.Data[k+1]])
			}
		}
		ld.nodes[i] = m
		return nil
	}

	obj, ok := ld.nodes[i].(ir.Object)
	if !ok {
		return nil
	}
	info, found := reflection.InfoFor(obj)
	if !found {
		return nil
	}
	// repr-bytes nodes were fully populated by CreateInit
	if jnode.ReprStr != "" || jnode.ReprB64 != "" {
		return nil
	}
	if info.ReprBytes != nil {
		if _, has := info.ReprBytes(obj); has {
			return nil
		}
	}
	for fi := range info.Fields {
		f := &info.Fields[fi]
		v, err := ld.fieldValue(i, f)
		if err != nil {
			return err
		}
		if err := f.Set(obj, v); err != nil {
			return errf(ErrCodeBadFieldValue, i, f.Name, "%v", err)
		}
	}
	return nil
}

// fieldValue decodes one attr under the field's declared static type.
func (ld *loader) fieldValue(i int, f *reflection.FieldInfo) (ir.Value, error) {
	s, err := ld.attr(i, f.Name)
	if err != nil {
		return nil, err
	}
	if s == "null" {
		return ir.None{}, nil
	}
	switch f.Type {
	case reflection.StaticBool:
		v, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return nil, errf(ErrCodeBadFieldValue, i, f.Name, "wrong value format %q", s)
		}
		return ir.Bool(v != 0), nil
	case reflection.StaticInt:
		v, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return nil, errf(ErrCodeBadFieldValue, i, f.Name, "wrong value format %q", s)
		}
		return ir.Int(v), nil
	case reflection.StaticFloat:
		v, ferr := parseFloat(i, f.Name, s)
		if ferr != nil {
			return nil, ferr
		}
		return ir.Float(v), nil
	case reflection.StaticDataType:
		t, terr := ir.ParseDataType(s)
		if terr != nil {
			return nil, errf(ErrCodeBadFieldValue, i, f.Name, "%v", terr)
		}
		return t, nil
	default:
		id, perr := strconv.Atoi(s)
		if perr != nil {
			return nil, errf(ErrCodeBadFieldValue, i, f.Name, "wrong value format %q", s)
		}
		if id < 0 || id >= len(ld.nodes) {
			return nil, errf(ErrCodeBadFieldValue, i, f.Name, "node id %d out of range [0, %d)", id, len(ld.nodes))
		}
		return ld.nodes[id], nil
	}
}

func parseShape(i int, repr string) (ir.Shape, error) {
	if repr == "" {
		return ir.Shape{}, nil
	}
	parts := strings.Split(repr, ",")
	s := make(ir.Shape, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errf(ErrCodeBadFieldValue, i, "", "bad shape repr %q", repr)
		}
		s = append(s, d)
	}
	return s, nil
}
