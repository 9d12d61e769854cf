package serialize

// Version is the format tag written under attrs["tvm_version"] of
// every saved document. Readers ignore it beyond recording it.
const Version = "0.1.0"

// jsonNode is the wire record of one graph node. Field order here is
// the emission order of the document.
type jsonNode struct {
	TypeKey string            `json:"type_key"`
	ReprStr string            `json:"repr_str,omitempty"`
	ReprB64 string            `json:"repr_b64,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Keys    []string          `json:"keys,omitempty"`
	Data    []int             `json:"data,omitempty"`

	// fields holds the node-id dependencies discovered from
	// object-typed attrs. Load-time only, never serialized.
	fields []int
}

// jsonGraph is the top-level wire document.
type jsonGraph struct {
	Root        int               `json:"root"`
	Nodes       []jsonNode        `json:"nodes"`
	B64NDArrays []string          `json:"b64ndarrays"`
	Attrs       map[string]string `json:"attrs,omitempty"`
}

// topoSort returns a construction order over all data + fields edges:
// every node appears after everything it references. The sort is a
// stable Kahn pass seeded in ascending id order, so the result is
// deterministic. Returns ErrCycle when the references form a true
// cycle.
func (g *jsonGraph) topoSort() ([]int, error) {
	n := len(g.Nodes)
	inDegree := make([]int, n)
	for i := range g.Nodes {
		jnode := &g.Nodes[i]
		for _, id := range jnode.Data {
			if id < 0 || id >= n {
				return nil, errf(ErrCodeBadFieldValue, i, "", "node id %d out of range [0, %d)", id, n)
			}
			inDegree[id]++
		}
		for _, id := range jnode.fields {
			if id < 0 || id >= n {
				return nil, errf(ErrCodeBadFieldValue, i, "", "node id %d out of range [0, %d)", id, n)
			}
			inDegree[id]++
		}
	}
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			order = append(order, i)
		}
	}
	for p := 0; p < len(order); p++ {
		jnode := &g.Nodes[order[p]]
		for _, id := range jnode.Data {
			if inDegree[id]--; inDegree[id] == 0 {
				order = append(order, id)
			}
		}
		for _, id := range jnode.fields {
			if inDegree[id]--; inDegree[id] == 0 {
				order = append(order, id)
			}
		}
	}
	if len(order) != n {
		return nil, errf(ErrCodeCycle, -1, "", "Cyclic reference detected")
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
