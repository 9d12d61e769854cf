// Package serialize converts value graphs to and from the textual
// wire format.
//
// Saving indexes every reachable heap value into a dense node table
// (id 0 is reserved for None), then emits one JSON record per node:
// primitives inline into attrs, heap values serialize as node ids, and
// tensors land base64-encoded in the top-level b64ndarrays list. The
// output is byte-deterministic: node order is the depth-first
// assignment order and attrs iterate sorted by key.
//
// Loading runs four passes: parse, shell creation through the
// reflection registry, field dependency discovery, and a stable
// topological fill. True cycles in the reference structure are
// detected and rejected; DAG sharing reconstructs with identity
// preserved.
package serialize
