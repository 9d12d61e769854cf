// Package reflection holds the process-wide type registry for
// reflected graph nodes.
//
// Node types register a TypeInfo under their stable type key during
// program initialization (typically from an init function); after
// startup the registry is read-only. The per-type metadata — ordered
// field list, accessors, constructor, optional repr-bytes short form
// and structural kind — is the single source of truth shared by the
// serializer and the structural equality engine: the declared field
// order is the canonical order for both.
package reflection
