// Package structeq decides whether two value graphs are structurally
// equivalent, modulo renaming of locally-bound variables.
//
// The engine walks both graphs in lock-step using the reflection
// registry's field order, maintaining a bidirectional correspondence
// between shared objects so DAG sharing compares consistently: one
// lhs object can never equal two distinct rhs objects. Free variables
// may be freshly paired only inside a field subtree marked as a
// binding region, or globally when the caller opts in.
//
// Value-level differences are never errors; they are a false result,
// optionally with the pair of access paths leading to the first
// divergence.
package structeq
