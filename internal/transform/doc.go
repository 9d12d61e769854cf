// Package transform provides the unit-level pass runner: a thin
// driver that applies a user-supplied transform to every compilation
// unit of a module.
//
// A pass carries metadata (opt level, name, requirements, whether it
// is traceable) and a transform function. Running a pass sweeps a
// copy-on-write view of the module's function table, reinstalls each
// transformed unit, and removes units the transform deleted through
// the module's Remove method so the function map and the
// global-symbol map stay in sync.
package transform
