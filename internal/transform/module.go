package transform

import (
	"fmt"
	"sort"

	"github.com/skein-dev/skein/internal/ir"
)

// Module is a named collection of compilation units plus the global
// symbol table that mirrors it. The two maps are kept consistent
// through Add and Remove.
type Module struct {
	// UnitTypeKey is the type key of the units this module holds;
	// passes only visit entries of this kind.
	UnitTypeKey string

	funcs   map[string]ir.Object
	globals map[string]string // global symbol -> function name
}

// NewModule creates an empty module holding units of the given kind.
func NewModule(unitTypeKey string) *Module {
	return &Module{
		UnitTypeKey: unitTypeKey,
		funcs:       make(map[string]ir.Object),
		globals:     make(map[string]string),
	}
}

// Add installs a unit under name and records its global symbol.
func (m *Module) Add(name string, unit ir.Object) {
	m.funcs[name] = unit
	m.globals[name] = name
}

// Get returns the unit registered under name.
func (m *Module) Get(name string) (ir.Object, bool) {
	u, ok := m.funcs[name]
	return u, ok
}

// Remove deletes the unit and its global symbol together. Removing
// through this method is what keeps the two tables in sync.
func (m *Module) Remove(name string) error {
	if _, ok := m.funcs[name]; !ok {
		return fmt.Errorf("module has no function %q", name)
	}
	delete(m.funcs, name)
	delete(m.globals, name)
	return nil
}

// Len returns the number of units.
func (m *Module) Len() int {
	return len(m.funcs)
}

// Names returns the unit names in sorted order, for deterministic
// sweeps.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GlobalSymbols returns the global symbol table keys in sorted order.
func (m *Module) GlobalSymbols() []string {
	syms := make([]string, 0, len(m.globals))
	for s := range m.globals {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// copyOnWrite returns a module sharing nothing mutable with m: both
// tables are shallow-copied so a pass can rewrite entries without
// touching the original.
func (m *Module) copyOnWrite() *Module {
	out := NewModule(m.UnitTypeKey)
	for k, v := range m.funcs {
		out.funcs[k] = v
	}
	for k, v := range m.globals {
		out.globals[k] = v
	}
	return out
}
