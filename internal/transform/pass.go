package transform

import (
	"fmt"

	"github.com/skein-dev/skein/internal/ir"
)

// PassInfo is the metadata of a pass.
type PassInfo struct {
	OptLevel  int
	Name      string
	Required  []string
	Traceable bool
}

// Pass transforms a module under a context.
type Pass interface {
	Info() PassInfo
	Run(mod *Module, ctx *Context) (*Module, error)
}

// UnitFunc rewrites one compilation unit. Returning a nil unit marks
// the entry for deletion; returning an error aborts the pass.
type UnitFunc func(unit ir.Object, mod *Module, ctx *Context) (ir.Object, error)

// UnitPass applies a UnitFunc to every unit of the module's kind.
type UnitPass struct {
	info PassInfo
	fn   UnitFunc
}

// NewUnitPass creates a unit-level pass from a transform function and
// its metadata.
func NewUnitPass(fn UnitFunc, optLevel int, name string, required []string, traceable bool) *UnitPass {
	return &UnitPass{
		info: PassInfo{OptLevel: optLevel, Name: name, Required: required, Traceable: traceable},
		fn:   fn,
	}
}

// Info returns the pass metadata.
func (p *UnitPass) Info() PassInfo {
	return p.info
}

// Run sweeps a copy-on-write view of mod's function table, applying
// the transform to every unit of the module's kind and reinstalling
// the result. Units the transform returns nil for are removed through
// Module.Remove after the sweep, keeping the global-symbol table in
// sync.
//
// A transform error aborts the pass: the returned module keeps the
// entries rewritten so far, untouched entries are unchanged, and the
// error propagates unmodified.
func (p *UnitPass) Run(mod *Module, ctx *Context) (*Module, error) {
	out := mod.copyOnWrite()
	var deleted []string
	for _, name := range out.Names() {
		unit := out.funcs[name]
		if unit.TypeKey() != out.UnitTypeKey {
			continue
		}
		result, err := p.fn(unit, out, ctx)
		if err != nil {
			return out, err
		}
		if result == nil {
			deleted = append(deleted, name)
			continue
		}
		out.funcs[name] = result
	}
	for _, name := range deleted {
		if err := out.Remove(name); err != nil {
			return out, fmt.Errorf("pass %q: %w", p.info.Name, err)
		}
	}
	return out, nil
}

func (p *UnitPass) String() string {
	return fmt.Sprintf("UnitPass(%s, opt_level=%d)", p.info.Name, p.info.OptLevel)
}
