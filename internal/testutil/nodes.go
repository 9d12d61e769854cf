// Package testutil registers the sample node types the package tests
// build graphs from. The types cover the free-var, DAG-node and
// const-tree structural kinds: a free variable, a DAG expression node,
// a const tree node, a repr-bytes leaf and a function definition with
// a binding region. No fixture uses the Unsupported or UniqueInstance
// kinds.
package testutil

import (
	"fmt"

	"github.com/skein-dev/skein/internal/ir"
	"github.com/skein-dev/skein/internal/reflection"
)

// Var is a variable binding occurrence. Two distinct Vars compare
// equal only where renaming is permitted; the name is diagnostic
// only.
type Var struct {
	ir.Node
	Name string
}

func (*Var) TypeKey() string { return "test.Var" }

// Let binds a variable to a value inside a body. The binding is not
// a fresh region: whether its variable may be renamed follows the
// caller's free-var option.
type Let struct {
	ir.Node
	Var   *Var
	Value ir.Value
	Body  ir.Value
}

func (*Let) TypeKey() string { return "test.Let" }

// Box is a plain record with two integer fields and one value field.
type Box struct {
	ir.Node
	A      int64
	B      int64
	Field1 ir.Value
}

func (*Box) TypeKey() string { return "test.Box" }

// Sym is a leaf that serializes as its name via repr bytes.
type Sym struct {
	ir.Node
	Name string
}

func (*Sym) TypeKey() string { return "test.Sym" }

// Unit is a compilation unit carrying a body and a volatile note that
// equality ignores.
type Unit struct {
	ir.Node
	Params *ir.Array
	Body   ir.Value
	Note   string
}

func (*Unit) TypeKey() string { return "test.Unit" }

func optObject(v ir.Value) ir.Value {
	if v == nil {
		return ir.None{}
	}
	return v
}

func asVar(v ir.Value) (*Var, error) {
	if ir.IsNone(v) {
		return nil, nil
	}
	x, ok := v.(*Var)
	if !ok {
		return nil, fmt.Errorf("expected test.Var, got %s", ir.KindOf(v))
	}
	return x, nil
}

func init() {
	reflection.Register(&reflection.TypeInfo{
		TypeKey:    "test.Var",
		Kind:       reflection.FreeVar,
		CreateInit: func([]byte) (ir.Object, error) { return &Var{}, nil },
		Fields: []reflection.FieldInfo{
			{
				Name: "name", Type: reflection.StaticObject, Flags: reflection.SEqHashIgnore,
				Get: func(o ir.Object) ir.Value { return ir.String(o.(*Var).Name) },
				Set: func(o ir.Object, v ir.Value) error {
					s, ok := v.(ir.String)
					if !ok {
						return fmt.Errorf("expected string name, got %s", ir.KindOf(v))
					}
					o.(*Var).Name = string(s)
					return nil
				},
			},
		},
	})

	reflection.Register(&reflection.TypeInfo{
		TypeKey:    "test.Let",
		Kind:       reflection.DAGNode,
		CreateInit: func([]byte) (ir.Object, error) { return &Let{}, nil },
		Fields: []reflection.FieldInfo{
			{
				Name: "var", Type: reflection.StaticObject,
				Get: func(o ir.Object) ir.Value {
					if o.(*Let).Var == nil {
						return ir.None{}
					}
					return o.(*Let).Var
				},
				Set: func(o ir.Object, v ir.Value) error {
					x, err := asVar(v)
					if err != nil {
						return err
					}
					o.(*Let).Var = x
					return nil
				},
			},
			{
				Name: "value", Type: reflection.StaticAny,
				Get: func(o ir.Object) ir.Value { return optObject(o.(*Let).Value) },
				Set: func(o ir.Object, v ir.Value) error { o.(*Let).Value = v; return nil },
			},
			{
				Name: "body", Type: reflection.StaticAny,
				Get: func(o ir.Object) ir.Value { return optObject(o.(*Let).Body) },
				Set: func(o ir.Object, v ir.Value) error { o.(*Let).Body = v; return nil },
			},
		},
	})

	reflection.Register(&reflection.TypeInfo{
		TypeKey:    "test.Box",
		Kind:       reflection.ConstTreeNode,
		CreateInit: func([]byte) (ir.Object, error) { return &Box{}, nil },
		Fields: []reflection.FieldInfo{
			{
				Name: "a", Type: reflection.StaticInt,
				Get: func(o ir.Object) ir.Value { return ir.Int(o.(*Box).A) },
				Set: func(o ir.Object, v ir.Value) error {
					n, ok := v.(ir.Int)
					if !ok {
						return fmt.Errorf("expected int, got %s", ir.KindOf(v))
					}
					o.(*Box).A = int64(n)
					return nil
				},
			},
			{
				Name: "b", Type: reflection.StaticInt,
				Get: func(o ir.Object) ir.Value { return ir.Int(o.(*Box).B) },
				Set: func(o ir.Object, v ir.Value) error {
					n, ok := v.(ir.Int)
					if !ok {
						return fmt.Errorf("expected int, got %s", ir.KindOf(v))
					}
					o.(*Box).B = int64(n)
					return nil
				},
			},
			{
				Name: "field1", Type: reflection.StaticAny,
				Get: func(o ir.Object) ir.Value { return optObject(o.(*Box).Field1) },
				Set: func(o ir.Object, v ir.Value) error { o.(*Box).Field1 = v; return nil },
			},
		},
	})

	reflection.Register(&reflection.TypeInfo{
		TypeKey:    "test.Sym",
		Kind:       reflection.ConstTreeNode,
		CreateInit: func(repr []byte) (ir.Object, error) { return &Sym{Name: string(repr)}, nil },
		ReprBytes: func(o ir.Object) ([]byte, bool) {
			return []byte(o.(*Sym).Name), true
		},
	})

	reflection.Register(&reflection.TypeInfo{
		TypeKey:    "test.Unit",
		Kind:       reflection.DAGNode,
		CreateInit: func([]byte) (ir.Object, error) { return &Unit{}, nil },
		Fields: []reflection.FieldInfo{
			{
				Name: "params", Type: reflection.StaticObject, Flags: reflection.SEqHashDef,
				Get: func(o ir.Object) ir.Value {
					if o.(*Unit).Params == nil {
						return ir.None{}
					}
					return o.(*Unit).Params
				},
				Set: func(o ir.Object, v ir.Value) error {
					if ir.IsNone(v) {
						o.(*Unit).Params = nil
						return nil
					}
					arr, ok := v.(*ir.Array)
					if !ok {
						return fmt.Errorf("expected array, got %s", ir.KindOf(v))
					}
					o.(*Unit).Params = arr
					return nil
				},
			},
			{
				Name: "body", Type: reflection.StaticAny,
				Get: func(o ir.Object) ir.Value { return optObject(o.(*Unit).Body) },
				Set: func(o ir.Object, v ir.Value) error { o.(*Unit).Body = v; return nil },
			},
			{
				Name: "note", Type: reflection.StaticObject, Flags: reflection.SEqHashIgnore,
				Get: func(o ir.Object) ir.Value { return ir.String(o.(*Unit).Note) },
				Set: func(o ir.Object, v ir.Value) error {
					s, ok := v.(ir.String)
					if !ok {
						return fmt.Errorf("expected string note, got %s", ir.KindOf(v))
					}
					o.(*Unit).Note = string(s)
					return nil
				},
			},
		},
	})
}
