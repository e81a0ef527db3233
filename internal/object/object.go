// Package object implements the user-defined type registry of spec.md
// §4.G: `obj T { fields }` declarations and their per-type operator
// override method table, wired into internal/value's dispatch layer via
// value.DefaultOverride so value stays a leaf package.
package object

import (
	"fmt"

	"calc/internal/config"
	"calc/internal/value"
)

// TypeDef is one `obj T { field_a, field_b, ... }` declaration: the field
// name list (positional, matching value.Object.Fields) and the set of
// operator-override functions named `T_op` that were defined alongside it.
type TypeDef struct {
	Name      string
	Fields    []string
	Overrides map[value.Op]Method
	PrintFn   Method // T_print override, if any (SPEC_FULL.md §3)
	ReprFn    Method
}

// Method is a callable bound to an operator-override or print-override
// function body; Call dispatches into the compiled-function registry
// (internal/engine), which is why it is injected rather than defined here:
// object cannot import engine without cycling back through value.
type Method func(args []value.Value) (value.Value, error)

// Registry holds every declared type, keyed by type name.
type Registry struct {
	types map[string]*TypeDef
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*TypeDef)}
}

// Declare registers a new type; redeclaration replaces the previous
// definition, matching the environment's "assignments create or replace"
// rule (spec.md §4.J) applied to type declarations.
func (r *Registry) Declare(name string, fields []string) *TypeDef {
	t := &TypeDef{Name: name, Fields: fields, Overrides: make(map[value.Op]Method)}
	r.types[name] = t
	return t
}

func (r *Registry) Lookup(name string) (*TypeDef, bool) {
	t, ok := r.types[name]
	return t, ok
}

// FieldIndex returns the positional slot for a field name, or -1.
func (t *TypeDef) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// New constructs a fresh instance with all fields Null.
func (t *TypeDef) New() value.Value {
	return value.NewObjectValue(t.Name, len(t.Fields))
}

// noOperator builds the first-class error value spec.md §4.G's lookup
// order 3 raises when neither operand's type overrides op.
func noOperator(op value.Op, a, b value.Value) value.Value {
	return value.NewError(value.ErrType, 0, fmt.Sprintf("NoOperator: %s has no override for %s", objTypeName(a, b), op))
}

func objTypeName(a, b value.Value) string {
	if o, ok := a.AsObject(); ok {
		return o.TypeID
	}
	if o, ok := b.AsObject(); ok {
		return o.TypeID
	}
	return "?"
}

// Dispatch implements spec.md §4.G's lookup order and is installed as
// value.DefaultOverride by internal/engine at startup:
//
//  1. a's type overrides op -> call T_op(a, b).
//  2. else b's type overrides op -> call T_op(b, a); the method receives
//     the operands in swapped order and is not told they were swapped.
//  3. else NoOperator.
func (r *Registry) Dispatch(op value.Op, a, b value.Value, swapped bool) (value.Value, bool) {
	if o, ok := a.AsObject(); ok {
		if t, ok := r.types[o.TypeID]; ok {
			if m, ok := t.Overrides[op]; ok {
				res, err := m([]value.Value{a, b})
				if err != nil {
					return value.NewError(value.ErrUser, 0, err.Error()), true
				}
				return res, true
			}
		}
	}
	if o, ok := b.AsObject(); ok {
		if t, ok := r.types[o.TypeID]; ok {
			if m, ok := t.Overrides[op]; ok {
				res, err := m([]value.Value{b, a})
				if err != nil {
					return value.NewError(value.ErrUser, 0, err.Error()), true
				}
				return res, true
			}
		}
	}
	return noOperator(op, a, b), true
}

// Print implements the value.ObjectPrinter signature and is installed by
// internal/engine at startup, resolving a T_print/T_repr override if the
// object's type declares one, per SPEC_FULL.md §3's print-override hook.
func (r *Registry) Print(o *value.Object, mode value.PrintMode, cfg *config.Config) (string, bool) {
	t, ok := r.types[o.TypeID]
	if !ok {
		return "", false
	}
	m := t.PrintFn
	if mode == value.ModeRepr && t.ReprFn != nil {
		m = t.ReprFn
	}
	if m == nil {
		return "", false
	}
	res, err := m([]value.Value{value.NewObjectValue(o.TypeID, len(o.Fields))})
	if err != nil {
		return "", false
	}
	s, ok := res.AsString()
	if !ok {
		return "", false
	}
	return s.String(), true
}
