package object

import (
	"errors"
	"testing"

	"calc/internal/rational"
	"calc/internal/value"
)

func TestDispatchLookupOrder(t *testing.T) {
	r := NewRegistry()

	t.Run("a's override wins", func(t *testing.T) {
		pt := r.Declare("Point", []string{"x", "y"})
		pt.Overrides[value.OpAdd] = func(args []value.Value) (value.Value, error) {
			return value.Number(rational.FromInt64(111)), nil
		}
		a := pt.New()
		b := pt.New()
		res, ok := r.Dispatch(value.OpAdd, a, b, false)
		if !ok {
			t.Fatal("expected dispatch to handle the op")
		}
		if res.Kind != value.KindNumber {
			t.Fatalf("expected number result, got %v", res.Kind)
		}
	})

	t.Run("falls back to b's override when a has none", func(t *testing.T) {
		vec := r.Declare("Vec", []string{"x"})
		other := r.Declare("Other", []string{})
		vec.Overrides[value.OpMul] = func(args []value.Value) (value.Value, error) {
			return value.Number(rational.FromInt64(7)), nil
		}
		a := other.New()
		b := vec.New()
		res, ok := r.Dispatch(value.OpMul, a, b, false)
		if !ok || res.Kind != value.KindNumber {
			t.Fatalf("expected b's override to fire, got %v ok=%v", res.Kind, ok)
		}
	})

	t.Run("NoOperator when neither side overrides", func(t *testing.T) {
		bare := r.Declare("Bare", []string{})
		a := bare.New()
		b := bare.New()
		res, ok := r.Dispatch(value.OpSub, a, b, false)
		if !ok {
			t.Fatal("Dispatch should always report handled=true once an operand is an Object")
		}
		e, isErr := res.AsError()
		if !isErr || e.Kind != value.ErrType {
			t.Fatalf("expected a type error value, got kind=%v", res.Kind)
		}
	})

	t.Run("override error becomes a user error value", func(t *testing.T) {
		boom := r.Declare("Boom", []string{})
		boom.Overrides[value.OpAdd] = func(args []value.Value) (value.Value, error) {
			return value.Value{}, errors.New("boom")
		}
		a := boom.New()
		b := boom.New()
		res, ok := r.Dispatch(value.OpAdd, a, b, false)
		if !ok {
			t.Fatal("expected handled=true")
		}
		e, isErr := res.AsError()
		if !isErr || e.Kind != value.ErrUser {
			t.Fatalf("expected a user error value, got kind=%v", res.Kind)
		}
	})
}

func TestFieldIndex(t *testing.T) {
	r := NewRegistry()
	t.Run("known and unknown field", func(t *testing.T) {
		pt := r.Declare("Point", []string{"x", "y"})
		if i := pt.FieldIndex("y"); i != 1 {
			t.Errorf("expected index 1, got %d", i)
		}
		if i := pt.FieldIndex("z"); i != -1 {
			t.Errorf("expected -1 for unknown field, got %d", i)
		}
	})
}
