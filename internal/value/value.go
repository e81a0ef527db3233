// Package value implements the polymorphic runtime Value of spec.md §3/§4.E:
// a tagged variant over number, complex, string, list, matrix, assoc,
// object, file, block, random-state, and error, with reference counting
// over the container kinds and a dispatch layer for arithmetic, container
// protocol, and display.
package value

import (
	"calc/internal/cplx"
	"calc/internal/rational"

	"github.com/google/uuid"
)

// Kind discriminates the Value union.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindComplex
	KindString
	KindList
	KindMatrix
	KindAssoc
	KindObject
	KindFile
	KindBlock
	KindRandstate
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindComplex:
		return "complex"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMatrix:
		return "matrix"
	case KindAssoc:
		return "assoc"
	case KindObject:
		return "object"
	case KindFile:
		return "file"
	case KindBlock:
		return "block"
	case KindRandstate:
		return "randstate"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// refcounted is implemented by every container-kind payload so Retain and
// Release can walk the reference graph generically.
type refcounted interface {
	retain()
	release()
}

// Value is a small, cheap-to-copy handle: scalars (Number, Complex) are
// stored inline; every container kind is a pointer carrying its own
// refcount, per spec.md §3's "each value carries a reference count."
type Value struct {
	Kind Kind
	Num  rational.Q
	Cx   cplx.C
	ptr  refcounted // underlying *String/*List/*Matrix/*Assoc/*Object/*File/*Block/*Randstate/*ErrorVal
}

// Null is the singleton null value.
var Null = Value{Kind: KindNull}

func Number(q rational.Q) Value { return Value{Kind: KindNumber, Num: q} }

// Complex normalizes a zero-imaginary complex down to a plain Number, per
// spec.md §3's invariant that "purely real complex values MUST be stored
// as a plain Q at the value level."
func Complex(c cplx.C) Value {
	if c.Im.IsZero() {
		return Number(c.Re)
	}
	return Value{Kind: KindComplex, Cx: c}
}

func fromPtr(k Kind, p refcounted) Value {
	p.retain()
	return Value{Kind: k, ptr: p}
}

// Retain increments the reference count of v's underlying container, if
// any; scalars are no-ops.
func (v Value) Retain() Value {
	if v.ptr != nil {
		v.ptr.retain()
	}
	return v
}

// Release decrements the reference count of v's underlying container. At
// zero the container (and, recursively, its elements) is released; scoped
// resources (File, Block) close/free at this point per spec.md §5.
func (v Value) Release() {
	if v.ptr != nil {
		v.ptr.release()
	}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsError returns the underlying *ErrorVal if v is an Error value.
func (v Value) AsError() (*ErrorVal, bool) {
	if v.Kind != KindError {
		return nil, false
	}
	e, _ := v.ptr.(*ErrorVal)
	return e, true
}

// Identity returns a uuid for reference identity (used for Object/File
// debug display and for Assoc keys that need to distinguish otherwise-
// structurally-equal container instances). Scalars have no identity;
// callers must not call this for Kind Number/Complex/Null.
func (v Value) Identity() uuid.UUID {
	type identified interface{ id() uuid.UUID }
	if idv, ok := v.ptr.(identified); ok {
		return idv.id()
	}
	return uuid.UUID{}
}

// rcHeader is embedded by every container payload to provide the
// refcounted interface and a stable identity.
type rcHeader struct {
	rc   int32
	uuid uuid.UUID
}

func newHeader() rcHeader {
	return rcHeader{rc: 1, uuid: uuid.New()}
}

func (h *rcHeader) retain() { h.rc++ }
func (h *rcHeader) id() uuid.UUID {
	return h.uuid
}
