package vm

import (
	"calc/internal/bytecode"
	"calc/internal/cplx"
	"calc/internal/lexer"
	"calc/internal/rational"
	"calc/internal/value"
)

// arithOpTable mirrors bytecode.ArithOp's declaration order against
// value.Op's, so the VM never needs anything fancier than an index.
var arithOpTable = [...]value.Op{
	value.OpAdd, value.OpSub, value.OpMul, value.OpDiv, value.OpIDiv,
	value.OpMod, value.OpPow, value.OpEq, value.OpNe, value.OpLt,
	value.OpLe, value.OpGt, value.OpGe, value.OpBAnd, value.OpBOr,
	value.OpBXor, value.OpShl, value.OpShr, value.OpNeg, value.OpBNot,
	value.OpAbs, value.OpInv, value.OpSquare, value.OpConj,
}

func unaryOp(op value.Op) bool {
	switch op {
	case value.OpNeg, value.OpBNot, value.OpAbs, value.OpInv, value.OpSquare, value.OpConj:
		return true
	default:
		return false
	}
}

func (vm *VM) doArith(a bytecode.ArithOp) {
	op := arithOpTable[a]
	if unaryOp(op) {
		operand := vm.pop()
		vm.push(value.UnOp(op, operand, vm.Cfg))
		return
	}
	b := vm.pop()
	lhs := vm.pop()
	vm.push(value.BinOp(op, lhs, b, vm.Cfg))
}

// constantToValue converts one entry of a Chunk's constant pool (produced
// by AddConstant during compilation) into a runtime Value.
func constantToValue(c interface{}) value.Value {
	switch v := c.(type) {
	case lexer.NumericLiteral:
		if v.Imaginary {
			return value.Complex(cplx.New(rational.FromInt64(0), v.Value))
		}
		return value.Number(v.Value)
	case string:
		return value.NewString(v)
	case nil:
		return value.Null
	default:
		return value.Null
	}
}

// truthy is this VM's reading of a condition operand: numeric/complex
// zero, the empty string, and empty containers are false; Null and Error
// are false; everything else (including any live Object, File, Block, or
// Randstate handle) is true.
func truthy(v value.Value) bool {
	switch v.Kind {
	case value.KindNull, value.KindError:
		return false
	case value.KindNumber:
		return !v.Num.IsZero()
	case value.KindComplex:
		return !v.Cx.Re.IsZero() || !v.Cx.Im.IsZero()
	case value.KindString:
		s, _ := v.AsString()
		return s != nil && len(s.Bytes) > 0
	case value.KindList:
		l, _ := v.AsList()
		return l != nil && l.Len() > 0
	case value.KindAssoc:
		a, _ := v.AsAssoc()
		return a != nil && a.Len() > 0
	default:
		return true
	}
}

func boolValue(b bool) value.Value {
	if b {
		return value.Number(rational.FromInt64(1))
	}
	return value.Number(rational.FromInt64(0))
}

func intValue(n int) value.Value { return value.Number(rational.FromInt64(int64(n))) }

// toInt reads a Number Value as a Go int, truncating toward zero; used
// for index operands, matrix bounds, and NewError's kind/code operands.
func toInt(v value.Value) int {
	if v.Kind != value.KindNumber {
		return 0
	}
	u, ok := v.Num.Num().Uint64()
	if !ok {
		return 0
	}
	n := int(u)
	if v.Num.IsNeg() {
		n = -n
	}
	return n
}

func makeList(vals []value.Value) value.Value {
	out := value.NewListValue()
	l, _ := out.AsList()
	for _, v := range vals {
		l.PushBack(v)
	}
	return out
}

// doIndex implements Index: the stack holds the container at depth ndims
// below ndims key operands (pushed left to right by VisitIndex).
func (vm *VM) doIndex(ndims int) {
	keys := vm.popN(ndims)
	container := vm.pop()
	switch container.Kind {
	case value.KindList:
		l, _ := container.AsList()
		i := toInt(keys[0])
		v, ok := l.Get(i)
		if !ok {
			vm.push(value.NewError(value.ErrShape, 1, "list index out of range"))
			return
		}
		vm.push(v)
	case value.KindMatrix:
		m, _ := container.AsMatrix()
		coords := make([]int, len(keys))
		for i, k := range keys {
			coords[i] = toInt(k)
		}
		v, ok := m.Get(coords)
		if !ok {
			vm.push(value.NewError(value.ErrShape, 1, "matrix index out of range"))
			return
		}
		vm.push(v)
	case value.KindAssoc:
		a, _ := container.AsAssoc()
		v, ok := a.Get(keys)
		if !ok {
			vm.push(value.Null)
			return
		}
		vm.push(v)
	case value.KindString:
		s, _ := container.AsString()
		i := toInt(keys[0])
		if i < 0 || i >= len(s.Bytes) {
			vm.push(value.NewError(value.ErrShape, 1, "string index out of range"))
			return
		}
		vm.push(value.NewString(string(s.Bytes[i])))
	default:
		vm.push(value.NewError(value.ErrType, 1, "cannot index "+container.Kind.String()))
	}
}

// doSetIndex mirrors doIndex's stack shape with one more operand on top:
// container, ndims keys, then the value to store. It is statement-only
// (spec.md has no index-assignment expression), so nothing is left on
// the stack on success; a fault leaves the error value for checkFault.
func (vm *VM) doSetIndex(ndims int) {
	val := vm.pop()
	keys := vm.popN(ndims)
	container := vm.pop()
	switch container.Kind {
	case value.KindList:
		l, _ := container.AsList()
		if !l.Set(toInt(keys[0]), val) {
			vm.push(value.NewError(value.ErrShape, 1, "list index out of range"))
		}
	case value.KindMatrix:
		m, _ := container.AsMatrix()
		coords := make([]int, len(keys))
		for i, k := range keys {
			coords[i] = toInt(k)
		}
		if !m.Set(coords, val) {
			vm.push(value.NewError(value.ErrShape, 1, "matrix index out of range"))
		}
	case value.KindAssoc:
		a, _ := container.AsAssoc()
		a.Set(keys, val)
	default:
		vm.push(value.NewError(value.ErrType, 1, "cannot index-assign "+container.Kind.String()))
	}
}

func doAppend(container, val value.Value) value.Value {
	switch container.Kind {
	case value.KindList:
		l, _ := container.AsList()
		l.PushBack(val)
		return container
	default:
		return value.NewError(value.ErrType, 1, "cannot append to "+container.Kind.String())
	}
}

func doDelete(container, key value.Value) value.Value {
	switch container.Kind {
	case value.KindList:
		l, _ := container.AsList()
		if !l.Delete(toInt(key)) {
			return value.NewError(value.ErrShape, 1, "list index out of range")
		}
		return container
	case value.KindAssoc:
		a, _ := container.AsAssoc()
		a.Delete([]value.Value{key})
		return container
	default:
		return value.NewError(value.ErrType, 1, "cannot delete from "+container.Kind.String())
	}
}

// makeMatrix pops 2*ndims bound operands (lo_1..lo_n, then hi_1..hi_n)
// then the element values row-major over that bound box, and builds a
// Matrix.
func (vm *VM) makeMatrix(ndims int) value.Value {
	bounds := vm.popN(2 * ndims)
	lo := make([]int, ndims)
	hi := make([]int, ndims)
	for i := 0; i < ndims; i++ {
		lo[i] = toInt(bounds[i])
		hi[i] = toInt(bounds[ndims+i])
	}
	total := 1
	for i := 0; i < ndims; i++ {
		total *= hi[i] - lo[i] + 1
	}
	elems := vm.popN(total)
	out := value.NewMatrixValue(lo, hi)
	m, _ := out.AsMatrix()
	coords := make([]int, ndims)
	copy(coords, lo)
	for _, e := range elems {
		m.Set(coords, e)
		for d := ndims - 1; d >= 0; d-- {
			coords[d]++
			if coords[d] <= hi[d] {
				break
			}
			coords[d] = lo[d]
		}
	}
	return out
}

func (vm *VM) getField(obj value.Value, field string) value.Value {
	o, ok := obj.AsObject()
	if !ok {
		return value.NewError(value.ErrType, 1, "cannot get field of "+obj.Kind.String())
	}
	t, ok := vm.Objects.Lookup(o.TypeID)
	if !ok {
		return value.NewError(value.ErrLookup, 1, "undeclared type "+o.TypeID)
	}
	idx := t.FieldIndex(field)
	if idx < 0 {
		return value.NewError(value.ErrLookup, 1, "no field "+field+" on "+o.TypeID)
	}
	return o.Fields[idx]
}

func (vm *VM) setField(obj value.Value, field string, val value.Value) {
	o, ok := obj.AsObject()
	if !ok {
		return
	}
	t, ok := vm.Objects.Lookup(o.TypeID)
	if !ok {
		return
	}
	idx := t.FieldIndex(field)
	if idx < 0 {
		return
	}
	o.Fields[idx] = val
}
