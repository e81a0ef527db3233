package value

import (
	"calc/internal/config"
	"calc/internal/cplx"
	"calc/internal/rational"
)

// Op names the arithmetic/comparison operators of spec.md §4.E.
type Op string

const (
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpIDiv   Op = "//"
	OpMod    Op = "%"
	OpPow    Op = "**"
	OpEq     Op = "=="
	OpNe     Op = "!="
	OpLt     Op = "<"
	OpLe     Op = "<="
	OpGt     Op = ">"
	OpGe     Op = ">="
	OpBAnd   Op = "&"
	OpBOr    Op = "|"
	OpBXor   Op = "^"
	OpShl    Op = "<<"
	OpShr    Op = ">>"
	OpNeg    Op = "neg"
	OpBNot   Op = "~"
	OpAbs    Op = "abs"
	OpInv    Op = "inv"
	OpSquare Op = "square"
	OpConj   Op = "conj"
)

// ObjectOverride is consulted by BinOp/UnOp whenever an operand is an
// Object, per spec.md §4.G's lookup order: the dispatch table defers to
// whatever the VM/engine has registered as that type's operator override.
// The value package has no notion of bytecode or calling functions, so
// this indirection is how the generic dispatch table reaches into the
// object system (internal/object) and the VM without an import cycle.
type ObjectOverride func(op Op, a, b Value, swapped bool) (Value, bool)

// DefaultOverride is nil until the engine installs its resolver at
// startup; BinOp/UnOp report NoOperator for Object operands until then.
var DefaultOverride ObjectOverride

func typeMismatch(a, b Value, op Op) Value {
	return NewError(ErrType, 1, "operator "+string(op)+" not defined for "+a.Kind.String()+" and "+b.Kind.String())
}

// BinOp dispatches a binary operator over the 2-D (tag_lhs, tag_rhs)
// space described in spec.md §4.E/§9: object operands are routed to the
// per-type override table first (§4.G lookup order), then numeric/complex
// combinations, then the handful of container/string combinations that
// are defined (list concat, string concat, scalar*matrix, etc). cfg
// supplies the `quo`/`mod` rounding policy spec.md §4.B requires for
// `//` and `%`; a nil cfg falls back to RoundFloor, the behavior this
// dispatcher had before the policy was configurable.
func BinOp(op Op, a, b Value, cfg *config.Config) Value {
	if a.Kind == KindObject || b.Kind == KindObject {
		if DefaultOverride != nil {
			if res, ok := DefaultOverride(op, a, b, false); ok {
				return res
			}
		}
		return NewError(ErrType, 2, "no operator override for "+string(op))
	}
	if a.Kind == KindError {
		return a
	}
	if b.Kind == KindError {
		return b
	}

	switch {
	case isNumeric(a) && isNumeric(b):
		return numericBinOp(op, a, b, cfg)
	case a.Kind == KindString && b.Kind == KindString && op == OpAdd:
		sa, _ := a.AsString()
		sb, _ := b.AsString()
		return NewString(sa.String() + sb.String())
	case a.Kind == KindString && b.Kind == KindString && isComparison(op):
		sa, _ := a.AsString()
		sb, _ := b.AsString()
		return compareResult(op, compareBytes(sa.Bytes, sb.Bytes))
	case a.Kind == KindList && b.Kind == KindList && op == OpAdd:
		return listConcat(a, b)
	case a.Kind == KindMatrix && b.Kind == KindMatrix && (op == OpAdd || op == OpSub):
		return matrixAddSub(op, a, b, cfg)
	case a.Kind == KindMatrix && b.Kind == KindMatrix && op == OpMul:
		return matrixMul(a, b, cfg)
	case a.Kind == KindMatrix && isNumeric(b) && (op == OpMul || op == OpDiv):
		return matrixScalar(op, a, b, cfg)
	case isNumeric(a) && b.Kind == KindMatrix && op == OpMul:
		return matrixScalar(op, b, a, cfg)
	case op == OpEq:
		return boolNum(Equal(a, b))
	case op == OpNe:
		return boolNum(!Equal(a, b))
	default:
		return typeMismatch(a, b, op)
	}
}

func isComparison(op Op) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareResult(op Op, c int) Value {
	var r bool
	switch op {
	case OpEq:
		r = c == 0
	case OpNe:
		r = c != 0
	case OpLt:
		r = c < 0
	case OpLe:
		r = c <= 0
	case OpGt:
		r = c > 0
	case OpGe:
		r = c >= 0
	}
	return boolNum(r)
}

func boolNum(b bool) Value {
	if b {
		return Number(rational.FromInt64(1))
	}
	return Number(rational.FromInt64(0))
}

func isNumeric(v Value) bool { return v.Kind == KindNumber || v.Kind == KindComplex }

func asComplex(v Value) cplx.C {
	if v.Kind == KindComplex {
		return v.Cx
	}
	return cplx.New(v.Num, rational.Zero())
}

// quoMode and modMode read spec.md §6's `quo`/`mod` configuration
// options; a nil cfg (a caller with no configuration available, e.g. a
// future direct value-package consumer) preserves the rounding mode this
// dispatcher used before the policy was configurable.
func quoMode(cfg *config.Config) rational.RoundMode {
	if cfg == nil {
		return rational.RoundFloor
	}
	return cfg.Quo
}

func modMode(cfg *config.Config) rational.RoundMode {
	if cfg == nil {
		return rational.RoundFloor
	}
	return cfg.Mod
}

func numericBinOp(op Op, a, b Value, cfg *config.Config) Value {
	bothReal := a.Kind == KindNumber && b.Kind == KindNumber
	if bothReal {
		switch op {
		case OpAdd:
			return Number(a.Num.Add(b.Num))
		case OpSub:
			return Number(a.Num.Sub(b.Num))
		case OpMul:
			return Number(a.Num.Mul(b.Num))
		case OpDiv:
			if b.Num.IsZero() {
				return NewError(ErrNumeric, 10, "division by zero")
			}
			return Number(a.Num.Quo(b.Num))
		case OpIDiv:
			if b.Num.IsZero() {
				return NewError(ErrNumeric, 10, "division by zero")
			}
			qv, _ := a.Num.QuoMod(b.Num, quoMode(cfg))
			return Number(qv)
		case OpMod:
			if b.Num.IsZero() {
				return NewError(ErrNumeric, 10, "division by zero")
			}
			return Number(a.Num.Mod(b.Num, modMode(cfg)))
		case OpPow:
			return intPow(a.Num, b.Num)
		case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
			return compareResult(op, a.Num.Cmp(b.Num))
		case OpBAnd, OpBOr, OpBXor, OpShl, OpShr:
			return intBitOp(op, a.Num, b.Num)
		}
	}
	// Complex path (at least one operand complex).
	ca, cb := asComplex(a), asComplex(b)
	switch op {
	case OpAdd:
		return Complex(ca.Add(cb))
	case OpSub:
		return Complex(ca.Sub(cb))
	case OpMul:
		return Complex(ca.Mul(cb))
	case OpDiv:
		if cb.IsZero() {
			return NewError(ErrNumeric, 10, "division by zero")
		}
		return Complex(ca.Div(cb))
	case OpEq:
		return boolNum(ca.Re.Equal(cb.Re) && ca.Im.Equal(cb.Im))
	case OpNe:
		return boolNum(!(ca.Re.Equal(cb.Re) && ca.Im.Equal(cb.Im)))
	default:
		return NewError(ErrType, 3, "operator "+string(op)+" not defined on complex operands")
	}
}

func intPow(a, b rational.Q) Value {
	if !b.IsInt() {
		return NewError(ErrNumeric, 11, "non-integer exponent requires root()")
	}
	bi, ok := b.Num().Uint64()
	if !ok {
		return NewError(ErrNumeric, 12, "exponent too large")
	}
	if a.IsZero() {
		if b.IsZero() {
			// 0^0: preserved source behavior per spec.md §9 Open Questions.
			return NewError(ErrNumeric, 13, "0^0 is undefined")
		}
		if b.IsNeg() {
			return NewError(ErrNumeric, 10, "division by zero")
		}
		return Number(rational.Zero())
	}
	if b.IsNeg() {
		return Number(intPowMag(a, bi).Inv())
	}
	return Number(intPowMag(a, bi))
}

func intPowMag(a rational.Q, e uint64) rational.Q {
	result := rational.FromInt64(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

func intBitOp(op Op, a, b rational.Q) Value {
	if !a.IsInt() || !b.IsInt() {
		return NewError(ErrNumeric, 14, "bitwise operator requires integer operands")
	}
	if a.IsNeg() || b.IsNeg() {
		// Two's-complement bitwise semantics over signed arbitrary-precision
		// integers are intentionally unsupported beyond NOT (§ rational.BitNot);
		// AND/OR/XOR/shift with negative operands is a documented gap.
		return NewError(ErrNumeric, 15, "bitwise operators require non-negative integers")
	}
	switch op {
	case OpBAnd:
		return Number(rational.FromMag(a.Num().And(b.Num()), false))
	case OpBOr:
		return Number(rational.FromMag(a.Num().Or(b.Num()), false))
	case OpBXor:
		return Number(rational.FromMag(a.Num().Xor(b.Num()), false))
	case OpShl:
		n, _ := b.Num().Uint64()
		return Number(rational.FromMag(a.Num().ShiftLeft(uint(n)), false))
	case OpShr:
		n, _ := b.Num().Uint64()
		return Number(rational.FromMag(a.Num().ShiftRight(uint(n)), false))
	}
	return NewError(ErrType, 4, "unreachable bitwise op")
}

// UnOp dispatches a unary operator. cfg is accepted for symmetry with
// BinOp's dispatch signature (§9's single shared rounding-mode
// dispatcher); no unary operator currently consults a rounding policy.
func UnOp(op Op, a Value, cfg *config.Config) Value {
	if a.Kind == KindObject {
		if DefaultOverride != nil {
			if res, ok := DefaultOverride(op, a, Value{}, false); ok {
				return res
			}
		}
		return NewError(ErrType, 2, "no operator override for "+string(op))
	}
	if a.Kind == KindError {
		return a
	}
	switch op {
	case OpNeg:
		if a.Kind == KindNumber {
			return Number(a.Num.Neg())
		}
		if a.Kind == KindComplex {
			return Complex(a.Cx.Neg())
		}
	case OpBNot:
		if a.Kind == KindNumber && a.Num.IsInt() {
			return Number(a.Num.BitNot())
		}
	case OpAbs:
		if a.Kind == KindNumber {
			return Number(a.Num.Abs())
		}
	case OpConj:
		if a.Kind == KindComplex {
			return Complex(a.Cx.Conj())
		}
		if a.Kind == KindNumber {
			return a
		}
	case OpInv:
		if a.Kind == KindNumber {
			if a.Num.IsZero() {
				return NewError(ErrNumeric, 10, "division by zero")
			}
			return Number(a.Num.Inv())
		}
		if a.Kind == KindComplex {
			one := cplx.New(rational.FromInt64(1), rational.Zero())
			return Complex(one.Div(a.Cx))
		}
	case OpSquare:
		if a.Kind == KindNumber {
			return Number(a.Num.Mul(a.Num))
		}
		if a.Kind == KindComplex {
			return Complex(a.Cx.Mul(a.Cx))
		}
	}
	return NewError(ErrType, 5, "operator "+string(op)+" not defined for "+a.Kind.String())
}

func listConcat(a, b Value) Value {
	la, _ := a.AsList()
	lb, _ := b.AsList()
	out := NewList()
	la.Each(func(v Value) { out.PushBack(v) })
	lb.Each(func(v Value) { out.PushBack(v) })
	return fromPtr(KindList, out)
}

func matrixAddSub(op Op, a, b Value, cfg *config.Config) Value {
	ma, _ := a.AsMatrix()
	mb, _ := b.AsMatrix()
	if len(ma.Data) != len(mb.Data) {
		return NewError(ErrShape, 20, "matrix dimension mismatch")
	}
	out := ma.Clone()
	for i := range out.Data {
		var r Value
		if op == OpAdd {
			r = BinOp(OpAdd, ma.Data[i], mb.Data[i], cfg)
		} else {
			r = BinOp(OpSub, ma.Data[i], mb.Data[i], cfg)
		}
		out.Data[i].Release()
		out.Data[i] = r.Retain()
	}
	return fromPtr(KindMatrix, out)
}

func matrixScalar(op Op, m Value, scalar Value, cfg *config.Config) Value {
	ma, _ := m.AsMatrix()
	out := ma.Clone()
	for i := range out.Data {
		r := BinOp(op, ma.Data[i], scalar, cfg)
		out.Data[i].Release()
		out.Data[i] = r.Retain()
	}
	return fromPtr(KindMatrix, out)
}

// matrixMul implements 2-D matrix multiplication; non-2-D operands are a
// Shape error.
func matrixMul(a, b Value, cfg *config.Config) Value {
	ma, _ := a.AsMatrix()
	mb, _ := b.AsMatrix()
	if len(ma.Lo) != 2 || len(mb.Lo) != 2 {
		return NewError(ErrShape, 21, "matrix multiply requires 2-D operands")
	}
	rows := ma.Hi[0] - ma.Lo[0] + 1
	inner := ma.Hi[1] - ma.Lo[1] + 1
	inner2 := mb.Hi[0] - mb.Lo[0] + 1
	cols := mb.Hi[1] - mb.Lo[1] + 1
	if inner != inner2 {
		return NewError(ErrShape, 22, "matrix dimension mismatch")
	}
	out := NewMatrix([]int{0, 0}, []int{rows - 1, cols - 1})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := Number(rational.Zero())
			for k := 0; k < inner; k++ {
				av, _ := ma.Get([]int{ma.Lo[0] + r, ma.Lo[1] + k})
				bv, _ := mb.Get([]int{mb.Lo[0] + k, mb.Lo[1] + c})
				sum = BinOp(OpAdd, sum, BinOp(OpMul, av, bv, cfg), cfg)
			}
			out.Set([]int{r, c}, sum)
		}
	}
	return fromPtr(KindMatrix, out)
}

// matrixToRationals extracts a square 2-D matrix's elements into a row-major
// rational.Q grid, failing if the matrix is not 2-D, not square, or holds a
// non-Number element (§4.F "det, inverse using fraction-free Bareiss-like
// elimination" — elimination here runs directly over exact rationals, which
// needs no fraction-free variant since Q never loses precision).
func matrixToRationals(m Value) ([][]rational.Q, int, Value) {
	ma, ok := m.AsMatrix()
	if !ok {
		return nil, 0, NewError(ErrType, 23, "det/inverse require a matrix")
	}
	if len(ma.Lo) != 2 {
		return nil, 0, NewError(ErrShape, 24, "det/inverse require a 2-D matrix")
	}
	rows := ma.Hi[0] - ma.Lo[0] + 1
	cols := ma.Hi[1] - ma.Lo[1] + 1
	if rows != cols {
		return nil, 0, NewError(ErrShape, 25, "det/inverse require a square matrix")
	}
	grid := make([][]rational.Q, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]rational.Q, cols)
		for c := 0; c < cols; c++ {
			v, _ := ma.Get([]int{ma.Lo[0] + r, ma.Lo[1] + c})
			if v.Kind != KindNumber {
				return nil, 0, NewError(ErrType, 26, "det/inverse require numeric matrix entries")
			}
			grid[r][c] = v.Num
		}
	}
	return grid, rows, Value{}
}

// gaussEliminate runs Gauss-Jordan elimination in place on grid (n x n),
// tracking aug as an optional augmented side-matrix (n x n, nil for a plain
// determinant), and returns the running product of pivots (the determinant
// up to the sign flips already folded into it) plus whether the matrix was
// found singular.
func gaussEliminate(grid [][]rational.Q, aug [][]rational.Q, n int) (rational.Q, bool) {
	det := rational.One()
	for col := 0; col < n; col++ {
		pivot := col
		for pivot < n && grid[pivot][col].IsZero() {
			pivot++
		}
		if pivot == n {
			return rational.Zero(), true
		}
		if pivot != col {
			grid[pivot], grid[col] = grid[col], grid[pivot]
			if aug != nil {
				aug[pivot], aug[col] = aug[col], aug[pivot]
			}
			det = det.Neg()
		}
		pv := grid[col][col]
		det = det.Mul(pv)
		inv := pv.Inv()
		for c := 0; c < n; c++ {
			grid[col][c] = grid[col][c].Mul(inv)
		}
		if aug != nil {
			for c := 0; c < n; c++ {
				aug[col][c] = aug[col][c].Mul(inv)
			}
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := grid[r][col]
			if factor.IsZero() {
				continue
			}
			for c := 0; c < n; c++ {
				grid[r][c] = grid[r][c].Sub(factor.Mul(grid[col][c]))
			}
			if aug != nil {
				for c := 0; c < n; c++ {
					aug[r][c] = aug[r][c].Sub(factor.Mul(aug[col][c]))
				}
			}
		}
	}
	return det, false
}

// Det computes the determinant of a square 2-D matrix (§4.F).
func Det(m Value) Value {
	grid, n, errv := matrixToRationals(m)
	if errv.Kind == KindError {
		return errv
	}
	det, singular := gaussEliminate(grid, nil, n)
	if singular {
		return Number(rational.Zero())
	}
	return Number(det)
}

// Inverse computes the inverse of a square 2-D matrix via Gauss-Jordan
// elimination against an identity augmentation (§4.F).
func Inverse(m Value) Value {
	grid, n, errv := matrixToRationals(m)
	if errv.Kind == KindError {
		return errv
	}
	aug := make([][]rational.Q, n)
	for r := 0; r < n; r++ {
		aug[r] = make([]rational.Q, n)
		for c := 0; c < n; c++ {
			if r == c {
				aug[r][c] = rational.One()
			} else {
				aug[r][c] = rational.Zero()
			}
		}
	}
	_, singular := gaussEliminate(grid, aug, n)
	if singular {
		return NewError(ErrNumeric, 27, "matrix is singular")
	}
	ma, _ := m.AsMatrix()
	out := NewMatrix(append([]int(nil), ma.Lo...), append([]int(nil), ma.Hi...))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out.Set([]int{ma.Lo[0] + r, ma.Lo[1] + c}, Number(aug[r][c]))
		}
	}
	return fromPtr(KindMatrix, out)
}

// ---- Container protocol (§4.E group 2): index/size/append/delete. ----

// Index implements the generic container `[]` operator. For Matrix,
// coords addresses n dimensions; for List/String a single int index.
func Index(container Value, coords []int) Value {
	switch container.Kind {
	case KindList:
		l, _ := container.AsList()
		idx := coords[0]
		if idx < 0 {
			idx += l.Len()
		}
		v, ok := l.Get(idx)
		if !ok {
			return NewError(ErrShape, 30, "list index out of range")
		}
		return v
	case KindMatrix:
		m, _ := container.AsMatrix()
		v, ok := m.Get(coords)
		if !ok {
			return NewError(ErrShape, 31, "matrix index out of bounds")
		}
		return v
	case KindString:
		s, _ := container.AsString()
		idx := coords[0]
		if idx < 0 {
			idx += len(s.Bytes)
		}
		if idx < 0 || idx >= len(s.Bytes) {
			return NewError(ErrShape, 32, "string index out of range")
		}
		return NewString(string(s.Bytes[idx]))
	default:
		return NewError(ErrType, 6, "value is not indexable")
	}
}

func Size(container Value) int {
	switch container.Kind {
	case KindList:
		l, _ := container.AsList()
		return l.Len()
	case KindMatrix:
		m, _ := container.AsMatrix()
		return len(m.Data)
	case KindAssoc:
		a, _ := container.AsAssoc()
		return a.Len()
	case KindString:
		s, _ := container.AsString()
		return len(s.Bytes)
	default:
		return 0
	}
}
