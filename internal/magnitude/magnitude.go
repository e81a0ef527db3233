// Package magnitude implements unsigned arbitrary-precision integers.
//
// A Mag is a little-endian slice of 32-bit limbs (base 2^32). Implementers
// may pick any limb width without changing observable behavior; 32 bits
// keeps intermediate products inside a uint64 during schoolbook passes.
package magnitude

import (
	"math/big"
	"math/bits"

	"github.com/remyoudompheng/bigfft"
)

const limbBits = 32
const limbMask = 0xFFFFFFFF

// Mag is an unsigned arbitrary-precision integer: limbs[0] is least
// significant. The zero value (nil/empty slice) represents zero. A
// normalized Mag never carries a leading zero limb except for the value
// zero itself, which is the empty slice.
type Mag struct {
	limbs []uint32
}

// karatsubaThreshold is the limb count above which Mul switches from
// schoolbook to Karatsuba, per spec ("approximately 50 limbs").
const karatsubaThreshold = 50

// fftThreshold is the limb count above which Mul bridges through
// math/big and bigfft's FFT multiplication instead of Karatsuba. This is
// an additive fast path for the rare case of astronomically large operands
// (e.g. factorial towers); Karatsuba still owns the common case.
const fftThreshold = 4096

func normalize(limbs []uint32) []uint32 {
	n := len(limbs)
	for n > 0 && limbs[n-1] == 0 {
		n--
	}
	return limbs[:n]
}

// Zero returns the magnitude 0.
func Zero() Mag { return Mag{} }

// One returns the magnitude 1.
func One() Mag { return Mag{limbs: []uint32{1}} }

// FromUint64 builds a Mag from a native unsigned integer.
func FromUint64(v uint64) Mag {
	if v == 0 {
		return Mag{}
	}
	lo := uint32(v & limbMask)
	hi := uint32(v >> limbBits)
	if hi == 0 {
		return Mag{limbs: []uint32{lo}}
	}
	return Mag{limbs: []uint32{lo, hi}}
}

// IsZero reports whether m is zero.
func (m Mag) IsZero() bool { return len(m.limbs) == 0 }

// IsOne reports whether m equals one.
func (m Mag) IsOne() bool { return len(m.limbs) == 1 && m.limbs[0] == 1 }

// BitLen returns the number of bits needed to represent m (0 for zero).
func (m Mag) BitLen() int {
	n := len(m.limbs)
	if n == 0 {
		return 0
	}
	return (n-1)*limbBits + bits.Len32(m.limbs[n-1])
}

// Uint64 returns the low 64 bits of m and whether m fits in 64 bits.
func (m Mag) Uint64() (uint64, bool) {
	if len(m.limbs) > 2 {
		return 0, false
	}
	var v uint64
	for i := len(m.limbs) - 1; i >= 0; i-- {
		v = v<<limbBits | uint64(m.limbs[i])
	}
	return v, true
}

// Cmp returns -1, 0, or 1 as m is less than, equal to, or greater than n.
func (m Mag) Cmp(n Mag) int {
	if len(m.limbs) != len(n.limbs) {
		if len(m.limbs) < len(n.limbs) {
			return -1
		}
		return 1
	}
	for i := len(m.limbs) - 1; i >= 0; i-- {
		if m.limbs[i] != n.limbs[i] {
			if m.limbs[i] < n.limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Add returns m+n.
func (m Mag) Add(n Mag) Mag {
	a, b := m.limbs, n.limbs
	if len(a) < len(b) {
		a, b = b, a
	}
	out := make([]uint32, len(a)+1)
	var carry uint64
	for i := range a {
		s := uint64(a[i]) + carry
		if i < len(b) {
			s += uint64(b[i])
		}
		out[i] = uint32(s & limbMask)
		carry = s >> limbBits
	}
	out[len(a)] = uint32(carry)
	return Mag{limbs: normalize(out)}
}

// Sub returns m-n. The caller must ensure m >= n; Sub panics otherwise,
// since Mag is unsigned (sign lives one layer up, in rational.Q).
func (m Mag) Sub(n Mag) Mag {
	if m.Cmp(n) < 0 {
		panic("magnitude: Sub underflow")
	}
	a, b := m.limbs, n.limbs
	out := make([]uint32, len(a))
	var borrow int64
	for i := range a {
		d := int64(a[i]) - borrow
		if i < len(b) {
			d -= int64(b[i])
		}
		if d < 0 {
			d += 1 << limbBits
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = uint32(d)
	}
	return Mag{limbs: normalize(out)}
}

// schoolbookMul is the O(n*m) reference multiply.
func schoolbookMul(a, b []uint32) []uint32 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]uint32, len(a)+len(b))
	for i, av := range a {
		if av == 0 {
			continue
		}
		var carry uint64
		for j, bv := range b {
			hi, lo := bits.Mul32(av, bv)
			s := uint64(out[i+j]) + uint64(lo) + carry
			out[i+j] = uint32(s & limbMask)
			carry = uint64(hi) + s>>limbBits
		}
		k := i + len(b)
		for carry != 0 {
			s := uint64(out[k]) + carry
			out[k] = uint32(s & limbMask)
			carry = s >> limbBits
			k++
		}
	}
	return out
}

func karatsubaMul(a, b []uint32) []uint32 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n <= karatsubaThreshold {
		return schoolbookMul(a, b)
	}
	half := (n + 1) / 2
	aLo, aHi := splitAt(a, half)
	bLo, bHi := splitAt(b, half)

	z0 := karatsubaMul(aLo, bLo)
	z2 := karatsubaMul(aHi, bHi)

	aSum := addLimbs(aLo, aHi)
	bSum := addLimbs(bLo, bHi)
	z1 := karatsubaMul(aSum, bSum)
	z1 = subLimbs(subLimbs(z1, z0), z2)

	out := make([]uint32, 0, 2*n+2)
	out = append(out, z0...)
	out = addAtOffset(&out, z1, half)
	out = addAtOffset(&out, z2, 2*half)
	return out
}

func splitAt(a []uint32, k int) (lo, hi []uint32) {
	if k > len(a) {
		k = len(a)
	}
	lo = normalize(append([]uint32(nil), a[:k]...))
	hi = normalize(append([]uint32(nil), a[k:]...))
	return
}

func addLimbs(a, b []uint32) []uint32 {
	return (Mag{limbs: a}).Add(Mag{limbs: b}).limbs
}

func subLimbs(a, b []uint32) []uint32 {
	ma, mb := Mag{limbs: normalize(a)}, Mag{limbs: normalize(b)}
	if ma.Cmp(mb) < 0 {
		panic("magnitude: karatsuba negative intermediate")
	}
	return ma.Sub(mb).limbs
}

func addAtOffset(out *[]uint32, add []uint32, offset int) []uint32 {
	o := *out
	need := offset + len(add) + 1
	if len(o) < need {
		grown := make([]uint32, need)
		copy(grown, o)
		o = grown
	}
	var carry uint64
	for i, v := range add {
		s := uint64(o[offset+i]) + uint64(v) + carry
		o[offset+i] = uint32(s & limbMask)
		carry = s >> limbBits
	}
	for i := offset + len(add); carry != 0; i++ {
		if i >= len(o) {
			o = append(o, 0)
		}
		s := uint64(o[i]) + carry
		o[i] = uint32(s & limbMask)
		carry = s >> limbBits
	}
	*out = o
	return o
}

// toBig / fromBig bridge Mag to math/big for the FFT multiplication path.
func toBig(limbs []uint32) *big.Int {
	b := make([]byte, len(limbs)*4)
	for i, l := range limbs {
		b[len(b)-1-i*4] = byte(l)
		b[len(b)-2-i*4] = byte(l >> 8)
		b[len(b)-3-i*4] = byte(l >> 16)
		b[len(b)-4-i*4] = byte(l >> 24)
	}
	return new(big.Int).SetBytes(b)
}

func fromBig(v *big.Int) []uint32 {
	raw := v.Bytes()
	n := (len(raw) + 3) / 4
	limbs := make([]uint32, n)
	for i := 0; i < len(raw); i++ {
		byteFromEnd := len(raw) - 1 - i
		limbs[i/4] |= uint32(raw[byteFromEnd]) << uint((i%4)*8)
	}
	return normalize(limbs)
}

func fftMul(a, b []uint32) []uint32 {
	return fromBig(bigfft.Mul(toBig(a), toBig(b)))
}

// Mul returns m*n, dispatching to schoolbook, Karatsuba, or (for huge
// operands) FFT multiplication via math/big.
func (m Mag) Mul(n Mag) Mag {
	a, b := m.limbs, n.limbs
	if len(a) == 0 || len(b) == 0 {
		return Mag{}
	}
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	switch {
	case size > fftThreshold:
		return Mag{limbs: fftMul(a, b)}
	case size > karatsubaThreshold:
		return Mag{limbs: normalize(karatsubaMul(a, b))}
	default:
		return Mag{limbs: normalize(schoolbookMul(a, b))}
	}
}

// Square returns m*m via a dedicated path that halves the number of
// cross-products relative to a generic multiply.
func (m Mag) Square() Mag {
	a := m.limbs
	if len(a) == 0 {
		return Mag{}
	}
	if len(a) > karatsubaThreshold {
		return m.Mul(m)
	}
	out := make([]uint32, 2*len(a))
	for i := range a {
		hi, lo := bits.Mul32(a[i], a[i])
		s := uint64(out[2*i]) + uint64(lo)
		out[2*i] = uint32(s & limbMask)
		carry := uint64(hi) + s>>limbBits
		k := 2*i + 1
		for carry != 0 {
			s := uint64(out[k]) + carry
			out[k] = uint32(s & limbMask)
			carry = s >> limbBits
			k++
		}
	}
	for i := range a {
		if a[i] == 0 {
			continue
		}
		for j := i + 1; j < len(a); j++ {
			hi, lo := bits.Mul32(a[i], a[j])
			// doubled 96-bit cross term (hi:lo)*2, split into three limbs
			topBit := uint32(hi >> (limbBits - 1))
			hi2 := hi<<1 | lo>>(limbBits-1)
			lo2 := lo << 1
			addLimbAt(out, i+j, lo2)
			addLimbAt(out, i+j+1, hi2)
			if topBit != 0 {
				addLimbAt(out, i+j+2, topBit)
			}
		}
	}
	return Mag{limbs: normalize(out)}
}

// addLimbAt adds v into out[idx], propagating carries upward. out must be
// sized generously enough that the carry chain never runs off the end.
func addLimbAt(out []uint32, idx int, v uint32) {
	carry := uint64(v)
	for carry != 0 && idx < len(out) {
		s := uint64(out[idx]) + carry
		out[idx] = uint32(s & limbMask)
		carry = s >> limbBits
		idx++
	}
}

// ShiftLeft returns m << bits.
func (m Mag) ShiftLeft(n uint) Mag {
	if m.IsZero() || n == 0 {
		return m
	}
	limbShift := int(n / limbBits)
	bitShift := uint(n % limbBits)
	out := make([]uint32, len(m.limbs)+limbShift+1)
	for i, l := range m.limbs {
		if bitShift == 0 {
			out[i+limbShift] |= l
		} else {
			out[i+limbShift] |= l << bitShift
			out[i+limbShift+1] |= l >> (limbBits - bitShift)
		}
	}
	return Mag{limbs: normalize(out)}
}

// ShiftRight returns m >> bits (floor division semantics).
func (m Mag) ShiftRight(n uint) Mag {
	limbShift := int(n / limbBits)
	bitShift := uint(n % limbBits)
	if limbShift >= len(m.limbs) {
		return Mag{}
	}
	src := m.limbs[limbShift:]
	out := make([]uint32, len(src))
	for i := range src {
		out[i] = src[i] >> bitShift
		if bitShift != 0 && i+1 < len(src) {
			out[i] |= src[i+1] << (limbBits - bitShift)
		}
	}
	return Mag{limbs: normalize(out)}
}

// BitTest reports whether bit k (0 = least significant) is set.
func (m Mag) BitTest(k uint) bool {
	limb := int(k / limbBits)
	if limb >= len(m.limbs) {
		return false
	}
	return m.limbs[limb]&(1<<(k%limbBits)) != 0
}

// PopCount returns the number of set bits.
func (m Mag) PopCount() int {
	n := 0
	for _, l := range m.limbs {
		n += bits.OnesCount32(l)
	}
	return n
}

func bitwise(a, b Mag, op func(x, y uint32) uint32) Mag {
	n := len(a.limbs)
	if len(b.limbs) > n {
		n = len(b.limbs)
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		var x, y uint32
		if i < len(a.limbs) {
			x = a.limbs[i]
		}
		if i < len(b.limbs) {
			y = b.limbs[i]
		}
		out[i] = op(x, y)
	}
	return Mag{limbs: normalize(out)}
}

// And, Or, Xor implement bitwise operations over the unsigned magnitudes
// (sign/two's-complement interpretation of negative integers is the
// rational layer's concern, not this one's).
func (m Mag) And(n Mag) Mag { return bitwise(m, n, func(x, y uint32) uint32 { return x & y }) }
func (m Mag) Or(n Mag) Mag  { return bitwise(m, n, func(x, y uint32) uint32 { return x | y }) }
func (m Mag) Xor(n Mag) Mag { return bitwise(m, n, func(x, y uint32) uint32 { return x ^ y }) }

// QuoRem computes (q, r) such that m = q*n + r, 0 <= r < n. Divisor zero
// panics; callers (rational.Q) must turn that into a DivByZero error value
// before it reaches here.
func (m Mag) QuoRem(n Mag) (q, r Mag) {
	if n.IsZero() {
		panic("magnitude: division by zero")
	}
	if m.Cmp(n) < 0 {
		return Mag{}, m
	}
	if len(n.limbs) == 1 {
		return m.quoRemSmall(n.limbs[0])
	}
	return knuthDivide(m.limbs, n.limbs)
}

func (m Mag) quoRemSmall(d uint32) (q, r Mag) {
	out := make([]uint32, len(m.limbs))
	var rem uint64
	for i := len(m.limbs) - 1; i >= 0; i-- {
		cur := rem<<limbBits | uint64(m.limbs[i])
		out[i] = uint32(cur / uint64(d))
		rem = cur % uint64(d)
	}
	return Mag{limbs: normalize(out)}, FromUint64(rem)
}

// knuthDivide implements Knuth's Algorithm D (TAOCP vol 2, 4.3.1) with a
// normalizing shift so the divisor's top limb has its high bit set.
func knuthDivide(uLimbs, vLimbs []uint32) (q, r Mag) {
	n := len(vLimbs)
	m := len(uLimbs) - n

	shift := uint(bits.LeadingZeros32(vLimbs[n-1]))
	v := Mag{limbs: append([]uint32(nil), vLimbs...)}.ShiftLeft(shift).limbs
	for len(v) < n {
		v = append(v, 0)
	}
	u := Mag{limbs: append([]uint32(nil), uLimbs...)}.ShiftLeft(shift).limbs
	for len(u) < len(uLimbs)+1 {
		u = append(u, 0)
	}

	qOut := make([]uint32, m+1)
	const base = 1 << limbBits

	for j := m; j >= 0; j-- {
		var top uint64
		if j+n < len(u) {
			top = uint64(u[j+n])
		}
		num := top<<limbBits | uint64(u[j+n-1])
		qhat := num / uint64(v[n-1])
		rhat := num % uint64(v[n-1])
		if qhat >= base {
			qhat = base - 1
			rhat = num - qhat*uint64(v[n-1])
		}
		for rhat < base && n >= 2 && qhat*uint64(v[n-2]) > rhat<<limbBits|uint64(u[j+n-2]) {
			qhat--
			rhat += uint64(v[n-1])
		}

		var borrow int64
		var carry int64
		for i := 0; i < n; i++ {
			p := int64(qhat) * int64(v[i])
			carry += p >> limbBits
			lo := p & limbMask
			t := int64(u[j+i]) - lo - borrow
			if t < 0 {
				t += base
				borrow = 1
			} else {
				borrow = 0
			}
			u[j+i] = uint32(t)
		}
		t := int64(u[j+n]) - carry - borrow
		neg := t < 0
		if neg {
			t += base
		}
		u[j+n] = uint32(t)

		if neg {
			qhat--
			var c uint64
			for i := 0; i < n; i++ {
				s := uint64(u[j+i]) + uint64(v[i]) + c
				u[j+i] = uint32(s & limbMask)
				c = s >> limbBits
			}
			u[j+n] = uint32(uint64(u[j+n]) + c)
		}
		qOut[j] = uint32(qhat)
	}

	remLimbs := make([]uint32, n)
	copy(remLimbs, u[:n])
	rem := Mag{limbs: normalize(remLimbs)}.ShiftRight(shift)
	return Mag{limbs: normalize(qOut)}, rem
}

// Mod returns m mod n (the non-negative remainder of QuoRem).
func (m Mag) Mod(n Mag) Mag {
	_, r := m.QuoRem(n)
	return r
}

// GCD computes gcd(m, n) via the binary (Stein) algorithm.
func GCD(m, n Mag) Mag {
	if m.IsZero() {
		return n
	}
	if n.IsZero() {
		return m
	}
	shift := uint(0)
	a, b := append([]uint32(nil), m.limbs...), append([]uint32(nil), n.limbs...)
	am, bm := Mag{limbs: a}, Mag{limbs: b}
	for isEven(am) && isEven(bm) {
		am = am.ShiftRight(1)
		bm = bm.ShiftRight(1)
		shift++
	}
	for isEven(am) {
		am = am.ShiftRight(1)
	}
	for !bm.IsZero() {
		for isEven(bm) {
			bm = bm.ShiftRight(1)
		}
		if am.Cmp(bm) > 0 {
			am, bm = bm, am
		}
		bm = bm.Sub(am)
	}
	return am.ShiftLeft(shift)
}

func isEven(m Mag) bool {
	return len(m.limbs) == 0 || m.limbs[0]&1 == 0
}

// ExtGCD returns (g, x, y) such that a*x + b*y = g = gcd(a,b), with x, y
// returned as magnitudes plus sign flags since the classical extended
// Euclidean sequence oscillates in sign.
func ExtGCD(a, b Mag) (g Mag, x Mag, xNeg bool, y Mag, yNeg bool) {
	// Iterative classical algorithm over big.Int bridging keeps this
	// function short and correct; ExtGCD is not on the hot
	// multiplication/division path.
	ba, bb := toBig(a.limbs), toBig(b.limbs)
	bg, bx, by := new(big.Int), new(big.Int), new(big.Int)
	bg.GCD(bx, by, ba, bb)
	g = Mag{limbs: fromBig(bg)}
	xNeg = bx.Sign() < 0
	yNeg = by.Sign() < 0
	x = Mag{limbs: fromBig(new(big.Int).Abs(bx))}
	y = Mag{limbs: fromBig(new(big.Int).Abs(by))}
	return
}

// SqrtFloor returns isqrt(m) such that isqrt(m)^2 <= m < (isqrt(m)+1)^2.
func (m Mag) SqrtFloor() Mag {
	if m.IsZero() {
		return Mag{}
	}
	// Newton iteration seeded from the bit length.
	bitLen := m.BitLen()
	x := One().ShiftLeft(uint((bitLen + 1) / 2))
	for {
		// x1 = (x + m/x) / 2
		q, _ := m.QuoRem(x)
		sum := x.Add(q)
		x1 := sum.ShiftRight(1)
		if x1.Cmp(x) >= 0 {
			break
		}
		x = x1
	}
	for x.Square().Cmp(m) > 0 {
		x = x.Sub(One())
	}
	for x.Add(One()).Square().Cmp(m) <= 0 {
		x = x.Add(One())
	}
	return x
}

// IsSquare reports whether m is a perfect square, returning its root when
// true. This is a hot path for factoring algorithms built on top of this
// package (§4.A design note).
func (m Mag) IsSquare() (root Mag, ok bool) {
	r := m.SqrtFloor()
	if r.Square().Cmp(m) == 0 {
		return r, true
	}
	return Mag{}, false
}

// RootFloor returns floor(m^(1/n)) for n >= 1 via Newton iteration.
func (m Mag) RootFloor(n uint) Mag {
	if n == 0 {
		panic("magnitude: root index must be positive")
	}
	if n == 1 || m.IsZero() || m.IsOne() {
		return m
	}
	if n == 2 {
		return m.SqrtFloor()
	}
	bitLen := m.BitLen()
	x := One().ShiftLeft(uint((bitLen + int(n) - 1) / int(n) + 1))
	for {
		xnm1 := x.Pow(n - 1)
		q, _ := m.QuoRem(xnm1)
		num := x.Mul(Mag{limbs: []uint32{uint32(n - 1)}}).Add(q)
		x1, _ := num.QuoRem(Mag{limbs: []uint32{uint32(n)}})
		if x1.Cmp(x) >= 0 {
			break
		}
		x = x1
	}
	for x.Pow(n).Cmp(m) > 0 {
		x = x.Sub(One())
	}
	for x.Add(One()).Pow(n).Cmp(m) <= 0 {
		x = x.Add(One())
	}
	return x
}

// Pow returns m^e by plain repeated squaring (unbounded modulus).
func (m Mag) Pow(e uint) Mag {
	result := One()
	base := m
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}

// PowMod returns a^e mod m via left-to-right binary exponentiation.
// Montgomery form is used for odd moduli of montThreshold limbs or more, as a
// constant-overhead speedup on the repeated-reduction inner loop; below
// the threshold, or for even moduli, plain schoolbook reduction is used.
const montThreshold = 16

func PowMod(a, e, m Mag) Mag {
	if m.IsOne() {
		return Mag{}
	}
	if isEven(m) || len(m.limbs) < montThreshold {
		return powModPlain(a, e, m)
	}
	return powModMontgomery(a, e, m)
}

func powModPlain(a, e, m Mag) Mag {
	result := One()
	base := a.Mod(m)
	n := e.BitLen()
	for i := n - 1; i >= 0; i-- {
		result = result.Square().Mod(m)
		if e.BitTest(uint(i)) {
			result = result.Mul(base).Mod(m)
		}
	}
	return result
}

// powModMontgomery performs modular exponentiation in Montgomery form:
// values are carried as a*R mod m (R = 2^(limbBits*len(m))) so each
// multiply-reduce step avoids a full division.
func powModMontgomery(a, e, m Mag) Mag {
	k := len(m.limbs)
	rBits := uint(k * limbBits)
	r := One().ShiftLeft(rBits)

	mInv := montgomeryInverse(m)

	toMont := func(x Mag) Mag {
		return x.Mod(m).Mul(r).Mod(m)
	}
	redc := func(t Mag) Mag {
		mask := r.Sub(One())
		u := t.And(mask).Mul(mInv).And(mask)
		x := t.Add(u.Mul(m)).ShiftRight(rBits)
		if x.Cmp(m) >= 0 {
			x = x.Sub(m)
		}
		return x
	}

	aMont := toMont(a)
	resultMont := toMont(One())
	n := e.BitLen()
	for i := n - 1; i >= 0; i-- {
		resultMont = redc(resultMont.Mul(resultMont))
		if e.BitTest(uint(i)) {
			resultMont = redc(resultMont.Mul(aMont))
		}
	}
	return redc(resultMont)
}

// montgomeryInverse returns -m^-1 mod R (R = 2^(limbBits*len(m.limbs))),
// needed by REDC, computed via the extended Euclidean algorithm bridged
// through math/big for brevity.
func montgomeryInverse(m Mag) Mag {
	rBits := uint(len(m.limbs) * limbBits)
	r := new(big.Int).Lsh(big.NewInt(1), rBits)
	bm := toBig(m.limbs)
	inv := new(big.Int).ModInverse(bm, r)
	neg := new(big.Int).Sub(r, inv)
	neg.Mod(neg, r)
	return Mag{limbs: fromBig(neg)}
}

// Jacobi computes the Jacobi symbol (a/n) for odd positive n.
func Jacobi(a, n Mag) int {
	if isEven(n) || n.IsZero() {
		panic("magnitude: Jacobi symbol requires odd positive n")
	}
	result := 1
	a = a.Mod(n)
	for !a.IsZero() {
		for isEven(a) {
			a = a.ShiftRight(1)
			r := n.limbs
			if len(r) > 0 && (r[0]&7 == 3 || r[0]&7 == 5) {
				result = -result
			}
		}
		a, n = n, a
		if len(a.limbs) > 0 && len(n.limbs) > 0 && a.limbs[0]&3 == 3 && n.limbs[0]&3 == 3 {
			result = -result
		}
		a = a.Mod(n)
	}
	if n.IsOne() {
		return result
	}
	return 0
}

var smallPrimes = []uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

// PTest runs Miller-Rabin primality testing with the given number of
// witnesses (deterministic bases drawn from a fixed table, so results are
// reproducible across runs as required by spec.md §8 scenario 6). It
// returns true if n is probably prime.
func PTest(n Mag, witnesses int) bool {
	if n.Cmp(FromUint64(2)) < 0 {
		return false
	}
	for _, p := range smallPrimes {
		pm := FromUint64(uint64(p))
		if n.Cmp(pm) == 0 {
			return true
		}
		if n.Mod(pm).IsZero() {
			return false
		}
	}
	nMinus1 := n.Sub(One())
	d := nMinus1
	r := uint(0)
	for isEven(d) {
		d = d.ShiftRight(1)
		r++
	}
	bases := deterministicWitnesses(n, witnesses)
	for _, a := range bases {
		if a.Cmp(n) >= 0 {
			continue
		}
		x := PowMod(a, d, n)
		if x.IsOne() || x.Cmp(nMinus1) == 0 {
			continue
		}
		composite := true
		for i := uint(0); i < r-1; i++ {
			x = x.Mul(x).Mod(n)
			if x.Cmp(nMinus1) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false
		}
	}
	return true
}

// deterministicWitnesses returns `count` witness bases: the first (up to
// 12) are the fixed primes 2..37 and any beyond those are derived from n's
// own value, so repeated calls on the same n are reproducible without
// external seed state, matching spec.md's "deterministic when seeded"
// requirement.
func deterministicWitnesses(n Mag, count int) []Mag {
	fixed := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
	out := make([]Mag, 0, count)
	for i := 0; i < count && i < len(fixed); i++ {
		out = append(out, FromUint64(fixed[i]))
	}
	for len(out) < count {
		idx := uint64(len(out))
		seed := n.Mod(FromUint64(1<<32 - 1))
		v, _ := seed.Uint64()
		out = append(out, FromUint64((v*2654435761+idx*40503)%1_000_000_007+2))
	}
	return out
}

// NextCand returns the next candidate >= n+1 satisfying PTest with the
// given witness count, skipping `skip` multiples as a coarse sieve (0
// disables skipping).
func NextCand(n Mag, count int, skip uint64) Mag {
	c := n.Add(One())
	if skip > 1 {
		for c.Mod(FromUint64(skip)).IsZero() {
			c = c.Add(One())
		}
	}
	for !PTest(c, count) {
		c = c.Add(One())
		if skip > 1 {
			for c.Mod(FromUint64(skip)).IsZero() {
				c = c.Add(One())
			}
		}
	}
	return c
}

// PrevCand returns the previous candidate <= n-1 satisfying PTest.
func PrevCand(n Mag, count int, skip uint64) Mag {
	if n.Cmp(FromUint64(2)) <= 0 {
		return Mag{}
	}
	c := n.Sub(One())
	for c.Cmp(FromUint64(2)) >= 0 && !PTest(c, count) {
		c = c.Sub(One())
	}
	return c
}

// Factor returns the smallest prime factor of n, or n itself if n is prime
// (or if Pollard's rho finds no split). Trial division covers the primes
// below 50; above that, a Pollard's rho split d * (n/d) is factored again
// on both sides and the smaller result is returned.
// Supplemented per SPEC_FULL.md §3: spec.md §8 names `factor` as a
// concrete scenario though §4.A's operation list does not spell it out.
func Factor(n Mag) Mag {
	if n.Cmp(FromUint64(1)) <= 0 {
		return n
	}
	for _, p := range smallPrimes {
		pm := FromUint64(uint64(p))
		if n.Mod(pm).IsZero() {
			return pm
		}
	}
	if PTest(n, 25) {
		return n
	}
	d := pollardRho(n)
	if d.Cmp(n) == 0 {
		return n
	}
	cof, _ := n.QuoRem(d)
	a, b := Factor(d), Factor(cof)
	if b.Cmp(a) < 0 {
		return b
	}
	return a
}

func pollardRho(n Mag) Mag {
	one := One()
	x := FromUint64(2)
	y := FromUint64(2)
	c := FromUint64(1)
	d := One()
	g := func(v Mag) Mag {
		return v.Square().Add(c).Mod(n)
	}
	for d.IsOne() {
		x = g(x)
		y = g(g(y))
		diff := x.Sub(y)
		if x.Cmp(y) < 0 {
			diff = y.Sub(x)
		}
		if diff.IsZero() {
			c = c.Add(one)
			x, y = FromUint64(2), FromUint64(2)
			d = One()
			continue
		}
		d = GCD(diff, n)
	}
	if d.Cmp(n) == 0 {
		return n
	}
	return d
}

// String renders m in base 10.
func (m Mag) String() string {
	return toBig(m.limbs).String()
}

// FromString parses a base-`base` string of digits into a Mag.
func FromString(s string, base int) (Mag, bool) {
	b, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Mag{}, false
	}
	return Mag{limbs: fromBig(b)}, true
}
