// Package rational implements signed exact rationals in lowest terms,
// built on internal/magnitude, per spec.md §3 "Rational Q" and §4.B.
package rational

import (
	"calc/internal/magnitude"
)

// RoundMode selects the rounding policy used by Quo/Mod and friends, per
// spec.md §4.B and the configuration options `quo`, `mod`, `sqrt`, `appr`,
// `cfappr`, `outround` in §6.
type RoundMode int

const (
	RoundTrunc RoundMode = iota // truncate toward zero
	RoundFloor                 // toward -infinity
	RoundCeil                  // toward +infinity
	RoundZero                  // behaves identically to RoundTrunc; spec.md §6 names both separately
	RoundAway                  // away from zero
	RoundNearestEven
	RoundHalfUp
)

// Q is a signed rational p/q in lowest terms: den > 0, gcd(num,den) = 1,
// and num == 0 implies den == 1 (canonical zero).
type Q struct {
	neg bool
	num magnitude.Mag
	den magnitude.Mag
}

// Zero is the canonical rational 0.
func Zero() Q { return Q{num: magnitude.Zero(), den: magnitude.One()} }

// One is the rational 1.
func One() Q { return Q{num: magnitude.One(), den: magnitude.One()} }

// FromInt64 builds an integer-valued rational.
func FromInt64(v int64) Q {
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	return Q{neg: neg && u != 0, num: magnitude.FromUint64(u), den: magnitude.One()}
}

// FromMag builds an integer-valued rational from a Magnitude and sign.
func FromMag(m magnitude.Mag, neg bool) Q {
	if m.IsZero() {
		neg = false
	}
	return Q{neg: neg, num: m, den: magnitude.One()}
}

// New builds num/den in lowest terms from raw sign/magnitude parts.
func New(neg bool, num, den magnitude.Mag) Q {
	if den.IsZero() {
		panic("rational: zero denominator")
	}
	if num.IsZero() {
		return Zero()
	}
	g := magnitude.GCD(num, den)
	if !g.IsOne() {
		num, _ = num.QuoRem(g)
		den, _ = den.QuoRem(g)
	}
	return Q{neg: neg, num: num, den: den}
}

func (q Q) IsZero() bool { return q.num.IsZero() }
func (q Q) IsNeg() bool  { return q.neg && !q.num.IsZero() }
func (q Q) IsInt() bool  { return q.den.IsOne() }

// Num, Den expose the reduced numerator/denominator magnitudes (Den is
// always positive; sign lives on Q itself).
func (q Q) Num() magnitude.Mag { return q.num }
func (q Q) Den() magnitude.Mag { return q.den }

// Sign returns -1, 0, or 1.
func (q Q) Sign() int {
	if q.num.IsZero() {
		return 0
	}
	if q.neg {
		return -1
	}
	return 1
}

func lcm(a, b magnitude.Mag) magnitude.Mag {
	g := magnitude.GCD(a, b)
	part, _ := a.QuoRem(g)
	return part.Mul(b)
}

// Add returns a+b, pulling out gcd(den_a, den_b) before cross-multiplying
// per spec.md §4.B so intermediate magnitudes stay small.
func (a Q) Add(b Q) Q {
	if a.den.Cmp(b.den) == 0 {
		return addSameDen(a, b)
	}
	g := magnitude.GCD(a.den, b.den)
	da, _ := a.den.QuoRem(g)
	db, _ := b.den.QuoRem(g)
	commonDen := lcm(a.den, b.den)
	an := a.num.Mul(db)
	bn := b.num.Mul(da)
	return combine(a.neg, an, b.neg, bn, commonDen)
}

func addSameDen(a, b Q) Q {
	return combine(a.neg, a.num, b.neg, b.num, a.den)
}

// combine adds signed magnitudes an (sign aNeg) and bn (sign bNeg) over a
// shared denominator den and reduces the result.
func combine(aNeg bool, an magnitude.Mag, bNeg bool, bn magnitude.Mag, den magnitude.Mag) Q {
	var neg bool
	var num magnitude.Mag
	if aNeg == bNeg {
		num = an.Add(bn)
		neg = aNeg
	} else {
		switch an.Cmp(bn) {
		case 0:
			return Zero()
		case 1:
			num = an.Sub(bn)
			neg = aNeg
		default:
			num = bn.Sub(an)
			neg = bNeg
		}
	}
	return New(neg, num, den)
}

// Neg returns -a.
func (a Q) Neg() Q {
	if a.IsZero() {
		return a
	}
	return Q{neg: !a.neg, num: a.num, den: a.den}
}

// Sub returns a-b.
func (a Q) Sub(b Q) Q { return a.Add(b.Neg()) }

// Mul returns a*b.
func (a Q) Mul(b Q) Q {
	if a.IsZero() || b.IsZero() {
		return Zero()
	}
	// Cross-reduce before multiplying to keep magnitudes small: gcd(a.num,
	// b.den) and gcd(b.num, a.den).
	g1 := magnitude.GCD(a.num, b.den)
	an, _ := a.num.QuoRem(g1)
	bd, _ := b.den.QuoRem(g1)
	g2 := magnitude.GCD(b.num, a.den)
	bn, _ := b.num.QuoRem(g2)
	ad, _ := a.den.QuoRem(g2)
	return Q{neg: a.neg != b.neg, num: an.Mul(bn), den: ad.Mul(bd)}
}

// Inv returns 1/a. Division by zero must be checked by the caller (the
// VM/value layer) and turned into a DivByZero error value per spec.md §7.
func (a Q) Inv() Q {
	if a.IsZero() {
		panic("rational: inverse of zero")
	}
	return Q{neg: a.neg, num: a.den, den: a.num}
}

// Quo returns a/b.
func (a Q) Quo(b Q) Q {
	if b.IsZero() {
		panic("rational: division by zero")
	}
	return a.Mul(b.Inv())
}

// Cmp orders a against b: sign first, then cross-multiplication.
func (a Q) Cmp(b Q) int {
	as, bs := a.Sign(), b.Sign()
	if as != bs {
		if as < bs {
			return -1
		}
		return 1
	}
	if as == 0 {
		return 0
	}
	lhs := a.num.Mul(b.den)
	rhs := b.num.Mul(a.den)
	c := lhs.Cmp(rhs)
	if as < 0 {
		c = -c
	}
	return c
}

func (a Q) Equal(b Q) bool { return a.Cmp(b) == 0 }

// Abs returns |a|.
func (a Q) Abs() Q { return Q{neg: false, num: a.num, den: a.den} }

// IntPart returns the integer part of a (truncated toward zero), as an
// integer-valued Q.
func (a Q) IntPart() Q {
	q, _ := a.num.QuoRem(a.den)
	return FromMag(q, a.neg)
}

// FracPart returns a - a.IntPart().
func (a Q) FracPart() Q { return a.Sub(a.IntPart()) }

// convergent is one step of a continued-fraction expansion: h/k in
// lowest terms is not assumed, since Quo (used to read it out) reduces
// on demand.
type convergent struct{ h, k Q }

// Approx returns a rational within eps of a, built from a's continued
// fraction convergents (§6 `appr`/`cfappr`: "rounding policy for
// irrational results" — here applied to an already-exact rational,
// i.e. "find the simplest fraction that still looks like a to the
// caller's tolerance"). Two adjacent convergents always straddle a (one
// is <= a, the other >= a); when both satisfy eps, mode picks between
// them the same way roundToInt picks between two integer candidates.
func (a Q) Approx(eps Q, mode RoundMode) Q {
	if eps.Sign() <= 0 {
		return a
	}
	neg := a.IsNeg()
	x := a.Abs()

	prev2 := convergent{Zero(), One()}
	prev1 := convergent{One(), Zero()}
	rem := x

	var best Q
	for {
		term := rem.IntPart()
		h := term.Mul(prev1.h).Add(prev2.h)
		k := term.Mul(prev1.k).Add(prev2.k)
		cur := h.Quo(k)
		frac := rem.Sub(term)

		if frac.IsZero() || cur.Sub(x).Abs().Cmp(eps) < 0 {
			best = cur
			if prev1.k.Sign() > 0 {
				alt := prev1.h.Quo(prev1.k)
				if alt.Sub(x).Abs().Cmp(eps) < 0 {
					best = pickApprox(best, alt, x, mode)
				}
			}
			break
		}
		rem = frac.Inv()
		prev2, prev1 = prev1, convergent{h, k}
	}
	if neg {
		best = best.Neg()
	}
	return best
}

// pickApprox chooses between two candidates known to straddle (or equal)
// x and both lie within eps of it, per the rounding mode conventions
// roundToInt already uses for the integer case.
func pickApprox(a, b, x Q, mode RoundMode) Q {
	switch mode {
	case RoundFloor:
		if a.Cmp(x) <= 0 {
			return a
		}
		return b
	case RoundCeil:
		if a.Cmp(x) >= 0 {
			return a
		}
		return b
	case RoundTrunc, RoundZero:
		if a.Abs().Cmp(b.Abs()) <= 0 {
			return a
		}
		return b
	case RoundAway:
		if a.Abs().Cmp(b.Abs()) >= 0 {
			return a
		}
		return b
	default: // RoundHalfUp, RoundNearestEven: nearer of the two wins
		da := a.Sub(x).Abs()
		db := b.Sub(x).Abs()
		if da.Cmp(db) <= 0 {
			return a
		}
		return b
	}
}

// QuoMod rounds the exact quotient a/b to an integer with the given
// rounding mode and returns (quotient, remainder), where remainder is
// a - quotient*b, so quotient*b + remainder == a exactly (spec.md §8
// quomod invariant).
func (a Q) QuoMod(b Q, mode RoundMode) (quo, rem Q) {
	if b.IsZero() {
		panic("rational: division by zero")
	}
	qExact := a.Quo(b)
	q := roundToInt(qExact, mode)
	r := a.Sub(q.Mul(b))
	return q, r
}

// roundToInt applies mode to an exact rational, returning an
// integer-valued Q.
func roundToInt(x Q, mode RoundMode) Q {
	if x.IsInt() {
		return x
	}
	trunc := x.IntPart()
	frac := x.Sub(trunc) // same sign as x, magnitude in (0,1)

	switch mode {
	case RoundTrunc, RoundZero:
		return trunc
	case RoundFloor:
		if x.IsNeg() {
			return trunc.Sub(One())
		}
		return trunc
	case RoundCeil:
		if !x.IsNeg() {
			return trunc.Add(One())
		}
		return trunc
	case RoundAway:
		if x.IsNeg() {
			return trunc.Sub(One())
		}
		return trunc.Add(One())
	case RoundHalfUp:
		half := New(false, magnitude.One(), magnitude.FromUint64(2))
		if frac.Abs().Cmp(half) >= 0 {
			if x.IsNeg() {
				return trunc.Sub(One())
			}
			return trunc.Add(One())
		}
		return trunc
	case RoundNearestEven:
		half := New(false, magnitude.One(), magnitude.FromUint64(2))
		c := frac.Abs().Cmp(half)
		away := func() Q {
			if x.IsNeg() {
				return trunc.Sub(One())
			}
			return trunc.Add(One())
		}
		if c > 0 {
			return away()
		}
		if c < 0 {
			return trunc
		}
		// exactly .5: round to even
		lastBit := trunc.num.BitTest(0)
		if lastBit {
			return away()
		}
		return trunc
	default:
		return trunc
	}
}

// Mod returns a mod b for the given rounding mode (the remainder half of
// QuoMod).
func (a Q) Mod(b Q, mode RoundMode) Q {
	_, r := a.QuoMod(b, mode)
	return r
}

// BitNot implements arbitrary-precision bitwise NOT via the classical
// two's-complement identity ~x == -(x+1); Magnitude itself is unsigned and
// has no notion of width, so NOT is defined at this signed layer.
func (a Q) BitNot() Q {
	if !a.IsInt() {
		panic("rational: bitwise NOT requires an integer operand")
	}
	return a.Add(One()).Neg()
}

// String renders the rational in base 10 as "num" or "num/den".
func (a Q) String() string {
	sign := ""
	if a.neg {
		sign = "-"
	}
	if a.IsInt() {
		return sign + a.num.String()
	}
	return sign + a.num.String() + "/" + a.den.String()
}
