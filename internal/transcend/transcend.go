// Package transcend implements the transcendental functions of spec.md
// §4.C: each takes (x, eps) with eps > 0 and returns a rational within
// 0.75*eps of the true value, built entirely out of rational.Q arithmetic
// (no floating point anywhere, per spec.md §1's non-goals).
package transcend

import (
	"calc/internal/magnitude"
	"calc/internal/rational"
)

type Q = rational.Q

func q(n int64) Q { return rational.FromInt64(n) }

func ratio(num, den int64) Q {
	return rational.New(num < 0 != (den < 0), magnitude.FromUint64(abs64(num)), magnitude.FromUint64(abs64(den)))
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func floor(x Q) Q {
	if x.IsInt() {
		return x
	}
	t := x.IntPart()
	if x.IsNeg() {
		return t.Sub(q(1))
	}
	return t
}

// factorialQ returns n! as an exact integer rational, memoized.
var factCache = map[int]Q{0: q(1)}

func factorialQ(n int) Q {
	if v, ok := factCache[n]; ok {
		return v
	}
	v := factorialQ(n - 1).Mul(q(int64(n)))
	factCache[n] = v
	return v
}

// powQ raises an exact rational to a non-negative integer power.
func powQ(base Q, n int) Q {
	result := q(1)
	for i := 0; i < n; i++ {
		result = result.Mul(base)
	}
	return result
}

// target shrinks an error budget by a safety factor so composed
// operations (range reduction, recombination) still land inside the
// caller's overall 0.75*eps bound.
func target(eps Q, divisor int64) Q {
	return eps.Quo(q(divisor))
}

// Exp returns e^x accurate to within 0.75*eps, per spec.md §4.C: range
// reduce by the integer part, Taylor-expand the fractional remainder, and
// recombine with e^k.
func Exp(x, eps Q) Q {
	k := floor(x)
	f := x.Sub(k) // in [0, 1)

	fracEps := target(eps, 4)
	expF := expTaylor(f, fracEps)

	if k.IsZero() {
		return expF
	}
	kAbsInt := k.Abs()
	kVal, ok := kAbsInt.Num().Uint64()
	if !ok {
		kVal = 1 << 20 // astronomically large exponent; caller accepts slow path
	}
	eEps := target(eps, int64(kVal)+8)
	e := expTaylor(q(1), eEps)
	ek := intPow(e, kVal)
	if k.IsNeg() {
		return expF.Quo(ek)
	}
	return expF.Mul(ek)
}

func intPow(base Q, n uint64) Q {
	result := q(1)
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(b)
		}
		b = b.Mul(b)
		n >>= 1
	}
	return result
}

// expTaylor sums the Maclaurin series for e^f, f assumed small (|f|<=1),
// stopping once the last added term divided by (1-|f|), i.e.
// |f|^n/n! * 1/(1-|f|), an upper bound on the remaining tail, is below eps.
func expTaylor(f, eps Q) Q {
	sum := q(1)
	term := q(1)
	absF := f.Abs()
	oneMinusF := q(1).Sub(absF)
	if oneMinusF.Sign() <= 0 {
		oneMinusF = ratio(1, 2) // f pinned < 1 by caller; guard div-by-zero
	}
	for n := 1; n < 100000; n++ {
		term = term.Mul(f).Quo(q(int64(n)))
		sum = sum.Add(term)
		tail := term.Abs().Quo(oneMinusF)
		if tail.Cmp(eps) < 0 {
			break
		}
	}
	return sum
}

// Ln returns ln(x) accurate to within 0.75*eps. x must be positive.
func Ln(x, eps Q) Q {
	if x.Sign() <= 0 {
		panic("transcend: ln domain error")
	}
	k := 0
	u := x
	half := ratio(1, 2)
	threeHalves := ratio(3, 2)
	// Reduce until u in [1/2, 3/2) via repeated square-root extraction,
	// per spec.md: ln x = 2^k * ln(x^(2^-k)).
	sqrtEps := target(eps, 64)
	for u.Cmp(threeHalves) >= 0 || u.Cmp(half) < 0 {
		u = Sqrt(u, sqrtEps)
		k++
		if k > 200 {
			break
		}
	}
	uMinus1 := u.Sub(q(1))
	lnEps := target(eps, 4)
	lnU := lnSeries(uMinus1, lnEps)
	if k == 0 {
		return lnU
	}
	return lnU.Mul(intPow(q(2), uint64(k)))
}

// lnSeries sums ln(1+w) = w - w^2/2 + w^3/3 - ... for |w| <= 1/2.
func lnSeries(w, eps Q) Q {
	sum := q(0)
	term := q(1)
	absW := w.Abs()
	for n := 1; n < 100000; n++ {
		term = term.Mul(w)
		contrib := term.Quo(q(int64(n)))
		if n%2 == 0 {
			sum = sum.Sub(contrib)
		} else {
			sum = sum.Add(contrib)
		}
		// Tail of an alternating series with |w|<=1/2 is bounded by the
		// next term's magnitude.
		nextTerm := term.Abs().Mul(absW).Quo(q(int64(n + 1)))
		if nextTerm.Cmp(eps) < 0 {
			break
		}
	}
	return sum
}

// Sqrt returns sqrt(x) for x >= 0, accurate to within 0.75*eps, via
// Root's Newton iteration with n = 2.
func Sqrt(x, eps Q) Q {
	return Root(x, 2, eps)
}

// Root returns the real n-th root of x (x >= 0, or x<0 with n odd),
// accurate to within 0.75*eps.
func Root(x Q, n int, eps Q) Q {
	if x.IsZero() {
		return q(0)
	}
	neg := x.IsNeg()
	if neg && n%2 == 0 {
		panic("transcend: even root of negative number")
	}
	absX := x.Abs()

	guess := initialGuess(absX, n)
	nQ := q(int64(n))
	for {
		// Newton step: x1 = ((n-1)*guess + absX/guess^(n-1)) / n
		gPow := powQ(guess, n-1)
		x1 := nQ.Sub(q(1)).Mul(guess).Add(absX.Quo(gPow)).Quo(nQ)
		diff := x1.Sub(guess).Abs()
		guess = x1
		if diff.Cmp(eps.Quo(q(4))) < 0 {
			break
		}
	}
	if neg {
		return guess.Neg()
	}
	return guess
}

func initialGuess(x Q, n int) Q {
	// Seed from the integer part's bit length so Newton converges fast.
	intPart := x.IntPart()
	bits := intPart.Num().BitLen()
	shift := (bits + n - 1) / n
	if shift < 1 {
		shift = 1
	}
	return magToQ(magnitude.One().ShiftLeft(uint(shift)))
}

func magToQ(m magnitude.Mag) Q { return rational.FromMag(m, false) }

// Atan returns atan(x) accurate to within 0.75*eps via Taylor expansion,
// range-reduced for |x| > 1 using atan(x) = pi/2 - atan(1/x) (x>0).
func Atan(x, eps Q) Q {
	if x.IsZero() {
		return q(0)
	}
	if x.IsNeg() {
		return Atan(x.Neg(), eps).Neg()
	}
	if x.Cmp(q(1)) > 0 {
		halfPiEps := target(eps, 4)
		return Pi(halfPiEps).Quo(q(2)).Sub(Atan(x.Inv(), eps))
	}
	return atanSeries(x, target(eps, 4))
}

// atanSeries sums atan(x) = x - x^3/3 + x^5/5 - ... for |x| <= 1.
func atanSeries(x, eps Q) Q {
	sum := q(0)
	xPow := x
	x2 := x.Mul(x)
	for n := 0; n < 200000; n++ {
		denom := int64(2*n + 1)
		contrib := xPow.Quo(q(denom))
		if n%2 == 0 {
			sum = sum.Add(contrib)
		} else {
			sum = sum.Sub(contrib)
		}
		if contrib.Abs().Cmp(eps) < 0 {
			break
		}
		xPow = xPow.Mul(x2)
	}
	return sum
}

var piCache Q
var piCacheEps Q
var piCached bool

// Pi returns an approximation of pi within 0.75*eps, using the Machin
// formula pi = 16*atan(1/5) - 4*atan(1/239) with each atan computed to
// eps/8, caching the tightest value computed
// so far.
func Pi(eps Q) Q {
	if piCached && piCacheEps.Cmp(eps) <= 0 {
		return piCache
	}
	termEps := target(eps, 8)
	a1 := Atan(ratio(1, 5), termEps)
	a2 := Atan(ratio(1, 239), termEps)
	pi := q(16).Mul(a1).Sub(q(4).Mul(a2))
	piCache = pi
	piCacheEps = eps
	piCached = true
	return pi
}

// Sin and Cos reduce x modulo 2*pi (pi computed to working precision
// eps/64) and sum the alternating Taylor series to eps/4.
func Sin(x, eps Q) Q {
	r := reduceMod2Pi(x, eps)
	return sinSeries(r, target(eps, 4))
}

func Cos(x, eps Q) Q {
	r := reduceMod2Pi(x, eps)
	return cosSeries(r, target(eps, 4))
}

func reduceMod2Pi(x, eps Q) Q {
	workEps := target(eps, 64)
	twoPi := q(2).Mul(Pi(workEps))
	k := floor(x.Quo(twoPi))
	return x.Sub(k.Mul(twoPi))
}

func sinSeries(x, eps Q) Q {
	sum := q(0)
	term := x
	x2 := x.Mul(x)
	for n := 0; n < 100000; n++ {
		if n%2 == 0 {
			sum = sum.Add(term)
		} else {
			sum = sum.Sub(term)
		}
		if term.Abs().Cmp(eps) < 0 {
			break
		}
		term = term.Mul(x2).Quo(q(int64((2*n + 2) * (2*n + 3))))
	}
	return sum
}

func cosSeries(x, eps Q) Q {
	sum := q(1)
	term := q(1)
	x2 := x.Mul(x)
	for n := 0; n < 100000; n++ {
		term = term.Mul(x2).Quo(q(int64((2*n + 1) * (2*n + 2))))
		if n%2 == 0 {
			sum = sum.Sub(term)
		} else {
			sum = sum.Add(term)
		}
		if term.Abs().Cmp(eps) < 0 {
			break
		}
	}
	return sum
}

// Bernoulli/Euler number caches, extended on demand and keyed by index
// per spec.md §4.C.
var bernoulliCache = map[int]Q{0: q(1), 1: ratio(-1, 2)}
var eulerCache = map[int]Q{0: q(1)}

// binomial returns C(n,k) as an exact integer rational.
func binomial(n, k int) Q {
	if k < 0 || k > n {
		return q(0)
	}
	return factorialQ(n).Quo(factorialQ(k).Mul(factorialQ(n - k)))
}

// Bernoulli returns the n-th Bernoulli number B_n (exact rational),
// computed via the classical recurrence sum_{k=0}^{m} C(m+1,k) B_k = 0
// and cached in a global table that extends on demand.
func Bernoulli(n int) Q {
	if v, ok := bernoulliCache[n]; ok {
		return v
	}
	if n%2 == 1 {
		bernoulliCache[n] = q(0)
		return q(0)
	}
	m := n
	sum := q(0)
	for k := 0; k < m; k++ {
		sum = sum.Add(binomial(m+1, k).Mul(Bernoulli(k)))
	}
	b := sum.Neg().Quo(binomial(m+1, m))
	bernoulliCache[n] = b
	return b
}

// Euler returns the n-th Euler number E_n (exact integer), via
// sum_{k=0}^{j} C(2j,2k) E_{2k} = 0 for j >= 1, E_0 = 1; odd-indexed
// Euler numbers are zero.
func Euler(n int) Q {
	if v, ok := eulerCache[n]; ok {
		return v
	}
	if n%2 == 1 {
		eulerCache[n] = q(0)
		return q(0)
	}
	j := n / 2
	sum := q(0)
	for k := 0; k < j; k++ {
		sum = sum.Add(binomial(2*j, 2*k).Mul(Euler(2 * k)))
	}
	e := sum.Neg()
	eulerCache[n] = e
	return e
}
