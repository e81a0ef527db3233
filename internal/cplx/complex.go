// Package cplx implements complex numbers as pairs of exact rationals, per
// spec.md §3 "Complex C" and §4.D. Per spec.md's invariant, a purely real
// complex value must never exist at the value layer (internal/value
// normalizes im=0 down to a plain rational); C here simply does not enforce
// that invariant itself, since it is a pure arithmetic type used below the
// value layer.
package cplx

import (
	"calc/internal/rational"
	"calc/internal/transcend"
)

type Q = rational.Q

// C is a complex number re + im*i.
type C struct {
	Re, Im Q
}

func New(re, im Q) C { return C{Re: re, Im: im} }

func (a C) Add(b C) C { return C{a.Re.Add(b.Re), a.Im.Add(b.Im)} }
func (a C) Sub(b C) C { return C{a.Re.Sub(b.Re), a.Im.Sub(b.Im)} }

func (a C) Mul(b C) C {
	return C{
		Re: a.Re.Mul(b.Re).Sub(a.Im.Mul(b.Im)),
		Im: a.Re.Mul(b.Im).Add(a.Im.Mul(b.Re)),
	}
}

// Conj returns the complex conjugate.
func (a C) Conj() C { return C{a.Re, a.Im.Neg()} }

// Div returns a/b.
func (a C) Div(b C) C {
	denom := b.Re.Mul(b.Re).Add(b.Im.Mul(b.Im))
	num := a.Mul(b.Conj())
	return C{num.Re.Quo(denom), num.Im.Quo(denom)}
}

func (a C) Neg() C { return C{a.Re.Neg(), a.Im.Neg()} }

// Norm2 returns re^2+im^2 (the squared modulus), an exact rational.
func (a C) Norm2() Q { return a.Re.Mul(a.Re).Add(a.Im.Mul(a.Im)) }

// Abs returns the modulus |a| accurate to within 0.75*eps.
func (a C) Abs(eps Q) Q { return transcend.Sqrt(a.Norm2(), eps) }

func (a C) IsZero() bool { return a.Re.IsZero() && a.Im.IsZero() }

// Exp returns e^a = e^re * (cos(im) + i*sin(im)).
func Exp(a C, eps Q) C {
	half := eps.Quo(rational.FromInt64(4))
	mag := transcend.Exp(a.Re, half)
	return C{mag.Mul(transcend.Cos(a.Im, half)), mag.Mul(transcend.Sin(a.Im, half))}
}

// Cos and Sin extend the real transcendentals via the standard identities
// cos(a+bi) = cos(a)cosh(b) - i sin(a) sinh(b), and similarly for sin,
// where cosh/sinh are derived from Exp.
func Cos(a C, eps Q) C {
	quarter := eps.Quo(rational.FromInt64(4))
	coshB, sinhB := coshSinh(a.Im, quarter)
	return C{
		Re: transcend.Cos(a.Re, quarter).Mul(coshB),
		Im: transcend.Sin(a.Re, quarter).Neg().Mul(sinhB),
	}
}

func Sin(a C, eps Q) C {
	quarter := eps.Quo(rational.FromInt64(4))
	coshB, sinhB := coshSinh(a.Im, quarter)
	return C{
		Re: transcend.Sin(a.Re, quarter).Mul(coshB),
		Im: transcend.Cos(a.Re, quarter).Mul(sinhB),
	}
}

func coshSinh(b, eps Q) (cosh, sinh Q) {
	ePos := transcend.Exp(b, eps)
	eNeg := transcend.Exp(b.Neg(), eps)
	two := rational.FromInt64(2)
	return ePos.Add(eNeg).Quo(two), ePos.Sub(eNeg).Quo(two)
}

// Ln returns the principal complex logarithm: ln|a| + i*atan2(im,re).
func Ln(a C, eps Q) C {
	quarter := eps.Quo(rational.FromInt64(4))
	r := a.Abs(quarter)
	theta := Atan2(a.Im, a.Re, quarter)
	return C{transcend.Ln(r, quarter), theta}
}

// Atan2 computes the angle of (re,im) in (-pi,pi], built from Atan plus
// quadrant correction.
func Atan2(im, re, eps Q) Q {
	half := eps.Quo(rational.FromInt64(4))
	if re.Sign() > 0 {
		return transcend.Atan(im.Quo(re), eps)
	}
	pi := transcend.Pi(half)
	if re.Sign() < 0 {
		if !im.IsNeg() {
			return transcend.Atan(im.Quo(re), eps).Add(pi)
		}
		return transcend.Atan(im.Quo(re), eps).Sub(pi)
	}
	if im.Sign() > 0 {
		return pi.Quo(rational.FromInt64(2))
	}
	if im.Sign() < 0 {
		return pi.Quo(rational.FromInt64(2)).Neg()
	}
	return rational.Zero()
}

// Sqrt returns the principal complex square root via the half-angle
// formula built on the real Sqrt and the modulus.
func Sqrt(a C, eps Q) C {
	quarter := eps.Quo(rational.FromInt64(4))
	r := a.Abs(quarter)
	if r.IsZero() {
		return C{}
	}
	half := rational.FromInt64(2)
	reArg := r.Add(a.Re).Quo(half)
	imArg := r.Sub(a.Re).Quo(half)
	sqRe := transcend.Sqrt(reArg, quarter)
	sqIm := transcend.Sqrt(imArg, quarter)
	if a.Im.IsNeg() {
		sqIm = sqIm.Neg()
	}
	return C{sqRe, sqIm}
}
