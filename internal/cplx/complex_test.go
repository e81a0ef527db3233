package cplx

import (
	"testing"

	"calc/internal/rational"
)

func r(n, d int64) rational.Q {
	return rational.FromInt64(n).Quo(rational.FromInt64(d))
}

func eps(denPow int64) rational.Q {
	den := rational.FromInt64(1)
	ten := rational.FromInt64(10)
	for i := int64(0); i < denPow; i++ {
		den = den.Mul(ten)
	}
	return rational.FromInt64(1).Quo(den)
}

func closeEnough(t *testing.T, name string, a, b rational.Q, tol rational.Q) {
	t.Helper()
	if a.Sub(b).Abs().Cmp(tol) > 0 {
		t.Fatalf("%s: %s not within %s of %s", name, a.String(), tol.String(), b.String())
	}
}

func TestAddSubInverses(t *testing.T) {
	a := New(r(3, 1), r(4, 1))
	b := New(r(1, 2), r(-7, 1))
	sum := a.Add(b)
	back := sum.Sub(b)
	if !back.Re.Equal(a.Re) || !back.Im.Equal(a.Im) {
		t.Fatalf("(a+b)-b = %v, want %v", back, a)
	}
}

func TestMulConjIsNorm2(t *testing.T) {
	a := New(r(3, 1), r(4, 1))
	prod := a.Mul(a.Conj())
	if !prod.Im.IsZero() {
		t.Fatalf("a*conj(a) should be real, got imaginary part %s", prod.Im.String())
	}
	if !prod.Re.Equal(a.Norm2()) {
		t.Fatalf("a*conj(a) real part = %s, want Norm2() = %s", prod.Re.String(), a.Norm2().String())
	}
}

func TestDivByItselfIsOne(t *testing.T) {
	a := New(r(5, 1), r(-2, 1))
	got := a.Div(a)
	e := eps(15)
	closeEnough(t, "a/a real", got.Re, rational.One(), e)
	closeEnough(t, "a/a imag", got.Im, rational.Zero(), e)
}

func TestExpOfImaginaryPiIsMinusOne(t *testing.T) {
	e := eps(12)
	pi := Atan2(rational.One(), rational.Zero(), e).Mul(rational.FromInt64(2))
	z := New(rational.Zero(), pi)
	got := Exp(z, e)
	tol := e.Mul(rational.FromInt64(4))
	closeEnough(t, "Re(e^(i*pi))", got.Re, rational.FromInt64(-1), tol)
	closeEnough(t, "Im(e^(i*pi))", got.Im, rational.Zero(), tol)
}

func TestSqrtOfNegativeOneIsI(t *testing.T) {
	e := eps(15)
	got := Sqrt(New(rational.FromInt64(-1), rational.Zero()), e)
	tol := e.Mul(rational.FromInt64(4))
	closeEnough(t, "Re(sqrt(-1))", got.Re, rational.Zero(), tol)
	closeEnough(t, "Im(sqrt(-1))", got.Im.Abs(), rational.One(), tol)
}

func TestLnExpRoundTrip(t *testing.T) {
	e := eps(12)
	z := New(r(2, 1), r(3, 1))
	back := Ln(Exp(z, e), e)
	tol := e.Mul(rational.FromInt64(8))
	closeEnough(t, "Re(ln(exp(z)))", back.Re, z.Re, tol)
	closeEnough(t, "Im(ln(exp(z)))", back.Im, z.Im, tol)
}
