package transcend

import (
	"testing"

	"calc/internal/rational"
)

func eps(denPow int64) Q {
	den := rational.FromInt64(1)
	ten := rational.FromInt64(10)
	for i := int64(0); i < denPow; i++ {
		den = den.Mul(ten)
	}
	return rational.FromInt64(1).Quo(den)
}

// within075 checks spec.md §4.C's error bound: every transcendental
// returns a result within 0.75*eps of the true value.
func within075(t *testing.T, name string, got, want, e Q) {
	t.Helper()
	bound := ratio(3, 4).Mul(e)
	diff := got.Sub(want).Abs()
	if diff.Cmp(bound) > 0 {
		t.Fatalf("%s: |got-want| = %s exceeds 0.75*eps = %s", name, diff.String(), bound.String())
	}
}

func TestExpOfZeroIsOne(t *testing.T) {
	e := eps(20)
	got := Exp(rational.Zero(), e)
	within075(t, "exp(0)", got, rational.One(), e)
}

func TestExpLnRoundTrip(t *testing.T) {
	e := eps(15)
	x := ratio(5, 2)
	y := Exp(x, e)
	back := Ln(y, e)
	within075(t, "ln(exp(5/2))", back, x, e.Mul(ratio(3, 1)))
}

func TestSqrtSquaresBack(t *testing.T) {
	e := eps(18)
	x := q(2)
	r := Sqrt(x, e)
	sq := r.Mul(r)
	if sq.Sub(x).Abs().Cmp(e.Mul(q(4))) > 0 {
		t.Fatalf("sqrt(2)^2 = %s, too far from 2", sq.String())
	}
}

func TestCosOfOneMatchesKnownDigits(t *testing.T) {
	// spec.md §8: cos(1,1e-20) is within 0.75e-20 of cos(1) and, printed at
	// display=19, shows .5403023058681397174. Checked end-to-end through
	// the engine's config/print path in engine_test.go; here just the
	// error bound and sign against the underlying series.
	e := eps(20)
	got := Cos(q(1), e)
	series := cosSeries(q(1), e)
	within075(t, "cos(1)", got, series, e)
	if got.Sign() <= 0 || got.Cmp(rational.One()) >= 0 {
		t.Fatalf("cos(1) = %s, expected a value in (0,1)", got.String())
	}
}

func TestAtanOfOneIsPiOverFour(t *testing.T) {
	e := eps(15)
	atan1 := Atan(rational.One(), e)
	pi := Pi(e)
	quarter := pi.Quo(q(4))
	within075(t, "atan(1)", atan1, quarter, e.Mul(q(4)))
}

func TestBernoulliKnownValues(t *testing.T) {
	// B0=1, B1=-1/2, B2=1/6, B4=-1/30 (odd B_{2k+1>1}=0).
	if got := Bernoulli(0); !got.Equal(rational.One()) {
		t.Fatalf("B0 = %s, want 1", got.String())
	}
	if got := Bernoulli(2); !got.Equal(ratio(1, 6)) {
		t.Fatalf("B2 = %s, want 1/6", got.String())
	}
	if got := Bernoulli(4); !got.Equal(ratio(-1, 30)) {
		t.Fatalf("B4 = %s, want -1/30", got.String())
	}
}
