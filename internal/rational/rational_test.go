package rational

import (
	"testing"

	"calc/internal/magnitude"
)

func m(v uint64) magnitude.Mag { return magnitude.FromUint64(v) }

func TestQuoModExactIdentity(t *testing.T) {
	modes := []RoundMode{RoundTrunc, RoundFloor, RoundCeil, RoundZero, RoundAway, RoundNearestEven, RoundHalfUp}
	pairs := [][2]int64{{17, 5}, {-17, 5}, {17, -5}, {-17, -5}, {100, 7}, {0, 3}}
	for _, mode := range modes {
		for _, p := range pairs {
			a := FromInt64(p[0])
			b := FromInt64(p[1])
			quo, rem := a.QuoMod(b, mode)
			got := quo.Mul(b).Add(rem)
			if !got.Equal(a) {
				t.Fatalf("mode %v: quo*b+rem = %s, want %s (a=%d b=%d)", mode, got.String(), a.String(), p[0], p[1])
			}
		}
	}
}

func TestReducedLowestTerms(t *testing.T) {
	a := New(false, m(12), m(8))
	if a.Num().String() != "3" || a.Den().String() != "2" {
		t.Fatalf("12/8 did not reduce to 3/2, got %s/%s", a.Num().String(), a.Den().String())
	}
	zero := New(false, m(0), m(5))
	if !zero.IsZero() || zero.Den().String() != "1" {
		t.Fatalf("0/5 should canonicalize to 0/1, got %s", zero.String())
	}
}

func TestRoundFloorVsCeilOnNegatives(t *testing.T) {
	x := FromInt64(-7).Quo(FromInt64(2)) // -3.5
	if got := roundToInt(x, RoundFloor); got.String() != "-4" {
		t.Fatalf("floor(-3.5) = %s, want -4", got.String())
	}
	if got := roundToInt(x, RoundCeil); got.String() != "-3" {
		t.Fatalf("ceil(-3.5) = %s, want -3", got.String())
	}
	if got := roundToInt(x, RoundTrunc); got.String() != "-3" {
		t.Fatalf("trunc(-3.5) = %s, want -3", got.String())
	}
}

func TestRoundNearestEvenTiesToEven(t *testing.T) {
	half := FromInt64(1).Quo(FromInt64(2))
	two := FromInt64(2)
	// 0.5 rounds to 0 (even); 1.5 rounds to 2 (even); 2.5 rounds to 2 (even).
	if got := roundToInt(half, RoundNearestEven); !got.IsZero() {
		t.Fatalf("nearest-even(0.5) = %s, want 0", got.String())
	}
	oneHalf := FromInt64(1).Add(half)
	if got := roundToInt(oneHalf, RoundNearestEven); got.String() != "2" {
		t.Fatalf("nearest-even(1.5) = %s, want 2", got.String())
	}
	twoHalf := two.Add(half)
	if got := roundToInt(twoHalf, RoundNearestEven); got.String() != "2" {
		t.Fatalf("nearest-even(2.5) = %s, want 2", got.String())
	}
}

func TestApproxWithinEpsilon(t *testing.T) {
	// pi to fifteen digits, approximated back within a loose tolerance;
	// the continued-fraction search must land somewhere that close.
	pi := New(false, m(3141592653589793), m(1000000000000000))
	eps := FromInt64(1).Quo(FromInt64(1000))
	got := pi.Approx(eps, RoundNearestEven)
	if got.Sub(pi).Abs().Cmp(eps) >= 0 {
		t.Fatalf("Approx(pi, 1e-3) = %s, not within eps of %s", got.String(), pi.String())
	}
}

func TestApproxExactWhenAlreadyExact(t *testing.T) {
	x := New(false, m(3), m(4))
	eps := FromInt64(1).Quo(FromInt64(1000000))
	got := x.Approx(eps, RoundFloor)
	if !got.Equal(x) {
		t.Fatalf("Approx of an exact rational within tight eps changed value: got %s, want %s", got.String(), x.String())
	}
}

func TestModSignMatchesFloorConvention(t *testing.T) {
	a := FromInt64(-7)
	b := FromInt64(3)
	r := a.Mod(b, RoundFloor)
	if r.IsNeg() || r.Cmp(b) >= 0 {
		t.Fatalf("floor-mod(-7,3) = %s, want a value in [0,3)", r.String())
	}
	if r.String() != "2" {
		t.Fatalf("floor-mod(-7,3) = %s, want 2", r.String())
	}
}
