package magnitude

import "testing"

func mag(v uint64) Mag { return FromUint64(v) }

func TestGCDDividesBoth(t *testing.T) {
	cases := [][2]uint64{{48, 18}, {1071, 462}, {17, 5}, {0, 9}, {9, 9}}
	for _, c := range cases {
		a, b := mag(c[0]), mag(c[1])
		g := GCD(a, b)
		if !a.IsZero() {
			if _, r := a.QuoRem(g); !r.IsZero() {
				t.Fatalf("GCD(%d,%d)=%s does not divide %d", c[0], c[1], g.String(), c[0])
			}
		}
		if !b.IsZero() {
			if _, r := b.QuoRem(g); !r.IsZero() {
				t.Fatalf("GCD(%d,%d)=%s does not divide %d", c[0], c[1], g.String(), c[1])
			}
		}
	}
}

func TestSqrtFloorBounds(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 3, 4, 99, 100, 101, 1 << 40, (1 << 20) * (1 << 20)} {
		a := mag(v)
		root := a.SqrtFloor()
		if root.Mul(root).Cmp(a) > 0 {
			t.Fatalf("isqrt(%d)=%s squares above a", v, root.String())
		}
		next := root.Add(One())
		if next.Mul(next).Cmp(a) <= 0 {
			t.Fatalf("isqrt(%d)=%s: (isqrt+1)^2 does not exceed a", v, root.String())
		}
	}
}

func TestPowModInvariant(t *testing.T) {
	cases := []struct{ a, e, m uint64 }{
		{3, 5, 7}, {2, 10, 1000}, {17, 0, 13}, {5, 1, 11},
	}
	for _, c := range cases {
		got := PowMod(mag(c.a), mag(c.e), mag(c.m))
		want := plainPowMod(c.a, c.e, c.m)
		if s, _ := got.Uint64(); s != want {
			t.Fatalf("PowMod(%d,%d,%d) = %s, want %d", c.a, c.e, c.m, got.String(), want)
		}
	}
}

func plainPowMod(a, e, m uint64) uint64 {
	if m == 1 {
		return 0
	}
	result := uint64(1)
	a = a % m
	for e > 0 {
		if e&1 == 1 {
			result = (result * a) % m
		}
		e >>= 1
		a = (a * a) % m
	}
	return result
}

func TestQuoRemExactness(t *testing.T) {
	cases := [][2]uint64{{100, 7}, {1, 1}, {0, 5}, {999999, 1000}}
	for _, c := range cases {
		a, b := mag(c[0]), mag(c[1])
		q, r := a.QuoRem(b)
		if got := q.Mul(b).Add(r); got.Cmp(a) != 0 {
			t.Fatalf("QuoRem(%d,%d): q*b+r = %s, want %d", c[0], c[1], got.String(), c[0])
		}
	}
}

func TestFactorOfMersenneLike(t *testing.T) {
	// 2^67 - 1 = 193707721 * 761838257287, per spec.md's testable property:
	// Factor factors both halves of its Pollard rho split, so whichever
	// factor rho surfaces first, the returned factor is the smaller prime.
	two := FromUint64(2)
	n := two.Pow(67).Sub(One())
	f1, _ := FromString("193707721", 10)
	f2, _ := FromString("761838257287", 10)

	got := Factor(n)
	if _, r := n.QuoRem(got); !r.IsZero() {
		t.Fatalf("Factor(2^67-1) = %s does not divide 2^67-1", got.String())
	}
	if got.Cmp(f1) != 0 || got.Mul(f2).Cmp(n) != 0 {
		t.Fatalf("Factor(2^67-1) = %s, want 193707721", got.String())
	}
}

func TestPTestFlagsCarmichael(t *testing.T) {
	// 561 is the smallest Carmichael number; Miller-Rabin with enough
	// witnesses must still flag it composite, unlike Fermat's test.
	n, _ := FromString("561", 10)
	if PTest(n, 5) {
		t.Fatalf("PTest(561,5) reported prime for a Carmichael number")
	}
}

func TestPTestAgreesOnSmallPrimesAndComposites(t *testing.T) {
	primes := []uint64{2, 3, 5, 7, 11, 97, 7919}
	for _, p := range primes {
		if !PTest(mag(p), 5) {
			t.Fatalf("PTest(%d,5) = false, want true", p)
		}
	}
	composites := []uint64{4, 6, 8, 9, 100, 7921}
	for _, c := range composites {
		if PTest(mag(c), 5) {
			t.Fatalf("PTest(%d,5) = true, want false", c)
		}
	}
}

func TestIsSquareRoundTrip(t *testing.T) {
	for i := uint64(0); i < 40; i++ {
		sq := mag(i * i)
		root, ok := sq.IsSquare()
		if !ok {
			t.Fatalf("IsSquare(%d) = false, want true", i*i)
		}
		if r, _ := root.Uint64(); r != i {
			t.Fatalf("IsSquare(%d) root = %d, want %d", i*i, r, i)
		}
	}
	nonSquares := []uint64{2, 3, 5, 8, 15, 99}
	for _, v := range nonSquares {
		if _, ok := mag(v).IsSquare(); ok {
			t.Fatalf("IsSquare(%d) = true, want false", v)
		}
	}
}
