package engine

import (
	"testing"

	"calc/internal/config"
	"calc/internal/rational"
	"calc/internal/value"
)

func runEngine(t *testing.T, src string) *Engine {
	t.Helper()
	e := New(config.Default())
	if _, err := e.Run(src); err != nil {
		t.Fatalf("run error: %v", err)
	}
	return e
}

func global(t *testing.T, e *Engine, name string) value.Value {
	t.Helper()
	v, ok := e.VM.GetGlobal(name)
	if !ok {
		t.Fatalf("expected global %q to be set", name)
	}
	return v
}

func TestBuiltinSqrtRealAndComplex(t *testing.T) {
	e := runEngine(t, "x = sqrt(16, 1/1000000)\n")
	x := global(t, e, "x")
	if x.Kind != value.KindNumber || x.Num.String() != "4" {
		t.Fatalf("expected 4, got %#v", x)
	}

	e2 := runEngine(t, "y = sqrt(-4, 1/1000000)\n")
	y := global(t, e2, "y")
	if y.Kind != value.KindComplex {
		t.Fatalf("expected a complex result for sqrt(-4), got kind %v", y.Kind)
	}
}

func TestBuiltinLnDomainError(t *testing.T) {
	e := runEngine(t, "x = ln(-1, 1/1000000)\n")
	x := global(t, e, "x")
	if x.Kind != value.KindError {
		t.Fatalf("expected ln(-1) to produce an error value, got kind %v", x.Kind)
	}
}

func TestBuiltinGCDAndPowmod(t *testing.T) {
	e := runEngine(t, "a = gcd(12, 18)\nb = powmod(3, 5, 7)\n")
	if got := global(t, e, "a").Num.String(); got != "6" {
		t.Fatalf("gcd(12,18): got %s, want 6", got)
	}
	if got := global(t, e, "b").Num.String(); got != "5" {
		t.Fatalf("powmod(3,5,7): got %s, want 5", got)
	}
}

func TestBuiltinTypeLenAppendDelete(t *testing.T) {
	e := runEngine(t, `
l = [1, 2, 3]
append(l, 4)
n = len(l)
delete(l, 0)
m = len(l)
t = type(l)
`)
	if got := global(t, e, "n").Num.String(); got != "4" {
		t.Fatalf("len after append: got %s, want 4", got)
	}
	if got := global(t, e, "m").Num.String(); got != "3" {
		t.Fatalf("len after delete: got %s, want 3", got)
	}
	ty := global(t, e, "t")
	if ty.Kind != value.KindString {
		t.Fatalf("type() should return a string, got kind %v", ty.Kind)
	}
}

func TestBuiltinErrorValue(t *testing.T) {
	e := runEngine(t, `x = error(42, "boom")`)
	x := global(t, e, "x")
	if x.Kind != value.KindError {
		t.Fatalf("expected an error value, got kind %v", x.Kind)
	}
}

func TestBuiltinTostringTonumberRoundTrip(t *testing.T) {
	e := runEngine(t, `
s = tostring(123)
n = tonumber(s)
`)
	n := global(t, e, "n")
	if n.Kind != value.KindNumber || n.Num.String() != "123" {
		t.Fatalf("round trip through tostring/tonumber: got %#v", n)
	}
}

func TestBuiltinTonumberRejectsGarbage(t *testing.T) {
	e := runEngine(t, `n = tonumber("not a number")`)
	n := global(t, e, "n")
	if n.Kind != value.KindError {
		t.Fatalf("expected an error for unparsable input, got kind %v", n.Kind)
	}
}

func TestRandSeedIsDeterministic(t *testing.T) {
	e1 := runEngine(t, "seed(7)\na = rand()\nb = rand()\n")
	e2 := runEngine(t, "seed(7)\na = rand()\nb = rand()\n")
	if global(t, e1, "a").Num.String() != global(t, e2, "a").Num.String() {
		t.Fatalf("same seed should produce the same first draw")
	}
	if global(t, e1, "b").Num.String() != global(t, e2, "b").Num.String() {
		t.Fatalf("same seed should produce the same second draw")
	}
}

func TestOperatorOverrideDispatchesThroughObjectRegistry(t *testing.T) {
	e := runEngine(t, `
obj Vec { x, y }
Vec_add(a, b) {
	r = Vec{}
	r.x = a.x + b.x
	r.y = a.y + b.y
	return r
}
p = Vec{}
p.x = 1
p.y = 2
q = Vec{}
q.x = 3
q.y = 4
r = p + q
out = r.x
`)
	out := global(t, e, "out")
	if out.Kind != value.KindNumber || out.Num.String() != "4" {
		t.Fatalf("expected Vec_add override to produce x == 4, got %#v", out)
	}
}

func TestEngineRunPersistsStateAcrossCalls(t *testing.T) {
	e := New(config.Default())
	if _, err := e.Run("x = 10\n"); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if _, err := e.Run("x = x + 5\n"); err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if got := global(t, e, "x").Num.String(); got != "15" {
		t.Fatalf("expected globals to persist across Run calls, got %s", got)
	}
}

func TestBuiltinMatrixDetInverseTranspose(t *testing.T) {
	e := runEngine(t, `
m = matrix(3, 3, {1,2,3,4,5,6,7,8,10})
d = det(m)
inv = inverse(m)
prod = inv * m
ident00 = prod[0,0]
ident01 = prod[0,1]
ident11 = prod[1,1]
t2 = matrix(2, 3, {1,2,3,4,5,6})
tt = transpose(t2)
tshape = tt[2,1]
`)
	if got := global(t, e, "d").Num.String(); got != "-3" {
		t.Fatalf("det: got %s, want -3", got)
	}
	if got := global(t, e, "ident00").Num.String(); got != "1" {
		t.Fatalf("inverse(m)*m [0,0]: got %s, want 1", got)
	}
	if got := global(t, e, "ident01").Num.String(); got != "0" {
		t.Fatalf("inverse(m)*m [0,1]: got %s, want 0", got)
	}
	if got := global(t, e, "ident11").Num.String(); got != "1" {
		t.Fatalf("inverse(m)*m [1,1]: got %s, want 1", got)
	}
	if got := global(t, e, "tshape").Num.String(); got != "6" {
		t.Fatalf("transpose(t2)[2,1]: got %s, want 6", got)
	}
}

func TestBuiltinDetSingularMatrix(t *testing.T) {
	e := runEngine(t, `
m = matrix(2, 2, {1,2,2,4})
d = det(m)
inv = inverse(m)
`)
	if got := global(t, e, "d").Num.String(); got != "0" {
		t.Fatalf("det of singular matrix: got %s, want 0", got)
	}
	inv := global(t, e, "inv")
	if inv.Kind != value.KindError {
		t.Fatalf("inverse of singular matrix should be an Error value, got kind %v", inv.Kind)
	}
}

func TestBuiltinFactorOfMersenneLike(t *testing.T) {
	e := runEngine(t, `n = 2**67 - 1
f = factor(n)
cofactor = n / f
`)
	f := global(t, e, "f").Num
	n := global(t, e, "n").Num
	cofactor := global(t, e, "cofactor").Num
	if !f.Mul(cofactor).Equal(n) {
		t.Fatalf("factor(2^67-1) * cofactor != n: %s * %s != %s", f.String(), cofactor.String(), n.String())
	}
	if f.String() != "193707721" {
		t.Fatalf("factor(2^67-1) = %s, want 193707721", f.String())
	}
}

func TestBuiltinPtestFlagsCarmichael(t *testing.T) {
	e := runEngine(t, "x = ptest(561, 5)\n")
	if got := global(t, e, "x").Num.String(); got != "0" {
		t.Fatalf("ptest(561,5): got %s, want 0 (561 is a Carmichael number)", got)
	}
}

func TestBuiltinCosDisplayRoundTrip(t *testing.T) {
	e := runEngine(t, `
config("display", 19)
x = cos(1, 1/100000000000000000000)
s = tostring(x)
`)
	s := global(t, e, "s")
	got, _ := s.AsString()
	if got.String() != ".5403023058681397174" {
		t.Fatalf("cos(1,1e-20) printed at display=19: got %q, want %q", got.String(), ".5403023058681397174")
	}
}

func TestStopOnErrorAbortsStatementUnconditionally(t *testing.T) {
	e := New(config.Default())
	// Default config: division by zero just leaves an Error value on the
	// stack, and the statement after it still runs.
	if _, err := e.Run("x = 1/0\ny = 5\n"); err != nil {
		t.Fatalf("default config should not abort on division by zero: %v", err)
	}
	xv := global(t, e, "x")
	if xv.Kind != value.KindError {
		t.Fatalf("1/0 under default config: want an Error value, got kind %v", xv.Kind)
	}
	if got := global(t, e, "y").Num.String(); got != "5" {
		t.Fatalf("statement after 1/0 under default config: got y=%s, want 5", got)
	}

	e2 := New(config.Default())
	_, err := e2.Run(`config("stoponerror", 1)
x = 1/0
y = 5
`)
	if err == nil {
		t.Fatalf("stoponerror=1 should abort the statement on 1/0")
	}
	if _, ok := e2.VM.GetGlobal("y"); ok {
		t.Fatalf("stoponerror abort should have skipped the rest of the statement, but y was set")
	}
	if e2.Cfg.StopOnError != 0 {
		t.Fatalf("stoponerror counter should have decremented to 0, got %d", e2.Cfg.StopOnError)
	}
}

func TestConfigGetSetRoundTrip(t *testing.T) {
	e := runEngine(t, `
old = config("display", 5)
cur = config("display")
`)
	if got := global(t, e, "old").Num.String(); got != "20" {
		t.Fatalf("config(\"display\",5) should return the previous value 20, got %s", got)
	}
	if got := global(t, e, "cur").Num.String(); got != "5" {
		t.Fatalf("config(\"display\") after set should read back 5, got %s", got)
	}
}

func TestBuiltinApprAndCfappr(t *testing.T) {
	e := runEngine(t, `
x = 1/3
a = appr(x, 1/1000)
c = cfappr(x, 1/1000)
`)
	a := global(t, e, "a").Num
	c := global(t, e, "c").Num
	third := global(t, e, "x").Num
	tol := rational.FromInt64(1).Quo(rational.FromInt64(1000))
	if a.Sub(third).Abs().Cmp(tol) > 0 {
		t.Fatalf("appr(1/3, 1/1000) = %s, not within tolerance of 1/3", a.String())
	}
	if c.Sub(third).Abs().Cmp(tol) > 0 {
		t.Fatalf("cfappr(1/3, 1/1000) = %s, not within tolerance of 1/3", c.String())
	}
}

func TestLoadStartupSkipsMissingFile(t *testing.T) {
	e := New(config.Default())
	if err := e.LoadStartup([]string{"/nonexistent/path/to/calcrc"}); err != nil {
		t.Fatalf("LoadStartup should skip a missing file, got error: %v", err)
	}
}
