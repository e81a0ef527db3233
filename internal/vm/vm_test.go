package vm

import (
	"testing"

	"calc/internal/compiler"
	"calc/internal/config"
	"calc/internal/lexer"
	"calc/internal/object"
	"calc/internal/parser"
	"calc/internal/value"
)

func run(t *testing.T, src string) value.Value {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	stmts, err := parser.New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := compiler.Compile(stmts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := New(config.Default(), object.NewRegistry())
	for name, fu := range prog.Funcs {
		m.DefineFunction(name, fu.Chunk)
	}
	got, err := m.Run(prog.Main.Chunk)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return got
}

func globalAfter(t *testing.T, src, name string) value.Value {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	stmts, err := parser.New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := compiler.Compile(stmts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := New(config.Default(), object.NewRegistry())
	for _, ot := range prog.Objs {
		m.Objects.Declare(ot.Name, ot.Fields)
	}
	for n, fu := range prog.Funcs {
		m.DefineFunction(n, fu.Chunk)
	}
	if _, err := m.Run(prog.Main.Chunk); err != nil {
		t.Fatalf("run error: %v", err)
	}
	v, ok := m.GetGlobal(name)
	if !ok {
		t.Fatalf("expected global %q to be set", name)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"addition", "x = 10 + 20\n", "30"},
		{"subtraction", "x = 50 - 20\n", "30"},
		{"multiplication", "x = 5 * 6\n", "30"},
		{"division", "x = 60 / 2\n", "30"},
		{"modulo", "x = 17 % 5\n", "2"},
		{"negation", "x = -42\n", "-42"},
		{"power", "x = 2 ** 10\n", "1024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := globalAfter(t, tt.src, "x")
			if got.Kind != value.KindNumber {
				t.Fatalf("expected a number, got kind %v", got.Kind)
			}
			if got.Num.String() != tt.want {
				t.Fatalf("got %s, want %s", got.Num.String(), tt.want)
			}
		})
	}
}

func TestBareExpressionSetsAns(t *testing.T) {
	got := globalAfter(t, "3 + 4\n", "ans")
	if got.Kind != value.KindNumber || got.Num.String() != "7" {
		t.Fatalf("expected ans == 7, got %#v", got)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	got := globalAfter(t, "i = 0\nsum = 0\nwhile (i < 5) { sum = sum + i\ni = i + 1 }\n", "sum")
	if got.Num.String() != "10" {
		t.Fatalf("expected sum == 10, got %s", got.Num.String())
	}
}

func TestBreakExitsLoop(t *testing.T) {
	got := globalAfter(t, "i = 0\nwhile (i < 100) { if (i == 3) { break }\ni = i + 1 }\n", "i")
	if got.Num.String() != "3" {
		t.Fatalf("expected i == 3, got %s", got.Num.String())
	}
}

func TestFunctionCallAndLocals(t *testing.T) {
	got := globalAfter(t, "add(a, b) { c = a + b\nreturn c }\nx = add(4, 5)\n", "x")
	if got.Num.String() != "9" {
		t.Fatalf("expected 9, got %s", got.Num.String())
	}
}

func TestDivisionByZeroProducesError(t *testing.T) {
	got := globalAfter(t, "x = 1 / 0\n", "x")
	if got.Kind != value.KindError {
		t.Fatalf("expected an error value, got kind %v", got.Kind)
	}
}

func TestTryCatchBindsError(t *testing.T) {
	got := globalAfter(t, "try { x = 1 / 0 } catch (e) { y = e }\n", "y")
	if got.Kind != value.KindError {
		t.Fatalf("expected y to be bound to the caught error, got kind %v", got.Kind)
	}
}

func TestListLiteralAndIndex(t *testing.T) {
	got := globalAfter(t, "l = {10, 20, 30}\nx = l[1]\n", "x")
	if got.Num.String() != "20" {
		t.Fatalf("expected 20, got %s", got.Num.String())
	}
}

func TestObjectFieldRoundTrip(t *testing.T) {
	got := globalAfter(t, "obj Point { x, y }\np = Point{}\np.x = 7\nout = p.x\n", "out")
	if got.Num.String() != "7" {
		t.Fatalf("expected 7, got %s", got.Num.String())
	}
}
