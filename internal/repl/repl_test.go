package repl

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"calc/internal/config"
	"calc/internal/engine"
)

func TestBalancedTracksBracesAndParens(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 + 2\n", true},
		{"while (x < 5) {\n", false},
		{"while (x < 5) {\nx = x + 1\n}\n", true},
		{"f(a, b\n", false},
		{"f(a, b)\n", true},
		{"s = \"{ not a brace }\"\n", true},
		{"s = \"{\nstill open\n", false},
	}
	for _, tt := range tests {
		if got := balanced(tt.src); got != tt.want {
			t.Errorf("balanced(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestRunSourcePrintsBareExpressionResult(t *testing.T) {
	eng := engine.New(config.Default())
	var buf bytes.Buffer
	if err := RunSource(eng, "3 + 4\n", &buf); err != nil {
		t.Fatalf("RunSource error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "7" {
		t.Fatalf("expected output 7, got %q", buf.String())
	}
}

func TestRunSourceSuppressesNullResult(t *testing.T) {
	eng := engine.New(config.Default())
	var buf bytes.Buffer
	if err := RunSource(eng, "x = 3\n", &buf); err != nil {
		t.Fatalf("RunSource error: %v", err)
	}
	if buf.String() != "" {
		t.Fatalf("an assignment statement should print nothing, got %q", buf.String())
	}
}

func TestRunSourcePropagatesCompileError(t *testing.T) {
	eng := engine.New(config.Default())
	var buf bytes.Buffer
	if err := RunSource(eng, "1 +\n", &buf); err == nil {
		t.Fatal("expected a compile error for incomplete source")
	}
}

func TestStartExitsOnExitCommand(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	go func() {
		w.WriteString("x = 5\nexit\n")
		w.Close()
	}()

	eng := engine.New(config.Default())
	code := Start(eng, Options{Pipe: true, Quiet: true, NoStartup: true}, nil)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestStartContinuesAfterErrorWhenConfigured(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	go func() {
		w.WriteString("1 +\nx = 9\nexit\n")
		w.Close()
	}()

	eng := engine.New(config.Default())
	code := Start(eng, Options{Pipe: true, Quiet: true, NoStartup: true, ContinueErr: true}, nil)
	if code != 0 {
		t.Fatalf("expected exit code 0 when ContinueErr is set, got %d", code)
	}
}
