// Package config defines the configuration record of spec.md §6: a single
// well-known record of display and computation options that the value and
// engine layers both consult. It is kept dependency-free (only rational)
// so both internal/value and internal/engine can import it without a cycle.
package config

import "calc/internal/rational"

// DisplayMode selects the numeric output base/format (§6 `mode`).
type DisplayMode int

const (
	ModeDecimal DisplayMode = iota
	ModeFraction
	ModeInteger
	ModeReal
	ModeExponential
	ModeHex
	ModeOctal
	ModeBinary
	ModeString
)

// Config is the process-wide configuration record. The REPL and one-shot
// CLI paths each own exactly one, embedded in their engine.Engine (spec.md
// §9 design note: "gathered into an explicit Engine context... rather than
// left as mutable globals").
type Config struct {
	Mode     DisplayMode
	Display  int // digits of fractional precision shown
	Epsilon  rational.Q
	Tilde    bool
	Tab      int

	Quo     rational.RoundMode
	Mod     rational.RoundMode
	Sqrt    rational.RoundMode
	Appr    rational.RoundMode
	CfAppr  rational.RoundMode
	OutRound rational.RoundMode

	LeadZero bool
	FullZero bool
	MaxPrint int
	Grouping bool // thousands-grouping on decimal display, per §4.E

	Prompt string
	More   string

	CalcDebug      int
	StopOnError    int
	LibDebug       int
	ResourceDebug  int
	UserDebug      int

	FileAccessMode int  // -m: file-access mode bits 0..7
	CustomBuiltins bool // -C: permit custom/native builtins
}

// Default returns the configuration record's default values. Quo/Mod
// default to RoundFloor, matching the pre-configurable behavior
// numericBinOp's `//`/`%` cases hardcoded before spec.md §4.B's
// rounding-policy table was wired through (internal/value/dispatch.go).
func Default() *Config {
	return &Config{
		Mode:     ModeDecimal,
		Display:  20,
		Epsilon:  defaultEpsilon(),
		Tab:      8,
		MaxPrint: 1000,
		Prompt:   "> ",
		More:     ">> ",
		Quo:      rational.RoundFloor,
		Mod:      rational.RoundFloor,
		Sqrt:     rational.RoundNearestEven,
		Appr:     rational.RoundNearestEven,
		CfAppr:   rational.RoundNearestEven,
		OutRound: rational.RoundNearestEven,
	}
}

func defaultEpsilon() rational.Q {
	// 1e-20, matching the default `display` precision above.
	den := rational.FromInt64(1)
	ten := rational.FromInt64(10)
	for i := 0; i < 20; i++ {
		den = den.Mul(ten)
	}
	return rational.FromInt64(1).Quo(den)
}
