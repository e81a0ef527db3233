package lexer

import (
	"strings"

	"calc/internal/magnitude"
	"calc/internal/rational"
)

// NumericLiteral is a parsed NUMBER token: an exact rational magnitude
// (possibly fractional, via the decimal-point case) and whether the
// trailing `i` suffix marked it imaginary (spec.md §4.H).
type NumericLiteral struct {
	Value     rational.Q
	Imaginary bool
}

// ParseNumber interprets a NUMBER token's lexeme: base-prefixed integers
// (0x, 0b), plain decimal integers, decimal reals with an optional
// exponent, and an optional trailing imaginary suffix `i`.
func ParseNumber(lexeme string) (NumericLiteral, bool) {
	imaginary := strings.HasSuffix(lexeme, "i")
	if imaginary {
		lexeme = lexeme[:len(lexeme)-1]
	}
	if lexeme == "" {
		return NumericLiteral{}, false
	}

	if len(lexeme) > 1 && lexeme[0] == '0' && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		m, ok := magnitude.FromString(lexeme[2:], 16)
		if !ok {
			return NumericLiteral{}, false
		}
		return NumericLiteral{Value: rational.FromMag(m, false), Imaginary: imaginary}, true
	}
	if len(lexeme) > 1 && lexeme[0] == '0' && (lexeme[1] == 'b' || lexeme[1] == 'B') {
		m, ok := magnitude.FromString(lexeme[2:], 2)
		if !ok {
			return NumericLiteral{}, false
		}
		return NumericLiteral{Value: rational.FromMag(m, false), Imaginary: imaginary}, true
	}

	mantissa := lexeme
	exp := 0
	if i := strings.IndexAny(lexeme, "eE"); i >= 0 {
		mantissa = lexeme[:i]
		expPart := lexeme[i+1:]
		sign := 1
		if len(expPart) > 0 && (expPart[0] == '+' || expPart[0] == '-') {
			if expPart[0] == '-' {
				sign = -1
			}
			expPart = expPart[1:]
		}
		m, ok := magnitude.FromString(expPart, 10)
		if !ok {
			return NumericLiteral{}, false
		}
		n, _ := m.Uint64()
		exp = sign * int(n)
	}

	fracDigits := 0
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		fracDigits = len(mantissa) - i - 1
		mantissa = mantissa[:i] + mantissa[i+1:]
	}
	if mantissa == "" {
		mantissa = "0"
	}
	m, ok := magnitude.FromString(mantissa, 10)
	if !ok {
		return NumericLiteral{}, false
	}
	q := rational.FromMag(m, false)

	netExp := exp - fracDigits
	ten := rational.FromInt64(10)
	if netExp > 0 {
		for i := 0; i < netExp; i++ {
			q = q.Mul(ten)
		}
	} else {
		for i := 0; i < -netExp; i++ {
			q = q.Quo(ten)
		}
	}
	return NumericLiteral{Value: q, Imaginary: imaginary}, true
}
