package lexer

import "testing"

func TestScanTokensOperators(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []TokenType
	}{
		{"int div is not comment", "7 // 2", []TokenType{TokenNumber, TokenSlash2, TokenNumber, TokenEOF}},
		{"block comment skipped", "1 /* nope */ + 2", []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenEOF}},
		{"line comment skipped", "1 # trailing\n+2", []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenEOF}},
		{"multi-char operators", "a <= b && c >= d", []TokenType{TokenIdent, TokenLe, TokenIdent, TokenAndAnd, TokenIdent, TokenGe, TokenIdent, TokenEOF}},
		{"hex and binary prefixes", "0xFF 0b101", []TokenType{TokenNumber, TokenNumber, TokenEOF}},
		{"imaginary suffix", "3i + 2", []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenEOF}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			toks := NewScanner(tc.src).ScanTokens()
			if len(toks) != len(tc.want) {
				t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(tc.want))
			}
			for i, tt := range tc.want {
				if toks[i].Type != tt {
					t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
				}
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	t.Run("hex literal", func(t *testing.T) {
		lit, ok := ParseNumber("0xFF")
		if !ok {
			t.Fatal("expected success")
		}
		if lit.Value.String() != "255" {
			t.Errorf("got %s, want 255", lit.Value.String())
		}
	})
	t.Run("decimal with fraction", func(t *testing.T) {
		lit, ok := ParseNumber("1.25")
		if !ok {
			t.Fatal("expected success")
		}
		if lit.Value.String() != "5/4" {
			t.Errorf("got %s, want 5/4", lit.Value.String())
		}
	})
	t.Run("imaginary suffix", func(t *testing.T) {
		lit, ok := ParseNumber("2i")
		if !ok {
			t.Fatal("expected success")
		}
		if !lit.Imaginary {
			t.Error("expected Imaginary=true")
		}
	})
	t.Run("exponent", func(t *testing.T) {
		lit, ok := ParseNumber("1e3")
		if !ok {
			t.Fatal("expected success")
		}
		if lit.Value.String() != "1000" {
			t.Errorf("got %s, want 1000", lit.Value.String())
		}
	})
}
