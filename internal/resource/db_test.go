package resource

import (
	"testing"
	"time"

	"calc/internal/value"
)

func TestDecimalToQExact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"42", "42"},
		{"-42", "-42"},
		{"3.5", "7/2"},
		{"-0.25", "-1/4"},
		{"1.100", "11/10"},
	}
	for _, tt := range tests {
		got := decimalToQ(tt.in).String()
		if got != tt.want {
			t.Errorf("decimalToQ(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestColumnValueCoercions(t *testing.T) {
	if got := columnValue(nil); got.Kind != value.KindString {
		t.Fatalf("nil column should become an empty string, got kind %v", got.Kind)
	}
	if got := columnValue(int64(7)); got.Kind != value.KindNumber || got.Num.String() != "7" {
		t.Fatalf("int64 column: got %#v", got)
	}
	if got := columnValue(true); got.Num.String() != "1" {
		t.Fatalf("bool true column should become 1, got %s", got.Num.String())
	}
	if got := columnValue(false); got.Num.String() != "0" {
		t.Fatalf("bool false column should become 0, got %s", got.Num.String())
	}
	if got := columnValue([]byte("hi")); got.Kind != value.KindString {
		t.Fatalf("[]byte column should become a string, got kind %v", got.Kind)
	}
	if got := columnValue("plain"); got.Kind != value.KindString {
		t.Fatalf("string column should stay a string, got kind %v", got.Kind)
	}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := columnValue(ts); got.Kind != value.KindString {
		t.Fatalf("time.Time column should render as a string, got kind %v", got.Kind)
	}
}

func TestOpenDBRejectsUnsupportedScheme(t *testing.T) {
	if _, err := OpenDB("redis://localhost/0"); err == nil {
		t.Fatal("expected an error for an unsupported database scheme")
	}
}

func TestOpenDispatchesBySchemeWithoutNetwork(t *testing.T) {
	if _, err := Open("redis://localhost/0"); err == nil {
		t.Fatal("expected Open to reject an unsupported scheme before any network call")
	}
}
