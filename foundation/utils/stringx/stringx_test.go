package stringx

import (
	"testing"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{" \t\n", true},
		{" ", true},
		{" + 1 2 ", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.input); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if got := IsNotBlank(tt.input); got == tt.want {
			t.Errorf("IsNotBlank(%q) = %v, want %v", tt.input, got, !tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		ellipsis string
		want     string
	}{
		{"fits", "(+ 1 2)", 10, "...", "(+ 1 2)"},
		{"cut", "(+ 1 2 3 4 5)", 8, "...", "(+ 1 ..."},
		{"ellipsis too long", "abcdef", 2, "...", "ab"},
		{"unicode", "äöüßé", 4, "…", "äöü…"},
		{"zero", "abc", 0, "...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen, tt.ellipsis); got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ok", 5, '.'); got != "ok..." {
		t.Errorf("PadRight() = %q", got)
	}
	if got := PadRight("longer", 3, ' '); got != "longer" {
		t.Errorf("PadRight() = %q", got)
	}
}

func TestCompact(t *testing.T) {
	if got := Compact("  (+ 1\n\t 2)  "); got != "(+ 1 2)" {
		t.Errorf("Compact() = %q", got)
	}
}

func TestFirstNonBlank(t *testing.T) {
	if got := FirstNonBlank("", "  ", "pnc.toml", "x"); got != "pnc.toml" {
		t.Errorf("FirstNonBlank() = %q", got)
	}
	if got := FirstNonBlank(" "); got != "" {
		t.Errorf("FirstNonBlank() = %q, want empty", got)
	}
}
