package utils

import (
	"testing"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "dash comma and parentheses",
			input:    "AB-12,(34)",
			expected: "AB 1234",
		},
		{
			name:     "closing bracket removed",
			input:    "KA01]AB",
			expected: "KA01AB",
		},
		{
			name:     "opening bracket kept",
			input:    "[KA01",
			expected: "[KA01",
		},
		{
			name:     "internal whitespace kept",
			input:    "MH 12  DE 1433",
			expected: "MH 12  DE 1433",
		},
		{
			name:     "each dash becomes one space",
			input:    "AB--12",
			expected: "AB  12",
		},
		{
			name:     "case is preserved",
			input:    "ab12cd",
			expected: "ab12cd",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePlate(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePlate(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizePlateIdempotent(t *testing.T) {
	inputs := []string{"AB-12,(34)", "((--]],,", "DL 3C-AY 9324", "plain", "a-b-c"}

	for _, in := range inputs {
		once := NormalizePlate(in)
		twice := NormalizePlate(once)
		if once != twice {
			t.Errorf("NormalizePlate not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestPlateKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with spaces",
			input:    "123 ABC 02",
			expected: "123ABC02",
		},
		{
			name:     "lowercase",
			input:    "123abc02",
			expected: "123ABC02",
		},
		{
			name:     "with dashes",
			input:    "123-ABC-02",
			expected: "123ABC02",
		},
		{
			name:     "already a key",
			input:    "123ABC02",
			expected: "123ABC02",
		},
		{
			name:     "with leading/trailing spaces and tabs",
			input:    "  123 ABC\t02  ",
			expected: "123ABC02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PlateKey(tt.input)
			if result != tt.expected {
				t.Errorf("PlateKey(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
