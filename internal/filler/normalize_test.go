package filler

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"lowercases", "UMM", "umm"},
		{"strips period", "umm.", "umm"},
		{"strips comma", "umm,", "umm"},
		{"strips question mark", "umm?", "umm"},
		{"strips exclamation", "umm!", "umm"},
		{"strips all four", "Umm, uh?! Ok.", "umm uh ok"},
		{"trims", "  umm  ", "umm"},
		{"punctuation only", ".,?!", ""},
		{"keeps hyphen", "Uh-huh!", "uh-huh"},
		{"keeps apostrophe", "it's raining", "it's raining"},
		{"interior whitespace untouched", "umm   uh", "umm   uh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
