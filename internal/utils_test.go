package internal

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"good morning", "good_morning"},
		{"Olá!", "olá_"},
		{"  see-you_soon ", "see-you_soon"},
		{"a/b\\c", "a_b_c"},
		{"", "_"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
