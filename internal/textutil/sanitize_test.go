package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hitman: Absolution", "Hitman- Absolution"},
		{"A/B\\C", "A-B-C"},
		{"What? \"Quotes\" <here>", "What Quotes here"},
		{"  spaced   out  ", "spaced out"},
		{"...", "untitled"},
		{"", "untitled"},
		{".hidden", "hidden"},
	}

	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a very long track name", 10, "a very ..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
