package textutil

import "strings"

// fileNameReplacer maps filesystem-unsafe characters to safe alternatives.
// Separator-like characters become dashes so "Act 1: Prologue" stays
// readable; the rest are dropped.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes a track or album name safe to use as a file name.
// Whitespace runs collapse to single spaces and leading or trailing dots are
// trimmed so the result never hides as a dotfile. Names that sanitize away
// entirely fall back to "untitled".
func SanitizeFileName(name string) string {
	cleaned := fileNameReplacer.Replace(name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// Truncate shortens s to at most max runes, marking the cut with an
// ellipsis. Non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
