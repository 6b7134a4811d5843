package titles

import (
	"regexp"
	"strings"
)

// Normalize lowercases, trims, and collapses inner whitespace. It is
// idempotent and produces the canonical form used for cache keys and all
// scorer comparisons.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

var punctuationFolds = strings.NewReplacer(
	":", " ",
	"-", " ",
	"–", " ", // en dash
	"—", " ", // em dash
)

// FoldPunctuation replaces colons and dash variants with spaces and collapses
// the result. Catalogs disagree on whether "Hitman: Absolution" carries its
// colon; folding gives the cascade a second chance.
func FoldPunctuation(s string) string {
	return strings.Join(strings.Fields(punctuationFolds.Replace(s)), " ")
}

// editionSuffixes lists the edition markers stripped from title tails. Each
// pattern is matched case-insensitively at the end of the title with an
// optional leading separator.
var editionSuffixes = []string{
	`definitive\s+edition`,
	`game\s+of\s+the\s+year(\s+edition)?`,
	`goty(\s+edition)?`,
	`complete\s+(edition|collection)`,
	`deluxe\s+edition`,
	`\d+(th|st|nd|rd)?\s+anniversary(\s+edition)?`,
	`anniversary\s+edition`,
	`director['\x{2019}]?s\s+cut`,
	`remastered(\s+(edition|version))?`,
	`hd\s+(remaster(ed)?|edition)`,
	`enhanced\s+edition`,
	`special\s+edition`,
	`ultimate\s+edition`,
	`collector['\x{2019}]?s\s+edition`,
	`legendary\s+edition`,
	`redux`,
}

var editionStripPatterns []*regexp.Regexp

func init() {
	for _, suffix := range editionSuffixes {
		pattern := regexp.MustCompile(`(?i)\s*(?:[-:\x{2013}\x{2014}]\s*)?(?:` + suffix + `)\s*$`)
		editionStripPatterns = append(editionStripPatterns, pattern)
	}
}

// StripEditionSuffix removes edition markers from a title tail, for example
// "Ori and the Blind Forest: Definitive Edition" becomes
// "Ori and the Blind Forest". Patterns are applied repeatedly so stacked
// markers ("X: Legendary Edition - Remastered") collapse fully.
func StripEditionSuffix(title string) string {
	result := strings.TrimSpace(title)
	for {
		previous := result
		for _, pattern := range editionStripPatterns {
			result = strings.TrimSpace(pattern.ReplaceAllString(result, ""))
		}
		if result == previous || result == "" {
			if result == "" {
				// A title that is nothing but edition markers stays as given.
				return strings.TrimSpace(title)
			}
			return result
		}
	}
}
