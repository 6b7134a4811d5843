package titles

import "strings"

// LiteralQueries builds the cascade for title-indexed catalogs: the exact
// title, then punctuation folded, then edition markers stripped, then both.
// Variants identical to an earlier entry are dropped so no step repeats a
// call that already came back empty.
func LiteralQueries(title string) []string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil
	}
	stripped := StripEditionSuffix(trimmed)
	queries := make([]string, 0, 4)
	queries = appendUnique(queries, trimmed)
	queries = appendUnique(queries, FoldPunctuation(trimmed))
	queries = appendUnique(queries, stripped)
	queries = appendUnique(queries, FoldPunctuation(stripped))
	return queries
}

// FreeTextQueries builds the cascade for general-purpose search providers.
// The quoted variants keep franchise collisions down; the simplified-title
// variants only run when edition stripping actually changed the title.
func FreeTextQueries(title string) []string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil
	}
	queries := make([]string, 0, 5)
	queries = appendUnique(queries, `"`+trimmed+`" OST`)
	queries = appendUnique(queries, `"`+trimmed+`" soundtrack`)
	queries = appendUnique(queries, trimmed+" original soundtrack")
	if simplified := StripEditionSuffix(trimmed); simplified != trimmed {
		queries = appendUnique(queries, `"`+simplified+`" OST`)
		queries = appendUnique(queries, `"`+simplified+`" soundtrack`)
	}
	return queries
}

func appendUnique(queries []string, candidate string) []string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return queries
	}
	for _, existing := range queries {
		if strings.EqualFold(existing, candidate) {
			return queries
		}
	}
	return append(queries, candidate)
}
