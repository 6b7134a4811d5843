package scoring

import "strings"

// tokenSet builds a membership set from tokenized words.
func tokenSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// matchesTerm checks one term against a candidate name. Multi-word terms
// match as substrings of the normalized name; single words match whole
// tokens (plural tolerated) so "ost" does not fire inside "lost" and
// "cover" does not fire inside "undercover".
func matchesTerm(name string, tokens map[string]struct{}, term string) bool {
	if strings.Contains(term, " ") {
		return strings.Contains(name, term)
	}
	if _, ok := tokens[term]; ok {
		return true
	}
	_, ok := tokens[term+"s"]
	return ok
}

// matchesAny reports whether any term of the group matches.
func matchesAny(name string, tokens map[string]struct{}, terms []string) bool {
	for _, term := range terms {
		if matchesTerm(name, tokens, term) {
			return true
		}
	}
	return false
}
