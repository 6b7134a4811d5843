package titles

import (
	"strings"
	"unicode"
)

// stopWords are tokens that carry no matching signal: articles, conjunctions,
// volume markers, and the generic music terms every soundtrack name shares.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "in": {}, "to": {},
	"for": {}, "on": {}, "at": {}, "by": {}, "with": {}, "from": {}, "or": {},
	"vol": {}, "volume": {}, "part": {},
	"ost": {}, "soundtrack": {}, "original": {}, "game": {}, "music": {},
}

// Tokenize splits a string into lowercase alphanumeric words. Apostrophes are
// dropped rather than split so "assassin's" stays one token.
func Tokenize(s string) []string {
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
		default:
			builder.WriteByte(' ')
		}
	}
	return strings.Fields(builder.String())
}

// SignificantWords returns the tokens of s minus stop-words. When every token
// is a stop-word the full token list is returned so a title like "The Game"
// still has something to match on.
func SignificantWords(s string) []string {
	tokens := Tokenize(s)
	significant := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := stopWords[token]; stop {
			continue
		}
		significant = append(significant, token)
	}
	if len(significant) == 0 {
		return tokens
	}
	return significant
}

// OverlapRatio reports the fraction of want's words found in have. An empty
// want yields zero.
func OverlapRatio(want, have []string) float64 {
	if len(want) == 0 {
		return 0
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, word := range have {
		haveSet[word] = struct{}{}
	}
	matched := 0
	for _, word := range want {
		if _, ok := haveSet[word]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

// PrimaryKeyword returns the first significant word of a title, used by the
// track scorer to spot tracks named after the game.
func PrimaryKeyword(title string) string {
	words := SignificantWords(title)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}
