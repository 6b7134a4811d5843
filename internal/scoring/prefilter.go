package scoring

import (
	"log/slog"

	"overture/internal/catalog"
	"overture/internal/logging"
	"overture/internal/titles"
)

// musicKeywords is the minimum evidence that a candidate is soundtrack
// content at all.
var musicKeywords = []string{
	"original soundtrack",
	"game music",
	"soundtrack",
	"ost",
	"bgm",
	"score",
	"theme",
}

// rejectMarkers flag non-game or derivative content. Any hit rejects the
// candidate regardless of keyword matches.
var rejectMarkers = []string{
	"subtitle",
	"subbed",
	"episode",
	"drama",
	"movie",
	"trailer",
	"review",
	"gameplay",
	"walkthrough",
	"reaction",
	"cover",
	"remix",
	"fan made",
}

// Gate is the cheap accept/reject pass applied to raw provider results
// before scoring.
type Gate struct {
	logger *slog.Logger
}

// NewGate returns a gate that debug-logs each rejection. A nil logger
// disables logging.
func NewGate(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gate{logger: logging.NewComponentLogger(logger, "prefilter")}
}

// Filter returns the candidates that pass Allow, preserving order.
func (g *Gate) Filter(albums []catalog.Album, title string, freeText, auto bool) []catalog.Album {
	kept := make([]catalog.Album, 0, len(albums))
	for _, album := range albums {
		if g.Allow(album, title, freeText, auto) {
			kept = append(kept, album)
		}
	}
	return kept
}

// Allow reports whether one candidate may reach the scorer. Free-text
// sources in automatic mode additionally need a minimum share of the
// title's significant words in the candidate name.
func (g *Gate) Allow(album catalog.Album, title string, freeText, auto bool) bool {
	name := titles.Normalize(album.Name)
	if name == "" {
		return false
	}
	nameTokens := tokenSet(titles.Tokenize(name))

	for _, marker := range rejectMarkers {
		if matchesTerm(name, nameTokens, marker) {
			g.logger.Debug("candidate rejected",
				logging.String("name", album.Name),
				logging.String("reason", "reject marker"),
				logging.String("marker", marker))
			return false
		}
	}

	if !matchesAny(name, nameTokens, musicKeywords) {
		g.logger.Debug("candidate rejected",
			logging.String("name", album.Name),
			logging.String("reason", "no music keyword"))
		return false
	}

	if freeText && auto {
		significant := titles.SignificantWords(title)
		coverage := titles.OverlapRatio(significant, titles.Tokenize(name))
		required := 0.5
		if len(significant) == 1 {
			required = 1.0
		}
		if coverage < required {
			g.logger.Debug("candidate rejected",
				logging.String("name", album.Name),
				logging.String("reason", "insufficient word coverage"),
				logging.Float64("coverage", coverage),
				logging.Float64("required", required))
			return false
		}
	}

	return true
}
