package scoring

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"overture/internal/catalog"
	"overture/internal/logging"
	"overture/internal/titles"
)

// Album score weights. The three name-match tiers are mutually exclusive;
// everything else is additive.
const (
	albumExactName     = 10000
	albumPrefixName    = 8000
	albumSubstringName = 6000

	overlapFull    = 5000
	overlapHigh    = 3000
	overlapHalf    = 1500
	overlapLow     = 500
	overlapHighCut = 0.75
	overlapHalfCut = 0.50
	overlapLowCut  = 0.33

	bonusOriginalSoundtrack = 300
	bonusSoundtrack         = 200
	bonusScoreOrMusic       = 100
	bonusPlatformOverlap    = 200
	bonusRipType            = 150
	bonusSoundtrackType     = 100
	bonusYearMatch          = 50
)

// ScoreAlbum rates one candidate album against the game being resolved.
// Pure and deterministic: the same inputs always produce the same score.
func ScoreAlbum(album catalog.Album, game catalog.Game) int {
	title := titles.Normalize(game.Name)
	name := titles.Normalize(album.Name)
	if title == "" || name == "" {
		return 0
	}

	score := 0

	switch {
	case name == title:
		score += albumExactName
	case strings.HasPrefix(name, title+" ") || strings.HasPrefix(name, title+":"):
		score += albumPrefixName
	case strings.Contains(name, title):
		score += albumSubstringName
	}

	overlap := titles.OverlapRatio(titles.SignificantWords(title), titles.Tokenize(name))
	switch {
	case overlap >= 1.0:
		score += overlapFull
	case overlap >= overlapHighCut:
		score += overlapHigh
	case overlap >= overlapHalfCut:
		score += overlapHalf
	case overlap >= overlapLowCut:
		score += overlapLow
	}

	nameTokens := tokenSet(titles.Tokenize(name))
	switch {
	case strings.Contains(name, "original soundtrack"):
		score += bonusOriginalSoundtrack
	case matchesAny(name, nameTokens, []string{"soundtrack", "ost"}):
		score += bonusSoundtrack
	case matchesAny(name, nameTokens, []string{"score", "music"}):
		score += bonusScoreOrMusic
	}

	if platformsOverlap(game.Platforms, album.Platforms) {
		score += bonusPlatformOverlap
	}

	albumType := strings.ToLower(strings.TrimSpace(album.Type))
	switch {
	case strings.Contains(albumType, "rip"):
		score += bonusRipType
	case strings.Contains(albumType, "soundtrack"):
		score += bonusSoundtrackType
	}

	if game.ReleaseYear > 0 && strings.Contains(album.Year, strconv.Itoa(game.ReleaseYear)) {
		score += bonusYearMatch
	}

	return score
}

// platformsOverlap reports whether any game platform matches any album
// platform, case-insensitively and substring-tolerant in both directions so
// "PS4" matches "PlayStation 4 (PS4)".
func platformsOverlap(gamePlatforms, albumPlatforms []string) bool {
	for _, gp := range gamePlatforms {
		g := strings.ToLower(strings.TrimSpace(gp))
		if g == "" {
			continue
		}
		for _, ap := range albumPlatforms {
			a := strings.ToLower(strings.TrimSpace(ap))
			if a == "" {
				continue
			}
			if strings.Contains(a, g) || strings.Contains(g, a) {
				return true
			}
		}
	}
	return false
}

// ScoredAlbum pairs a candidate with its computed score.
type ScoredAlbum struct {
	catalog.Album
	Score int
}

// RankAlbums scores every candidate and returns them sorted best-first.
// Ties keep encounter order. Each candidate's score is debug-logged.
func RankAlbums(logger *slog.Logger, albums []catalog.Album, game catalog.Game) []ScoredAlbum {
	if logger == nil {
		logger = logging.NewNop()
	}
	ranked := make([]ScoredAlbum, 0, len(albums))
	for _, album := range albums {
		scored := ScoredAlbum{Album: album, Score: ScoreAlbum(album, game)}
		logger.Debug("album scored",
			logging.String("album", album.Name),
			logging.String(logging.FieldSource, album.Source.String()),
			logging.Int("score", scored.Score))
		ranked = append(ranked, scored)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
