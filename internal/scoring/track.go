package scoring

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"overture/internal/catalog"
	"overture/internal/logging"
	"overture/internal/titles"
)

// Track score weights. Preview selection favors menu and theme music over
// level, combat, and ending tracks.
const (
	trackKeywordContained = 1500
	trackKeywordPrefix    = 500
	trackNumberFirst      = 200
	trackNumberSecond     = 100

	durationSweet    = 300
	durationOK       = 150
	durationTooShort = -500
	durationTooLong  = -1000

	minUsefulLength = 30 * time.Second
	sweetSpotCeil   = 4 * time.Minute
	okFloor         = time.Minute
)

// nameTiers are mutually exclusive: only the first matching tier applies.
var nameTiers = []scoreGroup{
	{[]string{"title screen", "title theme"}, 5000},
	{[]string{"main theme", "main menu"}, 4500},
	{[]string{"opening theme", "opening"}, 4000},
}

// nameBonuses and namePenalties are additive, each group at most once.
var nameBonuses = []scoreGroup{
	{[]string{"theme", "title", "menu", "intro", "prologue"}, 2000},
	{[]string{"overworld", "hub", "world map"}, 800},
	{[]string{"protagonist", "hero"}, 600},
	{[]string{"stage 1", "level 1", "chapter 1", "act 1"}, 400},
}

var namePenalties = []scoreGroup{
	{[]string{"remix", "remixed", "cover", "arrange", "arranged"}, -1000},
	{[]string{"extended", "loop", "10 hour", "1 hour"}, -2000},
	{[]string{"battle", "boss", "combat", "fight"}, -300},
	{[]string{"game over", "death", "ending", "credits", "sad", "tragic"}, -500},
	{[]string{"sfx", "sound effect", "jingle", "fanfare"}, -1500},
}

type scoreGroup struct {
	terms  []string
	points int
}

// TrackOptions carries the configured duration bounds for preview selection.
// Zero values fall back to the 90 second / 5 minute defaults.
type TrackOptions struct {
	PreviewMin time.Duration
	PreviewMax time.Duration
}

func (o TrackOptions) withDefaults() TrackOptions {
	if o.PreviewMin <= 0 {
		o.PreviewMin = 90 * time.Second
	}
	if o.PreviewMax <= 0 {
		o.PreviewMax = 5 * time.Minute
	}
	return o
}

// ScoreTrack rates one track of an album listing for preview suitability
// against the title being resolved. Pure and deterministic.
func ScoreTrack(track catalog.Track, title string, opts TrackOptions) int {
	opts = opts.withDefaults()
	name := titles.Normalize(track.Name)
	if name == "" {
		return 0
	}
	nameTokens := tokenSet(titles.Tokenize(name))

	score := 0

	for _, tier := range nameTiers {
		if matchesAny(name, nameTokens, tier.terms) {
			score += tier.points
			break
		}
	}

	for _, group := range nameBonuses {
		if matchesAny(name, nameTokens, group.terms) {
			score += group.points
		}
	}
	for _, group := range namePenalties {
		if matchesAny(name, nameTokens, group.terms) {
			score += group.points
		}
	}

	if keyword := titles.PrimaryKeyword(title); keyword != "" {
		if strings.Contains(name, keyword) {
			score += trackKeywordContained
			if strings.HasPrefix(name, keyword) {
				score += trackKeywordPrefix
			}
		}
	}

	score += durationScore(track.Length, opts)
	score += numberMarkerScore(name)

	return score
}

func durationScore(length time.Duration, opts TrackOptions) int {
	switch {
	case length <= 0:
		return 0
	case length < minUsefulLength:
		return durationTooShort
	case length > opts.PreviewMax:
		return durationTooLong
	case length >= opts.PreviewMin && length <= sweetSpotCeil:
		return durationSweet
	case length >= okFloor:
		return durationOK
	default:
		return 0
	}
}

// numberMarkerScore rewards tracks that open the album: a leading "01",
// "1.", "track 1", or "#1" marker, with a smaller bonus for the second slot.
func numberMarkerScore(name string) int {
	if hasOrdinalPrefix(name, "01") || hasOrdinalPrefix(name, "1.") ||
		hasOrdinalPrefix(name, "track 1") || hasOrdinalPrefix(name, "#1") {
		return trackNumberFirst
	}
	if hasOrdinalPrefix(name, "02") || hasOrdinalPrefix(name, "2.") ||
		hasOrdinalPrefix(name, "track 2") || hasOrdinalPrefix(name, "#2") {
		return trackNumberSecond
	}
	return 0
}

// hasOrdinalPrefix checks a marker prefix with a digit boundary so "track 1"
// does not match "track 10".
func hasOrdinalPrefix(name, marker string) bool {
	if !strings.HasPrefix(name, marker) {
		return false
	}
	rest := name[len(marker):]
	if rest == "" {
		return true
	}
	return rest[0] < '0' || rest[0] > '9'
}

// ScoredTrack pairs a track with its computed score.
type ScoredTrack struct {
	catalog.Track
	Score int
}

// RankTracks scores every track and returns them sorted best-first. Ties
// keep encounter order so album ordering breaks them.
func RankTracks(logger *slog.Logger, tracks []catalog.Track, title string, opts TrackOptions) []ScoredTrack {
	if logger == nil {
		logger = logging.NewNop()
	}
	ranked := make([]ScoredTrack, 0, len(tracks))
	for _, track := range tracks {
		scored := ScoredTrack{Track: track, Score: ScoreTrack(track, title, opts)}
		logger.Debug("track scored",
			logging.String("track", track.Name),
			logging.Duration("length", track.Length),
			logging.Int("score", scored.Score))
		ranked = append(ranked, scored)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// PickTracks returns the top max tracks by score, or all of them when max
// is zero or negative.
func PickTracks(logger *slog.Logger, tracks []catalog.Track, title string, max int, opts TrackOptions) []catalog.Track {
	ranked := RankTracks(logger, tracks, title, opts)
	if max > 0 && max < len(ranked) {
		ranked = ranked[:max]
	}
	picked := make([]catalog.Track, 0, len(ranked))
	for _, scored := range ranked {
		picked = append(picked, scored.Track)
	}
	return picked
}
