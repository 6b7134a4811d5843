package catalog

import (
	"strings"
	"time"
)

// Source identifies a catalog provider. It acts as both a routing key and a
// cache-partition key.
type Source string

const (
	// SourceKhinsider is the title-indexed HTML soundtrack catalog.
	SourceKhinsider Source = "khinsider"
	// SourceYouTube is the yt-dlp backed free-text playlist search.
	SourceYouTube Source = "youtube"
	// SourceLibrary is the local collection of already-downloaded soundtracks.
	SourceLibrary Source = "library"
	// SourceDirect is the hint-only source addressed by explicit URLs or paths.
	SourceDirect Source = "direct"
	// SourceAll routes through every registered source in priority order.
	SourceAll Source = "all"
)

// ParseSource converts a source name to a Source. The boolean reports whether
// the name is known; "any" and the empty string alias the fallback chain.
func ParseSource(name string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "khinsider":
		return SourceKhinsider, true
	case "youtube":
		return SourceYouTube, true
	case "library":
		return SourceLibrary, true
	case "direct":
		return SourceDirect, true
	case "all", "any", "":
		return SourceAll, true
	default:
		return "", false
	}
}

// Concrete reports whether s names a single catalog rather than the
// fallback chain.
func (s Source) Concrete() bool {
	return s != SourceAll && s != ""
}

func (s Source) String() string { return string(s) }

// Album is one search result from a catalog. Identity is (Source, ID); the
// ID is source-scoped and opaque (an album page slug, a playlist ID, a
// directory name).
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Source      Source   `json:"source"`
	Year        string   `json:"year,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Type        string   `json:"type,omitempty"`
	ChannelID   string   `json:"channel_id,omitempty"`
	ChannelName string   `json:"channel_name,omitempty"`
	TrackCount  int      `json:"track_count,omitempty"`
}

// Track is one entry of an album listing. The ID doubles as the download
// handle (a track page path, a video ID, a file path).
type Track struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Length time.Duration `json:"length,omitempty"`
	Source Source        `json:"source"`
}

// Game carries host-supplied metadata about the title being resolved. It is
// read-only scorer input; the engine never owns or mutates it.
type Game struct {
	Name        string
	Platforms   []string
	ReleaseYear int
}
