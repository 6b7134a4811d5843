package khinsider

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"overture/internal/catalog"
)

// albumPathPrefix is the site path every album page lives under. Search
// result anchors carry exactly one path segment after it (the album slug);
// track page anchors carry two.
const albumPathPrefix = "/game-soundtracks/album/"

var (
	albumAnchorRe = regexp.MustCompile(`(?s)<a[^>]+href="` + albumPathPrefix + `([^"/]+)/?"[^>]*>(.*?)</a>`)
	trackAnchorRe = regexp.MustCompile(`(?s)<a[^>]+href="(` + albumPathPrefix + `[^"/]+/[^"]+)"[^>]*>(.*?)</a>`)
	audioHrefRe   = regexp.MustCompile(`(?i)href="((?:https?://|/)[^"]+\.(?:mp3|flac|ogg|m4a|wav))"`)
	cellRe        = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	yearRe        = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	clockRe       = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?$`)
	fileSizeRe    = regexp.MustCompile(`(?i)^\d+(?:\.\d+)?\s*[KMG]?B$`)
)

// releaseTypes holds the catalog's known release type labels, lowercased.
var releaseTypes = map[string]struct{}{
	"soundtrack":  {},
	"gamerip":     {},
	"arrangement": {},
	"remaster":    {},
	"compilation": {},
	"single":      {},
	"singles":     {},
	"inspired by": {},
}

// parseSearchResults scans a search results page for album rows. Each row is
// identified by its album page anchor; the remaining cells are classified by
// shape rather than position so column reshuffles do not break the scan.
func parseSearchResults(page string) []catalog.Album {
	var albums []catalog.Album
	seen := make(map[string]struct{})

	for _, row := range tableRows(page) {
		anchors := albumAnchorRe.FindAllStringSubmatch(row, -1)
		if len(anchors) == 0 {
			continue
		}
		slug := anchors[0][1]
		if _, dup := seen[slug]; dup {
			continue
		}

		// Thumbnail anchors wrap an image and have no text; the name is
		// the first anchor with readable content.
		var name string
		for _, anchor := range anchors {
			if text := cleanText(anchor[2]); text != "" {
				name = text
				break
			}
		}
		if name == "" {
			continue
		}
		seen[slug] = struct{}{}

		album := catalog.Album{ID: slug, Name: name, Source: catalog.SourceKhinsider}
		fillAlbumDetails(&album, row, name)
		albums = append(albums, album)
	}
	return albums
}

// fillAlbumDetails reads the leftover cells of a search row: a four-digit
// year, a known release type label, or a comma-separated platform list.
func fillAlbumDetails(album *catalog.Album, row, name string) {
	for _, cell := range cellRe.FindAllStringSubmatch(row, -1) {
		text := cleanText(cell[1])
		if text == "" || text == name {
			continue
		}
		switch {
		case yearRe.MatchString(text):
			if album.Year == "" {
				album.Year = text
			}
		case isReleaseType(text):
			if album.Type == "" {
				album.Type = text
			}
		case clockRe.MatchString(text) || fileSizeRe.MatchString(text):
			// Duration and size columns appear on some listing pages.
		default:
			album.Platforms = append(album.Platforms, splitPlatforms(text)...)
		}
	}
}

// parseAlbumTracks scans an album page's song list. Every cell of a song row
// links to the same track page, so the row is keyed by that path and the
// anchor texts are told apart by shape: a clock is the duration, a byte size
// is skipped, the first remaining text is the track name.
func parseAlbumTracks(page string) []catalog.Track {
	var tracks []catalog.Track
	seen := make(map[string]struct{})

	for _, row := range tableRows(page) {
		anchors := trackAnchorRe.FindAllStringSubmatch(row, -1)
		if len(anchors) == 0 {
			continue
		}
		trackPath := anchors[0][1]
		if _, dup := seen[trackPath]; dup {
			continue
		}

		var name string
		var length time.Duration
		for _, anchor := range anchors {
			text := cleanText(anchor[2])
			switch {
			case text == "":
			case clockRe.MatchString(text):
				if length == 0 {
					length = parseClock(text)
				}
			case fileSizeRe.MatchString(text):
			case name == "":
				name = text
			}
		}
		if name == "" {
			continue
		}
		if length == 0 {
			length = rowClock(row)
		}
		seen[trackPath] = struct{}{}

		tracks = append(tracks, catalog.Track{
			ID:     trackPath,
			Name:   name,
			Length: length,
			Source: catalog.SourceKhinsider,
		})
	}
	return tracks
}

// pickAudioURL chooses a download link from a track page. Preview fetches
// prefer the smaller MP3 encode; full fetches take the lossless file when the
// album offers one.
func pickAudioURL(page string, preview bool) (string, bool) {
	matches := audioHrefRe.FindAllStringSubmatch(page, -1)
	if len(matches) == 0 {
		return "", false
	}
	urls := make([]string, 0, len(matches))
	for _, match := range matches {
		urls = append(urls, html.UnescapeString(match[1]))
	}

	byExtension := func(ext string) (string, bool) {
		for _, candidate := range urls {
			if strings.HasSuffix(strings.ToLower(candidate), ext) {
				return candidate, true
			}
		}
		return "", false
	}

	if preview {
		if found, ok := byExtension(".mp3"); ok {
			return found, true
		}
		return urls[0], true
	}
	if found, ok := byExtension(".flac"); ok {
		return found, true
	}
	if found, ok := byExtension(".mp3"); ok {
		return found, true
	}
	return urls[0], true
}

// tableRows splits markup into <tr> chunks without requiring well-formed
// nesting around them.
func tableRows(page string) []string {
	var out []string
	rest := page
	for {
		start := strings.Index(rest, "<tr")
		if start == -1 {
			return out
		}
		rest = rest[start:]
		end := strings.Index(rest, "</tr>")
		if end == -1 {
			return append(out, rest)
		}
		out = append(out, rest[:end])
		rest = rest[end+len("</tr>"):]
	}
}

// rowClock finds a duration in a row's plain cells, for pages that render
// track lengths outside the clickable anchors.
func rowClock(row string) time.Duration {
	for _, cell := range cellRe.FindAllStringSubmatch(row, -1) {
		if text := cleanText(cell[1]); clockRe.MatchString(text) {
			return parseClock(text)
		}
	}
	return 0
}

// parseClock converts listing durations such as "3:05" or "1:02:33".
func parseClock(text string) time.Duration {
	total := 0
	for _, part := range strings.Split(text, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

// cleanText strips tags, resolves entities, and collapses whitespace.
func cleanText(fragment string) string {
	text := tagRe.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func isReleaseType(text string) bool {
	_, ok := releaseTypes[strings.ToLower(text)]
	return ok
}

func splitPlatforms(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
