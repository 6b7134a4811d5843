package youtube

import (
	"encoding/json"
	"strings"
	"time"

	"overture/internal/catalog"
)

// dumpEntry is the subset of a yt-dlp JSON line the provider reads. Flat
// playlist dumps emit one such object per result or playlist entry.
type dumpEntry struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Duration      float64 `json:"duration"`
	Channel       string  `json:"channel"`
	ChannelID     string  `json:"channel_id"`
	Uploader      string  `json:"uploader"`
	UploaderID    string  `json:"uploader_id"`
	PlaylistCount int     `json:"playlist_count"`
}

// parseAlbumLine maps one search dump line to an album candidate. Lines that
// are not JSON objects, such as download status output, are skipped.
func parseAlbumLine(line string) (catalog.Album, bool) {
	entry, ok := parseDumpLine(line)
	if !ok {
		return catalog.Album{}, false
	}

	album := catalog.Album{
		ID:          watchTarget(entry),
		Name:        entry.Title,
		Source:      catalog.SourceYouTube,
		ChannelID:   entry.ChannelID,
		ChannelName: entry.Channel,
		TrackCount:  entry.PlaylistCount,
	}
	if album.ChannelName == "" {
		album.ChannelName = entry.Uploader
	}
	if album.ChannelID == "" {
		album.ChannelID = entry.UploaderID
	}
	return album, true
}

// parseTrackLine maps one playlist dump line to a track.
func parseTrackLine(line string) (catalog.Track, bool) {
	entry, ok := parseDumpLine(line)
	if !ok {
		return catalog.Track{}, false
	}
	return catalog.Track{
		ID:     watchTarget(entry),
		Name:   entry.Title,
		Length: time.Duration(entry.Duration * float64(time.Second)),
		Source: catalog.SourceYouTube,
	}, true
}

func parseDumpLine(line string) (dumpEntry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return dumpEntry{}, false
	}
	var entry dumpEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return dumpEntry{}, false
	}
	if entry.ID == "" || entry.Title == "" {
		return dumpEntry{}, false
	}
	return entry, true
}

// watchTarget returns the handle later operations hand back to yt-dlp. Dump
// lines usually carry a full URL; bare video IDs get one built.
func watchTarget(entry dumpEntry) string {
	if entry.URL != "" {
		return entry.URL
	}
	return "https://www.youtube.com/watch?v=" + entry.ID
}
