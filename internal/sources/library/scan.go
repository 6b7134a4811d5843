package library

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bogem/id3v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"overture/internal/logging"
	"overture/internal/services"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".wav":  true,
	".opus": true,
}

// Rescan rebuilds the index from the collection directory and reports how
// many albums it holds afterwards. Directories without audio files are
// ignored; albums whose directories vanished are pruned.
func (p *Provider) Rescan(ctx context.Context) (int, error) {
	if p.dir == "" {
		return 0, services.Wrap(services.ErrConfiguration, "library", "rescan", "collection directory not configured", nil)
	}

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "library", "rescan", "read collection directory", err)
	}

	var indexed []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return len(indexed), err
		}
		if !entry.IsDir() {
			continue
		}

		album, tracks, err := p.scanAlbumDir(entry.Name())
		if err != nil {
			p.log(ctx).Warn("skipping unreadable album directory",
				logging.String("dir", entry.Name()),
				logging.Error(err))
			continue
		}
		if len(tracks) == 0 {
			continue
		}

		if err := p.index.replaceAlbum(ctx, album, tracks); err != nil {
			return len(indexed), err
		}
		indexed = append(indexed, album.dir)
	}

	removed, err := p.index.pruneMissing(ctx, indexed)
	if err != nil {
		return len(indexed), err
	}

	p.log(ctx).Info("collection rescanned",
		logging.Int("albums", len(indexed)),
		logging.Int("removed", int(removed)))
	return len(indexed), nil
}

// scanAlbumDir reads one album directory. The album name comes from the
// first track carrying an album tag, with the directory name as fallback.
func (p *Provider) scanAlbumDir(dirName string) (albumRow, []trackRow, error) {
	full := filepath.Join(p.dir, dirName)
	entries, err := os.ReadDir(full)
	if err != nil {
		return albumRow{}, nil, err
	}

	var (
		tracks   []trackRow
		tagAlbum string
		position int
	)
	for _, entry := range entries {
		if entry.IsDir() || !isAudioFile(entry.Name()) {
			continue
		}
		position++
		path := filepath.Join(full, entry.Name())
		title, album, length := readTags(path)
		if title == "" {
			title = deriveName(entry.Name())
		}
		if tagAlbum == "" && album != "" {
			tagAlbum = album
		}
		tracks = append(tracks, trackRow{
			path:     path,
			name:     title,
			position: position,
			length:   length,
		})
	}

	name := tagAlbum
	if name == "" {
		name = dirName
	}
	return albumRow{
		dir:        dirName,
		name:       name,
		searchText: searchText(dirName + " " + name),
		trackCount: len(tracks),
	}, tracks, nil
}

// readTags pulls the ID3 title, album, and declared length from an audio
// file. Untagged or untaggable files read as empty values.
func readTags(path string) (title, album string, length time.Duration) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", "", 0
	}
	defer func() { _ = tag.Close() }()

	title = strings.TrimSpace(tag.Title())
	album = strings.TrimSpace(tag.Album())
	if raw := strings.TrimSpace(tag.GetTextFrame("TLEN").Text); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			length = time.Duration(ms) * time.Millisecond
		}
	}
	return title, album, length
}

func isAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// deriveName turns a file name like "01_first-steps.mp3" into a readable
// track name. Separators collapse to single spaces and the result is
// title cased.
func deriveName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	var cleaned strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return "Untitled"
	}
	return cases.Title(language.Und).String(name)
}

// searchText flattens a name for index matching: lowercase with letters and
// digits only, separated by single spaces.
func searchText(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace && b.Len() > 0 {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
