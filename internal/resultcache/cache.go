package resultcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
	"overture/internal/titles"
)

// storeVersion guards the on-disk layout. Bump it when the file format
// changes; older files are then discarded instead of misread.
const storeVersion = 1

const (
	defaultTTL           = 7 * 24 * time.Hour
	defaultMaxAlbums     = 10
	defaultSweepInterval = 24 * time.Hour
)

// CachedAlbum is the persisted subset of an album. Everything else about a
// candidate can be refetched from its source.
type CachedAlbum struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
	Year   string `json:"year,omitempty"`
}

// Album rehydrates the persisted fields into a catalog album.
func (a CachedAlbum) Album() catalog.Album {
	return catalog.Album{
		ID:     a.ID,
		Name:   a.Name,
		Source: catalog.Source(strings.ToLower(strings.TrimSpace(a.Source))),
		Year:   a.Year,
	}
}

// Entry is one source's cached result set for a title.
type Entry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Expires    time.Time     `json:"expires"`
	AlbumCount int           `json:"album_count"`
	Albums     []CachedAlbum `json:"albums"`
}

// Listing pairs an entry with the keys it is stored under, for display.
type Listing struct {
	Title  string
	Source string
	Entry
}

// fileFormat is the on-disk shape: entries keyed by normalized title, then
// by source name.
type fileFormat struct {
	Version     int                         `json:"version"`
	LastCleanup time.Time                   `json:"last_cleanup"`
	Entries     map[string]map[string]Entry `json:"entries"`
}

// Options tunes retention. Zero values fall back to the defaults.
type Options struct {
	TTL        time.Duration
	MaxAlbums  int
	SweepEvery time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL == 0 {
		o.TTL = defaultTTL
	}
	if o.MaxAlbums <= 0 {
		o.MaxAlbums = defaultMaxAlbums
	}
	if o.SweepEvery <= 0 {
		o.SweepEvery = defaultSweepInterval
	}
	return o
}

// Store provides thread-safe access to the result cache file.
type Store struct {
	path       string
	logger     *slog.Logger
	ttl        time.Duration
	maxAlbums  int
	sweepEvery time.Duration

	lock *flock.Flock

	mu          sync.RWMutex
	entries     map[string]map[string]Entry
	lastCleanup time.Time
}

// New creates a store backed by the given file. An empty path disables the
// store: lookups miss and writes become no-ops. The file is created lazily
// on first write.
func New(path string, opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "resultcache")
	opts = opts.withDefaults()

	s := &Store{
		path:       path,
		logger:     logger,
		ttl:        opts.TTL,
		maxAlbums:  opts.MaxAlbums,
		sweepEvery: opts.SweepEvery,
		entries:    make(map[string]map[string]Entry),
	}

	if path == "" {
		return s
	}

	s.lock = flock.New(path + ".lock")
	s.load()

	return s
}

// NewFromConfig builds a store honoring the cache settings. A disabled
// cache yields a no-op store.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Store {
	if cfg == nil || !cfg.Cache.Enabled {
		return New("", Options{}, logger)
	}
	return New(cfg.Paths.CacheFile, Options{
		TTL:        cfg.TTL(),
		MaxAlbums:  cfg.Cache.MaxAlbums,
		SweepEvery: cfg.SweepInterval(),
	}, logger)
}

// Lookup returns the cached albums for a title and source. Expired entries
// count as misses; the sweep removes them later.
func (s *Store) Lookup(title string, source catalog.Source) ([]catalog.Album, bool) {
	key := titles.Normalize(title)
	if key == "" || s.path == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[key][source.String()]
	if !found || len(entry.Albums) == 0 {
		return nil, false
	}
	if time.Now().UTC().After(entry.Expires) {
		return nil, false
	}

	albums := make([]catalog.Album, 0, len(entry.Albums))
	for _, cached := range entry.Albums {
		albums = append(albums, cached.Album())
	}
	return albums, true
}

// Store records a result set for a title and source and persists it. Empty
// result sets are never persisted so a flaky source outage cannot mask a
// later successful resolution. Oversized sets keep only the leading albums.
func (s *Store) Store(title string, source catalog.Source, albums []catalog.Album) error {
	key := titles.Normalize(title)
	if key == "" {
		return errors.New("title cannot be empty")
	}
	src := source.String()
	if src == "" || source == catalog.SourceAll {
		return fmt.Errorf("cannot cache results for source %q", src)
	}
	if len(albums) == 0 || s.path == "" {
		return nil
	}

	if len(albums) > s.maxAlbums {
		albums = albums[:s.maxAlbums]
	}
	now := time.Now().UTC()
	entry := Entry{
		Timestamp:  now,
		Expires:    now.Add(s.ttl),
		AlbumCount: len(albums),
		Albums:     make([]CachedAlbum, 0, len(albums)),
	}
	for _, album := range albums {
		entry.Albums = append(entry.Albums, CachedAlbum{
			ID:     album.ID,
			Name:   album.Name,
			Source: album.Source.String(),
			Year:   album.Year,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(func() error {
		s.load()
		s.sweepIfDue(now)
		byTitle := s.entries[key]
		if byTitle == nil {
			byTitle = make(map[string]Entry)
			s.entries[key] = byTitle
		}
		byTitle[src] = entry

		if err := s.save(); err != nil {
			return fmt.Errorf("persist result cache: %w", err)
		}

		s.logger.Debug("cached resolution result",
			logging.String(logging.FieldTitle, key),
			logging.String(logging.FieldSource, src),
			logging.Int("albums", len(entry.Albums)))
		return nil
	})
}

// Remove forgets every cached result set for a title.
func (s *Store) Remove(title string) error {
	key := titles.Normalize(title)
	if key == "" {
		return errors.New("title cannot be empty")
	}
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(func() error {
		s.load()
		if _, exists := s.entries[key]; !exists {
			return fmt.Errorf("title %q not found in cache", key)
		}
		delete(s.entries, key)

		if err := s.save(); err != nil {
			return fmt.Errorf("persist result cache: %w", err)
		}

		s.logger.Debug("removed cached title", logging.String(logging.FieldTitle, key))
		return nil
	})
}

// Entries returns the live result sets sorted newest first. Titles and
// sources break timestamp ties so the order is stable for display.
func (s *Store) Entries() []Listing {
	if s.path == "" {
		return nil
	}
	now := time.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var listings []Listing
	for title, bySource := range s.entries {
		for src, entry := range bySource {
			if now.After(entry.Expires) || len(entry.Albums) == 0 {
				continue
			}
			listings = append(listings, Listing{Title: title, Source: src, Entry: entry})
		}
	}

	sort.Slice(listings, func(i, j int) bool {
		if !listings[i].Timestamp.Equal(listings[j].Timestamp) {
			return listings[i].Timestamp.After(listings[j].Timestamp)
		}
		if listings[i].Title != listings[j].Title {
			return listings[i].Title < listings[j].Title
		}
		return listings[i].Source < listings[j].Source
	})

	return listings
}

// Count returns the number of live result sets.
func (s *Store) Count() int {
	if s.path == "" {
		return 0
	}
	now := time.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, bySource := range s.entries {
		for _, entry := range bySource {
			if now.After(entry.Expires) || len(entry.Albums) == 0 {
				continue
			}
			count++
		}
	}
	return count
}

// Sweep drops every expired entry immediately and persists the result. It
// returns the number of result sets removed.
func (s *Store) Sweep() (int, error) {
	if s.path == "" {
		return 0, nil
	}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	err := s.withFileLock(func() error {
		s.load()
		removed = s.removeExpired(now)
		s.lastCleanup = now

		if err := s.save(); err != nil {
			return fmt.Errorf("persist result cache: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("pruned result cache", logging.Int("removed", removed))
	return removed, nil
}

// Clear removes all entries and persists the empty cache.
func (s *Store) Clear() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(func() error {
		s.entries = make(map[string]map[string]Entry)
		s.lastCleanup = time.Now().UTC()

		if err := s.save(); err != nil {
			return fmt.Errorf("persist result cache: %w", err)
		}

		s.logger.Debug("cleared result cache")
		return nil
	})
}

// withFileLock holds the cross-process file lock for the duration of fn.
// Mutations reload the file first so writes from other processes survive a
// load-merge-save cycle instead of being clobbered.
func (s *Store) withFileLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache file lock: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()
	return fn()
}

// sweepIfDue removes expired entries when the last cleanup is older than
// the sweep interval. Runs before a new entry is merged so a write never
// evicts itself.
func (s *Store) sweepIfDue(now time.Time) {
	if now.Sub(s.lastCleanup) < s.sweepEvery {
		return
	}
	if removed := s.removeExpired(now); removed > 0 {
		s.logger.Debug("swept expired cache entries", logging.Int("removed", removed))
	}
	s.lastCleanup = now
}

// removeExpired drops expired result sets and empty legacy entries. A title
// disappears entirely once no source retains a live entry for it.
func (s *Store) removeExpired(now time.Time) int {
	removed := 0
	for title, bySource := range s.entries {
		for src, entry := range bySource {
			if now.After(entry.Expires) || len(entry.Albums) == 0 {
				delete(bySource, src)
				removed++
			}
		}
		if len(bySource) == 0 {
			delete(s.entries, title)
		}
	}
	return removed
}

// load reads the cache file into memory. Missing files mean a fresh start;
// unreadable or version-mismatched files are discarded with a warning.
func (s *Store) load() {
	s.entries = make(map[string]map[string]Entry)
	s.lastCleanup = time.Time{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read result cache",
				logging.Error(err),
				logging.String("path", s.path))
		}
		return
	}
	if len(data) == 0 {
		return
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Warn("result cache unreadable, starting empty",
			logging.Error(err),
			logging.String("path", s.path))
		return
	}
	if file.Version != storeVersion {
		s.logger.Warn("result cache version mismatch, starting empty",
			logging.Int("found", file.Version),
			logging.Int("want", storeVersion),
			logging.String("path", s.path))
		return
	}

	if file.Entries != nil {
		s.entries = file.Entries
	}
	s.lastCleanup = file.LastCleanup
}

// save writes the cache to disk atomically.
func (s *Store) save() error {
	file := fileFormat{
		Version:     storeVersion,
		LastCleanup: s.lastCleanup,
		Entries:     s.entries,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
