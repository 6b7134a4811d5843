package resultcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"overture/internal/catalog"
)

func testAlbums() []catalog.Album {
	return []catalog.Album{
		{ID: "album/celeste-ost", Name: "Celeste Original Soundtrack", Source: catalog.SourceKhinsider, Year: "2018"},
		{ID: "album/celeste-b-sides", Name: "Celeste B-Sides", Source: catalog.SourceKhinsider, Year: "2018"},
	}
}

func TestStoreAndLookup(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	albums, ok := store.Lookup("Celeste", catalog.SourceKhinsider)
	if !ok {
		t.Fatal("Lookup failed to find stored entry")
	}
	if len(albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(albums))
	}
	if albums[0].ID != "album/celeste-ost" {
		t.Errorf("album order not preserved: got %q first", albums[0].ID)
	}
	if albums[0].Source != catalog.SourceKhinsider {
		t.Errorf("Source mismatch: got %q", albums[0].Source)
	}
	if albums[0].Year != "2018" {
		t.Errorf("Year mismatch: got %q", albums[0].Year)
	}
}

func TestLookupNormalizesTitle(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("  Celeste  ", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if _, ok := store.Lookup("CELESTE", catalog.SourceKhinsider); !ok {
		t.Error("Lookup should match regardless of case and spacing")
	}
	if _, ok := store.Lookup("Celeste", catalog.SourceYouTube); ok {
		t.Error("Lookup must not cross sources")
	}
}

func TestStoreNeverPersistsEmptyResults(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, nil); err != nil {
		t.Fatalf("Store of empty result set should be a no-op: %v", err)
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("empty result set must not create a cache file")
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0", store.Count())
	}
}

func TestStoreCapsAlbumCount(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{MaxAlbums: 1}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	albums, ok := store.Lookup("Celeste", catalog.SourceKhinsider)
	if !ok {
		t.Fatal("Lookup failed")
	}
	if len(albums) != 1 {
		t.Fatalf("expected capped result set of 1, got %d", len(albums))
	}
	if albums[0].ID != "album/celeste-ost" {
		t.Errorf("cap must keep leading albums, got %q", albums[0].ID)
	}
}

func TestStoreRejectsAggregateSource(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceAll, testAlbums()); err == nil {
		t.Error("Store should reject the aggregate source")
	}
	if err := store.Store("", catalog.SourceKhinsider, testAlbums()); err == nil {
		t.Error("Store should reject an empty title")
	}
}

func TestExpiredEntriesAreMisses(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{TTL: -time.Hour}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if _, ok := store.Lookup("Celeste", catalog.SourceKhinsider); ok {
		t.Error("expired entry should be a miss")
	}
	if store.Count() != 0 {
		t.Errorf("Count should skip expired entries, got %d", store.Count())
	}
	if entries := store.Entries(); len(entries) != 0 {
		t.Errorf("Entries should skip expired entries, got %d", len(entries))
	}
}

func TestSweepRemovesExpiredAndPersists(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{TTL: -time.Hour}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d entries, want 1", removed)
	}

	reopened := New(cachePath, Options{}, nil)
	if reopened.Count() != 0 {
		t.Errorf("sweep result not persisted, count %d", reopened.Count())
	}
}

func TestRemove(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store("Celeste", catalog.SourceYouTube, testAlbums()[:1]); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if err := store.Remove("celeste"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := store.Lookup("Celeste", catalog.SourceKhinsider); ok {
		t.Error("entry should be gone for every source after Remove")
	}
	if err := store.Remove("celeste"); err == nil {
		t.Error("Remove should error for a title that is not cached")
	}
	if err := store.Remove("  "); err == nil {
		t.Error("Remove should error for a blank title")
	}
}

func TestClear(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store("Hollow Knight", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("Count after Clear = %d, want 0", store.Count())
	}

	reopened := New(cachePath, Options{}, nil)
	if reopened.Count() != 0 {
		t.Errorf("Clear not persisted, count %d", reopened.Count())
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")

	first := New(cachePath, Options{}, nil)
	if err := first.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	second := New(cachePath, Options{}, nil)
	albums, ok := second.Lookup("Celeste", catalog.SourceKhinsider)
	if !ok {
		t.Fatal("entry should persist across store instances")
	}
	if len(albums) != 2 {
		t.Errorf("expected 2 albums after reload, got %d", len(albums))
	}
}

func TestConcurrentInstancesMergeWrites(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")

	first := New(cachePath, Options{}, nil)
	second := New(cachePath, Options{}, nil)

	if err := first.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	// The second instance loaded before the first wrote; its write must
	// merge with the file instead of clobbering it.
	if err := second.Store("Hollow Knight", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	third := New(cachePath, Options{}, nil)
	if third.Count() != 2 {
		t.Fatalf("expected both writes on disk, count %d", third.Count())
	}
	if _, ok := third.Lookup("Celeste", catalog.SourceKhinsider); !ok {
		t.Error("first write lost")
	}
	if _, ok := third.Lookup("Hollow Knight", catalog.SourceKhinsider); !ok {
		t.Error("second write lost")
	}
}

func TestDisabledStore(t *testing.T) {
	store := New("", Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Errorf("Store with empty path should not error: %v", err)
	}
	if _, ok := store.Lookup("Celeste", catalog.SourceKhinsider); ok {
		t.Error("Lookup with empty path should always miss")
	}
	if store.Count() != 0 {
		t.Errorf("Count with empty path should be 0, got %d", store.Count())
	}
	if store.Entries() != nil {
		t.Error("Entries with empty path should return nil")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear with empty path should not error: %v", err)
	}
	if err := store.Remove("Celeste"); err != nil {
		t.Errorf("Remove with empty path should not error: %v", err)
	}
	if removed, err := store.Sweep(); err != nil || removed != 0 {
		t.Errorf("Sweep with empty path = (%d, %v), want (0, nil)", removed, err)
	}
}

func TestCorruptedFileStartsEmpty(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(cachePath, []byte("not valid json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	store := New(cachePath, Options{}, nil)
	if store.Count() != 0 {
		t.Errorf("corrupt file should start empty, count %d", store.Count())
	}

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Errorf("Store should work after corrupt file: %v", err)
	}
	if _, ok := store.Lookup("Celeste", catalog.SourceKhinsider); !ok {
		t.Error("Lookup should work after recovering from corrupt file")
	}
}

func TestVersionMismatchStartsEmpty(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	stale := `{"version": 99, "entries": {"celeste": {"khinsider": {"albums": []}}}}`
	if err := os.WriteFile(cachePath, []byte(stale), 0o644); err != nil {
		t.Fatalf("failed to write stale file: %v", err)
	}

	store := New(cachePath, Options{}, nil)
	if _, ok := store.Lookup("celeste", catalog.SourceKhinsider); ok {
		t.Error("version-mismatched file must be discarded")
	}
	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Errorf("Store should rewrite a mismatched file: %v", err)
	}
}

func TestFileShape(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("read cache file: %v", err)
	}

	var file struct {
		Version     int       `json:"version"`
		LastCleanup time.Time `json:"last_cleanup"`
		Entries     map[string]map[string]struct {
			Timestamp  time.Time `json:"timestamp"`
			Expires    time.Time `json:"expires"`
			AlbumCount int       `json:"album_count"`
			Albums     []struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Source string `json:"source"`
				Year   string `json:"year"`
			} `json:"albums"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("cache file is not valid JSON: %v", err)
	}

	if file.Version != 1 {
		t.Errorf("version = %d, want 1", file.Version)
	}
	if file.LastCleanup.IsZero() {
		t.Error("last_cleanup should be stamped on first write")
	}
	entry, ok := file.Entries["celeste"]["khinsider"]
	if !ok {
		t.Fatal("entry not keyed by normalized title and source")
	}
	if entry.AlbumCount != 2 || len(entry.Albums) != 2 {
		t.Errorf("album_count = %d with %d albums, want 2 and 2", entry.AlbumCount, len(entry.Albums))
	}
	if !entry.Expires.After(entry.Timestamp) {
		t.Error("expires should be after timestamp")
	}
	if entry.Albums[0].Source != "khinsider" {
		t.Errorf("album source = %q, want khinsider", entry.Albums[0].Source)
	}
}

func TestEmptyLegacyEntriesAreMissesAndSwept(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	legacy := fileFormat{
		Version:     storeVersion,
		LastCleanup: time.Now().UTC(),
		Entries: map[string]map[string]Entry{
			"celeste": {
				"khinsider": {
					Timestamp: time.Now().UTC(),
					Expires:   time.Now().UTC().Add(time.Hour),
					Albums:    nil,
				},
			},
		},
	}
	data, err := json.Marshal(legacy)
	if err != nil {
		t.Fatalf("marshal legacy file: %v", err)
	}
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	store := New(cachePath, Options{}, nil)
	if _, ok := store.Lookup("Celeste", catalog.SourceKhinsider); ok {
		t.Error("empty legacy entry must read as a miss")
	}

	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d, want the empty legacy entry", removed)
	}
}

func TestEntriesSortedNewestFirst(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "results.json")
	store := New(cachePath, Options{}, nil)

	if err := store.Store("Celeste", catalog.SourceKhinsider, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := store.Store("Hollow Knight", catalog.SourceYouTube, testAlbums()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "hollow knight" || entries[0].Source != "youtube" {
		t.Errorf("newest entry should lead, got %s/%s", entries[0].Title, entries[0].Source)
	}
	if entries[1].Title != "celeste" {
		t.Errorf("older entry should trail, got %s", entries[1].Title)
	}
}
