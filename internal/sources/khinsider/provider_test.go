package khinsider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
)

// newTestSite returns a provider pointed at a local test server plus the mux
// to register page handlers on. The request rate is effectively uncapped so
// tests never sit in the limiter.
func newTestSite(t *testing.T) (*Provider, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider := New(config.Khinsider{
		Enabled:           true,
		BaseURL:           server.URL,
		TimeoutSeconds:    5,
		RequestsPerMinute: 6000,
	}, logging.NewNop())
	return provider, mux
}

func TestSearchParsesCatalogPage(t *testing.T) {
	provider, mux := newTestSite(t)

	var gotQuery string
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search")
		io.WriteString(w, searchFixture)
	})

	albums, err := provider.Search(context.Background(), "Celeste", true)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if gotQuery != "Celeste" {
		t.Errorf("search query = %q, want %q", gotQuery, "Celeste")
	}
	if len(albums) != 3 {
		t.Fatalf("Search returned %d albums, want 3", len(albums))
	}
	if albums[0].ID != "celeste-2018" {
		t.Errorf("albums[0].ID = %q, want %q", albums[0].ID, "celeste-2018")
	}
}

func TestSearchServerErrorReadsEmpty(t *testing.T) {
	provider, mux := newTestSite(t)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unhappy", http.StatusInternalServerError)
	})

	albums, err := provider.Search(context.Background(), "Celeste", true)
	if err != nil {
		t.Fatalf("Search returned error for server failure: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("Search returned %d albums from a failed request", len(albums))
	}
}

func TestSearchCancellationPropagates(t *testing.T) {
	provider, _ := newTestSite(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.Search(ctx, "Celeste", true); !errors.Is(err, context.Canceled) {
		t.Fatalf("Search error = %v, want context.Canceled", err)
	}
}

func TestListTracksScansAlbumPage(t *testing.T) {
	provider, mux := newTestSite(t)
	mux.HandleFunc("/game-soundtracks/album/celeste-2018", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, albumFixture)
	})

	album := catalog.Album{ID: "celeste-2018", Name: "Celeste Original Soundtrack", Source: catalog.SourceKhinsider}
	tracks, err := provider.ListTracks(context.Background(), album)
	if err != nil {
		t.Fatalf("ListTracks returned error: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("ListTracks returned %d tracks, want 2", len(tracks))
	}
	if tracks[0].Name != "Prologue" {
		t.Errorf("tracks[0].Name = %q, want %q", tracks[0].Name, "Prologue")
	}
}

func TestListTracksServerErrorReadsEmpty(t *testing.T) {
	provider, _ := newTestSite(t)

	album := catalog.Album{ID: "missing-album", Source: catalog.SourceKhinsider}
	tracks, err := provider.ListTracks(context.Background(), album)
	if err != nil {
		t.Fatalf("ListTracks returned error: %v", err)
	}
	if len(tracks) != 0 {
		t.Fatalf("ListTracks returned %d tracks for a missing album", len(tracks))
	}
}

func TestFetchTrackPrefersEncodeByMode(t *testing.T) {
	provider, mux := newTestSite(t)
	server := provider.client.baseURL

	mp3URL := server + "/audio/01-prologue.mp3"
	flacURL := server + "/audio/01-prologue.flac"
	mux.HandleFunc("/game-soundtracks/album/celeste-2018/01-prologue.mp3", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, trackPageFixture(mp3URL, flacURL))
	})
	mux.HandleFunc("/audio/01-prologue.mp3", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "mp3-bytes")
	})
	mux.HandleFunc("/audio/01-prologue.flac", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "flac-bytes-lossless")
	})

	var lastWritten, lastTotal int64
	provider.Progress = func(track catalog.Track, written, total int64) {
		lastWritten, lastTotal = written, total
	}

	track := catalog.Track{
		ID:     "/game-soundtracks/album/celeste-2018/01-prologue.mp3",
		Name:   "Prologue",
		Source: catalog.SourceKhinsider,
	}
	dir := t.TempDir()

	preview := filepath.Join(dir, "preview.mp3")
	ok, err := provider.FetchTrack(context.Background(), track, preview, true)
	if err != nil || !ok {
		t.Fatalf("FetchTrack(preview) = %v, %v", ok, err)
	}
	if data, _ := os.ReadFile(preview); string(data) != "mp3-bytes" {
		t.Errorf("preview fetch wrote %q, want the mp3 encode", data)
	}
	if lastWritten != int64(len("mp3-bytes")) || lastTotal != lastWritten {
		t.Errorf("progress reported %d/%d, want %d/%d", lastWritten, lastTotal, len("mp3-bytes"), len("mp3-bytes"))
	}

	full := filepath.Join(dir, "full.flac")
	ok, err = provider.FetchTrack(context.Background(), track, full, false)
	if err != nil || !ok {
		t.Fatalf("FetchTrack(full) = %v, %v", ok, err)
	}
	if data, _ := os.ReadFile(full); string(data) != "flac-bytes-lossless" {
		t.Errorf("full fetch wrote %q, want the lossless encode", data)
	}

	if _, err := os.Stat(preview + ".part"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial file left behind after successful fetch")
	}
}

func TestFetchTrackWithoutAudioLinksReportsFalse(t *testing.T) {
	provider, mux := newTestSite(t)
	mux.HandleFunc("/game-soundtracks/album/celeste-2018/01-prologue.mp3", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, trackPageFixture())
	})

	track := catalog.Track{ID: "/game-soundtracks/album/celeste-2018/01-prologue.mp3", Source: catalog.SourceKhinsider}
	dest := filepath.Join(t.TempDir(), "prologue.mp3")

	ok, err := provider.FetchTrack(context.Background(), track, dest, false)
	if err != nil {
		t.Fatalf("FetchTrack returned error: %v", err)
	}
	if ok {
		t.Fatal("FetchTrack reported success without any audio link")
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Error("FetchTrack created the destination despite failing")
	}
}

func TestFetchTrackFailedDownloadLeavesNoPartialFile(t *testing.T) {
	provider, mux := newTestSite(t)
	server := provider.client.baseURL

	mux.HandleFunc("/game-soundtracks/album/celeste-2018/01-prologue.mp3", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, trackPageFixture(server+"/audio/gone.mp3"))
	})

	track := catalog.Track{ID: "/game-soundtracks/album/celeste-2018/01-prologue.mp3", Source: catalog.SourceKhinsider}
	dest := filepath.Join(t.TempDir(), "prologue.mp3")

	ok, err := provider.FetchTrack(context.Background(), track, dest, false)
	if err != nil {
		t.Fatalf("FetchTrack returned error: %v", err)
	}
	if ok {
		t.Fatal("FetchTrack reported success for a dead audio link")
	}
	for _, path := range []string{dest, dest + ".part"} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("unexpected leftover file %s", path)
		}
	}
}
