package resolver_test

import (
	"context"
	"errors"
	"testing"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/resolver"
	"overture/internal/resultcache"
	"overture/internal/services"
	"overture/internal/testsupport"
)

func celesteAlbum() catalog.Album {
	return catalog.Album{
		ID:     "album/celeste-ost",
		Name:   "Celeste Original Soundtrack",
		Source: catalog.SourceKhinsider,
		Year:   "2018",
	}
}

func newEngine(t *testing.T, cfg *config.Config, providers ...catalog.Provider) (*resolver.Engine, *resultcache.Store) {
	t.Helper()

	store := testsupport.NewStore(t, cfg)
	registry := testsupport.NewRegistry(t, cfg, providers...)
	engine, err := resolver.New(cfg, registry, store, nil)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	return engine, store
}

func TestResolveCascadeShortCircuits(t *testing.T) {
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
		Results: map[string][]catalog.Album{
			"Hitman: Absolution": {{ID: "a", Name: "Hitman Absolution OST", Source: catalog.SourceKhinsider}},
		},
	}
	engine, _ := newEngine(t, testsupport.NewConfig(t), provider)

	albums, err := engine.ResolveAlbums(context.Background(), "Hitman: Absolution", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected 1 album, got %d", len(albums))
	}
	if provider.SearchCalls() != 1 {
		t.Fatalf("first variant hit, later variants must not run; got %d calls", provider.SearchCalls())
	}
}

func TestResolvePunctuationCascade(t *testing.T) {
	// The catalog has no entry for the exact string but matches the
	// punctuation-folded variant.
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
		Results: map[string][]catalog.Album{
			"Hitman Absolution": {{ID: "a", Name: "Hitman Absolution OST", Source: catalog.SourceKhinsider}},
		},
	}
	engine, _ := newEngine(t, testsupport.NewConfig(t), provider)

	albums, err := engine.ResolveAlbums(context.Background(), "Hitman: Absolution", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected the folded variant to resolve, got %d albums", len(albums))
	}

	queries := provider.Queries()
	want := []string{"Hitman: Absolution", "Hitman Absolution"}
	if len(queries) != len(want) {
		t.Fatalf("queries = %v, want %v", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestResolveEmptyResultsNeverPoisonCache(t *testing.T) {
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
	}
	engine, store := newEngine(t, testsupport.NewConfig(t), provider)

	albums, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("expected no albums, got %d", len(albums))
	}
	if store.Count() != 0 {
		t.Fatal("empty result must not be persisted")
	}

	first := provider.SearchCalls()
	if _, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{}); err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if provider.SearchCalls() <= first {
		t.Fatal("a later call must query the provider again, not a cached miss")
	}
}

func TestResolveCacheHitSkipsProvider(t *testing.T) {
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
		Results: map[string][]catalog.Album{
			"Celeste": {celesteAlbum()},
		},
	}
	engine, _ := newEngine(t, testsupport.NewConfig(t), provider)

	if _, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{}); err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if provider.SearchCalls() != 1 {
		t.Fatalf("expected 1 search call, got %d", provider.SearchCalls())
	}

	albums, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if provider.SearchCalls() != 1 {
		t.Fatalf("cache hit must not touch the provider, got %d calls", provider.SearchCalls())
	}
	if len(albums) != 1 || albums[0].ID != "album/celeste-ost" {
		t.Fatalf("cached albums wrong: %v", albums)
	}
}

func TestResolveSkipCacheRefreshesEntry(t *testing.T) {
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
		Results: map[string][]catalog.Album{
			"Celeste": {celesteAlbum()},
		},
	}
	engine, _ := newEngine(t, testsupport.NewConfig(t), provider)

	if _, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{}); err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}

	// The catalog changed; a skip-cache request must requery and replace
	// the cached entry.
	provider.Results["Celeste"] = []catalog.Album{{
		ID: "album/celeste-b-sides", Name: "Celeste B-Sides OST", Source: catalog.SourceKhinsider,
	}}

	fresh, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{SkipCache: true})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(fresh) != 1 || fresh[0].ID != "album/celeste-b-sides" {
		t.Fatalf("skip-cache must requery, got %v", fresh)
	}
	if provider.SearchCalls() != 2 {
		t.Fatalf("expected 2 search calls, got %d", provider.SearchCalls())
	}

	cached, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if provider.SearchCalls() != 2 {
		t.Fatal("refreshed entry should serve the next lookup from cache")
	}
	if len(cached) != 1 || cached[0].ID != "album/celeste-b-sides" {
		t.Fatalf("cache should hold the refreshed entry, got %v", cached)
	}
}

func TestResolveAggregateWalksPriorityOrder(t *testing.T) {
	khinsider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
	}
	youtube := &testsupport.FakeProvider{
		Kind: catalog.SourceYouTube,
		Caps: catalog.Capabilities{Search: true, FreeText: true},
		Results: map[string][]catalog.Album{
			`"Celeste" OST`: {{ID: "yt1", Name: "Celeste OST Full Album", Source: catalog.SourceYouTube}},
		},
	}
	cfg := testsupport.NewConfig(t, testsupport.WithSourcePriority("khinsider", "youtube"))
	engine, _ := newEngine(t, cfg, khinsider, youtube)

	albums, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceAll, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(albums) != 1 || albums[0].Source != catalog.SourceYouTube {
		t.Fatalf("expected the youtube fallback to win, got %v", albums)
	}
	if khinsider.SearchCalls() == 0 {
		t.Error("the first source in priority order must be tried first")
	}
	if got := youtube.Queries()[0]; got != `"Celeste" OST` {
		t.Errorf("free-text source must use the quoted cascade, first query %q", got)
	}
}

func TestResolveThresholdBoundary(t *testing.T) {
	// "Zelda Ocarina Theme Collection" scores exactly 1500 against this
	// title: half word overlap, no name tier, no scorer keyword bonus.
	title := "The Legend of Zelda Ocarina of Time"
	album := catalog.Album{ID: "z", Name: "Zelda Ocarina Theme Collection", Source: catalog.SourceKhinsider}

	run := func(t *testing.T, threshold int) []catalog.Album {
		provider := &testsupport.FakeProvider{
			Kind:    catalog.SourceKhinsider,
			Caps:    catalog.Capabilities{Search: true},
			Results: map[string][]catalog.Album{title: {album}},
		}
		cfg := testsupport.NewConfig(t, testsupport.WithAcceptThreshold(threshold))
		engine, _ := newEngine(t, cfg, provider)

		albums, err := engine.ResolveAlbums(context.Background(), title, catalog.SourceKhinsider, resolver.Options{})
		if err != nil {
			t.Fatalf("ResolveAlbums: %v", err)
		}
		return albums
	}

	if albums := run(t, 1500); len(albums) != 1 {
		t.Errorf("a candidate scoring exactly the threshold must be accepted, got %d albums", len(albums))
	}
	if albums := run(t, 1501); len(albums) != 0 {
		t.Errorf("a candidate scoring below the threshold must be rejected, got %d albums", len(albums))
	}
}

func TestResolveProviderFailureFallsThrough(t *testing.T) {
	flaky := &testsupport.FakeProvider{
		Kind:      catalog.SourceKhinsider,
		Caps:      catalog.Capabilities{Search: true},
		SearchErr: services.Wrap(services.ErrTransport, "khinsider", "search", "connection reset", nil),
	}
	youtube := &testsupport.FakeProvider{
		Kind: catalog.SourceYouTube,
		Caps: catalog.Capabilities{Search: true, FreeText: true},
		Results: map[string][]catalog.Album{
			`"Celeste" OST`: {{ID: "yt1", Name: "Celeste OST Full Album", Source: catalog.SourceYouTube}},
		},
	}
	cfg := testsupport.NewConfig(t, testsupport.WithSourcePriority("khinsider", "youtube"))
	engine, _ := newEngine(t, cfg, flaky, youtube)

	albums, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceAll, resolver.Options{})
	if err != nil {
		t.Fatalf("a flaky source must not fail the chain: %v", err)
	}
	if len(albums) != 1 || albums[0].Source != catalog.SourceYouTube {
		t.Fatalf("expected the healthy fallback to win, got %v", albums)
	}

	// Direct resolution against the flaky source reads as no match.
	albums, err = engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("provider failure must not escape: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("expected no albums from the flaky source, got %d", len(albums))
	}
}

func TestResolveCancellationPropagates(t *testing.T) {
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
	}
	engine, _ := newEngine(t, testsupport.NewConfig(t), provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.ResolveAlbums(ctx, "Celeste", catalog.SourceKhinsider, resolver.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveHintOnlySourceIsSkipped(t *testing.T) {
	direct := &testsupport.FakeProvider{
		Kind: catalog.SourceDirect,
		Caps: catalog.Capabilities{},
	}
	cfg := testsupport.NewConfig(t, testsupport.WithSourcePriority("direct"))
	engine, _ := newEngine(t, cfg, direct)

	albums, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceAll, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("hint-only source cannot resolve, got %v", albums)
	}
	if direct.SearchCalls() != 0 {
		t.Fatal("hint-only source must never be searched")
	}
}

func TestResolveUnregisteredSourceReadsEmpty(t *testing.T) {
	engine, _ := newEngine(t, testsupport.NewConfig(t))

	albums, err := engine.ResolveAlbums(context.Background(), "Celeste", catalog.SourceLibrary, resolver.Options{})
	if err != nil {
		t.Fatalf("missing provider must not be fatal: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("expected empty result, got %v", albums)
	}
}

func TestResolveBlankTitleReadsEmpty(t *testing.T) {
	provider := &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
	}
	engine, _ := newEngine(t, testsupport.NewConfig(t), provider)

	albums, err := engine.ResolveAlbums(context.Background(), "   ", catalog.SourceKhinsider, resolver.Options{})
	if err != nil {
		t.Fatalf("ResolveAlbums: %v", err)
	}
	if len(albums) != 0 || provider.SearchCalls() != 0 {
		t.Fatal("blank titles must resolve to nothing without provider calls")
	}
}
