package testsupport

import (
	"context"
	"sync"

	"overture/internal/catalog"
)

// FakeProvider is a scripted catalog provider. Search results are keyed by
// exact query string; unmatched queries return empty. Every call is
// recorded so tests can assert cascade behavior.
type FakeProvider struct {
	Kind catalog.Source
	Caps catalog.Capabilities

	// Results maps query strings to the albums Search returns for them.
	Results map[string][]catalog.Album
	// TrackLists maps album IDs to the tracks ListTracks returns.
	TrackLists map[string][]catalog.Track

	SearchErr error
	ListErr   error
	FetchErr  error
	FetchOK   bool

	mu      sync.Mutex
	queries []string
	listed  []string
	fetched []string
}

var _ catalog.Provider = (*FakeProvider)(nil)

func (p *FakeProvider) Source() catalog.Source { return p.Kind }

func (p *FakeProvider) Capabilities() catalog.Capabilities { return p.Caps }

func (p *FakeProvider) Search(ctx context.Context, query string, auto bool) ([]catalog.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.queries = append(p.queries, query)
	p.mu.Unlock()

	if p.SearchErr != nil {
		return nil, p.SearchErr
	}
	return p.Results[query], nil
}

func (p *FakeProvider) ListTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.listed = append(p.listed, album.ID)
	p.mu.Unlock()

	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return p.TrackLists[album.ID], nil
}

func (p *FakeProvider) FetchTrack(ctx context.Context, track catalog.Track, dest string, preview bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	p.fetched = append(p.fetched, track.ID)
	p.mu.Unlock()

	if p.FetchErr != nil {
		return false, p.FetchErr
	}
	return p.FetchOK, nil
}

// Queries returns the search queries seen so far, in order.
func (p *FakeProvider) Queries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queries...)
}

// SearchCalls returns how many times Search was invoked.
func (p *FakeProvider) SearchCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

// Listed returns the album IDs passed to ListTracks, in order.
func (p *FakeProvider) Listed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.listed...)
}

// Fetched returns the track IDs passed to FetchTrack, in order.
func (p *FakeProvider) Fetched() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.fetched...)
}
