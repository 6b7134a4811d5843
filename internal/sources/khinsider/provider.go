package khinsider

import (
	"context"
	"log/slog"
	"strings"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
)

// Provider implements catalog.Provider against the HTML catalog. Ordinary
// transport and parse failures are logged here and surface as empty results;
// only caller cancellation crosses the boundary as an error. A local request
// timeout counts as a transport failure so one slow page cannot abort the
// fallback chain.
type Provider struct {
	client *client
	logger *slog.Logger

	// Progress, when set, receives byte counts while a track streams to
	// disk. Hosts use it to drive download progress displays.
	Progress func(track catalog.Track, written, total int64)
}

// New builds a provider from the catalog's configuration section.
func New(cfg config.Khinsider, logger *slog.Logger) *Provider {
	return &Provider{
		client: newClient(cfg),
		logger: logging.NewComponentLogger(logger, "khinsider"),
	}
}

// log derives the call's logger from the context so provider lines carry
// the request ID and source the resolver stamped.
func (p *Provider) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, p.logger)
}

func (p *Provider) Source() catalog.Source {
	return catalog.SourceKhinsider
}

// Capabilities marks the catalog as searchable but not free-text: it is
// title-indexed, so the literal query cascade applies.
func (p *Provider) Capabilities() catalog.Capabilities {
	return catalog.Capabilities{Search: true}
}

// Search runs one query against the site's search page.
func (p *Provider) Search(ctx context.Context, query string, _ bool) ([]catalog.Album, error) {
	page, err := p.client.page(ctx, searchPath(query))
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		p.log(ctx).Warn("search request failed",
			logging.String(logging.FieldQuery, query),
			logging.Error(err))
		return nil, nil
	}

	albums := parseSearchResults(page)
	p.log(ctx).Debug("search page scanned",
		logging.String(logging.FieldQuery, query),
		logging.Int("albums", len(albums)))
	return albums, nil
}

// ListTracks reads the album page's song list.
func (p *Provider) ListTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	page, err := p.client.page(ctx, albumPath(album.ID))
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		p.log(ctx).Warn("album page request failed",
			logging.String("album", album.Name),
			logging.Error(err))
		return nil, nil
	}

	tracks := parseAlbumTracks(page)
	p.log(ctx).Debug("album page scanned",
		logging.String("album", album.Name),
		logging.Int("tracks", len(tracks)))
	return tracks, nil
}

// FetchTrack follows the track page to its audio links and streams the
// chosen encode to dest.
func (p *Provider) FetchTrack(ctx context.Context, track catalog.Track, dest string, preview bool) (bool, error) {
	page, err := p.client.page(ctx, track.ID)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return false, cause
		}
		p.log(ctx).Warn("track page request failed",
			logging.String("track", track.Name),
			logging.Error(err))
		return false, nil
	}

	audioURL, ok := pickAudioURL(page, preview)
	if !ok {
		p.log(ctx).Warn("track page has no audio links",
			logging.String("track", track.Name))
		return false, nil
	}

	var onWrite func(written, total int64)
	if p.Progress != nil {
		onWrite = func(written, total int64) {
			p.Progress(track, written, total)
		}
	}

	if err := p.client.download(ctx, audioURL, dest, onWrite); err != nil {
		if cause := ctx.Err(); cause != nil {
			return false, cause
		}
		p.log(ctx).Warn("track download failed",
			logging.String("track", track.Name),
			logging.Error(err))
		return false, nil
	}

	p.log(ctx).Debug("track downloaded",
		logging.String("track", track.Name),
		logging.String("dest", dest),
		logging.Bool("preview", preview))
	return true, nil
}

// albumPath rebuilds the album page path from a stored album ID. IDs are
// slugs, but full paths from older cache entries pass through unchanged.
func albumPath(id string) string {
	if strings.HasPrefix(id, albumPathPrefix) {
		return id
	}
	return albumPathPrefix + id
}
