package library

import (
	"context"
	"log/slog"
	"sync"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/fileutil"
	"overture/internal/logging"
	"overture/internal/services"
)

// Provider resolves against the local collection through its SQLite index.
type Provider struct {
	dir    string
	index  *Index
	logger *slog.Logger

	scanOnce sync.Once
}

// Open prepares the index database. The collection directory itself is only
// touched by scans.
func Open(cfg config.Library, logger *slog.Logger) (*Provider, error) {
	if cfg.IndexDB == "" {
		return nil, services.Wrap(services.ErrConfiguration, "library", "open", "index database path required", nil)
	}

	index, err := openIndex(cfg.IndexDB)
	if err != nil {
		return nil, err
	}

	return &Provider{
		dir:    cfg.Dir,
		index:  index,
		logger: logging.NewComponentLogger(logger, "library"),
	}, nil
}

func (p *Provider) Close() error {
	return p.index.Close()
}

func (p *Provider) Source() catalog.Source {
	return catalog.SourceLibrary
}

// log derives the call's logger from the context so provider lines carry
// the request ID and source the resolver stamped.
func (p *Provider) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, p.logger)
}

func (p *Provider) Capabilities() catalog.Capabilities {
	return catalog.Capabilities{Search: true}
}

// Search matches the query against indexed album names. A brand new index
// triggers one scan of the collection directory before the first lookup.
func (p *Provider) Search(ctx context.Context, query string, _ bool) ([]catalog.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.maybeInitialScan(ctx)

	albums, err := p.index.SearchAlbums(ctx, query)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		p.log(ctx).Warn("index search failed",
			logging.String(logging.FieldQuery, query),
			logging.Error(err))
		return nil, nil
	}

	p.log(ctx).Debug("library search finished",
		logging.String(logging.FieldQuery, query),
		logging.Int("albums", len(albums)))
	return albums, nil
}

func (p *Provider) ListTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks, err := p.index.TracksForAlbum(ctx, album.ID)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		p.log(ctx).Warn("index track listing failed",
			logging.String("album", album.ID),
			logging.Error(err))
		return nil, nil
	}
	return tracks, nil
}

// FetchTrack copies the indexed file to dest, verifying the copy. The
// preview flag is ignored, a local copy is already as fast as a clip.
func (p *Provider) FetchTrack(ctx context.Context, track catalog.Track, dest string, _ bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := fileutil.CopyFileVerified(track.ID, dest); err != nil {
		if cause := ctx.Err(); cause != nil {
			return false, cause
		}
		p.log(ctx).Warn("copying library track failed",
			logging.String(logging.FieldTitle, track.Name),
			logging.String("path", track.ID),
			logging.Error(err))
		return false, nil
	}

	p.log(ctx).Debug("library track copied",
		logging.String(logging.FieldTitle, track.Name),
		logging.String("dest", dest))
	return true, nil
}

// maybeInitialScan populates an empty index on first use so the source works
// before anyone runs an explicit rescan.
func (p *Provider) maybeInitialScan(ctx context.Context) {
	p.scanOnce.Do(func() {
		count, err := p.index.AlbumCount(ctx)
		if err != nil || count > 0 {
			return
		}
		if p.dir == "" {
			return
		}
		if _, err := p.Rescan(ctx); err != nil && ctx.Err() == nil {
			p.log(ctx).Warn("initial collection scan failed", logging.Error(err))
		}
	})
}
