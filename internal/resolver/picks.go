package resolver

import (
	"context"

	"overture/internal/catalog"
	"overture/internal/logging"
	"overture/internal/scoring"
	"overture/internal/services"
)

// PickBestAlbum rescores albums against the full game metadata and returns
// the winner, or false when nothing clears the acceptance threshold.
func (e *Engine) PickBestAlbum(albums []catalog.Album, game catalog.Game) (catalog.Album, bool) {
	if len(albums) == 0 {
		return catalog.Album{}, false
	}
	ranked := scoring.RankAlbums(e.logger, albums, game)
	best := ranked[0]
	if best.Score < e.cfg.Scoring.AcceptThreshold {
		e.logger.Debug("best album below acceptance threshold",
			logging.String("album", best.Name),
			logging.Int("score", best.Score),
			logging.Int("threshold", e.cfg.Scoring.AcceptThreshold))
		return catalog.Album{}, false
	}
	return best.Album, true
}

// PickBestTracks returns the top max tracks for preview selection, ranked
// with the configured duration bounds. Ties keep album order.
func (e *Engine) PickBestTracks(tracks []catalog.Track, title string, max int) []catalog.Track {
	return scoring.PickTracks(e.logger, tracks, title, max, e.trackOptions())
}

// ListTracks delegates to the provider owning the album. Provider failures
// read as an empty listing; only cancellation returns an error.
func (e *Engine) ListTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, logger := e.requestLogger(ctx)

	provider, ok := e.registry.Lookup(album.Source)
	if !ok {
		logger.Warn("no provider registered for album source",
			logging.String(logging.FieldSource, album.Source.String()),
			logging.String("album", album.Name))
		return nil, nil
	}
	ctx = services.WithSource(ctx, album.Source.String())

	tracks, err := provider.ListTracks(ctx, album)
	if err != nil {
		if services.IsCancellation(err) {
			return nil, err
		}
		logger.Warn("track listing failed",
			logging.String(logging.FieldSource, album.Source.String()),
			logging.String("album", album.Name),
			logging.Error(err))
		return nil, nil
	}
	return tracks, nil
}

// FetchTrack delegates to the provider owning the track. Ordinary fetch
// failures are logged and reported as false; only cancellation returns an
// error.
func (e *Engine) FetchTrack(ctx context.Context, track catalog.Track, dest string, preview bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ctx, logger := e.requestLogger(ctx)

	provider, ok := e.registry.Lookup(track.Source)
	if !ok {
		logger.Warn("no provider registered for track source",
			logging.String(logging.FieldSource, track.Source.String()),
			logging.String("track", track.Name))
		return false, nil
	}
	ctx = services.WithSource(ctx, track.Source.String())

	fetched, err := provider.FetchTrack(ctx, track, dest, preview)
	if err != nil {
		if services.IsCancellation(err) {
			return false, err
		}
		logger.Warn("track fetch failed",
			logging.String(logging.FieldSource, track.Source.String()),
			logging.String("track", track.Name),
			logging.Error(err))
		return false, nil
	}
	return fetched, nil
}

func (e *Engine) trackOptions() scoring.TrackOptions {
	return scoring.TrackOptions{
		PreviewMin: e.cfg.PreviewMin(),
		PreviewMax: e.cfg.PreviewMax(),
	}
}
