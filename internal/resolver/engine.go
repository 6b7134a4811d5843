package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
	"overture/internal/resultcache"
	"overture/internal/scoring"
	"overture/internal/services"
	"overture/internal/titles"
)

// Engine resolves free-text titles to ranked soundtrack albums.
type Engine struct {
	cfg      *config.Config
	registry *catalog.Registry
	store    *resultcache.Store
	gate     *scoring.Gate
	logger   *slog.Logger
}

// Options adjusts a single resolution request.
type Options struct {
	// Auto marks non-interactive resolution; free-text sources then apply
	// the stricter word-coverage gate.
	Auto bool
	// SkipCache forces a fresh provider query. The result is still written
	// back so the refreshed entry replaces the old one.
	SkipCache bool
}

// New constructs an engine. A nil store disables caching.
func New(cfg *config.Config, registry *catalog.Registry, store *resultcache.Store, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("resolver requires configuration")
	}
	if registry == nil {
		return nil, errors.New("resolver requires a provider registry")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if store == nil {
		store = resultcache.New("", resultcache.Options{}, logger)
	}
	return &Engine{
		cfg:      cfg,
		registry: registry,
		store:    store,
		gate:     scoring.NewGate(logger),
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}, nil
}

// ResolveAlbums resolves a title against one source, or against the whole
// priority chain for the aggregate source. It returns the accepted albums
// ranked best-first, or an empty list when no source produced an acceptable
// match. The returned error is non-nil only for cancellation.
func (e *Engine) ResolveAlbums(ctx context.Context, title string, source catalog.Source, opts Options) ([]catalog.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, logger := e.requestLogger(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		logger.Warn("resolution requested for empty title")
		return nil, nil
	}
	logger = logger.With(logging.String(logging.FieldTitle, title))

	providers := e.plan(logger, source)
	if len(providers) == 0 {
		return nil, nil
	}

	logger.Debug("resolving title",
		logging.String(logging.FieldSource, source.String()),
		logging.Bool("auto", opts.Auto),
		logging.Bool("skip_cache", opts.SkipCache),
		logging.Int("source_count", len(providers)))

	for _, provider := range providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		albums, err := e.resolveSource(ctx, logger, title, provider, opts)
		if err != nil {
			return nil, err
		}
		if len(albums) > 0 {
			return albums, nil
		}
	}

	logger.Info("no acceptable album found",
		logging.String(logging.FieldSource, source.String()))
	return nil, nil
}

// plan expands the requested source into an ordered provider list. The
// aggregate source walks the registry chain in priority order; an unknown
// or unregistered source reads as empty, not as an error.
func (e *Engine) plan(logger *slog.Logger, source catalog.Source) []catalog.Provider {
	if source == catalog.SourceAll {
		chain := e.registry.Chain()
		if len(chain) == 0 {
			logger.Warn("no providers registered")
		}
		return chain
	}
	provider, ok := e.registry.Lookup(source)
	if !ok {
		logger.Warn("no provider registered for source",
			logging.String(logging.FieldSource, source.String()))
		return nil
	}
	return []catalog.Provider{provider}
}

// resolveSource runs the full pipeline for one source: cache, cascade,
// pre-filter, scoring, threshold, cache write-back.
func (e *Engine) resolveSource(ctx context.Context, logger *slog.Logger, title string, provider catalog.Provider, opts Options) ([]catalog.Album, error) {
	src := provider.Source()
	ctx = services.WithSource(ctx, src.String())
	logger = logger.With(logging.String(logging.FieldSource, src.String()))

	if !opts.SkipCache {
		if albums, ok := e.store.Lookup(title, src); ok {
			logger.Debug("cache hit", logging.Int("albums", len(albums)))
			return albums, nil
		}
	}

	caps := provider.Capabilities()
	if !caps.Search {
		logger.Debug("source is hint-only, skipping search")
		return nil, nil
	}

	var queries []string
	if caps.FreeText {
		queries = titles.FreeTextQueries(title)
	} else {
		queries = titles.LiteralQueries(title)
	}

	raw, err := e.runCascade(ctx, logger, provider, queries, opts.Auto)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		logger.Debug("cascade exhausted without results")
		return nil, nil
	}

	kept := e.gate.Filter(raw, title, caps.FreeText, opts.Auto)
	if len(kept) == 0 {
		logger.Debug("pre-filter rejected every candidate",
			logging.Int("candidates", len(raw)))
		return nil, nil
	}

	ranked := scoring.RankAlbums(logger, kept, catalog.Game{Name: title})

	threshold := e.cfg.Scoring.AcceptThreshold
	accepted := make([]catalog.Album, 0, len(ranked))
	for _, candidate := range ranked {
		if candidate.Score < threshold {
			break
		}
		accepted = append(accepted, candidate.Album)
	}
	if len(accepted) == 0 {
		logger.Info("no candidate met the acceptance threshold",
			logging.Int("threshold", threshold),
			logging.Int("best_score", ranked[0].Score))
		return nil, nil
	}
	if max := e.cfg.Cache.MaxAlbums; max > 0 && len(accepted) > max {
		accepted = accepted[:max]
	}

	if err := e.store.Store(title, src, accepted); err != nil {
		logger.Warn("failed to cache resolution result", logging.Error(err))
	}

	logger.Info("resolved title",
		logging.Int("albums", len(accepted)),
		logging.Int("best_score", ranked[0].Score))
	return accepted, nil
}

// runCascade tries each query in order and returns the first non-empty raw
// result set. Later, cheaper variants never run once a step hits. Failed
// attempts log a warning and read as empty; cancellation aborts the whole
// cascade.
func (e *Engine) runCascade(ctx context.Context, logger *slog.Logger, provider catalog.Provider, queries []string, auto bool) ([]catalog.Album, error) {
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("cascade step",
			logging.Int("step", i+1),
			logging.Int("step_count", len(queries)),
			logging.String(logging.FieldQuery, query))

		albums, err := provider.Search(ctx, query, auto)
		if err != nil {
			if services.IsCancellation(err) {
				return nil, err
			}
			logger.Warn("search attempt failed",
				logging.String(logging.FieldQuery, query),
				logging.Error(err))
			continue
		}
		if len(albums) > 0 {
			logger.Debug("cascade step produced results",
				logging.Int("step", i+1),
				logging.Int("albums", len(albums)))
			return albums, nil
		}
	}
	return nil, nil
}

// requestLogger stamps the context with a request ID, reusing one the
// caller already attached, and returns a logger carrying it.
func (e *Engine) requestLogger(ctx context.Context) (context.Context, *slog.Logger) {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx, e.logger.With(logging.String(logging.FieldRequestID, requestID))
}
