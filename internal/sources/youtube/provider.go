package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
)

const (
	defaultBinary      = "yt-dlp"
	defaultSearchLimit = 10
)

// Option configures the provider.
type Option func(*Provider)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(p *Provider) {
		if executor != nil {
			p.exec = executor
		}
	}
}

// Provider implements catalog.Provider on top of yt-dlp.
type Provider struct {
	binary      string
	searchLimit int
	timeout     time.Duration
	previewMax  time.Duration
	exec        Executor
	logger      *slog.Logger
	lookPath    func(string) (string, error)

	checkOnce sync.Once
	binaryOK  bool
}

// New builds a provider from the source's configuration section. The preview
// cap bounds how much of a track a preview extraction downloads.
func New(cfg config.YouTube, previewMax time.Duration, logger *slog.Logger, opts ...Option) *Provider {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = defaultBinary
	}
	provider := &Provider{
		binary:      binary,
		searchLimit: cfg.SearchLimit,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		previewMax:  previewMax,
		exec:        commandExecutor{},
		logger:      logging.NewComponentLogger(logger, "youtube"),
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

func (p *Provider) Source() catalog.Source {
	return catalog.SourceYouTube
}

// log derives the call's logger from the context so provider lines carry
// the request ID and source the resolver stamped.
func (p *Provider) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, p.logger)
}

// Capabilities marks the provider free-text: candidates come from a
// general-purpose index, so automatic mode applies the word-coverage gate.
func (p *Provider) Capabilities() catalog.Capabilities {
	return catalog.Capabilities{Search: true, FreeText: true}
}

// Search runs one ytsearch query and maps each dump line to an album.
func (p *Provider) Search(ctx context.Context, query string, _ bool) ([]catalog.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.available() {
		return nil, nil
	}

	limit := p.searchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	args := []string{"--flat-playlist", "--dump-json", "--no-warnings", "--no-progress", target}

	runCtx, cancel := p.opContext(ctx)
	defer cancel()

	var albums []catalog.Album
	err := p.exec.Run(runCtx, p.binary, args, func(line string) {
		if album, ok := parseAlbumLine(line); ok {
			albums = append(albums, album)
		}
	})
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		p.log(ctx).Warn("search command failed",
			logging.String(logging.FieldQuery, query),
			logging.Error(err))
		return nil, nil
	}

	p.log(ctx).Debug("search finished",
		logging.String(logging.FieldQuery, query),
		logging.Int("albums", len(albums)))
	return albums, nil
}

// ListTracks dumps the album's entries. A playlist yields its videos; a
// single full-album upload yields itself as the one track.
func (p *Provider) ListTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.available() {
		return nil, nil
	}
	if strings.TrimSpace(album.ID) == "" {
		p.log(ctx).Warn("album has no identifier", logging.String("album", album.Name))
		return nil, nil
	}

	args := []string{"--flat-playlist", "--dump-json", "--no-warnings", "--no-progress", album.ID}

	runCtx, cancel := p.opContext(ctx)
	defer cancel()

	var tracks []catalog.Track
	err := p.exec.Run(runCtx, p.binary, args, func(line string) {
		if track, ok := parseTrackLine(line); ok {
			tracks = append(tracks, track)
		}
	})
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		p.log(ctx).Warn("track listing command failed",
			logging.String("album", album.Name),
			logging.Error(err))
		return nil, nil
	}

	p.log(ctx).Debug("album entries dumped",
		logging.String("album", album.Name),
		logging.Int("tracks", len(tracks)))
	return tracks, nil
}

// FetchTrack extracts one track's audio to dest. Preview mode clips the
// download to the preview cap and accepts the fastest encode.
func (p *Provider) FetchTrack(ctx context.Context, track catalog.Track, dest string, preview bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !p.available() {
		return false, nil
	}
	if strings.TrimSpace(dest) == "" {
		p.log(ctx).Warn("fetch requested without a destination",
			logging.String("track", track.Name))
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		p.log(ctx).Warn("create download directory failed", logging.Error(err))
		return false, nil
	}

	template, produced := outputTemplate(dest)
	args := []string{"--no-warnings", "--no-progress", "--no-playlist", "-x", "--audio-format", "mp3", "-o", template}
	if preview {
		args = append(args, "--audio-quality", "9")
		if p.previewMax > 0 {
			args = append(args, "--download-sections", fmt.Sprintf("*0-%d", int(p.previewMax.Seconds())))
		}
	}
	args = append(args, track.ID)

	runCtx, cancel := p.opContext(ctx)
	defer cancel()

	if err := p.exec.Run(runCtx, p.binary, args, nil); err != nil {
		if cause := ctx.Err(); cause != nil {
			return false, cause
		}
		p.log(ctx).Warn("track extraction failed",
			logging.String("track", track.Name),
			logging.Error(err))
		return false, nil
	}

	if produced != dest {
		if err := os.Rename(produced, dest); err != nil {
			p.log(ctx).Warn("move extracted audio failed",
				logging.String("track", track.Name),
				logging.Error(err))
			return false, nil
		}
	}
	if _, err := os.Stat(dest); err != nil {
		p.log(ctx).Warn("extraction finished without an output file",
			logging.String("track", track.Name),
			logging.String("dest", dest))
		return false, nil
	}

	p.log(ctx).Debug("track extracted",
		logging.String("track", track.Name),
		logging.String("dest", dest),
		logging.Bool("preview", preview))
	return true, nil
}

// available reports whether the binary exists on PATH. The check runs once
// per provider; a missing binary downgrades the source to empty results
// rather than failing resolution.
func (p *Provider) available() bool {
	p.checkOnce.Do(func() {
		if _, err := p.lookPath(p.binary); err != nil {
			p.logger.Warn("yt-dlp binary not found, source disabled",
				logging.String("binary", p.binary),
				logging.Error(err))
			return
		}
		p.binaryOK = true
	})
	return p.binaryOK
}

// opContext bounds one yt-dlp invocation. Hitting this local deadline is a
// source failure, not caller cancellation; callers separate the two by
// checking their own context.
func (p *Provider) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// outputTemplate turns the destination path into a yt-dlp output template
// plus the file the mp3 post-processor will actually produce.
func outputTemplate(dest string) (template, produced string) {
	base := strings.TrimSuffix(dest, filepath.Ext(dest))
	return base + ".%(ext)s", base + ".mp3"
}
