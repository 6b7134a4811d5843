// Package direct fetches handles the caller already has: an audio URL or a
// local file path. It never searches, so cascades skip it; the resolver only
// reaches it through explicit album or track hints.
package direct

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"overture/internal/catalog"
	"overture/internal/fileutil"
	"overture/internal/logging"
)

const (
	userAgent       = "overture/1.0 (soundtrack resolver)"
	downloadTimeout = 5 * time.Minute
)

type Provider struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Provider {
	return &Provider{
		httpClient: &http.Client{Timeout: downloadTimeout},
		logger:     logging.NewComponentLogger(logger, "direct"),
	}
}

func (p *Provider) Source() catalog.Source {
	return catalog.SourceDirect
}

// log derives the call's logger from the context so provider lines carry
// the request ID and source the resolver stamped.
func (p *Provider) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, p.logger)
}

func (p *Provider) Capabilities() catalog.Capabilities {
	return catalog.Capabilities{}
}

// Search always reads empty. Direct handles are supplied, not discovered.
func (p *Provider) Search(ctx context.Context, _ string, _ bool) ([]catalog.Album, error) {
	return nil, ctx.Err()
}

// ListTracks turns the album handle into a single synthetic track. A local
// handle that does not exist reads as empty rather than failing later at
// fetch time.
func (p *Provider) ListTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handle := strings.TrimSpace(album.ID)
	if handle == "" {
		p.log(ctx).Warn("empty direct handle")
		return nil, nil
	}
	if !isURL(handle) {
		if _, err := os.Stat(handle); err != nil {
			p.log(ctx).Warn("direct file not found",
				logging.String("path", handle),
				logging.Error(err))
			return nil, nil
		}
	}

	name := strings.TrimSpace(album.Name)
	if name == "" {
		name = handleName(handle)
	}
	return []catalog.Track{{
		ID:     handle,
		Name:   name,
		Source: catalog.SourceDirect,
	}}, nil
}

// FetchTrack streams an HTTP handle or copies a file handle to dest.
func (p *Provider) FetchTrack(ctx context.Context, track catalog.Track, dest string, _ bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	handle := strings.TrimSpace(track.ID)
	if handle == "" {
		p.log(ctx).Warn("empty direct handle")
		return false, nil
	}

	var err error
	if isURL(handle) {
		err = p.download(ctx, handle, dest)
	} else {
		err = fileutil.CopyFile(handle, dest)
	}
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return false, cause
		}
		p.log(ctx).Warn("direct fetch failed",
			logging.String("handle", handle),
			logging.Error(err))
		return false, nil
	}

	p.log(ctx).Debug("direct fetch finished",
		logging.String("handle", handle),
		logging.String("dest", dest))
	return true, nil
}

// download writes the body to a partial file first so a dead transfer never
// leaves a truncated track at dest.
func (p *Provider) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	partial := dest + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partial)
		return err
	}
	return os.Rename(partial, dest)
}

func isURL(handle string) bool {
	return strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://")
}

// handleName derives a display name from the handle's final path element.
func handleName(handle string) string {
	base := handle
	if isURL(handle) {
		if u, err := url.Parse(handle); err == nil && u.Path != "" {
			base = path.Base(u.Path)
		}
	} else {
		base = filepath.Base(handle)
	}

	base = strings.TrimSuffix(base, filepath.Ext(base))
	if decoded, err := url.PathUnescape(base); err == nil {
		base = decoded
	}
	base = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '+':
			return ' '
		}
		return r
	}, base)

	name := strings.Join(strings.Fields(base), " ")
	if name == "" {
		return "Direct download"
	}
	return name
}
