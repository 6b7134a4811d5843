package khinsider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"overture/internal/config"
)

const (
	userAgent      = "overture/1.0 (soundtrack resolver)"
	defaultTimeout = 30 * time.Second
	defaultPerMin  = 20

	// requestBurst lets a short cascade run back to back before the
	// per-minute rate starts spacing requests out.
	requestBurst = 4
)

// client is the rate-limited HTTP layer shared by every provider operation.
type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

func newClient(cfg config.Khinsider) *client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://downloads.khinsider.com"
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultPerMin
	}
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), requestBurst),
	}
}

// absoluteURL resolves site-relative paths against the configured base URL.
// Already absolute URLs, such as the off-site audio hosts the track pages
// link to, pass through unchanged.
func (c *client) absoluteURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// page fetches one HTML page as a string.
func (c *client) page(ctx context.Context, ref string) (string, error) {
	resp, err := c.get(ctx, ref)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ref, err)
	}
	return string(body), nil
}

func (c *client) get(ctx context.Context, ref string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.absoluteURL(ref), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", ref, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, ref)
	}
	return resp, nil
}

// progressWriter counts bytes as they stream through to the destination and
// reports each write to an optional callback.
type progressWriter struct {
	dst     io.Writer
	total   int64
	written int64
	onWrite func(written, total int64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	w.written += int64(n)
	if w.onWrite != nil {
		w.onWrite(w.written, w.total)
	}
	return n, err
}

// download streams one audio file to dest. The file lands under a temporary
// name and is renamed into place only after the full body arrived, so a
// failed transfer never leaves a truncated track behind.
func (c *client) download(ctx context.Context, ref, dest string, onWrite func(written, total int64)) error {
	resp, err := c.get(ctx, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	partial := dest + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create %s: %w", partial, err)
	}

	_, err = io.Copy(&progressWriter{dst: out, total: resp.ContentLength, onWrite: onWrite}, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partial)
		return fmt.Errorf("download %s: %w", ref, err)
	}
	return os.Rename(partial, dest)
}

func searchPath(query string) string {
	return "/search?search=" + url.QueryEscape(query)
}
