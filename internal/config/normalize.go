package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeScoring()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		c.Paths.CacheFile = defaultCacheFile
	}
	if c.Paths.CacheFile, err = expandPath(c.Paths.CacheFile); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() error {
	c.Sources.Priority = normalizePriority(c.Sources.Priority)

	c.Sources.Khinsider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Sources.Khinsider.BaseURL), "/")
	if c.Sources.Khinsider.BaseURL == "" {
		c.Sources.Khinsider.BaseURL = defaultKhinsiderBaseURL
	}
	if c.Sources.Khinsider.TimeoutSeconds <= 0 {
		c.Sources.Khinsider.TimeoutSeconds = defaultKhinsiderTimeout
	}
	if c.Sources.Khinsider.RequestsPerMinute <= 0 {
		c.Sources.Khinsider.RequestsPerMinute = defaultKhinsiderRPM
	}

	c.Sources.YouTube.Binary = strings.TrimSpace(c.Sources.YouTube.Binary)
	if c.Sources.YouTube.Binary == "" {
		c.Sources.YouTube.Binary = defaultYtdlpBinary
	}
	if c.Sources.YouTube.SearchLimit <= 0 {
		c.Sources.YouTube.SearchLimit = defaultYouTubeLimit
	}
	if c.Sources.YouTube.TimeoutSeconds <= 0 {
		c.Sources.YouTube.TimeoutSeconds = defaultYouTubeTimeout
	}

	var err error
	if c.Sources.Library.Dir, err = expandPath(strings.TrimSpace(c.Sources.Library.Dir)); err != nil {
		return fmt.Errorf("sources.library.dir: %w", err)
	}
	if strings.TrimSpace(c.Sources.Library.IndexDB) == "" {
		c.Sources.Library.IndexDB = defaultLibraryIndexDB
	}
	if c.Sources.Library.IndexDB, err = expandPath(c.Sources.Library.IndexDB); err != nil {
		return fmt.Errorf("sources.library.index_db: %w", err)
	}
	return nil
}

func normalizePriority(priority []string) []string {
	if len(priority) == 0 {
		return defaultPriority()
	}
	out := make([]string, 0, len(priority))
	seen := make(map[string]struct{}, len(priority))
	for _, name := range priority {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return defaultPriority()
	}
	return out
}

func (c *Config) normalizeScoring() {
	if c.Scoring.AcceptThreshold <= 0 {
		c.Scoring.AcceptThreshold = defaultAcceptThreshold
	}
	if c.Scoring.PreviewMinSeconds <= 0 {
		c.Scoring.PreviewMinSeconds = defaultPreviewMinSeconds
	}
	if c.Scoring.PreviewMaxSeconds <= 0 {
		c.Scoring.PreviewMaxSeconds = defaultPreviewMaxSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
