package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownSources = map[string]struct{}{
	"khinsider": {},
	"youtube":   {},
	"library":   {},
	"direct":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if err := ensurePositiveMap(map[string]int{
		"cache.ttl_days":            c.Cache.TTLDays,
		"cache.max_albums":          c.Cache.MaxAlbums,
		"cache.sweep_interval_days": c.Cache.SweepIntervalDays,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		return errors.New("paths.cache_file must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateSources() error {
	if len(c.Sources.Priority) == 0 {
		return errors.New("sources.priority must list at least one source")
	}
	for _, name := range c.Sources.Priority {
		if _, ok := knownSources[name]; !ok {
			return fmt.Errorf("sources.priority contains unknown source %q", name)
		}
	}
	if c.Sources.Khinsider.Enabled {
		if !strings.HasPrefix(c.Sources.Khinsider.BaseURL, "http://") && !strings.HasPrefix(c.Sources.Khinsider.BaseURL, "https://") {
			return fmt.Errorf("sources.khinsider.base_url must be an http(s) URL, got %q", c.Sources.Khinsider.BaseURL)
		}
	}
	if c.Sources.YouTube.Enabled && c.Sources.YouTube.Binary == "" {
		return errors.New("sources.youtube.ytdlp_binary must be set when sources.youtube.enabled is true")
	}
	if c.Sources.Library.Enabled {
		if strings.TrimSpace(c.Sources.Library.Dir) == "" {
			return errors.New("sources.library.dir must be set when sources.library.enabled is true")
		}
		if strings.TrimSpace(c.Sources.Library.IndexDB) == "" {
			return errors.New("sources.library.index_db must be set when sources.library.enabled is true")
		}
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.AcceptThreshold <= 0 {
		return errors.New("scoring.accept_threshold must be positive")
	}
	if c.Scoring.PreviewMinSeconds <= 0 {
		return errors.New("scoring.preview_min_seconds must be positive")
	}
	if c.Scoring.PreviewMaxSeconds <= c.Scoring.PreviewMinSeconds {
		return errors.New("scoring.preview_max_seconds must be greater than scoring.preview_min_seconds")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
