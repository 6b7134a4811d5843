package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	CacheFile   string `toml:"cache_file" env:"OVERTURE_CACHE_FILE"`
	DownloadDir string `toml:"download_dir" env:"OVERTURE_DOWNLOAD_DIR"`
	LogDir      string `toml:"log_dir"`
}

// Cache contains configuration for the resolution result cache.
type Cache struct {
	Enabled           bool `toml:"enabled"`
	TTLDays           int  `toml:"ttl_days"`
	MaxAlbums         int  `toml:"max_albums"`
	SweepIntervalDays int  `toml:"sweep_interval_days"`
}

// Khinsider contains settings for the HTML catalog source.
type Khinsider struct {
	Enabled           bool   `toml:"enabled"`
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// YouTube contains settings for the yt-dlp backed search source.
type YouTube struct {
	Enabled        bool   `toml:"enabled"`
	Binary         string `toml:"ytdlp_binary" env:"OVERTURE_YTDLP"`
	SearchLimit    int    `toml:"search_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Library contains settings for the local collection source.
type Library struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir" env:"OVERTURE_LIBRARY_DIR"`
	IndexDB string `toml:"index_db"`
}

// Sources groups per-catalog settings plus the fallback priority order.
type Sources struct {
	Priority  []string  `toml:"priority"`
	Khinsider Khinsider `toml:"khinsider"`
	YouTube   YouTube   `toml:"youtube"`
	Library   Library   `toml:"library"`
}

// Scoring contains the thresholds the album and track scorers consume.
type Scoring struct {
	AcceptThreshold   int `toml:"accept_threshold"`
	PreviewMinSeconds int `toml:"preview_min_seconds"`
	PreviewMaxSeconds int `toml:"preview_max_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level" env:"OVERTURE_LOG_LEVEL"`
}

// Config encapsulates all configuration values for Overture.
//
// Configuration sections by subsystem:
//   - Paths: cache file, download directory, log directory
//   - Cache: result cache TTL and size caps
//   - Sources: fallback priority plus per-catalog settings
//   - Scoring: album acceptance threshold and preview duration bounds
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Cache   Cache   `toml:"cache"`
	Sources Sources `toml:"sources"`
	Scoring Scoring `toml:"scoring"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/overture/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has environment overrides applied and all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("overture.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories resolution and fetch need.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.CacheFile), c.Paths.DownloadDir}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Sources.Library.Enabled && c.Sources.Library.IndexDB != "" {
		dirs = append(dirs, filepath.Dir(c.Sources.Library.IndexDB))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TTL returns the cache entry lifetime as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

// SweepInterval returns how often the cache sweep should run.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepIntervalDays) * 24 * time.Hour
}

// PreviewMax returns the configured maximum preview track duration.
func (c *Config) PreviewMax() time.Duration {
	return time.Duration(c.Scoring.PreviewMaxSeconds) * time.Second
}

// PreviewMin returns the configured minimum preview track duration.
func (c *Config) PreviewMin() time.Duration {
	return time.Duration(c.Scoring.PreviewMinSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
