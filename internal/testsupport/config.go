package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"overture/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheFile = filepath.Join(base, "cache", "results.json")
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sources.Library.Dir = filepath.Join(base, "library")
	cfgVal.Sources.Library.IndexDB = filepath.Join(base, "cache", "library.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCacheDisabled turns the result cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithAcceptThreshold overrides the album acceptance threshold.
func WithAcceptThreshold(threshold int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scoring.AcceptThreshold = threshold
	}
}

// WithSourcePriority overrides the fallback order for the aggregate source.
func WithSourcePriority(priority ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sources.Priority = priority
	}
}

// WithLibraryEnabled points the library source at a temp directory.
func WithLibraryEnabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sources.Library.Enabled = true
		if err := os.MkdirAll(b.cfg.Sources.Library.Dir, 0o755); err != nil {
			b.t.Fatalf("mkdir library dir: %v", err)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DownloadDir)
}
