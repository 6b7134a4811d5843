package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
	"overture/internal/resolver"
	"overture/internal/resultcache"
	"overture/internal/sources/direct"
	"overture/internal/sources/khinsider"
	"overture/internal/sources/library"
	"overture/internal/sources/youtube"
)

// commandContext carries lazily built session state between commands.
// Tests preseed the struct fields directly; the ensure methods only
// construct what is still nil.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	configErr  error
	cfg        *config.Config
	cfgPath    string
	cfgExists  bool

	sessionOnce sync.Once
	sessionErr  error
	logger      *slog.Logger
	store       *resultcache.Store
	registry    *catalog.Registry
	engine      *resolver.Engine
	library     *library.Provider
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.cfg != nil {
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.cfg = cfg
		c.cfgPath = resolvedPath
		c.cfgExists = exists
	})
	return c.cfg, c.configErr
}

// ensureSession builds the logger, cache store, provider registry, and
// engine once per process.
func (c *commandContext) ensureSession() error {
	c.sessionOnce.Do(func() {
		if c.engine != nil {
			return
		}
		cfg, err := c.ensureConfig()
		if err != nil {
			c.sessionErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.sessionErr = err
			return
		}
		c.logger = logger
		if c.store == nil {
			c.store = resultcache.NewFromConfig(cfg, logger)
		}
		registry, lib, err := buildRegistry(cfg, logger)
		if err != nil {
			c.sessionErr = err
			return
		}
		c.registry = registry
		c.library = lib
		engine, err := resolver.New(cfg, registry, c.store, logger)
		if err != nil {
			c.sessionErr = err
			return
		}
		c.engine = engine
	})
	return c.sessionErr
}

func (c *commandContext) ensureEngine() (*resolver.Engine, error) {
	if err := c.ensureSession(); err != nil {
		return nil, err
	}
	return c.engine, nil
}

// ensureStore opens the result cache without building the full session;
// cache maintenance must work even when a source is misconfigured.
func (c *commandContext) ensureStore() (*resultcache.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.store = resultcache.NewFromConfig(cfg, nil)
	return c.store, nil
}

func (c *commandContext) cacheDisabledNote() string {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil || cfg.Cache.Enabled {
		return ""
	}
	return "Result cache is disabled (set cache.enabled = true in the config)"
}

func (c *commandContext) shutdown() {
	if c.library != nil {
		_ = c.library.Close()
	}
}

// buildRegistry registers a provider for every enabled source. The direct
// source has no configuration and is always available for explicit handles.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*catalog.Registry, *library.Provider, error) {
	priority := make([]catalog.Source, 0, len(cfg.Sources.Priority))
	for _, name := range cfg.Sources.Priority {
		src, ok := catalog.ParseSource(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown source %q in sources.priority", name)
		}
		if src.Concrete() {
			priority = append(priority, src)
		}
	}
	registry := catalog.NewRegistry(priority...)

	if cfg.Sources.Khinsider.Enabled {
		registry.Register(khinsider.New(cfg.Sources.Khinsider, logger))
	}
	if cfg.Sources.YouTube.Enabled {
		registry.Register(youtube.New(cfg.Sources.YouTube, cfg.PreviewMax(), logger))
	}
	var lib *library.Provider
	if cfg.Sources.Library.Enabled {
		opened, err := library.Open(cfg.Sources.Library, logger)
		if err != nil {
			return nil, nil, err
		}
		lib = opened
		registry.Register(lib)
	}
	registry.Register(direct.New(logger))

	return registry, lib, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
