package testsupport

import (
	"testing"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/resultcache"
)

// NewStore opens a result cache store backed by the test config.
func NewStore(t testing.TB, cfg *config.Config) *resultcache.Store {
	t.Helper()
	return resultcache.NewFromConfig(cfg, nil)
}

// NewRegistry builds a registry from the config's priority order and
// registers the given providers.
func NewRegistry(t testing.TB, cfg *config.Config, providers ...catalog.Provider) *catalog.Registry {
	t.Helper()

	priority := make([]catalog.Source, 0, len(cfg.Sources.Priority))
	for _, name := range cfg.Sources.Priority {
		if src, ok := catalog.ParseSource(name); ok {
			priority = append(priority, src)
		}
	}
	registry := catalog.NewRegistry(priority...)
	for _, p := range providers {
		registry.Register(p)
	}
	return registry
}
