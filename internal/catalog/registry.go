package catalog

import "sync"

// Registry holds the provider for each source plus the priority order used
// when resolving with SourceAll. Dispatch is an explicit map lookup keyed by
// Source.
type Registry struct {
	mu        sync.RWMutex
	providers map[Source]Provider
	order     []Source
	priority  []Source
}

// NewRegistry returns a registry whose fallback chain follows the given
// priority. Sources registered but absent from the priority list are
// appended in registration order.
func NewRegistry(priority ...Source) *Registry {
	return &Registry{
		providers: make(map[Source]Provider),
		priority:  append([]Source(nil), priority...),
	}
}

// Register adds or replaces the provider for its source.
func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	src := p.Source()
	if _, exists := r.providers[src]; !exists {
		r.order = append(r.order, src)
	}
	r.providers[src] = p
}

// Lookup returns the provider for a source, if registered.
func (r *Registry) Lookup(src Source) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[src]
	return p, ok
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Source(nil), r.order...)
}

// Chain returns the registered providers in fallback order: priority
// entries first, then any remaining registrations.
func (r *Registry) Chain() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := make([]Provider, 0, len(r.order))
	seen := make(map[Source]struct{}, len(r.order))
	for _, src := range r.priority {
		if p, ok := r.providers[src]; ok {
			chain = append(chain, p)
			seen[src] = struct{}{}
		}
	}
	for _, src := range r.order {
		if _, done := seen[src]; done {
			continue
		}
		chain = append(chain, r.providers[src])
	}
	return chain
}
