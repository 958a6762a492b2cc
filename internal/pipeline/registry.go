// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"net/url"
	"strings"
	"sync"

	"github.com/pdiddy/gameasset-dl/internal/sources"
)

// Registry maps stable source names to adapters. Names keep their first
// registration order; registering a name again replaces the adapter in place.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	adapters map[string]sources.Adapter
}

// NewRegistry returns a registry holding adapters in the given order.
func NewRegistry(adapters ...sources.Adapter) *Registry {
	r := &Registry{adapters: make(map[string]sources.Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds a. A colliding name silently replaces the earlier adapter.
func (r *Registry) Register(a sources.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Info().Name
	if _, ok := r.adapters[name]; !ok {
		r.order = append(r.order, name)
	}
	r.adapters[name] = a
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Adapters returns registered adapters in registration order.
func (r *Registry) Adapters() []sources.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]sources.Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// Describe returns the identity and capabilities of name.
func (r *Registry) Describe(name string) (sources.Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return sources.Info{}, false
	}
	return a.Info(), true
}

// Get returns the adapter registered as name or an *UnknownSourceError.
func (r *Registry) Get(name string) (sources.Adapter, error) {
	r.mu.RLock()
	a, ok := r.adapters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownSourceError{Name: name, Available: r.Names()}
	}
	return a, nil
}

// ForLink returns the adapter whose origin host serves link. Subdomains of
// an origin match too, so creator pages like someone.itch.io route to itch.
func (r *Registry) ForLink(link string) (sources.Adapter, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	host := strings.ToLower(u.Hostname())
	for _, a := range r.Adapters() {
		o, err := url.Parse(a.Info().Origin)
		if err != nil {
			continue
		}
		origin := strings.ToLower(o.Hostname())
		if host == origin || strings.HasSuffix(host, "."+origin) {
			return a, true
		}
	}
	return nil, false
}
