package crawlers

import (
	"sort"
	"strings"
	"sync"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Factory builds a provider's adapters. One provider package registers one
// factory and may return an adapter per sport it serves.
type Factory func(deps *Deps) []*Adapter

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a provider factory under its name. Provider packages call it
// from init; the all package blank-imports them.
func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("crawlers: empty name in Register")
	}
	if f == nil {
		panic("crawlers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("crawlers: duplicate registration for " + n)
	}
	registry[n] = f
}

// AvailableNames lists registered providers in stable order.
func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BySport instantiates every registered provider and returns the adapters
// serving the given sport, ordered by adapter name for deterministic crawls.
func BySport(deps *Deps, sport models.Sport) []*Adapter {
	registryMu.RLock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	factories := make([]Factory, 0, len(names))
	for _, name := range names {
		factories = append(factories, registry[name])
	}
	registryMu.RUnlock()

	var adapters []*Adapter
	for _, f := range factories {
		for _, a := range f(deps) {
			if a.Sport == sport {
				adapters = append(adapters, a)
			}
		}
	}
	sort.Slice(adapters, func(i, j int) bool { return adapters[i].Name < adapters[j].Name })
	return adapters
}
