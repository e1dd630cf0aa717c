// Package tools holds the process-wide registry of managed entity types.
// Registrations happen during startup wiring; after Freeze the registry is
// immutable and safe for concurrent lookup.
package tools

import (
	"fmt"
	"sync"

	"github.com/recordhub/recordhub/internal/repository"
)

// Entry binds an entity name to the pieces generic infrastructure needs.
type Entry struct {
	Application string
	Entity      string
	Importer    repository.ImportTarget
}

type Registry struct {
	mu      sync.RWMutex
	frozen  bool
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]Entry{},
	}
}

// Register adds an entity binding. It fails on duplicate names and after the
// registry has been frozen.
func (r *Registry) Register(name string, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot register %q", name)
	}

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("entity %q is already registered", name)
	}

	r.entries[name] = entry

	return nil
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]

	return entry, ok
}

// Names returns the registered entity names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	return names
}
