package config

import (
	"fmt"
	"sort"
	"sync"

	"deployfreq/internal/deploys"
)

// Registry manages the collection of configured targets
type Registry struct {
	mu          sync.RWMutex
	targets     map[string]deploys.Target
	defaultName string
}

// NewRegistry creates a new target registry
func NewRegistry(targets map[string]deploys.Target, defaultName string) *Registry {
	return &Registry{
		targets:     targets,
		defaultName: defaultName,
	}
}

// Get retrieves a target by name. An empty name selects the default target.
func (r *Registry) Get(name string) (deploys.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultName
		if name == "" {
			return deploys.Target{}, fmt.Errorf("no target given and no default_target configured")
		}
	}

	target, exists := r.targets[name]
	if !exists {
		return deploys.Target{}, fmt.Errorf("target '%s' not found", name)
	}

	return target, nil
}

// List returns all target names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Count returns the number of targets
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.targets)
}

// DefaultName returns the name of the default target, if any
func (r *Registry) DefaultName() string {
	return r.defaultName
}
