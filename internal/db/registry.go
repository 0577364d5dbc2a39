package db

import (
	"errors"
	"sync"
)

// Registry constructs and memoizes engines. One Registry is created at
// startup and passed by reference to everything that needs an engine;
// there is no package-level instance.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*Engine)}
}

// Get returns the engine for the given configuration, constructing it on
// first use. Identical configurations share one engine instance for the
// process lifetime. Construction failures are returned to the caller and
// are not cached; the next Get with the same configuration tries again
// only because a caller asked, never on the registry's own initiative.
func (r *Registry) Get(cfg Config) (*Engine, error) {
	cfg.applyDefaults()
	key := cfg.key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.engines[key]; ok {
		return engine, nil
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	r.engines[key] = engine
	return engine, nil
}

// Close tears down every engine. Call once at process teardown.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for key, engine := range r.engines {
		if err := engine.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.engines, key)
	}
	return errors.Join(errs...)
}
