package fileregistry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/manifest"
)

// Ensures Registry implements genbridge.ProfileRegistry.
var _ genbridge.ProfileRegistry = (*Registry)(nil)

// Registry loads model profiles from the filesystem (lazy, cached).
type Registry struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*genbridge.ModelConfig
}

// New creates a Registry that reads YAML profiles from dir.
func New(dir string) *Registry {
	return &Registry{
		dir:   dir,
		cache: make(map[string]*genbridge.ModelConfig),
	}
}

// GetProfile returns a copy of the profile for name and env. Lazy-loads and caches.
// File resolution: {dir}/{name}.{env}.yaml or .yml, fallback {dir}/{name}.yaml or .yml.
func (r *Registry) GetProfile(ctx context.Context, name, env string) (*genbridge.ModelConfig, error) {
	if err := genbridge.ValidateName(name, env); err != nil {
		return nil, err
	}
	key := name + ":" + env
	r.mu.RLock()
	cfg, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return clone(cfg), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok = r.cache[key]; ok {
		return clone(cfg), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	for _, file := range manifest.CandidateFiles(name, env) {
		cfg, err := manifest.ParseFile(filepath.Join(r.dir, file))
		if err == nil {
			r.cache[key] = cfg
			return clone(cfg), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q", genbridge.ErrProfileNotFound, name)
}

// Reload clears the cache (for hot-reload in development).
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*genbridge.ModelConfig)
}

func clone(cfg *genbridge.ModelConfig) *genbridge.ModelConfig {
	c := cfg.Clone()
	return &c
}
