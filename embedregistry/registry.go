package embedregistry

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/manifest"
)

// Registry holds every profile parsed from an fs.FS at construction (eager). No mutex; read-only after New.
var _ genbridge.ProfileRegistry = (*Registry)(nil)

type Registry struct {
	cache map[string]*genbridge.ModelConfig
}

// New walks fsys, parses every .yaml/.yml file under root, and returns a Registry.
// Key format: "name:" for "name.yaml", "name:env" for "name.env.yaml".
func New(fsys fs.FS, root string) (*Registry, error) {
	r := &Registry{cache: make(map[string]*genbridge.ModelConfig)}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name, env, ok := manifest.SplitFileName(p)
		if !ok {
			return nil
		}
		cfg, err := manifest.ParseFS(fsys, p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		r.cache[name+":"+env] = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetProfile returns a copy of the profile for name and env.
// Prefers name:env; falls back to the base file.
func (r *Registry) GetProfile(ctx context.Context, name, env string) (*genbridge.ModelConfig, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := genbridge.ValidateName(name, env); err != nil {
		return nil, err
	}
	cfg, ok := r.cache[name+":"+env]
	if !ok {
		cfg, ok = r.cache[name+":"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", genbridge.ErrProfileNotFound, name)
	}
	c := cfg.Clone()
	return &c, nil
}

// Names returns the sorted base names of all loaded profiles.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cache))
	for key := range r.cache {
		name, _, _ := strings.Cut(key, ":")
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}
