package remoteregistry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/skosovsky/genbridge"

	"golang.org/x/sync/singleflight"
)

const defaultTTL = 5 * time.Minute

var _ genbridge.ProfileRegistry = (*Registry)(nil)

// Registry caches profiles from a Fetcher for a TTL. Concurrent misses on one name/env pair
// share a single fetch, and a failed fetch is never cached.
type Registry struct {
	fetcher Fetcher
	ttl     time.Duration
	mu      sync.RWMutex
	cache   map[string]cached
	sf      singleflight.Group
}

type cached struct {
	cfg       *genbridge.ModelConfig
	expiresAt time.Time // zero never expires
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL sets how long a fetched profile is served from cache (default 5m). ttl <= 0 caches forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

// New returns a Registry over fetcher. It panics if fetcher is nil.
func New(fetcher Fetcher, opts ...Option) *Registry {
	if fetcher == nil {
		panic("remoteregistry: Fetcher must not be nil")
	}
	r := &Registry{
		fetcher: fetcher,
		ttl:     defaultTTL,
		cache:   make(map[string]cached),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetProfile returns a copy of the profile for name and env, fetching it on a miss or after expiry.
// A missing profile is reported as genbridge.ErrProfileNotFound.
func (r *Registry) GetProfile(ctx context.Context, name, env string) (*genbridge.ModelConfig, error) {
	if err := genbridge.ValidateName(name, env); err != nil {
		return nil, err
	}
	key := name + ":" + env
	if cfg, ok := r.lookup(key, time.Now()); ok {
		return cfg, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		// Shared by every waiter on key: the first caller's cancellation must not fail the others.
		fetchCtx, cancel := detachCancel(ctx)
		defer cancel()
		cfg, err := r.fetcher.Fetch(fetchCtx, name, env)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, fmt.Errorf("%w: fetcher returned no profile for %q", ErrFetchFailed, name)
		}
		r.store(key, cfg)
		return cfg, nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", genbridge.ErrProfileNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	c := v.(*genbridge.ModelConfig).Clone()
	return &c, nil
}

func (r *Registry) lookup(key string, now time.Time) (*genbridge.ModelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ent, ok := r.cache[key]
	if !ok || (!ent.expiresAt.IsZero() && !now.Before(ent.expiresAt)) {
		return nil, false
	}
	c := ent.cfg.Clone()
	return &c, true
}

func (r *Registry) store(key string, cfg *genbridge.ModelConfig) {
	var expiresAt time.Time
	if r.ttl > 0 {
		expiresAt = time.Now().Add(r.ttl)
	}
	r.mu.Lock()
	r.cache[key] = cached{cfg: cfg, expiresAt: expiresAt}
	r.mu.Unlock()
}

// Evict drops every cached environment variant of name.
func (r *Registry) Evict(name string) {
	prefix := name + ":"
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.cache {
		if strings.HasPrefix(key, prefix) {
			delete(r.cache, key)
		}
	}
}

// EvictAll clears the cache.
func (r *Registry) EvictAll() {
	r.mu.Lock()
	r.cache = make(map[string]cached)
	r.mu.Unlock()
}

// Close releases the fetcher's resources when it implements io.Closer (HTTPFetcher does).
func (r *Registry) Close() error {
	if c, ok := r.fetcher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// detachCancel drops parent's cancellation but keeps its deadline, so a shared fetch cannot hang.
func detachCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parent)
	if dl, ok := parent.Deadline(); ok {
		return context.WithDeadline(ctx, dl)
	}
	return context.WithCancel(ctx)
}
