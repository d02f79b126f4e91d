// Package assets handles OBJ mesh loading and caching.
package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/midgard-obj/pkg/formats"
)

// Manager loads OBJ files from disk. Each path is parsed once; the resulting
// meshes are read-only and shared by every caller.
type Manager struct {
	opts  formats.OBJOptions
	log   *zap.Logger
	cache *Cache
	group singleflight.Group
}

// NewManager creates a new mesh manager. A nil logger disables logging.
func NewManager(opts formats.OBJOptions, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	opts.Logger = log.Named("obj")
	return &Manager{
		opts:  opts,
		log:   log,
		cache: NewCache(),
	}
}

// Load returns the parsed mesh for path, parsing it on first use.
// Concurrent loads of the same path share one parse.
//
// The returned mesh is the cached instance handed to every caller. It must
// not be modified: its slices and Skipped map are shared.
func (m *Manager) Load(path string) (*formats.OBJ, error) {
	path = filepath.Clean(path)

	// Check cache first
	if obj, ok := m.cache.Get(path); ok {
		return obj, nil
	}

	v, err, shared := m.group.Do(path, func() (any, error) {
		// A parse that finished between the miss and here already filled the cache.
		if obj, ok := m.cache.peek(path); ok {
			return obj, nil
		}
		obj, err := formats.ParseOBJFile(path, m.opts)
		if err != nil {
			return nil, err
		}
		m.cache.Set(path, obj)
		return obj, nil
	})
	if err != nil {
		m.log.Debug("mesh load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("loading mesh %s: %w", path, err)
	}
	if shared {
		m.log.Debug("shared mesh load", zap.String("path", path))
	}
	return v.(*formats.OBJ), nil
}

// Result is the outcome of loading one path in a batch. Mesh is shared
// with the cache and is read-only, as with Load.
type Result struct {
	Path string
	Mesh *formats.OBJ
	Err  error
}

// LoadAll loads paths with at most workers concurrent parses. A failing file
// does not stop the batch; its error is reported in its Result. Results keep
// the order of paths. Only context cancellation aborts the batch.
func (m *Manager) LoadAll(ctx context.Context, paths []string, workers int) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obj, err := m.Load(path)
			results[i] = Result{Path: path, Mesh: obj, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int64) {
	return m.cache.Stats()
}

// Close drops every cached mesh.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is an in-memory map of parsed meshes keyed by path.
type Cache struct {
	data map[string]*formats.OBJ
	mu   sync.RWMutex

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*formats.OBJ),
	}
}

// Get retrieves a mesh from cache.
func (c *Cache) Get(key string) (*formats.OBJ, bool) {
	obj, ok := c.peek(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return obj, ok
}

func (c *Cache) peek(key string) (*formats.OBJ, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.data[key]
	return obj, ok
}

// Set stores a mesh in cache.
func (c *Cache) Set(key string, obj *formats.OBJ) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = obj
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*formats.OBJ)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
