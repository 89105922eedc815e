package navtree

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/navpatch/internal/debug"
	"github.com/standardbeagle/navpatch/internal/types"
)

type entry struct {
	module *Module
	err    error
}

// Cache holds at most one module per flag set. Concurrent first requests for
// the same flag set share a single build, and a failed build is remembered
// like a successful one: the host does not change during the process.
type Cache struct {
	builder Builder

	mu      sync.RWMutex
	entries map[types.FeatureFlags]entry
	group   singleflight.Group
	builds  int

	// OnBuild, when set, is called before each build.
	OnBuild func(flags types.FeatureFlags)
}

// NewCache creates an empty cache over builder.
func NewCache(builder Builder) *Cache {
	return &Cache{
		builder: builder,
		entries: make(map[types.FeatureFlags]entry),
	}
}

// Get returns the module for flags, building it on first use. ctx only
// bounds the wait for a build in progress; the build itself always runs to
// completion so its result can be cached.
func (c *Cache) Get(ctx context.Context, flags types.FeatureFlags) (*Module, error) {
	if e, ok := c.lookup(flags); ok {
		return e.module, e.err
	}

	ch := c.group.DoChan(flags.String(), func() (interface{}, error) {
		if e, ok := c.lookup(flags); ok {
			return e.module, e.err
		}
		if c.OnBuild != nil {
			c.OnBuild(flags)
		}
		m, err := c.builder.Build(flags)

		c.mu.Lock()
		c.entries[flags] = entry{module: m, err: err}
		c.builds++
		c.mu.Unlock()

		if err != nil {
			debug.LogEngine("build for %s failed: %v\n", flags, err)
		}
		return m, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Module), nil
	}
}

func (c *Cache) lookup(flags types.FeatureFlags) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[flags]
	return e, ok
}

// Stats reports the number of cached flag sets and builds run so far.
func (c *Cache) Stats() (entries, builds int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), c.builds
}
