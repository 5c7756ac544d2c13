package coding

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/TextCoder/internal/intelligence/rules"
)

// Engine cache keys.
const (
	DefaultEngineKey = "default"
	presetKeyPrefix  = "preset:"
)

// PresetEngineKey returns the cache key of the engine built for a preset.
func PresetEngineKey(presetKey string) string { return presetKeyPrefix + presetKey }

// EngineCache holds frozen engines keyed by configuration identity. Concurrent
// misses on one key share a single build. A build that overlaps an
// invalidation is returned to its callers but not cached.
type EngineCache struct {
	mu      sync.RWMutex
	engines map[string]*rules.Engine
	gen     uint64
	group   singleflight.Group
}

// NewEngineCache returns an empty cache.
func NewEngineCache() *EngineCache {
	return &EngineCache{engines: make(map[string]*rules.Engine)}
}

// Get returns the engine cached under key, calling build on a miss. A failed
// build is not cached.
func (c *EngineCache) Get(key string, build func() (*rules.Engine, error)) (*rules.Engine, error) {
	c.mu.RLock()
	e, ok := c.engines[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	// Callers arriving after an invalidation never join a stale build.
	v, err, _ := c.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		c.mu.RLock()
		e, ok := c.engines[key]
		c.mu.RUnlock()
		if ok {
			return e, nil
		}
		e, err := build()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.engines[key] = e
		}
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rules.Engine), nil
}

// Invalidate drops every cached engine.
func (c *EngineCache) Invalidate() {
	c.mu.Lock()
	c.engines = make(map[string]*rules.Engine)
	c.gen++
	c.mu.Unlock()
}

// InvalidatePresets drops the preset engines and keeps the default one.
// It returns the number dropped.
func (c *EngineCache) InvalidatePresets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	n := 0
	for k := range c.engines {
		if strings.HasPrefix(k, presetKeyPrefix) {
			delete(c.engines, k)
			n++
		}
	}
	return n
}

// Len returns the number of cached engines.
func (c *EngineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.engines)
}

//Personal.AI order the ending
