// Package cache provides a bounded cache of expensive project handles.
//
// The cache is limited both by entry count and by an estimated memory
// budget. Under pressure it evicts the entry with the highest Score, a blend
// of time since last access and inverse hit count.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
)

// ErrEmptyKey is returned when a key normalizes to the empty string
var ErrEmptyKey = errors.New("cache key cannot be empty")

// ResourceCache caches project handles with TTL expiry and size/memory bounds
type ResourceCache struct {
	entries map[string]*entry
	mu      sync.Mutex
	cfg     config.CacheConfig
	builder Builder
	logger  *slog.Logger
	group   singleflight.Group

	hits        uint64
	misses      uint64
	lastCleanup time.Time
	now         func() time.Time

	done      chan struct{} // Signal to stop cleanup goroutine
	closeOnce sync.Once
}

// entry is a cached handle with its access metadata
type entry struct {
	handle     Handle
	createdAt  time.Time
	lastAccess time.Time
	fileCount  int
	memoryMB   float64
	hitCount   uint64
}

// Stats is a point-in-time view of the cache
type Stats struct {
	Size          int          `json:"size"`
	TotalMemoryMB float64      `json:"totalMemoryMB"`
	HitRate       float64      `json:"hitRate"`
	Hits          uint64       `json:"hits"`
	Misses        uint64       `json:"misses"`
	Entries       []EntryStats `json:"entries"`
}

// EntryStats describes one cached handle
type EntryStats struct {
	Key               string        `json:"key"`
	FileCount         int           `json:"fileCount"`
	EstimatedMemoryMB float64       `json:"estimatedMemoryMB"`
	HitCount          uint64        `json:"hitCount"`
	LastAccess        time.Time     `json:"lastAccess"`
	Age               time.Duration `json:"age"`
}

// NewResourceCache creates a cache that builds missing handles with builder.
// Starts a background cleanup goroutine that removes expired handles.
func NewResourceCache(cfg config.CacheConfig, builder Builder, logger *slog.Logger) *ResourceCache {
	if logger == nil {
		logger = slog.Default()
	}

	c := &ResourceCache{
		entries: make(map[string]*entry),
		cfg:     withDefaults(cfg),
		builder: builder,
		logger:  logger,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	c.lastCleanup = c.now()

	// Start cleanup goroutine
	go c.cleanupLoop()

	return c
}

// withDefaults fills unset limits so a zero CacheConfig is usable. The
// memory estimate coefficients may legitimately be zero, so they are only
// replaced when both are zero or either is negative.
func withDefaults(cfg config.CacheConfig) config.CacheConfig {
	d := config.DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = d.TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = d.CleanupInterval
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = d.MaxSize
	}
	if cfg.MaxTotalMemoryMB <= 0 {
		cfg.MaxTotalMemoryMB = d.MaxTotalMemoryMB
	}
	if cfg.MaxProjectMemoryMB <= 0 {
		cfg.MaxProjectMemoryMB = d.MaxProjectMemoryMB
	}
	if (cfg.BaseMemoryMB == 0 && cfg.MemoryPerFileMB == 0) || cfg.BaseMemoryMB < 0 || cfg.MemoryPerFileMB < 0 {
		cfg.BaseMemoryMB = d.BaseMemoryMB
		cfg.MemoryPerFileMB = d.MemoryPerFileMB
	}
	return cfg
}

// NormalizeKey strips trailing path separators. A key made only of
// separators keeps its first one so the filesystem root stays addressable.
func NormalizeKey(key string) string {
	trimmed := strings.TrimRight(key, `/\`)
	if trimmed == "" && key != "" {
		return key[:1]
	}
	return trimmed
}

// GetOrCreate returns the cached handle for key, building it on a miss.
// Handles whose estimated memory exceeds the per-project limit are returned
// but never cached. Build errors are returned unchanged in the chain. A
// caller whose ctx ends while waiting gets ctx.Err(); the build carries on
// for any other waiters and is cached on success.
func (c *ResourceCache) GetOrCreate(ctx context.Context, key string) (Handle, error) {
	key = NormalizeKey(key)
	if key == "" {
		return nil, ErrEmptyKey
	}

	if h, ok := c.lookup(key); ok {
		return h, nil
	}

	// The build runs detached from any one caller so cancelling the caller
	// that started it does not fail the others waiting on the same key.
	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that finished between lookup and DoChan may have filled the key
		if h, ok := c.peek(key); ok {
			return h, nil
		}
		return c.load(context.WithoutCancel(ctx), key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Handle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lookup returns a live entry and records a hit, or records a miss.
// An expired entry found here is removed.
func (c *ResourceCache) lookup(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		if c.live(e, now) {
			e.lastAccess = now
			e.hitCount++
			c.hits++
			return e.handle, true
		}
		delete(c.entries, key)
	}
	c.misses++
	return nil, false
}

func (c *ResourceCache) peek(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && c.live(e, c.now()) {
		return e.handle, true
	}
	return nil, false
}

func (c *ResourceCache) live(e *entry, now time.Time) bool {
	return now.Sub(e.lastAccess) < c.cfg.TTL
}

// load builds the handle outside the lock, then inserts it under the bounds
func (c *ResourceCache) load(ctx context.Context, key string) (Handle, error) {
	start := time.Now()
	handle, err := c.builder.Build(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", key, err)
	}

	fileCount := handle.FileCount()
	memoryMB := c.EstimateMemoryMB(fileCount)
	if memoryMB > c.cfg.MaxProjectMemoryMB {
		c.logger.Warn("Skipping cache for oversized project",
			"key", key,
			"fileCount", fileCount,
			"estimatedMemoryMB", memoryMB,
			"max_project_memory_mb", c.cfg.MaxProjectMemoryMB,
		)
		return handle, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastCleanup) > c.cfg.CleanupInterval {
		c.cleanupLocked(now)
	}

	delete(c.entries, key)
	if len(c.entries) >= c.cfg.MaxSize {
		c.evictLocked(now)
	}
	for len(c.entries) > 0 && c.totalMemoryLocked()+memoryMB > c.cfg.MaxTotalMemoryMB {
		c.evictLocked(now)
	}

	c.entries[key] = &entry{
		handle:     handle,
		createdAt:  now,
		lastAccess: now,
		fileCount:  fileCount,
		memoryMB:   memoryMB,
	}

	c.logger.Debug("Cached project handle",
		"key", key,
		"fileCount", fileCount,
		"estimatedMemoryMB", memoryMB,
		"build_duration", time.Since(start),
		"size", len(c.entries),
	)
	return handle, nil
}

// EstimateMemoryMB returns the estimated footprint of a handle with fileCount files
func (c *ResourceCache) EstimateMemoryMB(fileCount int) float64 {
	return c.cfg.BaseMemoryMB + float64(fileCount)*c.cfg.MemoryPerFileMB
}

// evictLocked removes the worst-scoring entry. Must be called with c.mu held.
func (c *ResourceCache) evictLocked(now time.Time) {
	key, ok := selectVictim(c.entries, now, c.cfg.TTL)
	if !ok {
		return
	}
	e := c.entries[key]
	delete(c.entries, key)

	c.logger.Info("Evicted project handle",
		"key", key,
		"estimatedMemoryMB", e.memoryMB,
		"hitCount", e.hitCount,
		"idle", now.Sub(e.lastAccess),
	)
}

func (c *ResourceCache) totalMemoryLocked() float64 {
	total := 0.0
	for _, e := range c.entries {
		total += e.memoryMB
	}
	return total
}

// Invalidate removes key regardless of TTL. It reports whether an entry existed.
func (c *ResourceCache) Invalidate(key string) bool {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Stats returns the cache contents and lifetime hit rate. Entries are
// ordered by key.
func (c *ResourceCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := Stats{
		Size:    len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: make([]EntryStats, 0, len(c.entries)),
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}

	for key, e := range c.entries {
		stats.TotalMemoryMB += e.memoryMB
		stats.Entries = append(stats.Entries, EntryStats{
			Key:               key,
			FileCount:         e.fileCount,
			EstimatedMemoryMB: e.memoryMB,
			HitCount:          e.hitCount,
			LastAccess:        e.lastAccess,
			Age:               now.Sub(e.createdAt),
		})
	}
	sort.Slice(stats.Entries, func(i, j int) bool {
		return stats.Entries[i].Key < stats.Entries[j].Key
	})
	return stats
}

// Size returns the current number of cached handles
func (c *ResourceCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all cached handles
func (c *ResourceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *ResourceCache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// cleanupLoop periodically removes expired handles
func (c *ResourceCache) cleanupLoop() {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

// cleanup removes expired handles
func (c *ResourceCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked(c.now())
}

func (c *ResourceCache) cleanupLocked(now time.Time) {
	removed := 0
	for key, e := range c.entries {
		if !c.live(e, now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.lastCleanup = now
	if removed > 0 {
		c.logger.Debug("Removed expired project handles", "count", removed)
	}
}
