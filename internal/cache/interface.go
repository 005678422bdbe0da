package cache

import (
	"context"
)

// Handle is an expensive resource owned by the cache. FileCount drives the
// memory estimate and is read once, when the handle is created.
type Handle interface {
	FileCount() int
}

// Builder constructs the handle for a normalized key on a cache miss
type Builder interface {
	Build(ctx context.Context, key string) (Handle, error)
}

// BuilderFunc adapts a function to the Builder interface
type BuilderFunc func(ctx context.Context, key string) (Handle, error)

// Build implements Builder
func (f BuilderFunc) Build(ctx context.Context, key string) (Handle, error) {
	return f(ctx, key)
}

// CacheInterface defines the contract for the resource cache
// This interface allows for different cache implementations and easier testing
type CacheInterface interface {
	GetOrCreate(ctx context.Context, key string) (Handle, error)
	Invalidate(key string) bool
	Clear()
	Stats() Stats
	Size() int
	Close()
}
