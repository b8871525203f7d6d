// Package cache provides the suggestion cache used by the candidate ranker.
//
// The cache is never a source of truth: implementations swallow backend
// errors, log them and report a miss.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys. A key may be attached to
// tags so that every key carrying a tag can be dropped at once.
type Cache interface {
	// Get returns the value stored under key. ok is false on a miss or
	// when the backend is unavailable.
	Get(ctx context.Context, key string) (value []byte, ok bool)

	// Set stores value under key for ttl and records key under every tag.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string)

	// Invalidate removes a single key, or every key matching a glob
	// pattern when keyOrPattern contains '*', '?' or '['.
	Invalidate(ctx context.Context, keyOrPattern string)

	// InvalidateTag removes every key recorded under tag.
	InvalidateTag(ctx context.Context, tag string)

	// Generation returns a counter that every Invalidate and InvalidateTag
	// advances. ok is false when the backend is unavailable.
	Generation(ctx context.Context) (gen uint64, ok bool)

	// SetIfGeneration behaves like Set but stores nothing when an
	// invalidation happened since gen was read. It reports whether the
	// value was stored.
	SetIfGeneration(ctx context.Context, gen uint64, key string, value []byte, ttl time.Duration, tags ...string) bool

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Noop is a Cache that stores nothing.
type Noop struct{}

// NewNoop returns a cache that always misses.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string) ([]byte, bool)                     { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration, ...string) {}
func (Noop) Invalidate(context.Context, string)                            {}
func (Noop) InvalidateTag(context.Context, string)                         {}
func (Noop) Ping(context.Context) error                                    { return nil }
func (Noop) Generation(context.Context) (uint64, bool)                     { return 0, false }

func (Noop) SetIfGeneration(context.Context, uint64, string, []byte, time.Duration, ...string) bool {
	return false
}
