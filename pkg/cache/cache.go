// Package cache stores finished conversion artifacts.
//
// A converted deck depends only on the HTML document, the local assets it
// references, the conversion options and the converter build. [Keyer]
// folds those into a single key so that an unchanged input can be served
// without starting a browser.
//
// Three backends are provided: [FileCache] for a single machine,
// [RedisCache] for service instances sharing one store, and [NullCache]
// when caching is disabled.
package cache

import (
	"context"
	"time"
)

// TTLDeck is the default lifetime of a converted deck.
const TTLDeck = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry reports
	// hit=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}
