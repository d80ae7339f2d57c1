// Package cache stores acquired revision logs between runs.
//
// Only the raw history is cached. Lane layouts are cheap to recompute and
// are always derived fresh from the cached history.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the user cache directory.
//   - [RedisCache]: a shared Redis instance, for servers and CI.
//   - [MongoCache]: a MongoDB collection with a TTL index.
//   - [NullCache]: caching disabled.
//
// # Keys
//
// A [Keyer] derives keys from the repository, the resolved tip commits and
// the query options. Because the tips are part of the key, a new commit or a
// moved branch produces a new key and stale entries simply age out.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// TTLHistory is the default lifetime of a cached revision log.
const TTLHistory = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value. A missing or expired entry is reported
	// as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// HistoryKeyOpts are the query options that change the cached log.
type HistoryKeyOpts struct {
	Ref         string `json:"ref,omitempty"`
	All         bool   `json:"all,omitempty"`
	FirstParent bool   `json:"first_parent,omitempty"`
	MaxCount    int    `json:"max_count,omitempty"`
	Reader      string `json:"reader,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// HistoryKey returns the key of the revision log of repo starting at
	// tips.
	HistoryKey(repo string, tips []revision.ID, opts HistoryKeyOpts) string
}

// DefaultKeyer produces "history:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HistoryKey implements [Keyer].
func (DefaultKeyer) HistoryKey(repo string, tips []revision.ID, opts HistoryKeyOpts) string {
	return hashKey("history", repo, tips, opts)
}
