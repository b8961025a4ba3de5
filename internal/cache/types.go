package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrCacheMiss is returned when an item is absent or expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted is returned when a stored entry cannot be decoded
	ErrCacheCorrupted = errors.New("cache data corrupted")

	// ErrEmptyKey is returned when an operation is given an empty key
	ErrEmptyKey = errors.New("cache key cannot be empty")
)

const (
	// DefaultPrefix namespaces every cache key in the underlying store.
	DefaultPrefix = "mykisan_"

	// DefaultTTL is used when Set is called with a non-positive ttl.
	DefaultTTL = time.Hour
)

// Store is the raw persistence layer beneath the cache. It mirrors a
// browser-style storage: opaque string keys mapped to text values.
type Store interface {
	// GetItem returns the stored value and whether it exists.
	GetItem(key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	// Keys lists every key currently held by the store.
	Keys() ([]string, error)
}

// Entry is the persisted envelope of a cached value. Timestamp and TTL are
// stored in milliseconds.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl"`
}

// CreatedAt returns the creation time of the entry.
func (e Entry) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Expired reports whether the entry is past its TTL at now. An entry is
// valid while now - timestamp <= ttl.
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp > e.TTL
}

// ExpiresAt returns the last instant at which the entry is still valid.
func (e Entry) ExpiresAt() time.Time {
	return time.UnixMilli(e.Timestamp + e.TTL)
}

// Stats holds simple counters for a Cache.
type Stats struct {
	Hits     int64
	Misses   int64
	Expired  int64
	Corrupt  int64
	Writes   int64
	Removals int64
}

// HitRate returns hits / (hits + misses), or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
