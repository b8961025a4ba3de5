package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Cache stores JSON values under a namespaced key with an expiry check.
// Writes are last-writer-wins.
type Cache struct {
	store  Store
	prefix string
	now    func() time.Time

	mu    sync.Mutex
	stats Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithClock sets the time source used for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache on top of store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefix returns the key namespace.
func (c *Cache) Prefix() string {
	return c.prefix
}

// Set stores value under key with the current time and ttl. A non-positive
// ttl means DefaultTTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	entry := Entry{
		Data:      data,
		Timestamp: c.now().UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.store.SetItem(c.prefix+key, string(raw)); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	c.mu.Lock()
	c.stats.Writes++
	c.mu.Unlock()
	return nil
}

// Get returns the raw JSON stored under key. It reports false when the key
// is absent, expired or corrupt. Expired and corrupt entries are deleted.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	entry, err := c.lookup(key)
	if err != nil {
		return nil, false
	}
	return entry.Data, true
}

// GetInto decodes the value stored under key into out. A value that cannot
// be decoded into out counts as a miss.
func (c *Cache) GetInto(key string, out any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Debug("cache value does not fit target", "key", key, "error", err)
		return false
	}
	return true
}

// GetEntry returns the full envelope for key, applying the same expiry rules
// as Get. Absent and expired keys yield ErrCacheMiss; an entry that cannot be
// decoded yields ErrCacheCorrupted and is deleted.
func (c *Cache) GetEntry(key string) (Entry, error) {
	return c.lookup(key)
}

func (c *Cache) lookup(key string) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}
	storeKey := c.prefix + key

	raw, ok, err := c.store.GetItem(storeKey)
	if err != nil {
		log.Warn("cache read failed", "key", key, "error", err)
		c.count(func(s *Stats) { s.Misses++ })
		return Entry{}, fmt.Errorf("%w: %w", ErrCacheMiss, err)
	}
	if !ok {
		c.count(func(s *Stats) { s.Misses++ })
		return Entry{}, ErrCacheMiss
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Data == nil {
		log.Debug("dropping corrupt cache entry", "key", key, "error", err)
		_ = c.store.RemoveItem(storeKey)
		c.count(func(s *Stats) { s.Misses++; s.Corrupt++ })
		if err == nil {
			return Entry{}, fmt.Errorf("%w: %s has no data", ErrCacheCorrupted, key)
		}
		return Entry{}, fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
	}

	if entry.Expired(c.now()) {
		if err := c.store.RemoveItem(storeKey); err != nil {
			log.Warn("failed to remove expired cache entry", "key", key, "error", err)
		}
		c.count(func(s *Stats) { s.Misses++; s.Expired++ })
		return Entry{}, ErrCacheMiss
	}

	c.count(func(s *Stats) { s.Hits++ })
	return entry, nil
}

// Remove deletes key unconditionally. Removing an absent key is a no-op.
func (c *Cache) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := c.store.RemoveItem(c.prefix + key); err != nil {
		return err
	}
	c.count(func(s *Stats) { s.Removals++ })
	return nil
}

// Clear deletes every entry under the namespace. Keys outside the namespace
// are left alone.
func (c *Cache) Clear() error {
	keys, err := c.store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, c.prefix) {
			continue
		}
		if err := c.store.RemoveItem(k); err != nil {
			return fmt.Errorf("failed to clear %q: %w", k, err)
		}
		c.count(func(s *Stats) { s.Removals++ })
	}
	return nil
}

// Keys lists the un-prefixed keys currently stored under the namespace,
// including ones that have expired but not yet been read.
func (c *Cache) Keys() ([]string, error) {
	all, err := c.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, c.prefix) {
			keys = append(keys, strings.TrimPrefix(k, c.prefix))
		}
	}
	return keys, nil
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) count(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
