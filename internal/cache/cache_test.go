package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T) (*Cache, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	return New(store, WithClock(clock.Now)), store, clock
}

type prices struct {
	Crop  string `json:"crop"`
	Price string `json:"current_price"`
}

func TestCache_SetThenGetBeforeTTL(t *testing.T) {
	c, _, clock := newTestCache(t)

	want := prices{Crop: "rice", Price: "₹2,450 per quintal"}
	require.NoError(t, c.Set("market:rice", want, time.Minute))

	clock.Advance(59 * time.Second)

	var got prices
	require.True(t, c.GetInto("market:rice", &got))
	assert.Equal(t, want, got)
}

func TestCache_TTLBoundaryIsInclusive(t *testing.T) {
	c, _, clock := newTestCache(t)

	require.NoError(t, c.Set("k", "v", time.Second))
	clock.Advance(time.Second)

	_, ok := c.Get("k")
	assert.True(t, ok, "entry must still be valid at exactly ttl")
}

func TestCache_ExpiredEntryIsDeleted(t *testing.T) {
	c, store, clock := newTestCache(t)

	require.NoError(t, c.Set("k", "v", time.Second))
	clock.Advance(time.Second + time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)

	_, present, err := store.GetItem(DefaultPrefix + "k")
	require.NoError(t, err)
	assert.False(t, present, "expired entry should be removed from the store")
	assert.Equal(t, int64(1), c.Stats().Expired)
}

func TestCache_DefaultTTL(t *testing.T) {
	c, _, clock := newTestCache(t)

	require.NoError(t, c.Set("k", 1, 0))

	entry, err := c.GetEntry("k")
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL.Milliseconds(), entry.TTL)

	clock.Advance(DefaultTTL)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_OverwriteIsLastWriterWins(t *testing.T) {
	c, _, clock := newTestCache(t)

	require.NoError(t, c.Set("k", "first", time.Second))
	clock.Advance(900 * time.Millisecond)
	require.NoError(t, c.Set("k", "second", time.Second))
	clock.Advance(900 * time.Millisecond)

	var got string
	require.True(t, c.GetInto("k", &got))
	assert.Equal(t, "second", got)
}

func TestCache_RemoveThenGet(t *testing.T) {
	c, _, _ := newTestCache(t)

	// Removing an absent key is a no-op.
	require.NoError(t, c.Remove("missing"))

	require.NoError(t, c.Set("k", "v", time.Minute))
	require.NoError(t, c.Remove("k"))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_ClearLeavesForeignKeys(t *testing.T) {
	c, store, _ := newTestCache(t)

	require.NoError(t, c.Set("a", 1, time.Minute))
	require.NoError(t, c.Set("b", 2, time.Minute))
	require.NoError(t, store.SetItem("theme", "dark"))
	require.NoError(t, store.SetItem("other_a", "x"))

	require.NoError(t, c.Clear())

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"other_a", "theme"}, keys)

	ns, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestCache_CorruptEntryIsMissAndDropped(t *testing.T) {
	c, store, _ := newTestCache(t)

	require.NoError(t, store.SetItem(DefaultPrefix+"bad", "{not json"))

	_, ok := c.Get("bad")
	assert.False(t, ok)

	_, present, _ := store.GetItem(DefaultPrefix + "bad")
	assert.False(t, present)
	assert.Equal(t, int64(1), c.Stats().Corrupt)

	require.NoError(t, store.SetItem(DefaultPrefix+"empty", `{"timestamp":1,"ttl":1000}`))
	_, err := c.GetEntry("empty")
	assert.ErrorIs(t, err, ErrCacheCorrupted)

	_, err = c.GetEntry("empty")
	assert.ErrorIs(t, err, ErrCacheMiss, "corrupt entry should be gone after the first read")
	assert.Equal(t, int64(2), c.Stats().Corrupt)
}

func TestCache_PersistedLayout(t *testing.T) {
	c, store, clock := newTestCache(t)

	require.NoError(t, c.Set("k", map[string]int{"n": 1}, 2*time.Second))

	raw, ok, err := store.GetItem(DefaultPrefix + "k")
	require.NoError(t, err)
	require.True(t, ok)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	assert.JSONEq(t, `{"n":1}`, string(fields["data"]))
	assert.Equal(t, "2000", string(fields["ttl"]))

	var ts int64
	require.NoError(t, json.Unmarshal(fields["timestamp"], &ts))
	assert.Equal(t, clock.Now().UnixMilli(), ts)
}

func TestCache_EmptyKey(t *testing.T) {
	c, _, _ := newTestCache(t)

	assert.ErrorIs(t, c.Set("", 1, time.Second), ErrEmptyKey)
	assert.ErrorIs(t, c.Remove(""), ErrEmptyKey)
	_, ok := c.Get("")
	assert.False(t, ok)
	_, err := c.GetEntry("")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestCache_Prefix(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, WithPrefix("test_"))

	if err := c.Set("k", true, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := store.GetItem("test_k"); !ok {
		t.Error("expected value under custom prefix")
	}
}

func TestStats_HitRate(t *testing.T) {
	if (Stats{}).HitRate() != 0 {
		t.Error("expected zero hit rate with no lookups")
	}
	s := Stats{Hits: 3, Misses: 1}
	if s.HitRate() != 0.75 {
		t.Errorf("HitRate = %f, want 0.75", s.HitRate())
	}
}
