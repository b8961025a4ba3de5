package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestAddAndList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	first, err := s.Add(ctx, Item{Tool: "Market Advisory", Query: "onion", Response: "₹1,800", Timestamp: base, Kind: KindVoice})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := s.Add(ctx, Item{Tool: "Subsidy Navigator", Query: "pm kisan", Timestamp: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, KindText, second.Kind)

	items, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, "₹1,800", items[1].Response)
	assert.Equal(t, KindVoice, items[1].Kind)
	assert.True(t, items[1].Timestamp.Equal(base))

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, s.Clear(ctx))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(context.Background(), Item{Tool: "Crop Diagnosis", Query: "leaf spots", Kind: KindImage})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	items, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "leaf spots", items[0].Query)
	assert.Equal(t, path, s.Path())
}

func TestSampleItems(t *testing.T) {
	now := time.Date(2025, 1, 15, 18, 0, 0, 0, time.Local)
	items := SampleItems(now)
	require.Len(t, items, 3)
	assert.Equal(t, "Wheat leaves turning yellow", items[0].Query)
	assert.Equal(t, "PM-KISAN scheme eligibility", items[2].Query)

	groups := GroupByDay(items, now)
	require.Len(t, groups, 2)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Len(t, groups[1].Items, 1)
}

func TestSampleItems_EarlyMorning(t *testing.T) {
	now := time.Date(2025, 1, 15, 7, 0, 0, 0, time.Local)
	items := SampleItems(now)

	for _, it := range items {
		assert.False(t, it.Timestamp.After(now), "%s is in the future", it.Query)
		assert.Contains(t, it.Ago(now), "ago")
	}
	assert.True(t, items[0].Timestamp.After(items[1].Timestamp), "newest first")
	assert.Equal(t, "Today", DayLabel(items[0].Timestamp, now))
}

func TestDayLabel(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, "Today", DayLabel(now.Add(-10*time.Minute), now))
	assert.Equal(t, "Yesterday", DayLabel(now.Add(-time.Hour), now))
	assert.Equal(t, "12 Jan 2025", DayLabel(now.AddDate(0, 0, -3), now))
}

func TestItemAgo(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	it := Item{Timestamp: now.Add(-3 * time.Hour)}
	assert.Equal(t, "3 hours ago", it.Ago(now))
}
