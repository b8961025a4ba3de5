// Package history keeps the farmer's past questions and answers in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver
)

// Kind is how a question was asked.
type Kind string

const (
	KindText  Kind = "text"
	KindVoice Kind = "voice"
	KindImage Kind = "image"
)

// ErrEmptyPath is returned by Open when no database path is given.
var ErrEmptyPath = errors.New("history db path is empty")

// Item is one exchange with a tool.
type Item struct {
	ID        string
	Tool      string
	Query     string
	Response  string
	Timestamp time.Time
	Kind      Kind
}

// Ago returns a human friendly age such as "3 hours ago".
func (i Item) Ago(now time.Time) string {
	return humanize.RelTime(i.Timestamp, now, "ago", "from now")
}

// Store persists items. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS history (
		id         TEXT PRIMARY KEY,
		tool       TEXT NOT NULL,
		query      TEXT NOT NULL DEFAULT '',
		response   TEXT NOT NULL DEFAULT '',
		kind       TEXT NOT NULL DEFAULT 'text',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at DESC);
	`)
	return err
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add stores item, assigning an id and timestamp when missing, and returns
// the stored item.
func (s *Store) Add(ctx context.Context, item Item) (Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	if item.Kind == "" {
		item.Kind = KindText
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, tool, query, response, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Tool, item.Query, item.Response, string(item.Kind), item.Timestamp.UnixMilli(),
	)
	if err != nil {
		return Item{}, fmt.Errorf("insert history item: %w", err)
	}
	return item, nil
}

// List returns up to limit items, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Item, error) {
	q := `SELECT id, tool, query, response, kind, created_at FROM history ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var items []Item
	for rows.Next() {
		var (
			it   Item
			kind string
			ms   int64
		)
		if err := rows.Scan(&it.ID, &it.Tool, &it.Query, &it.Response, &kind, &ms); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		it.Kind = Kind(kind)
		it.Timestamp = time.UnixMilli(ms)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n)
	return n, err
}

// Clear deletes every item.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

// SampleItems returns the starter conversations shown before anything has
// been asked, dated relative to now. None of them lies in the future of now.
func SampleItems(now time.Time) []Item {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	at := func(offset, floor time.Duration) time.Time {
		t := today.Add(offset)
		if latest := now.Add(-floor); t.After(latest) {
			return latest
		}
		return t
	}
	return []Item{
		{
			ID:        "sample-diagnosis",
			Tool:      "Crop Diagnosis",
			Query:     "Wheat leaves turning yellow",
			Response:  "Detected nitrogen deficiency. Apply urea fertilizer...",
			Timestamp: at(10*time.Hour+30*time.Minute, time.Minute),
			Kind:      KindImage,
		},
		{
			ID:        "sample-market",
			Tool:      "Market Advisory",
			Query:     "Rice prices in Bangalore mandi",
			Response:  "Current rice price: ₹2,450 per quintal. 15% higher than last week...",
			Timestamp: at(9*time.Hour+15*time.Minute, 2*time.Minute),
			Kind:      KindVoice,
		},
		{
			ID:        "sample-schemes",
			Tool:      "Subsidy Navigator",
			Query:     "PM-KISAN scheme eligibility",
			Response:  "You are eligible for PM-KISAN. Next installment due in March...",
			Timestamp: today.AddDate(0, 0, -1).Add(16*time.Hour + 45*time.Minute),
			Kind:      KindText,
		},
	}
}

// Group is the items of one calendar day.
type Group struct {
	Label string
	Items []Item
}

// GroupByDay buckets items (expected newest first) under "Today",
// "Yesterday" or a date, keeping their order.
func GroupByDay(items []Item, now time.Time) []Group {
	var groups []Group
	for _, it := range items {
		label := DayLabel(it.Timestamp, now)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Items = append(groups[n-1].Items, it)
			continue
		}
		groups = append(groups, Group{Label: label, Items: []Item{it}})
	}
	return groups
}

// DayLabel names the day t falls on relative to now.
func DayLabel(t, now time.Time) string {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	y3, m3, d3 := now.AddDate(0, 0, -1).Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday"
	}
	return t.Format("2 Jan 2006")
}
