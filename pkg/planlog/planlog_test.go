package planlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open plan log: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, path
}

func TestAppendAndQuery(t *testing.T) {
	l, path := setupTestLog(t)
	ctx := context.Background()

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.SetNowFunc(func() time.Time { return fixed })

	id, err := l.Append(ctx, "weekend in Porto", "day 1: ride the tram", "claude-3-5-sonnet-20241022")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	plans, err := r.Query(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("got %d plans, want 1", len(plans))
	}
	p := plans[0]
	if p.Goal != "weekend in Porto" || p.Result != "day 1: ride the tram" {
		t.Errorf("plan = %+v", p)
	}
	if !p.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, fixed)
	}
}

func TestQueryNewestFirst(t *testing.T) {
	l, path := setupTestLog(t)
	ctx := context.Background()

	for _, goal := range []string{"older", "newer"} {
		if _, err := l.Append(ctx, goal, "plan", ""); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	plans, err := r.Query(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if plans[0].Goal != "newer" || plans[1].Goal != "older" {
		t.Errorf("order wrong: %q then %q", plans[0].Goal, plans[1].Goal)
	}
}

func TestQueryFilters(t *testing.T) {
	l, path := setupTestLog(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, goal := range []string{"ski trip", "beach trip", "city break"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		l.SetNowFunc(func() time.Time { return ts })
		if _, err := l.Append(ctx, goal, "plan", ""); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	t.Run("substring", func(t *testing.T) {
		plans, err := r.Query(ctx, QueryOpts{Contains: "trip"})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(plans) != 2 {
			t.Errorf("got %d plans, want 2", len(plans))
		}
	})

	t.Run("after", func(t *testing.T) {
		after := base.Add(90 * time.Minute)
		plans, err := r.Query(ctx, QueryOpts{After: &after})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(plans) != 1 || plans[0].Goal != "city break" {
			t.Errorf("plans = %+v, want only city break", plans)
		}
	})

	t.Run("limit", func(t *testing.T) {
		plans, err := r.Query(ctx, QueryOpts{Limit: 1})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(plans) != 1 || plans[0].Goal != "city break" {
			t.Errorf("plans = %+v, want newest only", plans)
		}
	})
}

func TestNewReaderMissingDatabase(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestQueryEmptyLog(t *testing.T) {
	_, path := setupTestLog(t)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	plans, err := r.Query(context.Background(), QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("got %d plans, want 0", len(plans))
	}
}
