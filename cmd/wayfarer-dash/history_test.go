package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"wayfarer/pkg/prompt"

	_ "modernc.org/sqlite"
)

// seedPromptDB creates a prompt database on disk with the given texts.
func seedPromptDB(t *testing.T, texts []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := prompt.NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	for _, text := range texts {
		if _, err := store.Insert(context.Background(), text); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestFetchPrompts(t *testing.T) {
	path := seedPromptDB(t, []string{"older trip", "newer trip"})

	records, err := FetchPrompts(path)
	if err != nil {
		t.Fatalf("FetchPrompts: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestFetchPrompts_MissingDatabase(t *testing.T) {
	if _, err := FetchPrompts(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestFetchCounts(t *testing.T) {
	path := seedPromptDB(t, []string{"a", "b", "c"})

	counts, err := FetchCounts(path)
	if err != nil {
		t.Fatalf("FetchCounts: %v", err)
	}
	if counts[prompt.StatusPending] != 3 {
		t.Errorf("pending = %d, want 3", counts[prompt.StatusPending])
	}
}

func TestPromptDBPath_EnvOverride(t *testing.T) {
	t.Setenv("WAYFARER_DB_PATH", "/tmp/custom.db")
	if got := promptDBPath(); got != "/tmp/custom.db" {
		t.Errorf("promptDBPath() = %q", got)
	}
}

func TestStateDir_EnvOverride(t *testing.T) {
	t.Setenv("WAYFARER_HOME", "/tmp/wf-home")
	if got := stateDir(); got != "/tmp/wf-home" {
		t.Errorf("stateDir() = %q", got)
	}
}
