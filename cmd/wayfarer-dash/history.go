package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wayfarer/pkg/prompt"

	_ "modernc.org/sqlite"
)

// stateDir returns the wayfarer state directory from env or ~/.wayfarer.
func stateDir() string {
	if v := os.Getenv("WAYFARER_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wayfarer")
}

// promptDBPath returns the prompt database path from env or the state dir default.
func promptDBPath() string {
	if v := os.Getenv("WAYFARER_DB_PATH"); v != "" {
		return v
	}
	return filepath.Join(stateDir(), "prompts.db")
}

// FetchPrompts reads all prompt records from the database read-only,
// newest first. The dashboard never writes; the CLI and the sync
// coordinator own all mutations.
//
// Error cases:
//   - database missing → returns error (dashboard shows empty state)
//   - query error → returns error
func FetchPrompts(dbPath string) ([]prompt.Record, error) {
	db, err := prompt.OpenReadOnly(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck // best-effort close on read-only query path

	store := prompt.NewStore(db)
	records, err := store.ListAll(context.Background())
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return records, nil
}

// FetchCounts returns the per-status record counts for the status bar.
func FetchCounts(dbPath string) (map[prompt.SyncStatus]int, error) {
	db, err := prompt.OpenReadOnly(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck // best-effort close on read-only query path

	store := prompt.NewStore(db)
	counts, err := store.CountByStatus(context.Background())
	if err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}
	return counts, nil
}
