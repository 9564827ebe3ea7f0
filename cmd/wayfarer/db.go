package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"wayfarer/pkg/config"
	"wayfarer/pkg/prompt"

	_ "modernc.org/sqlite"
)

// openDB opens a SQLite database at path and enforces production-safe
// defaults: WAL journal mode and a 5-second busy timeout. It also calls
// db.PingContext to verify the connection is usable before returning.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}

	return db, nil
}

// openStore opens the prompt store at the resolved database path and
// applies the schema. Callers own closing the returned *sql.DB.
func openStore() (*prompt.Store, *sql.DB, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve paths: %w", err)
	}

	db, err := openDB(paths.PromptDBPath)
	if err != nil {
		return nil, nil, err
	}

	store := prompt.NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init prompt schema: %w", err)
	}

	return store, db, nil
}

// loadConfig reads the layered configuration relative to the current
// working directory.
func loadConfig() (config.Config, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve paths: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return config.Load(paths.ConfigPath, wd)
}
