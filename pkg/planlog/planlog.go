// Package planlog persists finished planning runs so past plans can be
// browsed after the agent session is gone. The CLI appends; readers open
// the database read-only so they never block a run in progress.
package planlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SchemaDDL creates the plans table.
const SchemaDDL = `
CREATE TABLE IF NOT EXISTS plans (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	goal       TEXT    NOT NULL,
	result     TEXT    NOT NULL,
	model      TEXT    NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
`

// Plan is one finished planning run.
type Plan struct {
	ID        int64
	Goal      string
	Result    string
	Model     string
	CreatedAt time.Time
}

// Log appends finished runs to the plan database.
type Log struct {
	db      *sql.DB
	nowFunc func() time.Time
}

// Open opens (or creates) the plan database at path and applies the schema.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open plan log %s: %w", path, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping plan log %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, SchemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply plan log schema: %w", err)
	}

	return &Log{db: db, nowFunc: time.Now}, nil
}

// SetNowFunc overrides the clock. Tests use this for deterministic timestamps.
func (l *Log) SetNowFunc(f func() time.Time) {
	l.nowFunc = f
}

// Close releases the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append records one finished run.
func (l *Log) Append(ctx context.Context, goal, result, model string) (int64, error) {
	now := l.nowFunc().UTC().UnixMilli()
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO plans (goal, result, model, created_at) VALUES (?, ?, ?, ?)`,
		goal, result, model, now)
	if err != nil {
		return 0, fmt.Errorf("append plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("plan id: %w", err)
	}
	return id, nil
}

// QueryOpts specifies filter criteria for querying plans.
type QueryOpts struct {
	// Contains filters to plans whose goal contains this substring.
	Contains string

	// After filters plans created after this time (inclusive).
	After *time.Time

	// Limit restricts the number of results (0 = no limit).
	Limit int
}

// Reader provides read-only access to the plan log.
type Reader struct {
	db *sql.DB
}

// NewReader opens the plan database in read-only mode with WAL.
// Returns an error if the database doesn't exist or cannot be opened.
func NewReader(dbPath string) (*Reader, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("plan log not found: %w", err)
	}

	// Read-only with WAL so an in-flight append is never blocked.
	dsn := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open plan log: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping plan log: %w", err)
	}

	return &Reader{db: db}, nil
}

// Close releases the database connection.
// Safe to call multiple times.
func (r *Reader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Query retrieves plans matching the given filter criteria, newest first.
// Returns an empty slice if no plans match.
func (r *Reader) Query(ctx context.Context, opts QueryOpts) ([]Plan, error) {
	query, args := buildQuery(opts)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Goal, &p.Result, &p.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}

	return plans, nil
}

// buildQuery constructs the SQL query and arguments from QueryOpts.
func buildQuery(opts QueryOpts) (string, []any) {
	var conditions []string
	var args []any

	query := "SELECT id, goal, result, model, created_at FROM plans WHERE 1=1"

	if opts.Contains != "" {
		conditions = append(conditions, "goal LIKE ?")
		args = append(args, "%"+opts.Contains+"%")
	}

	if opts.After != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, opts.After.UTC().UnixMilli())
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return query, args
}
