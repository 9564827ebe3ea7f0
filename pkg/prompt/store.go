package prompt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store manages the prompts table in SQLite.
type Store struct {
	db *sql.DB

	// nowFunc allows tests to control record timestamps.
	nowFunc func() time.Time
}

// NewStore creates a Store backed by the given SQLite database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, nowFunc: time.Now}
}

// SetNowFunc overrides the clock used for new record timestamps (for testing).
func (s *Store) SetNowFunc(f func() time.Time) {
	s.nowFunc = f
}

// Init applies the schema. Safe to call on every startup.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SchemaDDL); err != nil {
		return fmt.Errorf("apply prompt schema: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// Insert persists a new record with status pending and no remote id.
// The id is assigned by SQLite and is monotonically increasing.
func (s *Store) Insert(ctx context.Context, text string) (*Record, error) {
	now := s.nowFunc().UTC().Truncate(time.Millisecond)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO prompts (text, timestamp, sync_status) VALUES (?, ?, ?)`,
		text, now.UnixMilli(), string(StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w: %w", ErrStorageUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("prompt last insert id: %w: %w", ErrStorageUnavailable, err)
	}

	return &Record{
		ID:        id,
		Text:      text,
		Timestamp: now,
		Status:    StatusPending,
	}, nil
}

// Get returns the record with the given id, or nil if it does not exist.
// A missing id is not an error.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt %d: %w", id, err)
	}
	return rec, nil
}

// ListAll returns every record, newest first. Ties on timestamp break by
// descending id so the order is stable under same-instant inserts.
func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	return s.list(ctx, selectColumns+` ORDER BY timestamp DESC, id DESC`)
}

// PendingOldestFirst returns all pending records in the order the sync
// coordinator must attempt them: oldest first.
func (s *Store) PendingOldestFirst(ctx context.Context) ([]Record, error) {
	return s.list(ctx,
		selectColumns+` WHERE sync_status = ? ORDER BY timestamp ASC, id ASC`,
		string(StatusPending),
	)
}

// UpdateSyncStatus moves a record to the given status. A synced status
// requires a non-empty remoteID; any other status requires an empty one.
// The pairing is validated before any mutation. Returns ErrNotFound if the
// id does not exist.
func (s *Store) UpdateSyncStatus(ctx context.Context, id int64, status SyncStatus, remoteID string) error {
	if err := checkPairing(status, remoteID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET sync_status = ?, remote_id = ? WHERE id = ?`,
		string(status), nullable(remoteID), id,
	)
	if err != nil {
		return fmt.Errorf("update sync status for %d: %w: %w", id, ErrStorageUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sync status rows for %d: %w: %w", id, ErrStorageUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("update sync status: id %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecordAttempt increments the attempt counter for a record and stores the
// error that caused the attempt to fail. Missing ids are ignored: the record
// may have been deleted while its attempt was in flight.
func (s *Store) RecordAttempt(ctx context.Context, id int64, attemptErr string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		attemptErr, id,
	)
	if err != nil {
		return fmt.Errorf("record attempt for %d: %w: %w", id, ErrStorageUnavailable, err)
	}
	return nil
}

// Requeue moves a record back to pending, clearing its remote id, attempt
// count, and last error. This is the only path by which a synced or failed
// record re-enters the sync queue.
func (s *Store) Requeue(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET sync_status = ?, remote_id = NULL, attempts = 0, last_error = NULL WHERE id = ?`,
		string(StatusPending), id,
	)
	if err != nil {
		return fmt.Errorf("requeue prompt %d: %w: %w", id, ErrStorageUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("requeue rows for %d: %w: %w", id, ErrStorageUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("requeue: id %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a record. Deleting a nonexistent id is not an error.
// Remote deletion propagation for synced records is the caller's job; see
// syncer.Coordinator.Delete.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete prompt %d: %w: %w", id, ErrStorageUnavailable, err)
	}
	return nil
}

// CountByStatus returns the number of records per sync status.
func (s *Store) CountByStatus(ctx context.Context) (map[SyncStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sync_status, COUNT(*) FROM prompts GROUP BY sync_status`)
	if err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}
	defer rows.Close()

	counts := make(map[SyncStatus]int)
	for rows.Next() {
		var raw string
		var n int
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, fmt.Errorf("count prompts scan: %w", err)
		}
		status, err := ParseSyncStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("count prompts: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count prompts rows: %w", err)
	}
	return counts, nil
}

// OpenReadOnly opens the prompt database in read-only mode with WAL.
// Display surfaces use this so they never block a concurrent sync cycle.
// Returns an error if the database does not exist.
func OpenReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("prompt database not found: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open prompt database read-only: %w", err)
	}
	return db, nil
}

// --- row scanning ---

const selectColumns = `SELECT id, text, timestamp, sync_status,
       COALESCE(remote_id, '') AS remote_id,
       attempts,
       COALESCE(last_error, '') AS last_error
FROM prompts`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var millis int64
	var rawStatus string
	if err := row.Scan(&rec.ID, &rec.Text, &millis, &rawStatus,
		&rec.RemoteID, &rec.Attempts, &rec.LastError); err != nil {
		return nil, err
	}

	status, err := ParseSyncStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	rec.Status = status
	rec.Timestamp = time.UnixMilli(millis).UTC()
	return &rec, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w: %w", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list prompts scan: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prompts rows: %w", err)
	}
	return records, nil
}

// nullable maps an empty string to NULL so remote_id stays NULL until synced.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
