// Package prompt implements the local prompt record store. Records are
// created locally, tagged with a synchronization status, and replicated to
// the remote prompt service by the syncer package. The store is the single
// shared mutable resource in wayfarer; all status mutations go through
// UpdateSyncStatus so the status/remote-id invariant is enforced in one place.
package prompt

import (
	"fmt"
	"time"
)

// SyncStatus is the replication state of a record relative to the remote
// prompt service.
type SyncStatus string

// Sync status constants.
const (
	StatusPending SyncStatus = "pending" // created locally, not yet replicated
	StatusSynced  SyncStatus = "synced"  // replicated; RemoteID is set
	StatusFailed  SyncStatus = "failed"  // retry budget exhausted or rejected
)

// Valid reports whether s is one of the known sync statuses.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSynced, StatusFailed:
		return true
	}
	return false
}

// ParseSyncStatus converts a stored status string into a SyncStatus.
func ParseSyncStatus(raw string) (SyncStatus, error) {
	s := SyncStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown sync status %q", raw)
	}
	return s, nil
}

// Record is a locally captured prompt. ID and Text are immutable once
// assigned; edits create new records. Status and RemoteID are mutated only
// by UpdateSyncStatus.
type Record struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
	Status    SyncStatus `json:"sync_status"`
	RemoteID  string     `json:"remote_id,omitempty"` // empty until synced
	Attempts  int        `json:"attempts"`            // remote write attempts so far
	LastError string     `json:"last_error,omitempty"`
}

// Synced reports whether the record has been replicated to the remote store.
func (r Record) Synced() bool {
	return r.Status == StatusSynced
}

// checkPairing validates the status/remote-id invariant:
// RemoteID is non-empty iff the status is synced.
func checkPairing(status SyncStatus, remoteID string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariantViolation, status)
	}
	if status == StatusSynced && remoteID == "" {
		return fmt.Errorf("%w: synced record requires a remote id", ErrInvariantViolation)
	}
	if status != StatusSynced && remoteID != "" {
		return fmt.Errorf("%w: status %s must not carry a remote id", ErrInvariantViolation, status)
	}
	return nil
}
