package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RemoteStore is the client boundary to the authoritative remote prompt
// service. Production impl lives in pkg/remote; tests use fakes.
type RemoteStore interface {
	// Create replicates a prompt and returns its remote document id.
	Create(ctx context.Context, text string, timestamp time.Time) (string, error)
	// Delete removes a previously created document. Deleting an unknown id
	// is not an error.
	Delete(ctx context.Context, remoteID string) error
}

// ErrorKind classifies a remote failure for retry purposes.
type ErrorKind int

// Remote error kinds.
const (
	// KindTransient marks conditions worth retrying: network unreachable,
	// remote overloaded, attempt timeout.
	KindTransient ErrorKind = iota
	// KindPermanent marks rejections that will never succeed on retry,
	// e.g. the remote store refusing the payload.
	KindPermanent
)

func (k ErrorKind) String() string {
	if k == KindPermanent {
		return "permanent"
	}
	return "transient"
}

// RemoteError is a classified failure reported by the RemoteStore.
// The coordinator discriminates it with errors.As.
type RemoteError struct {
	Kind ErrorKind
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store: %s: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable remote failure.
func Transient(err error) *RemoteError {
	return &RemoteError{Kind: KindTransient, Err: err}
}

// Permanent wraps err as a non-retryable remote failure.
func Permanent(err error) *RemoteError {
	return &RemoteError{Kind: KindPermanent, Err: err}
}

// classify maps an attempt error to its retry class. Unclassified errors and
// attempt timeouts count as transient: the safe default is to retry within
// budget rather than burn a record on a flaky network.
func classify(err error) ErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindTransient
}
