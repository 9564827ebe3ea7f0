// Package syncer drives prompt records through their synchronization state
// machine: every pending record is eventually replicated to the remote prompt
// service or parked as failed for the user to re-queue. The coordinator owns
// the retry/backoff policy and the per-record lease discipline; the store
// owns the data.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"wayfarer/pkg/prompt"
)

// Config holds Coordinator configuration. Zero values take defaults.
type Config struct {
	MaxAttempts    int           // transient failures before a record is parked as failed (default 3)
	BaseDelay      time.Duration // backoff base between retry rounds (default 1s)
	MaxDelay       time.Duration // backoff cap (default 30s)
	FanOut         int           // max concurrent in-flight attempts (default 4)
	AttemptTimeout time.Duration // per-attempt deadline (default 30s)
	PollInterval   time.Duration // Run loop interval (default 15s)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxAttempts == 0 {
		out.MaxAttempts = 3
	}
	if out.BaseDelay == 0 {
		out.BaseDelay = time.Second
	}
	if out.MaxDelay == 0 {
		out.MaxDelay = 30 * time.Second
	}
	if out.FanOut == 0 {
		out.FanOut = 4
	}
	if out.AttemptTimeout == 0 {
		out.AttemptTimeout = 30 * time.Second
	}
	if out.PollInterval == 0 {
		out.PollInterval = 15 * time.Second
	}
	return out
}

// Result summarizes one sync cycle.
type Result struct {
	Synced   int // records that reached synced this cycle
	Failed   int // records parked as failed this cycle
	Deferred int // records left pending because a local update did not commit
}

// Coordinator moves pending records to synced against a RemoteStore.
type Coordinator struct {
	cfg      Config
	store    *prompt.Store
	remote   RemoteStore
	notifier Notifier

	mu     sync.Mutex
	leases map[int64]struct{}

	// sleepFunc allows tests to skip backoff waits.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// New creates a Coordinator. A nil notifier is replaced with NopNotifier.
func New(cfg Config, store *prompt.Store, remote RemoteStore, notifier Notifier) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Coordinator{
		cfg:       cfg.withDefaults(),
		store:     store,
		remote:    remote,
		notifier:  notifier,
		leases:    make(map[int64]struct{}),
		sleepFunc: sleepCtx,
	}
}

// SetSleepFunc overrides the backoff wait (for testing).
func (c *Coordinator) SetSleepFunc(f func(ctx context.Context, d time.Duration) error) {
	c.sleepFunc = f
}

// Run executes sync cycles until ctx is cancelled. Cycle errors are logged,
// not fatal: the records involved are still pending and will be observed
// again next cycle.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := c.SyncOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("syncer: cycle: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// SyncOnce runs one full sync cycle: it loads the pending set oldest first,
// attempts remote writes with bounded concurrency, and repeats in backoff
// rounds until every record is settled or its retry budget is spent.
// A SyncFailed notification fires if the cycle parked any record as failed.
func (c *Coordinator) SyncOnce(ctx context.Context) (Result, error) {
	var res Result

	queue, err := c.store.PendingOldestFirst(ctx)
	if err != nil {
		return res, fmt.Errorf("load pending records: %w", err)
	}

	for round := 1; len(queue) > 0; round++ {
		retry := c.attemptBatch(ctx, queue, &res)
		if len(retry) == 0 || ctx.Err() != nil {
			break
		}
		if err := c.sleepFunc(ctx, backoffDelay(c.cfg.BaseDelay, c.cfg.MaxDelay, round)); err != nil {
			break
		}
		queue = retry
	}

	if res.Failed > 0 {
		c.notifier.SyncFailed(res.Failed)
	}
	return res, ctx.Err()
}

// disposition is the settled fate of one attempt.
type disposition int

const (
	dispSynced   disposition = iota // remote write committed
	dispFailed                      // parked as failed
	dispRetry                       // transient failure, budget remains
	dispDeferred                    // local update did not commit; next cycle retries
	dispSkipped                     // lease held elsewhere or record vanished
)

// attemptBatch runs one round of remote-write attempts over queue with
// bounded concurrency. Each record settles (status committed) inside its own
// goroutine, so a slow attempt never delays the completion of another
// record. Returns the records eligible for the next retry round.
func (c *Coordinator) attemptBatch(ctx context.Context, queue []prompt.Record, res *Result) []prompt.Record {
	sem := make(chan struct{}, c.cfg.FanOut)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var retry []prompt.Record

	for _, rec := range queue {
		if !c.tryAcquire(rec.ID) {
			continue
		}
		wg.Add(1)
		go func(rec prompt.Record) {
			defer wg.Done()
			defer c.release(rec.ID)

			sem <- struct{}{}
			remoteID, err := c.attempt(ctx, rec)
			disp, updated := c.settle(ctx, rec, remoteID, err)
			<-sem

			mu.Lock()
			defer mu.Unlock()
			switch disp {
			case dispSynced:
				res.Synced++
			case dispFailed:
				res.Failed++
			case dispRetry:
				retry = append(retry, updated)
			case dispDeferred:
				res.Deferred++
			case dispSkipped:
			}
		}(rec)
	}

	wg.Wait()
	return retry
}

// attempt performs one remote write under the attempt timeout.
func (c *Coordinator) attempt(ctx context.Context, rec prompt.Record) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()
	return c.remote.Create(ctx, rec.Text, rec.Timestamp)
}

// settle commits the outcome of one attempt to the store. Local commit
// failures leave the record pending; it will be observed again next cycle
// exactly because the status update did not land.
func (c *Coordinator) settle(ctx context.Context, rec prompt.Record, remoteID string, attemptErr error) (disposition, prompt.Record) {
	if attemptErr == nil {
		if err := c.store.UpdateSyncStatus(ctx, rec.ID, prompt.StatusSynced, remoteID); err != nil {
			log.Printf("syncer: mark %d synced: %v", rec.ID, err)
			c.notifier.LocalUpdateFailed()
			return dispDeferred, rec
		}
		return dispSynced, rec
	}

	if err := c.store.RecordAttempt(ctx, rec.ID, attemptErr.Error()); err != nil {
		log.Printf("syncer: record attempt %d: %v", rec.ID, err)
		c.notifier.LocalUpdateFailed()
		return dispDeferred, rec
	}
	rec.Attempts++
	rec.LastError = attemptErr.Error()

	// Permanent rejections park immediately; retrying a refused payload
	// cannot succeed and would only burn the budget.
	if classify(attemptErr) == KindPermanent || rec.Attempts >= c.cfg.MaxAttempts {
		if err := c.store.UpdateSyncStatus(ctx, rec.ID, prompt.StatusFailed, ""); err != nil {
			log.Printf("syncer: mark %d failed: %v", rec.ID, err)
			c.notifier.LocalUpdateFailed()
			return dispDeferred, rec
		}
		return dispFailed, rec
	}
	return dispRetry, rec
}

// Delete removes a record, propagating the deletion to the remote store
// first when the record is synced so no orphaned remote document remains.
// A transient remote failure aborts the local delete; the caller retries.
// The per-record lease is held throughout so a delete can never interleave
// with an in-flight sync attempt on the same id.
func (c *Coordinator) Delete(ctx context.Context, id int64) error {
	for !c.tryAcquire(id) {
		if err := c.sleepFunc(ctx, 25*time.Millisecond); err != nil {
			return err
		}
	}
	defer c.release(id)

	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	if rec.Synced() {
		dctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		err := c.remote.Delete(dctx, rec.RemoteID)
		cancel()
		if err != nil {
			if classify(err) == KindTransient {
				return fmt.Errorf("propagate delete for record %d: %w", id, err)
			}
			// The remote refuses to delete the document. Dropping the local
			// row anyway is the lesser evil; wedging deletion forever is not.
			log.Printf("syncer: remote delete %s rejected: %v", rec.RemoteID, err)
		}
	}

	return c.store.Delete(ctx, id)
}

// --- per-record leases ---

// tryAcquire claims the exclusive sync lease for a record id.
func (c *Coordinator) tryAcquire(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.leases[id]; held {
		return false
	}
	c.leases[id] = struct{}{}
	return true
}

func (c *Coordinator) release(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.leases, id)
}

// backoffDelay returns base << (round-1), capped at max.
func backoffDelay(base, max time.Duration, round int) time.Duration {
	d := base << (round - 1)
	if d <= 0 || d > max {
		return max
	}
	return d
}

// sleepCtx waits d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
