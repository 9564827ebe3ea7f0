package syncer

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Notifier receives one-shot UI signals from the coordinator. Signals are
// not persisted; missing one is acceptable, losing a record is not.
type Notifier interface {
	// SyncFailed fires when a sync cycle leaves records in the failed state.
	SyncFailed(count int)
	// LocalSaveFailed fires when a local insert could not be persisted.
	LocalSaveFailed()
	// LocalUpdateFailed fires when a status update could not be persisted.
	LocalUpdateFailed()
}

// DesktopNotifier delivers signals as desktop notifications.
type DesktopNotifier struct{}

// SyncFailed implements Notifier.
func (DesktopNotifier) SyncFailed(count int) {
	_ = beeep.Notify("wayfarer", fmt.Sprintf("%d prompt(s) failed to sync", count), "")
}

// LocalSaveFailed implements Notifier.
func (DesktopNotifier) LocalSaveFailed() {
	_ = beeep.Notify("wayfarer", "Could not save prompt locally", "")
}

// LocalUpdateFailed implements Notifier.
func (DesktopNotifier) LocalUpdateFailed() {
	_ = beeep.Notify("wayfarer", "Could not update prompt sync state", "")
}

// NopNotifier discards all signals. Used by non-interactive commands and tests.
type NopNotifier struct{}

// SyncFailed implements Notifier.
func (NopNotifier) SyncFailed(int) {}

// LocalSaveFailed implements Notifier.
func (NopNotifier) LocalSaveFailed() {}

// LocalUpdateFailed implements Notifier.
func (NopNotifier) LocalUpdateFailed() {}
