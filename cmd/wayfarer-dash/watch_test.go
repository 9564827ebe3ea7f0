package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TestFsnotifyReload verifies that changes in the state directory trigger
// fsChangeMsg so the dashboard refreshes without waiting for the poll timer.
func TestFsnotifyReload(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ".wayfarer")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create state dir: %v", err)
	}

	watchCmd := watchStateDir(dir)
	if watchCmd == nil {
		t.Fatal("watchStateDir returned nil, expected tea.Cmd")
	}

	msgChan := make(chan tea.Msg, 1)
	go func() {
		msgChan <- watchCmd()
	}()

	// Give watcher time to initialize
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(dir, "prompts.db")
	if err := os.WriteFile(testFile, []byte("change"), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	select {
	case msg := <-msgChan:
		if _, ok := msg.(fsChangeMsg); !ok {
			t.Errorf("expected fsChangeMsg, got %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for fsChangeMsg after file change")
	}
}

// TestFsnotifyHandlerTriggersFetch verifies that fsChangeMsg causes an
// immediate refresh command.
func TestFsnotifyHandlerTriggersFetch(t *testing.T) {
	m := newModel()

	_, cmd := m.Update(fsChangeMsg{})
	if cmd == nil {
		t.Fatal("expected refresh command on fsChangeMsg, got nil")
	}
}

// TestFsnotifyFallbackOnMissingDir verifies that a missing state directory
// leaves the dashboard in polling-only mode without error.
func TestFsnotifyFallbackOnMissingDir(t *testing.T) {
	nonexistentDir := filepath.Join(t.TempDir(), "does-not-exist")

	if watchCmd := watchStateDir(nonexistentDir); watchCmd != nil {
		t.Errorf("expected nil for nonexistent dir, got cmd")
	}
}

// TestFsnotifyDebounce verifies that rapid changes collapse into a single
// refresh message.
func TestFsnotifyDebounce(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ".wayfarer")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create state dir: %v", err)
	}

	watchCmd := watchStateDir(dir)
	if watchCmd == nil {
		t.Fatal("watchStateDir returned nil")
	}

	msgChan := make(chan tea.Msg, 10)
	go func() {
		msgChan <- watchCmd()
	}()

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		testFile := filepath.Join(dir, "prompts.db-wal")
		if err := os.WriteFile(testFile, []byte("change"), 0o600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	msgCount := 0
	for {
		select {
		case <-msgChan:
			msgCount++
		default:
			goto done
		}
	}
done:
	if msgCount != 1 {
		t.Errorf("expected 1 debounced message, got %d", msgCount)
	}
}
