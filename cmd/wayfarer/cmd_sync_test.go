package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"wayfarer/pkg/prompt"
)

func TestSyncCmd_PushesPendingPrompts(t *testing.T) {
	setupTestHome(t)

	var created atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := created.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("doc-%d", n)})
	}))
	defer srv.Close()
	t.Setenv("WAYFARER_REMOTE_URL", srv.URL)

	for _, text := range []string{"trip one", "trip two"} {
		if _, err := runCmd(t, "add", "-q", text); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	out, err := runCmd(t, "sync", "-q")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !strings.Contains(out, "synced 2, failed 0") {
		t.Errorf("output = %q, want 2 synced", out)
	}

	store, db, err := openStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()

	records, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, r := range records {
		if r.Status != prompt.StatusSynced || r.RemoteID == "" {
			t.Errorf("record %d = %s remote %q, want synced with remote id", r.ID, r.Status, r.RemoteID)
		}
	}
}

func TestSyncCmd_PermanentRejectionParksRecord(t *testing.T) {
	setupTestHome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "prompt too large", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()
	t.Setenv("WAYFARER_REMOTE_URL", srv.URL)

	if _, err := runCmd(t, "add", "-q", "doomed trip"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := runCmd(t, "sync", "-q")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !strings.Contains(out, "failed 1") {
		t.Errorf("output = %q, want 1 failed", out)
	}
}

func TestSyncCmd_RequiresRemoteConfig(t *testing.T) {
	setupTestHome(t)

	if _, err := runCmd(t, "sync", "-q"); err == nil {
		t.Fatal("expected error when remote base_url is not configured")
	}
}
