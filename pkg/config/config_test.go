package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadMissingGlobalUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.toml"), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sync.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Sync.MaxAttempts)
	}
	if cfg.Remote.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", cfg.Remote.BaseURL)
	}
}

func TestLoadGlobalTOML(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, `
[remote]
base_url = "https://sync.example.com"
token = "tok-1"

[anthropic]
model = "claude-3-5-haiku-20241022"

[trip]
home_lat = 59.33
home_lon = 18.07
home_name = "Stockholm"
`)

	cfg, err := Load(global, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.BaseURL != "https://sync.example.com" {
		t.Errorf("BaseURL = %q", cfg.Remote.BaseURL)
	}
	if cfg.Anthropic.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Model = %q", cfg.Anthropic.Model)
	}
	if cfg.Trip.HomeName != "Stockholm" {
		t.Errorf("HomeName = %q", cfg.Trip.HomeName)
	}
}

func TestLoadMalformedGlobalFails(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, "[remote\nbase_url = nope")

	if _, err := Load(global, ""); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestYAMLOverrideWinsOverGlobal(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, `
[remote]
base_url = "https://sync.example.com"
token = "global-token"
`)

	work := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(work, ".wayfarer", "config.yaml"), `
remote:
  token: project-token
`)

	cfg, err := Load(global, work)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.Token != "project-token" {
		t.Errorf("Token = %q, want project-token", cfg.Remote.Token)
	}
	// Fields absent from the override keep the global value.
	if cfg.Remote.BaseURL != "https://sync.example.com" {
		t.Errorf("BaseURL = %q, want global value", cfg.Remote.BaseURL)
	}
}

func TestEnvWinsOverFiles(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, `
[remote]
base_url = "https://file.example.com"
`)
	t.Setenv("WAYFARER_REMOTE_URL", "https://env.example.com")
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")

	cfg, err := Load(global, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, want env value", cfg.Remote.BaseURL)
	}
	if cfg.Anthropic.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", cfg.Anthropic.APIKey)
	}
}

func TestSyncTuning(t *testing.T) {
	tests := []struct {
		name string
		in   SyncConfig
		want SyncTuning
	}{
		{
			name: "defaults for zero values",
			in:   SyncConfig{},
			want: SyncTuning{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, FanOut: 4, PollInterval: 15 * time.Second},
		},
		{
			name: "explicit values parsed",
			in:   SyncConfig{MaxAttempts: 5, BaseDelay: "500ms", MaxDelay: "2m", FanOut: 8, PollInterval: "1m"},
			want: SyncTuning{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Minute, FanOut: 8, PollInterval: time.Minute},
		},
		{
			name: "malformed durations fall back",
			in:   SyncConfig{BaseDelay: "soon", MaxDelay: "-5s"},
			want: SyncTuning{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, FanOut: 4, PollInterval: 15 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Tuning()
			if got != tt.want {
				t.Errorf("Tuning() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default()
	cfg.Remote.BaseURL = "https://sync.example.com"
	cfg.Trip.HomeName = "Lisbon"
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Remote.BaseURL != cfg.Remote.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.Remote.BaseURL, cfg.Remote.BaseURL)
	}
	if loaded.Trip.HomeName != "Lisbon" {
		t.Errorf("HomeName = %q", loaded.Trip.HomeName)
	}
}
