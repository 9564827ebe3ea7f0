// Package config loads wayfarer settings from the global TOML config
// file with optional per-directory YAML overrides. Precedence, highest
// first: environment variables, .wayfarer/config.yaml in the working
// directory, ~/.wayfarer/config.toml, built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the CLI and dashboard read.
type Config struct {
	Remote    RemoteConfig    `toml:"remote" yaml:"remote"`
	Anthropic AnthropicConfig `toml:"anthropic" yaml:"anthropic"`
	Sync      SyncConfig      `toml:"sync" yaml:"sync"`
	Trip      TripConfig      `toml:"trip" yaml:"trip"`
}

// RemoteConfig points at the prompt sync service.
type RemoteConfig struct {
	BaseURL string `toml:"base_url" yaml:"base_url"`
	Token   string `toml:"token" yaml:"token"`
}

// AnthropicConfig configures the planning agent backend.
type AnthropicConfig struct {
	APIKey string `toml:"api_key" yaml:"api_key"`
	Model  string `toml:"model" yaml:"model"`
}

// SyncConfig tunes the background sync coordinator. Durations are
// written as Go duration strings ("30s", "2m").
type SyncConfig struct {
	MaxAttempts  int    `toml:"max_attempts" yaml:"max_attempts"`
	BaseDelay    string `toml:"base_delay" yaml:"base_delay"`
	MaxDelay     string `toml:"max_delay" yaml:"max_delay"`
	FanOut       int    `toml:"fan_out" yaml:"fan_out"`
	PollInterval string `toml:"poll_interval" yaml:"poll_interval"`
}

// TripConfig carries the traveller's home profile used to seed
// planning requests.
type TripConfig struct {
	HomeLat  float64 `toml:"home_lat" yaml:"home_lat"`
	HomeLon  float64 `toml:"home_lon" yaml:"home_lon"`
	HomeName string  `toml:"home_name" yaml:"home_name"`
}

// Default returns the built-in configuration used when no config file
// exists yet.
func Default() Config {
	return Config{
		Anthropic: AnthropicConfig{
			Model: "",
		},
		Sync: SyncConfig{
			MaxAttempts:  3,
			BaseDelay:    "1s",
			MaxDelay:     "30s",
			FanOut:       4,
			PollInterval: "15s",
		},
	}
}

// Load reads the global TOML config from globalPath, layers a
// .wayfarer/config.yaml override from workDir on top if one exists,
// and finally applies environment variables. A missing global file is
// not an error; a malformed one is.
func Load(globalPath, workDir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(globalPath) //nolint:gosec // path comes from our own state dir
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", globalPath, err)
		}
	case os.IsNotExist(err):
		// first run, defaults apply
	default:
		return cfg, fmt.Errorf("read %s: %w", globalPath, err)
	}

	if err := applyOverride(&cfg, workDir); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyOverride merges .wayfarer/config.yaml from workDir into cfg.
// Only fields present in the YAML replace the loaded values, so a
// project can override just its remote token or home coordinates.
func applyOverride(cfg *Config, workDir string) error {
	if workDir == "" {
		return nil
	}
	path := filepath.Join(workDir, ".wayfarer", "config.yaml")
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the working directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv lets environment variables win over everything on disk.
func applyEnv(cfg *Config) {
	if v := os.Getenv("WAYFARER_REMOTE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("WAYFARER_REMOTE_TOKEN"); v != "" {
		cfg.Remote.Token = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("WAYFARER_MODEL"); v != "" {
		cfg.Anthropic.Model = v
	}
}

// SyncTuning converts the string duration fields into a concrete
// tuning set, falling back to defaults for blank or malformed values.
type SyncTuning struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	FanOut       int
	PollInterval time.Duration
}

// Tuning resolves the sync section into parsed durations.
func (c SyncConfig) Tuning() SyncTuning {
	def := Default().Sync
	return SyncTuning{
		MaxAttempts:  orInt(c.MaxAttempts, def.MaxAttempts),
		BaseDelay:    orDuration(c.BaseDelay, def.BaseDelay),
		MaxDelay:     orDuration(c.MaxDelay, def.MaxDelay),
		FanOut:       orInt(c.FanOut, def.FanOut),
		PollInterval: orDuration(c.PollInterval, def.PollInterval),
	}
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDuration(v, def string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(def)
	}
	return d
}

// Write serializes cfg as TOML to path, creating parent directories
// as needed. Used by `wayfarer init` to seed the global config.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
