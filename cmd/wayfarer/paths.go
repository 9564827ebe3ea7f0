package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// wayfarerDir is the state directory created under the user's home.
const wayfarerDir = ".wayfarer"

// Paths holds all resolved wayfarer state file paths.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	WayfarerHome string // ~/.wayfarer or WAYFARER_HOME
	PromptDBPath string // prompts.db or WAYFARER_DB_PATH
	PlanDBPath   string // plans.db or WAYFARER_PLANS_DB
	ConfigPath   string // config.toml or WAYFARER_CONFIG
}

// ResolvePaths returns all wayfarer paths, respecting env var overrides.
// Environment variables:
//   - WAYFARER_HOME: base directory for all wayfarer state (default: ~/.wayfarer)
//   - WAYFARER_DB_PATH: prompt database (default: $WAYFARER_HOME/prompts.db)
//   - WAYFARER_PLANS_DB: plan history database (default: $WAYFARER_HOME/plans.db)
//   - WAYFARER_CONFIG: global config file (default: $WAYFARER_HOME/config.toml)
//
// If WAYFARER_HOME is set, it becomes the base for all default paths.
// Specific env vars override both the default and the WAYFARER_HOME base.
func ResolvePaths() (*Paths, error) {
	home, err := resolveWayfarerHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		WayfarerHome: home,
		PromptDBPath: resolvePathWithEnv("WAYFARER_DB_PATH", home, "prompts.db"),
		PlanDBPath:   resolvePathWithEnv("WAYFARER_PLANS_DB", home, "plans.db"),
		ConfigPath:   resolvePathWithEnv("WAYFARER_CONFIG", home, "config.toml"),
	}, nil
}

// resolveWayfarerHome returns the state directory from WAYFARER_HOME or ~/.wayfarer.
func resolveWayfarerHome() (string, error) {
	if v := os.Getenv("WAYFARER_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, wayfarerDir), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
