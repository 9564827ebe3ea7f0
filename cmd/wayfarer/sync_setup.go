package main

import (
	"fmt"

	"wayfarer/pkg/config"
	"wayfarer/pkg/prompt"
	"wayfarer/pkg/remote"
	"wayfarer/pkg/syncer"
)

// newRemote builds the HTTP remote store from configuration.
func newRemote(cfg config.Config) (*remote.Client, error) {
	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("remote base_url is not configured; edit %s", "config.toml")
	}
	return remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token), nil
}

// newCoordinator wires the store, remote client, and notifier into a
// sync coordinator using the tuning from the config file.
func newCoordinator(store *prompt.Store, cfg config.Config, notifier syncer.Notifier) (*syncer.Coordinator, error) {
	rc, err := newRemote(cfg)
	if err != nil {
		return nil, err
	}

	tuning := cfg.Sync.Tuning()
	return syncer.New(syncer.Config{
		MaxAttempts:  tuning.MaxAttempts,
		BaseDelay:    tuning.BaseDelay,
		MaxDelay:     tuning.MaxDelay,
		FanOut:       tuning.FanOut,
		PollInterval: tuning.PollInterval,
	}, store, rc, notifier), nil
}
