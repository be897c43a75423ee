package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	minRecentlyDeletedLimit = 1
	maxRecentlyDeletedLimit = 1000
	minMaxRetries           = 0
	maxMaxRetries           = 20
	minConnectTimeout       = 1 * time.Second
	minRequestTimeout       = 1 * time.Second
)

// Validate checks all configuration values and returns all errors found. It
// accumulates every error rather than stopping at the first, so a user
// fixing a config file sees every problem in one pass instead of being
// sent back one typo at a time.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateVault(&cfg.Vault)...)
	errs = append(errs, validateMissing(&cfg.Missing)...)
	errs = append(errs, validateConflict(&cfg.Conflict)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)

	return errors.Join(errs...)
}

func validateVault(v *VaultConfig) []error {
	var errs []error

	if v.BaseFolder == "" {
		errs = append(errs, errors.New("vault.base_folder: must not be empty"))
	}

	return errs
}

var validMissingRemoteModes = map[string]bool{
	"keep-in-place":  true,
	"move-to-folder": true,
	"stop-syncing":   true,
}

func validateMissing(m *MissingConfig) []error {
	var errs []error

	if !validMissingRemoteModes[m.CompletedMode] || m.CompletedMode == "stop-syncing" {
		errs = append(errs, fmt.Errorf(
			"missing_remote.completed_mode: must be one of keep-in-place, move-to-folder; got %q",
			m.CompletedMode))
	}

	if m.CompletedMode == "move-to-folder" && m.CompletedFolder == "" {
		errs = append(errs, errors.New(
			"missing_remote.completed_folder: required when completed_mode is move-to-folder"))
	}

	if !validMissingRemoteModes[m.DeletedMode] {
		errs = append(errs, fmt.Errorf(
			"missing_remote.deleted_mode: must be one of keep-in-place, move-to-folder, stop-syncing; got %q",
			m.DeletedMode))
	}

	if m.DeletedMode == "move-to-folder" && m.DeletedFolder == "" {
		errs = append(errs, errors.New(
			"missing_remote.deleted_folder: required when deleted_mode is move-to-folder"))
	}

	if m.RecentlyDeletedLimit < minRecentlyDeletedLimit || m.RecentlyDeletedLimit > maxRecentlyDeletedLimit {
		errs = append(errs, fmt.Errorf("missing_remote.recently_deleted_limit: must be between %d and %d, got %d",
			minRecentlyDeletedLimit, maxRecentlyDeletedLimit, m.RecentlyDeletedLimit))
	}

	return errs
}

var validConflictStrategies = map[string]bool{
	"local-wins":  true,
	"remote-wins": true,
}

func validateConflict(c *ConflictConfig) []error {
	if !validConflictStrategies[c.Strategy] {
		return []error{fmt.Errorf("conflict.strategy: must be one of local-wins, remote-wins; got %q", c.Strategy)}
	}

	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.LogLevel] {
		errs = append(errs, fmt.Errorf("logging.log_level: must be one of debug, info, warn, error; got %q",
			l.LogLevel))
	}

	if !validLogFormats[l.LogFormat] {
		errs = append(errs, fmt.Errorf("logging.log_format: must be one of auto, text, json; got %q", l.LogFormat))
	}

	return errs
}

func validateNetwork(n *NetworkConfig) []error {
	var errs []error

	errs = append(errs, validateDurationMin("network.connect_timeout", n.ConnectTimeout, minConnectTimeout)...)
	errs = append(errs, validateDurationMin("network.request_timeout", n.RequestTimeout, minRequestTimeout)...)

	if n.MaxRetries < minMaxRetries || n.MaxRetries > maxMaxRetries {
		errs = append(errs, fmt.Errorf("network.max_retries: must be between %d and %d, got %d",
			minMaxRetries, maxMaxRetries, n.MaxRetries))
	}

	return errs
}

func validateDurationMin(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be >= %s, got %s", field, minimum, d)}
	}

	return nil
}
