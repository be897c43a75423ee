package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?"
// suggestions — the same strictness the teacher applies to its own
// flat-plus-drive-sections file, adapted to this module's nested-table
// layout (one decode pass suffices here; there is no second drive-section
// pass because there is exactly one vault).
func Load(path string, logger *slog.Logger) (*Config, error) {
	logger.Debug("loading config file", "path", path)

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.Debug("config file parsed successfully", "path", path, "vault_root", cfg.Vault.Root)

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. This supports the zero-config
// first-run experience: a vault root can be supplied entirely through
// --vault-root/TODOIST_VAULT_SYNC_VAULT_ROOT without ever writing a file.
func LoadOrDefault(path string, logger *slog.Logger) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("config file not found, using defaults", "path", path)

		return DefaultConfig(), nil
	}

	return Load(path, logger)
}

// Resolve loads configuration and applies the layered override chain:
// defaults -> config file -> environment variables -> CLI flags. It
// returns the fully merged Config, ready for Validate and the ToReconcile*
// conversions in convert.go.
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Config, error) {
	cfgPath := ResolveConfigPath(env, cli, logger)

	cfg, err := LoadOrDefault(cfgPath, logger)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if env.VaultRoot != "" {
		cfg.Vault.Root = env.VaultRoot
	}

	if env.LogLevel != "" {
		cfg.Logging.LogLevel = env.LogLevel
	}

	if cli.VaultRoot != "" {
		cfg.Vault.Root = cli.VaultRoot
		logger.Debug("CLI override applied", "vault_root", cfg.Vault.Root)
	}

	if cli.LogLevel != "" {
		cfg.Logging.LogLevel = cli.LogLevel
		logger.Debug("CLI override applied", "log_level", cfg.Logging.LogLevel)
	}

	if cli.ConflictStrategy != "" {
		cfg.Conflict.Strategy = cli.ConflictStrategy
		logger.Debug("CLI override applied", "conflict_strategy", cfg.Conflict.Strategy)
	}

	if cfg.Vault.Root == "" {
		return nil, errors.New("config: vault.root is required (set it in the config file, " +
			EnvVaultRoot + ", or --vault-root)")
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ResolveConfigPath determines the config file path using the three-layer
// priority: CLI flag > environment variable > platform default. This is
// the single correct implementation of config path resolution — every
// caller (PersistentPreRunE, Resolve) should use this rather than
// re-deriving it.
func ResolveConfigPath(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) string {
	cfgPath := DefaultConfigPath()
	source := "default"

	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
		source = "env"
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
		source = "cli"
	}

	logger.Debug("config path resolved", "path", cfgPath, "source", source)

	return cfgPath
}
