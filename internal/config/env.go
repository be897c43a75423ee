package config

import "os"

// Environment variable names for overrides. Named the way the teacher
// names its own (ONEDRIVE_GO_*), substituting this module's app name.
const (
	EnvConfig    = "TODOIST_VAULT_SYNC_CONFIG"
	EnvVaultRoot = "TODOIST_VAULT_SYNC_VAULT_ROOT"
	EnvLogLevel  = "TODOIST_VAULT_SYNC_LOG_LEVEL"
)

// EnvOverrides holds values derived from environment variables. These are
// read once at startup and merged into the resolved config by Resolve;
// they never modify a *Config in place.
type EnvOverrides struct {
	ConfigPath string // TODOIST_VAULT_SYNC_CONFIG: override config file path
	VaultRoot  string // TODOIST_VAULT_SYNC_VAULT_ROOT: override vault.root
	LogLevel   string // TODOIST_VAULT_SYNC_LOG_LEVEL: override logging.log_level
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify a Config; callers apply the relevant fields
// during Resolve.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		VaultRoot:  os.Getenv(EnvVaultRoot),
		LogLevel:   os.Getenv(EnvLogLevel),
	}
}
