package config

// CLIOverrides carries the subset of persistent CLI flags that participate
// in config resolution. It sits at the top of the override chain — a value
// here always wins over the config file and environment variables. Only
// fields the user actually set on the command line should be populated;
// Resolve treats an empty string/zero value as "not provided".
type CLIOverrides struct {
	// ConfigPath is set by --config.
	ConfigPath string

	// VaultRoot is set by --vault-root.
	VaultRoot string

	// LogLevel is set by --log-level (or implied by --verbose/--debug/--quiet).
	LogLevel string

	// ConflictStrategy is set by --conflict-strategy.
	ConflictStrategy string
}
