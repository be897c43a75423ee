package config

// Default values for configuration options. These represent the "layer 0"
// of the override chain (defaults -> file -> env -> flags) and are chosen
// to make a freshly cloned vault usable with zero configuration beyond a
// vault root and a Todoist token.
const (
	defaultBaseFolder           = "Tasks"
	defaultUseProjectSubfolders = true
	defaultUseSectionSubfolder  = false
	defaultAutoRenameFiles      = true

	defaultProjectArchiveFolder = "Tasks/_archive"
	defaultSectionArchiveFolder = "Tasks/_archive"

	defaultCompletedMode        = "keep-in-place"
	defaultDeletedMode          = "move-to-folder"
	defaultDeletedFolder        = "Tasks/_deleted"
	defaultRecentlyDeletedLimit = 200

	defaultConflictStrategy = "local-wins"

	defaultLogLevel  = "info"
	defaultLogFormat = "auto"

	defaultConnectTimeout = "10s"
	defaultRequestTimeout = "30s"
	defaultMaxRetries     = 3

	// DefaultTodoistSyncBaseURL and DefaultTodoistRESTBaseURL are the
	// production Todoist API endpoints internal/todoist talks to. Exported
	// so the CLI layer can wire them into todoist.NewClient without
	// importing that package just for its own constant.
	DefaultTodoistSyncBaseURL = "https://api.todoist.com/sync/v9"
	DefaultTodoistRESTBaseURL = "https://api.todoist.com/rest/v2"
)

// DefaultConfig returns a Config populated with all default values. This is
// both the starting point for TOML decoding (so unset fields retain
// defaults) and the fallback when no config file exists at all.
func DefaultConfig() *Config {
	return &Config{
		Vault:    defaultVaultConfig(),
		Props:    PropNamesConfig{}, // empty fields fall back to frontmatter.DefaultPropNames()
		Import:   ImportConfig{},
		Missing:  defaultMissingConfig(),
		Conflict: ConflictConfig{Strategy: defaultConflictStrategy},
		Logging:  defaultLoggingConfig(),
		Network:  defaultNetworkConfig(),
	}
}

func defaultVaultConfig() VaultConfig {
	return VaultConfig{
		BaseFolder:           defaultBaseFolder,
		UseProjectSubfolders: defaultUseProjectSubfolders,
		UseSectionSubfolder:  defaultUseSectionSubfolder,
		AutoRenameFiles:      defaultAutoRenameFiles,
		ProjectArchiveFolder: defaultProjectArchiveFolder,
		SectionArchiveFolder: defaultSectionArchiveFolder,
	}
}

func defaultMissingConfig() MissingConfig {
	return MissingConfig{
		CompletedMode:        defaultCompletedMode,
		DeletedMode:          defaultDeletedMode,
		DeletedFolder:        defaultDeletedFolder,
		RecentlyDeletedLimit: defaultRecentlyDeletedLimit,
	}
}

func defaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

func defaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		ConnectTimeout: defaultConnectTimeout,
		RequestTimeout: defaultRequestTimeout,
		MaxRetries:     defaultMaxRetries,
	}
}
