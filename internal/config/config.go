// Package config loads, validates, and resolves the on-disk TOML
// configuration for a single vault/account pair. It produces the narrow,
// consumer-defined config types that internal/reconcile, internal/vault,
// internal/metacache, and internal/todoist each depend on, the same
// separation the teacher draws between its own multi-drive config.Config
// and the sync package that only ever consumes config.ResolvedDrive.
//
// Unlike the teacher, this package resolves exactly one vault and one
// Todoist account per process — there is no drive registry, no
// canonical-ID-keyed section map, and no per-drive token resolution.
package config

// Config is the root of the TOML document. Every section has a zero value
// that DefaultConfig fills in before the file is decoded on top of it, so
// an absent section in the file is indistinguishable from an explicit
// all-defaults section.
type Config struct {
	Vault    VaultConfig     `toml:"vault"`
	Props    PropNamesConfig `toml:"props"`
	Import   ImportConfig    `toml:"import"`
	Missing  MissingConfig   `toml:"missing_remote"`
	Conflict ConflictConfig  `toml:"conflict"`
	Logging  LoggingConfig   `toml:"logging"`
	Network  NetworkConfig   `toml:"network"`
}

// VaultConfig locates the vault on disk and configures the path policy
// the reconciler uses when it creates or relocates notes (§4.2/§4.5.6).
type VaultConfig struct {
	// Root is the absolute path to the Obsidian-style vault directory.
	Root string `toml:"root"`

	BaseFolder           string `toml:"base_folder"`
	UseProjectSubfolders bool   `toml:"use_project_subfolders"`
	UseSectionSubfolder  bool   `toml:"use_section_subfolder"`
	AutoRenameFiles      bool   `toml:"auto_rename_files"`

	ProjectArchiveFolder string `toml:"project_archive_folder"`
	SectionArchiveFolder string `toml:"section_archive_folder"`

	ProjectTemplate string `toml:"project_template"`
	SectionTemplate string `toml:"section_template"`
	TaskTemplate    string `toml:"task_template"`

	// MetadataCachePath is where internal/metacache keeps its derived
	// sqlite cache. Empty disables caching (every scan re-parses every
	// file) — see paths.go for the platform default.
	MetadataCachePath string `toml:"metadata_cache_path"`

	// RunLockPath is where internal/runlock takes its single-writer lock
	// for the duration of one reconcile run.
	RunLockPath string `toml:"run_lock_path"`
}

// PropNamesConfig overrides individual frontmatter keys from their
// defaults (§4.3). Any field left empty in the TOML file falls back to
// frontmatter.DefaultPropNames()'s value for that field — the config
// layer never has to spell out every key just to rename one.
type PropNamesConfig struct {
	NoteKind  string `toml:"note_kind"`
	VaultUUID string `toml:"vault_uuid"`
	Created   string `toml:"created"`
	Modified  string `toml:"modified"`
	Tags      string `toml:"tags"`

	TaskTitle       string `toml:"task_title"`
	TaskStatus      string `toml:"task_status"`
	TaskDone        string `toml:"task_done"`
	RemoteTaskID    string `toml:"remote_task_id"`
	RemoteProjectID string `toml:"remote_project_id"`
	RemoteSectionID string `toml:"remote_section_id"`
	ProjectName     string `toml:"project_name"`
	SectionName     string `toml:"section_name"`
	ProjectLink     string `toml:"project_link"`
	SectionLink     string `toml:"section_link"`
	Priority        string `toml:"priority"`
	PriorityLabel   string `toml:"priority_label"`
	DueDate         string `toml:"due_date"`
	DueString       string `toml:"due_string"`
	IsRecurring     string `toml:"is_recurring"`
	Deadline        string `toml:"deadline"`
	Description     string `toml:"description"`
	Labels          string `toml:"labels"`
	ParentTaskLink  string `toml:"parent_task_link"`
	ChildTaskLinks  string `toml:"child_tasks"`
	HasChildren     string `toml:"has_children"`
	ChildCount      string `toml:"child_count"`
	URL             string `toml:"url"`

	SyncFlagKey             string `toml:"sync_flag"`
	SyncStatus              string `toml:"sync_status"`
	PendingRemoteID         string `toml:"pending_remote_id"`
	LastImportedFingerprint string `toml:"last_imported_fingerprint"`
	LastSyncedFingerprint   string `toml:"last_synced_fingerprint"`
	LastImportedAt          string `toml:"last_imported_at"`
	IsDeleted               string `toml:"is_deleted"`
	Recurrence              string `toml:"recurrence"`
	CompleteInstances       string `toml:"complete_instances"`

	Color             string `toml:"color"`
	IsArchived        string `toml:"is_archived"`
	ParentProjectID   string `toml:"parent_project_id"`
	ParentProjectLink string `toml:"parent_project_link"`
	ParentProjectName string `toml:"parent_project_name"`
}

// ImportConfig is the on-disk form of reconcile.ImportFilter (§4.5.3).
type ImportConfig struct {
	AssignedToMe bool `toml:"assigned_to_me"`

	RequiredLabel string `toml:"required_label"`
	ExcludedLabel string `toml:"excluded_label"`

	AllowedProjectNames  []string `toml:"allowed_project_names"`
	ExcludedProjectNames []string `toml:"excluded_project_names"`
	ExcludedSectionNames []string `toml:"excluded_section_names"`
}

// MissingConfig is the on-disk form of reconcile.MissingRemotePolicy
// (§4.5.7). Mode strings decode directly to reconcile.MissingRemoteMode
// values ("keep-in-place", "move-to-folder", "stop-syncing").
type MissingConfig struct {
	CompletedMode   string `toml:"completed_mode"`
	CompletedFolder string `toml:"completed_folder"`

	DeletedMode   string `toml:"deleted_mode"`
	DeletedFolder string `toml:"deleted_folder"`

	RecentlyDeletedLimit int `toml:"recently_deleted_limit"`
}

// ConflictConfig selects the edit-edit conflict policy (§4.5.5).
type ConflictConfig struct {
	// Strategy is "local-wins" or "remote-wins".
	Strategy string `toml:"strategy"`
}

// LoggingConfig controls the slog handler the CLI builds at startup —
// same shape as the teacher's LoggingConfig.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // auto, text, json
	LogFile   string `toml:"log_file"`   // empty logs to stderr
}

// NetworkConfig bounds the Todoist HTTP client's timeouts and retry
// behavior (§6 — the client itself is out of scope, but its ambient
// network posture still needs somewhere to live).
type NetworkConfig struct {
	ConnectTimeout string `toml:"connect_timeout"`
	RequestTimeout string `toml:"request_timeout"`
	MaxRetries     int    `toml:"max_retries"`

	TodoistClientID     string `toml:"todoist_client_id"`
	TodoistClientSecret string `toml:"todoist_client_secret"`
	TokenFilePath       string `toml:"token_file_path"`
}
