package reconcile

// ImportFilter narrows the remote snapshot down to the items this vault
// wants to mirror (§4.5.3). An empty slice/string for any field means "no
// restriction" on that axis.
type ImportFilter struct {
	// AssignedToMe, when true, excludes items whose ResponsibleUID names
	// someone other than the authenticated user (resolved from the
	// snapshot's own UserID at filter time, since the config layer has
	// no standing way to know the account's Todoist user ID ahead of a
	// sync run). An unassigned item always passes.
	AssignedToMe bool

	// AssignedToUserID, when non-empty, excludes items whose
	// ResponsibleUID is set to someone else. Set directly by a caller
	// that already knows the target user ID; AssignedToMe takes
	// precedence when both are set, since it reflects the live
	// authenticated account rather than a possibly-stale configured ID.
	AssignedToUserID string

	// RequiredLabel, when non-empty, excludes items that do not carry it.
	RequiredLabel string
	// ExcludedLabel, when non-empty, excludes items that do carry it.
	ExcludedLabel string

	// AllowedProjectNames, when non-empty, restricts import to projects
	// whose name is in the list (case-sensitive, matching the vault's own
	// display names).
	AllowedProjectNames []string
	// ExcludedProjectNames excludes projects by name regardless of
	// AllowedProjectNames.
	ExcludedProjectNames []string
	// ExcludedSectionNames excludes sections by name.
	ExcludedSectionNames []string
}

// MissingRemoteMode is one policy action from the table in §4.5.7.
type MissingRemoteMode string

const (
	ModeKeepInPlace  MissingRemoteMode = "keep-in-place"
	ModeMoveToFolder MissingRemoteMode = "move-to-folder"
	// ModeStopSyncing only applies to the deleted state (§4.5.7) — it
	// makes no sense for a completed task, which still has a remote ID.
	ModeStopSyncing MissingRemoteMode = "stop-syncing"
)

// MissingRemotePolicy configures how TaskNotes whose remote ID vanished
// from the active snapshot are handled, split by whether the vanish was a
// completion or a deletion (§4.5.7).
type MissingRemotePolicy struct {
	CompletedMode   MissingRemoteMode
	CompletedFolder string // used only when CompletedMode == ModeMoveToFolder

	DeletedMode   MissingRemoteMode
	DeletedFolder string // used only when DeletedMode == ModeMoveToFolder

	// RecentlyDeletedLimit bounds the activity-log page size used to
	// build the recently-deleted-IDs set that distinguishes "completed"
	// from "deleted" (§6 fetch_recently_deleted_ids).
	RecentlyDeletedLimit int
}

// ConflictPolicy selects which side wins a detected edit-edit conflict
// (§4.5.5). It never discards data outright: local-wins still imports the
// remote-owned metadata, and remote-wins still lets the next push carry
// forward whatever the user types next.
type ConflictPolicy string

const (
	ConflictLocalWins  ConflictPolicy = "local-wins"
	ConflictRemoteWins ConflictPolicy = "remote-wins"
)

// Config bundles every policy knob the reconciler needs. It is the narrow,
// consumer-defined settings surface this package depends on — internal/config
// is responsible for producing one of these from the on-disk TOML, the same
// separation the teacher draws between config.ResolvedDrive and the sync
// package that only consumes the fields it needs.
type Config struct {
	BaseFolder           string
	UseProjectSubfolders bool
	UseSectionSubfolder  bool
	AutoRenameFiles      bool

	ProjectArchiveFolder string
	SectionArchiveFolder string

	ProjectTemplate string // empty uses the built-in default frontmatter
	SectionTemplate string

	Import        ImportFilter
	MissingRemote MissingRemotePolicy
	Conflict      ConflictPolicy
}
