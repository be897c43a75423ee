// Package vaultmodel defines the shared data types for the reconciliation
// engine: the typed record views over frontmatter (TaskNote, ProjectNote,
// SectionNote), the remote snapshot shape, and the narrow collaborator
// interfaces consumed by the reconciler (remote client, vault file system,
// metadata cache, template resolver).
package vaultmodel

import "time"

// TaskStatus is the local task status, mirrored by task_done:bool.
type TaskStatus string

const (
	StatusOpen TaskStatus = "Open"
	StatusDone TaskStatus = "Done"
)

// SyncStatus tracks where a TaskNote sits in the push/pull lifecycle.
type SyncStatus string

const (
	SyncSynced            SyncStatus = "synced"
	SyncDirtyLocal         SyncStatus = "dirty_local"
	SyncQueuedLocalCreate  SyncStatus = "queued_local_create"
	SyncLocalOnly          SyncStatus = "local_only"
	SyncMissingRemote      SyncStatus = "missing_remote"
	SyncCompletedRemote    SyncStatus = "completed_remote"
	SyncArchivedRemote     SyncStatus = "archived_remote"
	SyncDeletedRemote      SyncStatus = "deleted_remote"
)

// FingerprintVariant selects which canonical field projection Fingerprint hashes.
type FingerprintVariant int

const (
	// VariantRemoteImport hashes the fields the remote side owns.
	VariantRemoteImport FingerprintVariant = iota
	// VariantLocalSync hashes the fields the local side pushes.
	VariantLocalSync
)

// NoteKind distinguishes the three managed note shapes that can occupy a
// vault file. A file is classified into exactly one kind by VaultIndex.
type NoteKind int

const (
	KindUnmanaged NoteKind = iota
	KindTask
	KindProject
	KindSection
)

// noteKindStrings is the on-disk "note_kind" frontmatter value for each
// kind, persisted so VaultIndex can classify a file without relying on
// which other fields happen to be present.
var noteKindStrings = map[NoteKind]string{
	KindUnmanaged: "",
	KindTask:      "task",
	KindProject:   "project",
	KindSection:   "section",
}

// String returns the on-disk "note_kind" value for k.
func (k NoteKind) String() string {
	return noteKindStrings[k]
}

// ParseNoteKind maps a "note_kind" frontmatter value back to a NoteKind.
// An unrecognized or empty value is KindUnmanaged.
func ParseNoteKind(value string) NoteKind {
	switch value {
	case "task":
		return KindTask
	case "project":
		return KindProject
	case "section":
		return KindSection
	default:
		return KindUnmanaged
	}
}

// Due holds a task's due-date fields as reported by the remote side.
type Due struct {
	Date        string // ISO YYYY-MM-DD, empty if unset
	String      string // natural-language due string, e.g. "every Monday"
	IsRecurring bool
}

// TaskNote is the typed view of a task file's frontmatter.
type TaskNote struct {
	// Identity
	VaultUUID string
	Created   time.Time
	Modified  time.Time
	Tags      []string

	// User-editable content
	Title       string
	Description string
	Status      TaskStatus
	Done        bool

	// Remote linkage
	RemoteTaskID    string
	RemoteProjectID string
	RemoteSectionID string
	ProjectName     string
	SectionName     string
	ProjectLink     string // wikilink to the owning ProjectNote
	SectionLink     string // wikilink to the owning SectionNote
	Priority        int
	PriorityLabel   string
	Due             Due
	Deadline        string
	Labels          []string
	ParentTaskID    string
	ParentTaskLink  string   // wikilink to the parent TaskNote
	ChildTaskLinks  []string // sorted wikilinks to child TaskNotes
	HasChildren     bool
	ChildCount      int
	URL             string

	// Sync state
	SyncFlag               bool
	SyncStatus             SyncStatus
	PendingRemoteID         string
	LastImportedFingerprint string
	LastSyncedFingerprint   string
	LastImportedAt          time.Time
	IsDeleted               bool
	Recurrence              string
	CompleteInstances       []string

	// Path is the file's current vault-relative path. Not part of the
	// frontmatter; populated by VaultIndex/Vault reads for convenience.
	Path string
}

// ProjectNote is the typed view of a project file's frontmatter.
type ProjectNote struct {
	VaultUUID       string
	Created         time.Time
	Modified        time.Time
	Tags            []string
	Name            string
	RemoteProjectID string
	Color           string
	ParentProjectID string
	ParentLink      string
	URL             string
	IsArchived      bool
	Path            string
}

// SectionNote is the typed view of a section file's frontmatter.
type SectionNote struct {
	VaultUUID       string
	Created         time.Time
	Modified        time.Time
	Tags            []string
	Name            string
	RemoteSectionID string
	RemoteProjectID string
	ProjectName     string
	ProjectLink     string
	URL             string
	IsArchived      bool
	Path            string
}

// RemoteItem is a single task row as reported by fetch_snapshot.
type RemoteItem struct {
	ID             string
	Content        string
	Description    string
	Checked        bool
	ProjectID      string
	SectionID      string
	ParentID       string
	Priority       int
	Due            Due
	DeadlineDate   string
	Labels         []string
	ResponsibleUID string
	IsDeleted      bool
}

// RemoteProject is a single project row as reported by fetch_snapshot.
type RemoteProject struct {
	ID         string
	Name       string
	ParentID   string
	Color      string
	IsArchived bool
}

// RemoteSection is a single section row as reported by fetch_snapshot.
type RemoteSection struct {
	ID         string
	Name       string
	ProjectID  string
	IsArchived bool
}

// RemoteSnapshot is the full listing of remote state as of one API call.
type RemoteSnapshot struct {
	Items      []RemoteItem
	Projects   []RemoteProject
	Sections   []RemoteSection
	UserID     string
	SyncToken  string
}
