package frontmatter

// PropNames is the configurable frontmatter key table (§4.3). Every key the
// engine reads or writes goes through this table rather than a literal
// string, so a vault can rename its frontmatter keys without the engine
// losing track of previously-written notes.
type PropNames struct {
	NoteKind    string
	VaultUUID   string
	Created     string
	Modified    string
	Tags        string

	TaskTitle       string
	TaskStatus      string
	TaskDone        string
	RemoteTaskID    string
	RemoteProjectID string
	RemoteSectionID string
	ProjectName     string
	SectionName     string
	ProjectLink     string
	SectionLink     string
	Priority        string
	PriorityLabel   string
	DueDate         string
	DueString       string
	IsRecurring     string
	Deadline        string
	Description     string
	Labels          string
	ParentTaskLink  string
	ChildTaskLinks  string
	HasChildren     string
	ChildCount      string
	URL             string

	SyncFlagKey             string
	SyncStatus              string
	PendingRemoteID         string
	LastImportedFingerprint string
	LastSyncedFingerprint   string
	LastImportedAt          string
	IsDeleted               string
	Recurrence              string
	CompleteInstances       string

	Color             string
	IsArchived        string
	ParentProjectID   string
	ParentProjectLink string
	ParentProjectName string
}

// DefaultPropNames returns the out-of-the-box key table, matching the key
// names spelled out in §3's frontmatter schema.
func DefaultPropNames() PropNames {
	return PropNames{
		NoteKind:  "note_kind",
		VaultUUID: "vault_uuid",
		Created:   "created",
		Modified:  "modified",
		Tags:      "tags",

		TaskTitle:       "task_title",
		TaskStatus:      "task_status",
		TaskDone:        "task_done",
		RemoteTaskID:    "remote_task_id",
		RemoteProjectID: "remote_project_id",
		RemoteSectionID: "remote_section_id",
		ProjectName:     "project_name",
		SectionName:     "section_name",
		ProjectLink:     "project_link",
		SectionLink:     "section_link",
		Priority:        "priority",
		PriorityLabel:   "priority_label",
		DueDate:         "due_date",
		DueString:       "due_string",
		IsRecurring:     "is_recurring",
		Deadline:        "deadline",
		Description:     "description",
		Labels:          "labels",
		ParentTaskLink:  "parent_task_link",
		ChildTaskLinks:  "child_tasks",
		HasChildren:     "has_children",
		ChildCount:      "child_count",
		URL:             "url",

		SyncFlagKey:             "sync_flag",
		SyncStatus:              "sync_status",
		PendingRemoteID:         "pending_remote_id",
		LastImportedFingerprint: "last_imported_fingerprint",
		LastSyncedFingerprint:   "last_synced_fingerprint",
		LastImportedAt:          "last_imported_at",
		IsDeleted:               "is_deleted",
		Recurrence:              "recurrence",
		CompleteInstances:       "complete_instances",

		Color:             "color",
		IsArchived:        "is_archived",
		ParentProjectID:   "parent_project_id",
		ParentProjectLink: "parent_project_link",
		ParentProjectName: "parent_project_name",
	}
}

// legacyKeys maps a canonical field (identified by its DefaultPropNames
// value) to the hard-coded legacy key it used to be written under, before
// PropNames made it configurable. A dual-read getter checks the
// configured key first, falling back to the legacy key only when the
// configured key is absent — and a setter always deletes the legacy key
// once it has migrated a note to the preferred key.
var legacyKeys = map[string]string{
	"remote_task_id":    "todoist_id",
	"remote_project_id": "todoist_project_id",
	"remote_section_id": "todoist_section_id",
	"task_title":        "title",
	"due_date":          "due",
	"child_tasks":       "child_task_links",
}

// LegacyKeyFor returns the legacy key associated with the canonical key,
// and whether one is registered.
func LegacyKeyFor(canonicalKey string) (string, bool) {
	k, ok := legacyKeys[canonicalKey]
	return k, ok
}
