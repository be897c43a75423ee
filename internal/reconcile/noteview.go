package reconcile

import (
	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// loadTaskNote reads a TaskNote's frontmatter fields out of doc using the
// configured key table. Fields with no corresponding key carry their zero
// value — it is the caller's job to decide whether that is meaningful.
func loadTaskNote(doc *frontmatter.Document, p frontmatter.PropNames) vaultmodel.TaskNote {
	created, _ := doc.GetTime(p.Created)
	modified, _ := doc.GetTime(p.Modified)
	lastImportedAt, _ := doc.GetTime(p.LastImportedAt)

	return vaultmodel.TaskNote{
		VaultUUID:   doc.GetString(p.VaultUUID),
		Created:     created,
		Modified:    modified,
		Tags:        doc.GetStringList(p.Tags),
		Title:       doc.GetString(p.TaskTitle),
		Description: doc.GetString(p.Description),
		Status:      vaultmodel.TaskStatus(doc.GetString(p.TaskStatus)),
		Done:        doc.GetBool(p.TaskDone),

		RemoteTaskID:    doc.GetString(p.RemoteTaskID),
		RemoteProjectID: doc.GetString(p.RemoteProjectID),
		RemoteSectionID: doc.GetString(p.RemoteSectionID),
		ProjectName:     doc.GetString(p.ProjectName),
		SectionName:     doc.GetString(p.SectionName),
		ProjectLink:     doc.GetString(p.ProjectLink),
		SectionLink:     doc.GetString(p.SectionLink),
		Priority:        doc.GetInt(p.Priority),
		PriorityLabel:   doc.GetString(p.PriorityLabel),
		Due: vaultmodel.Due{
			Date:        doc.GetString(p.DueDate),
			String:      doc.GetString(p.DueString),
			IsRecurring: doc.GetBool(p.IsRecurring),
		},
		Deadline:       doc.GetString(p.Deadline),
		Labels:         doc.GetStringList(p.Labels),
		ParentTaskLink: doc.GetString(p.ParentTaskLink),
		ChildTaskLinks: doc.GetStringList(p.ChildTaskLinks),
		HasChildren:    doc.GetBool(p.HasChildren),
		ChildCount:     doc.GetInt(p.ChildCount),
		URL:            doc.GetString(p.URL),

		SyncFlag:                doc.GetBool(p.SyncFlagKey),
		SyncStatus:              vaultmodel.SyncStatus(doc.GetString(p.SyncStatus)),
		PendingRemoteID:         doc.GetString(p.PendingRemoteID),
		LastImportedFingerprint: doc.GetString(p.LastImportedFingerprint),
		LastSyncedFingerprint:   doc.GetString(p.LastSyncedFingerprint),
		LastImportedAt:          lastImportedAt,
		IsDeleted:               doc.GetBool(p.IsDeleted),
		Recurrence:              doc.GetString(p.Recurrence),
		CompleteInstances:       doc.GetStringList(p.CompleteInstances),
	}
}

// saveTaskNote writes every field of note into doc. Callers that only want
// to touch a subset of fields (e.g. the local-wins conflict path, §4.5.5)
// should call the narrower save* helpers below instead of this one.
func saveTaskNote(doc *frontmatter.Document, p frontmatter.PropNames, note vaultmodel.TaskNote) {
	doc.SetString(p.NoteKind, vaultmodel.KindTask.String())
	doc.SetString(p.VaultUUID, note.VaultUUID)

	if !note.Created.IsZero() {
		doc.SetTime(p.Created, note.Created)
	}

	doc.SetTime(p.Modified, note.Modified)
	doc.SetStringList(p.Tags, note.Tags)

	doc.SetString(p.TaskTitle, note.Title)
	doc.SetString(p.Description, note.Description)
	doc.SetString(p.TaskStatus, string(note.Status))
	doc.SetBool(p.TaskDone, note.Done)

	saveRemoteLinkage(doc, p, note)

	doc.SetBool(p.SyncFlagKey, note.SyncFlag)
	doc.SetString(p.SyncStatus, string(note.SyncStatus))
	doc.SetString(p.PendingRemoteID, note.PendingRemoteID)
	doc.SetString(p.LastImportedFingerprint, note.LastImportedFingerprint)
	doc.SetString(p.LastSyncedFingerprint, note.LastSyncedFingerprint)

	if !note.LastImportedAt.IsZero() {
		doc.SetTime(p.LastImportedAt, note.LastImportedAt)
	}

	doc.SetBool(p.IsDeleted, note.IsDeleted)
	doc.SetStringList(p.CompleteInstances, note.CompleteInstances)

	if note.Recurrence != "" {
		doc.SetString(p.Recurrence, note.Recurrence)
	}
}

// saveRemoteLinkage writes only the remote-owned metadata fields (§4.5.5's
// local-wins exception): task/project/section ids, project/section names
// and wikilinks, labels, priority, due, deadline, url. It deliberately
// never touches task_title, task_status, task_done, or description; the
// parent link is written by the back-link pass, not here.
func saveRemoteLinkage(doc *frontmatter.Document, p frontmatter.PropNames, note vaultmodel.TaskNote) {
	doc.SetString(p.RemoteTaskID, note.RemoteTaskID)
	doc.SetString(p.RemoteProjectID, note.RemoteProjectID)
	doc.SetString(p.RemoteSectionID, note.RemoteSectionID)
	doc.SetString(p.ProjectName, note.ProjectName)
	doc.SetString(p.SectionName, note.SectionName)
	doc.SetString(p.ProjectLink, note.ProjectLink)
	doc.SetString(p.SectionLink, note.SectionLink)
	doc.SetInt(p.Priority, note.Priority)
	doc.SetString(p.PriorityLabel, note.PriorityLabel)
	doc.SetString(p.DueDate, note.Due.Date)
	doc.SetString(p.DueString, note.Due.String)
	doc.SetBool(p.IsRecurring, note.Due.IsRecurring)
	doc.SetString(p.Deadline, note.Deadline)
	doc.SetStringList(p.Labels, note.Labels)
	doc.SetString(p.URL, note.URL)
}

// loadProjectNote reads a ProjectNote out of doc.
func loadProjectNote(doc *frontmatter.Document, p frontmatter.PropNames) vaultmodel.ProjectNote {
	created, _ := doc.GetTime(p.Created)
	modified, _ := doc.GetTime(p.Modified)

	return vaultmodel.ProjectNote{
		VaultUUID:       doc.GetString(p.VaultUUID),
		Created:         created,
		Modified:        modified,
		Tags:            doc.GetStringList(p.Tags),
		Name:            doc.GetString(p.ProjectName),
		RemoteProjectID: doc.GetString(p.RemoteProjectID),
		Color:           doc.GetString(p.Color),
		ParentProjectID: doc.GetString(p.ParentProjectID),
		ParentLink:      doc.GetString(p.ParentProjectLink),
		URL:             doc.GetString(p.URL),
		IsArchived:      doc.GetBool(p.IsArchived),
	}
}

func saveProjectNote(doc *frontmatter.Document, p frontmatter.PropNames, note vaultmodel.ProjectNote) {
	doc.SetString(p.NoteKind, vaultmodel.KindProject.String())
	doc.SetString(p.VaultUUID, note.VaultUUID)

	if !note.Created.IsZero() {
		doc.SetTime(p.Created, note.Created)
	}

	doc.SetTime(p.Modified, note.Modified)
	doc.SetStringList(p.Tags, note.Tags)
	doc.SetString(p.ProjectName, note.Name)
	doc.SetString(p.RemoteProjectID, note.RemoteProjectID)
	doc.SetString(p.Color, note.Color)
	doc.SetString(p.ParentProjectID, note.ParentProjectID)
	doc.SetString(p.ParentProjectLink, note.ParentLink)
	doc.SetString(p.URL, note.URL)
	doc.SetBool(p.IsArchived, note.IsArchived)
}

// loadSectionNote reads a SectionNote out of doc.
func loadSectionNote(doc *frontmatter.Document, p frontmatter.PropNames) vaultmodel.SectionNote {
	created, _ := doc.GetTime(p.Created)
	modified, _ := doc.GetTime(p.Modified)

	return vaultmodel.SectionNote{
		VaultUUID:       doc.GetString(p.VaultUUID),
		Created:         created,
		Modified:        modified,
		Tags:            doc.GetStringList(p.Tags),
		Name:            doc.GetString(p.SectionName),
		RemoteSectionID: doc.GetString(p.RemoteSectionID),
		RemoteProjectID: doc.GetString(p.RemoteProjectID),
		ProjectName:     doc.GetString(p.ProjectName),
		ProjectLink:     doc.GetString(p.ProjectLink),
		URL:             doc.GetString(p.URL),
		IsArchived:      doc.GetBool(p.IsArchived),
	}
}

func saveSectionNote(doc *frontmatter.Document, p frontmatter.PropNames, note vaultmodel.SectionNote) {
	doc.SetString(p.NoteKind, vaultmodel.KindSection.String())
	doc.SetString(p.VaultUUID, note.VaultUUID)

	if !note.Created.IsZero() {
		doc.SetTime(p.Created, note.Created)
	}

	doc.SetTime(p.Modified, note.Modified)
	doc.SetStringList(p.Tags, note.Tags)
	doc.SetString(p.SectionName, note.Name)
	doc.SetString(p.RemoteSectionID, note.RemoteSectionID)
	doc.SetString(p.RemoteProjectID, note.RemoteProjectID)
	doc.SetString(p.ProjectName, note.ProjectName)
	doc.SetString(p.ProjectLink, note.ProjectLink)
	doc.SetString(p.URL, note.URL)
	doc.SetBool(p.IsArchived, note.IsArchived)
}
