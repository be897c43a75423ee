package config

import (
	"time"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/reconcile"
)

// ToReconcileConfig projects the on-disk config down to the narrow
// settings surface internal/reconcile depends on. Called once per run,
// after Resolve has already validated every field this reads.
func (c *Config) ToReconcileConfig() reconcile.Config {
	return reconcile.Config{
		BaseFolder:           c.Vault.BaseFolder,
		UseProjectSubfolders: c.Vault.UseProjectSubfolders,
		UseSectionSubfolder:  c.Vault.UseSectionSubfolder,
		AutoRenameFiles:      c.Vault.AutoRenameFiles,

		ProjectArchiveFolder: c.Vault.ProjectArchiveFolder,
		SectionArchiveFolder: c.Vault.SectionArchiveFolder,

		ProjectTemplate: c.Vault.ProjectTemplate,
		SectionTemplate: c.Vault.SectionTemplate,

		Import: reconcile.ImportFilter{
			AssignedToMe:         c.Import.AssignedToMe,
			RequiredLabel:        c.Import.RequiredLabel,
			ExcludedLabel:        c.Import.ExcludedLabel,
			AllowedProjectNames:  c.Import.AllowedProjectNames,
			ExcludedProjectNames: c.Import.ExcludedProjectNames,
			ExcludedSectionNames: c.Import.ExcludedSectionNames,
		},

		MissingRemote: reconcile.MissingRemotePolicy{
			CompletedMode:   reconcile.MissingRemoteMode(c.Missing.CompletedMode),
			CompletedFolder: c.Missing.CompletedFolder,
			DeletedMode:     reconcile.MissingRemoteMode(c.Missing.DeletedMode),
			DeletedFolder:   c.Missing.DeletedFolder,

			RecentlyDeletedLimit: c.Missing.RecentlyDeletedLimit,
		},

		Conflict: reconcile.ConflictPolicy(c.Conflict.Strategy),
	}
}

// ToPropNames projects PropNamesConfig down to frontmatter.PropNames,
// falling back to frontmatter.DefaultPropNames() field-by-field for
// anything left blank in the TOML file.
func (c *Config) ToPropNames() frontmatter.PropNames {
	d := frontmatter.DefaultPropNames()
	p := c.Props

	override := func(configured, fallback string) string {
		if configured == "" {
			return fallback
		}

		return configured
	}

	return frontmatter.PropNames{
		NoteKind:  override(p.NoteKind, d.NoteKind),
		VaultUUID: override(p.VaultUUID, d.VaultUUID),
		Created:   override(p.Created, d.Created),
		Modified:  override(p.Modified, d.Modified),
		Tags:      override(p.Tags, d.Tags),

		TaskTitle:       override(p.TaskTitle, d.TaskTitle),
		TaskStatus:      override(p.TaskStatus, d.TaskStatus),
		TaskDone:        override(p.TaskDone, d.TaskDone),
		RemoteTaskID:    override(p.RemoteTaskID, d.RemoteTaskID),
		RemoteProjectID: override(p.RemoteProjectID, d.RemoteProjectID),
		RemoteSectionID: override(p.RemoteSectionID, d.RemoteSectionID),
		ProjectName:     override(p.ProjectName, d.ProjectName),
		SectionName:     override(p.SectionName, d.SectionName),
		ProjectLink:     override(p.ProjectLink, d.ProjectLink),
		SectionLink:     override(p.SectionLink, d.SectionLink),
		Priority:        override(p.Priority, d.Priority),
		PriorityLabel:   override(p.PriorityLabel, d.PriorityLabel),
		DueDate:         override(p.DueDate, d.DueDate),
		DueString:       override(p.DueString, d.DueString),
		IsRecurring:     override(p.IsRecurring, d.IsRecurring),
		Deadline:        override(p.Deadline, d.Deadline),
		Description:     override(p.Description, d.Description),
		Labels:          override(p.Labels, d.Labels),
		ParentTaskLink:  override(p.ParentTaskLink, d.ParentTaskLink),
		ChildTaskLinks:  override(p.ChildTaskLinks, d.ChildTaskLinks),
		HasChildren:     override(p.HasChildren, d.HasChildren),
		ChildCount:      override(p.ChildCount, d.ChildCount),
		URL:             override(p.URL, d.URL),

		SyncFlagKey:             override(p.SyncFlagKey, d.SyncFlagKey),
		SyncStatus:              override(p.SyncStatus, d.SyncStatus),
		PendingRemoteID:         override(p.PendingRemoteID, d.PendingRemoteID),
		LastImportedFingerprint: override(p.LastImportedFingerprint, d.LastImportedFingerprint),
		LastSyncedFingerprint:   override(p.LastSyncedFingerprint, d.LastSyncedFingerprint),
		LastImportedAt:          override(p.LastImportedAt, d.LastImportedAt),
		IsDeleted:               override(p.IsDeleted, d.IsDeleted),
		Recurrence:              override(p.Recurrence, d.Recurrence),
		CompleteInstances:       override(p.CompleteInstances, d.CompleteInstances),

		Color:             override(p.Color, d.Color),
		IsArchived:        override(p.IsArchived, d.IsArchived),
		ParentProjectID:   override(p.ParentProjectID, d.ParentProjectID),
		ParentProjectLink: override(p.ParentProjectLink, d.ParentProjectLink),
		ParentProjectName: override(p.ParentProjectName, d.ParentProjectName),
	}
}

// ConnectTimeoutDuration parses NetworkConfig.ConnectTimeout, already
// validated by Validate as a well-formed duration no shorter than the
// configured minimum.
func (c *Config) ConnectTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Network.ConnectTimeout)
	return d
}

// RequestTimeoutDuration parses NetworkConfig.RequestTimeout.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Network.RequestTimeout)
	return d
}
