package reconcile

import (
	"context"

	"github.com/connradolisboa/todoist-vault-sync/internal/pathpolicy"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
	"github.com/connradolisboa/todoist-vault-sync/pkg/fingerprint"
)

// pulledTask is what upsertTasks hands back to the back-link pass: enough
// to associate a remote item's parent/child relationships with the file
// that now represents it, without a second frontmatter read.
type pulledTask struct {
	RemoteID string
	ParentID string
	Ref      vaultmodel.FileRef
}

// upsertTasks implements the task half of §4.5.3: every included remote
// item gets a TaskNote, created fresh or reconciled against its existing
// file via the remote-import fingerprint short-circuit.
func (r *Reconciler) upsertTasks(
	ctx context.Context,
	idx *vaultindex.Index,
	fs *filteredSnapshot,
	items []vaultmodel.RemoteItem,
	projects projectPaths,
	sections map[string]string,
	summary *Summary,
) []pulledTask {
	out := make([]pulledTask, 0, len(items))

	for _, it := range items {
		ref, err := r.upsertOneTask(ctx, idx, fs, it, projects, sections, summary)
		if err != nil {
			r.logger.Error("reconcile: upsert task failed", "item_id", it.ID, "error", err)
			summary.recordError(err)

			continue
		}

		out = append(out, pulledTask{RemoteID: it.ID, ParentID: it.ParentID, Ref: ref})
	}

	return out
}

func (r *Reconciler) upsertOneTask(
	ctx context.Context,
	idx *vaultindex.Index,
	fs *filteredSnapshot,
	it vaultmodel.RemoteItem,
	projects projectPaths,
	sections map[string]string,
	summary *Summary,
) (vaultmodel.FileRef, error) {
	projectName := fs.projectByID[it.ProjectID].Name
	sectionName := fs.sectionByID[it.SectionID].Name
	projectLink := wikilink(projects.notePath[it.ProjectID], projectName)
	sectionLink := ""

	if it.SectionID != "" {
		sectionLink = wikilink(sections[it.SectionID], sectionName)
	}

	fp := fingerprint.Compute(fingerprint.Fields{
		Title:       it.Content,
		Description: it.Description,
		Checked:     it.Checked,
		ProjectID:   it.ProjectID,
		ProjectName: projectName,
		SectionID:   it.SectionID,
		SectionName: sectionName,
		Priority:    it.Priority,
		DueDate:     it.Due.Date,
		DueString:   it.Due.String,
		IsRecurring: it.Due.IsRecurring,
		ParentID:    it.ParentID,
		Labels:      it.Labels,
		Deadline:    it.DeadlineDate,
	}, fingerprint.RemoteImport)

	entry, found := idx.ByRemoteTaskID[it.ID]
	if !found {
		ref, err := r.createTaskNote(ctx, it, projectName, sectionName, projectLink, sectionLink, fp)
		if err == nil {
			summary.Created++
		}

		return ref, err
	}

	existing := loadTaskNote(docFromFields(entry.Fields), r.props)

	if fp == existing.LastImportedFingerprint {
		if existing.ProjectLink == projectLink && existing.SectionLink == sectionLink {
			return entry.Ref, nil
		}

		err := r.vault.ProcessFrontmatter(ctx, entry.Ref, func(fields map[string]any) error {
			doc := docFromFields(fields)
			doc.SetString(r.props.ProjectLink, projectLink)
			doc.SetString(r.props.SectionLink, sectionLink)

			return nil
		})

		return entry.Ref, err
	}

	incoming := existing
	incoming.ProjectName = projectName
	incoming.SectionName = sectionName
	incoming.RemoteProjectID = it.ProjectID
	incoming.RemoteSectionID = it.SectionID
	incoming.ProjectLink = projectLink
	incoming.SectionLink = sectionLink
	incoming.Priority = it.Priority
	incoming.Due = it.Due
	incoming.Deadline = it.DeadlineDate
	incoming.Labels = it.Labels
	incoming.URL = existing.URL
	incoming.Title = it.Content
	incoming.Description = it.Description
	incoming.Done = it.Checked

	resolved, err := r.resolveConflict(ctx, entry.Ref, existing, incoming, fp)
	if err != nil {
		return entry.Ref, err
	}

	summary.Updated++

	updatedEntry := entry
	if err := r.relocateTask(ctx, &updatedEntry, resolved, idx); err != nil {
		return updatedEntry.Ref, err
	}

	return updatedEntry.Ref, nil
}

func (r *Reconciler) createTaskNote(
	ctx context.Context, it vaultmodel.RemoteItem, projectName, sectionName, projectLink, sectionLink, fp string,
) (vaultmodel.FileRef, error) {
	path := pathpolicy.TaskFilePath(it.ID, it.Content, projectName, sectionName, pathpolicy.TaskFileConfig{
		BaseFolder:           r.cfg.BaseFolder,
		UseProjectSubfolders: r.cfg.UseProjectSubfolders,
		UseSectionSubfolder:  r.cfg.UseSectionSubfolder,
	}, func(candidate string) bool {
		exists, _ := r.vault.Exists(ctx, candidate)
		return exists
	})

	content := ""
	if r.resolver != nil {
		resolved, err := r.resolver.Resolve("", r.clock.Now(), map[string]string{
			"task_title": it.Content,
		})
		if err == nil {
			content = resolved
		}
	}

	ref, err := r.vault.CreateFile(ctx, path, content)
	if err != nil {
		return vaultmodel.FileRef{}, err
	}

	note := vaultmodel.TaskNote{
		VaultUUID:   newUUID(),
		Created:     r.clock.Now(),
		Modified:    r.clock.Now(),
		Title:       it.Content,
		Description: it.Description,
		Status:      statusFor(it.Checked),
		Done:        it.Checked,

		RemoteTaskID:    it.ID,
		RemoteProjectID: it.ProjectID,
		RemoteSectionID: it.SectionID,
		ProjectName:     projectName,
		SectionName:     sectionName,
		ProjectLink:     projectLink,
		SectionLink:     sectionLink,
		Priority:        it.Priority,
		Due:             it.Due,
		Deadline:        it.DeadlineDate,
		Labels:          it.Labels,

		SyncFlag:                true,
		SyncStatus:              vaultmodel.SyncSynced,
		LastImportedFingerprint: fp,
		LastImportedAt:          r.clock.Now(),
	}

	err = r.vault.ProcessFrontmatter(ctx, ref, func(fields map[string]any) error {
		saveTaskNote(docFromFields(fields), r.props, note)
		return nil
	})

	return ref, err
}

func statusFor(done bool) vaultmodel.TaskStatus {
	if done {
		return vaultmodel.StatusDone
	}

	return vaultmodel.StatusOpen
}
