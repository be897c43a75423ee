package reconcile

import (
	"context"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
	"github.com/connradolisboa/todoist-vault-sync/pkg/fingerprint"
)

// pushPendingCreates implements §4.5.1: every task note flagged for sync
// but never pushed gets created remotely, with the idempotency mark
// (pending_remote_id) written immediately after the create call so a
// crash mid-dispatch never produces a duplicate remote task on retry.
func (r *Reconciler) pushPendingCreates(ctx context.Context, idx *vaultindex.Index, snapshot *vaultmodel.RemoteSnapshot, summary *Summary) {
	projectIDByName := indexProjectIDsByName(snapshot)
	sectionIDByName := indexSectionIDsByName(snapshot)

	for _, e := range idx.All {
		if e.Kind != vaultmodel.KindTask {
			continue
		}

		note := loadTaskNote(docFromFields(e.Fields), r.props)

		if !note.SyncFlag || note.RemoteTaskID != "" || note.Title == "" {
			continue
		}

		var err error
		if note.PendingRemoteID != "" {
			// A prior run created the remote task and wrote the
			// idempotency mark but crashed before the confirming write.
			// Finish the dispatch against the already-created ID instead
			// of creating a second remote task.
			err = r.assimilatePendingCreate(ctx, e, note, projectIDByName, sectionIDByName)
		} else {
			err = r.dispatchCreate(ctx, e, note, projectIDByName, sectionIDByName)
		}

		if err != nil {
			r.logger.Error("reconcile: pending create failed", "path", e.Ref.Path, "error", err)
			summary.recordError(err)

			continue
		}

		summary.Created++
	}
}

// assimilatePendingCreate resumes a create that crashed after the remote
// task was made but before the confirming frontmatter write (§4.5.1's
// crash-safety invariant). It never calls CreateTask again.
func (r *Reconciler) assimilatePendingCreate(
	ctx context.Context, e vaultindex.Entry, note vaultmodel.TaskNote, projectIDByName, sectionIDByName map[string]string,
) error {
	id := note.PendingRemoteID

	if note.Done {
		done := true
		if err := r.remote.UpdateTask(ctx, vaultmodel.TaskPatch{ID: id, IsDone: &done}); err != nil {
			return err
		}
	}

	fp := fingerprint.Compute(fingerprint.Fields{
		Title:       note.Title,
		Description: note.Description,
		Checked:     note.Done,
		ProjectID:   projectIDByName[note.ProjectName],
		SectionID:   sectionIDByName[note.SectionName],
		Priority:    note.Priority,
		DueDate:     note.Due.Date,
		DueString:   note.Due.String,
		IsRecurring: note.Due.IsRecurring,
	}, fingerprint.LocalSync)

	return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)
		doc.SetString(r.props.RemoteTaskID, id)
		doc.SetString(r.props.SyncStatus, string(vaultmodel.SyncSynced))
		doc.SetString(r.props.LastSyncedFingerprint, fp)
		doc.DeleteString(r.props.PendingRemoteID)
		doc.SetTime(r.props.LastImportedAt, r.clock.Now())

		return nil
	})
}

func (r *Reconciler) dispatchCreate(
	ctx context.Context,
	e vaultindex.Entry,
	note vaultmodel.TaskNote,
	projectIDByName, sectionIDByName map[string]string,
) error {
	projectID := projectIDByName[note.ProjectName]
	sectionID := sectionIDByName[note.SectionName]

	payload := vaultmodel.TaskPayload{
		Title:       note.Title,
		Description: note.Description,
		ProjectID:   projectID,
		SectionID:   sectionID,
		Priority:    note.Priority,
		Due:         note.Due,
		Labels:      note.Labels,
	}

	newID, err := r.remote.CreateTask(ctx, payload)
	if err != nil {
		return err
	}

	// Step 2: write the idempotency mark immediately, before anything
	// else can fail.
	if err := r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)
		doc.SetString(r.props.PendingRemoteID, newID)

		return nil
	}); err != nil {
		return err
	}

	if note.Done {
		done := true
		if err := r.remote.UpdateTask(ctx, vaultmodel.TaskPatch{ID: newID, IsDone: &done}); err != nil {
			return err
		}
	}

	fp := fingerprint.Compute(fingerprint.Fields{
		Title:       note.Title,
		Description: note.Description,
		Checked:     note.Done,
		ProjectID:   projectID,
		SectionID:   sectionID,
		Priority:    note.Priority,
		DueDate:     note.Due.Date,
		DueString:   note.Due.String,
		IsRecurring: note.Due.IsRecurring,
	}, fingerprint.LocalSync)

	return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)
		doc.SetString(r.props.RemoteTaskID, newID)
		doc.SetString(r.props.SyncStatus, string(vaultmodel.SyncSynced))
		doc.SetString(r.props.LastSyncedFingerprint, fp)
		doc.DeleteString(r.props.PendingRemoteID)
		doc.SetTime(r.props.LastImportedAt, r.clock.Now())

		return nil
	})
}

// pushPendingUpdates implements §4.5.2: every task note marked dirty_local
// with an already-assigned remote ID is re-pushed, unless its local-sync
// fingerprint is unchanged from the last push (a stale dirty mark).
func (r *Reconciler) pushPendingUpdates(ctx context.Context, idx *vaultindex.Index, summary *Summary) {
	for _, e := range idx.All {
		if e.Kind != vaultmodel.KindTask {
			continue
		}

		note := loadTaskNote(docFromFields(e.Fields), r.props)

		if note.SyncStatus != vaultmodel.SyncDirtyLocal || note.RemoteTaskID == "" {
			continue
		}

		fp := localSyncFingerprint(note)

		if fp == note.LastSyncedFingerprint {
			r.markStale(ctx, e, summary)
			continue
		}

		if err := r.dispatchUpdate(ctx, e, note, fp); err != nil {
			r.logger.Error("reconcile: pending update failed", "path", e.Ref.Path, "error", err)
			summary.recordError(err)

			continue
		}

		summary.Updated++
	}
}

func (r *Reconciler) markStale(ctx context.Context, e vaultindex.Entry, summary *Summary) {
	err := r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		docFromFields(fields).SetString(r.props.SyncStatus, string(vaultmodel.SyncSynced))
		return nil
	})
	if err != nil {
		r.logger.Error("reconcile: clear stale dirty mark failed", "path", e.Ref.Path, "error", err)
		summary.recordError(err)
	}
}

func (r *Reconciler) dispatchUpdate(ctx context.Context, e vaultindex.Entry, note vaultmodel.TaskNote, fp string) error {
	title := note.Title
	description := note.Description
	done := note.Done
	priority := note.Priority
	due := note.Due

	patch := vaultmodel.TaskPatch{
		ID:          note.RemoteTaskID,
		Title:       &title,
		Description: &description,
		IsDone:      &done,
		Priority:    &priority,
		Due:         &due,
		Labels:      &note.Labels,
	}

	if err := r.remote.UpdateTask(ctx, patch); err != nil {
		return err
	}

	return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)
		doc.SetString(r.props.SyncStatus, string(vaultmodel.SyncSynced))
		doc.SetString(r.props.LastSyncedFingerprint, fp)

		if note.Due.IsRecurring && note.Done && note.Due.Date != "" {
			instances := append(append([]string{}, note.CompleteInstances...), note.Due.Date)
			doc.SetStringList(r.props.CompleteInstances, instances)
		}

		return nil
	})
}

// localSyncFingerprint projects a TaskNote onto fingerprint.Fields under
// the LocalSync variant (§4.1: title, description, is-done, is-recurring,
// project id, section id, due date/string).
func localSyncFingerprint(note vaultmodel.TaskNote) string {
	return fingerprint.Compute(fingerprint.Fields{
		Title:       note.Title,
		Description: note.Description,
		Checked:     note.Done,
		ProjectID:   note.RemoteProjectID,
		SectionID:   note.RemoteSectionID,
		DueDate:     note.Due.Date,
		DueString:   note.Due.String,
		IsRecurring: note.Due.IsRecurring,
	}, fingerprint.LocalSync)
}

func indexProjectIDsByName(snapshot *vaultmodel.RemoteSnapshot) map[string]string {
	out := make(map[string]string, len(snapshot.Projects))
	for _, p := range snapshot.Projects {
		out[p.Name] = p.ID
	}

	return out
}

func indexSectionIDsByName(snapshot *vaultmodel.RemoteSnapshot) map[string]string {
	out := make(map[string]string, len(snapshot.Sections))
	for _, s := range snapshot.Sections {
		out[s.Name] = s.ID
	}

	return out
}
