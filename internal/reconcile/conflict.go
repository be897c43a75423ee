package reconcile

import (
	"context"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// resolveConflict implements §4.5.5: a task note whose remote-import
// fingerprint changed gets its fields applied according to the configured
// conflict policy. Local-wins leaves task_title/task_status/task_done/
// description/priority/due alone and only refreshes the remote-owned
// linkage fields via saveRemoteLinkage; remote-wins overwrites every
// field via saveTaskNote.
//
// Two rules apply regardless of policy: a recurring task whose remote due
// date has advanced past the stored due date gets the old due date
// appended to complete_instances (the remote side observed a completion
// cycle the local note hadn't recorded yet), and recurrence is write-once —
// it is only ever cleared by an explicit transition to non-recurring, never
// silently overwritten by a blank incoming value.
func (r *Reconciler) resolveConflict(
	ctx context.Context, ref vaultmodel.FileRef, existing, incoming vaultmodel.TaskNote, fp string,
) (vaultmodel.TaskNote, error) {
	completeInstances := existing.CompleteInstances

	if existing.Due.IsRecurring && existing.Due.Date != "" && incoming.Due.Date != "" && incoming.Due.Date > existing.Due.Date {
		completeInstances = append(append([]string{}, completeInstances...), existing.Due.Date)
	}

	localWins := r.cfg.Conflict == ConflictLocalWins

	note := incoming
	note.CompleteInstances = completeInstances
	note.LastImportedFingerprint = fp
	note.LastImportedAt = r.clock.Now()
	note.Recurrence = existing.Recurrence

	if localWins {
		note.Title = existing.Title
		note.Description = existing.Description
		note.Status = existing.Status
		note.Done = existing.Done
		note.Priority = existing.Priority
		note.Due = existing.Due
	}

	if !incoming.Due.IsRecurring && existing.Recurrence != "" {
		note.Recurrence = ""
	}

	err := r.vault.ProcessFrontmatter(ctx, ref, func(fields map[string]any) error {
		doc := docFromFields(fields)

		if localWins {
			saveRemoteLinkage(doc, r.props, note)
			doc.SetString(r.props.LastImportedFingerprint, note.LastImportedFingerprint)
			doc.SetTime(r.props.LastImportedAt, note.LastImportedAt)
			doc.SetStringList(r.props.CompleteInstances, note.CompleteInstances)
		} else {
			saveTaskNote(doc, r.props, note)
		}

		if !incoming.Due.IsRecurring && existing.Recurrence != "" {
			doc.DeleteString(r.props.Recurrence)
		}

		return nil
	})

	return note, err
}
