package reconcile

import (
	"context"
	"strings"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// handleMissingRemote implements §4.5.7: a task note carrying a
// remote_task_id that no longer appears in the snapshot is classified as
// either completed-and-purged or deleted, and disposed of per the
// configured policy (keep in place, move to a holding folder, or stop
// syncing it). Completed notes are marked task_status=Done/task_done=true;
// deleted notes are marked is_deleted=true; stop-syncing additionally
// removes remote_task_id so the note becomes local-only.
func (r *Reconciler) handleMissingRemote(ctx context.Context, idx *vaultindex.Index, snapshot *vaultmodel.RemoteSnapshot, summary *Summary) {
	present := make(map[string]bool, len(snapshot.Items))
	for _, it := range snapshot.Items {
		present[it.ID] = true
	}

	deletedRecently, err := r.remote.FetchRecentlyDeletedIDs(ctx, r.cfg.MissingRemote.RecentlyDeletedLimit)
	if err != nil {
		r.logger.Error("reconcile: fetch recently deleted ids failed", "error", err)
		summary.recordError(err)

		deletedRecently = map[string]struct{}{}
	}

	for _, e := range idx.All {
		if e.Kind != vaultmodel.KindTask {
			continue
		}

		note := loadTaskNote(docFromFields(e.Fields), r.props)

		if note.RemoteTaskID == "" || present[note.RemoteTaskID] {
			continue
		}

		if terminalSyncStatuses[note.SyncStatus] {
			continue
		}

		_, deleted := deletedRecently[note.RemoteTaskID]

		if err := r.disposeMissing(ctx, e, note, deleted, summary); err != nil {
			r.logger.Error("reconcile: dispose missing task failed", "path", e.Ref.Path, "error", err)
			summary.recordError(err)

			continue
		}

		summary.MissingHandled++
	}
}

func (r *Reconciler) disposeMissing(ctx context.Context, e vaultindex.Entry, note vaultmodel.TaskNote, deleted bool, summary *Summary) error {
	mode, folder, status := r.cfg.MissingRemote.CompletedMode, r.cfg.MissingRemote.CompletedFolder, vaultmodel.SyncArchivedRemote
	if deleted {
		mode, folder, status = r.cfg.MissingRemote.DeletedMode, r.cfg.MissingRemote.DeletedFolder, vaultmodel.SyncDeletedRemote
	}

	if mode == ModeStopSyncing {
		return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
			doc := docFromFields(fields)
			doc.SetString(r.props.SyncStatus, string(status))
			doc.SetBool(r.props.SyncFlagKey, false)
			doc.SetBool(r.props.IsDeleted, true)
			doc.DeleteString(r.props.RemoteTaskID)

			return nil
		})
	}

	if mode == ModeMoveToFolder && folder != "" {
		fileName := note.Title
		if fileName == "" {
			fileName = note.RemoteTaskID
		}

		candidate := folder + "/" + strings.TrimSuffix(lastSegment(e.Ref.Path), ".md") + ".md"

		ref, err := r.vault.MoveFile(ctx, e.Ref, candidate)
		if err != nil {
			return err
		}

		e.Ref = ref
	}

	return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)
		doc.SetString(r.props.SyncStatus, string(status))

		if deleted {
			doc.SetBool(r.props.IsDeleted, true)
		} else {
			doc.SetString(r.props.TaskStatus, string(vaultmodel.StatusDone))
			doc.SetBool(r.props.TaskDone, true)
		}

		return nil
	})
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}

	return path[idx+1:]
}
