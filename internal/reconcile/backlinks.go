package reconcile

import (
	"context"
	"sort"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// terminalSyncStatuses are the states a task note settles into once it has
// left the regular push/pull cycle; back-links are not rewritten onto a
// file in one of these states (§4.5.4).
var terminalSyncStatuses = map[vaultmodel.SyncStatus]bool{
	vaultmodel.SyncArchivedRemote: true,
	vaultmodel.SyncDeletedRemote:  true,
}

// applyBackLinks implements §4.5.4's two-pass parent/child link
// maintenance over this run's pulled tasks: a forward pass stamps each
// child's parent_task_link, and a reverse pass stamps each parent's
// has_children/child_count/child_tasks from its actual children.
func (r *Reconciler) applyBackLinks(ctx context.Context, idx *vaultindex.Index, pulled []pulledTask, summary *Summary) {
	byRemoteID := make(map[string]pulledTask, len(pulled))
	for _, t := range pulled {
		byRemoteID[t.RemoteID] = t
	}

	childrenByParent := make(map[string][]pulledTask)
	for _, t := range pulled {
		if t.ParentID != "" {
			childrenByParent[t.ParentID] = append(childrenByParent[t.ParentID], t)
		}
	}

	for _, t := range pulled {
		if err := r.stampParentLink(ctx, t, byRemoteID); err != nil {
			r.logger.Error("reconcile: stamp parent link failed", "remote_id", t.RemoteID, "error", err)
			summary.recordError(err)
		}
	}

	for _, t := range pulled {
		children := childrenByParent[t.RemoteID]
		if err := r.stampChildLinks(ctx, t, children); err != nil {
			r.logger.Error("reconcile: stamp child links failed", "remote_id", t.RemoteID, "error", err)
			summary.recordError(err)
		}
	}
}

func (r *Reconciler) stampParentLink(ctx context.Context, t pulledTask, byRemoteID map[string]pulledTask) error {
	return r.vault.ProcessFrontmatter(ctx, t.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)

		if terminalSyncStatuses[vaultmodel.SyncStatus(doc.GetString(r.props.SyncStatus))] {
			return nil
		}

		if t.ParentID == "" {
			if doc.GetString(r.props.ParentTaskLink) != "" {
				doc.DeleteString(r.props.ParentTaskLink)
			}

			return nil
		}

		parent, ok := byRemoteID[t.ParentID]
		if !ok {
			return nil
		}

		link := wikilink(parent.Ref.Path, "")
		doc.SetString(r.props.ParentTaskLink, link)

		return nil
	})
}

func (r *Reconciler) stampChildLinks(ctx context.Context, t pulledTask, children []pulledTask) error {
	links := make([]string, 0, len(children))

	for _, c := range children {
		links = append(links, wikilink(c.Ref.Path, ""))
	}

	sort.Strings(links)

	return r.vault.ProcessFrontmatter(ctx, t.Ref, func(fields map[string]any) error {
		doc := docFromFields(fields)

		if terminalSyncStatuses[vaultmodel.SyncStatus(doc.GetString(r.props.SyncStatus))] {
			return nil
		}

		doc.SetBool(r.props.HasChildren, len(links) > 0)
		doc.SetInt(r.props.ChildCount, len(links))
		doc.SetStringList(r.props.ChildTaskLinks, links)

		return nil
	})
}
