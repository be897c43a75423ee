package reconcile

import (
	"context"
	"strings"

	"github.com/connradolisboa/todoist-vault-sync/internal/pathpolicy"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// relocateNote moves a project or section note (and, when folderBased, its
// entire folder subtree) from oldPath to newPath, updating e.Ref in place
// so the caller's subsequent ProcessFrontmatter call targets the new
// location. A rename under subfolders mode moves the folder itself, since
// the folder name is derived from the note's own name.
func (r *Reconciler) relocateNote(ctx context.Context, e *vaultindex.Entry, oldPath, newPath string, folderBased bool) error {
	if folderBased {
		oldFolder := folderPrefix(oldPath)
		newFolder := folderPrefix(newPath)

		if oldFolder != newFolder {
			if err := r.vault.MoveFolder(ctx, oldFolder, newFolder); err != nil {
				return err
			}
		}

		e.Ref.Path = newPath

		return nil
	}

	ref, err := r.vault.MoveFile(ctx, e.Ref, newPath)
	if err != nil {
		return err
	}

	e.Ref = ref

	return nil
}

func folderPrefix(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}

	return path[:idx]
}

// relocateTask implements §4.5.6: after a task note is updated, it may
// need an auto-rename (title changed, AutoRenameFiles on) and/or a move to
// a different project/section subfolder (the desired folder differs from
// the current parent folder). Both go through a collision-safe allocator
// so a relocation never silently clobbers an unrelated file.
func (r *Reconciler) relocateTask(
	ctx context.Context, e *vaultindex.Entry, note vaultmodel.TaskNote, idx *vaultindex.Index,
) error {
	currentFolder := folderPrefix(e.Ref.Path)

	desiredFolder := r.cfg.BaseFolder
	if r.cfg.UseProjectSubfolders && note.ProjectName != "" {
		desiredFolder = joinSegments(r.cfg.BaseFolder, []string{pathpolicy.Sanitize(note.ProjectName)})

		if r.cfg.UseSectionSubfolder && note.SectionName != "" {
			desiredFolder += "/" + pathpolicy.Sanitize(note.SectionName)
		}
	}

	fileName := lastSegment(e.Ref.Path)
	if r.cfg.AutoRenameFiles {
		fileName = pathpolicy.Sanitize(note.Title) + ".md"
	}

	targetFolder := currentFolder

	if desiredFolder != currentFolder {
		targetFolder = desiredFolder
	}

	candidate := targetFolder + "/" + fileName
	if candidate == e.Ref.Path {
		return nil
	}

	occupied := func(p string) bool {
		return p != e.Ref.Path && idx.PathOccupied(p)
	}

	finalPath := pathpolicy.AllocateCollisionFreePath(candidate, occupied)
	if finalPath == e.Ref.Path {
		return nil
	}

	ref, err := r.vault.MoveFile(ctx, e.Ref, finalPath)
	if err != nil {
		return err
	}

	e.Ref = ref

	return nil
}
