package reconcile

import (
	"context"

	"github.com/connradolisboa/todoist-vault-sync/internal/pathpolicy"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// applyArchiveTransitions implements §4.5.8: a project or section note whose
// remote archived state changed since the last run is moved to or from the
// configured archive folder. Unarchiving recomputes the active path from
// the project/section's current name and parent chain rather than trying
// to remember the pre-archive path, since the project may have been
// renamed or reparented while archived.
func (r *Reconciler) applyArchiveTransitions(ctx context.Context, idx *vaultindex.Index, snapshot *vaultmodel.RemoteSnapshot, summary *Summary) {
	namesByID := make(map[string]string, len(snapshot.Projects))
	parentByID := make(map[string]string, len(snapshot.Projects))
	projectByID := make(map[string]vaultmodel.RemoteProject, len(snapshot.Projects))

	for _, p := range snapshot.Projects {
		namesByID[p.ID] = p.Name
		parentByID[p.ID] = p.ParentID
		projectByID[p.ID] = p
	}

	sectionByID := make(map[string]vaultmodel.RemoteSection, len(snapshot.Sections))
	for _, s := range snapshot.Sections {
		sectionByID[s.ID] = s
	}

	for _, e := range idx.All {
		var err error

		switch e.Kind {
		case vaultmodel.KindProject:
			err = r.applyProjectArchiveTransition(ctx, e, projectByID, namesByID, parentByID)
		case vaultmodel.KindSection:
			err = r.applySectionArchiveTransition(ctx, e, sectionByID, namesByID, parentByID)
		default:
			continue
		}

		if err != nil {
			r.logger.Error("reconcile: archive transition failed", "path", e.Ref.Path, "error", err)
			summary.recordError(err)
		}
	}
}

func (r *Reconciler) applyProjectArchiveTransition(
	ctx context.Context, e vaultindex.Entry, projectByID map[string]vaultmodel.RemoteProject,
	namesByID, parentByID map[string]string,
) error {
	note := loadProjectNote(docFromFields(e.Fields), r.props)

	p, ok := projectByID[note.RemoteProjectID]
	if !ok || p.IsArchived == note.IsArchived {
		return nil
	}

	oldFolder := folderPrefix(e.Ref.Path)

	var newFolder string
	if p.IsArchived {
		newFolder = r.cfg.ProjectArchiveFolder + "/" + pathpolicy.Sanitize(p.Name)
	} else {
		segments := pathpolicy.ProjectFolderSegments(p.ID, namesByID, parentByID)
		newFolder = joinSegments(r.cfg.BaseFolder, segments)
	}

	newPath := newFolder + "/_.md"

	if r.cfg.UseProjectSubfolders && oldFolder != newFolder {
		if err := r.vault.MoveFolder(ctx, oldFolder, newFolder); err != nil {
			return err
		}

		e.Ref.Path = newPath
	} else if !r.cfg.UseProjectSubfolders {
		flatPath := newFolder + "/" + pathpolicy.Sanitize(p.Name) + ".md"

		ref, err := r.vault.MoveFile(ctx, e.Ref, flatPath)
		if err != nil {
			return err
		}

		e.Ref = ref
	}

	return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		docFromFields(fields).SetBool(r.props.IsArchived, p.IsArchived)
		return nil
	})
}

func (r *Reconciler) applySectionArchiveTransition(
	ctx context.Context, e vaultindex.Entry, sectionByID map[string]vaultmodel.RemoteSection,
	namesByID, parentByID map[string]string,
) error {
	note := loadSectionNote(docFromFields(e.Fields), r.props)

	s, ok := sectionByID[note.RemoteSectionID]
	if !ok || s.IsArchived == note.IsArchived {
		return nil
	}

	var newFolder string
	if s.IsArchived {
		newFolder = r.cfg.SectionArchiveFolder + "/" + pathpolicy.Sanitize(s.Name)
	} else {
		segments := pathpolicy.ProjectFolderSegments(s.ProjectID, namesByID, parentByID)
		newFolder = joinSegments(r.cfg.BaseFolder, segments) + "/" + pathpolicy.Sanitize(s.Name)
	}

	oldFolder := folderPrefix(e.Ref.Path)
	newPath := newFolder + "/_section.md"

	if r.cfg.UseSectionSubfolder && oldFolder != newFolder {
		if err := r.vault.MoveFolder(ctx, oldFolder, newFolder); err != nil {
			return err
		}

		e.Ref.Path = newPath
	} else if !r.cfg.UseSectionSubfolder {
		flatPath := newFolder + ".md"

		ref, err := r.vault.MoveFile(ctx, e.Ref, flatPath)
		if err != nil {
			return err
		}

		e.Ref = ref
	}

	return r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
		docFromFields(fields).SetBool(r.props.IsArchived, s.IsArchived)
		return nil
	})
}
