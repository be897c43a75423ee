package reconcile

import (
	"context"

	"github.com/connradolisboa/todoist-vault-sync/internal/pathpolicy"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// projectPaths caches the computed folder/file path for every ensured
// project, so section and task path computation don't recompute the
// ancestor-segment walk for every note filed under a project.
type projectPaths struct {
	notePath   map[string]string // project ID -> this project's note path
	folderPath map[string]string // project ID -> this project's folder (subfolders mode only)
	name       map[string]string
}

// ensureProjects implements the project half of §4.5.3: every referenced
// project gets a ProjectNote, created or renamed in topological order so a
// parent's folder exists before a child's folder is computed relative to
// it.
func (r *Reconciler) ensureProjects(
	ctx context.Context, idx *vaultindex.Index, fs *filteredSnapshot, projectIDs []string, summary *Summary,
) projectPaths {
	namesByID := make(map[string]string, len(fs.projectByID))
	parentByID := make(map[string]string, len(fs.projectByID))

	for id, p := range fs.projectByID {
		namesByID[id] = p.Name
		parentByID[id] = p.ParentID
	}

	order := pathpolicy.TopologicalOrder(projectIDs, parentByID)

	result := projectPaths{
		notePath:   map[string]string{},
		folderPath: map[string]string{},
		name:       namesByID,
	}

	for _, id := range order {
		p, ok := fs.projectByID[id]
		if !ok {
			continue
		}

		segments, cyclic := pathpolicy.ProjectFolderSegmentsWithCycle(id, namesByID, parentByID)
		if cyclic {
			r.logger.Warn("reconcile: project parent chain cycle broken", "project_id", id)
			summary.CycleWarning = true
		}

		var folder, notePath string
		if r.cfg.UseProjectSubfolders {
			folder = joinSegments(r.cfg.BaseFolder, segments)
			notePath = folder + "/_.md"
		} else {
			notePath = joinSegments(r.cfg.BaseFolder, []string{pathpolicy.Sanitize(p.Name)}) + ".md"
			folder = r.cfg.BaseFolder
		}

		result.folderPath[id] = folder
		result.notePath[id] = notePath

		if err := r.ensureOneProject(ctx, idx, p, notePath, folder, parentByID, result); err != nil {
			r.logger.Error("reconcile: ensure project failed", "project_id", id, "error", err)
			summary.recordError(err)
		}
	}

	return result
}

func (r *Reconciler) ensureOneProject(
	ctx context.Context, idx *vaultindex.Index, p vaultmodel.RemoteProject, notePath, folder string,
	parentByID map[string]string, paths projectPaths,
) error {
	parentLink := ""
	if parentPath, ok := paths.notePath[p.ParentID]; ok {
		parentLink = wikilink(parentPath, paths.name[p.ParentID])
	}

	entry, found := idx.ByRemoteProjectID[p.ID]
	if !found {
		return r.createProject(ctx, p, notePath, parentLink)
	}

	existing := loadProjectNote(docFromFields(entry.Fields), r.props)

	renamed := existing.Name != p.Name
	currentPath := entry.Ref.Path

	if renamed && currentPath != notePath {
		if err := r.relocateNote(ctx, &entry, currentPath, notePath, r.cfg.UseProjectSubfolders); err != nil {
			return err
		}
	}

	note := existing
	note.Name = p.Name
	note.RemoteProjectID = p.ID
	note.Color = p.Color
	note.ParentProjectID = p.ParentID
	note.ParentLink = parentLink
	note.IsArchived = p.IsArchived

	return r.vault.ProcessFrontmatter(ctx, entry.Ref, func(fields map[string]any) error {
		saveProjectNote(docFromFields(fields), r.props, note)
		return nil
	})
}

func (r *Reconciler) createProject(ctx context.Context, p vaultmodel.RemoteProject, notePath, parentLink string) error {
	content := ""
	if r.cfg.ProjectTemplate != "" && r.resolver != nil {
		resolved, err := r.resolver.Resolve(r.cfg.ProjectTemplate, r.clock.Now(), map[string]string{
			"project_name": p.Name,
			"project_id":   p.ID,
		})
		if err == nil {
			content = resolved
		}
	}

	ref, err := r.vault.CreateFile(ctx, notePath, content)
	if err != nil {
		return err
	}

	note := vaultmodel.ProjectNote{
		VaultUUID:       newUUID(),
		Created:         r.clock.Now(),
		Modified:        r.clock.Now(),
		Name:            p.Name,
		RemoteProjectID: p.ID,
		Color:           p.Color,
		ParentProjectID: p.ParentID,
		ParentLink:      parentLink,
		IsArchived:      p.IsArchived,
	}

	return r.vault.ProcessFrontmatter(ctx, ref, func(fields map[string]any) error {
		saveProjectNote(docFromFields(fields), r.props, note)
		return nil
	})
}

// ensureSections is the section analog of ensureProjects. Section rename
// detection additionally re-checks the owning project's wikilink, since
// the project note may itself have moved this run (§4.5.3).
func (r *Reconciler) ensureSections(
	ctx context.Context, idx *vaultindex.Index, fs *filteredSnapshot, sectionIDs []string, projects projectPaths, summary *Summary,
) map[string]string {
	sectionNotePath := map[string]string{}

	for _, id := range sectionIDs {
		s, ok := fs.sectionByID[id]
		if !ok {
			continue
		}

		projectFolder := projects.folderPath[s.ProjectID]
		if projectFolder == "" {
			projectFolder = r.cfg.BaseFolder
		}

		var notePath string
		if r.cfg.UseSectionSubfolder {
			notePath = projectFolder + "/" + pathpolicy.Sanitize(s.Name) + "/_section.md"
		} else {
			notePath = projectFolder + "/" + pathpolicy.Sanitize(s.Name) + ".md"
		}

		sectionNotePath[id] = notePath

		if err := r.ensureOneSection(ctx, idx, s, notePath, projects); err != nil {
			r.logger.Error("reconcile: ensure section failed", "section_id", id, "error", err)
			summary.recordError(err)
		}
	}

	return sectionNotePath
}

func (r *Reconciler) ensureOneSection(
	ctx context.Context, idx *vaultindex.Index, s vaultmodel.RemoteSection, notePath string, projects projectPaths,
) error {
	projectLink := wikilink(projects.notePath[s.ProjectID], projects.name[s.ProjectID])

	entry, found := idx.ByRemoteSectionID[s.ID]
	if !found {
		return r.createSection(ctx, s, notePath, projects.name[s.ProjectID], projectLink)
	}

	existing := loadSectionNote(docFromFields(entry.Fields), r.props)

	renamed := existing.Name != s.Name || existing.ProjectLink != projectLink
	if (existing.Name != s.Name) && entry.Ref.Path != notePath {
		if err := r.relocateNote(ctx, &entry, entry.Ref.Path, notePath, r.cfg.UseSectionSubfolder); err != nil {
			return err
		}
	}

	_ = renamed

	note := existing
	note.Name = s.Name
	note.RemoteSectionID = s.ID
	note.RemoteProjectID = s.ProjectID
	note.ProjectName = projects.name[s.ProjectID]
	note.ProjectLink = projectLink
	note.IsArchived = s.IsArchived

	return r.vault.ProcessFrontmatter(ctx, entry.Ref, func(fields map[string]any) error {
		saveSectionNote(docFromFields(fields), r.props, note)
		return nil
	})
}

func (r *Reconciler) createSection(ctx context.Context, s vaultmodel.RemoteSection, notePath, projectName, projectLink string) error {
	content := ""
	if r.cfg.SectionTemplate != "" && r.resolver != nil {
		resolved, err := r.resolver.Resolve(r.cfg.SectionTemplate, r.clock.Now(), map[string]string{
			"section_name": s.Name,
			"section_id":   s.ID,
			"project_name": projectName,
			"project_id":   s.ProjectID,
		})
		if err == nil {
			content = resolved
		}
	}

	ref, err := r.vault.CreateFile(ctx, notePath, content)
	if err != nil {
		return err
	}

	note := vaultmodel.SectionNote{
		VaultUUID:       newUUID(),
		Created:         r.clock.Now(),
		Modified:        r.clock.Now(),
		Name:            s.Name,
		RemoteSectionID: s.ID,
		RemoteProjectID: s.ProjectID,
		ProjectName:     projectName,
		ProjectLink:     projectLink,
		IsArchived:      s.IsArchived,
	}

	return r.vault.ProcessFrontmatter(ctx, ref, func(fields map[string]any) error {
		saveSectionNote(docFromFields(fields), r.props, note)
		return nil
	})
}

func joinSegments(base string, segments []string) string {
	out := base
	for _, s := range segments {
		out += "/" + s
	}

	return out
}
