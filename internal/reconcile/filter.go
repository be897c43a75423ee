package reconcile

import "github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"

// filteredSnapshot holds the pre-computed lookups the pull phase needs:
// which items passed the importable filter (plus their ancestor closure),
// and name/parent indexes for projects and sections.
type filteredSnapshot struct {
	itemByID    map[string]vaultmodel.RemoteItem
	projectByID map[string]vaultmodel.RemoteProject
	sectionByID map[string]vaultmodel.RemoteSection

	included map[string]bool // item ID -> passes filter or is an ancestor of one that does
}

// buildFilteredSnapshot applies the importable filter (§4.5.3: assigned-to-
// me, required/excluded label, allowed/excluded project names, excluded
// section names) and then computes the ancestor closure: every transitive
// parent of an included item is force-included so a child is never
// orphaned by a parent that independently fails the filter.
func buildFilteredSnapshot(snapshot *vaultmodel.RemoteSnapshot, f ImportFilter) *filteredSnapshot {
	if f.AssignedToMe && snapshot.UserID != "" {
		f.AssignedToUserID = snapshot.UserID
	}

	fs := &filteredSnapshot{
		itemByID:    make(map[string]vaultmodel.RemoteItem, len(snapshot.Items)),
		projectByID: make(map[string]vaultmodel.RemoteProject, len(snapshot.Projects)),
		sectionByID: make(map[string]vaultmodel.RemoteSection, len(snapshot.Sections)),
		included:    make(map[string]bool, len(snapshot.Items)),
	}

	for _, p := range snapshot.Projects {
		fs.projectByID[p.ID] = p
	}

	for _, s := range snapshot.Sections {
		fs.sectionByID[s.ID] = s
	}

	for _, it := range snapshot.Items {
		fs.itemByID[it.ID] = it
	}

	for _, it := range snapshot.Items {
		if passesFilter(it, fs, f) {
			fs.included[it.ID] = true
		}
	}

	for id := range fs.included {
		fs.includeAncestors(id)
	}

	return fs
}

func (fs *filteredSnapshot) includeAncestors(id string) {
	it, ok := fs.itemByID[id]
	if !ok || it.ParentID == "" {
		return
	}

	if fs.included[it.ParentID] {
		return
	}

	fs.included[it.ParentID] = true
	fs.includeAncestors(it.ParentID)
}

func passesFilter(it vaultmodel.RemoteItem, fs *filteredSnapshot, f ImportFilter) bool {
	if f.AssignedToUserID != "" && it.ResponsibleUID != "" && it.ResponsibleUID != f.AssignedToUserID {
		return false
	}

	if f.RequiredLabel != "" && !containsLabel(it.Labels, f.RequiredLabel) {
		return false
	}

	if f.ExcludedLabel != "" && containsLabel(it.Labels, f.ExcludedLabel) {
		return false
	}

	if projectName, ok := fs.projectName(it.ProjectID); ok {
		if len(f.AllowedProjectNames) > 0 && !containsName(f.AllowedProjectNames, projectName) {
			return false
		}

		if containsName(f.ExcludedProjectNames, projectName) {
			return false
		}
	}

	if sectionName, ok := fs.sectionName(it.SectionID); ok {
		if containsName(f.ExcludedSectionNames, sectionName) {
			return false
		}
	}

	return true
}

func (fs *filteredSnapshot) projectName(id string) (string, bool) {
	p, ok := fs.projectByID[id]
	return p.Name, ok
}

func (fs *filteredSnapshot) sectionName(id string) (string, bool) {
	s, ok := fs.sectionByID[id]
	return s.Name, ok
}

func containsLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}

	return false
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}

	return false
}

// includedItems returns every item that passed the filter or its ancestor
// closure, in snapshot order for deterministic processing.
func (fs *filteredSnapshot) includedItems(snapshot *vaultmodel.RemoteSnapshot) []vaultmodel.RemoteItem {
	out := make([]vaultmodel.RemoteItem, 0, len(snapshot.Items))

	for _, it := range snapshot.Items {
		if fs.included[it.ID] {
			out = append(out, it)
		}
	}

	return out
}

// referencedProjectIDs collects every project ID referenced by the
// included items plus every ancestor project ID, so EnsureProjects can
// materialize the full folder chain even for a project that owns no
// included task directly.
func referencedProjectIDs(items []vaultmodel.RemoteItem, projectByID map[string]vaultmodel.RemoteProject) []string {
	seen := map[string]bool{}

	var ids []string

	var addChain func(id string)
	addChain = func(id string) {
		if id == "" || seen[id] {
			return
		}

		seen[id] = true
		ids = append(ids, id)

		if p, ok := projectByID[id]; ok && p.ParentID != "" {
			addChain(p.ParentID)
		}
	}

	for _, it := range items {
		addChain(it.ProjectID)
	}

	return ids
}

// referencedSectionIDs collects every section ID referenced by the
// included items.
func referencedSectionIDs(items []vaultmodel.RemoteItem) []string {
	seen := map[string]bool{}

	var ids []string

	for _, it := range items {
		if it.SectionID == "" || seen[it.SectionID] {
			continue
		}

		seen[it.SectionID] = true
		ids = append(ids, it.SectionID)
	}

	return ids
}
