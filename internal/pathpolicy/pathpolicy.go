// Package pathpolicy computes deterministic, collision-safe vault paths for
// tasks, project notes, and section notes. Every function here is pure and
// side-effect-free (§4.2): given the same identifiers and names, it always
// returns the same path, so callers can precompute a desired path and
// compare it against a file's current location without touching disk.
package pathpolicy

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxSegmentLength is the truncation limit for a single sanitized path
// segment (§4.2, §8 boundary behavior).
const maxSegmentLength = 80

// reservedChars are characters that are unsafe or ambiguous in file names
// across the platforms the vault is expected to run on (Windows, macOS,
// Linux).
const reservedChars = `<>:"/\|?*`

// Sanitize strips path-reserved characters, collapses whitespace, trims,
// NFC-normalizes, and truncates name to maxSegmentLength display
// characters, producing a single filesystem-safe path segment.
func Sanitize(name string) string {
	normalized := norm.NFC.String(name)

	var b strings.Builder

	lastWasSpace := false

	for _, r := range normalized {
		if strings.ContainsRune(reservedChars, r) {
			continue
		}

		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if lastWasSpace {
				continue
			}

			lastWasSpace = true
			b.WriteRune(' ')

			continue
		}

		lastWasSpace = false
		b.WriteRune(r)
	}

	segment := strings.TrimSpace(b.String())
	segment = truncateRunes(segment, maxSegmentLength)
	segment = strings.TrimSpace(segment)

	if segment == "" {
		segment = "untitled"
	}

	return segment
}

// truncateRunes truncates s to at most n runes, respecting rune boundaries.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}

// ProjectFolderSegments walks from the root through parents to projectID,
// producing one sanitized segment per level. If a cycle is encountered, the
// walk stops just before revisiting a node, so the last ancestor reached
// becomes the root of the chain. The cycle is not reported here; callers
// that want to know use ProjectFolderSegmentsWithCycle.
func ProjectFolderSegments(
	projectID string, namesByID map[string]string, parentByID map[string]string,
) []string {
	segments, _ := ProjectFolderSegmentsWithCycle(projectID, namesByID, parentByID)
	return segments
}

// ProjectFolderSegmentsWithCycle is ProjectFolderSegments but also reports
// whether a cycle was detected and broken while walking the parent chain.
func ProjectFolderSegmentsWithCycle(
	projectID string, namesByID map[string]string, parentByID map[string]string,
) ([]string, bool) {
	var chain []string

	visited := make(map[string]bool)
	cur := projectID
	cyclic := false

	for cur != "" {
		if visited[cur] {
			cyclic = true
			break
		}

		visited[cur] = true
		chain = append(chain, cur)
		cur = parentByID[cur]
	}

	// Reverse chain so root comes first.
	segments := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		segments = append(segments, Sanitize(namesByID[id]))
	}

	return segments, cyclic
}

// TopologicalOrder returns project IDs ordered so that parents precede
// children. parentByID maps a project ID to its parent ID (empty for
// roots). Cycles are broken arbitrarily but deterministically: a project
// whose ancestry cannot be fully resolved is emitted in ID order once its
// unresolved ancestors have already been emitted or skipped.
func TopologicalOrder(projectIDs []string, parentByID map[string]string) []string {
	ids := make([]string, len(projectIDs))
	copy(ids, projectIDs)
	sort.Strings(ids)

	depth := make(map[string]int, len(ids))

	var depthOf func(id string, visiting map[string]bool) int
	depthOf = func(id string, visiting map[string]bool) int {
		if d, ok := depth[id]; ok {
			return d
		}

		if visiting[id] {
			// Cycle: treat this node as a root to break recursion.
			depth[id] = 0
			return 0
		}

		parent := parentByID[id]
		if parent == "" {
			depth[id] = 0
			return 0
		}

		visiting[id] = true
		d := depthOf(parent, visiting) + 1
		delete(visiting, id)
		depth[id] = d

		return d
	}

	for _, id := range ids {
		depthOf(id, map[string]bool{})
	}

	sort.SliceStable(ids, func(i, j int) bool {
		if depth[ids[i]] != depth[ids[j]] {
			return depth[ids[i]] < depth[ids[j]]
		}

		return ids[i] < ids[j]
	})

	return ids
}

// DisambiguatedProjectSegment returns the sanitized folder segment for
// projectID, appending a short suffix derived from the ID when multiple
// projects share the same sanitized name. The first-seen project (in
// topological order) keeps the bare name.
func DisambiguatedProjectSegment(
	projectID string, namesByID map[string]string, order []string,
) string {
	base := Sanitize(namesByID[projectID])
	return disambiguate(projectID, base, order, func(id string) string { return Sanitize(namesByID[id]) })
}

// DisambiguatedSectionSegment returns the sanitized folder segment for
// sectionID, scoped to sections owned by the same project. order must list
// only the section IDs belonging to that project, in the order they were
// first seen.
func DisambiguatedSectionSegment(
	sectionID string, namesByID map[string]string, order []string,
) string {
	base := Sanitize(namesByID[sectionID])
	return disambiguate(sectionID, base, order, func(id string) string { return Sanitize(namesByID[id]) })
}

// disambiguate appends a short ID-derived suffix to base for every entry in
// order after the first one whose sanitized name collides with base.
func disambiguate(id, base string, order []string, nameOf func(string) string) string {
	firstWithBase := ""

	for _, candidate := range order {
		if nameOf(candidate) == base {
			firstWithBase = candidate
			break
		}
	}

	if firstWithBase == "" || firstWithBase == id {
		return base
	}

	return fmt.Sprintf("%s (%s)", base, shortSuffix(id))
}

// shortSuffix derives a short, stable, human-legible disambiguator from an
// opaque remote ID: the last 6 characters, or the whole ID if shorter.
func shortSuffix(id string) string {
	const suffixLen = 6
	if len(id) <= suffixLen {
		return id
	}

	return id[len(id)-suffixLen:]
}

// TaskFileConfig carries the policy knobs TaskFilePath needs.
type TaskFileConfig struct {
	BaseFolder            string
	UseProjectSubfolders  bool
	UseSectionSubfolder   bool
}

// TaskFileExists reports whether candidate is occupied by a file other than
// the one being placed. Callers supply this as a closure over their Vault.
type TaskFileExists func(candidate string) (occupiedByOther bool)

// TaskFilePath computes the desired vault-relative path for a task file:
// base folder + optional project segments + optional section segment +
// sanitized title. On collision at the candidate path the remote task ID
// is appended to disambiguate.
func TaskFilePath(
	remoteTaskID, title, projectName, sectionName string,
	cfg TaskFileConfig,
	exists TaskFileExists,
) string {
	parts := []string{cfg.BaseFolder}

	if cfg.UseProjectSubfolders && projectName != "" {
		parts = append(parts, Sanitize(projectName))

		if cfg.UseSectionSubfolder && sectionName != "" {
			parts = append(parts, Sanitize(sectionName))
		}
	}

	fileName := Sanitize(title) + ".md"
	candidate := joinPath(append(parts, fileName))

	if exists != nil && exists(candidate) {
		fileName = Sanitize(title) + "-" + remoteTaskID + ".md"
		candidate = joinPath(append(parts, fileName))
	}

	return candidate
}

func joinPath(parts []string) string {
	nonEmpty := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, "/")
}

// AllocateCollisionFreePath returns candidate if occupied reports it as
// free, otherwise appends "-2", "-3", ... before the file extension until a
// free path is found. occupied(path) must report true only when path is
// held by a *different* file than the one being relocated — never when the
// path is simply the item's current location.
func AllocateCollisionFreePath(candidate string, occupied func(path string) bool) string {
	if occupied == nil || !occupied(candidate) {
		return candidate
	}

	dir, base, ext := splitPath(candidate)

	for n := 2; n < maxCollisionAttempts; n++ {
		next := joinPath([]string{dir, fmt.Sprintf("%s-%d%s", base, n, ext)})
		if !occupied(next) {
			return next
		}
	}

	// Implausible in practice; return the next suffix, unchecked, as a
	// best-effort fallback rather than looping forever.
	return joinPath([]string{dir, fmt.Sprintf("%s-%d%s", base, maxCollisionAttempts, ext)})
}

// maxCollisionAttempts bounds the collision-suffix search.
const maxCollisionAttempts = 1000

func splitPath(path string) (dir, base, ext string) {
	slash := strings.LastIndex(path, "/")
	dir = ""
	name := path

	if slash >= 0 {
		dir = path[:slash]
		name = path[slash+1:]
	}

	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return dir, name, ""
	}

	return dir, name[:dot], name[dot:]
}
