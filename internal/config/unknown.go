package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownSectionKeys maps each top-level TOML table name to the set of keys
// valid inside it. Unlike the teacher's flat-plus-drive-sections layout,
// every setting here lives under a named section, so unknown-key detection
// is a two-level lookup: section, then key within section.
var knownSectionKeys = map[string]map[string]bool{
	"vault": setOf(
		"root", "base_folder", "use_project_subfolders", "use_section_subfolder",
		"auto_rename_files", "project_archive_folder", "section_archive_folder",
		"project_template", "section_template", "task_template",
		"metadata_cache_path", "run_lock_path",
	),
	"props": setOf(
		"note_kind", "vault_uuid", "created", "modified", "tags",
		"task_title", "task_status", "task_done", "remote_task_id",
		"remote_project_id", "remote_section_id", "project_name", "section_name",
		"project_link", "section_link", "priority", "priority_label", "due_date",
		"due_string", "is_recurring", "deadline", "description", "labels",
		"parent_task_link", "child_tasks", "has_children", "child_count", "url",
		"sync_flag", "sync_status", "pending_remote_id", "last_imported_fingerprint",
		"last_synced_fingerprint", "last_imported_at", "is_deleted", "recurrence",
		"complete_instances", "color", "is_archived", "parent_project_id",
		"parent_project_link", "parent_project_name",
	),
	"import": setOf(
		"assigned_to_me", "required_label", "excluded_label",
		"allowed_project_names", "excluded_project_names", "excluded_section_names",
	),
	"missing_remote": setOf(
		"completed_mode", "completed_folder", "deleted_mode", "deleted_folder",
		"recently_deleted_limit",
	),
	"conflict": setOf("strategy"),
	"logging":  setOf("log_level", "log_format", "log_file"),
	"network": setOf(
		"connect_timeout", "request_timeout", "max_retries",
		"todoist_client_id", "todoist_client_secret", "token_file_path",
	),
}

// knownSectionNames is the sorted slice of top-level section names, used
// for "did you mean?" suggestions when the section itself is misspelled.
var knownSectionNames = func() []string {
	names := make([]string, 0, len(knownSectionKeys))
	for name := range knownSectionKeys {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}()

func setOf(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}

	return m
}

// sortedKeys returns the sorted key list for a section, used as the
// candidate pool for Levenshtein suggestions.
func sortedKeys(section map[string]bool) []string {
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns an
// error with "did you mean?" suggestions for each one found.
func checkUnknownKeys(md *toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}

	var errs []error

	for _, key := range undecoded {
		if err := buildKeyError(key.String()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// buildKeyError classifies one undecoded dotted key ("vault.bogus_field",
// or a bare "bogus_top_level") and returns a descriptive error, or nil if
// the key is a bare known section name or its first segment after the
// section is a known key of that section.
func buildKeyError(keyStr string) error {
	parts := strings.SplitN(keyStr, ".", 2)
	section := parts[0]

	sectionKeys, known := knownSectionKeys[section]
	if !known {
		suggestion := closestMatch(section, knownSectionNames)
		if suggestion != "" {
			return fmt.Errorf("unknown config section %q — did you mean %q?", section, suggestion)
		}

		return fmt.Errorf("unknown config section %q", section)
	}

	if len(parts) == 1 {
		// A bare known section name with no leaf key is not itself an error;
		// toml.MetaData only reports this for keys, never whole tables.
		return nil
	}

	leaf := parts[1]
	if idx := strings.Index(leaf, "."); idx >= 0 {
		leaf = leaf[:idx]
	}

	if sectionKeys[leaf] {
		return nil
	}

	suggestion := closestMatch(leaf, sortedKeys(sectionKeys))
	if suggestion != "" {
		return fmt.Errorf("unknown key %q in [%s] — did you mean %q?", leaf, section, suggestion)
	}

	return fmt.Errorf("unknown key %q in [%s]", leaf, section)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	// Use single-row optimization to avoid allocating a full matrix.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = minOf(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// minOf returns the minimum of three integers.
func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}

	if c < m {
		m = c
	}

	return m
}
