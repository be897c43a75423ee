// Package fingerprint computes the stable, 8-hex-digit change-detection
// signature used throughout the sync engine to decide whether a record has
// changed since it was last imported or pushed.
//
// A fingerprint is advisory: equal hashes mean "no change, skip the rest of
// the work"; unequal hashes force a full reconcile of that record. It is
// not a content-addressed identifier and collisions are tolerated — a
// collision makes a changed record hash equal to its old fingerprint, so
// that change is skipped until another edit moves the hash.
package fingerprint

import (
	"encoding/json"
	"hash/fnv"
)

// Variant selects which canonical field projection is hashed.
type Variant int

const (
	// RemoteImport hashes the fields the remote side owns: title,
	// description, checked, project id/name, section id/name, priority,
	// due date/string, is-recurring, parent task id, labels, deadline.
	RemoteImport Variant = iota
	// LocalSync hashes the fields the local side pushes: title,
	// description, is-done, is-recurring, project id, section id, due
	// date/string.
	LocalSync
)

// Fields is the canonical field projection passed to Compute. Callers
// populate only the fields relevant to the chosen Variant; Compute reads
// fields in a fixed order regardless of which Variant is requested, so
// unused fields for a given variant are simply ignored.
type Fields struct {
	Title       string
	Description string
	Checked     bool // "done" for local-sync, "checked" for remote-import
	ProjectID   string
	ProjectName string
	SectionID   string
	SectionName string
	Priority    int
	DueDate     string
	DueString   string
	IsRecurring bool
	ParentID    string
	Labels      []string
	Deadline    string
}

// remoteImportOrder and localSyncOrder fix the exact field order that is
// serialized to JSON before hashing, per §4.1. Changing the order would
// change every fingerprint in existence, so these are load-bearing
// constants, not stylistic choices.
var remoteImportOrder = []string{
	"title", "description", "checked", "project_id", "project_name",
	"section_id", "section_name", "priority", "due_date", "due_string",
	"is_recurring", "parent_task_id", "labels", "deadline",
}

var localSyncOrder = []string{
	"title", "description", "is_done", "is_recurring",
	"project_id", "section_id", "due_date", "due_string",
}

// Compute returns the 8-hex-digit lowercase fingerprint of f under variant.
// The exact byte sequence hashed is the UTF-8 encoding of a canonical JSON
// array of the fields in the order fixed above: strings are trimmed,
// booleans become the JSON literal numbers 0/1, label lists are joined with
// "|", and absent optional fields become the empty string.
func Compute(f Fields, variant Variant) string {
	order := remoteImportOrder
	if variant == LocalSync {
		order = localSyncOrder
	}

	values := canonicalValues(f)

	array := make([]any, 0, len(order))
	for _, key := range order {
		array = append(array, values[key])
	}

	// json.Marshal never fails for this concrete, non-cyclic []any of
	// strings/ints; the error is impossible to hit and is not surfaced —
	// Fingerprint is a pure function and never returns an error (§7).
	encoded, _ := json.Marshal(array)

	return hashHex(encoded)
}

// canonicalValues builds the named projection of f, applying the trimming,
// boolean-to-int, and label-joining rules from §4.1.
func canonicalValues(f Fields) map[string]any {
	return map[string]any{
		"title":          trim(f.Title),
		"description":    trim(f.Description),
		"checked":        boolToInt(f.Checked),
		"is_done":        boolToInt(f.Checked),
		"project_id":     trim(f.ProjectID),
		"project_name":   trim(f.ProjectName),
		"section_id":     trim(f.SectionID),
		"section_name":   trim(f.SectionName),
		"priority":       f.Priority,
		"due_date":       trim(f.DueDate),
		"due_string":     trim(f.DueString),
		"is_recurring":   boolToInt(f.IsRecurring),
		"parent_task_id": trim(f.ParentID),
		"labels":         joinLabels(f.Labels),
		"deadline":       trim(f.Deadline),
	}
}

func hashHex(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data) // hash.Hash.Write never returns an error.

	const hexDigits = "0123456789abcdef"

	sum := h.Sum32()
	buf := make([]byte, 8)

	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[sum&0xf]
		sum >>= 4
	}

	return string(buf)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func joinLabels(labels []string) string {
	out := ""

	for i, l := range labels {
		if i > 0 {
			out += "|"
		}

		out += trim(l)
	}

	return out
}

func trim(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}

	for end > start && isSpace(s[end-1]) {
		end--
	}

	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
