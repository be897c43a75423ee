// Package frontmatter reads and writes the YAML frontmatter block of a
// managed vault note. It never touches the note body: callers hand in the
// raw file bytes and get back the frontmatter fields plus the body
// unchanged, and serialization re-assembles the two without reformatting
// prose the user wrote.
//
// Every read goes through the dual-read rule (§4.3): a getter checks the
// configured (preferred) key first and falls back to that field's legacy
// key only if the preferred key is absent. Every write is preferred-key
// only — once a note round-trips through a setter, its legacy key (if any)
// is removed, migrating the note forward.
package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// delimiter is the line that opens and closes a frontmatter block.
const delimiter = "---"

// Document is a parsed managed note: its frontmatter fields and its
// untouched body text.
type Document struct {
	Fields map[string]any
	Body   string

	// hadFrontmatter records whether the source file had a frontmatter
	// block at all, so Serialize can tell a brand-new note (no block
	// yet) from one whose block was present but empty.
	hadFrontmatter bool
}

// Parse splits raw file content into a Document. A file with no
// frontmatter block is returned with an empty Fields map and the entire
// content as Body — callers creating new managed notes start from such a
// Document.
func Parse(raw []byte) (*Document, error) {
	text := string(raw)

	if !strings.HasPrefix(text, delimiter) {
		return &Document{Fields: map[string]any{}, Body: text}, nil
	}

	rest := text[len(delimiter):]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	closeIdx := findClosingDelimiter(rest)
	if closeIdx < 0 {
		return nil, fmt.Errorf("frontmatter: unterminated %q block", delimiter)
	}

	block := rest[:closeIdx]
	body := rest[closeIdx:]
	body = strings.TrimPrefix(body, delimiter)
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")

	fields := map[string]any{}
	if strings.TrimSpace(block) != "" {
		if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
			return nil, fmt.Errorf("frontmatter: parse block: %w", err)
		}
	}

	return &Document{Fields: fields, Body: body, hadFrontmatter: true}, nil
}

// findClosingDelimiter returns the index, within rest, of the line
// consisting solely of the closing delimiter, or -1 if none is found.
func findClosingDelimiter(rest string) int {
	lines := strings.SplitAfter(rest, "\n")

	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == delimiter {
			return offset
		}

		offset += len(line)
	}

	return -1
}

// Serialize re-assembles the frontmatter block and body into file bytes.
// Keys are emitted in yaml.v3's default map ordering (alphabetical),
// matching every other managed note so diffs stay small across files
// rather than preserving per-file insertion order.
func (d *Document) Serialize() ([]byte, error) {
	if len(d.Fields) == 0 && !d.hadFrontmatter {
		return []byte(d.Body), nil
	}

	encoded, err := yaml.Marshal(d.Fields)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal block: %w", err)
	}

	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.Write(encoded)
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(d.Body)

	return []byte(b.String()), nil
}

// GetString reads a string field by canonical key, falling back to the
// field's registered legacy key. Returns "" if neither is present.
func (d *Document) GetString(canonicalKey string) string {
	if v, ok := d.Fields[canonicalKey]; ok {
		return toString(v)
	}

	if legacy, ok := LegacyKeyFor(canonicalKey); ok {
		if v, ok := d.Fields[legacy]; ok {
			return toString(v)
		}
	}

	return ""
}

// SetString writes value under canonicalKey and deletes that key's legacy
// counterpart, if any. An empty value still writes the key — callers that
// want to omit an empty field should use DeleteString instead.
func (d *Document) SetString(canonicalKey, value string) {
	d.Fields[canonicalKey] = value
	d.migrateLegacy(canonicalKey)
}

// DeleteString removes canonicalKey and its legacy counterpart.
func (d *Document) DeleteString(canonicalKey string) {
	delete(d.Fields, canonicalKey)
	d.migrateLegacy(canonicalKey)
}

// GetBool reads a boolean field, accepting YAML bools, the strings
// "true"/"false", and 0/1, falling back to the legacy key.
func (d *Document) GetBool(canonicalKey string) bool {
	v, ok := d.Fields[canonicalKey]
	if !ok {
		legacy, hasLegacy := LegacyKeyFor(canonicalKey)
		if !hasLegacy {
			return false
		}

		v, ok = d.Fields[legacy]
		if !ok {
			return false
		}
	}

	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(t))
		return parsed
	default:
		return false
	}
}

// SetBool writes value as a native YAML boolean under canonicalKey and
// migrates away from the legacy key.
func (d *Document) SetBool(canonicalKey string, value bool) {
	d.Fields[canonicalKey] = value
	d.migrateLegacy(canonicalKey)
}

// GetInt reads an integer field, accepting YAML ints and numeric strings,
// falling back to the legacy key. Returns 0 if absent or unparsable.
func (d *Document) GetInt(canonicalKey string) int {
	v, ok := d.Fields[canonicalKey]
	if !ok {
		legacy, hasLegacy := LegacyKeyFor(canonicalKey)
		if !hasLegacy {
			return 0
		}

		v, ok = d.Fields[legacy]
		if !ok {
			return 0
		}
	}

	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		parsed, _ := strconv.Atoi(strings.TrimSpace(t))
		return parsed
	default:
		return 0
	}
}

// SetInt writes value as a native YAML integer under canonicalKey and
// migrates away from the legacy key.
func (d *Document) SetInt(canonicalKey string, value int) {
	d.Fields[canonicalKey] = value
	d.migrateLegacy(canonicalKey)
}

// GetStringList reads a list field, falling back to the legacy key.
// Scalars are treated as a single-element list; missing keys return nil.
func (d *Document) GetStringList(canonicalKey string) []string {
	v, ok := d.Fields[canonicalKey]
	if !ok {
		legacy, hasLegacy := LegacyKeyFor(canonicalKey)
		if !hasLegacy {
			return nil
		}

		v, ok = d.Fields[legacy]
		if !ok {
			return nil
		}
	}

	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, toString(item))
		}

		return out
	case string:
		if t == "" {
			return nil
		}

		return []string{t}
	default:
		return nil
	}
}

// SetStringList writes value as a native YAML sequence under canonicalKey
// and migrates away from the legacy key. A nil or empty value deletes the
// key entirely rather than writing an empty sequence.
func (d *Document) SetStringList(canonicalKey string, value []string) {
	if len(value) == 0 {
		d.DeleteString(canonicalKey)
		return
	}

	d.Fields[canonicalKey] = value
	d.migrateLegacy(canonicalKey)
}

// GetTime reads an RFC 3339 timestamp field, falling back to the legacy
// key. Returns the zero Time and ok=false if absent or unparsable.
func (d *Document) GetTime(canonicalKey string) (time.Time, bool) {
	raw := d.GetString(canonicalKey)
	if raw == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// SetTime writes value as an RFC 3339 string under canonicalKey.
func (d *Document) SetTime(canonicalKey string, value time.Time) {
	d.SetString(canonicalKey, value.UTC().Format(time.RFC3339))
}

// migrateLegacy deletes canonicalKey's legacy counterpart, if the table
// registers one. Called after every write so a field converges onto its
// preferred key the first time that field is written.
func (d *Document) migrateLegacy(canonicalKey string) {
	legacy, ok := LegacyKeyFor(canonicalKey)
	if !ok {
		return
	}

	delete(d.Fields, legacy)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
