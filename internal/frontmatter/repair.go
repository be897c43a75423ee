package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
)

// signatureKeys are the two fingerprint fields whose lines must hold
// nothing but an 8-hex-digit fingerprint or an empty value. A hand-edited
// vault occasionally leaves one of these lines malformed — a stray
// comment appended, an unquoted value YAML parses as something other than
// a string, a half-pasted merge conflict marker — and a malformed
// signature line must never be trusted as a real fingerprint, since a
// false match there would let a stale note look synced.
var signatureKeys = []string{"last_imported_fingerprint", "last_synced_fingerprint"}

// hexValue matches a bare, single- or double-quoted 8-hex-digit
// fingerprint, or an explicitly empty value.
var hexValue = regexp.MustCompile(`^(?:[0-9a-f]{8}|"[0-9a-f]{8}"|'[0-9a-f]{8}'|""|''|)$`)

// signatureLine matches "key:" followed by whatever value the author (or
// a previous, buggy write) left behind, capturing the value for
// validation.
var signatureLine = regexp.MustCompile(`^(\s*)(last_imported_fingerprint|last_synced_fingerprint)(\s*):\s*(.*?)\s*$`)

// RepairSignatureLines scans the raw frontmatter block text (the text
// between the two "---" delimiters, newline-joined) for the two
// fingerprint keys and rewrites any line whose value does not match the
// strict signature pattern to an explicit empty string. It returns the
// possibly-modified text and whether any line was repaired.
//
// This operates on raw lines rather than the parsed yaml.v3 map because a
// malformed line is, by definition, one where relying on the YAML parser
// to decide "string or not" is exactly the failure mode being guarded
// against: a line like `last_imported_fingerprint: a1b2c3d4 # stale`
// parses as the string "a1b2c3d4 # stale", which is not a valid
// fingerprint, and silently keeping it would let a corrupted signature
// be read back as if it were trustworthy.
func RepairSignatureLines(blockText string) (string, bool) {
	lines := strings.Split(blockText, "\n")
	repaired := false

	for i, line := range lines {
		m := signatureLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		indent, key, spacing, value := m[1], m[2], m[3], m[4]

		if hexValue.MatchString(value) {
			continue
		}

		lines[i] = fmt.Sprintf(`%s%s%s: ""`, indent, key, spacing)
		repaired = true
	}

	return strings.Join(lines, "\n"), repaired
}

// Repair applies RepairSignatureLines to doc's two signature fields
// directly (operating on the parsed values rather than raw text), for
// callers that have already parsed a Document and want the same
// guarantee without re-splitting the original file. It returns whether
// either field was repaired.
func Repair(doc *Document) bool {
	repaired := false

	for _, key := range signatureKeys {
		raw, ok := doc.Fields[key]
		if !ok {
			continue
		}

		str := toString(raw)
		if hexValue.MatchString(str) {
			continue
		}

		doc.Fields[key] = ""
		repaired = true
	}

	return repaired
}
