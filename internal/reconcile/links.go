package reconcile

import "strings"

// wikilink renders an Obsidian-style wikilink to the note at path (its
// vault-relative path, extension included) with display as the shown
// text. Re-rendered on every run a referenced note is touched, so a
// rename or move of the target is picked up the next time the referring
// note is upserted (§4.5.3's "patch stale wikilinks" fast path and the
// ordinary full-field write both go through this).
func wikilink(path, display string) string {
	name := strings.TrimSuffix(path, ".md")
	if display == "" || display == name {
		return "[[" + name + "]]"
	}

	return "[[" + name + "|" + display + "]]"
}
