package reconcile

import "github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"

// docFromFields wraps a bare frontmatter field map (as returned by
// Vault.ReadFrontmatter / carried on a vaultindex.Entry) in a
// frontmatter.Document so the typed Get*/Set* accessors can be used
// against it. The Document's Body is irrelevant here — callers only ever
// read fields off of it or pass the Fields map straight into
// Vault.ProcessFrontmatter's mutator.
func docFromFields(fields map[string]any) *frontmatter.Document {
	return &frontmatter.Document{Fields: fields}
}
