package reconcile

import "github.com/google/uuid"

// newUUID mints the vault_uuid stamped on a newly created ProjectNote,
// SectionNote, or TaskNote.
func newUUID() string {
	return uuid.NewString()
}
