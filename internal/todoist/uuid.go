package todoist

import "github.com/google/uuid"

// syncCommandUUID returns a fresh idempotency token for a Sync API
// command. cmdType and args are accepted (rather than generating a bare
// random UUID inline at the call site) so a future retry-with-same-
// token policy has a natural place to live without changing every
// caller.
func syncCommandUUID(cmdType string, args map[string]any) string {
	return uuid.NewString()
}
