package vaultmodel

import (
	"context"
	"time"
)

// --- Consumer-defined interfaces ---
// These decouple the reconciler from any concrete remote-client, filesystem,
// cache, or template implementation, following the "accept interfaces,
// return structs" convention: each interface is declared where it is
// consumed, not where it is implemented.

// RemoteClient is the narrow surface the reconciler needs from the remote
// task service. The concrete HTTP implementation lives in internal/todoist
// and is explicitly out of scope for this specification (§1) — the
// reconciler only ever sees this interface.
type RemoteClient interface {
	FetchSnapshot(ctx context.Context) (*RemoteSnapshot, error)
	FetchRecentlyDeletedIDs(ctx context.Context, limit int) (map[string]struct{}, error)
	CreateTask(ctx context.Context, payload TaskPayload) (string, error)
	UpdateTask(ctx context.Context, patch TaskPatch) error
}

// TaskPayload is the set of fields sent when creating a remote task.
type TaskPayload struct {
	Title       string
	Description string
	ProjectID   string
	SectionID   string
	Priority    int
	Due         Due
	Labels      []string
	ParentID    string
}

// TaskPatch is the set of fields sent when updating a remote task. Pointer
// fields distinguish "not provided" (nil) from "clear to empty" (non-nil
// pointer to the zero value), per §6.
type TaskPatch struct {
	ID          string
	Title       *string
	Description *string
	IsDone      *bool
	ProjectID   *string
	SectionID   *string
	Priority    *int
	Due         *Due
	Labels      *[]string
	ParentID    *string
}

// FileRef is an opaque handle to a managed file, resolved through Vault.
// The reconciler never caches a FileRef across awaits that could invalidate
// it (§3 Ownership) — it always re-resolves by persistent ID.
type FileRef struct {
	Path string
}

// Vault is the narrow filesystem surface the reconciler needs. The vault
// exclusively owns all managed files; every write goes through
// ProcessFrontmatter so reads and writes are never split across an await
// boundary without re-reading the live content.
type Vault interface {
	ListManagedFiles(ctx context.Context) ([]FileRef, error)
	ReadFrontmatter(ctx context.Context, ref FileRef) (map[string]any, error)
	ReadFullText(ctx context.Context, ref FileRef) (string, error)
	CreateFile(ctx context.Context, path, content string) (FileRef, error)
	MoveFile(ctx context.Context, ref FileRef, newPath string) (FileRef, error)
	MoveFolder(ctx context.Context, oldPrefix, newPrefix string) error
	TrashFile(ctx context.Context, ref FileRef) error
	EnsureFolder(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)

	// ProcessFrontmatter reads the live frontmatter of ref, invokes fn to
	// mutate it in place, and writes the result back before returning —
	// guaranteed on every exit path, matching the read-modify-write
	// contract in §5/§6.
	ProcessFrontmatter(ctx context.Context, ref FileRef, fn func(map[string]any) error) error
}

// MetadataCache is a derived, rebuildable cache of parsed frontmatter. It is
// never the system of record — losing it only costs a rescan — so it does
// not participate in the persisted-state invariant of §6. VaultIndex
// consults it to skip re-parsing unchanged files.
type MetadataCache interface {
	Get(path string, mtime int64, size int64) (map[string]any, bool)
	Put(path string, mtime int64, size int64, fm map[string]any)
	Invalidate(path string)
}

// TemplateResolver resolves a template string against a fixed token set
// (§6). The production implementation is a thin out-of-scope collaborator;
// the reconciler only depends on this interface.
type TemplateResolver interface {
	Resolve(template string, date time.Time, context map[string]string) (string, error)
}

// Clock abstracts "now" so reconciler timestamps and template date tokens
// are deterministic in tests.
type Clock interface {
	Now() time.Time
}
