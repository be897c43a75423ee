// Package vaultindex builds the single in-memory index the reconciler
// consults on every run: four ID-keyed maps (one per lookup a component
// needs to make) plus the set of IDs that appear on more than one file.
// Every lookup in the engine goes through this index by persistent ID —
// never by path — so a file that was moved or renamed between scans is
// still found (§3 Ownership, §4.4).
package vaultindex

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// Entry pairs a file reference with its parsed frontmatter fields and
// classified kind, so a lookup hit carries enough to act on without a
// second read.
type Entry struct {
	Ref    vaultmodel.FileRef
	Kind   vaultmodel.NoteKind
	Fields map[string]any
}

// Index is the result of a single vault scan.
type Index struct {
	ByRemoteTaskID    map[string]Entry
	ByRemoteProjectID map[string]Entry
	ByRemoteSectionID map[string]Entry
	ByVaultUUID       map[string]Entry

	// All lists every managed entry in scan order, including ones with no
	// remote ID yet (a not-yet-pushed local task) and duplicates (which
	// are excluded from the ID maps above). The reconciler's push phase
	// scans this list rather than the ID maps, since a pending local
	// create has no remote ID to look up by.
	All []Entry

	// Duplicates holds every ID (of any kind) that was seen on more than
	// one file during the scan. The reconciler treats a duplicate as a
	// hard stop for that ID — the first-seen file wins the map entry
	// above, but the engine must skip or flag every ID in this set
	// rather than silently pick a winner.
	Duplicates map[string]struct{}

	// Unmanaged lists every scanned file that was not recognized as a
	// managed task/project/section note, informational only.
	Unmanaged []vaultmodel.FileRef
}

// maxConcurrentReads bounds how many files are parsed at once during a
// scan, the same style of bounded fan-out the teacher applies to
// concurrent Graph API calls.
const maxConcurrentReads = 16

// Build performs a single full-vault scan, reading every managed file's
// frontmatter (through cache when available) and classifying it by
// "note_kind". propNames supplies the configured key names so a vault
// that has renamed its frontmatter keys still indexes correctly.
func Build(
	ctx context.Context,
	v vaultmodel.Vault,
	cache vaultmodel.MetadataCache,
	propNames frontmatter.PropNames,
	logger *slog.Logger,
) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	refs, err := v.ListManagedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: list managed files: %w", err)
	}

	entries := make([]Entry, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i, ref := range refs {
		i, ref := i, ref

		g.Go(func() error {
			fields, err := readWithCache(gctx, v, cache, ref)
			if err != nil {
				return fmt.Errorf("vaultindex: read %q: %w", ref.Path, err)
			}

			kind := vaultmodel.ParseNoteKind(stringField(fields, propNames.NoteKind))
			entries[i] = Entry{Ref: ref, Kind: kind, Fields: fields}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(entries, propNames, logger), nil
}

// readWithCache consults cache keyed by path+mtime+size when v supports
// the optional Stat capability (see vault.FSVault.Stat), falling back to
// an unconditional read for Vault implementations that don't (e.g. test
// fakes, where mtime/size have no meaning).
func readWithCache(
	ctx context.Context, v vaultmodel.Vault, cache vaultmodel.MetadataCache, ref vaultmodel.FileRef,
) (map[string]any, error) {
	type statter interface {
		Stat(ctx context.Context, path string) (mtimeUnixNano int64, size int64, err error)
	}

	sv, ok := v.(statter)
	if !ok || cache == nil {
		return v.ReadFrontmatter(ctx, ref)
	}

	mtime, size, err := sv.Stat(ctx, ref.Path)
	if err != nil {
		return v.ReadFrontmatter(ctx, ref)
	}

	if fields, hit := cache.Get(ref.Path, mtime, size); hit {
		return fields, nil
	}

	fields, err := v.ReadFrontmatter(ctx, ref)
	if err != nil {
		return nil, err
	}

	cache.Put(ref.Path, mtime, size, fields)

	return fields, nil
}

// assemble builds the four ID maps and the duplicate set from a flat
// entry list, in scan order, so "first file wins the map entry" is
// deterministic given a deterministic ListManagedFiles ordering.
func assemble(entries []Entry, propNames frontmatter.PropNames, logger *slog.Logger) *Index {
	idx := &Index{
		ByRemoteTaskID:    map[string]Entry{},
		ByRemoteProjectID: map[string]Entry{},
		ByRemoteSectionID: map[string]Entry{},
		ByVaultUUID:       map[string]Entry{},
		Duplicates:        map[string]struct{}{},
		All:               entries,
	}

	seen := map[string]struct{}{}

	noteIDKey := func(e Entry) (string, string) {
		switch e.Kind {
		case vaultmodel.KindTask:
			return propNames.RemoteTaskID, stringField(e.Fields, propNames.RemoteTaskID)
		case vaultmodel.KindProject:
			return propNames.RemoteProjectID, stringField(e.Fields, propNames.RemoteProjectID)
		case vaultmodel.KindSection:
			return propNames.RemoteSectionID, stringField(e.Fields, propNames.RemoteSectionID)
		default:
			return "", ""
		}
	}

	insert := func(m map[string]Entry, id string, e Entry) {
		if id == "" {
			return
		}

		if _, dup := seen[id]; dup {
			idx.Duplicates[id] = struct{}{}
			logger.Warn("vaultindex: duplicate id", "id", id, "path", e.Ref.Path)

			return
		}

		seen[id] = struct{}{}
		m[id] = e
	}

	for _, e := range entries {
		if e.Kind == vaultmodel.KindUnmanaged {
			idx.Unmanaged = append(idx.Unmanaged, e.Ref)
			continue
		}

		_, id := noteIDKey(e)

		switch e.Kind {
		case vaultmodel.KindTask:
			insert(idx.ByRemoteTaskID, id, e)
		case vaultmodel.KindProject:
			insert(idx.ByRemoteProjectID, id, e)
		case vaultmodel.KindSection:
			insert(idx.ByRemoteSectionID, id, e)
		}

		if uuid := stringField(e.Fields, propNames.VaultUUID); uuid != "" {
			if _, dup := idx.ByVaultUUID[uuid]; dup {
				idx.Duplicates[uuid] = struct{}{}
				logger.Warn("vaultindex: duplicate vault_uuid", "uuid", uuid, "path", e.Ref.Path)
			} else {
				idx.ByVaultUUID[uuid] = e
			}
		}
	}

	return idx
}

// PathOccupied reports whether path is held by any entry in the index,
// managed or not. Used by the reconciler's collision-safe path allocator
// when relocating a note (§4.5.6) so a rename or move never clobbers an
// unrelated file.
func (idx *Index) PathOccupied(path string) bool {
	for _, e := range idx.All {
		if e.Ref.Path == path {
			return true
		}
	}

	for _, ref := range idx.Unmanaged {
		if ref.Path == path {
			return true
		}
	}

	return false
}

func stringField(fields map[string]any, key string) string {
	if key == "" {
		return ""
	}

	v, ok := fields[key]
	if !ok {
		return ""
	}

	s, _ := v.(string)

	return s
}
