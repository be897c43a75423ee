// Package vault implements vaultmodel.Vault against a real directory tree
// on disk. It is the only package in the engine that touches the
// filesystem directly — every other package reaches the vault through
// the vaultmodel.Vault interface, so tests substitute an in-memory fake
// (declared in their own _test.go files) without this package ever being
// imported by them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// ErrNotManaged is returned when an operation targets a path outside the
// vault root, or a path that escapes it via "..".
var ErrNotManaged = errors.New("vault: path is not a managed vault path")

// FSVault is the real, filesystem-backed Vault implementation.
type FSVault struct {
	root   string
	logger *slog.Logger
}

// New returns an FSVault rooted at root. root must already exist; callers
// create it ahead of time the same way the teacher's config loader
// resolves and validates its sync root before handing it to the engine.
func New(root string, logger *slog.Logger) *FSVault {
	if logger == nil {
		logger = slog.Default()
	}

	return &FSVault{root: filepath.Clean(root), logger: logger}
}

// resolve maps a vault-relative path to an absolute filesystem path,
// rejecting anything that would escape root.
func (v *FSVault) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean("/" + relPath)[1:]
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrNotManaged, relPath)
	}

	return filepath.Join(v.root, cleaned), nil
}

// relativize is the inverse of resolve, producing a vault-relative,
// forward-slash path from an absolute one under root.
func (v *FSVault) relativize(absPath string) string {
	rel, err := filepath.Rel(v.root, absPath)
	if err != nil {
		return absPath
	}

	return filepath.ToSlash(rel)
}

// ListManagedFiles walks the vault tree and returns every ".md" file,
// skipping dotfiles and dot-directories (e.g. ".obsidian", ".trash") the
// same way a vault-aware tool is expected to ignore app-internal state.
func (v *FSVault) ListManagedFiles(ctx context.Context) ([]vaultmodel.FileRef, error) {
	var refs []vaultmodel.FileRef

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()

		if d.IsDir() {
			if path != v.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			return nil
		}

		refs = append(refs, vaultmodel.FileRef{Path: v.relativize(path)})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: list managed files: %w", err)
	}

	return refs, nil
}

// ReadFrontmatter parses and returns just the frontmatter fields of ref.
func (v *FSVault) ReadFrontmatter(ctx context.Context, ref vaultmodel.FileRef) (map[string]any, error) {
	doc, err := v.readDoc(ref)
	if err != nil {
		return nil, err
	}

	return doc.Fields, nil
}

// ReadFullText returns the complete raw file content of ref.
func (v *FSVault) ReadFullText(ctx context.Context, ref vaultmodel.FileRef) (string, error) {
	abs, err := v.resolve(ref.Path)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("vault: read %q: %w", ref.Path, err)
	}

	return string(raw), nil
}

// CreateFile writes a brand-new managed file at path, creating any
// missing parent folders. It fails if a file already exists there —
// callers that want an upsert go through ProcessFrontmatter instead.
func (v *FSVault) CreateFile(ctx context.Context, path, content string) (vaultmodel.FileRef, error) {
	abs, err := v.resolve(path)
	if err != nil {
		return vaultmodel.FileRef{}, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return vaultmodel.FileRef{}, fmt.Errorf("vault: ensure parent for %q: %w", path, err)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return vaultmodel.FileRef{}, fmt.Errorf("vault: create %q: %w", path, err)
	}

	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return vaultmodel.FileRef{}, fmt.Errorf("vault: write %q: %w", path, err)
	}

	v.logger.Debug("vault: created file", "path", path)

	return vaultmodel.FileRef{Path: path}, nil
}

// MoveFile renames/relocates a single file, creating the destination's
// parent folders as needed.
func (v *FSVault) MoveFile(ctx context.Context, ref vaultmodel.FileRef, newPath string) (vaultmodel.FileRef, error) {
	src, err := v.resolve(ref.Path)
	if err != nil {
		return vaultmodel.FileRef{}, err
	}

	dst, err := v.resolve(newPath)
	if err != nil {
		return vaultmodel.FileRef{}, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return vaultmodel.FileRef{}, fmt.Errorf("vault: ensure parent for %q: %w", newPath, err)
	}

	if err := os.Rename(src, dst); err != nil {
		return vaultmodel.FileRef{}, fmt.Errorf("vault: move %q to %q: %w", ref.Path, newPath, err)
	}

	v.logger.Debug("vault: moved file", "from", ref.Path, "to", newPath)

	return vaultmodel.FileRef{Path: newPath}, nil
}

// MoveFolder renames every managed file under oldPrefix to the same
// relative location under newPrefix, used for project/section folder
// renames (§4.5). It operates file-by-file rather than a single
// directory rename so that concurrently-open file handles and
// non-managed files sharing the folder (e.g. attachments) are left in a
// consistent, individually-renamed state rather than silently moved in
// bulk.
func (v *FSVault) MoveFolder(ctx context.Context, oldPrefix, newPrefix string) error {
	refs, err := v.ListManagedFiles(ctx)
	if err != nil {
		return err
	}

	oldPrefix = strings.TrimSuffix(oldPrefix, "/") + "/"
	newPrefix = strings.TrimSuffix(newPrefix, "/") + "/"

	for _, ref := range refs {
		if !strings.HasPrefix(ref.Path, oldPrefix) {
			continue
		}

		suffix := strings.TrimPrefix(ref.Path, oldPrefix)
		dest := newPrefix + suffix

		if _, err := v.MoveFile(ctx, ref, dest); err != nil {
			return err
		}
	}

	return nil
}

// TrashFile moves ref into a recoverable ".trash" folder at the vault
// root rather than deleting it outright, mirroring the teacher's
// recycle-bin-by-default deletion policy (files.go's "rm" command).
func (v *FSVault) TrashFile(ctx context.Context, ref vaultmodel.FileRef) error {
	trashPath := filepath.ToSlash(filepath.Join(".trash", ref.Path))

	if exists, err := v.Exists(ctx, trashPath); err != nil {
		return err
	} else if exists {
		trashPath = filepath.ToSlash(filepath.Join(".trash", fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(ref.Path))))
	}

	_, err := v.MoveFile(ctx, ref, trashPath)
	if err != nil {
		return fmt.Errorf("vault: trash %q: %w", ref.Path, err)
	}

	v.logger.Info("vault: trashed file", "path", ref.Path, "trash_path", trashPath)

	return nil
}

// EnsureFolder creates path and any missing parents, succeeding silently
// if it already exists.
func (v *FSVault) EnsureFolder(ctx context.Context, path string) error {
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("vault: ensure folder %q: %w", path, err)
	}

	return nil
}

// Exists reports whether path exists, as either a file or a folder.
func (v *FSVault) Exists(ctx context.Context, path string) (bool, error) {
	abs, err := v.resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(abs)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("vault: stat %q: %w", path, err)
}

// ProcessFrontmatter reads ref's live content, lets fn mutate the parsed
// frontmatter fields in place, and writes the merged document back
// before returning once the file has been read and parsed — including
// when fn returns an error, so whatever fn changed before failing is
// written and fn's error is returned after the write.
func (v *FSVault) ProcessFrontmatter(ctx context.Context, ref vaultmodel.FileRef, fn func(map[string]any) error) error {
	abs, err := v.resolve(ref.Path)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("vault: read %q: %w", ref.Path, err)
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return fmt.Errorf("vault: parse %q: %w", ref.Path, err)
	}

	frontmatter.Repair(doc)

	fnErr := fn(doc.Fields)

	out, serErr := doc.Serialize()
	if serErr != nil {
		return fmt.Errorf("vault: serialize %q: %w", ref.Path, serErr)
	}

	if writeErr := os.WriteFile(abs, out, 0o644); writeErr != nil {
		return fmt.Errorf("vault: write %q: %w", ref.Path, writeErr)
	}

	if fnErr != nil {
		return fmt.Errorf("vault: process %q: %w", ref.Path, fnErr)
	}

	return nil
}

// readDoc is a small internal helper shared by ReadFrontmatter and
// ProcessFrontmatter's callers that only need the parsed document.
func (v *FSVault) readDoc(ref vaultmodel.FileRef) (*frontmatter.Document, error) {
	abs, err := v.resolve(ref.Path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: read %q: %w", ref.Path, err)
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("vault: parse %q: %w", ref.Path, err)
	}

	return doc, nil
}

// Stat returns path's modification time (as UnixNano) and size in bytes.
// It is not part of vaultmodel.Vault — callers that want to key a
// MetadataCache entry (vaultindex) type-assert for this optional
// capability rather than having it forced onto every Vault
// implementation, including test fakes that have no meaningful notion
// of mtime.
func (v *FSVault) Stat(ctx context.Context, path string) (mtimeUnixNano int64, size int64, err error) {
	abs, err := v.resolve(path)
	if err != nil {
		return 0, 0, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return 0, 0, fmt.Errorf("vault: stat %q: %w", path, err)
	}

	return info.ModTime().UnixNano(), info.Size(), nil
}

var _ vaultmodel.Vault = (*FSVault)(nil)
