package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vault"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

func writeNote(t *testing.T, root, relPath, noteKind, idKey, idVal string) {
	t.Helper()

	abs := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))

	content := fmt.Sprintf("---\nnote_kind: %s\n%s: %s\n---\n\nbody\n", noteKind, idKey, idVal)
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func TestBuildIndex_ScansRealVault(t *testing.T) {
	root := t.TempDir()
	props := frontmatter.DefaultPropNames()

	writeNote(t, root, "Tasks/one.md", "task", props.RemoteTaskID, "t1")
	writeNote(t, root, "Projects/work.md", "project", props.RemoteProjectID, "p1")

	v := vault.New(root, slog.Default())

	idx, err := buildIndex(context.Background(), v, props, slog.Default())
	require.NoError(t, err)

	assert.Len(t, idx.All, 2)
	assert.Contains(t, idx.ByRemoteTaskID, "t1")
	assert.Contains(t, idx.ByRemoteProjectID, "p1")
}

func TestBuildIndex_EmptyVault(t *testing.T) {
	root := t.TempDir()
	props := frontmatter.DefaultPropNames()

	v := vault.New(root, slog.Default())

	idx, err := buildIndex(context.Background(), v, props, slog.Default())
	require.NoError(t, err)
	assert.Empty(t, idx.All)
}

func TestBuildIndex_UnmanagedFileSurfaced(t *testing.T) {
	root := t.TempDir()
	props := frontmatter.DefaultPropNames()

	abs := filepath.Join(root, "Notes/plain.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte("# just a note\n\nno frontmatter here\n"), 0o644))

	v := vault.New(root, slog.Default())

	idx, err := buildIndex(context.Background(), v, props, slog.Default())
	require.NoError(t, err)

	require.Len(t, idx.Unmanaged, 1)
	assert.Equal(t, vaultmodel.FileRef{Path: "Notes/plain.md"}, idx.Unmanaged[0])
}
