package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connradolisboa/todoist-vault-sync/internal/config"
)

func TestNewRepairCmd_Structure(t *testing.T) {
	cmd := newRepairCmd()
	assert.Equal(t, "repair", cmd.Name())
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.RunE)
}

func TestRunRepair_FixesMalformedSignatureAndBackfills(t *testing.T) {
	root := t.TempDir()

	abs := filepath.Join(root, "Tasks", "one.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))

	content := "---\nnote_kind: task\nremote_task_id: t1\nlast_imported_fingerprint: not-a-real-fingerprint\n---\n\nbody\n"
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))

	cc := &CLIContext{
		Cfg: &config.Config{
			Vault: config.VaultConfig{
				Root:        root,
				RunLockPath: filepath.Join(t.TempDir(), "repair.lock"),
			},
		},
		Logger: slog.Default(),
	}

	cmd := newRepairCmd()
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, cc))

	require.NoError(t, cmd.RunE(cmd, nil))

	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vault_uuid:")
}
