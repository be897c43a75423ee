package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connradolisboa/todoist-vault-sync/internal/config"
)

func TestNewConfigCmd_Subcommands(t *testing.T) {
	cmd := newConfigCmd()

	expected := []string{"init", "show"}
	for _, name := range expected {
		found := false

		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		assert.True(t, found, "expected config subcommand %q not found", name)
	}
}

func TestRunConfigInit_WritesDefaultFile(t *testing.T) {
	old := flagConfigPath
	t.Cleanup(func() { flagConfigPath = old })

	path := filepath.Join(t.TempDir(), "config.toml")
	flagConfigPath = path

	require.NoError(t, runConfigInit(nil, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vault")
}

func TestRunConfigShow_TextOutput(t *testing.T) {
	old := flagJSON
	t.Cleanup(func() { flagJSON = old })
	flagJSON = false

	cc := &CLIContext{Cfg: config.DefaultConfig()}

	cmd := newConfigShowCmd()
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, cc))

	require.NoError(t, cmd.RunE(cmd, nil))
}
