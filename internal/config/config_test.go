package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_AllFieldsPopulated(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "Tasks", cfg.Vault.BaseFolder)
	assert.True(t, cfg.Vault.UseProjectSubfolders)
	assert.False(t, cfg.Vault.UseSectionSubfolder)
	assert.True(t, cfg.Vault.AutoRenameFiles)
	assert.Equal(t, "Tasks/_archive", cfg.Vault.ProjectArchiveFolder)
	assert.Equal(t, "Tasks/_archive", cfg.Vault.SectionArchiveFolder)

	assert.Equal(t, "keep-in-place", cfg.Missing.CompletedMode)
	assert.Equal(t, "move-to-folder", cfg.Missing.DeletedMode)
	assert.Equal(t, "Tasks/_deleted", cfg.Missing.DeletedFolder)
	assert.Equal(t, 200, cfg.Missing.RecentlyDeletedLimit)

	assert.Equal(t, "local-wins", cfg.Conflict.Strategy)

	assert.Equal(t, "info", cfg.Logging.LogLevel)
	assert.Equal(t, "auto", cfg.Logging.LogFormat)
	assert.Empty(t, cfg.Logging.LogFile)

	assert.Equal(t, "10s", cfg.Network.ConnectTimeout)
	assert.Equal(t, "30s", cfg.Network.RequestTimeout)
	assert.Equal(t, 3, cfg.Network.MaxRetries)

	// Prop name overrides default to empty — frontmatter.DefaultPropNames()
	// fills in every unset field.
	assert.Empty(t, cfg.Props.TaskTitle)
	assert.Empty(t, cfg.Import.RequiredLabel)
}

func TestDefaultConfig_PassesValidation(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, Validate(cfg))
}
