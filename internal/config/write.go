package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// configFilePermissions is the standard permission mode for config files.
// Owner read/write, group and others read-only.
const configFilePermissions = 0o644

// configDirPermissions is the standard permission mode for config directories.
const configDirPermissions = 0o755

// configTemplate is the default config file content written by `config init`.
// Every setting except the [props] key table and vault.metadata_cache_path /
// vault.run_lock_path appears as a commented-out default; only vault.root
// needs to be filled in before the first run.
const configTemplate = `# todoist-vault-sync configuration

[vault]
# Absolute path to the Obsidian-style vault root. Required — may also be
# set with TODOIST_VAULT_SYNC_VAULT_ROOT or --vault-root.
root = ""

# base_folder = "Tasks"
# use_project_subfolders = true
# use_section_subfolder = false
# auto_rename_files = true
# project_archive_folder = "Tasks/_archive"
# section_archive_folder = "Tasks/_archive"
# project_template = ""
# section_template = ""
# task_template = ""

[import]
# assigned_to_me = false
# required_label = ""
# excluded_label = ""
# allowed_project_names = []
# excluded_project_names = []
# excluded_section_names = []

[missing_remote]
# completed_mode = "keep-in-place"
# completed_folder = ""
# deleted_mode = "move-to-folder"
# deleted_folder = "Tasks/_deleted"
# recently_deleted_limit = 200

[conflict]
# strategy = "local-wins"

[logging]
# log_level = "info"
# log_format = "auto"
# log_file = ""

[network]
# connect_timeout = "10s"
# request_timeout = "30s"
# max_retries = 3
# todoist_client_id = ""
# todoist_client_secret = ""
# token_file_path = ""
`

// CreateDefaultConfig writes the template config file to path if nothing
// exists there yet. Used by `config init` on first run. The write is
// atomic (temp file + rename) and parent directories are created as needed.
func CreateDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	slog.Info("creating default config file", "path", path)

	return atomicWriteFile(path, []byte(configTemplate))
}

// atomicWriteFile writes data to a temporary file in the same directory as
// path, then renames it to the target path. This prevents partial writes
// from corrupting the config file on crash. Parent directories are created
// as needed. Files are created with configFilePermissions (0644).
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	// Clean up the temp file on any error path.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	// Flush data to disk before rename. Without fsync, a power loss after
	// rename could leave the file empty (rename is metadata-only on POSIX).
	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
