package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vault"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
)

// buildIndex runs one read-only vault scan, the same entry point
// internal/reconcile uses at the start of every run. CLI commands that
// only need to inspect the vault (backfill, repair, conflicts, status)
// share this instead of duplicating the scan logic.
func buildIndex(ctx context.Context, v *vault.FSVault, propNames frontmatter.PropNames, logger *slog.Logger) (*vaultindex.Index, error) {
	idx, err := vaultindex.Build(ctx, v, nil, propNames, logger)
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}

	return idx, nil
}
