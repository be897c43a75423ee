package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/connradolisboa/todoist-vault-sync/internal/backfill"
	"github.com/connradolisboa/todoist-vault-sync/internal/config"
	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/runlock"
	"github.com/connradolisboa/todoist-vault-sync/internal/vault"
)

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Repair malformed signature lines and backfill missing vault_uuids",
		Long: `Runs the same two maintenance passes a sync already runs for you at the
start of every pass, standalone and without the rest of the reconciliation
that follows them:

  1. Any last_imported_fingerprint/last_synced_fingerprint line that
     doesn't hold a bare 8-hex-digit value (a stray comment, a half-pasted
     merge marker, anything a hand-edit could leave behind) is rewritten
     to an explicit empty value, so it can never be mistaken for a real
     fingerprint.
  2. Every managed note missing a vault_uuid gets one assigned.

Safe to run repeatedly.`,
		RunE: runRepair,
	}
}

// repairReport summarizes one repair pass for JSON output.
type repairReport struct {
	SignaturesRepaired []string        `json:"signatures_repaired"`
	Backfill           backfill.Report `json:"backfill"`
}

func runRepair(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	lockPath := cc.Cfg.Vault.RunLockPath
	if lockPath == "" {
		lockPath = config.DefaultRunLockPath()
	}

	lock, err := runlock.Acquire(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	v := vault.New(cc.Cfg.Vault.Root, cc.Logger)
	propNames := cc.Cfg.ToPropNames()

	idx, err := buildIndex(ctx, v, propNames, cc.Logger)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}

	var report repairReport

	for _, e := range idx.All {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		repaired := false

		err := v.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
			doc := &frontmatter.Document{Fields: fields}
			repaired = frontmatter.Repair(doc)

			return nil
		})
		if err != nil {
			return fmt.Errorf("repair: %q: %w", e.Ref.Path, err)
		}

		if repaired {
			cc.Logger.Info("repair: fixed signature line", "path", e.Ref.Path)
			report.SignaturesRepaired = append(report.SignaturesRepaired, e.Ref.Path)
		}
	}

	// Re-scan after the signature pass: ProcessFrontmatter writes each
	// note back immediately, and backfill.Run needs a fresh view rather
	// than the pre-repair index (a repaired note's mtime has changed).
	idx, err = buildIndex(ctx, v, propNames, cc.Logger)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}

	bfReport, err := backfill.Run(ctx, v, idx, propNames, nil, cc.Logger)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}

	report.Backfill = bfReport

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	cc.Statusf("Repair complete: %s signature lines fixed, %s vault_uuids assigned\n",
		formatCount(len(report.SignaturesRepaired)), formatCount(len(report.Backfill.Assigned)))

	return nil
}
