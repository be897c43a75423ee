package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/connradolisboa/todoist-vault-sync/internal/backfill"
	"github.com/connradolisboa/todoist-vault-sync/internal/config"
	"github.com/connradolisboa/todoist-vault-sync/internal/metacache"
	"github.com/connradolisboa/todoist-vault-sync/internal/reconcile"
	"github.com/connradolisboa/todoist-vault-sync/internal/runlock"
	"github.com/connradolisboa/todoist-vault-sync/internal/template"
	"github.com/connradolisboa/todoist-vault-sync/internal/todoist"
	"github.com/connradolisboa/todoist-vault-sync/internal/todoistauth"
	"github.com/connradolisboa/todoist-vault-sync/internal/vault"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass between the vault and Todoist",
		Long: `Runs the full push/pull reconciliation pass: pending local creates and
updates are pushed first, then the remote snapshot is pulled back into the
vault, then missing-remote and archive transitions are applied.

Only one sync may run against a vault at a time (enforced by a run lock).`,
		RunE: runSync,
	}

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
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

	reconciler, cache, err := buildReconciler(ctx, cc)
	if err != nil {
		return err
	}

	if cache != nil {
		defer cache.Close()
	}

	start := time.Now()
	summary, err := reconciler.Run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if flagJSON {
		if err := printSyncJSON(summary, elapsed); err != nil {
			return err
		}
	} else {
		printSyncText(cc, summary, elapsed)
	}

	if summaryErr := summary.Err(); summaryErr != nil {
		return fmt.Errorf("sync completed with %d errored files: %w", summary.Errored, summaryErr)
	}

	return nil
}

// buildReconciler wires every collaborator internal/reconcile needs from
// the resolved CLI config: the filesystem vault, the Todoist HTTP client
// (authenticated via the saved OAuth token), the optional sqlite metadata
// cache, and the template resolver.
func buildReconciler(ctx context.Context, cc *CLIContext) (*reconcile.Reconciler, *metacache.Cache, error) {
	cfg := cc.Cfg

	v := vault.New(cfg.Vault.Root, cc.Logger)

	tokenPath := cfg.Network.TokenFilePath
	if tokenPath == "" {
		tokenPath = config.DefaultTokenFilePath()
	}

	tokenSource, err := todoistauth.FromPath(ctx, cfg.Network.TodoistClientID, cfg.Network.TodoistClientSecret, tokenPath, cc.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("sync: %w (run 'todoist-vault-sync auth login' first)", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeoutDuration()}
	remote := todoist.NewClient(config.DefaultTodoistSyncBaseURL, config.DefaultTodoistRESTBaseURL, httpClient, tokenSource, cc.Logger)

	var cache *metacache.Cache

	cachePath := cfg.Vault.MetadataCachePath
	if cachePath == "" {
		cachePath = config.DefaultMetadataCachePath()
	}

	if cachePath != "" {
		cache, err = metacache.Open(ctx, cachePath, cc.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("sync: open metadata cache: %w", err)
		}
	}

	var reconcileCache vaultmodel.MetadataCache
	if cache != nil {
		reconcileCache = cache
	}

	reconciler := reconcile.New(
		v,
		remote,
		reconcileCache,
		template.New(),
		nil,
		cfg.ToPropNames(),
		cfg.ToReconcileConfig(),
		cc.Logger,
	)

	return reconciler, cache, nil
}

func printSyncText(cc *CLIContext, summary *reconcile.Summary, elapsed time.Duration) {
	if summary.Created == 0 && summary.Updated == 0 && summary.MissingHandled == 0 && summary.Errored == 0 {
		cc.Statusf("Already in sync (%s).\n", formatDuration(elapsed))
		return
	}

	cc.Statusf("Sync complete in %s\n", formatDuration(elapsed))
	cc.Statusf("  Created:          %s\n", formatCount(summary.Created))
	cc.Statusf("  Updated:          %s\n", formatCount(summary.Updated))
	cc.Statusf("  Missing handled:  %s\n", formatCount(summary.MissingHandled))

	if summary.Errored > 0 {
		cc.Statusf("  %s\n", colorize(ansiRed, fmt.Sprintf("Errored:          %s", formatCount(summary.Errored))))
	}

	if len(summary.DuplicateIDs) > 0 {
		cc.Statusf("  %s\n", colorize(ansiRed, fmt.Sprintf("Duplicate IDs:    %s (see 'conflicts')", formatCount(len(summary.DuplicateIDs)))))
	}

	if summary.CycleWarning {
		cc.Statusf("  %s\n", colorize(ansiRed, "Parent-chain cycle detected"))
	}
}

type syncJSONOutput struct {
	DurationMs     int64    `json:"duration_ms"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	MissingHandled int      `json:"missing_handled"`
	Errored        int      `json:"errored"`
	DuplicateIDs   []string `json:"duplicate_ids,omitempty"`
	CycleWarning   bool     `json:"cycle_warning"`
}

func printSyncJSON(summary *reconcile.Summary, elapsed time.Duration) error {
	out := syncJSONOutput{
		DurationMs:     elapsed.Milliseconds(),
		Created:        summary.Created,
		Updated:        summary.Updated,
		MissingHandled: summary.MissingHandled,
		Errored:        summary.Errored,
		DuplicateIDs:   summary.DuplicateIDs,
		CycleWarning:   summary.CycleWarning,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func newBackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Assign a vault_uuid to every managed note that lacks one",
		Long: `Scans the vault and assigns a new vault_uuid to any task, project, or
section note that doesn't already have one. Safe to run repeatedly — a
note with a vault_uuid already set is left untouched.`,
		RunE: runBackfill,
	}
}

func runBackfill(cmd *cobra.Command, _ []string) error {
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
		return fmt.Errorf("backfill: %w", err)
	}

	report, err := backfill.Run(ctx, v, idx, propNames, nil, cc.Logger)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	cc.Statusf("Backfill complete: %s assigned, %s already had a vault_uuid\n",
		formatCount(len(report.Assigned)), formatCount(report.Skipped))

	return nil
}
