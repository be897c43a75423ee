package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/connradolisboa/todoist-vault-sync/internal/config"
	"github.com/connradolisboa/todoist-vault-sync/internal/todoistauth"
	"github.com/connradolisboa/todoist-vault-sync/internal/vault"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// Token state constants for status reporting.
const (
	tokenStateMissing = "missing"
	tokenStateValid   = "valid"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show vault and authentication status without syncing",
		Long: `Scans the vault and reports what a 'sync' run would find: how many
tasks/projects/sections are managed, how many local tasks haven't been
pushed yet, and whether any duplicate IDs need attention first.

This reads the vault and the saved OAuth token; it never talks to the
Todoist API or writes anything.`,
		RunE: runStatus,
	}
}

type statusReport struct {
	VaultRoot       string `json:"vault_root"`
	TokenState      string `json:"token_state"`
	ManagedTasks    int    `json:"managed_tasks"`
	ManagedProjects int    `json:"managed_projects"`
	ManagedSections int    `json:"managed_sections"`
	UnmanagedFiles  int    `json:"unmanaged_files"`
	PendingCreates  int    `json:"pending_creates"`
	Duplicates      int    `json:"duplicates"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	v := vault.New(cc.Cfg.Vault.Root, cc.Logger)
	propNames := cc.Cfg.ToPropNames()

	idx, err := buildIndex(ctx, v, propNames, cc.Logger)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	report := statusReport{
		VaultRoot:      cc.Cfg.Vault.Root,
		TokenState:     tokenState(ctx, cc),
		UnmanagedFiles: len(idx.Unmanaged),
		Duplicates:     len(idx.Duplicates),
	}

	for _, e := range idx.All {
		switch e.Kind {
		case vaultmodel.KindTask:
			report.ManagedTasks++

			if id, _ := e.Fields[propNames.RemoteTaskID].(string); id == "" {
				report.PendingCreates++
			}
		case vaultmodel.KindProject:
			report.ManagedProjects++
		case vaultmodel.KindSection:
			report.ManagedSections++
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	printStatusText(report)

	return nil
}

func tokenState(ctx context.Context, cc *CLIContext) string {
	tokenPath := cc.Cfg.Network.TokenFilePath
	if tokenPath == "" {
		tokenPath = config.DefaultTokenFilePath()
	}

	_, err := todoistauth.FromPath(ctx, cc.Cfg.Network.TodoistClientID, cc.Cfg.Network.TodoistClientSecret, tokenPath, cc.Logger)
	if errors.Is(err, todoistauth.ErrNotLoggedIn) {
		return tokenStateMissing
	}

	if err != nil {
		return tokenStateMissing
	}

	return tokenStateValid
}

func printStatusText(r statusReport) {
	fmt.Printf("Vault:             %s\n", r.VaultRoot)
	fmt.Printf("Token:             %s\n", r.TokenState)
	fmt.Printf("Managed tasks:     %s\n", formatCount(r.ManagedTasks))
	fmt.Printf("Managed projects:  %s\n", formatCount(r.ManagedProjects))
	fmt.Printf("Managed sections:  %s\n", formatCount(r.ManagedSections))
	fmt.Printf("Unmanaged files:   %s\n", formatCount(r.UnmanagedFiles))
	fmt.Printf("Pending creates:   %s\n", formatCount(r.PendingCreates))

	if r.Duplicates > 0 {
		fmt.Printf("%s\n", colorize(ansiRed, fmt.Sprintf("Duplicate IDs:     %s (run 'conflicts')", formatCount(r.Duplicates))))
	}
}
