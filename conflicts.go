package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vault"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
)

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List IDs that appear on more than one vault note",
		Long: `Scans the vault and reports every remote_task_id, remote_project_id,
remote_section_id, or vault_uuid that is shared by more than one note.

This is a live scan, not a persisted queue: edit-edit conflicts over a
task's content are resolved automatically during 'sync' per the
configured conflict strategy. What this command surfaces is the one kind
of conflict the engine refuses to resolve silently — two files claiming
the same identity — since picking a winner there risks losing a note.`,
		RunE: runConflicts,
	}
}

// duplicateGroup reports one shared ID and every file that carries it.
type duplicateGroup struct {
	ID    string   `json:"id"`
	Kind  string   `json:"kind"`
	Paths []string `json:"paths"`
}

func runConflicts(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	v := vault.New(cc.Cfg.Vault.Root, cc.Logger)
	propNames := cc.Cfg.ToPropNames()

	idx, err := buildIndex(ctx, v, propNames, cc.Logger)
	if err != nil {
		return err
	}

	groups := duplicateGroups(idx, propNames)

	if len(groups) == 0 {
		if !flagJSON {
			fmt.Println("No duplicate IDs found.")
		} else {
			fmt.Println("[]")
		}

		return nil
	}

	if flagJSON {
		return printConflictsJSON(groups)
	}

	printConflictsTable(groups)

	return nil
}

// duplicateGroups rebuilds, for every ID vaultindex flagged as shared,
// the full set of files that carry it. The index itself only records the
// winning entry per ID plus the duplicate flag, so this walks All a
// second time to recover every path for display.
func duplicateGroups(idx *vaultindex.Index, propNames frontmatter.PropNames) []duplicateGroup {
	if len(idx.Duplicates) == 0 {
		return nil
	}

	byID := make(map[string]*duplicateGroup, len(idx.Duplicates))

	for id := range idx.Duplicates {
		byID[id] = &duplicateGroup{ID: id}
	}

	for _, e := range idx.All {
		for _, id := range entryIDs(e, propNames) {
			if g, ok := byID[id]; ok {
				g.Kind = e.Kind.String()
				g.Paths = append(g.Paths, e.Ref.Path)
			}
		}
	}

	groups := make([]duplicateGroup, 0, len(byID))
	for _, g := range byID {
		groups = append(groups, *g)
	}

	return groups
}

// entryIDs returns every ID an entry carries that could participate in a
// duplicate — any non-empty remote task, project or section ID, whatever
// the note's kind, plus its vault_uuid.
func entryIDs(e vaultindex.Entry, propNames frontmatter.PropNames) []string {
	var ids []string

	for _, key := range []string{propNames.RemoteTaskID, propNames.RemoteProjectID, propNames.RemoteSectionID, propNames.VaultUUID} {
		if s, _ := e.Fields[key].(string); s != "" {
			ids = append(ids, s)
		}
	}

	return ids
}

func printConflictsJSON(groups []duplicateGroup) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(groups); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printConflictsTable(groups []duplicateGroup) {
	headers := []string{"ID", "KIND", "PATHS"}
	rows := make([][]string, len(groups))

	for i, g := range groups {
		paths := g.Paths[0]
		for _, p := range g.Paths[1:] {
			paths += ", " + p
		}

		rows[i] = []string{g.ID, g.Kind, paths}
	}

	printTable(os.Stdout, headers, rows)
}
