// Package backfill assigns a stable vault_uuid to any managed note that
// does not yet have one. It is the one pass in the engine that mutates
// notes outside of the main reconcile loop, and it is safe to run
// repeatedly: a note that already has a vault_uuid is left untouched.
package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// Generator produces a new, globally-unique identifier. The default
// implementation wraps google/uuid; tests substitute a deterministic
// sequence.
type Generator func() string

// DefaultGenerator returns random, RFC 4122 version-4 UUIDs.
func DefaultGenerator() string {
	return uuid.NewString()
}

// Report summarizes a backfill pass.
type Report struct {
	Assigned []string // vault-relative paths that received a new vault_uuid
	Skipped  int       // notes that already had one
}

// Run walks idx's managed, classified entries and assigns a vault_uuid to
// every one that lacks it, persisting each assignment individually
// through vault.ProcessFrontmatter so a crash mid-pass leaves already-
// processed notes correctly tagged rather than losing the whole batch.
func Run(
	ctx context.Context,
	v vaultmodel.Vault,
	idx *vaultindex.Index,
	propNames frontmatter.PropNames,
	gen Generator,
	logger *slog.Logger,
) (Report, error) {
	if gen == nil {
		gen = DefaultGenerator
	}

	if logger == nil {
		logger = slog.Default()
	}

	var report Report

	for _, entries := range [][]vaultindex.Entry{
		valuesOf(idx.ByRemoteTaskID),
		valuesOf(idx.ByRemoteProjectID),
		valuesOf(idx.ByRemoteSectionID),
	} {
		for _, e := range entries {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}

			if existing, _ := e.Fields[propNames.VaultUUID].(string); existing != "" {
				report.Skipped++
				continue
			}

			newID := gen()

			err := v.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
				if s, _ := fields[propNames.VaultUUID].(string); s != "" {
					// Assigned concurrently since the scan; don't clobber it.
					newID = s
					return nil
				}

				fields[propNames.VaultUUID] = newID

				return nil
			})
			if err != nil {
				return report, fmt.Errorf("backfill: assign uuid to %q: %w", e.Ref.Path, err)
			}

			logger.Info("backfill: assigned vault_uuid", "path", e.Ref.Path, "vault_uuid", newID)
			report.Assigned = append(report.Assigned, e.Ref.Path)
		}
	}

	return report, nil
}

func valuesOf(m map[string]vaultindex.Entry) []vaultindex.Entry {
	out := make([]vaultindex.Entry, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}

	return out
}
