// Package reconcile implements the bidirectional reconciliation engine
// (§4.5): the push phase (pending local creates and updates), the pull
// phase (remote snapshot import with project/section ensure-and-rename and
// task upsert), conflict resolution, relocation, missing-remote handling,
// and archive/unarchive transitions. It is the one component that touches
// every other package in this module.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/connradolisboa/todoist-vault-sync/internal/backfill"
	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultindex"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// Reconciler owns one sync run's collaborators. It holds no state between
// runs — Run rebuilds the vault index from scratch every time (§5: the
// core is single-threaded and cooperative, with no cached state surviving
// between runs other than what is written to the vault itself).
type Reconciler struct {
	vault    vaultmodel.Vault
	remote   vaultmodel.RemoteClient
	cache    vaultmodel.MetadataCache // may be nil
	resolver vaultmodel.TemplateResolver
	clock    vaultmodel.Clock
	props    frontmatter.PropNames
	cfg      Config
	logger   *slog.Logger
}

// systemClock is the production vaultmodel.Clock, wrapping time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New constructs a Reconciler. A nil cache disables metadata caching
// (every scan re-parses every file); a nil resolver disables template
// expansion, so new notes start with an empty body — reconcile only
// depends on the vaultmodel.TemplateResolver interface, never the
// concrete package, so it has no default to fall back to here. A nil clock
// defaults to the system clock, and a nil logger to slog.Default().
func New(
	vault vaultmodel.Vault,
	remote vaultmodel.RemoteClient,
	cache vaultmodel.MetadataCache,
	resolver vaultmodel.TemplateResolver,
	clock vaultmodel.Clock,
	props frontmatter.PropNames,
	cfg Config,
	logger *slog.Logger,
) *Reconciler {
	if clock == nil {
		clock = systemClock{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		vault:    vault,
		remote:   remote,
		cache:    cache,
		resolver: resolver,
		clock:    clock,
		props:    props,
		cfg:      cfg,
		logger:   logger,
	}
}

// Summary reports what one Run did, matching the user-visible outcome
// required by §7: counts of created/updated/missing-handled/errored items
// plus distinct warnings for duplicates and parent-chain cycles.
type Summary struct {
	Created        int
	Updated        int
	MissingHandled int
	Errored        int

	DuplicateIDs []string
	CycleWarning bool

	Errors []error
}

func (s *Summary) recordError(err error) {
	s.Errored++
	s.Errors = append(s.Errors, err)
}

// Err combines every per-file error recorded during the run into one error,
// the way a CLI caller reports "the run finished but N files failed"
// without needing to walk the Errors slice itself. Returns nil if nothing
// failed.
func (s *Summary) Err() error {
	return multierr.Combine(s.Errors...)
}

// Run executes one full reconciliation pass in the fixed order required by
// §2/§5: repair malformed signature lines, backfill missing vault_uuids,
// build the index, push creates, push updates, pull (project/section
// ensure, then task upsert), parent/child back-links, missing-remote
// handling, then archive/unarchive transitions.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	idx, err := r.repairAndBackfill(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	for id := range idx.Duplicates {
		summary.DuplicateIDs = append(summary.DuplicateIDs, id)
	}

	if len(summary.DuplicateIDs) > 0 {
		r.logger.Warn("reconcile: duplicate remote ids detected", "ids", summary.DuplicateIDs)
	}

	// A first snapshot fetch resolves project/section names to remote IDs
	// for the push phase (§4.5.1). It is deliberately not reused for the
	// pull phase below: §5 requires creates to be visible to the same
	// run's pull, which means re-fetching after dispatch.
	preSnapshot, err := r.remote.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: fetch snapshot for push: %w", err)
	}

	r.pushPendingCreates(ctx, idx, preSnapshot, summary)
	r.pushPendingUpdates(ctx, idx, summary)

	snapshot, err := r.remote.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: fetch snapshot: %w", err)
	}

	// The push phase wrote remote_task_id onto newly created notes; a
	// fresh index keeps the pull phase's by-ID lookups accurate (§5: push
	// strictly before pull, so newly created tasks appear in the pull).
	idx, err = vaultindex.Build(ctx, r.vault, r.cache, r.props, r.logger)
	if err != nil {
		return nil, fmt.Errorf("reconcile: rebuild vault index after push: %w", err)
	}

	pulled := r.pull(ctx, idx, snapshot, summary)

	// pull created or moved files of its own; the missing-remote and
	// archive passes below scan the whole vault by remote ID, so they need
	// a view that includes what pull just wrote.
	idx, err = vaultindex.Build(ctx, r.vault, r.cache, r.props, r.logger)
	if err != nil {
		return nil, fmt.Errorf("reconcile: rebuild vault index after pull: %w", err)
	}

	r.applyBackLinks(ctx, idx, pulled, summary)
	r.handleMissingRemote(ctx, idx, snapshot, summary)
	r.applyArchiveTransitions(ctx, idx, snapshot, summary)

	r.logger.Info("reconcile: run complete",
		"created", summary.Created,
		"updated", summary.Updated,
		"missing_handled", summary.MissingHandled,
		"errored", summary.Errored,
		"duplicates", len(summary.DuplicateIDs),
	)

	return summary, nil
}

// repairAndBackfill implements the two maintenance passes §2 requires at
// the start of every run, ahead of the index Run itself operates on: any
// malformed last_imported_fingerprint/last_synced_fingerprint line is
// rewritten to an explicit empty value (so a corrupted signature is never
// mistaken for a real one), then every managed note still missing a
// vault_uuid is assigned one (I2: every managed note has a non-empty
// vault_uuid at the end of every run, not just after the standalone
// repair/backfill commands). It returns the index to use for the rest of
// Run, freshly rebuilt if either pass touched the vault.
func (r *Reconciler) repairAndBackfill(ctx context.Context) (*vaultindex.Index, error) {
	idx, err := vaultindex.Build(ctx, r.vault, r.cache, r.props, r.logger)
	if err != nil {
		return nil, fmt.Errorf("reconcile: build vault index for repair: %w", err)
	}

	anyRepaired := false

	for _, e := range idx.All {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		repaired := false

		err := r.vault.ProcessFrontmatter(ctx, e.Ref, func(fields map[string]any) error {
			doc := &frontmatter.Document{Fields: fields}
			repaired = frontmatter.Repair(doc)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reconcile: repair signature line: %q: %w", e.Ref.Path, err)
		}

		if repaired {
			anyRepaired = true
			r.logger.Info("reconcile: fixed signature line", "path", e.Ref.Path)
		}
	}

	if anyRepaired {
		idx, err = vaultindex.Build(ctx, r.vault, r.cache, r.props, r.logger)
		if err != nil {
			return nil, fmt.Errorf("reconcile: rebuild vault index after repair: %w", err)
		}
	}

	bfReport, err := backfill.Run(ctx, r.vault, idx, r.props, nil, r.logger)
	if err != nil {
		return nil, fmt.Errorf("reconcile: backfill vault uuids: %w", err)
	}

	if len(bfReport.Assigned) == 0 {
		return idx, nil
	}

	idx, err = vaultindex.Build(ctx, r.vault, r.cache, r.props, r.logger)
	if err != nil {
		return nil, fmt.Errorf("reconcile: rebuild vault index after backfill: %w", err)
	}

	return idx, nil
}

// nowISODate formats the reconciler's current time as an ISO YYYY-MM-DD
// date, the format the remote side uses for due/deadline dates.
func (r *Reconciler) nowISODate() string {
	return r.clock.Now().Format("2006-01-02")
}

// pull implements the import half of §4.5.3: filter the snapshot down to
// what should be in the vault, ensure every referenced project and section
// note exists at its current name/location, then upsert every included
// task note against that freshly ensured project/section layout.
func (r *Reconciler) pull(
	ctx context.Context, idx *vaultindex.Index, snapshot *vaultmodel.RemoteSnapshot, summary *Summary,
) []pulledTask {
	fs := buildFilteredSnapshot(snapshot, r.cfg.Import)
	items := fs.includedItems(snapshot)

	projectIDs := referencedProjectIDs(items, fs.projectByID)
	sectionIDs := referencedSectionIDs(items)

	projects := r.ensureProjects(ctx, idx, fs, projectIDs, summary)
	sections := r.ensureSections(ctx, idx, fs, sectionIDs, projects, summary)

	return r.upsertTasks(ctx, idx, fs, items, projects, sections, summary)
}
