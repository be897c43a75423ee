package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

func newMissingRemoteReconciler(v *fakeVault, rc *fakeRemote, policy MissingRemotePolicy) *Reconciler {
	cfg := testConfig()
	cfg.MissingRemote = policy

	clock := fixedClock{t: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)}

	return New(v, rc, nil, nil, clock, frontmatter.DefaultPropNames(), cfg, nil)
}

func TestRun_CompletedTaskKeepInPlaceSetsStatusDone(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/task.md"] = map[string]any{
		props.NoteKind:     "task",
		props.TaskTitle:    "Write report",
		props.RemoteTaskID: "T1",
		props.TaskStatus:   string(vaultmodel.StatusOpen),
	}
	v.order = append(v.order, "Tasks/task.md")

	rc := &fakeRemote{snapshot: vaultmodel.RemoteSnapshot{}}

	r := newMissingRemoteReconciler(v, rc, MissingRemotePolicy{
		CompletedMode: ModeKeepInPlace,
		DeletedMode:   ModeKeepInPlace,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.MissingHandled != 1 {
		t.Fatalf("expected 1 missing-handled, got %d", summary.MissingHandled)
	}

	fields := v.files["Tasks/task.md"]
	if fields[props.TaskStatus] != string(vaultmodel.StatusDone) {
		t.Errorf("task_status = %v, want %v", fields[props.TaskStatus], vaultmodel.StatusDone)
	}

	if fields[props.TaskDone] != true {
		t.Errorf("task_done = %v, want true", fields[props.TaskDone])
	}
}

func TestRun_DeletedTaskKeepInPlaceSetsIsDeleted(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/task.md"] = map[string]any{
		props.NoteKind:     "task",
		props.TaskTitle:    "Buy milk",
		props.RemoteTaskID: "T1",
	}
	v.order = append(v.order, "Tasks/task.md")

	rc := &fakeRemote{
		snapshot:        vaultmodel.RemoteSnapshot{},
		recentlyDeleted: map[string]struct{}{"T1": {}},
	}

	r := newMissingRemoteReconciler(v, rc, MissingRemotePolicy{
		CompletedMode: ModeKeepInPlace,
		DeletedMode:   ModeKeepInPlace,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.MissingHandled != 1 {
		t.Fatalf("expected 1 missing-handled, got %d", summary.MissingHandled)
	}

	fields := v.files["Tasks/task.md"]
	if fields[props.IsDeleted] != true {
		t.Errorf("is_deleted = %v, want true", fields[props.IsDeleted])
	}

	if fields[props.SyncStatus] != string(vaultmodel.SyncDeletedRemote) {
		t.Errorf("sync_status = %v, want %v", fields[props.SyncStatus], vaultmodel.SyncDeletedRemote)
	}
}

func TestRun_DeletedTaskStopSyncingRemovesRemoteTaskID(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/task.md"] = map[string]any{
		props.NoteKind:     "task",
		props.TaskTitle:    "Buy milk",
		props.RemoteTaskID: "T1",
		props.SyncFlagKey:  true,
	}
	v.order = append(v.order, "Tasks/task.md")

	rc := &fakeRemote{
		snapshot:        vaultmodel.RemoteSnapshot{},
		recentlyDeleted: map[string]struct{}{"T1": {}},
	}

	r := newMissingRemoteReconciler(v, rc, MissingRemotePolicy{
		CompletedMode: ModeKeepInPlace,
		DeletedMode:   ModeStopSyncing,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.MissingHandled != 1 {
		t.Fatalf("expected 1 missing-handled, got %d", summary.MissingHandled)
	}

	fields := v.files["Tasks/task.md"]

	if remoteID, ok := fields[props.RemoteTaskID]; ok && remoteID != "" {
		t.Errorf("remote_task_id = %v, want removed/empty so the note becomes local-only", remoteID)
	}

	if fields[props.IsDeleted] != true {
		t.Errorf("is_deleted = %v, want true", fields[props.IsDeleted])
	}

	if fields[props.SyncFlagKey] != false {
		t.Errorf("sync_flag = %v, want false", fields[props.SyncFlagKey])
	}
}
