package reconcile

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/connradolisboa/todoist-vault-sync/internal/frontmatter"
	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// fakeVault is a minimal in-memory vaultmodel.Vault that actually performs
// creates, moves, and frontmatter writes against a map, so relocation and
// two-phase dispatch sequences can be asserted on.
type fakeVault struct {
	files map[string]map[string]any
	order []string
}

func newFakeVault() *fakeVault {
	return &fakeVault{files: map[string]map[string]any{}}
}

func (f *fakeVault) ListManagedFiles(ctx context.Context) ([]vaultmodel.FileRef, error) {
	refs := make([]vaultmodel.FileRef, 0, len(f.order))
	for _, p := range f.order {
		refs = append(refs, vaultmodel.FileRef{Path: p})
	}

	return refs, nil
}

func (f *fakeVault) ReadFrontmatter(ctx context.Context, ref vaultmodel.FileRef) (map[string]any, error) {
	return f.files[ref.Path], nil
}

func (f *fakeVault) ReadFullText(ctx context.Context, ref vaultmodel.FileRef) (string, error) {
	return "", nil
}

func (f *fakeVault) CreateFile(ctx context.Context, path, content string) (vaultmodel.FileRef, error) {
	if _, exists := f.files[path]; !exists {
		f.order = append(f.order, path)
	}

	f.files[path] = map[string]any{}

	return vaultmodel.FileRef{Path: path}, nil
}

func (f *fakeVault) MoveFile(ctx context.Context, ref vaultmodel.FileRef, newPath string) (vaultmodel.FileRef, error) {
	fields := f.files[ref.Path]
	delete(f.files, ref.Path)
	f.files[newPath] = fields

	for i, p := range f.order {
		if p == ref.Path {
			f.order[i] = newPath
		}
	}

	return vaultmodel.FileRef{Path: newPath}, nil
}

func (f *fakeVault) MoveFolder(ctx context.Context, oldPrefix, newPrefix string) error {
	for path, fields := range f.files {
		if path == oldPrefix || strings.HasPrefix(path, oldPrefix+"/") {
			newPath := newPrefix + strings.TrimPrefix(path, oldPrefix)
			delete(f.files, path)
			f.files[newPath] = fields

			for i, p := range f.order {
				if p == path {
					f.order[i] = newPath
				}
			}
		}
	}

	return nil
}

func (f *fakeVault) TrashFile(ctx context.Context, ref vaultmodel.FileRef) error {
	delete(f.files, ref.Path)
	return nil
}

func (f *fakeVault) EnsureFolder(ctx context.Context, path string) error { return nil }

func (f *fakeVault) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakeVault) ProcessFrontmatter(ctx context.Context, ref vaultmodel.FileRef, fn func(map[string]any) error) error {
	fields, ok := f.files[ref.Path]
	if !ok {
		fields = map[string]any{}
	}

	if err := fn(fields); err != nil {
		return err
	}

	f.files[ref.Path] = fields

	return nil
}

// fakeRemote scripts a RemoteClient: a fixed snapshot plus recorded
// CreateTask/UpdateTask calls, so a test can assert on dispatch order and
// payload content without a real Todoist client.
type fakeRemote struct {
	snapshot     vaultmodel.RemoteSnapshot
	recentlyDeleted map[string]struct{}

	nextID  int
	created []vaultmodel.TaskPayload
	updated []vaultmodel.TaskPatch
}

func (f *fakeRemote) FetchSnapshot(ctx context.Context) (*vaultmodel.RemoteSnapshot, error) {
	snap := f.snapshot
	return &snap, nil
}

func (f *fakeRemote) FetchRecentlyDeletedIDs(ctx context.Context, limit int) (map[string]struct{}, error) {
	if f.recentlyDeleted == nil {
		return map[string]struct{}{}, nil
	}

	return f.recentlyDeleted, nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, payload vaultmodel.TaskPayload) (string, error) {
	f.nextID++
	f.created = append(f.created, payload)

	id := "new-" + itoa(f.nextID)
	f.snapshot.Items = append(f.snapshot.Items, vaultmodel.RemoteItem{
		ID:        id,
		Content:   payload.Title,
		ProjectID: payload.ProjectID,
		SectionID: payload.SectionID,
	})

	return id, nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, patch vaultmodel.TaskPatch) error {
	f.updated = append(f.updated, patch)

	for i, it := range f.snapshot.Items {
		if it.ID == patch.ID && patch.IsDone != nil {
			f.snapshot.Items[i].Checked = *patch.IsDone
		}
	}

	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	return string(digits)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testConfig() Config {
	return Config{
		BaseFolder:           "Tasks",
		UseProjectSubfolders: true,
		UseSectionSubfolder:  false,
		AutoRenameFiles:      false,
		ProjectArchiveFolder: "Tasks/_archive",
		SectionArchiveFolder: "Tasks/_archive_sections",
		Conflict:             ConflictLocalWins,
		MissingRemote: MissingRemotePolicy{
			CompletedMode: ModeKeepInPlace,
			DeletedMode:   ModeKeepInPlace,
		},
	}
}

func newTestReconciler(v *fakeVault, rc *fakeRemote) *Reconciler {
	clock := fixedClock{t: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)}
	return New(v, rc, nil, nil, clock, frontmatter.DefaultPropNames(), testConfig(), nil)
}

func TestRun_FirstImportCreatesProjectAndTask(t *testing.T) {
	v := newFakeVault()
	rc := &fakeRemote{
		snapshot: vaultmodel.RemoteSnapshot{
			Projects: []vaultmodel.RemoteProject{{ID: "P1", Name: "Work"}},
			Items: []vaultmodel.RemoteItem{
				{ID: "T1", Content: "Write report", ProjectID: "P1"},
			},
		},
	}

	r := newTestReconciler(v, rc)

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Created == 0 {
		t.Fatalf("expected at least one created note, got summary %+v", summary)
	}

	found := false
	for path, fields := range v.files {
		if fields["remote_task_id"] == "T1" {
			found = true

			if fields["project_name"] != "Work" {
				t.Errorf("task at %s: project_name = %v, want Work", path, fields["project_name"])
			}
		}
	}

	if !found {
		t.Fatal("expected a task note with remote_task_id T1")
	}
}

func TestRun_CrashBetweenCreateAndConfirmAssimilatesWithoutDuplicate(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/pending.md"] = map[string]any{
		props.NoteKind:        "task",
		props.TaskTitle:       "Buy milk",
		props.SyncFlagKey:     true,
		props.PendingRemoteID: "existing-remote-id",
	}
	v.order = append(v.order, "Tasks/pending.md")

	rc := &fakeRemote{
		snapshot: vaultmodel.RemoteSnapshot{
			Items: []vaultmodel.RemoteItem{
				{ID: "existing-remote-id", Content: "Buy milk"},
			},
		},
	}

	r := newTestReconciler(v, rc)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rc.created) != 0 {
		t.Fatalf("expected no CreateTask calls on assimilation, got %d", len(rc.created))
	}

	fields := v.files["Tasks/pending.md"]
	if fields[props.RemoteTaskID] != "existing-remote-id" {
		t.Errorf("remote_task_id = %v, want existing-remote-id", fields[props.RemoteTaskID])
	}

	if fields[props.PendingRemoteID] != nil && fields[props.PendingRemoteID] != "" {
		t.Errorf("pending_remote_id should be cleared, got %v", fields[props.PendingRemoteID])
	}
}

func TestRun_LocalWinsConflictPreservesLocalTitle(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/task.md"] = map[string]any{
		props.NoteKind:                "task",
		props.TaskTitle:               "My local title",
		props.RemoteTaskID:            "T1",
		props.LastImportedFingerprint: "stale",
	}
	v.order = append(v.order, "Tasks/task.md")

	rc := &fakeRemote{
		snapshot: vaultmodel.RemoteSnapshot{
			Items: []vaultmodel.RemoteItem{
				{ID: "T1", Content: "Remote renamed this"},
			},
		},
	}

	r := newTestReconciler(v, rc)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	fields := v.files["Tasks/task.md"]
	if fields[props.TaskTitle] != "My local title" {
		t.Errorf("task_title = %v, want local title preserved", fields[props.TaskTitle])
	}
}

func TestRun_RecurringCompletionAppendsOldDueDate(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/task.md"] = map[string]any{
		props.NoteKind:                "task",
		props.TaskTitle:               "Water the plants",
		props.RemoteTaskID:            "T1",
		props.DueDate:                 "2026-07-01",
		props.IsRecurring:             true,
		props.LastImportedFingerprint: "stale",
	}
	v.order = append(v.order, "Tasks/task.md")

	rc := &fakeRemote{
		snapshot: vaultmodel.RemoteSnapshot{
			Items: []vaultmodel.RemoteItem{
				{ID: "T1", Content: "Water the plants", Due: vaultmodel.Due{Date: "2026-07-08", IsRecurring: true}},
			},
		},
	}

	r := newTestReconciler(v, rc)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	fields := v.files["Tasks/task.md"]
	instances, _ := fields[props.CompleteInstances].([]string)

	found := false
	for _, d := range instances {
		if d == "2026-07-01" {
			found = true
		}
	}

	if !found {
		t.Errorf("complete_instances = %v, want it to contain 2026-07-01", instances)
	}
}

func TestRun_ProjectRenameMovesFolderAndUpdatesWikilinks(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/Work/_.md"] = map[string]any{
		props.NoteKind:        "project",
		props.ProjectName:     "Work",
		props.RemoteProjectID: "P1",
	}
	v.order = append(v.order, "Tasks/Work/_.md")

	rc := &fakeRemote{
		snapshot: vaultmodel.RemoteSnapshot{
			Projects: []vaultmodel.RemoteProject{{ID: "P1", Name: "Career"}},
			Items: []vaultmodel.RemoteItem{
				{ID: "T1", Content: "Ship it", ProjectID: "P1"},
			},
		},
	}

	r := newTestReconciler(v, rc)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, stillThere := v.files["Tasks/Work/_.md"]; stillThere {
		t.Errorf("old project path should have been moved away")
	}

	renamed, ok := v.files["Tasks/Career/_.md"]
	if !ok {
		t.Fatalf("expected project note at Tasks/Career/_.md, files: %v", keysOf(v.files))
	}

	if renamed[props.ProjectName] != "Career" {
		t.Errorf("project_name = %v, want Career", renamed[props.ProjectName])
	}

	var taskLink any
	for path, fields := range v.files {
		if fields[props.RemoteTaskID] == "T1" {
			taskLink = fields[props.ProjectLink]
			_ = path
		}
	}

	if taskLink != "[[Tasks/Career/_|Career]]" {
		t.Errorf("task project_link = %v, want link into renamed folder", taskLink)
	}
}

func TestRun_DuplicateRemoteIDIsReportedNotSilentlyResolved(t *testing.T) {
	v := newFakeVault()
	props := frontmatter.DefaultPropNames()

	v.files["Tasks/a.md"] = map[string]any{props.NoteKind: "task", props.RemoteTaskID: "T1", props.TaskTitle: "A"}
	v.files["Tasks/b.md"] = map[string]any{props.NoteKind: "task", props.RemoteTaskID: "T1", props.TaskTitle: "B"}
	v.order = append(v.order, "Tasks/a.md", "Tasks/b.md")

	rc := &fakeRemote{
		snapshot: vaultmodel.RemoteSnapshot{
			Items: []vaultmodel.RemoteItem{{ID: "T1", Content: "A"}},
		},
	}

	r := newTestReconciler(v, rc)

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.DuplicateIDs) != 1 || summary.DuplicateIDs[0] != "T1" {
		t.Errorf("DuplicateIDs = %v, want [T1]", summary.DuplicateIDs)
	}
}

func keysOf(m map[string]map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
