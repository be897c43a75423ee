package pathpolicy

import (
	"strings"
	"testing"
)

func TestSanitize_StripsReservedChars(t *testing.T) {
	got := Sanitize(`a/b\c:d*e?f"g<h>i|j`)
	if strings.ContainsAny(got, reservedChars) {
		t.Fatalf("expected reserved chars stripped, got %q", got)
	}
}

func TestSanitize_CollapsesWhitespace(t *testing.T) {
	got := Sanitize("hello    world\t\tfoo")
	if got != "hello world foo" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := Sanitize(long)

	if len([]rune(got)) != maxSegmentLength {
		t.Fatalf("expected truncation to %d runes, got %d", maxSegmentLength, len([]rune(got)))
	}
}

func TestSanitize_EmptyFallsBackToUntitled(t *testing.T) {
	if got := Sanitize("   "); got != "untitled" {
		t.Fatalf("expected 'untitled' fallback, got %q", got)
	}
}

func TestProjectFolderSegments_NoParent(t *testing.T) {
	names := map[string]string{"P1": "Personal"}
	parents := map[string]string{}

	segs := ProjectFolderSegments("P1", names, parents)
	if len(segs) != 1 || segs[0] != "Personal" {
		t.Fatalf("expected single segment 'Personal', got %v", segs)
	}
}

func TestProjectFolderSegments_NestedChain(t *testing.T) {
	names := map[string]string{"P1": "Work", "P2": "Clients", "P3": "Acme"}
	parents := map[string]string{"P3": "P2", "P2": "P1"}

	segs := ProjectFolderSegments("P3", names, parents)
	want := []string{"Work", "Clients", "Acme"}

	if len(segs) != len(want) {
		t.Fatalf("expected %v, got %v", want, segs)
	}

	for i := range want {
		if segs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, segs)
		}
	}
}

func TestProjectFolderSegmentsWithCycle_BreaksCycle(t *testing.T) {
	names := map[string]string{"A": "A", "B": "B", "C": "C"}
	parents := map[string]string{"A": "B", "B": "C", "C": "A"} // cycle

	segs, cyclic := ProjectFolderSegmentsWithCycle("A", names, parents)

	if !cyclic {
		t.Fatalf("expected cycle to be detected")
	}

	if len(segs) == 0 {
		t.Fatalf("expected a finite, non-empty segment list even with a cycle")
	}
}

func TestTopologicalOrder_ParentsBeforeChildren(t *testing.T) {
	ids := []string{"C", "A", "B"}
	parents := map[string]string{"B": "A", "C": "B"}

	order := TopologicalOrder(ids, parents)

	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}

	if pos["A"] > pos["B"] || pos["B"] > pos["C"] {
		t.Fatalf("expected A before B before C, got %v", order)
	}
}

func TestDisambiguatedProjectSegment_SuffixesCollisions(t *testing.T) {
	names := map[string]string{"P1": "Personal", "P2": "Personal"}
	order := []string{"P1", "P2"}

	first := DisambiguatedProjectSegment("P1", names, order)
	second := DisambiguatedProjectSegment("P2", names, order)

	if first != "Personal" {
		t.Fatalf("expected first-seen project to keep bare name, got %q", first)
	}

	if second == "Personal" || !strings.HasPrefix(second, "Personal (") {
		t.Fatalf("expected second project to get a disambiguating suffix, got %q", second)
	}
}

func TestTaskFilePath_NoSubfolders(t *testing.T) {
	cfg := TaskFileConfig{BaseFolder: "Tasks"}

	got := TaskFilePath("A1", "Buy milk", "Personal", "", cfg, nil)
	if got != "Tasks/Buy milk.md" {
		t.Fatalf("expected 'Tasks/Buy milk.md', got %q", got)
	}
}

func TestTaskFilePath_WithSubfolders(t *testing.T) {
	cfg := TaskFileConfig{BaseFolder: "Tasks", UseProjectSubfolders: true, UseSectionSubfolder: true}

	got := TaskFilePath("A1", "Buy milk", "Personal", "Errands", cfg, nil)
	if got != "Tasks/Personal/Errands/Buy milk.md" {
		t.Fatalf("expected nested path, got %q", got)
	}
}

func TestTaskFilePath_CollisionAppendsID(t *testing.T) {
	cfg := TaskFileConfig{BaseFolder: "Tasks"}

	exists := func(candidate string) bool { return candidate == "Tasks/Buy milk.md" }

	got := TaskFilePath("A1", "Buy milk", "", "", cfg, exists)
	if got != "Tasks/Buy milk-A1.md" {
		t.Fatalf("expected collision-disambiguated path, got %q", got)
	}
}

func TestAllocateCollisionFreePath_AppendsSuffix(t *testing.T) {
	occupied := map[string]bool{"Tasks/Buy milk.md": true, "Tasks/Buy milk-2.md": true}

	got := AllocateCollisionFreePath("Tasks/Buy milk.md", func(p string) bool { return occupied[p] })
	if got != "Tasks/Buy milk-3.md" {
		t.Fatalf("expected 'Tasks/Buy milk-3.md', got %q", got)
	}
}

func TestAllocateCollisionFreePath_FreeReturnsUnchanged(t *testing.T) {
	got := AllocateCollisionFreePath("Tasks/Buy milk.md", func(string) bool { return false })
	if got != "Tasks/Buy milk.md" {
		t.Fatalf("expected unchanged path, got %q", got)
	}
}
