package state

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestRegister_SeedsIdleRecord(t *testing.T) {
	m := newTestManager(t)

	if !m.Register("s1", "market trends", nil) {
		t.Fatal("Register returned false")
	}

	rec, ok := m.Status("s1")
	if !ok {
		t.Fatal("Status returned not found")
	}
	if rec.Status != StatusIdle {
		t.Errorf("status: got %q, want %q", rec.Status, StatusIdle)
	}
	if rec.CurrentStep != 0 {
		t.Errorf("current_step: got %d, want 0", rec.CurrentStep)
	}
	if len(rec.ErrorLog) != 0 {
		t.Errorf("error_log: got %d entries, want 0", len(rec.ErrorLog))
	}
	if rec.Query != "market trends" {
		t.Errorf("query: got %q, want %q", rec.Query, "market trends")
	}

	// The session directory and document exist on disk before Register returns.
	dir, ok := m.SessionDirectory("s1")
	if !ok {
		t.Fatal("SessionDirectory returned not found")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("expected persisted document: %v", err)
	}
}

func TestRegister_DuplicateFailsAndLeavesFirstIntact(t *testing.T) {
	m := newTestManager(t)

	if !m.Register("s1", "original", nil) {
		t.Fatal("first Register returned false")
	}
	if m.Register("s1", "replacement", nil) {
		t.Error("second Register should return false")
	}

	rec, _ := m.Status("s1")
	if rec.Query != "original" {
		t.Errorf("query after duplicate register: got %q, want %q", rec.Query, "original")
	}
}

func TestRegister_InitialDataOverlay(t *testing.T) {
	m := newTestManager(t)

	m.Register("s1", "q", map[string]interface{}{
		"current_step": 3,
		"source":       "import",
	})

	rec, _ := m.Status("s1")
	if rec.CurrentStep != 3 {
		t.Errorf("current_step: got %d, want 3", rec.CurrentStep)
	}
	if rec.Annotations["source"] != "import" {
		t.Errorf("annotations[source]: got %v, want %q", rec.Annotations["source"], "import")
	}
}

func TestSetStatus_UnknownSession(t *testing.T) {
	m := newTestManager(t)
	if m.SetStatus("ghost", StatusRunning, StepUnchanged, nil) {
		t.Error("SetStatus on unknown session should return false")
	}
}

func TestSetStatus_StepAndOverlay(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)

	if !m.SetStatus("s1", StatusRunning, 4, map[string]interface{}{"query": "refined"}) {
		t.Fatal("SetStatus returned false")
	}

	rec, _ := m.Status("s1")
	if rec.Status != StatusRunning || rec.CurrentStep != 4 || rec.Query != "refined" {
		t.Errorf("unexpected record: %+v", rec)
	}

	// StepUnchanged leaves current_step alone.
	m.SetStatus("s1", StatusPaused, StepUnchanged, nil)
	rec, _ = m.Status("s1")
	if rec.CurrentStep != 4 {
		t.Errorf("current_step after StepUnchanged: got %d, want 4", rec.CurrentStep)
	}
}

// completed and error are not enforced as terminal; transitions out of them
// remain allowed. Pinned so a future tightening is a deliberate change.
func TestSetStatus_TerminalStatesNotEnforced(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)

	for _, from := range []string{StatusCompleted, StatusError} {
		if !m.SetStatus("s1", from, StepUnchanged, nil) {
			t.Fatalf("SetStatus(%s) returned false", from)
		}
		if !m.SetStatus("s1", StatusRunning, StepUnchanged, nil) {
			t.Errorf("transition %s -> running should be allowed", from)
		}
	}
}

func TestUpdateProgress_Math(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)

	if !m.UpdateProgress("s1", "m", 3, 10) {
		t.Fatal("UpdateProgress returned false")
	}
	rec, _ := m.Status("s1")
	if rec.Progress.ProgressPercentage != 30.0 {
		t.Errorf("progress: got %v, want 30.0", rec.Progress.ProgressPercentage)
	}
	if rec.Progress.CurrentModule != "m" {
		t.Errorf("current_module: got %q, want %q", rec.Progress.CurrentModule, "m")
	}

	m.UpdateProgress("s1", "m", 0, 0)
	rec, _ = m.Status("s1")
	if rec.Progress.ProgressPercentage != 0 {
		t.Errorf("zero-total progress: got %v, want 0", rec.Progress.ProgressPercentage)
	}

	m.UpdateProgress("s1", "m", 1, 3)
	rec, _ = m.Status("s1")
	if rec.Progress.ProgressPercentage != 33.33 {
		t.Errorf("rounded progress: got %v, want 33.33", rec.Progress.ProgressPercentage)
	}
}

func TestAddErrorLog_CapsAtFifty(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)

	for i := 0; i < 60; i++ {
		if !m.AddErrorLog("s1", fmt.Sprintf("error %d", i), "mod") {
			t.Fatalf("AddErrorLog %d returned false", i)
		}
	}

	rec, _ := m.Status("s1")
	if len(rec.ErrorLog) != 50 {
		t.Fatalf("error log length: got %d, want 50", len(rec.ErrorLog))
	}
	if rec.ErrorLog[0].Message != "error 10" {
		t.Errorf("oldest retained entry: got %q, want %q", rec.ErrorLog[0].Message, "error 10")
	}
	if rec.ErrorLog[49].Message != "error 59" {
		t.Errorf("newest entry: got %q, want %q", rec.ErrorLog[49].Message, "error 59")
	}
}

func TestStatus_ReturnsDefensiveCopy(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)
	m.AddErrorLog("s1", "original", "mod")

	rec, _ := m.Status("s1")
	rec.ErrorLog[0].Message = "mutated"
	rec.ModuleResults["injected"] = true

	fresh, _ := m.Status("s1")
	if fresh.ErrorLog[0].Message != "original" {
		t.Error("mutating a returned copy leaked into the manager")
	}
	if _, ok := fresh.ModuleResults["injected"]; ok {
		t.Error("mutating a returned map leaked into the manager")
	}
}

func TestList_FilterAndOrder(t *testing.T) {
	m := newTestManager(t)
	m.Register("a", "q", nil)
	m.Register("b", "q", nil)
	m.Register("c", "q", nil)
	m.SetStatus("b", StatusRunning, StepUnchanged, nil)

	all := m.List("")
	if len(all) != 3 {
		t.Fatalf("List: got %d sessions, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Error("List not sorted by created_at descending")
		}
	}

	running := m.List(StatusRunning)
	if len(running) != 1 || running[0].SessionID != "b" {
		t.Errorf("List(running): got %+v", running)
	}
}

func TestDelete_RemovesMemoryAndDisk(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)
	dir, _ := m.SessionDirectory("s1")

	if !m.Delete("s1") {
		t.Fatal("Delete returned false")
	}
	if _, ok := m.Status("s1"); ok {
		t.Error("Status after delete should return not found")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("session directory should be removed")
	}

	if m.Delete("s1") {
		t.Error("second Delete should return false")
	}
}

func TestReload_ReconstructsState(t *testing.T) {
	baseDir := t.TempDir()

	m, err := NewManager(baseDir, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	m.Register("s1", "market trends", nil)
	m.SetStatus("s1", StatusRunning, 7, nil)
	m.UpdateProgress("s1", "collector", 2, 5)
	m.AddErrorLog("s1", "transient failure", "collector")
	before, _ := m.Status("s1")

	// Simulated restart: a fresh manager over the same directory.
	reloaded, err := NewManager(baseDir, nil)
	if err != nil {
		t.Fatalf("NewManager (reload) failed: %v", err)
	}

	after, ok := reloaded.Status("s1")
	if !ok {
		t.Fatal("reloaded manager lost session s1")
	}

	if after.Status != before.Status || after.CurrentStep != before.CurrentStep ||
		after.Query != before.Query || after.Progress != before.Progress {
		t.Errorf("reloaded record differs: before=%+v after=%+v", before, after)
	}
	if len(after.ErrorLog) != len(before.ErrorLog) {
		t.Errorf("error log length: got %d, want %d", len(after.ErrorLog), len(before.ErrorLog))
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created_at changed across reload: %v vs %v", after.CreatedAt, before.CreatedAt)
	}
	// updated_at is refreshed on load; everything else must match.
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Error("updated_at should be refreshed on reload")
	}
}

func TestLoad_SkipsDirectoriesWithoutDocument(t *testing.T) {
	baseDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(baseDir, "stray"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	m, err := NewManager(baseDir, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if _, ok := m.Status("stray"); ok {
		t.Error("directory without config.json should be skipped")
	}
}

func TestMutationRefreshesUpdatedAt(t *testing.T) {
	m := newTestManager(t)
	m.Register("s1", "q", nil)
	before, _ := m.Status("s1")

	time.Sleep(5 * time.Millisecond)
	m.SetStatus("s1", StatusRunning, StepUnchanged, nil)

	after, _ := m.Status("s1")
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("updated_at not refreshed by SetStatus")
	}
}
