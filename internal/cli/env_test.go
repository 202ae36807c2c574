package cli

import (
	"testing"

	"github.com/sift-dev/sift/internal/config"
	"github.com/sift-dev/sift/internal/testutil"
)

func TestNewEnv_AnalysesDirOverride(t *testing.T) {
	dir := testutil.TempAnalysesDir(t, map[string]map[string]string{
		"seeded-idle": testutil.EmptySession(),
		"seeded-done": testutil.AnalysisSession("market trends"),
	})
	t.Setenv(config.EnvAnalysesDir, dir)

	e, err := newEnv()
	if err != nil {
		t.Fatalf("newEnv: %v", err)
	}
	defer e.close()

	if e.manager.BaseDir() != dir {
		t.Errorf("base dir = %q, want %q", e.manager.BaseDir(), dir)
	}

	sessions := e.manager.List("")
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	rec, ok := e.manager.Status("seeded-done")
	if !ok {
		t.Fatal("seeded-done not loaded")
	}
	if rec.Status != "completed" {
		t.Errorf("status = %q, want completed", rec.Status)
	}

	res := e.tools.ListSessionFiles("seeded-done")
	if res.Status != "success" {
		t.Fatalf("ListSessionFiles: %s", res.Message)
	}
}
