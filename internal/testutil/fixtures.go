// Package testutil provides test helper utilities for sift tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempAnalysesDir creates a temporary analyses base directory containing
// the given session directories. sessions maps session id -> files, where
// files maps relative path -> content. The directory is cleaned up when the
// test finishes.
func TempAnalysesDir(t *testing.T, sessions map[string]map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for sessionID, files := range sessions {
		sessionDir := filepath.Join(dir, sessionID)
		if err := os.MkdirAll(sessionDir, 0o755); err != nil {
			t.Fatalf("creating session dir %s: %v", sessionID, err)
		}
		SeedSessionFiles(t, sessionDir, files)
	}

	return dir
}

// SeedSessionFiles writes files into a session directory. files maps
// relative path -> content; intermediate directories are created.
func SeedSessionFiles(t *testing.T, sessionDir string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		absPath := filepath.Join(sessionDir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}
}

// AnalysisSession returns file contents for a session that has produced a
// report plus intermediate artifacts.
func AnalysisSession(query string) map[string]string {
	return map[string]string{
		"config.json":     `{"session_id": "", "status": "completed", "query": "` + query + `"}`,
		"final_report.md": "# Findings\n\nSummary of the analysis.\n",
		"raw_data.csv":    "metric,value\nrevenue,100\n",
	}
}

// EmptySession returns a session directory with only the state document.
func EmptySession() map[string]string {
	return map[string]string{
		"config.json": `{"session_id": "", "status": "idle"}`,
	}
}
