// Package cleanup implements pruning of stale session directories.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sift-dev/sift/internal/state"
)

// sessionDocument mirrors the per-session state document the manager
// writes; a directory without one is an orphan.
const sessionDocument = "config.json"

// PruneByAge deletes sessions whose state document was last written more
// than maxAgeDays ago. The document mtime is used rather than the in-memory
// updated_at, which resets when the manager reloads. Running and paused
// sessions are never pruned. If dryRun is true nothing is deleted; the
// returned slice lists the session ids that would go.
func PruneByAge(m *state.Manager, maxAgeDays int, dryRun bool) ([]string, error) {
	if maxAgeDays <= 0 {
		return nil, fmt.Errorf("max age must be positive, got %d", maxAgeDays)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var pruned []string

	for _, rec := range m.List("") {
		if rec.Status == state.StatusRunning || rec.Status == state.StatusPaused {
			continue
		}
		dir, ok := m.SessionDirectory(rec.SessionID)
		if !ok {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, sessionDocument))
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if !dryRun {
			if !m.Delete(rec.SessionID) {
				return pruned, fmt.Errorf("deleting session %s", rec.SessionID)
			}
		}
		pruned = append(pruned, rec.SessionID)
	}

	return pruned, nil
}

// PruneOrphans removes subdirectories of baseDir that carry no session
// document. These are left behind when a session write was interrupted or
// when foreign data lands in the analyses directory. The .sift directory
// is always kept. Returns the directory names removed.
func PruneOrphans(baseDir string, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading analyses directory: %w", err)
	}

	var pruned []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".sift" {
			continue
		}
		if _, err := os.Stat(filepath.Join(baseDir, entry.Name(), sessionDocument)); err == nil {
			continue
		}
		if !dryRun {
			if err := os.RemoveAll(filepath.Join(baseDir, entry.Name())); err != nil {
				return pruned, fmt.Errorf("removing %s: %w", entry.Name(), err)
			}
		}
		pruned = append(pruned, entry.Name())
	}

	return pruned, nil
}
