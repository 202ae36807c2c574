package tools

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sift-dev/sift/internal/state"
)

// minFreeBytes is the free-disk threshold below which the health snapshot
// flags the data volume.
const minFreeBytes = 1 << 30

// Health is a point-in-time snapshot of the storage backing the sessions.
type Health struct {
	AnalysesDirExists bool   `json:"analyses_dir_exists"`
	AnalysesDirWrite  bool   `json:"analyses_dir_writable"`
	FreeDiskBytes     uint64 `json:"free_disk_bytes"`
	DiskSpaceOK       bool   `json:"disk_space_ok"`
	ActiveSessions    int    `json:"active_sessions"`
	TotalSessions     int    `json:"total_sessions"`
}

func (t *Tools) healthSnapshot() Health {
	var h Health
	base := t.manager.BaseDir()

	if info, err := os.Stat(base); err == nil && info.IsDir() {
		h.AnalysesDirExists = true
		h.AnalysesDirWrite = unix.Access(base, unix.W_OK) == nil
	}

	var fs unix.Statfs_t
	if err := unix.Statfs(base, &fs); err == nil {
		h.FreeDiskBytes = fs.Bavail * uint64(fs.Bsize)
		h.DiskSpaceOK = h.FreeDiskBytes >= minFreeBytes
	}

	for _, rec := range t.manager.List("") {
		h.TotalSessions++
		if rec.Status == state.StatusRunning || rec.Status == state.StatusPaused {
			h.ActiveSessions++
		}
	}
	return h
}

// SystemStatus reports the session record, its file listing, a storage
// health snapshot, and (when the conversation store is attached) the
// conversation rollup for the session.
func (t *Tools) SystemStatus(sessionID string) Result {
	current, ok := t.manager.Status(sessionID)
	if !ok {
		return notFound(sessionID)
	}

	data := map[string]interface{}{
		"session_status": current,
		"system_health":  t.healthSnapshot(),
		"timestamp":      time.Now().Format(time.RFC3339),
	}

	if dir, ok := t.manager.SessionDirectory(sessionID); ok {
		data["session_directory"] = dir
	}
	if files, err := t.listFiles(sessionID); err == nil {
		data["session_files"] = files
		data["total_files"] = len(files)
	}
	if t.convo != nil {
		if rollup, ok := t.convo.Summary(sessionID); ok {
			data["conversation"] = rollup
		}
	}

	return Result{Status: StatusSuccess, SessionID: sessionID, Data: data}
}
