package tools

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sift-dev/sift/internal/safepath"
)

// DefaultMaxReadBytes caps ReadFile when the caller passes maxSize <= 0.
const DefaultMaxReadBytes = 1 << 20

// FileInfo describes one file inside a session directory.
type FileInfo struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
	Extension string    `json:"extension"`
}

// ReadFile returns the contents of a single file from the session
// directory. The filename is validated before any filesystem access, and
// the resolved path must stay inside the session directory. Files that are
// not valid UTF-8 come back hex-encoded with a note saying so.
func (t *Tools) ReadFile(sessionID, filename string, maxSize int64) Result {
	if maxSize <= 0 {
		maxSize = DefaultMaxReadBytes
	}

	if !safepath.IsSafeName(filename) {
		return Result{
			Status:    StatusError,
			Message:   fmt.Sprintf("invalid filename: %s", filename),
			SessionID: sessionID,
		}
	}

	dir, ok := t.manager.SessionDirectory(sessionID)
	if !ok {
		return notFound(sessionID)
	}

	path := filepath.Join(dir, filename)
	if !safepath.IsWithinDirectory(path, dir) {
		return Result{
			Status:    StatusError,
			Message:   fmt.Sprintf("invalid filename: %s", filename),
			SessionID: sessionID,
		}
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Result{
			Status:    StatusError,
			Message:   fmt.Sprintf("file %s not found in session %s", filename, sessionID),
			SessionID: sessionID,
		}
	}
	if info.Size() > maxSize {
		return Result{
			Status:    StatusError,
			Message:   fmt.Sprintf("file %s is too large (%d bytes, limit %d)", filename, info.Size(), maxSize),
			SessionID: sessionID,
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{
			Status:    StatusError,
			Message:   fmt.Sprintf("failed to read %s: %v", filename, err),
			SessionID: sessionID,
		}
	}

	data := map[string]interface{}{
		"filename":   filename,
		"size_bytes": info.Size(),
		"modified":   info.ModTime().Format(time.RFC3339),
	}
	if utf8.Valid(raw) {
		data["content"] = string(raw)
	} else {
		data["content"] = hex.EncodeToString(raw)
		data["note"] = "content is not valid UTF-8; returned hex-encoded"
	}

	return Result{Status: StatusSuccess, SessionID: sessionID, Data: data}
}

// ListSessionFiles lists the session directory, newest first.
func (t *Tools) ListSessionFiles(sessionID string) Result {
	files, err := t.listFiles(sessionID)
	if err != nil {
		if os.IsNotExist(err) {
			return notFound(sessionID)
		}
		return Result{
			Status:    StatusError,
			Message:   fmt.Sprintf("failed to list session files: %v", err),
			SessionID: sessionID,
		}
	}

	dir, _ := t.manager.SessionDirectory(sessionID)
	return Result{
		Status:    StatusSuccess,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"files":             files,
			"total_files":       len(files),
			"session_directory": dir,
		},
	}
}

func (t *Tools) listFiles(sessionID string) ([]FileInfo, error) {
	dir, ok := t.manager.SessionDirectory(sessionID)
	if !ok {
		return nil, os.ErrNotExist
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:      entry.Name(),
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
			Extension: strings.ToLower(filepath.Ext(entry.Name())),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}
