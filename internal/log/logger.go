// Package log provides structured event logging.
// This file appends JSON events to log.jsonl.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventSessionRegistered = "session_registered"
	EventStatusChanged     = "status_changed"
	EventProgressUpdated   = "progress_updated"
	EventErrorLogged       = "error_logged"
	EventSessionDeleted    = "session_deleted"
	EventWorkflowPaused    = "workflow_paused"
	EventWorkflowResumed   = "workflow_resumed"
	EventTurnAppended      = "turn_appended"
	EventHistoryCleared    = "history_cleared"
	EventGenerateFailed    = "generate_failed"
	EventOperationFailed   = "operation_failed"
)

// Event represents a single structured event written to the log.
type Event struct {
	Time      time.Time              `json:"time"`
	Event     string                 `json:"event"`
	SessionID string                 `json:"session_id,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Status    string                 `json:"status,omitempty"`
	Step      int                    `json:"step,omitempty"`
	Module    string                 `json:"module,omitempty"`
	Role      string                 `json:"role,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to .sift/log.jsonl inside dir.
// Creates the .sift/ directory if it does not already exist.
// Does not truncate an existing log file.
func NewLogger(dir string) (*Logger, error) {
	siftDir := filepath.Join(dir, ".sift")
	if err := os.MkdirAll(siftDir, 0755); err != nil {
		return nil, fmt.Errorf("create .sift directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(siftDir, "log.jsonl"),
	}, nil
}

// Append writes a single Event as one JSON line to the log file.
// If event.Time is the zero value, it is automatically set to time.Now().UTC().
// A nil Logger discards the event, so callers never need a nil check.
// Thread-safe via mutex.
func (l *Logger) Append(event Event) error {
	if l == nil {
		return nil
	}

	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}
