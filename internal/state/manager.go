package state

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sift-dev/sift/internal/log"
)

// documentName is the per-session state document inside the session directory.
const documentName = "config.json"

// Manager owns the shared session table. It is constructed once per process;
// every read-modify-write sequence, including the disk write that follows it,
// runs under one manager-wide mutex, so a reader never observes in-memory
// state that has not yet reached disk.
type Manager struct {
	mu       sync.Mutex
	baseDir  string
	sessions map[string]*record
	logger   *log.Logger
}

// NewManager creates the manager rooted at baseDir and loads every existing
// session directory. Subdirectories without a config.json are skipped with a
// warning event. The base directory is created if missing.
func NewManager(baseDir string, logger *log.Logger) (*Manager, error) {
	m := &Manager{
		baseDir:  baseDir,
		sessions: make(map[string]*record),
		logger:   logger,
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create analyses directory: %w", err)
	}

	if err := m.loadSessions(); err != nil {
		return nil, err
	}

	return m, nil
}

// BaseDir returns the base analyses directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// loadSessions reconstructs the in-memory table from disk at startup.
// Last write wins at the granularity of a full-record replace.
func (m *Manager) loadSessions() error {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return fmt.Errorf("read analyses directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".sift" {
			continue
		}

		sessionID := entry.Name()
		sessionDir := filepath.Join(m.baseDir, sessionID)
		configPath := filepath.Join(sessionDir, documentName)

		data, err := os.ReadFile(configPath)
		if err != nil {
			m.warn(sessionID, "load", fmt.Sprintf("session directory without %s, skipping", documentName))
			continue
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			m.warn(sessionID, "load", fmt.Sprintf("unreadable session document: %v", err))
			continue
		}

		// Paths are recomputed from the actual location, not trusted
		// from the document.
		rec.SessionID = sessionID
		rec.SessionDir = sessionDir
		rec.ConfigPath = configPath
		if rec.Status == "" {
			rec.Status = StatusIdle
		}
		rec.UpdatedAt = time.Now()

		m.sessions[sessionID] = &rec
	}

	return nil
}

// Register creates a new session: directory, seeded idle record, optional
// initial-data overlay, persisted before returning. Returns false if the id
// is already registered.
func (m *Manager) Register(sessionID, query string, initialData map[string]interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; exists {
		m.warn(sessionID, "register", "session already exists")
		return false
	}

	sessionDir := filepath.Join(m.baseDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		m.warn(sessionID, "register", fmt.Sprintf("create session directory: %v", err))
		return false
	}

	now := time.Now()
	rec := &record{
		Record: Record{
			SessionID:     sessionID,
			Status:        StatusIdle,
			CurrentStep:   0,
			Query:         query,
			Progress:      Progress{},
			ErrorLog:      []ErrorEntry{},
			ModuleResults: map[string]interface{}{},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		SessionDir: sessionDir,
		ConfigPath: filepath.Join(sessionDir, documentName),
	}

	if initialData != nil {
		rec.applyOverlay(initialData)
	}

	m.sessions[sessionID] = rec

	if err := m.persist(rec); err != nil {
		delete(m.sessions, sessionID)
		m.warn(sessionID, "register", fmt.Sprintf("persist: %v", err))
		return false
	}

	_ = m.logger.Append(log.Event{Event: log.EventSessionRegistered, SessionID: sessionID})
	return true
}

// mutate applies fn to the named session under the lock, refreshes
// updated_at, and persists before returning. Every mutating operation goes
// through here.
func (m *Manager) mutate(sessionID, operation string, fn func(*record)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[sessionID]
	if !ok {
		m.warn(sessionID, operation, "session not found")
		return false
	}

	fn(rec)
	rec.UpdatedAt = time.Now()

	if err := m.persist(rec); err != nil {
		m.warn(sessionID, operation, fmt.Sprintf("persist: %v", err))
		return false
	}

	return true
}

// SetStatus updates the session status and optionally current_step, and
// merges additionalData as a shallow overlay. step is ignored when it equals
// StepUnchanged. No transition guard is applied here; guarded transitions are
// the tool facade's concern.
func (m *Manager) SetStatus(sessionID, status string, step int, additionalData map[string]interface{}) bool {
	ok := m.mutate(sessionID, "set_status", func(rec *record) {
		rec.Status = status
		if step != StepUnchanged {
			rec.CurrentStep = step
		}
		if additionalData != nil {
			rec.applyOverlay(additionalData)
		}
	})
	if ok {
		_ = m.logger.Append(log.Event{Event: log.EventStatusChanged, SessionID: sessionID, Status: status})
	}
	return ok
}

// Status returns a defensive copy of the session's public view.
func (m *Manager) Status(sessionID string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[sessionID]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// UpdateProgress replaces the progress block, recomputing the percentage as
// completedSteps/totalSteps*100 rounded to two decimal places (0 when
// totalSteps is 0).
func (m *Manager) UpdateProgress(sessionID, currentModule string, completedSteps, totalSteps int) bool {
	ok := m.mutate(sessionID, "update_progress", func(rec *record) {
		var pct float64
		if totalSteps > 0 {
			pct = float64(completedSteps) / float64(totalSteps) * 100
			pct = math.Round(pct*100) / 100
		}
		rec.Progress = Progress{
			TotalSteps:         totalSteps,
			CompletedSteps:     completedSteps,
			CurrentModule:      currentModule,
			ProgressPercentage: pct,
		}
	})
	if ok {
		_ = m.logger.Append(log.Event{Event: log.EventProgressUpdated, SessionID: sessionID, Module: currentModule})
	}
	return ok
}

// AddErrorLog appends an error entry and truncates the log to the most
// recent entries, oldest evicted first.
func (m *Manager) AddErrorLog(sessionID, message, moduleName string) bool {
	ok := m.mutate(sessionID, "add_error_log", func(rec *record) {
		rec.ErrorLog = append(rec.ErrorLog, ErrorEntry{
			Timestamp: time.Now(),
			Module:    moduleName,
			Message:   message,
		})
		if len(rec.ErrorLog) > errorLogCap {
			rec.ErrorLog = rec.ErrorLog[len(rec.ErrorLog)-errorLogCap:]
		}
	})
	if ok {
		_ = m.logger.Append(log.Event{Event: log.EventErrorLogged, SessionID: sessionID, Module: moduleName})
	}
	return ok
}

// List returns public-view copies of all sessions, optionally filtered by
// status, sorted by creation time descending.
func (m *Manager) List(statusFilter string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]Record, 0, len(m.sessions))
	for _, rec := range m.sessions {
		if statusFilter != "" && rec.Status != statusFilter {
			continue
		}
		records = append(records, rec.clone())
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records
}

// Delete removes the session from memory and recursively deletes its
// directory. Irreversible.
func (m *Manager) Delete(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[sessionID]
	if !ok {
		m.warn(sessionID, "delete", "session not found")
		return false
	}

	delete(m.sessions, sessionID)

	if err := os.RemoveAll(rec.SessionDir); err != nil {
		m.warn(sessionID, "delete", fmt.Sprintf("remove session directory: %v", err))
		return false
	}

	_ = m.logger.Append(log.Event{Event: log.EventSessionDeleted, SessionID: sessionID})
	return true
}

// SessionDirectory returns the session's private directory path.
func (m *Manager) SessionDirectory(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[sessionID]
	if !ok {
		return "", false
	}
	return rec.SessionDir, true
}

// persist writes the full record document atomically: temp file in the
// session directory, then rename. Callers hold the manager lock.
func (m *Manager) persist(rec *record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session document: %w", err)
	}

	tmp, err := os.CreateTemp(rec.SessionDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp document: %w", err)
	}

	if err := os.Rename(tmpPath, rec.ConfigPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp document: %w", err)
	}

	return nil
}

func (m *Manager) warn(sessionID, operation, msg string) {
	_ = m.logger.Append(log.Event{
		Event:     log.EventOperationFailed,
		SessionID: sessionID,
		Operation: operation,
		Error:     msg,
	})
}
