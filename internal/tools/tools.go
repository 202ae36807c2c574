// Package tools exposes operator-facing actions over a session: status
// queries, pause/resume, scoped file access, and query refinement. Every
// action returns a structured Result rather than an error; an unknown
// session is always reported as an error Result naming the session id.
package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/sift-dev/sift/internal/conversation"
	"github.com/sift-dev/sift/internal/log"
	"github.com/sift-dev/sift/internal/state"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Result is the envelope every tool action returns.
type Result struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Tools composes the session manager, the scoped file guard, and
// (optionally) the conversation store into operator actions.
type Tools struct {
	manager *state.Manager
	convo   *conversation.Store // optional; nil disables rollup reporting
	logger  *log.Logger
}

// New creates the tool set. convo may be nil when conversation rollups are
// not needed in system status.
func New(manager *state.Manager, convo *conversation.Store, logger *log.Logger) *Tools {
	return &Tools{manager: manager, convo: convo, logger: logger}
}

func notFound(sessionID string) Result {
	return Result{
		Status:    StatusError,
		Message:   fmt.Sprintf("session %s not found", sessionID),
		SessionID: sessionID,
	}
}

// PauseWorkflow pauses a running session. The transition is guarded: a
// session in any status other than running yields a warning and no change.
// The reason is recorded in the session error log.
func (t *Tools) PauseWorkflow(sessionID, reason string) Result {
	if reason == "" {
		reason = "paused by operator"
	}

	current, ok := t.manager.Status(sessionID)
	if !ok {
		return notFound(sessionID)
	}

	if current.Status != state.StatusRunning {
		return Result{
			Status:    StatusWarning,
			Message:   fmt.Sprintf("session %s is not running (status: %s)", sessionID, current.Status),
			SessionID: sessionID,
		}
	}

	ok = t.manager.SetStatus(sessionID, state.StatusPaused, state.StepUnchanged, map[string]interface{}{
		"pause_reason": reason,
		"paused_at":    time.Now().Format(time.RFC3339),
	})
	if !ok {
		return Result{Status: StatusError, Message: "failed to pause workflow", SessionID: sessionID}
	}

	t.manager.AddErrorLog(sessionID, fmt.Sprintf("workflow paused: %s", reason), "tools")
	_ = t.logger.Append(log.Event{Event: log.EventWorkflowPaused, SessionID: sessionID, Reason: reason})

	return Result{
		Status:    StatusSuccess,
		Message:   "workflow paused",
		SessionID: sessionID,
		Data:      map[string]interface{}{"reason": reason},
	}
}

// ResumeWorkflow prepares a paused session to be resumed: status returns to
// idle with ready_to_resume set; the actual re-entry into running is driven
// by the external workflow driver. Guarded: only a paused session qualifies.
func (t *Tools) ResumeWorkflow(sessionID string) Result {
	current, ok := t.manager.Status(sessionID)
	if !ok {
		return notFound(sessionID)
	}

	if current.Status != state.StatusPaused {
		return Result{
			Status:    StatusWarning,
			Message:   fmt.Sprintf("session %s is not paused (status: %s)", sessionID, current.Status),
			SessionID: sessionID,
		}
	}

	ok = t.manager.SetStatus(sessionID, state.StatusIdle, state.StepUnchanged, map[string]interface{}{
		"resume_prepared_at": time.Now().Format(time.RFC3339),
		"ready_to_resume":    true,
	})
	if !ok {
		return Result{Status: StatusError, Message: "failed to prepare session for resume", SessionID: sessionID}
	}

	_ = t.logger.Append(log.Event{Event: log.EventWorkflowResumed, SessionID: sessionID})

	return Result{
		Status:    StatusSuccess,
		Message:   "session prepared to resume; the workflow driver restarts execution",
		SessionID: sessionID,
		Data:      map[string]interface{}{"next_step": current.CurrentStep},
	}
}

// UpdateQuery replaces the session's work query, keeping the current status.
// Blank or whitespace-only queries are rejected.
func (t *Tools) UpdateQuery(sessionID, newQuery string) Result {
	trimmed := strings.TrimSpace(newQuery)
	if trimmed == "" {
		return Result{Status: StatusError, Message: "query cannot be empty", SessionID: sessionID}
	}

	current, ok := t.manager.Status(sessionID)
	if !ok {
		return notFound(sessionID)
	}

	ok = t.manager.SetStatus(sessionID, current.Status, state.StepUnchanged, map[string]interface{}{
		"query":            trimmed,
		"query_updated_at": time.Now().Format(time.RFC3339),
	})
	if !ok {
		return Result{Status: StatusError, Message: "failed to update query", SessionID: sessionID}
	}

	return Result{
		Status:    StatusSuccess,
		Message:   "query updated",
		SessionID: sessionID,
		Data: map[string]interface{}{
			"new_query":      trimmed,
			"previous_query": current.Query,
		},
	}
}

// AnalysisSummary merges status fields, a keyword scan for report-like
// files, and the error-log count into one view of the analysis.
func (t *Tools) AnalysisSummary(sessionID string) Result {
	current, ok := t.manager.Status(sessionID)
	if !ok {
		return notFound(sessionID)
	}

	reportFiles := []string{}
	if files, err := t.listFiles(sessionID); err == nil {
		for _, f := range files {
			if containsReportKeyword(f.Name) {
				reportFiles = append(reportFiles, f.Name)
			}
		}
	}

	return Result{
		Status:    StatusSuccess,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"summary": map[string]interface{}{
				"session_id":     sessionID,
				"status":         current.Status,
				"query":          current.Query,
				"created_at":     current.CreatedAt,
				"updated_at":     current.UpdatedAt,
				"progress":       current.Progress,
				"total_errors":   len(current.ErrorLog),
				"report_files":   reportFiles,
				"module_results": current.ModuleResults,
			},
		},
	}
}

// reportKeywords marks filenames that look like analysis output.
var reportKeywords = []string{"report", "summary", "analysis"}

func containsReportKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range reportKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
