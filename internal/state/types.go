// Package state maintains the in-memory session table and keeps it
// synchronized with one JSON document per session on disk.
package state

import "time"

// Session status values.
const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// StepUnchanged tells SetStatus to leave current_step as is.
const StepUnchanged = -1

// errorLogCap is the maximum number of retained error-log entries per session.
const errorLogCap = 50

// Progress describes how far a session's analysis has advanced.
// ProgressPercentage is always recomputed from its inputs, never set directly.
type Progress struct {
	TotalSteps         int     `json:"total_steps"`
	CompletedSteps     int     `json:"completed_steps"`
	CurrentModule      string  `json:"current_module"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// ErrorEntry is one entry in a session's bounded error log.
type ErrorEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
}

// Record is the public view of a session. It carries no filesystem paths;
// those live only on the internal record and the on-disk document.
type Record struct {
	SessionID     string                 `json:"session_id"`
	Status        string                 `json:"status"`
	CurrentStep   int                    `json:"current_step"`
	Query         string                 `json:"query"`
	Progress      Progress               `json:"analysis_progress"`
	ErrorLog      []ErrorEntry           `json:"error_log"`
	ModuleResults map[string]interface{} `json:"module_results"`
	Annotations   map[string]interface{} `json:"annotations,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// record is the internal representation: the public view plus the derived
// path fields. The paths are persisted in the on-disk document but stripped
// from every externally returned copy.
type record struct {
	Record
	SessionDir string `json:"session_dir"`
	ConfigPath string `json:"config_path"`
}

// clone returns a deep copy of the public view, safe to hand to callers.
func (r *record) clone() Record {
	out := r.Record

	if r.ErrorLog != nil {
		out.ErrorLog = make([]ErrorEntry, len(r.ErrorLog))
		copy(out.ErrorLog, r.ErrorLog)
	}
	if r.ModuleResults != nil {
		out.ModuleResults = make(map[string]interface{}, len(r.ModuleResults))
		for k, v := range r.ModuleResults {
			out.ModuleResults[k] = v
		}
	}
	if r.Annotations != nil {
		out.Annotations = make(map[string]interface{}, len(r.Annotations))
		for k, v := range r.Annotations {
			out.Annotations[k] = v
		}
	}

	return out
}

// applyOverlay merges data onto the record as a shallow overlay. Keys that
// correspond to typed fields update those fields; everything else lands in
// Annotations.
func (r *record) applyOverlay(data map[string]interface{}) {
	for k, v := range data {
		switch k {
		case "query":
			if s, ok := v.(string); ok {
				r.Query = s
				continue
			}
		case "current_step":
			switch n := v.(type) {
			case int:
				r.CurrentStep = n
				continue
			case float64:
				r.CurrentStep = int(n)
				continue
			}
		}
		if r.Annotations == nil {
			r.Annotations = make(map[string]interface{})
		}
		r.Annotations[k] = v
	}
}
