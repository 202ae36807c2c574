// Package conversation provides SQLite-backed persistence for per-session
// conversation history. Turns are append-only; a derived per-session rollup
// is kept transactionally consistent with each insert.
package conversation

import "time"

// Turn roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Turn represents one recorded message exchange within a session.
type Turn struct {
	ID         int64
	SessionID  string
	Role       string // user, agent
	Message    string
	Timestamp  time.Time
	TokensUsed int
	ModelUsed  string
	ToolCalls  []ToolCall
	Metadata   map[string]interface{}
}

// ToolCall records one structured tool invocation attached to a turn.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Result    string                 `json:"result,omitempty"`
}

// TurnOptions carries the optional fields of AppendTurn.
type TurnOptions struct {
	Metadata   map[string]interface{}
	TokensUsed int
	ModelUsed  string
	ToolCalls  []ToolCall
}

// Rollup is the continuously updated per-session aggregate.
type Rollup struct {
	SessionID      string
	Summary        string
	TotalMessages  int
	TotalTokens    int
	FirstMessageAt time.Time
	LastMessageAt  time.Time
}

// ContextMessage is the shape the text-generation backend consumes.
// Role is "user" or "assistant".
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stats summarizes the whole store across sessions.
type Stats struct {
	TotalMessages  int
	TotalSessions  int
	TotalTokens    int
	MessagesByRole map[string]int
	DatabasePath   string
}
