package conversation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sift-dev/sift/internal/log"
)

// timestampLayout is how turn timestamps are stored. Fixed-width fractional
// seconds so the stored strings sort lexicographically in timestamp order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store provides SQLite-backed persistence for conversation turns and
// rollups. A single mutex serializes all store access; this is coarse but the
// store is never the hot path relative to generation latency.
//
// Store-level failures never propagate: mutating operations return false and
// reads return empty results, each logged with the session id and operation.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	logger *log.Logger
}

// NewStore opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewStore(dbPath string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, path: dbPath, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		metadata TEXT,
		tokens_used INTEGER DEFAULT 0,
		model_used TEXT DEFAULT '',
		tool_calls TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_session_timestamp
	ON conversations(session_id, timestamp);

	CREATE INDEX IF NOT EXISTS idx_session_role
	ON conversations(session_id, role);

	CREATE TABLE IF NOT EXISTS session_summaries (
		session_id TEXT PRIMARY KEY,
		summary TEXT DEFAULT '',
		total_messages INTEGER DEFAULT 0,
		total_tokens INTEGER DEFAULT 0,
		first_message_at TEXT,
		last_message_at TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// AppendTurn inserts one turn and updates the session rollup within a single
// transaction: the rollup is created on the first turn, incremented after.
// Returns false on any store failure.
func (s *Store) AppendTurn(sessionID, role, message string, opts TurnOptions) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	ts := now.Format(timestampLayout)

	var metadataJSON, toolCallsJSON sql.NullString
	if opts.Metadata != nil {
		data, err := json.Marshal(opts.Metadata)
		if err != nil {
			s.fail(sessionID, "append_turn", err)
			return false
		}
		metadataJSON = sql.NullString{String: string(data), Valid: true}
	}
	if opts.ToolCalls != nil {
		data, err := json.Marshal(opts.ToolCalls)
		if err != nil {
			s.fail(sessionID, "append_turn", err)
			return false
		}
		toolCallsJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.fail(sessionID, "append_turn", err)
		return false
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO conversations
		 (session_id, role, message, timestamp, metadata, tokens_used, model_used, tool_calls)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, role, message, ts, metadataJSON, opts.TokensUsed, opts.ModelUsed, toolCallsJSON,
	)
	if err != nil {
		s.fail(sessionID, "append_turn", err)
		return false
	}

	res, err := tx.Exec(
		`UPDATE session_summaries
		 SET total_messages = total_messages + 1,
		     total_tokens = total_tokens + ?,
		     last_message_at = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE session_id = ?`,
		opts.TokensUsed, ts, sessionID,
	)
	if err != nil {
		s.fail(sessionID, "append_turn", err)
		return false
	}

	affected, err := res.RowsAffected()
	if err != nil {
		s.fail(sessionID, "append_turn", err)
		return false
	}
	if affected == 0 {
		_, err = tx.Exec(
			`INSERT INTO session_summaries
			 (session_id, total_messages, total_tokens, first_message_at, last_message_at)
			 VALUES (?, 1, ?, ?, ?)`,
			sessionID, opts.TokensUsed, ts, ts,
		)
		if err != nil {
			s.fail(sessionID, "append_turn", err)
			return false
		}
	}

	if err := tx.Commit(); err != nil {
		s.fail(sessionID, "append_turn", err)
		return false
	}

	_ = s.logger.Append(log.Event{Event: log.EventTurnAppended, SessionID: sessionID, Role: role})
	return true
}

// History returns up to limit turns in ascending timestamp order. The bound
// applies to the start of history: callers get the oldest slice, not the most
// recent one. Use RecentHistory for a recent window.
func (s *Store) History(sessionID string, limit int, includeMetadata bool) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, session_id, role, message, timestamp, tokens_used, model_used, tool_calls, metadata
		 FROM conversations
		 WHERE session_id = ?
		 ORDER BY timestamp ASC, id ASC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		s.fail(sessionID, "history", err)
		return []Turn{}
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows, includeMetadata)
	if err != nil {
		s.fail(sessionID, "history", err)
		return []Turn{}
	}
	return turns
}

// RecentHistory returns the most recent limit turns, still in ascending
// timestamp order. This is the corrected variant of History for callers that
// want recent context from a long conversation.
func (s *Store) RecentHistory(sessionID string, limit int, includeMetadata bool) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, session_id, role, message, timestamp, tokens_used, model_used, tool_calls, metadata
		 FROM (
			SELECT * FROM conversations
			WHERE session_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		 )
		 ORDER BY timestamp ASC, id ASC`,
		sessionID, limit,
	)
	if err != nil {
		s.fail(sessionID, "recent_history", err)
		return []Turn{}
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows, includeMetadata)
	if err != nil {
		s.fail(sessionID, "recent_history", err)
		return []Turn{}
	}
	return turns
}

// ContextForModel formats history for the text-generation backend: role
// "user" maps to "user", everything else to "assistant".
func (s *Store) ContextForModel(sessionID string, contextLimit int) []ContextMessage {
	turns := s.History(sessionID, contextLimit, false)

	messages := make([]ContextMessage, 0, len(turns))
	for _, turn := range turns {
		role := "assistant"
		if turn.Role == RoleUser {
			role = "user"
		}
		messages = append(messages, ContextMessage{Role: role, Content: turn.Message})
	}
	return messages
}

// Summary returns the session rollup, or false when none exists.
func (s *Store) Summary(sessionID string) (Rollup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT session_id, summary, total_messages, total_tokens, first_message_at, last_message_at
		 FROM session_summaries WHERE session_id = ?`,
		sessionID,
	)

	var r Rollup
	var first, last sql.NullString
	err := row.Scan(&r.SessionID, &r.Summary, &r.TotalMessages, &r.TotalTokens, &first, &last)
	if err == sql.ErrNoRows {
		return Rollup{}, false
	}
	if err != nil {
		s.fail(sessionID, "summary", err)
		return Rollup{}, false
	}

	if first.Valid {
		r.FirstMessageAt, _ = time.Parse(timestampLayout, first.String)
	}
	if last.Valid {
		r.LastMessageAt, _ = time.Parse(timestampLayout, last.String)
	}
	return r, true
}

// SetSummary replaces the free-text summary on the session rollup.
func (s *Store) SetSummary(sessionID, summary string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`UPDATE session_summaries
		 SET summary = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE session_id = ?`,
		summary, sessionID,
	)
	if err != nil {
		s.fail(sessionID, "set_summary", err)
		return false
	}
	return true
}

// ClearHistory deletes all turns and the rollup for the session. Irreversible.
func (s *Store) ClearHistory(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		s.fail(sessionID, "clear_history", err)
		return false
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM conversations WHERE session_id = ?`, sessionID); err != nil {
		s.fail(sessionID, "clear_history", err)
		return false
	}
	if _, err := tx.Exec(`DELETE FROM session_summaries WHERE session_id = ?`, sessionID); err != nil {
		s.fail(sessionID, "clear_history", err)
		return false
	}
	if err := tx.Commit(); err != nil {
		s.fail(sessionID, "clear_history", err)
		return false
	}

	_ = s.logger.Append(log.Event{Event: log.EventHistoryCleared, SessionID: sessionID})
	return true
}

// ActiveSessions returns the ids of sessions with turns more recent than
// now minus daysBack days.
func (s *Store) ActiveSessions(daysBack int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -daysBack).Format(timestampLayout)

	rows, err := s.db.Query(
		`SELECT DISTINCT session_id
		 FROM conversations
		 WHERE timestamp > ?
		 ORDER BY timestamp DESC`,
		cutoff,
	)
	if err != nil {
		s.fail("", "active_sessions", err)
		return []string{}
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.fail("", "active_sessions", err)
			return []string{}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		s.fail("", "active_sessions", err)
		return []string{}
	}
	return ids
}

// GetStats returns store-wide aggregates across all sessions.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{MessagesByRole: map[string]int{}, DatabasePath: s.path}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&stats.TotalMessages); err != nil {
		s.fail("", "stats", err)
		return Stats{MessagesByRole: map[string]int{}, DatabasePath: s.path}
	}
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT session_id) FROM conversations`).Scan(&stats.TotalSessions); err != nil {
		s.fail("", "stats", err)
		return Stats{MessagesByRole: map[string]int{}, DatabasePath: s.path}
	}

	var tokens sql.NullInt64
	if err := s.db.QueryRow(`SELECT SUM(tokens_used) FROM conversations`).Scan(&tokens); err != nil {
		s.fail("", "stats", err)
		return Stats{MessagesByRole: map[string]int{}, DatabasePath: s.path}
	}
	if tokens.Valid {
		stats.TotalTokens = int(tokens.Int64)
	}

	rows, err := s.db.Query(`SELECT role, COUNT(*) FROM conversations GROUP BY role`)
	if err != nil {
		s.fail("", "stats", err)
		return stats
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			s.fail("", "stats", err)
			return stats
		}
		stats.MessagesByRole[role] = count
	}
	if err := rows.Err(); err != nil {
		s.fail("", "stats", err)
	}

	return stats
}

// scanTurns reads turn rows in the column order used by History and
// RecentHistory.
func scanTurns(rows *sql.Rows, includeMetadata bool) ([]Turn, error) {
	turns := []Turn{}
	for rows.Next() {
		var turn Turn
		var ts string
		var toolCalls, metadata sql.NullString

		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role, &turn.Message, &ts,
			&turn.TokensUsed, &turn.ModelUsed, &toolCalls, &metadata); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}

		turn.Timestamp, _ = time.Parse(timestampLayout, ts)

		if toolCalls.Valid && toolCalls.String != "" {
			// Malformed payloads degrade to an empty list rather than
			// failing the whole read.
			if err := json.Unmarshal([]byte(toolCalls.String), &turn.ToolCalls); err != nil {
				turn.ToolCalls = []ToolCall{}
			}
		}
		if includeMetadata && metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &turn.Metadata); err != nil {
				turn.Metadata = map[string]interface{}{}
			}
		}

		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return turns, nil
}

func (s *Store) fail(sessionID, operation string, err error) {
	_ = s.logger.Append(log.Event{
		Event:     log.EventOperationFailed,
		SessionID: sessionID,
		Operation: operation,
		Error:     err.Error(),
	})
}
