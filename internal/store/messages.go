package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a conversation's append-only log. Messages are
// immutable once written and are read back in ordering-key order.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           string         `json:"role"` // user, assistant, system
	Content        string         `json:"content"`
	ToolCalls      []ToolCallMeta `json:"tool_calls,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	OrderingKey    string         `json:"ordering_key"`
}

// ToolCallMeta records one tool invocation made while producing an
// assistant message.
type ToolCallMeta struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// orderingKey builds the message sort key: an ISO-8601 millisecond
// timestamp with a random suffix, so appends within the same clock tick
// still have a total order.
func orderingKey(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05.000") + uuid.NewString()[:4] + "Z"
}

// AppendMessage appends a message to a conversation's log and returns the
// stored record with its server-assigned ordering key.
func (s *Store) AppendMessage(convID, role, content string, toolCalls []ToolCallMeta, metadata map[string]any) (*Message, error) {
	msg := &Message{
		ID:             "msg_" + uuid.NewString()[:12],
		ConversationID: convID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
		Metadata:       metadata,
		OrderingKey:    orderingKey(time.Now()),
	}

	var toolCallsJSON, metadataJSON sql.NullString
	if len(toolCalls) > 0 {
		b, err := json.Marshal(toolCalls)
		if err != nil {
			return nil, fmt.Errorf("marshal tool calls: %w", err)
		}
		toolCallsJSON = sql.NullString{String: string(b), Valid: true}
	}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		metadataJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO messages (conversation_id, ordering_key, id, role, content, tool_calls, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ConversationID, msg.OrderingKey, msg.ID, msg.Role, msg.Content, toolCallsJSON, metadataJSON)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListMessages returns up to limit messages for a conversation in
// ordering-key order (ascending or descending).
func (s *Store) ListMessages(convID string, limit int, ascending bool) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	rows, err := s.db.Query(`
		SELECT conversation_id, ordering_key, id, role, content, tool_calls, metadata
		FROM messages WHERE conversation_id = ?
		ORDER BY ordering_key `+order+` LIMIT ?
	`, convID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		var toolCallsJSON, metadataJSON sql.NullString
		if err := rows.Scan(&m.ConversationID, &m.OrderingKey, &m.ID, &m.Role,
			&m.Content, &toolCallsJSON, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if toolCallsJSON.Valid {
			if err := json.Unmarshal([]byte(toolCallsJSON.String), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("unmarshal tool calls: %w", err)
			}
		}
		if metadataJSON.Valid {
			if err := json.Unmarshal([]byte(metadataJSON.String), &m.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// CountMessages returns the number of messages in a conversation.
func (s *Store) CountMessages(convID string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, convID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
