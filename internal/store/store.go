// Package store provides SQLite-backed persistence for conversations,
// messages, durable user memory, and catch records.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed persistence layer. All mutation is whole-record
// replace (conversations, user memory) or append-only insert (messages), so
// last-writer-wins per record is the only locking discipline required.
type Store struct {
	db *sql.DB
}

// Open creates a store using the given database path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenDB creates a store using an existing database connection. Used by
// tests that supply an in-memory database.
func OpenDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		language TEXT NOT NULL,
		summary TEXT,
		message_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, updated_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		conversation_id TEXT NOT NULL,
		ordering_key TEXT NOT NULL,
		id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_calls TEXT,
		metadata TEXT,
		PRIMARY KEY (conversation_id, ordering_key),
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS user_memory (
		user_id TEXT PRIMARY KEY,
		facts TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS catches (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		species TEXT NOT NULL,
		location TEXT,
		confidence REAL DEFAULT 0,
		weight_kg REAL DEFAULT 0,
		price_per_kg INTEGER DEFAULT 0,
		quality_grade TEXT,
		sustainable BOOLEAN DEFAULT FALSE,
		analysis_status TEXT NOT NULL DEFAULT 'completed',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_catches_user ON catches(user_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conversation is a chat thread owned by one user.
type Conversation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Language     string    `json:"language"`
	Summary      string    `json:"summary,omitempty"` // rolling summary of older messages
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationUpdate carries the mutable conversation fields. Nil fields
// are left unchanged; updated_at is always refreshed.
type ConversationUpdate struct {
	Title        *string
	Language     *string
	Summary      *string
	MessageCount *int
}

// CreateConversation creates a new conversation for a user.
func (s *Store) CreateConversation(userID, title, lang string) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        "conv_" + uuid.NewString()[:12],
		UserID:    userID,
		Title:     title,
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO conversations (id, user_id, title, language, summary, message_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, 0, ?, ?)
	`, conv.ID, conv.UserID, conv.Title, conv.Language,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

// GetConversation retrieves a conversation by id.
func (s *Store) GetConversation(id string) (*Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, language, summary, message_count, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id)
	return scanConversation(row)
}

// ListConversations returns a user's conversations, most recently updated
// first.
func (s *Store) ListConversations(userID string, limit int) ([]*Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, user_id, title, language, summary, message_count, created_at, updated_at
		FROM conversations WHERE user_id = ?
		ORDER BY updated_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var convs []*Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// UpdateConversation applies the non-nil fields of upd and refreshes
// updated_at.
func (s *Store) UpdateConversation(id string, upd ConversationUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339Nano)}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Language != nil {
		sets = append(sets, "language = ?")
		args = append(args, *upd.Language)
	}
	if upd.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *upd.Summary)
	}
	if upd.MessageCount != nil {
		sets = append(sets, "message_count = ?")
		args = append(args, *upd.MessageCount)
	}
	args = append(args, id)

	res, err := s.db.Exec("UPDATE conversations SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConversation removes a conversation and, via the foreign key
// cascade, all of its messages.
func (s *Store) DeleteConversation(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	// Belt and braces for connections opened without foreign_keys=on.
	_, _ = s.db.Exec(`DELETE FROM messages WHERE conversation_id = ?`, id)
	return nil
}

// GetUserFacts returns the durable fact blob for a user, or "" when no
// record exists.
func (s *Store) GetUserFacts(userID string) (string, error) {
	var facts string
	err := s.db.QueryRow(`SELECT facts FROM user_memory WHERE user_id = ?`, userID).Scan(&facts)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query user memory: %w", err)
	}
	return facts, nil
}

// PutUserFacts replaces the durable fact blob for a user. At most one
// record exists per user; updates are full replacement.
func (s *Store) PutUserFacts(userID, facts string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(`
		INSERT INTO user_memory (user_id, facts, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET facts = excluded.facts, updated_at = excluded.updated_at
	`, userID, facts, now)
	if err != nil {
		return fmt.Errorf("put user memory: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var c Conversation
	var summary sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Language, &summary,
		&c.MessageCount, &createdStr, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}

	if summary.Valid {
		c.Summary = summary.String
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &c, nil
}
