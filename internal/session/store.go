package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docchat-dev/docchat/internal/db"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

// Session is a persisted conversation session.
type Session struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions and their transcripts in SQLite, so a server
// restart does not lose open conversations.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create starts a new session with a fresh id.
func (s *Store) Create(ctx context.Context, label string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, label, created_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Label, sess.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get returns the session with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess      Session
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, created_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Label, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sess, nil
}

// AppendTurn records a completed exchange at the end of the transcript.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, turn Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, seq, query, answer)
		 SELECT ?, COALESCE(MAX(seq), -1) + 1, ?, ? FROM turns WHERE session_id = ?`,
		sessionID, turn.Query, turn.Answer, sessionID)
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// History returns the full transcript of a session in original order.
func (s *Store) History(ctx context.Context, sessionID string) (History, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, answer FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var history History
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.Query, &turn.Answer); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		history = append(history, turn)
	}
	return history, rows.Err()
}

// Clear empties the transcript of a session, keeping the session itself.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
