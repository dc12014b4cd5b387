package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/auth"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session with a fixed lifetime. There is no
// sliding expiry; the token dies ttl after creation.
func (r *SessionRepository) Create(userID string, ttl time.Duration) (*models.Session, error) {
	id := auth.NewSessionID()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, expiresAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// Get returns the session iff it has not expired. The expiry filter lives
// in the query so an expired-but-unswept row is indistinguishable from an
// absent one.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ? AND expires_at > ?`,
		id, time.Now().UTC(),
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected()
}
