package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/auth"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type ResetTokenRepository struct {
	db *DB
}

func NewResetTokenRepository(db *DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(userID string, ttl time.Duration) (*models.PasswordResetToken, error) {
	id, err := GenerateID("prt")
	if err != nil {
		return nil, fmt.Errorf("generating reset token ID: %w", err)
	}
	token, err := auth.NewResetToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err = r.db.Exec(
		`INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at) VALUES (?, ?, ?, ?, 0, ?)`,
		id, userID, token, expiresAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating reset token: %w", err)
	}

	return &models.PasswordResetToken{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// FindValid returns the token only if it is unused and unexpired.
func (r *ResetTokenRepository) FindValid(token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.QueryRow(
		`SELECT id, user_id, token, expires_at, used, created_at
           FROM password_reset_tokens
          WHERE token = ? AND used = 0 AND expires_at > ?`,
		token, time.Now().UTC(),
	).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying reset token: %w", err)
	}
	return &t, nil
}

// Consume marks the token used. The used = 0 guard makes consumption
// atomic: two concurrent resets cannot both succeed.
func (r *ResetTokenRepository) Consume(id string) error {
	result, err := r.db.Exec(
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ? AND used = 0 AND expires_at > ?`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("consuming reset token: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *ResetTokenRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM password_reset_tokens WHERE expires_at <= ? OR used = 1`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired reset tokens: %w", err)
	}
	return result.RowsAffected()
}
