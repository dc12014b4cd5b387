package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(username, email, passwordHash string) (*models.User, error) {
	id, err := GenerateID("usr")
	if err != nil {
		return nil, fmt.Errorf("generating user ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, username, email, passwordHash, now,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, last_login_at, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, last_login_at, created_at FROM users WHERE username = ?`, username)
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, last_login_at, created_at FROM users WHERE email = ?`, email)
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(id string, at time.Time) error {
	result, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return checkRowsAffected(result)
}

// UpdatePasswordHash replaces the stored credential digest.
func (r *UserRepository) UpdatePasswordHash(id, passwordHash string) error {
	result, err := r.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) findOne(query string, args ...any) (*models.User, error) {
	var u models.User
	var lastLoginAt sql.NullTime

	err := r.db.QueryRow(query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&lastLoginAt,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.LastLoginAt = nullTimeToPtr(lastLoginAt)

	return &u, nil
}
