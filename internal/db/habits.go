package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type HabitRepository struct {
	db *DB
}

func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

type HabitParams struct {
	Name        string
	Description *string
	Category    string
	TargetDays  int
	Color       string
}

func (r *HabitRepository) Create(userID string, p HabitParams) (*models.Habit, error) {
	id, err := GenerateID("hab")
	if err != nil {
		return nil, fmt.Errorf("generating habit ID: %w", err)
	}
	now := time.Now().UTC()
	if p.TargetDays == 0 {
		p.TargetDays = 30
	}
	if p.Color == "" {
		p.Color = "#10b981"
	}

	_, err = r.db.Exec(
		`INSERT INTO habits (id, user_id, name, description, category, target_days, color, is_active, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, userID, p.Name, p.Description, p.Category, p.TargetDays, p.Color, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating habit: %w", err)
	}

	return &models.Habit{
		ID:          id,
		UserID:      userID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		TargetDays:  p.TargetDays,
		Color:       p.Color,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Find is scoped by owner; a habit belonging to another user reads as absent.
func (r *HabitRepository) Find(id, userID string) (*models.Habit, error) {
	return r.findOne(
		`SELECT id, user_id, name, description, category, target_days, color, is_active, created_at, updated_at
           FROM habits WHERE id = ? AND user_id = ?`,
		id, userID,
	)
}

// FindAllActive lists the user's active habits, newest first.
func (r *HabitRepository) FindAllActive(userID string) ([]*models.Habit, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, name, description, category, target_days, color, is_active, created_at, updated_at
           FROM habits WHERE user_id = ? AND is_active = 1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

type HabitUpdate struct {
	Name        *string
	Description *string
	Category    *string
	TargetDays  *int
	Color       *string
}

func (r *HabitRepository) Update(id, userID string, u HabitUpdate) (*models.Habit, error) {
	set := ""
	var args []any
	appendSet := func(col string, v any) {
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, v)
	}

	if u.Name != nil {
		appendSet("name", *u.Name)
	}
	if u.Description != nil {
		appendSet("description", *u.Description)
	}
	if u.Category != nil {
		appendSet("category", *u.Category)
	}
	if u.TargetDays != nil {
		appendSet("target_days", *u.TargetDays)
	}
	if u.Color != nil {
		appendSet("color", *u.Color)
	}
	appendSet("updated_at", time.Now().UTC())

	args = append(args, id, userID)
	result, err := r.db.Exec(`UPDATE habits SET `+set+` WHERE id = ? AND user_id = ? AND is_active = 1`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating habit: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	return r.Find(id, userID)
}

// SoftDelete flags the habit inactive. Rows are never physically removed
// so historical ledger entries stay valid.
func (r *HabitRepository) SoftDelete(id, userID string) error {
	result, err := r.db.Exec(
		`UPDATE habits SET is_active = 0, updated_at = ? WHERE id = ? AND user_id = ? AND is_active = 1`,
		time.Now().UTC(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting habit: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *HabitRepository) findOne(query string, args ...any) (*models.Habit, error) {
	row := r.db.QueryRow(query, args...)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*models.Habit, error) {
	var h models.Habit
	var description sql.NullString

	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&description,
		&h.Category,
		&h.TargetDays,
		&h.Color,
		&h.IsActive,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning habit: %w", err)
	}

	h.Description = nullStringToPtr(description)
	return &h, nil
}
