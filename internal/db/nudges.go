package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type NudgeRepository struct {
	db *DB
}

func NewNudgeRepository(db *DB) *NudgeRepository {
	return &NudgeRepository{db: db}
}

type NudgeParams struct {
	UserID      string
	HabitID     *string
	Type        string
	Title       string
	Message     string
	ActionLabel *string
}

func (r *NudgeRepository) Create(p NudgeParams) (*models.AiNudge, error) {
	id, err := GenerateID("ndg")
	if err != nil {
		return nil, fmt.Errorf("generating nudge ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO ai_nudges (id, user_id, habit_id, type, title, message, action_label, is_read, is_dismissed, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?)`,
		id, p.UserID, p.HabitID, p.Type, p.Title, p.Message, p.ActionLabel, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating nudge: %w", err)
	}

	return &models.AiNudge{
		ID:          id,
		UserID:      p.UserID,
		HabitID:     p.HabitID,
		Type:        p.Type,
		Title:       p.Title,
		Message:     p.Message,
		ActionLabel: p.ActionLabel,
		CreatedAt:   now,
	}, nil
}

// ListUndismissed returns the user's visible nudges, newest first.
func (r *NudgeRepository) ListUndismissed(userID string, limit int) ([]*models.AiNudge, error) {
	if limit <= 0 {
		limit = constants.NudgeListDefaultLimit
	}
	rows, err := r.db.Query(
		`SELECT id, user_id, habit_id, type, title, message, action_label, is_read, is_dismissed, created_at
           FROM ai_nudges
          WHERE user_id = ? AND is_dismissed = 0
          ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying nudges: %w", err)
	}
	defer rows.Close()

	var nudges []*models.AiNudge
	for rows.Next() {
		var n models.AiNudge
		var habitID, actionLabel sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &habitID, &n.Type, &n.Title, &n.Message, &actionLabel, &n.IsRead, &n.IsDismissed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning nudge: %w", err)
		}
		n.HabitID = nullStringToPtr(habitID)
		n.ActionLabel = nullStringToPtr(actionLabel)
		nudges = append(nudges, &n)
	}
	return nudges, rows.Err()
}

func (r *NudgeRepository) MarkRead(id, userID string) error {
	result, err := r.db.Exec(
		`UPDATE ai_nudges SET is_read = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking nudge read: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *NudgeRepository) Dismiss(id, userID string) error {
	result, err := r.db.Exec(
		`UPDATE ai_nudges SET is_dismissed = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("dismissing nudge: %w", err)
	}
	return checkRowsAffected(result)
}

// CountSince reports how many nudges were created for the user after the
// cutoff. The periodic generator uses this to avoid piling on.
func (r *NudgeRepository) CountSince(userID string, cutoff time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM ai_nudges WHERE user_id = ? AND created_at > ?`,
		userID, cutoff.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting recent nudges: %w", err)
	}
	return count, nil
}
