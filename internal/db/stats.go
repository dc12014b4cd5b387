package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

// StatsRepository maintains the user_stats cache. The cache is best
// effort only: per-habit streaks and completion rates served to clients
// are always recomputed from the ledger, never read from here.
type StatsRepository struct {
	db *DB
}

func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Get(userID string) (*models.UserStats, error) {
	var s models.UserStats
	err := r.db.QueryRow(
		`SELECT user_id, total_habits, active_habits, longest_streak, current_streak, total_completions, updated_at
           FROM user_stats WHERE user_id = ?`,
		userID,
	).Scan(&s.UserID, &s.TotalHabits, &s.ActiveHabits, &s.LongestStreak, &s.CurrentStreak, &s.TotalCompletions, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user stats: %w", err)
	}
	return &s, nil
}

// Recompute rebuilds the cached row from habit and ledger counts. It is
// full recomputation, not incremental maintenance.
func (r *StatsRepository) Recompute(userID string, habits *HabitRepository, entries *EntryRepository) (*models.UserStats, error) {
	active, err := habits.FindAllActive(userID)
	if err != nil {
		return nil, err
	}

	var totalCompletions int
	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM habit_entries WHERE user_id = ? AND completed = 1`,
		userID,
	).Scan(&totalCompletions)
	if err != nil {
		return nil, fmt.Errorf("counting completions: %w", err)
	}

	longest, current := 0, 0
	for _, h := range active {
		streak, err := entries.CurrentStreak(h.ID, userID)
		if err != nil {
			return nil, err
		}
		if streak > current {
			current = streak
		}
		if streak > longest {
			longest = streak
		}
	}

	s := &models.UserStats{
		UserID:           userID,
		TotalHabits:      len(active),
		ActiveHabits:     len(active),
		LongestStreak:    longest,
		CurrentStreak:    current,
		TotalCompletions: totalCompletions,
		UpdatedAt:        time.Now().UTC(),
	}

	_, err = r.db.Exec(
		`INSERT INTO user_stats (user_id, total_habits, active_habits, longest_streak, current_streak, total_completions, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET
             total_habits      = excluded.total_habits,
             active_habits     = excluded.active_habits,
             longest_streak    = MAX(user_stats.longest_streak, excluded.longest_streak),
             current_streak    = excluded.current_streak,
             total_completions = excluded.total_completions,
             updated_at        = excluded.updated_at`,
		s.UserID, s.TotalHabits, s.ActiveHabits, s.LongestStreak, s.CurrentStreak, s.TotalCompletions, s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting user stats: %w", err)
	}

	// The upsert keeps the historical longest_streak when it beats the
	// recomputed one, so serve the stored row rather than s.
	return r.Get(userID)
}
