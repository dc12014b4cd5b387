package models

import "time"

type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	TargetDays  int       `json:"targetDays"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HabitEntry is one calendar day's completion record. Date is a plain
// YYYY-MM-DD string; at most one row exists per (habitId, date).
type HabitEntry struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habitId"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserStats is a best-effort cache recomputed on habit changes. Live
// streak and completion-rate values are always derived from the ledger
// at read time, never read back from here.
type UserStats struct {
	UserID           string    `json:"userId"`
	TotalHabits      int       `json:"totalHabits"`
	ActiveHabits     int       `json:"activeHabits"`
	LongestStreak    int       `json:"longestStreak"`
	CurrentStreak    int       `json:"currentStreak"`
	TotalCompletions int       `json:"totalCompletions"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
