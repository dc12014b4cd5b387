package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
)

type ProgressHandler struct {
	habits  *db.HabitRepository
	entries *db.EntryRepository
}

func NewProgressHandler(habits *db.HabitRepository, entries *db.EntryRepository) *ProgressHandler {
	return &ProgressHandler{habits: habits, entries: entries}
}

// DayProgress is one calendar day's completion count.
type DayProgress struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"`
}

// WeekProgress aggregates seven days starting at WeekStart.
type WeekProgress struct {
	WeekStart string `json:"weekStart"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"`
}

func (h *ProgressHandler) dayProgress(userID, date string, activeHabits int) (*DayProgress, error) {
	entries, err := h.entries.ListForUserOnDate(userID, date)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, e := range entries {
		if e.Completed {
			completed++
		}
	}

	rate := 0
	if activeHabits > 0 {
		rate = completed * 100 / activeHabits
	}

	return &DayProgress{
		Date:      date,
		Completed: completed,
		Total:     activeHabits,
		Rate:      rate,
	}, nil
}

// GET /api/progress/weekly returns the last seven days, oldest first.
func (h *ProgressHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	habits, err := h.habits.FindAllActive(userID)
	if err != nil {
		slog.Error("error listing habits", "error", err)
		internalError(w)
		return
	}

	now := time.Now().UTC()
	days := make([]*DayProgress, 0, 7)
	for offset := -6; offset <= 0; offset++ {
		date := now.AddDate(0, 0, offset).Format(db.DateLayout)
		day, err := h.dayProgress(userID, date, len(habits))
		if err != nil {
			slog.Error("error computing day progress", "date", date, "error", err)
			internalError(w)
			return
		}
		days = append(days, day)
	}

	writeJSON(w, http.StatusOK, days)
}

// GET /api/progress/monthly returns the last four weeks, oldest first.
func (h *ProgressHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	habits, err := h.habits.FindAllActive(userID)
	if err != nil {
		slog.Error("error listing habits", "error", err)
		internalError(w)
		return
	}

	now := time.Now().UTC()
	weeks := make([]*WeekProgress, 0, 4)
	for week := 3; week >= 0; week-- {
		start := now.AddDate(0, 0, -7*week-6)
		bucket := &WeekProgress{
			WeekStart: start.Format(db.DateLayout),
			Total:     len(habits) * 7,
		}

		for offset := 0; offset < 7; offset++ {
			date := start.AddDate(0, 0, offset).Format(db.DateLayout)
			day, err := h.dayProgress(userID, date, len(habits))
			if err != nil {
				slog.Error("error computing day progress", "date", date, "error", err)
				internalError(w)
				return
			}
			bucket.Completed += day.Completed
		}

		if bucket.Total > 0 {
			bucket.Rate = bucket.Completed * 100 / bucket.Total
		}
		weeks = append(weeks, bucket)
	}

	writeJSON(w, http.StatusOK, weeks)
}
