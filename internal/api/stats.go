package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type StatsHandler struct {
	habits  *db.HabitRepository
	entries *db.EntryRepository
	stats   *db.StatsRepository
}

func NewStatsHandler(habits *db.HabitRepository, entries *db.EntryRepository, stats *db.StatsRepository) *StatsHandler {
	return &StatsHandler{
		habits:  habits,
		entries: entries,
		stats:   stats,
	}
}

// StatsView couples the cached rollup with live today-derived numbers.
type StatsView struct {
	*models.UserStats
	CompletedToday      int `json:"completedToday"`
	TodayCompletionRate int `json:"todayCompletionRate"`
}

// GET /api/stats. The cached rollup is refreshed when missing; the
// today figures are always computed against the ledger directly.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	stats, err := h.stats.Get(userID)
	if errors.Is(err, db.ErrNotFound) {
		stats, err = h.stats.Recompute(userID, h.habits, h.entries)
	}
	if err != nil {
		slog.Error("error loading stats", "error", err)
		internalError(w)
		return
	}

	habits, err := h.habits.FindAllActive(userID)
	if err != nil {
		slog.Error("error listing habits", "error", err)
		internalError(w)
		return
	}

	todays, err := h.entries.ListForUserOnDate(userID, db.Today())
	if err != nil {
		slog.Error("error listing today's entries", "error", err)
		internalError(w)
		return
	}

	completedToday := 0
	for _, e := range todays {
		if e.Completed {
			completedToday++
		}
	}

	rate := 0
	if len(habits) > 0 {
		rate = completedToday * 100 / len(habits)
	}

	writeJSON(w, http.StatusOK, StatsView{
		UserStats:           stats,
		CompletedToday:      completedToday,
		TodayCompletionRate: rate,
	})
}
