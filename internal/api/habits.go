package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

// textPolicy strips all markup from user-supplied free text before it is
// stored or echoed back.
var textPolicy = bluemonday.StrictPolicy()

type HabitHandler struct {
	habits  *db.HabitRepository
	entries *db.EntryRepository
	stats   *db.StatsRepository
	hub     *ws.Hub
}

func NewHabitHandler(habits *db.HabitRepository, entries *db.EntryRepository, stats *db.StatsRepository, hub *ws.Hub) *HabitHandler {
	return &HabitHandler{
		habits:  habits,
		entries: entries,
		stats:   stats,
		hub:     hub,
	}
}

// HabitView is a habit enriched with today's completion and the live
// streak and rate derived from the ledger.
type HabitView struct {
	*models.Habit
	CompletedToday bool `json:"completedToday"`
	CurrentStreak  int  `json:"currentStreak"`
	CompletionRate int  `json:"completionRate"`
}

func (h *HabitHandler) enrich(habit *models.Habit, userID string) (*HabitView, error) {
	streak, err := h.entries.CurrentStreak(habit.ID, userID)
	if err != nil {
		return nil, err
	}
	rate, err := h.entries.CompletionRate(habit.ID, userID, constants.CompletionRateWindowDays)
	if err != nil {
		return nil, err
	}

	completedToday := false
	entry, err := h.entries.Find(habit.ID, userID, db.Today())
	if err == nil {
		completedToday = entry.Completed
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	return &HabitView{
		Habit:          habit,
		CompletedToday: completedToday,
		CurrentStreak:  streak,
		CompletionRate: rate,
	}, nil
}

// GET /api/habits
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	habits, err := h.habits.FindAllActive(userID)
	if err != nil {
		slog.Error("error listing habits", "error", err)
		internalError(w)
		return
	}

	views := make([]*HabitView, 0, len(habits))
	for _, habit := range habits {
		view, err := h.enrich(habit, userID)
		if err != nil {
			slog.Error("error enriching habit", "habit_id", habit.ID, "error", err)
			internalError(w)
			return
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, views)
}

type CreateHabitRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    string  `json:"category" validate:"required,max=50"`
	TargetDays  int     `json:"targetDays" validate:"omitempty,min=1,max=365"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

// POST /api/habits
func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	params := db.HabitParams{
		Name:        sanitizeText(req.Name),
		Description: sanitizeTextPtr(req.Description),
		Category:    sanitizeText(req.Category),
		TargetDays:  req.TargetDays,
		Color:       req.Color,
	}
	if params.Name == "" {
		badRequest(w, "name is required")
		return
	}

	habit, err := h.habits.Create(GetUserID(r), params)
	if err != nil {
		slog.Error("error creating habit", "error", err)
		internalError(w)
		return
	}

	h.recomputeStats(GetUserID(r))
	writeJSON(w, http.StatusCreated, habit)
}

// GET /api/habits/{habitID}
func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	habit, err := h.habits.Find(chi.URLParam(r, "habitID"), userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Habit not found")
			return
		}
		slog.Error("error loading habit", "error", err)
		internalError(w)
		return
	}
	if !habit.IsActive {
		notFound(w, "Habit not found")
		return
	}

	view, err := h.enrich(habit, userID)
	if err != nil {
		slog.Error("error enriching habit", "habit_id", habit.ID, "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type UpdateHabitRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	TargetDays  *int    `json:"targetDays" validate:"omitempty,min=1,max=365"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// PATCH /api/habits/{habitID}
func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateHabitRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	update := db.HabitUpdate{
		Name:        sanitizeTextPtr(req.Name),
		Description: sanitizeTextPtr(req.Description),
		Category:    sanitizeTextPtr(req.Category),
		TargetDays:  req.TargetDays,
		Color:       req.Color,
	}

	habit, err := h.habits.Update(chi.URLParam(r, "habitID"), GetUserID(r), update)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Habit not found")
			return
		}
		slog.Error("error updating habit", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, habit)
}

// DELETE /api/habits/{habitID}. Deactivates rather than deletes: the
// ledger under the habit is kept.
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	if err := h.habits.SoftDelete(chi.URLParam(r, "habitID"), userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Habit not found")
			return
		}
		slog.Error("error deleting habit", "error", err)
		internalError(w)
		return
	}

	h.recomputeStats(userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted"})
}

type ToggleRequest struct {
	Date      *string `json:"date" validate:"omitempty,len=10"`
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// POST /api/habits/{habitID}/toggle writes the day's completion record.
// Omitted fields default to marking today complete. The write is a
// single upsert, so hammering the button settles on the last value
// instead of stacking duplicate rows.
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)
	habitID := chi.URLParam(r, "habitID")

	req := ToggleRequest{}
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r.Body, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	params := db.EntryParams{
		HabitID:   habitID,
		UserID:    userID,
		Date:      db.Today(),
		Completed: true,
		Notes:     sanitizeTextPtr(req.Notes),
	}
	if req.Date != nil {
		params.Date = *req.Date
	}
	if req.Completed != nil {
		params.Completed = *req.Completed
	}

	entry, err := h.entries.Upsert(params)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			notFound(w, "Habit not found")
		case errors.Is(err, db.ErrInvalidDate):
			badRequest(w, "date must be YYYY-MM-DD")
		default:
			slog.Error("error writing entry", "error", err)
			internalError(w)
		}
		return
	}

	h.recomputeStats(userID)

	if entry.Completed {
		h.hub.BroadcastToUser(userID, ws.NewMessage(ws.EventHabitCompleted, map[string]any{
			"habitId": habitID,
			"date":    entry.Date,
		}))
	}
	h.pushStats(userID)
	h.pushProgress(userID)

	writeJSON(w, http.StatusOK, entry)
}

// GET /api/habits/{habitID}/entries?limit=N
func (h *HabitHandler) Entries(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)
	habitID := chi.URLParam(r, "habitID")

	// Ownership check up front so a foreign habit reads as missing, not
	// as an empty ledger.
	if _, err := h.habits.Find(habitID, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Habit not found")
			return
		}
		slog.Error("error loading habit", "error", err)
		internalError(w)
		return
	}

	limit := constants.EntryHistoryDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > constants.EntryHistoryMaxLimit {
			limit = constants.EntryHistoryMaxLimit
		}
	}

	entries, err := h.entries.ListForHabit(habitID, userID, limit)
	if err != nil {
		slog.Error("error listing entries", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// recomputeStats refreshes the cached rollup. Failures are logged, never
// surfaced: the cache is advisory and live reads do not depend on it.
func (h *HabitHandler) recomputeStats(userID string) {
	if _, err := h.stats.Recompute(userID, h.habits, h.entries); err != nil {
		slog.Warn("error recomputing stats", "user_id", userID, "error", err)
	}
}

func (h *HabitHandler) pushStats(userID string) {
	if h.hub.ConnectionCount(userID) == 0 {
		return
	}
	stats, err := h.stats.Get(userID)
	if err != nil {
		slog.Warn("error loading stats for push", "user_id", userID, "error", err)
		return
	}
	h.hub.BroadcastToUser(userID, ws.NewMessage(ws.EventStatsUpdate, stats))
}

// pushProgress sends the day's completion tally so progress charts can
// refresh without a poll.
func (h *HabitHandler) pushProgress(userID string) {
	if h.hub.ConnectionCount(userID) == 0 {
		return
	}

	habits, err := h.habits.FindAllActive(userID)
	if err != nil {
		slog.Warn("error loading habits for push", "user_id", userID, "error", err)
		return
	}
	todays, err := h.entries.ListForUserOnDate(userID, db.Today())
	if err != nil {
		slog.Warn("error loading entries for push", "user_id", userID, "error", err)
		return
	}

	completed := 0
	for _, e := range todays {
		if e.Completed {
			completed++
		}
	}

	h.hub.BroadcastToUser(userID, ws.NewMessage(ws.EventProgressUpdate, map[string]any{
		"date":      db.Today(),
		"completed": completed,
		"total":     len(habits),
	}))
}

func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

func sanitizeTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	return &clean
}
