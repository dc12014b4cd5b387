package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
)

type NudgeHandler struct {
	nudges *db.NudgeRepository
}

func NewNudgeHandler(nudges *db.NudgeRepository) *NudgeHandler {
	return &NudgeHandler{nudges: nudges}
}

// GET /api/nudges?limit=N lists undismissed nudges, newest first.
func (h *NudgeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := constants.NudgeListDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > constants.NudgeListMaxLimit {
			limit = constants.NudgeListMaxLimit
		}
	}

	nudges, err := h.nudges.ListUndismissed(GetUserID(r), limit)
	if err != nil {
		slog.Error("error listing nudges", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, nudges)
}

// POST /api/nudges/{nudgeID}/read
func (h *NudgeHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.nudges.MarkRead(chi.URLParam(r, "nudgeID"), GetUserID(r))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Nudge not found")
			return
		}
		slog.Error("error marking nudge read", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Nudge marked as read"})
}

// POST /api/nudges/{nudgeID}/dismiss
func (h *NudgeHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	err := h.nudges.Dismiss(chi.URLParam(r, "nudgeID"), GetUserID(r))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Nudge not found")
			return
		}
		slog.Error("error dismissing nudge", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Nudge dismissed"})
}
