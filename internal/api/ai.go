package api

import (
	"log/slog"
	"net/http"

	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
	"github.com/Mohomed-Zaid/HabitFlow/internal/notify"
	"github.com/Mohomed-Zaid/HabitFlow/internal/nudge"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

type AiHandler struct {
	service *nudge.Service
	center  *notify.Center
	hub     *ws.Hub
}

func NewAiHandler(service *nudge.Service, center *notify.Center, hub *ws.Hub) *AiHandler {
	return &AiHandler{
		service: service,
		center:  center,
		hub:     hub,
	}
}

// POST /api/ai/generate-nudge
func (h *AiHandler) GenerateNudge(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.GeneratePersonalizedNudge(r.Context(), GetUserID(r))
	if err != nil {
		slog.Error("error generating nudge", "error", err)
		internalError(w)
		return
	}
	if n == nil {
		badRequest(w, "Add a habit first to receive nudges")
		return
	}

	writeJSON(w, http.StatusOK, n)
}

// POST /api/ai/generate-challenge
func (h *AiHandler) GenerateChallenge(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.GenerateMicroChallenge(r.Context(), GetUserID(r))
	if err != nil {
		slog.Error("error generating challenge", "error", err)
		internalError(w)
		return
	}
	if n == nil {
		badRequest(w, "Add a habit first to receive challenges")
		return
	}

	writeJSON(w, http.StatusOK, n)
}

type MotivateRequest struct {
	HabitID *string `json:"habitId" validate:"omitempty,max=64"`
}

// POST /api/ai/motivate
func (h *AiHandler) Motivate(w http.ResponseWriter, r *http.Request) {
	req := MotivateRequest{}
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r.Body, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	n, err := h.service.GenerateMotivation(r.Context(), GetUserID(r), req.HabitID)
	if err != nil {
		slog.Error("error generating motivation", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, n)
}

// GET /api/ai/habit-suggestions?category=fitness
func (h *AiHandler) HabitSuggestions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "general"
	}

	suggestions, err := h.service.SuggestHabits(r.Context(), GetUserID(r), category)
	if err != nil {
		slog.Error("error generating suggestions", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category":    category,
		"suggestions": suggestions,
	})
}

// POST /api/ai/request-nudge generates a nudge and delivers it over the
// user's open sockets and notification feed as well as in the response.
func (h *AiHandler) RequestNudge(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	n, err := h.service.GeneratePersonalizedNudge(r.Context(), userID)
	if err != nil {
		slog.Error("error generating nudge", "error", err)
		internalError(w)
		return
	}
	if n == nil {
		badRequest(w, "Add a habit first to receive nudges")
		return
	}

	h.deliver(userID, n)
	writeJSON(w, http.StatusOK, n)
}

// POST /api/ai/auto-generate-nudges runs one scheduler pass on demand.
func (h *AiHandler) AutoGenerateNudges(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	n, err := h.service.GeneratePersonalizedNudge(r.Context(), userID)
	if err != nil {
		slog.Error("error generating nudge", "error", err)
		internalError(w)
		return
	}

	generated := 0
	if n != nil {
		generated = 1
		h.deliver(userID, n)
	}

	writeJSON(w, http.StatusOK, map[string]any{"generated": generated})
}

func (h *AiHandler) deliver(userID string, n *models.AiNudge) {
	habitID := ""
	if n.HabitID != nil {
		habitID = *n.HabitID
	}
	h.center.Append(userID, notify.AppendParams{
		Type:    notify.TypeNudge,
		Title:   n.Title,
		Message: n.Message,
		HabitID: habitID,
	})
	h.hub.BroadcastToUser(userID, ws.NewMessage(ws.EventAiNudge, n))
}
