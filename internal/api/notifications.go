package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mohomed-Zaid/HabitFlow/internal/notify"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

type NotificationHandler struct {
	center *notify.Center
	hub    *ws.Hub
}

func NewNotificationHandler(center *notify.Center, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{center: center, hub: hub}
}

// GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, unread := h.center.List(GetUserID(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// POST /api/notifications/{notificationID}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.center.MarkRead(GetUserID(r), chi.URLParam(r, "notificationID"))
	if err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			notFound(w, "Notification not found")
			return
		}
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// POST /api/notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.center.MarkAllRead(GetUserID(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

type SendNotificationRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=100"`
	Message string `json:"message" validate:"required,min=1,max=500"`
	HabitID string `json:"habitId" validate:"omitempty,max=64"`
}

// POST /api/notifications/send delivers an immediate notification to
// the caller's own feed and open sockets.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendNotificationRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	userID := GetUserID(r)
	notification := h.center.Append(userID, notify.AppendParams{
		Type:    notify.TypeNotification,
		Title:   sanitizeText(req.Title),
		Message: sanitizeText(req.Message),
		HabitID: req.HabitID,
	})
	h.hub.BroadcastToUser(userID, ws.NewMessage(ws.EventNotification, notification))

	writeJSON(w, http.StatusOK, notification)
}

type ScheduleReminderRequest struct {
	HabitID      string `json:"habitId" validate:"required,max=64"`
	Title        string `json:"title" validate:"required,min=1,max=100"`
	Message      string `json:"message" validate:"required,min=1,max=500"`
	DelayMinutes int    `json:"delayMinutes" validate:"required,min=1,max=1440"`
}

// POST /api/reminders/schedule queues a reminder that fires after the
// requested delay. Reminders live only in process memory; a restart
// drops pending ones, matching the notification feed itself.
func (h *NotificationHandler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var req ScheduleReminderRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	userID := GetUserID(r)
	title := sanitizeText(req.Title)
	message := sanitizeText(req.Message)
	habitID := req.HabitID

	time.AfterFunc(time.Duration(req.DelayMinutes)*time.Minute, func() {
		notification := h.center.Append(userID, notify.AppendParams{
			Type:    notify.TypeReminder,
			Title:   title,
			Message: message,
			HabitID: habitID,
		})
		h.hub.BroadcastToUser(userID, ws.NewMessage(ws.EventNotification, notification))
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Reminder scheduled",
		"delayMinutes": req.DelayMinutes,
	})
}
