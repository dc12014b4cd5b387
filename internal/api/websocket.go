package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub      *ws.Hub
	sessions *db.SessionRepository
	users    *db.UserRepository
	habits   *db.HabitRepository
	stats    *db.StatsRepository
}

func NewWebSocketHandler(hub *ws.Hub, sessions *db.SessionRepository, users *db.UserRepository, habits *db.HabitRepository, stats *db.StatsRepository) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
		users:    users,
		habits:   habits,
		stats:    stats,
	}
}

// GET /ws. Session id comes from the cookie, a sessionId or token query
// parameter, or a bearer header, in that order. Browsers cannot set
// headers on WebSocket upgrades, hence the query fallback.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		sessionID = r.URL.Query().Get("sessionId")
	}
	if sessionID == "" {
		sessionID = r.URL.Query().Get("token")
	}
	if sessionID == "" {
		unauthorized(w, "Authentication required")
		return
	}

	session, err := h.sessions.Get(sessionID)
	if err != nil {
		unauthorized(w, "Invalid or expired session")
		return
	}

	user, err := h.users.FindByID(session.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			unauthorized(w, "Invalid or expired session")
			return
		}
		slog.Error("error loading user for websocket", "error", err)
		internalError(w)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)

	client.Send(ws.NewMessage(ws.EventConnected, h.connectedPayload(user.ID)))

	go client.WritePump()
	go client.ReadPump()
}

// connectedPayload snapshots the user's state for the opening frame.
// Pieces that fail to load are omitted rather than failing the socket.
func (h *WebSocketHandler) connectedPayload(userID string) map[string]any {
	payload := map[string]any{}

	if user, err := h.users.FindByID(userID); err == nil {
		payload["user"] = user
	}
	if stats, err := h.stats.Get(userID); err == nil {
		payload["stats"] = stats
	}
	if habits, err := h.habits.FindAllActive(userID); err == nil {
		payload["activeHabits"] = len(habits)
	}

	return payload
}
