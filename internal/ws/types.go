package ws

import "time"

// Event types pushed to clients.
const (
	EventConnected      = "connected"
	EventHabitCompleted = "habit_completed"
	EventStatsUpdate    = "stats_update"
	EventProgressUpdate = "progress_update"
	EventAiNudge        = "ai_nudge"
	EventNotification   = "notification"
	EventPong           = "pong"
)

// Message types accepted from clients.
const (
	CmdPing      = "ping"
	CmdSubscribe = "subscribe"
)

// WSMessage is the envelope for everything crossing the socket.
type WSMessage struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(eventType string, data any) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
