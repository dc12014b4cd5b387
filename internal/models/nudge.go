package models

import "time"

// Nudge types
const (
	NudgeTypeMotivation = "motivation"
	NudgeTypeReminder   = "reminder"
	NudgeTypeTip        = "tip"
	NudgeTypeChallenge  = "challenge"
)

type AiNudge struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	HabitID     *string   `json:"habitId,omitempty"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ActionLabel *string   `json:"actionLabel,omitempty"`
	IsRead      bool      `json:"isRead"`
	IsDismissed bool      `json:"isDismissed"`
	CreatedAt   time.Time `json:"createdAt"`
}
