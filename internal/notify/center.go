// Package notify holds the in-memory notification feed. Durable nudges
// live in the ai_nudges table; this is the transient banner list the
// clients poll, and it does not survive a restart.
package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
)

var ErrNotFound = errors.New("notification not found")

// Notification types
const (
	TypeReminder     = "reminder"
	TypeNotification = "notification"
	TypeNudge        = "nudge"
	TypeChallenge    = "challenge"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	HabitID   string    `json:"habitId,omitempty"`
	ActionURL string    `json:"actionUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Center is a bounded per-user notification ring. Each user's list keeps
// at most cap entries, newest first; appending past the cap drops the
// oldest. All methods are safe for concurrent use.
type Center struct {
	mu    sync.Mutex
	lists map[string][]*Notification
	cap   int
}

func NewCenter() *Center {
	return &Center{
		lists: make(map[string][]*Notification),
		cap:   constants.NotificationsPerUser,
	}
}

type AppendParams struct {
	Type      string
	Title     string
	Message   string
	HabitID   string
	ActionURL string
}

func (c *Center) Append(userID string, p AppendParams) *Notification {
	n := &Notification{
		ID:        "notif_" + uuid.NewString(),
		UserID:    userID,
		Type:      p.Type,
		Title:     p.Title,
		Message:   p.Message,
		HabitID:   p.HabitID,
		ActionURL: p.ActionURL,
		Timestamp: time.Now().UTC(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list := append([]*Notification{n}, c.lists[userID]...)
	if len(list) > c.cap {
		list = list[:c.cap]
	}
	c.lists[userID] = list

	return n
}

// List returns the user's notifications newest first together with the
// unread count. The returned slice is a copy.
func (c *Center) List(userID string) ([]Notification, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.lists[userID]
	out := make([]Notification, len(list))
	unread := 0
	for i, n := range list {
		out[i] = *n
		if !n.Read {
			unread++
		}
	}
	return out, unread
}

// CountSince reports notifications of the given type newer than cutoff.
func (c *Center) CountSince(userID, notifType string, cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, n := range c.lists[userID] {
		if n.Type == notifType && n.Timestamp.After(cutoff) {
			count++
		}
	}
	return count
}

func (c *Center) MarkRead(userID, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.lists[userID] {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (c *Center) MarkAllRead(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.lists[userID] {
		n.Read = true
	}
}
