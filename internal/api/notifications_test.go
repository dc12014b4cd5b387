package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mohomed-Zaid/HabitFlow/internal/notify"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

func TestSendNotificationAppearsInFeed(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")

	rr := env.do(t, http.MethodPost, "/api/notifications/send",
		`{"title":"Water break","message":"Time to <b>hydrate</b>"}`, sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var sent notify.Notification
	if err := json.Unmarshal(rr.Body.Bytes(), &sent); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if sent.Message != "Time to hydrate" {
		t.Fatalf("message = %q, markup not stripped", sent.Message)
	}

	list := env.do(t, http.MethodGet, "/api/notifications", "", sessionID)
	var feed struct {
		Notifications []notify.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &feed); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, list.Body.String())
	}
	if len(feed.Notifications) != 1 || feed.UnreadCount != 1 {
		t.Fatalf("feed = %d items, %d unread, want 1 and 1", len(feed.Notifications), feed.UnreadCount)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	env := newTestEnv(t)
	userID, sessionID := env.seedUser(t, "alice", "password123")

	n := env.center.Append(userID, notify.AppendParams{
		Type: notify.TypeNotification, Title: "t", Message: "m",
	})

	if rr := env.do(t, http.MethodPost, "/api/notifications/"+n.ID+"/read", "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}
	if rr := env.do(t, http.MethodPost, "/api/notifications/missing/read", "", sessionID); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	env := newTestEnv(t)
	userID, sessionID := env.seedUser(t, "alice", "password123")

	for i := 0; i < 3; i++ {
		env.center.Append(userID, notify.AppendParams{
			Type: notify.TypeNotification, Title: "t", Message: "m",
		})
	}

	if rr := env.do(t, http.MethodPost, "/api/notifications/mark-all-read", "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	_, unread := env.center.List(userID)
	if unread != 0 {
		t.Fatalf("unread = %d after mark-all-read", unread)
	}
}

func TestScheduleReminderValidatesDelay(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")

	rr := env.do(t, http.MethodPost, "/api/reminders/schedule",
		`{"habitId":"hab_1","title":"Stretch","message":"now","delayMinutes":0}`, sessionID)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusBadRequest, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/api/reminders/schedule",
		`{"habitId":"hab_1","title":"Stretch","message":"later","delayMinutes":30}`, sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}
}

func TestNotificationFeedIsPerUser(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.seedUser(t, "alice", "password123")
	env.center.Append(userID, notify.AppendParams{
		Type: notify.TypeNotification, Title: "t", Message: "m",
	})

	handler := NewNotificationHandler(env.center, ws.NewHub())
	req := authedRequest(http.MethodGet, "/api/notifications", "", "usr_other")
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	var feed struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &feed); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(feed.Notifications) != 0 {
		t.Fatalf("other user sees %d notifications", len(feed.Notifications))
	}
}
