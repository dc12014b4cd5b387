package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
)

func createHabit(t *testing.T, env *testEnv, sessionID, body string) *HabitView {
	t.Helper()

	rr := env.do(t, http.MethodPost, "/api/habits", body, sessionID)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d, body=%q", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var habit HabitView
	if err := json.Unmarshal(rr.Body.Bytes(), &habit.Habit); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}
	return &habit
}

func TestCreateHabitStripsMarkup(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")

	habit := createHabit(t, env, sessionID,
		`{"name":"<script>alert(1)</script>Read","category":"mindfulness","description":"<b>30 pages</b> a day"}`)

	if habit.Name != "Read" {
		t.Fatalf("name = %q, want %q", habit.Name, "Read")
	}
	if habit.Description == nil || *habit.Description != "30 pages a day" {
		t.Fatalf("description = %v, want %q", habit.Description, "30 pages a day")
	}
}

func TestCreateHabitAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")

	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	if habit.TargetDays != 30 {
		t.Fatalf("targetDays = %d, want 30", habit.TargetDays)
	}
	if habit.Color == "" {
		t.Fatalf("color not defaulted")
	}
}

func TestToggleDefaultsToCompletingToday(t *testing.T) {
	env := newTestEnv(t)
	userID, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle", "", sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}

	entry, err := env.entries.Find(habit.ID, userID, db.Today())
	if err != nil {
		t.Fatalf("entries.Find() error = %v", err)
	}
	if !entry.Completed {
		t.Fatal("entry not marked completed")
	}
}

func TestToggleIsIdempotentPerDay(t *testing.T) {
	env := newTestEnv(t)
	userID, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	for i := 0; i < 3; i++ {
		if rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle",
			`{"completed":true}`, sessionID); rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
		}
	}
	// Flip it off; still exactly one row for today.
	if rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle",
		`{"completed":false}`, sessionID); rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	entries, err := env.entries.ListForHabit(habit.ID, userID, 10)
	if err != nil {
		t.Fatalf("ListForHabit() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Completed {
		t.Fatal("last write should have marked the day incomplete")
	}
}

func TestToggleRejectsForeignHabit(t *testing.T) {
	env := newTestEnv(t)
	_, aliceSession := env.seedUser(t, "alice", "password123")
	_, malloriSession := env.seedUser(t, "mallori", "password123")
	habit := createHabit(t, env, aliceSession, `{"name":"Stretch","category":"fitness"}`)

	rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle", "", malloriSession)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestToggleRejectsMalformedDate(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle",
		`{"date":"15/06/2024"}`, sessionID)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestListEnrichesHabitsWithLedgerState(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	if rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle", "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/habits", "", sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var views []*HabitView
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}
	if len(views) != 1 {
		t.Fatalf("habits = %d, want 1", len(views))
	}
	view := views[0]
	if !view.CompletedToday {
		t.Fatal("completedToday = false after toggle")
	}
	if view.CurrentStreak != 1 {
		t.Fatalf("currentStreak = %d, want 1", view.CurrentStreak)
	}
	if view.CompletionRate != 100 {
		t.Fatalf("completionRate = %d, want 100", view.CompletionRate)
	}
}

func TestDeleteHidesHabitButKeepsLedger(t *testing.T) {
	env := newTestEnv(t)
	userID, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	if rr := env.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle", "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/api/habits/"+habit.ID, "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body=%q", rr.Code, rr.Body.String())
	}

	if rr := env.do(t, http.MethodGet, "/api/habits/"+habit.ID, "", sessionID); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want %d", rr.Code, http.StatusNotFound)
	}

	// The ledger rows survive the soft delete.
	if _, err := env.entries.Find(habit.ID, userID, db.Today()); err != nil {
		t.Fatalf("entries.Find() after delete error = %v", err)
	}
}

func TestEntriesValidatesLimit(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	if rr := env.do(t, http.MethodGet, "/api/habits/"+habit.ID+"/entries?limit=abc", "", sessionID); rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if rr := env.do(t, http.MethodGet, "/api/habits/"+habit.ID+"/entries?limit=-1", "", sessionID); rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if rr := env.do(t, http.MethodGet, "/api/habits/"+habit.ID+"/entries?limit=5", "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestUpdateHabitPartialFields(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	rr := env.do(t, http.MethodPatch, "/api/habits/"+habit.ID, `{"name":"Morning stretch"}`, sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var updated HabitView
	if err := json.Unmarshal(rr.Body.Bytes(), &updated.Habit); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if updated.Name != "Morning stretch" {
		t.Fatalf("name = %q, want %q", updated.Name, "Morning stretch")
	}
	if updated.Category != "fitness" {
		t.Fatalf("category changed to %q", updated.Category)
	}
}

func TestHabitRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/habits"},
		{http.MethodPost, "/api/habits"},
		{http.MethodGet, "/api/stats"},
		{http.MethodGet, "/api/nudges"},
		{http.MethodGet, "/api/notifications"},
	} {
		rr := env.do(t, tc.method, tc.path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want %d", tc.method, tc.path, rr.Code, http.StatusUnauthorized)
		}
		if !strings.Contains(rr.Body.String(), "AUTH_FAILED") {
			t.Fatalf("%s %s body = %q, want AUTH_FAILED envelope", tc.method, tc.path, rr.Body.String())
		}
	}
}
