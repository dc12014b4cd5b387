package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
)

func TestStatsCountsTodaysCompletions(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")

	first := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)
	createHabit(t, env, sessionID, `{"name":"Read","category":"mindfulness"}`)

	if rr := env.do(t, http.MethodPost, "/api/habits/"+first.ID+"/toggle", "", sessionID); rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/stats", "", sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var stats StatsView
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}
	if stats.CompletedToday != 1 {
		t.Fatalf("completedToday = %d, want 1", stats.CompletedToday)
	}
	if stats.TodayCompletionRate != 50 {
		t.Fatalf("todayCompletionRate = %d, want 50", stats.TodayCompletionRate)
	}
	if stats.ActiveHabits != 2 {
		t.Fatalf("activeHabits = %d, want 2", stats.ActiveHabits)
	}
	if stats.TotalCompletions != 1 {
		t.Fatalf("totalCompletions = %d, want 1", stats.TotalCompletions)
	}
}

func TestStatsWithNoHabits(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")

	rr := env.do(t, http.MethodGet, "/api/stats", "", sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var stats StatsView
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if stats.TodayCompletionRate != 0 || stats.CompletedToday != 0 {
		t.Fatalf("empty account stats = %+v, want zeros", stats)
	}
}

func TestWeeklyProgressCoversSevenDays(t *testing.T) {
	env := newTestEnv(t)
	userID, sessionID := env.seedUser(t, "alice", "password123")
	habit := createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	// Complete today and two days ago directly in the ledger.
	for _, offset := range []int{0, -2} {
		date := offsetDate(offset)
		if _, err := env.entries.Upsert(db.EntryParams{
			HabitID: habit.ID, UserID: userID, Date: date, Completed: true,
		}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", date, err)
		}
	}

	rr := env.do(t, http.MethodGet, "/api/progress/weekly", "", sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var days []*DayProgress
	if err := json.Unmarshal(rr.Body.Bytes(), &days); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}
	if len(days) != 7 {
		t.Fatalf("days = %d, want 7", len(days))
	}
	if days[6].Date != db.Today() {
		t.Fatalf("last day = %q, want today %q", days[6].Date, db.Today())
	}
	if days[6].Completed != 1 || days[4].Completed != 1 || days[5].Completed != 0 {
		t.Fatalf("completion pattern wrong: %d %d %d", days[4].Completed, days[5].Completed, days[6].Completed)
	}
}

func TestMonthlyProgressCoversFourWeeks(t *testing.T) {
	env := newTestEnv(t)
	_, sessionID := env.seedUser(t, "alice", "password123")
	createHabit(t, env, sessionID, `{"name":"Stretch","category":"fitness"}`)

	rr := env.do(t, http.MethodGet, "/api/progress/monthly", "", sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%q", rr.Code, rr.Body.String())
	}

	var weeks []*WeekProgress
	if err := json.Unmarshal(rr.Body.Bytes(), &weeks); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}
	if len(weeks) != 4 {
		t.Fatalf("weeks = %d, want 4", len(weeks))
	}
	for _, w := range weeks {
		if w.Total != 7 {
			t.Fatalf("week total = %d, want 7 for one habit", w.Total)
		}
	}
}
