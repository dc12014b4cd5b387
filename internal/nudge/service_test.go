package nudge

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

func newTestService(t *testing.T) (*Service, *db.NudgeRepository, string) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	users := db.NewUserRepository(database)
	habits := db.NewHabitRepository(database)
	entries := db.NewEntryRepository(database)
	nudges := db.NewNudgeRepository(database)

	user, err := users.Create("alice", "alice@example.com", "digest")
	if err != nil {
		t.Fatalf("users.Create() error = %v", err)
	}
	if _, err := habits.Create(user.ID, db.HabitParams{Name: "Stretch", Category: "fitness"}); err != nil {
		t.Fatalf("habits.Create() error = %v", err)
	}

	return NewService("", "", habits, entries, nudges), nudges, user.ID
}

func TestGenerateNudgeWithoutModelUsesTemplates(t *testing.T) {
	service, nudges, userID := newTestService(t)

	n, err := service.GeneratePersonalizedNudge(context.Background(), userID)
	if err != nil {
		t.Fatalf("GeneratePersonalizedNudge() error = %v", err)
	}
	if n == nil || n.Title == "" || n.Message == "" {
		t.Fatalf("nudge = %+v, want populated template", n)
	}

	stored, err := nudges.ListUndismissed(userID, 10)
	if err != nil {
		t.Fatalf("ListUndismissed() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored nudges = %d, want 1", len(stored))
	}
}

func TestGenerateNudgeForEmptyAccountReturnsNil(t *testing.T) {
	service, _, _ := newTestService(t)

	n, err := service.GeneratePersonalizedNudge(context.Background(), "usr_nobody")
	if err != nil {
		t.Fatalf("GeneratePersonalizedNudge() error = %v", err)
	}
	if n != nil {
		t.Fatalf("nudge = %+v, want nil for account without habits", n)
	}
}

func TestChallengeTemplateAlwaysTypesChallenge(t *testing.T) {
	service, _, userID := newTestService(t)

	n, err := service.GenerateMicroChallenge(context.Background(), userID)
	if err != nil {
		t.Fatalf("GenerateMicroChallenge() error = %v", err)
	}
	if n.Type != models.NudgeTypeChallenge {
		t.Fatalf("type = %q, want %q", n.Type, models.NudgeTypeChallenge)
	}
	if n.ActionLabel == nil {
		t.Fatal("challenge missing action label")
	}
}

func TestSuggestionsFallBackPerCategory(t *testing.T) {
	service, _, userID := newTestService(t)

	for _, category := range []string{"fitness", "sleep", "unmapped"} {
		suggestions, err := service.SuggestHabits(context.Background(), userID, category)
		if err != nil {
			t.Fatalf("SuggestHabits(%q) error = %v", category, err)
		}
		if len(suggestions) != 5 {
			t.Fatalf("SuggestHabits(%q) = %d items, want 5", category, len(suggestions))
		}
	}
}

func TestSchedulerSkipsWhenRecentNudgeExists(t *testing.T) {
	service, nudges, userID := newTestService(t)

	if _, err := nudges.Create(db.NudgeParams{
		UserID: userID, Type: models.NudgeTypeMotivation, Title: "t", Message: "m",
	}); err != nil {
		t.Fatalf("nudges.Create() error = %v", err)
	}

	fired := 0
	scheduler := NewScheduler(service, nudges, userID, time.Hour, func(string, *models.AiNudge) {
		fired++
	})
	scheduler.tick(context.Background())

	if fired != 0 {
		t.Fatalf("scheduler fired %d times with a fresh nudge present", fired)
	}

	stored, err := nudges.ListUndismissed(userID, 10)
	if err != nil {
		t.Fatalf("ListUndismissed() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored nudges = %d, want only the pre-existing one", len(stored))
	}
}

func TestSchedulerGeneratesWhenQuiet(t *testing.T) {
	service, nudges, userID := newTestService(t)

	fired := 0
	scheduler := NewScheduler(service, nudges, userID, time.Hour, func(_ string, n *models.AiNudge) {
		if n == nil {
			t.Fatal("callback got nil nudge")
		}
		fired++
	})
	scheduler.tick(context.Background())

	if fired != 1 {
		t.Fatalf("scheduler fired %d times, want 1", fired)
	}
}
