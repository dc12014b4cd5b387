package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/auth"
	"github.com/Mohomed-Zaid/HabitFlow/internal/config"
	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/email"
	"github.com/Mohomed-Zaid/HabitFlow/internal/notify"
	"github.com/Mohomed-Zaid/HabitFlow/internal/nudge"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

type testEnv struct {
	server   *Server
	database *db.DB
	users    *db.UserRepository
	sessions *db.SessionRepository
	resets   *db.ResetTokenRepository
	habits   *db.HabitRepository
	entries  *db.EntryRepository
	center   *notify.Center
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := openTestDB(t)
	users := db.NewUserRepository(database)
	sessions := db.NewSessionRepository(database)
	resets := db.NewResetTokenRepository(database)
	habits := db.NewHabitRepository(database)
	entries := db.NewEntryRepository(database)
	nudges := db.NewNudgeRepository(database)
	stats := db.NewStatsRepository(database)
	center := notify.NewCenter()

	cfg := &config.Config{}
	cfg.Server.Name = "habitflow"
	cfg.Server.Env = "development"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.ResetTokenTTL = time.Hour

	server := NewServer(cfg, Deps{
		Database: database,
		Users:    users,
		Sessions: sessions,
		Resets:   resets,
		Habits:   habits,
		Entries:  entries,
		Nudges:   nudges,
		Stats:    stats,
		Email:    email.NewSMTPService("", 0, "", "", ""),
		Center:   center,
		AI:       nudge.NewService("", "", habits, entries, nudges),
	})
	t.Cleanup(server.Shutdown)

	return &testEnv{
		server:   server,
		database: database,
		users:    users,
		sessions: sessions,
		resets:   resets,
		habits:   habits,
		entries:  entries,
		center:   center,
	}
}

// seedUser creates a user with a known password and an active session.
func (env *testEnv) seedUser(t *testing.T, username, password string) (userID, sessionID string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user, err := env.users.Create(username, username+"@example.com", hash)
	if err != nil {
		t.Fatalf("users.Create() error = %v", err)
	}
	session, err := env.sessions.Create(user.ID, time.Hour)
	if err != nil {
		t.Fatalf("sessions.Create() error = %v", err)
	}
	return user.ID, session.ID
}

// do runs a request through the full router, attaching the session
// cookie when sessionID is non-empty.
func (env *testEnv) do(t *testing.T, method, path, body, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	}

	rr := httptest.NewRecorder()
	env.server.ServeHTTP(rr, req)
	return rr
}

func offsetDate(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format(db.DateLayout)
}

// authedRequest builds a request with the user id already resolved, for
// exercising handlers directly without the router.
func authedRequest(method, path, body, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(context.WithValue(req.Context(), userIDKey, userID))
}
