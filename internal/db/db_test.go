package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

func seedUser(t *testing.T, database *DB, username string) string {
	t.Helper()

	user, err := NewUserRepository(database).Create(username, username+"@example.com", "$2a$12$notarealdigest")
	if err != nil {
		t.Fatalf("Create(%q) error = %v", username, err)
	}
	return user.ID
}

func seedHabit(t *testing.T, database *DB, userID, name string) string {
	t.Helper()

	habit, err := NewHabitRepository(database).Create(userID, HabitParams{
		Name:     name,
		Category: "fitness",
	})
	if err != nil {
		t.Fatalf("Create habit %q error = %v", name, err)
	}
	return habit.ID
}
