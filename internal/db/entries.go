package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

// DateLayout is the ledger's calendar-day format. Entries carry no time
// component; day boundaries are UTC.
const DateLayout = "2006-01-02"

// Today returns the current UTC calendar date in ledger format.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

type EntryRepository struct {
	db *DB
}

func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

type EntryParams struct {
	HabitID   string
	UserID    string
	Date      string
	Completed bool
	Notes     *string
}

// Upsert writes the day's completion record. The statement is a single
// atomic insert-or-update keyed on (habit_id, date): concurrent toggles of
// the same day cannot race into duplicate rows. The inner SELECT scopes
// the write to active habits owned by UserID, so a deactivated habit or
// a valid id belonging to another user affects zero rows and reads as
// not found.
func (r *EntryRepository) Upsert(p EntryParams) (*models.HabitEntry, error) {
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return nil, fmt.Errorf("entry date %q: %w", p.Date, ErrInvalidDate)
	}

	id, err := GenerateID("ent")
	if err != nil {
		return nil, fmt.Errorf("generating entry ID: %w", err)
	}
	now := time.Now().UTC()

	result, err := r.db.Exec(
		`INSERT INTO habit_entries (id, habit_id, user_id, date, completed, notes, created_at)
         SELECT ?, h.id, h.user_id, ?, ?, ?, ?
           FROM habits h
          WHERE h.id = ? AND h.user_id = ? AND h.is_active = 1
         ON CONFLICT(habit_id, date) DO UPDATE SET
             completed = excluded.completed,
             notes     = excluded.notes
          WHERE habit_entries.user_id = excluded.user_id`,
		id, p.Date, p.Completed, p.Notes, now, p.HabitID, p.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting entry: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	return r.find(p.HabitID, p.UserID, p.Date)
}

// Find returns the entry for one calendar day, or ErrNotFound.
func (r *EntryRepository) Find(habitID, userID, date string) (*models.HabitEntry, error) {
	return r.find(habitID, userID, date)
}

// ListForHabit returns up to limit entries, most recent day first.
func (r *EntryRepository) ListForHabit(habitID, userID string, limit int) ([]*models.HabitEntry, error) {
	if limit <= 0 {
		limit = constants.EntryHistoryDefaultLimit
	}
	rows, err := r.db.Query(
		`SELECT id, habit_id, user_id, date, completed, notes, created_at
           FROM habit_entries
          WHERE habit_id = ? AND user_id = ?
          ORDER BY date DESC LIMIT ?`,
		habitID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListForUserOnDate returns all of the user's entries for one day.
func (r *EntryRepository) ListForUserOnDate(userID, date string) ([]*models.HabitEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, habit_id, user_id, date, completed, notes, created_at
           FROM habit_entries
          WHERE user_id = ? AND date = ?`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries for date: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// CurrentStreak derives the consecutive-completion streak for a habit.
// It is a pure function of the ledger and "now"; nothing here is cached.
func (r *EntryRepository) CurrentStreak(habitID, userID string) (int, error) {
	rows, err := r.db.Query(
		`SELECT date FROM habit_entries
          WHERE habit_id = ? AND user_id = ? AND completed = 1
          ORDER BY date DESC`,
		habitID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("querying completed dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("scanning entry date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return streakFromDates(dates, time.Now().UTC()), nil
}

// streakFromDates counts consecutive completed calendar days walking
// backward from an anchor. The anchor is today if today is completed,
// else yesterday: a streak that ran through yesterday is still alive
// before today's entry is made. Neither anchored means no streak.
func streakFromDates(dates []string, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	completed := make(map[string]bool, len(dates))
	for _, d := range dates {
		completed[d] = true
	}

	day := now.Truncate(24 * time.Hour)
	if !completed[day.Format(DateLayout)] {
		day = day.AddDate(0, 0, -1)
		if !completed[day.Format(DateLayout)] {
			return 0
		}
	}

	streak := 0
	for completed[day.Format(DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// CompletionRate reports the rolling completion percentage over up to
// windowDays most recent entries. Only entries that exist are counted:
// a habit tracked for three days with all three completed reads 100,
// not 3/windowDays. An empty window reads 0.
func (r *EntryRepository) CompletionRate(habitID, userID string, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = constants.CompletionRateWindowDays
	}
	rows, err := r.db.Query(
		`SELECT completed FROM habit_entries
          WHERE habit_id = ? AND user_id = ?
          ORDER BY date DESC LIMIT ?`,
		habitID, userID, windowDays,
	)
	if err != nil {
		return 0, fmt.Errorf("querying completion window: %w", err)
	}
	defer rows.Close()

	total, done := 0, 0
	for rows.Next() {
		var completed bool
		if err := rows.Scan(&completed); err != nil {
			return 0, fmt.Errorf("scanning completion: %w", err)
		}
		total++
		if completed {
			done++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return ratePercent(done, total), nil
}

func ratePercent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func (r *EntryRepository) find(habitID, userID, date string) (*models.HabitEntry, error) {
	var e models.HabitEntry
	var notes sql.NullString

	err := r.db.QueryRow(
		`SELECT id, habit_id, user_id, date, completed, notes, created_at
           FROM habit_entries
          WHERE habit_id = ? AND user_id = ? AND date = ?`,
		habitID, userID, date,
	).Scan(&e.ID, &e.HabitID, &e.UserID, &e.Date, &e.Completed, &notes, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}

	e.Notes = nullStringToPtr(notes)
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]*models.HabitEntry, error) {
	var entries []*models.HabitEntry
	for rows.Next() {
		var e models.HabitEntry
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.HabitID, &e.UserID, &e.Date, &e.Completed, &notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Notes = nullStringToPtr(notes)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
