package notify

import (
	"fmt"
	"testing"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
)

func TestAppendAndList(t *testing.T) {
	center := NewCenter()

	center.Append("usr_a", AppendParams{Type: TypeReminder, Title: "first", Message: "m1"})
	center.Append("usr_a", AppendParams{Type: TypeNudge, Title: "second", Message: "m2"})

	list, unread := center.List("usr_a")
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if unread != 2 {
		t.Fatalf("unread = %d, want 2", unread)
	}
	if list[0].Title != "second" {
		t.Fatalf("newest first: list[0].Title = %q, want %q", list[0].Title, "second")
	}
}

func TestRingDropsOldestPastCap(t *testing.T) {
	center := NewCenter()

	for i := 0; i < constants.NotificationsPerUser+10; i++ {
		center.Append("usr_a", AppendParams{Type: TypeNotification, Title: fmt.Sprintf("n%d", i), Message: "m"})
	}

	list, _ := center.List("usr_a")
	if len(list) != constants.NotificationsPerUser {
		t.Fatalf("len = %d, want %d", len(list), constants.NotificationsPerUser)
	}
	if list[0].Title != fmt.Sprintf("n%d", constants.NotificationsPerUser+9) {
		t.Fatalf("newest entry = %q, want last appended", list[0].Title)
	}
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	center := NewCenter()

	n := center.Append("usr_a", AppendParams{Type: TypeNudge, Title: "t", Message: "m"})
	center.Append("usr_a", AppendParams{Type: TypeNudge, Title: "t2", Message: "m2"})

	if err := center.MarkRead("usr_a", n.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if _, unread := center.List("usr_a"); unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}

	if err := center.MarkRead("usr_a", "notif_missing"); err == nil {
		t.Fatalf("MarkRead() unknown id succeeded")
	}
	if err := center.MarkRead("usr_b", n.ID); err == nil {
		t.Fatalf("MarkRead() crossed user boundary")
	}

	center.MarkAllRead("usr_a")
	if _, unread := center.List("usr_a"); unread != 0 {
		t.Fatalf("unread after MarkAllRead = %d, want 0", unread)
	}
}

func TestListsAreIsolatedPerUser(t *testing.T) {
	center := NewCenter()

	center.Append("usr_a", AppendParams{Type: TypeNudge, Title: "a", Message: "m"})

	if list, _ := center.List("usr_b"); len(list) != 0 {
		t.Fatalf("user b sees %d notifications, want 0", len(list))
	}
}
