package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordVerifyRoundTrip(t *testing.T) {
	digest, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if strings.Contains(digest, "correct horse") {
		t.Fatalf("digest contains plaintext")
	}
	if !VerifyPassword("correct horse battery staple", digest) {
		t.Fatalf("VerifyPassword() = false for matching password")
	}
	if VerifyPassword("wrong password", digest) {
		t.Fatalf("VerifyPassword() = true for non-matching password")
	}
}

func TestVerifyPasswordRejectsGarbageDigest(t *testing.T) {
	if VerifyPassword("anything", "not-a-bcrypt-digest") {
		t.Fatalf("VerifyPassword() = true for malformed digest")
	}
}

func TestNewSessionIDShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if !strings.HasPrefix(id, "sess_") {
			t.Fatalf("session id %q missing sess_ prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestNewResetTokenLength(t *testing.T) {
	token, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken() error = %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64 hex chars", len(token))
	}
}
