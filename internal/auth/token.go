package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
)

// NewSessionID returns an unguessable opaque session identifier. It carries
// no user data; validity lives entirely in the sessions table.
func NewSessionID() string {
	return "sess_" + uuid.NewString()
}

// NewResetToken returns a hex-encoded random token for password resets.
func NewResetToken() (string, error) {
	b := make([]byte, constants.ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
