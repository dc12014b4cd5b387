package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is deliberately above the library default; login latency is
// bounded by a single hash comparison.
const BcryptCost = 12

// HashPassword derives a salted bcrypt digest from a plaintext password.
// The plaintext is never persisted or logged.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches digest. bcrypt's
// comparison is constant-time with respect to the digest contents.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
