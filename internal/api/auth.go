package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/auth"
	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/email"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
)

type AuthHandler struct {
	users      *db.UserRepository
	sessions   *db.SessionRepository
	resets     *db.ResetTokenRepository
	email      *email.SMTPService
	sessionTTL time.Duration
	resetTTL   time.Duration
	secure     bool
}

func NewAuthHandler(
	users *db.UserRepository,
	sessions *db.SessionRepository,
	resets *db.ResetTokenRepository,
	emailService *email.SMTPService,
	sessionTTL time.Duration,
	resetTTL time.Duration,
	secure bool,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		resets:     resets,
		email:      emailService,
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		secure:     secure,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type AuthResponse struct {
	User *models.User `json:"user"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("error hashing password", "error", err)
		internalError(w)
		return
	}

	user, err := h.users.Create(req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			conflict(w, "Username or email already taken")
			return
		}
		slog.Error("error creating user", "error", err)
		internalError(w)
		return
	}

	session, err := h.sessions.Create(user.ID, h.sessionTTL)
	if err != nil {
		slog.Error("error creating session", "error", err)
		internalError(w)
		return
	}

	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, AuthResponse{User: user})
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// POST /api/auth/login. The username field also accepts an email
// address. Unknown account and wrong password produce the identical
// response, so login failures reveal nothing about which was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	identifier := strings.TrimSpace(req.Username)
	user, err := h.users.FindByUsername(identifier)
	if errors.Is(err, db.ErrNotFound) && strings.Contains(identifier, "@") {
		user, err = h.users.FindByEmail(strings.ToLower(identifier))
	}
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			unauthorized(w, "Invalid credentials")
			return
		}
		slog.Error("error looking up user", "error", err)
		internalError(w)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		unauthorized(w, "Invalid credentials")
		return
	}

	session, err := h.sessions.Create(user.ID, h.sessionTTL)
	if err != nil {
		slog.Error("error creating session", "error", err)
		internalError(w)
		return
	}

	if err := h.users.TouchLastLogin(user.ID, time.Now().UTC()); err != nil {
		slog.Warn("error updating last login", "error", err)
	}

	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := sessionIDFromRequest(r); sessionID != "" {
		if err := h.sessions.Delete(sessionID); err != nil {
			slog.Warn("error deleting session", "error", err)
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(GetUserID(r))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			unauthorized(w, "Invalid or expired session")
			return
		}
		slog.Error("error loading user", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// POST /api/auth/forgot-password. Always answers the same message so
// the endpoint cannot be used to probe which emails have accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := h.users.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		token, err := h.resets.Create(user.ID, h.resetTTL)
		if err != nil {
			slog.Error("error creating reset token", "error", err)
		} else if h.email.Configured() {
			if err := h.email.SendPasswordReset(user.Email, token.Token, h.resetTTL); err != nil {
				slog.Error("error sending reset email", "error", err)
			}
		} else {
			slog.Info("password reset requested, no SMTP configured", "user_id", user.ID, "token", token.Token)
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		slog.Error("error looking up user for reset", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists with this email, a reset link has been sent",
	})
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,len=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// POST /api/auth/reset-password. Tokens are single use: consuming one
// atomically flips its used flag, so a replay of the same token fails.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	token, err := h.resets.FindValid(req.Token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			badRequest(w, "Invalid or expired reset token")
			return
		}
		slog.Error("error looking up reset token", "error", err)
		internalError(w)
		return
	}

	if err := h.resets.Consume(token.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			badRequest(w, "Invalid or expired reset token")
			return
		}
		slog.Error("error consuming reset token", "error", err)
		internalError(w)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("error hashing password", "error", err)
		internalError(w)
		return
	}

	if err := h.users.UpdatePasswordHash(token.UserID, hash); err != nil {
		slog.Error("error updating password", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
