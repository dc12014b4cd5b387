package db

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultCleanupInterval = 1 * time.Hour
)

// CleanupService sweeps expired sessions and consumed/expired reset
// tokens on a fixed interval. Expired rows already fail validation at
// the query level; the sweep only reclaims space. Failures are logged
// and never interrupt request handling.
type CleanupService struct {
	sessions    *SessionRepository
	resetTokens *ResetTokenRepository
	interval    time.Duration
}

func NewCleanupService(sessions *SessionRepository, resetTokens *ResetTokenRepository) *CleanupService {
	return &CleanupService{
		sessions:    sessions,
		resetTokens: resetTokens,
		interval:    DefaultCleanupInterval,
	}
}

func (s *CleanupService) Start(ctx context.Context) {
	slog.Info("starting cleanup service", "component", "cleanup", "interval", s.interval)

	s.runCleanup()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping cleanup service", "component", "cleanup")
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *CleanupService) runCleanup() {
	sessionsDeleted, err := s.sessions.DeleteExpired()
	if err != nil {
		slog.Error("error deleting expired sessions", "component", "cleanup", "error", err)
	} else if sessionsDeleted > 0 {
		slog.Info("deleted expired sessions", "component", "cleanup", "count", sessionsDeleted)
	}

	tokensDeleted, err := s.resetTokens.DeleteExpired()
	if err != nil {
		slog.Error("error deleting expired reset tokens", "component", "cleanup", "error", err)
	} else if tokensDeleted > 0 {
		slog.Info("deleted expired reset tokens", "component", "cleanup", "count", tokensDeleted)
	}
}
