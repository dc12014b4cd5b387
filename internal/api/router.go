package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/Mohomed-Zaid/HabitFlow/internal/config"
	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/email"
	"github.com/Mohomed-Zaid/HabitFlow/internal/notify"
	"github.com/Mohomed-Zaid/HabitFlow/internal/nudge"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

type Server struct {
	router *chi.Mux
	config *config.Config
	hub    *ws.Hub
}

type Deps struct {
	Database *db.DB
	Users    *db.UserRepository
	Sessions *db.SessionRepository
	Resets   *db.ResetTokenRepository
	Habits   *db.HabitRepository
	Entries  *db.EntryRepository
	Nudges   *db.NudgeRepository
	Stats    *db.StatsRepository
	Email    *email.SMTPService
	Center   *notify.Center
	AI       *nudge.Service
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	hub := ws.NewHub()
	go hub.Run()

	authHandler := NewAuthHandler(
		deps.Users,
		deps.Sessions,
		deps.Resets,
		deps.Email,
		cfg.Auth.SessionTTL,
		cfg.Auth.ResetTokenTTL,
		cfg.Production(),
	)
	habitHandler := NewHabitHandler(deps.Habits, deps.Entries, deps.Stats, hub)
	statsHandler := NewStatsHandler(deps.Habits, deps.Entries, deps.Stats)
	progressHandler := NewProgressHandler(deps.Habits, deps.Entries)
	nudgeHandler := NewNudgeHandler(deps.Nudges)
	aiHandler := NewAiHandler(deps.AI, deps.Center, hub)
	notificationHandler := NewNotificationHandler(deps.Center, hub)
	wsHandler := NewWebSocketHandler(hub, deps.Sessions, deps.Users, deps.Habits, deps.Stats)
	healthHandler := NewHealthHandler(cfg.Server.Name, deps.Database)

	authMiddleware := NewAuthMiddleware(deps.Sessions)

	r := chi.NewRouter()
	r.Use(slogRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(1 << 20)) // 1 MB

		r.Route("/auth", func(r chi.Router) {
			credentialLimit := httprate.LimitByIP(10, time.Minute)
			resetLimit := httprate.LimitByIP(5, time.Minute)

			r.With(credentialLimit).Post("/register", authHandler.Register)
			r.With(credentialLimit).Post("/login", authHandler.Login)
			r.With(resetLimit).Post("/forgot-password", authHandler.ForgotPassword)
			r.With(resetLimit).Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", habitHandler.List)
				r.Post("/", habitHandler.Create)
				r.Get("/{habitID}", habitHandler.Get)
				r.Put("/{habitID}", habitHandler.Update)
				r.Patch("/{habitID}", habitHandler.Update)
				r.Delete("/{habitID}", habitHandler.Delete)
				r.Post("/{habitID}/toggle", habitHandler.Toggle)
				r.Get("/{habitID}/entries", habitHandler.Entries)
			})

			r.Get("/stats", statsHandler.Get)
			r.Get("/progress/weekly", progressHandler.Weekly)
			r.Get("/progress/monthly", progressHandler.Monthly)

			r.Route("/nudges", func(r chi.Router) {
				r.Get("/", nudgeHandler.List)
				r.Post("/{nudgeID}/read", nudgeHandler.MarkRead)
				r.Post("/{nudgeID}/dismiss", nudgeHandler.Dismiss)
			})

			r.Route("/ai", func(r chi.Router) {
				// Model calls are slow and metered, keep the ceiling low.
				r.Use(httprate.LimitByIP(20, time.Minute))
				r.Post("/generate-nudge", aiHandler.GenerateNudge)
				r.Post("/generate-challenge", aiHandler.GenerateChallenge)
				r.Post("/motivate", aiHandler.Motivate)
				r.Get("/habit-suggestions", aiHandler.HabitSuggestions)
				r.Post("/request-nudge", aiHandler.RequestNudge)
				r.Post("/auto-generate-nudges", aiHandler.AutoGenerateNudges)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{notificationID}/read", notificationHandler.MarkRead)
				r.Post("/mark-all-read", notificationHandler.MarkAllRead)
				r.Post("/send", notificationHandler.Send)
			})

			r.Post("/reminders/schedule", notificationHandler.ScheduleReminder)
		})
	})

	r.With(httprate.LimitByIP(10, time.Minute)).Get("/ws", wsHandler.ServeWS)

	return &Server{
		router: r,
		config: cfg,
		hub:    hub,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub exposes the event hub so background services can push to clients.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Shutdown() {
	s.hub.Shutdown()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func maxBodySizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		)
	})
}
