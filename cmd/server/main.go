package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mohomed-Zaid/HabitFlow/internal/api"
	"github.com/Mohomed-Zaid/HabitFlow/internal/auth"
	"github.com/Mohomed-Zaid/HabitFlow/internal/config"
	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
	"github.com/Mohomed-Zaid/HabitFlow/internal/email"
	"github.com/Mohomed-Zaid/HabitFlow/internal/models"
	"github.com/Mohomed-Zaid/HabitFlow/internal/notify"
	"github.com/Mohomed-Zaid/HabitFlow/internal/nudge"
	"github.com/Mohomed-Zaid/HabitFlow/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting server", "env", cfg.Server.Env)

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	userRepo := db.NewUserRepository(database)
	sessionRepo := db.NewSessionRepository(database)
	resetRepo := db.NewResetTokenRepository(database)
	habitRepo := db.NewHabitRepository(database)
	entryRepo := db.NewEntryRepository(database)
	nudgeRepo := db.NewNudgeRepository(database)
	statsRepo := db.NewStatsRepository(database)

	cleanupService := db.NewCleanupService(sessionRepo, resetRepo)
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	go cleanupService.Start(backgroundCtx)

	emailService := email.NewSMTPService(
		cfg.Email.SMTP.Host,
		cfg.Email.SMTP.Port,
		cfg.Email.SMTP.Username,
		cfg.Email.SMTP.Password,
		cfg.Email.SMTP.From,
	)
	if emailService.Configured() {
		slog.Info("email configured", "host", cfg.Email.SMTP.Host, "port", cfg.Email.SMTP.Port)
	} else {
		slog.Info("email not configured, reset tokens will be logged")
	}

	center := notify.NewCenter()
	aiService := nudge.NewService(cfg.AI.APIKey, cfg.AI.Model, habitRepo, entryRepo, nudgeRepo)

	server := api.NewServer(cfg, api.Deps{
		Database: database,
		Users:    userRepo,
		Sessions: sessionRepo,
		Resets:   resetRepo,
		Habits:   habitRepo,
		Entries:  entryRepo,
		Nudges:   nudgeRepo,
		Stats:    statsRepo,
		Email:    emailService,
		Center:   center,
		AI:       aiService,
	})

	if cfg.Demo.Enabled {
		demoUser, err := ensureDemoUser(userRepo, cfg)
		if err != nil {
			slog.Error("failed to bootstrap demo user", "error", err)
			os.Exit(1)
		}

		hub := server.Hub()
		scheduler := nudge.NewScheduler(aiService, nudgeRepo, demoUser.ID, cfg.AI.Interval, func(userID string, n *models.AiNudge) {
			habitID := ""
			if n.HabitID != nil {
				habitID = *n.HabitID
			}
			center.Append(userID, notify.AppendParams{
				Type:    notify.TypeNudge,
				Title:   n.Title,
				Message: n.Message,
				HabitID: habitID,
			})
			hub.BroadcastToUser(userID, ws.NewMessage(ws.EventAiNudge, n))
		})
		go scheduler.Start(backgroundCtx)
	}

	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")

	backgroundCancel()

	// Drain in-flight HTTP and WebSocket traffic before the hub closes
	// client channels.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	server.Shutdown()

	slog.Info("server stopped")
}

// ensureDemoUser creates the demo account on first boot and reuses it
// afterwards.
func ensureDemoUser(users *db.UserRepository, cfg *config.Config) (*models.User, error) {
	user, err := users.FindByUsername(cfg.Demo.Username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(cfg.Demo.Password)
	if err != nil {
		return nil, err
	}

	user, err = users.Create(cfg.Demo.Username, cfg.Demo.Email, hash)
	if err != nil {
		return nil, err
	}
	slog.Info("demo user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}
