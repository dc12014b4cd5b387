package api

import (
	"net/http"
	"time"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
)

type HealthHandler struct {
	service   string
	database  *db.DB
	startedAt time.Time
}

func NewHealthHandler(service string, database *db.DB) *HealthHandler {
	return &HealthHandler{
		service:   service,
		database:  database,
		startedAt: time.Now().UTC(),
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	status := http.StatusOK

	if err := h.database.Ping(); err != nil {
		dbStatus = "error"
		status = http.StatusServiceUnavailable
	}

	result := "ok"
	if status != http.StatusOK {
		result = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":  result,
		"service": h.service,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"checks": map[string]string{
			"database": dbStatus,
		},
	})
}
