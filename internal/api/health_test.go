package api

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHealthReportsServiceAndDatabase(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Status  string            `json:"status"`
		Service string            `json:"service"`
		Uptime  string            `json:"uptime"`
		Checks  map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}

	if resp.Status != "ok" {
		t.Fatalf("expected ok, got %q", resp.Status)
	}
	if resp.Service != "habitflow" {
		t.Fatalf("expected service habitflow, got %q", resp.Service)
	}
	if resp.Uptime == "" {
		t.Fatal("expected a non-empty uptime")
	}
	if resp.Checks["database"] != "ok" {
		t.Fatalf("expected database ok, got %q", resp.Checks["database"])
	}
}
