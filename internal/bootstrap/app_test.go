package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobtracker-backend/internal/shared/config"
)

func devConfig() config.Config {
	return config.Config{
		Env:                   "dev",
		CORSAllowOrigin:       []string{"http://localhost:3000"},
		CalendarID:            "primary",
		CalendarTimeZone:      "UTC",
		CalendarEventDuration: time.Hour,
		CalendarSyncTimeout:   time.Second,
		DashboardURL:          "http://localhost:3000/dashboard",
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildInMemoryServesApplications(t *testing.T) {
	app, err := Build(context.Background(), devConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	if app.DB != nil {
		t.Fatalf("expected in-memory repositories")
	}

	health := httptest.NewRecorder()
	app.Router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", health.Code)
	}

	unauth := httptest.NewRecorder()
	app.Router.ServeHTTP(unauth, httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil))
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", unauth.Code)
	}

	body := `{"company":"Acme","role":"SWE","status":"Interview","interviewDateTime":"2025-03-01T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "11111111-1111-1111-1111-111111111111")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["calendarSynced"] != false {
		t.Fatalf("guests must never sync, got %v", created["calendarSynced"])
	}

	metrics := httptest.NewRecorder()
	app.Router.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if metrics.Code != http.StatusOK || !strings.Contains(metrics.Body.String(), "calendar") {
		t.Fatalf("metrics: unexpected response %d", metrics.Code)
	}
}
