package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	Env             string

	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	CalendarRedirectURL string
	UIRedirectURL       string
	DashboardURL        string

	CalendarID            string
	CalendarTimeZone      string
	CalendarEventDuration time.Duration
	CalendarSyncTimeout   time.Duration

	AWSRegion   string
	SQSQueueURL string
}

// Load reads configuration from environment variables with sensible defaults.
// Values from the optional CONFIG_FILE sit between the environment and the
// built-in defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file := map[string]string{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := loadFile(path)
		if err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		} else {
			file = values
		}
	}
	get := func(key, def string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if val := file[key]; val != "" {
			return val
		}
		return def
	}

	env := normalizeEnv(get("ENV", "dev"))
	dbURL := get("DATABASE_URL", "")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            get("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(get("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseURL:     dbURL,
		Env:             env,

		GoogleClientID:      get("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:   get("GOOGLE_REDIRECT_URL", ""),
		CalendarRedirectURL: get("GOOGLE_CALENDAR_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/calendar/callback"),
		UIRedirectURL:       get("UI_REDIRECT_URL", ""),
		DashboardURL:        get("DASHBOARD_URL", "http://localhost:3000/dashboard"),

		CalendarID:            get("CALENDAR_ID", "primary"),
		CalendarTimeZone:      get("CALENDAR_TIME_ZONE", "UTC"),
		CalendarEventDuration: parseDuration("CALENDAR_EVENT_DURATION", get("CALENDAR_EVENT_DURATION", ""), time.Hour),
		CalendarSyncTimeout:   parseDuration("CALENDAR_SYNC_TIMEOUT", get("CALENDAR_SYNC_TIMEOUT", ""), 10*time.Second),

		AWSRegion:   get("AWS_REGION", "us-east-1"),
		SQSQueueURL: get("JT_SQS_QUEUE_URL", ""),
	}
}

func parseDuration(key, raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
