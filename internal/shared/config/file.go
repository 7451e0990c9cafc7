package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Env              string   `yaml:"env"`
	Port             string   `yaml:"port"`
	DatabaseURL      string   `yaml:"database_url"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
	Google           struct {
		ClientID            string `yaml:"client_id"`
		ClientSecret        string `yaml:"client_secret"`
		RedirectURL         string `yaml:"redirect_url"`
		CalendarRedirectURL string `yaml:"calendar_redirect_url"`
	} `yaml:"google"`
	UI struct {
		RedirectURL  string `yaml:"redirect_url"`
		DashboardURL string `yaml:"dashboard_url"`
	} `yaml:"ui"`
	Calendar struct {
		ID            string `yaml:"id"`
		TimeZone      string `yaml:"time_zone"`
		EventDuration string `yaml:"event_duration"`
		SyncTimeout   string `yaml:"sync_timeout"`
	} `yaml:"calendar"`
	AWS struct {
		Region      string `yaml:"region"`
		SQSQueueURL string `yaml:"sqs_queue_url"`
	} `yaml:"aws"`
}

// loadFile reads a YAML config file and flattens it to env-style keys.
// ${VAR} references inside the file are expanded from the environment.
func loadFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &fc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return map[string]string{
		"ENV":                          fc.Env,
		"PORT":                         fc.Port,
		"DATABASE_URL":                 fc.DatabaseURL,
		"CORS_ALLOW_ORIGINS":           strings.Join(fc.CORSAllowOrigins, ","),
		"GOOGLE_CLIENT_ID":             fc.Google.ClientID,
		"GOOGLE_CLIENT_SECRET":         fc.Google.ClientSecret,
		"GOOGLE_REDIRECT_URL":          fc.Google.RedirectURL,
		"GOOGLE_CALENDAR_REDIRECT_URL": fc.Google.CalendarRedirectURL,
		"UI_REDIRECT_URL":              fc.UI.RedirectURL,
		"DASHBOARD_URL":                fc.UI.DashboardURL,
		"CALENDAR_ID":                  fc.Calendar.ID,
		"CALENDAR_TIME_ZONE":           fc.Calendar.TimeZone,
		"CALENDAR_EVENT_DURATION":      fc.Calendar.EventDuration,
		"CALENDAR_SYNC_TIMEOUT":        fc.Calendar.SyncTimeout,
		"AWS_REGION":                   fc.AWS.Region,
		"JT_SQS_QUEUE_URL":             fc.AWS.SQSQueueURL,
	}, nil
}
