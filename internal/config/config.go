package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret  string
	CronSecret string
	// AdminEmails are granted admin at registration.
	AdminEmails []string

	ResendAPIKey string
	EmailFrom    string
	EmailReplyTo string
	AppBaseURL   string

	PromptsFile      string
	AutosaveInterval time.Duration
	LogLevel         slog.Level
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		CORSAllowedOrigins:   splitList(getenv("CORS_ALLOWED_ORIGINS", "")),

		CronSecret:  getenv("CRON_SECRET", ""),
		AdminEmails: splitList(strings.ToLower(getenv("ADMIN_EMAILS", ""))),

		ResendAPIKey: getenv("RESEND_API_KEY", ""),
		EmailFrom:    getenv("EMAIL_FROM", "Weekly Prompts <prompts@localhost>"),
		EmailReplyTo: getenv("EMAIL_REPLY_TO", ""),
		AppBaseURL:   getenv("APP_BASE_URL", "http://localhost:8080"),

		PromptsFile: getenv("PROMPTS_FILE", "prompts.yaml"),
	}

	d, err := time.ParseDuration(getenv("AUTOSAVE_INTERVAL", "30s"))
	if err != nil || d <= 0 {
		return Config{}, fmt.Errorf("invalid AUTOSAVE_INTERVAL: %q", os.Getenv("AUTOSAVE_INTERVAL"))
	}
	cfg.AutosaveInterval = d

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg, nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
