// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything outside the snapshot store selection, which the
// storage factory reads directly.
type Config struct {
	DirectoryPath string
	UsersPath     string

	JWTSecret string
	JWTTTL    time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string

	TelegramToken string

	Recipients []string

	RetryBudget int

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DirectoryPath: getenv("RELIEFTRACK_DIRECTORY_PATH", "data/employees.csv"),
		UsersPath:     getenv("RELIEFTRACK_USERS_PATH", "data/users.csv"),
		JWTSecret:     os.Getenv("RELIEFTRACK_JWT_SECRET"),
		JWTTTL:        12 * time.Hour,
		SMTPHost:      os.Getenv("RELIEFTRACK_SMTP_HOST"),
		SMTPPort:      getenv("RELIEFTRACK_SMTP_PORT", "587"),
		SMTPFrom:      os.Getenv("RELIEFTRACK_SMTP_FROM"),
		SMTPPassword:  os.Getenv("RELIEFTRACK_SMTP_PASSWORD"),
		TelegramToken: os.Getenv("RELIEFTRACK_TELEGRAM_TOKEN"),
		RetryBudget:   3,
		LogLevel:      getenv("RELIEFTRACK_LOG_LEVEL", "INFO"),
	}

	if raw := os.Getenv("RELIEFTRACK_JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse RELIEFTRACK_JWT_TTL: %w", err)
		}
		cfg.JWTTTL = ttl
	}
	if raw := os.Getenv("RELIEFTRACK_SYNC_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("RELIEFTRACK_SYNC_RETRIES must be a positive integer, got %q", raw)
		}
		cfg.RetryBudget = n
	}
	if raw := os.Getenv("RELIEFTRACK_NOTIFY_RECIPIENTS"); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.Recipients = append(cfg.Recipients, r)
			}
		}
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
