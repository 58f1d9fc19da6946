package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the delegator.
type Config struct {
	TelegramToken string `yaml:"telegram_token"`
	DatabaseURL   string `yaml:"database_url"`

	// TimezoneOffsetHours is the fixed civil UTC offset every today/
	// tomorrow and slot computation runs in (no DST).
	TimezoneOffsetHours int `yaml:"timezone_offset_hours"`

	GoogleCalendarID      string `yaml:"google_calendar_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleTokenFile       string `yaml:"google_token_file"`

	RolloverTime string `yaml:"rollover_time"` // HH:MM, daily
	SweepTime    string `yaml:"sweep_time"`    // HH:MM, daily calendar sweep
}

type rawConfig struct {
	TelegramToken         string `yaml:"telegram_token"`
	DatabaseURL           string `yaml:"database_url"`
	TimezoneOffsetHours   *int   `yaml:"timezone_offset_hours"`
	GoogleCalendarID      string `yaml:"google_calendar_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleTokenFile       string `yaml:"google_token_file"`
	RolloverTime          string `yaml:"rollover_time"`
	SweepTime             string `yaml:"sweep_time"`
}

// Load reads the YAML config file (optional), applies environment
// variable overrides, and validates required settings.
func Load(path string) (Config, error) {
	var raw rawConfig
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &raw); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// Environment-only operation is fine.
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		TelegramToken:         raw.TelegramToken,
		DatabaseURL:           raw.DatabaseURL,
		TimezoneOffsetHours:   -3,
		GoogleCalendarID:      raw.GoogleCalendarID,
		GoogleCredentialsFile: raw.GoogleCredentialsFile,
		GoogleTokenFile:       raw.GoogleTokenFile,
		RolloverTime:          raw.RolloverTime,
		SweepTime:             raw.SweepTime,
	}
	if raw.TimezoneOffsetHours != nil {
		cfg.TimezoneOffsetHours = *raw.TimezoneOffsetHours
	}

	applyEnv(&cfg)
	cfg.normalize()

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("telegram token is required (TELEGRAM_TOKEN or config file)")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		cfg.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TZ_OFFSET_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= -12 && n <= 14 {
			cfg.TimezoneOffsetHours = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CALENDAR_ID")); v != "" {
		cfg.GoogleCalendarID = v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")); v != "" {
		cfg.GoogleCredentialsFile = v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_TOKEN_FILE")); v != "" {
		cfg.GoogleTokenFile = v
	}
}

func (c *Config) normalize() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = "delegator.db"
	}
	if c.GoogleCredentialsFile == "" {
		c.GoogleCredentialsFile = "credentials.json"
	}
	if c.GoogleTokenFile == "" {
		c.GoogleTokenFile = "token.json"
	}
	if c.RolloverTime == "" {
		c.RolloverTime = "20:00"
	}
	if c.SweepTime == "" {
		c.SweepTime = "03:10"
	}
}

// CalendarEnabled reports whether a calendar provider is configured.
func (c *Config) CalendarEnabled() bool {
	return c.GoogleCalendarID != ""
}
