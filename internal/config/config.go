package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Aggregation
	FetchTimeout    time.Duration `json:"fetch_timeout"`
	MaxConcurrency  int           `json:"max_concurrency"`
	SnapshotTTL     time.Duration `json:"snapshot_ttl"`
	SourcesFile     string        `json:"sources_file"`
	DisplayTimezone string        `json:"display_timezone"`
	DefaultDays     int           `json:"default_days"`

	// Redis configuration (generated summary cache, optional)
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`

	// AI Configuration
	AIApiKey  string        `json:"ai_api_key"`
	AIModel   string        `json:"ai_model"`
	AITimeout time.Duration `json:"ai_timeout"`

	// Digest
	OutputDir      string `json:"output_dir"`
	PeriodDays     int    `json:"period_days"`
	TopN           int    `json:"top_n"`
	DigestSchedule string `json:"digest_schedule"`
	Summarize      bool   `json:"summarize"`

	// Telegram delivery (optional)
	TelegramToken  string `json:"telegram_token"`
	TelegramChatID int64  `json:"telegram_chat_id"`

	// Email delivery (optional)
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       int    `json:"smtp_port"`
	EmailSender    string `json:"email_sender"`
	EmailPassword  string `json:"-"`
	RecipientEmail string `json:"recipient_email"`
	EmailSubject   string `json:"email_subject"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second),

		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),
		MaxConcurrency:  getEnvAsInt("MAX_CONCURRENCY", 5),
		SnapshotTTL:     getEnvAsDuration("SNAPSHOT_TTL", 15*time.Minute),
		SourcesFile:     getEnv("SOURCES_FILE", ""),
		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "UTC"),
		DefaultDays:     getEnvAsInt("DEFAULT_DAYS", 7),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "aidigest:summary:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days

		AIApiKey:  getEnv("AI_API_KEY", ""),
		AIModel:   getEnv("AI_MODEL", "gemini-1.5-flash"),
		AITimeout: getEnvAsDuration("AI_TIMEOUT", 60*time.Second),

		OutputDir:      getEnv("OUTPUT_DIR", "./dist"),
		PeriodDays:     getEnvAsInt("PERIOD_DAYS", 7),
		TopN:           getEnvAsInt("TOP_N", 10),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 13 * * 5"), // Fridays 13:00
		Summarize:      getEnvAsBool("DIGEST_SUMMARIZE", false),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "aidigest"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnvAsInt64("TELEGRAM_CHAT_ID", 0),

		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		EmailSender:    getEnv("EMAIL_SENDER", ""),
		EmailPassword:  getEnv("EMAIL_PASSWORD", ""),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),
		EmailSubject:   getEnv("EMAIL_SUBJECT", "Weekly AI Newsletter"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency))
	}
	if c.PeriodDays < 1 {
		errs = append(errs, fmt.Errorf("PERIOD_DAYS must be at least 1, got %d", c.PeriodDays))
	}
	if c.TopN < 1 {
		errs = append(errs, fmt.Errorf("TOP_N must be at least 1, got %d", c.TopN))
	}
	if c.DefaultDays < 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_DAYS must not be negative, got %d", c.DefaultDays))
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err))
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
	}
	if c.RecipientEmail != "" && (c.EmailSender == "" || c.EmailPassword == "") {
		errs = append(errs, errors.New("EMAIL_SENDER and EMAIL_PASSWORD are required when RECIPIENT_EMAIL is set"))
	}
	if c.RecipientEmail != "" && (c.SMTPPort < 1 || c.SMTPPort > 65535) {
		errs = append(errs, fmt.Errorf("SMTP_PORT must be a valid port, got %d", c.SMTPPort))
	}
	return errors.Join(errs...)
}

// Location returns the display timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EmailEnabled reports whether digests should be emailed.
func (c *Config) EmailEnabled() bool {
	return len(c.Recipients()) > 0
}

// Recipients splits RECIPIENT_EMAIL on commas.
func (c *Config) Recipients() []string {
	var out []string
	for _, r := range strings.Split(c.RecipientEmail, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// R2Enabled reports whether digest files should also go to the R2 bucket.
func (c *Config) R2Enabled() bool {
	return c.R2AccessKey != "" && c.R2SecretKey != "" && (c.R2Endpoint != "" || c.R2AccountID != "")
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
