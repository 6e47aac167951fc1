package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"becomebetter/internal/security"
)

// DefaultFile is read when CONFIG_FILE is not set. A missing file is fine.
const DefaultFile = "config.yaml"

// Config holds application configuration
type Config struct {
	ServerPort     string `yaml:"server_port"`
	AppBaseURL     string `yaml:"app_base_url"`
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`

	DatabaseType   string `yaml:"database_type"`
	DatabasePath   string `yaml:"database_path"`
	DatabaseURL    string `yaml:"database_url"`
	MigrationsPath string `yaml:"migrations_path"` // empty uses the embedded migrations

	SessionDuration time.Duration `yaml:"session_duration"`
	CSRFSecret      string        `yaml:"csrf_secret"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	TrustedProxies  []string      `yaml:"trusted_proxies"` // CIDRs or addresses allowed to set X-Forwarded-For

	AWSRegion    string `yaml:"aws_region"`
	SESFromEmail string `yaml:"ses_from_email"`
	SESFromName  string `yaml:"ses_from_name"`
	EmailDebug   bool   `yaml:"email_debug"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	CronSecret       string `yaml:"cron_secret"`
	ReminderSchedule string `yaml:"reminder_schedule"`
	CleanupSchedule  string `yaml:"cleanup_schedule"`

	MetricsUser string `yaml:"metrics_user"`
	MetricsPass string `yaml:"metrics_pass"`

	GoogleClientID       string `yaml:"google_client_id"`
	GoogleClientSecret   string `yaml:"google_client_secret"`
	OAuthRedirectBaseURL string `yaml:"oauth_redirect_base_url"`
}

// Load reads .env, then the YAML file at path, then environment variable
// overrides, and finally fills defaults for anything still unset.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = getEnv("CONFIG_FILE", DefaultFile)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ServerPort, "PORT")
	setString(&c.AppBaseURL, "APP_BASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setBool(&c.LogDevelopment, "LOG_DEVELOPMENT")

	setString(&c.DatabaseType, "DATABASE_TYPE")
	setString(&c.DatabasePath, "DB_PATH")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.MigrationsPath, "MIGRATIONS_PATH")

	if v := os.Getenv("SESSION_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionDuration = d
		}
	}
	setString(&c.CSRFSecret, "CSRF_SECRET")
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = splitList(v)
	}

	setString(&c.AWSRegion, "AWS_REGION")
	setString(&c.SESFromEmail, "SES_FROM_EMAIL")
	setString(&c.SESFromName, "SES_FROM_NAME")
	setBool(&c.EmailDebug, "EMAIL_DEBUG")

	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")

	setString(&c.CronSecret, "CRON_SECRET")
	setString(&c.ReminderSchedule, "REMINDER_SCHEDULE")
	setString(&c.CleanupSchedule, "CLEANUP_SCHEDULE")

	setString(&c.MetricsUser, "METRICS_USER")
	setString(&c.MetricsPass, "METRICS_PASS")

	setString(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&c.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.OAuthRedirectBaseURL, "OAUTH_REDIRECT_BASE_URL")
}

func (c *Config) applyDefaults() {
	c.ServerPort = orDefault(c.ServerPort, "8080")
	c.AppBaseURL = orDefault(c.AppBaseURL, "http://localhost:8080")
	c.LogLevel = orDefault(c.LogLevel, "info")
	c.DatabaseType = orDefault(c.DatabaseType, "sqlite")
	c.DatabasePath = orDefault(c.DatabasePath, "./becomebetter.db")
	if c.SessionDuration == 0 {
		c.SessionDuration = 24 * time.Hour
	}
	c.CSRFSecret = orDefault(c.CSRFSecret, "change-me-in-production-please")
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = 1
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 10
	}
	c.AWSRegion = orDefault(c.AWSRegion, "us-east-1")
	c.SESFromName = orDefault(c.SESFromName, "Become Better")
	c.GeminiModel = orDefault(c.GeminiModel, "gemini-2.5-flash")
	// Six-field specs: the scheduler runs with second precision.
	c.ReminderSchedule = orDefault(c.ReminderSchedule, "0 * * * * *")
	c.CleanupSchedule = orDefault(c.CleanupSchedule, "0 0 * * * *")
	c.OAuthRedirectBaseURL = orDefault(c.OAuthRedirectBaseURL, c.AppBaseURL)
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3":
		if c.DatabasePath == "" {
			return fmt.Errorf("database_path is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if len(c.CSRFSecret) < 16 {
		return fmt.Errorf("csrf_secret must be at least 16 characters")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.ReminderSchedule); err != nil {
		return fmt.Errorf("invalid reminder_schedule: %w", err)
	}
	if _, err := parser.Parse(c.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cleanup_schedule: %w", err)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if _, err := security.ParseProxyList(c.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted_proxies: %w", err)
	}
	return nil
}

// GoogleOAuthEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, key string) {
	*dst = getEnv(key, *dst)
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
