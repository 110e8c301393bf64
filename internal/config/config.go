package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port       string
	EventTitle string
	DBPath     string

	DBMaxOpenConns int
	DBMaxIdleConns int

	AdminEnabled       bool
	AdminUser          string
	AdminPass          string
	JWTSecret          string
	JWTExpiryHours     int
	TOTPIssuer         string
	SecureCookies      bool
	LockoutMaxAttempts int
	LockoutDurationMin int

	CSRFEnabled     bool
	RateLimitPerMin int
	MetricsEnabled  bool

	LogLevel  string
	LogFormat string

	BackupDir           string
	BackupRetentionDays int
	BackupIntervalHours int

	WebhookURL    string
	WebhookFormat string

	SMTPHost string
	SMTPPort int
	SMTPFrom string
	SMTPTo   string
	SMTPUser string
	SMTPPass string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("APP_PORT", "3000"),
		EventTitle:          getEnv("EVENT_TITLE", "Event registration"),
		DBPath:              getEnv("DB_PATH", "./eventreg.db"),
		DBMaxOpenConns:      getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:      getEnvInt("DB_MAX_IDLE_CONNS", 5),
		AdminEnabled:        getEnvBool("ADMIN_ENABLED", true),
		AdminUser:           getEnv("ADMIN_USER", "admin"),
		AdminPass:           getEnv("ADMIN_PASS", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiryHours:      getEnvInt("JWT_EXPIRY_HOURS", 12),
		TOTPIssuer:          getEnv("TOTP_ISSUER", "eventreg"),
		SecureCookies:       getEnvBool("SECURE_COOKIES", false),
		LockoutMaxAttempts:  getEnvInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDurationMin:  getEnvInt("LOCKOUT_DURATION_MIN", 15),
		CSRFEnabled:         getEnvBool("CSRF_ENABLED", true),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MIN", 30),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", false),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "console")),
		BackupDir:           getEnv("BACKUP_DIR", "./backups"),
		BackupRetentionDays: getEnvInt("BACKUP_RETENTION_DAYS", 30),
		BackupIntervalHours: getEnvInt("BACKUP_INTERVAL_HOURS", 0),
		WebhookURL:          getEnv("WEBHOOK_URL", ""),
		WebhookFormat:       strings.ToLower(getEnv("WEBHOOK_FORMAT", "discord")),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPFrom:            getEnv("SMTP_FROM", ""),
		SMTPTo:              getEnv("SMTP_TO", ""),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPass:            getEnv("SMTP_PASS", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	switch c.WebhookFormat {
	case "discord", "slack":
	default:
		return fmt.Errorf("WEBHOOK_FORMAT must be discord or slack, got %q", c.WebhookFormat)
	}

	if !c.AdminEnabled {
		return nil
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_ENABLED is true")
	}
	if c.AdminPass == "" {
		return fmt.Errorf("ADMIN_PASS is required when ADMIN_ENABLED is true")
	}
	if len(c.AdminPass) < 8 {
		log.Warn().Msg("ADMIN_PASS is shorter than 8 characters, use a stronger password in production")
	}
	if len(c.JWTSecret) < 32 {
		log.Warn().Msg("JWT_SECRET is shorter than 32 characters, use a longer secret in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
