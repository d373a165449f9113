package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Env       string // "development" or "production"
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	AWS       AWSConfig
	Email     EmailConfig
	Billing   BillingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds settings for ID tokens issued at login.
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	Secret     string
	ExpireDays int
	CookieName string
}

// AdminConfig holds the moderator allow-list, matched case-insensitively
// alongside the per-user admin flag.
type AdminConfig struct {
	Emails []string
}

// RateLimitConfig bounds public submissions per source address per day.
type RateLimitConfig struct {
	SubmissionsPerDay int
}

// AWSConfig holds AWS credentials and the tool logo bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	LogosBucket          string
	PresignExpireMinutes int
}

// EmailConfig for SMTP notification delivery.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// BillingConfig for the payment provider webhook.
type BillingConfig struct {
	WebhookSecret string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/toolhunt?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "toolhunt"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 60),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", getEnv("JWT_SECRET", "change-me-in-production")),
			ExpireDays: getEnvInt("SESSION_EXPIRE_DAYS", 7),
			CookieName: getEnv("SESSION_COOKIE_NAME", "session"),
		},
		Admin: AdminConfig{
			Emails: splitTrim(getEnv("ADMIN_EMAILS", ""), ","),
		},
		RateLimit: RateLimitConfig{
			SubmissionsPerDay: getEnvInt("RATE_LIMIT_SUBMISSIONS_PER_DAY", 5),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			LogosBucket:          getEnv("AWS_S3_LOGOS_BUCKET", "toolhunt-logos"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@toolhunt.ai"),
			FromName:    getEnv("EMAIL_FROM_NAME", "ToolHunt"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
		Billing: BillingConfig{
			WebhookSecret: getEnv("BILLING_WEBHOOK_SECRET", ""),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
