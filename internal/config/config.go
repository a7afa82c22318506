package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Guard    GuardConfig
	Store    StoreConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	SessionSecret   string
	SessionLifetime time.Duration
	CleanupInterval time.Duration
	CookieDomain    string
	// Login form requests allowed per IP per minute, independent of the guard
	LoginRequestsPerMinute int
	FailureDelayBaseMs     int
	FailureDelayRandomMs   int
}

// GuardConfig tunes the per-(address, username) login throttle.
type GuardConfig struct {
	MaxAttempts   int
	BlockDuration time.Duration
	AttemptWindow time.Duration
}

type StoreConfig struct {
	RedisURL  string // empty selects the in-memory store
	KeyPrefix string
}

type EmailConfig struct {
	AWSRegion   string
	FromAddress string
	SiteURL     string
}

// Enabled reports whether welcome emails should go out through SES.
func (c EmailConfig) Enabled() bool {
	return c.AWSRegion != "" && c.FromAddress != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "srm"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			SessionSecret:          sessionSecret,
			SessionLifetime:        getEnvAsDuration("SESSION_LIFETIME", 12*time.Hour),
			CleanupInterval:        getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 1*time.Hour),
			CookieDomain:           getEnv("COOKIE_DOMAIN", ""),
			LoginRequestsPerMinute: getEnvAsInt("LOGIN_REQUESTS_PER_MINUTE", 20),
			FailureDelayBaseMs:     getEnvAsInt("LOGIN_FAILURE_DELAY_BASE_MS", 200),
			FailureDelayRandomMs:   getEnvAsInt("LOGIN_FAILURE_DELAY_RANDOM_MS", 100),
		},
		Guard: GuardConfig{
			MaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
			BlockDuration: getEnvAsDuration("LOGIN_BLOCK_DURATION", 30*time.Minute),
			AttemptWindow: getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 24*time.Hour),
		},
		Store: StoreConfig{
			RedisURL:  getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "srm"),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_REGION", ""),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
			SiteURL:     getEnv("SITE_URL", "http://localhost:8080"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSessionSecret(sessionSecret, env); err != nil {
		return nil, err
	}

	if cfg.Guard.MaxAttempts < 1 {
		return nil, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1 (got %d)", cfg.Guard.MaxAttempts)
	}

	return cfg, nil
}

// validateSessionSecret enforces minimum strength for the cookie signing secret
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("SESSION_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
