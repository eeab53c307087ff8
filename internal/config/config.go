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
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Media    MediaConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host          string
	Port          int
	SecureCookies bool
	// AllowedOrigins lists browser origins admitted by CORS with credentials. "*" admits any
	// other origin without credentials.
	AllowedOrigins []string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration. Access tokens are not refreshed, so
// TokenTTLMinutes defaults to the session lifetime and a sign-in lasts as long as its Redis
// session.
type AuthConfig struct {
	JWTSecret            string
	JWTIssuer            string
	TokenTTLMinutes      int
	SessionTTLHours      int
	AdminEmails          []string
	GoogleClientID       string
	SignInMaxAttempts    int
	SignInLockoutMinutes int
}

// RedisConfig holds the session store connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// MediaConfig holds product image storage configuration.
type MediaConfig struct {
	S3Enabled     bool
	Bucket        string
	Region        string
	Prefix        string // key prefix within bucket (e.g., "productos/")
	PublicBaseURL string // base URL of locally stored images
	S3BaseURL     string // base URL of the bucket; derived from bucket and region when empty
	LocalDir      string
}

// Load loads configuration from environment variables. A .env file in the working
// directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			SecureCookies:  getEnvAsBool("COOKIE_SECURE", false),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Database: databaseFromEnv(),
		Logger:   loggerFromEnv(),
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			JWTIssuer:            getEnv("JWT_ISSUER", "restaurant-orders"),
			TokenTTLMinutes:      getEnvAsInt("JWT_TTL_MINUTES", 60*24*30),
			SessionTTLHours:      getEnvAsInt("SESSION_TTL_HOURS", 24*30),
			AdminEmails:          getEnvAsList("ADMIN_EMAILS"),
			GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
			SignInMaxAttempts:    getEnvAsInt("SIGNIN_MAX_ATTEMPTS", 5),
			SignInLockoutMinutes: getEnvAsInt("SIGNIN_LOCKOUT_MINUTES", 15),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Media: MediaConfig{
			S3Enabled:     getEnvAsBool("S3_ENABLED", false),
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Prefix:        getEnv("S3_PREFIX", "productos/"),
			PublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", "http://localhost:8080/media"),
			S3BaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),
			LocalDir:      getEnv("MEDIA_LOCAL_DIR", "data/media"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads only the database and logger settings, for tools that do not serve
// HTTP.
func LoadDatabase() (DatabaseConfig, LoggerConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DatabaseConfig{}, LoggerConfig{}, fmt.Errorf("failed to read .env file: %w", err)
	}
	return databaseFromEnv(), loggerFromEnv(), nil
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "restaurante"),
		MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
		MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
		MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
	}
}

func loggerFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}
	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.TokenTTLMinutes < 1 {
		return fmt.Errorf("JWT ttl must be at least 1 minute")
	}
	if time.Duration(c.Auth.SessionTTLHours)*time.Hour < c.Auth.TokenTTL() {
		return fmt.Errorf("session ttl cannot be shorter than the token ttl")
	}
	if c.Auth.SignInMaxAttempts < 1 {
		return fmt.Errorf("sign-in max attempts must be at least 1")
	}

	if c.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Media.S3Enabled {
		if c.Media.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Media.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}
	if c.Media.PublicBaseURL == "" {
		return fmt.Errorf("media public base URL is required")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TokenTTL returns the access token lifetime.
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// SessionTTL returns how long a signed-in session survives without activity.
func (c *AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// SignInLockout returns the window during which failed sign-ins are counted.
func (c *AuthConfig) SignInLockout() time.Duration {
	return time.Duration(c.SignInLockoutMinutes) * time.Minute
}

// S3PublicURL returns the base URL under which uploaded objects are publicly readable.
func (c *MediaConfig) S3PublicURL() string {
	if c.S3BaseURL != "" {
		return c.S3BaseURL
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable as a trimmed, lower-cased list.
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			values = append(values, part)
		}
	}
	return values
}
