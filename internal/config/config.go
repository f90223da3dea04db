package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	JWT        JWTConfig
	Attendance AttendanceConfig
	Sync       SyncConfig
	Connector  ConnectorConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds token verification configuration. Token issuance is the
// surrounding product's concern; this service only verifies access tokens.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// AttendanceConfig controls the daily compute pipeline.
type AttendanceConfig struct {
	Timezone      string
	ComputeHour   int
	Workers       int
	NoShiftStatus string
}

type SyncConfig struct {
	Interval time.Duration
	Lookback time.Duration
}

type ConnectorConfig struct {
	Type    string
	DSN     string
	Timeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clockwise-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Attendance pipeline configuration
	computeHour, err := strconv.Atoi(getEnv("ATTENDANCE_COMPUTE_HOUR", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_COMPUTE_HOUR: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("ATTENDANCE_COMPUTE_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_COMPUTE_WORKERS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:      getEnv("ATTENDANCE_TIMEZONE", "UTC"),
		ComputeHour:   computeHour,
		Workers:       workers,
		NoShiftStatus: getEnv("ATTENDANCE_NO_SHIFT_STATUS", "ABSENT"),
	}

	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}

	syncLookback, err := time.ParseDuration(getEnv("SYNC_LOOKBACK", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_LOOKBACK: %w", err)
	}

	config.Sync = SyncConfig{
		Interval: syncInterval,
		Lookback: syncLookback,
	}

	connectorTimeout, err := time.ParseDuration(getEnv("CONNECTOR_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECTOR_TIMEOUT: %w", err)
	}

	config.Connector = ConnectorConfig{
		Type:    getEnv("CONNECTOR_TYPE", "devicedb"),
		DSN:     getEnv("CONNECTOR_DSN", ""),
		Timeout: connectorTimeout,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.ComputeHour < 0 || c.Attendance.ComputeHour > 23 {
		return fmt.Errorf("ATTENDANCE_COMPUTE_HOUR must be between 0 and 23")
	}
	if c.Attendance.Workers < 1 {
		return fmt.Errorf("ATTENDANCE_COMPUTE_WORKERS must be at least 1")
	}
	if c.Attendance.NoShiftStatus != "ABSENT" && c.Attendance.NoShiftStatus != "WEEKOFF" {
		return fmt.Errorf("ATTENDANCE_NO_SHIFT_STATUS must be ABSENT or WEEKOFF")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	switch c.Connector.Type {
	case "devicedb":
		if c.Connector.DSN == "" {
			return fmt.Errorf("CONNECTOR_DSN is required when CONNECTOR_TYPE is devicedb")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported CONNECTOR_TYPE: %s", c.Connector.Type)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
