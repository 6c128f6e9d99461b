package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Validate reports every required connection setting that is missing.
// The process must not start without them.
func (c DatabaseConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"POSTGRES_HOST", c.Host},
		{"POSTGRES_PORT", c.Port},
		{"POSTGRES_DB", c.Name},
		{"POSTGRES_USER", c.User},
		{"POSTGRES_PASSWORD", c.Password},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("some required database environment variables are missing: %s", strings.Join(missing, ", "))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("POSTGRES_PORT must be an integer, got %q", c.Port)
	}
	return nil
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	TimeZone string
	Database DatabaseConfig
	MinIO    MinIOConfig
}

// Addr returns the host:port pair the HTTP server listens on.
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.AppHost, c.Port)
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "127.0.0.1"),
		Port:     getEnv("APP_PORT", "8000"),
		TimeZone: getEnv("APP_TZ", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("POSTGRES_HOST", ""),
			Port:               getEnv("POSTGRES_PORT", ""),
			User:               getEnv("POSTGRES_USER", ""),
			Password:           getEnv("POSTGRES_PASSWORD", ""),
			Name:               getEnv("POSTGRES_DB", ""),
			SSLMode:            getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
