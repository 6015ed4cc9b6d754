package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Redis     RedisConfig
	Uploads   UploadsConfig
	Session   SessionConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver selects the gorm driver: "sqlite" (default) or "postgres"
	Driver string
	// URL is the DSN: a file path for sqlite, a connection URL for postgres
	URL string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// RedisConfig holds Redis configuration for the session store
type RedisConfig struct {
	URL     string
	Enabled bool
}

// UploadsConfig holds file upload configuration
type UploadsConfig struct {
	// Root is the directory all uploaded files live under
	Root string
	// MaxBytes caps the accepted request body for upload endpoints
	MaxBytes int64
}

// SessionConfig holds session cookie/store configuration
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("SNAP")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.snapfeed")
	viper.AddConfigPath("/etc/snapfeed")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: getString("database_driver", "sqlite"),
			URL:    getString("database_url", "var/snapfeed.sqlite3"),
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Uploads: UploadsConfig{
			Root:     getString("upload_root", "var/uploads"),
			MaxBytes: int64(getInt("upload_max_bytes", 16*1024*1024)),
		},
		Session: SessionConfig{
			CookieName: getString("session_cookie_name", "login"),
			TTL:        GetDuration("session_ttl", 30*24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", "http://localhost:14268/api/traces"),
			PrometheusEnabled: getBool("prometheus_enabled", false),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "snapfeed"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_driver", "sqlite")
	viper.SetDefault("database_url", "var/snapfeed.sqlite3")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("upload_root", "var/uploads")
	viper.SetDefault("upload_max_bytes", 16*1024*1024)
	viper.SetDefault("session_cookie_name", "login")
	viper.SetDefault("session_ttl", 30*24*time.Hour)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("service_name", "snapfeed")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("SNAP_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("SNAP_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("SNAP_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	// Convert snake_case to UPPER_SNAKE_CASE
	result := ""
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result += "_"
		}
		if r == '-' || r == '_' {
			result += "_"
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database_driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.Uploads.Root == "" {
		return fmt.Errorf("upload_root is required")
	}
	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("upload_max_bytes must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session_cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	return nil
}

// GetDuration returns a duration from config key, with default
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return defaultValue
}
