package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/journal/blog/persistence"
	"github.com/dfryer1193/journal/shared/kv"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Admin  AdminConfig
	Site   SiteConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxUploadSize bounds one multipart media request.
	MaxUploadSize int64
}

// StoreConfig selects and sizes the key/value backend.
type StoreConfig struct {
	Backend string
	// Capacity is the total byte quota of the store.
	Capacity int64
	// PostsBudget caps the encoded post list below Capacity.
	PostsBudget int
	SQLitePath  string
	NATSURL     string
	NATSBucket  string
}

// AdminConfig holds the single admin account.
type AdminConfig struct {
	Username string
	Password string
	// PasswordHash is a bcrypt hash; it takes precedence over Password.
	PasswordHash string
}

// SiteConfig holds the URL prefixes used when rendering post bodies.
type SiteConfig struct {
	PostBase  string
	MediaBase string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	Env   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
			MaxUploadSize:   getInt64Env("MAX_UPLOAD_SIZE", 64*1024*1024),
		},
		Store: StoreFromEnv(),
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", ""),
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Site: SiteConfig{
			PostBase:  getEnv("SITE_POST_BASE", "/journal"),
			MediaBase: getEnv("SITE_MEDIA_BASE", "/api/media"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("ENV", "production"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStore reads only the store settings, for tools that do not serve HTTP.
func LoadStore() (StoreConfig, error) {
	cfg := StoreFromEnv()
	if err := cfg.Validate(); err != nil {
		return StoreConfig{}, err
	}
	return cfg, nil
}

// StoreFromEnv reads the store settings without validating them, so callers
// can apply overrides first.
func StoreFromEnv() StoreConfig {
	return StoreConfig{
		Backend:     strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		Capacity:    getInt64Env("STORE_CAPACITY", kv.DefaultCapacity),
		PostsBudget: getIntEnv("POSTS_BUDGET", persistence.DefaultPostsBudget),
		SQLitePath:  getEnv("SQLITE_DB_PATH", "./journal.db"),
		NATSURL:     getEnv("NATS_URL", ""),
		NATSBucket:  getEnv("NATS_BUCKET", "journal"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	return nil
}

func (c StoreConfig) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the %s backend", BackendNATS)
		}
		if c.NATSBucket == "" {
			return fmt.Errorf("NATS_BUCKET is required for the %s backend", BackendNATS)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}

	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_DB_PATH is required for the %s backend", BackendSQLite)
	}
	if c.PostsBudget <= 0 {
		return fmt.Errorf("POSTS_BUDGET must be positive")
	}
	if c.Capacity > 0 && int64(c.PostsBudget) > c.Capacity {
		return fmt.Errorf("POSTS_BUDGET (%d) exceeds STORE_CAPACITY (%d)", c.PostsBudget, c.Capacity)
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
