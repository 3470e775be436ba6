// Package config handles configuration loading and validation for floorready.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KrikINS/floor-ready/internal/core/task"
)

// Storage backends.
const (
	BackendLocal    = "local"
	BackendFirebase = "firebase"
)

// Environment variables that override secrets from the config file. They are
// usually supplied through a .env file.
const (
	EnvJWTSecret       = "FLOORREADY_JWT_SECRET"
	EnvSlackWebhookURL = "FLOORREADY_SLACK_WEBHOOK_URL"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Server   ServerConfig   `yaml:"server"`
	Notify   NotifyConfig   `yaml:"notify"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig configures the SQLite record store.
type DatabaseConfig struct {
	Path         string `yaml:"path"` // empty means <data_dir>/floorready.db
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// StorageConfig selects and configures the attachment object store.
type StorageConfig struct {
	Backend       string         `yaml:"backend"`         // local or firebase
	LocalDir      string         `yaml:"local_dir"`       // empty means <data_dir>/blobs
	PublicBaseURL string         `yaml:"public_base_url"` // prefix for local object URLs
	Firebase      FirebaseConfig `yaml:"firebase"`
}

// FirebaseConfig locates the Firebase Storage bucket.
type FirebaseConfig struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
}

// AuthConfig configures bearer tokens for the HTTP API.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BodyLimit int    `yaml:"body_limit"`
}

// NotifyConfig configures outbound team notifications.
type NotifyConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Storage: StorageConfig{
			Backend:       BackendLocal,
			PublicBaseURL: "http://localhost:8080/files",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			BodyLimit: 12 << 20,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvSlackWebhookURL); v != "" {
		c.Notify.SlackWebhookURL = v
	}
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.PublicBaseURL == "" {
		c.Storage.PublicBaseURL = defaults.Storage.PublicBaseURL
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = defaults.Auth.TokenTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.BodyLimit == 0 {
		c.Server.BodyLimit = defaults.Server.BodyLimit
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}

	switch c.Storage.Backend {
	case BackendLocal:
	case BackendFirebase:
		if c.Storage.Firebase.Bucket == "" {
			return fmt.Errorf("storage.firebase.bucket is required for the firebase backend")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendLocal, BackendFirebase, c.Storage.Backend)
	}

	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl cannot be negative")
	}

	if c.Server.BodyLimit <= task.MaxAttachmentSize {
		return fmt.Errorf("server.body_limit must exceed the %d byte attachment limit, got %d", task.MaxAttachmentSize, c.Server.BodyLimit)
	}

	return nil
}

// DatabasePath returns the SQLite file location.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.DataDir, "floorready.db")
}

// BlobDir returns the directory used by the local object store.
func (c *Config) BlobDir() string {
	if c.Storage.LocalDir != "" {
		return c.Storage.LocalDir
	}
	return filepath.Join(c.DataDir, "blobs")
}
