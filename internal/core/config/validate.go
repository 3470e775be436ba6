package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs Validate and then the checks that touch the
// filesystem or parse URLs. The configPath argument is the config file to
// check; an empty string skips that check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("storage.local_dir", c.Storage.LocalDir, isDirectoryOrNotExist),
		criterio.Run("storage.public_base_url", c.Storage.PublicBaseURL, isHTTPURL),
		criterio.Run("notify.slack_webhook_url", c.Notify.SlackWebhookURL, isHTTPURL),
		c.validateFirebase(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Auth.JWTSecret == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Auth",
			Item:     "auth.jwt_secret",
			Message:  "no JWT secret set; the HTTP API cannot issue or verify tokens",
		})
	} else if len(c.Auth.JWTSecret) < 32 {
		warnings = append(warnings, ValidationWarning{
			Category: "Auth",
			Item:     "auth.jwt_secret",
			Message:  "JWT secret is shorter than 32 bytes",
		})
	}

	if c.Notify.SlackWebhookURL == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Notify",
			Message:  "no Slack webhook configured; approval notifications are disabled",
		})
	}

	return warnings
}

// RequireAuth reports an error when the HTTP API cannot authenticate callers.
func (c *Config) RequireAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or %s) is required to serve the API", EnvJWTSecret)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

func (c *Config) validateFirebase() error {
	if c.Storage.Backend != BackendFirebase {
		return nil
	}
	return criterio.Run("storage.firebase.credentials_file", c.Storage.Firebase.CredentialsFile, fileExistsIfSet)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func fileExistsIfSet(path string) error {
	if path == "" {
		return nil // application default credentials
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory, not a file")
	}
	return nil
}

func isHTTPURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}
