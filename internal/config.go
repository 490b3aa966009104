package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Note backends.
const (
	BackendVault  = "vault"
	BackendRemote = "remote"
)

// EnvPrefix prefixes every environment override, e.g. REVUE_APP_HTTP_PORT.
const EnvPrefix = "REVUE_"

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app" envPrefix:"APP_"`
	Vault  VaultConfig       `yaml:"vault" envPrefix:"VAULT_"`
	SQLite SQLiteConfig      `yaml:"sqlite" envPrefix:"SQLITE_"`
	Auth   AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
	Notes  NotesConfig       `yaml:"notes" envPrefix:"NOTES_"`
	Review ReviewConfig      `yaml:"review" envPrefix:"REVIEW_"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	return c.Review.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http" envPrefix:"HTTP_"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MODE"`
	Token string `yaml:"token" env:"TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NotesConfig selects where note content lives. The vault backend reads
// Markdown files from Vault.Path and watches them for changes; the remote
// backend talks to a notes REST API and relies on the refresh poller.
type NotesConfig struct {
	Backend string       `yaml:"backend" env:"BACKEND"`
	Remote  RemoteConfig `yaml:"remote" envPrefix:"REMOTE_"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendVault
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(BackendVault, BackendRemote)),
	); err != nil {
		return err
	}
	if c.Backend == BackendRemote {
		return c.Remote.Validate()
	}
	return nil
}

// RemoteConfig configures the remote notes API client.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Token   string        `yaml:"token" env:"TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// SyncInterval is how often the index is reconciled with the remote API.
	SyncInterval time.Duration `yaml:"sync_interval" env:"SYNC_INTERVAL"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.SyncInterval, validation.Required, validation.Min(time.Second)),
	)
}

// ReviewConfig holds scheduling settings.
type ReviewConfig struct {
	// Timezone is an IANA name; empty means the host's local zone.
	Timezone        string        `yaml:"timezone" env:"TIMEZONE"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL"`
	DefaultHours    int           `yaml:"default_hours" env:"DEFAULT_HOURS"`
}

// Validate validates the review configuration.
func (c *ReviewConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.RefreshInterval, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.DefaultHours, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *ReviewConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("review: unknown timezone %q", c.Timezone), err)
	}
	return loc, nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./revue.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Notes: NotesConfig{
			Backend: BackendVault,
			Remote: RemoteConfig{
				Timeout:      15 * time.Second,
				SyncInterval: time.Minute,
			},
		},
		Review: ReviewConfig{
			RefreshInterval: time.Second,
			DefaultHours:    12,
		},
	}
}
