package vitalsync

import (
	"os"
	"time"

	"github.com/hyperengineering/vitalsync/internal/store"
)

// DefaultDailyCutoff is the time-of-day anchor for the once-daily deferred
// sync. The deferred trigger fires at day's end and syncs yesterday's date.
const DefaultDailyCutoff = "23:59"

// Config configures the vitalsync client.
type Config struct {
	// LocalPath is the path to the local SQLite database.
	LocalPath string

	// RemoteURL is the base URL of the remote document store.
	// If empty, the client operates in offline-only mode.
	RemoteURL string

	// APIKey authenticates with the remote document store.
	APIKey string

	// DeviceID identifies this device instance on remote writes.
	// Defaults to hostname if not set.
	DeviceID string

	// SyncInterval is the foreground sync period (Trigger B).
	// Defaults to 1 hour.
	SyncInterval time.Duration

	// DailyCutoff is the HH:MM local time anchoring the once-daily
	// deferred sync (Trigger A). Defaults to 23:59.
	DailyCutoff string

	// AutoSync starts the scheduler automatically when the client is
	// created. DefaultConfig enables it; a zero Config leaves it off, and
	// WithDefaults does not change it.
	AutoSync bool

	// Debug enables verbose logging of remote store communications.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	hostname, _ := os.Hostname()
	return Config{
		LocalPath:    store.DefaultDBPath(),
		SyncInterval: time.Hour,
		DailyCutoff:  DefaultDailyCutoff,
		AutoSync:     true,
		DeviceID:     hostname,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	VITALSYNC_DB_PATH    → LocalPath
//	VITALSYNC_REMOTE_URL → RemoteURL
//	VITALSYNC_API_KEY    → APIKey
//	VITALSYNC_DEVICE_ID  → DeviceID
//	VITALSYNC_DEBUG      → Debug (any non-empty value enables)
//	VITALSYNC_DEBUG_LOG  → DebugLogPath
func ConfigFromEnv() Config {
	return Config{
		LocalPath:    os.Getenv("VITALSYNC_DB_PATH"),
		RemoteURL:    os.Getenv("VITALSYNC_REMOTE_URL"),
		APIKey:       os.Getenv("VITALSYNC_API_KEY"),
		DeviceID:     os.Getenv("VITALSYNC_DEVICE_ID"),
		Debug:        os.Getenv("VITALSYNC_DEBUG") != "",
		DebugLogPath: os.Getenv("VITALSYNC_DEBUG_LOG"),
	}
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "required: path to SQLite database"}
	}

	if c.RemoteURL != "" && c.APIKey == "" {
		return &ValidationError{Field: "APIKey", Message: "required when RemoteURL is set"}
	}

	if c.SyncInterval < 0 {
		return &ValidationError{Field: "SyncInterval", Message: "must be non-negative"}
	}

	if c.DailyCutoff != "" {
		if _, err := time.Parse("15:04", c.DailyCutoff); err != nil {
			return &ValidationError{Field: "DailyCutoff", Message: "must be HH:MM"}
		}
	}

	return nil
}

// IsOffline returns true if the client operates in offline-only mode.
// Offline mode is determined by RemoteURL being empty.
func (c Config) IsOffline() bool {
	return c.RemoteURL == ""
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.LocalPath == "" {
		c.LocalPath = defaults.LocalPath
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = defaults.SyncInterval
	}
	if c.DailyCutoff == "" {
		c.DailyCutoff = defaults.DailyCutoff
	}
	if c.DeviceID == "" {
		c.DeviceID = defaults.DeviceID
	}

	return c
}
