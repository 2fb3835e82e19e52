// Package config defines the service configuration and its defaults.
package config

import (
	"fmt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DBDriver selects the database/sql driver: "sqlite3" (cgo) or "sqlite" (pure Go).
	DBDriver string `koanf:"db_driver"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// RecentLimit is the size of the initial feed window; MaxRecentLimit caps ?limit.
	RecentLimit    int `koanf:"recent_limit"`
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// PerfectWindowMS is the release-to-apex tolerance for a perfect shot.
	PerfectWindowMS float64 `koanf:"perfect_window_ms"`

	// Jump detector thresholds in raw accelerometer units.
	JumpStartAz int64 `koanf:"jump_start_az"`
	LandingAz   int64 `koanf:"landing_az"`

	// MQTT ingest. An empty broker disables it.
	MQTTBroker   string `koanf:"mqtt_broker"`
	MQTTPort     int    `koanf:"mqtt_port"`
	MQTTUser     string `koanf:"mqtt_user"`
	MQTTPassword string `koanf:"mqtt_password"`
	MQTTClientID string `koanf:"mqtt_client_id"`

	TopicGloveRaw  string `koanf:"topic_glove_raw"`
	TopicFootRaw   string `koanf:"topic_foot_raw"`
	TopicHoopEvent string `koanf:"topic_hoop_event"`

	// HTTPLogging starts the server with request logging on.
	HTTPLogging bool `koanf:"http_logging"`

	// FeedURL is the public URL of the feed, used for the QR code and the watch command.
	FeedURL string `koanf:"feed_url"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8000",
		DBDriver:        "sqlite3",
		DBPath:          "shots.db",
		RecentLimit:     20,
		MaxRecentLimit:  100,
		PerfectWindowMS: 60,
		JumpStartAz:     20000,
		LandingAz:       16384,
		MQTTPort:        1883,
		MQTTClientID:    "swishfeed",
		TopicGloveRaw:   "basket/glove/raw",
		TopicFootRaw:    "basket/foot/raw",
		TopicHoopEvent:  "basket/hoop/event",
		FeedURL:         "http://localhost:8000",
	}
}

// MQTTEnabled reports whether a broker is configured.
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// Validate checks invariants between fields.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBDriver != "sqlite3" && c.DBDriver != "sqlite" {
		return fmt.Errorf("%w: db_driver must be sqlite3 or sqlite, got %q", ErrInvalidConfig, c.DBDriver)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("%w: recent_limit must be at least 1", ErrInvalidConfig)
	}
	if c.MaxRecentLimit < c.RecentLimit {
		return fmt.Errorf("%w: max_recent_limit must be >= recent_limit", ErrInvalidConfig)
	}
	if c.PerfectWindowMS < 0 {
		return fmt.Errorf("%w: perfect_window_ms must not be negative", ErrInvalidConfig)
	}
	if c.LandingAz >= c.JumpStartAz {
		return fmt.Errorf("%w: landing_az must be below jump_start_az", ErrInvalidConfig)
	}
	if c.MQTTEnabled() && (c.MQTTPort < 1 || c.MQTTPort > 65535) {
		return fmt.Errorf("%w: mqtt_port out of range", ErrInvalidConfig)
	}
	return nil
}
