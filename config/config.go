package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Booking    BookingConfig    `yaml:"booking"`
	Push       PushConfig       `yaml:"push"`
	Mail       MailConfig       `yaml:"mail"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	AdminToken      string  `yaml:"admin_token"`
}

// BookingConfig holds the slot and hold parameters for the booking core.
type BookingConfig struct {
	SlotDurationMinutes     int           `yaml:"slot_duration_minutes"`
	HoldDurationHours       int           `yaml:"hold_duration_hours"`
	Timezone                string        `yaml:"timezone"`
	MaterializeHorizonDays  int           `yaml:"materialize_horizon_days"`
	HoldSweeperEnabled      bool          `yaml:"hold_sweeper_enabled"`
	HoldSweeperIntervalSecs int           `yaml:"hold_sweeper_interval_seconds"`
	HoldSweeperInterval     time.Duration `yaml:"-"` // Ignored by YAML parser
}

// SlotDuration returns the configured slot duration.
func (b *BookingConfig) SlotDuration() time.Duration {
	return time.Duration(b.SlotDurationMinutes) * time.Minute
}

// HoldDuration returns how long a requested slot stays on hold.
func (b *BookingConfig) HoldDuration() time.Duration {
	return time.Duration(b.HoldDurationHours) * time.Hour
}

// MaterializeHorizon returns how far ahead slots are materialized when no
// explicit range is given.
func (b *BookingConfig) MaterializeHorizon() time.Duration {
	return time.Duration(b.MaterializeHorizonDays) * 24 * time.Hour
}

// Location resolves the configured studio timezone.
func (b *BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// PushConfig holds the VAPID keys for staff web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// MailConfig holds the SMTP settings for visitor-facing booking emails.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Booking.SlotDurationMinutes <= 0 {
		cfg.Booking.SlotDurationMinutes = 60
	}

	if cfg.Booking.HoldDurationHours <= 0 {
		cfg.Booking.HoldDurationHours = 2
	}

	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "UTC"
	}

	if cfg.Booking.MaterializeHorizonDays <= 0 {
		cfg.Booking.MaterializeHorizonDays = 30
	}

	if cfg.Booking.HoldSweeperIntervalSecs <= 0 {
		cfg.Booking.HoldSweeperIntervalSecs = 300
	}
	cfg.Booking.HoldSweeperInterval = time.Duration(cfg.Booking.HoldSweeperIntervalSecs) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
