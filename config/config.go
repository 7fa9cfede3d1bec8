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
	Billing    BillingConfig    `yaml:"billing"`
	Rentals    RentalsConfig    `yaml:"rentals"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. Driver
// "memory" selects the in-memory store; "postgres" and "sqlite" select the
// GORM-backed store.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// BillingConfig holds the rental billing parameters.
type BillingConfig struct {
	RatePerMinute int64  `yaml:"rate_per_minute"`
	Currency      string `yaml:"currency"`
}

// RentalsConfig holds the lifecycle parameters for paused rentals.
type RentalsConfig struct {
	AutoResumeEnabled      bool          `yaml:"auto_resume_enabled"`
	AutoResumeAfterMinutes int           `yaml:"auto_resume_after_minutes"`
	ResumeCheckSeconds     int           `yaml:"resume_check_seconds"`
	AutoResumeAfter        time.Duration `yaml:"-"`
	ResumeCheckInterval    time.Duration `yaml:"-"`
}

// AuthConfig holds the signing parameters for session bearer tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
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

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "memory"
	}

	if cfg.Billing.RatePerMinute <= 0 {
		cfg.Billing.RatePerMinute = 3
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "KSH"
	}

	if cfg.Rentals.AutoResumeAfterMinutes <= 0 {
		cfg.Rentals.AutoResumeAfterMinutes = 20
	}
	if cfg.Rentals.ResumeCheckSeconds <= 0 {
		cfg.Rentals.ResumeCheckSeconds = 60
	}
	cfg.Rentals.AutoResumeAfter = time.Duration(cfg.Rentals.AutoResumeAfterMinutes) * time.Minute
	cfg.Rentals.ResumeCheckInterval = time.Duration(cfg.Rentals.ResumeCheckSeconds) * time.Second

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
