package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// StoreConfig selects the live-session store backend. "memory" keeps active
// sessions in-process (single instance); "redis" keeps them in Redis so a
// restart does not drop running games.
type StoreConfig struct {
	Backend string `yaml:"backend"` // memory | redis
}

type GameConfig struct {
	// SubmissionBaseURL prefixes the onchain submission link built for
	// completed sessions.
	SubmissionBaseURL string `yaml:"submission_base_url"`
	// RecordAborted keeps a partial, marked history record for sessions the
	// facilitator ends early.
	RecordAborted bool `yaml:"record_aborted"`
}

// NotifyConfig drives the post-commit notification dispatch. WebhookURL is
// optional; when empty, resolutions are only logged.
type NotifyConfig struct {
	Workers    int    `yaml:"workers"`
	WebhookURL string `yaml:"webhook_url"`
}

type SecurityConfig struct {
	// AdminSecret signs the HS256 admin tokens guarding override endpoints.
	AdminSecret string        `yaml:"admin_secret"`
	AdminTTL    time.Duration `yaml:"admin_ttl"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Game     GameConfig     `yaml:"game"`
	Notify   NotifyConfig   `yaml:"notify"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Game.SubmissionBaseURL == "" {
		cfg.Game.SubmissionBaseURL = "https://zao.frapps.xyz"
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 4
	}
	if cfg.Security.AdminTTL <= 0 {
		cfg.Security.AdminTTL = 30 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Store.Backend == "redis" && cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required for store.backend=redis")
	}
	if cfg.Store.Backend != "memory" && cfg.Store.Backend != "redis" {
		return nil, fmt.Errorf("unknown store.backend %q", cfg.Store.Backend)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
