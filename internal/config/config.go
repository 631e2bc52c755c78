package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backend selectors
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config is the process configuration, parsed from the environment
type Config struct {
	// ListenAddr is the TCP address the game server binds
	ListenAddr string `env:"SPOTCELL_LISTEN_ADDR" envDefault:":5001"`

	// IdentityBaseURL is the HTTPS base of the delegated identity service
	IdentityBaseURL string `env:"SPOTCELL_IDENTITY_URL" envDefault:"https://localhost:62966"`
	// IdentityInsecureSkipVerify disables certificate validation on the
	// identity call; development only
	IdentityInsecureSkipVerify bool          `env:"SPOTCELL_IDENTITY_INSECURE" envDefault:"false"`
	IdentityTimeout            time.Duration `env:"SPOTCELL_IDENTITY_TIMEOUT" envDefault:"10s"`

	// StorageType selects the lobby directory backend: memory or redis
	StorageType string `env:"SPOTCELL_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"SPOTCELL_REDIS_URL"`

	// ReaperInterval is how often abandoned and finished games are swept
	ReaperInterval time.Duration `env:"SPOTCELL_REAPER_INTERVAL" envDefault:"5m"`

	// OpsAddr is the HTTP health/status listen address; empty disables it
	OpsAddr string `env:"SPOTCELL_OPS_ADDR" envDefault:""`
}

// Load parses and validates configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	switch cfg.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("SPOTCELL_REDIS_URL required when SPOTCELL_STORAGE_TYPE=%s", StorageTypeRedis)
		}
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	if cfg.ReaperInterval <= 0 {
		return nil, fmt.Errorf("reaper interval must be positive, got %s", cfg.ReaperInterval)
	}
	return cfg, nil
}
