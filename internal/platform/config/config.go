// Package config loads process configuration from the environment so main
// stays lean. Parsing is struct-tag driven; validation that belongs to a
// component (e.g. signing key strength) happens at that component's
// constructor.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration.
type Config struct {
	Addr         string   `env:"USERDIR_ADDR" envDefault:":8080"`
	DatabaseURL  string   `env:"DATABASE_URL"`
	RedisURL     string   `env:"REDIS_URL"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic   string   `env:"AUDIT_TOPIC"`

	JWT      JWT
	Lockout  Lockout
	Accounts Accounts
}

// JWT configures token issuance.
type JWT struct {
	// SigningKey must be at least 32 bytes; the token codec rejects
	// anything shorter at construction time.
	SigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	TokenTTL   time.Duration `env:"JWT_TOKEN_TTL" envDefault:"4h"`
}

// Lockout configures the login attempt limiter.
type Lockout struct {
	MaxFailures  int           `env:"LOCKOUT_MAX_FAILURES" envDefault:"3"`
	Window       time.Duration `env:"LOCKOUT_WINDOW" envDefault:"15m"`
	LockDuration time.Duration `env:"LOCKOUT_DURATION" envDefault:"15m"`
}

// Accounts configures account validation rules and secret hashing.
type Accounts struct {
	MinBaseSalary float64 `env:"MIN_BASE_SALARY" envDefault:"0"`
	MaxBaseSalary float64 `env:"MAX_BASE_SALARY" envDefault:"15000000"`
	BcryptCost    int     `env:"BCRYPT_COST" envDefault:"10"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Lockout.MaxFailures <= 0 {
		return Config{}, fmt.Errorf("LOCKOUT_MAX_FAILURES must be positive, got %d", cfg.Lockout.MaxFailures)
	}
	if cfg.Accounts.MaxBaseSalary < cfg.Accounts.MinBaseSalary {
		return Config{}, fmt.Errorf("MAX_BASE_SALARY %v is below MIN_BASE_SALARY %v",
			cfg.Accounts.MaxBaseSalary, cfg.Accounts.MinBaseSalary)
	}
	return cfg, nil
}
