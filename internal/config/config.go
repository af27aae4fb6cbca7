// Package config holds the runtime configuration for the accounts API.
// Everything is sourced from the environment once at startup and handed to
// the rest of the system as a plain struct; no package reads env vars ad hoc.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the fully resolved server configuration.
//
// AccessTokenTTL and RefreshTokenTTL are derived from the raw TTL strings
// via ParseTTLSeconds and are always positive.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	AppName     string `env:"APP_NAME" envDefault:"Accounts API"`
	Env         string `env:"ENV" envDefault:"DEV"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	JWTSecret       string `env:"JWT_SECRET" envDefault:"dev-secret-do-not-use"`
	AccessTokenTTL  string `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL string `env:"REFRESH_TOKEN_TTL" envDefault:"7d"`

	DefaultUserEmail    string `env:"DEFAULT_USER_EMAIL"`
	DefaultUserPassword string `env:"DEFAULT_USER_PASSWORD"`

	AccessTokenValidity  time.Duration `env:"-"`
	RefreshTokenValidity time.Duration `env:"-"`
}

// Load parses the environment and resolves the token TTLs.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AccessTokenValidity = time.Duration(ParseTTLSeconds(cfg.AccessTokenTTL, DefaultAccessTTLSeconds)) * time.Second
	cfg.RefreshTokenValidity = time.Duration(ParseTTLSeconds(cfg.RefreshTokenTTL, DefaultRefreshTTLSeconds)) * time.Second
	return cfg, nil
}
