// Package config loads environment-driven settings once at startup.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment-driven settings for the service. It is loaded
// once in main and immutable thereafter.
type Config struct {
	Address       string        // HTTP listen address
	RedisURL      string        // Redis connection URL for the TTL store
	DatabaseDSN   string        // PostgreSQL connection string
	JWTSecret     []byte        // HMAC signing secret, the trust anchor for credentials
	JWTIssuer     string        // Issuer claim on minted credentials
	CredentialTTL time.Duration // Bearer credential validity
	SessionTTL    time.Duration // Opaque session token validity
	SweepInterval time.Duration // Expired-session sweep cadence
}

const (
	defaultAddress       = ":9000"
	defaultRedisURL      = "redis://localhost:6379/0"
	defaultIssuer        = "cerberus"
	defaultCredentialTTL = time.Hour
	defaultSessionTTL    = 24 * time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// Load reads configuration from the environment, with .env support for
// development. The JWT secret has no default: compromise of it forges every
// credential, so it must be set deliberately.
func Load() (*Config, error) {
	// Does not override already-set variables, preserving OS env precedence
	_ = godotenv.Load()

	cfg := &Config{
		Address:       envOr("CERBERUS_ADDRESS", defaultAddress),
		RedisURL:      envOr("REDIS_URL", defaultRedisURL),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:     envOr("JWT_ISSUER", defaultIssuer),
		CredentialTTL: defaultCredentialTTL,
		SessionTTL:    defaultSessionTTL,
		SweepInterval: defaultSweepInterval,
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DATABASE_DSN must be set")
	}

	var err error
	if cfg.CredentialTTL, err = durationOr("JWT_TTL", defaultCredentialTTL); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationOr("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationOr("SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
