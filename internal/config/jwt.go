package config

import (
	"fmt"
	"os"
	"time"
)

// DefaultJWTIssuer is used when JWT_ISSUER is unset.
const DefaultJWTIssuer = "panel-peace"

const (
	minSecretLength    = 16
	maxExpirationHours = 24 * 30
)

// JWTConfig holds the signing settings for session tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default 24)
// and JWT_ISSUER (default panel-peace).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	hours, err := envInt("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: hours,
		Issuer:          envString("JWT_ISSUER", DefaultJWTIssuer),
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func (c *JWTConfig) normalize() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.ExpirationHours < 1 || c.ExpirationHours > maxExpirationHours {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be between 1 and %d, got %d", maxExpirationHours, c.ExpirationHours)
	}
	return nil
}
