// Package config provides signed session configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// SessionConfig holds configuration for signed session tokens.
// Sessions are signed only when Secret is set.
type SessionConfig struct {
	Secret   string
	TTLHours int
}

// NewSessionConfig creates a session configuration from environment variables.
// It reads SESSION_SECRET (optional) and SESSION_TTL_HOURS (default: 24).
func NewSessionConfig() (*SessionConfig, error) {
	ttlStr := os.Getenv("SESSION_TTL_HOURS")
	if ttlStr == "" {
		ttlStr = "24" // default
	}

	ttlHours, err := strconv.Atoi(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %v", err)
	}

	config := &SessionConfig{
		Secret:   os.Getenv("SESSION_SECRET"),
		TTLHours: ttlHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *SessionConfig) normalize() error {
	if c.TTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be at least 1 hour, got: %d", c.TTLHours)
	}
	if c.Secret != "" && len(c.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	return nil
}

// Signed reports whether signed sessions are enabled.
func (c *SessionConfig) Signed() bool {
	return c.Secret != ""
}
