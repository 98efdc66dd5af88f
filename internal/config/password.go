// Package config provides demo gate password configuration and hashing functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// DefaultDemoPassword is the shared secret used when POC_PASSWORD is not set.
const DefaultDemoPassword = "family-demo"

// GateConfig holds the shared secret for the demo gate.
// A bcrypt hash, when present, replaces the literal comparison.
type GateConfig struct {
	Password     string
	PasswordHash string
	BcryptCost   int
}

// NewGateConfig creates the gate configuration from environment variables.
// It reads POC_PASSWORD (default: DefaultDemoPassword), POC_PASSWORD_HASH and BCRYPT_COST (default: 12).
func NewGateConfig() (*GateConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &GateConfig{
		Password:     getEnvOr("POC_PASSWORD", DefaultDemoPassword),
		PasswordHash: os.Getenv("POC_PASSWORD_HASH"),
		BcryptCost:   cost,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *GateConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
			return fmt.Errorf("invalid POC_PASSWORD_HASH: %w", err)
		}
	}
	return nil
}

// Check compares a submitted password with the configured secret.
func (c *GateConfig) Check(pw string) bool {
	if c.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw)) == nil
	}
	return pw == c.Password
}

// HashPassword hashes a password using bcrypt, for producing POC_PASSWORD_HASH.
func (c *GateConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}
