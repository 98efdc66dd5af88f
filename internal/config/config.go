// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDiversityWeight is used when neither the config file nor a flag sets one
const DefaultDiversityWeight = 0.3

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	CatalogFile string `json:"catalog_file,omitempty"` // JSON array of ActivityMetadata used by seed and offline recommend
	FamilyFile  string `json:"family_file,omitempty"`  // Free-text family description or FamilyProfile JSON

	// Service
	Port        int    `json:"port,omitempty"`         // HTTP port for serve
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SiteURL     string `json:"site_url,omitempty"`     // Sent to OpenRouter as HTTP-Referer

	// Models
	OpenRouterAPIKey string `json:"openrouter_api_key,omitempty"`
	GeminiAPIKey     string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey     string `json:"openai_api_key,omitempty"` // Embeddings

	// Recommendation defaults
	Limit           int      `json:"limit,omitempty"`            // Results per request (1-50)
	DiversityWeight *float64 `json:"diversity_weight,omitempty"` // Category diversity weight (0.0-1.0); 0 disables it

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by each command after merging with flags.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Limit < 0 || c.Limit > 50 {
		return fmt.Errorf("config error: 'limit' must be between 1 and 50")
	}
	if w := c.DiversityWeight; w != nil && (*w < 0 || *w > 1) {
		return fmt.Errorf("config error: 'diversity_weight' must be between 0.0 and 1.0")
	}

	if c.CatalogFile != "" {
		if _, err := os.Stat(c.CatalogFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", c.CatalogFile)
		}
	}
	if c.FamilyFile != "" {
		if _, err := os.Stat(c.FamilyFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: family file not found: %s", c.FamilyFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.CatalogFile == "" {
		result.CatalogFile = defaults.CatalogFile
	}
	if result.FamilyFile == "" {
		result.FamilyFile = defaults.FamilyFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SiteURL == "" {
		result.SiteURL = defaults.SiteURL
	}
	if result.OpenRouterAPIKey == "" {
		result.OpenRouterAPIKey = defaults.OpenRouterAPIKey
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Limit == 0 {
		if defaults.Limit > 0 {
			result.Limit = defaults.Limit
		} else {
			result.Limit = 10
		}
	}
	if result.DiversityWeight == nil {
		weight := DefaultDiversityWeight
		if defaults.DiversityWeight != nil {
			weight = *defaults.DiversityWeight
		}
		result.DiversityWeight = &weight
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
