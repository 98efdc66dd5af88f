package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jonathan/family-activities/internal/config"
	"github.com/jonathan/family-activities/internal/types"
)

// loadCLIConfig reads an optional config file and fills the gaps from the environment
func loadCLIConfig(path string) (config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	return cfg.MergeWithDefaults(config.Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SiteURL:          os.Getenv("SITE_URL"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}), nil
}

// exportConfig publishes config file values to the environment so the
// env-driven constructors see them. Values already in the environment win.
func exportConfig(cfg config.Config) error {
	values := map[string]string{
		"DATABASE_URL":       cfg.DatabaseURL,
		"SITE_URL":           cfg.SiteURL,
		"OPENROUTER_API_KEY": cfg.OpenRouterAPIKey,
		"GEMINI_API_KEY":     cfg.GeminiAPIKey,
		"OPENAI_API_KEY":     cfg.OpenAIAPIKey,
	}
	for key, value := range values {
		if value == "" || os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// loadCatalog reads a JSON array of activities, validating each entry
func loadCatalog(path string) ([]types.ActivityMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) ([]types.ActivityMetadata, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	activities := make([]types.ActivityMetadata, 0, len(raw))
	for i, entry := range raw {
		a, err := types.ParseActivityMetadata(entry)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		activities = append(activities, *a)
	}
	return activities, nil
}

// staticCatalog serves a fixed list of activities to the recommendation engine
type staticCatalog []types.ActivityMetadata

func (c staticCatalog) ListActivities(_ context.Context) ([]types.ActivityMetadata, error) {
	return c, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintf(os.Stdout, "%s\n", data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func intPtr(v int) *int { return &v }

func formatRef(ref types.ActivityRef) string {
	if ref.ProgramID == nil {
		return "provider " + strconv.FormatInt(ref.ProviderID, 10)
	}
	return fmt.Sprintf("provider %d program %d", ref.ProviderID, *ref.ProgramID)
}
