package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"database_url": "postgres://demo@localhost/demo",
		"port": 8080,
		"site_url": "https://families.example.com",
		"limit": 20,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://demo@localhost/demo", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://families.example.com", cfg.SiteURL)
	assert.Equal(t, 20, cfg.Limit)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"negative port", Config{Port: -1}, "port"},
		{"limit too high", Config{Limit: 51}, "limit"},
		{"diversity above 1", Config{DiversityWeight: floatPtr(1.2)}, "diversity_weight"},
		{"negative diversity", Config{DiversityWeight: floatPtr(-0.1)}, "diversity_weight"},
		{"missing catalog", Config{CatalogFile: "/nonexistent/catalog.json"}, "catalog file not found"},
		{"missing family file", Config{FamilyFile: "/nonexistent/family.txt"}, "family file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(catalog, []byte(`[]`), 0644))

	cfg := &Config{Port: 3000, Limit: 50, DiversityWeight: floatPtr(1), CatalogFile: catalog}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		DatabaseURL: "postgres://default",
		SiteURL:     "http://localhost:3000",
		Port:        8080,
		Limit:       25,
	}

	partial := Config{
		DatabaseURL:  "postgres://custom",
		GeminiAPIKey: "gemini-key",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "postgres://custom", merged.DatabaseURL)
	assert.Equal(t, "gemini-key", merged.GeminiAPIKey)

	// Default values should fill in empty fields
	assert.Equal(t, "http://localhost:3000", merged.SiteURL)
	assert.Equal(t, 8080, merged.Port)
	assert.Equal(t, 25, merged.Limit)
	require.NotNil(t, merged.DiversityWeight)
	assert.Equal(t, 0.3, *merged.DiversityWeight)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{CatalogFile: "catalog.json"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "catalog.json", merged.CatalogFile)
	assert.Equal(t, 10, merged.Limit)
	require.NotNil(t, merged.DiversityWeight)
	assert.Equal(t, 0.3, *merged.DiversityWeight)
}

func TestMergeWithDefaults_ZeroDiversityIsKept(t *testing.T) {
	cfg := Config{DiversityWeight: floatPtr(0)}

	merged := cfg.MergeWithDefaults(Config{DiversityWeight: floatPtr(0.8)})
	require.NotNil(t, merged.DiversityWeight)
	assert.Equal(t, 0.0, *merged.DiversityWeight)
}

func TestLoadConfig_ZeroDiversity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"diversity_weight": 0}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.DiversityWeight)
	assert.Equal(t, 0.0, *cfg.DiversityWeight)
}

func floatPtr(v float64) *float64 { return &v }
