package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenRouter, config.Provider)
	assert.Equal(t, "openai/gpt-4o-mini", config.GetModel(TierStandard))
	assert.Equal(t, "anthropic/claude-3.5-sonnet", config.GetModel(TierAdvanced))
	assert.NotEmpty(t, config.AppName)
}

func TestDefaultGeminiConfig(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	config.SiteURL = "https://families.example.com"
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, "https://families.example.com", newConfig.SiteURL)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierStandard, TierFor("standard"))
	assert.Equal(t, TierAdvanced, TierFor("advanced"))
	assert.Equal(t, TierLite, TierFor("lite"))
	assert.Equal(t, TierStandard, TierFor(""))
	assert.Equal(t, TierStandard, TierFor("premium"))
}
