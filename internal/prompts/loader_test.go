package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("parsing.json", "extract-family-profile")
	require.NoError(t, err)
	assert.Contains(t, prompt, "structured family profile")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("outreach.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet("outreach.json", "tone-casual"))
	})
}

func TestFormat(t *testing.T) {
	result := Format("Hello {{.Name}}, welcome to {{.Activity}}!", map[string]string{
		"Name":     "Leo",
		"Activity": "swim class",
	})
	assert.Equal(t, "Hello Leo, welcome to swim class!", result)

	// Placeholder remains when no value is given
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", map[string]string{}))
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render("parsing.json", "extract-family-profile", map[string]string{"Currency": "USD"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "in USD unless")
	assert.NotContains(t, prompt, "{{.")

	_, err = Render("outreach.json", "outreach-email", map[string]string{"SenderName": "Maria"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ActivityName")
	assert.Contains(t, err.Error(), "FamilySummary")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("outreach.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"outreach-email", "tone-casual", "tone-professional", "tone-urgent"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("parsing.json", "extract-family-profile")
	require.NoError(t, err)

	prompt2, err := Get("parsing.json", "extract-family-profile")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
