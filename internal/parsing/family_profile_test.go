package parsing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/family-activities/internal/llm"
	"github.com/jonathan/family-activities/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Completion, error)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Completion, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return &llm.Completion{Text: "{}", Model: "mock-model"}, nil
}

func (m *MockLLMClient) Close() error { return nil }

const modelProfileJSON = "```json\n" + `{
	"adults": [{"name": " Maria ", "role": "parent"}],
	"children": [
		{"name": "Leo", "age": 7, "interests": ["Swim", "LEGOS", "swimming"]},
		{"name": "Ana", "age": 12, "interests": ["futbol"], "allergies": ["Peanuts", "peanuts"]}
	],
	"location": {"neighborhood": "Mission", "city": "San Francisco"},
	"preferences": {"activityTypes": ["Sports"], "schedule": ["weekend_morning"]}
}` + "\n```"

func parsingRequest(t *testing.T, body string) *types.FamilyParsingRequest {
	t.Helper()
	req, err := types.ParseFamilyParsingRequest([]byte(body))
	require.NoError(t, err)
	return req
}

func TestFamilyParser_Parse(t *testing.T) {
	var gotPrompt string
	var gotTier llm.ModelTier
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (*llm.Completion, error) {
			gotPrompt = prompt
			gotTier = tier
			return &llm.Completion{Text: modelProfileJSON, Model: "mock-model", PromptTokens: 300, CompletionTokens: 120, TotalTokens: 420}, nil
		},
	}

	parser := NewFamilyParser(client)
	req := parsingRequest(t, `{"description": "I'm Maria. Leo is 7 and loves swimming and legos; Ana is 12 and plays soccer.", "options": {"model": "advanced"}}`)

	result, err := parser.Parse(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, llm.TierAdvanced, gotTier)
	assert.Contains(t, gotPrompt, "Leo is 7 and loves swimming")
	assert.Contains(t, gotPrompt, "\"children\":")
	assert.Contains(t, gotPrompt, "in USD unless")

	profile := result.Profile
	assert.Equal(t, "Maria", profile.Adults[0].Name)
	assert.Equal(t, []string{"swimming", "lego"}, profile.Children[0].Interests)
	assert.Equal(t, []string{"soccer"}, profile.Children[1].Interests)
	assert.Equal(t, []string{"Peanuts"}, profile.Children[1].Allergies)
	assert.Equal(t, []string{"sports"}, profile.Preferences.ActivityTypes)

	require.NotNil(t, result.Usage)
	assert.Equal(t, 420, result.Usage.TotalTokens)
	assert.Equal(t, "mock-model", result.Usage.Model)
}

func TestFamilyParser_DefaultTierIsStandard(t *testing.T) {
	var gotTier llm.ModelTier
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, tier llm.ModelTier) (*llm.Completion, error) {
			gotTier = tier
			return &llm.Completion{Text: modelProfileJSON}, nil
		},
	}

	_, err := NewFamilyParser(client).Parse(context.Background(), parsingRequest(t, `{"description": "two kids who swim"}`))
	require.NoError(t, err)
	assert.Equal(t, llm.TierStandard, gotTier)
}

func TestFamilyParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		apiErr   error
		check    func(*testing.T, error)
	}{
		{
			name:   "provider failure",
			apiErr: errors.New("connection refused"),
			check: func(t *testing.T, err error) {
				var apiErr *APICallError
				require.ErrorAs(t, err, &apiErr)
				assert.Contains(t, err.Error(), "connection refused")
			},
		},
		{
			name:     "not JSON",
			response: "Sorry, I can't help with that.",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:     "truncated JSON",
			response: `{"adults": [{"name": "A"}], "children": [`,
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:     "no children found",
			response: `{"adults": [{"name": "A"}], "children": []}`,
			check: func(t *testing.T, err error) {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "children", validationErr.Field)
			},
		},
		{
			name:     "age out of range",
			response: `{"adults": [{"name": "A"}], "children": [{"name": "B", "age": 21}]}`,
			check: func(t *testing.T, err error) {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "children[0].age", validationErr.Field)
			},
		},
		{
			name:     "age missing",
			response: `{"adults": [{"name": "A"}], "children": [{"name": "B"}]}`,
			check: func(t *testing.T, err error) {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "schema", validationErr.Fields[0].Rule)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockLLMClient{
				GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (*llm.Completion, error) {
					if tt.apiErr != nil {
						return nil, tt.apiErr
					}
					return &llm.Completion{Text: tt.response}, nil
				},
			}

			_, err := NewFamilyParser(client).Parse(context.Background(), parsingRequest(t, `{"description": "a family of four"}`))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFamilyParser_NoClient(t *testing.T) {
	_, err := NewFamilyParser(nil).Parse(context.Background(), parsingRequest(t, `{"description": "a family of four"}`))
	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, strings.Contains(err.Error(), "no LLM provider"))
}
