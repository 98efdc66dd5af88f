package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenRouterClient implements Client over OpenRouter's OpenAI-compatible API
type OpenRouterClient struct {
	client *openai.Client
	config *Config
}

// NewOpenRouterClient creates a new OpenRouter client.
// SiteURL and AppName from the config are sent as HTTP-Referer and X-Title.
func NewOpenRouterClient(config *Config, apiKey string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return newOpenRouterClient(config, apiKey, OpenRouterBaseURL), nil
}

func newOpenRouterClient(config *Config, apiKey, baseURL string) *OpenRouterClient {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
		Transport: &attributionTransport{
			base:    http.DefaultTransport,
			referer: config.SiteURL,
			title:   config.AppName,
		},
	}

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// GenerateJSON generates JSON content using the specified model tier
func (c *OpenRouterClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (*Completion, error) {
	completion, err := c.generate(ctx, prompt, tier, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
	if err != nil {
		return nil, err
	}
	completion.Text = CleanJSONBlock(completion.Text)
	return completion, nil
}

func (c *OpenRouterClient) generate(ctx context.Context, prompt string, tier ModelTier, format *openai.ChatCompletionResponseFormat) (*Completion, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature:    0.1,
		ResponseFormat: format,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	model := resp.Model
	if model == "" {
		model = modelName
	}

	return &Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// Close releases resources held by the client
func (c *OpenRouterClient) Close() error {
	return nil
}

// attributionTransport adds OpenRouter attribution headers to every request
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(req)
}
