// Package outreach writes emails from a family to the providers of recommended activities.
package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jonathan/family-activities/internal/llm"
	"github.com/jonathan/family-activities/internal/prompts"
	"github.com/jonathan/family-activities/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultSenderName signs emails when the request names no sender
const DefaultSenderName = "A local parent"

// maxConcurrent caps simultaneous LLM calls for one request
const maxConcurrent = 3

// Result holds one email per recommendation, in request order
type Result struct {
	Emails []types.GeneratedEmail
	Usage  *types.Usage
}

// Generator produces outreach emails, with an LLM when one is configured and from templates otherwise
type Generator struct {
	client llm.Client
}

// NewGenerator creates a generator. client may be nil.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Generate writes one email per recommendation concurrently
func (g *Generator) Generate(ctx context.Context, req *types.EmailGenerationRequest) (*Result, error) {
	emails := make([]types.GeneratedEmail, len(req.Recommendations))
	usage := &types.Usage{}
	var usageMu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrent)

	for i := range req.Recommendations {
		rec := &req.Recommendations[i]
		eg.Go(func() error {
			email, u, err := g.generateOne(egCtx, req, rec)
			if err != nil {
				return err
			}
			emails[i] = *email
			if u != nil {
				usageMu.Lock()
				usage.Add(u)
				usageMu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Emails: emails}
	if g.client != nil {
		result.Usage = usage
	}
	log.Printf("[outreach] generated %d email(s), llm=%t", len(emails), g.client != nil)
	return result, nil
}

func (g *Generator) generateOne(ctx context.Context, req *types.EmailGenerationRequest, rec *types.Recommendation) (*types.GeneratedEmail, *types.Usage, error) {
	sender := strings.TrimSpace(req.SenderName)
	if sender == "" {
		sender = DefaultSenderName
	}

	var (
		email *types.GeneratedEmail
		usage *types.Usage
		err   error
	)
	if g.client == nil {
		email, err = renderTemplateEmail(req.FamilyProfile, rec, req.Tone, req.Priority, sender)
	} else {
		email, usage, err = g.generateWithLLM(ctx, req, rec, sender)
	}
	if err != nil {
		return nil, nil, err
	}

	email.HTMLBody, err = renderHTML(email.Body)
	if err != nil {
		return nil, nil, err
	}
	email.FillMetadata()
	if err := types.Validate(email); err != nil {
		return nil, nil, &GenerationError{ProviderID: rec.ProviderID, Message: "email violates contract", Cause: err}
	}
	return email, usage, nil
}

// llmEmail is the JSON object the outreach prompt asks for
type llmEmail struct {
	Subject          string `json:"subject"`
	Body             string `json:"body"`
	ExpectedResponse string `json:"expectedResponse"`
}

func (g *Generator) generateWithLLM(ctx context.Context, req *types.EmailGenerationRequest, rec *types.Recommendation, sender string) (*types.GeneratedEmail, *types.Usage, error) {
	prompt, err := buildPrompt(req, rec, sender)
	if err != nil {
		return nil, nil, err
	}

	completion, err := g.client.GenerateJSON(ctx, prompt, llm.TierFor(string(req.Options.Model)))
	if err != nil {
		return nil, nil, &GenerationError{ProviderID: rec.ProviderID, Message: "failed to generate content from LLM", Cause: err}
	}

	var out llmEmail
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(completion.Text)), &out); err != nil {
		return nil, nil, &GenerationError{ProviderID: rec.ProviderID, Message: "failed to parse JSON response", Cause: err}
	}

	email := &types.GeneratedEmail{
		Subject: out.Subject,
		Body:    out.Body,
		Metadata: types.EmailMetadata{
			Tone:             req.Tone,
			Priority:         req.Priority,
			ExpectedResponse: parseExpectedResponse(out.ExpectedResponse, req.Tone),
		},
	}
	usage := &types.Usage{
		Model:            completion.Model,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
		TotalTokens:      completion.TotalTokens,
	}
	return email, usage, nil
}

func buildPrompt(req *types.EmailGenerationRequest, rec *types.Recommendation, sender string) (string, error) {
	guidance, err := prompts.Get("outreach.json", "tone-"+string(req.Tone))
	if err != nil {
		return "", fmt.Errorf("failed to load tone guidance: %w", err)
	}

	summary := familySentence(req.FamilyProfile)
	if needs := needsSentence(req.FamilyProfile); needs != "" {
		summary += " " + needs
	}

	prompt, err := prompts.Render("outreach.json", "outreach-email", map[string]string{
		"SenderName":    sender,
		"FamilySummary": summary,
		"ActivityName":  activityName(rec),
		"ProviderID":    rec.ProviderID,
		"MatchReasons":  strings.Join(reasonsFor(rec), "; "),
		"Tone":          string(req.Tone),
		"ToneGuidance":  guidance,
		"Priority":      string(req.Priority),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build outreach prompt: %w", err)
	}
	return prompt, nil
}

// parseExpectedResponse accepts the model's answer when it is a known value
func parseExpectedResponse(s string, tone types.EmailTone) types.ExpectedResponse {
	switch r := types.ExpectedResponse(strings.TrimSpace(strings.ToLower(s))); r {
	case types.ResponseNone, types.ResponseAcknowledgment, types.ResponseActionRequired:
		return r
	}
	return expectedResponseFor(tone)
}
