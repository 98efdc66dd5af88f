// Package parsing turns free-text family descriptions into structured FamilyProfile JSON using LLM extraction.
package parsing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/family-activities/internal/llm"
	"github.com/jonathan/family-activities/internal/prompts"
	"github.com/jonathan/family-activities/internal/types"
)

// Result is a parsed profile plus the model usage that produced it
type Result struct {
	Profile *types.FamilyProfile
	Usage   *types.Usage
}

// FamilyParser extracts FamilyProfiles with an LLM client
type FamilyParser struct {
	client llm.Client
}

// NewFamilyParser creates a parser backed by client
func NewFamilyParser(client llm.Client) *FamilyParser {
	return &FamilyParser{client: client}
}

// Parse extracts a validated FamilyProfile from a parsing request
func (p *FamilyParser) Parse(ctx context.Context, req *types.FamilyParsingRequest) (*Result, error) {
	if p.client == nil {
		return nil, &APICallError{Message: "no LLM provider configured"}
	}

	prompt, err := buildExtractionPrompt(req.Description)
	if err != nil {
		return nil, err
	}

	tier := llm.TierFor(string(req.Options.Model))
	completion, err := p.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate content from LLM",
			Cause:   err,
		}
	}

	profile, err := parseJSONResponse(completion.Text)
	if err != nil {
		return nil, err
	}

	log.Printf("[parsing] extracted %d adult(s), %d child(ren) with %s", len(profile.Adults), len(profile.Children), completion.Model)

	return &Result{
		Profile: profile,
		Usage: &types.Usage{
			Model:            completion.Model,
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
			TotalTokens:      completion.TotalTokens,
		},
	}, nil
}

// familyProfileSchema describes the expected output to the model
func familyProfileSchema() (llm.ExtractionSchema, error) {
	instructions, err := prompts.Render("parsing.json", "extract-family-profile", map[string]string{
		"Currency": types.DefaultCurrency,
	})
	if err != nil {
		return llm.ExtractionSchema{}, err
	}

	return llm.ExtractionSchema{
		Name:        "FamilyProfile",
		Description: instructions,
		Fields: []llm.SchemaField{
			{
				Name:        "adults",
				Type:        `[{"name": "string", "email": "string", "phone": "string", "role": "parent|guardian|caregiver"}]`,
				Description: "1 to 4 adults",
				Required:    true,
			},
			{
				Name:        "children",
				Type:        `[{"name": "string", "age": 0, "interests": ["string"], "specialNeeds": "string", "allergies": ["string"]}]`,
				Description: "1 to 8 children, at most 15 interests and 10 allergies each",
				Required:    true,
			},
			{
				Name:        "location",
				Type:        `{"neighborhood": "string", "zipCode": "string", "city": "string", "transportationNeeds": false}`,
				Description: "where the family lives",
			},
			{
				Name: "preferences",
				Type: `{"budget": {"min": 0, "max": 0, "currency": "USD"}, "schedule": ["weekday_afternoon"], ` +
					`"scheduleConstraint": {"timeSlots": [{"day": "monday", "start": "15:00", "end": "17:00"}], "earliestStart": "HH:MM", ` +
					`"latestEnd": "HH:MM", "preferredDuration": 60, "restrictions": ["string"], "flexibility": "strict|somewhat_flexible|very_flexible"}, ` +
					`"activityTypes": ["string"], "languages": ["string"]}`,
				Description: "omit anything not mentioned",
			},
			{
				Name:        "notes",
				Type:        `"string"`,
				Description: "anything else relevant",
			},
		},
	}, nil
}

// buildExtractionPrompt constructs the prompt for structured extraction
func buildExtractionPrompt(description string) (string, error) {
	schema, err := familyProfileSchema()
	if err != nil {
		return "", fmt.Errorf("failed to build family profile prompt: %w", err)
	}
	return llm.BuildExtractionPrompt(schema, strings.TrimSpace(description)), nil
}

// parseJSONResponse decodes, normalizes and validates the model output
func parseJSONResponse(jsonText string) (*types.FamilyProfile, error) {
	cleaned := llm.CleanJSONBlock(jsonText)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, &ParseError{Message: "response did not contain a JSON object"}
	}

	profile, err := types.ParseFamilyProfile([]byte(cleaned))
	if err != nil {
		return nil, toParsingError(err)
	}

	normalizeProfile(profile)
	if err := types.Validate(profile); err != nil {
		return nil, toParsingError(err)
	}

	return profile, nil
}

// toParsingError separates malformed output from output that breaks the FamilyProfile contract
func toParsingError(err error) error {
	var contractErr *types.ContractError
	if !errors.As(err, &contractErr) {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	if len(contractErr.Fields) == 0 {
		return &ValidationError{Message: contractErr.Error()}
	}
	if contractErr.Fields[0].Rule == "decode" {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	if contractErr.Fields[0].Field == "(root)" &&
		strings.HasPrefix(contractErr.Fields[0].Message, "malformed JSON") {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	first := contractErr.Fields[0]
	return &ValidationError{
		Field:   first.Field,
		Message: fmt.Sprintf("extracted profile violates %s (%s)", first.Rule, contractErr.Error()),
		Fields:  contractErr.Fields,
	}
}
