package outreach

import "fmt"

// TemplateError represents an error parsing or executing an email template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// GenerationError represents a failure producing an email from the LLM
type GenerationError struct {
	ProviderID string
	Message    string
	Cause      error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("email generation failed for provider %s: %s: %v", e.ProviderID, e.Message, e.Cause)
	}
	return fmt.Sprintf("email generation failed for provider %s: %s", e.ProviderID, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
