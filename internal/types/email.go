package types

import (
	"math"
	"strings"

	"github.com/jonathan/family-activities/internal/schemas"
)

// EmailTone is the register of a generated email
type EmailTone string

// Email tones
const (
	ToneProfessional EmailTone = "professional"
	ToneCasual       EmailTone = "casual"
	ToneUrgent       EmailTone = "urgent"
)

// EmailPriority is how important a generated email is
type EmailPriority string

// Email priorities
const (
	PriorityLow    EmailPriority = "low"
	PriorityMedium EmailPriority = "medium"
	PriorityHigh   EmailPriority = "high"
)

// ExpectedResponse is what the sender expects back
type ExpectedResponse string

// Expected responses
const (
	ResponseNone           ExpectedResponse = "none"
	ResponseAcknowledgment ExpectedResponse = "acknowledgment"
	ResponseActionRequired ExpectedResponse = "action_required"
)

const wordsPerMinute = 200

// GeneratedEmail is an outreach email produced for a recommendation
type GeneratedEmail struct {
	Subject  string        `json:"subject" validate:"min=1,max=200"`
	Body     string        `json:"body" validate:"min=1,max=5000"`
	HTMLBody string        `json:"htmlBody,omitempty"`
	Metadata EmailMetadata `json:"metadata"`
}

// EmailMetadata describes a generated email
type EmailMetadata struct {
	Tone              EmailTone        `json:"tone" validate:"oneof=professional casual urgent"`
	Priority          EmailPriority    `json:"priority" validate:"oneof=low medium high"`
	ExpectedResponse  ExpectedResponse `json:"expectedResponse" validate:"oneof=none acknowledgment action_required"`
	WordCount         int              `json:"wordCount" validate:"gt=0"`
	EstimatedReadTime int              `json:"estimatedReadTime" validate:"gt=0"`
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadTimeMinutes estimates reading time at 200 words per minute, rounded up, at least one minute
func ReadTimeMinutes(words int) int {
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ParseGeneratedEmail decodes and validates a generated email.
// Metadata is required and checked as supplied.
func ParseGeneratedEmail(data []byte) (*GeneratedEmail, error) {
	var email GeneratedEmail
	if err := decode(schemas.GeneratedEmail, data, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// ApplyDefaults trims the subject and body
func (e *GeneratedEmail) ApplyDefaults() {
	e.Subject = strings.TrimSpace(e.Subject)
	e.Body = strings.TrimSpace(e.Body)
}

// FillMetadata completes an email built in Go: unset enums get their defaults
// and the body statistics are derived from the body.
func (e *GeneratedEmail) FillMetadata() {
	e.ApplyDefaults()
	if e.Metadata.Tone == "" {
		e.Metadata.Tone = ToneProfessional
	}
	if e.Metadata.Priority == "" {
		e.Metadata.Priority = PriorityMedium
	}
	if e.Metadata.ExpectedResponse == "" {
		e.Metadata.ExpectedResponse = ResponseAcknowledgment
	}
	e.Metadata.WordCount = WordCount(e.Body)
	e.Metadata.EstimatedReadTime = ReadTimeMinutes(e.Metadata.WordCount)
}
