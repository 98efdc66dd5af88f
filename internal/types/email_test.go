package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTimeMinutes(t *testing.T) {
	assert.Equal(t, 1, ReadTimeMinutes(0))
	assert.Equal(t, 1, ReadTimeMinutes(1))
	assert.Equal(t, 1, ReadTimeMinutes(200))
	assert.Equal(t, 2, ReadTimeMinutes(201))
	assert.Equal(t, 3, ReadTimeMinutes(450))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 4, WordCount("Hello there,\n\nkind   regards"))
}

const validEmailMetadata = `{"tone": "casual", "priority": "high", "expectedResponse": "action_required", "wordCount": 8, "estimatedReadTime": 1}`

func emailJSON(subject, body, metadata string) string {
	return `{"subject": "` + subject + `", "body": "` + body + `", "metadata": ` + metadata + `}`
}

func TestParseGeneratedEmail(t *testing.T) {
	email, err := ParseGeneratedEmail([]byte(emailJSON("  Swim lessons for Leo  ", `Hi Coach,\nWe would love to enroll Leo.`, validEmailMetadata)))
	require.NoError(t, err)

	assert.Equal(t, "Swim lessons for Leo", email.Subject)
	assert.Equal(t, ToneCasual, email.Metadata.Tone)
	assert.Equal(t, PriorityHigh, email.Metadata.Priority)
	assert.Equal(t, ResponseActionRequired, email.Metadata.ExpectedResponse)
	assert.Equal(t, 8, email.Metadata.WordCount)
	assert.Equal(t, 1, email.Metadata.EstimatedReadTime)
}

func TestParseGeneratedEmail_KeepsSuppliedMetadata(t *testing.T) {
	metadata := `{"tone": "professional", "priority": "low", "expectedResponse": "none", "wordCount": 40, "estimatedReadTime": 3}`
	email, err := ParseGeneratedEmail([]byte(emailJSON("hi", "hello there", metadata)))
	require.NoError(t, err)

	assert.Equal(t, 40, email.Metadata.WordCount)
	assert.Equal(t, 3, email.Metadata.EstimatedReadTime)
}

func TestParseGeneratedEmail_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"empty subject", emailJSON("", "hello", validEmailMetadata), "subject"},
		{"long subject", emailJSON(strings.Repeat("s", 201), "hello", validEmailMetadata), "subject"},
		{"blank body", emailJSON("hi", "   ", validEmailMetadata), "body"},
		{"long body", emailJSON("hi", strings.Repeat("b", 5001), validEmailMetadata), "body"},
		{"bad tone", emailJSON("hi", "hello", `{"tone": "angry", "priority": "low", "expectedResponse": "none", "wordCount": 1, "estimatedReadTime": 1}`), "metadata.tone"},
		{"bad priority", emailJSON("hi", "hello", `{"tone": "casual", "priority": "asap", "expectedResponse": "none", "wordCount": 1, "estimatedReadTime": 1}`), "metadata.priority"},
		{"bad expected response", emailJSON("hi", "hello", `{"tone": "casual", "priority": "low", "expectedResponse": "maybe", "wordCount": 1, "estimatedReadTime": 1}`), "metadata.expectedResponse"},
		{"negative word count", emailJSON("hi", "hello there", `{"tone": "casual", "priority": "low", "expectedResponse": "none", "wordCount": -5, "estimatedReadTime": 1}`), "metadata.wordCount"},
		{"zero word count", emailJSON("hi", "hello there", `{"tone": "casual", "priority": "low", "expectedResponse": "none", "wordCount": 0, "estimatedReadTime": 1}`), "metadata.wordCount"},
		{"zero read time", emailJSON("hi", "hello there", `{"tone": "casual", "priority": "low", "expectedResponse": "none", "wordCount": 2, "estimatedReadTime": 0}`), "metadata.estimatedReadTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGeneratedEmail([]byte(tt.input))
			ce := requireContractError(t, err)
			assert.Contains(t, fieldNames(ce), tt.field)
		})
	}
}

func TestParseGeneratedEmail_MetadataRequired(t *testing.T) {
	_, err := ParseGeneratedEmail([]byte(`{"subject": "hi", "body": "hello there"}`))
	requireContractError(t, err)
	assert.Contains(t, err.Error(), "metadata")

	_, err = ParseGeneratedEmail([]byte(`{"subject": "hi", "body": "hello there", "metadata": {"tone": "casual"}}`))
	requireContractError(t, err)
	assert.Contains(t, err.Error(), "wordCount")
}

func TestGeneratedEmail_FillMetadata(t *testing.T) {
	email := &GeneratedEmail{Subject: " Hi ", Body: "  one two three  ", Metadata: EmailMetadata{WordCount: 99}}
	email.FillMetadata()

	assert.Equal(t, "Hi", email.Subject)
	assert.Equal(t, ToneProfessional, email.Metadata.Tone)
	assert.Equal(t, PriorityMedium, email.Metadata.Priority)
	assert.Equal(t, ResponseAcknowledgment, email.Metadata.ExpectedResponse)
	assert.Equal(t, 3, email.Metadata.WordCount)
	assert.Equal(t, 1, email.Metadata.EstimatedReadTime)
	assert.NoError(t, Validate(email))
}

func TestUsage_Add(t *testing.T) {
	total := &Usage{}
	total.Add(&Usage{Model: "gemini", PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	total.Add(nil)
	total.Add(&Usage{Model: "other", PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2})

	assert.Equal(t, Usage{Model: "gemini", PromptTokens: 11, CompletionTokens: 6, TotalTokens: 17}, *total)
}

func TestEnvelopes(t *testing.T) {
	ok := NewSuccess(map[string]int{"count": 1})
	assert.True(t, ok.Success)

	before := time.Now().UTC().Add(-time.Second)
	failed := NewError(InvalidDataMessage, []FieldError{{Field: "query", Rule: "min"}}, "req-1")
	assert.False(t, failed.Success)
	assert.Equal(t, "req-1", failed.RequestID)
	assert.True(t, failed.Timestamp.After(before))
}
