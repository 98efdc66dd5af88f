// Package schemas checks the wire shape of inbound JSON documents against embedded JSON Schemas.
// Shape means key presence and JSON types; value bounds are enforced by the types package.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed contracts/*.json
var contractFiles embed.FS

// Contract names an embedded schema document.
type Contract string

// Contracts shipped with the service.
const (
	FamilyProfile          Contract = "family_profile"
	FamilyParsingRequest   Contract = "family_parsing_request"
	RecommendationRequest  Contract = "recommendation_request"
	RequestOptions         Contract = "request_options"
	EmailGenerationRequest Contract = "email_generation_request"
	GeneratedEmail         Contract = "generated_email"
	ActivityMetadata       Contract = "activity_metadata"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Contract Contract
	Errors   []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Contract Contract
	Message  string
	Cause    error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Contract, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Contract, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Contract))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	compiled   = make(map[Contract]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// load compiles a contract schema once and caches it.
func load(contract Contract) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[contract]; ok {
		return schema, nil
	}

	data, err := contractFiles.ReadFile("contracts/" + string(contract) + ".json")
	if err != nil {
		return nil, &SchemaLoadError{Contract: contract, Message: "schema not found", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Contract: contract, Message: "invalid schema document", Cause: err}
	}

	compiled[contract] = schema
	return schema, nil
}

// Validate checks a JSON document against the named contract.
// Malformed JSON is reported as a ValidationError on the root.
func Validate(contract Contract, document []byte) error {
	schema, err := load(contract)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationError{
			Contract: contract,
			Errors:   []FieldError{{Field: "(root)", Message: "malformed JSON: " + err.Error()}},
		}
	}

	if result.Valid() {
		return nil
	}

	return buildValidationError(contract, result.Errors())
}

func buildValidationError(contract Contract, descs []gojsonschema.ResultError) *ValidationError {
	validationErr := &ValidationError{
		Contract: contract,
		Errors:   make([]FieldError, 0, len(descs)),
	}

	for _, desc := range descs {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
