// Package types provides the validated data contracts exchanged between the client UI and the
// parsing, recommendation and outreach collaborators.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/family-activities/internal/schemas"
)

// InvalidDataMessage is the generic message surfaced for any contract violation.
const InvalidDataMessage = "Invalid request data"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator with custom tags and struct rules registered.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON field names instead of Go field names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return clockPattern.MatchString(fl.Field().String())
		})

		v.RegisterStructValidation(recommendationRequestRules, RecommendationRequest{})
		v.RegisterStructValidation(timeSlotRules, TimeSlot{})
		v.RegisterStructValidation(scheduleConstraintRules, ScheduleConstraint{})

		validate = v
	})
	return validate
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message,omitempty"`
}

// ContractError is returned when a value violates one of the data contracts.
type ContractError struct {
	Contract string
	Fields   []FieldError
}

func (e *ContractError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Contract, InvalidDataMessage)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Message != "" {
			parts = append(parts, fmt.Sprintf("%s (%s: %s)", f.Field, f.Rule, f.Message))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
		}
	}
	return fmt.Sprintf("%s: %s: %s", e.Contract, InvalidDataMessage, strings.Join(parts, "; "))
}

// Validate checks the bounds and enums of a contract value.
func Validate(v any) error {
	if err := validatorInstance().Struct(v); err != nil {
		return toContractError(contractName(v), err)
	}
	return nil
}

func contractName(v any) string {
	name := fmt.Sprintf("%T", v)
	name = strings.TrimPrefix(name, "*")
	return strings.TrimPrefix(name, "types.")
}

func toContractError(contract string, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ContractError{Contract: contract, Fields: []FieldError{{Field: "(root)", Rule: "invalid", Message: err.Error()}}}
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{
			Field:   trimNamespace(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: fe.Param(),
		})
	}
	return &ContractError{Contract: contract, Fields: fields}
}

// trimNamespace drops the root struct name: "FamilyProfile.children[0].age" -> "children[0].age".
func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

// decode checks the wire shape, decodes into out, applies defaults and validates bounds.
func decode(contract schemas.Contract, data []byte, out defaulter) error {
	if err := schemas.Validate(contract, data); err != nil {
		if ve, ok := err.(*schemas.ValidationError); ok {
			fields := make([]FieldError, 0, len(ve.Errors))
			for _, f := range ve.Errors {
				fields = append(fields, FieldError{Field: f.Field, Rule: "schema", Message: f.Message})
			}
			return &ContractError{Contract: contractName(out), Fields: fields}
		}
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ContractError{Contract: contractName(out), Fields: []FieldError{{Field: "(root)", Rule: "decode", Message: err.Error()}}}
	}

	out.ApplyDefaults()
	return Validate(out)
}

// defaulter is implemented by contracts that fill optional fields with their documented defaults.
type defaulter interface {
	ApplyDefaults()
}
