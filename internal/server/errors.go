// Package server provides the HTTP API for the family activity finder demo.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/outreach"
	"github.com/jonathan/family-activities/internal/parsing"
	"github.com/jonathan/family-activities/internal/types"
)

// ErrValidation indicates a request that failed a check outside the data contracts
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnauthorized indicates a failed demo gate login
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string {
	return "invalid password"
}

// ErrNotFound indicates an unknown resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrNotConfigured indicates a route whose backing service is not set up
type ErrNotConfigured struct {
	Service string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured", e.Service)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		contractErr   *types.ContractError
		validationErr *ErrValidation
		unauthorized  *ErrUnauthorized
		notFound      *ErrNotFound
		notConfigured *ErrNotConfigured
		apiErr        *parsing.APICallError
		parseErr      *parsing.ParseError
		profileErr    *parsing.ValidationError
		generationErr *outreach.GenerationError
	)

	// Collaborator errors first: they may wrap a contract violation of model output
	switch {
	case errors.As(err, &apiErr), errors.As(err, &parseErr), errors.As(err, &generationErr):
		return http.StatusBadGateway
	case errors.As(err, &profileErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &contractErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, db.ErrTableNotFound):
		return http.StatusNotFound
	case errors.As(err, &notConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody returns the envelope message and details for an error.
// Contract violations get the generic message with per-field details; everything
// else, database errors included, is reported with its own text.
func errorBody(err error) (string, any) {
	if HTTPStatus(err) != http.StatusBadRequest {
		var profileErr *parsing.ValidationError
		if errors.As(err, &profileErr) && len(profileErr.Fields) > 0 {
			return err.Error(), profileErr.Fields
		}
		return err.Error(), nil
	}
	var contractErr *types.ContractError
	if errors.As(err, &contractErr) {
		return types.InvalidDataMessage, contractErr.Fields
	}
	var validationErr *ErrValidation
	if errors.As(err, &validationErr) {
		return types.InvalidDataMessage, []types.FieldError{{Field: validationErr.Field, Rule: "invalid", Message: validationErr.Message}}
	}
	return err.Error(), nil
}
