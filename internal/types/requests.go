package types

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/family-activities/internal/schemas"
)

// ModelChoice selects the model tier used by the parsing and outreach collaborators
type ModelChoice string

// Model choices
const (
	ModelStandard ModelChoice = "standard"
	ModelAdvanced ModelChoice = "advanced"
)

// Option defaults
const (
	DefaultLimit           = 10
	MaxLimit               = 50
	DefaultDiversityWeight = 0.3
)

// RequestOptions tune how a request is served
type RequestOptions struct {
	UseCache         *bool       `json:"useCache,omitempty"`
	Model            ModelChoice `json:"model" validate:"oneof=standard advanced"`
	Limit            *int        `json:"limit,omitempty" validate:"omitempty,gte=1,lte=50"`
	DiversityWeight  *float64    `json:"diversityWeight,omitempty" validate:"omitempty,gte=0,lte=1"`
	IncludeEmbedding bool        `json:"includeEmbedding,omitempty"`
}

// ApplyDefaults fills unset options
func (o *RequestOptions) ApplyDefaults() {
	if o.UseCache == nil {
		useCache := true
		o.UseCache = &useCache
	}
	if o.Model == "" {
		o.Model = ModelStandard
	}
	if o.Limit == nil {
		limit := DefaultLimit
		o.Limit = &limit
	}
	if o.DiversityWeight == nil {
		weight := DefaultDiversityWeight
		o.DiversityWeight = &weight
	}
}

// CacheEnabled reports whether cached results may be served
func (o RequestOptions) CacheEnabled() bool {
	return o.UseCache == nil || *o.UseCache
}

// ResultLimit returns the requested number of results
func (o RequestOptions) ResultLimit() int {
	if o.Limit == nil {
		return DefaultLimit
	}
	return *o.Limit
}

// Diversity returns the diversity weight
func (o RequestOptions) Diversity() float64 {
	if o.DiversityWeight == nil {
		return DefaultDiversityWeight
	}
	return *o.DiversityWeight
}

// FamilyParsingRequest asks the parsing collaborator to structure a free-text description
type FamilyParsingRequest struct {
	Description string         `json:"description" validate:"min=10,max=5000"`
	Options     RequestOptions `json:"options"`
}

// ParseFamilyParsingRequest decodes and validates a parsing request
func ParseFamilyParsingRequest(data []byte) (*FamilyParsingRequest, error) {
	var req FamilyParsingRequest
	if err := decode(schemas.FamilyParsingRequest, data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ApplyDefaults fills option defaults
func (r *FamilyParsingRequest) ApplyDefaults() {
	r.Options.ApplyDefaults()
}

// RecommendationFilters narrow the catalog before scoring
type RecommendationFilters struct {
	Categories    []string `json:"categories,omitempty" validate:"max=20"`
	MaxPrice      *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	AgeMin        *int     `json:"ageMin,omitempty" validate:"omitempty,gte=0,lte=18"`
	AgeMax        *int     `json:"ageMax,omitempty" validate:"omitempty,gte=0,lte=18"`
	Neighborhoods []string `json:"neighborhoods,omitempty" validate:"max=20"`
	FreeOnly      bool     `json:"freeOnly,omitempty"`
	VerifiedOnly  bool     `json:"verifiedOnly,omitempty"`
}

// Names lists the filters that are set, in a stable order
func (f *RecommendationFilters) Names() []string {
	names := []string{}
	if f == nil {
		return names
	}
	if len(f.Categories) > 0 {
		names = append(names, "categories")
	}
	if f.MaxPrice != nil {
		names = append(names, "maxPrice")
	}
	if f.AgeMin != nil {
		names = append(names, "ageMin")
	}
	if f.AgeMax != nil {
		names = append(names, "ageMax")
	}
	if len(f.Neighborhoods) > 0 {
		names = append(names, "neighborhoods")
	}
	if f.FreeOnly {
		names = append(names, "freeOnly")
	}
	if f.VerifiedOnly {
		names = append(names, "verifiedOnly")
	}
	return names
}

// RecommendationRequest asks for recommendations for a family profile or a free-text query
type RecommendationRequest struct {
	FamilyProfile *FamilyProfile         `json:"familyProfile,omitempty"`
	Query         string                 `json:"query,omitempty" validate:"omitempty,min=10,max=2000"`
	Filters       *RecommendationFilters `json:"filters,omitempty"`
	Options       RequestOptions         `json:"options"`
}

// ParseRecommendationRequest decodes and validates a recommendation request.
// An embedded family profile is checked against the FamilyProfile contract as well.
func ParseRecommendationRequest(data []byte) (*RecommendationRequest, error) {
	var raw struct {
		FamilyProfile json.RawMessage `json:"familyProfile"`
	}
	if err := json.Unmarshal(data, &raw); err == nil && len(raw.FamilyProfile) > 0 && string(raw.FamilyProfile) != "null" {
		if err := schemas.Validate(schemas.FamilyProfile, raw.FamilyProfile); err != nil {
			if ve, ok := err.(*schemas.ValidationError); ok {
				fields := make([]FieldError, 0, len(ve.Errors))
				for _, f := range ve.Errors {
					fields = append(fields, FieldError{Field: "familyProfile." + f.Field, Rule: "schema", Message: f.Message})
				}
				return nil, &ContractError{Contract: "RecommendationRequest", Fields: fields}
			}
			return nil, err
		}
	}

	var req RecommendationRequest
	if err := decode(schemas.RecommendationRequest, data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ApplyDefaults fills defaults on the embedded profile and the options.
// Query is left as submitted; its length bounds count every character sent.
func (r *RecommendationRequest) ApplyDefaults() {
	if r.FamilyProfile != nil {
		r.FamilyProfile.ApplyDefaults()
	}
	r.Options.ApplyDefaults()
}

// recommendationRequestRules requires a family profile or a query
func recommendationRequestRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(RecommendationRequest)
	if req.FamilyProfile == nil && strings.TrimSpace(req.Query) == "" {
		sl.ReportError(req.Query, "query", "Query", "required_without", "familyProfile")
	}
	if f := req.Filters; f != nil && f.AgeMin != nil && f.AgeMax != nil && *f.AgeMax < *f.AgeMin {
		sl.ReportError(*f.AgeMax, "filters.ageMax", "AgeMax", "gtefield", "ageMin")
	}
}

// EmailGenerationRequest asks the outreach collaborator for one email per recommendation
type EmailGenerationRequest struct {
	FamilyProfile   *FamilyProfile   `json:"familyProfile" validate:"required"`
	Recommendations []Recommendation `json:"recommendations" validate:"min=1,max=5,dive"`
	Tone            EmailTone        `json:"tone" validate:"oneof=professional casual urgent"`
	Priority        EmailPriority    `json:"priority" validate:"oneof=low medium high"`
	SenderName      string           `json:"senderName,omitempty" validate:"max=100"`
	Options         RequestOptions   `json:"options"`
}

// ParseEmailGenerationRequest decodes and validates an email generation request
func ParseEmailGenerationRequest(data []byte) (*EmailGenerationRequest, error) {
	var req EmailGenerationRequest
	if err := decode(schemas.EmailGenerationRequest, data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ApplyDefaults fills tone, priority and option defaults
func (r *EmailGenerationRequest) ApplyDefaults() {
	if r.FamilyProfile != nil {
		r.FamilyProfile.ApplyDefaults()
	}
	if r.Tone == "" {
		r.Tone = ToneProfessional
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	r.Options.ApplyDefaults()
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
