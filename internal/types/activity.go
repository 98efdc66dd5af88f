package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonathan/family-activities/internal/schemas"
)

// PricingType describes how an activity is billed
type PricingType string

// Pricing types
const (
	PricingPerSession PricingType = "per_session"
	PricingPerMonth   PricingType = "per_month"
	PricingPerProgram PricingType = "per_program"
	PricingFree       PricingType = "free"
)

// ScheduleFlexibility describes how fixed a provider's schedule is
type ScheduleFlexibility string

// Provider schedule flexibility levels
const (
	ScheduleFixed        ScheduleFlexibility = "fixed"
	ScheduleFlexible     ScheduleFlexibility = "flexible"
	ScheduleVeryFlexible ScheduleFlexibility = "very_flexible"
)

// ActivityMetadata is a provider or program record from the catalog
type ActivityMetadata struct {
	ProviderID   int64                 `json:"providerId" validate:"gt=0"`
	ProgramID    *int64                `json:"programId,omitempty" validate:"omitempty,gt=0"`
	Name         string                `json:"name" validate:"min=1,max=200"`
	Description  string                `json:"description" validate:"max=2000"`
	Category     string                `json:"category" validate:"min=1,max=100"`
	Subcategory  string                `json:"subcategory,omitempty" validate:"max=100"`
	Interests    []string              `json:"interests"`
	AgeRange     AgeRange              `json:"ageRange"`
	Location     ActivityLocation      `json:"location"`
	Schedule     ActivitySchedule      `json:"schedule"`
	Pricing      Pricing               `json:"pricing"`
	Provider     ProviderInfo          `json:"provider"`
	Capacity     Capacity              `json:"capacity"`
	Requirements *ActivityRequirements `json:"requirements,omitempty"`
	Tags         []string              `json:"tags"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// AgeRange is the inclusive age band an activity accepts
type AgeRange struct {
	Min int `json:"min" validate:"gte=0,lte=18"`
	Max int `json:"max" validate:"gte=0,lte=18,gtefield=Min"`
}

// ActivityLocation is where an activity takes place
type ActivityLocation struct {
	Address      string   `json:"address,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	City         string   `json:"city,omitempty"`
	ZipCode      string   `json:"zipCode,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// ActivitySchedule is when an activity meets
type ActivitySchedule struct {
	Days        []string            `json:"days"`
	Times       []string            `json:"times"`
	Recurring   bool                `json:"recurring"`
	Flexibility ScheduleFlexibility `json:"flexibility" validate:"oneof=fixed flexible very_flexible"`
}

// Pricing is what an activity costs
type Pricing struct {
	Type     PricingType `json:"type" validate:"oneof=per_session per_month per_program free"`
	Amount   *float64    `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency string      `json:"currency" validate:"len=3"`
	Range    *PriceRange `json:"range,omitempty"`
}

// PriceRange is a min-max price band
type PriceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gte=0,gtefield=Min"`
}

// ProviderInfo describes who runs an activity
type ProviderInfo struct {
	Name            string  `json:"name" validate:"min=1,max=200"`
	Rating          float64 `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount     int     `json:"reviewCount" validate:"gte=0"`
	Verified        bool    `json:"verified"`
	ExperienceYears int     `json:"experienceYears" validate:"gte=0"`
}

// Capacity describes enrollment limits
type Capacity struct {
	MaxParticipants   int  `json:"maxParticipants,omitempty" validate:"gte=0"`
	CurrentEnrollment int  `json:"currentEnrollment,omitempty" validate:"gte=0"`
	WaitlistAvailable bool `json:"waitlistAvailable"`
}

// ActivityRequirements lists what a participant needs
type ActivityRequirements struct {
	Equipment           []string `json:"equipment,omitempty"`
	SkillLevel          string   `json:"skillLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced all"`
	Prerequisites       []string `json:"prerequisites,omitempty"`
	ParentParticipation bool     `json:"parentParticipation"`
}

// ActivityRef identifies a catalog entry
type ActivityRef struct {
	ProviderID int64
	ProgramID  *int64
}

// Key returns a stable map key for the reference
func (r ActivityRef) Key() string {
	if r.ProgramID == nil {
		return strconv.FormatInt(r.ProviderID, 10)
	}
	return fmt.Sprintf("%d:%d", r.ProviderID, *r.ProgramID)
}

// Ref returns the catalog reference of the activity
func (a *ActivityMetadata) Ref() ActivityRef {
	return ActivityRef{ProviderID: a.ProviderID, ProgramID: a.ProgramID}
}

// IsFree reports whether the activity costs nothing
func (a *ActivityMetadata) IsFree() bool {
	if a.Pricing.Type == PricingFree {
		return true
	}
	return a.Pricing.Amount != nil && *a.Pricing.Amount == 0
}

// LowestPrice returns the cheapest known price, or false when pricing has no amount
func (a *ActivityMetadata) LowestPrice() (float64, bool) {
	if a.IsFree() {
		return 0, true
	}
	if a.Pricing.Amount != nil {
		return *a.Pricing.Amount, true
	}
	if a.Pricing.Range != nil {
		return a.Pricing.Range.Min, true
	}
	return 0, false
}

// HasCoordinates reports whether the activity can be placed on a map
func (a *ActivityMetadata) HasCoordinates() bool {
	return a.Location.Latitude != nil && a.Location.Longitude != nil
}

// ParseActivityMetadata decodes and validates a catalog record
func ParseActivityMetadata(data []byte) (*ActivityMetadata, error) {
	var activity ActivityMetadata
	if err := decode(schemas.ActivityMetadata, data, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ApplyDefaults fills documented defaults and normalizes empty lists
func (a *ActivityMetadata) ApplyDefaults() {
	if a.Pricing.Currency == "" {
		a.Pricing.Currency = DefaultCurrency
	}
	if a.Schedule.Flexibility == "" {
		a.Schedule.Flexibility = ScheduleFixed
	}
	a.Interests = nonNil(a.Interests)
	a.Tags = nonNil(a.Tags)
	a.Schedule.Days = nonNil(a.Schedule.Days)
	a.Schedule.Times = nonNil(a.Schedule.Times)
}
