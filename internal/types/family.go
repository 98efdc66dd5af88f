package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/family-activities/internal/schemas"
)

// AdultRole is the relationship of an adult to the children in the household
type AdultRole string

// Adult roles
const (
	RoleParent    AdultRole = "parent"
	RoleGuardian  AdultRole = "guardian"
	RoleCaregiver AdultRole = "caregiver"
)

// ScheduleSlot is a coarse availability window
type ScheduleSlot string

// Schedule slots
const (
	SlotWeekdayMorning   ScheduleSlot = "weekday_morning"
	SlotWeekdayAfternoon ScheduleSlot = "weekday_afternoon"
	SlotWeekdayEvening   ScheduleSlot = "weekday_evening"
	SlotWeekendMorning   ScheduleSlot = "weekend_morning"
	SlotWeekendAfternoon ScheduleSlot = "weekend_afternoon"
	SlotWeekendEvening   ScheduleSlot = "weekend_evening"
)

// Flexibility describes how strictly a family's schedule constraint must be honored
type Flexibility string

// Flexibility levels
const (
	FlexibilityStrict           Flexibility = "strict"
	FlexibilitySomewhatFlexible Flexibility = "somewhat_flexible"
	FlexibilityVeryFlexible     Flexibility = "very_flexible"
)

// DefaultCurrency is applied to budgets and prices that omit a currency
const DefaultCurrency = "USD"

// FamilyProfile is the structured representation of a household derived from free text
type FamilyProfile struct {
	Adults      []Adult     `json:"adults" validate:"min=1,max=4,dive"`
	Children    []Child     `json:"children" validate:"min=1,max=8,dive"`
	Location    Location    `json:"location"`
	Preferences Preferences `json:"preferences"`
	Notes       string      `json:"notes,omitempty"`
}

// Adult is a caregiver in the household
type Adult struct {
	Name  string    `json:"name" validate:"min=1,max=50"`
	Email string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Role  AdultRole `json:"role" validate:"oneof=parent guardian caregiver"`
}

// Child is a child the family wants activities for
type Child struct {
	Name         string   `json:"name" validate:"min=1,max=50"`
	Age          int      `json:"age" validate:"gte=0,lte=18"`
	Interests    []string `json:"interests" validate:"max=15"`
	SpecialNeeds string   `json:"specialNeeds,omitempty"`
	Allergies    []string `json:"allergies" validate:"max=10"`
}

// Location is where the family lives and whether they need help getting to activities
type Location struct {
	Neighborhood        string `json:"neighborhood,omitempty"`
	ZipCode             string `json:"zipCode,omitempty"`
	City                string `json:"city,omitempty"`
	TransportationNeeds bool   `json:"transportationNeeds"`
}

// Preferences are optional constraints on recommended activities
type Preferences struct {
	Budget             *BudgetRange        `json:"budget,omitempty"`
	Schedule           []ScheduleSlot      `json:"schedule,omitempty" validate:"omitempty,max=6,dive,oneof=weekday_morning weekday_afternoon weekday_evening weekend_morning weekend_afternoon weekend_evening"`
	ScheduleConstraint *ScheduleConstraint `json:"scheduleConstraint,omitempty"`
	ActivityTypes      []string            `json:"activityTypes" validate:"max=20"`
	Languages          []string            `json:"languages" validate:"max=5"`
}

// BudgetRange is the amount a family is willing to spend per activity
type BudgetRange struct {
	Min      float64 `json:"min" validate:"gte=0"`
	Max      float64 `json:"max" validate:"gte=0,gtefield=Min"`
	Currency string  `json:"currency" validate:"len=3"`
}

// ScheduleConstraint is a fine-grained availability description
type ScheduleConstraint struct {
	TimeSlots         []TimeSlot  `json:"timeSlots,omitempty" validate:"omitempty,max=21,dive"`
	EarliestStart     string      `json:"earliestStart,omitempty" validate:"omitempty,hhmm"`
	LatestEnd         string      `json:"latestEnd,omitempty" validate:"omitempty,hhmm"`
	PreferredDuration *int        `json:"preferredDuration,omitempty" validate:"omitempty,gt=0,lte=720"`
	Restrictions      []string    `json:"restrictions,omitempty"`
	Flexibility       Flexibility `json:"flexibility" validate:"oneof=strict somewhat_flexible very_flexible"`
}

// UnmarshalJSON accepts any whole JSON number for age, so 7 and 7.0 decode alike
func (c *Child) UnmarshalJSON(data []byte) error {
	type plain Child
	aux := struct {
		*plain
		Age json.Number `json:"age"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Age == "" {
		return nil
	}
	age, err := wholeNumber("age", aux.Age)
	if err != nil {
		return err
	}
	c.Age = age
	return nil
}

// UnmarshalJSON accepts any whole JSON number for preferredDuration
func (c *ScheduleConstraint) UnmarshalJSON(data []byte) error {
	type plain ScheduleConstraint
	aux := struct {
		*plain
		PreferredDuration *json.Number `json:"preferredDuration,omitempty"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.PreferredDuration == nil {
		c.PreferredDuration = nil
		return nil
	}
	minutes, err := wholeNumber("preferredDuration", *aux.PreferredDuration)
	if err != nil {
		return err
	}
	c.PreferredDuration = &minutes
	return nil
}

func wholeNumber(field string, n json.Number) (int, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a whole number, got %s", field, n)
	}
	return int(f), nil
}

// TimeSlot is an explicit window on a given day
type TimeSlot struct {
	Day   string `json:"day" validate:"oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Start string `json:"start" validate:"hhmm"`
	End   string `json:"end" validate:"hhmm"`
}

// ParseFamilyProfile decodes and validates a FamilyProfile document
func ParseFamilyProfile(data []byte) (*FamilyProfile, error) {
	var profile FamilyProfile
	if err := decode(schemas.FamilyProfile, data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ApplyDefaults fills documented defaults and normalizes empty lists
func (p *FamilyProfile) ApplyDefaults() {
	for i := range p.Adults {
		if p.Adults[i].Role == "" {
			p.Adults[i].Role = RoleParent
		}
	}
	for i := range p.Children {
		p.Children[i].Interests = nonNil(p.Children[i].Interests)
		p.Children[i].Allergies = nonNil(p.Children[i].Allergies)
	}
	p.Preferences.ApplyDefaults()
}

// ApplyDefaults fills documented defaults for preferences
func (p *Preferences) ApplyDefaults() {
	if p.Budget != nil && p.Budget.Currency == "" {
		p.Budget.Currency = DefaultCurrency
	}
	if sc := p.ScheduleConstraint; sc != nil {
		if sc.Flexibility == "" {
			sc.Flexibility = FlexibilitySomewhatFlexible
		}
		sc.TimeSlots = nilIfEmpty(sc.TimeSlots)
		sc.Restrictions = nilIfEmpty(sc.Restrictions)
	}
	p.Schedule = nilIfEmpty(p.Schedule)
	p.ActivityTypes = nonNil(p.ActivityTypes)
	p.Languages = nonNil(p.Languages)
}

// Ages returns the ages of all children in order
func (p *FamilyProfile) Ages() []int {
	ages := make([]int, 0, len(p.Children))
	for _, c := range p.Children {
		ages = append(ages, c.Age)
	}
	return ages
}

// AllInterests returns the distinct, lowercased interests of all children plus preferred activity types
func (p *FamilyProfile) AllInterests() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, c := range p.Children {
		for _, i := range c.Interests {
			add(i)
		}
	}
	for _, a := range p.Preferences.ActivityTypes {
		add(a)
	}
	return out
}

// timeSlotRules rejects slots that end before they start
func timeSlotRules(sl validator.StructLevel) {
	slot := sl.Current().Interface().(TimeSlot)
	if clockPattern.MatchString(slot.Start) && clockPattern.MatchString(slot.End) && slot.End <= slot.Start {
		sl.ReportError(slot.End, "end", "End", "gtfield", "start")
	}
}

// scheduleConstraintRules rejects an earliest start that is not before the latest end
func scheduleConstraintRules(sl validator.StructLevel) {
	sc := sl.Current().Interface().(ScheduleConstraint)
	if sc.EarliestStart == "" || sc.LatestEnd == "" {
		return
	}
	if clockPattern.MatchString(sc.EarliestStart) && clockPattern.MatchString(sc.LatestEnd) && sc.LatestEnd <= sc.EarliestStart {
		sl.ReportError(sc.LatestEnd, "latestEnd", "LatestEnd", "gtfield", "earliestStart")
	}
}

// nonNil turns a missing list into an empty one so that it serializes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// nilIfEmpty drops empty lists that serialize with omitempty.
func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
