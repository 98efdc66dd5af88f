package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validActivityJSON = `{
	"providerId": 12,
	"programId": 4,
	"name": "Mission Aquatics Learn-to-Swim",
	"description": "Small group swim lessons",
	"category": "sports",
	"subcategory": "swimming",
	"interests": ["swimming", "water"],
	"ageRange": {"min": 4, "max": 10},
	"location": {"neighborhood": "Mission", "city": "San Francisco", "latitude": 37.76, "longitude": -122.42},
	"schedule": {"days": ["saturday"], "times": ["09:00"], "recurring": true},
	"pricing": {"type": "per_session", "amount": 25},
	"provider": {"name": "Mission Aquatics", "rating": 4.6, "reviewCount": 87, "verified": true, "experienceYears": 9},
	"capacity": {"maxParticipants": 8, "currentEnrollment": 5, "waitlistAvailable": true},
	"tags": ["outdoor"],
	"createdAt": "2024-03-01T10:00:00Z",
	"updatedAt": "2024-03-02T10:00:00Z"
}`

func TestParseActivityMetadata_Valid(t *testing.T) {
	activity, err := ParseActivityMetadata([]byte(validActivityJSON))
	require.NoError(t, err)

	assert.Equal(t, "12:4", activity.Ref().Key())
	assert.Equal(t, "USD", activity.Pricing.Currency)
	assert.Equal(t, ScheduleFixed, activity.Schedule.Flexibility)
	assert.True(t, activity.HasCoordinates())
	assert.False(t, activity.IsFree())

	price, ok := activity.LowestPrice()
	assert.True(t, ok)
	assert.Equal(t, 25.0, price)
}

func TestParseActivityMetadata_Bounds(t *testing.T) {
	base := `"name": "X", "category": "arts", "pricing": {"type": "free"}, "provider": {"name": "P"}`
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"zero provider id", `{"providerId": 0, "ageRange": {"min": 1, "max": 2}, ` + base + `}`, "providerId"},
		{"age above 18", `{"providerId": 1, "ageRange": {"min": 1, "max": 19}, ` + base + `}`, "ageRange.max"},
		{"age range inverted", `{"providerId": 1, "ageRange": {"min": 9, "max": 2}, ` + base + `}`, "ageRange.max"},
		{"rating above 5", `{"providerId": 1, "ageRange": {"min": 1, "max": 2}, "name": "X", "category": "arts", "pricing": {"type": "free"}, "provider": {"name": "P", "rating": 5.5}}`, "provider.rating"},
		{"unknown pricing type", `{"providerId": 1, "ageRange": {"min": 1, "max": 2}, "name": "X", "category": "arts", "pricing": {"type": "hourly"}, "provider": {"name": "P"}}`, "pricing.type"},
		{"latitude out of range", `{"providerId": 1, "ageRange": {"min": 1, "max": 2}, "location": {"latitude": 91}, ` + base + `}`, "location.latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseActivityMetadata([]byte(tt.input))
			ce := requireContractError(t, err)
			assert.Contains(t, fieldNames(ce), tt.field)
		})
	}
}

func TestActivityMetadata_Pricing(t *testing.T) {
	free := ActivityMetadata{Pricing: Pricing{Type: PricingFree}}
	assert.True(t, free.IsFree())
	price, ok := free.LowestPrice()
	assert.True(t, ok)
	assert.Zero(t, price)

	ranged := ActivityMetadata{Pricing: Pricing{Type: PricingPerMonth, Range: &PriceRange{Min: 80, Max: 120}}}
	price, ok = ranged.LowestPrice()
	assert.True(t, ok)
	assert.Equal(t, 80.0, price)

	unknown := ActivityMetadata{Pricing: Pricing{Type: PricingPerProgram}}
	_, ok = unknown.LowestPrice()
	assert.False(t, ok)
}
