package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProfileJSON = `{
	"adults": [{"name": "Maria", "email": "maria@example.com"}],
	"children": [
		{"name": "Leo", "age": 7, "interests": ["swimming", "lego"]},
		{"name": "Ana", "age": 12, "interests": ["soccer"], "allergies": ["peanuts"]}
	],
	"location": {"neighborhood": "Mission", "city": "San Francisco", "zipCode": "94110"},
	"preferences": {
		"budget": {"min": 0, "max": 200},
		"schedule": ["weekday_afternoon", "weekend_morning"],
		"scheduleConstraint": {
			"timeSlots": [{"day": "saturday", "start": "09:00", "end": "12:00"}],
			"earliestStart": "08:30",
			"latestEnd": "18:00",
			"preferredDuration": 60,
			"restrictions": ["no Sunday mornings"]
		},
		"activityTypes": ["sports"],
		"languages": ["Spanish"]
	},
	"notes": "Both kids love water"
}`

func childrenJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"name": "Kid%d", "age": 5}`, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func requireContractError(t *testing.T, err error) *ContractError {
	t.Helper()
	require.Error(t, err)
	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	return ce
}

func fieldNames(ce *ContractError) []string {
	names := make([]string, 0, len(ce.Fields))
	for _, f := range ce.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestParseFamilyProfile_Valid(t *testing.T) {
	profile, err := ParseFamilyProfile([]byte(validProfileJSON))
	require.NoError(t, err)

	require.Len(t, profile.Adults, 1)
	assert.Equal(t, RoleParent, profile.Adults[0].Role)
	require.Len(t, profile.Children, 2)
	assert.Equal(t, []string{"peanuts"}, profile.Children[1].Allergies)
	assert.Equal(t, []string{}, profile.Children[0].Allergies)
	assert.False(t, profile.Location.TransportationNeeds)
	require.NotNil(t, profile.Preferences.Budget)
	assert.Equal(t, "USD", profile.Preferences.Budget.Currency)
	require.NotNil(t, profile.Preferences.ScheduleConstraint)
	assert.Equal(t, FlexibilitySomewhatFlexible, profile.Preferences.ScheduleConstraint.Flexibility)
	assert.Equal(t, []int{7, 12}, profile.Ages())
	assert.Equal(t, []string{"swimming", "lego", "soccer", "sports"}, profile.AllInterests())
}

func TestParseFamilyProfile_Minimal(t *testing.T) {
	profile, err := ParseFamilyProfile([]byte(`{"adults":[{"name":"A"}],"children":[{"name":"B","age":0}]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Children[0].Age)
	assert.Equal(t, []string{}, profile.Children[0].Interests)
	assert.Nil(t, profile.Preferences.Budget)
	assert.Nil(t, profile.Preferences.Schedule)
}

func TestParseFamilyProfile_RequiresAdultsAndChildren(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"no adults", `{"adults": [], "children": [{"name": "B", "age": 3}]}`, "adults"},
		{"no children", `{"adults": [{"name": "A"}], "children": []}`, "children"},
		{"missing adults key", `{"children": [{"name": "B", "age": 3}]}`, "(root)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFamilyProfile([]byte(tt.input))
			ce := requireContractError(t, err)
			assert.Equal(t, "FamilyProfile", ce.Contract)
			assert.Contains(t, fieldNames(ce), tt.field)
			assert.Contains(t, err.Error(), InvalidDataMessage)
		})
	}
}

func TestParseFamilyProfile_Bounds(t *testing.T) {
	tooManyInterests := make([]string, 16)
	for i := range tooManyInterests {
		tooManyInterests[i] = fmt.Sprintf("%q", fmt.Sprintf("interest-%d", i))
	}
	fifteenInterests := strings.Join(tooManyInterests[:15], ",")

	tests := []struct {
		name    string
		input   string
		wantErr bool
		field   string
	}{
		{"age -1", `{"adults":[{"name":"A"}],"children":[{"name":"B","age":-1}]}`, true, "children[0].age"},
		{"age 19", `{"adults":[{"name":"A"}],"children":[{"name":"B","age":19}]}`, true, "children[0].age"},
		{"age 18", `{"adults":[{"name":"A"}],"children":[{"name":"B","age":18}]}`, false, ""},
		{"16 interests", `{"adults":[{"name":"A"}],"children":[{"name":"B","age":5,"interests":[` + strings.Join(tooManyInterests, ",") + `]}]}`, true, "children[0].interests"},
		{"15 interests", `{"adults":[{"name":"A"}],"children":[{"name":"B","age":5,"interests":[` + fifteenInterests + `]}]}`, false, ""},
		{"9 children", `{"adults":[{"name":"A"}],"children":` + childrenJSON(9) + `}`, true, "children"},
		{"8 children", `{"adults":[{"name":"A"}],"children":` + childrenJSON(8) + `}`, false, ""},
		{"5 adults", `{"adults":[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"},{"name":"E"}],"children":[{"name":"K","age":5}]}`, true, "adults"},
		{"empty adult name", `{"adults":[{"name":""}],"children":[{"name":"K","age":5}]}`, true, "adults[0].name"},
		{"bad role", `{"adults":[{"name":"A","role":"uncle"}],"children":[{"name":"K","age":5}]}`, true, "adults[0].role"},
		{"bad email", `{"adults":[{"name":"A","email":"nope"}],"children":[{"name":"K","age":5}]}`, true, "adults[0].email"},
		{"bad schedule slot", `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],"preferences":{"schedule":["midnight"]}}`, true, "preferences.schedule[0]"},
		{"budget max below min", `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],"preferences":{"budget":{"min":100,"max":50}}}`, true, "preferences.budget.max"},
		{"bad flexibility", `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],"preferences":{"scheduleConstraint":{"flexibility":"rigid"}}}`, true, "preferences.scheduleConstraint.flexibility"},
		{"bad clock", `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],"preferences":{"scheduleConstraint":{"earliestStart":"9am"}}}`, true, "preferences.scheduleConstraint.earliestStart"},
		{"slot ends before start", `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],"preferences":{"scheduleConstraint":{"timeSlots":[{"day":"monday","start":"10:00","end":"09:00"}]}}}`, true, "preferences.scheduleConstraint.timeSlots[0].end"},
		{"6 languages", `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],"preferences":{"languages":["a","b","c","d","e","f"]}}`, true, "preferences.languages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFamilyProfile([]byte(tt.input))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			ce := requireContractError(t, err)
			assert.Contains(t, fieldNames(ce), tt.field)
		})
	}
}

func TestParseFamilyProfile_AgeMustBeInteger(t *testing.T) {
	_, err := ParseFamilyProfile([]byte(`{"adults":[{"name":"A"}],"children":[{"name":"B","age":7.5}]}`))
	ce := requireContractError(t, err)
	assert.Equal(t, "schema", ce.Fields[0].Rule)
}

func TestParseFamilyProfile_WholeFloatAge(t *testing.T) {
	profile, err := ParseFamilyProfile([]byte(`{"adults":[{"name":"A"}],"children":[{"name":"B","age":7.0}]}`))
	require.NoError(t, err)
	assert.Equal(t, 7, profile.Children[0].Age)

	var child Child
	err = json.Unmarshal([]byte(`{"name":"B","age":7.5}`), &child)
	assert.ErrorContains(t, err, "age must be a whole number")
}

func TestParseFamilyProfile_PreferredDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     int
		wantErr  bool
	}{
		{"zero", "0", 0, true},
		{"negative", "-30", 0, true},
		{"too long", "721", 0, true},
		{"whole float", "60.0", 60, false},
		{"upper bound", "720", 720, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],` +
				`"preferences":{"scheduleConstraint":{"preferredDuration":` + tt.duration + `,"flexibility":"strict"}}}`
			profile, err := ParseFamilyProfile([]byte(input))
			if tt.wantErr {
				ce := requireContractError(t, err)
				assert.Contains(t, fieldNames(ce), "preferences.scheduleConstraint.preferredDuration")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, profile.Preferences.ScheduleConstraint.PreferredDuration)
			assert.Equal(t, tt.want, *profile.Preferences.ScheduleConstraint.PreferredDuration)
		})
	}

	profile, err := ParseFamilyProfile([]byte(`{"adults":[{"name":"A"}],"children":[{"name":"K","age":5}],` +
		`"preferences":{"scheduleConstraint":{"flexibility":"strict"}}}`))
	require.NoError(t, err)
	assert.Nil(t, profile.Preferences.ScheduleConstraint.PreferredDuration)
}

func TestParseFamilyProfile_RoundTrip(t *testing.T) {
	inputs := []string{
		validProfileJSON,
		`{"adults":[{"name":"A"}],"children":[{"name":"B","age":0}]}`,
		`{"adults":[{"name":"A","role":"guardian","phone":"555-0100"}],"children":[{"name":"B","age":18,"specialNeeds":"wheelchair"}],"location":{"transportationNeeds":true},"preferences":{"schedule":[],"activityTypes":[]}}`,
	}

	for i, input := range inputs {
		t.Run(fmt.Sprintf("profile_%d", i), func(t *testing.T) {
			first, err := ParseFamilyProfile([]byte(input))
			require.NoError(t, err)

			encoded, err := json.Marshal(first)
			require.NoError(t, err)

			second, err := ParseFamilyProfile(encoded)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestValidate_ConstructedProfile(t *testing.T) {
	profile := &FamilyProfile{
		Adults:   []Adult{{Name: "A", Role: RoleCaregiver}},
		Children: []Child{{Name: "B", Age: 4}},
		Preferences: Preferences{
			ScheduleConstraint: &ScheduleConstraint{Flexibility: FlexibilityStrict, EarliestStart: "17:00", LatestEnd: "16:00"},
		},
	}

	ce := requireContractError(t, Validate(profile))
	assert.Equal(t, []string{"preferences.scheduleConstraint.latestEnd"}, fieldNames(ce))
}
