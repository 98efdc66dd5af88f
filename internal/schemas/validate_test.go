package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_FamilyProfile_Valid(t *testing.T) {
	doc := `{
		"adults": [{"name": "Dana", "role": "parent"}],
		"children": [{"name": "Milo", "age": 7, "interests": ["soccer"]}],
		"location": {"neighborhood": "Mission", "transportationNeeds": false}
	}`

	err := Validate(FamilyProfile, []byte(doc))
	assert.NoError(t, err)
}

func TestValidate_FamilyProfile_MissingAge(t *testing.T) {
	doc := `{"adults": [{"name": "Dana"}], "children": [{"name": "Milo"}]}`

	err := Validate(FamilyProfile, []byte(doc))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Equal(t, FamilyProfile, validationErr.Contract)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidate_FamilyProfile_FractionalAge(t *testing.T) {
	doc := `{"adults": [{"name": "Dana"}], "children": [{"name": "Milo", "age": 7.5}]}`

	err := Validate(FamilyProfile, []byte(doc))
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestValidate_FamilyProfile_WrongType(t *testing.T) {
	doc := `{"adults": "Dana", "children": []}`

	err := Validate(FamilyProfile, []byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "family_profile validation failed")
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate(FamilyParsingRequest, []byte("{ invalid json }"))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidate_UnknownContract(t *testing.T) {
	err := Validate(Contract("does_not_exist"), []byte(`{}`))
	require.Error(t, err)

	loadErr, ok := err.(*SchemaLoadError)
	require.True(t, ok, "error should be SchemaLoadError type")
	assert.NotNil(t, loadErr.Unwrap())
}

func TestValidate_AllContractsCompile(t *testing.T) {
	contracts := []Contract{
		FamilyProfile,
		FamilyParsingRequest,
		RecommendationRequest,
		RequestOptions,
		EmailGenerationRequest,
		GeneratedEmail,
		ActivityMetadata,
	}
	for _, c := range contracts {
		t.Run(string(c), func(t *testing.T) {
			_, err := load(c)
			assert.NoError(t, err)
		})
	}
}
