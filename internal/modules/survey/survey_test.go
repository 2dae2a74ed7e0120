package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
)

func sampleFields() []models.SurveyField {
	return []models.SurveyField{
		{Name: "email", Label: "Email", Type: models.SurveyFieldEmail, Required: true},
		{Name: "feedback", Label: "Feedback", Type: models.SurveyFieldTextarea},
		{Name: "rating", Label: "Rating", Type: models.SurveyFieldNumber, Required: true},
		{Name: "plan", Label: "Plan", Type: models.SurveyFieldSelect, Options: []string{"free", "pro"}},
		{Name: "news", Label: "Newsletter", Type: models.SurveyFieldCheckbox},
	}
}

func TestValidateFields(t *testing.T) {
	require.NoError(t, ValidateFields(sampleFields()))

	assert.Error(t, ValidateFields([]models.SurveyField{{Name: "", Type: models.SurveyFieldText}}))
	assert.Error(t, ValidateFields([]models.SurveyField{
		{Name: "a", Type: models.SurveyFieldText},
		{Name: "a", Type: models.SurveyFieldText},
	}))
	assert.Error(t, ValidateFields([]models.SurveyField{{Name: "a", Type: "slider"}}))
	assert.Error(t, ValidateFields([]models.SurveyField{{Name: "a", Type: models.SurveyFieldSelect}}),
		"select without options must be rejected")
}

func TestValidateResponseAccepts(t *testing.T) {
	err := ValidateResponse(sampleFields(), map[string]interface{}{
		"email":    "user@example.com",
		"feedback": "great product",
		"rating":   float64(5),
		"plan":     "pro",
		"news":     true,
	})
	assert.NoError(t, err)
}

func TestValidateResponseOptionalFieldsMayBeOmitted(t *testing.T) {
	err := ValidateResponse(sampleFields(), map[string]interface{}{
		"email":  "user@example.com",
		"rating": "4.5",
	})
	assert.NoError(t, err)
}

func TestValidateResponseRejections(t *testing.T) {
	fields := sampleFields()

	cases := []struct {
		name   string
		values map[string]interface{}
	}{
		{"missing required", map[string]interface{}{"email": "user@example.com"}},
		{"blank required string", map[string]interface{}{"email": "  ", "rating": float64(1)}},
		{"bad email", map[string]interface{}{"email": "nope", "rating": float64(1)}},
		{"bad number", map[string]interface{}{"email": "user@example.com", "rating": "five"}},
		{"option not in list", map[string]interface{}{"email": "user@example.com", "rating": float64(1), "plan": "enterprise"}},
		{"checkbox not bool", map[string]interface{}{"email": "user@example.com", "rating": float64(1), "news": "yes"}},
		{"unknown key", map[string]interface{}{"email": "user@example.com", "rating": float64(1), "extra": "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidateResponse(fields, tc.values))
		})
	}
}
