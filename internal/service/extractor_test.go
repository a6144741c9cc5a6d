package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

func TestDataExtractor_Extract_FieldMapping(t *testing.T) {
	extractor := NewDataExtractor(nil, zap.NewNop())

	answers := model.AnswerSet{
		"fullName":            "Jane Doe",
		"age":                 float64(45),
		"weight":              float64(85),
		"height":              float64(170),
		"pregnant":            false,
		"diagnosedConditions": []string{"obesity", "hypertension"},
		"allergies":           "penicillin",
		"currentMedications":  "lisinopril 10mg",
		"weightLossGoal":      float64(10),
	}

	collected := extractor.Extract(context.Background(), answers)

	assert.Equal(t, "Jane Doe", collected["name"])
	assert.Equal(t, float64(45), collected["age"])
	assert.Equal(t, float64(85), collected["weight"])
	assert.Equal(t, "170 cm", collected["height"])
	assert.Equal(t, false, collected["is_pregnant_breastfeeding"])
	assert.Equal(t, []string{"obesity", "hypertension"}, collected["high_risk_conditions"])
	assert.Equal(t, "penicillin", collected["allergies"])
	assert.Equal(t, "lisinopril 10mg", collected["other_medications"])
	assert.Equal(t, float64(10), collected["weight_loss_goal"])

	// BMI is computed from weight and height
	bmi, ok := collected["bmi"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 29.4, bmi, 0.001)

	// Local ids never leak for mapped fields
	assert.NotContains(t, collected, "fullName")
	assert.NotContains(t, collected, "currentMedications")
	assert.NotContains(t, collected, "diagnosedConditions")
}

func TestDataExtractor_Extract_CurrentlyOnGLP1(t *testing.T) {
	extractor := NewDataExtractor(nil, zap.NewNop())

	collected := extractor.Extract(context.Background(), model.AnswerSet{
		"previousGLP1":        "never",
		"diabetesMedications": []string{"metformin"},
	})
	assert.Equal(t, false, collected["currently_on_glp1"])

	// A patient on Ozempic reports it via the diabetes-medication list
	collected = extractor.Extract(context.Background(), model.AnswerSet{
		"previousGLP1":        "ozempic",
		"diabetesMedications": []string{"metformin", "glp1_current"},
	})
	assert.Equal(t, true, collected["currently_on_glp1"])
	assert.Equal(t, "ozempic", collected["previousGLP1"])

	// JSON round-trip shape of the medication list
	collected = extractor.Extract(context.Background(), model.AnswerSet{
		"diabetesMedications": []interface{}{"glp1_current"},
	})
	assert.Equal(t, true, collected["currently_on_glp1"])

	// No medication answer yet: the flag stays unset
	collected = extractor.Extract(context.Background(), model.AnswerSet{
		"previousGLP1": "wegovy",
	})
	assert.NotContains(t, collected, "currently_on_glp1")
}

func TestDataExtractor_Extract_ConditionNotes(t *testing.T) {
	extractor := NewDataExtractor(nil, zap.NewNop())

	collected := extractor.Extract(context.Background(), model.AnswerSet{
		"thyroidDisease":      false,
		"pancreatitisHistory": true,
		"kidneyDisease":       "mild",
	})

	notes, ok := collected["current_medical_conditions"].(string)
	require.True(t, ok)
	assert.Contains(t, notes, "thyroidDisease: false")
	assert.Contains(t, notes, "pancreatitisHistory: true")
	assert.Contains(t, notes, "kidneyDisease: mild")
}

func TestDataExtractor_Extract_UnmappedPassthrough(t *testing.T) {
	extractor := NewDataExtractor(nil, zap.NewNop())

	collected := extractor.Extract(context.Background(), model.AnswerSet{
		"exerciseFrequency": "3-4",
		"smokingStatus":     "never",
		"injectionComfort":  "willing",
	})

	assert.Equal(t, "3-4", collected["exerciseFrequency"])
	assert.Equal(t, "never", collected["smokingStatus"])
	assert.Equal(t, "willing", collected["injectionComfort"])
}

func TestDataExtractor_Extract_NoBMIWithoutBothMeasurements(t *testing.T) {
	extractor := NewDataExtractor(nil, zap.NewNop())

	collected := extractor.Extract(context.Background(), model.AnswerSet{
		"weight": float64(85),
	})
	assert.NotContains(t, collected, "bmi")
}

func TestDataExtractor_Extract_EmptyAnswers(t *testing.T) {
	extractor := NewDataExtractor(nil, zap.NewNop())

	collected := extractor.Extract(context.Background(), model.AnswerSet{})
	assert.Empty(t, collected)
}

func TestParseNormalizationResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantMeds string
		wantErr  bool
	}{
		{
			name:     "plain json",
			response: `{"medications": "metformin, lisinopril", "allergies": "penicillin"}`,
			wantMeds: "metformin, lisinopril",
		},
		{
			name:     "json fenced",
			response: "```json\n{\"medications\": \"metformin\", \"allergies\": \"\"}\n```",
			wantMeds: "metformin",
		},
		{
			name:     "bare fence",
			response: "```\n{\"medications\": \"metformin\", \"allergies\": \"\"}\n```",
			wantMeds: "metformin",
		},
		{
			name:     "not json",
			response: "I cannot normalize that.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNormalizationResponse(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeds, got.Medications)
		})
	}
}
