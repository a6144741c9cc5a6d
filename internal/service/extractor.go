package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/assessment"
	"github.com/glp1rx/assessment-backend/internal/azure"
	"github.com/glp1rx/assessment-backend/pkg/model"
)

// DataExtractor maps the local answer set into the engine's collected_data
// shape. When an Azure OpenAI client is configured it additionally normalizes
// the free-text medication and allergy answers into clean comma-separated
// lists; without one (or on AI failure) the raw text passes through.
type DataExtractor struct {
	aiClient *azure.OpenAIClient
	logger   *zap.Logger
}

// NewDataExtractor creates a new DataExtractor. aiClient may be nil.
func NewDataExtractor(aiClient *azure.OpenAIClient, logger *zap.Logger) *DataExtractor {
	return &DataExtractor{
		aiClient: aiClient,
		logger:   logger,
	}
}

// Extract builds collected_data from the answer set. Known question ids map
// to the engine's field names; everything else is passed through under its
// own id so the engine can use answers this mapper does not know about.
func (de *DataExtractor) Extract(ctx context.Context, answers model.AnswerSet) assessment.CollectedData {
	collected := assessment.CollectedData{}

	mapped := map[string]bool{}
	assign := func(questionID, field string) {
		if v, ok := answers[questionID]; ok {
			collected[field] = v
			mapped[questionID] = true
		}
	}

	assign("fullName", "name")
	assign("age", "age")
	assign("weight", "weight")
	assign("pregnant", "is_pregnant_breastfeeding")
	assign("diagnosedConditions", "high_risk_conditions")
	assign("allergies", "allergies")
	assign("currentMedications", "other_medications")
	assign("weightLossGoal", "weight_loss_goal")

	if height, ok := answers["height"]; ok {
		collected["height"] = fmt.Sprintf("%v cm", height)
		mapped["height"] = true
	}

	// Current use is reported through the diabetes-medication list; the
	// previousGLP1 answer passes through below as prior-use context
	if meds := stringSliceAnswer(answers, "diabetesMedications"); meds != nil {
		collected["currently_on_glp1"] = containsString(meds, "glp1_current")
	}

	if bmi := CalculateBMI(numberAnswer(answers, "weight"), numberAnswer(answers, "height")); bmi != nil {
		collected["bmi"] = *bmi
	}

	var conditionNotes []string
	for _, id := range []string{"diabetesType", "thyroidDisease", "pancreatitisHistory", "kidneyDisease", "gastroparesis"} {
		if v, ok := answers[id]; ok {
			conditionNotes = append(conditionNotes, fmt.Sprintf("%s: %v", id, v))
			mapped[id] = true
		}
	}
	if len(conditionNotes) > 0 {
		collected["current_medical_conditions"] = strings.Join(conditionNotes, "; ")
	}

	// Pass through everything the known mapping does not cover
	for id, value := range answers {
		if !mapped[id] {
			collected[id] = value
		}
	}

	de.normalizeFreeText(ctx, collected)

	return collected
}

// normalizeFreeText rewrites the free-text medication and allergy fields
// into clean comma-separated lists via Azure OpenAI. Failures leave the raw
// text in place.
func (de *DataExtractor) normalizeFreeText(ctx context.Context, collected assessment.CollectedData) {
	if de.aiClient == nil {
		return
	}

	meds, _ := collected["other_medications"].(string)
	allergies, _ := collected["allergies"].(string)
	if meds == "" && allergies == "" {
		return
	}

	prompt := fmt.Sprintf(`You are a medical data normalization assistant.

Medications reported: %q
Allergies reported: %q

Return ONLY valid JSON in this shape:
{
  "medications": "comma-separated list of medication names, or empty string",
  "allergies": "comma-separated list of allergens, or empty string"
}

Rules:
- Correct obvious misspellings of drug names
- Drop filler words ("none", "nothing", "n/a" become empty strings)
- Keep dosage information when given
- Return ONLY the JSON, no additional text`, meds, allergies)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt),
		openai.UserMessage("Normalize the reported medications and allergies."),
	}

	response, err := de.aiClient.Complete(ctx, messages)
	if err != nil {
		de.logger.Warn("free-text normalization failed, keeping raw answers", zap.Error(err))
		return
	}

	normalized, err := parseNormalizationResponse(response)
	if err != nil {
		de.logger.Warn("failed to parse normalization response, keeping raw answers",
			zap.Error(err),
			zap.String("response", response),
		)
		return
	}

	if meds != "" {
		collected["other_medications"] = normalized.Medications
	}
	if allergies != "" {
		collected["allergies"] = normalized.Allergies
	}

	de.logger.Info("free-text answers normalized",
		zap.Bool("medications", meds != ""),
		zap.Bool("allergies", allergies != ""),
	)
}

type normalizedFreeText struct {
	Medications string `json:"medications"`
	Allergies   string `json:"allergies"`
}

// parseNormalizationResponse parses the AI reply, stripping the markdown
// code fences some models wrap JSON in
func parseNormalizationResponse(response string) (*normalizedFreeText, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var data normalizedFreeText
	if err := json.Unmarshal([]byte(response), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return &data, nil
}
