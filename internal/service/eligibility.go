package service

import (
	"math"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

// qualifyingConditions are the comorbidities that lower the BMI threshold
// from 30 to 27
var qualifyingConditions = []string{
	"type2Diabetes", "prediabetes", "obesity", "hypertension", "cardiovascular",
}

// CalculateBMI computes weight_kg / (height_cm/100)^2 rounded to one decimal
// place. It returns nil when either input is missing or zero.
func CalculateBMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *weightKg == 0 || *heightCm == 0 {
		return nil
	}
	h := *heightCm / 100
	bmi := math.Round(*weightKg/(h*h)*10) / 10
	return &bmi
}

// AssessEligibility is the local preview heuristic. It is a fallback signal
// only; the external assessment engine remains the authoritative source.
//
// pending while age, BMI or diagnosed conditions are missing; then:
// age < 18, pregnancy/breastfeeding, thyroid disease or pancreatitis
// history are disqualifying; BMI >= 30 qualifies outright; BMI >= 27
// qualifies with at least one qualifying comorbidity.
func AssessEligibility(answers model.AnswerSet) model.EligibilityStatus {
	age := numberAnswer(answers, "age")
	weight := numberAnswer(answers, "weight")
	height := numberAnswer(answers, "height")
	bmi := CalculateBMI(weight, height)
	conditions := stringSliceAnswer(answers, "diagnosedConditions")

	if age == nil || bmi == nil || answers["diagnosedConditions"] == nil {
		return model.EligibilityPending
	}

	if *age < 18 {
		return model.EligibilityIneligible
	}

	if boolAnswer(answers, "pregnant") ||
		boolAnswer(answers, "thyroidDisease") ||
		boolAnswer(answers, "pancreatitisHistory") {
		return model.EligibilityIneligible
	}

	hasQualifying := false
	for _, c := range qualifyingConditions {
		if containsString(conditions, c) {
			hasQualifying = true
			break
		}
	}

	if *bmi >= 30 {
		return model.EligibilityEligible
	}
	if *bmi >= 27 && hasQualifying {
		return model.EligibilityEligible
	}

	return model.EligibilityIneligible
}

func numberAnswer(answers model.AnswerSet, id string) *float64 {
	switch v := answers[id].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func boolAnswer(answers model.AnswerSet, id string) bool {
	b, ok := answers[id].(bool)
	return ok && b
}
