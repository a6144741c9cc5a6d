package service

import (
	"fmt"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

// ValidationResult reports whether an answer is acceptable for a question
type ValidationResult struct {
	Valid bool
	Error string
}

// ValidateAnswer checks a parsed answer against a question's constraints.
// Required questions reject nil and empty-string answers; numeric answers
// are additionally checked against declared min/max bounds. Select and
// multiselect values are NOT checked against the option set, matching the
// parser's permissive fallback behavior.
func ValidateAnswer(question *model.Question, answer interface{}) ValidationResult {
	if question.Required && isEmptyAnswer(answer) {
		return ValidationResult{Valid: false, Error: "This question is required"}
	}

	if value, ok := answer.(float64); ok {
		if v := question.Validation; v != nil {
			if v.Min != nil && value < *v.Min {
				return ValidationResult{Valid: false, Error: boundsError(v, fmt.Sprintf("Value must be at least %g", *v.Min))}
			}
			if v.Max != nil && value > *v.Max {
				return ValidationResult{Valid: false, Error: boundsError(v, fmt.Sprintf("Value must be at most %g", *v.Max))}
			}
		}
	}

	return ValidationResult{Valid: true}
}

func boundsError(v *model.Validation, fallback string) string {
	if v.Message != "" {
		return v.Message
	}
	return fallback
}

func isEmptyAnswer(answer interface{}) bool {
	if answer == nil {
		return true
	}
	if s, ok := answer.(string); ok && s == "" {
		return true
	}
	return false
}
