package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseAnswer converts raw user input into a typed value for the given
// question, or nil when the input cannot be interpreted.
//
// Select and multiselect matching is deliberately permissive: it lowercases
// and substring-matches against option values and labels, and falls back to
// the raw text when nothing matches. The validator accepts such fallback
// values, so parsed select answers are not guaranteed to belong to the
// declared option set.
func ParseAnswer(text string, question *model.Question) interface{} {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch question.Type {
	case model.QuestionTypeNumber, model.QuestionTypeWeight, model.QuestionTypeHeight:
		match := numberPattern.FindString(text)
		if match == "" {
			return nil
		}
		value, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return nil
		}
		return value

	case model.QuestionTypeBoolean:
		if strings.Contains(lower, "yes") || strings.Contains(lower, "true") || lower == "y" {
			return true
		}
		if strings.Contains(lower, "no") || strings.Contains(lower, "false") || lower == "n" {
			return false
		}
		return nil

	case model.QuestionTypeSelect:
		for _, opt := range question.Options {
			if strings.Contains(lower, strings.ToLower(opt.Value)) ||
				strings.Contains(lower, strings.ToLower(opt.Label)) {
				return opt.Value
			}
		}
		// Permissive fallback: keep the raw text as the answer
		return text

	case model.QuestionTypeMultiSelect:
		var matched []string
		for _, opt := range question.Options {
			if strings.Contains(lower, strings.ToLower(opt.Value)) ||
				strings.Contains(lower, strings.ToLower(opt.Label)) {
				matched = append(matched, opt.Value)
			}
		}
		if len(matched) > 0 {
			return matched
		}
		return []string{text}

	default:
		return text
	}
}
