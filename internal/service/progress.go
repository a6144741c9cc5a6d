package service

import (
	"math"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

// CompletionPercentage returns the share of required catalog questions that
// have an answer, as a rounded 0-100 percentage.
//
// Conditionally-inapplicable required questions stay in the denominator:
// progress is a function of the static catalog alone, so it never moves
// backwards when an answer changes which questions apply.
func (c *Catalog) CompletionPercentage(answers model.AnswerSet) int {
	return percentage(c.questions, answers)
}

// CategoryProgress returns the per-category completion percentages.
// Categories without required questions report 100.
func (c *Catalog) CategoryProgress(answers model.AnswerSet) map[model.QuestionCategory]int {
	progress := make(map[model.QuestionCategory]int, 5)
	for _, category := range c.Categories() {
		progress[category] = percentage(c.QuestionsByCategory(category), answers)
	}
	return progress
}

func percentage(questions []model.Question, answers model.AnswerSet) int {
	total := 0
	answered := 0
	for _, q := range questions {
		if !q.Required {
			continue
		}
		total++
		if _, ok := answers[q.ID]; ok {
			answered++
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(answered) / float64(total) * 100))
}
