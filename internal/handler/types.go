package handler

import (
	"time"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

// ErrorResponse is the JSON error envelope returned by every endpoint
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// StartSessionRequest opens a new assessment session
type StartSessionRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
}

// MessageRequest submits one user turn
type MessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// QuestionPayload is the wire shape of a catalog question
type QuestionPayload struct {
	ID         string                 `json:"id"`
	Prompt     string                 `json:"question"`
	Type       model.QuestionType     `json:"type"`
	Required   bool                   `json:"required"`
	Unit       string                 `json:"unit,omitempty"`
	Options    []model.QuestionOption `json:"options,omitempty"`
	HelperText string                 `json:"helper_text,omitempty"`
	Category   model.QuestionCategory `json:"category"`
}

// EntryPayload is the wire shape of one transcript entry
type EntryPayload struct {
	ID        string                 `json:"id"`
	Role      model.MessageRole      `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ProgressPayload is the wire shape of a progress snapshot
type ProgressPayload struct {
	Overall    int                            `json:"overall"`
	ByCategory map[model.QuestionCategory]int `json:"by_category"`
}

// TurnResponse is returned by the start, message and reset endpoints
type TurnResponse struct {
	SessionID       string                  `json:"session_id"`
	Messages        []EntryPayload          `json:"messages"`
	CurrentQuestion *QuestionPayload        `json:"current_question,omitempty"`
	Progress        ProgressPayload         `json:"progress"`
	Eligibility     model.EligibilityStatus `json:"eligibility"`
	IsComplete      bool                    `json:"is_complete"`
}

// SessionStatusResponse is returned by the status endpoint
type SessionStatusResponse struct {
	SessionID       string                  `json:"session_id"`
	PatientID       string                  `json:"patient_id"`
	Mode            model.SessionMode       `json:"mode"`
	Status          model.SessionStatus     `json:"status"`
	Eligibility     model.EligibilityStatus `json:"eligibility"`
	Progress        ProgressPayload         `json:"progress"`
	CurrentQuestion *QuestionPayload        `json:"current_question,omitempty"`
	MessageCount    int                     `json:"message_count"`
	StartedAt       time.Time               `json:"started_at"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
	ExpiredAt       *time.Time              `json:"expired_at,omitempty"`
}

// GenerateReportRequest asks for an assessment summary PDF
type GenerateReportRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// GenerateReportResponse returns the id of the generated report
type GenerateReportResponse struct {
	ReportID string `json:"report_id"`
}

func questionPayload(q *model.Question) *QuestionPayload {
	if q == nil {
		return nil
	}
	return &QuestionPayload{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Type:       q.Type,
		Required:   q.Required,
		Unit:       q.Unit,
		Options:    q.Options,
		HelperText: q.HelperText,
		Category:   q.Category,
	}
}

func entryPayloads(entries []model.ConversationEntry) []EntryPayload {
	payloads := make([]EntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, EntryPayload{
			ID:        entry.ID,
			Role:      entry.Role,
			Content:   entry.Content,
			Metadata:  entry.Metadata,
			CreatedAt: entry.CreatedAt,
		})
	}
	return payloads
}

func progressPayload(p model.ProgressSnapshot) ProgressPayload {
	return ProgressPayload{
		Overall:    p.Overall,
		ByCategory: p.ByCategory,
	}
}

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}
