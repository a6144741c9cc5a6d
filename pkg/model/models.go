package model

import "time"

// QuestionType represents the input type of a questionnaire question
type QuestionType string

const (
	QuestionTypeText        QuestionType = "text"
	QuestionTypeNumber      QuestionType = "number"
	QuestionTypeSelect      QuestionType = "select"
	QuestionTypeMultiSelect QuestionType = "multiselect"
	QuestionTypeBoolean     QuestionType = "boolean"
	QuestionTypeHeight      QuestionType = "height"
	QuestionTypeWeight      QuestionType = "weight"
)

// QuestionCategory represents the questionnaire section a question belongs to
type QuestionCategory string

const (
	CategoryPersonal    QuestionCategory = "personal"
	CategoryMedical     QuestionCategory = "medical"
	CategoryLifestyle   QuestionCategory = "lifestyle"
	CategoryMedications QuestionCategory = "medications"
	CategoryGoals       QuestionCategory = "goals"
)

// QuestionOption is a selectable answer choice for select/multiselect questions
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Validation holds numeric bounds and an optional custom error message
type Validation struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Question represents one entry in the static questionnaire catalog.
// Catalog entries are immutable; they are defined once and never mutated.
type Question struct {
	ID         string           `json:"id"`
	Prompt     string           `json:"question"`
	Type       QuestionType     `json:"type"`
	Required   bool             `json:"required"`
	Unit       string           `json:"unit,omitempty"`
	Options    []QuestionOption `json:"options,omitempty"`
	Validation *Validation      `json:"validation,omitempty"`
	HelperText string           `json:"helper_text,omitempty"`
	Category   QuestionCategory `json:"category"`
}

// AnswerSet maps question ids to typed answer values (string, float64,
// bool, or []string depending on the question type). Keys only grow during
// a session; a full reset replaces the map.
type AnswerSet map[string]interface{}

// MessageRole represents the role of a conversation entry's author
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleUser      MessageRole = "user"
)

// ConversationEntry is one turn in the message transcript. The transcript is
// append-only and strictly ordered by insertion.
type ConversationEntry struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id"`
	Role      MessageRole            `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// EligibilityStatus is the coarse classification derived from the answer set
// by the local heuristic
type EligibilityStatus string

const (
	EligibilityPending    EligibilityStatus = "pending"
	EligibilityEligible   EligibilityStatus = "eligible"
	EligibilityIneligible EligibilityStatus = "ineligible"
)

// SessionStatus represents the lifecycle state of an assessment session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusExpired   SessionStatus = "expired"
)

// SessionMode indicates which turn engine drives a session
type SessionMode string

const (
	SessionModeLocal  SessionMode = "local"
	SessionModeRemote SessionMode = "remote"
)

// Session represents one assessment conversation
type Session struct {
	ID              string            `json:"id"`
	PatientID       string            `json:"patient_id"`
	Mode            SessionMode       `json:"mode"`
	RemoteSessionID *string           `json:"remote_session_id,omitempty"`
	Status          SessionStatus     `json:"status"`
	Eligibility     EligibilityStatus `json:"eligibility"`
	StartedAt       time.Time         `json:"started_at"`
	// UpdatedAt is the last-activity marker; expiry is measured from it so a
	// slow but active conversation is never cut off
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
}

// ProgressSnapshot is derived from the answer set on every turn; it is never
// stored independently
type ProgressSnapshot struct {
	Overall    int                      `json:"overall"`
	ByCategory map[QuestionCategory]int `json:"by_category"`
}

// Report represents a generated assessment summary document
type Report struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	PatientID   string    `json:"patient_id"`
	BlobPath    string    `json:"blob_path"`
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}
