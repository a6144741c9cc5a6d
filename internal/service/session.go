package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/assessment"
	"github.com/glp1rx/assessment-backend/internal/repository"
	"github.com/glp1rx/assessment-backend/internal/security"
	"github.com/glp1rx/assessment-backend/pkg/model"
)

const welcomeMessage = "👋 Welcome to the GLP-1 Medication Eligibility Assessment.\n\n" +
	"I'll ask you a series of questions to determine if you may be eligible for GLP-1 treatment. " +
	"This assessment takes about 5-7 minutes.\n\n" +
	"Your answers are saved securely and kept private. Let's get started!"

const eligibleSummary = "✅ **Assessment Complete!**\n\n" +
	"Based on your responses, you appear to be preliminarily eligible for GLP-1 treatment.\n\n" +
	"**Important:** This is not a prescription or medical diagnosis. A licensed healthcare provider " +
	"must review your full medical history and conduct a proper evaluation.\n\n" +
	"Would you like to:\n• Review your answers\n• Schedule a consultation with a healthcare provider\n• Learn more about GLP-1 medications"

const ineligibleSummary = "📋 **Assessment Complete**\n\n" +
	"Based on current eligibility criteria, you may not qualify for GLP-1 treatment at this time.\n\n" +
	"This could be due to:\n• Age requirements (18+)\n• BMI criteria (27+ with comorbidity, or 30+)\n• Medical contraindications\n\n" +
	"Would you like to:\n• Review your answers\n• Explore alternative treatment options\n• Speak with a healthcare provider about other possibilities"

const turnErrorMessage = "❌ Sorry, there was an error processing your answer. Please try again."

// SessionStore is the persistence surface the conversation controller needs
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) error
	SaveConversationEntry(ctx context.Context, entry *model.ConversationEntry) error
	GetConversationEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error)
	DeleteConversationEntries(ctx context.Context, sessionID string) error
	SetState(ctx context.Context, sessionID, key string, value []byte) error
	GetState(ctx context.Context, sessionID, key string) ([]byte, error)
	DeleteState(ctx context.Context, sessionID string) error
	ExpireStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error)
}

// SessionService drives the assessment conversation. A session runs in one
// of two modes chosen at start: remote when the external engine answered the
// opening request, local otherwise. Remote turns that fail degrade to the
// local flow for that turn only.
type SessionService struct {
	repo      SessionStore
	engine    *assessment.Client
	catalog   *Catalog
	extractor *DataExtractor
	encryptor *security.Encryptor
	logger    *zap.Logger
	maxAge    time.Duration
}

// NewSessionService creates a new SessionService. engine may be nil, which
// pins every session to local mode.
func NewSessionService(
	repo SessionStore,
	engine *assessment.Client,
	catalog *Catalog,
	extractor *DataExtractor,
	encryptor *security.Encryptor,
	logger *zap.Logger,
	maxAge time.Duration,
) *SessionService {
	if maxAge == 0 {
		maxAge = 24 * time.Hour
	}
	return &SessionService{
		repo:      repo,
		engine:    engine,
		catalog:   catalog,
		extractor: extractor,
		encryptor: encryptor,
		logger:    logger,
		maxAge:    maxAge,
	}
}

// TurnResult is what one state transition hands back to the caller
type TurnResult struct {
	SessionID       string
	NewEntries      []model.ConversationEntry
	CurrentQuestion *model.Question
	Progress        model.ProgressSnapshot
	Eligibility     model.EligibilityStatus
	IsComplete      bool
}

// SessionStatus summarizes a session for status queries
type SessionStatus struct {
	Session         *model.Session
	CurrentQuestion *model.Question
	Progress        model.ProgressSnapshot
	MessageCount    int
}

// remoteState is the engine-side conversation snapshot carried between turns
// of a remote session
type remoteState struct {
	History       []assessment.ConversationEntry `json:"history"`
	CollectedData assessment.CollectedData       `json:"collected_data"`
}

// StartSession opens a new session: it probes the external engine once to
// choose the session mode, then seeds the transcript with the welcome
// message and the first catalog question.
func (s *SessionService) StartSession(ctx context.Context, patientID string) (*TurnResult, error) {
	s.logger.Info("starting assessment session", zap.String("patient_id", patientID))

	session := &model.Session{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		Mode:        model.SessionModeLocal,
		Status:      model.SessionStatusActive,
		Eligibility: model.EligibilityPending,
		StartedAt:   time.Now(),
	}

	var remote *remoteState
	if s.engine != nil {
		opened, err := s.engine.StartConversation(ctx)
		if err != nil {
			s.logger.Warn("assessment engine unreachable, session runs locally",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		} else {
			session.Mode = model.SessionModeRemote
			session.RemoteSessionID = &opened.SessionID
			remote = &remoteState{
				History:       opened.ConversationHistory,
				CollectedData: opened.CollectedData,
			}
		}
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	entries := []model.ConversationEntry{
		s.newEntry(session.ID, model.MessageRoleSystem, welcomeMessage, nil),
	}

	firstQuestion := s.catalog.NextQuestion(model.AnswerSet{})
	if firstQuestion == nil {
		return nil, fmt.Errorf("question catalog is empty")
	}
	entries = append(entries, s.newEntry(session.ID, model.MessageRoleAssistant, promptText(firstQuestion), nil))

	for i := range entries {
		if err := s.repo.SaveConversationEntry(ctx, &entries[i]); err != nil {
			return nil, fmt.Errorf("failed to seed transcript: %w", err)
		}
	}

	if err := s.saveAnswers(ctx, session.ID, model.AnswerSet{}); err != nil {
		return nil, err
	}
	if err := s.saveTranscriptState(ctx, session.ID, entries, remote); err != nil {
		return nil, err
	}

	s.logger.Info("assessment session started",
		zap.String("session_id", session.ID),
		zap.String("mode", string(session.Mode)),
	)

	return &TurnResult{
		SessionID:       session.ID,
		NewEntries:      entries,
		CurrentQuestion: firstQuestion,
		Progress:        s.progress(model.AnswerSet{}),
		Eligibility:     model.EligibilityPending,
	}, nil
}

// ProcessMessage runs one conversation turn. Panics inside the transition
// are contained here: the answer set is left untouched and an apologetic
// assistant entry is appended instead.
func (s *SessionService) ProcessMessage(ctx context.Context, sessionID, text string) (result *TurnResult, err error) {
	s.logger.Info("processing user message",
		zap.String("session_id", sessionID),
		zap.Int("message_length", len(text)),
	)

	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if text == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}

	answers, err := s.loadAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userEntry := s.newEntry(sessionID, model.MessageRoleUser, text, nil)
	if err := s.repo.SaveConversationEntry(ctx, &userEntry); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during conversation turn",
				zap.String("session_id", sessionID),
				zap.Any("panic", r),
			)
			apology := s.newEntry(sessionID, model.MessageRoleAssistant, turnErrorMessage, nil)
			if saveErr := s.repo.SaveConversationEntry(ctx, &apology); saveErr != nil {
				s.logger.Error("failed to save apology entry", zap.Error(saveErr))
			}
			result = &TurnResult{
				SessionID:       sessionID,
				NewEntries:      []model.ConversationEntry{userEntry, apology},
				CurrentQuestion: s.catalog.NextQuestion(answers),
				Progress:        s.progress(answers),
				Eligibility:     session.Eligibility,
			}
			err = nil
		}
	}()

	if session.Mode == model.SessionModeRemote && s.engine != nil {
		remoteResult, remoteErr := s.remoteTurn(ctx, session, answers, text, userEntry)
		if remoteErr == nil {
			return remoteResult, nil
		}
		s.logger.Warn("remote turn failed, falling back to local flow",
			zap.String("session_id", sessionID),
			zap.Error(remoteErr),
		)
	}

	return s.localTurn(ctx, session, answers, text, userEntry)
}

// localTurn is the fully local state transition: parse, validate, merge,
// recompute, reply.
func (s *SessionService) localTurn(ctx context.Context, session *model.Session, answers model.AnswerSet, text string, userEntry model.ConversationEntry) (*TurnResult, error) {
	sessionID := session.ID
	entries := []model.ConversationEntry{userEntry}

	current := s.catalog.NextQuestion(answers)
	if current == nil {
		// Already complete; nothing to merge
		return &TurnResult{
			SessionID:   sessionID,
			NewEntries:  entries,
			Progress:    s.progress(answers),
			Eligibility: session.Eligibility,
			IsComplete:  true,
		}, nil
	}

	answer := ParseAnswer(text, current)

	validation := ValidateAnswer(current, answer)
	if !validation.Valid {
		reprompt := s.newEntry(sessionID, model.MessageRoleAssistant,
			fmt.Sprintf("⚠️ %s\n\nPlease try again: %s", validation.Error, current.Prompt), nil)
		if err := s.repo.SaveConversationEntry(ctx, &reprompt); err != nil {
			return nil, fmt.Errorf("failed to save re-prompt: %w", err)
		}
		entries = append(entries, reprompt)
		// A rejected answer still counts as activity for expiry purposes
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			s.logger.Warn("failed to update session activity", zap.Error(err))
		}
		return &TurnResult{
			SessionID:       sessionID,
			NewEntries:      entries,
			CurrentQuestion: current,
			Progress:        s.progress(answers),
			Eligibility:     session.Eligibility,
		}, nil
	}

	answers[current.ID] = answer

	// The BMI interstitial fires once, on whichever of height and weight
	// completes the pair
	bmi := CalculateBMI(numberAnswer(answers, "weight"), numberAnswer(answers, "height"))
	if bmi != nil && (current.ID == "height" || current.ID == "weight") {
		info := s.newEntry(sessionID, model.MessageRoleAssistant,
			fmt.Sprintf("✅ Thank you! Your BMI is %g.\n\nNext question:", *bmi),
			map[string]interface{}{"bmi": *bmi})
		if err := s.repo.SaveConversationEntry(ctx, &info); err != nil {
			s.logger.Warn("failed to save BMI info entry", zap.Error(err))
		}
		entries = append(entries, info)
	}

	next := s.catalog.NextQuestion(answers)
	eligibility := AssessEligibility(answers)
	session.Eligibility = eligibility

	if next != nil {
		ask := s.newEntry(sessionID, model.MessageRoleAssistant, promptText(next), nil)
		if err := s.repo.SaveConversationEntry(ctx, &ask); err != nil {
			return nil, fmt.Errorf("failed to save next question: %w", err)
		}
		entries = append(entries, ask)
	} else {
		summary := ineligibleSummary
		if eligibility == model.EligibilityEligible {
			summary = eligibleSummary
		}
		var meta map[string]interface{}
		if bmi != nil {
			meta = map[string]interface{}{"bmi": *bmi}
		}
		terminal := s.newEntry(sessionID, model.MessageRoleAssistant, summary, meta)
		if err := s.repo.SaveConversationEntry(ctx, &terminal); err != nil {
			return nil, fmt.Errorf("failed to save summary entry: %w", err)
		}
		entries = append(entries, terminal)

		now := time.Now()
		session.Status = model.SessionStatusCompleted
		session.CompletedAt = &now
	}

	if err := s.saveAnswers(ctx, sessionID, answers); err != nil {
		return nil, err
	}
	if err := s.appendTranscriptState(ctx, sessionID, entries); err != nil {
		s.logger.Warn("failed to persist transcript snapshot", zap.Error(err))
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		s.logger.Error("failed to update session", zap.Error(err))
	}

	return &TurnResult{
		SessionID:       sessionID,
		NewEntries:      entries,
		CurrentQuestion: next,
		Progress:        s.progress(answers),
		Eligibility:     eligibility,
		IsComplete:      next == nil,
	}, nil
}

// remoteTurn forwards the turn to the external engine. The engine's reply
// and completion flag drive the result; the local parse still merges the
// answer so the local eligibility signal keeps tracking the conversation.
func (s *SessionService) remoteTurn(ctx context.Context, session *model.Session, answers model.AnswerSet, text string, userEntry model.ConversationEntry) (*TurnResult, error) {
	sessionID := session.ID

	state, err := s.loadTranscriptState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	remote := state.Remote
	if remote == nil {
		remote = &remoteState{CollectedData: assessment.CollectedData{}}
	}

	remoteSessionID := ""
	if session.RemoteSessionID != nil {
		remoteSessionID = *session.RemoteSessionID
	}

	resp, err := s.engine.Chat(ctx, assessment.ChatRequest{
		Message:             text,
		ConversationHistory: remote.History,
		CollectedData:       remote.CollectedData,
		SessionID:           remoteSessionID,
	})
	if err != nil {
		return nil, err
	}

	entries := []model.ConversationEntry{userEntry}
	reply := s.newEntry(sessionID, model.MessageRoleAssistant, resp.Response, nil)
	if err := s.repo.SaveConversationEntry(ctx, &reply); err != nil {
		return nil, fmt.Errorf("failed to save engine reply: %w", err)
	}
	entries = append(entries, reply)

	// Keep the local answer set tracking the conversation for the
	// supplementary eligibility signal
	if current := s.catalog.NextQuestion(answers); current != nil {
		if answer := ParseAnswer(text, current); ValidateAnswer(current, answer).Valid {
			answers[current.ID] = answer
		}
	}
	eligibility := AssessEligibility(answers)
	session.Eligibility = eligibility

	remote.History = resp.ConversationHistory
	if resp.CollectedData != nil {
		remote.CollectedData = resp.CollectedData
	}
	if resp.SessionID != nil && *resp.SessionID != "" {
		session.RemoteSessionID = resp.SessionID
	}

	if resp.IsComplete {
		now := time.Now()
		session.Status = model.SessionStatusCompleted
		session.CompletedAt = &now
	}

	if err := s.saveAnswers(ctx, sessionID, answers); err != nil {
		return nil, err
	}
	if err := s.saveTranscriptState(ctx, sessionID, append(state.Entries, entries...), remote); err != nil {
		s.logger.Warn("failed to persist transcript snapshot", zap.Error(err))
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		s.logger.Error("failed to update session", zap.Error(err))
	}

	return &TurnResult{
		SessionID:   sessionID,
		NewEntries:  entries,
		Progress:    s.progress(answers),
		Eligibility: eligibility,
		IsComplete:  resp.IsComplete,
	}, nil
}

// ResetSession wipes a session's answers and transcript and reseeds the
// welcome message and first question
func (s *SessionService) ResetSession(ctx context.Context, sessionID string) (*TurnResult, error) {
	s.logger.Info("resetting assessment session", zap.String("session_id", sessionID))

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteConversationEntries(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteState(ctx, sessionID); err != nil {
		return nil, err
	}

	session.Status = model.SessionStatusActive
	session.Eligibility = model.EligibilityPending
	session.CompletedAt = nil
	session.ExpiredAt = nil

	firstQuestion := s.catalog.NextQuestion(model.AnswerSet{})
	entries := []model.ConversationEntry{
		s.newEntry(sessionID, model.MessageRoleSystem, welcomeMessage, nil),
		s.newEntry(sessionID, model.MessageRoleAssistant, promptText(firstQuestion), nil),
	}
	for i := range entries {
		if err := s.repo.SaveConversationEntry(ctx, &entries[i]); err != nil {
			return nil, fmt.Errorf("failed to reseed transcript: %w", err)
		}
	}

	if err := s.saveAnswers(ctx, sessionID, model.AnswerSet{}); err != nil {
		return nil, err
	}
	if err := s.saveTranscriptState(ctx, sessionID, entries, nil); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	return &TurnResult{
		SessionID:       sessionID,
		NewEntries:      entries,
		CurrentQuestion: firstQuestion,
		Progress:        s.progress(model.AnswerSet{}),
		Eligibility:     model.EligibilityPending,
	}, nil
}

// GetSessionStatus returns the session's lifecycle state plus derived
// progress and the pending question
func (s *SessionService) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.GetConversationEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionStatus{
		Session:         session,
		CurrentQuestion: s.catalog.NextQuestion(answers),
		Progress:        s.progress(answers),
		MessageCount:    len(messages),
	}, nil
}

// GetTranscript returns the full ordered transcript of a session
func (s *SessionService) GetTranscript(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	return s.repo.GetConversationEntries(ctx, sessionID)
}

// CompleteAssessment asks the external engine for the final recommendation.
// The collected data sent over is mapped (and optionally AI-normalized) from
// the local answer set unless the remote flow already accumulated one.
func (s *SessionService) CompleteAssessment(ctx context.Context, sessionID string) (*assessment.CompleteRecommendationResponse, error) {
	if s.engine == nil {
		return nil, fmt.Errorf("assessment engine is not configured")
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	collected := assessment.CollectedData{}
	if remote, err := s.loadRemoteState(ctx, sessionID); err == nil && len(remote.CollectedData) > 0 {
		collected = remote.CollectedData
	} else {
		collected = s.extractor.Extract(ctx, answers)
	}

	remoteSessionID := ""
	if session.RemoteSessionID != nil {
		remoteSessionID = *session.RemoteSessionID
	}

	resp, err := s.engine.CompleteRecommendation(ctx, assessment.CompleteRequest{
		CollectedData: collected,
		SessionID:     remoteSessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete assessment: %w", err)
	}

	// The engine's verdict supersedes the local heuristic
	switch resp.Eligibility.EligibilityStatus {
	case "eligible":
		session.Eligibility = model.EligibilityEligible
	case "ineligible":
		session.Eligibility = model.EligibilityIneligible
	}
	if session.Status == model.SessionStatusActive {
		now := time.Now()
		session.Status = model.SessionStatusCompleted
		session.CompletedAt = &now
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		s.logger.Error("failed to update session after completion", zap.Error(err))
	}

	return resp, nil
}

// ExpireStaleSessions marks idle sessions as expired. Run periodically from
// a background sweep.
func (s *SessionService) ExpireStaleSessions(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireStaleSessions(ctx, s.maxAge)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("expired stale sessions", zap.Int64("count", expired))
	}
	return expired, nil
}

func (s *SessionService) activeSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != model.SessionStatusActive {
		return nil, fmt.Errorf("session is not active: %s", session.Status)
	}

	// Expiry is measured from the last activity, not the session start
	lastActivity := session.UpdatedAt
	if lastActivity.IsZero() {
		lastActivity = session.StartedAt
	}
	if time.Since(lastActivity) > s.maxAge {
		s.logger.Warn("session expired", zap.String("session_id", sessionID))
		now := time.Now()
		session.Status = model.SessionStatusExpired
		session.ExpiredAt = &now
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			s.logger.Error("failed to update expired session", zap.Error(err))
		}
		return nil, fmt.Errorf("session has expired")
	}

	return session, nil
}

func (s *SessionService) newEntry(sessionID string, role model.MessageRole, content string, metadata map[string]interface{}) model.ConversationEntry {
	return model.ConversationEntry{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}

func (s *SessionService) progress(answers model.AnswerSet) model.ProgressSnapshot {
	return model.ProgressSnapshot{
		Overall:    s.catalog.CompletionPercentage(answers),
		ByCategory: s.catalog.CategoryProgress(answers),
	}
}

func (s *SessionService) saveAnswers(ctx context.Context, sessionID string, answers model.AnswerSet) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	sealed, err := s.encryptor.EncryptBytes(raw)
	if err != nil {
		return fmt.Errorf("failed to encrypt answers: %w", err)
	}
	return s.repo.SetState(ctx, sessionID, repository.StateKeyAnswers, sealed)
}

func (s *SessionService) loadAnswers(ctx context.Context, sessionID string) (model.AnswerSet, error) {
	sealed, err := s.repo.GetState(ctx, sessionID, repository.StateKeyAnswers)
	if err != nil {
		return nil, err
	}
	if sealed == nil {
		return model.AnswerSet{}, nil
	}
	raw, err := s.encryptor.DecryptBytes(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt answers: %w", err)
	}
	answers := model.AnswerSet{}
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	return answers, nil
}

// transcriptState is the serialized snapshot written under the transcript
// state key: the local entry log plus, for remote sessions, the engine-side
// conversation snapshot
type transcriptState struct {
	Entries []model.ConversationEntry `json:"entries"`
	Remote  *remoteState              `json:"remote,omitempty"`
}

func (s *SessionService) saveTranscriptState(ctx context.Context, sessionID string, entries []model.ConversationEntry, remote *remoteState) error {
	raw, err := json.Marshal(transcriptState{Entries: entries, Remote: remote})
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	sealed, err := s.encryptor.EncryptBytes(raw)
	if err != nil {
		return fmt.Errorf("failed to encrypt transcript: %w", err)
	}
	return s.repo.SetState(ctx, sessionID, repository.StateKeyMessages, sealed)
}

func (s *SessionService) loadTranscriptState(ctx context.Context, sessionID string) (*transcriptState, error) {
	sealed, err := s.repo.GetState(ctx, sessionID, repository.StateKeyMessages)
	if err != nil {
		return nil, err
	}
	state := &transcriptState{}
	if sealed == nil {
		return state, nil
	}
	raw, err := s.encryptor.DecryptBytes(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt transcript: %w", err)
	}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return state, nil
}

func (s *SessionService) appendTranscriptState(ctx context.Context, sessionID string, entries []model.ConversationEntry) error {
	state, err := s.loadTranscriptState(ctx, sessionID)
	if err != nil {
		return err
	}
	state.Entries = append(state.Entries, entries...)
	return s.saveTranscriptState(ctx, sessionID, state.Entries, state.Remote)
}

func (s *SessionService) loadRemoteState(ctx context.Context, sessionID string) (*remoteState, error) {
	state, err := s.loadTranscriptState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Remote == nil {
		return &remoteState{CollectedData: assessment.CollectedData{}}, nil
	}
	return state.Remote, nil
}

// promptText renders a question prompt with its helper text, when present
func promptText(q *model.Question) string {
	if q.HelperText != "" {
		return fmt.Sprintf("%s\n\n💡 %s", q.Prompt, q.HelperText)
	}
	return q.Prompt
}
