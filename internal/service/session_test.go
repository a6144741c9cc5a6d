package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/security"
	"github.com/glp1rx/assessment-backend/pkg/model"
)

// fakeSessionStore is an in-memory SessionStore for unit tests
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	entries  map[string][]model.ConversationEntry
	state    map[string][]byte
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]*model.Session),
		entries:  make(map[string][]model.ConversationEntry),
		state:    make(map[string][]byte),
	}
}

func (f *fakeSessionStore) stateKey(sessionID, key string) string {
	return sessionID + "/" + key
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	copied.UpdatedAt = time.Now()
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionStore) UpdateSession(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return fmt.Errorf("session not found: %s", session.ID)
	}
	copied := *session
	copied.UpdatedAt = time.Now()
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) SaveConversationEntry(ctx context.Context, entry *model.ConversationEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.SessionID] = append(f.entries[entry.SessionID], *entry)
	return nil
}

func (f *fakeSessionStore) GetConversationEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ConversationEntry(nil), f.entries[sessionID]...), nil
}

func (f *fakeSessionStore) DeleteConversationEntries(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, sessionID)
	return nil
}

func (f *fakeSessionStore) SetState(ctx context.Context, sessionID, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[f.stateKey(sessionID, key)] = append([]byte(nil), value...)
	return nil
}

func (f *fakeSessionStore) GetState(ctx context.Context, sessionID, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.state[f.stateKey(sessionID, key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (f *fakeSessionStore) DeleteState(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.state {
		if strings.HasPrefix(key, sessionID+"/") {
			delete(f.state, key)
		}
	}
	return nil
}

func (f *fakeSessionStore) ExpireStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	now := time.Now()
	for _, session := range f.sessions {
		if session.Status == model.SessionStatusActive && now.Sub(session.UpdatedAt) > maxAge {
			session.Status = model.SessionStatusExpired
			session.ExpiredAt = &now
			expired++
		}
	}
	return expired, nil
}

func newTestSessionService(t *testing.T, store *fakeSessionStore) *SessionService {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	encryptor, err := security.NewEncryptor(key)
	require.NoError(t, err)

	logger := zap.NewNop()
	return NewSessionService(
		store,
		nil, // no engine: local mode
		NewCatalog(),
		NewDataExtractor(nil, logger),
		encryptor,
		logger,
		24*time.Hour,
	)
}

func TestSessionService_StartSession_Local(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	result, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	// Welcome message plus first question
	require.Len(t, result.NewEntries, 2)
	assert.Equal(t, model.MessageRoleSystem, result.NewEntries[0].Role)
	assert.Contains(t, result.NewEntries[0].Content, "Welcome to the GLP-1 Medication Eligibility Assessment")
	assert.Equal(t, model.MessageRoleAssistant, result.NewEntries[1].Role)
	assert.Contains(t, result.NewEntries[1].Content, "What is your full name?")

	require.NotNil(t, result.CurrentQuestion)
	assert.Equal(t, "fullName", result.CurrentQuestion.ID)
	assert.Equal(t, 0, result.Progress.Overall)
	assert.Equal(t, model.EligibilityPending, result.Eligibility)
	assert.False(t, result.IsComplete)

	session, err := store.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionModeLocal, session.Mode)
	assert.Equal(t, model.SessionStatusActive, session.Status)
	assert.Equal(t, "patient-1", session.PatientID)
}

func TestSessionService_ProcessMessage_AdvancesQuestion(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	result, err := svc.ProcessMessage(ctx, started.SessionID, "Jane Doe")
	require.NoError(t, err)

	// User entry plus next question
	require.Len(t, result.NewEntries, 2)
	assert.Equal(t, model.MessageRoleUser, result.NewEntries[0].Role)
	assert.Equal(t, "Jane Doe", result.NewEntries[0].Content)
	assert.Contains(t, result.NewEntries[1].Content, "How old are you?")

	require.NotNil(t, result.CurrentQuestion)
	assert.Equal(t, "age", result.CurrentQuestion.ID)
	assert.Greater(t, result.Progress.Overall, 0)
}

func TestSessionService_ProcessMessage_InvalidAnswerReprompts(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	// Advance to the age question
	_, err = svc.ProcessMessage(ctx, started.SessionID, "Jane Doe")
	require.NoError(t, err)

	// 17 violates the age minimum
	result, err := svc.ProcessMessage(ctx, started.SessionID, "17")
	require.NoError(t, err)

	require.Len(t, result.NewEntries, 2)
	reprompt := result.NewEntries[1]
	assert.Contains(t, reprompt.Content, "⚠️")
	assert.Contains(t, reprompt.Content, "You must be at least 18 years old")
	assert.Contains(t, reprompt.Content, "Please try again: How old are you?")

	// The question does not advance and the answer is not merged
	require.NotNil(t, result.CurrentQuestion)
	assert.Equal(t, "age", result.CurrentQuestion.ID)

	// A valid retry then succeeds
	result, err = svc.ProcessMessage(ctx, started.SessionID, "45")
	require.NoError(t, err)
	require.NotNil(t, result.CurrentQuestion)
	assert.Equal(t, "gender", result.CurrentQuestion.ID)
}

func TestSessionService_ProcessMessage_BMIInfoAfterHeight(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	sessionID := started.SessionID
	// Walk up to the height question
	for _, answer := range []string{"Jane Doe", "45", "female", "no"} {
		_, err = svc.ProcessMessage(ctx, sessionID, answer)
		require.NoError(t, err)
	}

	// Height answered, weight still missing: no BMI info yet
	result, err := svc.ProcessMessage(ctx, sessionID, "170 cm")
	require.NoError(t, err)
	for _, entry := range result.NewEntries {
		assert.NotContains(t, entry.Content, "Your BMI is")
	}
	require.NotNil(t, result.CurrentQuestion)
	assert.Equal(t, "weight", result.CurrentQuestion.ID)

	// Weight completes the pair: the BMI interstitial fires exactly once
	result, err = svc.ProcessMessage(ctx, sessionID, "85 kg")
	require.NoError(t, err)
	require.Len(t, result.NewEntries, 3)
	info := result.NewEntries[1]
	assert.Equal(t, "✅ Thank you! Your BMI is 29.4.\n\nNext question:", info.Content)
	require.NotNil(t, info.Metadata)
	assert.Equal(t, 29.4, info.Metadata["bmi"])

	// The next turn carries no BMI message
	result, err = svc.ProcessMessage(ctx, sessionID, "obesity")
	require.NoError(t, err)
	for _, entry := range result.NewEntries {
		assert.NotContains(t, entry.Content, "Your BMI is")
	}
}

func TestSessionService_ProcessMessage_EmptyMessage(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, started.SessionID, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "message cannot be empty")
}

func TestSessionService_ProcessMessage_UnknownSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)

	_, err := svc.ProcessMessage(context.Background(), "missing-session", "hello")
	assert.Error(t, err)
}

func TestSessionService_ProcessMessage_ExpiredSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	// Backdate the last activity past the max age
	store.mu.Lock()
	store.sessions[started.SessionID].StartedAt = time.Now().Add(-48 * time.Hour)
	store.sessions[started.SessionID].UpdatedAt = time.Now().Add(-48 * time.Hour)
	store.mu.Unlock()

	_, err = svc.ProcessMessage(ctx, started.SessionID, "Jane Doe")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	session, err := store.GetSession(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusExpired, session.Status)
}

func TestSessionService_FullLocalFlow(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)
	sessionID := started.SessionID

	// An eligible profile: 45 years, BMI 31.1, obesity diagnosis, no
	// contraindications
	answers := map[string]string{
		"fullName":            "Jane Doe",
		"age":                 "45",
		"gender":              "female",
		"pregnant":            "no",
		"height":              "170",
		"weight":              "90",
		"diagnosedConditions": "obesity",
		"thyroidDisease":      "no",
		"pancreatitisHistory": "no",
		"kidneyDisease":       "no kidney issues",
		"gastroparesis":       "no",
		"weightLossAttempts":  "diet changes and exercise programs",
		"exerciseFrequency":   "1-2 times per week",
		"dietPattern":         "standard mixed diet",
		"smokingStatus":       "never smoked",
		"alcoholUse":          "occasionally",
		"currentMedications":  "vitamin D",
		"bloodPressureMeds":   "no",
		"cholesterolMeds":     "no",
		"previousGLP1":        "never taken",
		"primaryGoal":         "weight loss",
		"weightLossGoal":      "10",
		"timeline":            "as soon as possible",
		"injectionComfort":    "willing to learn",
		"costConcern":         "full coverage",
	}

	var result *TurnResult
	for i := 0; i < 40; i++ {
		status, err := svc.GetSessionStatus(ctx, sessionID)
		require.NoError(t, err)
		if status.CurrentQuestion == nil {
			break
		}
		answer, ok := answers[status.CurrentQuestion.ID]
		require.True(t, ok, "no scripted answer for question %s", status.CurrentQuestion.ID)

		result, err = svc.ProcessMessage(ctx, sessionID, answer)
		require.NoError(t, err)
	}

	require.NotNil(t, result)
	assert.True(t, result.IsComplete)
	assert.Equal(t, model.EligibilityEligible, result.Eligibility)
	assert.Equal(t, 100, result.Progress.Overall)

	// Terminal summary is the eligible variant
	last := result.NewEntries[len(result.NewEntries)-1]
	assert.Contains(t, last.Content, "Assessment Complete")
	assert.Contains(t, last.Content, "preliminarily eligible")

	session, err := store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, session.Status)
	require.NotNil(t, session.CompletedAt)

	// A further message no longer runs a turn
	_, err = svc.ProcessMessage(ctx, sessionID, "anything")
	assert.Error(t, err)
}

func TestSessionService_IneligibleFlowSummary(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-2")
	require.NoError(t, err)
	sessionID := started.SessionID

	// BMI 24.2 with no qualifying comorbidity
	answers := map[string]string{
		"fullName":            "John Doe",
		"age":                 "30",
		"gender":              "male",
		"pregnant":            "no",
		"height":              "170",
		"weight":              "70",
		"diagnosedConditions": "none of the above",
		"thyroidDisease":      "no",
		"pancreatitisHistory": "no",
		"kidneyDisease":       "no kidney issues",
		"gastroparesis":       "no",
		"weightLossAttempts":  "no previous attempts",
		"exerciseFrequency":   "3-4 times per week",
		"dietPattern":         "mediterranean diet",
		"smokingStatus":       "never smoked",
		"alcoholUse":          "never",
		"currentMedications":  "none",
		"bloodPressureMeds":   "no",
		"cholesterolMeds":     "no",
		"previousGLP1":        "never taken",
		"primaryGoal":         "better blood sugar control",
		"timeline":            "just exploring options",
		"injectionComfort":    "willing to learn",
		"costConcern":         "not sure about coverage",
	}

	var result *TurnResult
	for i := 0; i < 40; i++ {
		status, err := svc.GetSessionStatus(ctx, sessionID)
		require.NoError(t, err)
		if status.CurrentQuestion == nil {
			break
		}
		answer, ok := answers[status.CurrentQuestion.ID]
		require.True(t, ok, "no scripted answer for question %s", status.CurrentQuestion.ID)

		result, err = svc.ProcessMessage(ctx, sessionID, answer)
		require.NoError(t, err)
	}

	require.NotNil(t, result)
	assert.True(t, result.IsComplete)
	assert.Equal(t, model.EligibilityIneligible, result.Eligibility)

	last := result.NewEntries[len(result.NewEntries)-1]
	assert.Contains(t, last.Content, "may not qualify for GLP-1 treatment")
}

func TestSessionService_ResetSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)
	sessionID := started.SessionID

	_, err = svc.ProcessMessage(ctx, sessionID, "Jane Doe")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, sessionID, "45")
	require.NoError(t, err)

	result, err := svc.ResetSession(ctx, sessionID)
	require.NoError(t, err)

	// Back to the opening transcript and the first question
	require.Len(t, result.NewEntries, 2)
	assert.Equal(t, model.MessageRoleSystem, result.NewEntries[0].Role)
	require.NotNil(t, result.CurrentQuestion)
	assert.Equal(t, "fullName", result.CurrentQuestion.ID)
	assert.Equal(t, 0, result.Progress.Overall)
	assert.Equal(t, model.EligibilityPending, result.Eligibility)

	// The stored transcript only holds the reseeded entries
	entries, err := store.GetConversationEntries(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSessionService_GetSessionStatus(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, started.SessionID, "Jane Doe")
	require.NoError(t, err)

	status, err := svc.GetSessionStatus(ctx, started.SessionID)
	require.NoError(t, err)

	assert.Equal(t, started.SessionID, status.Session.ID)
	require.NotNil(t, status.CurrentQuestion)
	assert.Equal(t, "age", status.CurrentQuestion.ID)
	assert.Greater(t, status.Progress.Overall, 0)
	// Welcome, first question, user answer, second question
	assert.Equal(t, 4, status.MessageCount)
}

func TestSessionService_ExpireStaleSessions(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	store.mu.Lock()
	store.sessions[started.SessionID].UpdatedAt = time.Now().Add(-48 * time.Hour)
	store.mu.Unlock()

	expired, err := svc.ExpireStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
}

func TestSessionService_SlowActiveSessionNotExpired(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	// Started long ago but active recently; only idle time counts
	store.mu.Lock()
	store.sessions[started.SessionID].StartedAt = time.Now().Add(-48 * time.Hour)
	store.mu.Unlock()

	turn, err := svc.ProcessMessage(ctx, started.SessionID, "Jane Doe")
	require.NoError(t, err)
	require.NotNil(t, turn.CurrentQuestion)
	assert.Equal(t, "age", turn.CurrentQuestion.ID)

	expired, err := svc.ExpireStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)
}

func TestSessionService_CompleteAssessment_NoEngine(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(t, store)

	_, err := svc.CompleteAssessment(context.Background(), "any")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "assessment engine is not configured")
}
