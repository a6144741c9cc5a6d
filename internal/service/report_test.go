package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/azure"
	"github.com/glp1rx/assessment-backend/internal/pdf"
	"github.com/glp1rx/assessment-backend/pkg/model"
)

// fakeReportStore is an in-memory ReportStore for unit tests
type fakeReportStore struct {
	reports map[string]model.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[string]model.Report)}
}

func (f *fakeReportStore) CreateReport(ctx context.Context, report *model.Report) error {
	f.reports[report.ID] = *report
	return nil
}

func (f *fakeReportStore) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	report, ok := f.reports[reportID]
	if !ok {
		return nil, fmt.Errorf("report not found: %s", reportID)
	}
	return &report, nil
}

func (f *fakeReportStore) GetReportsByPatientID(ctx context.Context, patientID string) ([]model.Report, error) {
	var out []model.Report
	for _, report := range f.reports {
		if report.PatientID == patientID {
			out = append(out, report)
		}
	}
	return out, nil
}

func newTestReportService(t *testing.T) (*ReportService, *SessionService, *azure.MockBlobStorageClient, *fakeReportStore) {
	t.Helper()

	logger := zap.NewNop()
	sessionSvc := newTestSessionService(t, newFakeSessionStore())
	blob := azure.NewMockBlobStorageClient(logger)
	store := newFakeReportStore()

	svc := NewReportService(
		sessionSvc,
		NewCatalog(),
		store,
		blob,
		pdf.NewPDFGenerator(logger),
		logger,
	)
	return svc, sessionSvc, blob, store
}

func TestReportService_GenerateReport(t *testing.T) {
	svc, sessionSvc, blob, store := newTestReportService(t)
	ctx := context.Background()

	started, err := sessionSvc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	for _, answer := range []string{"Jane Doe", "45", "female", "no", "170", "90"} {
		_, err = sessionSvc.ProcessMessage(ctx, started.SessionID, answer)
		require.NoError(t, err)
	}

	reportID, err := svc.GenerateReport(ctx, started.SessionID)
	require.NoError(t, err)
	require.NotEmpty(t, reportID)

	// The record points at an uploaded PDF blob
	record, err := store.GetReport(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, started.SessionID, record.SessionID)
	assert.Equal(t, "patient-1", record.PatientID)
	assert.True(t, strings.HasPrefix(record.BlobPath, "reports/"))

	pdfBytes, err := blob.DownloadReport(ctx, record.BlobPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"), "uploaded blob is a PDF document")
}

func TestReportService_GenerateReport_UnknownSession(t *testing.T) {
	svc, _, _, _ := newTestReportService(t)

	_, err := svc.GenerateReport(context.Background(), "missing-session")
	assert.Error(t, err)
}

func TestReportService_GetReport(t *testing.T) {
	svc, sessionSvc, _, _ := newTestReportService(t)
	ctx := context.Background()

	started, err := sessionSvc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	reportID, err := svc.GenerateReport(ctx, started.SessionID)
	require.NoError(t, err)

	pdfBytes, err := svc.GetReport(ctx, reportID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))

	_, err = svc.GetReport(ctx, "missing-report")
	assert.Error(t, err)
}

func TestReportService_GetReportsByPatientID(t *testing.T) {
	svc, sessionSvc, _, _ := newTestReportService(t)
	ctx := context.Background()

	started, err := sessionSvc.StartSession(ctx, "patient-1")
	require.NoError(t, err)

	_, err = svc.GenerateReport(ctx, started.SessionID)
	require.NoError(t, err)
	_, err = svc.GenerateReport(ctx, started.SessionID)
	require.NoError(t, err)

	reports, err := svc.GetReportsByPatientID(ctx, "patient-1")
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	reports, err = svc.GetReportsByPatientID(ctx, "other-patient")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestFormatAnswer(t *testing.T) {
	boolQ := &model.Question{ID: "pregnant", Type: model.QuestionTypeBoolean}
	numQ := &model.Question{ID: "weight", Type: model.QuestionTypeWeight, Unit: "kg"}
	bareNumQ := &model.Question{ID: "count", Type: model.QuestionTypeNumber}
	selectQ := &model.Question{
		ID:   "smokingStatus",
		Type: model.QuestionTypeSelect,
		Options: []model.QuestionOption{
			{Value: "never", Label: "Never smoked"},
			{Value: "current", Label: "Current smoker"},
		},
	}
	multiQ := &model.Question{
		ID:   "diagnosedConditions",
		Type: model.QuestionTypeMultiSelect,
		Options: []model.QuestionOption{
			{Value: "obesity", Label: "Obesity"},
			{Value: "hypertension", Label: "High Blood Pressure (Hypertension)"},
		},
	}

	tests := []struct {
		name     string
		question *model.Question
		value    interface{}
		want     string
	}{
		{name: "bool true", question: boolQ, value: true, want: "Yes"},
		{name: "bool false", question: boolQ, value: false, want: "No"},
		{name: "number with unit", question: numQ, value: 85.5, want: "85.5 kg"},
		{name: "number without unit", question: bareNumQ, value: float64(3), want: "3"},
		{name: "select maps value to label", question: selectQ, value: "never", want: "Never smoked"},
		{name: "select keeps off-catalog value", question: selectQ, value: "socially", want: "socially"},
		{name: "multiselect joins labels", question: multiQ, value: []string{"obesity", "hypertension"}, want: "Obesity, High Blood Pressure (Hypertension)"},
		{name: "json round-trip shape", question: multiQ, value: []interface{}{"obesity"}, want: "Obesity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAnswer(tt.question, tt.value))
		})
	}
}

func TestAnswerSections(t *testing.T) {
	svc, _, _, _ := newTestReportService(t)

	answers := model.AnswerSet{
		"fullName":            "Jane Doe",
		"diagnosedConditions": []string{"obesity"},
		"smokingStatus":       "never",
	}

	sections := svc.answerSections(answers)
	require.Len(t, sections, 5)

	assert.Equal(t, "Personal Information", sections[0].Title)
	require.Len(t, sections[0].Items, 1)
	assert.Equal(t, "What is your full name?", sections[0].Items[0].Question)
	assert.Equal(t, "Jane Doe", sections[0].Items[0].Answer)

	assert.Equal(t, "Medical History", sections[1].Title)
	require.Len(t, sections[1].Items, 1)
	assert.Equal(t, "Obesity", sections[1].Items[0].Answer)

	assert.Equal(t, "Lifestyle", sections[2].Title)
	require.Len(t, sections[2].Items, 1)
	assert.Equal(t, "Never smoked", sections[2].Items[0].Answer)

	// Unanswered categories stay empty
	assert.Empty(t, sections[3].Items)
	assert.Empty(t, sections[4].Items)
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Patient", roleLabel(model.MessageRoleUser))
	assert.Equal(t, "Assistant", roleLabel(model.MessageRoleAssistant))
	assert.Equal(t, "System", roleLabel(model.MessageRoleSystem))
}
