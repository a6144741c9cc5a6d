package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/azure"
	"github.com/glp1rx/assessment-backend/internal/pdf"
	"github.com/glp1rx/assessment-backend/pkg/model"
)

// ReportStore is the persistence surface for report records
type ReportStore interface {
	CreateReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, reportID string) (*model.Report, error)
	GetReportsByPatientID(ctx context.Context, patientID string) ([]model.Report, error)
}

// ReportService builds assessment summary PDFs and stores them in blob
// storage
type ReportService struct {
	sessionSvc *SessionService
	catalog    *Catalog
	reportRepo ReportStore
	blobClient azure.BlobStorage
	pdfGen     *pdf.PDFGenerator
	logger     *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	sessionSvc *SessionService,
	catalog *Catalog,
	reportRepo ReportStore,
	blobClient azure.BlobStorage,
	pdfGen *pdf.PDFGenerator,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		sessionSvc: sessionSvc,
		catalog:    catalog,
		reportRepo: reportRepo,
		blobClient: blobClient,
		pdfGen:     pdfGen,
		logger:     logger,
	}
}

// GenerateReport renders the session's assessment summary as a PDF, uploads
// it and records it, returning the report id
func (s *ReportService) GenerateReport(ctx context.Context, sessionID string) (string, error) {
	s.logger.Info("generating assessment report", zap.String("session_id", sessionID))

	status, err := s.sessionSvc.GetSessionStatus(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	answers, err := s.sessionSvc.loadAnswers(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load answers: %w", err)
	}

	transcript, err := s.sessionSvc.GetTranscript(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load transcript: %w", err)
	}

	reportID := uuid.New().String()

	data := &pdf.ReportData{
		SessionID:   sessionID,
		Eligibility: string(status.Session.Eligibility),
		BMI:         CalculateBMI(numberAnswer(answers, "weight"), numberAnswer(answers, "height")),
		Progress:    status.Progress.Overall,
		Sections:    s.answerSections(answers),
		Transcript:  transcriptLines(transcript),
	}
	if name, ok := answers["fullName"].(string); ok {
		data.PatientName = name
	}

	pdfBytes, err := s.pdfGen.Generate(data)
	if err != nil {
		s.logger.Error("failed to generate PDF",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.pdf", reportID, time.Now().Format("20060102"))
	blobPath, err := s.blobClient.UploadReport(ctx, filename, pdfBytes)
	if err != nil {
		s.logger.Error("failed to upload PDF to blob storage",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return "", fmt.Errorf("failed to upload PDF: %w", err)
	}

	report := &model.Report{
		ID:          reportID,
		SessionID:   sessionID,
		PatientID:   status.Session.PatientID,
		BlobPath:    blobPath,
		GeneratedAt: time.Now(),
	}

	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		s.logger.Error("failed to save report record",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return "", fmt.Errorf("failed to save report record: %w", err)
	}

	s.logger.Info("assessment report generated",
		zap.String("report_id", reportID),
		zap.String("session_id", sessionID),
		zap.String("blob_path", blobPath),
	)

	return reportID, nil
}

// GetReport retrieves a report PDF for download
func (s *ReportService) GetReport(ctx context.Context, reportID string) ([]byte, error) {
	report, err := s.reportRepo.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report record: %w", err)
	}

	pdfBytes, err := s.blobClient.DownloadReport(ctx, report.BlobPath)
	if err != nil {
		s.logger.Error("failed to download PDF from blob storage",
			zap.Error(err),
			zap.String("report_id", reportID),
			zap.String("blob_path", report.BlobPath),
		)
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}

	return pdfBytes, nil
}

// GetReportsByPatientID lists a patient's report records
func (s *ReportService) GetReportsByPatientID(ctx context.Context, patientID string) ([]model.Report, error) {
	reports, err := s.reportRepo.GetReportsByPatientID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	return reports, nil
}

// answerSections renders the answer set per category, in catalog order
func (s *ReportService) answerSections(answers model.AnswerSet) []pdf.CategorySection {
	titles := map[model.QuestionCategory]string{
		model.CategoryPersonal:    "Personal Information",
		model.CategoryMedical:     "Medical History",
		model.CategoryLifestyle:   "Lifestyle",
		model.CategoryMedications: "Current Medications",
		model.CategoryGoals:       "Treatment Goals",
	}

	var sections []pdf.CategorySection
	for _, category := range s.catalog.Categories() {
		section := pdf.CategorySection{Title: titles[category]}
		for _, q := range s.catalog.QuestionsByCategory(category) {
			value, ok := answers[q.ID]
			if !ok {
				continue
			}
			section.Items = append(section.Items, pdf.AnswerItem{
				Question: q.Prompt,
				Answer:   formatAnswer(&q, value),
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// formatAnswer renders an answer value for display, mapping option values
// back to their labels
func formatAnswer(q *model.Question, value interface{}) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		if q.Unit != "" {
			return fmt.Sprintf("%g %s", v, q.Unit)
		}
		return fmt.Sprintf("%g", v)
	case string:
		return optionLabel(q, v)
	case []string:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			labels = append(labels, optionLabel(q, item))
		}
		return strings.Join(labels, ", ")
	case []interface{}:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				labels = append(labels, optionLabel(q, str))
			}
		}
		return strings.Join(labels, ", ")
	default:
		return fmt.Sprintf("%v", value)
	}
}

func optionLabel(q *model.Question, value string) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func roleLabel(role model.MessageRole) string {
	switch role {
	case model.MessageRoleUser:
		return "Patient"
	case model.MessageRoleAssistant:
		return "Assistant"
	default:
		return "System"
	}
}

func transcriptLines(entries []model.ConversationEntry) []pdf.TranscriptLine {
	lines := make([]pdf.TranscriptLine, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, pdf.TranscriptLine{
			Role:    roleLabel(entry.Role),
			Content: entry.Content,
		})
	}
	return lines
}
