package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/audit"
	"github.com/glp1rx/assessment-backend/internal/azure"
	"github.com/glp1rx/assessment-backend/internal/repository"
	"github.com/glp1rx/assessment-backend/pkg/model"
)

// PrivacyService handles patient data export and erasure
type PrivacyService struct {
	sessionRepo *repository.SessionRepository
	reportRepo  *repository.ReportRepository
	sessionSvc  *SessionService
	blobClient  azure.BlobStorage
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewPrivacyService creates a new PrivacyService
func NewPrivacyService(
	sessionRepo *repository.SessionRepository,
	reportRepo *repository.ReportRepository,
	sessionSvc *SessionService,
	blobClient azure.BlobStorage,
	auditLogger *audit.Logger,
	logger *zap.Logger,
) *PrivacyService {
	return &PrivacyService{
		sessionRepo: sessionRepo,
		reportRepo:  reportRepo,
		sessionSvc:  sessionSvc,
		blobClient:  blobClient,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// SessionExport is one session with its decrypted answers and transcript
type SessionExport struct {
	Session    model.Session             `json:"session"`
	Answers    model.AnswerSet           `json:"answers"`
	Transcript []model.ConversationEntry `json:"transcript"`
}

// PatientDataExport is everything stored about a patient
type PatientDataExport struct {
	PatientID  string          `json:"patient_id"`
	Sessions   []SessionExport `json:"sessions"`
	Reports    []model.Report  `json:"reports"`
	ExportedAt time.Time       `json:"exported_at"`
}

// ExportPatientData gathers and decrypts everything stored about a patient
func (s *PrivacyService) ExportPatientData(ctx context.Context, patientID, ipAddress, userAgent string) (*PatientDataExport, error) {
	s.logger.Info("starting patient data export", zap.String("patient_id", patientID))

	sessions, err := s.sessionRepo.GetSessionsByPatientID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	export := &PatientDataExport{
		PatientID:  patientID,
		ExportedAt: time.Now(),
	}

	for _, session := range sessions {
		answers, err := s.sessionSvc.loadAnswers(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load answers for session %s: %w", session.ID, err)
		}

		transcript, err := s.sessionRepo.GetConversationEntries(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transcript for session %s: %w", session.ID, err)
		}

		export.Sessions = append(export.Sessions, SessionExport{
			Session:    session,
			Answers:    answers,
			Transcript: transcript,
		})
	}

	reports, err := s.reportRepo.GetReportsByPatientID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	export.Reports = reports

	if err := s.auditLogger.LogExport(ctx, patientID, audit.ResourcePatientData, patientID, ipAddress, userAgent); err != nil {
		s.logger.Error("failed to log audit entry for export", zap.Error(err))
	}

	s.logger.Info("patient data export completed",
		zap.String("patient_id", patientID),
		zap.Int("sessions", len(export.Sessions)),
		zap.Int("reports", len(export.Reports)),
	)

	return export, nil
}

// DeletePatientData erases every session, transcript, state blob, report
// record and report blob belonging to a patient
func (s *PrivacyService) DeletePatientData(ctx context.Context, patientID, ipAddress, userAgent string) error {
	s.logger.Info("starting patient data deletion", zap.String("patient_id", patientID))

	// Collect report blobs before the rows disappear
	reports, err := s.reportRepo.GetReportsByPatientID(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	if err := s.sessionRepo.DeletePatientData(ctx, patientID); err != nil {
		return err
	}

	for _, report := range reports {
		if err := s.blobClient.DeleteReport(ctx, report.BlobPath); err != nil {
			s.logger.Warn("failed to delete report blob",
				zap.String("report_id", report.ID),
				zap.String("blob_path", report.BlobPath),
				zap.Error(err),
			)
		}
	}

	if err := s.auditLogger.LogDelete(ctx, patientID, audit.ResourcePatientData, patientID, ipAddress, userAgent); err != nil {
		s.logger.Error("failed to log audit entry for deletion", zap.Error(err))
	}

	s.logger.Info("patient data deletion completed",
		zap.String("patient_id", patientID),
		zap.Int("reports_removed", len(reports)),
	)

	return nil
}
