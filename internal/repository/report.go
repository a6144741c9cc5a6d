package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

// ReportRepository manages generated assessment report metadata
type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// CreateReport records a generated report and the blob it was uploaded to
func (r *ReportRepository) CreateReport(ctx context.Context, report *model.Report) error {
	query := `
		INSERT INTO assessment_reports (id, session_id, patient_id, blob_path, generated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.SessionID,
		report.PatientID,
		report.BlobPath,
		report.GeneratedAt,
	)

	if err != nil {
		r.logger.Error("failed to create report", zap.Error(err), zap.String("report_id", report.ID))
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetReport retrieves a report by ID
func (r *ReportRepository) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	query := `
		SELECT id, session_id, patient_id, blob_path, generated_at, created_at
		FROM assessment_reports
		WHERE id = $1
	`

	var report model.Report
	err := r.db.QueryRow(ctx, query, reportID).Scan(
		&report.ID,
		&report.SessionID,
		&report.PatientID,
		&report.BlobPath,
		&report.GeneratedAt,
		&report.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("report not found: %s", reportID)
		}
		r.logger.Error("failed to get report", zap.Error(err), zap.String("report_id", reportID))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}

// GetReportsByPatientID lists a patient's reports, newest first
func (r *ReportRepository) GetReportsByPatientID(ctx context.Context, patientID string) ([]model.Report, error) {
	query := `
		SELECT id, session_id, patient_id, blob_path, generated_at, created_at
		FROM assessment_reports
		WHERE patient_id = $1
		ORDER BY generated_at DESC
	`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		r.logger.Error("failed to get reports", zap.Error(err), zap.String("patient_id", patientID))
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var report model.Report
		err := rows.Scan(
			&report.ID,
			&report.SessionID,
			&report.PatientID,
			&report.BlobPath,
			&report.GeneratedAt,
			&report.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan report", zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating reports", zap.Error(err))
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}
