package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/audit"
	"github.com/glp1rx/assessment-backend/internal/service"
)

// ReportHandler implements the report API endpoints
type ReportHandler struct {
	service     *service.ReportService
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, auditLogger *audit.Logger, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service:     service,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// GenerateReport renders and stores an assessment summary PDF
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	reportID, err := h.service.GenerateReport(c.Request.Context(), req.SessionID)
	if err != nil {
		h.logger.Error("failed to generate report",
			zap.Error(err),
			zap.String("session_id", req.SessionID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to generate report",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if err := h.auditLogger.LogCreate(c.Request.Context(), "", audit.ResourceReport, reportID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.logger.Error("failed to log audit entry", zap.Error(err))
	}

	c.JSON(http.StatusOK, GenerateReportResponse{ReportID: reportID})
}

// DownloadReport streams a stored report PDF
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	reportID := c.Param("reportId")

	pdfBytes, err := h.service.GetReport(c.Request.Context(), reportID)
	if err != nil {
		h.logger.Error("failed to get report",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Report not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=assessment-report-%s.pdf", reportID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// ListReports lists a patient's report records
func (h *ReportHandler) ListReports(c *gin.Context) {
	patientID := c.Query("patient_id")
	if patientID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "patient_id query parameter is required",
		})
		return
	}

	reports, err := h.service.GetReportsByPatientID(c.Request.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list reports",
			zap.Error(err),
			zap.String("patient_id", patientID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to list reports",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"count":   len(reports),
	})
}
