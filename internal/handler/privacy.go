package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/service"
)

// PrivacyHandler implements patient data export and erasure endpoints
type PrivacyHandler struct {
	service *service.PrivacyService
	logger  *zap.Logger
}

// NewPrivacyHandler creates a new PrivacyHandler
func NewPrivacyHandler(service *service.PrivacyService, logger *zap.Logger) *PrivacyHandler {
	return &PrivacyHandler{
		service: service,
		logger:  logger,
	}
}

// ExportPatientData returns everything stored about a patient as JSON
func (h *PrivacyHandler) ExportPatientData(c *gin.Context) {
	patientID := c.Param("patientId")

	export, err := h.service.ExportPatientData(c.Request.Context(), patientID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to export patient data",
			zap.Error(err),
			zap.String("patient_id", patientID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to export patient data",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=patient-data-export.json")
	c.JSON(http.StatusOK, export)
}

// DeletePatientData erases everything stored about a patient
func (h *PrivacyHandler) DeletePatientData(c *gin.Context) {
	patientID := c.Param("patientId")

	if err := h.service.DeletePatientData(c.Request.Context(), patientID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.logger.Error("failed to delete patient data",
			zap.Error(err),
			zap.String("patient_id", patientID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to delete patient data",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Patient data deleted",
	})
}
