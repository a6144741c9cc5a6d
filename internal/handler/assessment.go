package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/audit"
	"github.com/glp1rx/assessment-backend/internal/service"
)

// AssessmentHandler implements the assessment conversation API
type AssessmentHandler struct {
	service     *service.SessionService
	catalog     *service.Catalog
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler
func NewAssessmentHandler(service *service.SessionService, catalog *service.Catalog, auditLogger *audit.Logger, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service:     service,
		catalog:     catalog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// StartAssessment opens a new session and returns the welcome transcript
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	result, err := h.service.StartSession(c.Request.Context(), req.PatientID)
	if err != nil {
		h.logger.Error("failed to start session",
			zap.Error(err),
			zap.String("patient_id", req.PatientID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to start assessment session",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if err := h.auditLogger.LogCreate(c.Request.Context(), req.PatientID, audit.ResourceSession, result.SessionID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.logger.Error("failed to log audit entry", zap.Error(err))
	}

	c.JSON(http.StatusOK, turnResponse(result))
}

// PostMessage processes one user turn
func (h *AssessmentHandler) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	result, err := h.service.ProcessMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("failed to process message",
			zap.Error(err),
			zap.String("session_id", req.SessionID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to process message",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, turnResponse(result))
}

// ResetAssessment wipes a session and reseeds the opening transcript
func (h *AssessmentHandler) ResetAssessment(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Session id is required",
		})
		return
	}

	result, err := h.service.ResetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to reset session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to reset session",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if err := h.auditLogger.LogDelete(c.Request.Context(), "", audit.ResourceConversation, sessionID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.logger.Error("failed to log audit entry", zap.Error(err))
	}

	c.JSON(http.StatusOK, turnResponse(result))
}

// GetSessionStatus reports lifecycle state, progress and the pending question
func (h *AssessmentHandler) GetSessionStatus(c *gin.Context) {
	sessionID := c.Param("sessionId")

	status, err := h.service.GetSessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to get session status",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, SessionStatusResponse{
		SessionID:       status.Session.ID,
		PatientID:       status.Session.PatientID,
		Mode:            status.Session.Mode,
		Status:          status.Session.Status,
		Eligibility:     status.Session.Eligibility,
		Progress:        progressPayload(status.Progress),
		CurrentQuestion: questionPayload(status.CurrentQuestion),
		MessageCount:    status.MessageCount,
		StartedAt:       status.Session.StartedAt,
		CompletedAt:     status.Session.CompletedAt,
		ExpiredAt:       status.Session.ExpiredAt,
	})
}

// CompleteAssessment fetches the final recommendation from the external
// engine and passes it through
func (h *AssessmentHandler) CompleteAssessment(c *gin.Context) {
	sessionID := c.Param("sessionId")

	recommendation, err := h.service.CompleteAssessment(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to complete assessment",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "ENGINE_ERROR",
			Message: "Failed to complete assessment",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, recommendation)
}

// ListQuestions returns the full static question catalog
func (h *AssessmentHandler) ListQuestions(c *gin.Context) {
	questions := h.catalog.Questions()

	payloads := make([]QuestionPayload, 0, len(questions))
	for i := range questions {
		payloads = append(payloads, *questionPayload(&questions[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": payloads,
		"count":     len(payloads),
	})
}

func turnResponse(result *service.TurnResult) TurnResponse {
	return TurnResponse{
		SessionID:       result.SessionID,
		Messages:        entryPayloads(result.NewEntries),
		CurrentQuestion: questionPayload(result.CurrentQuestion),
		Progress:        progressPayload(result.Progress),
		Eligibility:     result.Eligibility,
		IsComplete:      result.IsComplete,
	}
}
