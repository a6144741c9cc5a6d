package main

import (
	"context"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/internal/assessment"
	"github.com/glp1rx/assessment-backend/internal/audit"
	"github.com/glp1rx/assessment-backend/internal/azure"
	"github.com/glp1rx/assessment-backend/internal/config"
	"github.com/glp1rx/assessment-backend/internal/handler"
	"github.com/glp1rx/assessment-backend/internal/middleware"
	"github.com/glp1rx/assessment-backend/internal/pdf"
	"github.com/glp1rx/assessment-backend/internal/repository"
	"github.com/glp1rx/assessment-backend/internal/security"
	"github.com/glp1rx/assessment-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := cfg.Logging.BuildLogger(cfg.Server.Environment)
	if err != nil {
		panic("Failed to build logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	poolCfg, err := cfg.Database.PoolConfig()
	if err != nil {
		logger.Fatal("Invalid database configuration", zap.Error(err))
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	encryptionKey, err := hex.DecodeString(cfg.Security.EncryptionKey)
	if err != nil {
		logger.Fatal("Failed to decode encryption key", zap.Error(err))
	}
	encryptor, err := security.NewEncryptor(encryptionKey)
	if err != nil {
		logger.Fatal("Failed to initialize encryptor", zap.Error(err))
	}

	// The external assessment engine is optional; without it every session
	// runs the local question flow
	var engineClient *assessment.Client
	if cfg.Engine.URL != "" {
		engineClient, err = assessment.NewClient(cfg.Engine.URL, cfg.Engine.Timeout, logger)
		if err != nil {
			logger.Fatal("Failed to initialize assessment engine client", zap.Error(err))
		}
	} else {
		logger.Warn("Assessment engine URL not configured; sessions run locally")
	}

	// Azure OpenAI is optional; without it free-text answers pass through
	// unnormalized
	var openAIClient *azure.OpenAIClient
	if cfg.Azure.OpenAI.Endpoint != "" {
		openAIClient, err = azure.NewOpenAIClient(
			cfg.Azure.OpenAI.Endpoint,
			cfg.Azure.OpenAI.APIKey,
			cfg.Azure.OpenAI.Deployment,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Azure OpenAI client", zap.Error(err))
		}
	}

	blobClient, err := azure.NewBlobStorageClient(
		cfg.Azure.Storage.AccountName,
		cfg.Azure.Storage.AccountKey,
		cfg.Azure.Storage.ReportContainer,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize Azure Blob Storage client", zap.Error(err))
	}

	sessionRepo := repository.NewSessionRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)
	auditLogger := audit.NewLogger(pool, logger)

	catalog := service.NewCatalog()
	extractor := service.NewDataExtractor(openAIClient, logger)

	sessionService := service.NewSessionService(
		sessionRepo,
		engineClient,
		catalog,
		extractor,
		encryptor,
		logger,
		cfg.Session.MaxAge,
	)

	pdfGenerator := pdf.NewPDFGenerator(logger)
	reportService := service.NewReportService(
		sessionService,
		catalog,
		reportRepo,
		blobClient,
		pdfGenerator,
		logger,
	)

	privacyService := service.NewPrivacyService(
		sessionRepo,
		reportRepo,
		sessionService,
		blobClient,
		auditLogger,
		logger,
	)

	assessmentHandler := handler.NewAssessmentHandler(sessionService, catalog, auditLogger, logger)
	reportHandler := handler.NewReportHandler(reportService, auditLogger, logger)
	privacyHandler := handler.NewPrivacyHandler(privacyService, logger)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Configure appropriately for production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/assessment/start", assessmentHandler.StartAssessment)
		v1.POST("/assessment/message", assessmentHandler.PostMessage)
		v1.POST("/assessment/reset/:sessionId", assessmentHandler.ResetAssessment)
		v1.GET("/assessment/status/:sessionId", assessmentHandler.GetSessionStatus)
		v1.POST("/assessment/complete/:sessionId", assessmentHandler.CompleteAssessment)
		v1.GET("/assessment/questions", assessmentHandler.ListQuestions)

		v1.POST("/reports/generate", reportHandler.GenerateReport)
		v1.GET("/reports/:reportId", reportHandler.DownloadReport)
		v1.GET("/reports", reportHandler.ListReports)

		v1.GET("/privacy/export/:patientId", privacyHandler.ExportPatientData)
		v1.DELETE("/privacy/:patientId", privacyHandler.DeletePatientData)
	}

	r.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"service":  "glp1-assessment-backend",
			"version":  "1.0.0",
		})
	})

	// Background sweep that expires idle sessions
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.Session.ExpirySweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := sessionService.ExpireStaleSessions(sweepCtx); err != nil {
					logger.Error("session expiry sweep failed", zap.Error(err))
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}
