// Package api exposes the coaching pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
	"github.com/health-coach-server/internal/middleware"
	"github.com/health-coach-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	analyzer      *service.Analyzer
	builder       *service.RoutineBuilder
	store         domain.SummaryStore
	searcher      domain.SimilaritySearcher
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager domain.ConfigManager,
	analyzer *service.Analyzer,
	builder *service.RoutineBuilder,
	store domain.SummaryStore,
	searcher domain.SimilaritySearcher,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware. Request IDs are assigned before the access logger
	// so every log line carries one.
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(middleware.AccessLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())

	server := &Server{
		configManager: configManager,
		analyzer:      analyzer,
		builder:       builder,
		store:         store,
		searcher:      searcher,
		logger:        logger,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	s.logger.WithField("addr", addr).Info("HTTP server listening")

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/analysis", s.handleAnalysis)
		v1.POST("/routine", s.handleRoutine)
		v1.POST("/similar", s.handleSimilarDays)
		v1.GET("/summaries/:id", s.handleGetSummary)
		v1.GET("/summaries", s.handleListSummaries)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// analysisRequest is the transport form of an analysis call. Mode is
// optional and defaults to the configured backend.
type analysisRequest struct {
	UserID      string                   `json:"user_id" binding:"required"`
	Snapshot    domain.BiometricSnapshot `json:"snapshot" binding:"required"`
	DurationMin int                      `json:"duration_min"`
	Mode        domain.AnalysisMode      `json:"mode"`
	Persist     *bool                    `json:"persist,omitempty"`
}

// handleAnalysis runs a full coaching analysis for one snapshot and, by
// default, persists the resulting daily summary for future similarity
// lookups.
func (s *Server) handleAnalysis(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid analysis request", err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = s.configManager.GetConfig().Analysis.Mode
	}

	result, err := s.analyzer.RunAnalysis(c.Request.Context(), mode, &domain.AnalysisRequest{
		UserID:      req.UserID,
		Snapshot:    req.Snapshot,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			s.respondError(c, http.StatusBadRequest, domain.ErrValidation, validation.Message, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrAnalysis, "analysis failed", err)
		return
	}

	if req.Persist == nil || *req.Persist {
		s.persistSummary(c.Request.Context(), req.UserID, &req.Snapshot, result)
	}

	c.JSON(http.StatusOK, result)
}

// persistSummary saves a daily digest of the analysis. Failures are
// logged, not surfaced; persistence never blocks the response.
func (s *Server) persistSummary(ctx context.Context, userID string, snapshot *domain.BiometricSnapshot, result *domain.AnalysisResult) {
	if s.store == nil {
		return
	}

	date := snapshot.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	summary := &domain.DailySummary{
		UserID:         userID,
		Date:           date,
		SleepHours:     snapshot.SleepHours,
		Steps:          snapshot.Steps,
		RestingHR:      snapshot.RestingHeartRate,
		ActiveCalories: snapshot.ActiveCalories,
		Score:          result.Assessment.Score,
		Grade:          result.Assessment.Grade,
		Summary:        result.Commentary,
	}
	if err := s.store.SaveSummary(ctx, summary); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to persist daily summary")
	}
}

type routineRequest struct {
	Score       int     `json:"score" binding:"min=0,max=100"`
	DurationMin int     `json:"duration_min" binding:"required,min=1"`
	WeightKg    float64 `json:"weight_kg"`
}

// handleRoutine builds a routine directly from a known score, without
// re-running the assessment.
func (s *Server) handleRoutine(c *gin.Context) {
	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid routine request", err)
		return
	}

	weight := req.WeightKg
	if weight <= 0 {
		weight = service.EstimateWeight(&domain.BiometricSnapshot{})
	}

	settings := service.SettingsForScore(req.Score)
	routine := s.builder.Build(req.Score, req.DurationMin, weight, settings)

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"routine":  routine,
	})
}

type similarRequest struct {
	UserID   string                   `json:"user_id" binding:"required"`
	Snapshot domain.BiometricSnapshot `json:"snapshot" binding:"required"`
	TopK     int                      `json:"top_k"`
}

// handleSimilarDays returns the user's most similar stored days.
func (s *Server) handleSimilarDays(c *gin.Context) {
	if s.searcher == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrInternalServer, "similarity search is not configured", nil)
		return
	}

	var req similarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid similarity request", err)
		return
	}

	days, err := s.searcher.FindSimilarDays(c.Request.Context(), req.UserID, &req.Snapshot, req.TopK)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "similarity search failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": days})
}

// handleGetSummary handles summary retrieval requests
func (s *Server) handleGetSummary(c *gin.Context) {
	summary, err := s.store.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrInvalidInput, "summary not found", err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to load summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleListSummaries handles summary listing requests
func (s *Server) handleListSummaries(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "user_id is required", nil)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "limit must be a non-negative integer", err)
			return
		}
		limit = parsed
	}

	summaries, err := s.store.ListSummaries(c.Request.Context(), userID, limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to list summaries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries, "count": len(summaries)})
}

func (s *Server) respondError(c *gin.Context, status int, code, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	requestID, _ := c.Get("request_id")
	id, _ := requestID.(string)

	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": id,
			"path":       c.Request.URL.Path,
		}).Warn(message)
	}

	c.JSON(status, gin.H{"error": domain.NewCoachError(code, message, details, id)})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
