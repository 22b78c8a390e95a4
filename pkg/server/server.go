package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soundprediction/kgreason"
	"github.com/soundprediction/kgreason/pkg/config"
	"github.com/soundprediction/kgreason/pkg/server/handlers"
	"github.com/soundprediction/kgreason/pkg/telemetry"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	kb     kgreason.KGReason
	server *http.Server
	logger *slog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, kb kgreason.KGReason) *Server {
	return &Server{
		config: cfg,
		kb:     kb,
		logger: slog.Default(),
	}
}

// SetLogger replaces the request and lifecycle logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggerMiddleware(s.logger))
	s.router.Use(corsMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler returns the configured router. Setup must be called first.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.kb)
	reasonHandler := handlers.NewReasonHandler(s.kb)
	conceptHandler := handlers.NewConceptHandler(s.kb)
	adminHandler := handlers.NewAdminHandler(s.kb)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	v1.Use(requireKnowledgeBase(s.kb != nil))
	{
		v1.POST("/reason", reasonHandler.Reason)

		concepts := v1.Group("/concepts")
		{
			concepts.GET("", conceptHandler.ListConcepts)
			concepts.POST("", conceptHandler.CreateConcept)
			concepts.POST("/batch", conceptHandler.BatchConcepts)
			concepts.GET("/:id", conceptHandler.GetConcept)
			concepts.PUT("/:id", conceptHandler.UpdateConcept)
			concepts.DELETE("/:id", conceptHandler.DeleteConcept)
		}

		relations := v1.Group("/relations")
		{
			relations.POST("", conceptHandler.CreateRelation)
			relations.POST("/batch", conceptHandler.BatchRelations)
		}

		v1.POST("/optimize", adminHandler.Optimize)
		v1.GET("/stats", adminHandler.Stats)
		v1.GET("/export", adminHandler.Export)
		v1.POST("/import", adminHandler.Import)
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware propagates an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// loggerMiddleware logs one line per request through slog.
func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.ErrorContext(c.Request.Context(), "Request failed", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.WarnContext(c.Request.Context(), "Request rejected", attrs...)
		default:
			logger.DebugContext(c.Request.Context(), "Request handled", attrs...)
		}
	}
}

// requireKnowledgeBase rejects API calls while no knowledge base is attached.
func requireKnowledgeBase(ready bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "not_ready",
				"message": "knowledge base not initialized",
			})
			return
		}
		c.Next()
	}
}
