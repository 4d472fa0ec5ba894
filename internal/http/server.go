// Package http provides the kiosk operator server, the token store server and the metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/qrgate/internal/metrics"
	scanHTTP "github.com/allisson/qrgate/internal/scan/http"
	storeHTTP "github.com/allisson/qrgate/internal/tokenstore/http"
	"github.com/allisson/qrgate/internal/tokenstore/service"
	"github.com/allisson/qrgate/web"
)

// ReadinessCheck reports whether a component can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Server wraps a gin router in an http.Server.
type Server struct {
	name   string
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	checks map[string]ReadinessCheck
	logger *slog.Logger
}

// NewServer creates a server bound to host:port. db may be nil; when set it is
// pinged by the readiness endpoint.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		name:   "http",
		db:     db,
		checks: make(map[string]ReadinessCheck),
		logger: logger,
		server: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", host, port),
			ReadTimeout: 15 * time.Second,
			// No WriteTimeout: the snapshot stream holds its connection open.
			IdleTimeout: 60 * time.Second,
		},
	}
}

// AddReadinessCheck registers a named component for GET /ready.
func (s *Server) AddReadinessCheck(component string, check ReadinessCheck) {
	s.checks[component] = check
}

// KioskRouterConfig carries the operator server's settings and handlers.
type KioskRouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	GinMode          string

	SessionHandler *scanHTTP.SessionHandler
	TokenHandler   *scanHTTP.TokenHandler
	StreamHandler  *scanHTTP.StreamHandler

	MetricsProvider *metrics.Provider
}

// SetupKioskRouter registers the operator API and the embedded operator page.
func (s *Server) SetupKioskRouter(cfg KioskRouterConfig) {
	router := s.newRouter(cfg.GinMode, newCORSMiddleware(kioskCORS, cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger), cfg.MetricsProvider, "kiosk")

	router.GET("/", s.indexHandler)

	v1 := router.Group("/v1")
	{
		v1.GET("/session", cfg.SessionHandler.GetSessionHandler)
		v1.GET("/session/stream", cfg.StreamHandler.StreamHandler)
		v1.POST("/scanner/start", cfg.SessionHandler.StartScannerHandler)
		v1.POST("/scanner/stop", cfg.SessionHandler.StopScannerHandler)
		v1.GET("/history", cfg.SessionHandler.GetHistoryHandler)
		v1.POST("/decode", cfg.SessionHandler.DecodeHandler)
		v1.POST("/scanner/error", cfg.SessionHandler.ScannerErrorHandler)
		v1.GET("/tokens", cfg.TokenHandler.ListTokensHandler)
	}

	s.router = router
}

// StoreRouterConfig carries the token store server's settings and handlers.
type StoreRouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	GinMode          string

	TokenHandler *storeHTTP.TokenHandler
	APIKeyHasher service.APIKeyHasher
	APIKeyHash   string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	MetricsProvider *metrics.Provider
}

// SetupStoreRouter registers the /api/tokens endpoints. ctx bounds the rate
// limiter's background cleanup.
func (s *Server) SetupStoreRouter(ctx context.Context, cfg StoreRouterConfig) {
	router := s.newRouter(cfg.GinMode, newCORSMiddleware(storeCORS, cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger), cfg.MetricsProvider, "store")

	api := router.Group("/api")
	if cfg.RateLimitEnabled {
		api.Use(storeHTTP.IPRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	requireKey := storeHTTP.APIKeyMiddleware(cfg.APIKeyHasher, cfg.APIKeyHash, s.logger)
	tokens := api.Group("/tokens")
	{
		tokens.GET("", cfg.TokenHandler.ListHandler)
		tokens.POST("", requireKey, cfg.TokenHandler.IssueHandler)
		tokens.POST("/invalidate", requireKey, cfg.TokenHandler.InvalidateHandler)
	}

	s.router = router
}

func (s *Server) newRouter(
	ginMode string,
	corsMiddleware gin.HandlerFunc,
	metricsProvider *metrics.Provider,
	serverLabel string,
) *gin.Engine {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	s.name = serverLabel

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider, serverLabel))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	return listenAndServe(s.server, s.logger, s.name)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports per-component status; any failure answers 503.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.checks)+1)
	ready := true

	if s.db != nil {
		components["database"] = "ok"
		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		}
	}

	for name, check := range s.checks {
		components[name] = "ok"
		if err := check(ctx); err != nil {
			components[name] = "error"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

func (s *Server) indexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}
