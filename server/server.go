package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/tasktree/core"
	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/notifications"
)

// EventsPath is the SSE endpoint; it is excluded from gzip
const EventsPath = "/api/events"

// Server owns and coordinates all application components
type Server struct {
	cfg *Config

	// Components (owned by server)
	notifService *notifications.Service
	core         *core.Service

	// Shutdown context - cancelled when server is shutting down.
	// Long-running handlers (SSE) should listen to this.
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	// HTTP
	router *gin.Engine
	http   *http.Server
}

// New creates a new server with all components initialized
func New(cfg *Config) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:            cfg,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	log.Info().Msg("initializing notifications service")
	s.notifService = notifications.NewService()

	log.Info().
		Int("maxSessions", cfg.MaxSessions).
		Int("maxWorkInfos", cfg.MaxWorkInfos).
		Msg("initializing task store")
	svc, err := core.NewService(cfg.ToCoreConfig(), s.notifService)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create task store: %w", err)
	}
	s.core = svc

	s.setupRouter()
	s.http = &http.Server{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:  s.router,
		ErrorLog: log.StdErrorLogger(), // Route Go's internal HTTP errors through zerolog
	}

	log.Info().Msg("server initialized successfully")
	return s, nil
}

// setupRouter creates and configures the Gin router
func (s *Server) setupRouter() {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(log.GinLogger())

	// CORS for development
	if s.cfg.IsDevelopment() {
		s.router.Use(s.corsMiddleware())
	}

	// Gzip compression (skip SSE)
	s.router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{EventsPath})))

	s.router.SetTrustedProxies(nil)

	// Note: API routes are set up by calling code (main.go)
	// to avoid import cycles
}

// corsMiddleware handles CORS for development environments
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	log.Info().
		Str("addr", s.http.Addr).
		Str("env", s.cfg.Env).
		Msg("HTTP server starting")

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// 1. Signal long-running handlers (SSE) to stop
	s.shutdownCancel()

	// 2. Close notification service to disconnect SSE clients
	s.notifService.Shutdown()

	// 3. Stop accepting new requests and wait for existing ones
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
			return err
		}
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

// Component accessors for API handlers
func (s *Server) Core() *core.Service                   { return s.core }
func (s *Server) Notifications() *notifications.Service { return s.notifService }
func (s *Server) Router() *gin.Engine                   { return s.router }
func (s *Server) ShutdownContext() context.Context      { return s.shutdownCtx }
