// Package http provides the API server: routing, middleware, health and
// readiness probes, and the worker trigger endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	paymentHTTP "github.com/allisson/payments/internal/payment/http"
)

// Options holds everything the API server needs to assemble its router.
type Options struct {
	Host   string
	Port   int
	DB     *sql.DB
	Logger *slog.Logger

	PaymentHandler *paymentHTTP.PaymentHandler
	WebhookHandler *paymentHTTP.WebhookHandler
	WorkerHandler  *WorkerHandler

	// WorkerSharedSecret guards the /v1/workers endpoints. Empty disables them.
	WorkerSharedSecret string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitWebhookEnabled bool
	RateLimitWebhookRPS     float64
	RateLimitWebhookBurst   int

	// MetricsMiddleware records per-request HTTP metrics when set.
	MetricsMiddleware gin.HandlerFunc
}

// Server represents the API HTTP server.
type Server struct {
	opts   Options
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(opts Options) *Server {
	return &Server{
		opts:   opts,
		db:     opts.DB,
		logger: opts.Logger,
	}
}

// setupRouter builds the gin engine with all middleware and routes.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.opts.CORSEnabled, s.opts.CORSAllowOrigins, s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if s.opts.MetricsMiddleware != nil {
		router.Use(s.opts.MetricsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if s.opts.PaymentHandler != nil {
		v1.POST("/payment-intents", s.opts.PaymentHandler.CreateIntentHandler)
		v1.GET("/payment-intents/:id", s.opts.PaymentHandler.GetIntentHandler)
		v1.POST("/payment-intents/:id/refunds", s.opts.PaymentHandler.CreateRefundHandler)
	}

	if s.opts.WebhookHandler != nil {
		webhooks := v1.Group("/webhooks")
		if s.opts.RateLimitWebhookEnabled {
			webhooks.Use(WebhookRateLimitMiddleware(
				s.opts.RateLimitWebhookRPS, s.opts.RateLimitWebhookBurst, s.logger,
			))
		}
		webhooks.POST("/:provider", s.opts.WebhookHandler.ReceiveHandler)
	}

	if s.opts.WorkerHandler != nil {
		workers := v1.Group("/workers")
		workers.Use(WorkerAuthMiddleware(s.opts.WorkerSharedSecret, s.logger))
		workers.POST("/outbox", s.opts.WorkerHandler.RunOutboxHandler)
		workers.POST("/reconcile", s.opts.WorkerHandler.RunReconcileHandler)
	}

	return router
}

// GetHandler returns the router, building it on first use. Tests serve it
// through httptest instead of binding a port.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		s.router = s.setupRouter()
	}
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.setupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can actually serve traffic,
// which for this engine means the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
