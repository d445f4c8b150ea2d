// Package api serves health, metrics and on-demand evaluation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scanner"
)

// Evaluator is the scanner surface the API needs.
type Evaluator interface {
	Evaluate(ctx context.Context, symbol string) (*scanner.Evaluation, error)
	Running() bool
	LastSummary() *model.ScanSummary
}

// ScanFunc starts a universe scan.
type ScanFunc func(trigger model.TriggerType) (*model.ScanSummary, error)

// Config configures the HTTP server.
type Config struct {
	Addr        string
	CORSOrigins []string
	Release     bool
	// Checks are dependency probes reported by /healthz.
	Checks map[string]func(context.Context) error
}

// Server is the HTTP API.
type Server struct {
	cfg        Config
	router     *gin.Engine
	evaluator  Evaluator
	scan       ScanFunc
	recorder   recorder.Recorder
	metrics    *metrics.Metrics
	httpServer *http.Server
}

// NewServer builds the router. m may be nil, in which case /metrics is not served.
func NewServer(cfg Config, ev Evaluator, scan ScanFunc, rec recorder.Recorder, m *metrics.Metrics) *Server {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		router.Use(cors.New(corsConfig))
	}

	s := &Server{
		cfg:       cfg,
		router:    router,
		evaluator: ev,
		scan:      scan,
		recorder:  rec,
		metrics:   m,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	v1.GET("/evaluate/:symbol", s.handleEvaluate)
	v1.POST("/scan", s.handleScan)
	v1.GET("/scan/last", s.handleLastScan)
	v1.GET("/alerts", s.handleAlerts)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Info().Msg("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
