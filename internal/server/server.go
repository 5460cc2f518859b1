// =============================================================================
// TaxEase Analyzer - Upload Server
// =============================================================================
//
// HTTP front end for one-off analyses. Each request parses its own upload
// and builds its own result; the analyzer and its reference tables are the
// only shared state and are read-only.
//
// ROUTES:
//   GET  /             upload form
//   POST /upload       multipart "file" -> HTML report (JSON on request)
//   POST /api/analyze  multipart "file" -> JSON result envelope
//   GET  /api/tables   reference tables
//   GET  /health       liveness
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/analysis"
	"github.com/ginjaninja78/taxease/internal/config"
	"github.com/ginjaninja78/taxease/internal/ingest"
)

const (
	// RequestIDHeader carries the per-request ID on responses.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"

	shutdownTimeout = 5 * time.Second
)

// Server serves the upload form and the analysis API.
type Server struct {
	analyzer *analysis.Analyzer
	cfg      config.ServerConfig
	ingest   ingest.Options
	logger   *zap.Logger
	engine   *gin.Engine
}

// New builds a Server and registers its routes. A nil logger disables
// request logging.
func New(analyzer *analysis.Analyzer, cfg config.ServerConfig, ingestOpts ingest.Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		ingest:   ingestOpts,
		logger:   logger,
		engine:   gin.New(),
	}
	s.engine.MaxMultipartMemory = cfg.MaxUploadBytes
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.index)
	s.engine.GET("/health", s.health)
	s.engine.POST("/upload", s.upload)

	api := s.engine.Group("/api")
	api.POST("/analyze", s.analyze)
	api.GET("/tables", s.tables)
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 20 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// requestLogger tags every request with an ID and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// requestID returns the ID set by requestLogger.
func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
