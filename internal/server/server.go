// Package server implements sift's HTTP API: document upload plus
// question answering, a liveness probe, and rendered API docs. All QA
// state is request-scoped; the pipeline is rebuilt per request through an
// injected build function so handlers stay testable without providers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahadian/sift"
	"github.com/rahadian/sift/ingest"
)

// BuildFunc assembles an answering pipeline over freshly loaded chunks.
// The returned cleanup releases request-scoped resources (index stores)
// and runs after the request completes, error or not.
type BuildFunc func(ctx context.Context, chunks []sift.Chunk) (sift.Answerer, func(), error)

// Deps holds injected dependencies for the Server.
type Deps struct {
	Build    BuildFunc
	Guard    *sift.InputGuard
	Chunking ingest.ChunkConfig
	Logger   *slog.Logger

	// MaxUploadBytes caps the request body size. Zero means the default
	// of 32 MiB.
	MaxUploadBytes int64
}

// Server is the sift HTTP application.
type Server struct {
	build     BuildFunc
	guard     *sift.InputGuard
	chunking  ingest.ChunkConfig
	logger    *slog.Logger
	maxUpload int64
	engine    *gin.Engine
}

var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Server. Deps.Build is required; everything else has
// working defaults.
func New(deps Deps) *Server {
	s := &Server{
		build:     deps.Build,
		guard:     deps.Guard,
		chunking:  deps.Chunking,
		logger:    deps.Logger,
		maxUpload: deps.MaxUploadBytes,
	}
	if s.logger == nil {
		s.logger = nopLogger
	}
	if s.guard == nil {
		s.guard = sift.NewInputGuard(sift.GuardLogger(s.logger))
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 32 << 20
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLog())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("panic recovered", "panic", fmt.Sprintf("%v", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"detail": fmt.Sprintf("Internal Server Error: %v", recovered),
		})
	}))

	r.POST("/qa", s.handleQA)
	r.GET("/health", s.handleHealth)
	r.GET("/docs", s.handleDocs)
	return r
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server listening", "addr", addr)

	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
