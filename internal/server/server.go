// Package server exposes the assessment service over HTTP: a small embedded
// form frontend plus a JSON API mirroring it.
package server

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"triage/pkg/core"
	"triage/pkg/kb"
)

//go:embed web
var webFS embed.FS

// Config holds the HTTP-facing settings.
type Config struct {
	Addr           string
	UploadDir      string
	MaxUploadBytes int64
}

// Server wires the service into an echo instance.
type Server struct {
	echo     *echo.Echo
	svc      *core.Service
	provider *kb.Provider
	config   Config
	logger   *slog.Logger
}

// New builds the server with routes and middleware registered.
func New(svc *core.Service, provider *kb.Provider, cfg Config, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(webFS, "web/*.html")
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &renderer{tmpl: tmpl}

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: byteCount(cfg.MaxUploadBytes),
	}))

	s := &Server{
		echo:     e,
		svc:      svc,
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/", s.handleIndex)
	e.GET("/result/:id", s.handleResultPage)
	e.GET("/healthz", s.handleHealth)

	api := e.Group("/api")
	api.GET("/symptoms", s.handleSymptoms)
	api.POST("/assess", s.handleAssess)
	api.GET("/assessments", s.handleListAssessments)
	api.GET("/assessments/:id", s.handleGetAssessment)
	api.DELETE("/assessments/:id", s.handleDeleteAssessment)
	api.GET("/assessments/:id/export", s.handleExportAssessment)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("http server listening", "addr", s.config.Addr)
		}
		errCh <- s.echo.Start(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the underlying http.Handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// renderer adapts html/template to echo's Renderer interface.
type renderer struct {
	tmpl *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// byteCount renders a size in the "<n>B" form echo's body limit parser
// expects.
func byteCount(n int64) string {
	return strconv.FormatInt(n, 10) + "B"
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			if logger != nil {
				logger.Info("request",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"status", c.Response().Status,
					"duration", time.Since(start),
				)
			}
			return err
		}
	}
}
