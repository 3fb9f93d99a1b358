// Package api provides the REST backend for the HCP interaction logger.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"hcp-crm/internal/agent"
	"hcp-crm/internal/logging"
	"hcp-crm/internal/metrics"
	"hcp-crm/internal/repository"
	"hcp-crm/internal/storage"
)

// Runner handles one chat turn.
type Runner interface {
	Run(ctx context.Context, message string) (*agent.Result, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
}

// Server provides the backend HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	runner   Runner
	repo     repository.Repository
	recorder storage.Recorder
	logger   *zap.Logger
	config   *Config
	now      func() time.Time
}

// NewServer creates the backend server. recorder and reg may be nil.
func NewServer(runner Runner, repo repository.Repository, recorder storage.Recorder, reg *metrics.Registry, logger *zap.Logger, cfg *Config) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "0.0.0.0", Port: 8000}
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, headerSessionID},
	}))
	e.Use(logging.RequestLogger(logger))
	if reg != nil {
		e.Use(reg.Middleware())
		e.GET("/metrics", echo.WrapHandler(reg.Handler()))
	}

	s := &Server{
		echo:     e,
		runner:   runner,
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		config:   cfg,
		now:      time.Now,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/chat", s.handleChat)
	s.echo.GET("/interactions", s.handleListInteractions)
	s.echo.GET("/interactions/search", s.handleSearchInteractions)
	s.echo.GET("/interactions/:id", s.handleGetInteraction)
	s.echo.GET("/stats/daily", s.handleDailyStats)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func jsonErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				logger.Debug("http error", zap.Int("status", code), zap.Error(he.Internal))
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, ErrorResponse{Error: msg})
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
