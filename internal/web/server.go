// Package web serves the server-rendered interaction logging screens.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"hcp-crm/internal/autofill"
	"hcp-crm/internal/formstate"
	"hcp-crm/internal/listing"
	"hcp-crm/internal/logging"
	"hcp-crm/internal/metrics"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server renders the logging form, the chat panel and the interaction list.
type Server struct {
	echo     *echo.Echo
	sessions *formstate.Manager
	flow     *autofill.Flow
	list     *listing.Loader
	logger   *zap.Logger
	config   *Config
}

// NewServer wires the web front end. reg may be nil.
func NewServer(sessions *formstate.Manager, flow *autofill.Flow, list *listing.Loader, reg *metrics.Registry, logger *zap.Logger, cfg *Config) (*Server, error) {
	if sessions == nil || flow == nil || list == nil {
		return nil, fmt.Errorf("sessions, flow and list are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "0.0.0.0", Port: 3000}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	if reg != nil {
		e.Use(reg.Middleware())
		e.GET("/metrics", echo.WrapHandler(reg.Handler()))
		reg.Gauge("hcp_web_sessions", "Form sessions currently held in memory", func() float64 {
			return float64(sessions.Len())
		})
	}

	s := &Server{
		echo:     e,
		sessions: sessions,
		flow:     flow,
		list:     list,
		logger:   logger,
		config:   cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	session := sessionMiddleware()
	s.echo.GET("/", s.handleForm, session)
	s.echo.POST("/form", s.handleFormUpdate, session)
	s.echo.POST("/chat", s.handleChat, session)
	s.echo.POST("/reset", s.handleReset, session)
	s.echo.GET("/state", s.handleState, session)
	s.echo.GET("/interactions", s.handleInteractions, session)
}

// SweepJob returns a scheduler job evicting sessions idle for longer than ttl.
func (s *Server) SweepJob(ttl time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := s.sessions.EvictIdle(ttl); n > 0 {
			s.logger.Info("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", s.sessions.Len()))
		}
		return nil
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
