package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"hcp-crm/internal/agent"
	"hcp-crm/internal/interaction"
	"hcp-crm/internal/repository"
	"hcp-crm/internal/storage"
)

// headerSessionID lets a front end tag chat turns with its session.
const headerSessionID = "X-Session-ID"

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Reply         string                `json:"reply"`
	ExtractedData interaction.Extracted `json:"extracted_data"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	res, err := s.runner.Run(c.Request().Context(), req.Message)
	s.audit(c, req.Message, res, err)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, "message is required")
		}
		s.logger.Error("chat turn failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}

	extracted := res.Extracted
	if extracted == nil {
		extracted = interaction.Extracted{}
	}
	return c.JSON(http.StatusOK, ChatResponse{Reply: res.Reply, ExtractedData: extracted})
}

// audit appends the turn to the chat log; failures are only logged.
func (s *Server) audit(c echo.Context, message string, res *agent.Result, runErr error) {
	if s.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:   s.now().UTC(),
		SessionID:   c.Request().Header.Get(headerSessionID),
		RequestID:   c.Response().Header().Get(echo.HeaderXRequestID),
		UserMessage: message,
	}
	if runErr != nil {
		ev.Error = runErr.Error()
	}
	if res != nil {
		ev.AssistantResponse = res.Reply
		ev.ToolCalls = res.ToolCalls
		ev.HCPName = res.Extracted.String("hcp_name")
		ev.Saved = res.Saved
		if res.SaveError != "" {
			ev.Error = res.SaveError
		}
	}
	if err := s.recorder.AppendEvent(ev); err != nil {
		s.logger.Warn("failed to append chat event", zap.Error(err))
	}
}

func (s *Server) handleListInteractions(c echo.Context) error {
	records, err := s.repo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list interactions").SetInternal(err)
	}
	return c.JSON(http.StatusOK, nonNil(records))
}

func (s *Server) handleGetInteraction(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid interaction id")
	}
	rec, err := s.repo.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "interaction not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get interaction").SetInternal(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleSearchInteractions(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("hcp_name"))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "hcp_name is required")
	}
	records, err := s.repo.FindByHCPName(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to search interactions").SetInternal(err)
	}
	return c.JSON(http.StatusOK, nonNil(records))
}

func (s *Server) handleDailyStats(c echo.Context) error {
	day := s.now().UTC()
	if q := c.QueryParam("date"); q != "" {
		d, err := time.Parse(interaction.DateLayout, q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = d
	}
	stats, err := s.Stats(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats").SetInternal(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func nonNil(records []interaction.Record) []interaction.Record {
	if records == nil {
		return []interaction.Record{}
	}
	return records
}
