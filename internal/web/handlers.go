package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"hcp-crm/internal/apiclient"
	"hcp-crm/internal/autofill"
	"hcp-crm/internal/interaction"
	"hcp-crm/internal/listing"
)

type pageData struct {
	Title   string
	Page    string
	Refresh bool
}

type formPage struct {
	pageData
	Form       map[string]string
	Messages   []interaction.ChatMessage
	Loading    bool
	Types      []interaction.Type
	Sentiments []interaction.Sentiment
	Editable   []string
}

type listPage struct {
	pageData
	View    listing.View
	ErrText string
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleForm(c echo.Context) error {
	snap := s.store(c).Snapshot()
	return c.Render(http.StatusOK, pageForm, formPage{
		pageData:   pageData{Title: "Log Interaction", Page: pageForm, Refresh: snap.Loading},
		Form:       snap.Form,
		Messages:   snap.Messages,
		Loading:    snap.Loading,
		Types:      interaction.Types,
		Sentiments: interaction.Sentiments,
		Editable:   interaction.EditableFields,
	})
}

// handleFormUpdate merges the user-editable fields present in the post.
func (s *Server) handleFormUpdate(c echo.Context) error {
	if err := s.mergeEditable(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// handleChat keeps the fields typed alongside the message before the turn
// runs, so the assistant's extraction lands on top of them.
func (s *Server) handleChat(c echo.Context) error {
	if err := s.mergeEditable(c); err != nil {
		return err
	}
	err := s.flow.Submit(c.Request().Context(), s.store(c), c.FormValue("message"))
	if errors.Is(err, autofill.ErrTurnInFlight) {
		s.logger.Debug("chat turn rejected", zap.String("session", sessionID(c)))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) mergeEditable(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	partial := make(map[string]string)
	for _, f := range interaction.EditableFields {
		if vals, ok := params[f]; ok && len(vals) > 0 {
			partial[f] = vals[0]
		}
	}
	if len(partial) > 0 {
		s.store(c).MergeForm(partial)
	}
	return nil
}

func (s *Server) handleReset(c echo.Context) error {
	s.sessions.Reset(sessionID(c))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store(c).Snapshot())
}

func (s *Server) handleInteractions(c echo.Context) error {
	selected, _ := strconv.ParseInt(c.QueryParam("selected"), 10, 64)
	view := s.list.Load(c.Request().Context(), selected)

	page := listPage{
		pageData: pageData{Title: "Interactions", Page: pageList},
		View:     view,
	}
	if view.Err != nil {
		page.ErrText = interaction.Or(apiclient.ErrorMessage(view.Err), "the backend is unreachable.")
	}
	return c.Render(http.StatusOK, pageList, page)
}
