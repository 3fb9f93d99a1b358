package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"hcp-crm/internal/formstate"
)

const (
	sessionCookie = "hcp_session"
	sessionKey    = "session_id"
)

// sessionMiddleware makes sure every request carries a session id, issuing a
// new cookie when the browser has none or sends one that is not a UUID.
func sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(sessionCookie); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     sessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(sessionKey, id)
			return next(c)
		}
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionKey).(string)
	return id
}

func (s *Server) store(c echo.Context) *formstate.Store {
	return s.sessions.Get(sessionID(c))
}
