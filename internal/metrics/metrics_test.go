package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRouteAndStatus(t *testing.T) {
	reg := New("test")
	e := echo.New()
	e.Use(reg.Middleware())
	e.GET("/items/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	for _, p := range []string{"/items/1", "/items/2", "/fail"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.requests.WithLabelValues("test", "GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.requests.WithLabelValues("test", "GET", "/fail", "418")))
}

func TestMiddleware_ErrorStillReachesClient(t *testing.T) {
	reg := New("test")
	e := echo.New()
	e.Use(reg.Middleware())
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCounterAndHandler(t *testing.T) {
	reg := New("test")
	c := reg.Counter("hcp_test_total", "test counter", "result")
	Inc(c, "ok")
	Inc(nil, "ignored")
	reg.Gauge("hcp_test_gauge", "test gauge", func() float64 { return 3 })

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `hcp_test_total{result="ok"} 1`), body)
	assert.Contains(t, body, "hcp_test_gauge 3")
}
