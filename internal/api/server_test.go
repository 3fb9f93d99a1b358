package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hcp-crm/internal/agent"
	"hcp-crm/internal/interaction"
	"hcp-crm/internal/metrics"
	"hcp-crm/internal/repository"
	"hcp-crm/internal/storage"
)

type mockRunner struct {
	RunFunc func(ctx context.Context, message string) (*agent.Result, error)
}

func (m *mockRunner) Run(ctx context.Context, message string) (*agent.Result, error) {
	return m.RunFunc(ctx, message)
}

func newTestServer(t *testing.T, runner Runner) (*Server, repository.Repository, *storage.FileRecorder) {
	t.Helper()
	if runner == nil {
		runner = &mockRunner{RunFunc: func(ctx context.Context, message string) (*agent.Result, error) {
			return &agent.Result{Reply: "ok"}, nil
		}}
	}
	repo := repository.NewMemory()
	rec, err := storage.NewFileRecorder(filepath.Join(t.TempDir(), "chat.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	srv, err := NewServer(runner, repo, rec, metrics.New("api"), zap.NewNop(), nil)
	require.NoError(t, err)
	return srv, repo, rec
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, repository.NewMemory(), nil, nil, zap.NewNop(), nil)
	assert.Error(t, err)
	_, err = NewServer(&mockRunner{}, nil, nil, nil, zap.NewNop(), nil)
	assert.Error(t, err)
	_, err = NewServer(&mockRunner{}, repository.NewMemory(), nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChat_Success(t *testing.T) {
	runner := &mockRunner{RunFunc: func(ctx context.Context, message string) (*agent.Result, error) {
		assert.Equal(t, "Met Dr. Patel", message)
		return &agent.Result{
			Reply:     "Interaction for Dr. Patel saved successfully!",
			Extracted: interaction.Extracted{"hcp_name": "Dr. Patel", "outcomes": "Positive"},
			ToolCalls: []string{"log_interaction"},
			Saved:     true,
		}, nil
	}}
	srv, _, recorder := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"Met Dr. Patel"}`))
	req.Header.Set(echo.HeaderContentType, "application/json")
	req.Header.Set(headerSessionID, "sess-1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Interaction for Dr. Patel saved successfully!", body.Reply)
	assert.Equal(t, "Dr. Patel", body.ExtractedData["hcp_name"])

	events, err := recorder.LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "sess-1", events[0].SessionID)
	assert.NotEmpty(t, events[0].RequestID)
	assert.True(t, events[0].Saved)
	assert.Equal(t, "Dr. Patel", events[0].HCPName)
	assert.Equal(t, []string{"log_interaction"}, events[0].ToolCalls)
}

func TestChat_EmptyExtractedIsObject(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"ok","extracted_data":{}}`, rec.Body.String())
}

func TestChat_BadRequests(t *testing.T) {
	srv, _, recorder := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/chat", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message is required", decodeError(t, rec))

	rec = do(t, srv, http.MethodPost, "/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rec))

	events, err := recorder.LoadEvents()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestChat_AgentFailure(t *testing.T) {
	runner := &mockRunner{RunFunc: func(ctx context.Context, message string) (*agent.Result, error) {
		return nil, errors.New("llm request failed: upstream timeout")
	}}
	srv, _, recorder := newTestServer(t, runner)

	rec := do(t, srv, http.MethodPost, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "llm request failed: upstream timeout", decodeError(t, rec))

	events, err := recorder.LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "llm request failed: upstream timeout", events[0].Error)
}

func seed(t *testing.T, repo repository.Repository, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, repo.Create(context.Background(), &interaction.Record{
			HCPName: n, InteractionType: "Meeting", Date: "2024-05-01", Outcomes: "Positive",
		}))
	}
}

func TestListInteractions(t *testing.T) {
	srv, repo, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/interactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	seed(t, repo, "Dr. A", "Dr. B")
	rec = do(t, srv, http.MethodGet, "/interactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []interaction.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Dr. A", got[0].HCPName)
	assert.Equal(t, "Dr. B", got[1].HCPName)
}

func TestGetInteraction(t *testing.T) {
	srv, repo, _ := newTestServer(t, nil)
	seed(t, repo, "Dr. A")

	rec := do(t, srv, http.MethodGet, "/interactions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got interaction.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Dr. A", got.HCPName)

	rec = do(t, srv, http.MethodGet, "/interactions/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "interaction not found", decodeError(t, rec))

	rec = do(t, srv, http.MethodGet, "/interactions/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchInteractions(t *testing.T) {
	srv, repo, _ := newTestServer(t, nil)
	seed(t, repo, "Dr. Anita Patel", "Dr. Lee")

	rec := do(t, srv, http.MethodGet, "/interactions/search?hcp_name=PATEL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []interaction.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. Anita Patel", got[0].HCPName)

	rec = do(t, srv, http.MethodGet, "/interactions/search?hcp_name=nobody", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/interactions/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyStats(t *testing.T) {
	srv, repo, recorder := newTestServer(t, nil)
	srv.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	seed(t, repo, "Dr. A")
	require.NoError(t, recorder.AppendEvent(storage.Event{
		Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), UserMessage: "hi", ToolCalls: []string{"search_hcp"},
	}))

	rec := do(t, srv, http.MethodGet, "/stats/daily?date=2024-05-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "2024-05-01", stats["date"])
	assert.Equal(t, 1.0, stats["chat_turns"])
	assert.Equal(t, 1.0, stats["tool_calls"])

	rec = do(t, srv, http.MethodGet, "/stats/daily?date=May-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, srv.DailyDigest(context.Background()))
}

func TestMetricsAndNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	do(t, srv, http.MethodGet, "/health", "")

	rec := do(t, srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))

	rec = do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hcp_http_requests_total{method="GET",route="/health",service="api",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
