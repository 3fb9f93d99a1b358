package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcp-crm/internal/interaction"
)

func TestChat_SendsMessageAndDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Met Dr. Patel today", req.Message)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"reply":"Got it","extracted_data":{"hcp_name":"Dr. Patel","outcomes":"Positive"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil, nil)
	resp, err := c.Chat(context.Background(), "Met Dr. Patel today")
	require.NoError(t, err)
	assert.Equal(t, "Got it", resp.Reply)
	assert.Equal(t, "Dr. Patel", resp.ExtractedData.String("hcp_name"))
	assert.Equal(t, "Positive", resp.ExtractedData.String("outcomes"))
}

func TestChat_ReplyWithoutExtractedData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"reply":"Hello"}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, nil, nil).Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.Reply)
	assert.Empty(t, resp.ExtractedData)
}

func TestDo_NonSuccessBecomesAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusInternalServerError, `{"error":"model unavailable"}`, "model unavailable"},
		{"detail field ignored", http.StatusBadRequest, `{"detail":"bad message"}`, ""},
		{"non-string error", http.StatusBadRequest, `{"error":{"code":1}}`, ""},
		{"no json", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
		{"empty body", http.StatusServiceUnavailable, ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil, nil).Chat(context.Background(), "hi")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, ErrorMessage(err))
		})
	}
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, nil).ListInteractions(context.Background())
	require.Error(t, err)
	assert.Equal(t, "", ErrorMessage(err))
}

func TestListInteractions_PreservesServerOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interactions", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"id":1,"hcp_name":"A","interaction_type":"Meeting","date":"2024-05-01","created_at":"2024-05-01T10:00:00Z"},
			{"id":2,"hcp_name":"B","interaction_type":"Virtual","date":"2024-05-02","created_at":"2024-05-02T10:00:00Z","updated_at":null}
		]`)
	}))
	defer srv.Close()

	got, err := New(srv.URL, nil, nil).ListInteractions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].HCPName)
	assert.Equal(t, interaction.TypeVirtual, got[1].InteractionType)
	assert.Equal(t, "", got[1].UpdatedAt)
}

func TestListInteractions_NullBodyIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	}))
	defer srv.Close()

	got, err := New(srv.URL, nil, nil).ListInteractions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	h, err := New(srv.URL, nil, nil).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}
