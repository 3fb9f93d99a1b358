package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcp-crm/internal/interaction"
)

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		case "/interactions":
			_ = json.NewEncoder(w).Encode([]interaction.Record{
				{ID: 1, HCPName: "Dr. Old", Date: "2024-01-01", InteractionType: interaction.TypeMeeting},
				{ID: 2, HCPName: "Dr. New", Date: "2024-02-01", InteractionType: interaction.TypeCall},
			})
		case "/chat":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"reply":          "Interaction for Dr. Smith saved successfully!",
				"extracted_data": map[string]any{"hcp_name": "Dr. Smith", "sentiment": "Positive"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { asJSON = false })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListNewestFirst(t *testing.T) {
	srv := backend(t)
	out, err := execute(t, "list", "--server", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "2 Total Entries")
	assert.Less(t, bytes.Index([]byte(out), []byte("Dr. New")), bytes.Index([]byte(out), []byte("Dr. Old")))
}

func TestListJSON(t *testing.T) {
	srv := backend(t)
	out, err := execute(t, "list", "--json", "--server", srv.URL)
	require.NoError(t, err)

	var records []interaction.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
}

func TestChatPrintsReplyAndFields(t *testing.T) {
	srv := backend(t)
	out, err := execute(t, "chat", "--server", srv.URL, "Met", "Dr.", "Smith")
	require.NoError(t, err)

	assert.Contains(t, out, "saved successfully")
	assert.Contains(t, out, interaction.FieldHCPName)
	assert.Contains(t, out, "Dr. Smith")
}

func TestHealth(t *testing.T) {
	srv := backend(t)
	out, err := execute(t, "health", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Server Status: ok")
}
