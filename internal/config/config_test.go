package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPI_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := NewAPI()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "0 21 * * *", cfg.DigestCron)
	assert.InDelta(t, 0.4, cfg.Temperature, 0.0001)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestNewAPI_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing openai key", map[string]string{}, "OPENAI_API_KEY"},
		{"unknown provider", map[string]string{"LLM_PROVIDER": "groq"}, "unknown llm provider"},
		{"yandex incomplete", map[string]string{"LLM_PROVIDER": "yandex", "YANDEX_OAUTH_TOKEN": "t"}, "YANDEX_FOLDER_ID"},
		{"postgres without url", map[string]string{"OPENAI_API_KEY": "k", "STORE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"OPENAI_API_KEY": "k", "STORE_DRIVER": "mongo"}, "unknown store driver"},
		{"bad port", map[string]string{"OPENAI_API_KEY": "k", "API_PORT": "70000"}, "API_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewAPI()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAPI_DSN(t *testing.T) {
	c := &API{StoreDriver: StoreSQLite, SQLitePath: "x.db", DatabaseURL: "postgres://"}
	assert.Equal(t, "x.db", c.DSN())
	c.StoreDriver = StorePostgres
	assert.Equal(t, "postgres://", c.DSN())
	c.StoreDriver = StoreMemory
	assert.Equal(t, "", c.DSN())
}

func TestNewWeb(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api:8000")
	t.Setenv("CHAT_TIMEOUT", "45s")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")

	cfg, err := NewWeb()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://api:8000", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestNewWeb_BadTimezone(t *testing.T) {
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus")
	_, err := NewWeb()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPLAY_TIMEZONE")
}
