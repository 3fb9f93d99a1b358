package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

// Logging is shared by every binary.
type Logging struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// API configures cmd/hcp-api.
type API struct {
	Host string `env:"API_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"API_PORT" envDefault:"8000"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Temperature      float32     `env:"LLM_TEMPERATURE" envDefault:"0.4"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
	LLMRateLimit     float64     `env:"LLM_RATE_LIMIT" envDefault:"2"`
	LLMBurst         int         `env:"LLM_BURST" envDefault:"4"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH"`

	// Storage
	StoreDriver  StoreDriver   `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"data/interactions.db"`
	ChatLogPath  string        `env:"CHAT_LOG_PATH" envDefault:"logs/chat.jsonl"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	DigestCron   string        `env:"DIGEST_SCHEDULE" envDefault:"0 21 * * *"`
	ShutdownWait time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Logging
}

// Web configures cmd/hcp-web.
type Web struct {
	Host            string        `env:"WEB_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"WEB_PORT" envDefault:"3000"`
	APIBaseURL      string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	ChatTimeout     time.Duration `env:"CHAT_TIMEOUT" envDefault:"2m"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepCron       string        `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@every 5m"`
	DisplayTimezone string        `env:"DISPLAY_TIMEZONE" envDefault:"Local"`
	ShutdownWait    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Logging
}

func NewAPI() (*API, error) {
	cfg := &API{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *API) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.LLMProvider)
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for provider %q", c.LLMProvider)
		}
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for store driver %q", c.StoreDriver)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver: %s", c.StoreDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid API_PORT %d", c.Port)
	}
	if c.LLMRateLimit < 0 || c.LLMBurst < 0 {
		return fmt.Errorf("LLM_RATE_LIMIT and LLM_BURST must not be negative")
	}
	return nil
}

// DSN returns the data source for the configured store driver.
func (c *API) DSN() string {
	switch c.StoreDriver {
	case StoreSQLite:
		return c.SQLitePath
	case StorePostgres:
		return c.DatabaseURL
	}
	return ""
}

func NewWeb() (*Web, error) {
	cfg := &Web{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Web) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid WEB_PORT %d", c.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves DisplayTimezone.
func (c *Web) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}
