package llm

import (
	"fmt"
	"strings"

	"hcp-crm/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory builds the extraction model client named by LLM_PROVIDER.
type Factory struct {
	openai OpenAIConfig
	yandex struct{ oauthToken, folderID string }
}

func NewFactory(cfg *config.API) *Factory {
	f := &Factory{openai: OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.Temperature,
		Referrer:    cfg.OpenRouterReferrer,
		Title:       cfg.OpenRouterTitle,
	}}
	f.yandex.oauthToken = cfg.YandexOAuthToken
	f.yandex.folderID = cfg.YandexFolderID
	return f
}

// CreateClient returns a client for provider. model overrides the configured
// OpenAI model when set; Yandex always serves its default model.
func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		cfg := f.openai
		if model != "" {
			cfg.Model = model
		}
		return NewOpenAI(cfg), nil
	case ProviderYandex:
		return NewYandex(f.yandex.oauthToken, f.yandex.folderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", provider)
	}
}
