package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Morwran/yagpt"
)

// iamRenewBefore renews the IAM token this long before Yandex expires it.
const iamRenewBefore = 5 * time.Minute

type iamIssuer interface {
	CreateWithCtx(ctx context.Context) (*yagpt.IamTokenResponse, error)
}

type yandexCompleter interface {
	CompletionWithCtx(ctx context.Context, iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error)
}

// YandexClient talks to YandexGPT. The model has no function calling, so it
// only implements Client and the agent falls back to JSON replies.
type YandexClient struct {
	ya  yandexCompleter
	iam iamIssuer
	now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}
	c := newYandexClient(ya, iam, time.Now)
	if _, err := c.iamToken(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

func newYandexClient(ya yandexCompleter, iam iamIssuer, now func() time.Time) *YandexClient {
	return &YandexClient{ya: ya, iam: iam, now: now}
}

// iamToken returns a cached token, issuing a new one when it is about to expire.
func (c *YandexClient) iamToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(iamRenewBefore).Before(c.expires) {
		return c.token, nil
	}
	resp, err := c.iam.CreateWithCtx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create iam token: %w", err)
	}
	c.token, c.expires = resp.IamToken, resp.ExpiresAt
	return c.token, nil
}

func (c *YandexClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	tok, err := c.iamToken(ctx)
	if err != nil {
		return Response{}, err
	}

	msgs := make([]yagpt.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, yagpt.Message{Role: m.Role, Content: m.Content})
	}
	resp, err := c.ya.CompletionWithCtx(ctx, tok, msgs)
	if err != nil {
		return Response{}, fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, fmt.Errorf("yagpt returned empty response")
	}

	model := resp.ModelVersion
	if model == "" {
		model = yagpt.YaModelLite
	}
	return Response{
		Content:          resp.Alternatives[0].Message.Content,
		Model:            model,
		PromptTokens:     int(resp.Usage.InputTextTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}, nil
}
