package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig selects an OpenAI-compatible endpoint. Referrer and Title are
// sent as HTTP-Referer and X-Title, which OpenRouter uses for app attribution.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Referrer    string
	Title       string
}

// OpenAIClient extracts interactions through chat completions with tool calls.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAI(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if h := attributionHeaders(cfg.Referrer, cfg.Title); len(h) > 0 {
		oc.HTTPClient = &http.Client{Transport: headerTransport{rt: http.DefaultTransport, headers: h}}
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func attributionHeaders(referrer, title string) http.Header {
	h := http.Header{}
	if referrer != "" {
		h.Set("HTTP-Referer", referrer)
	}
	if title != "" {
		h.Set("X-Title", title)
	}
	return h
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			out.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(out)
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	return c.GenerateWithTools(ctx, messages, nil)
}

func (c *OpenAIClient) GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(messages, tools))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	return Response{
		Content:          msg.Content,
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		ToolCalls:        toolCalls(msg.ToolCalls),
	}, nil
}

func (c *OpenAIClient) request(messages []Message, tools []Tool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if len(tools) == 0 {
		return req
	}

	req.Tools = make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	req.ToolChoice = "auto"
	return req
}

func toolCalls(calls []openai.ToolCall) []ToolCall {
	var out []ToolCall
	for _, tc := range calls {
		out = append(out, ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: FunctionCall{
				Name:      tc.Function.Name,
				Arguments: decodeArguments(tc.Function.Arguments),
			},
		})
	}
	return out
}

// decodeArguments parses tool arguments; malformed JSON yields an empty map so
// the tool still runs with its defaults.
func decodeArguments(raw string) map[string]interface{} {
	args := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]interface{}{}
	}
	return args
}
