package llm

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"hcp-crm/internal/metrics"
)

// GuardOption configures Guard.
type GuardOption func(*guarded)

// WithRateLimit allows rps requests per second with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) GuardOption {
	return func(g *guarded) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestCounter counts calls by provider and result ("ok", "error",
// "throttled").
func WithRequestCounter(provider string, c *prometheus.CounterVec) GuardOption {
	return func(g *guarded) {
		g.provider = provider
		g.requests = c
	}
}

type guarded struct {
	next     Client
	limiter  *rate.Limiter
	provider string
	requests *prometheus.CounterVec
}

type guardedTools struct {
	*guarded
	tools ToolClient
}

// Guard wraps c with rate limiting and request counting. The result is a
// ToolClient exactly when c is one.
func Guard(c Client, opts ...GuardOption) Client {
	g := &guarded{next: c}
	for _, opt := range opts {
		opt(g)
	}
	if tc, ok := c.(ToolClient); ok {
		return &guardedTools{guarded: g, tools: tc}
	}
	return g
}

func (g *guarded) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		metrics.Inc(g.requests, g.provider, "throttled")
		return err
	}
	return nil
}

func (g *guarded) observe(err error) {
	if err != nil {
		metrics.Inc(g.requests, g.provider, "error")
		return
	}
	metrics.Inc(g.requests, g.provider, "ok")
}

func (g *guarded) Generate(ctx context.Context, messages []Message) (Response, error) {
	if err := g.wait(ctx); err != nil {
		return Response{}, err
	}
	resp, err := g.next.Generate(ctx, messages)
	g.observe(err)
	return resp, err
}

func (g *guardedTools) GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (Response, error) {
	if err := g.wait(ctx); err != nil {
		return Response{}, err
	}
	resp, err := g.tools.GenerateWithTools(ctx, messages, tools)
	g.observe(err)
	return resp, err
}
