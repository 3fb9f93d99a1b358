// Package agent turns a free-text interaction description into structured
// form data, running the model's tool calls and persisting logged interactions.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hcp-crm/internal/interaction"
	"hcp-crm/internal/llm"
	"hcp-crm/internal/metrics"
	"hcp-crm/internal/repository"
)

var ErrEmptyMessage = errors.New("message is empty")

const noReply = "No reply generated."

// Result is the outcome of one chat turn.
type Result struct {
	Reply     string
	Extracted interaction.Extracted
	ToolCalls []string
	Saved     bool
	SaveError string
}

type Agent struct {
	client llm.Client
	repo   repository.Repository
	prompt string
	logger *zap.Logger
	now    func() time.Time
	runs   *prometheus.CounterVec
	saves  *prometheus.CounterVec
}

type Option func(*Agent)

// WithSystemPrompt replaces DefaultSystemPrompt; blank prompts are ignored.
func WithSystemPrompt(p string) Option {
	return func(a *Agent) {
		if strings.TrimSpace(p) != "" {
			a.prompt = p
		}
	}
}

func WithLogger(l *zap.Logger) Option { return func(a *Agent) { a.logger = l } }

func WithClock(now func() time.Time) Option { return func(a *Agent) { a.now = now } }

// WithRunCounter counts runs by result ("ok", "error").
func WithRunCounter(c *prometheus.CounterVec) Option { return func(a *Agent) { a.runs = c } }

// WithSaveCounter counts persistence attempts by result ("ok", "error").
func WithSaveCounter(c *prometheus.CounterVec) Option { return func(a *Agent) { a.saves = c } }

// New builds an agent. repo may be nil, in which case nothing is persisted.
func New(client llm.Client, repo repository.Repository, opts ...Option) *Agent {
	a := &Agent{
		client: client,
		repo:   repo,
		prompt: DefaultSystemPrompt,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

func (a *Agent) today() string {
	return a.now().Format(interaction.DateLayout)
}

// Run handles one user message.
func (a *Agent) Run(ctx context.Context, message string) (*Result, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	var (
		res *Result
		err error
	)
	if tc, ok := a.client.(llm.ToolClient); ok {
		res, err = a.runWithTools(ctx, tc, message)
	} else {
		res, err = a.runJSONMode(ctx, message)
	}
	if err != nil {
		metrics.Inc(a.runs, "error")
		return nil, err
	}

	if res.Extracted != nil && res.Extracted.String("summary") == "" {
		res.Extracted["summary"] = summaryFor(res.Extracted, message)
	}
	if res.Extracted.String("hcp_name") != "" {
		a.persist(ctx, res)
	}

	metrics.Inc(a.runs, "ok")
	a.logger.Info("agent run finished",
		zap.Strings("tool_calls", res.ToolCalls),
		zap.Bool("extracted", len(res.Extracted) > 0),
		zap.Bool("saved", res.Saved),
	)
	return res, nil
}

func (a *Agent) runWithTools(ctx context.Context, tc llm.ToolClient, message string) (*Result, error) {
	resp, err := tc.GenerateWithTools(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: a.prompt},
		{Role: llm.RoleUser, Content: message},
	}, llm.GetHCPTools())
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}

	res := &Result{}
	var notes []string
	for _, call := range resp.ToolCalls {
		res.ToolCalls = append(res.ToolCalls, call.Function.Name)
		extracted, note := a.execute(ctx, call)
		if extracted != nil {
			res.Extracted = extracted
		}
		if note != "" {
			notes = append(notes, note)
		}
	}

	switch {
	case strings.TrimSpace(resp.Content) != "":
		res.Reply = resp.Content
	case len(notes) > 0:
		res.Reply = strings.Join(notes, "\n")
	default:
		res.Reply = noReply
	}
	return res, nil
}

type jsonReply struct {
	Reply         string                 `json:"reply"`
	ExtractedData map[string]interface{} `json:"extracted_data"`
}

func (a *Agent) runJSONMode(ctx context.Context, message string) (*Result, error) {
	resp, err := a.client.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: a.prompt + jsonModeInstructions},
		{Role: llm.RoleUser, Content: message},
	})
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}

	res := &Result{Reply: noReply}
	parsed, ok := parseJSONReply(resp.Content)
	if !ok {
		if strings.TrimSpace(resp.Content) != "" {
			res.Reply = resp.Content
		}
		return res, nil
	}
	if strings.TrimSpace(parsed.Reply) != "" {
		res.Reply = parsed.Reply
	}
	if len(parsed.ExtractedData) > 0 {
		res.Extracted = a.normalizeLog(parsed.ExtractedData)
	}
	return res, nil
}

// parseJSONReply accepts a bare object, one wrapped in code fences, or one
// surrounded by prose.
func parseJSONReply(content string) (jsonReply, bool) {
	var out jsonReply
	s := strings.TrimSpace(content)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return out, false
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return out, false
	}
	return out, true
}

// persist saves the extracted interaction and rewrites the reply with the result.
func (a *Agent) persist(ctx context.Context, res *Result) {
	ex := res.Extracted
	switch strings.ToLower(ex.String("date")) {
	case "today":
		ex["date"] = a.today()
	case "not specified":
		delete(ex, "date")
	}
	if strings.EqualFold(ex.String("time"), "not specified") {
		delete(ex, "time")
	}

	name := ex.String("hcp_name")
	if a.repo == nil {
		return
	}

	rec := recordFrom(ex)
	if err := a.repo.Create(ctx, &rec); err != nil {
		metrics.Inc(a.saves, "error")
		a.logger.Error("failed to save interaction", zap.String("hcp_name", name), zap.Error(err))
		res.SaveError = err.Error()
		res.Reply = fmt.Sprintf("Interaction extracted but failed to save: %v", err)
		return
	}

	metrics.Inc(a.saves, "ok")
	a.logger.Info("interaction saved", zap.Int64("id", rec.ID), zap.String("hcp_name", name))
	res.Saved = true
	res.Reply = fmt.Sprintf("Interaction for %s saved successfully!", name)
}

func recordFrom(ex interaction.Extracted) interaction.Record {
	return interaction.Record{
		HCPName:              ex.String("hcp_name"),
		Attendees:            ex.String("attendees"),
		Date:                 ex.String("date"),
		Time:                 ex.String("time"),
		InteractionType:      interaction.Type(orDefault(ex.String("interaction_type"), string(interaction.TypeMeeting))),
		Topics:               ex.String("topics"),
		MaterialsDistributed: ex.String("materials_distributed"),
		Outcomes:             ex.String("outcomes"),
		FollowUp:             ex.String("follow_up"),
		Summary:              ex.String("summary"),
	}
}
