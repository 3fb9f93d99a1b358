// Package autofill runs one chat turn against the assistant and folds its
// structured extraction into the logging form.
package autofill

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hcp-crm/internal/apiclient"
	"hcp-crm/internal/interaction"
	"hcp-crm/internal/metrics"
)

// ErrTurnInFlight is returned when the form already waits for a reply.
var ErrTurnInFlight = errors.New("a chat turn is already in progress")

const (
	connectionFailure = "Could not connect to AI assistant."
	noReply           = "No reply generated."
)

// ChatClient sends a chat message to the assistant backend.
type ChatClient interface {
	Chat(ctx context.Context, message string) (*apiclient.ChatResponse, error)
}

// Form is the state a chat turn reads and writes.
type Form interface {
	MergeForm(partial map[string]string)
	AppendChatMessage(msg interaction.ChatMessage)
	SetLoading(flag bool)
}

// Flow submits chat turns. One Flow serves many forms; each form has at most
// one turn in flight.
type Flow struct {
	client   ChatClient
	timeout  time.Duration
	logger   *zap.Logger
	turns    *prometheus.CounterVec
	inflight sync.Map
}

type Option func(*Flow)

// WithTimeout bounds each backend call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option { return func(f *Flow) { f.timeout = d } }

func WithLogger(l *zap.Logger) Option { return func(f *Flow) { f.logger = l } }

// WithTurnCounter counts turns by result: ok, error, skipped.
func WithTurnCounter(c *prometheus.CounterVec) Option { return func(f *Flow) { f.turns = c } }

func New(client ChatClient, opts ...Option) *Flow {
	f := &Flow{client: client, logger: zap.NewNop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Submit runs one chat turn for form:
//
//   - blank text does nothing;
//   - the user message is appended and the form marked loading;
//   - the reply (or an error text) is appended as an assistant message;
//   - extracted fields are merged into the form;
//   - loading is cleared.
//
// Backend failures end up in the transcript, not in the returned error. The only
// error is ErrTurnInFlight.
func (f *Flow) Submit(ctx context.Context, form Form, text string) error {
	if strings.TrimSpace(text) == "" {
		metrics.Inc(f.turns, "skipped")
		return nil
	}
	if _, busy := f.inflight.LoadOrStore(form, struct{}{}); busy {
		metrics.Inc(f.turns, "skipped")
		return ErrTurnInFlight
	}
	defer f.inflight.Delete(form)

	form.AppendChatMessage(interaction.ChatMessage{Role: interaction.RoleUser, Content: text})
	form.SetLoading(true)
	defer form.SetLoading(false)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := f.client.Chat(ctx, text)
	if err != nil {
		f.logger.Warn("chat turn failed", zap.Error(err))
		metrics.Inc(f.turns, "error")
		form.AppendChatMessage(interaction.ChatMessage{
			Role:    interaction.RoleAssistant,
			Content: "Error: " + interaction.Or(apiclient.ErrorMessage(err), connectionFailure),
		})
		return nil
	}

	metrics.Inc(f.turns, "ok")
	form.AppendChatMessage(interaction.ChatMessage{
		Role:    interaction.RoleAssistant,
		Content: interaction.Or(resp.Reply, noReply),
	})

	if fields := interaction.ToFormFields(resp.ExtractedData); len(fields) > 0 {
		f.logger.Debug("auto-filling form", zap.Int("fields", len(fields)))
		form.MergeForm(fields)
	}
	return nil
}

// InFlight reports whether form has a turn waiting for the backend.
func (f *Flow) InFlight(form Form) bool {
	_, ok := f.inflight.Load(form)
	return ok
}
