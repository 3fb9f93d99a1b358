package storage

import "time"

// Event is one POST /chat turn: the user's message, the agent's reply and
// what the agent did with it. Events are appended in chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id,omitempty"`
	RequestID         string    `json:"request_id,omitempty"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	ToolCalls         []string  `json:"tool_calls,omitempty"`
	HCPName           string    `json:"hcp_name,omitempty"`
	Saved             bool      `json:"saved"`
	Error             string    `json:"error,omitempty"`
}

// Recorder persists chat events. Implementations must be safe for concurrent use.
type Recorder interface {
	AppendEvent(event Event) error
	// LoadEvents returns every event in chronological order.
	LoadEvents() ([]Event, error)
	// LoadEventsBetween returns the events with from <= Timestamp < to.
	LoadEventsBetween(from, to time.Time) ([]Event, error)
}
