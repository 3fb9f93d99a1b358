// Package interaction holds the HCP interaction record, chat transcript entries and the
// translation between the backend's field names and the logging form's field names.
package interaction

import (
	"fmt"
	"strings"
	"time"
)

// Type is the kind of contact with the HCP.
type Type string

const (
	TypeMeeting Type = "Meeting"
	TypeCall    Type = "Call"
	TypeEmail   Type = "Email"
	TypeVirtual Type = "Virtual"
)

// Types lists interaction types in form display order.
var Types = []Type{TypeMeeting, TypeCall, TypeEmail, TypeVirtual}

// ParseType accepts any casing ("meeting", "MEETING") and returns the canonical value.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, true
		}
	}
	return "", false
}

// Sentiment classifies the outcome of an interaction.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func ParseSentiment(s string) (Sentiment, bool) {
	for _, v := range Sentiments {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, true
		}
	}
	return "", false
}

// Record is an interaction as persisted and returned by GET /interactions.
// Timestamps travel as RFC 3339 strings so that a record with a missing or odd
// timestamp still decodes.
type Record struct {
	ID                   int64  `json:"id"`
	HCPName              string `json:"hcp_name"`
	Attendees            string `json:"attendees,omitempty"`
	Date                 string `json:"date"`
	Time                 string `json:"time,omitempty"`
	InteractionType      Type   `json:"interaction_type"`
	Topics               string `json:"topics,omitempty"`
	MaterialsDistributed string `json:"materials_distributed,omitempty"`
	Outcomes             string `json:"outcomes,omitempty"`
	FollowUp             string `json:"follow_up,omitempty"`
	Summary              string `json:"summary,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
	UpdatedAt            string `json:"updated_at,omitempty"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the auto-fill transcript.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DateLayout is the wire format of Record.Date.
const DateLayout = "2006-01-02"

// Validate canonicalises enum casing and checks the fields a stored record
// needs. An empty date is set to today in UTC.
func (r *Record) Validate() error {
	r.HCPName = strings.TrimSpace(r.HCPName)
	if r.HCPName == "" {
		return fmt.Errorf("hcp_name is required")
	}

	t, ok := ParseType(string(r.InteractionType))
	if !ok {
		return fmt.Errorf("invalid interaction_type %q", r.InteractionType)
	}
	r.InteractionType = t

	if r.Outcomes != "" {
		s, ok := ParseSentiment(r.Outcomes)
		if !ok {
			return fmt.Errorf("invalid outcomes %q", r.Outcomes)
		}
		r.Outcomes = string(s)
	}

	r.Date = strings.TrimSpace(r.Date)
	if r.Date == "" {
		r.Date = time.Now().UTC().Format(DateLayout)
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", r.Date)
	}
	return nil
}
