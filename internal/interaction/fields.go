package interaction

import (
	"fmt"
	"strconv"
)

// Form field names used by the logging screen.
const (
	FieldHCPName              = "hcpName"
	FieldDate                 = "date"
	FieldTime                 = "time"
	FieldInteractionType      = "interactionType"
	FieldAttendees            = "attendees"
	FieldTopics               = "topics"
	FieldMaterialsDistributed = "materialsDistributed"
	FieldSentiment            = "sentiment"
	FieldOutcomes             = "outcomes"
	FieldFollowUp             = "followUp"
	FieldSummary              = "summary"
)

// EditableFields are the form fields a user may change directly. Sentiment and
// summary are only ever written by the assistant.
var EditableFields = []string{
	FieldHCPName,
	FieldDate,
	FieldTime,
	FieldInteractionType,
	FieldAttendees,
	FieldTopics,
	FieldMaterialsDistributed,
	FieldOutcomes,
	FieldFollowUp,
}

// DefaultForm returns the form as it looks when the screen is first opened.
func DefaultForm() map[string]string {
	return map[string]string{
		FieldHCPName:              "",
		FieldDate:                 "",
		FieldTime:                 "",
		FieldInteractionType:      string(TypeMeeting),
		FieldAttendees:            "",
		FieldTopics:               "",
		FieldMaterialsDistributed: "",
		FieldSentiment:            string(SentimentNeutral),
		FieldOutcomes:             "",
		FieldFollowUp:             "",
		FieldSummary:              "",
	}
}

// Extracted is the extracted_data object of a POST /chat reply, keyed by the
// backend's snake_case names. Values are usually strings but are not trusted to be.
type Extracted map[string]any

// externalToForm maps backend names to form field names. outcomes is handled
// separately because it also drives sentiment.
var externalToForm = []struct{ external, form string }{
	{"hcp_name", FieldHCPName},
	{"attendees", FieldAttendees},
	{"date", FieldDate},
	{"time", FieldTime},
	{"interaction_type", FieldInteractionType},
	{"topics", FieldTopics},
	{"materials_distributed", FieldMaterialsDistributed},
	{"follow_up", FieldFollowUp},
	{"summary", FieldSummary},
}

// ToFormFields translates extracted data into a partial form update. Only
// recognised keys with a non-empty value are kept; outcomes is written to both
// the outcomes and sentiment fields. The result is empty when nothing usable
// was extracted.
func ToFormFields(ex Extracted) map[string]string {
	out := make(map[string]string)
	for _, m := range externalToForm {
		if v, ok := truthy(ex[m.external]); ok {
			out[m.form] = v
		}
	}
	if v, ok := truthy(ex["outcomes"]); ok {
		out[FieldOutcomes] = v
		out[FieldSentiment] = v
	}
	return out
}

// truthy renders v as text when it would count as set: non-empty strings,
// non-zero numbers and true.
func truthy(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		if !x {
			return "", false
		}
		return "true", true
	case float64:
		if x == 0 {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		if x == 0 {
			return "", false
		}
		return fmt.Sprint(x), true
	default:
		return fmt.Sprint(x), true
	}
}

// ToExtracted renders a record back into the external field names, skipping
// empty values. The agent uses it when reporting what it logged.
func (r Record) ToExtracted() Extracted {
	ex := Extracted{}
	set := func(k, v string) {
		if v != "" {
			ex[k] = v
		}
	}
	set("hcp_name", r.HCPName)
	set("attendees", r.Attendees)
	set("date", r.Date)
	set("time", r.Time)
	set("interaction_type", string(r.InteractionType))
	set("topics", r.Topics)
	set("materials_distributed", r.MaterialsDistributed)
	set("outcomes", r.Outcomes)
	set("follow_up", r.FollowUp)
	set("summary", r.Summary)
	return ex
}

// String returns the value under key as text, or "" when absent or not a string.
func (ex Extracted) String(key string) string {
	s, _ := ex[key].(string)
	return s
}
