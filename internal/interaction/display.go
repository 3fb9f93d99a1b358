package interaction

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DisplayOrder returns records in display order: the list endpoint returns the
// oldest first, the screen shows the newest first. This is a positional reverse,
// not a sort; the input slice is left untouched.
func DisplayOrder(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the date and datetime shapes the backend may emit.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a calendar date as "02 Jan 2006"; "N/A" when empty.
// Values that cannot be parsed are shown as given.
func FormatDate(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	// A bare date is a calendar day, not an instant: never shift it across zones.
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return t.Format("02 Jan 2006")
	}
	t, ok := ParseTimestamp(s, loc)
	if !ok {
		return s
	}
	return t.Format("02 Jan 2006")
}

// FormatDateTime renders a timestamp as "2 Jan 2006, 15:04"; "N/A" when empty.
func FormatDateTime(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	t, ok := ParseTimestamp(s, loc)
	if !ok {
		return s
	}
	return t.Format("2 Jan 2006, 15:04")
}

// LastUpdated is updated_at, or created_at for records never updated.
func (r Record) LastUpdated() string {
	if r.UpdatedAt != "" {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// Or returns s, or fallback when s is blank.
func Or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}
