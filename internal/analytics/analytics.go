// Package analytics summarises a day of assistant activity.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"hcp-crm/internal/interaction"
	"hcp-crm/internal/storage"
)

// DailyStats is the activity of one UTC day.
type DailyStats struct {
	Date               string         `json:"date"`
	ChatTurns          int            `json:"chat_turns"`
	ToolCalls          int            `json:"tool_calls"`
	ToolCallsByName    map[string]int `json:"tool_calls_by_name"`
	FailedSaves        int            `json:"failed_saves"`
	InteractionsLogged int            `json:"interactions_logged"`
	ByType             map[string]int `json:"by_type"`
	BySentiment        map[string]int `json:"by_sentiment"`
	UniqueHCPs         int            `json:"unique_hcps"`
}

// AnalyzeDay counts chat events and logged interactions that fall on day.
// A record counts by its created_at; records without one count by their date.
func AnalyzeDay(events []storage.Event, records []interaction.Record, day time.Time) *DailyStats {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	dateStr := startOfDay.Format(interaction.DateLayout)

	stats := &DailyStats{
		Date:            dateStr,
		ToolCallsByName: make(map[string]int),
		ByType:          make(map[string]int),
		BySentiment:     make(map[string]int),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}
		stats.ChatTurns++
		for _, name := range event.ToolCalls {
			stats.ToolCalls++
			stats.ToolCallsByName[name]++
		}
		if event.HCPName != "" && !event.Saved {
			stats.FailedSaves++
		}
	}

	hcps := make(map[string]bool)
	for _, r := range records {
		if !onDay(r, startOfDay, endOfDay, dateStr) {
			continue
		}
		stats.InteractionsLogged++
		stats.ByType[string(r.InteractionType)]++
		stats.BySentiment[interaction.Or(r.Outcomes, "Unspecified")]++
		hcps[strings.ToLower(strings.TrimSpace(r.HCPName))] = true
	}
	stats.UniqueHCPs = len(hcps)
	return stats
}

func onDay(r interaction.Record, start, end time.Time, date string) bool {
	if created, ok := interaction.ParseTimestamp(r.CreatedAt, time.UTC); ok {
		return !created.Before(start) && created.Before(end)
	}
	return r.Date == date
}

// GenerateReportSummary renders the stats as a short plain-text digest.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HCP interaction activity for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Chat turns: %d\n", ds.ChatTurns)
	fmt.Fprintf(&b, "- Tool calls: %d\n", ds.ToolCalls)
	fmt.Fprintf(&b, "- Interactions logged: %d (%d unique HCPs)\n", ds.InteractionsLogged, ds.UniqueHCPs)
	if ds.FailedSaves > 0 {
		fmt.Fprintf(&b, "- Failed saves: %d\n", ds.FailedSaves)
	}

	writeCounts(&b, "Tool usage", ds.ToolCallsByName)
	writeCounts(&b, "By type", ds.ByType)
	writeCounts(&b, "By outcome", ds.BySentiment)
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %d\n", k, counts[k])
	}
}

// ToJSON serialises the stats for detailed analysis.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
