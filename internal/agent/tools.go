package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"hcp-crm/internal/interaction"
	"hcp-crm/internal/llm"
)

// logFields are the log_interaction arguments kept in extracted data.
var logFields = []string{
	"hcp_name", "attendees", "date", "time", "interaction_type", "topics",
	"materials_distributed", "outcomes", "follow_up", "summary",
}

const summaryLimit = 120

// execute runs one tool call. Structured results come back as extracted data,
// everything else as a note for the user.
func (a *Agent) execute(ctx context.Context, call llm.ToolCall) (interaction.Extracted, string) {
	args := call.Function.Arguments
	switch call.Function.Name {
	case llm.ToolLogInteraction:
		return a.normalizeLog(args), ""
	case llm.ToolSearchHCP:
		return nil, a.searchHCP(ctx, argString(args, "query"))
	case llm.ToolSuggestFollowUp:
		return nil, suggestFollowUp(argString(args, "outcome"))
	case llm.ToolGenerateSummary:
		return nil, "Summary: " + summarize(argString(args, "raw_text"))
	case llm.ToolCheckCompliance:
		return nil, checkCompliance(argString(args, "topics"))
	default:
		a.logger.Warn("model requested unknown tool", zap.String("tool", call.Function.Name))
		return nil, ""
	}
}

// normalizeLog applies log_interaction defaults: date today, type Meeting,
// outcome Neutral, enum values title-cased.
func (a *Agent) normalizeLog(args map[string]interface{}) interaction.Extracted {
	out := interaction.Extracted{}
	for _, k := range logFields {
		if s := argString(args, k); s != "" {
			out[k] = s
		}
	}
	if out.String("date") == "" {
		out["date"] = a.today()
	}
	out["interaction_type"] = titleCase(orDefault(out.String("interaction_type"), "meeting"))
	out["outcomes"] = titleCase(orDefault(out.String("outcomes"), "neutral"))
	return out
}

func (a *Agent) searchHCP(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Please provide an HCP name to search for."
	}
	if a.repo == nil {
		return fmt.Sprintf("No interactions found for %s.", query)
	}
	found, err := a.repo.FindByHCPName(ctx, query)
	if err != nil {
		a.logger.Warn("search_hcp failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Could not search interactions for %s.", query)
	}
	if len(found) == 0 {
		return fmt.Sprintf("No interactions found for %s.", query)
	}
	last := found[len(found)-1]
	return fmt.Sprintf("Found %d interaction(s) for %s. Most recent: %s %s on %s, outcome %s.",
		len(found), query, last.InteractionType, last.HCPName, last.Date,
		interaction.Or(last.Outcomes, "Pending"))
}

func suggestFollowUp(outcome string) string {
	outcome = strings.ToLower(outcome)
	switch {
	case strings.Contains(outcome, "positive"):
		return "Schedule follow-up in 2 weeks + send product samples."
	case strings.Contains(outcome, "negative"):
		return "Escalate to medical liaison and monitor closely."
	}
	return "No immediate action needed."
}

func checkCompliance(topics string) string {
	lower := strings.ToLower(topics)
	for _, word := range []string{"off-label", "price", "discount"} {
		if strings.Contains(lower, word) {
			return "Compliance WARNING: Review with QA before logging."
		}
	}
	return "All topics compliant."
}

// summarize keeps the first 120 runes of the trimmed text, marking a cut with "...".
func summarize(raw string) string {
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) <= summaryLimit {
		return text
	}
	return string([]rune(text)[:summaryLimit]) + "..."
}

// summaryFor builds a summary from the extracted fields and the original request.
func summaryFor(ex interaction.Extracted, request string) string {
	var parts []string
	add := func(label, key string) {
		if v := ex.String(key); v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("HCP", "hcp_name")
	add("Type", "interaction_type")
	add("Topics", "topics")
	add("Materials", "materials_distributed")
	add("Outcome", "outcomes")
	if request = strings.TrimSpace(request); request != "" {
		parts = append(parts, "Original request: "+request)
	}
	return summarize(strings.Join(parts, ". "))
}

func argString(args map[string]interface{}, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// titleCase upper-cases the first letter of each word and lower-cases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
