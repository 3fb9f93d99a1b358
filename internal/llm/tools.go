package llm

type Tool struct {
	Type     string
	Function Function
}

type Function struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

type ToolCall struct {
	ID       string
	Type     string
	Function FunctionCall
}

type FunctionCall struct {
	Name      string
	Arguments map[string]interface{}
}

const (
	ToolLogInteraction  = "log_interaction"
	ToolSearchHCP       = "search_hcp"
	ToolSuggestFollowUp = "suggest_follow_up"
	ToolGenerateSummary = "generate_summary"
	ToolCheckCompliance = "check_compliance"
)

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetHCPTools returns the function tools offered to the extraction model.
func GetHCPTools() []Tool {
	return []Tool{
		{
			Type: "function",
			Function: Function{
				Name:        ToolLogInteraction,
				Description: "Log a new interaction with a Healthcare Professional into the CRM. Call it with every field you could extract from the user's description.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"hcp_name":  stringProp("Full name of the doctor/HCP"),
						"attendees": stringProp("Comma-separated list of other attendees"),
						"date":      stringProp("Date in YYYY-MM-DD format"),
						"time":      stringProp("Time in HH:MM format"),
						"interaction_type": map[string]interface{}{
							"type":        "string",
							"description": "Kind of interaction",
							"enum":        []string{"Meeting", "Call", "Email", "Virtual"},
						},
						"topics":                stringProp("Main topics discussed, comma-separated"),
						"materials_distributed": stringProp("Materials or samples given, or 'None'"),
						"outcomes": map[string]interface{}{
							"type":        "string",
							"description": "Overall outcome of the interaction",
							"enum":        []string{"Positive", "Neutral", "Negative"},
						},
						"follow_up": stringProp("Follow-up actions planned"),
						"summary":   stringProp("Short 1-2 sentence summary"),
					},
					"required": []string{"hcp_name"},
				},
			},
		},
		{
			Type: "function",
			Function: Function{
				Name:        ToolSearchHCP,
				Description: "Search previously logged interactions by HCP name.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": stringProp("HCP name or part of it"),
					},
					"required": []string{"query"},
				},
			},
		},
		{
			Type: "function",
			Function: Function{
				Name:        ToolSuggestFollowUp,
				Description: "Suggest next steps based on the interaction outcome.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"outcome": stringProp("Positive, Neutral or Negative"),
					},
					"required": []string{"outcome"},
				},
			},
		},
		{
			Type: "function",
			Function: Function{
				Name:        ToolGenerateSummary,
				Description: "Create a concise summary of interaction notes.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"raw_text": stringProp("Notes to summarise"),
					},
					"required": []string{"raw_text"},
				},
			},
		},
		{
			Type: "function",
			Function: Function{
				Name:        ToolCheckCompliance,
				Description: "Compliance check for the discussed topics.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"topics": stringProp("Topics discussed"),
					},
					"required": []string{"topics"},
				},
			},
		},
	}
}
