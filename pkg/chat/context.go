package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseGraphContext enhances the raw context string the frontend sends with
// each chat message. Structured JSON context (current baseline, selected
// sample, sample list, graph type, analyzed columns) is rendered into a
// readable description for the model; anything else passes through as plain
// session text.
func parseGraphContext(contextStr string) string {
	trimmed := strings.TrimSpace(contextStr)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "{") {
		var data map[string]any
		if err := json.Unmarshal([]byte(trimmed), &data); err == nil {
			return describeGraphContext(data)
		}
	}

	return fmt.Sprintf("\nCurrent session context:\n%s\n", trimmed)
}

func describeGraphContext(data map[string]any) string {
	var b strings.Builder
	b.WriteString("\nCurrent Graph Analysis Context:\n")

	if baseline, ok := data["baseline"].(map[string]any); ok {
		fmt.Fprintf(&b, "- Baseline Dataset: %s\n", nameOf(baseline))
		if stats, ok := baseline["stats"].(map[string]any); ok {
			fmt.Fprintf(&b, "  - Rows: %v, Columns: %v\n", valueOr(stats, "rows"), valueOr(stats, "columns"))
		}
	}

	if sample, ok := data["selectedSample"].(map[string]any); ok {
		fmt.Fprintf(&b, "- Selected Sample: %s\n", nameOf(sample))
		if stats, ok := sample["stats"].(map[string]any); ok {
			fmt.Fprintf(&b, "  - Rows: %v, Columns: %v\n", valueOr(stats, "rows"), valueOr(stats, "columns"))
		}
	}

	if samples, ok := data["allSamples"].([]any); ok && len(samples) > 0 {
		fmt.Fprintf(&b, "- Total Samples Available: %d\n", len(samples))
		names := make([]string, 0, len(samples))
		for _, s := range samples {
			if m, ok := s.(map[string]any); ok {
				names = append(names, nameOf(m))
			}
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "  - Sample Names: %s\n", strings.Join(names, ", "))
		}
	}

	if graphType, ok := data["graphType"].(string); ok && graphType != "" {
		fmt.Fprintf(&b, "- Current Graph Type: %s\n", graphType)
	}

	if cols, ok := data["selectedColumns"].([]any); ok && len(cols) > 0 {
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			names = append(names, fmt.Sprintf("%v", c))
		}
		fmt.Fprintf(&b, "- Analyzed Columns: %s\n", strings.Join(names, ", "))
	}

	b.WriteString("\nThe user can ask questions about these datasets, their statistical properties, patterns, or comparisons between baseline and sample data.\n")
	return b.String()
}

func nameOf(m map[string]any) string {
	if name, ok := m["name"].(string); ok && name != "" {
		return name
	}
	return "Unknown"
}

func valueOr(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return "N/A"
}

// formatHistory renders the most recent turns of a conversation for the
// prompt. Only the last historyWindow messages are included.
func formatHistory(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}

	const historyWindow = 5
	start := 0
	if len(messages) > historyWindow {
		start = len(messages) - historyWindow
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range messages[start:] {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	return b.String()
}
