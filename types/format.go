package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

var stepQuestions = map[Step]string{
	StepIdle:           "The assistant asked whether the user wants to start a cardiovascular risk assessment.",
	StepConfirmSummary: "The assistant showed a summary of the collected clinical data and asked the user to confirm sending it for prediction.",
}

func formatIntentSection() string {
	var buf strings.Builder
	buf.WriteString("# Intents:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Intent", "Meaning")
	_ = table.Append("affirm", "the user agrees, accepts or confirms")
	_ = table.Append("decline", "the user refuses, declines or wants to stop")
	_ = table.Append("none", "anything else")
	_ = table.Render()
	return buf.String()
}

func formatMissingFieldsSection(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.JSONPointer, field.Description)
	}
	_ = table.Render()
	return buf.String()
}

// FormatToolRequest renders req as the user message of an intent prompt.
func FormatToolRequest(req *ToolRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("nil tool request")
	}
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Current Step:\n%s", req.Step),
	}
	if q, ok := stepQuestions[req.Step]; ok {
		sections = append(sections, fmt.Sprintf("# Context:\n%s", q))
	}
	if req.MessagePair.Question != "" || req.MessagePair.Answer != "" {
		sections = append(sections, "# Latest Dialogue:")
		if req.MessagePair.Question != "" {
			sections = append(sections, fmt.Sprintf("## Assistant Question:\n%s", req.MessagePair.Question))
		}
		if req.MessagePair.Answer != "" {
			sections = append(sections, fmt.Sprintf("## User Answer:\n%s", req.MessagePair.Answer))
		}
	}
	sections = append(sections, formatIntentSection())
	if s := formatMissingFieldsSection(req.Missing); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n"), nil
}
