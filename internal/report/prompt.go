package report

import (
	"fmt"
	"strings"
)

const notSpecified = "Not specified"

// BuildPrompt renders the language-model request for in.
func BuildPrompt(in Input) string {
	var org Organization
	if in.Organization != nil {
		org = *in.Organization
	}

	var b strings.Builder
	b.WriteString("Generate a Microsoft 365 Agent Governance assessment report.\n\n")

	b.WriteString("ASSESSMENT METRICS:\n")
	fmt.Fprintf(&b, "- Total governance controls: %d\n", in.Figures.TotalItems)
	fmt.Fprintf(&b, "- Completed controls: %d\n", in.Figures.CompletedItems)
	fmt.Fprintf(&b, "- Completion percentage: %d%%\n", roundHalfUp(in.Figures.CompletionPercentage))
	fmt.Fprintf(&b, "- Missing high-priority controls: %d\n\n", in.Figures.HighPriorityMissing())

	b.WriteString("ORGANIZATION PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNotSpecified(org.Name))
	fmt.Fprintf(&b, "- Size: %s\n", orNotSpecified(org.Size))
	fmt.Fprintf(&b, "- Industry: %s\n\n", orNotSpecified(org.Industry))

	b.WriteString("MISSING CONTROLS:\n")
	if len(in.Figures.MissingItems) == 0 {
		b.WriteString("None\n")
	}
	for _, item := range in.Figures.MissingItems {
		fmt.Fprintf(&b, "%s (Priority: %s)\n", item.Title, item.Priority)
	}

	if ctx := strings.TrimSpace(in.ReferenceContext); ctx != "" {
		b.WriteString("\nGOVERNANCE FRAMEWORK REFERENCE:\n")
		b.WriteString("Align every recommendation with the following reference material.\n\n")
		b.WriteString(in.ReferenceContext)
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with a single JSON object with exactly these fields:\n")
	b.WriteString(`{
  "executiveSummary": "string",
  "detailedAnalysis": "string",
  "actionPlan": ["string"],
  "timeline": "string",
  "riskAssessment": "string",
  "recommendations": ["string"]
}`)
	b.WriteString("\nDo not include any other fields or any text outside the JSON object.\n")
	return b.String()
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return v
}
