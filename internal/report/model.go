// Package report turns assessment figures into a narrative governance report,
// either through a language model or the deterministic template.
package report

import "governance-backend/internal/assessment"

// Source names the path that produced a Narrative.
type Source string

const (
	SourceAI             Source = "ai"
	SourceAIUnstructured Source = "ai_unstructured"
	SourceTemplate       Source = "template"
)

// Organization is the optional profile supplied with a report request.
type Organization struct {
	Name     string `json:"name,omitempty"`
	Size     string `json:"size,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// MissingItem is an incomplete control as seen by the generator.
type MissingItem struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Priority assessment.Priority `json:"priority"`
}

// Figures are the numbers a narrative is written from.
type Figures struct {
	TotalItems           int           `json:"totalItems"`
	CompletedItems       int           `json:"completedItems"`
	CompletionPercentage float64       `json:"completionPercentage"`
	MissingItems         []MissingItem `json:"missingItems"`
}

// HighPriorityMissing counts missing items with high priority.
func (f Figures) HighPriorityMissing() int {
	n := 0
	for _, item := range f.MissingItems {
		if item.Priority == assessment.PriorityHigh {
			n++
		}
	}
	return n
}

// FiguresFrom adapts derived report data.
func FiguresFrom(data assessment.ReportData) Figures {
	return Figures{
		TotalItems:           data.TotalItems,
		CompletedItems:       data.CompletedItems,
		CompletionPercentage: data.CompletionPercentage,
		MissingItems:         MissingFrom(data.MissingItems),
	}
}

// MissingFrom maps catalog items to generator input; the item text is the title.
func MissingFrom(items []assessment.Item) []MissingItem {
	out := make([]MissingItem, 0, len(items))
	for _, item := range items {
		out = append(out, MissingItem{ID: item.ID, Title: item.Text, Priority: item.Priority})
	}
	return out
}

// Input is everything Generate needs. Organization may be nil.
type Input struct {
	Figures          Figures
	Organization     *Organization
	ReferenceContext string
}

// Narrative is the report body returned to clients.
type Narrative struct {
	ExecutiveSummary string   `json:"executiveSummary"`
	DetailedAnalysis string   `json:"detailedAnalysis"`
	ActionPlan       []string `json:"actionPlan"`
	Timeline         string   `json:"timeline"`
	RiskAssessment   string   `json:"riskAssessment"`
	Recommendations  []string `json:"recommendations"`
}

// Result pairs a narrative with the path that produced it.
type Result struct {
	Narrative Narrative
	Source    Source
}
