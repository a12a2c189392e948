package assessment

// Priority ranks how urgently a governance control should be implemented.
type Priority string

const (
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityOptional Priority = "optional"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityOptional:
		return true
	default:
		return false
	}
}

// Category groups sections and items by governance concern.
type Category string

const (
	CategorySecurity   Category = "security"
	CategoryCompliance Category = "compliance"
	CategoryManagement Category = "management"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryCompliance, CategoryManagement:
		return true
	default:
		return false
	}
}

// Phases lists the rollout phases in order.
var Phases = []int{1, 2, 3}

// Item is a single governance control. Completed is the only mutable field.
type Item struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	Caption   string   `json:"caption,omitempty" yaml:"caption"`
	Priority  Priority `json:"priority" yaml:"priority"`
	Completed bool     `json:"completed" yaml:"-"`
	Phase     int      `json:"phase" yaml:"phase"`
	Category  Category `json:"category" yaml:"category"`
}

// Section is an ordered group of items under one category.
type Section struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Icon     string   `json:"icon" yaml:"icon"`
	Category Category `json:"category" yaml:"category"`
	Items    []Item   `json:"items" yaml:"items"`
}

// RiskLevel is the four-band label derived from overall completion.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// PhaseProgress holds completion percentages per rollout phase.
type PhaseProgress struct {
	Phase1 float64 `json:"phase1"`
	Phase2 float64 `json:"phase2"`
	Phase3 float64 `json:"phase3"`
}

// ReportData is the aggregate derived from a State. It is never persisted.
type ReportData struct {
	TotalItems           int           `json:"totalItems"`
	CompletedItems       int           `json:"completedItems"`
	CompletionPercentage float64       `json:"completionPercentage"`
	PhaseProgress        PhaseProgress `json:"phaseProgress"`
	MissingItems         []Item        `json:"missingItems"`
	Recommendations      []string      `json:"recommendations"`
	RiskLevel            RiskLevel     `json:"riskLevel"`
}

// CloneSections deep-copies sections so callers can mutate item flags freely.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s
		out[i].Items = append([]Item(nil), s.Items...)
	}
	return out
}
