package report

import (
	"strings"
	"testing"

	"governance-backend/internal/assessment"
)

func TestBuildPromptNotSpecified(t *testing.T) {
	p := BuildPrompt(Input{Figures: figures(9, 3, 1)})
	for _, want := range []string{
		"- Name: Not specified",
		"- Size: Not specified",
		"- Industry: Not specified",
		"- Completion percentage: 33%",
		"High item (Priority: high)\n",
		"Low item (Priority: low)\n",
		`"recommendations": ["string"]`,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "GOVERNANCE FRAMEWORK REFERENCE") {
		t.Fatalf("framework section should be absent without reference context")
	}
}

func TestBuildPromptOrganizationAndReference(t *testing.T) {
	p := BuildPrompt(Input{
		Figures:          Figures{TotalItems: 1, MissingItems: []MissingItem{{Title: "Enable MFA", Priority: assessment.PriorityHigh}}},
		Organization:     &Organization{Name: "Contoso", Size: "enterprise", Industry: "finance"},
		ReferenceContext: "--- guide.txt ---\nUse DLP.",
	})
	for _, want := range []string{"- Name: Contoso", "- Size: enterprise", "- Industry: finance", "GOVERNANCE FRAMEWORK REFERENCE", "Use DLP."} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}
