package report

import (
	"fmt"
	"math"
)

const (
	stepPurview    = "Implement Microsoft Purview integration for data protection"
	stepCoE        = "Establish Center of Excellence for agent governance"
	stepMonitoring = "Configure monitoring and analytics for ongoing oversight"
	stepPolicies   = "Develop organizational policies for agent lifecycle management"

	timelineUrgent   = "Immediate action required: Complete Phase 1 (Security) within 2 weeks, Phase 2 (Compliance) within 6 weeks, Phase 3 (Operations) within 12 weeks"
	timelinePhased   = "Phase 1 (Security): 30 days, Phase 2 (Compliance): 60 days, Phase 3 (Operations): 90 days"
	timelineFinalize = "Finalize remaining items within 30 days, establish quarterly review cycles"

	recEnterprise = "Deploy enterprise-grade monitoring and analytics solutions"
	recScale      = "Scale governance approach based on organizational maturity"
)

// Template renders the deterministic narrative. ReferenceContext is ignored.
func Template(in Input) Narrative {
	pct := in.Figures.CompletionPercentage
	rounded := roundHalfUp(pct)
	hpm := in.Figures.HighPriorityMissing()

	subject := "Your organization"
	size := ""
	if in.Organization != nil {
		if in.Organization.Name != "" {
			subject = "For " + in.Organization.Name
		}
		size = in.Organization.Size
	}

	attention := "Continue building on your strong governance foundation."
	if hpm > 0 {
		attention = fmt.Sprintf("Immediate attention required for %d critical security controls.", hpm)
	}

	lastRec := recScale
	if size == "enterprise" {
		lastRec = recEnterprise
	}

	return Narrative{
		ExecutiveSummary: fmt.Sprintf(
			"Your organization has completed %d%% of the Microsoft 365 Agent Governance assessment. %s to ensure secure and compliant AI agent deployment.",
			rounded, summaryBand(pct)),
		DetailedAnalysis: fmt.Sprintf(
			"Assessment analysis reveals %d of %d governance controls are implemented (%d%%). Key focus areas include %d high-priority items requiring immediate attention. %s, priority should be placed on completing security controls, compliance measures, and operational governance frameworks to establish a robust foundation for Microsoft 365 agent management.",
			in.Figures.CompletedItems, in.Figures.TotalItems, rounded, hpm, subject),
		ActionPlan: []string{
			fmt.Sprintf("Complete %d high-priority security and access controls", hpm),
			stepPurview,
			stepCoE,
			stepMonitoring,
			stepPolicies,
		},
		Timeline: timelineBand(pct),
		RiskAssessment: fmt.Sprintf(
			"Current governance gaps present %s risk to the organization. %s Regular monitoring and continuous improvement essential for maintaining security posture.",
			riskWord(pct), attention),
		Recommendations: []string{
			"Prioritize high-priority security and access controls",
			"Establish comprehensive governance policies and procedures",
			"Implement regular audit and review processes",
			"Consider automation for ongoing compliance monitoring",
			lastRec,
		},
	}
}

func summaryBand(pct float64) string {
	switch {
	case pct < 50:
		return "Significant improvements needed"
	case pct < 80:
		return "Good progress with some gaps remaining"
	default:
		return "Excellent governance posture"
	}
}

func timelineBand(pct float64) string {
	switch {
	case pct < 30:
		return timelineUrgent
	case pct < 70:
		return timelinePhased
	default:
		return timelineFinalize
	}
}

// riskWord uses strict lower bounds, unlike assessment.RiskFor.
func riskWord(pct float64) string {
	switch {
	case pct > 80:
		return "LOW"
	case pct > 60:
		return "MODERATE"
	case pct > 40:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}
