package assessment

import "fmt"

const (
	riskLowThreshold    = 80
	riskMediumThreshold = 60
	riskHighThreshold   = 40
)

// Derive computes the report aggregate for a state. It is pure: the same state
// always yields the same ReportData.
func Derive(s *State) ReportData {
	var all []Item
	for _, section := range s.Sections {
		all = append(all, section.Items...)
	}

	completed := 0
	missing := make([]Item, 0, len(all))
	var phaseTotal, phaseDone [4]int
	for _, item := range all {
		done := s.IsCompleted(item.ID)
		if item.Phase >= 1 && item.Phase <= 3 {
			phaseTotal[item.Phase]++
			if done {
				phaseDone[item.Phase]++
			}
		}
		if done {
			completed++
			continue
		}
		missing = append(missing, item)
	}

	pct := Percentage(completed, len(all))
	progress := PhaseProgress{
		Phase1: Percentage(phaseDone[1], phaseTotal[1]),
		Phase2: Percentage(phaseDone[2], phaseTotal[2]),
		Phase3: Percentage(phaseDone[3], phaseTotal[3]),
	}

	return ReportData{
		TotalItems:           len(all),
		CompletedItems:       completed,
		CompletionPercentage: pct,
		PhaseProgress:        progress,
		MissingItems:         missing,
		Recommendations:      recommendations(missing, progress),
		RiskLevel:            RiskFor(pct),
	}
}

// Percentage returns done/total*100, or 0 when total is 0.
func Percentage(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// RiskFor buckets a completion percentage. Lower bounds are inclusive.
func RiskFor(pct float64) RiskLevel {
	switch {
	case pct >= riskLowThreshold:
		return RiskLow
	case pct >= riskMediumThreshold:
		return RiskMedium
	case pct >= riskHighThreshold:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// CountHighPriority returns how many of items are high priority.
func CountHighPriority(items []Item) int {
	n := 0
	for _, item := range items {
		if item.Priority == PriorityHigh {
			n++
		}
	}
	return n
}

func recommendations(missing []Item, progress PhaseProgress) []string {
	focus := "3 (Management)"
	switch {
	case progress.Phase1 < 100:
		focus = "1 (Security)"
	case progress.Phase2 < 100:
		focus = "2 (Compliance)"
	}
	return []string{
		fmt.Sprintf("Complete %d high-priority items to improve security posture", CountHighPriority(missing)),
		fmt.Sprintf("Focus on Phase %s completion", focus),
		"Review agent inventory regularly to maintain compliance",
	}
}
