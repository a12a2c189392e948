package assessment

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

func nineItemSections() []Section {
	mk := func(id string, phase int, cat Category, prio Priority) Item {
		return Item{ID: id, Text: id, Priority: prio, Phase: phase, Category: cat}
	}
	return []Section{
		{ID: "sec", Title: "Security", Category: CategorySecurity, Items: []Item{
			mk("s-1", 1, CategorySecurity, PriorityHigh),
			mk("s-2", 1, CategorySecurity, PriorityHigh),
			mk("s-3", 1, CategorySecurity, PriorityMedium),
		}},
		{ID: "comp", Title: "Compliance", Category: CategoryCompliance, Items: []Item{
			mk("c-1", 2, CategoryCompliance, PriorityHigh),
			mk("c-2", 2, CategoryCompliance, PriorityLow),
			mk("c-3", 2, CategoryCompliance, PriorityOptional),
		}},
		{ID: "mgmt", Title: "Management", Category: CategoryManagement, Items: []Item{
			mk("m-1", 3, CategoryManagement, PriorityHigh),
			mk("m-2", 3, CategoryManagement, PriorityMedium),
			mk("m-3", 3, CategoryManagement, PriorityHigh),
		}},
	}
}

func completeAll(t *testing.T, s *State, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := s.Toggle(id, testNow); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
}

func TestDerivePhaseOneComplete(t *testing.T) {
	s := NewState(nineItemSections(), testNow)
	completeAll(t, s, "s-1", "s-2", "s-3")

	got := Derive(s)
	if got.TotalItems != 9 || got.CompletedItems != 3 {
		t.Fatalf("expected 3/9, got %d/%d", got.CompletedItems, got.TotalItems)
	}
	if got.PhaseProgress.Phase1 != 100 {
		t.Fatalf("expected phase1 100, got %v", got.PhaseProgress.Phase1)
	}
	if got.PhaseProgress.Phase2 != 0 || got.PhaseProgress.Phase3 != 0 {
		t.Fatalf("expected phase2/phase3 0, got %v/%v", got.PhaseProgress.Phase2, got.PhaseProgress.Phase3)
	}
	if math.Abs(got.CompletionPercentage-33.333333) > 0.001 {
		t.Fatalf("expected ~33.33%%, got %v", got.CompletionPercentage)
	}
	if got.RiskLevel != RiskCritical {
		t.Fatalf("expected critical, got %s", got.RiskLevel)
	}
	want := []string{
		"Complete 3 high-priority items to improve security posture",
		"Focus on Phase 2 (Compliance) completion",
		"Review agent inventory regularly to maintain compliance",
	}
	if !reflect.DeepEqual(got.Recommendations, want) {
		t.Fatalf("recommendations mismatch:\n got %q\nwant %q", got.Recommendations, want)
	}
}

func TestDeriveEmptyCatalog(t *testing.T) {
	got := Derive(NewState(nil, testNow))
	if got.TotalItems != 0 || got.CompletionPercentage != 0 {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if got.RiskLevel != RiskCritical {
		t.Fatalf("expected critical for empty catalog, got %s", got.RiskLevel)
	}
	if got.PhaseProgress != (PhaseProgress{}) {
		t.Fatalf("expected zero phase progress, got %+v", got.PhaseProgress)
	}
}

func TestDeriveNothingAndEverythingCompleted(t *testing.T) {
	s := NewState(nineItemSections(), testNow)
	if got := Derive(s); got.CompletionPercentage != 0 {
		t.Fatalf("expected 0%%, got %v", got.CompletionPercentage)
	}

	completeAll(t, s, "s-1", "s-2", "s-3", "c-1", "c-2", "c-3", "m-1", "m-2", "m-3")
	got := Derive(s)
	if got.CompletionPercentage != 100 {
		t.Fatalf("expected 100%%, got %v", got.CompletionPercentage)
	}
	if got.RiskLevel != RiskLow {
		t.Fatalf("expected low, got %s", got.RiskLevel)
	}
	if len(got.MissingItems) != 0 {
		t.Fatalf("expected no missing items, got %d", len(got.MissingItems))
	}
	if got.Recommendations[1] != "Focus on Phase 3 (Management) completion" {
		t.Fatalf("unexpected focus recommendation %q", got.Recommendations[1])
	}
}

func TestDeriveMissingItemsKeepCatalogOrder(t *testing.T) {
	s := NewState(nineItemSections(), testNow)
	completeAll(t, s, "s-2", "c-1", "m-3")

	got := Derive(s)
	var ids []string
	for _, item := range got.MissingItems {
		ids = append(ids, item.ID)
	}
	want := []string{"s-1", "s-3", "c-2", "c-3", "m-1", "m-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("missing order mismatch: got %v want %v", ids, want)
	}
	if len(got.MissingItems)+got.CompletedItems != got.TotalItems {
		t.Fatalf("missing + completed must equal total")
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	s := NewState(nineItemSections(), testNow)
	completeAll(t, s, "s-1", "c-2")

	first := Derive(s)
	second := Derive(s)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical report data")
	}
}

func TestRiskForBoundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want RiskLevel
	}{
		{pct: 100, want: RiskLow},
		{pct: 80.0, want: RiskLow},
		{pct: 79.999, want: RiskMedium},
		{pct: 60.0, want: RiskMedium},
		{pct: 59.999, want: RiskHigh},
		{pct: 40.0, want: RiskHigh},
		{pct: 39.999, want: RiskCritical},
		{pct: 0, want: RiskCritical},
	}
	for _, tt := range tests {
		if got := RiskFor(tt.pct); got != tt.want {
			t.Fatalf("RiskFor(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestPercentageExactBoundary(t *testing.T) {
	if got := Percentage(4, 5); RiskFor(got) != RiskLow {
		t.Fatalf("4/5 should be low risk, got %v (%s)", got, RiskFor(got))
	}
	if got := Percentage(3, 5); RiskFor(got) != RiskMedium {
		t.Fatalf("3/5 should be medium risk, got %v", got)
	}
	if got := Percentage(2, 5); RiskFor(got) != RiskHigh {
		t.Fatalf("2/5 should be high risk, got %v", got)
	}
}
