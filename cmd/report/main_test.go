package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"governance-backend/internal/shared/config"
)

func TestRunFreshCatalog(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-template"}, config.Config{}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got output
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReportData.TotalItems != 35 || got.ReportData.CompletedItems != 0 {
		t.Fatalf("unexpected report data %+v", got.ReportData)
	}
	if got.Source != "template" || !strings.Contains(got.Report.ExecutiveSummary, "completed 0%") {
		t.Fatalf("unexpected report %q from %s", got.Report.ExecutiveSummary, got.Source)
	}
}

func TestRunSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	if err := os.WriteFile(statePath, []byte(`{"completedItems":["mac-1","mac-2"],"lastUpdated":1767225600000}`), 0o600); err != nil {
		t.Fatalf("write state: %v", err)
	}
	outPath := filepath.Join(dir, "out.json")

	err := run(context.Background(), []string{"-state", statePath, "-org-name", "Contoso", "-out", outPath}, config.Config{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got output
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReportData.CompletedItems != 2 {
		t.Fatalf("expected 2 completed, got %d", got.ReportData.CompletedItems)
	}
	if !strings.Contains(got.Report.DetailedAnalysis, "For Contoso") {
		t.Fatalf("organization not applied: %q", got.Report.DetailedAnalysis)
	}
}

func TestRunRejectsBadState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	_ = os.WriteFile(statePath, []byte(`{"sections":[{"id":"x","category":"bogus"}]}`), 0o600)

	if err := run(context.Background(), []string{"-state", statePath}, config.Config{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := run(context.Background(), []string{"-state", filepath.Join(dir, "missing.json")}, config.Config{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected read error")
	}
}
