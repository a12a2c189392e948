package main

// Generate a report offline:
//   go run ./cmd/report -state snapshot.json -org-name Contoso -refs ./reference-docs

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"governance-backend/internal/assessment"
	"governance-backend/internal/bootstrap"
	"governance-backend/internal/catalog"
	"governance-backend/internal/llm"
	"governance-backend/internal/reference"
	"governance-backend/internal/report"
	"governance-backend/internal/shared/config"
	localstore "governance-backend/internal/shared/storage/object/local"
)

var timeNow = func() time.Time { return time.Now().UTC() }

type output struct {
	ReportData assessment.ReportData `json:"reportData"`
	Source     report.Source         `json:"source"`
	Report     report.Narrative      `json:"report"`
}

func main() {
	cfg := config.Load()
	if err := run(context.Background(), os.Args[1:], cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, cfg config.Config, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	statePath := fs.String("state", "", "Path to an assessment snapshot JSON file (default: fresh catalog)")
	orgName := fs.String("org-name", "", "Organization name")
	orgSize := fs.String("org-size", "", "Organization size")
	orgIndustry := fs.String("org-industry", "", "Organization industry")
	refsDir := fs.String("refs", "", "Directory of reference documents (optional)")
	outPath := fs.String("out", "", "Path to write JSON output (default: stdout)")
	templateOnly := fs.Bool("template", false, "Skip the LLM even if one is configured")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := loadState(*statePath)
	if err != nil {
		return err
	}
	data := assessment.Derive(state)

	in := report.Input{Figures: report.FiguresFrom(data)}
	if *orgName != "" || *orgSize != "" || *orgIndustry != "" {
		in.Organization = &report.Organization{Name: *orgName, Size: *orgSize, Industry: *orgIndustry}
	}
	if strings.TrimSpace(*refsDir) != "" {
		in.ReferenceContext, _ = reference.NewLoader(localstore.New(*refsDir)).Load(ctx)
	}

	var client llm.Client = llm.PlaceholderClient{}
	if !*templateOnly {
		client = bootstrap.BuildLLM(cfg)
	}
	gen := &report.Generator{LLM: client, Timeout: cfg.LLMTimeout}
	res := gen.Generate(ctx, in)

	payload, err := json.MarshalIndent(output{ReportData: data, Source: res.Source, Report: res.Narrative}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	payload = append(payload, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, payload, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	_, err = stdout.Write(payload)
	return err
}

func loadState(path string) (*assessment.State, error) {
	if strings.TrimSpace(path) == "" {
		return assessment.NewState(catalog.Sections(), timeNow()), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var snap assessment.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if len(snap.Sections) == 0 {
		snap.Sections = catalog.Sections()
	} else if err := catalog.Validate(snap.Sections); err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	state := &assessment.State{}
	state.Load(snap, timeNow())
	return state, nil
}
