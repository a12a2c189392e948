package report

import (
	"context"
	"fmt"
	"time"

	"governance-backend/internal/llm"
	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/telemetry"
)

// DefaultTimeout bounds the single language-model call.
const DefaultTimeout = 60 * time.Second

// Generator produces narratives. The zero value always uses the template.
type Generator struct {
	LLM     llm.Client
	Timeout time.Duration
}

// Generate never fails: any upstream problem degrades to the template, and a
// reply that cannot be parsed degrades to an ai_unstructured narrative.
func (g *Generator) Generate(ctx context.Context, in Input) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("report.generate_panic", map[string]any{"panic": fmt.Sprint(r)})
			res = Result{Narrative: Template(in), Source: SourceTemplate}
		}
		metrics.IncReportGenerated(string(res.Source))
		metrics.ObserveReportDurationMs(metrics.SinceMillis(start))
	}()

	if g == nil || !llm.Configured(g.LLM) {
		return Result{Narrative: Template(in), Source: SourceTemplate}
	}

	raw, err := g.complete(ctx, BuildPrompt(in))
	if err != nil {
		metrics.IncLLMCallFailure()
		telemetry.Warn("report.llm_failed", map[string]any{"err": err.Error()})
		return Result{Narrative: Template(in), Source: SourceTemplate}
	}

	narrative, err := ParseReply(raw)
	if err != nil {
		telemetry.Warn("report.llm_reply_unparsable", map[string]any{"err": err.Error(), "reply_len": len(raw)})
		return Result{Narrative: Degraded(raw), Source: SourceAIUnstructured}
	}
	return Result{Narrative: narrative, Source: SourceAI}
}

type completion struct {
	text string
	err  error
}

// complete makes exactly one call and stops waiting once the timeout fires,
// even if the client ignores ctx.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: fmt.Errorf("llm client panic: %v", r)}
			}
		}()
		text, err := g.LLM.Complete(ctx, prompt)
		done <- completion{text: text, err: err}
	}()

	select {
	case out := <-done:
		return out.text, out.err
	case <-ctx.Done():
		return "", fmt.Errorf("llm call: %w", ctx.Err())
	}
}
