// Package reports serves the stateless report-generation endpoint: the caller
// posts an assessment state and receives a narrative report.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessment"
	"governance-backend/internal/catalog"
	"governance-backend/internal/report"
	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
	"governance-backend/internal/shared/telemetry"
)

const (
	// Path is mounted under both /api and /api/v1.
	Path        = "/generate-report"
	maxBodySize = 1 << 20
)

var (
	errStateRequired = errors.New("Assessment state is required")

	timeNow = func() time.Time { return time.Now().UTC() }
)

// Generator produces a narrative; report.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, in report.Input) report.Result
}

// ReferenceLoader supplies optional framework context; reference.Loader satisfies it.
type ReferenceLoader interface {
	Load(ctx context.Context) (string, bool)
}

// Handler turns posted assessment state into a narrative report.
type Handler struct {
	Reports    Generator
	References ReferenceLoader
}

// NewHandler constructs a Handler.
func NewHandler(reports Generator, refs ReferenceLoader) *Handler {
	return &Handler{Reports: reports, References: refs}
}

// RegisterRoutes attaches the report route. Every verb is routed here so the
// handler can answer preflight and reject anything other than POST itself.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Any(Path, h.dispatch)
}

type generateRequest struct {
	AssessmentState  *assessment.Snapshot `json:"assessmentState"`
	ReportData       *figuresPayload      `json:"reportData"`
	OrganizationInfo *report.Organization `json:"organizationInfo"`
}

type figuresPayload struct {
	TotalItems           int               `json:"totalItems"`
	CompletedItems       int               `json:"completedItems"`
	CompletionPercentage float64           `json:"completionPercentage"`
	MissingItems         []assessment.Item `json:"missingItems"`
}

func (p *figuresPayload) validate() error {
	switch {
	case p.TotalItems < 0 || p.CompletedItems < 0:
		return errors.New("reportData counts must not be negative")
	case p.CompletedItems > p.TotalItems:
		return errors.New("reportData completedItems exceeds totalItems")
	case p.CompletionPercentage < 0 || p.CompletionPercentage > 100:
		return errors.New("reportData completionPercentage must be between 0 and 100")
	}
	return nil
}

func (p *figuresPayload) figures() report.Figures {
	return report.Figures{
		TotalItems:           p.TotalItems,
		CompletedItems:       p.CompletedItems,
		CompletionPercentage: p.CompletionPercentage,
		MissingItems:         report.MissingFrom(p.MissingItems),
	}
}

func (h *Handler) dispatch(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
	case http.MethodPost:
		h.generate(c)
	default:
		c.Header("Allow", "POST, OPTIONS")
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	}
}

func (h *Handler) generate(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("reports.unexpected_failure", map[string]any{
				"panic":      fmt.Sprint(r),
				"request_id": middleware.RequestIDFromContext(c),
			})
			h.unexpected(c)
		}
	}()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	req, err := bindRequest(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &tooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "body_too_large", fmt.Sprintf("request body exceeds %d bytes", maxBodySize), nil)
		case errors.Is(err, errStateRequired):
			respond.Error(c, http.StatusBadRequest, "validation_error", errStateRequired.Error(), nil)
		case errors.As(err, &syntax), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
			respond.Error(c, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", err.Error())
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		}
		return
	}

	in := report.Input{Organization: req.OrganizationInfo}
	if req.ReportData != nil {
		in.Figures = req.ReportData.figures()
	} else {
		state := &assessment.State{}
		state.Load(*req.AssessmentState, timeNow())
		in.Figures = report.FiguresFrom(assessment.Derive(state))
	}
	in.ReferenceContext = h.referenceContext(c.Request.Context())

	res := h.run(c.Request.Context(), in)
	c.Set(middleware.ReportSourceKey, string(res.Source))
	c.Header("X-Report-Source", string(res.Source))
	respond.OK(c, res.Narrative)
}

func bindRequest(c *gin.Context) (generateRequest, error) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errStateRequired
		}
		return req, err
	}
	if req.AssessmentState == nil {
		return req, errStateRequired
	}
	if len(req.AssessmentState.Sections) > 0 {
		if err := catalog.Validate(req.AssessmentState.Sections); err != nil {
			return req, fmt.Errorf("assessmentState: %w", err)
		}
	}
	if req.ReportData != nil {
		if err := req.ReportData.validate(); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (h *Handler) referenceContext(ctx context.Context) (text string) {
	if h.References == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			telemetry.Warn("reports.reference_panic", map[string]any{"panic": fmt.Sprint(r)})
			text = ""
		}
	}()
	text, _ = h.References.Load(ctx)
	return text
}

// run invokes the generator; anything it throws becomes a template report.
func (h *Handler) run(ctx context.Context, in report.Input) (res report.Result) {
	if h.Reports == nil {
		return report.Result{Narrative: report.Template(in), Source: report.SourceTemplate}
	}
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("reports.generator_panic", map[string]any{"panic": fmt.Sprint(r)})
			res = report.Result{Narrative: report.Template(in), Source: report.SourceTemplate}
		}
	}()
	return h.Reports.Generate(ctx, in)
}

func (h *Handler) unexpected(c *gin.Context) {
	respond.Error(c, http.StatusInternalServerError, "Failed to generate report", "An error occurred while processing your request", nil)
}
