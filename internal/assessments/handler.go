package assessments

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessment"
	"governance-backend/internal/report"
	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

const maxBodySize = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assessments", h.create)
	rg.GET("/assessments/:id", h.get)
	rg.PUT("/assessments/:id", h.replace)
	rg.POST("/assessments/:id/items/:itemId/toggle", h.toggle)
	rg.POST("/assessments/:id/reset", h.reset)
	rg.GET("/assessments/:id/report-data", h.reportData)
	rg.POST("/assessments/:id/report", h.report)
}

func (h *Handler) create(c *gin.Context) {
	rec, err := h.Svc.Create(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.AssessmentIDKey, rec.ID)
	respond.JSON(c, http.StatusCreated, toResponse(rec))
}

func (h *Handler) get(c *gin.Context) {
	id := h.id(c)
	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) replace(c *gin.Context) {
	id := h.id(c)
	var snap assessment.Snapshot
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(&snap); err != nil {
		h.badBody(c, err, "request body must be an assessment snapshot")
		return
	}
	rec, err := h.Svc.Replace(c.Request.Context(), id, snap)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) toggle(c *gin.Context) {
	id := h.id(c)
	rec, err := h.Svc.Toggle(c.Request.Context(), id, c.Param("itemId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) reset(c *gin.Context) {
	id := h.id(c)
	rec, err := h.Svc.Reset(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) reportData(c *gin.Context) {
	id := h.id(c)
	data, err := h.Svc.ReportData(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, data)
}

type reportRequest struct {
	OrganizationInfo *report.Organization `json:"organizationInfo"`
}

func (h *Handler) report(c *gin.Context) {
	id := h.id(c)
	var req reportRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badBody(c, err, "request body must be valid JSON")
		return
	}

	res, err := h.Svc.Report(c.Request.Context(), id, req.OrganizationInfo)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.ReportSourceKey, string(res.Source))
	c.Header("X-Report-Source", string(res.Source))
	respond.OK(c, res.Narrative)
}

func (h *Handler) id(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.AssessmentIDKey, id)
	return id
}

func (h *Handler) badBody(c *gin.Context, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respond.Error(c, http.StatusRequestEntityTooLarge, "body_too_large", fmt.Sprintf("request body exceeds %d bytes", maxBodySize), nil)
		return
	}
	respond.Error(c, http.StatusBadRequest, "invalid_json", message, err.Error())
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "assessment not found", nil)
	case errors.Is(err, assessment.ErrUnknownItem):
		respond.Error(c, http.StatusNotFound, "item_not_found", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "An error occurred while processing your request", nil)
	}
}
