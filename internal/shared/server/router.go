package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessments"
	"governance-backend/internal/catalog"
	"governance-backend/internal/reports"
	"governance-backend/internal/services/health"
	"governance-backend/internal/shared/config"
	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

const rateGroupReport = "REPORT"

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	AssessmentsHandler *assessments.Handler
	ReportsHandler     *reports.Handler
	RateLimiter        *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	cfg := deps.Config
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: reportGroup,
			Limiter:  deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupReport: middleware.PerMinute(cfg.ReportRatePerMin, cfg.ReportRateBurst),
			},
		}),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	v1 := r.Group("/api/v1")
	v1.GET("/health", func(c *gin.Context) {
		status := healthSvc.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	catalog.RegisterRoutes(v1)
	if deps.ReportsHandler != nil {
		deps.ReportsHandler.RegisterRoutes(api)
		deps.ReportsHandler.RegisterRoutes(v1)
	}
	if deps.AssessmentsHandler != nil {
		deps.AssessmentsHandler.RegisterRoutes(v1)
	}

	return r
}

// reportGroup puts the narrative-generating routes under the report rate limit.
func reportGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	path := c.FullPath()
	if strings.HasSuffix(path, reports.Path) || strings.HasSuffix(path, "/assessments/:id/report") {
		return rateGroupReport
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
