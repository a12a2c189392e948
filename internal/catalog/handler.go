package catalog

import (
	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessment"
	"governance-backend/internal/shared/server/respond"
)

type catalogResponse struct {
	Phases   []Phase              `json:"phases"`
	Sections []assessment.Section `json:"sections"`
}

// RegisterRoutes exposes the read-only catalog.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog", func(c *gin.Context) {
		respond.OK(c, catalogResponse{Phases: Phases(), Sections: Sections()})
	})
}
