package routes

import (
	"github.com/Youngermaster/taskhub/internal/api/handlers"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// ReportRoutes handles the setup of reporting routes
type ReportRoutes struct {
	handler   *handlers.ReportHandler
	jwtSecret string
}

// NewReportRoutes creates a new ReportRoutes instance
func NewReportRoutes(handler *handlers.ReportHandler, jwtSecret string) *ReportRoutes {
	return &ReportRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all reporting routes
func (rr *ReportRoutes) RegisterRoutes(router *gin.Engine) {
	reportGroup := router.Group("/api/reports")
	reportGroup.Use(middleware.NewAuthMiddleware(rr.jwtSecret))

	reportGroup.GET("/user", rr.handler.GetUserStatistics)
	reportGroup.GET("/projects/:id", rr.handler.GetProjectStatistics)
	reportGroup.GET("/performance", rr.handler.GetTeamPerformance)
	reportGroup.GET("/timeline", rr.handler.GetActivityTimeline)
	reportGroup.GET("/priorities", rr.handler.GetPriorityDistribution)
}
