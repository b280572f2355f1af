package routes

import (
	"github.com/Youngermaster/taskhub/internal/api/dto"
	"github.com/Youngermaster/taskhub/internal/api/handlers"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// ProjectRoutes handles the setup of project-related routes
type ProjectRoutes struct {
	handler   *handlers.ProjectHandler
	jwtSecret string
}

// NewProjectRoutes creates a new ProjectRoutes instance
func NewProjectRoutes(handler *handlers.ProjectHandler, jwtSecret string) *ProjectRoutes {
	return &ProjectRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all project-related routes
func (pr *ProjectRoutes) RegisterRoutes(router *gin.Engine) {
	projectGroup := router.Group("/api/projects")
	projectGroup.Use(middleware.NewAuthMiddleware(pr.jwtSecret))

	validation := middleware.NewValidationMiddleware()

	projectGroup.POST("", validation.ValidateRequest(dto.CreateProjectRequest{}), pr.handler.CreateProject)
	projectGroup.GET("", pr.handler.ListProjects)
	projectGroup.GET("/:id", pr.handler.GetProject)
	projectGroup.PUT("/:id", pr.handler.UpdateProject)
	projectGroup.DELETE("/:id", pr.handler.DeleteProject)

	projectGroup.POST("/:id/members", pr.handler.AddTeamMember)
	projectGroup.DELETE("/:id/members/:user_id", pr.handler.RemoveTeamMember)
}
