package routes

import (
	"github.com/Youngermaster/taskhub/internal/api/dto"
	"github.com/Youngermaster/taskhub/internal/api/handlers"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// TaskRoutes handles the setup of task-related routes
type TaskRoutes struct {
	handler   *handlers.TaskHandler
	jwtSecret string
}

// NewTaskRoutes creates a new TaskRoutes instance
func NewTaskRoutes(handler *handlers.TaskHandler, jwtSecret string) *TaskRoutes {
	return &TaskRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all task-related routes
func (tr *TaskRoutes) RegisterRoutes(router *gin.Engine) {
	taskGroup := router.Group("/api/tasks")
	taskGroup.Use(middleware.NewAuthMiddleware(tr.jwtSecret))

	validation := middleware.NewValidationMiddleware()

	taskGroup.POST("", validation.ValidateRequest(dto.CreateTaskRequest{}), tr.handler.CreateTask)
	taskGroup.GET("", tr.handler.ListTasks)
	taskGroup.GET("/:id", tr.handler.GetTask)
	taskGroup.PUT("/:id", tr.handler.UpdateTask)
	taskGroup.DELETE("/:id", tr.handler.DeleteTask)

	taskGroup.PATCH("/:id/assign", tr.handler.AssignTask)
	taskGroup.PATCH("/:id/time", tr.handler.LogTime)
	taskGroup.POST("/:id/comments", validation.ValidateRequest(dto.CommentTaskRequest{}), tr.handler.CommentTask)
}
