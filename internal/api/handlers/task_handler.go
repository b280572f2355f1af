package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Youngermaster/taskhub/internal/api/dto"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/task"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service task.Service
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

func taskErrorStatus(err error) int {
	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, task.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondTaskError(c *gin.Context, err error) {
	status := taskErrorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	created, warnings, err := h.service.CreateTask(c.Request.Context(), actorID, task.CreateTaskInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		AssignedToID:   req.AssignedToID,
		Status:         task.TaskStatus(req.Status),
		Priority:       task.TaskPriority(req.Priority),
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	middleware.CountMutation("task", "create")
	c.JSON(http.StatusCreated, gin.H{"data": dto.TaskMutationResponse{
		Task:     TaskToResponse(created),
		Warnings: warnings,
	}})
}

// GetTask handles GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), actorID, id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(t)})
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	filter := task.TaskFilter{}
	if projectStr := c.Query("project_id"); projectStr != "" {
		projectID, err := uuid.Parse(projectStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
			return
		}
		filter.ProjectID = &projectID
	}
	if status := c.Query("status"); status != "" {
		ts := task.TaskStatus(status)
		if !ts.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		filter.Status = &ts
	}
	if priority := c.Query("priority"); priority != "" {
		tp := task.TaskPriority(priority)
		if !tp.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority value"})
			return
		}
		filter.Priority = &tp
	}
	if assigneeStr := c.Query("assigned_to_id"); assigneeStr != "" {
		assigneeID, err := uuid.Parse(assigneeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee id"})
			return
		}
		filter.AssignedToID = &assigneeID
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	tasks, total, err := h.service.ListTasks(c.Request.Context(), actorID, filter)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      TasksToResponse(tasks),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	input := task.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		AssignedToID:   req.AssignedToID,
		ClearAssignee:  req.ClearAssignee,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           req.Tags,
	}
	if req.Status != nil {
		status := task.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := task.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	updated, warnings, err := h.service.UpdateTask(c.Request.Context(), actorID, id, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	middleware.CountMutation("task", "update")
	c.JSON(http.StatusOK, gin.H{"data": dto.TaskMutationResponse{
		Task:     TaskToResponse(updated),
		Warnings: warnings,
	}})
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), actorID, id); err != nil {
		respondTaskError(c, err)
		return
	}

	middleware.CountMutation("task", "delete")
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// AssignTask handles PATCH /api/tasks/:id/assign
func (h *TaskHandler) AssignTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req dto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	updated, err := h.service.AssignTask(c.Request.Context(), actorID, id, req.UserID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	middleware.CountMutation("task", "assign")
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// LogTime handles PATCH /api/tasks/:id/time
func (h *TaskHandler) LogTime(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req dto.LogTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	updated, err := h.service.LogTime(c.Request.Context(), actorID, id, req.Hours)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	middleware.CountMutation("task", "log_time")
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// CommentTask handles POST /api/tasks/:id/comments
func (h *TaskHandler) CommentTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req dto.CommentTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.CommentTask(c.Request.Context(), actorID, id, req.Text); err != nil {
		respondTaskError(c, err)
		return
	}

	middleware.CountMutation("task", "comment")
	c.JSON(http.StatusCreated, gin.H{"message": "comment recorded"})
}
