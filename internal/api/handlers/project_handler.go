package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Youngermaster/taskhub/internal/api/dto"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles HTTP requests for project operations
type ProjectHandler struct {
	service project.Service
}

// NewProjectHandler creates a new ProjectHandler instance
func NewProjectHandler(service project.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// projectErrorStatus maps domain errors to HTTP status codes. The message
// sent to the caller is the sentinel text only; internals never leak.
func projectErrorStatus(err error) int {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, project.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, project.ErrHasTasks),
		errors.Is(err, project.ErrOwnerRemoval):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondProjectError(c *gin.Context, err error) {
	status := projectErrorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	created, err := h.service.CreateProject(c.Request.Context(), actorID, project.CreateProjectInput{
		Name:          req.Name,
		Description:   req.Description,
		TeamMemberIDs: req.TeamMemberIDs,
		Status:        project.ProjectStatus(req.Status),
		Tags:          req.Tags,
		Priority:      project.ProjectPriority(req.Priority),
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	middleware.CountMutation("project", "create")
	c.JSON(http.StatusCreated, gin.H{"data": ProjectToResponse(created)})
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.service.GetProject(c.Request.Context(), actorID, id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ProjectToResponse(p)})
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	filter := project.ProjectFilter{}
	if status := c.Query("status"); status != "" {
		ps := project.ProjectStatus(status)
		if !ps.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		filter.Status = &ps
	}
	if name := c.Query("name"); name != "" {
		filter.Name = &name
	}
	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, err := uuid.Parse(ownerStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
			return
		}
		filter.OwnerID = &ownerID
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	projects, total, err := h.service.ListProjects(c.Request.Context(), actorID, filter)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects:   ProjectsToResponse(projects),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	input := project.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		status := project.ProjectStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := project.ProjectPriority(*req.Priority)
		input.Priority = &priority
	}

	updated, err := h.service.UpdateProject(c.Request.Context(), actorID, id, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	middleware.CountMutation("project", "update")
	c.JSON(http.StatusOK, gin.H{"data": ProjectToResponse(updated)})
}

// DeleteProject handles DELETE /api/projects/:id. The hard query flag selects
// physical deletion; the default is archiving.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	hard := c.Query("hard") == "true"
	if err := h.service.RemoveProject(c.Request.Context(), actorID, id, hard); err != nil {
		respondProjectError(c, err)
		return
	}

	middleware.CountMutation("project", "delete")
	c.JSON(http.StatusOK, gin.H{"message": "project removed"})
}

// AddTeamMember handles POST /api/projects/:id/members
func (h *ProjectHandler) AddTeamMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req dto.TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.AddTeamMember(c.Request.Context(), actorID, id, req.UserID); err != nil {
		respondProjectError(c, err)
		return
	}

	middleware.CountMutation("project", "member_add")
	c.JSON(http.StatusOK, gin.H{"message": "member added"})
}

// RemoveTeamMember handles DELETE /api/projects/:id/members/:user_id
func (h *ProjectHandler) RemoveTeamMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.RemoveTeamMember(c.Request.Context(), actorID, id, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	middleware.CountMutation("project", "member_remove")
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
