package handlers

import (
	"errors"
	"net/http"

	"github.com/Youngermaster/taskhub/internal/api/dto"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/reports"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler handles HTTP requests for the reporting endpoints
type ReportHandler struct {
	service reports.Service
}

// NewReportHandler creates a new ReportHandler instance
func NewReportHandler(service reports.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func respondReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reports.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, reports.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, project.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// GetUserStatistics handles GET /api/reports/user
func (h *ReportHandler) GetUserStatistics(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	stats, err := h.service.GetUserStatistics(c.Request.Context(), actorID)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetProjectStatistics handles GET /api/reports/projects/:id
func (h *ReportHandler) GetProjectStatistics(c *gin.Context) {
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

	stats, err := h.service.GetProjectStatistics(c.Request.Context(), actorID, id)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetTeamPerformance handles GET /api/reports/performance. An optional
// project_id query narrows the report to one project.
func (h *ReportHandler) GetTeamPerformance(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var projectID *uuid.UUID
	if projectStr := c.Query("project_id"); projectStr != "" {
		id, err := uuid.Parse(projectStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
			return
		}
		projectID = &id
	}

	entries, err := h.service.GetTeamPerformance(c.Request.Context(), actorID, projectID)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// GetActivityTimeline handles GET /api/reports/timeline
func (h *ReportHandler) GetActivityTimeline(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.TimelineQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := reports.TimelineQuery{Days: req.Days}
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		query.UserID = &id
	}
	if req.EntityID != "" {
		id, err := uuid.Parse(req.EntityID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
			return
		}
		query.EntityID = &id
	}

	buckets, err := h.service.GetActivityTimeline(c.Request.Context(), actorID, query)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// GetPriorityDistribution handles GET /api/reports/priorities
func (h *ReportHandler) GetPriorityDistribution(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	dist, err := h.service.GetPriorityDistribution(c.Request.Context(), actorID)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dist})
}
