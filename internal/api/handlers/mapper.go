package handlers

import (
	"github.com/Youngermaster/taskhub/internal/api/dto"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/task"
)

// ProjectToResponse converts a project model to its API representation
func ProjectToResponse(p *project.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		OwnerID:       p.OwnerID,
		TeamMemberIDs: p.TeamMemberIDs,
		Status:        string(p.Status),
		Tags:          p.Tags,
		Metadata: dto.ProjectMetadataResponse{
			TotalTasks:     p.Metadata.TotalTasks,
			CompletedTasks: p.Metadata.CompletedTasks,
			Priority:       string(p.Metadata.Priority),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProjectsToResponse converts a slice of project models
func ProjectsToResponse(projects []project.Project) []dto.ProjectResponse {
	out := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, ProjectToResponse(&projects[i]))
	}
	return out
}

// TaskToResponse converts a task model to its API representation
func TaskToResponse(t *task.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Title:          t.Title,
		Description:    t.Description,
		AssignedToID:   t.AssignedToID,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Tags:           t.Tags,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

// TasksToResponse converts a slice of task models
func TasksToResponse(tasks []task.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, TaskToResponse(&tasks[i]))
	}
	return out
}
