package task

import (
	"context"
	"errors"

	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskFilter defines filtering options for tasks
type TaskFilter struct {
	ProjectID    *uuid.UUID
	Status       *TaskStatus
	Priority     *TaskPriority
	AssignedToID *uuid.UUID
	CreatedBy    *uuid.UUID
	Page         int
	PageSize     int
}

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByProject returns the total task count for a project and the
	// subset with status done. Used by the counter recompute.
	CountByProject(ctx context.Context, projectID uuid.UUID) (total int64, done int64, err error)
}

type taskRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	result := r.db.WithContext(ctx).First(&task, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var tasks []Task
	var total int64

	query := r.db.WithContext(ctx).Model(&Task{})

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", filter.AssignedToID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 100
	}

	err := query.Order("created_at DESC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) Update(ctx context.Context, task *Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Task{}).
		Where("project_id = ?", projectID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var done int64
	err = r.db.WithContext(ctx).Model(&Task{}).
		Where("project_id = ? AND status = ?", projectID, TaskStatusDone).
		Count(&done).Error
	if err != nil {
		return 0, 0, err
	}

	return total, done, nil
}
