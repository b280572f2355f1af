package project

import (
	"context"
	"errors"
	"time"

	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFilter defines filtering options for projects
type ProjectFilter struct {
	OwnerID  *uuid.UUID
	Status   *ProjectStatus
	Name     *string
	Page     int
	PageSize int
}

// Repository defines the interface for project persistence operations
type Repository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateTaskCounters overwrites the denormalized counters with freshly
	// counted values. Safe to call redundantly; last write wins and every
	// write carries a full recount.
	UpdateTaskCounters(ctx context.Context, id uuid.UUID, total, completed int64) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	result := r.db.WithContext(ctx).First(&project, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

func (r *repository) FindAll(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	var projects []Project
	var total int64
	query := r.db.WithContext(ctx).Model(&Project{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Name != nil {
		query = query.Where("name LIKE ?", "%"+*filter.Name+"%")
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
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *repository) Update(ctx context.Context, project *Project) error {
	result := r.db.WithContext(ctx).Save(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *repository) UpdateTaskCounters(ctx context.Context, id uuid.UUID, total, completed int64) error {
	result := r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"meta_total_tasks":     total,
			"meta_completed_tasks": completed,
			"updated_at":           time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
