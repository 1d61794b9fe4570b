package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{
		db: db,
	}
}

// Create creates a new task in the database.
func (r *GORMTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's tasks narrowed and ordered by q.
func (r *GORMTaskRepository) ListByOwner(ctx context.Context, ownerID string, q TaskQuery) ([]models.Task, error) {
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if q.Completed != nil {
		tx = tx.Where("completed = ?", *q.Completed)
	}
	if q.SortColumn != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortColumn}, Desc: q.SortDesc})
	} else {
		tx = tx.Order("created_at asc")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Skip > 0 {
		tx = tx.Offset(q.Skip)
	}

	tasks := []models.Task{}
	if err := tx.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks of owner %s: %w", ownerID, err)
	}
	return tasks, nil
}

// CountByOwner returns how many tasks the owner has.
func (r *GORMTaskRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks of owner %s: %w", ownerID, err)
	}
	return count, nil
}

// GetByOwner retrieves a task by ID only when ownerID owns it.
func (r *GORMTaskRepository) GetByOwner(ctx context.Context, ownerID, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task by ID %s: %w", id, err)
	}
	return &task, nil
}

// Update writes description and completed of an existing task.
func (r *GORMTaskRepository) Update(ctx context.Context, task *models.Task) error {
	res := r.db.WithContext(ctx).
		Model(task).
		Where("owner_id = ?", task.OwnerID).
		Select("Description", "Completed", "UpdatedAt").
		Updates(task)
	if res.Error != nil {
		return fmt.Errorf("failed to update task %s: %w", task.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task with ID %s: %w", task.ID, ErrNotFound)
	}
	return nil
}

// DeleteByOwner removes a task owned by ownerID and returns it.
func (r *GORMTaskRepository) DeleteByOwner(ctx context.Context, ownerID, id string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("task with ID %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to get task by ID %s: %w", id, err)
		}
		if err := tx.Delete(&models.Task{}, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			return fmt.Errorf("failed to delete task %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}
