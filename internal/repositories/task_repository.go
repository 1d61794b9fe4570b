package repositories

import (
	"context"

	"taskapp/internal/models"
)

// TaskQuery narrows and orders an owner's task listing. Zero values mean
// "not applied".
type TaskQuery struct {
	Completed *bool
	// SortColumn must be a trusted column name; callers whitelist it.
	SortColumn string
	SortDesc   bool
	Limit      int
	Skip       int
}

// TaskRepository defines the interface for task data access. Every lookup
// is scoped by owner so a foreign task looks exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	ListByOwner(ctx context.Context, ownerID string, q TaskQuery) ([]models.Task, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteByOwner(ctx context.Context, ownerID, id string) (*models.Task, error)
}
