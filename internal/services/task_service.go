package services

import (
	"context"
	"strings"

	"taskapp/internal/models"
	"taskapp/internal/repositories"
)

// sortColumns maps accepted sort field names to task columns.
var sortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"updated_at":  "updated_at",
	"updatedAt":   "updated_at",
}

// TaskListOptions narrows an owner's task listing.
type TaskListOptions struct {
	Completed *bool
	// Sort is "<field>_<asc|desc>". Any direction other than asc sorts
	// descending.
	Sort  string
	Limit int
	Skip  int
}

// TaskUpdate carries the editable task fields. Nil fields are left alone.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskService handles business logic related to tasks. Every operation
// takes the owner's ID as its authorization boundary.
type TaskService struct {
	repo repositories.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo repositories.TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

// CreateTask stores a new task owned by ownerID.
func (s *TaskService) CreateTask(ctx context.Context, ownerID, description string, completed bool) (*models.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, newValidationError("description", "is required")
	}
	task := &models.Task{
		Description: description,
		Completed:   completed,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the owner's tasks filtered, sorted and paged by opts.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, opts TaskListOptions) ([]models.Task, error) {
	q := repositories.TaskQuery{Completed: opts.Completed}
	if opts.Sort != "" {
		column, desc, err := parseSort(opts.Sort)
		if err != nil {
			return nil, err
		}
		q.SortColumn, q.SortDesc = column, desc
	}
	if opts.Limit > 0 {
		q.Limit = opts.Limit
	}
	if opts.Skip > 0 {
		q.Skip = opts.Skip
	}
	return s.repo.ListByOwner(ctx, ownerID, q)
}

// CountTasks returns how many tasks ownerID has in total, ignoring any
// list options.
func (s *TaskService) CountTasks(ctx context.Context, ownerID string) (int64, error) {
	return s.repo.CountByOwner(ctx, ownerID)
}

// GetTask returns a task owned by ownerID.
func (s *TaskService) GetTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.repo.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return task, nil
}

// UpdateTask applies patch to a task owned by ownerID.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id string, patch TaskUpdate) (*models.Task, error) {
	var description string
	if patch.Description != nil {
		description = strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, newValidationError("description", "is required")
		}
	}

	task, err := s.repo.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if patch.Description != nil {
		task.Description = description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, translateNotFound(err)
	}
	return task, nil
}

// DeleteTask removes a task owned by ownerID and returns it.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.repo.DeleteByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return task, nil
}

func parseSort(sort string) (string, bool, error) {
	i := strings.LastIndex(sort, "_")
	field, dir := sort, ""
	if i >= 0 {
		field, dir = sort[:i], sort[i+1:]
	}
	column, ok := sortColumns[field]
	if !ok {
		return "", false, newValidationError("sort", "unknown sort field '"+field+"'")
	}
	return column, dir != "asc", nil
}
