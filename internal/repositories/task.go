package repositories

import (
	"context"
	"time"

	"github.com/gofrs/uuid"

	"task-tracker/internal/database"
	"task-tracker/internal/models"
)

type TaskFilter struct {
	AssigneeEmail string
}

type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Save(ctx context.Context, task *models.Task) (*models.Task, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type TaskRepositoryImpl struct {
	store *database.Store
}

func NewTaskRepository(store *database.Store) *TaskRepositoryImpl {
	return &TaskRepositoryImpl{store: store}
}

func (r *TaskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return database.FindByID[models.Task](ctx, r.store, id)
}

// List returns tasks newest first.
func (r *TaskRepositoryImpl) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	where := database.Filter{}
	if filter.AssigneeEmail != "" {
		where["assignee_email"] = filter.AssigneeEmail
	}
	return database.Find[models.Task](ctx, r.store, where, database.Sort{Column: "created_at", Desc: true})
}

// Create inserts task with defaults for status and priority.
func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = uuid.Nil
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.DefaultPriority
	}
	return database.Save(ctx, r.store, task)
}

func (r *TaskRepositoryImpl) Save(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.ID == uuid.Nil {
		return nil, database.ErrNotFound
	}
	return database.Save(ctx, r.store, task)
}

func (r *TaskRepositoryImpl) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return database.DeleteByID[models.Task](ctx, r.store, id)
}

// DeleteOlderThan removes tasks created strictly before cutoff.
func (r *TaskRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return database.DeleteWhere[models.Task](ctx, r.store, "created_at", database.OpLt, cutoff.UTC())
}
