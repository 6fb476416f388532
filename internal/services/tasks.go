package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/internal/notify"
	"task-tracker/internal/repositories"
)

const dueDateLayout = "2006-01-02"

type CreateTaskInput struct {
	Title         string
	Details       string
	Status        string
	Priority      string
	AssigneeEmail string
	DueDate       string
}

// UpdateTaskInput fields left nil keep their stored value. An empty
// AssigneeEmail or DueDate clears it.
type UpdateTaskInput struct {
	Title         *string
	Details       *string
	Status        *string
	Priority      *string
	AssigneeEmail *string
	DueDate       *string
}

type TaskService interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, owner models.Principal, in CreateTaskInput) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*models.Task, error)
	Assign(ctx context.Context, id uuid.UUID, assigneeEmail string) (*models.Task, error)
	UpdateStatus(ctx context.Context, actor models.Principal, id uuid.UUID, status string) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskServiceImpl struct {
	users       repositories.UserRepository
	tasks       repositories.TaskRepository
	broadcaster notify.Broadcaster
	now         func() time.Time
	logger      zerolog.Logger
}

func NewTaskService(users repositories.UserRepository, tasks repositories.TaskRepository, broadcaster notify.Broadcaster, now func() time.Time, logger zerolog.Logger) *TaskServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &TaskServiceImpl{
		users:       users,
		tasks:       tasks,
		broadcaster: broadcaster,
		now:         now,
		logger:      logger.With().Str("component", "tasks").Logger(),
	}
}

func (s *TaskServiceImpl) List(ctx context.Context) ([]models.Task, error) {
	return s.tasks.List(ctx, repositories.TaskFilter{})
}

func (s *TaskServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.load(ctx, id)
}

func (s *TaskServiceImpl) load(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("Task not found")
	}
	return task, nil
}

func (s *TaskServiceImpl) save(ctx context.Context, task *models.Task) (*models.Task, error) {
	saved, err := s.tasks.Save(ctx, task)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("Task not found")
	}
	return saved, err
}

// checkAssignee fails unless email belongs to an existing developer.
func (s *TaskServiceImpl) checkAssignee(ctx context.Context, email string) error {
	users, err := s.users.List(ctx, repositories.UserFilter{Email: email, Role: models.RoleDeveloper}, repositories.UserSortNewest)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return invalid("Invalid developer email")
	}
	return nil
}

// parseDueDate reads a calendar day and rejects days before today. A
// timestamp contributes the day written in its own offset. The returned time
// is midnight UTC of that day.
func parseDueDate(value string, now time.Time, pastMessage string) (*time.Time, error) {
	loc := now.Location()
	day, err := time.ParseInLocation(dueDateLayout, value, loc)
	if err != nil {
		ts, rfcErr := time.Parse(time.RFC3339, value)
		if rfcErr != nil {
			return nil, invalid("Invalid date format")
		}
		day = ts
	}

	y, m, d := day.Date()
	due := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ty, tm, td := now.Date()
	today := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if due.Before(today) {
		return nil, invalid("%s", pastMessage)
	}
	return &due, nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, owner models.Principal, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	details := strings.TrimSpace(in.Details)
	if title == "" || details == "" {
		return nil, invalid("Title and details are required")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.IsValidTaskStatus(status) {
		return nil, invalid("Invalid status. Must be 'todo', 'in-progress', or 'done'")
	}
	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = models.DefaultPriority
	}

	task := &models.Task{
		Title:    title,
		Details:  details,
		Status:   status,
		Priority: priority,
	}
	if owner.Email != "" {
		email := owner.Email
		task.OwnerEmail = &email
	}

	if assignee := strings.TrimSpace(in.AssigneeEmail); assignee != "" {
		if err := s.checkAssignee(ctx, assignee); err != nil {
			return nil, err
		}
		task.AssigneeEmail = &assignee
	}

	if due := strings.TrimSpace(in.DueDate); due != "" {
		dueDate, err := parseDueDate(due, s.now(), "Cannot create task with a deadline in the past")
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}

	saved, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", saved.ID.String()).Str("owner", owner.Email).Msg("task created")
	s.broadcaster.Publish(notify.Event{Type: notify.EventTaskCreated, Payload: saved})
	return saved, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	var title, details, status string
	if in.Title != nil {
		if title = strings.TrimSpace(*in.Title); title == "" {
			return nil, invalid("Title cannot be empty")
		}
	}
	if in.Details != nil {
		if details = strings.TrimSpace(*in.Details); details == "" {
			return nil, invalid("Details cannot be empty")
		}
	}
	if in.Status != nil {
		if status = strings.TrimSpace(*in.Status); !models.IsValidTaskStatus(status) {
			return nil, invalid("Invalid status. Must be 'todo', 'in-progress', or 'done'")
		}
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = title
	}
	if in.Details != nil {
		task.Details = details
	}
	if in.Status != nil {
		task.Status = status
	}
	if in.Priority != nil {
		if priority := strings.TrimSpace(*in.Priority); priority != "" {
			task.Priority = priority
		}
	}

	if in.AssigneeEmail != nil {
		assignee := strings.TrimSpace(*in.AssigneeEmail)
		if assignee == "" {
			task.AssigneeEmail = nil
		} else {
			if err := s.checkAssignee(ctx, assignee); err != nil {
				return nil, err
			}
			task.AssigneeEmail = &assignee
		}
	}

	if in.DueDate != nil {
		due := strings.TrimSpace(*in.DueDate)
		if due == "" {
			task.DueDate = nil
		} else {
			dueDate, err := parseDueDate(due, s.now(), "Cannot set deadline to a past date")
			if err != nil {
				return nil, err
			}
			task.DueDate = dueDate
		}
	}

	saved, err := s.save(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", saved.ID.String()).Msg("task updated")
	s.broadcaster.Publish(notify.Event{Type: notify.EventTaskUpdated, Payload: saved})
	return saved, nil
}

// Assign sets the assignee, or clears it when assigneeEmail is blank.
func (s *TaskServiceImpl) Assign(ctx context.Context, id uuid.UUID, assigneeEmail string) (*models.Task, error) {
	assignee := strings.TrimSpace(assigneeEmail)

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if assignee == "" {
		task.AssigneeEmail = nil
	} else {
		if err := s.checkAssignee(ctx, assignee); err != nil {
			return nil, err
		}
		task.AssigneeEmail = &assignee
	}

	saved, err := s.save(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", saved.ID.String()).Str("assignee", assignee).Msg("task assigned")
	s.broadcaster.Publish(notify.Event{Type: notify.EventTaskUpdated, Payload: saved})
	return saved, nil
}

// UpdateStatus moves a task to status. Developers may only move tasks
// assigned to them; admins may move any task.
func (s *TaskServiceImpl) UpdateStatus(ctx context.Context, actor models.Principal, id uuid.UUID, status string) (*models.Task, error) {
	status = strings.TrimSpace(status)
	if !models.IsValidTaskStatus(status) {
		return nil, invalid("Invalid status. Must be 'todo', 'in-progress', or 'done'")
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleDeveloper && !task.IsAssignedTo(actor.Email) {
		if task.AssigneeEmail == nil || *task.AssigneeEmail == "" {
			return nil, forbidden("This task is not assigned to anyone")
		}
		return nil, forbidden("You can only update tasks assigned to you. This task is assigned to %s", *task.AssigneeEmail)
	}

	task.Status = status
	saved, err := s.save(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", saved.ID.String()).Str("status", status).Str("actor", actor.Email).Msg("task status changed")
	s.broadcaster.Publish(notify.Event{Type: notify.EventTaskUpdated, Payload: saved})
	return saved, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.tasks.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if removed == nil {
		return notFound("Task not found")
	}

	s.logger.Info().Str("task_id", id.String()).Msg("task deleted")
	s.broadcaster.Publish(notify.Event{Type: notify.EventTaskDeleted, Payload: notify.TaskDeletedPayload{ID: removed.ID}})
	return nil
}
