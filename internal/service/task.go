package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/taskbox/internal/apperror"
	"github.com/sakif/taskbox/internal/model"
	"github.com/sakif/taskbox/internal/repository"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
)

// TaskService handles business logic for tasks.
//
// Every method takes the acting identity's ID as its first data argument
// and passes it through to the repository's (id, ownerID) filters. The
// owner is never taken from request bodies: whatever a client claims, a
// task belongs to whoever the authentication gate resolved.
type TaskService struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

func NewTaskService(repo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new task owned by ownerID.
// An empty status defaults to pending.
func (s *TaskService) Create(ctx context.Context, ownerID, title, description string, status model.Status) (*model.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if status == "" {
		status = model.StatusPending
	}
	if !model.ValidStatus(status) {
		return nil, apperror.ValidationFailed("status", `status must be "pending" or "done"`)
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		Status:      status,
		OwnerID:     ownerID,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.String("id", task.ID),
		slog.String("ownerID", ownerID),
	)

	return task, nil
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list tasks",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Get retrieves one of the owner's tasks by ID.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}
	return s.repo.GetByID(ctx, id, ownerID)
}

// Update applies a partial update to one of the owner's tasks. Empty
// fields are left unchanged; a non-empty status must be a valid state.
//
// Fetch-then-update keeps the NotFound behavior consistent with Get: a
// task owned by someone else is invisible here before anything is written.
func (s *TaskService) Update(ctx context.Context, ownerID, id, title, description string, status model.Status) (*model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}

	task, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		task.Title = title
	}
	if description = strings.TrimSpace(description); description != "" {
		if len(description) > MaxDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
		}
		task.Description = description
	}
	if status != "" {
		if !model.ValidStatus(status) {
			return nil, apperror.ValidationFailed("status", `status must be "pending" or "done"`)
		}
		task.Status = status
	}

	if err := s.repo.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			slog.String("id", id),
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating task: %w", err)
	}

	s.logger.Info("task updated",
		slog.String("id", task.ID),
		slog.String("status", string(task.Status)),
	)

	return task, nil
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "task ID is required")
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("task deleted",
		slog.String("id", id),
		slog.String("ownerID", ownerID),
	)
	return nil
}
