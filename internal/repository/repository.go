// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/taskbox/internal/model"
)

// UserRepository persists identity records.
//
// The Get* lookups return apperror.ErrNotFound when no matching identity
// exists; Create returns apperror.ErrConflict when a unique field
// (username, email, google_id) collides.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
}

// TaskRepository persists owner-scoped tasks.
//
// Every operation that targets an existing task takes the owner ID and
// matches (id, owner_id) jointly. A task that exists but belongs to a
// different owner is reported as apperror.ErrNotFound, identical to a task
// that doesn't exist at all.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id, ownerID string) error
}
