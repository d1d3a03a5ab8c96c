package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/sakif/taskbox/internal/apperror"
	"github.com/sakif/taskbox/internal/model"
)

// fakeTaskRepo is an in-memory TaskRepository enforcing the same
// (id, ownerID) joint filtering the real store does.
type fakeTaskRepo struct {
	tasks  map[string]*model.Task
	nextID int
	// set to simulate a database failure
	failWith error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*model.Task)}
}

func (f *fakeTaskRepo) CreateTask(ctx context.Context, task *model.Task) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	task.ID = fmt.Sprintf("task-%d", f.nextID)
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id, ownerID string) (*model.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, apperror.NotFound("task")
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *model.Task) error {
	if f.failWith != nil {
		return f.failWith
	}
	existing, ok := f.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return apperror.NotFound("task")
	}
	task.UpdatedAt = time.Now()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return apperror.NotFound("task")
	}
	delete(f.tasks, id)
	return nil
}

func newTestTaskService(repo *fakeTaskRepo) *TaskService {
	return NewTaskService(repo, testLogger())
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestTaskCreate_OwnerIsForced(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	task, err := svc.Create(context.Background(), "alice-id", "t1", "d1", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.OwnerID != "alice-id" {
		t.Errorf("OwnerID = %q, want alice-id", task.OwnerID)
	}
	if task.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending default", task.Status)
	}
}

func TestTaskCreate_Validation(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	tests := []struct {
		name        string
		title       string
		description string
		status      model.Status
	}{
		{"missing title", "", "d", ""},
		{"whitespace title", "   ", "d", ""},
		{"missing description", "t", "", ""},
		{"bad status", "t", "d", "archived"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice-id", tt.title, tt.description, tt.status)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}
		})
	}

	if len(repo.tasks) != 0 {
		t.Errorf("%d tasks stored by invalid creates, want 0", len(repo.tasks))
	}
}

func TestTaskCreate_ExplicitDoneStatus(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	task, err := svc.Create(context.Background(), "alice-id", "t1", "d1", model.StatusDone)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Status != model.StatusDone {
		t.Errorf("Status = %q, want done", task.Status)
	}
}

// =========================================================================
// OWNERSHIP SCOPING TESTS
// =========================================================================

func TestTaskList_NeverCrossesOwners(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	svc.Create(context.Background(), "alice-id", "a1", "d", "")
	svc.Create(context.Background(), "alice-id", "a2", "d", "")
	svc.Create(context.Background(), "bob-id", "b1", "d", "")

	aliceTasks, err := svc.List(context.Background(), "alice-id")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(aliceTasks) != 2 {
		t.Fatalf("List(alice) returned %d tasks, want 2", len(aliceTasks))
	}
	for _, task := range aliceTasks {
		if task.OwnerID != "alice-id" {
			t.Errorf("List(alice) leaked task owned by %q", task.OwnerID)
		}
	}
}

func TestTaskGetUpdateDelete_NotOwnedLooksLikeNotFound(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	task, _ := svc.Create(context.Background(), "alice-id", "t1", "d1", "")

	if _, err := svc.Get(context.Background(), "bob-id", task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() by non-owner error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(context.Background(), "bob-id", task.ID, "hijacked", "", ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "bob-id", task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotFound", err)
	}

	// Owner still sees the unmodified task.
	got, err := svc.Get(context.Background(), "alice-id", task.ID)
	if err != nil {
		t.Fatalf("Get() by owner error = %v", err)
	}
	if got.Title != "t1" {
		t.Errorf("Title = %q after non-owner update attempt", got.Title)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestTaskUpdate_PartialFields(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	task, _ := svc.Create(context.Background(), "alice-id", "t1", "d1", "")

	// Only flip the status; title and description stay.
	updated, err := svc.Update(context.Background(), "alice-id", task.ID, "", "", model.StatusDone)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Status != model.StatusDone {
		t.Errorf("Status = %q, want done", updated.Status)
	}
	if updated.Title != "t1" || updated.Description != "d1" {
		t.Errorf("Update() clobbered untouched fields: %+v", updated)
	}
}

func TestTaskUpdate_RejectsBadStatus(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	task, _ := svc.Create(context.Background(), "alice-id", "t1", "d1", "")

	_, err := svc.Update(context.Background(), "alice-id", task.ID, "", "", "cancelled")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestTaskDelete_ThenGetNotFound(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(repo)

	task, _ := svc.Create(context.Background(), "alice-id", "t1", "d1", "")

	if err := svc.Delete(context.Background(), "alice-id", task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), "alice-id", task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestTaskService_RepoFailureSurfacesAsError(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.failWith = errors.New("db gone")
	svc := newTestTaskService(repo)

	if _, err := svc.Create(context.Background(), "alice-id", "t", "d", ""); err == nil {
		t.Error("Create() should surface repository failure")
	}
	if _, err := svc.List(context.Background(), "alice-id"); err == nil {
		t.Error("List() should surface repository failure")
	}
}
