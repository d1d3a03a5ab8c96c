package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskbox/internal/apperror"
	"github.com/sakif/taskbox/internal/model"
	"github.com/sakif/taskbox/internal/repository"
)

// Compile-time check that *DB implements repository.TaskRepository.
var _ repository.TaskRepository = (*DB)(nil)

// CreateTask inserts a new task. The caller (service layer) has already forced
// OwnerID to the authenticated identity; this method just persists it.
func (db *DB) CreateTask(ctx context.Context, task *model.Task) error {
	task.ID = xid.New().String()

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// ListByOwner returns every task owned by ownerID, newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, status, owner_id, created_at, updated_at
		 FROM tasks
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	// Initialise to an empty slice, not nil — a user with no tasks gets
	// [] in the JSON response rather than null.
	tasks := []model.Task{}
	for rows.Next() {
		var (
			t      model.Task
			status string
		)
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&status,
			&t.OwnerID,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		t.Status = model.Status(status)
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating task rows: %w", err)
	}

	return tasks, nil
}

// GetByID retrieves a single task matched by (id, owner_id) jointly.
//
// A task that exists under a different owner produces the same NotFound as
// a task that doesn't exist: the WHERE clause simply finds no row. Nothing
// upstream can tell the two cases apart, which is the point.
func (db *DB) GetByID(ctx context.Context, id, ownerID string) (*model.Task, error) {
	var (
		t      model.Task
		status string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, description, status, owner_id, created_at, updated_at
		 FROM tasks WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&t.OwnerID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task")
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}

	t.Status = model.Status(status)
	return &t, nil
}

// Update saves a modified task. The WHERE clause repeats the ownership
// filter even though the service fetched the task through GetByID — the
// row-level check costs nothing and keeps the invariant local to every
// statement that touches the table.
func (db *DB) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		task.Title,
		task.Description,
		string(task.Status),
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of task %s: %w", task.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("task")
	}

	return nil
}

// Delete removes a task matched by (id, owner_id) jointly.
func (db *DB) Delete(ctx context.Context, id, ownerID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of task %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("task")
	}

	return nil
}
