package model

import "time"

// Status is the two-state lifecycle of a task.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// ValidStatus reports whether s is one of the recognised task states.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusDone
}

// Task represents a single to-do card.
//
// OwnerID references the User that created the task and is immutable after
// creation. Every repository operation on a task filters by (ID, OwnerID)
// jointly — a task ID alone never grants access.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
