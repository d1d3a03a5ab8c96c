package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("task"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("email", "email already registered"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated(),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("task"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrUnauthenticated",
			err:       InvalidCredentials(),
			target:    ErrUnauthenticated,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

// Wrapping an AppError with fmt.Errorf("%w") must preserve the sentinel —
// handlers rely on this when service errors arrive with extra context.
func TestErrorsIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("logging in: %w", InvalidCredentials())
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Error("wrapped AppError lost its sentinel")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed to extract *AppError from wrapped chain")
	}
	if appErr.Message != "invalid email or password" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestNotFound_DoesNotLeakID(t *testing.T) {
	// The message must not echo the requested ID back: a uniform body for
	// "absent" and "not owned" is part of the ownership model.
	err := NotFound("task")
	if err.Error() != "task not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "task not found")
	}
}
