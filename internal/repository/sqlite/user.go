package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskbox/internal/apperror"
	"github.com/sakif/taskbox/internal/model"
	"github.com/sakif/taskbox/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, origin, google_id, created_at`

// CreateUser inserts a new identity, generating its ID and creation timestamp.
//
// The service layer pre-checks username/email uniqueness to produce
// per-field errors, but two concurrent signups can still race past those
// checks; the unique indexes are the real guarantee, and a constraint
// failure here is translated into the same Conflict category.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, origin, google_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Origin),
		user.GoogleID,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uniqueConflict(err)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// uniqueConflict maps a constraint failure to a per-field Conflict error.
func uniqueConflict(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return apperror.Conflict("email", "email already registered")
	case strings.Contains(msg, "users.username"):
		return apperror.Conflict("username", "username already taken")
	case strings.Contains(msg, "users.google_id"):
		return apperror.Conflict("googleId", "Google account already linked")
	default:
		return apperror.Conflict("", "identity already exists")
	}
}

// GetUserByID retrieves an identity by its internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves an identity by email. Email is the login
// identifier, so this is the first step of the login protocol.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUserWhere(ctx, "email = ?", email)
}

// GetUserByUsername retrieves an identity by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUserWhere(ctx, "username = ?", username)
}

// GetUserByGoogleID retrieves an identity by its Google subject ID.
func (db *DB) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if googleID == "" {
		// Empty google_id marks local identities; never match on it.
		return nil, apperror.NotFound("identity")
	}
	return db.getUserWhere(ctx, "google_id = ?", googleID)
}

func (db *DB) getUserWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u      model.User
		origin string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&origin,
		&u.GoogleID,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("identity")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.Origin = model.Origin(origin)
	return &u, nil
}
