// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate input,
// enforce the authentication and ownership rules, and orchestrate the
// repositories; repositories talk to the database. Services accept
// primitives and return domain errors — they have zero knowledge of HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskbox/internal/apperror"
	"github.com/sakif/taskbox/internal/auth"
	"github.com/sakif/taskbox/internal/metrics"
	"github.com/sakif/taskbox/internal/model"
	"github.com/sakif/taskbox/internal/repository"
)

const (
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

// emailPattern is deliberately loose: something, an @, something, a dot,
// something. Real validation of an address is delivering mail to it.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService orchestrates the authentication gate: signup, login, token
// issuing and revocation, and Google external login.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	metrics   metrics.Recorder
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	rec metrics.Recorder,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   rec,
		logger:    logger,
	}
}

// Session is the outcome of a successful login: the identity plus the
// signed token the handler turns into a cookie.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a local identity.
//
// Uniqueness is checked per field so the caller learns which one collided;
// this matches the signup UX and leaks nothing an attacker can't learn by
// attempting a signup anyway. The password is hashed exactly once, here,
// immediately before persistence.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email", "email already registered")
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("username", "username already taken")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("registering %q: %w", username, err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Origin:       model.OriginLocal,
	}

	// The repository's unique indexes close the race between the checks
	// above and this insert; a loser still gets a Conflict.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("registering %q: %w", username, err)
	}

	s.metrics.RecordSignup()
	s.logger.Info("identity registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login runs the credential protocol: look up by email, verify the
// password, issue a token.
//
// Every failure — unknown email, Google-origin identity, wrong password —
// returns the same InvalidCredentials error. The response must never
// reveal which step failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.metrics.RecordLoginFailure()
		return nil, apperror.InvalidCredentials()
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordLoginFailure()
		return nil, apperror.InvalidCredentials()
	}

	// A Google identity has no usable password; the hasher is never even
	// consulted for it.
	if !user.IsLocal() || user.PasswordHash == "" {
		s.metrics.RecordLoginFailure()
		return nil, apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.metrics.RecordLoginFailure()
		return nil, apperror.InvalidCredentials()
	}

	return s.issueSession(user)
}

// LoginGoogle completes an external login: find the identity by Google
// subject ID, creating it on first contact, then issue a token.
func (s *AuthService) LoginGoogle(ctx context.Context, gUser *auth.GoogleUser) (*Session, error) {
	user, err := s.users.GetUserByGoogleID(ctx, gUser.Sub)
	if err == nil {
		return s.issueSession(user)
	}

	// First login with this Google account. Email uniqueness is global
	// across origins: if the address already belongs to a local identity,
	// refuse rather than silently binding two accounts together.
	email := strings.ToLower(strings.TrimSpace(gUser.Email))
	if email == "" || !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "Google account has no usable email")
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email", "email already registered")
	}

	user = &model.User{
		Username: s.availableUsername(ctx, gUser.Name),
		Email:    email,
		Origin:   model.OriginGoogle,
		GoogleID: gUser.Sub,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("registering Google identity: %w", err)
	}

	s.metrics.RecordSignup()
	s.logger.Info("google identity registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueSession(user)
}

// availableUsername derives a free username from a display name, falling
// back to a generated suffix when the obvious choice is taken.
func (s *AuthService) availableUsername(ctx context.Context, displayName string) string {
	base := strings.Join(strings.Fields(strings.ToLower(displayName)), "-")
	if base == "" {
		base = "user"
	}
	if len(base) > MaxUsernameLength-8 {
		base = base[:MaxUsernameLength-8]
	}

	if _, err := s.users.GetUserByUsername(ctx, base); err != nil {
		return base
	}
	return base + "-" + xid.New().String()[:7]
}

// Logout revokes the presented token so it fails validation for the rest
// of its lifetime. Garbage input is ignored: clearing the cookie is the
// handler's job either way.
func (s *AuthService) Logout(token string) {
	s.tokens.Revoke(token)
}

func (s *AuthService) issueSession(user *model.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging in %q: %w", user.Username, err)
	}

	s.metrics.RecordLoginSuccess()
	s.logger.Info("identity logged in",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
		slog.String("origin", string(user.Origin)),
	)

	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
