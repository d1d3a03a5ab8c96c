// Package model defines the data structures used throughout the application.
package model

import "time"

// Origin says how an identity authenticates.
//
// Local identities registered with a username/email/password and log in by
// verifying the password against the stored bcrypt hash. Google identities
// were created through the OAuth callback: they carry the Google subject ID
// and have no usable password at all.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginGoogle Origin = "google"
)

// User represents a registered identity.
//
// WHY PasswordHash HAS json:"-":
// The struct tag `json:"-"` tells encoding/json to NEVER serialize this
// field. A password hash must not leave the server on any code path — not
// in the signup response, not in /identities/me, not in an error body.
// Excluding it at the type level is safer than remembering to strip it in
// every handler.
//
// GoogleID is empty for local users. The database enforces uniqueness only
// for non-empty values, mirroring a sparse unique key in a document store:
// many absent values never collide with each other.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Origin       Origin    `json:"origin"`
	GoogleID     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsLocal reports whether the identity authenticates by password.
func (u *User) IsLocal() bool {
	return u.Origin == OriginLocal
}

// Projection is the outward-facing shape of a User — the subset of fields
// the API returns from signup, login, and /identities/me.
type Projection struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Origin    Origin    `json:"origin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project builds the outward projection of u.
func (u *User) Project() Projection {
	return Projection{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Origin:    u.Origin,
		CreatedAt: u.CreatedAt,
	}
}
