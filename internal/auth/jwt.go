// Package auth provides token issuing/verification, password hashing, and
// the authentication middleware for the taskbox API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client signs up (POST /identities) or logs in (POST /sessions)
//  2. On successful login, the server issues a JWT and stores it in an
//     HttpOnly cookie named "token"
//  3. On subsequent requests, middleware reads the cookie, validates the
//     JWT, and sets the identity in the request context
//  4. Logout (DELETE /sessions) revokes the token and clears the cookie
//
// WHY JWT?
// JWT is stateless — the server doesn't store session data. Everything
// needed (identity ID, expiry) is inside the signed token, and the HMAC
// signature ensures nobody can tamper with it without the secret key. The
// one piece of server-side state we do keep is a small revocation list so
// logout actually invalidates the presented token (see denylist.go).
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "taskbox"

// Typed verification failures. The middleware maps all of them to a 401,
// but logs and tests distinguish them.
var (
	// ErrTokenMalformed: not a JWT, bad signature, wrong algorithm, wrong
	// issuer, or a missing subject.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrTokenExpired: well-formed and correctly signed, but past its
	// expiry instant.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenRevoked: well-formed, signed, unexpired — but revoked by an
	// earlier logout.
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// TokenService issues and validates signed session tokens.
//
// It holds the HMAC secret and the validity window, both injected from the
// startup config. The same secret signs and verifies; absence of the secret
// is caught at config load, long before the first request.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked *Denylist
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (e.g. JWT_SECRET=$(openssl rand -hex 32)).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: NewDenylist(),
	}, nil
}

// claims is the JWT payload. jwt.RegisteredClaims covers everything we
// need: "sub" carries the identity ID, "jti" a unique token ID used by the
// revocation list, "exp" the expiry instant.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a session token for the given identity.
// Returns the signed token and its expiry instant (the cookie MaxAge is
// derived from the latter so cookie and token expire together).
func (s *TokenService) Issue(identityID string) (string, time.Time, error) {
	return s.issueWithDuration(identityID, s.ttl)
}

// IssueWithDuration creates a token with a custom validity window.
// Used by tests to mint already-expired tokens.
func (s *TokenService) IssueWithDuration(identityID string, d time.Duration) (string, time.Time, error) {
	return s.issueWithDuration(identityID, d)
}

func (s *TokenService) issueWithDuration(identityID string, d time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(d)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies a token string and returns the identity ID
// from the "sub" claim.
//
// Checks, in order: signature and algorithm (HS256 only — passing
// jwt.WithValidMethods prevents algorithm-confusion attacks), issuer,
// expiry, and finally the revocation list. Failures come back as one of
// the typed errors above.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return "", err
	}

	if s.revoked.Contains(c.ID) {
		return "", ErrTokenRevoked
	}

	return c.Subject, nil
}

// Revoke adds the token to the denylist so it fails validation for the
// remainder of its natural lifetime. Malformed or already-expired tokens
// are ignored — there is nothing left to revoke.
func (s *TokenService) Revoke(tokenStr string) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return
	}
	s.revoked.Add(c.ID, c.ExpiresAt.Time)
}

func (s *TokenService) parse(tokenStr string) (*claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrTokenMalformed
	}

	return c, nil
}
