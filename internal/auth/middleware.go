package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/taskbox/internal/metrics"
	"github.com/sakif/taskbox/internal/model"
)

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "token"

// contextKey is an unexported type for context keys in this package.
// Using a package-private type means only this package can read or write
// the identity value — a plain string key could be shadowed by any package
// that happens to use the same literal.
type contextKey string

const identityKey contextKey = "identity"

// IdentityLookup resolves a token's embedded identity ID to a full record.
// Satisfied by repository.UserRepository; declared here so the middleware
// depends only on the one method it calls.
type IdentityLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the "token" cookie, validates it, resolves the
// identity, and stores the full record in the request context. Any failure
// — missing cookie, malformed/expired/revoked token, or an identity that
// was deleted after the token was issued — produces the same 401 response;
// the distinction only shows up in the debug log.
func RequireAuth(tokens *TokenService, users IdentityLookup, rec metrics.Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolveIdentity(r, tokens, users)
			if err != nil {
				rec.RecordAuthRejection()
				logger.Debug("request rejected",
					slog.String("path", r.URL.Path),
					slog.String("reason", err.Error()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity set by
// RequireAuth. Returns (nil, false) on an unauthenticated request.
func IdentityFromContext(ctx context.Context) (*model.User, bool) {
	identity, ok := ctx.Value(identityKey).(*model.User)
	return identity, ok && identity != nil
}

// ContextWithIdentity attaches an identity the way RequireAuth does.
// Handler tests use it to exercise authenticated routes directly.
func ContextWithIdentity(ctx context.Context, identity *model.User) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// resolveIdentity runs the request-authentication protocol: cookie →
// token validation → identity lookup.
func resolveIdentity(r *http.Request, tokens *TokenService, users IdentityLookup) (*model.User, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, err
	}

	identityID, err := tokens.Validate(cookie.Value)
	if err != nil {
		return nil, err
	}

	identity, err := users.GetUserByID(r.Context(), identityID)
	if err != nil {
		return nil, err
	}

	return identity, nil
}
