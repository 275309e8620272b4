package auth

import (
	"context"
	"net/http"
	"strings"
)

const CookieName = "token"

// Identity is the verified caller injected into the request context.
// Handlers trust it and never re-verify credentials themselves.
type Identity struct {
	ID    string
	Email string
	Role  string
}

type ctxKey struct{}

// Revocations reports whether a token has been revoked (logout blacklist).
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// ExtractToken reads the access token from the session cookie or, for API
// clients, from the Authorization header.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Middleware verifies the request token and injects the caller Identity.
// revocations may be nil for services that do not consult the blacklist.
func Middleware(svc *Service, revocations Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := svc.Validate(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), token)
				if err != nil {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				if revoked {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
			}
			id := Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
