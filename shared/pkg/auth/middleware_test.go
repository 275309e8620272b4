package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRevocations struct{ revoked map[string]bool }

func (s *stubRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	return s.revoked[token], nil
}

func protectedHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUser, id.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_BearerToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	token, _, err := svc.Generate("user-1", "u@example.com", "user")
	require.NoError(t, err)

	h := Middleware(svc, nil)(protectedHandler(t, "user-1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_Cookie(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	token, _, err := svc.Generate("user-2", "u2@example.com", "user")
	require.NoError(t, err)

	h := Middleware(svc, nil)(protectedHandler(t, "user-2"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_MissingToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	h := Middleware(svc, nil)(protectedHandler(t, ""))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RevokedToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	token, _, err := svc.Generate("user-3", "u3@example.com", "user")
	require.NoError(t, err)

	h := Middleware(svc, &stubRevocations{revoked: map[string]bool{token: true}})(protectedHandler(t, "user-3"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
