package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpx "ecommerce-backend/services/auth-service/internal/http"
	"ecommerce-backend/services/auth-service/internal/repo"
	"ecommerce-backend/services/auth-service/internal/service"
	"ecommerce-backend/shared/pkg/auth"
)

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memRevoker) Revoke(_ context.Context, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = true
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[token], nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	jwtSvc := auth.NewService("test-secret", time.Hour)
	revoker := &memRevoker{revoked: make(map[string]bool)}
	h := &AuthHandler{
		Log: zerolog.Nop(),
		Svc: &service.Auth{
			Log:         zerolog.Nop(),
			Users:       repo.NewMemory(),
			JWT:         jwtSvc,
			Revocations: revoker,
		},
		CookieTTL: time.Hour,
	}
	return httpx.NewRouter(&httpx.Handlers{
		Health:        Health,
		Register:      h.Register,
		Login:         h.Login,
		Logout:        h.Logout,
		Me:            h.Me,
		ListAddresses: h.ListAddresses,
		AddAddress:    h.AddAddress,
		DeleteAddress: h.DeleteAddress,
		Auth:          auth.Middleware(jwtSvc, revoker),
	})
}

const registerBodyJSON = `{"email":"jane@example.com","password":"s3cret-pass","fullName":{"firstName":"Jane","lastName":"Doe"}}`

func doJSON(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(router, http.MethodPost, "/api/auth/register", registerBodyJSON, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestRegister_SetsSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/auth/register", registerBodyJSON, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	registerAndToken(t, router)

	rec := doJSON(router, http.MethodPost, "/api/auth/register", registerBodyJSON, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_InvalidPayload(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/auth/register",
		`{"email":"nope","password":"123","fullName":{"firstName":""}}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_ThenMe(t *testing.T) {
	router := newTestRouter(t)
	registerAndToken(t, router)

	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"jane@example.com","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	rec = doJSON(router, http.MethodGet, "/api/auth/me", "", body.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane@example.com")
}

func TestLogin_WrongPassword(t *testing.T) {
	router := newTestRouter(t)
	registerAndToken(t, router)

	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"jane@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndToken(t, router)

	rec := doJSON(router, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/auth/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// revoked token no longer opens the protected surface
	rec = doJSON(router, http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddressBook_Flow(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndToken(t, router)

	rec := doJSON(router, http.MethodPost, "/api/auth/users/me/addresses",
		`{"street":"123 Main","city":"Metropolis","state":"NY","pincode":"12345","country":"USA"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Address struct {
			ID  string `json:"id"`
			Zip string `json:"zip"`
		} `json:"address"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "12345", created.Address.Zip)

	rec = doJSON(router, http.MethodGet, "/api/auth/users/me/addresses", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.Address.ID)

	rec = doJSON(router, http.MethodDelete, "/api/auth/users/me/addresses/"+created.Address.ID, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/api/auth/users/me/addresses/"+created.Address.ID, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddresses_RequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/auth/users/me/addresses", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
