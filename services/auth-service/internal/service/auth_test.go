package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-backend/services/auth-service/internal/repo"
	"ecommerce-backend/shared/pkg/auth"
	"ecommerce-backend/shared/pkg/models"
)

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemRevoker() *memRevoker { return &memRevoker{revoked: make(map[string]bool)} }

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

type stubPublisher struct {
	keys []string
}

func (s *stubPublisher) PublishJSON(_ context.Context, rk string, _ any, _ amqp.Table) error {
	s.keys = append(s.keys, rk)
	return nil
}

func newTestAuth() (*Auth, *memRevoker, *stubPublisher) {
	revoker := newMemRevoker()
	events := &stubPublisher{}
	svc := &Auth{
		Log:         zerolog.Nop(),
		Users:       repo.NewMemory(),
		JWT:         auth.NewService("test-secret", time.Hour),
		Revocations: revoker,
		Events:      events,
	}
	return svc, revoker, events
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:     "jane@example.com",
		Password:  "s3cret-pass",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func TestAuth_Register(t *testing.T) {
	svc, _, events := newTestAuth()

	user, token, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "user", user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash, "hash stored, never the raw password")

	claims, err := svc.JWT.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	assert.Equal(t, []string{models.EventUserCreated}, events.keys)
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuth()

	_, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, repo.ErrDuplicateEmail)
}

func TestAuth_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuth()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "123" }, "password"},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, "firstName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput()
			tt.mutate(&in)
			_, _, err := svc.Register(context.Background(), in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAuth_LoginAndLogout(t *testing.T) {
	svc, revoker, _ := newTestAuth()
	_, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)

	revoked, err := revoker.IsRevoked(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(context.Background(), token))
	revoked, err = revoker.IsRevoked(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuth()
	_, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuth()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_AddressBook(t *testing.T) {
	svc, _, _ := newTestAuth()
	user, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	addr, err := svc.AddAddress(context.Background(), user.ID, AddressInput{
		Street: "123 Main", City: "Metropolis", State: "NY", Pincode: "12345", Country: "USA",
	})
	require.NoError(t, err)
	assert.Equal(t, "12345", addr.Zip, "pincode stored as zip")

	list, err := svc.ListAddresses(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteAddress(context.Background(), user.ID, addr.ID))
	assert.ErrorIs(t, svc.DeleteAddress(context.Background(), user.ID, addr.ID), repo.ErrAddressNotFound)
}

func TestAuth_AddAddress_Validation(t *testing.T) {
	svc, _, _ := newTestAuth()

	_, err := svc.AddAddress(context.Background(), "user-1", AddressInput{
		Street: "s", City: "c", State: "st", Pincode: "12", Country: "ct",
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "pincode", verr.Field)
}
