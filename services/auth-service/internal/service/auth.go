package service

import (
	"context"
	"errors"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ecommerce-backend/services/auth-service/internal/repo"
	"ecommerce-backend/shared/pkg/auth"
	"ecommerce-backend/shared/pkg/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError reports a malformed registration or address field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any, headers amqp.Table) error
}

const minPasswordLen = 6

type Auth struct {
	Log         zerolog.Logger
	Users       repo.UsersStore
	JWT         *auth.Service
	Revocations TokenRevoker
	Events      EventPublisher
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (in RegisterInput) validate() error {
	switch {
	case !strings.Contains(in.Email, "@"):
		return &ValidationError{Field: "email", Reason: "must be a valid email"}
	case len(in.Password) < minPasswordLen:
		return &ValidationError{Field: "password", Reason: "too short"}
	case in.FirstName == "":
		return &ValidationError{Field: "firstName", Reason: "required"}
	}
	return nil
}

// Register creates the user, issues a token and announces the new user
// on the event bus (best-effort, the registration itself already
// succeeded).
func (s *Auth) Register(ctx context.Context, in RegisterInput) (*repo.User, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &repo.User{
		Email:        strings.ToLower(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         "user",
		PasswordHash: string(hash),
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, _, err := s.JWT.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	if s.Events != nil {
		evt := models.NewUserCreatedEvent(models.UserCreatedPayload{
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
		if err := s.Events.PublishJSON(ctx, evt.Type, evt, nil); err != nil {
			s.Log.Error().Err(err).Str("user_id", user.ID).Msg("publish user.created failed")
		}
	}

	s.Log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

func (s *Auth) Login(ctx context.Context, email, password string) (*repo.User, string, error) {
	user, err := s.Users.FindByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.JWT.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout blacklists the token for its remaining lifetime. An already
// invalid token is a no-op success.
func (s *Auth) Logout(ctx context.Context, token string) error {
	claims, err := s.JWT.Validate(token)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.Revocations.Revoke(ctx, token, ttl)
}

func (s *Auth) CurrentUser(ctx context.Context, userID string) (*repo.User, error) {
	return s.Users.FindByID(ctx, userID)
}

type AddressInput struct {
	Street  string
	City    string
	State   string
	Pincode string
	Country string
}

func (in AddressInput) validate() error {
	switch {
	case in.Street == "":
		return &ValidationError{Field: "street", Reason: "required"}
	case in.City == "":
		return &ValidationError{Field: "city", Reason: "required"}
	case in.State == "":
		return &ValidationError{Field: "state", Reason: "required"}
	case in.Country == "":
		return &ValidationError{Field: "country", Reason: "required"}
	case len(in.Pincode) < 4:
		return &ValidationError{Field: "pincode", Reason: "too short"}
	}
	return nil
}

func (s *Auth) ListAddresses(ctx context.Context, userID string) ([]repo.Address, error) {
	return s.Users.ListAddresses(ctx, userID)
}

func (s *Auth) AddAddress(ctx context.Context, userID string, in AddressInput) (*repo.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	addr := &repo.Address{
		UserID:  userID,
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		Zip:     in.Pincode,
		Country: in.Country,
	}
	if err := s.Users.AddAddress(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *Auth) DeleteAddress(ctx context.Context, userID, addressID string) error {
	return s.Users.DeleteAddress(ctx, userID, addressID)
}
