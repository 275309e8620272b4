package repo

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Address is a saved shipping address in the user's address book. The
// wire field pincode maps to zip, same as on orders.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

type UsersStore interface {
	CreateUser(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)

	ListAddresses(ctx context.Context, userID string) ([]Address, error)
	AddAddress(ctx context.Context, a *Address) error
	DeleteAddress(ctx context.Context, userID, addressID string) error
}
