package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process UsersStore backing the auth tests.
type Memory struct {
	mu        sync.Mutex
	users     map[string]*User
	addresses map[string]*Address
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]*User),
		addresses: make(map[string]*Address),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *Memory) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) ListAddresses(_ context.Context, userID string) ([]Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Address
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *Memory) AddAddress(_ context.Context, a *Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	m.addresses[a.ID] = &cp
	return nil
}

func (m *Memory) DeleteAddress(_ context.Context, userID, addressID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.addresses[addressID]
	if !ok || a.UserID != userID {
		return ErrAddressNotFound
	}
	delete(m.addresses, addressID)
	return nil
}
