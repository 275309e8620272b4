package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecommerce-backend/services/order-service/internal/domain"
)

// Memory is an in-process Store with the same state-machine semantics
// as OrdersPG. It backs the service and handler tests.
type Memory struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	processed map[string]bool
	seq       int
}

func NewMemory() *Memory {
	return &Memory{
		orders:    make(map[string]*domain.Order),
		processed: make(map[string]bool),
	}
}

func (m *Memory) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.ID = uuid.NewString()
	o.Status = domain.StatusPending
	// Monotonic timestamps keep list ordering stable within one test run.
	m.seq++
	now := time.Now().Add(time.Duration(m.seq) * time.Microsecond)
	o.CreatedAt = now
	o.UpdatedAt = now

	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

// Seed inserts an order verbatim, for tests that need a record in a
// specific state.
func (m *Memory) Seed(o domain.Order) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		m.seq++
		o.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Microsecond)
	}
	m.orders[o.ID] = &o
	return o.ID
}

func (m *Memory) FindByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *Memory) ListByUser(_ context.Context, userID string, page, limit int) ([]domain.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			all = append(all, *o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Order{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *Memory) Cancel(_ context.Context, id string) error {
	return m.transition(id, domain.StatusCancelled)
}

func (m *Memory) Confirm(_ context.Context, id string) error {
	return m.transition(id, domain.StatusConfirmed)
}

func (m *Memory) transition(id string, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != domain.StatusPending {
		return domain.ErrConflictStatus
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) UpdateAddress(_ context.Context, id string, addr domain.ShippingAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != domain.StatusPending {
		return domain.ErrConflictStatus
	}
	o.ShippingAddress = addr
	o.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) TryMarkProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed[eventID] {
		return false, nil
	}
	m.processed[eventID] = true
	return true, nil
}
