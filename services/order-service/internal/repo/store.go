package repo

import (
	"context"

	"ecommerce-backend/services/order-service/internal/domain"
)

// Store owns order persistence and the authoritative status state
// machine. It performs no authorization; ownership is enforced by the
// orchestrator.
type Store interface {
	// Create inserts a new PENDING order, assigning id and timestamps.
	Create(ctx context.Context, o *domain.Order) error
	// FindByID returns domain.ErrNotFound when no record exists.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByUser returns a page ordered by creation time descending,
	// plus the total count. Out-of-range pages yield an empty page.
	ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Order, int, error)
	// Cancel transitions PENDING -> CANCELLED; domain.ErrConflictStatus
	// when the order is no longer pending.
	Cancel(ctx context.Context, id string) error
	// UpdateAddress replaces the shipping address wholesale while the
	// order is still PENDING.
	UpdateAddress(ctx context.Context, id string, addr domain.ShippingAddress) error
	// Confirm transitions PENDING -> CONFIRMED (driven by payment events).
	Confirm(ctx context.Context, id string) error
	// TryMarkProcessed returns true if the event id was newly recorded,
	// false if it was already processed.
	TryMarkProcessed(ctx context.Context, eventID string) (bool, error)
}
