package service

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"ecommerce-backend/services/order-service/internal/domain"
	"ecommerce-backend/services/order-service/internal/pricing"
	"ecommerce-backend/services/order-service/internal/repo"
	"ecommerce-backend/shared/pkg/models"
)

type CartFetcher interface {
	FetchCart(ctx context.Context, userID string) ([]domain.CartItem, error)
}

type ProductFetcher interface {
	FetchProducts(ctx context.Context, productIDs []string) (map[string]domain.ProductSnapshot, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any, headers amqp.Table) error
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Orders is the order workflow: it validates input, snapshots the cart
// against the catalog, enforces stock, persists through the store and
// emits the created event. Ownership of an order is checked here, not
// in the store.
type Orders struct {
	Log     zerolog.Logger
	Store   repo.Store
	Cart    CartFetcher
	Catalog ProductFetcher
	Events  EventPublisher
}

// Create runs the full creation workflow. Address validation happens
// before any network call; either a fully validated order is persisted
// or none is.
func (s *Orders) Create(ctx context.Context, userID string, addr domain.ShippingAddress) (*domain.Order, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	items, err := s.Cart.FetchCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.Catalog.FetchProducts(ctx, distinctProductIDs(items))
	if err != nil {
		return nil, err
	}

	lines, total, err := pricing.Price(items, products)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           lines,
		TotalPrice:      total,
		ShippingAddress: addr,
	}
	if err := s.Store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishCreated(ctx, order)

	s.Log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("total", order.TotalPrice.Amount.String()).
		Msg("order created")
	return order, nil
}

func (s *Orders) ListMine(ctx context.Context, userID string, page, limit int) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.Store.ListByUser(ctx, userID, page, limit)
}

// Get enforces the ownership gate: existence is confirmed before
// ownership, so a missing order is NotFound even for the wrong caller.
func (s *Orders) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *Orders) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if _, err := s.Get(ctx, userID, orderID); err != nil {
		return nil, err
	}
	if err := s.Store.Cancel(ctx, orderID); err != nil {
		return nil, err
	}
	s.Log.Info().Str("order_id", orderID).Str("user_id", userID).Msg("order cancelled")
	return s.Store.FindByID(ctx, orderID)
}

func (s *Orders) UpdateAddress(ctx context.Context, userID, orderID string, addr domain.ShippingAddress) (*domain.Order, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, userID, orderID); err != nil {
		return nil, err
	}
	if err := s.Store.UpdateAddress(ctx, orderID, addr); err != nil {
		return nil, err
	}
	return s.Store.FindByID(ctx, orderID)
}

// publishCreated is best-effort: the order is already committed, so a
// publish failure is logged, never surfaced to the caller.
func (s *Orders) publishCreated(ctx context.Context, o *domain.Order) {
	if s.Events == nil {
		return
	}

	items := make([]models.OrderItemPayload, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, models.OrderItemPayload{
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			Amount:    line.UnitPrice.Amount.String(),
			Currency:  line.UnitPrice.Currency,
		})
	}
	evt := models.NewOrderCreatedEvent(models.OrderCreatedPayload{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalPrice.Amount.String(),
		Currency:    o.TotalPrice.Currency,
		Items:       items,
	})

	if err := s.Events.PublishJSON(ctx, evt.Type, evt, nil); err != nil {
		s.Log.Error().Err(err).Str("order_id", o.ID).Msg("publish orders.created failed")
	}
}

// distinctProductIDs preserves first-seen order so fan-out is stable.
func distinctProductIDs(items []domain.CartItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
