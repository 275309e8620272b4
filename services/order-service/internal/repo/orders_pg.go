package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ecommerce-backend/services/order-service/internal/domain"
)

// OrdersPG persists orders in the orders table, with items and the
// shipping address as jsonb documents. Status races (cancel vs confirm
// vs address update) are serialized by conditional updates, never by
// application-level locking.
type OrdersPG struct{ DB *pgxpool.Pool }

func (r *OrdersPG) Create(ctx context.Context, o *domain.Order) error {
	o.ID = uuid.NewString()
	o.Status = domain.StatusPending
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}

	_, err = r.DB.Exec(ctx, `
		insert into orders(id, user_id, status, items, total_amount, total_currency, shipping_address, created_at, updated_at)
		values ($1::uuid, $2, $3, $4::jsonb, $5::numeric, $6, $7::jsonb, $8, $9)
	`, o.ID, o.UserID, string(o.Status), string(items), o.TotalPrice.Amount.String(), o.TotalPrice.Currency, string(addr), o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrdersPG) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	var (
		o           domain.Order
		status      string
		itemsText   string
		amountText  string
		addressText string
	)
	err := r.DB.QueryRow(ctx, `
		select id, user_id, status, items::text, total_amount::text, total_currency, shipping_address::text, created_at, updated_at
		from orders
		where id = $1::uuid
	`, id).Scan(&o.ID, &o.UserID, &status, &itemsText, &amountText, &o.TotalPrice.Currency, &addressText, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	if err := json.Unmarshal([]byte(itemsText), &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(addressText), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	o.TotalPrice.Amount, err = decimal.NewFromString(amountText)
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	return &o, nil
}

func (r *OrdersPG) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Order, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `select count(*) from orders where user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, `
		select id, user_id, status, items::text, total_amount::text, total_currency, shipping_address::text, created_at, updated_at
		from orders
		where user_id = $1
		order by created_at desc
		limit $2 offset $3
	`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		var (
			o           domain.Order
			status      string
			itemsText   string
			amountText  string
			addressText string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &status, &itemsText, &amountText, &o.TotalPrice.Currency, &addressText, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		o.Status = domain.OrderStatus(status)
		if err := json.Unmarshal([]byte(itemsText), &o.Items); err != nil {
			return nil, 0, fmt.Errorf("unmarshal items: %w", err)
		}
		if err := json.Unmarshal([]byte(addressText), &o.ShippingAddress); err != nil {
			return nil, 0, fmt.Errorf("unmarshal address: %w", err)
		}
		if o.TotalPrice.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, 0, fmt.Errorf("parse total: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *OrdersPG) Cancel(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
		update orders
		set status = 'CANCELLED', updated_at = now()
		where id = $1::uuid and status = 'PENDING'
	`)
}

func (r *OrdersPG) Confirm(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
		update orders
		set status = 'CONFIRMED', updated_at = now()
		where id = $1::uuid and status = 'PENDING'
	`)
}

func (r *OrdersPG) transition(ctx context.Context, id, query string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	ct, err := r.DB.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	return r.conflictOrMissing(ctx, id)
}

func (r *OrdersPG) UpdateAddress(ctx context.Context, id string, addr domain.ShippingAddress) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	b, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	ct, err := r.DB.Exec(ctx, `
		update orders
		set shipping_address = $2::jsonb, updated_at = now()
		where id = $1::uuid and status = 'PENDING'
	`, id, string(b))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	return r.conflictOrMissing(ctx, id)
}

// conflictOrMissing disambiguates a zero-row conditional update.
func (r *OrdersPG) conflictOrMissing(ctx context.Context, id string) error {
	var status string
	err := r.DB.QueryRow(ctx, `select status from orders where id = $1::uuid`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrConflictStatus
}

func (r *OrdersPG) TryMarkProcessed(ctx context.Context, eventID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `insert into processed_events(event_id) values ($1) on conflict do nothing`, eventID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
