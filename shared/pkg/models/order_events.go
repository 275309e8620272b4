package models

import (
	"time"

	"github.com/google/uuid"
)

const EventOrderCreated = "orders.created"

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type OrderCreatedPayload struct {
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	TotalAmount string             `json:"total_amount"`
	Currency    string             `json:"currency"`
	Items       []OrderItemPayload `json:"items"`
}

func NewOrderCreatedEvent(p OrderCreatedPayload) Event[OrderCreatedPayload] {
	return Event[OrderCreatedPayload]{
		ID:      uuid.NewString(),
		Type:    EventOrderCreated,
		Version: 1,
		Time:    time.Now(),
		Payload: p,
	}
}
