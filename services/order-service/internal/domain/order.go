package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s OrderStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// OrderLine is a point-in-time snapshot of a product at creation.
// Title and UnitPrice are immutable once written; later catalog edits
// never affect existing orders.
type OrderLine struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
	LineTotal Money  `json:"lineTotal"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

const MinZipLen = 4

// Validate checks the address shape before any network call is made.
func (a ShippingAddress) Validate() error {
	switch {
	case a.Street == "":
		return &ValidationError{Field: "street", Reason: "required"}
	case a.City == "":
		return &ValidationError{Field: "city", Reason: "required"}
	case a.State == "":
		return &ValidationError{Field: "state", Reason: "required"}
	case a.Country == "":
		return &ValidationError{Field: "country", Reason: "required"}
	case len(a.Zip) < MinZipLen:
		return &ValidationError{Field: "pincode", Reason: "too short"}
	}
	return nil
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user"`
	Items           []OrderLine     `json:"items"`
	Status          OrderStatus     `json:"status"`
	TotalPrice      Money           `json:"totalPrice"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CartItem is one line of the external cart service's cart.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ProductSnapshot is the catalog's view of a product at fetch time.
type ProductSnapshot struct {
	ID    string
	Title string
	Stock int
	Price Money
}
