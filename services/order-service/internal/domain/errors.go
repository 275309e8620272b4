package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrForbidden       = errors.New("order not owned by caller")
	ErrConflictStatus  = errors.New("order is not pending")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = errors.New("product not found")
)

// ValidationError reports a malformed input field, caught before any
// upstream call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError wraps a transport or non-success failure from a
// collaborator service. Timeouts count as upstream failures.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// InsufficientStockError names every product whose ordered quantity
// exceeds current stock. Creation is all-or-nothing: one offending
// line fails the whole order.
type InsufficientStockError struct {
	ProductIDs []string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for products: " + strings.Join(e.ProductIDs, ", ")
}
