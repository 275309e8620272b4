package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ecommerce-backend/services/order-service/internal/domain"
)

// Cart fetches the caller's current cart from the cart service.
type Cart struct {
	baseURL string
	http    *http.Client
}

func NewCart(baseURL string, timeout time.Duration) *Cart {
	return &Cart{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type cartResponse struct {
	Cart struct {
		Items []domain.CartItem `json:"items"`
	} `json:"cart"`
}

func (c *Cart) FetchCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cart/"+userID, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "cart-service", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "cart-service", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Service: "cart-service", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Service: "cart-service", Err: err}
	}
	if len(body.Cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	return body.Cart.Items, nil
}
