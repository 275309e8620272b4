package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-backend/services/order-service/internal/domain"
)

// Catalog fetches product snapshots from the product service, one call
// per distinct product id.
type Catalog struct {
	baseURL string
	http    *http.Client
	fanOut  int
}

func NewCatalog(baseURL string, timeout time.Duration, fanOut int) *Catalog {
	if fanOut < 1 {
		fanOut = 1
	}
	return &Catalog{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		fanOut:  fanOut,
	}
}

type productResponse struct {
	Data struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
		Stock int    `json:"stock"`
		Price struct {
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
		} `json:"price"`
	} `json:"data"`
}

func (c *Catalog) FetchProduct(ctx context.Context, productID string) (domain.ProductSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products/"+productID, nil)
	if err != nil {
		return domain.ProductSnapshot{}, &domain.UpstreamError{Service: "product-service", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ProductSnapshot{}, &domain.UpstreamError{Service: "product-service", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ProductSnapshot{}, domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.ProductSnapshot{}, &domain.UpstreamError{Service: "product-service", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body productResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ProductSnapshot{}, &domain.UpstreamError{Service: "product-service", Err: err}
	}
	if body.Data.ID == "" {
		return domain.ProductSnapshot{}, domain.ErrProductNotFound
	}

	return domain.ProductSnapshot{
		ID:    body.Data.ID,
		Title: body.Data.Title,
		Stock: body.Data.Stock,
		Price: domain.Money{Amount: body.Data.Price.Amount, Currency: body.Data.Price.Currency},
	}, nil
}

// FetchProducts fans out FetchProduct over distinct product ids with
// bounded concurrency. Any single failure fails the whole fetch and
// cancels the remaining lookups.
func (c *Catalog) FetchProducts(ctx context.Context, productIDs []string) (map[string]domain.ProductSnapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	out := make(map[string]domain.ProductSnapshot, len(productIDs))
	sem := make(chan struct{}, c.fanOut)

	for _, id := range productIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			snap, err := c.FetchProduct(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			out[id] = snap
		}(id)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
