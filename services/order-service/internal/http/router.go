package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecommerce-backend/shared/pkg/metrics"
)

type Handlers struct {
	Health        http.HandlerFunc
	CreateOrder   http.HandlerFunc
	ListMyOrders  http.HandlerFunc
	GetOrder      http.HandlerFunc
	CancelOrder   http.HandlerFunc
	UpdateAddress http.HandlerFunc

	Auth func(http.Handler) http.Handler
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware("order-service"))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(h.Auth)
		r.Post("/", h.CreateOrder)
		r.Get("/me", h.ListMyOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
		r.Patch("/{id}/address", h.UpdateAddress)
	})
	return r
}
