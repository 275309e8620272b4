package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecommerce-backend/shared/pkg/metrics"
)

type Handlers struct {
	Health        http.HandlerFunc
	Register      http.HandlerFunc
	Login         http.HandlerFunc
	Logout        http.HandlerFunc
	Me            http.HandlerFunc
	ListAddresses http.HandlerFunc
	AddAddress    http.HandlerFunc
	DeleteAddress http.HandlerFunc

	Auth func(http.Handler) http.Handler
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware("auth-service"))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth)
			r.Get("/me", h.Me)
			r.Get("/users/me/addresses", h.ListAddresses)
			r.Post("/users/me/addresses", h.AddAddress)
			r.Delete("/users/me/addresses/{addressId}", h.DeleteAddress)
		})
	})
	return r
}
