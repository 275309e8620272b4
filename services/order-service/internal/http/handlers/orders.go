package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ecommerce-backend/services/order-service/internal/domain"
	"ecommerce-backend/services/order-service/internal/service"
	"ecommerce-backend/shared/pkg/auth"
)

type OrdersHandler struct {
	Log zerolog.Logger
	Svc *service.Orders
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// addressInput is the wire shape: clients send pincode, the stored
// field is zip.
type addressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

func (in addressInput) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		Zip:     in.Pincode,
		Country: in.Country,
	}
}

type addressBody struct {
	ShippingAddress addressInput `json:"shippingAddress"`
}

type listMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body addressBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	order, err := h.Svc.Create(r.Context(), id.ID, body.ShippingAddress.toDomain())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	orders, total, err := h.Svc.ListMine(r.Context(), id.ID, page, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"meta":   listMeta{Total: total, Page: page, Limit: limit},
	})
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.Svc.Get(r.Context(), id.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.Svc.Cancel(r.Context(), id.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrdersHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body addressBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	order, err := h.Svc.UpdateAddress(r.Context(), id.ID, chi.URLParam(r, "id"), body.ShippingAddress.toDomain())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"order": order})
}

// respondError maps the domain taxonomy to HTTP. Upstream failures and
// stock violations deliberately collapse into a generic 500, keeping
// the coarse external contract; the distinguishable cause is logged.
func (h *OrdersHandler) respondError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondMessage(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, domain.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrForbidden):
		respondMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrConflictStatus):
		respondMessage(w, http.StatusConflict, "Order is not pending")
	default:
		h.Log.Error().Err(err).Msg("order request failed")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
