package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ecommerce-backend/services/auth-service/internal/repo"
	"ecommerce-backend/services/auth-service/internal/service"
	"ecommerce-backend/shared/pkg/auth"
)

type AuthHandler struct {
	Log       zerolog.Logger
	Svc       *service.Auth
	CookieTTL time.Duration
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type fullName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type registerBody struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName fullName `json:"fullName"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addressBody struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, token, err := h.Svc.Register(r.Context(), service.RegisterInput{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FullName.FirstName,
		LastName:  body.FullName.LastName,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, token, err := h.Svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.ExtractToken(r); token != "" {
		if err := h.Svc.Logout(r.Context(), token); err != nil {
			h.respondError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondMessage(w, http.StatusOK, "logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.Svc.CurrentUser(r.Context(), id.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	addresses, err := h.Svc.ListAddresses(r.Context(), id.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if addresses == nil {
		addresses = []repo.Address{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (h *AuthHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
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

	addr, err := h.Svc.AddAddress(r.Context(), id.ID, service.AddressInput{
		Street:  body.Street,
		City:    body.City,
		State:   body.State,
		Pincode: body.Pincode,
		Country: body.Country,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"address": addr})
}

func (h *AuthHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Svc.DeleteAddress(r.Context(), id.ID, chi.URLParam(r, "addressId")); err != nil {
		h.respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "address deleted")
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.CookieTTL.Seconds()),
		HttpOnly: true,
	})
}

func (h *AuthHandler) respondError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, repo.ErrDuplicateEmail):
		respondMessage(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, repo.ErrUserNotFound), errors.Is(err, repo.ErrAddressNotFound):
		respondMessage(w, http.StatusNotFound, "Not found")
	default:
		h.Log.Error().Err(err).Msg("auth request failed")
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
