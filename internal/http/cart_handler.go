package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/devxankit/mv-store-cart/internal/domain"
	"github.com/devxankit/mv-store-cart/internal/remote"
	"github.com/devxankit/mv-store-cart/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CartHandler exposes the cart store to the UI. Reads return the current
// snapshot; writes dispatch the matching store operation and return the
// snapshot that resulted from it.
type CartHandler struct {
	store   *store.Store
	timeout time.Duration
}

func NewCartHandler(store *store.Store, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:   store,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	Product  domain.ProductRef `json:"product"`
	Quantity int               `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// CartViewDTO is the snapshot plus the render-time derivations: the
// availability partition and the checkout summary.
type CartViewDTO struct {
	Items       []domain.CartLineItem  `json:"items"`
	Total       decimal.Decimal        `json:"total"`
	ItemCount   int                    `json:"itemCount"`
	Loading     bool                   `json:"loading"`
	Error       string                 `json:"error,omitempty"`
	Available   []domain.CartLineItem  `json:"available"`
	Unavailable []domain.CartLineItem  `json:"unavailable"`
	Summary     domain.CheckoutSummary `json:"summary"`
}

func cartView(snap domain.CartSnapshot) CartViewDTO {
	available, unavailable := domain.Partition(snap.Items)
	return CartViewDTO{
		Items:       snap.Items,
		Total:       snap.Total,
		ItemCount:   snap.ItemCount,
		Loading:     snap.Loading,
		Error:       snap.Error,
		Available:   available,
		Unavailable: unavailable,
		Summary:     domain.Summarize(snap.Items),
	}
}

// GetCart returns the current snapshot. With ?refresh=true it synchronizes
// with the server first; a failed refresh still answers 200 with the
// last-known-good items and the error string set, mirroring how the cart
// page renders a rejected fetch.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if r.URL.Query().Get("refresh") == "true" {
		if err := h.store.Fetch(ctx); err != nil {
			log.Printf("cart refresh failed: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, cartView(h.store.Snapshot()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.store.AddItem(ctx, req.Product, req.Quantity); err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cartView(h.store.Snapshot()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.store.UpdateQuantity(ctx, productID, req.Quantity); err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(h.store.Snapshot()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	if err := h.store.RemoveItem(ctx, productID); err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(h.store.Snapshot()))
}

// ClearCart resets the local snapshot, the logout path. The server-side cart
// is left alone; the next authenticated fetch re-syncs it.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	respondJSON(w, http.StatusOK, cartView(h.store.Snapshot()))
}

func contextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func handleRemoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrInvalidQuantity) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}

	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			respondError(w, http.StatusUnauthorized, "unauthenticated", apiErr.Message)
		case http.StatusForbidden:
			respondError(w, http.StatusForbidden, "permission_denied", apiErr.Message)
		case http.StatusNotFound:
			respondError(w, http.StatusNotFound, "not_found", apiErr.Message)
		case http.StatusBadRequest:
			respondError(w, http.StatusBadRequest, "invalid_argument", apiErr.Message)
		case http.StatusTooManyRequests:
			respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", apiErr.Message)
		default:
			respondError(w, http.StatusBadGateway, "upstream_error", apiErr.Message)
		}
		return
	}

	// Network failure, timeout or an open circuit breaker.
	respondError(w, http.StatusServiceUnavailable, "service_unavailable", "cart service unavailable")
}
