package http

import (
	"net/http"
	"time"

	"github.com/devxankit/mv-store-cart/internal/remote"
	"github.com/go-chi/chi/v5"
)

// ProductHandler proxies catalog reads so the UI can browse products and
// categories through the same local surface it uses for the cart.
type ProductHandler struct {
	productClient *remote.ProductClient
	timeout       time.Duration
}

func NewProductHandler(productClient *remote.ProductClient, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productClient: productClient,
		timeout:       timeout,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if category := r.URL.Query().Get("category"); category != "" {
		products, err := h.productClient.GetProductsByCategory(ctx, category)
		if err != nil {
			handleRemoteError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, products)
		return
	}

	products, err := h.productClient.GetProducts(ctx)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	product, err := h.productClient.GetProductByID(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	term := r.URL.Query().Get("q")
	if term == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "search term is required")
		return
	}

	products, err := h.productClient.SearchProducts(ctx, term)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	products, err := h.productClient.GetFeaturedProducts(ctx)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	categories, err := h.productClient.GetCategories(ctx)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
