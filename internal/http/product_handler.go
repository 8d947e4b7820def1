package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog *catalog.Service
	log     *zap.Logger
}

func NewProductHandler(c *catalog.Service, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: c, log: log}
}

// GET /api/v1/products?limit=&q=&category=
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := apiclient.ProductQuery{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		q.Limit = limit
	}

	page, err := h.catalog.Products(r.Context(), q)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// GET /api/v1/categories
func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cats)
}
