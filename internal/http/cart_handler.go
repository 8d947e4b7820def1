package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartHandler struct {
	cart    *cart.Store
	catalog *catalog.Service
	log     *zap.Logger
	maxBody int64
}

func NewCartHandler(c *cart.Store, cat *catalog.Service, maxBody int64, log *zap.Logger) *CartHandler {
	return &CartHandler{cart: c, catalog: cat, log: log, maxBody: maxBody}
}

// AddItemRequestDTO adds either a catalog product (product_id) or a
// fully described line.
type AddItemRequestDTO struct {
	Index     *int             `json:"index,omitempty"`
	ProductID string           `json:"product_id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Image     string           `json:"image,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items    []domain.CartLine `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Count    int               `json:"count"`
}

func (h *CartHandler) view() CartResponseDTO {
	lines := h.cart.Lines()
	total := domain.SumLines(lines)
	return CartResponseDTO{Items: lines, Subtotal: total.Subtotal, Count: total.Count}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}

	if req.Index == nil && req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "index or product_id is required")
		return
	}

	var line domain.CartLine
	if req.ProductID != "" && req.Name == "" {
		l, err := h.catalog.CartLine(r.Context(), req.ProductID)
		if err != nil {
			handleError(r.Context(), h.log, w, err)
			return
		}
		line = l
	} else {
		if req.Name == "" || req.Price == nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "name and price are required")
			return
		}
		if req.Price.IsNegative() {
			respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
			return
		}
		line = domain.CartLine{
			ProductID: req.ProductID,
			Name:      req.Name,
			UnitPrice: *req.Price,
			ImageRef:  req.Image,
		}
		if line.ImageRef == "" {
			line.ImageRef = domain.PlaceholderImage
		}
	}

	var err error
	if req.Index != nil {
		line.Index = *req.Index
		err = h.cart.Add(r.Context(), line)
	} else {
		err = h.cart.AddProduct(r.Context(), line)
	}
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.view())
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return 0, false
	}
	return index, true
}

// PUT /api/v1/cart/items/{index}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}

	if err := h.cart.SetQuantity(r.Context(), index, req.Quantity); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

// DELETE /api/v1/cart/items/{index}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.cart.Remove(r.Context(), index); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}
