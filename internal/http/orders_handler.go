package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

type OrdersHandler struct {
	orders *orders.Log
}

func NewOrdersHandler(l *orders.Log) *OrdersHandler {
	return &OrdersHandler{orders: l}
}

type OrdersResponseDTO struct {
	Orders []domain.OrderRecord `json:"orders"`
	Count  int                  `json:"count"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list := h.orders.List()
	respondJSON(w, http.StatusOK, OrdersResponseDTO{Orders: list, Count: len(list)})
}
