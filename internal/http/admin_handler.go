package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admin   *admin.Service
	log     *zap.Logger
	maxBody int64
}

func NewAdminHandler(a *admin.Service, maxBody int64, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: a, log: log, maxBody: maxBody}
}

type RoleRequestDTO struct {
	Role domain.Role `json:"role"`
}

// respond writes v, or the error when err is set.
func (h *AdminHandler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, status, v)
}

// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	h.respond(w, r, http.StatusOK, stats, err)
}

// GET /api/v1/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.Products(r.Context())
	h.respond(w, r, http.StatusOK, list, err)
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in apiclient.ProductInput
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}
	list, err := h.admin.CreateProduct(r.Context(), in)
	h.respond(w, r, http.StatusCreated, list, err)
}

// PUT /api/v1/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in apiclient.ProductInput
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}
	list, err := h.admin.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, list, err)
}

// DELETE /api/v1/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, list, err)
}

// GET /api/v1/admin/categories
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.Categories(r.Context())
	h.respond(w, r, http.StatusOK, list, err)
}

// POST /api/v1/admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in apiclient.CategoryInput
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}
	list, err := h.admin.CreateCategory(r.Context(), in)
	h.respond(w, r, http.StatusCreated, list, err)
}

// PUT /api/v1/admin/categories/{id}
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in apiclient.CategoryInput
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}
	list, err := h.admin.UpdateCategory(r.Context(), chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, list, err)
}

// DELETE /api/v1/admin/categories/{id}
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, list, err)
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.Users(r.Context())
	h.respond(w, r, http.StatusOK, list, err)
}

// PUT /api/v1/admin/users/{id}/role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	list, err := h.admin.UpdateUserRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	h.respond(w, r, http.StatusOK, list, err)
}

// DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, list, err)
}
