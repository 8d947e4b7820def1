package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type roleInput struct {
	Role domain.Role `json:"role"`
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

// GET /admin/products
func (c *Client) ListAdminProducts(ctx context.Context, limit int) ([]domain.CatalogProduct, error) {
	data, err := get[struct {
		Products []domain.CatalogProduct `json:"products"`
	}](ctx, c, "/admin/products", limitQuery(limit), "Failed to fetch products")
	if err != nil {
		return nil, err
	}
	return data.Products, nil
}

// POST /products
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	return c.do(ctx, http.MethodPost, "/products", nil, in, nil, "Failed to save product")
}

// PUT /products/{id}
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	return c.do(ctx, http.MethodPut, pathID("/products", id), nil, in, nil, "Failed to save product")
}

// DELETE /products/{id}
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathID("/products", id), nil, nil, nil, "Failed to delete product")
}

// GET /admin/categories
func (c *Client) ListAdminCategories(ctx context.Context) ([]domain.Category, error) {
	return get[[]domain.Category](ctx, c, "/admin/categories", nil, "Failed to fetch categories")
}

// POST /admin/categories
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) error {
	return c.do(ctx, http.MethodPost, "/admin/categories", nil, in, nil, "Failed to save category")
}

// PUT /admin/categories/{id}
func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryInput) error {
	return c.do(ctx, http.MethodPut, pathID("/admin/categories", id), nil, in, nil, "Failed to save category")
}

// DELETE /admin/categories/{id}
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathID("/admin/categories", id), nil, nil, nil, "Failed to delete category")
}

// GET /admin/users
func (c *Client) ListUsers(ctx context.Context, limit int) ([]domain.AdminUser, error) {
	data, err := get[struct {
		Users []domain.AdminUser `json:"users"`
	}](ctx, c, "/admin/users", limitQuery(limit), "Failed to fetch users")
	if err != nil {
		return nil, err
	}
	return data.Users, nil
}

// PUT /admin/users/{id}/role
func (c *Client) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	return c.do(ctx, http.MethodPut, pathID("/admin/users", id)+"/role", nil, roleInput{Role: role}, nil, "Failed to update user role")
}

// DELETE /admin/users/{id}
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathID("/admin/users", id), nil, nil, nil, "Failed to delete user")
}

// GET /admin/stats
func (c *Client) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := get[domain.DashboardStats](ctx, c, "/admin/stats", nil, "Failed to fetch stats")
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
