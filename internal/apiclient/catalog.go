package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ProductQuery struct {
	Limit    int
	Query    string
	Category string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

// GET /products
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*domain.ProductPage, error) {
	page, err := get[domain.ProductPage](ctx, c, "/products", q.values(), "Failed to fetch products")
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GET /products/{id}
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	p, err := get[domain.CatalogProduct](ctx, c, pathID("/products", id), nil, "Failed to fetch product")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GET /categories
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return get[[]domain.Category](ctx, c, "/categories", nil, "Failed to fetch categories")
}
