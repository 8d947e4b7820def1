package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setupClient(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", 5*time.Second)
}

func TestClient_BearerToken(t *testing.T) {
	var got []string
	r := chi.NewRouter()
	r.Get("/api/categories", func(w http.ResponseWriter, req *http.Request) {
		got = append(got, req.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})
	c := setupClient(t, r)

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)

	c.SetTokenSource(staticToken("abc"))
	_, err = c.ListCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer abc"}, got)
}

func TestClient_ListProducts(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "100", req.URL.Query().Get("limit"))
		assert.Equal(t, "pump", req.URL.Query().Get("q"))
		assert.Equal(t, "c1", req.URL.Query().Get("category"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"products": []any{
					map[string]any{"_id": "p1", "name": "Pump", "price": 12.5, "stock": 3, "category": map[string]any{"_id": "c1", "name": "Water"}, "images": []string{"a.png"}},
					map[string]any{"_id": "p2", "name": "Valve", "price": 4, "category": "c1"},
				},
				"total": 2, "page": 1, "pages": 1,
			},
		})
	})
	c := setupClient(t, r)

	page, err := c.ListProducts(context.Background(), ProductQuery{Limit: 100, Query: "pump", Category: "c1"})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.Products[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Water", page.Products[0].Category.Name)
	assert.Equal(t, "c1", page.Products[1].Category.ID)
	assert.Equal(t, domain.PlaceholderImage, page.Products[1].PrimaryImage())
}

func TestClient_ErrorMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Product not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := setupClient(t, r)

	_, err := c.GetProduct(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Product not found", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	_, err = c.GetProduct(context.Background(), "broken")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to fetch product", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.ListCategories(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, "Failed to fetch categories", apiErr.Message)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestClient_Login(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body loginRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   "tok",
			"data":    map[string]any{"_id": "u1", "name": "Ann", "email": body.Email, "role": "Admin", "isAdmin": true},
		})
	})
	c := setupClient(t, r)

	res, err := c.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "u1", res.User.ID)
	require.NotNil(t, res.User.IsAdmin)
	assert.True(t, *res.User.IsAdmin)

	_, err = c.Login(context.Background(), "ann@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestClient_AdminCalls(t *testing.T) {
	var calls []string
	record := func(w http.ResponseWriter, req *http.Request) {
		calls = append(calls, req.Method+" "+req.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
	r := chi.NewRouter()
	r.Get("/api/admin/products", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "100", req.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"products": []any{map[string]any{"_id": "p1", "name": "Pump"}}}})
	})
	r.Get("/api/admin/users", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"users": []any{map[string]any{"_id": "u1", "role": "User"}}}})
	})
	r.Get("/api/admin/stats", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"stats":          map[string]any{"totalUsers": 2, "totalProducts": 5, "totalRevenue": 99.5},
			"recentProducts": []any{map[string]any{"_id": "p1"}},
			"recentUsers":    []any{},
		}})
	})
	r.Post("/api/products", record)
	r.Put("/api/products/{id}", record)
	r.Delete("/api/products/{id}", record)
	r.Post("/api/admin/categories", record)
	r.Put("/api/admin/categories/{id}", record)
	r.Delete("/api/admin/categories/{id}", record)
	r.Put("/api/admin/users/{id}/role", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "Admin", body["role"])
		record(w, req)
	})
	r.Delete("/api/admin/users/{id}", record)
	c := setupClient(t, r)
	ctx := context.Background()

	products, err := c.ListAdminProducts(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	users, err := c.ListUsers(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Stats.TotalProducts)
	assert.True(t, stats.Stats.TotalRevenue.Equal(decimal.RequireFromString("99.5")))

	in := ProductInput{Name: "Pump", Price: decimal.NewFromInt(10), Stock: 1, Category: "c1"}
	require.NoError(t, c.CreateProduct(ctx, in))
	require.NoError(t, c.UpdateProduct(ctx, "p1", in))
	require.NoError(t, c.DeleteProduct(ctx, "p1"))
	require.NoError(t, c.CreateCategory(ctx, CategoryInput{Name: "Water"}))
	require.NoError(t, c.UpdateCategory(ctx, "c1", CategoryInput{Name: "Oil"}))
	require.NoError(t, c.DeleteCategory(ctx, "c1"))
	require.NoError(t, c.UpdateUserRole(ctx, "u1", domain.RoleAdmin))
	require.NoError(t, c.DeleteUser(ctx, "u1"))

	assert.Equal(t, []string{
		"POST /api/products",
		"PUT /api/products/p1",
		"DELETE /api/products/p1",
		"POST /api/admin/categories",
		"PUT /api/admin/categories/c1",
		"DELETE /api/admin/categories/c1",
		"PUT /api/admin/users/u1/role",
		"DELETE /api/admin/users/u1",
	}, calls)
}
