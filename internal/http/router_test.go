package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeShop is a minimal stand-in for the remote shop API.
type fakeShop struct {
	m          sync.Mutex
	categories []map[string]any
	authHeader string
	lookupWait time.Duration
}

func (f *fakeShop) router(t *testing.T) chi.Router {
	r := chi.NewRouter()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(req.Body).Decode(&body)
			switch body["email"] {
			case "admin@shop.test":
				write(w, http.StatusOK, map[string]any{"success": true, "token": "admin-token",
					"data": map[string]any{"_id": "a1", "name": "Root", "email": body["email"], "role": "Admin"}})
			case "user@shop.test":
				write(w, http.StatusOK, map[string]any{"success": true, "token": "user-token",
					"data": map[string]any{"_id": "u1", "name": "Ann Lee", "email": body["email"]}})
			case "notoken@shop.test":
				write(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "u9"}})
			default:
				write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			}
		})
		r.Get("/products", func(w http.ResponseWriter, req *http.Request) {
			write(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"products": []any{map[string]any{"_id": "p1", "name": "Pump", "price": 120, "images": []string{"pump.png"}}},
				"total":    1, "page": 1, "pages": 1,
			}})
		})
		r.Get("/products/{id}", func(w http.ResponseWriter, req *http.Request) {
			f.m.Lock()
			wait := f.lookupWait
			f.m.Unlock()
			time.Sleep(wait)
			switch chi.URLParam(req, "id") {
			case "p1":
				write(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "p1", "name": "Pump", "price": 120, "images": []string{"pump.png"}}})
			case "p2":
				write(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "p2", "name": "Valve", "price": "9.99"}})
			default:
				write(w, http.StatusNotFound, map[string]any{"success": false, "message": "Product not found"})
			}
		})
		r.Get("/categories", func(w http.ResponseWriter, req *http.Request) {
			f.m.Lock()
			defer f.m.Unlock()
			write(w, http.StatusOK, map[string]any{"success": true, "data": f.categories})
		})
		r.Get("/admin/categories", func(w http.ResponseWriter, req *http.Request) {
			f.m.Lock()
			defer f.m.Unlock()
			f.authHeader = req.Header.Get("Authorization")
			write(w, http.StatusOK, map[string]any{"success": true, "data": f.categories})
		})
		r.Post("/admin/categories", func(w http.ResponseWriter, req *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(req.Body).Decode(&body)
			f.m.Lock()
			defer f.m.Unlock()
			for _, c := range f.categories {
				if c["name"] == body["name"] {
					write(w, http.StatusConflict, map[string]any{"message": "Category already exists"})
					return
				}
			}
			f.categories = append(f.categories, map[string]any{"_id": body["name"], "name": body["name"]})
			write(w, http.StatusCreated, map[string]any{"success": true})
		})
	})
	return r
}

type gateway struct {
	handler http.Handler
	cart    *cart.Store
	orders  *orders.Log
	session *session.Store
	shop    *fakeShop
}

func setupGateway(t *testing.T) *gateway {
	t.Helper()
	shop := &fakeShop{categories: []map[string]any{{"_id": "c1", "name": "Water"}}}
	remote := httptest.NewServer(shop.router(t))
	t.Cleanup(remote.Close)

	ctx := context.Background()
	log := zap.NewNop()
	st := storage.NewMemoryStore()
	client := apiclient.NewClient(remote.URL+"/api", 5*time.Second)
	sess := session.NewStore(ctx, st, client, log)
	client.SetTokenSource(sess)

	cartStore := cart.NewStore(ctx, st, log)
	orderLog := orders.NewLog(ctx, st, log)
	deps := Deps{
		Session:  sess,
		Cart:     cartStore,
		Orders:   orderLog,
		Checkout: checkout.NewService(cartStore, orderLog, sess, 0, log),
		Catalog:  catalog.NewService(client, log),
		Admin:    admin.NewService(client, log),
	}
	r := NewRouter(deps, Options{RequestTimeout: 5 * time.Second, MaxRequestBodySize: 1 << 20}, log)
	return &gateway{handler: r, cart: cartStore, orders: orderLog, session: sess, shop: shop}
}

func (g *gateway) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func checkoutBody(key string) map[string]string {
	return map[string]string{
		"idempotency_key": key,
		"firstName":       "Ann",
		"lastName":        "Lee",
		"email":           "ann@example.com",
		"phone":           "555-0100",
		"address":         "1 Main St",
		"city":            "Springfield",
		"state":           "IL",
		"zipCode":         "62701",
		"cardName":        "Ann Lee",
		"cardNumber":      "4111111111111111",
		"cardExpiry":      "12/30",
		"cardCVV":         "123",
	}
}

func TestHealth(t *testing.T) {
	g := setupGateway(t)
	rec := g.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSession_LoginLogout(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodPost, "/api/v1/session/login", LoginRequestDTO{Email: "user@shop.test", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[SessionResponseDTO](t, rec)
	assert.True(t, view.Authenticated)
	assert.False(t, view.IsAdmin)
	assert.Equal(t, "Ann Lee", view.User.DisplayName)

	rec = g.do(t, http.MethodPost, "/api/v1/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[SessionResponseDTO](t, rec).Authenticated)
}

func TestSession_LoginErrors(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodPost, "/api/v1/session/login", LoginRequestDTO{Email: "x@shop.test", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[ErrorResponse](t, rec).Error)

	rec = g.do(t, http.MethodPost, "/api/v1/session/login", LoginRequestDTO{Email: "notoken@shop.test", Password: "pw"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, g.session.IsAuthenticated())

	rec = g.do(t, http.MethodPost, "/api/v1/session/login", LoginRequestDTO{Email: "user@shop.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodGet, "/api/v1/products?q=pump", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.ProductPage](t, rec)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Pump", page.Products[0].Name)

	rec = g.do(t, http.MethodGet, "/api/v1/products?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodGet, "/api/v1/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode[ErrorResponse](t, rec).Error)

	rec = g.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Category](t, rec), 1)
}

func TestCart_Flow(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "p1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "p1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "p2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	view := decode[CartResponseDTO](t, rec)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "pump.png", view.Items[0].ImageRef)
	assert.Equal(t, domain.PlaceholderImage, view.Items[1].ImageRef)
	assert.Equal(t, 3, view.Count)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("249.99")))

	rec = g.do(t, http.MethodPut, "/api/v1/cart/items/1", UpdateQuantityRequestDTO{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[CartResponseDTO](t, rec).Items, 1)

	rec = g.do(t, http.MethodPut, "/api/v1/cart/items/x", UpdateQuantityRequestDTO{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponseDTO](t, rec).Items)
}

func TestCart_ConcurrentAddsOfDistinctProducts(t *testing.T) {
	g := setupGateway(t)
	g.shop.lookupWait = 50 * time.Millisecond

	var wg sync.WaitGroup
	for _, id := range []string{"p1", "p2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rec := g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: id})
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}(id)
	}
	wg.Wait()

	lines := g.cart.Lines()
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0].Index, lines[1].Index)
	assert.ElementsMatch(t, []string{"p1", "p2"}, []string{lines[0].ProductID, lines[1].ProductID})
	for _, l := range lines {
		assert.Equal(t, 1, l.Quantity)
	}
}

func TestCart_AddValidation(t *testing.T) {
	g := setupGateway(t)
	one := 1
	neg := decimal.NewFromInt(-5)

	rec := g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{Index: &one, Name: "x", Price: &neg})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, g.cart.Lines())
}

func TestCheckout_Flow(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodGet, "/api/v1/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Code)

	price := decimal.NewFromInt(10)
	zero := 0
	rec = g.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{Index: &zero, Name: "Pump", Price: &price})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = g.do(t, http.MethodPut, "/api/v1/cart/items/0", UpdateQuantityRequestDTO{Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = g.do(t, http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[checkout.Summary](t, rec)
	assert.True(t, sum.Total.Equal(decimal.RequireFromString("21.6")))

	bad := checkoutBody("k1")
	bad["email"] = "nope"
	bad["city"] = " "
	rec = g.do(t, http.MethodPost, "/api/v1/checkout", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]string{"email": "Email is invalid", "city": "City is required"}, decode[ErrorResponse](t, rec).Fields)

	rec = g.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[domain.OrderRecord](t, rec)
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("1.6")))
	assert.Empty(t, g.cart.Lines())

	rec = g.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.OrderID, decode[domain.OrderRecord](t, rec).OrderID)

	rec = g.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[OrdersResponseDTO](t, rec)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, order.OrderID, list.Orders[0].OrderID)
}

func TestAdmin_RequiresAdminSession(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodGet, "/api/v1/admin/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	g.do(t, http.MethodPost, "/api/v1/session/login", LoginRequestDTO{Email: "user@shop.test", Password: "pw"})
	rec = g.do(t, http.MethodGet, "/api/v1/admin/categories", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_Categories(t *testing.T) {
	g := setupGateway(t)
	rec := g.do(t, http.MethodPost, "/api/v1/session/login", LoginRequestDTO{Email: "admin@shop.test", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[SessionResponseDTO](t, rec).IsAdmin)

	rec = g.do(t, http.MethodGet, "/api/v1/admin/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer admin-token", g.shop.authHeader)

	rec = g.do(t, http.MethodPost, "/api/v1/admin/categories", apiclient.CategoryInput{Name: "Oil"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]domain.Category](t, rec), 2)

	rec = g.do(t, http.MethodPost, "/api/v1/admin/categories", apiclient.CategoryInput{Name: "Oil"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Category already exists", decode[ErrorResponse](t, rec).Error)

	rec = g.do(t, http.MethodPost, "/api/v1/admin/categories", apiclient.CategoryInput{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decode[ErrorResponse](t, rec).Code)
}
