package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the stores and services behind the gateway routes.
type Deps struct {
	Session  *session.Store
	Cart     *cart.Store
	Orders   *orders.Log
	Checkout *checkout.Service
	Catalog  *catalog.Service
	Admin    *admin.Service
}

type Options struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(d Deps, opts Options, log *zap.Logger) chi.Router {
	sessionHandler := NewSessionHandler(d.Session, opts.MaxRequestBodySize, log)
	productHandler := NewProductHandler(d.Catalog, log)
	cartHandler := NewCartHandler(d.Cart, d.Catalog, opts.MaxRequestBodySize, log)
	checkoutHandler := NewCheckoutHandler(d.Checkout, opts.MaxRequestBodySize, log)
	ordersHandler := NewOrdersHandler(d.Orders)
	adminHandler := NewAdminHandler(d.Admin, opts.MaxRequestBodySize, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/logout", sessionHandler.Logout)
		})

		r.Get("/products", productHandler.GetProducts)
		r.Get("/products/{id}", productHandler.GetProduct)
		r.Get("/categories", productHandler.GetCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{index}", cartHandler.UpdateQuantity)
			r.Delete("/items/{index}", cartHandler.RemoveItem)
		})

		r.Get("/checkout", checkoutHandler.GetCheckout)
		r.Post("/checkout", checkoutHandler.InitiateCheckout)

		r.Get("/orders", ordersHandler.ListOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(d.Session))
			r.Get("/stats", adminHandler.GetStats)
			r.Get("/products", adminHandler.ListProducts)
			r.Post("/products", adminHandler.CreateProduct)
			r.Put("/products/{id}", adminHandler.UpdateProduct)
			r.Delete("/products/{id}", adminHandler.DeleteProduct)
			r.Get("/categories", adminHandler.ListCategories)
			r.Post("/categories", adminHandler.CreateCategory)
			r.Put("/categories/{id}", adminHandler.UpdateCategory)
			r.Delete("/categories/{id}", adminHandler.DeleteCategory)
			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/role", adminHandler.UpdateUserRole)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
		})
	})

	return r
}
