package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx := context.Background()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to open storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			zl.Error("failed to close storage", zap.Error(err))
		}
	}()
	zl.Info("storage ready", zap.String("backend", cfg.StorageBackend), zap.String("namespace", cfg.Namespace))

	client := apiclient.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	sess := session.NewStore(ctx, st, client, zl.Named("session"))
	client.SetTokenSource(sess)

	cartStore := cart.NewStore(ctx, st, zl.Named("cart"))
	orderLog := orders.NewLog(ctx, st, zl.Named("orders"))

	router := h.NewRouter(h.Deps{
		Session:  sess,
		Cart:     cartStore,
		Orders:   orderLog,
		Checkout: checkout.NewService(cartStore, orderLog, sess, cfg.CheckoutDelay, zl.Named("checkout")),
		Catalog:  catalog.NewService(client, zl.Named("catalog")),
		Admin:    admin.NewService(client, zl.Named("admin")),
	}, h.Options{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, zl.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront-gateway"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + cfg.CheckoutDelay + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront gateway starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("api_base_url", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		st, err := storage.NewSQLiteStorage(cfg.SQLitePath, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		if err := st.RunMigrations(); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return storage.NewRedisStorage(client, cfg.Namespace), nil
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
