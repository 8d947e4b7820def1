package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLimit is the page size of the shop page.
const DefaultLimit = 100

type Source interface {
	ListProducts(ctx context.Context, q apiclient.ProductQuery) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Service serves the read-only catalog screens. Identical concurrent reads
// share one remote call.
type Service struct {
	src Source
	log *zap.Logger
	sfg singleflight.Group // coalesces identical reads

	products   View[*domain.ProductPage]
	categories View[[]domain.Category]
}

func NewService(src Source, log *zap.Logger) *Service {
	return &Service{src: src, log: log}
}

func (s *Service) Products(ctx context.Context, q apiclient.ProductQuery) (*domain.ProductPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	key := fmt.Sprintf("products|%d|%s|%s", q.Limit, q.Query, q.Category)
	return s.products.Refresh(ctx, key, func(ctx context.Context) (*domain.ProductPage, error) {
		v, err, shared := s.sfg.Do(key, func() (interface{}, error) {
			return s.src.ListProducts(ctx, q)
		})
		if err != nil {
			return nil, err
		}
		if shared {
			s.log.Debug("product list read coalesced", zap.String("key", key))
		}
		return v.(*domain.ProductPage), nil
	})
}

// Product reads one product. Detail reads keep no view, so reads of
// different ids run independently.
func (s *Service) Product(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	v, err, _ := s.sfg.Do("product|"+id, func() (interface{}, error) {
		return s.src.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CatalogProduct), nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	const key = "categories"
	return s.categories.Refresh(ctx, key, func(ctx context.Context) ([]domain.Category, error) {
		v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
			return s.src.ListCategories(ctx)
		})
		if err != nil {
			return nil, err
		}
		return v.([]domain.Category), nil
	})
}

// CartLine builds the cart entry for a catalog product: its name and price,
// and the first image or a placeholder.
// The store assigns the line index.
func (s *Service) CartLine(ctx context.Context, productID string) (domain.CartLine, error) {
	p, err := s.src.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	return domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageRef:  p.PrimaryImage(),
	}, nil
}
