package admin

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListLimit is the page size of the admin tables.
const ListLimit = 100

var ErrInvalidInput = errors.New("invalid input")

type API interface {
	ListAdminProducts(ctx context.Context, limit int) ([]domain.CatalogProduct, error)
	CreateProduct(ctx context.Context, in apiclient.ProductInput) error
	UpdateProduct(ctx context.Context, id string, in apiclient.ProductInput) error
	DeleteProduct(ctx context.Context, id string) error

	ListAdminCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in apiclient.CategoryInput) error
	UpdateCategory(ctx context.Context, id string, in apiclient.CategoryInput) error
	DeleteCategory(ctx context.Context, id string) error

	ListUsers(ctx context.Context, limit int) ([]domain.AdminUser, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) error
	DeleteUser(ctx context.Context, id string) error

	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// Service backs the admin screens. Each screen keeps its last list: after a
// successful mutation the list is fetched again, after a failed one it stays
// as it was.
type Service struct {
	api      API
	log      *zap.Logger
	validate *validator.Validate

	products   catalog.View[[]domain.CatalogProduct]
	categories catalog.View[[]domain.Category]
	users      catalog.View[[]domain.AdminUser]
	stats      catalog.View[*domain.DashboardStats]
}

func NewService(api API, log *zap.Logger) *Service {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &Service{api: api, log: log, validate: v}
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// mutate runs op and refreshes the screen on success. On failure the error is
// logged and returned, and the screen keeps its previous list. A failed
// refresh after a successful op yields the previous list.
func mutate[T any](ctx context.Context, s *Service, action string, view *catalog.View[T], op func(context.Context) error, refresh func(context.Context) (T, error)) (T, error) {
	if err := op(ctx); err != nil {
		s.log.Warn("admin mutation failed", zap.String("action", action), zap.Error(err))
		var zero T
		return zero, err
	}
	s.log.Info("admin mutation applied", zap.String("action", action))

	list, err := refresh(ctx)
	if err != nil {
		s.log.Warn("refresh after admin mutation failed", zap.String("action", action), zap.Error(err))
		last, _ := view.Current()
		return last, nil
	}
	return list, nil
}

func (s *Service) Products(ctx context.Context) ([]domain.CatalogProduct, error) {
	return s.products.Refresh(ctx, "products", func(ctx context.Context) ([]domain.CatalogProduct, error) {
		return s.api.ListAdminProducts(ctx, ListLimit)
	})
}

func (s *Service) CreateProduct(ctx context.Context, in apiclient.ProductInput) ([]domain.CatalogProduct, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	return mutate(ctx, s, "create product", &s.products, func(ctx context.Context) error {
		return s.api.CreateProduct(ctx, in)
	}, s.Products)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in apiclient.ProductInput) ([]domain.CatalogProduct, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	return mutate(ctx, s, "update product", &s.products, func(ctx context.Context) error {
		return s.api.UpdateProduct(ctx, id, in)
	}, s.Products)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) ([]domain.CatalogProduct, error) {
	return mutate(ctx, s, "delete product", &s.products, func(ctx context.Context) error {
		return s.api.DeleteProduct(ctx, id)
	}, s.Products)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.Refresh(ctx, "categories", s.api.ListAdminCategories)
}

func (s *Service) CreateCategory(ctx context.Context, in apiclient.CategoryInput) ([]domain.Category, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	return mutate(ctx, s, "create category", &s.categories, func(ctx context.Context) error {
		return s.api.CreateCategory(ctx, in)
	}, s.Categories)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in apiclient.CategoryInput) ([]domain.Category, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	return mutate(ctx, s, "update category", &s.categories, func(ctx context.Context) error {
		return s.api.UpdateCategory(ctx, id, in)
	}, s.Categories)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) ([]domain.Category, error) {
	return mutate(ctx, s, "delete category", &s.categories, func(ctx context.Context) error {
		return s.api.DeleteCategory(ctx, id)
	}, s.Categories)
}

func (s *Service) Users(ctx context.Context) ([]domain.AdminUser, error) {
	return s.users.Refresh(ctx, "users", func(ctx context.Context) ([]domain.AdminUser, error) {
		return s.api.ListUsers(ctx, ListLimit)
	})
}

func (s *Service) UpdateUserRole(ctx context.Context, id string, role domain.Role) ([]domain.AdminUser, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return mutate(ctx, s, "update user role", &s.users, func(ctx context.Context) error {
		return s.api.UpdateUserRole(ctx, id, role)
	}, s.Users)
}

func (s *Service) DeleteUser(ctx context.Context, id string) ([]domain.AdminUser, error) {
	return mutate(ctx, s, "delete user", &s.users, func(ctx context.Context) error {
		return s.api.DeleteUser(ctx, id)
	}, s.Users)
}

func (s *Service) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	return s.stats.Refresh(ctx, "stats", s.api.Stats)
}

// LastProducts returns the product table as last shown.
func (s *Service) LastProducts() []domain.CatalogProduct {
	p, _ := s.products.Current()
	return p
}

func (s *Service) LastCategories() []domain.Category {
	c, _ := s.categories.Current()
	return c
}

func (s *Service) LastUsers() []domain.AdminUser {
	u, _ := s.users.Current()
	return u
}
