package catalog

import (
	"context"
	"errors"

	"github.com/beanly/coffee-shop/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategorySlug  string
	Search        string
	AvailableOnly bool
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	Close() error
}
