package catalog

import (
	"context"
	"strconv"

	"github.com/beanly/coffee-shop/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service fronts the product repository. Concurrent lookups for the same
// product collapse into a single query via singleflight.
type Service struct {
	repo ProductRepository
	sfg  singleflight.Group
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		return s.repo.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}
