package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	calls    int64
	err      error
}

func (m *mockRepository) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	atomic.AddInt64(&m.calls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (m *mockRepository) ListProducts(context.Context, ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) ListCategories(context.Context) ([]*domain.Category, error) {
	return nil, m.err
}

func (m *mockRepository) Close() error { return nil }

func TestGetProduct_Success(t *testing.T) {
	repo := &mockRepository{
		products: map[int64]*domain.Product{
			1: {ID: 1, Name: "Espresso Blend", Price: decimal.RequireFromString("10.00"), Stock: 50, IsAvailable: true},
		},
	}

	sut := NewService(repo)
	p, err := sut.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Espresso Blend", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.00")))
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := &mockRepository{products: map[int64]*domain.Product{}}

	sut := NewService(repo)
	p, err := sut.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, p)
}

func TestListProducts_Success(t *testing.T) {
	repo := &mockRepository{
		products: map[int64]*domain.Product{
			1: {ID: 1, Name: "Espresso Blend"},
			2: {ID: 2, Name: "House Roast"},
		},
	}

	sut := NewService(repo)
	products, err := sut.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
