package cart

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/beanly/coffee-shop/internal/catalog"
	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/beanly/coffee-shop/internal/session"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	m    sync.RWMutex
	data map[string][]byte
	err  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[sessionID+":"+key]
	if !ok {
		return nil, session.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[sessionID+":"+key] = value
	return nil
}

func (m *mockStore) Delete(_ context.Context, sessionID, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, sessionID+":"+key)
	return nil
}

type mockCatalog struct {
	m        sync.RWMutex
	products map[int64]*domain.Product
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockCatalog) setPrice(id int64, price string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.products[id].Price = decimal.RequireFromString(price)
}

func (m *mockCatalog) remove(id int64) {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.products, id)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService() (*Service, *mockStore, *mockCatalog) {
	store := newMockStore()
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Name: "Espresso Blend", Price: decimal.RequireFromString("10.00"), Stock: 50, IsAvailable: true},
		2: {ID: 2, Name: "House Roast", Price: decimal.RequireFromString("5.50"), Stock: 5, IsAvailable: true},
	}}
	return NewService(store, cat, testLogger()), store, cat
}

const sid = "session-1"

func TestAdd_NewLineSnapshotsPrice(t *testing.T) {
	sut, _, cat := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))

	// Later catalog price changes must not touch the stored snapshot.
	cat.setPrice(1, "99.99")

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, items[0].TotalPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestAdd_IncrementsQuantity(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 1, 3, false))

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAdd_OverrideReplacesQuantity(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 1, 3, true))

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	sut, store, _ := newTestService()
	ctx := context.Background()

	assert.ErrorIs(t, sut.Add(ctx, sid, 1, 0, false), ErrInvalidQuantity)
	assert.ErrorIs(t, sut.Add(ctx, sid, 1, -3, false), ErrInvalidQuantity)

	// Nothing persisted
	assert.Empty(t, store.data)
}

func TestAdd_UnknownProduct(t *testing.T) {
	sut, store, _ := newTestService()

	err := sut.Add(context.Background(), sid, 404, 1, false)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.Empty(t, store.data)
}

func TestRemove(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 2, 1, false))

	require.NoError(t, sut.Remove(ctx, sid, 1))

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Product.ID)

	// Removing an absent product is a no-op
	require.NoError(t, sut.Remove(ctx, sid, 1))
}

func TestClear(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Clear(ctx, sid))

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, items)

	empty, err := sut.IsEmpty(ctx, sid)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestItems_DropsMissingProducts(t *testing.T) {
	sut, _, cat := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 2, 1, false))

	cat.remove(1)

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Product.ID)
}

func TestItems_Restartable(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))

	first, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	second, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTotal_TracksMutations(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	// A: 10.00 x 2, B: 5.50 x 1
	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 2, 1, false))

	total, err := sut.Total(ctx, sid)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("25.50")), "got %s", total)

	require.NoError(t, sut.Remove(ctx, sid, 1))
	total, err = sut.Total(ctx, sid)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("5.50")), "got %s", total)

	require.NoError(t, sut.Add(ctx, sid, 1, 3, true))
	total, err = sut.Total(ctx, sid)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("35.50")), "got %s", total)
}

func TestTotal_IncludesLinesMissingFromCatalog(t *testing.T) {
	sut, _, cat := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 2, 1, false))
	cat.remove(2)

	items, err := sut.Items(ctx, sid)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// The stored line for product 2 still counts until it is removed.
	total, err := sut.Total(ctx, sid)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("25.50")), "got %s", total)
}

func TestTotal_MatchesManualSum(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	quantities := map[int64]int{1: 3, 2: 4}
	for id, qty := range quantities {
		require.NoError(t, sut.Add(ctx, sid, id, qty, false))
	}

	want := decimal.RequireFromString("10.00").Mul(decimal.NewFromInt(3)).
		Add(decimal.RequireFromString("5.50").Mul(decimal.NewFromInt(4)))

	total, err := sut.Total(ctx, sid)
	require.NoError(t, err)
	assert.True(t, total.Equal(want), "got %s want %s", total, want)
}

func TestLen_SumsQuantities(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, sid, 1, 2, false))
	require.NoError(t, sut.Add(ctx, sid, 2, 3, false))

	n, err := sut.Len(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestStoreError_Propagates(t *testing.T) {
	store := newMockStore()
	store.err = fmt.Errorf("redis down")
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Price: decimal.RequireFromString("1.00")},
	}}
	sut := NewService(store, cat, testLogger())

	err := sut.Add(context.Background(), sid, 1, 1, false)
	require.ErrorContains(t, err, "redis down")
}
