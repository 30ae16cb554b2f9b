package checkout

import (
	"context"
	"io"
	"testing"

	"github.com/beanly/coffee-shop/internal/cart"
	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/beanly/coffee-shop/internal/events"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCart struct {
	lines    []cart.LineView
	hasLines bool
	itemsErr error
	clearErr error
	cleared  bool
}

func (m *mockCart) IsEmpty(context.Context, string) (bool, error) {
	return !m.hasLines && len(m.lines) == 0, nil
}

func (m *mockCart) Items(context.Context, string) ([]cart.LineView, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.lines, nil
}

func (m *mockCart) Clear(context.Context, string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = true
	return nil
}

type mockOrders struct {
	created *domain.Order
	err     error
}

func (m *mockOrders) CreateOrder(_ context.Context, order *domain.Order, items []domain.OrderItem) error {
	if m.err != nil {
		return m.err
	}
	order.ID = 7
	order.TotalCost = domain.OrderTotal(items)
	order.Items = items
	m.created = order
	return nil
}

type mockPublisher struct {
	published []events.OrderCreated
	err       error
}

func (m *mockPublisher) PublishOrderCreated(_ context.Context, event events.OrderCreated) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testLines() []cart.LineView {
	productA := &domain.Product{ID: 1, Name: "Espresso Blend", Price: decimal.RequireFromString("10.00")}
	productB := &domain.Product{ID: 2, Name: "House Roast", Price: decimal.RequireFromString("5.50")}
	return []cart.LineView{
		{Product: productA, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), TotalPrice: decimal.RequireFromString("20.00")},
		{Product: productB, Quantity: 1, UnitPrice: decimal.RequireFromString("5.50"), TotalPrice: decimal.RequireFromString("5.50")},
	}
}

func TestCheckout_Success(t *testing.T) {
	cartReader := &mockCart{lines: testLines()}
	orderCreator := &mockOrders{}
	publisher := &mockPublisher{}
	sut := NewService(cartReader, orderCreator, publisher, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{
		FirstName: "Anna",
		LastName:  "Koch",
		Email:     "anna@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "sid-1", order.SessionKey)
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("25.50")), "got %s", order.TotalCost)
	require.Len(t, order.Items, 2)

	assert.True(t, cartReader.cleared, "cart was not cleared")
	require.Len(t, publisher.published, 1)
	assert.Equal(t, int64(7), publisher.published[0].OrderID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	cartReader := &mockCart{}
	orderCreator := &mockOrders{}
	sut := NewService(cartReader, orderCreator, &mockPublisher{}, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
	assert.Nil(t, orderCreator.created, "no order should be created for an empty cart")
	assert.False(t, cartReader.cleared)
}

func TestCheckout_AllLinesVanishedFromCatalog(t *testing.T) {
	// The cart holds lines, but every product is gone from the catalog,
	// so the joined view is empty.
	cartReader := &mockCart{hasLines: true}
	orderCreator := &mockOrders{}
	sut := NewService(cartReader, orderCreator, &mockPublisher{}, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
	assert.Nil(t, orderCreator.created)
}

func TestCheckout_SnapshotsStoredPrice(t *testing.T) {
	// The cart line carries the price captured at add time; the live
	// product price differs and must be ignored.
	product := &domain.Product{ID: 1, Price: decimal.RequireFromString("99.99")}
	cartReader := &mockCart{lines: []cart.LineView{
		{Product: product, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), TotalPrice: decimal.RequireFromString("20.00")},
	}}
	orderCreator := &mockOrders{}
	sut := NewService(cartReader, orderCreator, &mockPublisher{}, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("20.00")))
}

func TestCheckout_OrderCreateError(t *testing.T) {
	cartReader := &mockCart{lines: testLines()}
	orderCreator := &mockOrders{err: assert.AnError}
	sut := NewService(cartReader, orderCreator, &mockPublisher{}, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{})
	require.ErrorContains(t, err, "create order")
	assert.Nil(t, order)
	assert.False(t, cartReader.cleared, "cart must survive a failed order")
}

func TestCheckout_ClearFailureIsNotFatal(t *testing.T) {
	cartReader := &mockCart{lines: testLines(), clearErr: assert.AnError}
	orderCreator := &mockOrders{}
	publisher := &mockPublisher{}
	sut := NewService(cartReader, orderCreator, publisher, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{})
	require.NoError(t, err)
	assert.NotNil(t, order)
	require.Len(t, publisher.published, 1)
}

func TestCheckout_PublishFailureIsNotFatal(t *testing.T) {
	cartReader := &mockCart{lines: testLines()}
	orderCreator := &mockOrders{}
	publisher := &mockPublisher{err: assert.AnError}
	sut := NewService(cartReader, orderCreator, publisher, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{})
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestCheckout_GuestAndUserOrders(t *testing.T) {
	cartReader := &mockCart{lines: testLines()}
	orderCreator := &mockOrders{}
	sut := NewService(cartReader, orderCreator, &mockPublisher{}, testLogger())

	order, err := sut.Checkout(context.Background(), "sid-1", Customer{UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.UserID)

	cartReader2 := &mockCart{lines: testLines()}
	sut2 := NewService(cartReader2, &mockOrders{}, &mockPublisher{}, testLogger())
	guestOrder, err := sut2.Checkout(context.Background(), "sid-2", Customer{})
	require.NoError(t, err)
	assert.Zero(t, guestOrder.UserID)
}
