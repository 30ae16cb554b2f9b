package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/beanly/coffee-shop/internal/cart"
	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/beanly/coffee-shop/internal/events"
	"github.com/sirupsen/logrus"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartReader is the slice of the cart service checkout needs.
type CartReader interface {
	IsEmpty(ctx context.Context, sessionID string) (bool, error)
	Items(ctx context.Context, sessionID string) ([]cart.LineView, error)
	Clear(ctx context.Context, sessionID string) error
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
}

// Customer carries the shipping fields collected at checkout. Guest and
// registered checkouts differ only in UserID being set.
type Customer struct {
	UserID     int64
	FirstName  string
	LastName   string
	Email      string
	Address    string
	PostalCode string
	City       string
	Phone      string
}

type Service struct {
	cart      CartReader
	orders    OrderCreator
	publisher events.Publisher
	log       *logrus.Logger
}

func NewService(cartReader CartReader, orders OrderCreator, publisher events.Publisher, log *logrus.Logger) *Service {
	return &Service{
		cart:      cartReader,
		orders:    orders,
		publisher: publisher,
		log:       log,
	}
}

// Checkout converts the session's cart into a durable order. Each cart
// line becomes one item snapshot carrying the stored unit price, so later
// catalog changes never alter the recorded order. The cart is cleared
// after the order is committed; the two steps are not one atomic unit, so
// a crash in between can leave a non-empty cart behind an existing order.
// Stock is not re-validated here.
func (s *Service) Checkout(ctx context.Context, sessionID string, customer Customer) (*domain.Order, error) {
	empty, err := s.cart.IsEmpty(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if empty {
		return nil, ErrEmptyCart
	}

	lines, err := s.cart.Items(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	// Stored lines can all join against vanished products.
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		UserID:     customer.UserID,
		SessionKey: sessionID,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Email:      customer.Email,
		Address:    customer.Address,
		PostalCode: customer.PostalCode,
		City:       customer.City,
		Phone:      customer.Phone,
		Status:     domain.OrderStatusPending,
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ProductID: line.Product.ID,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	if err := s.orders.CreateOrder(ctx, order, items); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.cart.Clear(ctx, sessionID); err != nil {
		// The order exists; a stale cart only risks a duplicate order.
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err,
		}).Warn("failed to clear cart after checkout")
	}

	s.publishOrderCreated(ctx, order)

	return order, nil
}

func (s *Service) publishOrderCreated(ctx context.Context, order *domain.Order) {
	eventItems := make([]events.OrderCreatedItem, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, events.OrderCreatedItem{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	event := events.OrderCreated{
		OrderID:    order.ID,
		UserID:     order.UserID,
		SessionKey: order.SessionKey,
		Items:      eventItems,
		TotalCost:  order.TotalCost,
		CreatedAt:  order.CreatedAt,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err,
		}).Warn("failed to publish order created event")
	}
}
