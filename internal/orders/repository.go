package orders

import (
	"context"
	"errors"
	"time"

	"github.com/beanly/coffee-shop/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// ListFilter narrows ListAll for the admin report view.
type ListFilter struct {
	From *time.Time
	To   *time.Time
}

type OrderRepository interface {
	// CreateOrder persists the order and its item snapshots in one
	// transaction. TotalCost is computed from the items at creation and
	// never recomputed afterward.
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListOrdersBySession(ctx context.Context, sessionKey string) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	SetPaid(ctx context.Context, id int64) error
	Close() error
}
