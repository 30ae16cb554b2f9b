package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanCancel reports whether a customer may still cancel an order in this
// status. Later statuses mean the order already left fulfillment.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id,omitempty"` // 0 for guest orders
	SessionKey string          `json:"session_key"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Address    string          `json:"address"`
	PostalCode string          `json:"postal_code"`
	City       string          `json:"city"`
	Phone      string          `json:"phone"`
	Status     OrderStatus     `json:"status"`
	Paid       bool            `json:"paid"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Items      []OrderItem     `json:"items,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderItem snapshots product, price and quantity at order-creation time.
// It stays fixed when the catalog price later changes.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (i OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal computes the immutable total_cost recorded at creation.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Cost())
	}
	return total
}
