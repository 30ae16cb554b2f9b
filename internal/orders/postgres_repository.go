package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beanly/coffee-shop/internal/domain"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) OrderRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("order must have at least one item")
	}

	order.TotalCost = domain.OrderTotal(items)
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	var userID sql.NullInt64
	if order.UserID != 0 {
		userID = sql.NullInt64{Int64: order.UserID, Valid: true}
	}

	query := `INSERT INTO orders (user_id, session_key, first_name, last_name, email, address, postal_code, city, phone, status, paid, total_cost, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	          RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		userID,
		order.SessionKey,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Address,
		order.PostalCode,
		order.City,
		order.Phone,
		order.Status,
		order.Paid,
		order.TotalCost,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, price, quantity)
	              VALUES ($1, $2, $3, $4)
	              RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err := tx.QueryRowContext(ctx, itemQuery,
			order.ID,
			items[i].ProductID,
			items[i].Price,
			items[i].Quantity,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}

	order.Items = items
	return nil
}

const orderColumns = `id, COALESCE(user_id, 0), session_key, first_name, last_name, email, address, postal_code, city, phone, status, paid, total_cost, created_at, updated_at`

func (r *postgresRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *postgresRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) ListOrdersBySession(ctx context.Context, sessionKey string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_key = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, sessionKey)
}

func (r *postgresRepository) ListOrders(ctx context.Context, filter ListFilter) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []interface{}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	return r.list(ctx, query, args...)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) SetPaid(ctx context.Context, id int64) error {
	query := `UPDATE orders SET paid = TRUE, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) Close() error {
	return r.db.Close()
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.SessionKey,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Address,
		&order.PostalCode,
		&order.City,
		&order.Phone,
		&order.Status,
		&order.Paid,
		&order.TotalCost,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
