package catalog

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

func NewPostgresRepository(db *sql.DB) ProductRepository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, slug, description, price, category_id, image_url, is_available, stock, created_at`

func (r *postgresRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&p.ImageURL,
		&p.IsAvailable,
		&p.Stock,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := `SELECT p.id, p.name, p.slug, p.description, p.price, p.category_id, p.image_url, p.is_available, p.stock, p.created_at
	          FROM products p`

	var args []interface{}
	where := " WHERE 1=1"

	if filter.CategorySlug != "" {
		query += " JOIN categories c ON c.id = p.category_id"
		args = append(args, filter.CategorySlug)
		where += fmt.Sprintf(" AND c.slug = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}
	if filter.AvailableOnly {
		where += " AND p.is_available = TRUE"
	}

	query += where + " ORDER BY p.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.CategoryID,
			&p.ImageURL,
			&p.IsAvailable,
			&p.Stock,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name, slug, description FROM categories ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

func (r *postgresRepository) Close() error {
	return r.db.Close()
}
