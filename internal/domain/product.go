package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"category_id"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsAvailable bool            `json:"is_available"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}
