package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/beanly/coffee-shop/internal/catalog"
	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/beanly/coffee-shop/internal/session"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// cartKey is the fixed session key the serialized cart lives under.
const cartKey = "cart"

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CatalogReader is the product lookup the cart joins against.
type CatalogReader interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// LineView is a cart line joined with the live product at read time.
type LineView struct {
	Product    *domain.Product `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Service owns one visitor's cart for the duration of a browsing session.
// Every mutation is a read-modify-write of the whole mapping against the
// session store; concurrent requests on the same session resolve
// last-write-wins.
type Service struct {
	store   session.Store
	catalog CatalogReader
	log     *logrus.Logger
}

func NewService(store session.Store, catalog CatalogReader, log *logrus.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		log:     log,
	}
}

// Add inserts a product line or adjusts an existing one. A new line
// snapshots the current catalog price; later adds keep the original
// snapshot. With override the quantity is replaced, otherwise incremented.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64, quantity int, override bool) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	line, ok := c.Lines[productID]
	if !ok {
		line = domain.CartLine{
			ProductID: productID,
			UnitPrice: product.Price,
		}
	}

	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	c.Lines[productID] = line

	return s.persist(ctx, sessionID, c)
}

// Remove deletes the line for the product; no-op when absent.
func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) error {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	if _, ok := c.Lines[productID]; !ok {
		return nil
	}

	delete(c.Lines, productID)
	return s.persist(ctx, sessionID, c)
}

// Clear drops the cart by deleting its session key.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID, cartKey)
}

// Items joins the stored lines with the live catalog. Lines whose product
// no longer exists are dropped silently. The result is ordered by product
// ID so repeated reads are stable.
func (s *Service) Items(ctx context.Context, sessionID string) ([]LineView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(c.Lines))
	for id := range c.Lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	views := make([]LineView, 0, len(ids))
	for _, id := range ids {
		line := c.Lines[id]

		product, err := s.catalog.GetProduct(ctx, id)
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.log.WithField("product_id", id).Debug("dropping cart line for missing product")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("join cart line %d: %w", id, err)
		}

		views = append(views, LineView{
			Product:    product,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.Cost(),
		})
	}

	return views, nil
}

// Total sums unit_price x quantity over the stored lines. Lines whose
// product vanished from the catalog still count; Items is the filtered
// view.
func (s *Service) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Total(), nil
}

// Len returns the total item count across all lines.
func (s *Service) Len(ctx context.Context, sessionID string) (int, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.Len(), nil
}

// IsEmpty reports whether the cart has zero lines; checkout guards use it.
func (s *Service) IsEmpty(ctx context.Context, sessionID string) (bool, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return c.IsEmpty(), nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := s.store.Get(ctx, sessionID, cartKey)
	if errors.Is(err, session.ErrKeyNotFound) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var c domain.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if c.Lines == nil {
		c.Lines = make(map[int64]domain.CartLine)
	}

	return &c, nil
}

func (s *Service) persist(ctx context.Context, sessionID string, c *domain.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.store.Set(ctx, sessionID, cartKey, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
