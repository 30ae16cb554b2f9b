package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/beanly/coffee-shop/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// maxLineQuantity caps the quantity selector of a single cart line. When
// the product has less stock than the cap, stock becomes the ceiling.
const maxLineQuantity = 20

type CartService interface {
	Add(ctx context.Context, sessionID string, productID int64, quantity int, override bool) error
	Remove(ctx context.Context, sessionID string, productID int64) error
	Clear(ctx context.Context, sessionID string) error
	Items(ctx context.Context, sessionID string) ([]cart.LineView, error)
	Total(ctx context.Context, sessionID string) (decimal.Decimal, error)
	Len(ctx context.Context, sessionID string) (int, error)
}

type CartHandler struct {
	cart    CartService
	catalog CatalogService
	log     *logrus.Logger
}

func NewCartHandler(cartService CartService, catalogService CatalogService, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		cart:    cartService,
		catalog: catalogService,
		log:     log,
	}
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Override  bool  `json:"override"`
}

type cartResponse struct {
	Items     []cart.LineView `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r)
}

// AddItem handles POST /api/v1/cart/items. The quantity ceiling is a
// storefront rule enforced here, not in the cart itself.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if !product.IsAvailable || product.Stock == 0 {
		respondError(w, http.StatusConflict, "out_of_stock", "product is not available")
		return
	}

	ceiling := maxLineQuantity
	if product.Stock < ceiling {
		ceiling = product.Stock
	}
	if req.Quantity < 1 || req.Quantity > ceiling {
		respondError(w, http.StatusBadRequest, "invalid_quantity",
			fmt.Sprintf("quantity must be between 1 and %d", ceiling))
		return
	}

	if err := h.cart.Add(r.Context(), SessionID(r.Context()), req.ProductID, req.Quantity, req.Override); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondCart(w, r)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem handles PUT /api/v1/cart/items/{id}. The quantity replaces
// the stored one; the stored price snapshot is untouched.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ceiling := maxLineQuantity
	if product.Stock < ceiling {
		ceiling = product.Stock
	}
	if req.Quantity < 1 || req.Quantity > ceiling {
		respondError(w, http.StatusBadRequest, "invalid_quantity",
			fmt.Sprintf("quantity must be between 1 and %d", ceiling))
		return
	}

	if err := h.cart.Add(r.Context(), SessionID(r.Context()), id, req.Quantity, true); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondCart(w, r)
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}. Removing an absent
// line succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	if err := h.cart.Remove(r.Context(), SessionID(r.Context()), id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondCart(w, r)
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), SessionID(r.Context())); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{
		Items: []cart.LineView{},
		Total: decimal.Zero,
	})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r.Context())

	items, err := h.cart.Items(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	total, err := h.cart.Total(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	count, err := h.cart.Len(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{
		Items:     items,
		Total:     total,
		ItemCount: count,
	})
}
