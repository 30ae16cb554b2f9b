package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/beanly/coffee-shop/internal/catalog"
	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type ProductsHandler struct {
	catalog CatalogService
	log     *logrus.Logger
}

func NewProductsHandler(catalogService CatalogService, log *logrus.Logger) *ProductsHandler {
	return &ProductsHandler{
		catalog: catalogService,
		log:     log,
	}
}

// ListProducts handles GET /api/v1/products. Optional query parameters:
// category (slug), q (name search), available=true.
func (h *ProductsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ProductFilter{
		CategorySlug:  r.URL.Query().Get("category"),
		Search:        r.URL.Query().Get("q"),
		AvailableOnly: r.URL.Query().Get("available") == "true",
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// ListCategories handles GET /api/v1/categories.
func (h *ProductsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}
