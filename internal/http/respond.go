package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beanly/coffee-shop/internal/cart"
	"github.com/beanly/coffee-shop/internal/catalog"
	"github.com/beanly/coffee-shop/internal/checkout"
	"github.com/beanly/coffee-shop/internal/orders"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain sentinel errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, "category_not_found", "category not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
	case errors.Is(err, orders.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", "order cannot be cancelled in its current status")
	case errors.Is(err, orders.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
	default:
		logrus.Errorf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
