package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/beanly/coffee-shop/internal/checkout"
	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/sirupsen/logrus"
)

type CheckoutService interface {
	Checkout(ctx context.Context, sessionID string, customer checkout.Customer) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	log      *logrus.Logger
}

func NewCheckoutHandler(checkoutService CheckoutService, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		log:      log,
	}
}

type checkoutRequest struct {
	UserID     int64  `json:"user_id,omitempty"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Phone      string `json:"phone,omitempty"`
}

// Checkout handles POST /api/v1/checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "first_name, last_name and email are required")
		return
	}

	order, err := h.checkout.Checkout(r.Context(), SessionID(r.Context()), checkout.Customer{
		UserID:     req.UserID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
		Phone:      req.Phone,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"total":    order.TotalCost,
	}).Info("checkout completed")

	respondJSON(w, http.StatusCreated, order)
}
