package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/beanly/coffee-shop/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type OrderService interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListBySession(ctx context.Context, sessionKey string) ([]*domain.Order, error)
	ListAll(ctx context.Context, filter orders.ListFilter) ([]*domain.Order, error)
	Cancel(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	MarkPaid(ctx context.Context, id int64) error
}

type OrdersHandler struct {
	orders OrderService
	log    *logrus.Logger
}

func NewOrdersHandler(orderService OrderService, log *logrus.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orderService,
		log:    log,
	}
}

// ListOrders handles GET /api/v1/orders, scoped to the current session.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.ListBySession(r.Context(), SessionID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetOrder handles GET /api/v1/orders/{id}, scoped to the owning session.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.sessionOrder(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel. Only the owning
// session may cancel, and only before the order ships.
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.sessionOrder(w, r)
	if !ok {
		return
	}

	if err := h.orders.Cancel(r.Context(), order.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	updated, err := h.orders.Get(r.Context(), order.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// PayOrder handles POST /api/v1/orders/{id}/pay, scoped to the owning
// session.
func (h *OrdersHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.sessionOrder(w, r)
	if !ok {
		return
	}

	if err := h.orders.MarkPaid(r.Context(), order.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

// sessionOrder loads the order from the URL and verifies it belongs to
// the requesting session. Orders of other sessions read as not found
// rather than forbidden, so IDs cannot be enumerated.
func (h *OrdersHandler) sessionOrder(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	id, ok := orderID(w, r)
	if !ok {
		return nil, false
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}

	if order.SessionKey != SessionID(r.Context()) {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return nil, false
	}

	return order, true
}

// ListAllOrders handles GET /api/v1/admin/orders with an optional
// created-at range (from, to as RFC 3339 timestamps).
func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	var filter orders.ListFilter

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_range", "from must be an RFC 3339 timestamp")
			return
		}
		filter.From = &from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_range", "to must be an RFC 3339 timestamp")
			return
		}
		filter.To = &to
	}

	result, err := h.orders.ListAll(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListUserOrders handles GET /api/v1/admin/users/{id}/orders.
func (h *OrdersHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user id must be an integer")
		return
	}

	result, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type setStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// SetOrderStatus handles PUT /api/v1/admin/orders/{id}/status. Any valid
// status is accepted regardless of the order's current one; bulk admin
// updates do not walk the lifecycle.
func (h *OrdersHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if err := h.orders.SetStatus(r.Context(), id, req.Status); err != nil {
		handleServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"order_id": id,
		"status":   req.Status,
	}).Info("order status updated")

	respondJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be an integer")
		return 0, false
	}
	return id, true
}
