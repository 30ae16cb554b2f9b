package orders

import (
	"context"
	"errors"

	"github.com/beanly/coffee-shop/internal/domain"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("order cannot be cancelled in its current status")
)

type Service struct {
	repo OrderRepository
	log  *logrus.Logger
}

func NewService(repo OrderRepository, log *logrus.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

func (s *Service) ListBySession(ctx context.Context, sessionKey string) ([]*domain.Order, error) {
	return s.repo.ListOrdersBySession(ctx, sessionKey)
}

func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

// Cancel moves an order to CANCELLED if it has not shipped yet.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.Status.CanCancel() {
		return ErrIllegalTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.OrderStatusCancelled); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": id,
		"from":     order.Status,
	}).Info("order cancelled")
	return nil
}

// SetStatus is the admin path. It checks enum membership only; bulk admin
// actions may move an order to any valid status without path checking.
func (s *Service) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	if err := s.repo.SetPaid(ctx, id); err != nil {
		return err
	}
	s.log.WithField("order_id", id).Info("order marked as paid")
	return nil
}
