package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

// allowedTransitions lists the status moves the admin endpoint may perform.
// Refunds go through Refund, never through a raw status update.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo    Repository
	Gateway RefundGateway
	Logger  *logger.Logger
}

// Service exposes the admin-facing order operations.
type Service struct {
	repo    Repository
	gateway RefundGateway
	logger  *logger.Logger
}

// NewService builds an orders service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{
		repo:    params.Repo,
		gateway: params.Gateway,
		logger:  params.Logger,
	}, nil
}

// GetOrder loads an order with its line items and shipment record.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Terminal states never
// transition again and refunded is reachable only via Refund.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() || next == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", next))
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(order.Status, next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if s.logger != nil {
		ctx = s.logger.WithOrderID(ctx, orderID.String())
		s.logger.Info(ctx, fmt.Sprintf("order status %s -> %s", order.Status, next))
	}

	order.Status = next
	return order, nil
}

// Refund issues a gateway refund for a paid prepaid order and flips the
// order to refunded. COD orders carry no captured payment to refund.
func (s *Service) Refund(ctx context.Context, orderID uuid.UUID) (string, error) {
	if s.gateway == nil {
		return "", pkgerrors.New(pkgerrors.CodeConfig, "refund gateway is not configured")
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order payment is not in a refundable state")
	}
	if order.ExternalPaymentID == nil || *order.ExternalPaymentID == "" {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order has no captured gateway payment")
	}

	refundID, err := s.gateway.Refund(ctx, *order.ExternalPaymentID, order.TotalPrice)
	if err != nil {
		return "", err
	}

	if err := s.repo.MarkRefunded(ctx, orderID); err != nil {
		// The money moved but the record did not; flag the order rather
		// than leaving the mismatch silent.
		if flagErr := s.repo.SetNeedsReview(ctx, orderID); flagErr != nil && s.logger != nil {
			s.logger.Error(ctx, "flag order for review after refund persistence failure", flagErr)
		}
		return refundID, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record refund")
	}

	if s.logger != nil {
		ctx = s.logger.WithOrderID(ctx, orderID.String())
		s.logger.Info(ctx, "order refunded")
	}
	return refundID, nil
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
