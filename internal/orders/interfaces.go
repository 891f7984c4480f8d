package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
)

// Repository handles order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	SetTrackingNumber(ctx context.Context, id uuid.UUID, awbCode string) error
	SetNeedsReview(ctx context.Context, id uuid.UUID) error
	MarkPaid(ctx context.Context, id uuid.UUID, externalPaymentID string) error
	MarkRefunded(ctx context.Context, id uuid.UUID) error
}

// RefundGateway issues refunds against the payment provider.
type RefundGateway interface {
	Refund(ctx context.Context, paymentID string, amountRupees int) (string, error)
}
