package fulfillment

import (
	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	"github.com/devkarki/shopveda-backend/pkg/types"
)

// PlaceOrderItem selects a catalog product and quantity; the priced snapshot
// is taken server-side at order time.
type PlaceOrderItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PrepaidPayment carries the gateway's proof of payment for prepaid orders.
type PrepaidPayment struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	PaymentID      string `json:"payment_id" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	UserID          uuid.UUID           `json:"-"`
	Items           []PlaceOrderItem    `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.Address       `json:"shipping_address" validate:"required"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	Payment         *PrepaidPayment     `json:"payment,omitempty"`
}

// State names how far the fulfillment run got. A run that provisioned its
// shipment but could not settle stock stays at StateProvisioned with the
// review flag set.
type State string

const (
	StateCreated         State = "created"
	StateProvisioned     State = "provisioned"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
	StatePaymentRejected State = "payment_rejected"
)

// PlaceOrderResult is the orchestration outcome. Order is set as soon as the
// order row exists, even when a later step failed.
type PlaceOrderResult struct {
	Order    *models.Order    `json:"order"`
	Shipment *models.Shipment `json:"shipment,omitempty"`
	State    State            `json:"state"`
	// NeedsReview is set when stock reconciliation failed after the
	// shipment was already provisioned.
	NeedsReview bool `json:"needs_review,omitempty"`
}
