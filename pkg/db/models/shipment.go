package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/pkg/enums"
	"github.com/devkarki/shopveda-backend/pkg/types"
)

// Shipment is the local record of a carrier shipment, 1:1 with an Order.
// CarrierShipmentID is set only once the carrier confirms creation; AWBCode
// is set only after a separate courier-assignment call succeeds. Those are
// two distinct transitions, never collapsed into one.
type Shipment struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`

	// Carrier-assigned identifiers; lifecycle calls arrive keyed by these.
	CarrierOrderID    int64   `gorm:"column:carrier_order_id;not null;index"`
	CarrierShipmentID int64   `gorm:"column:carrier_shipment_id;not null;uniqueIndex"`
	AWBCode           *string `gorm:"column:awb_code;index"`
	CourierID         *int    `gorm:"column:courier_id"`
	CourierName       *string `gorm:"column:courier_name"`

	PickupLocation string              `gorm:"column:pickup_location;not null;default:''"`
	PickupAddress  *types.Address      `gorm:"column:pickup_address;type:jsonb;serializer:json"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`

	// Document links stay null until the matching generate call succeeds.
	ManifestURL *string `gorm:"column:manifest_url"`
	LabelURL    *string `gorm:"column:label_url"`
	InvoiceURL  *string `gorm:"column:invoice_url"`

	// TrackingStatus is a free-text mirror of the carrier's latest status.
	TrackingStatus *string `gorm:"column:tracking_status"`

	PickupScheduledAt *time.Time `gorm:"column:pickup_scheduled_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
