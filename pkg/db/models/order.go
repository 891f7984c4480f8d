package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/pkg/enums"
	"github.com/devkarki/shopveda-backend/pkg/types"
)

// Order is one checkout. Line items and the shipping address are snapshots
// owned by the order; they are never re-joined against the live catalog.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	// ExternalPaymentID is the gateway's payment identifier for prepaid orders.
	ExternalPaymentID *string           `gorm:"column:external_payment_id"`
	ItemsPrice        int               `gorm:"column:items_price;not null"`
	TaxPrice          int               `gorm:"column:tax_price;not null;default:0"`
	ShippingPrice     int               `gorm:"column:shipping_price;not null;default:0"`
	TotalPrice        int               `gorm:"column:total_price;not null"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'processing'"`
	// TrackingNumber mirrors the carrier AWB once a courier is assigned.
	TrackingNumber *string     `gorm:"column:tracking_number"`
	NeedsReview    bool        `gorm:"column:needs_review;not null;default:false"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipment       *Shipment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt         *time.Time  `gorm:"column:paid_at"`
	DeliveredAt    *time.Time  `gorm:"column:delivered_at"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
