package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/types"
)

type orderResponse struct {
	OrderID           uuid.UUID           `json:"order_id"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            string              `json:"status"`
	PaymentMethod     string              `json:"payment_method"`
	PaymentStatus     string              `json:"payment_status"`
	ExternalPaymentID *string             `json:"external_payment_id,omitempty"`
	ItemsPrice        int                 `json:"items_price"`
	TaxPrice          int                 `json:"tax_price"`
	ShippingPrice     int                 `json:"shipping_price"`
	TotalPrice        int                 `json:"total_price"`
	TrackingNumber    *string             `json:"tracking_number,omitempty"`
	NeedsReview       bool                `json:"needs_review,omitempty"`
	ShippingAddress   types.Address       `json:"shipping_address"`
	Items             []orderItemResponse `json:"items"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	DeliveredAt       *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     int       `json:"price"`
	Quantity  int       `json:"quantity"`
}

type shipmentResponse struct {
	ShipmentID        uuid.UUID  `json:"shipment_id"`
	OrderID           uuid.UUID  `json:"order_id"`
	CarrierOrderID    int64      `json:"carrier_order_id"`
	CarrierShipmentID int64      `json:"carrier_shipment_id"`
	AWBCode           *string    `json:"awb_code,omitempty"`
	CourierName       *string    `json:"courier_name,omitempty"`
	PickupLocation    string     `json:"pickup_location,omitempty"`
	ManifestURL       *string    `json:"manifest_url,omitempty"`
	LabelURL          *string    `json:"label_url,omitempty"`
	InvoiceURL        *string    `json:"invoice_url,omitempty"`
	TrackingStatus    *string    `json:"tracking_status,omitempty"`
	PickupScheduledAt *time.Time `json:"pickup_scheduled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return orderResponse{
		OrderID:           order.ID,
		UserID:            order.UserID,
		Status:            string(order.Status),
		PaymentMethod:     string(order.PaymentMethod),
		PaymentStatus:     string(order.PaymentStatus),
		ExternalPaymentID: order.ExternalPaymentID,
		ItemsPrice:        order.ItemsPrice,
		TaxPrice:          order.TaxPrice,
		ShippingPrice:     order.ShippingPrice,
		TotalPrice:        order.TotalPrice,
		TrackingNumber:    order.TrackingNumber,
		NeedsReview:       order.NeedsReview,
		ShippingAddress:   order.ShippingAddress,
		Items:             items,
		PaidAt:            order.PaidAt,
		DeliveredAt:       order.DeliveredAt,
		CreatedAt:         order.CreatedAt,
	}
}

func newShipmentResponse(shipment *models.Shipment) shipmentResponse {
	return shipmentResponse{
		ShipmentID:        shipment.ID,
		OrderID:           shipment.OrderID,
		CarrierOrderID:    shipment.CarrierOrderID,
		CarrierShipmentID: shipment.CarrierShipmentID,
		AWBCode:           shipment.AWBCode,
		CourierName:       shipment.CourierName,
		PickupLocation:    shipment.PickupLocation,
		ManifestURL:       shipment.ManifestURL,
		LabelURL:          shipment.LabelURL,
		InvoiceURL:        shipment.InvoiceURL,
		TrackingStatus:    shipment.TrackingStatus,
		PickupScheduledAt: shipment.PickupScheduledAt,
		CreatedAt:         shipment.CreatedAt,
	}
}
