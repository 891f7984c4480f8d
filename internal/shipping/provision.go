package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

const (
	// defaultHSN is the placeholder commodity code the carrier accepts when
	// the catalog carries none.
	defaultHSN = 441122

	carrierPaymentCOD     = "COD"
	carrierPaymentPrepaid = "Prepaid"
)

// Provision registers a carrier shipment for a persisted order and stores
// the resulting shipment record. The order itself is never rolled back on
// failure; a failed provisioning leaves an inspectable order behind.
func (s *Service) Provision(ctx context.Context, order *models.Order) (*models.Shipment, error) {
	if order == nil || len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no line items to ship")
	}
	if missing := order.ShippingAddress.Validate(); missing != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("shipping address is missing %s", missing))
	}

	req := s.buildCreateRequest(order)

	var resp *carrier.CreateShipmentResponse
	err := s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.CreateShipment(ctx, token, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	// A 2xx with no shipment id is still a failure: every lifecycle call
	// downstream is keyed by it, so nothing gets persisted.
	if resp.ShipmentID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeCarrier, "carrier accepted order but returned no shipment id").
			WithDetails(map[string]any{"carrier_order_id": resp.OrderID, "status": resp.Status})
	}

	shipment := &models.Shipment{
		OrderID:           order.ID,
		CarrierOrderID:    resp.OrderID,
		CarrierShipmentID: resp.ShipmentID,
		PickupLocation:    s.cfg.PickupLocation,
		PickupAddress:     &order.ShippingAddress,
		PaymentMethod:     order.PaymentMethod,
	}
	if resp.AWBCode != "" {
		awb := resp.AWBCode
		shipment.AWBCode = &awb
	}
	if resp.CourierName != "" {
		name := resp.CourierName
		shipment.CourierName = &name
	}
	if resp.ManifestURL != "" {
		link := resp.ManifestURL
		shipment.ManifestURL = &link
	}
	if resp.LabelURL != "" {
		link := resp.LabelURL
		shipment.LabelURL = &link
	}
	if resp.InvoiceURL != "" {
		link := resp.InvoiceURL
		shipment.InvoiceURL = &link
	}

	created, err := s.repo.Create(ctx, shipment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist shipment record")
	}

	if created.AWBCode != nil && s.orders != nil {
		if err := s.orders.SetTrackingNumber(ctx, order.ID, *created.AWBCode); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write tracking number to order")
		}
	}

	if s.logger != nil {
		logCtx := s.logger.WithOrderID(ctx, order.ID.String())
		logCtx = s.logger.WithShipmentID(logCtx, created.ID.String())
		s.logger.Info(logCtx, "shipment provisioned")
	}
	return created, nil
}

// buildCreateRequest maps the order snapshot into the carrier payload.
// Missing item fields are defaulted; the sub-total comes from the order's
// own line items, never re-read from the catalog.
func (s *Service) buildCreateRequest(order *models.Order) carrier.CreateShipmentRequest {
	items := make([]carrier.ShipmentItem, 0, len(order.Items))
	subTotal := decimal.Zero
	for _, item := range order.Items {
		name := item.Name
		if name == "" {
			name = "Item"
		}
		items = append(items, carrier.ShipmentItem{
			Name:         name,
			SKU:          item.ProductID.String(),
			Units:        item.Quantity,
			SellingPrice: item.Price,
			HSN:          defaultHSN,
		})
		subTotal = subTotal.Add(decimal.NewFromInt(int64(item.Price)).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	paymentMethod := carrierPaymentPrepaid
	if !order.PaymentMethod.IsPrepaid() {
		paymentMethod = carrierPaymentCOD
	}

	addr := order.ShippingAddress
	return carrier.CreateShipmentRequest{
		OrderID:           order.ID.String(),
		OrderDate:         order.CreatedAt.UTC().Format(time.DateOnly),
		PickupLocation:    s.cfg.PickupLocation,
		BillingName:       addr.Name,
		BillingAddress:    strings.TrimSpace(addr.Line1 + " " + addr.Line2),
		BillingCity:       addr.City,
		BillingPincode:    addr.PostalCode,
		BillingState:      addr.State,
		BillingCountry:    addr.Country,
		BillingEmail:      addr.Email,
		BillingPhone:      addr.Phone,
		ShippingIsBilling: true,
		OrderItems:        items,
		PaymentMethod:     paymentMethod,
		SubTotal:          subTotal.InexactFloat64(),
		Length:            s.cfg.DefaultLengthCM,
		Breadth:           s.cfg.DefaultBreadthCM,
		Height:            s.cfg.DefaultHeightCM,
		Weight:            s.cfg.DefaultWeightKG,
	}
}
