package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/internal/orders"
	"github.com/devkarki/shopveda-backend/pkg/config"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
	"github.com/devkarki/shopveda-backend/pkg/metrics"
)

// Standard rates used when the pricing config leaves a knob unset.
const (
	defaultGSTRate               = 0.18
	defaultFreeShippingThreshold = 1000
	defaultFlatShippingFee       = 50
)

// ProductReader loads catalog products for the order snapshot.
type ProductReader interface {
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

// PaymentVerifier checks a prepaid payment's gateway signature.
type PaymentVerifier interface {
	Verify(gatewayOrderID, paymentID, signature string) error
}

// ShipmentProvisioner registers the carrier shipment for a persisted order.
type ShipmentProvisioner interface {
	Provision(ctx context.Context, order *models.Order) (*models.Shipment, error)
}

// StockReconciler applies the order's line items to the stock counters.
type StockReconciler interface {
	Reconcile(ctx context.Context, order *models.Order) error
}

// OrchestratorParams groups dependencies for the fulfillment orchestrator.
type OrchestratorParams struct {
	Orders      orders.Repository
	Products    ProductReader
	Verifier    PaymentVerifier
	Provisioner ShipmentProvisioner
	Reconciler  StockReconciler
	Pricing     config.FulfillmentConfig
	Metrics     *metrics.FulfillmentMetrics
	Logger      *logger.Logger
}

// Orchestrator runs the checkout state machine: verify payment (prepaid),
// persist the order, provision the shipment, reconcile stock. Steps run in
// strict sequence; the order row survives any later failure.
type Orchestrator struct {
	orders      orders.Repository
	products    ProductReader
	verifier    PaymentVerifier
	provisioner ShipmentProvisioner
	reconciler  StockReconciler
	pricing     config.FulfillmentConfig
	metrics     *metrics.FulfillmentMetrics
	logger      *logger.Logger
}

// NewOrchestrator builds a fulfillment orchestrator.
func NewOrchestrator(params OrchestratorParams) (*Orchestrator, error) {
	if params.Orders == nil {
		return nil, errors.New("orders repo is required")
	}
	if params.Products == nil {
		return nil, errors.New("product reader is required")
	}
	if params.Verifier == nil {
		return nil, errors.New("payment verifier is required")
	}
	if params.Provisioner == nil {
		return nil, errors.New("provisioner is required")
	}
	if params.Reconciler == nil {
		return nil, errors.New("reconciler is required")
	}
	pricing := params.Pricing
	if pricing.GSTRate == 0 {
		pricing.GSTRate = defaultGSTRate
	}
	if pricing.FreeShippingThreshold == 0 {
		pricing.FreeShippingThreshold = defaultFreeShippingThreshold
	}
	if pricing.FlatShippingFee == 0 {
		pricing.FlatShippingFee = defaultFlatShippingFee
	}
	return &Orchestrator{
		orders:      params.Orders,
		products:    params.Products,
		verifier:    params.Verifier,
		provisioner: params.Provisioner,
		reconciler:  params.Reconciler,
		pricing:     pricing,
		metrics:     params.Metrics,
		logger:      params.Logger,
	}, nil
}

// PlaceOrder drives one checkout end to end.
//
// Payment rejection happens before anything is persisted. The order row is
// written before provisioning so a carrier failure leaves a recoverable
// order behind, never a lost one. A reconciliation shortage after the
// shipment exists does not cancel the shipment; the order is flagged for
// manual review instead.
func (o *Orchestrator) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := o.validate(input); err != nil {
		o.observe("rejected")
		return nil, err
	}

	if input.PaymentMethod.IsPrepaid() {
		if err := o.verifier.Verify(input.Payment.GatewayOrderID, input.Payment.PaymentID, input.Payment.Signature); err != nil {
			o.observe("payment_rejected")
			return &PlaceOrderResult{State: StatePaymentRejected}, err
		}
	}

	order, err := o.buildOrder(ctx, input)
	if err != nil {
		o.observe("rejected")
		return nil, err
	}
	if _, err := o.orders.Create(ctx, order); err != nil {
		o.observe("rejected")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}

	logCtx := ctx
	if o.logger != nil {
		logCtx = o.logger.WithOrderID(ctx, order.ID.String())
		o.logger.Info(logCtx, "order created")
	}
	result := &PlaceOrderResult{Order: order, State: StateCreated}

	shipment, err := o.provisioner.Provision(ctx, order)
	if err != nil {
		o.observe("provisioning_failed")
		if o.logger != nil {
			o.logger.Error(logCtx, "shipment provisioning failed", err)
		}
		result.State = StateFailed
		return result, err
	}
	order.Shipment = shipment
	result.Shipment = shipment
	result.State = StateProvisioned
	if shipment.AWBCode != nil {
		order.TrackingNumber = shipment.AWBCode
	}

	if err := o.reconciler.Reconcile(ctx, order); err != nil {
		// The shipment is already registered with the carrier; there is
		// no compensating cancel. Flag the order and let an operator
		// settle the stock by hand.
		if flagErr := o.orders.SetNeedsReview(ctx, order.ID); flagErr != nil && o.logger != nil {
			o.logger.Error(logCtx, "flag order for review", flagErr)
		}
		if o.logger != nil {
			o.logger.Warn(logCtx, fmt.Sprintf("stock reconciliation failed, order flagged: %v", err))
		}
		o.observe("needs_review")
		order.NeedsReview = true
		result.NeedsReview = true
		return result, nil
	}
	result.State = StateComplete

	o.observe("complete")
	if o.logger != nil {
		o.logger.Info(logCtx, "order fulfilled")
	}
	return result, nil
}

func (o *Orchestrator) validate(input PlaceOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if missing := input.ShippingAddress.Validate(); missing != "" {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("shipping address is missing %s", missing))
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}
	if input.PaymentMethod.IsPrepaid() && input.Payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "prepaid orders require payment proof")
	}
	return nil
}

// buildOrder snapshots catalog prices and names into the order. Totals come
// from the snapshot, so later catalog edits never change a placed order.
func (o *Orchestrator) buildOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(input.Items))
	itemsPrice := 0
	for _, line := range input.Items {
		product, err := o.products.FindProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not found", line.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not available", line.ProductID))
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     image,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
		itemsPrice += product.Price * line.Quantity
	}

	// The tax amount is the one money figure that picks up a fraction, so
	// it is computed exactly and truncated to whole rupees at the end.
	taxPrice := int(decimal.NewFromInt(int64(itemsPrice)).
		Mul(decimal.NewFromFloat(o.pricing.GSTRate)).
		IntPart())
	shippingPrice := o.pricing.FlatShippingFee
	if itemsPrice >= o.pricing.FreeShippingThreshold {
		shippingPrice = 0
	}

	order := &models.Order{
		UserID:          input.UserID,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   enums.PaymentStatusPending,
		ItemsPrice:      itemsPrice,
		TaxPrice:        taxPrice,
		ShippingPrice:   shippingPrice,
		TotalPrice:      itemsPrice + taxPrice + shippingPrice,
		Status:          enums.OrderStatusProcessing,
		Items:           items,
	}
	if input.PaymentMethod.IsPrepaid() {
		paymentID := input.Payment.PaymentID
		paidAt := time.Now().UTC()
		order.PaymentStatus = enums.PaymentStatusPaid
		order.ExternalPaymentID = &paymentID
		order.PaidAt = &paidAt
	}
	return order, nil
}

func (o *Orchestrator) observe(outcome string) {
	if o.metrics != nil {
		o.metrics.ObserveOrder(outcome)
	}
}
