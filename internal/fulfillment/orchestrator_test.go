package fulfillment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/internal/orders"
	"github.com/devkarki/shopveda-backend/pkg/config"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/types"
)

type stubOrderRepo struct {
	created       *models.Order
	flaggedReview bool
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.created != nil && s.created.ID == id {
		return s.created, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return nil
}

func (s *stubOrderRepo) SetTrackingNumber(ctx context.Context, id uuid.UUID, awbCode string) error {
	return nil
}

func (s *stubOrderRepo) SetNeedsReview(ctx context.Context, id uuid.UUID) error {
	s.flaggedReview = true
	return nil
}

func (s *stubOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, externalPaymentID string) error {
	return nil
}

func (s *stubOrderRepo) MarkRefunded(ctx context.Context, id uuid.UUID) error { return nil }

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[productID]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubVerifier struct {
	err   error
	calls int
}

func (s *stubVerifier) Verify(gatewayOrderID, paymentID, signature string) error {
	s.calls++
	return s.err
}

type stubProvisioner struct {
	shipment *models.Shipment
	err      error
	seen     *models.Order
}

func (s *stubProvisioner) Provision(ctx context.Context, order *models.Order) (*models.Shipment, error) {
	s.seen = order
	if s.err != nil {
		return nil, s.err
	}
	return s.shipment, nil
}

type stubReconciler struct {
	err  error
	seen *models.Order
}

func (s *stubReconciler) Reconcile(ctx context.Context, order *models.Order) error {
	s.seen = order
	return s.err
}

type fixture struct {
	repo        *stubOrderRepo
	products    *stubProducts
	verifier    *stubVerifier
	provisioner *stubProvisioner
	reconciler  *stubReconciler
	orch        *Orchestrator
	productID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	productID := uuid.New()
	f := &fixture{
		repo: &stubOrderRepo{},
		products: &stubProducts{products: map[uuid.UUID]*models.Product{
			productID: {ID: productID, Name: "Steel Bottle", Price: 500, Stock: 10, IsActive: true},
		}},
		verifier:    &stubVerifier{},
		provisioner: &stubProvisioner{shipment: &models.Shipment{ID: uuid.New(), CarrierShipmentID: 202}},
		reconciler:  &stubReconciler{},
		productID:   productID,
	}
	orch, err := NewOrchestrator(OrchestratorParams{
		Orders:      f.repo,
		Products:    f.products,
		Verifier:    f.verifier,
		Provisioner: f.provisioner,
		Reconciler:  f.reconciler,
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	f.orch = orch
	return f
}

func testAddress() types.Address {
	return types.Address{
		Name:       "Asha Nair",
		Phone:      "9800012345",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "India",
	}
}

func codInput(f *fixture, qty int) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:          uuid.New(),
		Items:           []PlaceOrderItem{{ProductID: f.productID, Quantity: qty}},
		ShippingAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCOD,
	}
}

func prepaidInput(f *fixture, qty int) PlaceOrderInput {
	input := codInput(f, qty)
	input.PaymentMethod = enums.PaymentMethodRazorpay
	input.Payment = &PrepaidPayment{
		GatewayOrderID: "order_ABC",
		PaymentID:      "pay_XYZ",
		Signature:      "sig",
	}
	return input
}

func TestPlaceOrderCODHappyPath(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.PlaceOrder(context.Background(), codInput(f, 2))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if result.State != StateComplete {
		t.Fatalf("expected complete, got %s", result.State)
	}
	if result.Order == nil || result.Shipment == nil {
		t.Fatal("expected order and shipment in result")
	}
	if f.verifier.calls != 0 {
		t.Fatal("cod orders must not hit the payment verifier")
	}

	order := f.repo.created
	if order.ItemsPrice != 1000 {
		t.Fatalf("expected items price 1000, got %d", order.ItemsPrice)
	}
	if order.TaxPrice != 180 {
		t.Fatalf("expected tax 180, got %d", order.TaxPrice)
	}
	if order.ShippingPrice != 0 {
		t.Fatalf("expected free shipping above threshold, got %d", order.ShippingPrice)
	}
	if order.TotalPrice != 1180 {
		t.Fatalf("expected total 1180, got %d", order.TotalPrice)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("cod order must start pending, got %s", order.PaymentStatus)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Steel Bottle" || order.Items[0].Price != 500 {
		t.Fatalf("unexpected snapshot %+v", order.Items)
	}
	if f.reconciler.seen == nil {
		t.Fatal("expected reconciliation to run")
	}
}

func TestPlaceOrderSmallOrderPaysShipping(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.PlaceOrder(context.Background(), codInput(f, 1))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if f.repo.created.ShippingPrice != 50 {
		t.Fatalf("expected flat shipping fee, got %d", f.repo.created.ShippingPrice)
	}
}

func TestPlaceOrderPrepaidVerifiesAndMarksPaid(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.PlaceOrder(context.Background(), prepaidInput(f, 2))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if f.verifier.calls != 1 {
		t.Fatalf("expected one verification, got %d", f.verifier.calls)
	}
	if result.Order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", result.Order.PaymentStatus)
	}
	if result.Order.ExternalPaymentID == nil || *result.Order.ExternalPaymentID != "pay_XYZ" {
		t.Fatalf("expected payment id snapshot, got %v", result.Order.ExternalPaymentID)
	}
}

func TestPlaceOrderPaymentRejectedPersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = pkgerrors.New(pkgerrors.CodeSignatureMismatch, "payment signature verification failed")

	result, err := f.orch.PlaceOrder(context.Background(), prepaidInput(f, 2))
	if !pkgerrors.HasCode(err, pkgerrors.CodeSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
	if result.State != StatePaymentRejected {
		t.Fatalf("expected payment_rejected, got %s", result.State)
	}
	if f.repo.created != nil {
		t.Fatal("no order may be persisted on payment rejection")
	}
	if f.provisioner.seen != nil {
		t.Fatal("provisioning must not run on payment rejection")
	}
}

func TestPlaceOrderProvisioningFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	f.provisioner.err = pkgerrors.New(pkgerrors.CodeCarrier, "carrier create_shipment failed")

	result, err := f.orch.PlaceOrder(context.Background(), codInput(f, 2))
	if !pkgerrors.HasCode(err, pkgerrors.CodeCarrier) {
		t.Fatalf("expected carrier error, got %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("expected failed, got %s", result.State)
	}
	if result.Order == nil || f.repo.created == nil {
		t.Fatal("order must survive a provisioning failure")
	}
	if f.reconciler.seen != nil {
		t.Fatal("reconciliation must not run after a provisioning failure")
	}
}

func TestPlaceOrderPricingKnobsOverrideDefaults(t *testing.T) {
	f := newFixture(t)
	orch, err := NewOrchestrator(OrchestratorParams{
		Orders:      f.repo,
		Products:    f.products,
		Verifier:    f.verifier,
		Provisioner: f.provisioner,
		Reconciler:  f.reconciler,
		Pricing: config.FulfillmentConfig{
			GSTRate:               0.05,
			FreeShippingThreshold: 2000,
			FlatShippingFee:       80,
		},
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	if _, err := orch.PlaceOrder(context.Background(), codInput(f, 2)); err != nil {
		t.Fatalf("place order: %v", err)
	}

	order := f.repo.created
	if order.TaxPrice != 50 {
		t.Fatalf("expected tax 50 at the 5%% rate, got %d", order.TaxPrice)
	}
	if order.ShippingPrice != 80 {
		t.Fatalf("expected the raised shipping fee below the raised threshold, got %d", order.ShippingPrice)
	}
	if order.TotalPrice != 1130 {
		t.Fatalf("expected total 1130, got %d", order.TotalPrice)
	}
}

func TestPlaceOrderReconciliationFailureFlagsReview(t *testing.T) {
	f := newFixture(t)
	f.reconciler.err = pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")

	result, err := f.orch.PlaceOrder(context.Background(), codInput(f, 2))
	if err != nil {
		t.Fatalf("reconciliation shortage must not fail the checkout: %v", err)
	}
	if result.State != StateProvisioned || !result.NeedsReview {
		t.Fatalf("expected provisioned+needs_review, got %s %v", result.State, result.NeedsReview)
	}
	if !f.repo.flaggedReview {
		t.Fatal("expected order flagged for review")
	}
	if result.Shipment == nil {
		t.Fatal("the provisioned shipment must survive the shortage")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input PlaceOrderInput
	}{
		{"no items", PlaceOrderInput{ShippingAddress: testAddress(), PaymentMethod: enums.PaymentMethodCOD}},
		{"zero quantity", PlaceOrderInput{
			Items:           []PlaceOrderItem{{ProductID: f.productID, Quantity: 0}},
			ShippingAddress: testAddress(),
			PaymentMethod:   enums.PaymentMethodCOD,
		}},
		{"missing address", PlaceOrderInput{
			Items:         []PlaceOrderItem{{ProductID: f.productID, Quantity: 1}},
			PaymentMethod: enums.PaymentMethodCOD,
		}},
		{"prepaid without proof", PlaceOrderInput{
			Items:           []PlaceOrderItem{{ProductID: f.productID, Quantity: 1}},
			ShippingAddress: testAddress(),
			PaymentMethod:   enums.PaymentMethodRazorpay,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orch.PlaceOrder(ctx, tc.input)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newFixture(t)
	input := codInput(f, 1)
	input.Items[0].ProductID = uuid.New()

	_, err := f.orch.PlaceOrder(context.Background(), input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlaceOrderInactiveProduct(t *testing.T) {
	f := newFixture(t)
	f.products.products[f.productID].IsActive = false

	_, err := f.orch.PlaceOrder(context.Background(), codInput(f, 1))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
