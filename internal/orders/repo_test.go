package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	"github.com/devkarki/shopveda-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  external_payment_id TEXT,
  items_price INTEGER NOT NULL,
  tax_price INTEGER NOT NULL DEFAULT 0,
  shipping_price INTEGER NOT NULL DEFAULT 0,
  total_price INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'processing',
  tracking_number TEXT,
  needs_review INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`
	shipments := `
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  carrier_order_id INTEGER NOT NULL,
  carrier_shipment_id INTEGER NOT NULL,
  awb_code TEXT,
  courier_id INTEGER,
  courier_name TEXT,
  pickup_location TEXT NOT NULL DEFAULT '',
  pickup_address TEXT,
  payment_method TEXT NOT NULL,
  manifest_url TEXT,
  label_url TEXT,
  invoice_url TEXT,
  tracking_status TEXT,
  pickup_scheduled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{orders, orderItems, shipments} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		ShippingAddress: types.Address{
			Name:       "Asha Nair",
			Phone:      "9800012345",
			Line1:      "12 MG Road",
			City:       "Bengaluru",
			State:      "Karnataka",
			PostalCode: "560001",
			Country:    "India",
		},
		PaymentMethod: enums.PaymentMethodRazorpay,
		PaymentStatus: enums.PaymentStatusPending,
		ItemsPrice:    1000,
		TaxPrice:      180,
		ShippingPrice: 50,
		TotalPrice:    1230,
		Status:        enums.OrderStatusProcessing,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Steel Bottle", Price: 500, Quantity: 2},
		},
	}
	created, err := NewRepository(db).Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestCreateAndFindOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, enums.OrderStatusProcessing, found.Status)
	assert.Equal(t, 1230, found.TotalPrice)
	assert.Equal(t, "Bengaluru", found.ShippingAddress.City)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Steel Bottle", found.Items[0].Name)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Nil(t, found.Shipment)
}

func TestFindOrderPreloadsShipment(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db)

	shipment := &models.Shipment{
		ID:                uuid.New(),
		OrderID:           order.ID,
		CarrierOrderID:    101,
		CarrierShipmentID: 202,
		PaymentMethod:     enums.PaymentMethodRazorpay,
	}
	require.NoError(t, db.Create(shipment).Error)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Shipment)
	assert.Equal(t, int64(202), found.Shipment.CarrierShipmentID)
}

func TestUpdateStatusStampsDeliveredAt(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db)
	ctx := context.Background()

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped))
	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)
	assert.Nil(t, found.DeliveredAt)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered))
	found, err = repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, found.Status)
	assert.NotNil(t, found.DeliveredAt)
}

func TestSetTrackingNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db)
	ctx := context.Background()

	require.NoError(t, repo.SetTrackingNumber(ctx, order.ID, "AWB12345"))
	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.TrackingNumber)
	assert.Equal(t, "AWB12345", *found.TrackingNumber)
}

func TestSetNeedsReview(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db)
	ctx := context.Background()

	require.NoError(t, repo.SetNeedsReview(ctx, order.ID))
	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.NeedsReview)
}

func TestMarkPaidAndRefunded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db)
	ctx := context.Background()

	require.NoError(t, repo.MarkPaid(ctx, order.ID, "pay_XYZ"))
	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
	require.NotNil(t, found.ExternalPaymentID)
	assert.Equal(t, "pay_XYZ", *found.ExternalPaymentID)
	assert.NotNil(t, found.PaidAt)

	require.NoError(t, repo.MarkRefunded(ctx, order.ID))
	found, err = repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefunded, found.PaymentStatus)
	assert.Equal(t, enums.OrderStatusRefunded, found.Status)
}
