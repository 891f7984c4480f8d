package inventory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/db"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  brand TEXT,
  images TEXT,
  price INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  sold_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(products).Error)

	// One pooled connection keeps every goroutine on the same in-memory
	// database; sqlite serializes the writes, the guard decides who wins.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int) uuid.UUID {
	t.Helper()

	product := &models.Product{
		ID:    uuid.New(),
		Name:  "Steel Bottle",
		Price: 500,
		Stock: stock,
	}
	require.NoError(t, conn.Create(product).Error)
	return product.ID
}

func productCounters(t *testing.T, conn *gorm.DB, id uuid.UUID) (stock, sold int) {
	t.Helper()

	var product models.Product
	require.NoError(t, conn.Where("id = ?", id).First(&product).Error)
	return product.Stock, product.SoldCount
}

func newTestReconciler(t *testing.T, conn *gorm.DB) *Reconciler {
	t.Helper()

	reconciler, err := NewReconciler(ReconcilerParams{
		DB:   db.FromGorm(conn),
		Repo: NewRepository(conn),
	})
	require.NoError(t, err)
	return reconciler
}

func TestDecrementStockMovesBothCounters(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := seedProduct(t, conn, 5)

	require.NoError(t, repo.DecrementStock(context.Background(), productID, 3))

	stock, sold := productCounters(t, conn, productID)
	assert.Equal(t, 2, stock)
	assert.Equal(t, 3, sold)
}

func TestDecrementStockRejectsShortage(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := seedProduct(t, conn, 2)

	err := repo.DecrementStock(context.Background(), productID, 3)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	stock, sold := productCounters(t, conn, productID)
	assert.Equal(t, 2, stock)
	assert.Equal(t, 0, sold)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	err := repo.DecrementStock(context.Background(), uuid.New(), 1)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
}

func TestDecrementStockExactBoundary(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := seedProduct(t, conn, 3)
	ctx := context.Background()

	require.NoError(t, repo.DecrementStock(ctx, productID, 3))

	stock, _ := productCounters(t, conn, productID)
	assert.Equal(t, 0, stock)

	err := repo.DecrementStock(ctx, productID, 1)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
}

func TestDecrementStockParallelOrdersNeverOversell(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)
	productID := seedProduct(t, conn, 3)

	const orders = 10
	var wg sync.WaitGroup
	var succeeded, short atomic.Int32
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.DecrementStock(context.Background(), productID, 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock):
				short.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded.Load(), "exactly the stocked quantity may sell")
	assert.Equal(t, int32(orders-3), short.Load())

	stock, sold := productCounters(t, conn, productID)
	assert.Equal(t, 0, stock)
	assert.Equal(t, 3, sold)
}

func TestReconcileAppliesAllItems(t *testing.T) {
	conn := setupInventoryTestDB(t)
	reconciler := newTestReconciler(t, conn)
	productA := seedProduct(t, conn, 5)
	productB := seedProduct(t, conn, 2)

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodCOD,
		Items: []models.OrderItem{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 2},
		},
	}
	require.NoError(t, reconciler.Reconcile(context.Background(), order))

	stockA, soldA := productCounters(t, conn, productA)
	assert.Equal(t, 3, stockA)
	assert.Equal(t, 2, soldA)
	stockB, soldB := productCounters(t, conn, productB)
	assert.Equal(t, 0, stockB)
	assert.Equal(t, 2, soldB)
}

func TestReconcileShortageRollsBackWholeOrder(t *testing.T) {
	conn := setupInventoryTestDB(t)
	reconciler := newTestReconciler(t, conn)
	productA := seedProduct(t, conn, 5)
	productB := seedProduct(t, conn, 1)

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodCOD,
		Items: []models.OrderItem{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 2},
		},
	}
	err := reconciler.Reconcile(context.Background(), order)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	stockA, soldA := productCounters(t, conn, productA)
	assert.Equal(t, 5, stockA, "successful decrement must roll back with the batch")
	assert.Equal(t, 0, soldA)
	stockB, _ := productCounters(t, conn, productB)
	assert.Equal(t, 1, stockB)
}

func TestReconcileCollectsEveryShortage(t *testing.T) {
	conn := setupInventoryTestDB(t)
	reconciler := newTestReconciler(t, conn)
	productA := seedProduct(t, conn, 0)
	productB := seedProduct(t, conn, 0)

	order := &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []models.OrderItem{
			{ProductID: productA, Quantity: 1},
			{ProductID: productB, Quantity: 1},
		},
	}
	err := reconciler.Reconcile(context.Background(), order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
}

func TestReconcileEmptyOrderIsNoop(t *testing.T) {
	conn := setupInventoryTestDB(t)
	reconciler := newTestReconciler(t, conn)

	require.NoError(t, reconciler.Reconcile(context.Background(), nil))
	require.NoError(t, reconciler.Reconcile(context.Background(), &models.Order{ID: uuid.New()}))
}
