package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/db/models"
)

// terminalTrackingStatuses are carrier statuses after which polling stops.
var terminalTrackingStatuses = []string{"Delivered", "RTO Delivered", "Cancelled", "Lost"}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shipment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByAWB(ctx context.Context, awbCode string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("awb_code = ?", awbCode).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) SetCourier(ctx context.Context, id uuid.UUID, awbCode, courierName string, courierID *int) error {
	updates := map[string]any{
		"awb_code":     awbCode,
		"courier_name": courierName,
	}
	if courierID != nil {
		updates["courier_id"] = *courierID
	}
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SetPickupScheduled(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("pickup_scheduled_at", at).Error
}

func (r *repository) SetManifestURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("manifest_url", url).Error
}

func (r *repository) SetLabelURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("label_url", url).Error
}

func (r *repository) SetInvoiceURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("invoice_url", url).Error
}

func (r *repository) SetTrackingStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("tracking_status", status).Error
}

func (r *repository) ListTrackable(ctx context.Context, limit int) ([]models.Shipment, error) {
	var shipments []models.Shipment
	query := r.db.WithContext(ctx).
		Where("awb_code IS NOT NULL AND awb_code != ''").
		Where("tracking_status IS NULL OR tracking_status NOT IN ?", terminalTrackingStatuses).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}
