package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
)

// Repository handles shipment record persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
	FindByAWB(ctx context.Context, awbCode string) (*models.Shipment, error)
	SetCourier(ctx context.Context, id uuid.UUID, awbCode, courierName string, courierID *int) error
	SetPickupScheduled(ctx context.Context, id uuid.UUID, at time.Time) error
	SetManifestURL(ctx context.Context, id uuid.UUID, url string) error
	SetLabelURL(ctx context.Context, id uuid.UUID, url string) error
	SetInvoiceURL(ctx context.Context, id uuid.UUID, url string) error
	SetTrackingStatus(ctx context.Context, id uuid.UUID, status string) error
	ListTrackable(ctx context.Context, limit int) ([]models.Shipment, error)
}

// CarrierAPI is the slice of the carrier client the shipping service uses.
type CarrierAPI interface {
	CreateShipment(ctx context.Context, token string, req carrier.CreateShipmentRequest) (*carrier.CreateShipmentResponse, error)
	AssignCourier(ctx context.Context, token string, req carrier.AssignCourierRequest) (*carrier.AssignCourierResponse, error)
	GeneratePickup(ctx context.Context, token string, shipmentID int64) (*carrier.PickupResponse, error)
	GenerateManifest(ctx context.Context, token string, shipmentID int64) (*carrier.ManifestResponse, error)
	GenerateLabel(ctx context.Context, token string, shipmentID int64) (*carrier.LabelResponse, error)
	PrintInvoice(ctx context.Context, token string, carrierOrderID int64) (*carrier.InvoiceResponse, error)
	Track(ctx context.Context, token, awbCode string) (*carrier.TrackResponse, error)
	ListOrders(ctx context.Context, token string) (*carrier.ListOrdersResponse, error)
}

// TokenProvider hands out the carrier bearer token and drops it when a call
// reports it rejected.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// OrderWriter is the slice of the orders repository the shipping service
// needs to mirror carrier state back onto orders.
type OrderWriter interface {
	SetTrackingNumber(ctx context.Context, id uuid.UUID, awbCode string) error
}
