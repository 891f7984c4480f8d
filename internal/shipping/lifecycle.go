package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

// CourierAssignment is the result of allocating a courier to a shipment.
type CourierAssignment struct {
	AWBCode     string `json:"awb_code"`
	CourierName string `json:"courier_name"`
}

// AssignCourier allocates a courier and AWB for the shipment and mirrors
// both onto the shipment record and the order's tracking number. The AWB is
// a second transition, distinct from shipment creation.
func (s *Service) AssignCourier(ctx context.Context, shipmentID uuid.UUID, courierID *int) (*CourierAssignment, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, wrapNotFound(err, "shipment")
	}

	req := carrier.AssignCourierRequest{ShipmentID: shipment.CarrierShipmentID}
	if courierID != nil {
		req.CourierID = *courierID
	}

	var resp *carrier.AssignCourierResponse
	err = s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.AssignCourier(ctx, token, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	awb := resp.Response.Data.AWBCode
	if awb == "" {
		return nil, pkgerrors.New(pkgerrors.CodeCarrier, "carrier assigned no awb")
	}
	courierName := resp.Response.Data.CourierName

	var assignedCourierID *int
	if resp.Response.Data.CourierID != 0 {
		id := resp.Response.Data.CourierID
		assignedCourierID = &id
	}
	if err := s.repo.SetCourier(ctx, shipmentID, awb, courierName, assignedCourierID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record courier assignment")
	}
	if s.orders != nil {
		if err := s.orders.SetTrackingNumber(ctx, shipment.OrderID, awb); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write tracking number to order")
		}
	}

	return &CourierAssignment{AWBCode: awb, CourierName: courierName}, nil
}

// SchedulePickup asks the carrier to schedule pickup for the shipment.
func (s *Service) SchedulePickup(ctx context.Context, shipmentID uuid.UUID) (*carrier.PickupResponse, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, wrapNotFound(err, "shipment")
	}

	var resp *carrier.PickupResponse
	err = s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.GeneratePickup(ctx, token, shipment.CarrierShipmentID)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	scheduledAt := time.Now().UTC()
	if parsed, parseErr := time.Parse(time.DateOnly, resp.Response.PickupScheduledDate); parseErr == nil {
		scheduledAt = parsed
	}
	if err := s.repo.SetPickupScheduled(ctx, shipmentID, scheduledAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record pickup schedule")
	}
	return resp, nil
}

// GenerateManifest creates the manifest document and stores its link.
func (s *Service) GenerateManifest(ctx context.Context, shipmentID uuid.UUID) (string, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return "", wrapNotFound(err, "shipment")
	}

	var resp *carrier.ManifestResponse
	err = s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.GenerateManifest(ctx, token, shipment.CarrierShipmentID)
		return callErr
	})
	if err != nil {
		return "", err
	}
	if resp.ManifestURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeCarrier, "carrier returned no manifest link")
	}

	if err := s.repo.SetManifestURL(ctx, shipmentID, resp.ManifestURL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record manifest link")
	}
	return resp.ManifestURL, nil
}

// GenerateLabel creates the shipping label and stores its link.
func (s *Service) GenerateLabel(ctx context.Context, shipmentID uuid.UUID) (string, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return "", wrapNotFound(err, "shipment")
	}

	var resp *carrier.LabelResponse
	err = s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.GenerateLabel(ctx, token, shipment.CarrierShipmentID)
		return callErr
	})
	if err != nil {
		return "", err
	}
	if resp.LabelURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeCarrier, "carrier returned no label link")
	}

	if err := s.repo.SetLabelURL(ctx, shipmentID, resp.LabelURL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record label link")
	}
	return resp.LabelURL, nil
}

// PrintInvoice renders the carrier invoice and stores its link. Invoices are
// keyed by the carrier order id rather than the shipment id.
func (s *Service) PrintInvoice(ctx context.Context, shipmentID uuid.UUID) (string, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return "", wrapNotFound(err, "shipment")
	}

	var resp *carrier.InvoiceResponse
	err = s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.PrintInvoice(ctx, token, shipment.CarrierOrderID)
		return callErr
	})
	if err != nil {
		return "", err
	}
	if resp.InvoiceURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeCarrier, "carrier returned no invoice link")
	}

	if err := s.repo.SetInvoiceURL(ctx, shipmentID, resp.InvoiceURL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record invoice link")
	}
	return resp.InvoiceURL, nil
}

// Track reads the carrier's latest status for an AWB and mirrors it onto
// the shipment record. The read is idempotent, so a token rejection gets
// one re-login and retry before the failure surfaces.
func (s *Service) Track(ctx context.Context, awbCode string) (string, error) {
	shipment, err := s.repo.FindByAWB(ctx, awbCode)
	if err != nil {
		return "", wrapNotFound(err, "shipment")
	}

	var resp *carrier.TrackResponse
	err = s.carrierRead(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.Track(ctx, token, awbCode)
		return callErr
	})
	if err != nil {
		return "", err
	}

	status := resp.CurrentStatus()
	if status != "" {
		if err := s.repo.SetTrackingStatus(ctx, shipment.ID, status); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record tracking status")
		}
	}
	return status, nil
}

// ListCarrierOrders reads the carrier-side order listing for admin review.
func (s *Service) ListCarrierOrders(ctx context.Context) ([]carrier.CarrierOrder, error) {
	var resp *carrier.ListOrdersResponse
	err := s.carrierCall(ctx, func(token string) error {
		var callErr error
		resp, callErr = s.carrier.ListOrders(ctx, token)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListTrackable exposes shipments the tracking worker should poll.
func (s *Service) ListTrackable(ctx context.Context, limit int) ([]models.Shipment, error) {
	return s.repo.ListTrackable(ctx, limit)
}
