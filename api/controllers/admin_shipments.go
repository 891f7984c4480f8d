package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/api/responses"
	"github.com/devkarki/shopveda-backend/api/validators"
	"github.com/devkarki/shopveda-backend/internal/shipping"
	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

// ShipmentService is the slice of the shipping service the admin surface needs.
type ShipmentService interface {
	AssignCourier(ctx context.Context, shipmentID uuid.UUID, courierID *int) (*shipping.CourierAssignment, error)
	SchedulePickup(ctx context.Context, shipmentID uuid.UUID) (*carrier.PickupResponse, error)
	GenerateManifest(ctx context.Context, shipmentID uuid.UUID) (string, error)
	GenerateLabel(ctx context.Context, shipmentID uuid.UUID) (string, error)
	PrintInvoice(ctx context.Context, shipmentID uuid.UUID) (string, error)
	Track(ctx context.Context, awbCode string) (string, error)
	ListCarrierOrders(ctx context.Context) ([]carrier.CarrierOrder, error)
	ListTrackable(ctx context.Context, limit int) ([]models.Shipment, error)
}

func shipmentIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "shipmentID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipment id").WithDetails(map[string]any{"shipment_id": raw})
	}
	return id, nil
}

type assignCourierRequest struct {
	CourierID *int `json:"courier_id,omitempty" validate:"omitempty,gt=0"`
}

// AssignCourier allocates a courier and AWB for the shipment.
func AssignCourier(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := shipmentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := assignCourierRequest{}
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		assignment, err := svc.AssignCourier(r.Context(), shipmentID, payload.CourierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assignment)
	}
}

// SchedulePickup books the carrier pickup for the shipment.
func SchedulePickup(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := shipmentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.SchedulePickup(r.Context(), shipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"pickup_scheduled_date": pickup.Response.PickupScheduledDate,
			"pickup_token_number":   pickup.Response.PickupTokenNumber,
		})
	}
}

func documentHandler(generate func(context.Context, uuid.UUID) (string, error), key string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := shipmentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := generate(r.Context(), shipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{key: url})
	}
}

// GenerateManifest produces the carrier manifest document for the shipment.
func GenerateManifest(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return documentHandler(svc.GenerateManifest, "manifest_url", logg)
}

// GenerateLabel produces the shipping label for the shipment.
func GenerateLabel(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return documentHandler(svc.GenerateLabel, "label_url", logg)
}

// PrintInvoice produces the carrier invoice document for the shipment.
func PrintInvoice(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return documentHandler(svc.PrintInvoice, "invoice_url", logg)
}

// TrackShipment fetches the carrier's latest status for the AWB.
func TrackShipment(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		awb := strings.TrimSpace(chi.URLParam(r, "awb"))
		if awb == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "awb code required"))
			return
		}

		status, err := svc.Track(r.Context(), awb)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"awb_code": awb, "tracking_status": status})
	}
}

// ListCarrierOrders mirrors the carrier-side order listing for reconciliation.
func ListCarrierOrders(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carrierOrders, err := svc.ListCarrierOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"orders": carrierOrders})
	}
}

// ListTrackableShipments returns shipments still in flight, oldest first.
func ListTrackableShipments(svc ShipmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipments, err := svc.ListTrackable(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]shipmentResponse, 0, len(shipments))
		for i := range shipments {
			out = append(out, newShipmentResponse(&shipments[i]))
		}
		responses.WriteSuccess(w, map[string]any{"shipments": out})
	}
}
