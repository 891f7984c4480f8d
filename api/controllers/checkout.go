package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/devkarki/shopveda-backend/api/middleware"
	"github.com/devkarki/shopveda-backend/api/responses"
	"github.com/devkarki/shopveda-backend/api/validators"
	"github.com/devkarki/shopveda-backend/internal/fulfillment"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

// OrderPlacer runs the checkout sequence for one order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input fulfillment.PlaceOrderInput) (*fulfillment.PlaceOrderResult, error)
}

// Checkout places an order for the authenticated customer and runs the
// fulfillment sequence before responding.
func Checkout(orch OrderPlacer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if orch == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload fulfillment.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.UserID = userID

		result, err := orch.PlaceOrder(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type checkoutResponse struct {
	Order       orderResponse     `json:"order"`
	Shipment    *shipmentResponse `json:"shipment,omitempty"`
	State       string            `json:"state"`
	NeedsReview bool              `json:"needs_review,omitempty"`
}

func newCheckoutResponse(result *fulfillment.PlaceOrderResult) checkoutResponse {
	resp := checkoutResponse{
		State:       string(result.State),
		NeedsReview: result.NeedsReview,
	}
	if result.Order != nil {
		resp.Order = newOrderResponse(result.Order)
	}
	if result.Shipment != nil {
		shipment := newShipmentResponse(result.Shipment)
		resp.Shipment = &shipment
	}
	return resp
}
