package controllers

import (
	"context"
	"net/http"

	"github.com/devkarki/shopveda-backend/api/responses"
	"github.com/devkarki/shopveda-backend/api/validators"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

// PaymentVerifier checks a gateway payment signature.
type PaymentVerifier interface {
	Verify(gatewayOrderID, paymentID, signature string) error
}

// PaymentOrderCreator opens a payment order at the gateway so the storefront
// can collect a prepaid payment against it.
type PaymentOrderCreator interface {
	CreateOrder(ctx context.Context, amountRupees int, receipt string) (string, error)
}

type verifyPaymentRequest struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	PaymentID      string `json:"payment_id" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

// VerifyPayment validates a prepaid payment proof without placing an order.
// The storefront calls it to confirm the gateway callback before submitting
// checkout.
func VerifyPayment(verifier PaymentVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if verifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment verifier unavailable"))
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := verifier.Verify(payload.GatewayOrderID, payload.PaymentID, payload.Signature); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"verified": true})
	}
}

type createPaymentOrderRequest struct {
	Amount  int    `json:"amount" validate:"required,gt=0"`
	Receipt string `json:"receipt" validate:"required,max=40"`
}

// CreatePaymentOrder opens a gateway order for the rupee amount so the
// storefront can start the prepaid flow.
func CreatePaymentOrder(gateway PaymentOrderCreator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway unavailable"))
			return
		}

		var payload createPaymentOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gatewayOrderID, err := gateway.CreateOrder(r.Context(), payload.Amount, payload.Receipt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"gateway_order_id": gatewayOrderID})
	}
}
