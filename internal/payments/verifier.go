package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/devkarki/shopveda-backend/pkg/config"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

// Verifier checks gateway payment signatures before an order is accepted
// as paid. Verification is pure computation; it never calls the gateway.
type Verifier struct {
	secret string
}

// NewVerifier builds a signature verifier from gateway configuration.
func NewVerifier(cfg config.RazorpayConfig) *Verifier {
	return &Verifier{secret: strings.TrimSpace(cfg.KeySecret)}
}

// Verify recomputes the expected signature for a gateway order/payment pair
// and compares it to the one the client supplied. The comparison is
// constant time so the check leaks nothing about the expected value.
func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) error {
	if v.secret == "" {
		return pkgerrors.New(pkgerrors.CodeConfig, "payment gateway secret is not configured")
	}
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return pkgerrors.New(pkgerrors.CodeSignatureMismatch, "payment signature verification failed")
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return pkgerrors.New(pkgerrors.CodeSignatureMismatch, "payment signature verification failed")
	}
	return nil
}
