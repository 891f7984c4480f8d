package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/devkarki/shopveda-backend/pkg/config"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

var errGatewayKeysRequired = errors.New("razorpay key id and secret are required")

// gatewaySDK is the slice of the Razorpay SDK the gateway uses.
type gatewaySDK interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	RefundPayment(paymentID string, amount int, data map[string]interface{}) (map[string]interface{}, error)
}

type razorpaySDK struct {
	client *razorpay.Client
}

func (s *razorpaySDK) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return s.client.Order.Create(data, nil)
}

func (s *razorpaySDK) RefundPayment(paymentID string, amount int, data map[string]interface{}) (map[string]interface{}, error) {
	return s.client.Payment.Refund(paymentID, amount, data, nil)
}

// Gateway wraps the Razorpay SDK with error mapping and logging. Amounts
// cross this boundary in rupees and are converted to paise on the wire.
type Gateway struct {
	sdk    gatewaySDK
	logger *logger.Logger
}

// NewGateway validates the gateway credentials and builds the wrapper.
func NewGateway(cfg config.RazorpayConfig, logg *logger.Logger) (*Gateway, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errGatewayKeysRequired
	}
	return &Gateway{
		sdk:    &razorpaySDK{client: razorpay.NewClient(keyID, keySecret)},
		logger: logg,
	}, nil
}

// CreateOrder registers a gateway order for the given amount and returns the
// gateway order id the storefront embeds in its checkout widget.
func (g *Gateway) CreateOrder(ctx context.Context, amountRupees int, receipt string) (string, error) {
	if amountRupees <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	body, err := g.sdk.CreateOrder(map[string]interface{}{
		"amount":   amountRupees * 100,
		"currency": "INR",
		"receipt":  receipt,
	})
	if err != nil {
		g.log(ctx, "create_order", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway order creation failed")
	}

	id, _ := body["id"].(string)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "payment gateway returned no order id")
	}
	return id, nil
}

// Refund issues a full or partial refund against a captured payment and
// returns the gateway refund id.
func (g *Gateway) Refund(ctx context.Context, paymentID string, amountRupees int) (string, error) {
	if strings.TrimSpace(paymentID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	if amountRupees <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	body, err := g.sdk.RefundPayment(paymentID, amountRupees*100, map[string]interface{}{})
	if err != nil {
		g.log(ctx, "refund", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway refund failed")
	}

	id, _ := body["id"].(string)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "payment gateway returned no refund id")
	}
	return id, nil
}

func (g *Gateway) log(ctx context.Context, op string, err error) {
	if g.logger == nil {
		return
	}
	g.logger.Error(ctx, fmt.Sprintf("razorpay %s failed", op), err)
}
