package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devkarki/shopveda-backend/pkg/config"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
	"github.com/devkarki/shopveda-backend/pkg/metrics"
)

const responseBodyReadLimit int64 = 1 << 20

var errCredentialsRequired = errors.New("carrier email and password are required")

// Client wraps the carrier's REST API. Authorized calls take the bearer token
// explicitly; token acquisition and caching live in the Manager so a stale
// token can be replaced without touching the transport.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	password   string
	logger     *logger.Logger
	metrics    *metrics.CarrierMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured carrier base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMetrics attaches carrier call metrics.
func WithMetrics(m *metrics.CarrierMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the carrier client from configuration.
func NewClient(cfg config.CarrierConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Email) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, errCredentialsRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      strings.TrimSpace(cfg.Email),
		password:   strings.TrimSpace(cfg.Password),
		logger:     logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Login exchanges the static service credential for a bearer token.
func (c *Client) Login(ctx context.Context) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "auth/login", "", LoginRequest{Email: c.email, Password: c.password}, &resp, "login")
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeCarrier {
			// Login rejections map to the auth code so callers can tell
			// credential problems apart from shipment-content problems.
			return nil, pkgerrors.Wrap(pkgerrors.CodeCarrierAuth, typed.Unwrap(), "carrier login failed").WithDetails(typed.Details())
		}
		return nil, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeCarrierAuth, "carrier login returned no token")
	}
	return &resp, nil
}

// CreateShipment registers an adhoc shipment for a placed order.
func (c *Client) CreateShipment(ctx context.Context, token string, req CreateShipmentRequest) (*CreateShipmentResponse, error) {
	var resp CreateShipmentResponse
	if err := c.do(ctx, http.MethodPost, "orders/create/adhoc", token, req, &resp, "create_shipment"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssignCourier allocates a courier and AWB for an existing shipment.
func (c *Client) AssignCourier(ctx context.Context, token string, req AssignCourierRequest) (*AssignCourierResponse, error) {
	var resp AssignCourierResponse
	if err := c.do(ctx, http.MethodPost, "courier/assign/awb", token, req, &resp, "assign_courier"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeneratePickup schedules pickup for the shipment.
func (c *Client) GeneratePickup(ctx context.Context, token string, shipmentID int64) (*PickupResponse, error) {
	var resp PickupResponse
	if err := c.do(ctx, http.MethodPost, "courier/generate/pickup", token, PickupRequest{ShipmentID: []int64{shipmentID}}, &resp, "generate_pickup"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateManifest creates the manifest document for the shipment.
func (c *Client) GenerateManifest(ctx context.Context, token string, shipmentID int64) (*ManifestResponse, error) {
	var resp ManifestResponse
	if err := c.do(ctx, http.MethodPost, "manifests/generate", token, ManifestRequest{ShipmentID: []int64{shipmentID}}, &resp, "generate_manifest"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateLabel creates the shipping label document for the shipment.
func (c *Client) GenerateLabel(ctx context.Context, token string, shipmentID int64) (*LabelResponse, error) {
	var resp LabelResponse
	if err := c.do(ctx, http.MethodPost, "courier/generate/label", token, LabelRequest{ShipmentID: []int64{shipmentID}}, &resp, "generate_label"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PrintInvoice renders the invoice document for the carrier order.
func (c *Client) PrintInvoice(ctx context.Context, token string, carrierOrderID int64) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	if err := c.do(ctx, http.MethodPost, "orders/print/invoice", token, InvoiceRequest{IDs: []int64{carrierOrderID}}, &resp, "print_invoice"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Track fetches the latest tracking data for an AWB. Tracking is an
// idempotent read, so one bounded retry is allowed on transient failures;
// creation calls are never retried to avoid duplicate shipments.
func (c *Client) Track(ctx context.Context, token, awbCode string) (*TrackResponse, error) {
	path := "courier/track/awb/" + url.PathEscape(awbCode)

	var resp TrackResponse
	err := c.do(ctx, http.MethodGet, path, token, nil, &resp, "track")
	if err != nil && Classify(err) == ClassTransient {
		err = c.do(ctx, http.MethodGet, path, token, nil, &resp, "track")
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrders reads the carrier-side order listing.
func (c *Client) ListOrders(ctx context.Context, token string) (*ListOrdersResponse, error) {
	var resp ListOrdersResponse
	if err := c.do(ctx, http.MethodGet, "orders", token, nil, &resp, "list_orders"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload, dest any, operation string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode carrier request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build carrier request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, "transport_error", start)
		c.log(ctx, "error", operation, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("carrier %s failed", operation))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, responseBodyReadLimit))
	if err != nil {
		c.observe(operation, "transport_error", start)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read carrier %s response", operation))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		message := carrierMessage(raw)
		code := pkgerrors.CodeCarrier
		outcome := "carrier_error"
		if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
			code = pkgerrors.CodeCarrierAuth
			outcome = "auth_error"
		}
		c.observe(operation, outcome, start)
		c.log(ctx, "error", operation, map[string]any{
			"status":  httpResp.StatusCode,
			"message": message,
		})
		return pkgerrors.New(code, fmt.Sprintf("carrier %s failed", operation)).
			WithDetails(map[string]any{"status": httpResp.StatusCode, "message": message})
	}

	if dest != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, dest); err != nil {
			c.observe(operation, "carrier_error", start)
			return pkgerrors.Wrap(pkgerrors.CodeCarrier, err, fmt.Sprintf("decode carrier %s response", operation))
		}
	}

	c.observe(operation, "ok", start)
	c.log(ctx, "response", operation, nil)
	return nil
}

func (c *Client) observe(operation, outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveCall(operation, outcome, time.Since(start))
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("carrier %s", op), errors.New(fmt.Sprint(fields["message"], fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("carrier %s", phase))
	}
}

func carrierMessage(raw []byte) string {
	var payload apiError
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}
