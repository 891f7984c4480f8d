package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devkarki/shopveda-backend/pkg/config"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.CarrierConfig{
		BaseURL:  srv.URL,
		Email:    "ops@shopveda.in",
		Password: "secret",
		Timeout:  time.Second,
	}
	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.CarrierConfig{BaseURL: "http://localhost"}, nil)
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if body.Email != "ops@shopveda.in" || body.Password != "secret" {
			t.Fatalf("unexpected credentials %+v", body)
		}
		json.NewEncoder(w).Encode(LoginResponse{Token: "tok-abc"})
	}))

	resp, err := client.Login(context.Background())
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok-abc" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestLoginRejectionMapsToAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))

	_, err := client.Login(context.Background())
	if !pkgerrors.HasCode(err, pkgerrors.CodeCarrierAuth) {
		t.Fatalf("expected carrier auth code, got %v", err)
	}
}

func TestLoginEmptyTokenRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(LoginResponse{})
	}))

	_, err := client.Login(context.Background())
	if !pkgerrors.HasCode(err, pkgerrors.CodeCarrierAuth) {
		t.Fatalf("expected carrier auth code for empty token, got %v", err)
	}
}

func TestCreateShipmentSendsBearerToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/create/adhoc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-abc" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		json.NewEncoder(w).Encode(CreateShipmentResponse{OrderID: 101, ShipmentID: 202, Status: "NEW"})
	}))

	resp, err := client.CreateShipment(context.Background(), "tok-abc", CreateShipmentRequest{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if resp.OrderID != 101 || resp.ShipmentID != 202 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Wrong number of segments"})
	}))

	_, err := client.CreateShipment(context.Background(), "stale", CreateShipmentRequest{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeCarrierAuth) {
		t.Fatalf("expected carrier auth code, got %v", err)
	}
	if got := Classify(err); got != ClassAuthExpired {
		t.Fatalf("expected auth_expired classification, got %s", got)
	}
}

func TestCarrierErrorCarriesStatusAndMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid pickup postcode"})
	}))

	_, err := client.AssignCourier(context.Background(), "tok", AssignCourierRequest{ShipmentID: 202})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeCarrier {
		t.Fatalf("expected carrier code, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["status"] != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status detail %v", details["status"])
	}
	if details["message"] != "Invalid pickup postcode" {
		t.Fatalf("unexpected message detail %v", details["message"])
	}
}

func TestTrackRetriesOnceOnTransientFailure(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"tracking_data":{"shipment_track":[{"current_status":"In Transit"}]}}`))
	}))

	resp, err := client.Track(context.Background(), "tok", "AWB123")
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
	if got := resp.CurrentStatus(); got != "In Transit" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestTrackDoesNotRetryPermanentFailure(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "AWB not found"})
	}))

	_, err := client.Track(context.Background(), "tok", "AWB404")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected no retry on permanent failure, got %d calls", calls)
	}
}

func TestGenerateDocumentsHitExpectedPaths(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status":       true,
			"manifest_url": "https://docs/manifest.pdf",
			"label_url":    "https://docs/label.pdf",
			"invoice_url":  "https://docs/invoice.pdf",
		})
	}))

	ctx := context.Background()
	if _, err := client.GeneratePickup(ctx, "tok", 202); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if _, err := client.GenerateManifest(ctx, "tok", 202); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if _, err := client.GenerateLabel(ctx, "tok", 202); err != nil {
		t.Fatalf("label: %v", err)
	}
	if _, err := client.PrintInvoice(ctx, "tok", 101); err != nil {
		t.Fatalf("invoice: %v", err)
	}

	want := []string{
		"/courier/generate/pickup",
		"/manifests/generate",
		"/courier/generate/label",
		"/orders/print/invoice",
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("call %d hit %s, want %s", i, paths[i], want[i])
		}
	}
}
