package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devkarki/shopveda-backend/api/controllers"
	"github.com/devkarki/shopveda-backend/api/middleware"
	"github.com/devkarki/shopveda-backend/pkg/config"
	"github.com/devkarki/shopveda-backend/pkg/db"
	"github.com/devkarki/shopveda-backend/pkg/enums"
	"github.com/devkarki/shopveda-backend/pkg/logger"
	"github.com/devkarki/shopveda-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Orchestrator    controllers.OrderPlacer
	Verifier        controllers.PaymentVerifier
	Gateway         controllers.PaymentOrderCreator
	Orders          controllers.OrderService
	Shipments       controllers.ShipmentService
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.With(middleware.RateLimit(checkoutPolicy, deps.Redis, logg)).
			Post("/checkout", controllers.Checkout(deps.Orchestrator, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/order", controllers.CreatePaymentOrder(deps.Gateway, logg))
			r.Post("/verify", controllers.VerifyPayment(deps.Verifier, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.GetOrder(deps.Orders, logg))
			r.Patch("/status", controllers.UpdateOrderStatus(deps.Orders, logg))
			r.Post("/refund", controllers.RefundOrder(deps.Orders, logg))
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/trackable", controllers.ListTrackableShipments(deps.Shipments, logg))
			r.Get("/carrier-orders", controllers.ListCarrierOrders(deps.Shipments, logg))
			r.Get("/track/{awb}", controllers.TrackShipment(deps.Shipments, logg))

			r.Route("/{shipmentID}", func(r chi.Router) {
				r.Post("/courier", controllers.AssignCourier(deps.Shipments, logg))
				r.Post("/pickup", controllers.SchedulePickup(deps.Shipments, logg))
				r.Post("/manifest", controllers.GenerateManifest(deps.Shipments, logg))
				r.Post("/label", controllers.GenerateLabel(deps.Shipments, logg))
				r.Post("/invoice", controllers.PrintInvoice(deps.Shipments, logg))
			})
		})
	})

	return r
}
