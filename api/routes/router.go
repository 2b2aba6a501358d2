package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/twoflytrading/wholesale-backend/api/controllers"
	"github.com/twoflytrading/wholesale-backend/api/middleware"
	"github.com/twoflytrading/wholesale-backend/internal/catalog"
	"github.com/twoflytrading/wholesale-backend/internal/inventory"
	"github.com/twoflytrading/wholesale-backend/internal/orders"
	"github.com/twoflytrading/wholesale-backend/internal/reports"
	"github.com/twoflytrading/wholesale-backend/pkg/config"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
	"github.com/twoflytrading/wholesale-backend/pkg/metrics"
)

// Deps bundles everything the router mounts. The prometheus gatherer may be
// nil, in which case the metrics endpoint is skipped.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Pingers map[string]controllers.Pinger

	CatalogService   catalog.Service
	InventoryService inventory.Service
	OrdersService    orders.Service
	ReportsService   reports.Service

	OrderMetrics *metrics.OrderMetrics
	Gatherer     prometheus.Gatherer
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.OrdersService, deps.OrderMetrics, logg))
			r.Get("/", controllers.OrderList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
			r.Patch("/{orderId}", controllers.OrderUpdate(deps.OrdersService, deps.OrderMetrics, logg))
			r.Put("/{orderId}/items", controllers.OrderReplaceItems(deps.OrdersService, deps.OrderMetrics, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.CatalogService, logg))
			r.Get("/{sku}", controllers.ProductDetail(deps.CatalogService, logg))
			r.With(middleware.RequireOwner(logg)).Post("/", controllers.ProductCreate(deps.CatalogService, logg))
			r.With(middleware.RequireOwner(logg)).Patch("/{sku}", controllers.ProductUpdate(deps.CatalogService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/levels", controllers.InventoryLevels(deps.InventoryService, logg))
			r.Get("/movements", controllers.InventoryMovements(deps.InventoryService, logg))
			r.With(middleware.RequireOwner(logg)).Post("/adjust", controllers.InventoryAdjust(deps.InventoryService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/commission", controllers.CommissionReport(deps.ReportsService, logg))
			r.With(middleware.RequireOwner(logg)).Get("/dashboard", controllers.Dashboard(deps.ReportsService, logg))
			r.With(middleware.RequireOwner(logg)).Get("/profit/by-category", controllers.ProfitByCategory(deps.ReportsService, logg))
			r.With(middleware.RequireOwner(logg)).Get("/profit/by-channel", controllers.ProfitByChannel(deps.ReportsService, logg))
		})
	})

	return r
}
