package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tawreed/tawreed/internal/inventory"
	"github.com/tawreed/tawreed/internal/invoices"
	"github.com/tawreed/tawreed/internal/observability"
	"github.com/tawreed/tawreed/internal/orders"
	"github.com/tawreed/tawreed/internal/partners"
	"github.com/tawreed/tawreed/internal/payments"
	"github.com/tawreed/tawreed/internal/quotes"
	"github.com/tawreed/tawreed/internal/rates"
	"github.com/tawreed/tawreed/internal/shipments"
	"github.com/tawreed/tawreed/internal/users"
	"github.com/tawreed/tawreed/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	RatesHandler     *rates.Handler
	QuotesHandler    *quotes.Handler
	ShipmentsHandler *shipments.Handler
	InventoryHandler *inventory.Handler
	OrdersHandler    *orders.Handler
	InvoicesHandler  *invoices.Handler
	PartnersHandler  *partners.Handler
	UsersHandler     *users.Handler
	PaymentsHandler  *payments.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Tawreed defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/rates", params.RatesHandler.MountRoutes)
		r.Route("/quotes", params.QuotesHandler.MountRoutes)
		r.Route("/shipments", params.ShipmentsHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/invoices", params.InvoicesHandler.MountRoutes)
		r.Route("/partners", params.PartnersHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
