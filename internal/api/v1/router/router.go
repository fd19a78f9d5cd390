package router

import (
	"net/http"
	"path/filepath"

	"github.com/catalogomaker/backend/internal/api/v1/handler"
	"github.com/catalogomaker/backend/internal/auth"
	"github.com/catalogomaker/backend/internal/idempotency"
	"github.com/catalogomaker/backend/internal/metrics"
	"github.com/catalogomaker/backend/internal/middleware"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Deps are the constructed services the HTTP surface delegates to.
type Deps struct {
	Accounts   service.AccountService
	Catalogs   service.CatalogService
	Orders     service.OrderService
	Billing    service.BillingGateway
	Reconciler handler.BillingEventApplier
	Ledger     idempotency.Ledger
	Verifier   auth.TokenVerifier
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	// DocsDir holds swagger.json and the swagger-ui directory.
	DocsDir string
}

const defaultDocsDir = "./docs/swagger"

func New(deps Deps, logger zerolog.Logger) http.Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	authMiddleware := middleware.RequireIdentity(deps.Verifier, logger)

	accountHandler := handler.NewAccountHandler(deps.Accounts, validate, logger)
	catalogHandler := handler.NewCatalogHandler(deps.Catalogs, validate, logger)
	orderHandler := handler.NewOrderHandler(deps.Orders, validate, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(deps.Billing, deps.Reconciler, deps.Ledger, validate, logger)
	healthHandler := handler.NewHealthHandler(logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.LoggerMiddleware(logger, deps.Metrics))

	healthHandler.RegisterRoutes(r)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger documentation
	docsDir := deps.DocsDir
	if docsDir == "" {
		docsDir = defaultDocsDir
	}
	r.Get("/swagger/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(docsDir, "swagger.json"))
	})
	r.Handle("/swagger/*", http.StripPrefix("/swagger/", http.FileServer(http.Dir(filepath.Join(docsDir, "swagger-ui")))))

	accountHandler.RegisterRoutes(r, authMiddleware)
	catalogHandler.RegisterRoutes(r, authMiddleware)
	orderHandler.RegisterRoutes(r)
	subscriptionHandler.RegisterRoutes(r, authMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
