package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/api/handler"
	apimw "github.com/tokenstd/revert-registry/internal/api/middleware"
	"github.com/tokenstd/revert-registry/internal/config"
	"github.com/tokenstd/revert-registry/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.RegistryService,
	cfg *config.Config,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Correlation-ID"},
		ExposedHeaders: []string{"X-Correlation-ID"},
		MaxAge:         300,
	}).Handler)

	// --- handler instances ---
	dh := handler.NewDeclarationHandler(svc, logger)
	lh := handler.NewLintHandler(svc, logger)
	sh := handler.NewStatsHandler(svc)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.Throttle(cfg.RateLimit))

		r.Post("/check", dh.Check)

		// Declarations — note: /batch must be registered before /{name}
		// so chi does not treat the literal string "batch" as a name.
		r.Post("/declarations/batch", dh.RegisterBatch)
		r.Post("/declarations", dh.Register)
		r.Get("/declarations", dh.List)
		r.Get("/declarations/{name}", dh.GetByName)

		r.Get("/selectors/{selector}", dh.LookupSelector)
		r.Get("/catalog", dh.Catalog)

		// Lint jobs
		r.Post("/jobs", lh.Submit)
		r.Get("/jobs/{id}", lh.GetByID)
		r.Delete("/jobs/{id}", lh.Cancel)

		// JSON operational snapshot
		r.Get("/stats", sh.GetStats)
	})

	return r
}
