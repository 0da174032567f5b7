package di

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"datagraph-backend/internal/config"
	"datagraph-backend/internal/handlers"
	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Category *handlers.CategoryHandler
	Dataset  *handlers.DatasetHandler
	Tree     *handlers.TreeHandler
	Health   *handlers.HealthHandler
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	collector *observability.Collector,
	authn *middleware.Authenticator,
	h Handlers,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - applied to all routes
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger.Named("http")))
	r.Use(middleware.Recovery(logger))
	if cfg.Tracing.Enabled {
		r.Use(observability.TracingMiddleware(cfg.Tracing.ServiceName))
	}
	if cfg.Metrics.Enabled {
		r.Use(observability.MetricsMiddleware(collector))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout, logger))

	// Operational routes
	r.Get("/health", h.Health.Check)
	r.Get("/ready", h.Health.Ready)
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, collector.Handler())
	}

	prefix := cfg.Server.PathPrefix
	if prefix == "" {
		prefix = "/"
	}
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", h.Health.Banner)

		// Dataset ingestion also accepts service tokens.
		r.With(authn.AllowService).Post("/dataset/create", h.Dataset.CreateDataset)

		r.Group(func(r chi.Router) {
			r.Use(authn.Require)

			r.Get("/all", h.Tree.GetTree)

			r.Get("/categories", h.Category.ListCategories)
			r.Post("/category/create", h.Category.CreateCategory)
			r.Delete("/category/delete", h.Category.DeleteCategory)

			r.Get("/dataset", h.Dataset.GetDataset)
			r.Put("/dataset/update", h.Dataset.UpdateDataset)
			r.Delete("/dataset/delete", h.Dataset.DeleteDataset)

			r.Get("/datasets", h.Dataset.ListUserDatasets)
			r.Get("/datasets/all", h.Dataset.ListAllDatasets)
		})
	})

	return r
}
