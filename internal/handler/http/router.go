package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sergio-nezhigay/images-creator/pkg/health"
	"github.com/sergio-nezhigay/images-creator/pkg/middleware"

	"github.com/sergio-nezhigay/images-creator/internal/service"
)

// NewRouter creates a chi router with all pipeline routes registered.
func NewRouter(
	resolver *service.Resolver,
	builder *service.Builder,
	orchestrator *service.Orchestrator,
	healthHandler *health.Handler,
	corsCfg middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing("images-creator"))
	r.Use(middleware.PrometheusMetrics("images-creator"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	handler := NewBundleHandler(resolver, builder, orchestrator, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/bundles/images", Probe("bundle images endpoint"))
		r.Post("/bundles/images", handler.FetchBundleImages)

		r.Get("/images/combine", Probe("image combine endpoint"))
		r.Post("/images/combine", handler.CombineImages)

		r.Get("/products/image", Probe("product image endpoint"))
		r.Post("/products/image", handler.UpdateProductImage)

		r.Get("/bundles/update", Probe("bundle update endpoint"))
		r.Post("/bundles/update", handler.UpdateBundles)
	})

	return r
}
