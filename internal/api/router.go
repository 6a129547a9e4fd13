package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Ranker/internal/config"
	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/sortconfig"
)

func NewRouter(ranker *scoring.Ranker, configs *sortconfig.Store, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Instrument(m))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	rank := NewRankHandler(ranker, configs, m, cfg.Scoring.MaxCandidates, logger)
	sorting := NewConfigsHandler(configs, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rank", rank.Rank)
		r.Post("/explain", rank.Explain)
		r.Post("/weights/adjust", rank.AdjustWeights)

		r.Route("/sorting-configs", func(r chi.Router) {
			r.Get("/", sorting.List)
			r.Get("/active", sorting.Active)
			r.Post("/validate", sorting.Validate)
			r.Get("/{id}", sorting.Get)

			r.Group(func(r chi.Router) {
				r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
				r.Post("/", sorting.Create)
				r.Post("/revert", sorting.Revert)
				r.Post("/{id}/apply", sorting.Apply)
				r.Delete("/{id}", sorting.Delete)
			})
		})
	})

	return r
}

func NewMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
