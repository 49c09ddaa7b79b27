package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"digipraman/internal/platform/metrics"
	"digipraman/internal/platform/middleware"
	"digipraman/pkg/platform/middleware/metadata"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig collects what the router mounts. Nil handlers are skipped.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         http.Handler
	RequireAuth    func(http.Handler) http.Handler
	RequestTimeout time.Duration
	Auth           Registrar
	Verification   Registrar
}

// NewRouter builds the public router. Verification routes need a bearer
// token; OTP login and health do not.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		if cfg.Health != nil {
			r.Method(http.MethodGet, "/health", cfg.Health)
		}
		if cfg.Auth != nil {
			cfg.Auth.Register(r)
		}
		if cfg.Verification != nil {
			r.Group(func(r chi.Router) {
				if cfg.RequireAuth != nil {
					r.Use(cfg.RequireAuth)
				}
				cfg.Verification.Register(r)
			})
		}
	})

	return r
}
