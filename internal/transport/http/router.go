package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vaxreg/internal/platform/health"
	"vaxreg/internal/registration/handler"
	"vaxreg/pkg/platform/middleware/admin"
	"vaxreg/pkg/platform/middleware/request"
	"vaxreg/pkg/validation"
)

// Config carries the cross-cutting settings of the HTTP surface.
type Config struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	AdminAPIToken  string
	TrustedProxies []netip.Prefix
	// Metrics records endpoint latency; nil disables it.
	Metrics *request.Metrics
	// Gatherer backs /metrics; nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
}

// NewRouter wires the public, operator and probe endpoints behind the shared middleware stack.
func NewRouter(cfg Config, registration *handler.Handler, probes *health.Handler) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientIP(cfg.TrustedProxies))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.LatencyMiddleware(cfg.Metrics))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	if probes != nil {
		probes.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	registration.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminAPIToken, cfg.Logger))
		registration.RegisterAdmin(r)
	})

	return r
}
