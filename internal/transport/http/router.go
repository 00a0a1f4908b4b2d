// Package httptransport assembles the chi router: the shared middleware
// chain, the public catalog and verification routes, the token-gated admin
// surface, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"academy/internal/platform/metrics"
	platformmw "academy/internal/platform/middleware"
	"academy/internal/ratelimit/models"
	"academy/pkg/platform/httputil"
	"academy/pkg/platform/middleware/admin"
	"academy/pkg/platform/middleware/metadata"
	"academy/pkg/platform/middleware/requesttime"
)

// PublicRoutes registers visitor-facing routes.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// AdminRoutes registers routes under the /admin gate.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// VerifyRoutes registers the public verification endpoint.
type VerifyRoutes interface {
	Register(r chi.Router)
}

// RateLimiter wraps handlers with a per-IP limit for a scope.
type RateLimiter interface {
	RateLimit(scope models.Scope) func(http.Handler) http.Handler
}

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

// Config holds router settings. TrustedProxies lists the networks whose
// forwarding headers identify the client; empty means the socket peer.
type Config struct {
	AdminToken         string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	TrustedProxies     []netip.Prefix
}

type Router struct {
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	limiter  RateLimiter
	checks   map[string]HealthCheck

	catalog      PublicRoutes
	verification VerifyRoutes
	admin        []AdminRoutes
}

type Option func(*Router)

// WithMetrics records HTTP latency into m and serves g on /metrics. A nil
// g keeps the default gatherer.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(r *Router) {
		r.metrics = m
		if g != nil {
			r.gatherer = g
		}
	}
}

func WithRateLimiter(l RateLimiter) Option {
	return func(r *Router) {
		r.limiter = l
	}
}

// WithHealthCheck adds a dependency checked by /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(r *Router) {
		if check != nil {
			r.checks[name] = check
		}
	}
}

func New(cfg Config, logger *slog.Logger, catalog PublicRoutes, verification VerifyRoutes, adminRoutes []AdminRoutes, opts ...Option) *Router {
	r := &Router{
		cfg:          cfg,
		logger:       logger,
		gatherer:     prometheus.DefaultGatherer,
		checks:       map[string]HealthCheck{},
		catalog:      catalog,
		verification: verification,
		admin:        adminRoutes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handler builds the http.Handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(platformmw.RequestID)
	r.Use(platformmw.Recovery(rt.logger))
	r.Use(metadata.NewResolver(rt.cfg.TrustedProxies).Middleware)
	r.Use(requesttime.Middleware)
	r.Use(platformmw.Logger(rt.logger))
	r.Use(platformmw.Latency(rt.metrics))
	r.Use(platformmw.CORS(rt.cfg.CORSAllowedOrigins))
	r.Use(platformmw.Timeout(rt.cfg.RequestTimeout))

	r.Get("/healthz", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))

	rt.catalog.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(rt.limiter.RateLimit(models.ScopeVerify))
		}
		rt.verification.Register(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(rt.cfg.AdminToken, rt.logger))
		for _, routes := range rt.admin {
			routes.RegisterAdmin(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK
	for name, check := range rt.checks {
		if err := check(ctx); err != nil {
			rt.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}
