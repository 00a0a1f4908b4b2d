// Package middleware applies per-IP rate limits to public endpoints.
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"academy/internal/ratelimit/metrics"
	"academy/internal/ratelimit/models"
	"academy/internal/ratelimit/observability"
	audit "academy/pkg/platform/audit"
	"academy/pkg/platform/httputil"
	"academy/pkg/requestcontext"
)

// RateLimiter decides whether a request from ip may proceed.
type RateLimiter interface {
	CheckIP(ctx context.Context, scope models.Scope, ip string) (*models.Result, bool, error)
}

type Middleware struct {
	limiter   RateLimiter
	logger    *slog.Logger
	publisher observability.AuditPublisher
	metrics   *metrics.Metrics
	disabled  bool
}

type Option func(*Middleware)

// WithDisabled turns rate limiting off (local development).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithAuditPublisher(p observability.AuditPublisher) Option {
	return func(m *Middleware) {
		m.publisher = p
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP within scope. Limiter errors let
// the request through.
func (m *Middleware) RateLimit(scope models.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, degraded, err := m.limiter.CheckIP(ctx, scope, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"ip_prefix", AnonymizeIP(ip),
					"error", err,
				)
				m.record(scope, metrics.DecisionFailOpen)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}

			if !result.Allowed {
				m.record(scope, metrics.DecisionDenied)
				observability.LogAudit(ctx, m.logger, m.publisher, audit.EventVerifyRateLimitExceeded,
					"ip_prefix", AnonymizeIP(ip),
					"scope", string(scope),
					"retry_after", result.RetryAfter,
				)
				writeRateLimitExceeded(w, result)
				return
			}

			m.record(scope, metrics.DecisionAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) record(scope models.Scope, decision string) {
	if m.metrics != nil {
		m.metrics.IncrementDecision(string(scope), decision)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many verification attempts. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}

// AnonymizeIP keeps the network part of an address for logs: the /24 of an
// IPv4 address or the /48 of an IPv6 address.
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return net.IP(v4.Mask(net.CIDRMask(24, 32))).String()
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String()
}
