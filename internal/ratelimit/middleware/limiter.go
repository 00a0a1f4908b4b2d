package middleware

import (
	"context"
	"log/slog"
	"time"

	"academy/internal/ratelimit/metrics"
	"academy/internal/ratelimit/models"
	"academy/internal/ratelimit/store/bucket"
	"academy/pkg/platform/circuit"
)

// BucketStore is a sliding-window counter.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Limiter checks per-IP limits against a primary store. With a fallback
// configured, a run of primary failures opens the circuit and decisions come
// from the in-memory fallback until the primary recovers.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type LimiterOption func(*Limiter)

// WithFallback serves decisions from an in-memory store while the primary is failing.
func WithFallback(breaker *circuit.Breaker) LimiterOption {
	return func(l *Limiter) {
		l.breaker = breaker
		l.fallback = bucket.New()
	}
}

func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func NewLimiter(primary BucketStore, limit int, window time.Duration, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary: primary,
		limit:   limit,
		window:  window,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckIP records one request from ip in scope. degraded reports that the
// decision came from the fallback store.
func (l *Limiter) CheckIP(ctx context.Context, scope models.Scope, ip string) (result *models.Result, degraded bool, err error) {
	key := models.IPKey(scope, ip)
	res, err := l.primary.Allow(ctx, key, l.limit, l.window)
	if l.breaker == nil {
		return res, false, err
	}

	if err != nil {
		if l.metrics != nil {
			l.metrics.IncrementStoreError()
		}
		useFallback, change := l.breaker.RecordFailure()
		l.onChange(ctx, change, err)
		if !useFallback {
			return nil, false, err
		}
		res, err = l.fallback.Allow(ctx, key, l.limit, l.window)
		return res, true, err
	}

	usePrimary, change := l.breaker.RecordSuccess()
	l.onChange(ctx, change, nil)
	if usePrimary {
		return res, false, nil
	}
	res, err = l.fallback.Allow(ctx, key, l.limit, l.window)
	return res, true, err
}

func (l *Limiter) onChange(ctx context.Context, change circuit.StateChange, cause error) {
	switch {
	case change.Opened:
		l.logger.WarnContext(ctx, "rate limit store circuit opened, using in-memory fallback",
			"breaker", l.breaker.Name(),
			"error", cause,
		)
	case change.Closed:
		l.logger.InfoContext(ctx, "rate limit store circuit closed", "breaker", l.breaker.Name())
	default:
		return
	}
	if l.metrics != nil {
		l.metrics.SetCircuitOpen(change.Opened)
	}
}
