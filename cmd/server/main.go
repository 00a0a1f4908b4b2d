package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"academy/internal/admin"
	cataloghandler "academy/internal/catalog/handler"
	catalogmetrics "academy/internal/catalog/metrics"
	catalogservice "academy/internal/catalog/service"
	catalogstore "academy/internal/catalog/store"
	certhandler "academy/internal/certificate/handler"
	"academy/internal/certificate/codegen"
	certmetrics "academy/internal/certificate/metrics"
	certservice "academy/internal/certificate/service"
	certstore "academy/internal/certificate/store"
	"academy/internal/platform/config"
	"academy/internal/platform/httpserver"
	"academy/internal/platform/kafka"
	"academy/internal/platform/logger"
	"academy/internal/platform/metrics"
	"academy/internal/platform/postgres"
	platformredis "academy/internal/platform/redis"
	ratelimitmetrics "academy/internal/ratelimit/metrics"
	ratelimit "academy/internal/ratelimit/middleware"
	"academy/internal/ratelimit/store/bucket"
	httptransport "academy/internal/transport/http"
	usermodels "academy/internal/users/models"
	userstore "academy/internal/users/store"
	verifyhandler "academy/internal/verification/handler"
	verifymetrics "academy/internal/verification/metrics"
	verifyservice "academy/internal/verification/service"
	id "academy/pkg/domain"
	audit "academy/pkg/platform/audit"
	"academy/pkg/platform/audit/publisher"
	auditkafka "academy/pkg/platform/audit/store/kafka"
	auditmemory "academy/pkg/platform/audit/store/memory"
	auditpostgres "academy/pkg/platform/audit/store/postgres"
	"academy/pkg/platform/circuit"
	"academy/pkg/platform/tx"
)

// userDirectory is what the services and admin lookups need from the users store.
type userDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*usermodels.User, error)
	Search(ctx context.Context, term string, limit int) ([]*usermodels.User, error)
}

// infra holds the backing stores for one run, in memory or Postgres.
type infra struct {
	catalog  catalogservice.Store
	certs    certservice.Store
	users    userDirectory
	runner   tx.Runner
	audit    publisher.Store
	limiter  ratelimit.BucketStore
	fallback bool
	checks   map[string]httptransport.HealthCheck
	closers  []func()
}

func (in *infra) close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

// main wires dependencies and runs the HTTP server until SIGINT or SIGTERM.
// Business logic lives in internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	sinks := []publisher.Option{publisher.WithLogger(log), publisher.WithAsyncBuffer(cfg.Audit.BufferSize)}
	kafkaSink, closeKafka, err := buildKafkaSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	if kafkaSink != nil {
		sinks = append(sinks, publisher.WithSink(kafkaSink))
		defer closeKafka()
	}
	if cfg.Audit.VerifiedSampleRate < 1 {
		sampler := publisher.NewSampler(1)
		sampler.SetRate(string(audit.EventCertificateVerified), cfg.Audit.VerifiedSampleRate)
		sinks = append(sinks, publisher.WithSampler(sampler))
	}
	events := publisher.NewPublisher(in.audit, sinks...)
	defer events.Close()

	catalog := catalogservice.New(in.catalog,
		catalogservice.WithLogger(log),
		catalogservice.WithAuditPublisher(events),
		catalogservice.WithMetrics(catalogmetrics.New()),
		catalogservice.WithTxRunner(in.runner),
		catalogservice.WithCertificatePurger(in.certs),
	)

	gen, err := codegen.New(cfg.Codes.Length)
	if err != nil {
		return fmt.Errorf("code generator: %w", err)
	}
	certificates := certservice.New(in.certs, in.users, catalog, gen,
		certservice.WithLogger(log),
		certservice.WithAuditPublisher(events),
		certservice.WithMetrics(certmetrics.New()),
		certservice.WithTxRunner(in.runner),
		certservice.WithMaxAttempts(cfg.Codes.MaxAttempts),
	)

	verification := verifyservice.New(in.certs, in.users, catalog,
		verifyservice.WithLogger(log),
		verifyservice.WithAuditPublisher(events),
		verifyservice.WithMetrics(verifymetrics.New()),
	)

	rlMetrics := ratelimitmetrics.New()
	limiterOpts := []ratelimit.LimiterOption{
		ratelimit.WithLimiterLogger(log),
		ratelimit.WithLimiterMetrics(rlMetrics),
	}
	if in.fallback {
		limiterOpts = append(limiterOpts, ratelimit.WithFallback(circuit.New("verify-ratelimit")))
	}
	limiter := ratelimit.New(
		ratelimit.NewLimiter(in.limiter, cfg.RateLimit.VerifyPerMinute, cfg.RateLimit.Window, limiterOpts...),
		log,
		ratelimit.WithAuditPublisher(events),
		ratelimit.WithMetrics(rlMetrics),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	)

	routerOpts := []httptransport.Option{
		httptransport.WithMetrics(metrics.New(), nil),
		httptransport.WithRateLimiter(limiter),
	}
	for name, check := range in.checks {
		routerOpts = append(routerOpts, httptransport.WithHealthCheck(name, check))
	}
	catalogHTTP := cataloghandler.New(catalog, log)
	router := httptransport.New(
		httptransport.Config{
			AdminToken:         cfg.Server.AdminAPIToken,
			CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
			RequestTimeout:     cfg.Server.RequestTimeout,
			TrustedProxies:     cfg.Server.TrustedProxies,
		},
		log,
		catalogHTTP,
		verifyhandler.New(verification, log),
		[]httptransport.AdminRoutes{
			catalogHTTP,
			certhandler.New(certificates, log),
			admin.New(in.users, events, log),
		},
		routerOpts...,
	)

	if cfg.Server.AdminAPIToken == "" {
		log.Warn("ADMIN_API_TOKEN is empty, admin routes will reject every request")
	}

	srv := httpserver.New(cfg.Server.Addr, router.Handler(), cfg.Server.RequestTimeout)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting academy", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildInfra picks Postgres when DATABASE_URL is set and in-memory stores
// otherwise, and Redis for the limiter when REDIS_URL is set.
func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{checks: map[string]httptransport.HealthCheck{}}

	if cfg.Database.URL == "" {
		users := userstore.New()
		userstore.SeedDemoUsers(ctx, users)
		in.catalog = catalogstore.New()
		in.certs = certstore.New()
		in.users = users
		in.runner = tx.NewLockRunner()
		in.audit = auditmemory.NewInMemoryStore()
		log.Info("using in-memory stores")
	} else {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			in.close()
			return nil, err
		}
		in.catalog = catalogstore.NewPostgres(db)
		in.certs = certstore.NewPostgres(db)
		in.users = userstore.NewPostgres(db)
		in.runner = tx.NewSQLRunner(db, cfg.Database.TxTimeout)
		in.audit = auditpostgres.New(db)
		in.checks["postgres"] = pinger(db)
		log.Info("using postgres stores")
	}

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	if client == nil {
		in.limiter = bucket.New()
		return in, nil
	}
	in.closers = append(in.closers, func() { _ = client.Close() })
	in.limiter = bucket.NewRedis(client.Client)
	in.fallback = true
	in.checks["redis"] = client.Health
	log.Info("using redis for verify rate limiting")
	return in, nil
}

func buildKafkaSink(ctx context.Context, cfg config.Config, log *slog.Logger) (*auditkafka.Store, func(), error) {
	client, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return nil, func() {}, nil
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("audit events mirrored to kafka", "topic", cfg.Kafka.AuditTopic)
	return auditkafka.New(client, cfg.Kafka.AuditTopic, auditkafka.WithLogger(log)), flusher(client), nil
}

func flusher(client *kgo.Client) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Flush(ctx)
		client.Close()
	}
}

func pinger(db *sql.DB) httptransport.HealthCheck {
	return db.PingContext
}
