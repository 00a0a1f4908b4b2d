package httptransport_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/admin"
	cataloghandler "academy/internal/catalog/handler"
	catalogservice "academy/internal/catalog/service"
	catalogstore "academy/internal/catalog/store"
	certhandler "academy/internal/certificate/handler"
	"academy/internal/certificate/codegen"
	certservice "academy/internal/certificate/service"
	certstore "academy/internal/certificate/store"
	"academy/internal/platform/metrics"
	ratelimit "academy/internal/ratelimit/middleware"
	"academy/internal/ratelimit/store/bucket"
	httptransport "academy/internal/transport/http"
	usermodels "academy/internal/users/models"
	userstore "academy/internal/users/store"
	verifyhandler "academy/internal/verification/handler"
	verifyservice "academy/internal/verification/service"
	"academy/pkg/platform/audit/publisher"
	auditmemory "academy/pkg/platform/audit/store/memory"
	"academy/pkg/platform/tx"
	"academy/pkg/testutil"
)

const adminToken = "router-test-token"

type app struct {
	handler http.Handler
	ada     *usermodels.User
}

func newApp(t *testing.T, verifyLimit int, opts ...httptransport.Option) *app {
	t.Helper()
	return newAppWithConfig(t, httptransport.Config{AdminToken: adminToken, RequestTimeout: 5 * time.Second}, verifyLimit, opts...)
}

func newAppWithConfig(t *testing.T, cfg httptransport.Config, verifyLimit int, opts ...httptransport.Option) *app {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := tx.NewLockRunner()
	events := publisher.NewPublisher(auditmemory.NewInMemoryStore())

	users := userstore.New()
	ada := userstore.SeedDemoUsers(ctx, users)[0]
	certs := certstore.New()
	catalog := catalogservice.New(catalogstore.New(),
		catalogservice.WithTxRunner(runner),
		catalogservice.WithCertificatePurger(certs),
		catalogservice.WithAuditPublisher(events),
	)
	gen, err := codegen.New(codegen.DefaultLength)
	require.NoError(t, err)
	certificates := certservice.New(certs, users, catalog, gen,
		certservice.WithTxRunner(runner),
		certservice.WithAuditPublisher(events),
	)
	verification := verifyservice.New(certs, users, catalog, verifyservice.WithAuditPublisher(events))

	limiter := ratelimit.New(ratelimit.NewLimiter(bucket.New(), verifyLimit, time.Minute), logger,
		ratelimit.WithAuditPublisher(events),
	)

	reg := prometheus.NewRegistry()
	opts = append([]httptransport.Option{
		httptransport.WithMetrics(metrics.NewWith(reg), reg),
		httptransport.WithRateLimiter(limiter),
	}, opts...)
	router := httptransport.New(
		cfg,
		logger,
		cataloghandler.New(catalog, logger),
		verifyhandler.New(verification, logger),
		[]httptransport.AdminRoutes{
			cataloghandler.New(catalog, logger),
			certhandler.New(certificates, logger),
			admin.New(users, events, logger),
		},
		opts...,
	)
	return &app{handler: router.Handler(), ada: ada}
}

func (a *app) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(a.handler, req)
}

func TestIssueThenVerifyThroughRouter(t *testing.T) {
	a := newApp(t, 30)
	var code string

	issued := testutil.Given(t, "a course with a sub-course and an issued certificate", func(t *testing.T) {
		rec := a.do(testutil.NewAdminJSONRequest(t, http.MethodPost, "/admin/courses", adminToken,
			map[string]any{"title": "Engines", "image": "engines.png"}))
		testutil.AssertStatus(t, rec, http.StatusCreated)
		course := testutil.UnmarshalResponse[map[string]any](t, rec)

		rec = a.do(testutil.NewAdminJSONRequest(t, http.MethodPost, "/admin/courses/"+(*course)["id"].(string)+"/sub-courses", adminToken,
			map[string]any{"title": "Engine Basics"}))
		testutil.AssertStatus(t, rec, http.StatusCreated)
		sub := testutil.UnmarshalResponse[map[string]any](t, rec)

		rec = a.do(testutil.NewAdminJSONRequest(t, http.MethodPost, "/admin/certificates", adminToken, map[string]any{
			"user_id":       a.ada.ID.String(),
			"sub_course_id": (*sub)["id"],
			"issue_date":    "2024-01-10",
		}))
		testutil.AssertStatus(t, rec, http.StatusCreated)
		cert := testutil.UnmarshalResponse[map[string]any](t, rec)
		code = (*cert)["certificate_code"].(string)
		require.Len(t, code, codegen.DefaultLength)
	})
	if !issued {
		return
	}

	testutil.When(t, "a visitor verifies the code", func(t *testing.T) {
		rec := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/verify-certificate", map[string]string{"certificate_code": code}))
		testutil.AssertStatusOK(t, rec)

		testutil.Then(t, "the certificate details are returned", func(t *testing.T) {
			body := testutil.UnmarshalResponse[verifyhandler.VerifyResponse](t, rec)
			assert.Equal(t, "Ada Lovelace", body.Certificate.HolderName)
			assert.Equal(t, "Engines", body.Certificate.CourseTitle)
			assert.Equal(t, "Engine Basics", body.Certificate.SubCourseTitle)
			assert.Equal(t, "2024-01-10", body.Certificate.IssueDate)
		})
	})

	testutil.And(t, "the audit trail lists the issuance for admins", func(t *testing.T) {
		rec := a.do(testutil.NewAdminJSONRequest(t, http.MethodGet, "/admin/audit-events?limit=50", adminToken, nil))
		testutil.AssertStatusOK(t, rec)
		assert.Contains(t, rec.Body.String(), `"action":"certificate_issued"`)
		assert.Contains(t, rec.Body.String(), `"action":"certificate_verified"`)
	})
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newApp(t, 30)
	for _, path := range []string{"/admin/courses", "/admin/certificates", "/admin/users", "/admin/audit-events"} {
		rec := a.do(testutil.NewRequest(t, http.MethodGet, path))
		testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
	}
}

func TestPublicCatalogHasNoGate(t *testing.T) {
	a := newApp(t, 30)
	rec := a.do(testutil.NewRequest(t, http.MethodGet, "/api/courses"))
	testutil.AssertStatusOK(t, rec)
	testutil.AssertJSONHasKey(t, rec, "meta")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func verifyFrom(t *testing.T, remoteIP, forwardedFor string) *http.Request {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/verify-certificate", map[string]string{"certificate_code": "NOPE000000"})
	req.RemoteAddr = remoteIP + ":40000"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	return req
}

func TestVerifyIsRateLimitedPerIP(t *testing.T) {
	a := newApp(t, 2)

	testutil.AssertStatus(t, a.do(verifyFrom(t, "203.0.113.7", "")), http.StatusUnprocessableEntity)
	testutil.AssertStatus(t, a.do(verifyFrom(t, "203.0.113.7", "")), http.StatusUnprocessableEntity)
	rec := a.do(verifyFrom(t, "203.0.113.7", ""))
	testutil.AssertStatus(t, rec, http.StatusTooManyRequests)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	testutil.AssertStatus(t, a.do(verifyFrom(t, "198.51.100.4", "")), http.StatusUnprocessableEntity)

	catalogRec := a.do(testutil.NewRequest(t, http.MethodGet, "/api/courses"))
	testutil.AssertStatusOK(t, catalogRec)
}

func TestVerifyLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	a := newApp(t, 2)

	limited := 0
	for i := range 20 {
		rec := a.do(verifyFrom(t, "203.0.113.9", fmt.Sprintf("198.51.100.%d", i+1)))
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 18, limited)
}

func TestVerifyLimitHonoursTrustedProxy(t *testing.T) {
	a := newAppWithConfig(t, httptransport.Config{
		AdminToken:     adminToken,
		RequestTimeout: 5 * time.Second,
		TrustedProxies: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")},
	}, 1)

	testutil.AssertStatus(t, a.do(verifyFrom(t, "10.0.0.5", "203.0.113.7")), http.StatusUnprocessableEntity)
	testutil.AssertStatus(t, a.do(verifyFrom(t, "10.0.0.5", "203.0.113.7")), http.StatusTooManyRequests)
	testutil.AssertStatus(t, a.do(verifyFrom(t, "10.0.0.5", "198.51.100.4")), http.StatusUnprocessableEntity)

	testutil.AssertStatus(t, a.do(verifyFrom(t, "203.0.113.50", "198.51.100.20")), http.StatusUnprocessableEntity)
	testutil.AssertStatus(t, a.do(verifyFrom(t, "203.0.113.50", "198.51.100.21")), http.StatusTooManyRequests)
}

func TestVerifyPreflightAllowsCrossOrigin(t *testing.T) {
	a := newApp(t, 30)
	req := testutil.NewRequest(t, http.MethodOptions, "/verify-certificate")
	req.Header.Set("Origin", "https://academy.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec := a.do(req)
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndMetrics(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		a := newApp(t, 30, httptransport.WithHealthCheck("postgres", func(context.Context) error { return nil }))
		rec := a.do(testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rec)
		testutil.AssertJSONContains(t, rec, "status", "ok")
	})

	t.Run("dependency down", func(t *testing.T) {
		a := newApp(t, 30, httptransport.WithHealthCheck("redis", func(context.Context) error { return errors.New("dial tcp: refused") }))
		rec := a.do(testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
		assert.NotContains(t, rec.Body.String(), "refused")
	})

	t.Run("metrics exposes request latency", func(t *testing.T) {
		a := newApp(t, 30)
		a.do(testutil.NewRequest(t, http.MethodGet, "/api/courses"))
		rec := a.do(testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rec)
		assert.Contains(t, rec.Body.String(), "academy_http_requests_total")
	})
}
