// Package service resolves a submitted certificate code into the summary
// shown to a member of the public.
//
// Verification is read-only. Every failure after input normalisation yields
// the same generic result so callers cannot tell a malformed code from an
// absent one.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	catalogmodels "academy/internal/catalog/models"
	certmodels "academy/internal/certificate/models"
	usermodels "academy/internal/users/models"
	"academy/internal/verification/metrics"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
	"academy/pkg/requestcontext"
)

const (
	// NotFoundMessage is the only failure text a caller ever sees after
	// the code passed normalisation.
	NotFoundMessage = "certificate not found or invalid"
	EmptyMessage    = "empty code"

	lookupTimeout = 3 * time.Second
	logPrefixLen  = 3
)

var tracer = otel.Tracer("academy/verification")

type Certificates interface {
	FindByCode(ctx context.Context, code string) (*certmodels.Certificate, error)
}

type Users interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

type Catalog interface {
	ResolveSubCourse(ctx context.Context, subID id.SubCourseID) (catalogmodels.Placement, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Certificate is the denormalised summary of a verified certificate.
type Certificate struct {
	HolderName     string
	CourseTitle    string
	SubCourseTitle string
	Code           string
	IssueDate      id.Date
}

// Result is the outcome of a verification. Message is set when Valid is false.
type Result struct {
	Valid       bool
	Message     string
	Certificate *Certificate
}

type Service struct {
	certificates   Certificates
	users          Users
	catalog        Catalog
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(certificates Certificates, users Users, catalog Catalog, opts ...Option) *Service {
	s := &Service{certificates: certificates, users: users, catalog: catalog}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify trims rawCode and looks it up exactly. Only an empty code is an
// error; everything else produces a Result.
func (s *Service) Verify(ctx context.Context, rawCode string) (Result, error) {
	start := time.Now()
	code := strings.TrimSpace(rawCode)
	if code == "" {
		s.record(ctx, metrics.OutcomeInvalid, "", start)
		return Result{}, dErrors.Validation("certificate_code", EmptyMessage)
	}

	ctx, span := tracer.Start(ctx, "verification.Verify", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	cert, err := s.resolve(ctx, code)
	if err != nil {
		outcome := metrics.OutcomeNotFound
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			outcome = metrics.OutcomeError
			span.SetStatus(codes.Error, "lookup failed")
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "certificate verification failed",
					"request_id", requestcontext.RequestID(ctx),
					"code_prefix", prefix(code),
					"error", err,
				)
			}
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		s.record(ctx, outcome, code, start)
		return Result{Valid: false, Message: NotFoundMessage}, nil
	}

	span.SetAttributes(attribute.String("outcome", metrics.OutcomeFound))
	s.record(ctx, metrics.OutcomeFound, code, start)
	return Result{Valid: true, Certificate: cert}, nil
}

// resolve finds the certificate, then loads holder and catalog placement
// concurrently. A certificate whose holder or sub-course no longer resolves
// is reported as not found.
func (s *Service) resolve(ctx context.Context, code string) (*Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	c, err := s.certificates.FindByCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "certificate")
	}

	var (
		holder    *usermodels.User
		placement catalogmodels.Placement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.FindByID(gctx, c.UserID)
		if err != nil {
			return notFoundOr(err, "holder")
		}
		holder = u
		return nil
	})
	g.Go(func() error {
		p, err := s.catalog.ResolveSubCourse(gctx, c.SubCourseID)
		if err != nil {
			return notFoundOr(err, "sub-course")
		}
		placement = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Certificate{
		HolderName:     holder.Name,
		CourseTitle:    placement.Course.Title,
		SubCourseTitle: placement.SubCourse.Title,
		Code:           c.Code,
		IssueDate:      c.IssueDate,
	}, nil
}

func notFoundOr(err error, kind string) error {
	if dErrors.HasCode(err, dErrors.CodeNotFound) || errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, kind+" not found")
	}
	return err
}

func (s *Service) record(ctx context.Context, outcome, code string, start time.Time) {
	if s.metrics != nil {
		s.metrics.IncrementOutcome(outcome)
		s.metrics.ObserveDuration(time.Since(start))
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "certificate verification",
			"request_id", requestcontext.RequestID(ctx),
			"outcome", outcome,
			"code_prefix", prefix(code),
		)
	}
	if s.auditPublisher == nil {
		return
	}
	event := audit.EventCertificateVerified
	if outcome != metrics.OutcomeFound {
		event = audit.EventCertificateVerificationFailed
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action: string(event),
		Attributes: map[string]string{
			"outcome":     outcome,
			"code_prefix": prefix(code),
		},
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// prefix keeps enough of a code to correlate logs without recording it.
func prefix(code string) string {
	if len(code) <= logPrefixLen {
		return code
	}
	return code[:logPrefixLen]
}
