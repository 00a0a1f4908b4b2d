// Package service issues, edits and lists certificates.
//
// Codes are generated here and checked for uniqueness by the store, which
// also remembers every code that was ever vacated. Issue and RegenerateCode
// retry a bounded number of times on a collision; each attempt is its own
// unit of work so a lost race never poisons the next attempt.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	catalogmodels "academy/internal/catalog/models"
	"academy/internal/catalog/query"
	"academy/internal/certificate/codegen"
	"academy/internal/certificate/document"
	"academy/internal/certificate/export"
	"academy/internal/certificate/metrics"
	"academy/internal/certificate/models"
	usermodels "academy/internal/users/models"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
	"academy/pkg/platform/tx"
	"academy/pkg/requestcontext"
)

// DefaultMaxAttempts bounds code generation per issuance.
const DefaultMaxAttempts = 5

var tracer = otel.Tracer("academy/certificate")

type Store interface {
	Create(ctx context.Context, c *models.Certificate) error
	Update(ctx context.Context, c *models.Certificate) error
	ReplaceCode(ctx context.Context, certID id.CertificateID, newCode string, now time.Time) (string, error)
	Delete(ctx context.Context, certID id.CertificateID) error
	DeleteBySubCourses(ctx context.Context, ids []id.SubCourseID) (int, error)
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	FindByCode(ctx context.Context, code string) (*models.Certificate, error)
	IsRetired(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]*models.Certificate, error)
}

// UserDirectory reads certificate holders from the external user system.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*usermodels.User, error)
}

// Catalog resolves sub-courses and their parent course.
type Catalog interface {
	ResolveSubCourse(ctx context.Context, subID id.SubCourseID) (catalogmodels.Placement, error)
	ResolvePlacements(ctx context.Context, ids []id.SubCourseID) (map[id.SubCourseID]catalogmodels.Placement, error)
}

type CodeGenerator interface {
	Next() (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	users          UserDirectory
	catalog        Catalog
	codes          CodeGenerator
	tx             tx.Runner
	maxAttempts    int
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

// WithTxRunner must receive the runner the catalog service uses.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithMaxAttempts sets how many codes Issue and RegenerateCode try.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func New(store Store, users UserDirectory, catalog Catalog, codes CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:       store,
		users:       users,
		catalog:     catalog,
		codes:       codes,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewLockRunner()
	}
	return s
}

// ListFilter narrows List. Search matches the holder name, the course or
// sub-course title, or the exact certificate code.
type ListFilter struct {
	Search string
}

// Issue creates a certificate with a fresh code.
func (s *Service) Issue(ctx context.Context, req *models.IssueRequest) (*models.View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userID, subID, issueDate := req.Parsed()

	ctx, span := tracer.Start(ctx, "certificate.Issue",
		trace.WithAttributes(attribute.String("sub_course_id", subID.String())),
	)
	defer span.End()

	holder, err := s.requireHolder(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, "holder lookup failed")
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var (
		issued    *models.Certificate
		placement catalogmodels.Placement
	)
	attempts, err := s.withFreshCode(ctx, func(ctx context.Context, code string) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			p, err := s.requirePlacement(ctx, subID)
			if err != nil {
				return err
			}
			c, err := models.NewCertificate(id.NewCertificateID(), userID, subID, code, issueDate, now)
			if err != nil {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			if err := s.store.Create(ctx, c); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.FieldError(dErrors.CodeNotFound, "sub_course_id", "sub-course not found")
				}
				return err
			}
			issued, placement = c, p
			return nil
		})
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.SetStatus(codes.Error, "issue failed")
		return nil, translate(err, "issue certificate")
	}

	s.logAudit(ctx, audit.EventCertificateIssued, issued.ID.String(), map[string]string{
		"user_id":       userID.String(),
		"sub_course_id": subID.String(),
		"attempts":      itoa(attempts),
	})
	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	return newView(issued, holder, placement), nil
}

// Update reassigns holder, sub-course or issue date. The code never changes.
func (s *Service) Update(ctx context.Context, certID id.CertificateID, req *models.UpdateRequest) (*models.View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userID, subID, issueDate := req.Parsed()
	now := requestcontext.Now(ctx)

	var updated *models.Certificate
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.store.FindByID(ctx, certID)
		if err != nil {
			return err
		}
		if req.IsEmpty() {
			updated = c
			return nil
		}
		if userID != nil && *userID != c.UserID {
			if _, err := s.requireHolder(ctx, *userID); err != nil {
				return err
			}
			c.UserID = *userID
		}
		if subID != nil && *subID != c.SubCourseID {
			if _, err := s.requirePlacement(ctx, *subID); err != nil {
				return err
			}
			c.SubCourseID = *subID
		}
		if issueDate != nil {
			c.IssueDate = *issueDate
		}
		c.UpdatedAt = now
		if err := s.store.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, translate(err, "update certificate")
	}
	if !req.IsEmpty() {
		s.logAudit(ctx, audit.EventCertificateUpdated, certID.String(), nil)
		s.incrementMutation("update")
	}
	return s.view(ctx, updated)
}

// RegenerateCode gives the certificate a new code. The previous code is
// retired and can never be issued again.
func (s *Service) RegenerateCode(ctx context.Context, certID id.CertificateID) (*models.View, error) {
	ctx, span := tracer.Start(ctx, "certificate.RegenerateCode")
	defer span.End()

	now := requestcontext.Now(ctx)
	attempts, err := s.withFreshCode(ctx, func(ctx context.Context, code string) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			_, err := s.store.ReplaceCode(ctx, certID, code, now)
			return err
		})
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.SetStatus(codes.Error, "regenerate failed")
		return nil, translate(err, "regenerate certificate code")
	}
	s.logAudit(ctx, audit.EventCertificateCodeRegenerated, certID.String(), map[string]string{"attempts": itoa(attempts)})
	s.incrementMutation("regenerate_code")
	return s.Get(ctx, certID)
}

// Delete removes the certificate permanently and retires its code.
func (s *Service) Delete(ctx context.Context, certID id.CertificateID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.Delete(ctx, certID)
	})
	if err != nil {
		return translate(err, "delete certificate")
	}
	s.logAudit(ctx, audit.EventCertificateDeleted, certID.String(), nil)
	s.incrementMutation("delete")
	return nil
}

func (s *Service) Get(ctx context.Context, certID id.CertificateID) (*models.View, error) {
	c, err := s.store.FindByID(ctx, certID)
	if err != nil {
		return nil, translate(err, "load certificate")
	}
	return s.view(ctx, c)
}

// FindByCode is an exact, case-sensitive lookup with no side effects.
func (s *Service) FindByCode(ctx context.Context, code string) (*models.Certificate, error) {
	c, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, translate(err, "find certificate")
	}
	return c, nil
}

// CodeStatus reports whether code is held by a certificate, was retired,
// or was never issued. WellFormed flags codes outside the generator's
// alphabet or length range, which can never be active.
func (s *Service) CodeStatus(ctx context.Context, code string) (*models.CodeStatus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, dErrors.Validation("certificate_code", "is required")
	}
	status := &models.CodeStatus{Code: code, State: models.CodeUnused, WellFormed: codegen.Valid(code)}

	c, err := s.store.FindByCode(ctx, code)
	switch {
	case err == nil:
		status.State = models.CodeActive
		status.CertificateID = c.ID
		return status, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, translate(err, "look up certificate code")
	}

	retired, err := s.store.IsRetired(ctx, code)
	if err != nil {
		return nil, translate(err, "look up retired code")
	}
	if retired {
		status.State = models.CodeRetired
	}
	return status, nil
}

// List returns a page of certificates, newest issue date first.
func (s *Service) List(ctx context.Context, filter ListFilter, page, pageSize int) (query.Page[*models.View], error) {
	views, err := s.search(ctx, filter)
	if err != nil {
		return query.Page[*models.View]{}, err
	}
	return query.Paginate(views, page, query.ClampPageSize(pageSize)), nil
}

// Document renders the certificate as a PDF and returns it with a file name.
func (s *Service) Document(ctx context.Context, certID id.CertificateID) ([]byte, string, error) {
	v, err := s.Get(ctx, certID)
	if err != nil {
		return nil, "", err
	}
	out, err := document.Render(v)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render certificate")
	}
	return out, document.Filename(v), nil
}

// Export renders every certificate matching filter as an XLSX workbook.
func (s *Service) Export(ctx context.Context, filter ListFilter) ([]byte, error) {
	views, err := s.search(ctx, filter)
	if err != nil {
		return nil, err
	}
	out, err := export.Write(views)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to export certificates")
	}
	return out, nil
}

// ImportFailure reports why one uploaded row was not issued.
type ImportFailure struct {
	Line int
	Err  error
}

type ImportResult struct {
	Issued []*models.View
	Failed []ImportFailure
}

// Import issues one certificate per row of an XLSX upload. Rows are
// independent: a failing row is reported and the rest are still issued.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := export.ParseIssueRows(r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "could not read workbook")
	}
	if len(rows) == 0 {
		return nil, dErrors.Validation("file", "contains no rows")
	}
	result := &ImportResult{Issued: []*models.View{}, Failed: []ImportFailure{}}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "import cancelled")
		}
		v, err := s.Issue(ctx, row.Request)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInternal) {
				return nil, err
			}
			result.Failed = append(result.Failed, ImportFailure{Line: row.Line, Err: err})
			continue
		}
		result.Issued = append(result.Issued, v)
	}
	if s.metrics != nil {
		s.metrics.ObserveImport(len(result.Issued), len(result.Failed))
	}
	return result, nil
}

// withFreshCode calls attempt with new codes until one is accepted, the
// attempt fails for another reason, or maxAttempts codes were rejected.
func (s *Service) withFreshCode(ctx context.Context, attempt func(ctx context.Context, code string) error) (int, error) {
	for i := 1; i <= s.maxAttempts; i++ {
		code, err := s.codes.Next()
		if err != nil {
			return i, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate certificate code")
		}
		err = attempt(ctx, code)
		if err == nil {
			return i, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return i, err
		}
		if s.metrics != nil {
			s.metrics.IncrementCollision()
		}
		if s.logger != nil {
			s.logger.DebugContext(ctx, "certificate code collision", "attempt", i)
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementExhausted()
	}
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "certificate code generation exhausted",
			"attempts", s.maxAttempts,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return s.maxAttempts, dErrors.New(dErrors.CodeGenerationExhausted, "could not generate a unique certificate code")
}

func (s *Service) requireHolder(ctx context.Context, userID id.UserID) (*usermodels.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.FieldError(dErrors.CodeNotFound, "user_id", "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

func (s *Service) requirePlacement(ctx context.Context, subID id.SubCourseID) (catalogmodels.Placement, error) {
	p, err := s.catalog.ResolveSubCourse(ctx, subID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return catalogmodels.Placement{}, dErrors.FieldError(dErrors.CodeNotFound, "sub_course_id", "sub-course not found")
	}
	if err != nil {
		return catalogmodels.Placement{}, err
	}
	return p, nil
}

// search resolves every certificate and keeps those matching filter.
func (s *Service) search(ctx context.Context, filter ListFilter) ([]*models.View, error) {
	certs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	views, err := s.views(ctx, certs)
	if err != nil {
		return nil, err
	}
	term := strings.TrimSpace(filter.Search)
	if term == "" {
		return views, nil
	}
	matched := make([]*models.View, 0, len(views))
	for _, v := range views {
		if v.Code == term || query.ContainsFold([]string{v.HolderName, v.CourseTitle, v.SubCourseTitle}, term) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

func (s *Service) view(ctx context.Context, c *models.Certificate) (*models.View, error) {
	views, err := s.views(ctx, []*models.Certificate{c})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views joins certificates with their holders and catalog placement in two
// batch lookups. Dangling references leave the names empty.
func (s *Service) views(ctx context.Context, certs []*models.Certificate) ([]*models.View, error) {
	userIDs := make([]id.UserID, 0, len(certs))
	subIDs := make([]id.SubCourseID, 0, len(certs))
	for _, c := range certs {
		userIDs = append(userIDs, c.UserID)
		subIDs = append(subIDs, c.SubCourseID)
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load holders")
	}
	placements, err := s.catalog.ResolvePlacements(ctx, subIDs)
	if err != nil {
		return nil, err
	}
	out := make([]*models.View, 0, len(certs))
	for _, c := range certs {
		out = append(out, newView(c, users[c.UserID], placements[c.SubCourseID]))
	}
	return out, nil
}

func newView(c *models.Certificate, holder *usermodels.User, p catalogmodels.Placement) *models.View {
	v := &models.View{Certificate: c}
	if holder != nil {
		v.HolderName = holder.Name
		v.HolderEmail = holder.Email
	}
	if p.Course != nil {
		v.CourseID = p.Course.ID
		v.CourseTitle = p.Course.Title
	}
	if p.SubCourse != nil {
		v.SubCourseTitle = p.SubCourse.Title
	}
	return v
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string, attributes map[string]string) {
	if s.logger != nil {
		args := []any{"event", string(event), "log_type", "audit", "subject", subject}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		for k, v := range attributes {
			args = append(args, k, v)
		}
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:     string(event),
		Subject:    subject,
		Attributes: attributes,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) incrementMutation(operation string) {
	if s.metrics != nil {
		s.metrics.IncrementMutation(operation)
	}
}
