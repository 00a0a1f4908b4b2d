package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"academy/internal/certificate/models"
	"academy/internal/platform/postgres"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
	"academy/pkg/platform/tx"
)

const certificateColumns = `id, user_id, sub_course_id, code, issue_date, created_at, updated_at`

// PostgresStore keeps certificates in the certificates table and vacated
// codes in retired_certificate_codes. Writes join the transaction in ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts c unless its code is held or retired. The conflict clause
// keeps a lost race from aborting the surrounding transaction.
func (s *PostgresStore) Create(ctx context.Context, c *models.Certificate) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (SELECT 1 FROM retired_certificate_codes WHERE code = $4)
		ON CONFLICT ON CONSTRAINT certificates_code_key DO NOTHING
	`, c.ID.String(), c.UserID.String(), c.SubCourseID.String(), c.Code, c.IssueDate, c.CreatedAt, c.UpdatedAt)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("certificate reference: %w", sentinel.ErrNotFound)
	}
	if postgres.IsUniqueViolation(err) {
		return codeTaken()
	}
	if err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	if n == 0 {
		return codeTaken()
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Certificate) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE certificates SET user_id = $2, sub_course_id = $3, issue_date = $4, updated_at = $5
		WHERE id = $1
	`, c.ID.String(), c.UserID.String(), c.SubCourseID.String(), c.IssueDate, c.UpdatedAt)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("certificate reference: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	return requireAffected(res)
}

// ReplaceCode must run inside a transaction: it locks the row, checks the
// new code, swaps it in and retires the old one.
func (s *PostgresStore) ReplaceCode(ctx context.Context, certID id.CertificateID, newCode string, now time.Time) (string, error) {
	exec := tx.Executor(ctx, s.db)
	var old string
	err := exec.QueryRowContext(ctx, `SELECT code FROM certificates WHERE id = $1 FOR UPDATE`, certID.String()).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound()
	}
	if err != nil {
		return "", fmt.Errorf("lock certificate: %w", err)
	}
	var taken bool
	err = exec.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM certificates WHERE code = $1)
		    OR EXISTS (SELECT 1 FROM retired_certificate_codes WHERE code = $1)
	`, newCode).Scan(&taken)
	if err != nil {
		return "", fmt.Errorf("check code: %w", err)
	}
	if taken {
		return "", codeTaken()
	}
	_, err = exec.ExecContext(ctx, `UPDATE certificates SET code = $2, updated_at = $3 WHERE id = $1`, certID.String(), newCode, now)
	if postgres.IsUniqueViolation(err) {
		return "", codeTaken()
	}
	if err != nil {
		return "", fmt.Errorf("replace code: %w", err)
	}
	if _, err := exec.ExecContext(ctx, `INSERT INTO retired_certificate_codes (code) VALUES ($1) ON CONFLICT DO NOTHING`, old); err != nil {
		return "", fmt.Errorf("retire code: %w", err)
	}
	return old, nil
}

func (s *PostgresStore) Delete(ctx context.Context, certID id.CertificateID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		WITH gone AS (DELETE FROM certificates WHERE id = $1 RETURNING code)
		INSERT INTO retired_certificate_codes (code) SELECT code FROM gone ON CONFLICT DO NOTHING
	`, certID.String())
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) DeleteBySubCourses(ctx context.Context, ids []id.SubCourseID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]string, len(ids))
	for i, subID := range ids {
		raw[i] = subID.String()
	}
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		WITH gone AS (DELETE FROM certificates WHERE sub_course_id = ANY($1::uuid[]) RETURNING code)
		INSERT INTO retired_certificate_codes (code) SELECT code FROM gone ON CONFLICT DO NOTHING
	`, pq.Array(raw))
	if err != nil {
		return 0, fmt.Errorf("delete certificates: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete certificates: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	return s.findOne(ctx, `WHERE id = $1`, certID.String())
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Certificate, error) {
	return s.findOne(ctx, `WHERE code = $1`, code)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Certificate, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT `+certificateColumns+` FROM certificates `+where, arg)
	c, err := scanCertificate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Certificate, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates ORDER BY issue_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()
	out := []*models.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) IsRetired(ctx context.Context, code string) (bool, error) {
	var retired bool
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM retired_certificate_codes WHERE code = $1)`, code).Scan(&retired)
	if err != nil {
		return false, fmt.Errorf("check retired code: %w", err)
	}
	return retired, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row scanner) (*models.Certificate, error) {
	var (
		c                      models.Certificate
		rawID, rawUser, rawSub string
	)
	if err := row.Scan(&rawID, &rawUser, &rawSub, &c.Code, &c.IssueDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.ID, err = id.ParseCertificateID(rawID); err != nil {
		return nil, err
	}
	if c.UserID, err = id.ParseUserID(rawUser); err != nil {
		return nil, err
	}
	if c.SubCourseID, err = id.ParseSubCourseID(rawSub); err != nil {
		return nil, err
	}
	return &c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("certificate rows affected: %w", err)
	}
	if n == 0 {
		return notFound()
	}
	return nil
}
