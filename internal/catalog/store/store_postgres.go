package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"academy/internal/catalog/models"
	"academy/internal/platform/postgres"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
	"academy/pkg/platform/tx"
)

const (
	courseColumns    = `id, title, slug, description, image, sort_order, is_active, created_at, updated_at`
	subCourseColumns = `id, course_id, title, slug, description, image, prerequisites, sort_order, is_active, created_at, updated_at`
)

// PostgresStore persists the catalog in the courses and sub_courses tables.
// Queries join the transaction carried in ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListCourses(ctx context.Context) ([]*models.Course, error) {
	exec := tx.Executor(ctx, s.db)
	rows, err := exec.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses, err := collectCourses(rows)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return courses, nil
	}

	subRows, err := exec.QueryContext(ctx, `SELECT `+subCourseColumns+` FROM sub_courses ORDER BY course_id, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list sub-courses: %w", err)
	}
	subs, err := collectSubCourses(subRows)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[id.CourseID]*models.Course, len(courses))
	for _, c := range courses {
		byCourse[c.ID] = c
	}
	for _, sc := range subs {
		if c, ok := byCourse[sc.CourseID]; ok {
			c.SubCourses = append(c.SubCourses, sc)
		}
	}
	return courses, nil
}

func (s *PostgresStore) FindCourseByID(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	return s.findCourse(ctx, `WHERE id = $1`, courseID.String())
}

func (s *PostgresStore) FindCourseBySlug(ctx context.Context, slug id.Slug) (*models.Course, error) {
	return s.findCourse(ctx, `WHERE slug = $1`, string(slug))
}

func (s *PostgresStore) findCourse(ctx context.Context, where string, arg any) (*models.Course, error) {
	exec := tx.Executor(ctx, s.db)
	c, err := scanCourse(exec.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("course")
	}
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	rows, err := exec.QueryContext(ctx, `SELECT `+subCourseColumns+` FROM sub_courses WHERE course_id = $1 ORDER BY sort_order, id`, c.ID.String())
	if err != nil {
		return nil, fmt.Errorf("find sub-courses: %w", err)
	}
	if c.SubCourses, err = collectSubCourses(rows); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) NextCourseOrder(ctx context.Context) (int, error) {
	var next int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM courses`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next course order: %w", err)
	}
	return next, nil
}

func (s *PostgresStore) CreateCourse(ctx context.Context, c *models.Course) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID.String(), c.Title, string(c.Slug), c.Description, c.Image, c.Order, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if postgres.IsUniqueViolation(err, "courses_slug_key") {
		return slugTaken(string(c.Slug))
	}
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("course %s: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCourse(ctx context.Context, c *models.Course) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE courses
		SET title = $2, slug = $3, description = $4, image = $5, sort_order = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`, c.ID.String(), c.Title, string(c.Slug), c.Description, c.Image, c.Order, c.IsActive, c.UpdatedAt)
	if postgres.IsUniqueViolation(err, "courses_slug_key") {
		return slugTaken(string(c.Slug))
	}
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res, "course")
}

// DeleteCourse relies on ON DELETE CASCADE for sub-courses and reports how
// many were removed.
func (s *PostgresStore) DeleteCourse(ctx context.Context, courseID id.CourseID) (int, error) {
	exec := tx.Executor(ctx, s.db)
	var children int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM sub_courses WHERE course_id = $1`, courseID.String()).Scan(&children); err != nil {
		return 0, fmt.Errorf("count sub-courses: %w", err)
	}
	res, err := exec.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, courseID.String())
	if err != nil {
		return 0, fmt.Errorf("delete course: %w", err)
	}
	if err := requireAffected(res, "course"); err != nil {
		return 0, err
	}
	return children, nil
}

// ReorderCourses updates every listed course in one statement. The caller's
// transaction makes the existence check and the write a single unit.
func (s *PostgresStore) ReorderCourses(ctx context.Context, ids []id.CourseID, now time.Time) error {
	exec := tx.Executor(ctx, s.db)
	raw := courseIDStrings(ids)
	var known int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses WHERE id = ANY($1::uuid[])`, pq.Array(raw)).Scan(&known); err != nil {
		return fmt.Errorf("check courses: %w", err)
	}
	if known != len(raw) {
		return fmt.Errorf("reorder courses: %w", sentinel.ErrScopeMismatch)
	}
	_, err := exec.ExecContext(ctx, `
		UPDATE courses c
		SET sort_order = o.ord - 1, updated_at = $2
		FROM unnest($1::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE c.id = o.id
	`, pq.Array(raw), now)
	if err != nil {
		return fmt.Errorf("reorder courses: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindSubCourse(ctx context.Context, subID id.SubCourseID) (*models.SubCourse, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT `+subCourseColumns+` FROM sub_courses WHERE id = $1`, subID.String())
	sc, err := scanSubCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("sub-course")
	}
	if err != nil {
		return nil, fmt.Errorf("find sub-course: %w", err)
	}
	return sc, nil
}

func (s *PostgresStore) FindSubCourseBySlug(ctx context.Context, courseID id.CourseID, slug id.Slug) (*models.SubCourse, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+subCourseColumns+` FROM sub_courses WHERE course_id = $1 AND slug = $2`, courseID.String(), string(slug))
	sc, err := scanSubCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("sub-course")
	}
	if err != nil {
		return nil, fmt.Errorf("find sub-course: %w", err)
	}
	return sc, nil
}

func (s *PostgresStore) FindPlacements(ctx context.Context, ids []id.SubCourseID) (map[id.SubCourseID]models.Placement, error) {
	out := make(map[id.SubCourseID]models.Placement, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, subID := range ids {
		raw[i] = subID.String()
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT s.id, s.course_id, s.title, s.slug, s.description, s.image, s.prerequisites, s.sort_order, s.is_active, s.created_at, s.updated_at,
		       c.id, c.title, c.slug, c.description, c.image, c.sort_order, c.is_active, c.created_at, c.updated_at
		FROM sub_courses s JOIN courses c ON c.id = s.course_id
		WHERE s.id = ANY($1::uuid[])
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find placements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sc             models.SubCourse
			c              models.Course
			subRaw, parRaw string
			courseRaw      string
			subSlug, slug  string
		)
		err := rows.Scan(
			&subRaw, &parRaw, &sc.Title, &subSlug, &sc.Description, &sc.Image, pq.Array(&sc.Prerequisites), &sc.Order, &sc.IsActive, &sc.CreatedAt, &sc.UpdatedAt,
			&courseRaw, &c.Title, &slug, &c.Description, &c.Image, &c.Order, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		if sc.ID, err = id.ParseSubCourseID(subRaw); err != nil {
			return nil, err
		}
		if sc.CourseID, err = id.ParseCourseID(parRaw); err != nil {
			return nil, err
		}
		c.ID = sc.CourseID
		sc.Slug, c.Slug = id.Slug(subSlug), id.Slug(slug)
		if sc.Prerequisites == nil {
			sc.Prerequisites = []string{}
		}
		c.SubCourses = []*models.SubCourse{}
		out[sc.ID] = models.Placement{Course: &c, SubCourse: &sc}
	}
	return out, rows.Err()
}

func (s *PostgresStore) SubCourseIDs(ctx context.Context, courseID id.CourseID) ([]id.SubCourseID, error) {
	if _, err := s.FindCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id FROM sub_courses WHERE course_id = $1 ORDER BY sort_order, id`, courseID.String())
	if err != nil {
		return nil, fmt.Errorf("list sub-course ids: %w", err)
	}
	defer rows.Close()
	out := []id.SubCourseID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan sub-course id: %w", err)
		}
		subID, err := id.ParseSubCourseID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, subID)
	}
	return out, rows.Err()
}

func (s *PostgresStore) NextSubCourseOrder(ctx context.Context, courseID id.CourseID) (int, error) {
	var next int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM sub_courses WHERE course_id = $1`, courseID.String()).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sub-course order: %w", err)
	}
	return next, nil
}

func (s *PostgresStore) CreateSubCourse(ctx context.Context, sc *models.SubCourse) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO sub_courses (`+subCourseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sc.ID.String(), sc.CourseID.String(), sc.Title, string(sc.Slug), sc.Description, sc.Image,
		pq.Array(sc.Prerequisites), sc.Order, sc.IsActive, sc.CreatedAt, sc.UpdatedAt)
	if postgres.IsUniqueViolation(err, "sub_courses_course_slug_key") {
		return slugTaken(string(sc.Slug))
	}
	if postgres.IsForeignKeyViolation(err) {
		return notFound("course")
	}
	if err != nil {
		return fmt.Errorf("create sub-course: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSubCourse(ctx context.Context, sc *models.SubCourse) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE sub_courses
		SET title = $3, slug = $4, description = $5, image = $6, prerequisites = $7, sort_order = $8, is_active = $9, updated_at = $10
		WHERE id = $1 AND course_id = $2
	`, sc.ID.String(), sc.CourseID.String(), sc.Title, string(sc.Slug), sc.Description, sc.Image,
		pq.Array(sc.Prerequisites), sc.Order, sc.IsActive, sc.UpdatedAt)
	if postgres.IsUniqueViolation(err, "sub_courses_course_slug_key") {
		return slugTaken(string(sc.Slug))
	}
	if err != nil {
		return fmt.Errorf("update sub-course: %w", err)
	}
	return requireAffected(res, "sub-course")
}

func (s *PostgresStore) DeleteSubCourse(ctx context.Context, subID id.SubCourseID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM sub_courses WHERE id = $1`, subID.String())
	if err != nil {
		return fmt.Errorf("delete sub-course: %w", err)
	}
	return requireAffected(res, "sub-course")
}

func (s *PostgresStore) ReorderSubCourses(ctx context.Context, courseID id.CourseID, ids []id.SubCourseID, now time.Time) error {
	exec := tx.Executor(ctx, s.db)
	if _, err := s.FindCourseByID(ctx, courseID); err != nil {
		return err
	}
	raw := make([]string, len(ids))
	for i, subID := range ids {
		raw[i] = subID.String()
	}
	var owned int
	err := exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sub_courses WHERE course_id = $1 AND id = ANY($2::uuid[])`, courseID.String(), pq.Array(raw)).Scan(&owned)
	if err != nil {
		return fmt.Errorf("check sub-courses: %w", err)
	}
	if owned != len(raw) {
		return fmt.Errorf("reorder sub-courses: %w", sentinel.ErrScopeMismatch)
	}
	_, err = exec.ExecContext(ctx, `
		UPDATE sub_courses s
		SET sort_order = o.ord - 1, updated_at = $3
		FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE s.id = o.id AND s.course_id = $1
	`, courseID.String(), pq.Array(raw), now)
	if err != nil {
		return fmt.Errorf("reorder sub-courses: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (*models.Course, error) {
	var (
		c     models.Course
		rawID string
		slug  string
	)
	if err := row.Scan(&rawID, &c.Title, &slug, &c.Description, &c.Image, &c.Order, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	courseID, err := id.ParseCourseID(rawID)
	if err != nil {
		return nil, err
	}
	c.ID = courseID
	c.Slug = id.Slug(slug)
	c.SubCourses = []*models.SubCourse{}
	return &c, nil
}

func scanSubCourse(row scanner) (*models.SubCourse, error) {
	var (
		sc            models.SubCourse
		rawID, rawCID string
		slug          string
	)
	err := row.Scan(&rawID, &rawCID, &sc.Title, &slug, &sc.Description, &sc.Image,
		pq.Array(&sc.Prerequisites), &sc.Order, &sc.IsActive, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sc.ID, err = id.ParseSubCourseID(rawID); err != nil {
		return nil, err
	}
	if sc.CourseID, err = id.ParseCourseID(rawCID); err != nil {
		return nil, err
	}
	sc.Slug = id.Slug(slug)
	if sc.Prerequisites == nil {
		sc.Prerequisites = []string{}
	}
	return &sc, nil
}

func collectCourses(rows *sql.Rows) ([]*models.Course, error) {
	defer rows.Close()
	out := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func collectSubCourses(rows *sql.Rows) ([]*models.SubCourse, error) {
	defer rows.Close()
	out := []*models.SubCourse{}
	for rows.Next() {
		sc, err := scanSubCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sub-course: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func courseIDStrings(ids []id.CourseID) []string {
	raw := make([]string, len(ids))
	for i, courseID := range ids {
		raw[i] = courseID.String()
	}
	return raw
}

func requireAffected(res sql.Result, kind string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", kind, err)
	}
	if n == 0 {
		return notFound(kind)
	}
	return nil
}
