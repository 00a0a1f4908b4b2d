package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"academy/internal/users/models"
	id "academy/pkg/domain"
	"academy/pkg/email"
	"academy/pkg/platform/sentinel"
)

// PostgresUserStore reads the users table, which is populated by the
// identity system.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Save upserts a user. Used for seeding and tests.
func (s *PostgresUserStore) Save(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
	`, user.ID.String(), user.Name, user.Email)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = $1`, userID.String())
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*models.User, error) {
	out := make(map[id.UserID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, userID := range ids {
		raw[i] = userID.String()
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM users WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) Search(ctx context.Context, term string, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email FROM users
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY lower(name), email
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()
	out := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanUser falls back to a name derived from the email when the identity
// system left the name blank.
func scanUser(row scanner) (*models.User, error) {
	var (
		rawID string
		u     models.User
	)
	if err := row.Scan(&rawID, &u.Name, &u.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = email.DeriveName(u.Email)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	u.ID = userID
	return &u, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
