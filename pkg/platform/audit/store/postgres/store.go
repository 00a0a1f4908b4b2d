package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	audit "academy/pkg/platform/audit"
	txcontext "academy/pkg/platform/tx"
)

// Store persists audit events to the audit_events table. When a transaction
// is open in ctx the event commits or rolls back with it.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}
	if event.Attributes == nil {
		attrs = []byte("{}")
	}

	query := `
		INSERT INTO audit_events (action, subject, actor, request_id, client_ip, user_agent, attributes, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		event.Action,
		event.Subject,
		event.ActorID,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
		attrs,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT action, subject, actor, request_id, client_ip, user_agent, attributes, occurred_at
		FROM audit_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var (
			e     audit.Event
			attrs []byte
		)
		if err := rows.Scan(&e.Action, &e.Subject, &e.ActorID, &e.RequestID, &e.ClientIP, &e.UserAgent, &attrs, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal audit attributes: %w", err)
			}
		}
		if len(e.Attributes) == 0 {
			e.Attributes = nil
		}
		e.Category = audit.AuditEvent(e.Action).Category()
		events = append(events, e)
	}
	return events, rows.Err()
}
