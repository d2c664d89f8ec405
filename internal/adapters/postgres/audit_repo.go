package postgres

// Package postgres persists the append-only auth audit trail.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

// AuditRepo records auth lifecycle events in the auth_audit table.
type AuditRepo struct {
	DB  *sql.DB
	now func() time.Time
}

var _ ports.AuditLog = (*AuditRepo)(nil)

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db, now: time.Now}
}

// Record inserts the event. Missing IDs and timestamps are filled in.
// Replaying an event ID is a no-op, which lets callers retry safely.
func (r *AuditRepo) Record(ctx context.Context, event domainauth.AuditEvent) error {
	if event.Action == "" {
		return errors.New("audit event action cannot be empty")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now()
	}
	if event.Detail == nil {
		event.Detail = map[string]any{}
	}

	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO auth_audit (id, occurred_at, uid, action, detail)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.OccurredAt, event.UID, string(event.Action), detail)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil
		}
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// RecentByUID returns the newest events for a principal, capped at limit.
func (r *AuditRepo) RecentByUID(ctx context.Context, uid string, limit int) ([]domainauth.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, occurred_at, uid, action, detail
		FROM auth_audit
		WHERE uid = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domainauth.AuditEvent
	for rows.Next() {
		var (
			ev     domainauth.AuditEvent
			action string
			detail []byte
		)
		if err := rows.Scan(&ev.ID, &ev.OccurredAt, &ev.UID, &action, &detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Action = domainauth.AuditAction(action)
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &ev.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
