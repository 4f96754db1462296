package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
)

type auditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Repository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Insert(ctx context.Context, e audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (
			action, entity_type, entity_id, actor_id, actor_role, actor_email,
			changes, metadata, ip_address, user_agent, request_id, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`
	_, err := q.Exec(ctx, query,
		e.Action, e.EntityType, e.EntityID, e.ActorID, e.ActorRole, e.ActorEmail,
		e.Changes, e.Metadata, e.IPAddress, e.UserAgent, e.RequestID, e.Status, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *auditLogRepository) ListUnpublished(ctx context.Context, limit int) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, action, entity_type, entity_id,
		       COALESCE(actor_id, ''), COALESCE(actor_role, ''), COALESCE(actor_email, ''),
		       changes, metadata,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(request_id, ''),
		       status, created_at, published_at
		FROM audit_logs
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(
			&e.ID, &e.Action, &e.EntityType, &e.EntityID,
			&e.ActorID, &e.ActorRole, &e.ActorEmail,
			&e.Changes, &e.Metadata,
			&e.IPAddress, &e.UserAgent, &e.RequestID,
			&e.Status, &e.CreatedAt, &e.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *auditLogRepository) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, "UPDATE audit_logs SET published_at = $2 WHERE id::text = ANY($1)", ids, at); err != nil {
		return fmt.Errorf("failed to mark audit logs published: %w", err)
	}
	return nil
}
