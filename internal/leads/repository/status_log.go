package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusChange is one row of the per-lead transition audit log.
type StatusChange struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	LeadID    uuid.UUID
	OldStatus string
	NewStatus string
	ActorID   *uuid.UUID
	ChangedAt time.Time
}

type InsertStatusChangeParams struct {
	TenantID  uuid.UUID
	LeadID    uuid.UUID
	OldStatus string
	NewStatus string
	ActorID   *uuid.UUID
}

func (r *Repository) InsertStatusChange(ctx context.Context, params InsertStatusChangeParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_status_changes (tenant_id, lead_id, old_status, new_status, actor_id)
		VALUES ($1, $2, $3, $4, $5)
	`, params.TenantID, params.LeadID, params.OldStatus, params.NewStatus, params.ActorID)
	return err
}

func (r *Repository) ListStatusChanges(ctx context.Context, tenantID, leadID uuid.UUID) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, lead_id, old_status, new_status, actor_id, changed_at
		FROM lead_status_changes
		WHERE tenant_id = $1 AND lead_id = $2
		ORDER BY changed_at DESC
	`, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusChange, 0)
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.TenantID, &c.LeadID, &c.OldStatus, &c.NewStatus, &c.ActorID, &c.ChangedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
