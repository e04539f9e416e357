// Package notifications provides the in-app alert inbox: breach alerts and
// task reminders with a read/snooze lifecycle.
package notifications

import (
	"context"
	"errors"
	"time"

	"leaddesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Type classifies what a notification points at. Resolution side effects
// depend on it.
type Type string

const (
	TypeSlaBreach Type = "sla_breach"
	TypeTaskDue   Type = "task_due"
)

// State is the stored lifecycle value. Snooze expiry is derived at read
// time; an elapsed snooze is reported as unseen without a write.
type State string

const (
	StateUnseen  State = "unseen"
	StateRead    State = "read"
	StateSnoozed State = "snoozed"
)

// Priority weights a notification for sorting and styling.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"-"`
	Type         Type       `json:"type"`
	Title        string     `json:"title"`
	Body         string     `json:"body,omitempty"`
	LeadID       *uuid.UUID `json:"leadId,omitempty"`
	TaskID       *uuid.UUID `json:"taskId,omitempty"`
	Priority     Priority   `json:"priority"`
	State        State      `json:"state"`
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// EffectiveState derives the state the client should render: a snooze whose
// wake-up time has passed counts as unseen again.
func (n Notification) EffectiveState(now time.Time) State {
	if n.State == StateSnoozed && n.SnoozedUntil != nil && !now.Before(*n.SnoozedUntil) {
		return StateUnseen
	}
	return n.State
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, tenant_id, type, title, body, lead_id, task_id,
	priority, state, snoozed_until, read_at, created_at`

const (
	opInsert      = "notifications.insert"
	opGet         = "notifications.get"
	opList        = "notifications.list"
	opSetState    = "notifications.set_state"
	opSnoozeMany  = "notifications.snooze_many"
	opCountUnseen = "notifications.count_unseen"
)

type InsertParams struct {
	TenantID uuid.UUID
	Type     Type
	Title    string
	Body     string
	LeadID   *uuid.UUID
	TaskID   *uuid.UUID
	Priority Priority
}

func (r *Repository) Insert(ctx context.Context, p InsertParams) (Notification, error) {
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (tenant_id, type, title, body, lead_id, task_id, priority, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'unseen')
		RETURNING `+notificationColumns,
		p.TenantID, string(p.Type), p.Title, p.Body, p.LeadID, p.TaskID, string(p.Priority),
	)

	n, err := scanNotification(row)
	if err != nil {
		return Notification{}, apperr.Internal("failed to insert notification").WithOp(opInsert)
	}
	return n, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return Notification{}, apperr.Internal("failed to load notification").WithOp(opGet)
	}
	return n, nil
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]Notification, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list notifications").WithOp(opList)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, apperr.Internal("failed to scan notification").WithOp(opList)
		}
		items = append(items, n)
	}
	if rows.Err() != nil {
		return nil, apperr.Internal("failed to read notifications").WithOp(opList)
	}
	return items, nil
}

// FindOpenByTask returns the newest non-read notification for a task, used to
// avoid stacking duplicate reminders.
func (r *Repository) FindOpenByTask(ctx context.Context, tenantID, taskID uuid.UUID) (*Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE tenant_id = $1 AND task_id = $2 AND state != 'read'
		ORDER BY created_at DESC
		LIMIT 1
	`, tenantID, taskID)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("failed to load task notification").WithOp(opGet)
	}
	return &n, nil
}

func (r *Repository) MarkRead(ctx context.Context, tenantID, id uuid.UUID, readAt time.Time) (Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications
		SET state = 'read', read_at = COALESCE(read_at, $3), snoozed_until = NULL
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+notificationColumns,
		id, tenantID, readAt,
	)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return Notification{}, apperr.Internal("failed to mark notification read").WithOp(opSetState)
	}
	return n, nil
}

// Snooze defers a notification regardless of its read flag; snoozing is
// independent of having read the entry.
func (r *Repository) Snooze(ctx context.Context, tenantID, id uuid.UUID, until time.Time) (Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications
		SET state = 'snoozed', snoozed_until = $3
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+notificationColumns,
		id, tenantID, until,
	)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return Notification{}, apperr.Internal("failed to snooze notification").WithOp(opSetState)
	}
	return n, nil
}

// MarkAllRead closes every non-read notification for the tenant and reports
// how many rows changed.
func (r *Repository) MarkAllRead(ctx context.Context, tenantID uuid.UUID, readAt time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET state = 'read', read_at = COALESCE(read_at, $2), snoozed_until = NULL
		WHERE tenant_id = $1 AND state != 'read'
	`, tenantID, readAt)
	if err != nil {
		return 0, apperr.Internal("failed to mark notifications read").WithOp(opSetState)
	}
	return int(tag.RowsAffected()), nil
}

// SnoozeAllOpen snoozes every notification currently in the active view
// (unseen, or snoozed with an elapsed wake-up time) to one shared target and
// reports how many rows changed. Rows still snoozed into the future keep
// their own timestamp.
func (r *Repository) SnoozeAllOpen(ctx context.Context, tenantID uuid.UUID, until, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET state = 'snoozed', snoozed_until = $2
		WHERE tenant_id = $1
		  AND (state = 'unseen' OR (state = 'snoozed' AND snoozed_until <= $3))
	`, tenantID, until, now)
	if err != nil {
		return 0, apperr.Internal("failed to snooze notifications").WithOp(opSnoozeMany)
	}
	return int(tag.RowsAffected()), nil
}

// CountUnseen counts notifications that should currently demand attention,
// treating elapsed snoozes as unseen.
func (r *Repository) CountUnseen(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE tenant_id = $1
		  AND (state = 'unseen' OR (state = 'snoozed' AND snoozed_until <= $2))
	`, tenantID, now).Scan(&count)
	if err != nil {
		return 0, apperr.Internal("failed to count notifications").WithOp(opCountUnseen)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (Notification, error) {
	var n Notification
	var typ, priority, state string
	err := row.Scan(
		&n.ID, &n.TenantID, &typ, &n.Title, &n.Body, &n.LeadID, &n.TaskID,
		&priority, &state, &n.SnoozedUntil, &n.ReadAt, &n.CreatedAt,
	)
	n.Type = Type(typ)
	n.Priority = Priority(priority)
	n.State = State(state)
	return n, err
}
