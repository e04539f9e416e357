package followups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leaddesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opInsert         = "followups.repository.insert"
	opGet            = "followups.repository.get"
	opListByLead     = "followups.repository.list_by_lead"
	opListOpen       = "followups.repository.list_open"
	opFindOpenByType = "followups.repository.find_open_by_type"
	opUpdateDueDate  = "followups.repository.update_due_date"
	opUpdatePriority = "followups.repository.update_priority"
	opComplete       = "followups.repository.complete"
	opDelete         = "followups.repository.delete"

	errRepoNotConfigured = "follow-up repository not configured"
)

// ErrTaskNotFound is returned when no task matches the given scope.
var ErrTaskNotFound = errors.New("follow-up task not found")

const taskColumns = `id, tenant_id, lead_id, type, due_date, priority, auto_generated, escalation_level, completed_at, notes, created_at`

// Repository persists follow-up tasks in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a follow-up task repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertParams carries the fields for a new task row.
type InsertParams struct {
	TenantID        uuid.UUID
	LeadID          uuid.UUID
	Type            TaskType
	DueDate         time.Time
	Priority        Priority
	AutoGenerated   bool
	EscalationLevel int
	Notes           string
}

// Insert creates a new task row.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (Task, error) {
	if r == nil || r.pool == nil {
		return Task{}, apperr.Internal(errRepoNotConfigured).WithOp(opInsert)
	}
	if p.TenantID == uuid.Nil || p.LeadID == uuid.Nil {
		return Task{}, apperr.Validation("tenantId and leadId are required").WithOp(opInsert)
	}
	if !p.Type.IsValid() {
		return Task{}, apperr.Validation("unknown task type: " + string(p.Type)).WithOp(opInsert)
	}
	if !p.Priority.IsStorable() {
		return Task{}, apperr.Validation("priority must be low, medium or high").WithOp(opInsert)
	}

	var t Task
	err := r.pool.QueryRow(ctx, `
		INSERT INTO follow_up_tasks
		(tenant_id, lead_id, type, due_date, priority, auto_generated, escalation_level, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns+`
	`, p.TenantID, p.LeadID, p.Type, p.DueDate, p.Priority, p.AutoGenerated, p.EscalationLevel, p.Notes).Scan(taskFields(&t)...)
	if err != nil {
		return Task{}, apperr.Internal(fmt.Sprintf("insert follow-up task failed: %v", err)).WithOp(opInsert)
	}

	return t, nil
}

// GetByID loads a single task scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, taskID uuid.UUID) (Task, error) {
	if r == nil || r.pool == nil {
		return Task{}, apperr.Internal(errRepoNotConfigured).WithOp(opGet)
	}

	var t Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM follow_up_tasks
		WHERE id = $1 AND tenant_id = $2
	`, taskID, tenantID).Scan(taskFields(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, apperr.Internal(fmt.Sprintf("get follow-up task failed: %v", err)).WithOp(opGet)
	}

	return t, nil
}

// ListByLead returns all tasks for a lead, open first, then by due date.
func (r *Repository) ListByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Task, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListByLead)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM follow_up_tasks
		WHERE tenant_id = $1 AND lead_id = $2
		ORDER BY completed_at NULLS FIRST, due_date ASC
	`, tenantID, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list follow-up tasks failed: %v", err)).WithOp(opListByLead)
	}
	defer rows.Close()

	return scanTasks(rows, opListByLead)
}

// ListOpen returns every open task for the tenant.
func (r *Repository) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]Task, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListOpen)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM follow_up_tasks
		WHERE tenant_id = $1 AND completed_at IS NULL
		ORDER BY due_date ASC
	`, tenantID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list open follow-up tasks failed: %v", err)).WithOp(opListOpen)
	}
	defer rows.Close()

	return scanTasks(rows, opListOpen)
}

// FindOpenByType returns the open task of the given type for a lead, if any.
// At most one open followup-type task may exist per lead; this lookup backs
// the upsert that maintains that invariant.
func (r *Repository) FindOpenByType(ctx context.Context, tenantID, leadID uuid.UUID, taskType TaskType) (*Task, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opFindOpenByType)
	}

	var t Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM follow_up_tasks
		WHERE tenant_id = $1 AND lead_id = $2 AND type = $3 AND completed_at IS NULL
		ORDER BY created_at ASC
		LIMIT 1
	`, tenantID, leadID, taskType).Scan(taskFields(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("find open follow-up task failed: %v", err)).WithOp(opFindOpenByType)
	}

	return &t, nil
}

// UpdateDueDate reschedules a task.
func (r *Repository) UpdateDueDate(ctx context.Context, tenantID, taskID uuid.UUID, dueDate time.Time) (Task, error) {
	if r == nil || r.pool == nil {
		return Task{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdateDueDate)
	}

	var t Task
	err := r.pool.QueryRow(ctx, `
		UPDATE follow_up_tasks SET due_date = $3
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+taskColumns+`
	`, taskID, tenantID, dueDate).Scan(taskFields(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, apperr.Internal(fmt.Sprintf("update follow-up due date failed: %v", err)).WithOp(opUpdateDueDate)
	}

	return t, nil
}

// UpdatePriority edits a task's stored priority.
func (r *Repository) UpdatePriority(ctx context.Context, tenantID, taskID uuid.UUID, priority Priority) (Task, error) {
	if r == nil || r.pool == nil {
		return Task{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdatePriority)
	}
	if !priority.IsStorable() {
		return Task{}, apperr.Validation("priority must be low, medium or high").WithOp(opUpdatePriority)
	}

	var t Task
	err := r.pool.QueryRow(ctx, `
		UPDATE follow_up_tasks SET priority = $3
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+taskColumns+`
	`, taskID, tenantID, priority).Scan(taskFields(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, apperr.Internal(fmt.Sprintf("update follow-up priority failed: %v", err)).WithOp(opUpdatePriority)
	}

	return t, nil
}

// Complete closes an open task. Completing an already-completed task keeps
// the original completion timestamp.
func (r *Repository) Complete(ctx context.Context, tenantID, taskID uuid.UUID, completedAt time.Time) (Task, error) {
	if r == nil || r.pool == nil {
		return Task{}, apperr.Internal(errRepoNotConfigured).WithOp(opComplete)
	}

	var t Task
	err := r.pool.QueryRow(ctx, `
		UPDATE follow_up_tasks SET completed_at = COALESCE(completed_at, $3)
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+taskColumns+`
	`, taskID, tenantID, completedAt).Scan(taskFields(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, apperr.Internal(fmt.Sprintf("complete follow-up task failed: %v", err)).WithOp(opComplete)
	}

	return t, nil
}

// Delete removes a task. Deletion is a user action; the engine never deletes.
func (r *Repository) Delete(ctx context.Context, tenantID, taskID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM follow_up_tasks WHERE id = $1 AND tenant_id = $2
	`, taskID, tenantID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete follow-up task failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func taskFields(t *Task) []interface{} {
	return []interface{}{
		&t.ID, &t.TenantID, &t.LeadID, &t.Type, &t.DueDate, &t.Priority,
		&t.AutoGenerated, &t.EscalationLevel, &t.CompletedAt, &t.Notes, &t.CreatedAt,
	}
}

func scanTasks(rows pgx.Rows, op string) ([]Task, error) {
	items := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(taskFields(&t)...); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan follow-up tasks failed: %v", err)).WithOp(op)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate follow-up tasks failed: %v", err)).WithOp(op)
	}
	return items, nil
}
