// Package repository provides database operations for appointments.
package repository

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

// Appointment is the appointment database model.
type Appointment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	UserID      uuid.UUID
	LeadID      uuid.UUID
	Title       string
	Description *string
	Location    *string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

const appointmentNotFoundMsg = "appointment not found"

const appointmentColumns = `id, tenant_id, user_id, lead_id, title, description,
	location, start_time, end_time, status, created_at, updated_at`

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateParams struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	LeadID      uuid.UUID
	Title       string
	Description *string
	Location    *string
	StartTime   time.Time
	EndTime     time.Time
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			tenant_id, user_id, lead_id, title, description, location,
			start_time, end_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'scheduled')
		RETURNING `+appointmentColumns,
		params.TenantID, params.UserID, params.LeadID, params.Title, params.Description,
		params.Location, params.StartTime, params.EndTime,
	)

	appt, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("failed to create appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, apperr.NotFound(appointmentNotFoundMsg)
		}
		return Appointment{}, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) ListByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE tenant_id = $1 AND lead_id = $2
		ORDER BY start_time ASC
	`, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// ListScheduledInRange returns scheduled appointments starting inside the
// window. The dashboard merges these with open follow-up tasks.
func (r *Repository) ListScheduledInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE tenant_id = $1 AND status = 'scheduled' AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// HasAppointmentOnOrAfter reports whether the lead has a scheduled
// appointment starting at or after the cutoff. Callers pass a date boundary
// (start of today) so an appointment earlier the same day still counts.
func (r *Repository) HasAppointmentOnOrAfter(ctx context.Context, tenantID, leadID uuid.UUID, from time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE tenant_id = $1 AND lead_id = $2 AND status = 'scheduled' AND start_time >= $3
		)
	`, tenantID, leadID, from).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check upcoming appointments: %w", err)
	}
	return exists, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+appointmentColumns,
		id, tenantID, status,
	)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, apperr.NotFound(appointmentNotFoundMsg)
		}
		return Appointment{}, fmt.Errorf("failed to update appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(appointmentNotFoundMsg)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.TenantID, &a.UserID, &a.LeadID, &a.Title, &a.Description,
		&a.Location, &a.StartTime, &a.EndTime, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	items := make([]Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
