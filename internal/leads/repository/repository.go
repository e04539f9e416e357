package repository

import (
	"context"
	"errors"
	"time"

	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	FirstName         string
	LastName          string
	Phone             string
	Email             *string
	AddressStreet     string
	AddressZipCode    string
	AddressCity       string
	AssignedAgentID   *uuid.UUID
	Source            *string
	Status            string
	PhoneStatus       *string
	NotReachedCount   int
	StatusSince       time.Time
	LostReason        *string
	FollowUpRequested bool
	FollowUpDate      *time.Time
	OfferUploaded     bool
	TVPUploaded       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot projects the persisted row into the domain view the transition
// engine consumes.
func (l Lead) Snapshot() domain.LeadSnapshot {
	snap := domain.LeadSnapshot{
		ID:                l.ID,
		TenantID:          l.TenantID,
		Status:            domain.Status(l.Status),
		NotReachedCount:   l.NotReachedCount,
		StatusSince:       l.StatusSince,
		FollowUpRequested: l.FollowUpRequested,
		FollowUpDate:      l.FollowUpDate,
		OfferUploaded:     l.OfferUploaded,
		TVPUploaded:       l.TVPUploaded,
	}
	if l.PhoneStatus != nil {
		snap.PhoneStatus = domain.PhoneOutcome(*l.PhoneStatus)
	}
	if l.LostReason != nil {
		snap.LostReason = *l.LostReason
	}
	return snap
}

const leadColumns = `id, tenant_id, first_name, last_name, phone, email,
	address_street, address_zip_code, address_city, assigned_agent_id, source,
	status, phone_status, not_reached_count, status_since, lost_reason,
	follow_up_requested, follow_up_date, offer_uploaded, tvp_uploaded,
	created_at, updated_at`

type CreateLeadParams struct {
	TenantID        uuid.UUID
	FirstName       string
	LastName        string
	Phone           string
	Email           *string
	AddressStreet   string
	AddressZipCode  string
	AddressCity     string
	AssignedAgentID *uuid.UUID
	Source          *string
	Status          domain.Status
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			tenant_id, first_name, last_name, phone, email,
			address_street, address_zip_code, address_city, assigned_agent_id, source,
			status, status_since
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING `+leadColumns,
		params.TenantID, params.FirstName, params.LastName, params.Phone, params.Email,
		params.AddressStreet, params.AddressZipCode, params.AddressCity, params.AssignedAgentID, params.Source,
		string(params.Status),
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, tenantID, leadID uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND tenant_id = $2
	`, leadID, tenantID)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// ListParams filters the tenant lead listing.
type ListParams struct {
	Status *domain.Status
	Limit  int
	Offset int
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]Lead, error) {
	limit := params.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE tenant_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, tenantID, statusArg(params.Status), limit, params.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListTenantIDs returns the distinct tenants that have leads. The SLA
// evaluator walks this set every tick.
func (r *Repository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT tenant_id FROM leads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

// ListByStatuses returns every tenant lead currently in one of the given
// statuses. Used by the SLA evaluator.
func (r *Repository) ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []domain.Status) ([]Lead, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE tenant_id = $1 AND status = ANY($2)
	`, tenantID, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// Search matches leads on name, phone, or city. The query is applied as a
// case-insensitive substring match.
func (r *Repository) Search(ctx context.Context, tenantID uuid.UUID, query string, limit int) ([]Lead, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE tenant_id = $1
		  AND (first_name || ' ' || last_name ILIKE '%' || $2 || '%'
		       OR phone ILIKE '%' || $2 || '%'
		       OR address_city ILIKE '%' || $2 || '%')
		ORDER BY updated_at DESC
		LIMIT $3
	`, tenantID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

type UpdateContactParams struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	Email           *string
	AddressStreet   *string
	AddressZipCode  *string
	AddressCity     *string
	AssignedAgentID *uuid.UUID
}

func (r *Repository) UpdateContact(ctx context.Context, tenantID, leadID uuid.UUID, params UpdateContactParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			phone = COALESCE($5, phone),
			email = COALESCE($6, email),
			address_street = COALESCE($7, address_street),
			address_zip_code = COALESCE($8, address_zip_code),
			address_city = COALESCE($9, address_city),
			assigned_agent_id = COALESCE($10, assigned_agent_id),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+leadColumns,
		leadID, tenantID,
		params.FirstName, params.LastName, params.Phone, params.Email,
		params.AddressStreet, params.AddressZipCode, params.AddressCity, params.AssignedAgentID,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// LifecycleUpdate carries the fully resolved lifecycle state. The service
// resolves transitions; the repository only persists the outcome.
type LifecycleUpdate struct {
	Status            domain.Status
	StatusChanged     bool
	PhoneStatus       *string
	NotReachedCount   int
	LostReason        *string
	FollowUpRequested bool
	FollowUpDate      *time.Time
	OfferUploaded     bool
	TVPUploaded       bool
}

func (r *Repository) UpdateLifecycle(ctx context.Context, tenantID, leadID uuid.UUID, u LifecycleUpdate) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			status = $3,
			status_since = CASE WHEN $4 THEN now() ELSE status_since END,
			phone_status = $5,
			not_reached_count = $6,
			lost_reason = $7,
			follow_up_requested = $8,
			follow_up_date = $9,
			offer_uploaded = $10,
			tvp_uploaded = $11,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+leadColumns,
		leadID, tenantID,
		string(u.Status), u.StatusChanged, u.PhoneStatus, u.NotReachedCount, u.LostReason,
		u.FollowUpRequested, u.FollowUpDate, u.OfferUploaded, u.TVPUploaded,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, tenantID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND tenant_id = $2`, leadID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func statusArg(status *domain.Status) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.TenantID, &l.FirstName, &l.LastName, &l.Phone, &l.Email,
		&l.AddressStreet, &l.AddressZipCode, &l.AddressCity, &l.AssignedAgentID, &l.Source,
		&l.Status, &l.PhoneStatus, &l.NotReachedCount, &l.StatusSince, &l.LostReason,
		&l.FollowUpRequested, &l.FollowUpDate, &l.OfferUploaded, &l.TVPUploaded,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
