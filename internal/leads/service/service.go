// Package service orchestrates the lead lifecycle: it resolves status
// transitions, persists the outcome, and hands resolved transitions to the
// follow-up engine.
package service

import (
	"context"
	"errors"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/followups"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/busday"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/phone"

	"github.com/google/uuid"
)

// Store is the lead persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, tenantID, leadID uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, tenantID uuid.UUID, params repository.ListParams) ([]repository.Lead, error)
	UpdateContact(ctx context.Context, tenantID, leadID uuid.UUID, params repository.UpdateContactParams) (repository.Lead, error)
	UpdateLifecycle(ctx context.Context, tenantID, leadID uuid.UUID, u repository.LifecycleUpdate) (repository.Lead, error)
	Delete(ctx context.Context, tenantID, leadID uuid.UUID) error
	InsertStatusChange(ctx context.Context, params repository.InsertStatusChangeParams) error
	ListStatusChanges(ctx context.Context, tenantID, leadID uuid.UUID) ([]repository.StatusChange, error)
}

// AppointmentChecker reports whether a lead has a scheduled appointment
// starting at or after the given cutoff. The transition engine needs it to
// decide where a reached call lands; the cutoff is a date boundary, so an
// appointment earlier the same day still counts.
type AppointmentChecker interface {
	HasAppointmentOnOrAfter(ctx context.Context, tenantID, leadID uuid.UUID, from time.Time) (bool, error)
}

// FollowUpEngine receives resolved transitions. Failures here never roll the
// status change back.
type FollowUpEngine interface {
	ApplyTransition(ctx context.Context, lead domain.LeadSnapshot, oldStatus, newStatus domain.Status) ([]followups.Task, error)
	SyncManualFollowUp(ctx context.Context, tenantID, leadID uuid.UUID, dueDate time.Time) (followups.Task, error)
}

type Service struct {
	store        Store
	appointments AppointmentChecker
	followUps    FollowUpEngine
	bus          events.Bus
	log          *logger.Logger
	now          func() time.Time
}

func New(store Store, appointments AppointmentChecker, followUps FollowUpEngine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:        store,
		appointments: appointments,
		followUps:    followUps,
		bus:          bus,
		log:          log,
		now:          time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

type CreateParams struct {
	FirstName  string
	LastName   string
	Phone      string
	Email      *string
	Street     string
	ZipCode    string
	City       string
	Source     *string
	AssigneeID *uuid.UUID
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, params CreateParams) (repository.Lead, error) {
	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		TenantID:        tenantID,
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Phone:           phone.NormalizeE164(params.Phone),
		Email:           params.Email,
		AddressStreet:   params.Street,
		AddressZipCode:  params.ZipCode,
		AddressCity:     params.City,
		AssignedAgentID: params.AssigneeID,
		Source:          params.Source,
		Status:          domain.StatusNew,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	source := ""
	if lead.Source != nil {
		source = *lead.Source
	}
	s.publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  lead.TenantID,
		Status:    lead.Status,
		Source:    source,
	})
	return lead, nil
}

func (s *Service) Get(ctx context.Context, tenantID, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, tenantID, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, params repository.ListParams) ([]repository.Lead, error) {
	return s.store.List(ctx, tenantID, params)
}

func (s *Service) History(ctx context.Context, tenantID, leadID uuid.UUID) ([]repository.StatusChange, error) {
	return s.store.ListStatusChanges(ctx, tenantID, leadID)
}

func (s *Service) Delete(ctx context.Context, tenantID, leadID uuid.UUID) error {
	err := s.store.Delete(ctx, tenantID, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

// UpdateParams carries one detail-form save: contact edits plus the
// lifecycle patch, applied atomically from the caller's point of view.
type UpdateParams struct {
	Contact repository.UpdateContactParams
	Patch   domain.Patch
	ActorID *uuid.UUID
}

// Update applies a detail-form save. The transition engine resolves the new
// status from the patch; the store persists it; the follow-up engine reacts
// to the resolved transition on a best-effort basis.
func (s *Service) Update(ctx context.Context, tenantID, leadID uuid.UUID, params UpdateParams) (repository.Lead, error) {
	lead, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return repository.Lead{}, err
	}

	if params.Contact.Phone != nil {
		normalized := phone.NormalizeE164(*params.Contact.Phone)
		params.Contact.Phone = &normalized
	}
	if params.Contact != (repository.UpdateContactParams{}) {
		if lead, err = s.store.UpdateContact(ctx, tenantID, leadID, params.Contact); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.Lead{}, apperr.NotFound("lead not found")
			}
			return repository.Lead{}, err
		}
	}

	return s.applyPatch(ctx, lead, params.Patch, params.ActorID)
}

// RecordPhoneOutcome logs a single contact attempt from the call panel. It is
// a thin wrapper over the same resolution path a full save takes.
func (s *Service) RecordPhoneOutcome(ctx context.Context, tenantID, leadID uuid.UUID, outcome domain.PhoneOutcome, actorID *uuid.UUID) (repository.Lead, error) {
	lead, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return repository.Lead{}, err
	}
	return s.applyPatch(ctx, lead, domain.Patch{PhoneStatus: &outcome}, actorID)
}

// ForceStatus applies a status decided outside the inference rules, e.g. by
// an appointment booking that already knows the outcome.
func (s *Service) ForceStatus(ctx context.Context, tenantID, leadID uuid.UUID, status domain.Status, actorID *uuid.UUID) (repository.Lead, error) {
	lead, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return repository.Lead{}, err
	}
	return s.applyPatch(ctx, lead, domain.Patch{ForcedStatus: &status}, actorID)
}

func (s *Service) applyPatch(ctx context.Context, lead repository.Lead, patch domain.Patch, actorID *uuid.UUID) (repository.Lead, error) {
	snap := lead.Snapshot()

	hasAppt := false
	if s.appointments != nil {
		// Anything scheduled today or later counts, so the cutoff is the
		// start of today rather than the current instant.
		from := busday.DateOnly(s.now())
		var err error
		if hasAppt, err = s.appointments.HasAppointmentOnOrAfter(ctx, lead.TenantID, lead.ID, from); err != nil {
			// Treat the appointment lookup as advisory: a broken calendar
			// must not block saving a lead.
			s.log.Error("appointment lookup failed", "leadId", lead.ID, "error", err)
			hasAppt = false
		}
	}

	newStatus, err := domain.ResolveStatus(domain.TransitionInput{
		Lead:                 snap,
		Patch:                patch,
		HasFutureAppointment: hasAppt,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	update := buildLifecycleUpdate(lead, snap, patch, newStatus)
	updated, err := s.store.UpdateLifecycle(ctx, lead.TenantID, lead.ID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, err
	}

	oldStatus := snap.Status
	if newStatus != oldStatus {
		s.recordTransition(ctx, updated, oldStatus, newStatus, actorID)
	}

	if s.followUps != nil {
		if newStatus != oldStatus {
			if _, err := s.followUps.ApplyTransition(ctx, updated.Snapshot(), oldStatus, newStatus); err != nil {
				s.log.Error("follow-up generation failed", "leadId", updated.ID, "error", err)
			}
		}
		if update.FollowUpRequested && update.FollowUpDate != nil {
			if _, err := s.followUps.SyncManualFollowUp(ctx, updated.TenantID, updated.ID, *update.FollowUpDate); err != nil {
				s.log.Error("manual follow-up sync failed", "leadId", updated.ID, "error", err)
			}
		}
	}

	s.publish(ctx, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    updated.ID,
		TenantID:  updated.TenantID,
	})
	return updated, nil
}

func (s *Service) recordTransition(ctx context.Context, lead repository.Lead, oldStatus, newStatus domain.Status, actorID *uuid.UUID) {
	if err := s.store.InsertStatusChange(ctx, repository.InsertStatusChangeParams{
		TenantID:  lead.TenantID,
		LeadID:    lead.ID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		ActorID:   actorID,
	}); err != nil {
		s.log.Error("status change log failed", "leadId", lead.ID, "error", err)
	}

	lostReason := ""
	if lead.LostReason != nil {
		lostReason = *lead.LostReason
	}
	actor := uuid.Nil
	if actorID != nil {
		actor = *actorID
	}
	s.publish(ctx, events.LeadStatusChanged{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		TenantID:        lead.TenantID,
		OldStatus:       string(oldStatus),
		NewStatus:       string(newStatus),
		LostReason:      lostReason,
		NotReachedCount: lead.NotReachedCount,
		ActorID:         actor,
	})
}

// buildLifecycleUpdate merges the patch onto the current row, with the
// resolved status and counter substituted in.
func buildLifecycleUpdate(lead repository.Lead, snap domain.LeadSnapshot, patch domain.Patch, newStatus domain.Status) repository.LifecycleUpdate {
	update := repository.LifecycleUpdate{
		Status:            newStatus,
		StatusChanged:     newStatus != snap.Status,
		PhoneStatus:       lead.PhoneStatus,
		NotReachedCount:   domain.NextNotReachedCount(snap, patch),
		LostReason:        lead.LostReason,
		FollowUpRequested: lead.FollowUpRequested,
		FollowUpDate:      lead.FollowUpDate,
		OfferUploaded:     lead.OfferUploaded,
		TVPUploaded:       lead.TVPUploaded,
	}

	if patch.PhoneStatus != nil {
		v := string(*patch.PhoneStatus)
		update.PhoneStatus = &v
	}
	if patch.LostReason != nil {
		update.LostReason = patch.LostReason
	}
	if patch.FollowUpRequested != nil {
		update.FollowUpRequested = *patch.FollowUpRequested
	}
	if patch.FollowUpDate != nil {
		d := busday.DateOnly(*patch.FollowUpDate)
		update.FollowUpDate = &d
	}
	if patch.OfferUploaded != nil && *patch.OfferUploaded {
		update.OfferUploaded = true
	}
	if patch.TVPUploaded != nil && *patch.TVPUploaded {
		update.TVPUploaded = true
	}
	if newStatus != domain.StatusLost {
		update.LostReason = nil
	}
	return update
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
