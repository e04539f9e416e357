// Package service implements appointment booking for leads.
package service

import (
	"context"
	"time"

	"leaddesk_backend/internal/appointments/repository"
	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/leads/domain"
	leadrepo "leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadLifecycle is the slice of the lead service bookings need: applying a
// status that the booking flow already decided.
type LeadLifecycle interface {
	ForceStatus(ctx context.Context, tenantID, leadID uuid.UUID, status domain.Status, actorID *uuid.UUID) (leadrepo.Lead, error)
}

type Service struct {
	repo  *repository.Repository
	leads LeadLifecycle
	bus   events.Bus
	log   *logger.Logger
}

func New(repo *repository.Repository, leads LeadLifecycle, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, bus: bus, log: log}
}

// BookParams carries one appointment booking. ForcedLeadStatus, when set,
// moves the lead directly to that status instead of re-running inference.
type BookParams struct {
	LeadID           uuid.UUID
	Title            string
	Description      *string
	Location         *string
	StartTime        time.Time
	EndTime          time.Time
	ForcedLeadStatus *domain.Status
}

func (s *Service) Book(ctx context.Context, tenantID, userID uuid.UUID, params BookParams) (repository.Appointment, error) {
	if !params.EndTime.After(params.StartTime) {
		return repository.Appointment{}, apperr.Validation("appointment end must be after start")
	}

	appt, err := s.repo.Create(ctx, repository.CreateParams{
		TenantID:    tenantID,
		UserID:      userID,
		LeadID:      params.LeadID,
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
	})
	if err != nil {
		return repository.Appointment{}, err
	}

	s.publish(ctx, events.AppointmentCreated{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		TenantID:      appt.TenantID,
		LeadID:        appt.LeadID,
		UserID:        appt.UserID,
		StartTime:     appt.StartTime,
	})

	if params.ForcedLeadStatus != nil && s.leads != nil {
		// Best-effort: the appointment exists either way, and the next lead
		// save resolves the status from the calendar.
		if _, err := s.leads.ForceStatus(ctx, tenantID, params.LeadID, *params.ForcedLeadStatus, &userID); err != nil {
			s.log.Error("lead status force after booking failed", "leadId", params.LeadID, "error", err)
		}
	}

	return appt, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (repository.Appointment, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) ListByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]repository.Appointment, error) {
	return s.repo.ListByLead(ctx, tenantID, leadID)
}

var validAppointmentStatuses = map[string]bool{
	"scheduled": true,
	"completed": true,
	"cancelled": true,
	"no_show":   true,
}

func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (repository.Appointment, error) {
	if !validAppointmentStatuses[status] {
		return repository.Appointment{}, apperr.Validation("unknown appointment status: " + status)
	}

	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return repository.Appointment{}, err
	}

	appt, err := s.repo.UpdateStatus(ctx, tenantID, id, status)
	if err != nil {
		return repository.Appointment{}, err
	}

	if appt.Status != current.Status {
		s.publish(ctx, events.AppointmentStatusChanged{
			BaseEvent:     events.NewBaseEvent(),
			AppointmentID: appt.ID,
			TenantID:      appt.TenantID,
			LeadID:        appt.LeadID,
			OldStatus:     current.Status,
			NewStatus:     appt.Status,
		})
	}
	return appt, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.publish(ctx, events.AppointmentDeleted{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		TenantID:      appt.TenantID,
		LeadID:        appt.LeadID,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
