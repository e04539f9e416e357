package followups

import (
	"context"
	"errors"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/busday"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Store defines the data access interface the service needs.
// This is a consumer-driven interface; *Repository satisfies it.
type Store interface {
	Insert(ctx context.Context, p InsertParams) (Task, error)
	GetByID(ctx context.Context, tenantID, taskID uuid.UUID) (Task, error)
	ListByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Task, error)
	ListOpen(ctx context.Context, tenantID uuid.UUID) ([]Task, error)
	FindOpenByType(ctx context.Context, tenantID, leadID uuid.UUID, taskType TaskType) (*Task, error)
	UpdateDueDate(ctx context.Context, tenantID, taskID uuid.UUID, dueDate time.Time) (Task, error)
	UpdatePriority(ctx context.Context, tenantID, taskID uuid.UUID, priority Priority) (Task, error)
	Complete(ctx context.Context, tenantID, taskID uuid.UUID, completedAt time.Time) (Task, error)
	Delete(ctx context.Context, tenantID, taskID uuid.UUID) error
}

// OutreachTrigger invokes the external workflow-automation endpoint.
// Implementations are fire-and-forget: errors are for logging only.
type OutreachTrigger interface {
	TriggerOutreachEmail(ctx context.Context, tenantID, leadID uuid.UUID) error
}

// ReminderScheduler schedules a due-date reminder for a created task.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, tenantID, taskID uuid.UUID, runAt time.Time) error
}

// Service owns follow-up task generation and the task CRUD surface.
type Service struct {
	store     Store
	outreach  OutreachTrigger
	reminders ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates the follow-up service. outreach and reminders may be nil when
// the integration is not configured; the service degrades gracefully.
func New(store Store, outreach OutreachTrigger, reminders ReminderScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		outreach:  outreach,
		reminders: reminders,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ApplyTransition runs the generation table for a resolved status transition
// and persists the resulting tasks. Follow-ups are best-effort derivative of
// the status change: callers must not roll the status back when this fails.
func (s *Service) ApplyTransition(ctx context.Context, lead domain.LeadSnapshot, oldStatus, newStatus domain.Status) ([]Task, error) {
	gen := Generate(lead, oldStatus, newStatus, s.now())

	created := make([]Task, 0, len(gen.Drafts))
	var firstErr error
	for _, draft := range gen.Drafts {
		task, err := s.persistDraft(ctx, lead, draft)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.log.Error("follow-up generation failed", "leadId", lead.ID, "type", draft.Type, "error", err)
			continue
		}
		created = append(created, task)
	}

	if gen.TriggerOutreachEmail && s.outreach != nil {
		// Fire-and-forget: a failed workflow call degrades to "task created,
		// outbound email not sent".
		go func(tenantID, leadID uuid.UUID) {
			if err := s.outreach.TriggerOutreachEmail(context.WithoutCancel(ctx), tenantID, leadID); err != nil {
				s.log.IntegrationError("workflow-automation", err)
			}
		}(lead.TenantID, lead.ID)
	}

	return created, firstErr
}

// persistDraft inserts a draft, routing followup-type drafts through the
// open-task upsert so repeated transitions never accumulate duplicates.
func (s *Service) persistDraft(ctx context.Context, lead domain.LeadSnapshot, draft Draft) (Task, error) {
	if draft.Type == TaskFollowUp {
		return s.upsertOpenFollowUp(ctx, lead.TenantID, lead.ID, draft.DueDate, draft.Priority, true)
	}

	task, err := s.store.Insert(ctx, InsertParams{
		TenantID:        lead.TenantID,
		LeadID:          lead.ID,
		Type:            draft.Type,
		DueDate:         draft.DueDate,
		Priority:        draft.Priority,
		AutoGenerated:   true,
		EscalationLevel: draft.EscalationLevel,
		Notes:           draft.Notes,
	})
	if err != nil {
		return Task{}, err
	}

	s.afterCreate(ctx, task)
	return task, nil
}

// SyncManualFollowUp honors the legacy followUpRequested/followUpDate lead
// fields: the single open followup-type task is updated in place when it
// exists and inserted otherwise, so repeated saves of the same lead never
// accumulate duplicate open follow-ups.
func (s *Service) SyncManualFollowUp(ctx context.Context, tenantID, leadID uuid.UUID, dueDate time.Time) (Task, error) {
	if tenantID == uuid.Nil || leadID == uuid.Nil {
		return Task{}, apperr.Validation("tenantId and leadId are required")
	}
	return s.upsertOpenFollowUp(ctx, tenantID, leadID, busday.DateOnly(dueDate), PriorityMedium, false)
}

func (s *Service) upsertOpenFollowUp(ctx context.Context, tenantID, leadID uuid.UUID, dueDate time.Time, priority Priority, autoGenerated bool) (Task, error) {
	existing, err := s.store.FindOpenByType(ctx, tenantID, leadID, TaskFollowUp)
	if err != nil {
		return Task{}, err
	}

	if existing != nil {
		task, err := s.store.UpdateDueDate(ctx, tenantID, existing.ID, dueDate)
		if err != nil {
			return Task{}, err
		}
		s.publish(ctx, events.FollowUpTaskRescheduled{
			BaseEvent: events.NewBaseEvent(),
			TaskID:    task.ID,
			LeadID:    task.LeadID,
			TenantID:  task.TenantID,
			DueDate:   task.DueDate,
		})
		return task, nil
	}

	task, err := s.store.Insert(ctx, InsertParams{
		TenantID:      tenantID,
		LeadID:        leadID,
		Type:          TaskFollowUp,
		DueDate:       dueDate,
		Priority:      priority,
		AutoGenerated: autoGenerated,
	})
	if err != nil {
		return Task{}, err
	}

	s.afterCreate(ctx, task)
	return task, nil
}

// CreateManualParams carries a user-created task.
type CreateManualParams struct {
	LeadID   uuid.UUID
	Type     TaskType
	DueDate  time.Time
	Priority Priority
	Notes    string
}

// CreateManual creates a user-authored task. Manual followup-type tasks go
// through the same upsert as generated ones.
func (s *Service) CreateManual(ctx context.Context, tenantID uuid.UUID, p CreateManualParams) (Task, error) {
	if !p.Type.IsValid() {
		return Task{}, apperr.Validation("unknown task type: " + string(p.Type))
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.Type == TaskFollowUp {
		return s.upsertOpenFollowUp(ctx, tenantID, p.LeadID, busday.DateOnly(p.DueDate), p.Priority, false)
	}

	task, err := s.store.Insert(ctx, InsertParams{
		TenantID: tenantID,
		LeadID:   p.LeadID,
		Type:     p.Type,
		DueDate:  busday.DateOnly(p.DueDate),
		Priority: p.Priority,
		Notes:    p.Notes,
	})
	if err != nil {
		return Task{}, err
	}

	s.afterCreate(ctx, task)
	return task, nil
}

// ListByLead returns a lead's tasks with read-time derived priorities.
func (s *Service) ListByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Task, error) {
	tasks, err := s.store.ListByLead(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	return s.derivePriorities(tasks), nil
}

// ListOpen returns every open task for the tenant with derived priorities.
func (s *Service) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]Task, error) {
	tasks, err := s.store.ListOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.derivePriorities(tasks), nil
}

// Complete closes a task and publishes the completion event.
func (s *Service) Complete(ctx context.Context, tenantID, taskID uuid.UUID) (Task, error) {
	task, err := s.store.Complete(ctx, tenantID, taskID, s.now())
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, apperr.NotFound("follow-up task not found")
		}
		return Task{}, err
	}

	s.publish(ctx, events.FollowUpTaskCompleted{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    task.ID,
		LeadID:    task.LeadID,
		TenantID:  task.TenantID,
	})
	return task, nil
}

// Reschedule moves a task's due date.
func (s *Service) Reschedule(ctx context.Context, tenantID, taskID uuid.UUID, dueDate time.Time) (Task, error) {
	task, err := s.store.UpdateDueDate(ctx, tenantID, taskID, busday.DateOnly(dueDate))
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, apperr.NotFound("follow-up task not found")
		}
		return Task{}, err
	}

	s.publish(ctx, events.FollowUpTaskRescheduled{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    task.ID,
		LeadID:    task.LeadID,
		TenantID:  task.TenantID,
		DueDate:   task.DueDate,
	})
	return task, nil
}

// SetPriority edits the stored priority.
func (s *Service) SetPriority(ctx context.Context, tenantID, taskID uuid.UUID, priority Priority) (Task, error) {
	task, err := s.store.UpdatePriority(ctx, tenantID, taskID, priority)
	if errors.Is(err, ErrTaskNotFound) {
		return Task{}, apperr.NotFound("follow-up task not found")
	}
	return task, err
}

// Delete removes a task on user request.
func (s *Service) Delete(ctx context.Context, tenantID, taskID uuid.UUID) error {
	err := s.store.Delete(ctx, tenantID, taskID)
	if errors.Is(err, ErrTaskNotFound) {
		return apperr.NotFound("follow-up task not found")
	}
	return err
}

func (s *Service) afterCreate(ctx context.Context, task Task) {
	s.publish(ctx, events.FollowUpTaskCreated{
		BaseEvent:     events.NewBaseEvent(),
		TaskID:        task.ID,
		LeadID:        task.LeadID,
		TenantID:      task.TenantID,
		Type:          string(task.Type),
		DueDate:       task.DueDate,
		Priority:      string(task.Priority),
		AutoGenerated: task.AutoGenerated,
	})

	if s.reminders != nil {
		runAt := busday.DateOnly(task.DueDate).Add(9 * time.Hour)
		if err := s.reminders.ScheduleFollowUpReminder(ctx, task.TenantID, task.ID, runAt); err != nil {
			s.log.IntegrationError("reminder-scheduler", err)
		}
	}
}

func (s *Service) derivePriorities(tasks []Task) []Task {
	today := s.now()
	for i := range tasks {
		tasks[i].Priority = tasks[i].EffectivePriority(today)
	}
	return tasks
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
