package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/followups"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/busday"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs; *Repository
// satisfies it.
type Store interface {
	Insert(ctx context.Context, p InsertParams) (Notification, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Notification, error)
	List(ctx context.Context, tenantID uuid.UUID, limit int) ([]Notification, error)
	FindOpenByTask(ctx context.Context, tenantID, taskID uuid.UUID) (*Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID, readAt time.Time) (Notification, error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID, readAt time.Time) (int, error)
	Snooze(ctx context.Context, tenantID, id uuid.UUID, until time.Time) (Notification, error)
	SnoozeAllOpen(ctx context.Context, tenantID uuid.UUID, until, now time.Time) (int, error)
	CountUnseen(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error)
}

// TaskActions are the follow-up operations notification resolution drives:
// completing the task behind a reminder, and opening a targeted follow-up
// for the lead behind a breach alert. *followups.Service satisfies it.
type TaskActions interface {
	Complete(ctx context.Context, tenantID, taskID uuid.UUID) (followups.Task, error)
	SyncManualFollowUp(ctx context.Context, tenantID, leadID uuid.UUID, dueDate time.Time) (followups.Task, error)
}

type Service struct {
	store Store
	tasks TaskActions
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func New(store Store, tasks TaskActions, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store: store,
		tasks: tasks,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SubscribeBreaches creates an inbox entry for every breach the evaluator
// publishes.
func (s *Service) SubscribeBreaches(bus events.Bus) {
	bus.Subscribe(events.SlaBreachDetected{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.SlaBreachDetected)
		if !ok {
			return nil
		}
		_, err := s.CreateBreachAlert(ctx, e)
		return err
	}))
}

// CreateBreachAlert persists a breach notification.
func (s *Service) CreateBreachAlert(ctx context.Context, e events.SlaBreachDetected) (Notification, error) {
	priority := PriorityNormal
	if e.Level >= 2 {
		priority = PriorityHigh
	}

	leadID := e.LeadID
	n, err := s.store.Insert(ctx, InsertParams{
		TenantID: e.TenantID,
		Type:     TypeSlaBreach,
		Title:    breachTitle(e.BreachType),
		Body:     fmt.Sprintf("Due since %s (level %d)", e.DueAt.Format("2006-01-02 15:04"), e.Level),
		LeadID:   &leadID,
		Priority: priority,
	})
	if err != nil {
		return Notification{}, err
	}

	s.publishCreated(ctx, n)
	return n, nil
}

// NotifyTaskDue turns a due follow-up task into a reminder notification. An
// existing open reminder for the same task is left alone.
func (s *Service) NotifyTaskDue(ctx context.Context, task followups.Task) error {
	existing, err := s.store.FindOpenByTask(ctx, task.TenantID, task.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	priority := PriorityNormal
	if task.Priority == followups.PriorityHigh {
		priority = PriorityHigh
	}

	leadID, taskID := task.LeadID, task.ID
	n, err := s.store.Insert(ctx, InsertParams{
		TenantID: task.TenantID,
		Type:     TypeTaskDue,
		Title:    "Follow-up task due",
		Body:     fmt.Sprintf("%s task due %s", task.Type, task.DueDate.Format("2006-01-02")),
		LeadID:   &leadID,
		TaskID:   &taskID,
		Priority: priority,
	})
	if err != nil {
		return err
	}

	s.publishCreated(ctx, n)
	return nil
}

// List returns the inbox with read-time derived states.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]Notification, error) {
	items, err := s.store.List(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range items {
		items[i].State = items[i].EffectiveState(now)
	}
	return items, nil
}

func (s *Service) CountUnseen(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.store.CountUnseen(ctx, tenantID, s.now())
}

func (s *Service) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (Notification, error) {
	n, err := s.store.MarkRead(ctx, tenantID, id, s.now())
	if errors.Is(err, ErrNotificationNotFound) {
		return Notification{}, apperr.NotFound("notification not found")
	}
	return n, err
}

// MarkAllRead closes every open notification in one sweep.
func (s *Service) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.store.MarkAllRead(ctx, tenantID, s.now())
}

// Snooze applies a preset or custom wake-up time to one notification.
// Snoozing is independent of the read flag; a read notification can still
// be deferred.
func (s *Service) Snooze(ctx context.Context, tenantID, id uuid.UUID, preset SnoozePreset, custom *time.Time) (Notification, error) {
	until, err := ResolveSnoozeUntil(preset, custom, s.now())
	if err != nil {
		return Notification{}, err
	}

	n, err := s.store.Snooze(ctx, tenantID, id, until)
	if errors.Is(err, ErrNotificationNotFound) {
		return Notification{}, apperr.NotFound("notification not found")
	}
	return n, err
}

// SnoozeAll moves the currently active view (unseen plus elapsed snoozes)
// to one shared wake-up time. Rows snoozed into the future keep their own.
func (s *Service) SnoozeAll(ctx context.Context, tenantID uuid.UUID, preset SnoozePreset, custom *time.Time) (int, error) {
	now := s.now()
	until, err := ResolveSnoozeUntil(preset, custom, now)
	if err != nil {
		return 0, err
	}
	return s.store.SnoozeAllOpen(ctx, tenantID, until, now)
}

// Resolve marks a notification read and runs its type-specific side effect.
// The read flag (readAt) is the dedup guard: a notification that was ever
// marked read resolves as a no-op, so the side effect runs at most once.
// The stored state is not the guard; a read row may have been snoozed since.
func (s *Service) Resolve(ctx context.Context, tenantID, id uuid.UUID) (Notification, error) {
	current, err := s.store.GetByID(ctx, tenantID, id)
	if errors.Is(err, ErrNotificationNotFound) {
		return Notification{}, apperr.NotFound("notification not found")
	}
	if err != nil {
		return Notification{}, err
	}

	if current.ReadAt != nil {
		return current, nil
	}

	n, err := s.MarkRead(ctx, tenantID, id)
	if err != nil {
		return Notification{}, err
	}

	if s.tasks != nil {
		switch {
		case n.Type == TypeTaskDue && n.TaskID != nil:
			if _, err := s.tasks.Complete(ctx, tenantID, *n.TaskID); err != nil {
				// The notification is resolved either way; the task can still be
				// completed from the task list.
				s.log.Error("task completion on resolve failed", "taskId", *n.TaskID, "error", err)
			}
		case n.Type == TypeSlaBreach && n.LeadID != nil:
			due := busday.AddBusinessDays(busday.DateOnly(s.now()), 1)
			if _, err := s.tasks.SyncManualFollowUp(ctx, tenantID, *n.LeadID, due); err != nil {
				s.log.Error("follow-up creation on resolve failed", "leadId", *n.LeadID, "error", err)
			}
		}
	}
	return n, nil
}

func (s *Service) publishCreated(ctx context.Context, n Notification) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.NotificationCreated{
		BaseEvent:      events.NewBaseEvent(),
		NotificationID: n.ID,
		TenantID:       n.TenantID,
		Type:           string(n.Type),
	})
}

func breachTitle(breachType string) string {
	switch breachType {
	case "contact_24h":
		return "Lead not contacted within 24 hours"
	case "offer_48h":
		return "Offer not submitted within 48 hours"
	case "followup_overdue":
		return "Follow-up task overdue"
	default:
		return "Service level breached"
	}
}
