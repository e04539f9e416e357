package sla

import (
	"context"
	"sync"
	"testing"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/followups"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadSource struct {
	tenantID uuid.UUID
	leads    []repository.Lead
}

func (f *fakeLeadSource) ListTenantIDs(context.Context) ([]uuid.UUID, error) {
	return []uuid.UUID{f.tenantID}, nil
}

func (f *fakeLeadSource) ListByStatuses(_ context.Context, tenantID uuid.UUID, statuses []domain.Status) ([]repository.Lead, error) {
	wanted := make(map[domain.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	var out []repository.Lead
	for _, l := range f.leads {
		if l.TenantID == tenantID && wanted[domain.Status(l.Status)] {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeTaskSource struct {
	tasks []followups.Task
}

func (f *fakeTaskSource) ListOpen(_ context.Context, tenantID uuid.UUID) ([]followups.Task, error) {
	var out []followups.Task
	for _, t := range f.tasks {
		if t.TenantID == tenantID && t.IsOpen() {
			out = append(out, t)
		}
	}
	return out, nil
}

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}

func (b *captureBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func TestEvaluatorPublishesBreachOncePerSession(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	tenantID := uuid.New()

	leadSource := &fakeLeadSource{
		tenantID: tenantID,
		leads: []repository.Lead{{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Status:      string(domain.StatusNew),
			StatusSince: now.Add(-30 * time.Hour),
		}},
	}
	bus := &captureBus{}
	ev := NewEvaluator(leadSource, &fakeTaskSource{}, bus, logger.New("development"), time.Second)
	ev.SetClock(func() time.Time { return now })

	ev.evaluate(context.Background())
	ev.evaluate(context.Background())
	ev.evaluate(context.Background())

	if bus.count() != 1 {
		t.Fatalf("published events = %d, want exactly 1 for a persistent breach", bus.count())
	}

	breach, ok := bus.events[0].(events.SlaBreachDetected)
	if !ok {
		t.Fatalf("unexpected event type: %T", bus.events[0])
	}
	if breach.BreachType != string(BreachContact24h) || breach.TenantID != tenantID {
		t.Fatalf("unexpected breach event: %+v", breach)
	}
}

func TestEvaluatorSnapshotTracksCurrentState(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	tenantID := uuid.New()
	lead := repository.Lead{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Status:      string(domain.StatusNew),
		StatusSince: now.Add(-30 * time.Hour),
	}

	leadSource := &fakeLeadSource{tenantID: tenantID, leads: []repository.Lead{lead}}
	ev := NewEvaluator(leadSource, &fakeTaskSource{}, nil, logger.New("development"), time.Second)
	ev.SetClock(func() time.Time { return now })

	ev.evaluate(context.Background())
	if got := ev.CurrentBreaches(tenantID); len(got) != 1 {
		t.Fatalf("breaches = %d, want 1", len(got))
	}

	// The lead gets contacted: the breach disappears from the snapshot.
	leadSource.leads[0].Status = string(domain.StatusContacted)
	ev.evaluate(context.Background())
	if got := ev.CurrentBreaches(tenantID); len(got) != 0 {
		t.Fatalf("breaches = %d, want 0 after resolution", len(got))
	}
}

func TestEvaluatorCombinesLeadAndTaskBreaches(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	tenantID := uuid.New()

	leadSource := &fakeLeadSource{
		tenantID: tenantID,
		leads: []repository.Lead{{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Status:      string(domain.StatusOfferCreated),
			StatusSince: now.Add(-50 * time.Hour),
		}},
	}
	taskSource := &fakeTaskSource{
		tasks: []followups.Task{{
			ID:       uuid.New(),
			TenantID: tenantID,
			LeadID:   uuid.New(),
			Type:     followups.TaskCall,
			DueDate:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	ev := NewEvaluator(leadSource, taskSource, nil, logger.New("development"), time.Second)
	ev.SetClock(func() time.Time { return now })

	ev.evaluate(context.Background())

	got := ev.CurrentBreaches(tenantID)
	if len(got) != 2 {
		t.Fatalf("breaches = %d, want 2", len(got))
	}
	types := map[BreachType]bool{}
	for _, b := range got {
		types[b.Type] = true
	}
	if !types[BreachOffer48h] || !types[BreachFollowUpOverdue] {
		t.Fatalf("unexpected breach mix: %+v", got)
	}
}
