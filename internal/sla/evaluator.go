package sla

import (
	"context"
	"sync"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/followups"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LeadSource is the slice of the lead store the evaluator polls.
type LeadSource interface {
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
	ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []domain.Status) ([]repository.Lead, error)
}

// TaskSource is the slice of the follow-up store the evaluator polls.
type TaskSource interface {
	ListOpen(ctx context.Context, tenantID uuid.UUID) ([]followups.Task, error)
}

// monitoredStatuses are the lifecycle states with a running SLA clock.
var monitoredStatuses = []domain.Status{
	domain.StatusNew,
	domain.StatusContacted,
	domain.StatusOfferCreated,
	domain.StatusOfferSubmitted,
}

// Evaluator polls the pipeline on a fixed interval, keeps the latest breach
// snapshot per tenant, and publishes each (lead, breachType) pair once per
// process session. Resolving and re-breaching the same pair later in the
// session is intentionally quiet; the snapshot still shows it.
type Evaluator struct {
	leads    LeadSource
	tasks    TaskSource
	bus      events.Bus
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	current map[uuid.UUID][]Breach
	seen    map[Key]bool

	kick chan struct{}
}

func NewEvaluator(leads LeadSource, tasks TaskSource, bus events.Bus, log *logger.Logger, interval time.Duration) *Evaluator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Evaluator{
		leads:    leads,
		tasks:    tasks,
		bus:      bus,
		log:      log,
		interval: interval,
		now:      time.Now,
		current:  make(map[uuid.UUID][]Breach),
		seen:     make(map[Key]bool),
		kick:     make(chan struct{}, 1),
	}
}

// SetClock overrides the time source, for tests.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.now = now
}

// SubscribeTriggers re-evaluates promptly after pipeline mutations instead of
// waiting out the full tick.
func (e *Evaluator) SubscribeTriggers(bus events.Bus) {
	handler := events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		e.Kick()
		return nil
	})
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), handler)
	bus.Subscribe(events.LeadUpdated{}.EventName(), handler)
	bus.Subscribe(events.FollowUpTaskCompleted{}.EventName(), handler)
	bus.Subscribe(events.AppointmentCreated{}.EventName(), handler)
}

// Kick requests an out-of-band evaluation. Coalesces when one is pending.
func (e *Evaluator) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Run polls until the context is cancelled.
func (e *Evaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.evaluate(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.evaluate(ctx)
		case <-e.kick:
			e.evaluate(ctx)
		}
	}
}

// CurrentBreaches returns the latest snapshot for a tenant.
func (e *Evaluator) CurrentBreaches(tenantID uuid.UUID) []Breach {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := e.current[tenantID]
	out := make([]Breach, len(snapshot))
	copy(out, snapshot)
	return out
}

func (e *Evaluator) evaluate(ctx context.Context) {
	tenants, err := e.leads.ListTenantIDs(ctx)
	if err != nil {
		e.log.Error("sla evaluation: tenant listing failed", "error", err)
		return
	}

	for _, tenantID := range tenants {
		if err := e.evaluateTenant(ctx, tenantID); err != nil {
			e.log.Error("sla evaluation failed", "tenantId", tenantID, "error", err)
		}
	}
}

func (e *Evaluator) evaluateTenant(ctx context.Context, tenantID uuid.UUID) error {
	var (
		leads []repository.Lead
		tasks []followups.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = e.leads.ListByStatuses(gctx, tenantID, monitoredStatuses)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = e.tasks.ListOpen(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snapshots := make([]domain.LeadSnapshot, len(leads))
	for i, lead := range leads {
		snapshots[i] = lead.Snapshot()
	}

	breaches := ComputeBreaches(snapshots, tasks, e.now())

	e.mu.Lock()
	e.current[tenantID] = breaches
	fresh := make([]Breach, 0)
	for _, b := range breaches {
		if !e.seen[b.Key()] {
			e.seen[b.Key()] = true
			fresh = append(fresh, b)
		}
	}
	e.mu.Unlock()

	for _, b := range fresh {
		if e.bus != nil {
			e.bus.Publish(ctx, events.SlaBreachDetected{
				BaseEvent:  events.NewBaseEvent(),
				TenantID:   b.TenantID,
				LeadID:     b.LeadID,
				BreachType: string(b.Type),
				DueAt:      b.DueAt,
				Level:      b.Level,
			})
		}
	}
	return nil
}
