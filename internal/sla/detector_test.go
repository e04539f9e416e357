package sla

import (
	"testing"
	"time"

	"leaddesk_backend/internal/followups"
	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var slaNow = time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)

func newLead(status domain.Status, since time.Time) domain.LeadSnapshot {
	return domain.LeadSnapshot{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		Status:      status,
		StatusSince: since,
	}
}

func TestContactBreachRespects24hWindow(t *testing.T) {
	stale := newLead(domain.StatusNew, slaNow.Add(-25*time.Hour))
	fresh := newLead(domain.StatusNew, slaNow.Add(-23*time.Hour))

	breaches := ComputeBreaches([]domain.LeadSnapshot{stale, fresh}, nil, slaNow)

	if len(breaches) != 1 {
		t.Fatalf("breaches = %d, want 1", len(breaches))
	}
	b := breaches[0]
	if b.LeadID != stale.ID || b.Type != BreachContact24h {
		t.Fatalf("unexpected breach: %+v", b)
	}
	if !b.DueAt.Equal(stale.StatusSince.Add(24 * time.Hour)) {
		t.Fatalf("dueAt = %v", b.DueAt)
	}
	if b.Level != 1 {
		t.Fatalf("level = %d, want 1", b.Level)
	}
}

func TestContactWindowCoversContactedStage(t *testing.T) {
	contacted := newLead(domain.StatusContacted, slaNow.Add(-72*time.Hour))
	breaches := ComputeBreaches([]domain.LeadSnapshot{contacted}, nil, slaNow)
	if len(breaches) != 1 || breaches[0].Type != BreachContact24h {
		t.Fatalf("unexpected breaches: %+v", breaches)
	}
}

func TestInProgressLeadHasNoRunningClock(t *testing.T) {
	lead := newLead(domain.StatusInProgress, slaNow.Add(-200*time.Hour))
	if breaches := ComputeBreaches([]domain.LeadSnapshot{lead}, nil, slaNow); len(breaches) != 0 {
		t.Fatalf("breaches = %d, want 0", len(breaches))
	}
}

func TestOfferBreachUses48hWindow(t *testing.T) {
	lead := newLead(domain.StatusOfferCreated, slaNow.Add(-49*time.Hour))

	breaches := ComputeBreaches([]domain.LeadSnapshot{lead}, nil, slaNow)

	if len(breaches) != 1 || breaches[0].Type != BreachOffer48h {
		t.Fatalf("unexpected breaches: %+v", breaches)
	}
}

func TestOverdueTaskBreaches(t *testing.T) {
	task := followups.Task{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		LeadID:   uuid.New(),
		Type:     followups.TaskCall,
		DueDate:  time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
	}
	dueToday := followups.Task{
		ID:       uuid.New(),
		TenantID: task.TenantID,
		LeadID:   uuid.New(),
		Type:     followups.TaskCall,
		DueDate:  time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
	}

	breaches := ComputeBreaches(nil, []followups.Task{task, dueToday}, slaNow)

	if len(breaches) != 1 {
		t.Fatalf("breaches = %d, want 1 (due today is not overdue)", len(breaches))
	}
	b := breaches[0]
	if b.Type != BreachFollowUpOverdue || b.LeadID != task.LeadID {
		t.Fatalf("unexpected breach: %+v", b)
	}
}

func TestCompletedTaskNeverBreaches(t *testing.T) {
	done := slaNow.Add(-time.Hour)
	task := followups.Task{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		LeadID:      uuid.New(),
		DueDate:     time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		CompletedAt: &done,
	}
	if breaches := ComputeBreaches(nil, []followups.Task{task}, slaNow); len(breaches) != 0 {
		t.Fatalf("breaches = %d, want 0", len(breaches))
	}
}

func TestLevelIsMonotoneAndBounded(t *testing.T) {
	cases := []struct {
		overdue time.Duration
		want    int
	}{
		{time.Minute, 1},
		{23 * time.Hour, 1},
		{25 * time.Hour, 2},
		{49 * time.Hour, 3},
		{30 * 24 * time.Hour, 3},
	}
	for _, tc := range cases {
		if got := level(tc.overdue); got != tc.want {
			t.Errorf("level(%v) = %d, want %d", tc.overdue, got, tc.want)
		}
	}
}

func TestComputeBreachesIsDeterministic(t *testing.T) {
	lead := newLead(domain.StatusNew, slaNow.Add(-48*time.Hour))
	first := ComputeBreaches([]domain.LeadSnapshot{lead}, nil, slaNow)
	second := ComputeBreaches([]domain.LeadSnapshot{lead}, nil, slaNow)

	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("non-deterministic result: %+v vs %+v", first, second)
	}
}
