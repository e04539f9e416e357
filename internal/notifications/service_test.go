package notifications

import (
	"context"
	"testing"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/followups"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	items map[uuid.UUID]Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[uuid.UUID]Notification)}
}

func (f *fakeStore) Insert(_ context.Context, p InsertParams) (Notification, error) {
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
	n := Notification{
		ID:        uuid.New(),
		TenantID:  p.TenantID,
		Type:      p.Type,
		Title:     p.Title,
		Body:      p.Body,
		LeadID:    p.LeadID,
		TaskID:    p.TaskID,
		Priority:  p.Priority,
		State:     StateUnseen,
		CreatedAt: time.Now(),
	}
	f.items[n.ID] = n
	return n, nil
}

func (f *fakeStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (Notification, error) {
	n, ok := f.items[id]
	if !ok || n.TenantID != tenantID {
		return Notification{}, ErrNotificationNotFound
	}
	return n, nil
}

func (f *fakeStore) List(_ context.Context, tenantID uuid.UUID, _ int) ([]Notification, error) {
	var out []Notification
	for _, n := range f.items {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOpenByTask(_ context.Context, tenantID, taskID uuid.UUID) (*Notification, error) {
	for _, n := range f.items {
		if n.TenantID == tenantID && n.TaskID != nil && *n.TaskID == taskID && n.State != StateRead {
			found := n
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) MarkRead(_ context.Context, tenantID, id uuid.UUID, readAt time.Time) (Notification, error) {
	n, ok := f.items[id]
	if !ok || n.TenantID != tenantID {
		return Notification{}, ErrNotificationNotFound
	}
	n.State = StateRead
	if n.ReadAt == nil {
		n.ReadAt = &readAt
	}
	n.SnoozedUntil = nil
	f.items[id] = n
	return n, nil
}

func (f *fakeStore) MarkAllRead(_ context.Context, tenantID uuid.UUID, readAt time.Time) (int, error) {
	count := 0
	for id, n := range f.items {
		if n.TenantID == tenantID && n.State != StateRead {
			n.State = StateRead
			if n.ReadAt == nil {
				at := readAt
				n.ReadAt = &at
			}
			n.SnoozedUntil = nil
			f.items[id] = n
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Snooze(_ context.Context, tenantID, id uuid.UUID, until time.Time) (Notification, error) {
	n, ok := f.items[id]
	if !ok || n.TenantID != tenantID {
		return Notification{}, ErrNotificationNotFound
	}
	n.State = StateSnoozed
	n.SnoozedUntil = &until
	f.items[id] = n
	return n, nil
}

func (f *fakeStore) SnoozeAllOpen(_ context.Context, tenantID uuid.UUID, until, now time.Time) (int, error) {
	count := 0
	for id, n := range f.items {
		if n.TenantID == tenantID && n.EffectiveState(now) == StateUnseen {
			n.State = StateSnoozed
			n.SnoozedUntil = &until
			f.items[id] = n
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountUnseen(_ context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	count := 0
	for _, n := range f.items {
		if n.TenantID == tenantID && n.EffectiveState(now) == StateUnseen {
			count++
		}
	}
	return count, nil
}

type fakeTasks struct {
	completed []uuid.UUID
	synced    []uuid.UUID
	syncedDue []time.Time
}

func (f *fakeTasks) Complete(_ context.Context, _ uuid.UUID, taskID uuid.UUID) (followups.Task, error) {
	f.completed = append(f.completed, taskID)
	return followups.Task{ID: taskID}, nil
}

func (f *fakeTasks) SyncManualFollowUp(_ context.Context, _ uuid.UUID, leadID uuid.UUID, dueDate time.Time) (followups.Task, error) {
	f.synced = append(f.synced, leadID)
	f.syncedDue = append(f.syncedDue, dueDate)
	return followups.Task{ID: uuid.New(), LeadID: leadID, DueDate: dueDate}, nil
}

var notifNow = time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)

func testService(store Store, tasks TaskActions) *Service {
	svc := New(store, tasks, nil, logger.New("development"))
	svc.SetClock(func() time.Time { return notifNow })
	return svc
}

func seedBreach(t *testing.T, svc *Service, tenantID uuid.UUID) Notification {
	t.Helper()
	n, err := svc.CreateBreachAlert(context.Background(), events.SlaBreachDetected{
		BaseEvent:  events.NewBaseEvent(),
		TenantID:   tenantID,
		LeadID:     uuid.New(),
		BreachType: "contact_24h",
		DueAt:      notifNow.Add(-2 * time.Hour),
		Level:      1,
	})
	if err != nil {
		t.Fatalf("create breach alert: %v", err)
	}
	return n
}

func TestSnoozeElapsesWithoutMutation(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, nil)
	tenantID := uuid.New()
	n := seedBreach(t, svc, tenantID)

	if _, err := svc.Snooze(context.Background(), tenantID, n.ID, SnoozeOneHour, nil); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	items, err := svc.List(context.Background(), tenantID, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].State != StateSnoozed {
		t.Fatalf("state = %s, want snoozed", items[0].State)
	}

	// Move the clock past the wake-up time: the same row now reads as
	// unseen, with no write in between.
	svc.SetClock(func() time.Time { return notifNow.Add(2 * time.Hour) })
	items, err = svc.List(context.Background(), tenantID, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].State != StateUnseen {
		t.Fatalf("state = %s, want unseen after snooze elapsed", items[0].State)
	}
	if store.items[n.ID].State != StateSnoozed {
		t.Fatal("stored state mutated by a read")
	}
}

func TestSnoozePresets(t *testing.T) {
	cases := []struct {
		preset SnoozePreset
		want   time.Time
	}{
		{SnoozeOneHour, notifNow.Add(time.Hour)},
		{SnoozeFourHours, notifNow.Add(4 * time.Hour)},
		{SnoozeTomorrow, time.Date(2025, time.March, 6, 9, 0, 0, 0, time.UTC)},
		{SnoozeNextWeek, time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ResolveSnoozeUntil(tc.preset, nil, notifNow)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.preset, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%s: until = %v, want %v", tc.preset, got, tc.want)
		}
	}

	if _, err := ResolveSnoozeUntil(SnoozeCustom, nil, notifNow); err == nil {
		t.Error("custom preset without timestamp must fail")
	}
	past := notifNow.Add(-time.Hour)
	if _, err := ResolveSnoozeUntil(SnoozeCustom, &past, notifNow); err == nil {
		t.Error("custom preset in the past must fail")
	}
}

func TestSnoozeAllSharesOneTimestamp(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, nil)
	tenantID := uuid.New()
	seedBreach(t, svc, tenantID)
	seedBreach(t, svc, tenantID)
	read := seedBreach(t, svc, tenantID)
	if _, err := svc.MarkRead(context.Background(), tenantID, read.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	count, err := svc.SnoozeAll(context.Background(), tenantID, SnoozeFourHours, nil)
	if err != nil {
		t.Fatalf("snooze all: %v", err)
	}
	if count != 2 {
		t.Fatalf("snoozed = %d, want 2 (read rows untouched)", count)
	}

	want := notifNow.Add(4 * time.Hour)
	for _, n := range store.items {
		if n.State == StateSnoozed && !n.SnoozedUntil.Equal(want) {
			t.Fatalf("snoozedUntil = %v, want shared %v", n.SnoozedUntil, want)
		}
	}
}

func TestSnoozeAppliesToReadNotifications(t *testing.T) {
	store := newFakeStore()
	tasks := &fakeTasks{}
	svc := testService(store, tasks)
	tenantID := uuid.New()
	n := seedBreach(t, svc, tenantID)

	if _, err := svc.MarkRead(context.Background(), tenantID, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	snoozed, err := svc.Snooze(context.Background(), tenantID, n.ID, SnoozeOneHour, nil)
	if err != nil {
		t.Fatalf("snoozing a read notification must succeed: %v", err)
	}
	if snoozed.State != StateSnoozed {
		t.Fatalf("state = %s, want snoozed", snoozed.State)
	}
	if snoozed.ReadAt == nil {
		t.Fatal("read flag lost by snoozing")
	}

	// The row is snoozed now, but it was read before: resolving it again
	// must not fire the side effect a second time.
	if _, err := svc.Resolve(context.Background(), tenantID, n.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(tasks.synced) != 0 {
		t.Fatalf("follow-up syncs = %d, want 0 for a previously read alert", len(tasks.synced))
	}
}

func TestSnoozeAllLeavesFutureSnoozesAlone(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, nil)
	tenantID := uuid.New()

	future := seedBreach(t, svc, tenantID)
	elapsed := seedBreach(t, svc, tenantID)
	seedBreach(t, svc, tenantID)

	if _, err := svc.Snooze(context.Background(), tenantID, future.ID, SnoozeNextWeek, nil); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	if _, err := svc.Snooze(context.Background(), tenantID, elapsed.ID, SnoozeOneHour, nil); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	// Two hours later the one-hour snooze has elapsed and is active again;
	// the next-week snooze is not.
	svc.SetClock(func() time.Time { return notifNow.Add(2 * time.Hour) })
	count, err := svc.SnoozeAll(context.Background(), tenantID, SnoozeFourHours, nil)
	if err != nil {
		t.Fatalf("snooze all: %v", err)
	}
	if count != 2 {
		t.Fatalf("snoozed = %d, want 2 (future snooze untouched)", count)
	}

	nextWeek := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	if !store.items[future.ID].SnoozedUntil.Equal(nextWeek) {
		t.Fatalf("future snooze rewritten to %v", store.items[future.ID].SnoozedUntil)
	}
	shared := notifNow.Add(6 * time.Hour)
	if !store.items[elapsed.ID].SnoozedUntil.Equal(shared) {
		t.Fatalf("elapsed snooze not re-snoozed: %v", store.items[elapsed.ID].SnoozedUntil)
	}
}

func TestResolveTaskDueCompletesTaskOnce(t *testing.T) {
	store := newFakeStore()
	completer := &fakeTasks{}
	svc := testService(store, completer)
	tenantID := uuid.New()

	task := followups.Task{
		ID:       uuid.New(),
		TenantID: tenantID,
		LeadID:   uuid.New(),
		Type:     followups.TaskCall,
		DueDate:  notifNow,
	}
	if err := svc.NotifyTaskDue(context.Background(), task); err != nil {
		t.Fatalf("notify: %v", err)
	}

	var n Notification
	for _, item := range store.items {
		n = item
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Resolve(context.Background(), tenantID, n.ID); err != nil {
			t.Fatalf("resolve %d: %v", i+1, err)
		}
	}

	if len(completer.completed) != 1 {
		t.Fatalf("task completions = %d, want exactly 1", len(completer.completed))
	}
	if completer.completed[0] != task.ID {
		t.Fatalf("completed wrong task: %v", completer.completed[0])
	}
}

func TestResolveBreachCreatesFollowUpOnce(t *testing.T) {
	store := newFakeStore()
	tasks := &fakeTasks{}
	svc := testService(store, tasks)
	tenantID := uuid.New()
	n := seedBreach(t, svc, tenantID)

	for i := 0; i < 2; i++ {
		if _, err := svc.Resolve(context.Background(), tenantID, n.ID); err != nil {
			t.Fatalf("resolve %d: %v", i+1, err)
		}
	}

	if len(tasks.synced) != 1 {
		t.Fatalf("follow-up syncs = %d, want exactly 1", len(tasks.synced))
	}
	if tasks.synced[0] != *n.LeadID {
		t.Fatalf("follow-up for wrong lead: %v", tasks.synced[0])
	}
	// Resolved on Wednesday March 5: the follow-up lands the next business
	// day, Thursday March 6.
	want := time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC)
	if !tasks.syncedDue[0].Equal(want) {
		t.Fatalf("due = %v, want %v", tasks.syncedDue[0], want)
	}
}

func TestBreachAlertPriorityTracksLevel(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, nil)
	tenantID := uuid.New()

	normal := seedBreach(t, svc, tenantID)
	if normal.Priority != PriorityNormal {
		t.Fatalf("level 1 priority = %s, want normal", normal.Priority)
	}

	escalated, err := svc.CreateBreachAlert(context.Background(), events.SlaBreachDetected{
		BaseEvent:  events.NewBaseEvent(),
		TenantID:   tenantID,
		LeadID:     uuid.New(),
		BreachType: "offer_48h",
		DueAt:      notifNow.Add(-72 * time.Hour),
		Level:      3,
	})
	if err != nil {
		t.Fatalf("create breach alert: %v", err)
	}
	if escalated.Priority != PriorityHigh {
		t.Fatalf("level 3 priority = %s, want high", escalated.Priority)
	}
}

func TestNotifyTaskDueDedupes(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, nil)
	tenantID := uuid.New()

	task := followups.Task{
		ID:       uuid.New(),
		TenantID: tenantID,
		LeadID:   uuid.New(),
		Type:     followups.TaskCall,
		DueDate:  notifNow,
	}
	for i := 0; i < 2; i++ {
		if err := svc.NotifyTaskDue(context.Background(), task); err != nil {
			t.Fatalf("notify %d: %v", i+1, err)
		}
	}

	if len(store.items) != 1 {
		t.Fatalf("notifications = %d, want 1", len(store.items))
	}
}

func TestMarkAllReadClosesSnoozedEntries(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, nil)
	tenantID := uuid.New()

	first := seedBreach(t, svc, tenantID)
	seedBreach(t, svc, tenantID)
	if _, err := svc.Snooze(context.Background(), tenantID, first.ID, SnoozeFourHours, nil); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	count, err := svc.MarkAllRead(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	for _, n := range store.items {
		if n.State != StateRead || n.SnoozedUntil != nil {
			t.Fatalf("entry not fully closed: %+v", n)
		}
	}

	unseen, err := svc.CountUnseen(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("count unseen: %v", err)
	}
	if unseen != 0 {
		t.Fatalf("unseen = %d, want 0", unseen)
	}
}
