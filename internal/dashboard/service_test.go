package dashboard

import (
	"context"
	"testing"
	"time"

	apptrepo "leaddesk_backend/internal/appointments/repository"
	"leaddesk_backend/internal/followups"

	"github.com/google/uuid"
)

var dashNow = time.Date(2025, time.March, 5, 11, 0, 0, 0, time.UTC)

type stubTasks struct {
	tasks []followups.Task
}

func (s stubTasks) ListOpen(context.Context, uuid.UUID) ([]followups.Task, error) {
	return s.tasks, nil
}

type stubAppointments struct {
	appts []apptrepo.Appointment
}

func (s stubAppointments) ListScheduledInRange(context.Context, uuid.UUID, time.Time, time.Time) ([]apptrepo.Appointment, error) {
	return s.appts, nil
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func testService(tasks []followups.Task, appts []apptrepo.Appointment) *Service {
	svc := New(stubTasks{tasks: tasks}, stubAppointments{appts: appts})
	svc.SetClock(func() time.Time { return dashNow })
	return svc
}

func TestDueTodayOrdersOverdueFirst(t *testing.T) {
	leadA, leadB, leadC := uuid.New(), uuid.New(), uuid.New()

	tasks := []followups.Task{
		{ID: uuid.New(), LeadID: leadA, Type: followups.TaskCall, DueDate: day(5), Priority: followups.PriorityMedium},
		{ID: uuid.New(), LeadID: leadB, Type: followups.TaskFollowUp, DueDate: day(3), Priority: followups.PriorityMedium},
	}
	appts := []apptrepo.Appointment{
		{ID: uuid.New(), LeadID: leadC, Title: "Site visit", StartTime: dashNow.Add(3 * time.Hour), Status: "scheduled"},
	}

	items, err := testService(tasks, appts).DueToday(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if !items[0].Overdue || items[0].LeadID != leadB {
		t.Fatalf("first item should be the overdue task: %+v", items[0])
	}
	if items[0].Priority != string(followups.PriorityOverdue) {
		t.Fatalf("overdue task priority = %s, want overdue", items[0].Priority)
	}
	if items[1].Kind != KindTask || items[1].LeadID != leadA {
		t.Fatalf("second item should be today's task: %+v", items[1])
	}
	if items[2].Kind != KindAppointment {
		t.Fatalf("third item should be the appointment: %+v", items[2])
	}
}

func TestDueTodayExcludesFutureTasks(t *testing.T) {
	tasks := []followups.Task{
		{ID: uuid.New(), LeadID: uuid.New(), Type: followups.TaskCall, DueDate: day(12), Priority: followups.PriorityMedium},
	}

	items, err := testService(tasks, nil).DueToday(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0 (future tasks stay off the view)", len(items))
	}
}

func TestSummarizeCounts(t *testing.T) {
	tasks := []followups.Task{
		{ID: uuid.New(), LeadID: uuid.New(), Type: followups.TaskCall, DueDate: day(3), Priority: followups.PriorityMedium},
		{ID: uuid.New(), LeadID: uuid.New(), Type: followups.TaskCall, DueDate: day(5), Priority: followups.PriorityMedium},
		{ID: uuid.New(), LeadID: uuid.New(), Type: followups.TaskCall, DueDate: day(20), Priority: followups.PriorityMedium},
	}
	appts := []apptrepo.Appointment{
		{ID: uuid.New(), LeadID: uuid.New(), Title: "Visit", StartTime: dashNow.Add(24 * time.Hour), Status: "scheduled"},
	}

	sum, err := testService(tasks, appts).Summarize(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Summary{OpenTasks: 3, OverdueTasks: 1, DueTodayTasks: 1, WeekAppointments: 1}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}
}
