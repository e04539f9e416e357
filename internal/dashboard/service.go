// Package dashboard aggregates open work into a single due-task view.
package dashboard

import (
	"context"
	"sort"
	"time"

	apptrepo "leaddesk_backend/internal/appointments/repository"
	"leaddesk_backend/internal/followups"
	"leaddesk_backend/platform/busday"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ItemKind distinguishes the two sources merged into the view.
type ItemKind string

const (
	KindTask        ItemKind = "task"
	KindAppointment ItemKind = "appointment"
)

// DueItem is one row of the dashboard work list.
type DueItem struct {
	Kind          ItemKind   `json:"kind"`
	LeadID        uuid.UUID  `json:"leadId"`
	TaskID        *uuid.UUID `json:"taskId,omitempty"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	Title         string     `json:"title"`
	DueAt         time.Time  `json:"dueAt"`
	Priority      string     `json:"priority,omitempty"`
	Overdue       bool       `json:"overdue"`
}

// TaskSource lists open follow-up tasks with read-time derived priorities.
type TaskSource interface {
	ListOpen(ctx context.Context, tenantID uuid.UUID) ([]followups.Task, error)
}

// AppointmentSource lists scheduled appointments inside a window.
type AppointmentSource interface {
	ListScheduledInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]apptrepo.Appointment, error)
}

type Service struct {
	tasks        TaskSource
	appointments AppointmentSource
	now          func() time.Time
}

func New(tasks TaskSource, appointments AppointmentSource) *Service {
	return &Service{
		tasks:        tasks,
		appointments: appointments,
		now:          time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// horizonDays is how far ahead the view looks for appointments.
const horizonDays = 7

// DueToday merges overdue and due-today follow-up tasks with the coming
// week's appointments. Overdue items sort first, then by due time.
func (s *Service) DueToday(ctx context.Context, tenantID uuid.UUID) ([]DueItem, error) {
	now := s.now()
	today := busday.DateOnly(now)

	var (
		tasks []followups.Task
		appts []apptrepo.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.ListOpen(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.appointments.ListScheduledInRange(gctx, tenantID, today, today.AddDate(0, 0, horizonDays))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]DueItem, 0, len(tasks)+len(appts))
	for _, task := range tasks {
		if task.DueDate.After(today) {
			continue
		}
		taskID := task.ID
		items = append(items, DueItem{
			Kind:     KindTask,
			LeadID:   task.LeadID,
			TaskID:   &taskID,
			Title:    taskTitle(task),
			DueAt:    task.DueDate,
			Priority: string(task.EffectivePriority(now)),
			Overdue:  task.DueDate.Before(today),
		})
	}
	for _, appt := range appts {
		apptID := appt.ID
		items = append(items, DueItem{
			Kind:          KindAppointment,
			LeadID:        appt.LeadID,
			AppointmentID: &apptID,
			Title:         appt.Title,
			DueAt:         appt.StartTime,
			Overdue:       false,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Overdue != items[j].Overdue {
			return items[i].Overdue
		}
		return items[i].DueAt.Before(items[j].DueAt)
	})
	return items, nil
}

// Summary is the dashboard counter block.
type Summary struct {
	OpenTasks        int `json:"openTasks"`
	OverdueTasks     int `json:"overdueTasks"`
	DueTodayTasks    int `json:"dueTodayTasks"`
	WeekAppointments int `json:"weekAppointments"`
}

func (s *Service) Summarize(ctx context.Context, tenantID uuid.UUID) (Summary, error) {
	now := s.now()
	today := busday.DateOnly(now)

	var (
		tasks []followups.Task
		appts []apptrepo.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.ListOpen(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.appointments.ListScheduledInRange(gctx, tenantID, today, today.AddDate(0, 0, horizonDays))
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	sum := Summary{OpenTasks: len(tasks), WeekAppointments: len(appts)}
	for _, task := range tasks {
		switch {
		case task.DueDate.Before(today):
			sum.OverdueTasks++
		case busday.SameDay(task.DueDate, today):
			sum.DueTodayTasks++
		}
	}
	return sum, nil
}

func taskTitle(task followups.Task) string {
	switch task.Type {
	case followups.TaskCall:
		return "Call lead"
	case followups.TaskOffer:
		return "Follow up on offer"
	case followups.TaskTVP:
		return "Follow up on site visit"
	case followups.TaskReengagement:
		return "Re-engage lost lead"
	case followups.TaskMeeting:
		return "Prepare meeting"
	case followups.TaskFollowUp:
		return "Follow up with lead"
	default:
		if task.Notes != "" {
			return task.Notes
		}
		return "Follow-up task"
	}
}
