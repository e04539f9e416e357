// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leaddesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	Status   string    `json:"status"`
	Source   string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when the transition engine resolves a new
// status for a lead. Follow-up generation and SLA re-evaluation key off this.
type LeadStatusChanged struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	TenantID        uuid.UUID `json:"tenantId"`
	OldStatus       string    `json:"oldStatus"`
	NewStatus       string    `json:"newStatus"`
	LostReason      string    `json:"lostReason,omitempty"`
	NotReachedCount int       `json:"notReachedCount"`
	ActorID         uuid.UUID `json:"actorId"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadUpdated is published on any persisted lead mutation that did not
// change the status. The SLA evaluator refreshes on it.
type LeadUpdated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// =============================================================================
// Follow-Up Task Domain Events
// =============================================================================

// FollowUpTaskCreated is published when a follow-up task is persisted,
// whether generated by a transition or created manually.
type FollowUpTaskCreated struct {
	BaseEvent
	TaskID        uuid.UUID `json:"taskId"`
	LeadID        uuid.UUID `json:"leadId"`
	TenantID      uuid.UUID `json:"tenantId"`
	Type          string    `json:"type"`
	DueDate       time.Time `json:"dueDate"`
	Priority      string    `json:"priority"`
	AutoGenerated bool      `json:"autoGenerated"`
}

func (e FollowUpTaskCreated) EventName() string { return "followups.task.created" }

// FollowUpTaskCompleted is published when an open task is completed.
type FollowUpTaskCompleted struct {
	BaseEvent
	TaskID   uuid.UUID `json:"taskId"`
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
}

func (e FollowUpTaskCompleted) EventName() string { return "followups.task.completed" }

// FollowUpTaskRescheduled is published when a task's due date changes.
type FollowUpTaskRescheduled struct {
	BaseEvent
	TaskID   uuid.UUID `json:"taskId"`
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	DueDate  time.Time `json:"dueDate"`
}

func (e FollowUpTaskRescheduled) EventName() string { return "followups.task.rescheduled" }

// =============================================================================
// Appointments Domain Events
// =============================================================================

// AppointmentCreated is published when an appointment is booked.
// The automation engine never creates appointments itself.
type AppointmentCreated struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	TenantID      uuid.UUID `json:"tenantId"`
	LeadID        uuid.UUID `json:"leadId"`
	UserID        uuid.UUID `json:"userId"`
	StartTime     time.Time `json:"startTime"`
}

func (e AppointmentCreated) EventName() string { return "appointments.created" }

// AppointmentStatusChanged is published when an appointment's status changes
// (e.g. cancelled, completed).
type AppointmentStatusChanged struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	TenantID      uuid.UUID `json:"tenantId"`
	LeadID        uuid.UUID `json:"leadId"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
}

func (e AppointmentStatusChanged) EventName() string { return "appointments.status.changed" }

// AppointmentDeleted is published when an appointment is removed.
type AppointmentDeleted struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	TenantID      uuid.UUID `json:"tenantId"`
	LeadID        uuid.UUID `json:"leadId"`
}

func (e AppointmentDeleted) EventName() string { return "appointments.deleted" }

// =============================================================================
// SLA Domain Events
// =============================================================================

// SlaBreachDetected is published the first time a (lead, breachType) pair is
// observed in this process session. Re-polling the same unresolved breach
// does not publish again.
type SlaBreachDetected struct {
	BaseEvent
	TenantID   uuid.UUID `json:"tenantId"`
	LeadID     uuid.UUID `json:"leadId"`
	BreachType string    `json:"breachType"`
	DueAt      time.Time `json:"dueAt"`
	Level      int       `json:"level"`
}

func (e SlaBreachDetected) EventName() string { return "sla.breach.detected" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationCreated is published when an inbox notification is persisted.
type NotificationCreated struct {
	BaseEvent
	NotificationID uuid.UUID `json:"notificationId"`
	TenantID       uuid.UUID `json:"tenantId"`
	Type           string    `json:"type"`
}

func (e NotificationCreated) EventName() string { return "notifications.created" }
